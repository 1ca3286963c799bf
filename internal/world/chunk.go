package world

import (
	"sync"

	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
)

// ChunkSize - размер ребра кубического чанка в блоках
const ChunkSize = 16

// Block представляет собой блок в игровом мире
type Block struct {
	ID      block.BlockID          // Идентификатор типа блока
	Payload map[string]interface{} // Метаданные блока (состояние)
}

// NewBlock создаёт новый блок с указанным ID и инициализированными метаданными
func NewBlock(id block.BlockID) Block {
	behavior, exists := block.Get(id)
	if !exists {
		return Block{
			ID:      id,
			Payload: make(map[string]interface{}),
		}
	}

	// Инициализируем метаданные через поведение блока
	return Block{
		ID:      id,
		Payload: behavior.CreateMetadata(),
	}
}

// Chunk представляет участок мира размером 16x16x16 блоков
type Chunk struct {
	Coords vec.Vec3 // Координаты чанка в мире

	// Blocks[x][y][z] в локальных координатах
	Blocks [ChunkSize][ChunkSize][ChunkSize]block.BlockID

	// Metadata хранит состояние блоков, у которых оно есть
	Metadata map[vec.Vec3]map[string]interface{}

	ChangeCounter int          // Счетчик изменений
	solid         int          // Число не-воздушных блоков
	Mu            sync.RWMutex // Мьютекс для безопасного доступа
}

// NewChunk создаёт новый чанк с указанными координатами
func NewChunk(coords vec.Vec3) *Chunk {
	return &Chunk{
		Coords:   coords,
		Metadata: make(map[vec.Vec3]map[string]interface{}),
	}
}

// GetBlock возвращает ID блока по локальным координатам
func (c *Chunk) GetBlock(local vec.Vec3) block.BlockID {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.Blocks[local.X][local.Y][local.Z]
}

// SetBlock устанавливает блок и сбрасывает его метаданные к начальным
func (c *Chunk) SetBlock(local vec.Vec3, id block.BlockID) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	prev := c.Blocks[local.X][local.Y][local.Z]
	c.Blocks[local.X][local.Y][local.Z] = id
	if prev == block.AirBlockID && id != block.AirBlockID {
		c.solid++
	} else if prev != block.AirBlockID && id == block.AirBlockID {
		c.solid--
	}

	delete(c.Metadata, local)
	if b := NewBlock(id); len(b.Payload) > 0 {
		c.Metadata[local] = b.Payload
	}
	c.ChangeCounter++
}

// SetBlockMetadata устанавливает метаданные для блока
func (c *Chunk) SetBlockMetadata(local vec.Vec3, key string, value interface{}) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if _, exists := c.Metadata[local]; !exists {
		c.Metadata[local] = make(map[string]interface{})
	}

	c.Metadata[local][key] = value
	c.ChangeCounter++
}

// GetBlockMetadataValue возвращает конкретное значение метаданных
func (c *Chunk) GetBlockMetadataValue(local vec.Vec3, key string) (interface{}, bool) {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	if metadata, exists := c.Metadata[local]; exists {
		value, ok := metadata[key]
		return value, ok
	}
	return nil, false
}

// GetBlockMetadata возвращает копию метаданных блока
func (c *Chunk) GetBlockMetadata(local vec.Vec3) map[string]interface{} {
	c.Mu.RLock()
	defer c.Mu.RUnlock()

	result := make(map[string]interface{}, len(c.Metadata[local]))
	for k, v := range c.Metadata[local] {
		result[k] = v
	}
	return result
}

// Empty сообщает, что в чанке только воздух
func (c *Chunk) Empty() bool {
	c.Mu.RLock()
	defer c.Mu.RUnlock()
	return c.solid == 0
}
