package block

import (
	"github.com/annel0/arrow-physics/internal/vec"
)

// BlockAPI определяет интерфейс для взаимодействия блоков с миром.
// Блоки могут читать и изменять состояние мира: получать и устанавливать
// блоки и работать с метаданными.
type BlockAPI interface {
	// GetBlockID возвращает идентификатор блока в указанной позиции.
	GetBlockID(pos vec.Vec3) BlockID

	// SetBlock устанавливает блок в указанной позиции.
	SetBlock(pos vec.Vec3, id BlockID)

	// GetBlockMetadata возвращает значение метаданных блока по ключу.
	GetBlockMetadata(pos vec.Vec3, key string) interface{}

	// SetBlockMetadata устанавливает значение метаданных блока по ключу.
	SetBlockMetadata(pos vec.Vec3, key string, value interface{})
}
