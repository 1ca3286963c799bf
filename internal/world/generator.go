package world

import (
	"math"

	"github.com/annel0/arrow-physics/internal/util"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
)

// Параметры рельефа по умолчанию
const (
	DefaultBaseHeight = 60  // Минимальная высота поверхности
	DefaultAmplitude  = 12  // Разброс высоты поверхности
	DefaultSeaLevel   = 63  // Уровень воды
	DefaultNoiseScale = 0.05
	dirtDepth         = 3 // Толщина слоя земли под поверхностью
)

// Generator заполняет чанк блоками
type Generator interface {
	GenerateChunk(coords vec.Vec3) *Chunk
}

// TerrainGenerator генерирует холмистый ландшафт с водоёмами на основе шума Перлина
type TerrainGenerator struct {
	BaseHeight int     // Минимальная высота поверхности
	Amplitude  int     // Разброс высоты поверхности
	SeaLevel   int     // Ниже этого уровня впадины заполняются водой
	NoiseScale float64 // Масштаб шума (сглаженность ландшафта)

	noise *util.Noise
}

// NewTerrainGenerator создаёт генератор мира с указанным сидом
func NewTerrainGenerator(seed int64) *TerrainGenerator {
	return &TerrainGenerator{
		BaseHeight: DefaultBaseHeight,
		Amplitude:  DefaultAmplitude,
		SeaLevel:   DefaultSeaLevel,
		NoiseScale: DefaultNoiseScale,
		noise:      util.NewNoise(seed),
	}
}

// SurfaceHeight возвращает высоту верхнего твёрдого блока в колонне (x, z)
func (g *TerrainGenerator) SurfaceHeight(x, z int) int {
	n := g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
	return g.BaseHeight + int(math.Floor(n*float64(g.Amplitude)))
}

// GenerateChunk генерирует чанк по его координатам
func (g *TerrainGenerator) GenerateChunk(coords vec.Vec3) *Chunk {
	chunk := NewChunk(coords)

	startX := coords.X << 4
	startY := coords.Y << 4
	startZ := coords.Z << 4

	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			surface := g.SurfaceHeight(startX+x, startZ+z)

			for y := 0; y < ChunkSize; y++ {
				id := g.blockAt(startY+y, surface)
				if id != block.AirBlockID {
					chunk.SetBlock(vec.Vec3{X: x, Y: y, Z: z}, id)
				}
			}
		}
	}

	return chunk
}

// blockAt определяет блок на высоте y для колонны с поверхностью surface
func (g *TerrainGenerator) blockAt(y, surface int) block.BlockID {
	switch {
	case y > surface:
		if y <= g.SeaLevel {
			return block.WaterBlockID
		}
		return block.AirBlockID
	case y == surface:
		// Под водой трава не растёт
		if surface < g.SeaLevel {
			return block.DirtBlockID
		}
		return block.GrassBlockID
	case y > surface-dirtDepth:
		return block.DirtBlockID
	default:
		return block.StoneBlockID
	}
}

// FlatGenerator генерирует плоский мир: камень до уровня Height включительно
type FlatGenerator struct {
	Height int
}

// GenerateChunk генерирует плоский чанк
func (g FlatGenerator) GenerateChunk(coords vec.Vec3) *Chunk {
	chunk := NewChunk(coords)
	startY := coords.Y << 4

	for y := 0; y < ChunkSize; y++ {
		if startY+y > g.Height {
			break
		}
		for x := 0; x < ChunkSize; x++ {
			for z := 0; z < ChunkSize; z++ {
				chunk.SetBlock(vec.Vec3{X: x, Y: y, Z: z}, block.StoneBlockID)
			}
		}
	}
	return chunk
}
