package world

import (
	"testing"

	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
	_ "github.com/annel0/arrow-physics/internal/world/block/implementations"
	"github.com/stretchr/testify/assert"
)

func TestChunkCreateAndGetBlock(t *testing.T) {
	coords := vec.Vec3{X: 5, Y: 0, Z: 10}
	chunk := NewChunk(coords)

	assert.Equal(t, coords, chunk.Coords)
	assert.True(t, chunk.Empty())

	pos := vec.Vec3{X: 3, Y: 4, Z: 15}
	assert.Equal(t, block.AirBlockID, chunk.GetBlock(pos), "изначально в чанке воздух")

	chunk.SetBlock(pos, block.StoneBlockID)
	assert.Equal(t, block.StoneBlockID, chunk.GetBlock(pos))
	assert.False(t, chunk.Empty())

	chunk.SetBlock(pos, block.AirBlockID)
	assert.True(t, chunk.Empty())
}

func TestChunkMetadata(t *testing.T) {
	chunk := NewChunk(vec.Vec3{})
	pos := vec.Vec3{X: 5, Y: 5, Z: 5}

	assert.Empty(t, chunk.GetBlockMetadata(pos), "изначально метаданных нет")

	chunk.SetBlockMetadata(pos, "test_key", 42)
	value, ok := chunk.GetBlockMetadataValue(pos, "test_key")
	assert.True(t, ok)
	assert.Equal(t, 42, value)

	// Копия не влияет на чанк
	md := chunk.GetBlockMetadata(pos)
	md["test_key"] = 0
	value, _ = chunk.GetBlockMetadataValue(pos, "test_key")
	assert.Equal(t, 42, value)
}

func TestChunkSetBlockResetsMetadata(t *testing.T) {
	chunk := NewChunk(vec.Vec3{})
	pos := vec.Vec3{X: 1, Y: 1, Z: 1}

	chunk.SetBlock(pos, block.TargetBlockID)
	chunk.SetBlockMetadata(pos, "hits", 5)

	chunk.SetBlock(pos, block.TargetBlockID)
	value, ok := chunk.GetBlockMetadataValue(pos, "hits")
	assert.True(t, ok)
	assert.Equal(t, 0, value, "новый блок получает начальные метаданные")
}
