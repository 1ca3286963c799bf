package implementations

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
)

// solidBehavior - общий полный блок без реакции на снаряды
type solidBehavior struct {
	id   block.BlockID
	name string
}

func (b *solidBehavior) ID() block.BlockID      { return b.id }
func (b *solidBehavior) Name() string           { return b.name }
func (b *solidBehavior) Shape() physics.Shape   { return physics.FullCube }
func (b *solidBehavior) Medium() physics.Medium { return physics.MediumAir }

func (b *solidBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}

func (b *solidBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {}

// StoneBehavior реализует поведение блока камня
type StoneBehavior struct {
	solidBehavior
}

// NewStoneBehavior создаёт камень
func NewStoneBehavior() *StoneBehavior {
	return &StoneBehavior{solidBehavior{id: block.StoneBlockID, name: "Stone"}}
}

// CreateMetadata создает начальные метаданные для блока
func (b *StoneBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{
		"hardness": 10,
	}
}

// NewGrassBehavior создаёт блок травы
func NewGrassBehavior() block.BlockBehavior {
	return &solidBehavior{id: block.GrassBlockID, name: "Grass"}
}

// NewDirtBehavior создаёт блок земли
func NewDirtBehavior() block.BlockBehavior {
	return &solidBehavior{id: block.DirtBlockID, name: "Dirt"}
}
