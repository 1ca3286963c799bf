package implementations

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
)

// AirBehavior реализует поведение пустого блока (воздуха)
type AirBehavior struct{}

// ID возвращает идентификатор блока
func (b *AirBehavior) ID() block.BlockID {
	return block.AirBlockID
}

// Name возвращает имя блока
func (b *AirBehavior) Name() string {
	return "Air"
}

// Shape у воздуха пустая: снаряды пролетают насквозь
func (b *AirBehavior) Shape() physics.Shape {
	return nil
}

func (b *AirBehavior) Medium() physics.Medium {
	return physics.MediumAir
}

// CreateMetadata создает пустые метаданные
func (b *AirBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{}
}

// OnProjectileHit никогда не вызывается для воздуха
func (b *AirBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {}
