package implementations

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
)

// WaterBehavior реализует поведение блока воды.
// Вода не останавливает снаряд, но замедляет его сильнее воздуха.
type WaterBehavior struct{}

// ID возвращает идентификатор блока
func (b *WaterBehavior) ID() block.BlockID {
	return block.WaterBlockID
}

// Name возвращает имя блока
func (b *WaterBehavior) Name() string {
	return "Water"
}

func (b *WaterBehavior) Shape() physics.Shape {
	return nil
}

// Medium возвращает жидкую среду
func (b *WaterBehavior) Medium() physics.Medium {
	return physics.MediumLiquid
}

// CreateMetadata создает метаданные с максимальным уровнем воды
func (b *WaterBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{
		"level": 7,
	}
}

func (b *WaterBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {}
