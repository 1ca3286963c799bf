package block

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

type Metadata map[string]interface{}

// ProjectileHit описывает попадание снаряда в блок
type ProjectileHit struct {
	ProjectileID uint64
	ShooterID    uint64
	HitPos       mgl64.Vec3 // точка попадания в мировых координатах
	Motion       mgl64.Vec3 // скорость снаряда в момент удара
}

// BlockBehavior определяет поведение блока
type BlockBehavior interface {
	ID() BlockID
	Name() string
	// Shape возвращает форму коллизии в локальных координатах блока (пустая - нет коллизии)
	Shape() physics.Shape
	// Medium определяет среду внутри блока для расчёта сопротивления
	Medium() physics.Medium
	CreateMetadata() Metadata
	// OnProjectileHit вызывается, когда снаряд останавливается на блоке
	OnProjectileHit(api BlockAPI, pos vec.Vec3, hit ProjectileHit)
}
