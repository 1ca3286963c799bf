package implementations

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	slabShape = physics.Shape{
		{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 0.5, 1}},
	}
	// Столб забора выше блока, чтобы через него нельзя было перепрыгнуть
	fenceShape = physics.Shape{
		{Min: mgl64.Vec3{0.375, 0, 0.375}, Max: mgl64.Vec3{0.625, 1.5, 0.625}},
	}
)

// SlabBehavior - нижний полублок
type SlabBehavior struct{}

func (b *SlabBehavior) ID() block.BlockID              { return block.SlabBlockID }
func (b *SlabBehavior) Name() string                   { return "Slab" }
func (b *SlabBehavior) Shape() physics.Shape           { return slabShape }
func (b *SlabBehavior) Medium() physics.Medium         { return physics.MediumAir }
func (b *SlabBehavior) CreateMetadata() block.Metadata { return block.Metadata{} }

func (b *SlabBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {}

// FenceBehavior - одиночный столб забора
type FenceBehavior struct{}

func (b *FenceBehavior) ID() block.BlockID              { return block.FenceBlockID }
func (b *FenceBehavior) Name() string                   { return "Fence" }
func (b *FenceBehavior) Shape() physics.Shape           { return fenceShape }
func (b *FenceBehavior) Medium() physics.Medium         { return physics.MediumAir }
func (b *FenceBehavior) CreateMetadata() block.Metadata { return block.Metadata{} }

func (b *FenceBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {}
