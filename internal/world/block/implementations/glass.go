package implementations

import (
	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
)

// GlassCrackLimit - число попаданий, после которого стекло разбивается
const GlassCrackLimit = 3

// GlassBehavior - стекло: трескается от попаданий и разбивается
type GlassBehavior struct{}

func (b *GlassBehavior) ID() block.BlockID      { return block.GlassBlockID }
func (b *GlassBehavior) Name() string           { return "Glass" }
func (b *GlassBehavior) Shape() physics.Shape   { return physics.FullCube }
func (b *GlassBehavior) Medium() physics.Medium { return physics.MediumAir }

func (b *GlassBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{"cracks": 0}
}

// OnProjectileHit добавляет трещину; на пределе блок заменяется воздухом
func (b *GlassBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {
	cracks, _ := api.GetBlockMetadata(pos, "cracks").(int)
	cracks++
	if cracks >= GlassCrackLimit {
		api.SetBlock(pos, block.AirBlockID)
		return
	}
	api.SetBlockMetadata(pos, "cracks", cracks)
}
