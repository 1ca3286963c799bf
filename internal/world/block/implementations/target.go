package implementations

import (
	"math"

	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxTargetSignal - сигнал мишени при попадании точно в центр грани
const MaxTargetSignal = 15

// TargetBehavior - мишень: считает попадания и запоминает точность последнего
type TargetBehavior struct{}

func (b *TargetBehavior) ID() block.BlockID      { return block.TargetBlockID }
func (b *TargetBehavior) Name() string           { return "Target" }
func (b *TargetBehavior) Shape() physics.Shape   { return physics.FullCube }
func (b *TargetBehavior) Medium() physics.Medium { return physics.MediumAir }

// CreateMetadata создает метаданные счётчика попаданий
func (b *TargetBehavior) CreateMetadata() block.Metadata {
	return block.Metadata{
		"hits":        0,
		"last_signal": 0,
	}
}

// OnProjectileHit увеличивает счётчик и вычисляет сигнал по точности попадания
func (b *TargetBehavior) OnProjectileHit(api block.BlockAPI, pos vec.Vec3, hit block.ProjectileHit) {
	hits, _ := api.GetBlockMetadata(pos, "hits").(int)
	api.SetBlockMetadata(pos, "hits", hits+1)
	api.SetBlockMetadata(pos, "last_signal", TargetSignal(hit.HitPos.Sub(pos.ToFloat())))
}

// TargetSignal вычисляет силу сигнала по локальной точке попадания (0..1 по осям).
// Грань определяется по оси, на которой точка ближе всего к границе блока.
func TargetSignal(local mgl64.Vec3) int {
	faceAxis := 0
	best := math.Inf(1)
	for i := 0; i < 3; i++ {
		d := math.Min(math.Abs(local[i]), math.Abs(1-local[i]))
		if d < best {
			best = d
			faceAxis = i
		}
	}

	offset := 0.0
	for i := 0; i < 3; i++ {
		if i == faceAxis {
			continue
		}
		offset = math.Max(offset, math.Abs(local[i]-0.5))
	}

	signal := int(math.Ceil(MaxTargetSignal * (1 - 2*offset)))
	if signal < 1 {
		return 1
	}
	if signal > MaxTargetSignal {
		return MaxTargetSignal
	}
	return signal
}
