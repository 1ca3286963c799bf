package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world/block"
	"github.com/annel0/arrow-physics/internal/world/block/implementations"
	"github.com/annel0/arrow-physics/internal/world/entity"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	records []EffectRecord
}

func (r *recordingDispatcher) DispatchEffect(rec EffectRecord) {
	r.records = append(r.records, rec)
}

func newTestEngine(d *Dimension) *projectile.Engine {
	return projectile.NewEngine(projectile.DefaultConfig(), d, d, rand.New(rand.NewSource(1)))
}

func TestDimension_BlocksAcrossNegativeChunks(t *testing.T) {
	d := NewDimension(nil)

	positions := []vec.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: -1, Y: -1, Z: -1},
		{X: -17, Y: 5, Z: 33},
		{X: 15, Y: 16, Z: -16},
	}
	for _, pos := range positions {
		assert.Equal(t, block.AirBlockID, d.GetBlockID(pos))
		d.SetBlock(pos, block.StoneBlockID)
		assert.Equal(t, block.StoneBlockID, d.GetBlockID(pos), "позиция %s", pos)
	}

	// Соседние блоки не затронуты
	assert.Equal(t, block.AirBlockID, d.GetBlockID(vec.Vec3{X: -2, Y: -1, Z: -1}))
	assert.Equal(t, 4, d.Stats().Chunks)
}

func TestDimension_QueryBlockShapesUsesWorldOffsets(t *testing.T) {
	d := NewDimension(nil)
	d.SetBlock(vec.Vec3{X: 3, Y: 1, Z: 0}, block.SlabBlockID)
	d.SetBlock(vec.Vec3{X: 10, Y: 1, Z: 0}, block.StoneBlockID)

	shapes := d.QueryBlockShapes(physics.AABB{Min: mgl64.Vec3{0, 1, 0}, Max: mgl64.Vec3{4, 2, 1}})
	require.Len(t, shapes, 1)
	assert.Equal(t, "Slab", shapes[0].Name)
	assert.Equal(t, vec.Vec3{X: 3, Y: 1, Z: 0}, shapes[0].Pos)
	assert.Equal(t, mgl64.Vec3{3, 1, 0}, shapes[0].Shape[0].Min)
	assert.Equal(t, mgl64.Vec3{4, 1.5, 1}, shapes[0].Shape[0].Max)
	assert.NotNil(t, shapes[0].Reactor)
}

func TestDimension_FenceReachesAboveItsBlock(t *testing.T) {
	d := NewDimension(nil)
	d.SetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}, block.FenceBlockID)

	// Область целиком в блоке y=1, но столб забора выступает туда на полблока
	region := physics.AABB{Min: mgl64.Vec3{0.4, 1.2, 0.4}, Max: mgl64.Vec3{0.6, 1.3, 0.6}}
	shapes := d.QueryBlockShapes(region)
	require.Len(t, shapes, 1)
	assert.Equal(t, "Fence", shapes[0].Name)
	assert.True(t, d.CollidesWithBlocks(region))

	above := physics.AABB{Min: mgl64.Vec3{0.4, 1.6, 0.4}, Max: mgl64.Vec3{0.6, 1.9, 0.6}}
	assert.False(t, d.CollidesWithBlocks(above))
}

func TestDimension_MediumAt(t *testing.T) {
	d := NewDimension(nil)
	d.SetBlock(vec.Vec3{X: 0, Y: 0, Z: 0}, block.WaterBlockID)

	assert.Equal(t, physics.MediumLiquid, d.MediumAt(mgl64.Vec3{0.5, 0.5, 0.5}))
	assert.Equal(t, physics.MediumAir, d.MediumAt(mgl64.Vec3{0.5, 1.5, 0.5}))
	assert.Empty(t, d.QueryBlockShapes(physics.AABB{Max: mgl64.Vec3{1, 1, 1}}), "у воды нет формы коллизии")
}

func TestDimension_ActorsIndexedAndSorted(t *testing.T) {
	d := NewDimension(nil)
	far := entity.NewMob(7, mgl64.Vec3{100, 0, 100}, 20)
	b := entity.NewMob(5, mgl64.Vec3{2, 0, 0}, 20)
	a := entity.NewMarker(3, mgl64.Vec3{1, 0, 0})
	d.AddActor(far)
	d.AddActor(b)
	d.AddActor(a)

	found := d.QueryCollidingActors(physics.AABB{Min: mgl64.Vec3{0, 0, -1}, Max: mgl64.Vec3{3, 2, 1}})
	require.Len(t, found, 2)
	assert.Equal(t, projectile.ActorID(3), found[0].ID())
	assert.Equal(t, projectile.ActorID(5), found[1].ID())

	// После перемещения индекс обновляется на тике
	b.Velocity = mgl64.Vec3{50, 0, 0}
	d.TickActors()
	found = d.QueryCollidingActors(physics.AABB{Min: mgl64.Vec3{0, 0, -1}, Max: mgl64.Vec3{3, 2, 1}})
	require.Len(t, found, 1)
	assert.Equal(t, projectile.ActorID(3), found[0].ID())

	d.RemoveActor(3)
	_, ok := d.Actor(3)
	assert.False(t, ok)
	assert.Equal(t, 2, d.Stats().Actors)
}

func TestDimension_TickActorsRemovesDead(t *testing.T) {
	d := NewDimension(nil)
	mob := entity.NewMob(1, mgl64.Vec3{}, 1)
	d.AddActor(mob)

	require.True(t, mob.Attack(projectile.DamageSource{Amount: 5}))
	assert.Equal(t, 1, d.TickActors())
	_, ok := d.Actor(1)
	assert.False(t, ok)
	assert.Equal(t, 0, d.index.Len())
}

func TestDimension_EffectLogIsBounded(t *testing.T) {
	d := NewDimension(nil)
	dispatcher := &recordingDispatcher{}
	d.SetEffectDispatcher(dispatcher)

	d.AdvanceTick()
	d.PlaySound(mgl64.Vec3{1, 2, 3}, projectile.SoundArrowHit)
	d.ShakeArrow(42, 7)

	recent := d.RecentEffects()
	require.Len(t, recent, 2)
	assert.Equal(t, EffectSound, recent[0].Kind)
	assert.Equal(t, "arrow_hit", recent[0].Sound)
	assert.Equal(t, uint64(1), recent[0].Tick)
	assert.Equal(t, EffectShake, recent[1].Kind)
	assert.Equal(t, projectile.ActorID(42), recent[1].ProjectileID)
	assert.Len(t, dispatcher.records, 2)

	for i := 0; i < EffectLogSize+10; i++ {
		d.ShakeArrow(projectile.ActorID(i), 7)
	}
	recent = d.RecentEffects()
	assert.Len(t, recent, EffectLogSize)
	assert.Equal(t, projectile.ActorID(EffectLogSize+9), recent[len(recent)-1].ProjectileID)
}

func TestDimension_NextActorIDIsUnique(t *testing.T) {
	d := NewDimension(nil)
	a := d.NextActorID()
	b := d.NextActorID()
	assert.NotEqual(t, a, b)
	assert.Greater(t, uint64(a), uint64(firstActorID))
}

func TestDimension_ArrowLodgesInTarget(t *testing.T) {
	d := NewDimension(nil)
	targetPos := vec.Vec3{X: 2, Y: 1, Z: 0}
	d.SetBlock(targetPos, block.TargetBlockID)
	engine := newTestEngine(d)

	arrow := projectile.NewArrow(d.NextActorID(), mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{3, 0, 0})
	moved, err := engine.Advance(arrow)
	require.NoError(t, err)
	require.True(t, moved)

	assert.True(t, arrow.HitBlock())
	assert.InDelta(t, 2.0, arrow.Position[0], 1e-9)
	assert.Equal(t, 1, d.GetBlockMetadata(targetPos, "hits"))
	assert.Equal(t, implementations.MaxTargetSignal, d.GetBlockMetadata(targetPos, "last_signal"))

	// Стрела застряла: скорость обнуляется, пока она касается мишени
	motion := engine.UpdateMotion(arrow, d.MediumAt(arrow.Position))
	assert.Equal(t, mgl64.Vec3{}, motion)

	moved, err = engine.Advance(arrow)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestDimension_GlassBreaksAfterRepeatedHits(t *testing.T) {
	d := NewDimension(nil)
	glassPos := vec.Vec3{X: 2, Y: 1, Z: 0}
	d.SetBlock(glassPos, block.GlassBlockID)
	engine := newTestEngine(d)

	for i := 0; i < implementations.GlassCrackLimit; i++ {
		arrow := projectile.NewArrow(d.NextActorID(), mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{3, 0, 0})
		_, err := engine.Advance(arrow)
		require.NoError(t, err)
		require.True(t, arrow.HitBlock(), "выстрел %d", i)
	}
	assert.Equal(t, block.AirBlockID, d.GetBlockID(glassPos))

	arrow := projectile.NewArrow(d.NextActorID(), mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{3, 0, 0})
	_, err := engine.Advance(arrow)
	require.NoError(t, err)
	assert.False(t, arrow.HitBlock(), "разбитое стекло не останавливает стрелу")
}

func TestDimension_ArrowHitsMob(t *testing.T) {
	d := NewDimension(nil)
	mob := entity.NewMob(d.NextActorID(), mgl64.Vec3{5, 1, 0.5}, 20)
	d.AddActor(mob)
	engine := newTestEngine(d)

	arrow := projectile.NewArrow(d.NextActorID(), mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{10, 0, 0})
	moved, err := engine.Advance(arrow)
	require.NoError(t, err)
	require.True(t, moved)

	assert.True(t, arrow.Removed())
	assert.InDelta(t, 4.7, arrow.Position[0], 1e-9)
	assert.Less(t, mob.Health, mob.MaxHealth)
	assert.Equal(t, 1, mob.ArrowsStuck)
	assert.Greater(t, mob.Velocity[0], 0.0, "моба отбросило по направлению полёта")

	sounds := 0
	for _, rec := range d.RecentEffects() {
		if rec.Kind == EffectSound {
			sounds++
		}
	}
	assert.Equal(t, 1, sounds)
}

func TestTerrainGenerator_Layers(t *testing.T) {
	gen := NewTerrainGenerator(7)
	d := NewDimension(gen)

	surface := gen.SurfaceHeight(3, 4)
	require.GreaterOrEqual(t, surface, DefaultBaseHeight)
	require.Less(t, surface, DefaultBaseHeight+DefaultAmplitude)

	d.LoadArea(vec.Vec3{X: 3, Y: 0, Z: 4}, vec.Vec3{X: 3, Y: DefaultBaseHeight + DefaultAmplitude, Z: 4})

	top := d.GetBlockID(vec.Vec3{X: 3, Y: surface, Z: 4})
	if surface < gen.SeaLevel {
		assert.Equal(t, block.DirtBlockID, top)
		assert.Equal(t, block.WaterBlockID, d.GetBlockID(vec.Vec3{X: 3, Y: gen.SeaLevel, Z: 4}))
	} else {
		assert.Equal(t, block.GrassBlockID, top)
	}
	assert.Equal(t, block.DirtBlockID, d.GetBlockID(vec.Vec3{X: 3, Y: surface - 1, Z: 4}))
	assert.Equal(t, block.StoneBlockID, d.GetBlockID(vec.Vec3{X: 3, Y: surface - dirtDepth, Z: 4}))
	assert.Equal(t, block.AirBlockID, d.GetBlockID(vec.Vec3{X: 3, Y: DefaultBaseHeight + DefaultAmplitude + 1, Z: 4}))
}

func TestFlatGenerator(t *testing.T) {
	chunk := FlatGenerator{Height: 3}.GenerateChunk(vec.Vec3{})
	assert.Equal(t, block.StoneBlockID, chunk.GetBlock(vec.Vec3{X: 5, Y: 3, Z: 5}))
	assert.Equal(t, block.AirBlockID, chunk.GetBlock(vec.Vec3{X: 5, Y: 4, Z: 5}))

	above := FlatGenerator{Height: 3}.GenerateChunk(vec.Vec3{Y: 1})
	assert.True(t, above.Empty())
}
