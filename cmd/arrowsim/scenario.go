package main

import (
	"github.com/annel0/arrow-physics/internal/launch"
	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/annel0/arrow-physics/internal/world"
	"github.com/annel0/arrow-physics/internal/world/block"
	"github.com/annel0/arrow-physics/internal/world/entity"
	"github.com/go-gl/mathgl/mgl64"
)

// Параметры стрельбища
const (
	volleyEvery = 20 // Тиков между залпами
	mobHealth   = 20.0
	wallX       = 28
)

// laneX - позиции мобов на линии огня; стрела с пробиванием проходит их по очереди
var laneX = []int{12, 16, 20}

// loadouts - заряды, которые стрелок перебирает по кругу
var loadouts = []launch.Options{
	{},
	{Multishot: true},
	{PierceLevel: 3, Critical: true, PowerLevel: 2},
	{Flame: true, PunchLevel: 1, Potion: &projectile.Potion{
		Name:    "slowness",
		Effects: []projectile.StatusEffect{{Name: "slowness", Amplifier: 1, Duration: 60}},
	}},
}

// shootingRange - демонстрационный мир: стрелок, линия мобов, маркер и стена из мишеней и стекла
type shootingRange struct {
	dim      *world.Dimension
	heights  func(x, z int) int
	launcher *launch.Launcher
	player   *entity.Living
	lane     []projectile.ActorID
	next     int

	// spawn передаёт залп в симуляцию
	spawn func(ps ...*projectile.Projectile)
}

// newShootingRange строит стрельбище на сгенерированном рельефе
func newShootingRange(d *world.Dimension, gen *world.TerrainGenerator, rng projectile.Random) *shootingRange {
	heights := func(x, z int) int {
		h := gen.SurfaceHeight(x, z)
		if h < gen.SeaLevel {
			h = gen.SeaLevel
		}
		return h
	}

	top := gen.BaseHeight + gen.Amplitude + 4
	bottom := gen.BaseHeight - gen.Amplitude - 4
	chunks := d.LoadArea(vec.Vec3{X: -8, Y: bottom, Z: -8}, vec.Vec3{X: wallX + 8, Y: top, Z: 8})

	r := &shootingRange{
		dim:      d,
		heights:  heights,
		launcher: launch.NewLauncher(d.NextActorID, rng),
		lane:     make([]projectile.ActorID, len(laneX)),
	}

	r.player = entity.NewPlayer(d.NextActorID(), r.feet(0, 0))
	d.AddActor(r.player)
	for i := range laneX {
		r.respawn(i)
	}
	d.AddActor(entity.NewMarker(d.NextActorID(), r.feet(16, 4)))

	for dy := 1; dy <= 3; dy++ {
		y := heights(wallX, 0) + dy
		d.SetBlock(vec.Vec3{X: wallX, Y: y, Z: 0}, block.TargetBlockID)
		d.SetBlock(vec.Vec3{X: wallX, Y: y, Z: -1}, block.GlassBlockID)
		d.SetBlock(vec.Vec3{X: wallX, Y: y, Z: 1}, block.GlassBlockID)
	}

	logging.Info("Стрельбище готово: чанков=%d актёров=%d", chunks, len(d.Actors()))
	return r
}

// feet возвращает точку у ног для сущности, стоящей на блоке (x, z)
func (r *shootingRange) feet(x, z int) mgl64.Vec3 {
	return mgl64.Vec3{float64(x) + 0.5, float64(r.heights(x, z) + 1), float64(z) + 0.5}
}

func (r *shootingRange) respawn(i int) {
	mob := entity.NewMob(r.dim.NextActorID(), r.feet(laneX[i], 0), mobHealth)
	r.dim.AddActor(mob)
	r.lane[i] = mob.ID()
}

// aim выбирает ближайшего живого моба на линии, иначе центр стены
func (r *shootingRange) aim() mgl64.Vec3 {
	for _, id := range r.lane {
		if actor, ok := r.dim.Actor(id); ok {
			return actor.BoundingBox().Center()
		}
	}
	return mgl64.Vec3{wallX, float64(r.heights(wallX, 0)) + 2.5, 0.5}
}

// preTick раз в volleyEvery тиков выпускает очередной заряд.
// Погибшие мобы возвращаются на линию перед залпом.
func (r *shootingRange) preTick(tick uint64) {
	if tick%volleyEvery != 1 || r.spawn == nil {
		return
	}
	for i, id := range r.lane {
		if _, ok := r.dim.Actor(id); !ok {
			r.respawn(i)
		}
	}

	r.player.LookAt(r.aim())
	opts := loadouts[r.next%len(loadouts)]
	r.next++

	arrows := r.launcher.Arrow(r.player, opts)
	r.spawn(arrows...)
	logging.Debug("Тик %d: залп из %d стрел (pierce=%d crit=%v flame=%v)",
		tick, len(arrows), opts.PierceLevel, opts.Critical, opts.Flame)
}
