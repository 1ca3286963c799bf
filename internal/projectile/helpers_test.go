package projectile_test

import (
	"testing"

	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

// fakeActor записывает всё, что с ним сделал движок
type fakeActor struct {
	id     projectile.ActorID
	box    physics.AABB
	caps   projectile.Capability
	player bool
	reject bool

	attacks    []projectile.DamageSource
	knockbacks []projectile.Knockback
	potions    []projectile.Potion
	fireTicks  int
	reactions  int
	log        *[]projectile.ActorID
}

func newActor(id projectile.ActorID, min, max mgl64.Vec3) *fakeActor {
	return &fakeActor{id: id, box: physics.AABB{Min: min, Max: max}, caps: projectile.CapLiving}
}

// boxOnX - актёр-кубик 0.5x1x1 на оси X, начинающийся в x
func boxOnX(id projectile.ActorID, x float64) *fakeActor {
	return newActor(id, mgl64.Vec3{x, -0.5, -0.5}, mgl64.Vec3{x + 0.5, 0.5, 0.5})
}

func (a *fakeActor) ID() projectile.ActorID              { return a.id }
func (a *fakeActor) BoundingBox() physics.AABB           { return a.box }
func (a *fakeActor) Capabilities() projectile.Capability { return a.caps }
func (a *fakeActor) PlayerControlled() bool              { return a.player }
func (a *fakeActor) Knockback(k projectile.Knockback)    { a.knockbacks = append(a.knockbacks, k) }
func (a *fakeActor) ApplyPotion(p projectile.Potion)     { a.potions = append(a.potions, p) }
func (a *fakeActor) SetOnFireTicks(ticks int)            { a.fireTicks = ticks }
func (a *fakeActor) Attack(src projectile.DamageSource) bool {
	a.attacks = append(a.attacks, src)
	return !a.reject
}
func (a *fakeActor) OnProjectileHit(_ *projectile.Projectile, _ mgl64.Vec3) {
	a.reactions++
	if a.log != nil {
		*a.log = append(*a.log, a.id)
	}
}

// fakeWorld - мир из явно заданных блоков и актёров
type fakeWorld struct {
	blocks     []projectile.BlockShape
	actors     []projectile.Actor
	extra      map[projectile.ActorID]projectile.Actor
	difficulty projectile.Difficulty
	tick       uint64
	collides   bool
}

func (w *fakeWorld) QueryBlockShapes(region physics.AABB) []projectile.BlockShape {
	var out []projectile.BlockShape
	for _, b := range w.blocks {
		// некорректные формы отдаём всегда, чтобы движок их увидел
		if b.Shape.Validate() != nil || b.Shape.Bounds().Overlaps(region) {
			out = append(out, b)
		}
	}
	return out
}

func (w *fakeWorld) QueryCollidingActors(region physics.AABB) []projectile.Actor {
	var out []projectile.Actor
	for _, a := range w.actors {
		if a.BoundingBox().Overlaps(region) || a.BoundingBox().Validate() != nil {
			out = append(out, a)
		}
	}
	return out
}

func (w *fakeWorld) CollidesWithBlocks(box physics.AABB) bool { return w.collides }

func (w *fakeWorld) Actor(id projectile.ActorID) (projectile.Actor, bool) {
	for _, a := range w.actors {
		if a.ID() == id {
			return a, true
		}
	}
	a, ok := w.extra[id]
	return a, ok
}

func (w *fakeWorld) Difficulty() projectile.Difficulty { return w.difficulty }
func (w *fakeWorld) CurrentTick() uint64               { return w.tick }

// recordingEffects запоминает звуки и дрожания
type recordingEffects struct {
	sounds []projectile.Sound
	shakes []int
}

func (e *recordingEffects) PlaySound(_ mgl64.Vec3, s projectile.Sound) {
	e.sounds = append(e.sounds, s)
}

func (e *recordingEffects) ShakeArrow(_ projectile.ActorID, ticks int) {
	e.shakes = append(e.shakes, ticks)
}

// fixedRandom возвращает заранее заданные значения
type fixedRandom struct {
	norm float64
	uni  []float64
	i    int
}

func (r *fixedRandom) NormFloat64() float64 { return r.norm }

func (r *fixedRandom) Float64() float64 {
	if len(r.uni) == 0 {
		return 0
	}
	v := r.uni[r.i%len(r.uni)]
	r.i++
	return v
}

// stoneAt - полный блок с мировыми координатами [x,x+1]x[-0.5,0.5]x[-0.5,0.5]
func stoneAt(x float64) projectile.BlockShape {
	return projectile.BlockShape{
		Name:  "stone",
		Shape: physics.Shape{{Min: mgl64.Vec3{x, -0.5, -0.5}, Max: mgl64.Vec3{x + 1, 0.5, 0.5}}},
	}
}

func newEngine(w *fakeWorld, fx projectile.Effects) *projectile.Engine {
	return projectile.NewEngine(projectile.DefaultConfig(), w, fx, &fixedRandom{})
}

// arrowAlongX - стрела из начала координат со смещением 10 по X за тик
func arrowAlongX(id projectile.ActorID) *projectile.Projectile {
	return projectile.NewArrow(id, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0})
}

func assertNear(t *testing.T, want, got mgl64.Vec3, msgAndArgs ...interface{}) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], 1e-9, msgAndArgs...)
	}
}
