package projectile_test

import (
	"testing"

	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/projectile/mocks"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOnHitActor_AppliesAllEffects(t *testing.T) {
	target := boxOnX(10, 1)
	w := &fakeWorld{actors: []projectile.Actor{target}, tick: 42}
	e := newEngine(w, &recordingEffects{})

	var outcomes []projectile.Outcome
	e.SetOutcomeSink(projectile.OutcomeSinkFunc(func(o projectile.Outcome) {
		outcomes = append(outcomes, o)
	}))

	p := arrowAlongX(1)
	p.OnFire = true
	p.PunchLevel = 1
	p.Potion = &projectile.Potion{Name: "poison", Effects: []projectile.StatusEffect{{Name: "poison", Duration: 100}}}

	hitPos := mgl64.Vec3{1, 0, 0}
	e.OnHitActor(p, target, hitPos)

	require.Len(t, target.attacks, 1)
	assert.Equal(t, projectile.CauseProjectile, target.attacks[0].Cause)
	assert.Equal(t, p.ID, target.attacks[0].Projectile)
	assert.False(t, target.attacks[0].ApplyKnockback)
	assert.Len(t, target.potions, 1)
	assert.Equal(t, projectile.FireTicks, target.fireTicks)

	require.Len(t, target.knockbacks, 1)
	assert.InDelta(t, projectile.DefaultKnockback/2, target.knockbacks[0].Strength, 1e-12)
	assert.Equal(t, mgl64.Vec3{-9, 0, 0}, target.knockbacks[0].Source)

	assert.True(t, p.Removed())

	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, projectile.OutcomeActor, o.Kind)
	assert.Equal(t, uint64(42), o.Tick)
	assert.Equal(t, target.ID(), o.TargetID)
	assert.True(t, o.Accepted)
	assert.True(t, o.Ignited)
	assert.True(t, o.Removed)
	assert.NotNil(t, o.Knockback)
}

func TestOnHitActor_RejectedDamageSkipsKnockback(t *testing.T) {
	target := boxOnX(10, 1)
	target.reject = true
	w := &fakeWorld{actors: []projectile.Actor{target}}
	e := newEngine(w, &recordingEffects{})
	p := arrowAlongX(1)
	p.OnFire = true

	e.OnHitActor(p, target, mgl64.Vec3{1, 0, 0})

	assert.Len(t, target.attacks, 1)
	assert.Empty(t, target.knockbacks, "отклонённый урон не отбрасывает")
	assert.Equal(t, projectile.FireTicks, target.fireTicks, "поджог не зависит от принятия урона")
	assert.True(t, p.Removed())
}

func TestOnHitActor_RespectsCapabilities(t *testing.T) {
	marker := boxOnX(10, 1)
	marker.caps = 0
	w := &fakeWorld{actors: []projectile.Actor{marker}}
	fx := &recordingEffects{}
	e := newEngine(w, fx)
	p := arrowAlongX(1)
	p.OnFire = true
	p.Potion = &projectile.Potion{Name: "slowness"}

	e.OnHitActor(p, marker, mgl64.Vec3{1, 0, 0})

	assert.Empty(t, marker.attacks)
	assert.Empty(t, marker.potions)
	assert.Empty(t, marker.knockbacks)
	assert.Zero(t, marker.fireTicks)
	assert.Equal(t, []projectile.Sound{projectile.SoundArrowHit}, fx.sounds)
	assert.True(t, p.Removed(), "стрела удаляется и при попадании в неживого актёра")
}

func TestOnHitActor_PlayerShooterDamage(t *testing.T) {
	shooter := newActor(99, mgl64.Vec3{-50, -1, -1}, mgl64.Vec3{-49, 1, 1})
	shooter.player = true
	target := boxOnX(10, 1)
	w := &fakeWorld{
		actors:     []projectile.Actor{target},
		extra:      map[projectile.ActorID]projectile.Actor{99: shooter},
		difficulty: projectile.DifficultyNormal,
	}
	e := newEngine(w, &recordingEffects{})
	p := arrowAlongX(1)
	p.Shooter = shooter.ID()

	e.OnHitActor(p, target, mgl64.Vec3{1, 0, 0})

	require.Len(t, target.attacks, 1)
	assert.InDelta(t, 2+0.22+0.97*10, target.attacks[0].Amount, 1e-9)
	assert.Equal(t, shooter.ID(), target.attacks[0].Shooter)
}

func TestOnHitActor_SkipsRemovedProjectile(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := mocks.NewMockEffects(ctrl)

	target := boxOnX(10, 1)
	e := newEngine(&fakeWorld{}, fx)
	p := arrowAlongX(1)
	p.Remove()

	e.OnHitActor(p, target, mgl64.Vec3{1, 0, 0})
	assert.Empty(t, target.attacks)
}

func TestOnHitActor_PiercingRevalidatesLedger(t *testing.T) {
	target := boxOnX(10, 1)
	e := newEngine(&fakeWorld{}, &recordingEffects{})
	p := arrowAlongX(1)
	p.PierceLevel = 3

	e.OnHitActor(p, target, mgl64.Vec3{1, 0, 0})
	e.OnHitActor(p, target, mgl64.Vec3{1, 0, 0})

	assert.Len(t, target.attacks, 1, "повторное попадание в пробитого актёра игнорируется")
	assert.False(t, p.Removed())
	assert.Equal(t, 3, p.Ledger().Remaining(p.PierceLevel))
}

func TestOnHitBlock_OnlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := mocks.NewMockEffects(ctrl)

	p := arrowAlongX(5)
	p.Critical = true
	hitPos := mgl64.Vec3{3, 0, 0}

	fx.EXPECT().PlaySound(hitPos, projectile.SoundArrowHitBlock).Times(1)
	fx.EXPECT().ShakeArrow(p.ID, projectile.ShakeTicks).Times(1)

	w := &fakeWorld{tick: 7}
	e := newEngine(w, fx)
	var outcomes []projectile.Outcome
	e.SetOutcomeSink(projectile.OutcomeSinkFunc(func(o projectile.Outcome) { outcomes = append(outcomes, o) }))

	block := stoneAt(3)
	block.Pos = vec.Vec3{X: 3}
	e.OnHitBlock(p, &block, hitPos)
	e.OnHitBlock(p, &block, hitPos)

	assert.True(t, p.HitBlock())
	assert.False(t, p.Critical)
	assert.Equal(t, uint64(7), p.LodgedTick())
	require.Len(t, outcomes, 1)
	assert.Equal(t, projectile.OutcomeBlock, outcomes[0].Kind)
	assert.Equal(t, vec.Vec3{X: 3}, outcomes[0].BlockPos)
	assert.True(t, outcomes[0].Lodged)
}

func TestOnHitBlock_SkipsRemovedProjectile(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := mocks.NewMockEffects(ctrl)
	e := newEngine(&fakeWorld{}, fx)

	p := arrowAlongX(1)
	p.Remove()
	block := stoneAt(3)
	e.OnHitBlock(p, &block, mgl64.Vec3{3, 0, 0})
	assert.False(t, p.HitBlock())
}

type recordingReactor struct {
	hits []vec.Vec3
}

func (r *recordingReactor) OnProjectileHit(pos vec.Vec3, _ *projectile.Projectile, _ mgl64.Vec3) {
	r.hits = append(r.hits, pos)
}

func TestAdvance_BlockReactorRunsBeforeLodging(t *testing.T) {
	reactor := &recordingReactor{}
	block := stoneAt(4)
	block.Pos = vec.Vec3{X: 4}
	block.Reactor = reactor

	e := newEngine(&fakeWorld{blocks: []projectile.BlockShape{block}}, &recordingEffects{})
	p := arrowAlongX(1)

	_, err := e.Advance(p)
	require.NoError(t, err)
	assert.Equal(t, []vec.Vec3{{X: 4}}, reactor.hits)
	assert.True(t, p.HitBlock())
}
