package projectile_test

import (
	"testing"

	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestComputeDamage_NonPlayerUsesBase(t *testing.T) {
	rng := &fixedRandom{norm: 3, uni: []float64{0.9}}
	got := projectile.ComputeDamage(projectile.DamageInput{
		Base:       2,
		Difficulty: projectile.DifficultyHard,
		Speed:      3,
		Critical:   true,
	}, rng)
	assert.Equal(t, 2.0, got, "без игрока-стрелка надбавки и крит не применяются")
}

func TestComputeDamage_PlayerBonuses(t *testing.T) {
	rng := &fixedRandom{norm: 0.4}
	got := projectile.ComputeDamage(projectile.DamageInput{
		Base:             2,
		PlayerControlled: true,
		Difficulty:       projectile.DifficultyNormal,
		Speed:            1,
	}, rng)
	assert.InDelta(t, 2+0.22+0.1+0.97, got, 1e-12)
}

func TestComputeDamage_PowerAddsDamageTwice(t *testing.T) {
	got := projectile.ComputeDamage(projectile.DamageInput{Base: 2, Power: 1}, &fixedRandom{})
	assert.InDelta(t, 1.25*2+0.25+2, got, 1e-12)
}

func TestComputeDamage_NeverNegative(t *testing.T) {
	got := projectile.ComputeDamage(projectile.DamageInput{
		Base:             0,
		PlayerControlled: true,
	}, &fixedRandom{norm: -4})
	assert.Equal(t, 0.0, got)
}

func TestComputeDamage_CriticalAlwaysTen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rng := &fixedRandom{
			norm: rapid.Float64Range(-4, 4).Draw(t, "gauss"),
			uni: []float64{
				rapid.Float64Range(0, 0.999999).Draw(t, "u1"),
				rapid.Float64Range(0, 0.999999).Draw(t, "u2"),
			},
		}
		in := projectile.DamageInput{
			Base:             rapid.Float64Range(0, 50).Draw(t, "base"),
			PlayerControlled: true,
			Difficulty:       projectile.Difficulty(rapid.IntRange(0, 3).Draw(t, "difficulty")),
			Speed:            rapid.Float64Range(0, 5).Draw(t, "speed"),
			Critical:         true,
		}
		if got := projectile.ComputeDamage(in, rng); got != 10 {
			t.Fatalf("критический урон %v, ожидалось 10", got)
		}
	})
}

func TestComputeKnockback_PunchHalvesStrength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		motion := mgl64.Vec3{
			rapid.Float64Range(-3, 3).Draw(t, "vx"),
			rapid.Float64Range(-3, 3).Draw(t, "vy"),
			rapid.Float64Range(-3, 3).Draw(t, "vz"),
		}
		hit := mgl64.Vec3{
			rapid.Float64Range(-100, 100).Draw(t, "x"),
			rapid.Float64Range(-100, 100).Draw(t, "y"),
			rapid.Float64Range(-100, 100).Draw(t, "z"),
		}
		punch := rapid.IntRange(1, 5).Draw(t, "punch")

		plain := projectile.ComputeKnockback(motion, hit, 0, projectile.DefaultKnockback)
		punched := projectile.ComputeKnockback(motion, hit, punch, projectile.DefaultKnockback)

		if punched.Strength != plain.Strength/2 {
			t.Fatalf("сила %v, ожидалось %v", punched.Strength, plain.Strength/2)
		}
		if punched.Additional[1] != 0 {
			t.Fatalf("дополнительный толчок не должен быть вертикальным: %v", punched.Additional)
		}
		if plain.Additional != (mgl64.Vec3{}) {
			t.Fatalf("без punch толчка нет: %v", plain.Additional)
		}
	})
}

func TestComputeKnockback_Geometry(t *testing.T) {
	kb := projectile.ComputeKnockback(mgl64.Vec3{3, 4, 0}, mgl64.Vec3{10, 5, 0}, 2, 0.4)

	assert.InDelta(t, 0.2, kb.Strength, 1e-12)
	assert.InDelta(t, 0.4, kb.Vertical, 1e-12)
	assert.Equal(t, mgl64.Vec3{7, 1, 0}, kb.Source, "источник смещён назад на вектор скорости")
	assert.InDelta(t, 0.6, kb.Additional[0], 1e-12)
	assert.InDelta(t, 0, kb.Additional[1], 1e-12)
	assert.InDelta(t, 0, kb.Additional[2], 1e-12)
}
