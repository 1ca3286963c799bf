package projectile

import (
	"math"

	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultKnockback - базовая сила отбрасывания
const DefaultKnockback = 0.4

// FireTicks - длительность горения цели, подожжённой снарядом
const FireTicks = 100

// ShakeTicks - длительность дрожания стрелы, воткнувшейся в блок
const ShakeTicks = 7

// DamageInput - входные данные формулы урона
type DamageInput struct {
	Base             float64
	PlayerControlled bool
	Difficulty       Difficulty
	Speed            float64
	Critical         bool
	Power            int
}

// ComputeDamage вычисляет урон от попадания снаряда.
// Надбавка сложности входит с коэффициентом 0.11: 0.11*Bonus(), где Bonus равен 0..3 от peaceful до hard.
// Порядок обращений к rng фиксирован: гаусс, затем два равномерных для крита.
func ComputeDamage(in DamageInput, rng Random) float64 {
	damage := in.Base

	if in.PlayerControlled {
		damage += 0.11*in.Difficulty.Bonus() + 0.25*rng.NormFloat64() + 0.97*in.Speed

		if in.Critical {
			bonus := 0.5*rng.Float64()*damage + 2*rng.Float64()
			damage = math.Max(10, math.Min(9, damage+bonus))
		}
	}

	if in.Power > 0 {
		damage = 1.25*damage + 0.25*float64(in.Power) + damage
	}

	if damage < 0 {
		return 0
	}
	return damage
}

// ComputeKnockback вычисляет отбрасывание по скорости снаряда до удара.
// С уровнем punch сила вдвое меньше, но добавляется горизонтальный толчок.
func ComputeKnockback(motion, hitPos mgl64.Vec3, punch int, base float64) Knockback {
	strength := base
	var additional mgl64.Vec3
	if punch != 0 {
		strength /= 2
		additional = vec.Horizontal(vec.NormalizeIfNotZero(motion)).Mul(float64(punch) * 0.5)
	}
	return Knockback{
		Source:     hitPos.Sub(motion),
		Strength:   strength,
		Vertical:   base,
		Additional: additional,
	}
}
