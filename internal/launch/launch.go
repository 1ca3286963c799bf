// Package launch создаёт снаряды из положения и взгляда стрелка.
package launch

import (
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// Параметры выстрела из арбалета
const (
	ArrowSpeed        = 3.15
	ArrowSpread       = 0.0075
	MultishotAngle    = 10.0 // Отклонение боковых стрел залпа, градусы
	MultishotOffset   = 0.25 // Боковой сдвиг точки вылета боковых стрел
	ShootHeightOffset = 0.1  // Стрела вылетает чуть ниже глаз
)

// Shooter - актёр, способный стрелять
type Shooter interface {
	ID() projectile.ActorID
	EyePosition() mgl64.Vec3
	Rotation() (yaw, pitch float64)
}

// IDSource выдаёт ID для новых снарядов
type IDSource func() projectile.ActorID

// Options - параметры заряженной стрелы и чар оружия
type Options struct {
	Multishot   bool
	PierceLevel int
	Critical    bool
	PowerLevel  int
	PunchLevel  int
	Flame       bool
	Potion      *projectile.Potion
	// BaseDamage по умолчанию projectile.DefaultBaseDamage
	BaseDamage float64
	// Speed по умолчанию ArrowSpeed
	Speed float64
	// Spread по умолчанию ArrowSpread; отрицательное значение отключает разброс
	Spread float64
}

// Launcher создаёт стрелы для выстрела
type Launcher struct {
	ids IDSource
	rng projectile.Random
}

// NewLauncher создаёт спавнер стрел
func NewLauncher(ids IDSource, rng projectile.Random) *Launcher {
	return &Launcher{ids: ids, rng: rng}
}

// Arrow выпускает одну стрелу или залп из трёх (multishot).
// Подобрать можно только центральную стрелу залпа.
func (l *Launcher) Arrow(shooter Shooter, opts Options) []*projectile.Projectile {
	if !opts.Multishot {
		return []*projectile.Projectile{l.shoot(shooter, opts, 0, true)}
	}
	return []*projectile.Projectile{
		l.shoot(shooter, opts, -MultishotAngle, false),
		l.shoot(shooter, opts, 0, true),
		l.shoot(shooter, opts, MultishotAngle, false),
	}
}

func (l *Launcher) shoot(shooter Shooter, opts Options, yawOffset float64, allowPickup bool) *projectile.Projectile {
	yaw, pitch := shooter.Rotation()
	direction := vec.DirectionFromYawPitch(yaw, pitch)
	if yawOffset != 0 {
		direction = vec.RotateY(direction, yawOffset)
	}

	spread := opts.Spread
	if spread == 0 {
		spread = ArrowSpread
	}
	if spread > 0 {
		direction = direction.Add(mgl64.Vec3{
			l.rng.NormFloat64() * spread,
			l.rng.NormFloat64() * spread,
			l.rng.NormFloat64() * spread,
		})
	}
	direction = vec.NormalizeIfNotZero(direction)

	pos := shooter.EyePosition().Sub(mgl64.Vec3{0, ShootHeightOffset, 0})
	if yawOffset != 0 {
		side := direction.Cross(mgl64.Vec3{0, 1, 0})
		if side.LenSqr() > 0 {
			offset := MultishotOffset
			if yawOffset < 0 {
				offset = -offset
			}
			pos = pos.Add(side.Normalize().Mul(offset))
		}
	}

	speed := opts.Speed
	if speed == 0 {
		speed = ArrowSpeed
	}

	arrow := projectile.NewArrow(l.ids(), pos, direction.Mul(speed))
	arrow.Shooter = shooter.ID()
	arrow.PierceLevel = opts.PierceLevel
	arrow.Critical = opts.Critical
	arrow.PowerLevel = opts.PowerLevel
	arrow.PunchLevel = opts.PunchLevel
	arrow.OnFire = opts.Flame
	arrow.Potion = opts.Potion
	arrow.PickupDisabled = !allowPickup
	if opts.BaseDamage > 0 {
		arrow.BaseDamage = opts.BaseDamage
	}
	return arrow
}
