package entity

import (
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// InvulnerabilityTicks - окно неуязвимости после принятого урона
const InvulnerabilityTicks = 10

// Living - живое существо: здоровье, неуязвимость, горение, эффекты
type Living struct {
	*Entity

	Health      float64
	MaxHealth   float64
	ArrowsStuck int

	player       bool
	invulnerable int
	fireTicks    int
	effects      []projectile.StatusEffect
	lastDamage   projectile.DamageSource
}

// NewLiving создаёт живое существо
func NewLiving(id projectile.ActorID, entityType EntityType, pos mgl64.Vec3, maxHealth float64) *Living {
	size := MobSize
	if entityType == EntityTypePlayer {
		size = PlayerSize
	}
	return &Living{
		Entity:    NewEntity(id, entityType, pos, size),
		Health:    maxHealth,
		MaxHealth: maxHealth,
		player:    entityType == EntityTypePlayer,
	}
}

// NewPlayer создаёт игрока с 20 единицами здоровья
func NewPlayer(id projectile.ActorID, pos mgl64.Vec3) *Living {
	return NewLiving(id, EntityTypePlayer, pos, 20)
}

// NewMob создаёт моба с указанным здоровьем
func NewMob(id projectile.ActorID, pos mgl64.Vec3, maxHealth float64) *Living {
	return NewLiving(id, EntityTypeMob, pos, maxHealth)
}

// Capabilities - живое существо поддерживает все эффекты попадания
func (l *Living) Capabilities() projectile.Capability {
	return projectile.CapLiving
}

// PlayerControlled сообщает, управляется ли сущность игроком
func (l *Living) PlayerControlled() bool {
	return l.player
}

// Dead сообщает, что здоровье исчерпано
func (l *Living) Dead() bool {
	return l.Health <= 0
}

// Invulnerable возвращает оставшиеся тики неуязвимости
func (l *Living) Invulnerable() int {
	return l.invulnerable
}

// FireTicks возвращает оставшиеся тики горения
func (l *Living) FireTicks() int {
	return l.fireTicks
}

// Effects возвращает активные эффекты
func (l *Living) Effects() []projectile.StatusEffect {
	out := make([]projectile.StatusEffect, len(l.effects))
	copy(out, l.effects)
	return out
}

// LastDamage возвращает последний принятый урон
func (l *Living) LastDamage() projectile.DamageSource {
	return l.lastDamage
}

// Attack принимает урон, если сущность жива и не неуязвима
func (l *Living) Attack(src projectile.DamageSource) bool {
	if l.Dead() || l.invulnerable > 0 {
		return false
	}
	l.Health -= src.Amount
	if l.Health <= 0 {
		l.Health = 0
		l.Active = false
	}
	l.invulnerable = InvulnerabilityTicks
	l.lastDamage = src
	return true
}

// Knockback гасит текущую скорость вдвое и толкает сущность прочь от источника
func (l *Living) Knockback(k projectile.Knockback) {
	away := vec.NormalizeIfNotZero(vec.Horizontal(l.Position.Sub(k.Source)))

	v := l.Velocity.Mul(0.5)
	v = v.Add(away.Mul(k.Strength))
	v[1] = l.Velocity[1]/2 + k.Vertical
	if v[1] > k.Vertical {
		v[1] = k.Vertical
	}
	l.Velocity = v.Add(k.Additional)
}

// ApplyPotion добавляет эффекты зелья, обновляя уже активные
func (l *Living) ApplyPotion(p projectile.Potion) {
	for _, eff := range p.Effects {
		replaced := false
		for i := range l.effects {
			if l.effects[i].Name == eff.Name {
				if eff.Amplifier >= l.effects[i].Amplifier {
					l.effects[i] = eff
				}
				replaced = true
				break
			}
		}
		if !replaced {
			l.effects = append(l.effects, eff)
		}
	}
}

// SetOnFireTicks поджигает сущность; более длинное горение не укорачивается
func (l *Living) SetOnFireTicks(ticks int) {
	if ticks > l.fireTicks {
		l.fireTicks = ticks
	}
}

// OnProjectileHit - стрела застревает в теле
func (l *Living) OnProjectileHit(p *projectile.Projectile, _ mgl64.Vec3) {
	if !p.Piercing() {
		l.ArrowsStuck++
	}
}

// Tick продвигает таймеры и движение сущности на один тик
func (l *Living) Tick() {
	if l.invulnerable > 0 {
		l.invulnerable--
	}
	if l.fireTicks > 0 {
		l.fireTicks--
	}

	active := l.effects[:0]
	for _, eff := range l.effects {
		eff.Duration--
		if eff.Duration > 0 {
			active = append(active, eff)
		}
	}
	l.effects = active

	l.Move()
}
