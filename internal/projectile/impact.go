package projectile

import (
	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/go-gl/mathgl/mgl64"
)

// OnHitActor применяет попадание снаряда в актёра: урон, эффекты, отбрасывание, поджог.
// В режиме пробивания попадание учитывается в журнале; повторное попадание игнорируется.
func (e *Engine) OnHitActor(p *Projectile, target Actor, hitPos mgl64.Vec3) {
	if p.removed {
		return
	}

	piercing := p.Piercing()
	if piercing && !p.ledger.TryStrike(target.ID(), p.PierceLevel) {
		return
	}

	e.effects.PlaySound(hitPos, SoundArrowHit)

	out := Outcome{
		Kind:         OutcomeActor,
		Tick:         e.world.CurrentTick(),
		ProjectileID: p.ID,
		ShooterID:    p.Shooter,
		TargetID:     target.ID(),
		HitPos:       hitPos,
		Piercing:     piercing,
	}

	caps := target.Capabilities()

	if p.Potion != nil && caps.Has(CapStatusEffects) {
		target.ApplyPotion(*p.Potion)
	}

	if caps.Has(CapDamage) {
		out.Damage = ComputeDamage(e.damageInput(p), e.rng)
		out.Accepted = target.Attack(DamageSource{
			Cause:      CauseProjectile,
			Amount:     out.Damage,
			Projectile: p.ID,
			Shooter:    p.Shooter,
		})

		if out.Accepted && caps.Has(CapKnockback) {
			kb := ComputeKnockback(p.Motion, hitPos, p.PunchLevel, e.cfg.DefaultKnockback)
			target.Knockback(kb)
			out.Knockback = &kb
		}
	}

	if p.OnFire && caps.Has(CapIgnite) {
		target.SetOnFireTicks(e.cfg.FireTicks)
		out.Ignited = true
	}

	if !piercing {
		p.Remove()
		out.Removed = true
	}

	logging.Trace("снаряд %d попал в актёра %d: урон %.2f принят=%v", p.ID, target.ID(), out.Damage, out.Accepted)
	e.record(out)
}

// damageInput собирает параметры формулы урона; стрелок разрешается через мир
func (e *Engine) damageInput(p *Projectile) DamageInput {
	in := DamageInput{
		Base:       p.BaseDamage,
		Difficulty: e.world.Difficulty(),
		Speed:      p.Motion.Len(),
		Critical:   p.Critical,
		Power:      p.PowerLevel,
	}
	if p.Shooter != 0 {
		if shooter, ok := e.world.Actor(p.Shooter); ok {
			in.PlayerControlled = shooter.PlayerControlled()
		}
	}
	return in
}

// OnHitBlock фиксирует попадание в блок: звук, дрожание, снятие крита, флаг застревания.
// Повторные вызовы после первого попадания и вызовы для удаляемого снаряда ничего не делают.
func (e *Engine) OnHitBlock(p *Projectile, block *BlockShape, hitPos mgl64.Vec3) {
	if p.removed || p.hitBlock {
		return
	}

	e.effects.PlaySound(hitPos, SoundArrowHitBlock)
	e.effects.ShakeArrow(p.ID, e.cfg.ShakeTicks)

	tick := e.world.CurrentTick()
	p.Critical = false
	p.hitBlock = true
	p.lodgedTick = tick

	out := Outcome{
		Kind:         OutcomeBlock,
		Tick:         tick,
		ProjectileID: p.ID,
		ShooterID:    p.Shooter,
		HitPos:       hitPos,
		Piercing:     p.Piercing(),
		Lodged:       true,
	}
	if block != nil {
		out.BlockPos = block.Pos
		out.BlockName = block.Name
	}

	logging.Trace("снаряд %d застрял в блоке %s", p.ID, out.BlockPos)
	e.record(out)
}
