package projectile

import (
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// HitEvent предлагается слушателям перед применением попадания.
// Ровно одно из полей Actor или Block заполнено.
type HitEvent struct {
	Projectile *Projectile
	HitPos     mgl64.Vec3
	Actor      Actor
	Block      *BlockShape

	cancelled bool
}

// Cancel отменяет попадание: ни реакция цели, ни эффекты не применяются
func (e *HitEvent) Cancel() {
	e.cancelled = true
}

// Cancelled сообщает, отменено ли событие
func (e *HitEvent) Cancelled() bool {
	return e.cancelled
}

// HitListener получает события попаданий синхронно, в потоке тика
type HitListener interface {
	OnProjectileHit(ev *HitEvent)
}

// HitListenerFunc позволяет использовать функцию как HitListener
type HitListenerFunc func(ev *HitEvent)

func (f HitListenerFunc) OnProjectileHit(ev *HitEvent) { f(ev) }

// OutcomeKind - тип результата попадания
type OutcomeKind uint8

const (
	OutcomeActor OutcomeKind = iota
	OutcomeBlock
)

func (k OutcomeKind) String() string {
	if k == OutcomeBlock {
		return "block"
	}
	return "actor"
}

// Outcome - итог применения одного попадания
type Outcome struct {
	Kind         OutcomeKind `json:"kind"`
	Tick         uint64      `json:"tick"`
	ProjectileID ActorID     `json:"projectile_id"`
	ShooterID    ActorID     `json:"shooter_id,omitempty"`
	TargetID     ActorID     `json:"target_id,omitempty"`
	BlockPos     vec.Vec3    `json:"block_pos"`
	BlockName    string      `json:"block_name,omitempty"`
	HitPos       mgl64.Vec3  `json:"hit_pos"`
	Damage       float64     `json:"damage"`
	// Accepted - цель приняла урон
	Accepted  bool       `json:"accepted"`
	Knockback *Knockback `json:"knockback,omitempty"`
	Ignited   bool       `json:"ignited"`
	Piercing  bool       `json:"piercing"`
	// Removed - снаряд помечен на удаление после попадания
	Removed bool `json:"removed"`
	// Lodged - снаряд застрял в блоке
	Lodged bool `json:"lodged"`
}

// OutcomeSink принимает итоги попаданий (метрики, шина событий, журнал)
type OutcomeSink interface {
	RecordOutcome(o Outcome)
}

// OutcomeSinkFunc позволяет использовать функцию как OutcomeSink
type OutcomeSinkFunc func(o Outcome)

func (f OutcomeSinkFunc) RecordOutcome(o Outcome) { f(o) }

// MultiSink рассылает итоги нескольким получателям по порядку
type MultiSink []OutcomeSink

func (m MultiSink) RecordOutcome(o Outcome) {
	for _, s := range m {
		if s != nil {
			s.RecordOutcome(o)
		}
	}
}
