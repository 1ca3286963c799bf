package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/google/uuid"
)

// Типы событий попаданий
const (
	EventProjectileHitActor = "ProjectileHitActor"
	EventProjectileHitBlock = "ProjectileHitBlock"
)

// OutcomeVersion - версия схемы полезной нагрузки Outcome
const OutcomeVersion = 1

// EventType возвращает тип события для исхода попадания
func EventType(kind projectile.OutcomeKind) string {
	if kind == projectile.OutcomeBlock {
		return EventProjectileHitBlock
	}
	return EventProjectileHitActor
}

// NewOutcomeEnvelope упаковывает исход попадания в Envelope.
// Попадания в актёров важнее: они не отбрасываются при переполнении шины.
func NewOutcomeEnvelope(source string, o projectile.Outcome) (*Envelope, error) {
	payload, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal outcome: %w", err)
	}

	priority := 1
	if o.Kind == projectile.OutcomeActor {
		priority = HighPriority
	}

	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     EventType(o.Kind),
		Version:       OutcomeVersion,
		CorrelationID: strconv.FormatUint(uint64(o.ProjectileID), 10),
		Priority:      priority,
		Payload:       payload,
		Metadata: map[string]string{
			"tick":       strconv.FormatUint(o.Tick, 10),
			"projectile": strconv.FormatUint(uint64(o.ProjectileID), 10),
		},
	}, nil
}

// DecodeOutcome извлекает исход попадания из Envelope
func DecodeOutcome(ev *Envelope) (projectile.Outcome, error) {
	var o projectile.Outcome
	if ev.EventType != EventProjectileHitActor && ev.EventType != EventProjectileHitBlock {
		return o, fmt.Errorf("unexpected event type %q", ev.EventType)
	}
	if err := json.Unmarshal(ev.Payload, &o); err != nil {
		return o, fmt.Errorf("unmarshal outcome %s: %w", ev.ID, err)
	}
	return o, nil
}

// OutcomePublisher - projectile.OutcomeSink, публикующий исходы в шину
// из отдельной горутины, чтобы не блокировать тик.
// При переполнении очереди попадания в блоки отбрасываются,
// попадания в актёров уходят в неограниченный резерв.
type OutcomePublisher struct {
	bus    EventBus
	source string
	queue  chan projectile.Outcome

	overflowMu sync.Mutex
	overflow   []projectile.Outcome
	wake       chan struct{}

	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewOutcomePublisher создаёт публикатор с очередью заданного размера
func NewOutcomePublisher(bus EventBus, source string, buffer int) *OutcomePublisher {
	if buffer <= 0 {
		buffer = 1024
	}
	return &OutcomePublisher{
		bus:    bus,
		source: source,
		queue:  make(chan projectile.Outcome, buffer),
		wake:   make(chan struct{}, 1),
	}
}

// RecordOutcome ставит исход в очередь. При переполнении попадание в блок
// отбрасывается, попадание в актёра откладывается в резерв.
func (p *OutcomePublisher) RecordOutcome(o projectile.Outcome) {
	select {
	case p.queue <- o:
		return
	default:
	}
	if o.Kind != projectile.OutcomeActor {
		p.dropped.Add(1)
		return
	}
	p.overflowMu.Lock()
	p.overflow = append(p.overflow, o)
	p.overflowMu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// takeOverflow забирает накопленный резерв
func (p *OutcomePublisher) takeOverflow() []projectile.Outcome {
	p.overflowMu.Lock()
	defer p.overflowMu.Unlock()
	out := p.overflow
	p.overflow = nil
	return out
}

// Pending возвращает число исходов, ожидающих публикации
func (p *OutcomePublisher) Pending() int {
	p.overflowMu.Lock()
	defer p.overflowMu.Unlock()
	return len(p.queue) + len(p.overflow)
}

// Run публикует исходы до отмены контекста, затем отправляет остаток очереди
func (p *OutcomePublisher) Run(ctx context.Context) error {
	for {
		select {
		case o := <-p.queue:
			p.publish(ctx, o)
		case <-p.wake:
			for _, o := range p.takeOverflow() {
				p.publish(ctx, o)
			}
		case <-ctx.Done():
			p.drain()
			return nil
		}
	}
}

func (p *OutcomePublisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case o := <-p.queue:
			p.publish(ctx, o)
		default:
			for _, o := range p.takeOverflow() {
				p.publish(ctx, o)
			}
			return
		}
	}
}

func (p *OutcomePublisher) publish(ctx context.Context, o projectile.Outcome) {
	ev, err := NewOutcomeEnvelope(p.source, o)
	if err == nil {
		err = p.bus.Publish(ctx, ev)
	}
	if err != nil {
		p.failed.Add(1)
		logging.Warn("EventBus: не удалось опубликовать исход снаряда %d: %v", o.ProjectileID, err)
	}
}

// Dropped возвращает число попаданий в блоки, отброшенных из-за переполнения очереди
func (p *OutcomePublisher) Dropped() uint64 { return p.dropped.Load() }

// Failed возвращает число исходов, которые не удалось опубликовать
func (p *OutcomePublisher) Failed() uint64 { return p.failed.Load() }
