// Package sim продвигает снаряды и актёров мира по тикам.
package sim

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// VoidY - снаряды ниже этой высоты удаляются
const VoidY = -64.0

// Причины удаления снарядов
const (
	ReasonHit     = "hit"
	ReasonLodged  = "lodged"
	ReasonVoid    = "void"
	ReasonRemoved = "removed"
)

// Flusher - получатель исходов, записывающий их пакетом в конце тика
type Flusher interface {
	Flush() error
}

// Options - параметры симуляции
type Options struct {
	// DespawnTicks - через сколько тиков удаляется застрявшая стрела; 0 - никогда
	DespawnTicks int
	// TickInterval - пауза между тиками в Run; 0 - без ожидания
	TickInterval time.Duration
	// Sinks получают каждый исход попадания после учёта в метриках
	Sinks []projectile.OutcomeSink
	// Flushers сбрасываются по порядку в конце каждого тика
	Flushers []Flusher
	// Metrics может быть nil
	Metrics *Metrics
	// Tracer по умолчанию берётся из глобального провайдера
	Tracer trace.Tracer
	// PreTick вызывается после хода актёров и до движения снарядов; в нём можно вызывать Spawn
	PreTick func(tick uint64)
}

// Stats - счётчики симуляции
type Stats struct {
	Tick           uint64  `json:"tick"`
	Projectiles    int     `json:"projectiles"`
	Lodged         int     `json:"lodged"`
	ActorHits      uint64  `json:"actor_hits"`
	BlockHits      uint64  `json:"block_hits"`
	DamageDealt    float64 `json:"damage_dealt"`
	GeometryErrors uint64  `json:"geometry_errors"`
	Despawned      uint64  `json:"despawned"`
}

// Simulation владеет измерением, движком снарядов и живыми снарядами.
// Tick вызывается из одной горутины; Stats и Projectiles безопасны для чтения параллельно.
// Spawn нельзя вызывать из слушателей попаданий: они работают внутри тика.
type Simulation struct {
	world   *world.Dimension
	engine  *projectile.Engine
	opts    Options
	tracer  trace.Tracer
	sinks   projectile.MultiSink
	metrics *Metrics

	mu          sync.RWMutex // Снаряды; удерживается на время тика
	projectiles []*projectile.Projectile

	statsMu  sync.Mutex
	stats    Stats
	tickHits int
}

// New создаёт симуляцию и подключает себя получателем исходов движка
func New(w *world.Dimension, engine *projectile.Engine, opts Options) *Simulation {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/annel0/arrow-physics/internal/sim")
	}
	s := &Simulation{
		world:   w,
		engine:  engine,
		opts:    opts,
		tracer:  tracer,
		sinks:   projectile.MultiSink(opts.Sinks),
		metrics: opts.Metrics,
	}
	engine.SetOutcomeSink(s)
	return s
}

// World возвращает измерение симуляции
func (s *Simulation) World() *world.Dimension {
	return s.world
}

// Spawn добавляет снаряды в мир
func (s *Simulation) Spawn(ps ...*projectile.Projectile) {
	s.mu.Lock()
	s.projectiles = append(s.projectiles, ps...)
	count := len(s.projectiles)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.active.Set(float64(count))
	}
}

// Projectiles возвращает снимок состояния живых снарядов
func (s *Simulation) Projectiles() []projectile.Projectile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]projectile.Projectile, len(s.projectiles))
	for i, p := range s.projectiles {
		out[i] = *p
	}
	return out
}

// Stats возвращает счётчики симуляции
func (s *Simulation) Stats() Stats {
	s.statsMu.Lock()
	stats := s.stats
	s.statsMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	stats.Projectiles = len(s.projectiles)
	for _, p := range s.projectiles {
		if p.HitBlock() {
			stats.Lodged++
		}
	}
	return stats
}

// RecordOutcome учитывает исход попадания и передаёт его дальше
func (s *Simulation) RecordOutcome(o projectile.Outcome) {
	s.statsMu.Lock()
	s.tickHits++
	if o.Kind == projectile.OutcomeBlock {
		s.stats.BlockHits++
	} else {
		s.stats.ActorHits++
		if o.Accepted {
			s.stats.DamageDealt += o.Damage
		}
	}
	s.statsMu.Unlock()

	s.metrics.observeOutcome(o)
	s.sinks.RecordOutcome(o)
}

// Tick продвигает мир на один тик: актёры, PreTick, затем каждый снаряд
// (возраст, скорость, перемещение с попаданиями), затем удаление отработавших.
func (s *Simulation) Tick(ctx context.Context) error {
	start := time.Now()
	tick := s.world.AdvanceTick()

	_, span := s.tracer.Start(ctx, "sim.Tick", trace.WithAttributes(attribute.Int64("tick", int64(tick))))
	defer span.End()

	s.world.TickActors()
	if s.opts.PreTick != nil {
		s.opts.PreTick(tick)
	}

	s.statsMu.Lock()
	s.tickHits = 0
	s.statsMu.Unlock()

	s.mu.Lock()
	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		if reason, drop := s.step(p, tick); drop {
			s.despawn(p, reason)
			continue
		}
		kept = append(kept, p)
	}
	// Освобождаем ссылки на удалённые снаряды
	for i := len(kept); i < len(s.projectiles); i++ {
		s.projectiles[i] = nil
	}
	s.projectiles = kept
	s.mu.Unlock()

	s.statsMu.Lock()
	s.stats.Tick = tick
	hits := s.tickHits
	s.statsMu.Unlock()

	var errs []error
	for _, f := range s.opts.Flushers {
		if err := f.Flush(); err != nil {
			span.RecordError(err)
			logging.Error("Тик %d: ошибка сброса: %v", tick, err)
			errs = append(errs, err)
		}
	}
	err := errors.Join(errs...)
	if err != nil {
		span.SetStatus(codes.Error, "flush failed")
	}

	span.SetAttributes(
		attribute.Int("projectiles", len(kept)),
		attribute.Int("hits", hits),
	)
	if s.metrics != nil {
		s.metrics.active.Set(float64(len(kept)))
		s.metrics.tickDuration.Observe(time.Since(start).Seconds())
	}
	return err
}

// step обрабатывает один снаряд; возвращает причину удаления, если он отработал
func (s *Simulation) step(p *projectile.Projectile, tick uint64) (string, bool) {
	if p.Removed() {
		return ReasonRemoved, true
	}

	p.Age++
	prev := p.Motion
	s.engine.UpdateMotion(p, s.world.MediumAt(p.Position))
	if _, err := s.engine.Advance(p); err != nil {
		// Пропущенный тик не меняет движение
		p.Motion = prev
		if errors.Is(err, projectile.ErrMalformedGeometry) {
			s.statsMu.Lock()
			s.stats.GeometryErrors++
			s.statsMu.Unlock()
			if s.metrics != nil {
				s.metrics.geometryErrors.Inc()
			}
		}
		logging.Warn("Тик %d: снаряд %d пропущен: %v", tick, p.ID, err)
	}

	switch {
	case p.Removed():
		return ReasonHit, true
	case p.HitBlock() && s.opts.DespawnTicks > 0 && tick-p.LodgedTick() >= uint64(s.opts.DespawnTicks):
		return ReasonLodged, true
	case p.Position[1] < VoidY:
		return ReasonVoid, true
	}
	return "", false
}

func (s *Simulation) despawn(p *projectile.Projectile, reason string) {
	s.statsMu.Lock()
	s.stats.Despawned++
	s.statsMu.Unlock()

	if s.metrics != nil {
		s.metrics.despawned.WithLabelValues(reason).Inc()
	}
	logging.Trace("Снаряд %d удалён: %s", p.ID, reason)
}

// Run выполняет ticks тиков (0 - до отмены контекста) с паузой TickInterval.
// Отмена контекста не считается ошибкой.
func (s *Simulation) Run(ctx context.Context, ticks int) error {
	var ticker *time.Ticker
	if s.opts.TickInterval > 0 {
		ticker = time.NewTicker(s.opts.TickInterval)
		defer ticker.Stop()
	}

	logging.Info("Симуляция запущена: тиков=%d интервал=%s", ticks, s.opts.TickInterval)
	for done := 0; ticks <= 0 || done < ticks; done++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		if err := s.Tick(ctx); err != nil {
			return err
		}
	}

	stats := s.Stats()
	logging.Info("Симуляция завершена: тик=%d попаданий в актёров=%d в блоки=%d урон=%.1f",
		stats.Tick, stats.ActorHits, stats.BlockHits, stats.DamageDealt)
	return nil
}
