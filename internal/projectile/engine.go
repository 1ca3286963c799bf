package projectile

import (
	"errors"
	"sync"

	"github.com/annel0/arrow-physics/internal/physics"
)

// ErrMalformedGeometry возвращается, если форма блока или коробка актёра некорректна.
// Снаряд при этом не изменяется.
var ErrMalformedGeometry = errors.New("malformed geometry")

// Config - параметры движка снарядов
type Config struct {
	Gravity float64
	Drag    physics.Drag
	// ShooterGraceTicks - пока возраст снаряда не больше этого значения, стрелок не поражается
	ShooterGraceTicks int
	DefaultKnockback  float64
	ShakeTicks        int
	FireTicks         int
}

// DefaultConfig возвращает параметры стрелы по умолчанию
func DefaultConfig() Config {
	return Config{
		Gravity:           0.05,
		Drag:              physics.Drag{Air: 0.01, Liquid: 0.4},
		ShooterGraceTicks: 10,
		DefaultKnockback:  DefaultKnockback,
		ShakeTicks:        ShakeTicks,
		FireTicks:         FireTicks,
	}
}

// Engine применяет физику снарядов и разрешает попадания.
// Вызывается из потока тика; методы не блокируются.
type Engine struct {
	cfg     Config
	world   World
	effects Effects
	rng     Random

	mu        sync.RWMutex
	listeners []HitListener
	sink      OutcomeSink
}

// NewEngine создаёт движок над миром w
func NewEngine(cfg Config, w World, effects Effects, rng Random) *Engine {
	return &Engine{
		cfg:     cfg,
		world:   w,
		effects: effects,
		rng:     rng,
	}
}

// Config возвращает текущие параметры движка
func (e *Engine) Config() Config {
	return e.cfg
}

// AddListener регистрирует слушателя событий попадания
func (e *Engine) AddListener(l HitListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// SetOutcomeSink задаёт получателя итогов попаданий (nil отключает)
func (e *Engine) SetOutcomeSink(s OutcomeSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = s
}

// fireHitEvent предлагает событие слушателям; false - событие отменено
func (e *Engine) fireHitEvent(ev *HitEvent) bool {
	e.mu.RLock()
	listeners := e.listeners
	e.mu.RUnlock()

	for _, l := range listeners {
		l.OnProjectileHit(ev)
	}
	return !ev.Cancelled()
}

func (e *Engine) record(o Outcome) {
	e.mu.RLock()
	sink := e.sink
	e.mu.RUnlock()

	if sink != nil {
		sink.RecordOutcome(o)
	}
}
