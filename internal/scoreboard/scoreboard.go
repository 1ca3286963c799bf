// Package scoreboard ведёт счёт стрелков по исходам попаданий.
// Хранилище выбирается конфигурацией: память, Redis, MariaDB/MySQL или MongoDB.
package scoreboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
)

// DefaultTimeout - ограничение времени на одну операцию с хранилищем
const DefaultTimeout = 2 * time.Second

// Score - накопленный счёт стрелка
type Score struct {
	Shooter   projectile.ActorID `json:"shooter"`
	ActorHits uint64             `json:"actor_hits"`
	BlockHits uint64             `json:"block_hits"`
	Damage    float64            `json:"damage"`
}

func (s *Score) merge(o Score) {
	s.ActorHits += o.ActorHits
	s.BlockHits += o.BlockHits
	s.Damage += o.Damage
}

// PartialWriteError - часть пачки не записана; остальные приращения уже применены
type PartialWriteError struct {
	Failed []projectile.ActorID
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: %d shooters failed: %v", len(e.Failed), e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// Repo определяет хранилище счёта.
// Add атомарно для каждого стрелка, но не для пачки целиком.
type Repo interface {
	// Add прибавляет приращения к счёту стрелков.
	// Если часть пачки записана, возвращается *PartialWriteError со списком незаписанных стрелков;
	// любая другая ошибка означает, что не записано ничего.
	Add(ctx context.Context, deltas []Score) error

	// Get возвращает счёт стрелка; false, если стрелок ещё не попадал
	Get(ctx context.Context, shooter projectile.ActorID) (Score, bool, error)

	// Top возвращает n лучших стрелков по урону (при равенстве - по возрастанию ID)
	Top(ctx context.Context, n int) ([]Score, error)

	// Reset удаляет весь счёт
	Reset(ctx context.Context) error

	Close() error
}

// Recorder копит приращения счёта за тик и записывает их в Repo пачкой.
// Реализует projectile.OutcomeSink и sim.Flusher.
type Recorder struct {
	repo    Repo
	timeout time.Duration

	mu      sync.Mutex
	pending map[projectile.ActorID]*Score
}

// NewRecorder создаёт накопитель счёта поверх repo
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{
		repo:    repo,
		timeout: DefaultTimeout,
		pending: make(map[projectile.ActorID]*Score),
	}
}

// Repo возвращает хранилище счёта
func (r *Recorder) Repo() Repo {
	return r.repo
}

// RecordOutcome учитывает исход; выстрелы без стрелка не считаются
func (r *Recorder) RecordOutcome(o projectile.Outcome) {
	if o.ShooterID == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.pending[o.ShooterID]
	if !ok {
		s = &Score{Shooter: o.ShooterID}
		r.pending[o.ShooterID] = s
	}
	if o.Kind == projectile.OutcomeBlock {
		s.BlockHits++
		return
	}
	s.ActorHits++
	if o.Accepted {
		s.Damage += o.Damage
	}
}

// Pending возвращает число стрелков с незаписанными приращениями
func (r *Recorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Flush записывает накопленные приращения.
// При ошибке незаписанные приращения возвращаются в очередь и попадут в следующую запись.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	if len(r.pending) == 0 {
		r.mu.Unlock()
		return nil
	}
	batch := r.pending
	r.pending = make(map[projectile.ActorID]*Score)
	r.mu.Unlock()

	deltas := make([]Score, 0, len(batch))
	for _, s := range batch {
		deltas = append(deltas, *s)
	}
	sort.Slice(deltas, func(i, j int) bool { return deltas[i].Shooter < deltas[j].Shooter })

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.repo.Add(ctx, deltas); err != nil {
		r.requeue(unwritten(deltas, err))
		return fmt.Errorf("scoreboard: %w", err)
	}

	logging.Trace("Счёт: записано приращений для %d стрелков", len(deltas))
	return nil
}

// unwritten отбирает приращения, которые Add не применил
func unwritten(deltas []Score, err error) []Score {
	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		return deltas
	}
	failed := make(map[projectile.ActorID]struct{}, len(partial.Failed))
	for _, id := range partial.Failed {
		failed[id] = struct{}{}
	}
	out := make([]Score, 0, len(partial.Failed))
	for _, d := range deltas {
		if _, ok := failed[d.Shooter]; ok {
			out = append(out, d)
		}
	}
	return out
}

func (r *Recorder) requeue(deltas []Score) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range deltas {
		if s, ok := r.pending[d.Shooter]; ok {
			s.merge(d)
			continue
		}
		d := d
		r.pending[d.Shooter] = &d
	}
}

// sortScores упорядочивает счёт по убыванию урона, затем по ID
func sortScores(scores []Score) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Damage != scores[j].Damage {
			return scores[i].Damage > scores[j].Damage
		}
		return scores[i].Shooter < scores[j].Shooter
	})
}
