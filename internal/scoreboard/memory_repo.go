package scoreboard

import (
	"context"
	"sync"

	"github.com/annel0/arrow-physics/internal/projectile"
)

// MemoryRepo хранит счёт в памяти процесса
type MemoryRepo struct {
	mu     sync.RWMutex
	scores map[projectile.ActorID]Score
}

// NewMemoryRepo создаёт пустое хранилище в памяти
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{scores: make(map[projectile.ActorID]Score)}
}

func (m *MemoryRepo) Add(ctx context.Context, deltas []Score) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range deltas {
		s := m.scores[d.Shooter]
		s.Shooter = d.Shooter
		s.merge(d)
		m.scores[d.Shooter] = s
	}
	return nil
}

func (m *MemoryRepo) Get(ctx context.Context, shooter projectile.ActorID) (Score, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[shooter]
	return s, ok, nil
}

func (m *MemoryRepo) Top(ctx context.Context, n int) ([]Score, error) {
	m.mu.RLock()
	all := make([]Score, 0, len(m.scores))
	for _, s := range m.scores {
		all = append(all, s)
	}
	m.mu.RUnlock()

	sortScores(all)
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (m *MemoryRepo) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.scores = make(map[projectile.ActorID]Score)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepo) Close() error { return nil }
