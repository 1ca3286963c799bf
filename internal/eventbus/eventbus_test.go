package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestMemoryBus_FilterByType(t *testing.T) {
	bus := NewMemoryBus(16)
	ctx := context.Background()

	var actors, all collector
	_, err := bus.Subscribe(ctx, Filter{Types: []string{EventProjectileHitActor}}, actors.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(ctx, Filter{}, all.handle)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "1", EventType: EventProjectileHitActor}))
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "2", EventType: EventProjectileHitBlock}))
	require.NoError(t, bus.Close())

	assert.Equal(t, 1, actors.len())
	assert.Equal(t, 2, all.len())

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(3), stats.Consumed)
	assert.ErrorIs(t, bus.Publish(ctx, &Envelope{}), ErrClosed)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	ctx := context.Background()

	var c collector
	sub, err := bus.Subscribe(ctx, Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: EventProjectileHitBlock}))
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, c.len())
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	// Шина без запущенного dispatchLoop: буфер не разбирается
	bus := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, 1),
		done:        make(chan struct{}),
	}
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, &Envelope{Priority: 1}))
	require.NoError(t, bus.Publish(ctx, &Envelope{Priority: 1}), "переполнение не считается ошибкой")
	assert.Equal(t, uint64(1), bus.Metrics().Dropped)
	assert.Equal(t, 1, bus.Metrics().InFlight)

	// Высокий приоритет ждёт место до отмены контекста
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(cctx, &Envelope{Priority: HighPriority}), context.DeadlineExceeded)

	go bus.dispatchLoop()
	require.NoError(t, bus.Close())
	assert.Equal(t, uint64(1), bus.Metrics().Published)
}

func TestOutcomeEnvelopeRoundTrip(t *testing.T) {
	out := projectile.Outcome{
		Kind:         projectile.OutcomeBlock,
		Tick:         12,
		ProjectileID: 1001,
		BlockPos:     vec.Vec3{X: 1, Y: 2, Z: 3},
		BlockName:    "Target",
		HitPos:       mgl64.Vec3{1, 2.5, 3.5},
		Lodged:       true,
	}

	ev, err := NewOutcomeEnvelope("arrowsim", out)
	require.NoError(t, err)
	assert.Equal(t, EventProjectileHitBlock, ev.EventType)
	assert.Equal(t, "1001", ev.CorrelationID)
	assert.Equal(t, "12", ev.Metadata["tick"])
	assert.Less(t, ev.Priority, HighPriority)
	assert.NotEmpty(t, ev.ID)

	decoded, err := DecodeOutcome(ev)
	require.NoError(t, err)
	assert.Equal(t, out, decoded)

	_, err = DecodeOutcome(&Envelope{EventType: "Other"})
	assert.Error(t, err)
}

func TestOutcomePublisher_DeliversAsynchronously(t *testing.T) {
	bus := NewMemoryBus(16)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventProjectileHitActor}}, c.handle)
	require.NoError(t, err)

	pub := NewOutcomePublisher(bus, "test", 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = pub.Run(ctx)
		close(done)
	}()

	pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeActor, ProjectileID: 5, TargetID: 6, Damage: 2})
	pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeBlock, ProjectileID: 5})

	require.Eventually(t, func() bool { return c.len() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done
	require.NoError(t, bus.Close())

	out, err := DecodeOutcome(c.events[0])
	require.NoError(t, err)
	assert.Equal(t, projectile.ActorID(6), out.TargetID)
	assert.Equal(t, uint64(0), pub.Dropped())
	assert.Equal(t, uint64(0), pub.Failed())
}

func TestOutcomePublisher_DropsOnlyBlockHitsWhenQueueFull(t *testing.T) {
	bus := NewMemoryBus(16)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventProjectileHitActor}}, c.handle)
	require.NoError(t, err)

	pub := NewOutcomePublisher(bus, "test", 1)
	pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeBlock, ProjectileID: 1})
	pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeBlock, ProjectileID: 2})
	pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeActor, ProjectileID: 3, TargetID: 7})
	pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeActor, ProjectileID: 4, TargetID: 8})
	assert.Equal(t, uint64(1), pub.Dropped(), "отброшено только попадание в блок")
	assert.Equal(t, 3, pub.Pending())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = pub.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.len() == 2 }, time.Second, time.Millisecond)
	cancel()
	<-done
	require.NoError(t, bus.Close())

	targets := make([]projectile.ActorID, 0, 2)
	for _, ev := range c.events {
		out, err := DecodeOutcome(ev)
		require.NoError(t, err)
		targets = append(targets, out.TargetID)
	}
	assert.ElementsMatch(t, []projectile.ActorID{7, 8}, targets)
	assert.Equal(t, 0, pub.Pending())
}

func TestOutcomePublisher_DrainFlushesOverflow(t *testing.T) {
	bus := NewMemoryBus(16)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{EventProjectileHitActor}}, c.handle)
	require.NoError(t, err)

	pub := NewOutcomePublisher(bus, "test", 1)
	for i := 0; i < 4; i++ {
		pub.RecordOutcome(projectile.Outcome{Kind: projectile.OutcomeActor, ProjectileID: projectile.ActorID(i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, pub.Run(ctx))

	require.Eventually(t, func() bool { return c.len() == 4 }, time.Second, time.Millisecond)
	require.NoError(t, bus.Close())
	assert.Equal(t, uint64(0), pub.Dropped())
}

func TestMetricsExporter_CountsDeltas(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	me, err := NewMetricsExporter(bus, reg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{}))
	require.NoError(t, bus.Publish(ctx, &Envelope{}))
	me.Collect()
	me.Collect()
	assert.Equal(t, 2.0, testutil.ToFloat64(me.published))

	require.NoError(t, bus.Publish(ctx, &Envelope{}))
	me.Collect()
	assert.Equal(t, 3.0, testutil.ToFloat64(me.published))

	_, err = NewMetricsExporter(bus, reg)
	assert.Error(t, err, "повторная регистрация отклоняется")
	require.NoError(t, bus.Close())
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.ProjectileHitActor", Subject(EventType(projectile.OutcomeActor)))
	assert.Equal(t, "events.ProjectileHitBlock", Subject(EventType(projectile.OutcomeBlock)))
}

func TestGlobalPublishWithoutBus(t *testing.T) {
	Init(nil)
	assert.NoError(t, Publish(context.Background(), &Envelope{}))
	assert.Nil(t, Global())
}
