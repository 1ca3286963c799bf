package api

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/arrow-physics/internal/eventbus"
	"github.com/annel0/arrow-physics/internal/journal"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/sim"
	"github.com/annel0/arrow-physics/internal/world"
	_ "github.com/annel0/arrow-physics/internal/world/block/implementations"
	"github.com/annel0/arrow-physics/internal/world/entity"
	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	server  *RestServer
	sim     *sim.Simulation
	journal *journal.Journal
}

func newFixture(t *testing.T, withJournal bool) *fixture {
	t.Helper()

	d := world.NewDimension(nil)
	engine := projectile.NewEngine(projectile.DefaultConfig(), d, d, rand.New(rand.NewSource(7)))

	var j *journal.Journal
	opts := sim.Options{}
	if withJournal {
		var err error
		j, err = journal.OpenInMemory()
		require.NoError(t, err)
		t.Cleanup(func() { _ = j.Close() })
		opts.Sinks = []projectile.OutcomeSink{j}
		opts.Flushers = []sim.Flusher{j}
	}
	s := sim.New(d, engine, opts)

	bus := eventbus.NewMemoryBus(16)
	t.Cleanup(func() { _ = bus.Close() })

	rs, err := NewRestServer(Config{Sim: s, Bus: bus, Journal: j})
	require.NoError(t, err)
	return &fixture{server: rs, sim: s, journal: j}
}

// shootMob выпускает стрелу в моба и прогоняет три тика; попадание на втором тике
func (f *fixture) shootMob(t *testing.T) {
	t.Helper()
	d := f.sim.World()
	d.AddActor(entity.NewMob(d.NextActorID(), mgl64.Vec3{4, 0, 0.5}, 20))
	f.sim.Spawn(projectile.NewArrow(d.NextActorID(), mgl64.Vec3{0.5, 1.5, 0.5}, mgl64.Vec3{2, 0, 0}))
	require.NoError(t, f.sim.Run(context.Background(), 3))
}

func (f *fixture) get(t *testing.T, path string) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var resp GenericResponse
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestNewRestServer_RequiresSimulation(t *testing.T) {
	_, err := NewRestServer(Config{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, false)
	w, _ := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestStats(t *testing.T) {
	f := newFixture(t, true)
	f.shootMob(t)

	w, resp := f.get(t, "/api/stats")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	simStats := data["simulation"].(map[string]interface{})
	assert.Equal(t, 1.0, simStats["actor_hits"])
	assert.Equal(t, 3.0, simStats["tick"])
	assert.Contains(t, data, "world")
	assert.Contains(t, data, "event_bus")
	assert.Equal(t, 1.0, data["journal"].(map[string]interface{})["written"])
}

func TestProjectiles(t *testing.T) {
	f := newFixture(t, false)
	d := f.sim.World()
	f.sim.Spawn(projectile.NewArrow(d.NextActorID(), mgl64.Vec3{0, 10, 0}, mgl64.Vec3{1, 0, 0}))

	w, resp := f.get(t, "/api/projectiles")
	require.Equal(t, http.StatusOK, w.Code)
	views, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, views, 1)
	assert.Equal(t, false, views[0].(map[string]interface{})["lodged"])
}

func TestHits(t *testing.T) {
	f := newFixture(t, true)
	f.shootMob(t)

	w, resp := f.get(t, "/api/hits?from=2&to=2")
	require.Equal(t, http.StatusOK, w.Code)
	hits, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, hits, 1)
	assert.Equal(t, 2.0, hits[0].(map[string]interface{})["tick"])

	w, resp = f.get(t, "/api/hits?from=3")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, resp.Data, "на третьем тике попаданий не было")
}

func TestHits_BadRange(t *testing.T) {
	f := newFixture(t, true)

	w, _ := f.get(t, "/api/hits?from=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.get(t, "/api/hits?from=5&to=1")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHits_JournalDisabled(t *testing.T) {
	f := newFixture(t, false)
	w, resp := f.get(t, "/api/hits")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestEffects(t *testing.T) {
	f := newFixture(t, false)
	f.shootMob(t)

	w, resp := f.get(t, "/api/effects")
	require.Equal(t, http.StatusOK, w.Code)
	effects, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, effects, 1, "один звук попадания")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, false)
	f.get(t, "/health")

	w, _ := f.get(t, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arrowsim_http_request_duration_seconds")
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", formatUptime(5e9))
	assert.Equal(t, "1м 5с", formatUptime(65e9))
	assert.Equal(t, "1д 1ч 0м 0с", formatUptime(25*3600e9))
}
