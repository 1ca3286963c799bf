package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annel0/arrow-physics/internal/auth"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/scoreboard"
	"github.com/annel0/arrow-physics/internal/sim"
	"github.com/annel0/arrow-physics/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	server *RestServer
	dim    *world.Dimension
	scores *scoreboard.MemoryRepo
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	d := world.NewDimension(nil)
	engine := projectile.NewEngine(projectile.DefaultConfig(), d, d, rand.New(rand.NewSource(1)))
	s := sim.New(d, engine, sim.Options{})

	tokens, err := auth.NewTokenService("", 0)
	require.NoError(t, err)
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)

	scores := scoreboard.NewMemoryRepo()
	rs, err := NewRestServer(Config{
		Sim:        s,
		Scoreboard: scores,
		Tokens:     tokens,
		Operator:   auth.Operator{Name: "admin", PasswordHash: hash},
	})
	require.NoError(t, err)
	return &adminFixture{server: rs, dim: d, scores: scores}
}

func (f *adminFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(w, req)
	return w
}

func (f *adminFixture) login(t *testing.T) string {
	t.Helper()
	w := f.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAdminFixture(t)
	w := f.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Username: "admin", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_RequiresToken(t *testing.T) {
	f := newAdminFixture(t)

	w := f.do(http.MethodPut, "/api/admin/difficulty", "", DifficultyRequest{Difficulty: "hard"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(http.MethodPut, "/api/admin/difficulty", "garbage", DifficultyRequest{Difficulty: "hard"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdmin_RejectsNonAdminToken(t *testing.T) {
	f := newAdminFixture(t)
	token, err := f.server.tokens.Issue("viewer", false)
	require.NoError(t, err)

	w := f.do(http.MethodDelete, "/api/admin/scoreboard", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdmin_SetDifficulty(t *testing.T) {
	f := newAdminFixture(t)
	token := f.login(t)

	w := f.do(http.MethodPut, "/api/admin/difficulty", token, DifficultyRequest{Difficulty: "hard"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, projectile.DifficultyHard, f.dim.Difficulty())

	w = f.do(http.MethodPut, "/api/admin/difficulty", token, DifficultyRequest{Difficulty: "nightmare"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreboard_TopAndReset(t *testing.T) {
	f := newAdminFixture(t)
	require.NoError(t, f.scores.Add(context.Background(), []scoreboard.Score{
		{Shooter: 1, ActorHits: 1, Damage: 2},
		{Shooter: 2, ActorHits: 2, Damage: 7},
	}))

	w := f.do(http.MethodGet, "/api/scoreboard?top=1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []scoreboard.Score `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, projectile.ActorID(2), resp.Data[0].Shooter)

	w = f.do(http.MethodGet, "/api/scoreboard?top=-3", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(http.MethodDelete, "/api/admin/scoreboard", f.login(t), nil)
	require.Equal(t, http.StatusOK, w.Code)
	top, err := f.scores.Top(context.Background(), -1)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestAdminRoutesDisabledWithoutTokens(t *testing.T) {
	f := newFixture(t, false)
	w, _ := f.get(t, "/api/scoreboard")
	assert.Equal(t, http.StatusNotFound, w.Code)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
