// Package api отдаёт состояние симуляции по HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/arrow-physics/internal/auth"
	"github.com/annel0/arrow-physics/internal/eventbus"
	"github.com/annel0/arrow-physics/internal/journal"
	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/middleware"
	"github.com/annel0/arrow-physics/internal/scoreboard"
	"github.com/annel0/arrow-physics/internal/sim"
	"github.com/gin-gonic/gin"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// shutdownTimeout - сколько ждать завершения активных запросов при остановке
const shutdownTimeout = 5 * time.Second

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port        string               // адрес для запуска сервера, например ":8089"
	ServiceName string               // имя сервиса для трассировки и метрик
	Sim         *sim.Simulation      // обязательна
	Bus         eventbus.EventBus    // может быть nil
	Journal     *journal.Journal     // может быть nil
	Registry    *prometheus.Registry // nil - создаётся новый
	Scoreboard  scoreboard.Repo      // может быть nil
	Tokens      *auth.TokenService   // nil - административные маршруты отключены
	Operator    auth.Operator        // учётная запись для /api/auth/login
}

// RestServer представляет REST API сервер
type RestServer struct {
	router  *gin.Engine
	server  *http.Server
	sim     *sim.Simulation
	bus     eventbus.EventBus
	journal *journal.Journal
	scores  scoreboard.Repo
	metrics *ServerMetrics

	tokens   *auth.TokenService
	operator auth.Operator
}

// GenericResponse - общий формат ответа API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ProjectileView - снаряд в ответе /api/projectiles
type ProjectileView struct {
	ID       uint64     `json:"id"`
	Shooter  uint64     `json:"shooter,omitempty"`
	Position mgl64.Vec3 `json:"position"`
	Motion   mgl64.Vec3 `json:"motion"`
	Age      int        `json:"age"`
	Piercing bool       `json:"piercing"`
	Critical bool       `json:"critical"`
	Lodged   bool       `json:"lodged"`
	Struck   int        `json:"struck"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Sim == nil {
		return nil, errors.New("api: simulation is required")
	}
	if config.Port == "" {
		config.Port = ":8089"
	}
	if config.ServiceName == "" {
		config.ServiceName = "arrowsim"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.ServiceName))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw, err := middleware.NewPrometheusMiddleware(config.ServiceName, config.Registry)
	if err != nil {
		return nil, err
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Registry)

	rs := &RestServer{
		router:  router,
		sim:     config.Sim,
		bus:     config.Bus,
		journal: config.Journal,
		scores:  config.Scoreboard,
		metrics: NewServerMetrics(),

		tokens:   config.Tokens,
		operator: config.Operator,
	}
	rs.server = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	rs.setupRoutes()
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/stats", rs.handleStats)
		api.GET("/server", rs.handleServerInfo)
		api.GET("/projectiles", rs.handleProjectiles)
		api.GET("/effects", rs.handleEffects)
		api.GET("/hits", rs.handleHits)
		api.GET("/scoreboard", rs.handleScoreboard)
	}

	if rs.tokens != nil {
		api.POST("/auth/login", rs.handleLogin)

		admin := api.Group("/admin")
		admin.Use(rs.jwtMiddleware(), rs.adminMiddleware())
		{
			admin.PUT("/difficulty", rs.handleSetDifficulty)
			admin.DELETE("/scoreboard", rs.handleResetScoreboard)
		}
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает HTTP-обработчик сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Run запускает сервер и останавливает его при отмене контекста
func (rs *RestServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("REST API слушает %s", rs.server.Addr)
		errCh <- rs.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rs.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Info("REST API остановлен")
	return nil
}

// handleStats отдаёт счётчики симуляции, мира, шины и журнала
func (rs *RestServer) handleStats(c *gin.Context) {
	stats := map[string]interface{}{
		"simulation": rs.sim.Stats(),
		"world":      rs.sim.World().Stats(),
	}
	if rs.bus != nil {
		stats["event_bus"] = rs.bus.Metrics()
	}
	if rs.journal != nil {
		stats["journal"] = gin.H{
			"written": rs.journal.Written(),
			"pending": rs.journal.Pending(),
		}
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Статистика получена",
		Data:    stats,
	})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    rs.metrics.Snapshot(),
	})
}

func (rs *RestServer) handleProjectiles(c *gin.Context) {
	snapshot := rs.sim.Projectiles()
	views := make([]ProjectileView, 0, len(snapshot))
	for i := range snapshot {
		p := &snapshot[i]
		views = append(views, ProjectileView{
			ID:       uint64(p.ID),
			Shooter:  uint64(p.Shooter),
			Position: p.Position,
			Motion:   p.Motion,
			Age:      p.Age,
			Piercing: p.Piercing(),
			Critical: p.Critical,
			Lodged:   p.HitBlock(),
			Struck:   p.Ledger().Len(),
		})
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Снаряды",
		Data:    views,
	})
}

func (rs *RestServer) handleEffects(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Последние эффекты",
		Data:    rs.sim.World().RecentEffects(),
	})
}

// handleHits читает исходы попаданий из журнала за диапазон тиков ?from=&to=
func (rs *RestServer) handleHits(c *gin.Context) {
	if rs.journal == nil {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Журнал попаданий отключён",
		})
		return
	}

	from, err := parseTick(c.Query("from"), 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Некорректный параметр from"})
		return
	}
	to, err := parseTick(c.Query("to"), rs.sim.Stats().Tick)
	if err != nil || to < from {
		c.JSON(http.StatusBadRequest, GenericResponse{Success: false, Message: "Некорректный параметр to"})
		return
	}

	outcomes, err := rs.journal.Range(from, to)
	if err != nil {
		logging.Error("Ошибка чтения журнала: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: "Ошибка чтения журнала"})
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Попадания",
		Data:    outcomes,
	})
}

func parseTick(raw string, def uint64) (uint64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tick":   rs.sim.Stats().Tick,
		"time":   time.Now().Unix(),
	})
}
