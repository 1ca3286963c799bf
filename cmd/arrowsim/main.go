package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/arrow-physics/internal/api"
	"github.com/annel0/arrow-physics/internal/auth"
	"github.com/annel0/arrow-physics/internal/config"
	"github.com/annel0/arrow-physics/internal/eventbus"
	"github.com/annel0/arrow-physics/internal/journal"
	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/observability"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/scoreboard"
	"github.com/annel0/arrow-physics/internal/sim"
	"github.com/annel0/arrow-physics/internal/world"
	_ "github.com/annel0/arrow-physics/internal/world/block/implementations"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML-конфигурации (по умолчанию ENV ARROWSIM_CONFIG)")
		ticks      = flag.Int("ticks", -1, "число тиков: 0 - до сигнала, -1 - из конфигурации")
		seed       = flag.Int64("seed", 0, "сид мира и генератора случайных чисел; 0 - из конфигурации")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *ticks >= 0 {
		cfg.Simulation.Ticks = *ticks
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}

	if cfg.Logging.File {
		if err := logging.InitDefaultLogger("arrowsim"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
		defer logging.CloseDefaultLogger()
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		logging.Warn("%v, используется INFO", err)
	}
	logging.SetDefaultLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop, cfg); err != nil {
		logging.Error("❌ %v", err)
		stop()
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Симуляция остановлена")
}

// run собирает компоненты и работает до окончания симуляции или сигнала.
// stop отменяет ctx; его вызывает симуляция, когда отработает заданное число тиков.
func run(ctx context.Context, stop context.CancelFunc, cfg *config.Config) error {
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled)
	if err != nil {
		return fmt.Errorf("телеметрия: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// === Шина событий ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		js, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, cfg.EventBus.RetentionDuration())
		if err != nil {
			return fmt.Errorf("шина событий: %w", err)
		}
		bus = js
		logging.Info("📡 Шина событий: JetStream %s (stream=%s)", cfg.EventBus.URL, cfg.EventBus.Stream)
	} else {
		bus = eventbus.NewMemoryBus(cfg.EventBus.Buffer)
		logging.Info("📡 Шина событий: in-memory (buffer=%d)", cfg.EventBus.Buffer)
	}
	eventbus.Init(bus)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn("Ошибка закрытия шины событий: %v", err)
		}
	}()

	sub, err := eventbus.StartLoggingListener(ctx, bus)
	if err != nil {
		return fmt.Errorf("подписка на события: %w", err)
	}
	defer sub.Unsubscribe()

	exporter, err := eventbus.NewMetricsExporter(bus, reg)
	if err != nil {
		return fmt.Errorf("метрики шины: %w", err)
	}
	publisher := eventbus.NewOutcomePublisher(bus, cfg.Telemetry.ServiceName, cfg.EventBus.Buffer)

	// === Мир и симуляция ===
	gen := world.NewTerrainGenerator(cfg.Simulation.Seed)
	dim := world.NewDimension(gen)
	dim.SetDifficulty(cfg.Difficulty())

	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	shootingRange := newShootingRange(dim, gen, rng)

	simMetrics, err := sim.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("метрики симуляции: %w", err)
	}

	opts := sim.Options{
		DespawnTicks: cfg.Simulation.DespawnTicks,
		TickInterval: cfg.Simulation.TickInterval(),
		Sinks:        []projectile.OutcomeSink{publisher},
		Metrics:      simMetrics,
		Tracer:       observability.Tracer("github.com/annel0/arrow-physics/sim"),
		PreTick:      shootingRange.preTick,
	}

	var hitJournal *journal.Journal
	if cfg.Journal.Enabled {
		hitJournal, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("журнал попаданий: %w", err)
		}
		defer func() {
			if err := hitJournal.Close(); err != nil {
				logging.Warn("Ошибка закрытия журнала: %v", err)
			}
		}()
		opts.Sinks = append(opts.Sinks, hitJournal)
		opts.Flushers = append(opts.Flushers, hitJournal)
	}

	scores, err := scoreboard.Open(ctx, cfg.ScoreboardOptions())
	if err != nil {
		return fmt.Errorf("счёт стрелков: %w", err)
	}
	defer func() {
		if err := scores.Close(); err != nil {
			logging.Warn("Ошибка закрытия хранилища счёта: %v", err)
		}
	}()
	recorder := scoreboard.NewRecorder(scores)
	opts.Sinks = append(opts.Sinks, recorder)
	opts.Flushers = append(opts.Flushers, recorder)
	logging.Info("🏆 Счёт стрелков: %s", cfg.Scoreboard.Backend)

	engine := projectile.NewEngine(cfg.Engine(), dim, dim, rng)
	simulation := sim.New(dim, engine, opts)
	shootingRange.spawn = simulation.Spawn

	// === REST API ===
	tokens, err := auth.NewTokenService(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	if err != nil {
		return fmt.Errorf("токены: %w", err)
	}
	if cfg.Server.JWTSecret == "" {
		logging.Warn("server.jwt_secret не задан, токены действуют до перезапуска")
	}
	operator := auth.Operator{Name: cfg.Server.AdminUser, PasswordHash: cfg.Server.AdminPasswordHash}

	gin.SetMode(gin.ReleaseMode)
	server, err := api.NewRestServer(api.Config{
		Port:        fmt.Sprintf(":%d", cfg.Server.GetHTTPPort()),
		ServiceName: cfg.Telemetry.ServiceName,
		Sim:         simulation,
		Bus:         bus,
		Journal:     hitJournal,
		Registry:    reg,
		Scoreboard:  scores,
		Tokens:      tokens,
		Operator:    operator,
	})
	if err != nil {
		return fmt.Errorf("REST API: %w", err)
	}

	logging.Info("🎯 Запуск: тиков=%d tick_rate=%d сложность=%s сид=%d",
		cfg.Simulation.Ticks, cfg.Simulation.TickRate, cfg.Difficulty(), cfg.Simulation.Seed)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return simulation.Run(gctx, cfg.Simulation.Ticks)
	})
	g.Go(func() error { return publisher.Run(gctx) })
	g.Go(func() error { return exporter.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}

	if dropped := publisher.Dropped(); dropped > 0 {
		logging.Warn("Отброшено исходов при публикации: %d", dropped)
	}
	return nil
}
