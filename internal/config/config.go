package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/annel0/arrow-physics/internal/scoreboard"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Physics    PhysicsConfig    `yaml:"physics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Server     ServerConfig     `yaml:"server"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Journal    JournalConfig    `yaml:"journal"`
	Scoreboard ScoreboardConfig `yaml:"scoreboard"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PhysicsConfig - параметры полёта и попаданий стрел
type PhysicsConfig struct {
	Gravity           float64 `yaml:"gravity"`
	DragAir           float64 `yaml:"drag_air"`
	DragLiquid        float64 `yaml:"drag_liquid"`
	ShooterGraceTicks int     `yaml:"shooter_grace_ticks"`
	MaxPierceLevel    int     `yaml:"max_pierce_level"`
	DefaultKnockback  float64 `yaml:"default_knockback"`
	BaseDamage        float64 `yaml:"base_damage"`
}

// SimulationConfig - параметры цикла тиков
type SimulationConfig struct {
	TickRate     int    `yaml:"tick_rate"` // Тиков в секунду; 0 - без ожидания
	Ticks        int    `yaml:"ticks"`     // 0 - до сигнала завершения
	DespawnTicks int    `yaml:"despawn_ticks"`
	Seed         int64  `yaml:"seed"`
	Difficulty   string `yaml:"difficulty"`
}

type ServerConfig struct {
	HTTPPort int `yaml:"http_port"`

	// Вход оператора; без хеша пароля админ-маршруты недоступны
	JWTSecret         string        `yaml:"jwt_secret"` // base64; пусто - случайный ключ на время процесса
	TokenTTL          time.Duration `yaml:"token_ttl"`
	AdminUser         string        `yaml:"admin_user"`
	AdminPasswordHash string        `yaml:"admin_password_hash"` // bcrypt
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // Пусто - in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ScoreboardConfig - хранилище счёта стрелков
type ScoreboardConfig struct {
	Backend         string `yaml:"backend"` // memory, redis, mysql, mongo
	RedisAddr       string `yaml:"redis_addr"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	RedisPrefix     string `yaml:"redis_prefix"`
	MySQLDSN        string `yaml:"mysql_dsn"`
	MySQLTable      string `yaml:"mysql_table"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// Значения по умолчанию
const (
	DefaultTickRate     = 20
	DefaultDespawnTicks = 1200
	DefaultHTTPPort     = 8089
	DefaultStream       = "EVENTS"
	DefaultRetention    = 24
	DefaultBuffer       = 1024
	DefaultJournalPath  = "data"
	DefaultServiceName  = "arrowsim"
	DefaultLogLevel     = "INFO"
	DefaultAdminUser    = "admin"
)

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	cfg := &Config{}
	cfg.Simulation.TickRate = DefaultTickRate
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults заполняет нулевые значения значениями по умолчанию
func (c *Config) ApplyDefaults() {
	phys := projectile.DefaultConfig()
	setFloat(&c.Physics.Gravity, phys.Gravity)
	setFloat(&c.Physics.DragAir, phys.Drag.Air)
	setFloat(&c.Physics.DragLiquid, phys.Drag.Liquid)
	setInt(&c.Physics.ShooterGraceTicks, phys.ShooterGraceTicks)
	setInt(&c.Physics.MaxPierceLevel, projectile.MaxPierceLevel)
	setFloat(&c.Physics.DefaultKnockback, phys.DefaultKnockback)
	setFloat(&c.Physics.BaseDamage, projectile.DefaultBaseDamage)

	setInt(&c.Simulation.DespawnTicks, DefaultDespawnTicks)
	if c.Simulation.Difficulty == "" {
		c.Simulation.Difficulty = projectile.DifficultyNormal.String()
	}

	setInt(&c.EventBus.Retention, DefaultRetention)
	setInt(&c.EventBus.Buffer, DefaultBuffer)
	if c.EventBus.Stream == "" {
		c.EventBus.Stream = DefaultStream
	}
	if c.Scoreboard.Backend == "" {
		c.Scoreboard.Backend = scoreboard.BackendMemory
	}
	if c.Server.AdminUser == "" {
		c.Server.AdminUser = DefaultAdminUser
	}
	if c.Journal.Path == "" {
		c.Journal.Path = DefaultJournalPath
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func setFloat(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

// Validate проверяет значения, которые нельзя исправить значением по умолчанию
func (c *Config) Validate() error {
	if c.Simulation.TickRate < 0 {
		return fmt.Errorf("simulation.tick_rate must be >= 0, got %d", c.Simulation.TickRate)
	}
	if c.Physics.DragAir < 0 || c.Physics.DragAir >= 1 || c.Physics.DragLiquid < 0 || c.Physics.DragLiquid >= 1 {
		return fmt.Errorf("physics drag must be in [0, 1)")
	}
	if c.Physics.MaxPierceLevel < 0 || c.Physics.MaxPierceLevel > projectile.MaxPierceLevel {
		return fmt.Errorf("physics.max_pierce_level must be in [0, %d], got %d", projectile.MaxPierceLevel, c.Physics.MaxPierceLevel)
	}
	if _, ok := projectile.ParseDifficulty(c.Simulation.Difficulty); !ok {
		return fmt.Errorf("unknown difficulty %q", c.Simulation.Difficulty)
	}
	switch c.Scoreboard.Backend {
	case scoreboard.BackendMemory:
	case scoreboard.BackendRedis:
		if c.Scoreboard.RedisAddr == "" {
			return fmt.Errorf("scoreboard.redis_addr is required for redis backend")
		}
	case scoreboard.BackendMySQL:
		if c.Scoreboard.MySQLDSN == "" {
			return fmt.Errorf("scoreboard.mysql_dsn is required for mysql backend")
		}
	case scoreboard.BackendMongo:
		if c.Scoreboard.MongoURI == "" {
			return fmt.Errorf("scoreboard.mongo_uri is required for mongo backend")
		}
	default:
		return fmt.Errorf("unknown scoreboard backend %q", c.Scoreboard.Backend)
	}
	if c.Server.TokenTTL < 0 {
		return fmt.Errorf("server.token_ttl must be >= 0")
	}
	return nil
}

// Engine возвращает параметры движка снарядов
func (c *Config) Engine() projectile.Config {
	cfg := projectile.DefaultConfig()
	cfg.Gravity = c.Physics.Gravity
	cfg.Drag.Air = c.Physics.DragAir
	cfg.Drag.Liquid = c.Physics.DragLiquid
	cfg.ShooterGraceTicks = c.Physics.ShooterGraceTicks
	cfg.DefaultKnockback = c.Physics.DefaultKnockback
	return cfg
}

// ScoreboardOptions возвращает настройки хранилища счёта
func (c *Config) ScoreboardOptions() scoreboard.Config {
	sc := c.Scoreboard
	return scoreboard.Config{
		Backend: sc.Backend,
		Redis: scoreboard.RedisConfig{
			Addr:      sc.RedisAddr,
			Password:  sc.RedisPassword,
			DB:        sc.RedisDB,
			KeyPrefix: sc.RedisPrefix,
		},
		MySQLDSN:   sc.MySQLDSN,
		MySQLTable: sc.MySQLTable,
		Mongo: scoreboard.MongoConfig{
			URI:        sc.MongoURI,
			Database:   sc.MongoDatabase,
			Collection: sc.MongoCollection,
		},
	}
}

// Difficulty возвращает разобранную сложность мира
func (c *Config) Difficulty() projectile.Difficulty {
	d, _ := projectile.ParseDifficulty(c.Simulation.Difficulty)
	return d
}

// TickInterval возвращает длительность тика; 0 - без ожидания
func (s *SimulationConfig) TickInterval() time.Duration {
	if s.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(s.TickRate)
}

// RetentionDuration возвращает срок хранения событий в стриме
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// GetHTTPPort возвращает порт HTTP API с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "ARROWSIM_HTTP_PORT", DefaultHTTPPort)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", путь берётся из ENV ARROWSIM_CONFIG; без файла возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("ARROWSIM_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	// Без явного значения tick_rate используется 20 тиков в секунду
	cfg.Simulation.TickRate = DefaultTickRate
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
