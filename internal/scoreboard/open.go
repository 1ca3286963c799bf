package scoreboard

import (
	"context"
	"fmt"
)

// Имена хранилищ счёта в конфигурации
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
	BackendMongo  = "mongo"
)

// Config выбирает и настраивает хранилище счёта
type Config struct {
	Backend    string
	Redis      RedisConfig
	MySQLDSN   string
	MySQLTable string
	Mongo      MongoConfig
}

// Open создаёт хранилище по конфигурации; пустой Backend - память
func Open(ctx context.Context, cfg Config) (Repo, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemoryRepo(), nil
	case BackendRedis:
		return NewRedisRepo(ctx, cfg.Redis)
	case BackendMySQL:
		return NewMariaRepo(ctx, cfg.MySQLDSN, cfg.MySQLTable)
	case BackendMongo:
		return NewMongoRepo(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("unknown scoreboard backend %q", cfg.Backend)
	}
}
