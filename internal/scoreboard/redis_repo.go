package scoreboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/go-redis/redis/v8"
)

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Addr      string // Адрес Redis сервера
	Password  string // Пароль (пустой если не требуется)
	DB        int    // Номер базы данных
	KeyPrefix string // Префикс для ключей
}

// DefaultRedisConfig возвращает конфигурацию по умолчанию
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		KeyPrefix: "arrowsim:score:",
	}
}

// Поля хэша счёта стрелка
const (
	fieldActorHits = "actor_hits"
	fieldBlockHits = "block_hits"
	fieldDamage    = "damage"
)

// RedisRepo хранит счёт каждого стрелка в хэше <prefix><id>,
// а рейтинг по урону - в отсортированном множестве <prefix>top.
type RedisRepo struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRepo подключается к Redis и проверяет соединение
func NewRedisRepo(ctx context.Context, cfg RedisConfig) (*RedisRepo, error) {
	def := DefaultRedisConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = def.KeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.Info("🔴 Счёт хранится в Redis %s (prefix=%s)", cfg.Addr, cfg.KeyPrefix)
	return &RedisRepo{client: client, keyPrefix: cfg.KeyPrefix}, nil
}

func (r *RedisRepo) key(shooter projectile.ActorID) string {
	return r.keyPrefix + strconv.FormatUint(uint64(shooter), 10)
}

func (r *RedisRepo) topKey() string {
	return r.keyPrefix + "top"
}

// cmdsPerShooter - число команд транзакции на одного стрелка
const cmdsPerShooter = 4

// Add прибавляет приращения одной транзакцией MULTI/EXEC.
// Redis не откатывает транзакцию при ошибке отдельной команды, поэтому
// такие стрелки возвращаются в *PartialWriteError.
func (r *RedisRepo) Add(ctx context.Context, deltas []Score) error {
	if len(deltas) == 0 {
		return nil
	}
	cmds, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range deltas {
			key := r.key(d.Shooter)
			pipe.HIncrBy(ctx, key, fieldActorHits, int64(d.ActorHits))
			pipe.HIncrBy(ctx, key, fieldBlockHits, int64(d.BlockHits))
			pipe.HIncrByFloat(ctx, key, fieldDamage, d.Damage)
			pipe.ZIncrBy(ctx, r.topKey(), d.Damage, strconv.FormatUint(uint64(d.Shooter), 10))
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if failed, partial := failedInTx(deltas, cmds); partial {
		return &PartialWriteError{Failed: failed, Err: err}
	}
	return fmt.Errorf("failed to execute batch: %w", err)
}

// failedInTx разбирает результаты транзакции по стрелкам.
// partial == false, если не выполнилась ни одна команда (ошибка соединения, отказ EXEC).
// Стрелок считается незаписанным, только если все его команды завершились ошибкой:
// при частичном применении повтор удвоил бы уже записанные поля.
func failedInTx(deltas []Score, cmds []redis.Cmder) (failed []projectile.ActorID, partial bool) {
	if len(cmds) != len(deltas)*cmdsPerShooter {
		return nil, false
	}
	for i, d := range deltas {
		errs := 0
		for _, cmd := range cmds[i*cmdsPerShooter : (i+1)*cmdsPerShooter] {
			if cmd.Err() != nil {
				errs++
			}
		}
		switch errs {
		case 0:
			partial = true
		case cmdsPerShooter:
			failed = append(failed, d.Shooter)
		default:
			partial = true
			logging.Warn("Redis: счёт стрелка %d записан частично", d.Shooter)
		}
	}
	return failed, partial
}

func (r *RedisRepo) Get(ctx context.Context, shooter projectile.ActorID) (Score, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.key(shooter)).Result()
	if err != nil {
		return Score{}, false, fmt.Errorf("failed to get score: %w", err)
	}
	if len(fields) == 0 {
		return Score{}, false, nil
	}
	s, err := parseScore(shooter, fields)
	if err != nil {
		return Score{}, false, err
	}
	return s, true, nil
}

// Top читает рейтинг из множества и подгружает хэши пайплайном.
// Равные очки множество упорядочивает по имени в обратном порядке, поэтому
// берутся все стрелки с уроном не ниже n-го, а обрезка делается после сортировки.
func (r *RedisRepo) Top(ctx context.Context, n int) ([]Score, error) {
	if n == 0 {
		return []Score{}, nil
	}

	var members []string
	var err error
	if n < 0 {
		members, err = r.client.ZRevRange(ctx, r.topKey(), 0, -1).Result()
	} else {
		members, err = r.topMembers(ctx, n)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	ids := make([]projectile.ActorID, len(members))
	cmds := make([]*redis.StringStringMapCmd, len(members))
	pipe := r.client.Pipeline()
	for i, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad ranking member %q: %w", m, err)
		}
		ids[i] = projectile.ActorID(id)
		cmds[i] = pipe.HGetAll(ctx, r.key(ids[i]))
	}
	if len(cmds) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to get scores: %w", err)
		}
	}

	scores := make([]Score, 0, len(cmds))
	for i, cmd := range cmds {
		s, err := parseScore(ids[i], cmd.Val())
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	sortScores(scores)
	if n > 0 && len(scores) > n {
		scores = scores[:n]
	}
	return scores, nil
}

// topMembers возвращает стрелков с уроном не ниже n-го места, включая всех равных ему
func (r *RedisRepo) topMembers(ctx context.Context, n int) ([]string, error) {
	nth, err := r.client.ZRevRangeWithScores(ctx, r.topKey(), int64(n-1), int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(nth) == 0 {
		// Участников меньше n
		return r.client.ZRevRange(ctx, r.topKey(), 0, -1).Result()
	}
	return r.client.ZRevRangeByScore(ctx, r.topKey(), &redis.ZRangeBy{
		Min: strconv.FormatFloat(nth[0].Score, 'g', -1, 64),
		Max: "+inf",
	}).Result()
}

// Reset удаляет все ключи с префиксом счёта
func (r *RedisRepo) Reset(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepo) Close() error {
	return r.client.Close()
}

func parseScore(shooter projectile.ActorID, fields map[string]string) (Score, error) {
	s := Score{Shooter: shooter}
	var err error
	if v, ok := fields[fieldActorHits]; ok {
		if s.ActorHits, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Score{}, fmt.Errorf("bad %s for %d: %w", fieldActorHits, shooter, err)
		}
	}
	if v, ok := fields[fieldBlockHits]; ok {
		if s.BlockHits, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Score{}, fmt.Errorf("bad %s for %d: %w", fieldBlockHits, shooter, err)
		}
	}
	if v, ok := fields[fieldDamage]; ok {
		if s.Damage, err = strconv.ParseFloat(v, 64); err != nil {
			return Score{}, fmt.Errorf("bad %s for %d: %w", fieldDamage, shooter, err)
		}
	}
	return s, nil
}
