package scoreboard

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	_ "github.com/go-sql-driver/mysql"
)

// DefaultMariaTable - таблица счёта по умолчанию
const DefaultMariaTable = "shooter_scores"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// MariaRepo реализует Repo для MariaDB/MySQL.
// Приращения применяются через INSERT ... ON DUPLICATE KEY UPDATE в одной транзакции.
type MariaRepo struct {
	db    *sql.DB
	table string
}

// NewMariaRepo подключается к базе и создаёт таблицу, если её нет.
// dsn - строка подключения (user:pass@tcp(host:port)/dbname).
func NewMariaRepo(ctx context.Context, dsn, table string) (*MariaRepo, error) {
	if table == "" {
		table = DefaultMariaTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("недопустимое имя таблицы %q", table)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	repo := &MariaRepo{db: db, table: table}
	if err := repo.createTable(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Info("🐬 Счёт хранится в MariaDB (таблица %s)", table)
	return repo, nil
}

func (r *MariaRepo) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			shooter    BIGINT UNSIGNED PRIMARY KEY,
			actor_hits BIGINT UNSIGNED NOT NULL DEFAULT 0,
			block_hits BIGINT UNSIGNED NOT NULL DEFAULT 0,
			damage     DOUBLE          NOT NULL DEFAULT 0,
			updated_at TIMESTAMP       DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE       CURRENT_TIMESTAMP,
			INDEX idx_damage (damage)
		) ENGINE=InnoDB
	`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы %s: %w", r.table, err)
	}
	return nil
}

func (r *MariaRepo) Add(ctx context.Context, deltas []Score) error {
	if len(deltas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (shooter, actor_hits, block_hits, damage)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			actor_hits = actor_hits + VALUES(actor_hits),
			block_hits = block_hits + VALUES(block_hits),
			damage     = damage + VALUES(damage)
	`, r.table))
	if err != nil {
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}
	defer stmt.Close()

	for _, d := range deltas {
		if _, err := stmt.ExecContext(ctx, uint64(d.Shooter), d.ActorHits, d.BlockHits, d.Damage); err != nil {
			return fmt.Errorf("ошибка сохранения счёта стрелка %d: %w", d.Shooter, err)
		}
	}
	return tx.Commit()
}

func (r *MariaRepo) Get(ctx context.Context, shooter projectile.ActorID) (Score, bool, error) {
	query := fmt.Sprintf(`SELECT actor_hits, block_hits, damage FROM %s WHERE shooter = ?`, r.table)

	s := Score{Shooter: shooter}
	err := r.db.QueryRowContext(ctx, query, uint64(shooter)).Scan(&s.ActorHits, &s.BlockHits, &s.Damage)
	if err == sql.ErrNoRows {
		return Score{}, false, nil
	}
	if err != nil {
		return Score{}, false, fmt.Errorf("ошибка загрузки счёта стрелка %d: %w", shooter, err)
	}
	return s, true, nil
}

func (r *MariaRepo) Top(ctx context.Context, n int) ([]Score, error) {
	query := fmt.Sprintf(`SELECT shooter, actor_hits, block_hits, damage FROM %s ORDER BY damage DESC, shooter ASC`, r.table)
	args := []interface{}{}
	if n >= 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения рейтинга: %w", err)
	}
	defer rows.Close()

	scores := []Score{}
	for rows.Next() {
		var s Score
		var shooter uint64
		if err := rows.Scan(&shooter, &s.ActorHits, &s.BlockHits, &s.Damage); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки рейтинга: %w", err)
		}
		s.Shooter = projectile.ActorID(shooter)
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func (r *MariaRepo) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, r.table))
	return err
}

func (r *MariaRepo) Close() error {
	return r.db.Close()
}
