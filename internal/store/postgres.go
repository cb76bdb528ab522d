package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/grindlog/internal/progress"
)

// PoolConfig sizes the postgres connection pool.
type PoolConfig struct {
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// NewPool parses dsn and opens a pgx connection pool.
func NewPool(ctx context.Context, dsn string, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}
	return pool, nil
}

// PostgresStore keeps each user's document as a JSONB row.
type PostgresStore struct {
	pool *pgxpool.Pool
	seed progress.Seed
}

// OpenPostgres connects to dsn and creates the progress and activity tables.
func OpenPostgres(ctx context.Context, dsn string, cfg PoolConfig, seed progress.Seed) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	pool, err := NewPool(ctx, dsn, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	if err := migratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &PostgresStore{pool: pool, seed: seed}, nil
}

func migratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{`
		CREATE TABLE IF NOT EXISTS progress (
			user_id    TEXT PRIMARY KEY,
			document   JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, `
		CREATE TABLE IF NOT EXISTS activity (
			seq         BIGSERIAL PRIMARY KEY,
			user_id     TEXT NOT NULL,
			kind        TEXT NOT NULL,
			date        TEXT NOT NULL DEFAULT '',
			problem     INTEGER NOT NULL DEFAULT 0,
			link        TEXT NOT NULL DEFAULT '',
			detail      TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS activity_user_seq ON activity (user_id, seq)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, user string) (*progress.ProgressData, error) {
	query := `
		SELECT document
		FROM progress
		WHERE user_id = $1
	`

	var doc []byte
	err := s.pool.QueryRow(ctx, query, user).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return decode(user, doc, s.seed)
}

func (s *PostgresStore) Insert(ctx context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO progress (user_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`

	tag, err := s.pool.Exec(ctx, query, p.User, string(doc))
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO progress (user_id, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET document = EXCLUDED.document,
		    updated_at = NOW()
	`

	if _, err := s.pool.Exec(ctx, query, p.User, string(doc)); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *PostgresStore) AppendActivity(ctx context.Context, a *Activity) error {
	query, args := entsql.Dialect(dialect.Postgres).
		Insert(activityTable).
		Columns(activityColumns[1:]...).
		Values(a.User, a.Kind, a.Date, a.Problem, a.Link, a.Detail, a.At.UTC()).
		Returning("seq").
		Query()

	if err := s.pool.QueryRow(ctx, query, args...).Scan(&a.Sequence); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActivity(ctx context.Context, user string, opts QueryOpts) ([]Activity, error) {
	query, args := activityQuery(dialect.Postgres, user, opts, func(t time.Time) any {
		return t.UTC()
	})

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.Sequence, &a.User, &a.Kind, &a.Date, &a.Problem, &a.Link, &a.Detail, &a.At); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
