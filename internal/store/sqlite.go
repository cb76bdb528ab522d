package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"github.com/abhisek/grindlog/internal/progress"
)

const progressTable = "progress"

// SQLiteStore keeps each user's document in a single row.
type SQLiteStore struct {
	db   *sql.DB
	seed progress.Seed
}

// OpenSQLite opens the SQLite database at dsn, applies recommended pragmas
// and creates its tables.
func OpenSQLite(dsn string, seed progress.Seed) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	// ent's builder has no DDL; tables are created with raw SQL.
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLiteStore{db: db, seed: seed}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) Load(ctx context.Context, user string) (*progress.ProgressData, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("document").
		From(b.Table(progressTable)).
		Where(entsql.EQ("user_id", user)).
		Query()

	var doc string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return decode(user, []byte(doc), s.seed)
}

func (s *SQLiteStore) Insert(ctx context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(progressTable).
		Columns("user_id", "document", "updated_at").
		Values(p.User, string(doc), now()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(progressTable).
		Columns("user_id", "document", "updated_at").
		Values(p.User, string(doc), now()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.ResolveWithNewValues()).
		Query()

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendActivity(ctx context.Context, a *Activity) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(activityTable).
		Columns(activityColumns[1:]...).
		Values(a.User, a.Kind, a.Date, a.Problem, a.Link, a.Detail, formatActivityTime(a.At)).
		Query()

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	a.Sequence = seq
	return nil
}

func (s *SQLiteStore) ListActivity(ctx context.Context, user string, opts QueryOpts) ([]Activity, error) {
	query, args := activityQuery(dialect.SQLite, user, opts, func(t time.Time) any {
		return formatActivityTime(t)
	})

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var at string
		if err := rows.Scan(&a.Sequence, &a.User, &a.Kind, &a.Date, &a.Problem, &a.Link, &a.Detail, &at); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if a.At, err = time.Parse(activityTime, at); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func migrateSQLite(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			user_id TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS activity (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			problem INTEGER NOT NULL DEFAULT 0,
			link TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			occurred_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS activity_user_seq ON activity (user_id, seq)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
