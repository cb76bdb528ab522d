package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/grindlog/internal/progress"
)

// Store persists one progress document per user.
type Store interface {
	// Load returns the user's aggregate, ErrNotFound when none is stored, or
	// a *CorruptError when the stored document cannot be decoded.
	Load(ctx context.Context, user string) (*progress.ProgressData, error)

	// Insert stores a new aggregate and fails with ErrConflict if the user
	// already has one.
	Insert(ctx context.Context, p *progress.ProgressData) error

	// Save replaces (or creates) the user's aggregate.
	Save(ctx context.Context, p *progress.ProgressData) error

	// AppendActivity adds a to the change log and sets a.Sequence.
	AppendActivity(ctx context.Context, a *Activity) error

	// ListActivity returns the user's log entries matching opts, newest
	// first.
	ListActivity(ctx context.Context, user string, opts QueryOpts) ([]Activity, error)

	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Driver is one of "file", "sqlite", "postgres", "memory".
	Driver string

	// Path is the data directory for "file" and the database file for
	// "sqlite". Empty means DefaultPath(Driver).
	Path string

	// DSN is the postgres connection string.
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration

	// Seed supplies defaults for fields missing from stored documents.
	Seed progress.Seed

	Retry RetryConfig
}

// Open creates a Store from configuration, wrapped with retry and logging
// middleware.
func Open(ctx context.Context, cfg Config, log *zap.Logger) (Store, error) {
	var base Store
	var err error

	switch cfg.Driver {
	case "file":
		dir := cfg.Path
		if dir == "" {
			if dir, err = DefaultPath(cfg.Driver); err != nil {
				return nil, err
			}
		}
		base, err = OpenFile(dir, cfg.Seed)
	case "sqlite":
		path := cfg.Path
		if path == "" {
			if path, err = DefaultPath(cfg.Driver); err != nil {
				return nil, err
			}
		}
		base, err = OpenSQLite(path, cfg.Seed)
	case "postgres":
		base, err = OpenPostgres(ctx, cfg.DSN, PoolConfig{
			MaxConns:        cfg.MaxConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
		}, cfg.Seed)
	case "memory":
		base = NewMemory(cfg.Seed)
	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.Driver, err)
	}

	// caller → logging → retry → base
	retried := WithRetry(base, cfg.Retry)
	return WithLogging(retried, log), nil
}

// DefaultPath resolves where a local backend keeps its data, in priority
// order:
// 1. GRINDLOG_DB environment variable
// 2. $XDG_DATA_HOME/grindlog/{grindlog.db,progress}
// 3. ~/.local/share/grindlog/{grindlog.db,progress}
func DefaultPath(driver string) (string, error) {
	if p := os.Getenv("GRINDLOG_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	name := "grindlog.db"
	if driver == "file" {
		name = "progress"
	}
	p := filepath.Join(dataHome, "grindlog", name)
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
