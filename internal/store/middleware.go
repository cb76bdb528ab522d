package store

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/grindlog/internal/progress"
)

// RetryConfig configures retry behavior for transient store failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry settings used when none are given.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 50 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2.0,
	}
}

// retryStore is a decorator that retries Load, Save and ListActivity with
// exponential backoff and jitter. Insert and AppendActivity are not
// idempotent and are passed through.
type retryStore struct {
	inner  Store
	config RetryConfig
}

// WithRetry wraps a Store with retry logic. A config with fewer than two
// attempts disables retrying.
func WithRetry(s Store, cfg RetryConfig) Store {
	if cfg.MaxAttempts < 2 {
		return s
	}
	return &retryStore{inner: s, config: cfg}
}

func (r *retryStore) Load(ctx context.Context, user string) (*progress.ProgressData, error) {
	var p *progress.ProgressData
	err := r.do(ctx, func() error {
		var err error
		p, err = r.inner.Load(ctx, user)
		return err
	})
	return p, err
}

func (r *retryStore) Insert(ctx context.Context, p *progress.ProgressData) error {
	return r.inner.Insert(ctx, p)
}

func (r *retryStore) Save(ctx context.Context, p *progress.ProgressData) error {
	return r.do(ctx, func() error { return r.inner.Save(ctx, p) })
}

func (r *retryStore) AppendActivity(ctx context.Context, a *Activity) error {
	return r.inner.AppendActivity(ctx, a)
}

func (r *retryStore) ListActivity(ctx context.Context, user string, opts QueryOpts) ([]Activity, error) {
	var out []Activity
	err := r.do(ctx, func() error {
		var err error
		out, err = r.inner.ListActivity(ctx, user, opts)
		return err
	})
	return out, err
}

func (r *retryStore) Close() error { return r.inner.Close() }

func (r *retryStore) do(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := range r.config.MaxAttempts {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) {
			return err
		}
		if attempt == r.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.backoff(attempt)):
		}
	}
	return lastErr
}

// shouldRetry reports whether err may succeed on another attempt.
func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
		return false
	}
	var corrupt *CorruptError
	if errors.As(err, &corrupt) {
		return false
	}
	// Other errors (I/O, network, busy database) are treated as transient.
	return true
}

func (r *retryStore) backoff(attempt int) time.Duration {
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	if wait > float64(r.config.MaxWait) {
		wait = float64(r.config.MaxWait)
	}

	// Add ±20% jitter.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// loggingStore is a decorator that logs every store call.
type loggingStore struct {
	inner Store
	log   *zap.Logger
}

// WithLogging wraps a Store with structured logging. A nil logger
// disables it.
func WithLogging(s Store, log *zap.Logger) Store {
	if log == nil {
		return s
	}
	return &loggingStore{inner: s, log: log.Named("store")}
}

func (l *loggingStore) Load(ctx context.Context, user string) (*progress.ProgressData, error) {
	start := time.Now()
	p, err := l.inner.Load(ctx, user)
	l.record("load", user, start, err)
	return p, err
}

func (l *loggingStore) Insert(ctx context.Context, p *progress.ProgressData) error {
	start := time.Now()
	err := l.inner.Insert(ctx, p)
	l.record("insert", p.User, start, err)
	return err
}

func (l *loggingStore) Save(ctx context.Context, p *progress.ProgressData) error {
	start := time.Now()
	err := l.inner.Save(ctx, p)
	l.record("save", p.User, start, err)
	return err
}

func (l *loggingStore) AppendActivity(ctx context.Context, a *Activity) error {
	start := time.Now()
	err := l.inner.AppendActivity(ctx, a)
	l.record("append_activity", a.User, start, err)
	return err
}

func (l *loggingStore) ListActivity(ctx context.Context, user string, opts QueryOpts) ([]Activity, error) {
	start := time.Now()
	out, err := l.inner.ListActivity(ctx, user, opts)
	l.record("list_activity", user, start, err)
	return out, err
}

func (l *loggingStore) Close() error { return l.inner.Close() }

func (l *loggingStore) record(op, user string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.String("user", user),
		zap.Duration("latency", time.Since(start)),
	}
	switch {
	case err == nil, errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		l.log.Debug("store call", append(fields, zap.Error(err))...)
	default:
		l.log.Warn("store call failed", append(fields, zap.Error(err))...)
	}
}
