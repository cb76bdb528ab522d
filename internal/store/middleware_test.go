package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/grindlog/internal/progress"
)

// flakyStore fails the first n calls of each operation.
type flakyStore struct {
	*MemoryStore
	failures int
	err      error
	saves    int
	loads    int
	inserts  int
}

func (f *flakyStore) Load(ctx context.Context, user string) (*progress.ProgressData, error) {
	f.loads++
	if f.loads <= f.failures {
		return nil, f.err
	}
	return f.MemoryStore.Load(ctx, user)
}

func (f *flakyStore) Insert(ctx context.Context, p *progress.ProgressData) error {
	f.inserts++
	if f.inserts <= f.failures {
		return f.err
	}
	return f.MemoryStore.Insert(ctx, p)
}

func (f *flakyStore) Save(ctx context.Context, p *progress.ProgressData) error {
	f.saves++
	if f.saves <= f.failures {
		return f.err
	}
	return f.MemoryStore.Save(ctx, p)
}

func (f *flakyStore) ListActivity(ctx context.Context, user string, opts QueryOpts) ([]Activity, error) {
	f.loads++
	if f.loads <= f.failures {
		return nil, f.err
	}
	return f.MemoryStore.ListActivity(ctx, user, opts)
}

func (f *flakyStore) AppendActivity(ctx context.Context, a *Activity) error {
	f.inserts++
	if f.inserts <= f.failures {
		return f.err
	}
	return f.MemoryStore.AppendActivity(ctx, a)
}

func fastRetry() RetryConfig {
	return RetryConfig{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond, Multiplier: 2}
}

func TestRetryRecoversTransientSave(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 2, err: errors.New("database is locked")}
	s := WithRetry(inner, fastRetry())

	if err := s.Save(context.Background(), sampleProgress(t, "alice")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if inner.saves != 3 {
		t.Errorf("saves = %d, want 3", inner.saves)
	}
}

func TestRetryGivesUp(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 10, err: errors.New("connection refused")}
	s := WithRetry(inner, fastRetry())

	err := s.Save(context.Background(), sampleProgress(t, "alice"))
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.saves != 3 {
		t.Errorf("saves = %d, want 3", inner.saves)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"corrupt", &CorruptError{User: "alice", Err: errors.New("bad json")}},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 10, err: tt.err}
			s := WithRetry(inner, fastRetry())
			if _, err := s.Load(context.Background(), "alice"); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
			if inner.loads != 1 {
				t.Errorf("loads = %d, want 1", inner.loads)
			}
		})
	}
}

func TestRetryDoesNotRepeatInsert(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 1, err: errors.New("timeout")}
	s := WithRetry(inner, fastRetry())
	if err := s.Insert(context.Background(), sampleProgress(t, "alice")); err == nil {
		t.Fatal("expected insert error")
	}
	if inner.inserts != 1 {
		t.Errorf("inserts = %d, want 1", inner.inserts)
	}
}

func TestRetryRespectsContext(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 10, err: errors.New("timeout")}
	s := WithRetry(inner, RetryConfig{MaxAttempts: 5, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, sampleProgress(t, "alice")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWithRetryDisabled(t *testing.T) {
	inner := NewMemory(progress.DefaultSeed())
	if s := WithRetry(inner, RetryConfig{MaxAttempts: 1}); s != Store(inner) {
		t.Error("expected the inner store back when retries are disabled")
	}
}

func TestRetryActivity(t *testing.T) {
	inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 1, err: errors.New("database is locked")}
	s := WithRetry(inner, fastRetry())
	ctx := context.Background()

	if err := s.AppendActivity(ctx, &Activity{User: "alice", Kind: KindCreate, At: time.Now()}); err == nil {
		t.Fatal("expected append to fail without retry")
	}
	if inner.inserts != 1 {
		t.Errorf("append attempts = %d, want 1", inner.inserts)
	}

	if _, err := s.ListActivity(ctx, "alice", QueryOpts{}); err != nil {
		t.Fatalf("list should recover: %v", err)
	}
	if inner.loads != 2 {
		t.Errorf("list attempts = %d, want 2", inner.loads)
	}
}

func TestLoggingStore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inner := &flakyStore{MemoryStore: NewMemory(progress.DefaultSeed()), failures: 1, err: errors.New("disk full")}
	s := WithLogging(inner, zap.New(core))
	ctx := context.Background()

	if err := s.Save(ctx, sampleProgress(t, "alice")); err == nil {
		t.Fatal("expected first save to fail")
	}
	if err := s.Save(ctx, sampleProgress(t, "alice")); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if _, err := s.Load(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("load bob: %v", err)
	}

	failed := logs.FilterMessage("store call failed").All()
	if len(failed) != 1 {
		t.Fatalf("failed entries = %d, want 1", len(failed))
	}
	if failed[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", failed[0].Level)
	}
	if got := failed[0].ContextMap()["op"]; got != "save" {
		t.Errorf("op = %v, want save", got)
	}
	if n := logs.FilterMessage("store call").Len(); n != 2 {
		t.Errorf("debug entries = %d, want 2", n)
	}
}
