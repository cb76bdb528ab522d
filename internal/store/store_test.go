package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "grindlog.db"), progress.DefaultSeed())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func openTestFile(t *testing.T) *FileStore {
	t.Helper()
	s, err := OpenFile(filepath.Join(t.TempDir(), "progress"), progress.DefaultSeed())
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	return s
}

// backends returns every backend that can run without external services.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	b := map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemory(progress.DefaultSeed()) },
		"file":   func(t *testing.T) Store { return openTestFile(t) },
		"sqlite": func(t *testing.T) Store { return openTestSQLite(t) },
	}
	if dsn := os.Getenv("GRINDLOG_TEST_POSTGRES_DSN"); dsn != "" {
		b["postgres"] = func(t *testing.T) Store { return openTestPostgres(t, dsn) }
	}
	return b
}

func sampleProgress(t *testing.T, user string) *progress.ProgressData {
	t.Helper()
	p := progress.New(progress.DefaultSeed())
	p.User = user
	now := time.Date(2025, 1, 3, 12, 0, 0, 0, time.Local)
	link := "https://leetcode.com/problems/two-sum/"
	p, err := progress.UpdateProblem(p, now, 2, progress.Complete(now, &link), now)
	if err != nil {
		t.Fatalf("build sample: %v", err)
	}
	return p
}

func TestStoreContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			user := "contract-" + name

			if _, err := s.Load(ctx, user); !errors.Is(err, ErrNotFound) {
				t.Fatalf("load (empty) err = %v, want ErrNotFound", err)
			}

			p := sampleProgress(t, user)
			if err := s.Insert(ctx, p); err != nil {
				t.Fatalf("insert: %v", err)
			}
			if err := s.Insert(ctx, p); !errors.Is(err, ErrConflict) {
				t.Fatalf("second insert err = %v, want ErrConflict", err)
			}

			got, err := s.Load(ctx, user)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got.User != user || got.CurrentTotal != 1 || got.LastCompletedDate != "2025-01-03" {
				t.Errorf("loaded = user %q total %d last %q", got.User, got.CurrentTotal, got.LastCompletedDate)
			}
			pr, _ := got.Days["2025-01-03"].Problem(2)
			if !pr.Completed || pr.Link != "https://leetcode.com/problems/two-sum/" || pr.CompletedAt == nil {
				t.Errorf("problem 2 = %+v", pr)
			}

			next, _ := progress.UpdateProblem(got, calendar.Date(2025, 1, 4), 1, progress.Complete(time.Now(), nil), time.Now())
			if err := s.Save(ctx, next); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err = s.Load(ctx, user)
			if err != nil {
				t.Fatalf("load after save: %v", err)
			}
			if got.CurrentTotal != 2 || len(got.Days) != 2 {
				t.Errorf("after save: total %d days %d", got.CurrentTotal, len(got.Days))
			}

			// Save creates when absent.
			other := sampleProgress(t, user+"-other")
			if err := s.Save(ctx, other); err != nil {
				t.Fatalf("save new: %v", err)
			}
			if _, err := s.Load(ctx, other.User); err != nil {
				t.Errorf("load saved-new: %v", err)
			}
		})
	}
}

func TestActivityContract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			user := "contract-" + name
			base := time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC)

			entries := []Activity{
				{User: user, Kind: KindCreate, At: base},
				{User: user, Kind: KindComplete, Date: "2025-01-03", Problem: 2, Link: "https://leetcode.com/problems/two-sum/", At: base.Add(time.Hour)},
				{User: user + "-other", Kind: KindCreate, At: base.Add(90 * time.Minute)},
				{User: user, Kind: KindUncomplete, Date: "2025-01-03", Problem: 2, At: base.Add(2 * time.Hour)},
			}
			var last int64
			for i := range entries {
				if err := s.AppendActivity(ctx, &entries[i]); err != nil {
					t.Fatalf("append %d: %v", i, err)
				}
				if entries[i].User == user {
					if entries[i].Sequence <= last {
						t.Fatalf("sequence %d not above %d", entries[i].Sequence, last)
					}
					last = entries[i].Sequence
				}
			}

			all, err := s.ListActivity(ctx, user, QueryOpts{})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("len = %d, want 3", len(all))
			}
			if all[0].Kind != KindUncomplete || all[2].Kind != KindCreate {
				t.Errorf("order = %s, %s, %s", all[0].Kind, all[1].Kind, all[2].Kind)
			}
			if all[1].Problem != 2 || all[1].Link == "" || !all[1].At.Equal(base.Add(time.Hour)) {
				t.Errorf("complete entry = %+v", all[1])
			}

			limited, _ := s.ListActivity(ctx, user, QueryOpts{Limit: 1})
			if len(limited) != 1 || limited[0].Kind != KindUncomplete {
				t.Errorf("limit 1 = %+v", limited)
			}

			after, _ := s.ListActivity(ctx, user, QueryOpts{After: entries[0].Sequence})
			if len(after) != 2 {
				t.Errorf("after create = %d entries, want 2", len(after))
			}

			window, _ := s.ListActivity(ctx, user, QueryOpts{From: base.Add(30 * time.Minute), To: base.Add(time.Hour)})
			if len(window) != 1 || window[0].Kind != KindComplete {
				t.Errorf("window = %+v", window)
			}

			none, err := s.ListActivity(ctx, user+"-nobody", QueryOpts{})
			if err != nil || len(none) != 0 {
				t.Errorf("unknown user = %v, %v", none, err)
			}
		})
	}
}

func TestEncodeRejectsEmptyUser(t *testing.T) {
	s := NewMemory(progress.DefaultSeed())
	p := progress.New(progress.DefaultSeed())
	p.User = ""
	if err := s.Save(context.Background(), p); err == nil {
		t.Fatal("expected error for empty user")
	}
}

func TestCorruptDocument(t *testing.T) {
	s := NewMemory(progress.DefaultSeed())
	s.Put("broken", []byte(`{"days": {"nope": {}}}`))

	_, err := s.Load(context.Background(), "broken")
	var corrupt *CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("err = %v, want *CorruptError", err)
	}
	if corrupt.User != "broken" {
		t.Errorf("user = %q", corrupt.User)
	}
	if !progress.IsParse(err) {
		t.Error("corrupt error should wrap a parse error")
	}
}

func TestLoadFillsSeedDefaults(t *testing.T) {
	seed := progress.DefaultSeed()
	seed.TotalProblems = 120
	s := NewMemory(seed)
	s.Put("partial", []byte(`{"currentTotal": 0}`))

	p, err := s.Load(context.Background(), "partial")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.User != "partial" || p.TotalProblems != 120 || p.Days == nil {
		t.Errorf("loaded = %+v", p)
	}
}

func TestSQLitePragmasApplied(t *testing.T) {
	s := openTestSQLite(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grindlog.db")
	ctx := context.Background()

	s, err := OpenSQLite(path, progress.DefaultSeed())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Insert(ctx, sampleProgress(t, "alice")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path, progress.DefaultSeed())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	p, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.CurrentTotal != 1 {
		t.Errorf("currentTotal = %d, want 1", p.CurrentTotal)
	}
}

func TestFileStoreRejectsDotUsers(t *testing.T) {
	s := openTestFile(t)
	for _, user := range []string{"", ".", "..", ".hidden"} {
		if _, err := s.Load(context.Background(), user); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("user %q: err = %v, want invalid user", user, err)
		}
	}
}

func TestFileStoreEscapesUser(t *testing.T) {
	s := openTestFile(t)
	ctx := context.Background()
	if err := s.Save(ctx, sampleProgress(t, "a/b")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.dir, "a%2Fb.json")); err != nil {
		t.Errorf("expected escaped file name: %v", err)
	}
	entries, _ := os.ReadDir(s.dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "redis"}, nil)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenFileDriverUsesPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := Open(context.Background(), Config{Driver: "file", Path: dir, Seed: progress.DefaultSeed()}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir not created: %v", err)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		p := filepath.Join(t.TempDir(), "custom", "db.sqlite")
		t.Setenv("GRINDLOG_DB", p)
		got, err := DefaultPath("sqlite")
		if err != nil {
			t.Fatalf("DefaultPath: %v", err)
		}
		if got != p {
			t.Errorf("got %q, want %q", got, p)
		}
	})
	t.Run("xdg data home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("GRINDLOG_DB", "")
		t.Setenv("XDG_DATA_HOME", home)
		got, err := DefaultPath("file")
		if err != nil {
			t.Fatalf("DefaultPath: %v", err)
		}
		if want := filepath.Join(home, "grindlog", "progress"); got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}
