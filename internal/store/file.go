package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/abhisek/grindlog/internal/progress"
)

// FileStore keeps one JSON document per user in a directory. Each user's
// activity log sits next to it as newline-delimited JSON.
type FileStore struct {
	dir  string
	seed progress.Seed

	// guards activity appends
	mu sync.Mutex
}

// OpenFile creates dir if needed and returns a store rooted there.
func OpenFile(dir string, seed progress.Seed) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir, seed: seed}, nil
}

func (s *FileStore) path(user string) (string, error) {
	name := url.PathEscape(user)
	if name == "" || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid user %q", user)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *FileStore) Load(_ context.Context, user string) (*progress.ProgressData, error) {
	path, err := s.path(user)
	if err != nil {
		return nil, err
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return decode(user, doc, s.seed)
}

func (s *FileStore) Insert(_ context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	path, err := s.path(p.User)
	if err != nil {
		return err
	}

	tmp, err := s.writeTemp(doc)
	if err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	defer os.Remove(tmp)

	// Link fails if the target exists, so creation is atomic.
	if err := os.Link(tmp, path); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrConflict
		}
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func (s *FileStore) Save(_ context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	path, err := s.path(p.User)
	if err != nil {
		return err
	}

	tmp, err := s.writeTemp(doc)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *FileStore) activityPath(user string) (string, error) {
	path, err := s.path(user)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(path, ".json") + ".activity.jsonl", nil
}

func (s *FileStore) AppendActivity(_ context.Context, a *Activity) error {
	path, err := s.activityPath(a.User)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := readActivity(path)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	a.Sequence = 1
	if n := len(existing); n > 0 {
		a.Sequence = existing[n-1].Sequence + 1
	}

	line, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append activity: %w", err)
	}
	return f.Close()
}

func (s *FileStore) ListActivity(_ context.Context, user string, opts QueryOpts) ([]Activity, error) {
	path, err := s.activityPath(user)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	entries, err := readActivity(path)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return filterActivity(entries, opts), nil
}

// readActivity decodes every entry of a log file. A missing file is an
// empty log.
func readActivity(path string) ([]Activity, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []Activity
	dec := json.NewDecoder(f)
	for {
		var a Activity
		if err := dec.Decode(&a); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		out = append(out, a)
	}
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) writeTemp(doc []byte) (string, error) {
	f, err := os.CreateTemp(s.dir, ".progress-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(doc); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
