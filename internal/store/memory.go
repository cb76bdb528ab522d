package store

import (
	"context"
	"sync"

	"github.com/abhisek/grindlog/internal/progress"
)

// MemoryStore keeps encoded documents in a map. Nothing survives Close.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	log  []Activity
	seq  int64
	seed progress.Seed
}

// NewMemory returns an empty in-memory store.
func NewMemory(seed progress.Seed) *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}, seed: seed}
}

func (s *MemoryStore) Load(_ context.Context, user string) (*progress.ProgressData, error) {
	s.mu.Lock()
	doc, ok := s.docs[user]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(user, doc, s.seed)
}

func (s *MemoryStore) Insert(_ context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[p.User]; ok {
		return ErrConflict
	}
	s.docs[p.User] = doc
	return nil
}

func (s *MemoryStore) Save(_ context.Context, p *progress.ProgressData) error {
	doc, err := encode(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[p.User] = doc
	s.mu.Unlock()
	return nil
}

// Put stores a raw document, bypassing encoding. Tests use it to seed
// corrupt state.
func (s *MemoryStore) Put(user string, doc []byte) {
	s.mu.Lock()
	s.docs[user] = append([]byte(nil), doc...)
	s.mu.Unlock()
}

func (s *MemoryStore) AppendActivity(_ context.Context, a *Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	a.Sequence = s.seq
	s.log = append(s.log, *a)
	return nil
}

func (s *MemoryStore) ListActivity(_ context.Context, user string, opts QueryOpts) ([]Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []Activity
	for _, a := range s.log {
		if a.User == user {
			mine = append(mine, a)
		}
	}
	return filterActivity(mine, opts), nil
}

func (s *MemoryStore) Close() error { return nil }
