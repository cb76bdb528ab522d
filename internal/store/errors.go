package store

import (
	"encoding/json"
	"fmt"

	"github.com/abhisek/grindlog/internal/progress"
)

// ErrNotFound is returned by Load when the user has no stored aggregate.
var ErrNotFound = progress.ErrNotFound

// ErrConflict is returned by Insert when the user already has an aggregate.
var ErrConflict = progress.ErrConflict

// CorruptError indicates a stored document exists but cannot be decoded.
type CorruptError struct {
	User string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("stored progress for %q is corrupt: %v", e.User, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func encode(p *progress.ProgressData) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("encode progress: nil aggregate")
	}
	if p.User == "" {
		return nil, fmt.Errorf("encode progress: empty user")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode progress: %w", err)
	}
	return b, nil
}

func decode(user string, doc []byte, seed progress.Seed) (*progress.ProgressData, error) {
	p, err := progress.Decode(doc, seed)
	if err != nil {
		return nil, &CorruptError{User: user, Err: err}
	}
	p.User = user
	return p, nil
}
