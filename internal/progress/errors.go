package progress

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that no aggregate exists yet for a user. A day with
// no data is not an error; it is materialized instead.
var ErrNotFound = errors.New("progress not found")

// ErrConflict indicates an attempt to create an aggregate that already exists.
var ErrConflict = errors.New("progress already exists")

// ErrPersistence is matched by every *PersistError.
var ErrPersistence = errors.New("persistence failure")

// ValidationError reports a malformed date, an out-of-range problem number or
// an invalid link.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistError indicates the store rejected a write or was unreachable. The
// in-memory aggregate is still valid when this is returned.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPersistence) match any PersistError.
func (e *PersistError) Is(target error) bool {
	return target == ErrPersistence
}

// ParseError indicates a serialized snapshot could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse snapshot: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsParse reports whether err is (or wraps) a *ParseError.
func IsParse(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}
