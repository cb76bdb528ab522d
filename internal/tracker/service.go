// Package tracker is the application layer over the progress model. It owns
// the per-user read-modify-write cycle: load (or seed), apply a pure update,
// keep the result in memory and persist it.
package tracker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/store"
)

// Service serializes each user's updates and keeps the latest aggregate in
// memory. When a save fails the in-memory copy stays authoritative and the
// caller gets the result together with a *progress.PersistError.
type Service struct {
	store    store.Store
	log      *zap.Logger
	seed     progress.Seed
	now      func() time.Time
	validate *validator.Validate
	autoInit bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
	cache map[string]*progress.ProgressData
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSeed overrides the defaults used for users without stored state.
func WithSeed(seed progress.Seed) Option {
	return func(s *Service) { s.seed = seed }
}

// WithAutoInit lets operations on a user without a stored plan start from
// the seed instead of failing with progress.ErrNotFound. The seed is stored
// on the first write.
func WithAutoInit() Option {
	return func(s *Service) { s.autoInit = true }
}

// New creates a Service over st. A nil logger is replaced with a no-op one.
func New(st store.Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:    st,
		log:      log.Named("tracker"),
		seed:     progress.DefaultSeed(),
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		locks:    map[string]*sync.Mutex{},
		cache:    map[string]*progress.ProgressData{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// Today returns the local calendar date according to the service clock.
func (s *Service) Today() time.Time {
	return calendar.Today(s.now())
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) lockUser(user string) func() {
	s.mu.Lock()
	l, ok := s.locks[user]
	if !ok {
		l = &sync.Mutex{}
		s.locks[user] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (s *Service) cached(user string) (*progress.ProgressData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.cache[user]
	return p, ok
}

func (s *Service) remember(p *progress.ProgressData) {
	s.mu.Lock()
	s.cache[p.User] = p
	s.mu.Unlock()
}

func (s *Service) seedFor(user string) *progress.ProgressData {
	seed := s.seed
	seed.User = user
	return progress.New(seed)
}

// load returns the user's current aggregate. Missing state is reported as
// ErrNotFound; corrupt state degrades to the seed and is logged. The caller
// must hold the user's lock. The returned value must not be mutated.
func (s *Service) load(ctx context.Context, user string) (*progress.ProgressData, error) {
	if p, ok := s.cached(user); ok {
		return p, nil
	}

	p, err := s.store.Load(ctx, user)
	var corrupt *store.CorruptError
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		return nil, progress.ErrNotFound
	case errors.As(err, &corrupt):
		s.log.Warn("stored progress is corrupt, starting from seed",
			zap.String("user", user), zap.Error(err))
		p = s.seedFor(user)
	default:
		return nil, &progress.PersistError{Op: "load", Err: err}
	}

	s.remember(p)
	return p, nil
}

// loadOrSeed is load with missing or unreadable state replaced by the seed.
func (s *Service) loadOrSeed(ctx context.Context, user string) *progress.ProgressData {
	p, err := s.load(ctx, user)
	if err == nil {
		return p
	}
	if !errors.Is(err, progress.ErrNotFound) {
		s.log.Warn("could not load progress, using seed",
			zap.String("user", user), zap.Error(err))
	}
	return s.seedFor(user)
}

// current returns the aggregate an operation acts on: the stored plan, or
// the seed when auto-init is enabled. The caller must hold the user's lock.
func (s *Service) current(ctx context.Context, user string) (*progress.ProgressData, error) {
	if s.autoInit {
		return s.loadOrSeed(ctx, user), nil
	}
	return s.load(ctx, user)
}

// persist caches p and saves it. A failed save is logged and returned as a
// *progress.PersistError; the cached copy is kept either way.
func (s *Service) persist(ctx context.Context, p *progress.ProgressData) error {
	s.remember(p)
	if err := s.store.Save(ctx, p); err != nil {
		s.log.Error("failed to save progress",
			zap.String("user", p.User), zap.Error(err))
		return &progress.PersistError{Op: "save", Err: err}
	}
	return nil
}

// record appends an entry to the user's activity log. The log is advisory:
// a failed append is logged and otherwise ignored.
func (s *Service) record(ctx context.Context, a store.Activity) {
	a.At = s.now()
	if err := s.store.AppendActivity(ctx, &a); err != nil {
		s.log.Warn("failed to record activity",
			zap.String("user", a.User), zap.String("kind", a.Kind), zap.Error(err))
	}
}

func validUser(user string) error {
	if user == "" {
		return &progress.ValidationError{Field: "user", Reason: "must not be empty"}
	}
	return nil
}

func parseDate(field, value string) (time.Time, error) {
	d, err := calendar.Parse(value)
	if err != nil {
		return time.Time{}, &progress.ValidationError{Field: field, Reason: err.Error()}
	}
	return d, nil
}
