package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/store"
)

// CreateInput holds the fields for starting a new plan.
type CreateInput struct {
	StartDate     string `json:"startDate" validate:"required"`
	TargetDate    string `json:"targetDate" validate:"required"`
	TotalProblems int    `json:"totalProblems" validate:"min=1"`
}

// UpdateInput sets one problem's state. A nil Link keeps the stored link
// when completing; un-completing always clears it.
type UpdateInput struct {
	Date          string  `json:"date" validate:"required"`
	ProblemNumber int     `json:"problemNumber" validate:"min=1,max=6"`
	Completed     bool    `json:"completed"`
	Link          *string `json:"link,omitempty" validate:"omitempty,url"`
}

// checkInput runs struct validation and converts the first failure into a
// *progress.ValidationError.
func (s *Service) checkInput(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &progress.ValidationError{Field: lowerFirst(fe.Field()), Reason: describeTag(fe)}
	}
	return &progress.ValidationError{Field: "input", Reason: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// LoadOrInit returns the persisted aggregate, or a fresh seed when the user
// has none or it cannot be read. It never fails for a valid user.
func (s *Service) LoadOrInit(ctx context.Context, user string) (*progress.ProgressData, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	defer s.lockUser(user)()
	return s.loadOrSeed(ctx, user).Clone(), nil
}

// Get returns the user's aggregate or progress.ErrNotFound.
func (s *Service) Get(ctx context.Context, user string) (*progress.ProgressData, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	defer s.lockUser(user)()

	p, err := s.load(ctx, user)
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Create starts a new plan for user. It fails with progress.ErrConflict when
// the user already has one.
func (s *Service) Create(ctx context.Context, user string, in CreateInput) (*progress.ProgressData, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	if err := s.checkInput(in); err != nil {
		return nil, err
	}
	start, err := parseDate("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	target, err := parseDate("targetDate", in.TargetDate)
	if err != nil {
		return nil, err
	}
	if target.Before(start) {
		return nil, &progress.ValidationError{Field: "targetDate", Reason: "must not be before startDate"}
	}

	defer s.lockUser(user)()

	if _, ok := s.cached(user); ok {
		return nil, progress.ErrConflict
	}

	p := progress.New(progress.Seed{
		User:          user,
		StartDate:     start,
		TargetDate:    target,
		TotalProblems: in.TotalProblems,
	})
	if err := s.store.Insert(ctx, p); err != nil {
		if errors.Is(err, progress.ErrConflict) {
			return nil, progress.ErrConflict
		}
		s.log.Error("failed to insert progress", zap.String("user", user), zap.Error(err))
		s.remember(p)
		return p.Clone(), &progress.PersistError{Op: "insert", Err: err}
	}

	s.remember(p)
	s.record(ctx, store.Activity{User: user, Kind: store.KindCreate,
		Detail: fmt.Sprintf("%d problems, %s to %s", p.TotalProblems, p.StartDate, p.TargetDate)})
	s.log.Info("created plan", zap.String("user", user),
		zap.String("start", p.StartDate), zap.String("target", p.TargetDate),
		zap.Int("total", p.TotalProblems))
	return p.Clone(), nil
}

// UpdateProblem sets one problem's completion and link. On a persistence
// failure the updated problem is still returned alongside the error. A user
// without a plan gets progress.ErrNotFound unless auto-init is enabled; the
// same holds for Day, the range reads, Stats and Export.
func (s *Service) UpdateProblem(ctx context.Context, user string, in UpdateInput) (progress.Problem, error) {
	if err := validUser(user); err != nil {
		return progress.Problem{}, err
	}
	if err := s.checkInput(in); err != nil {
		return progress.Problem{}, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return progress.Problem{}, err
	}

	defer s.lockUser(user)()

	now := s.now()
	u := progress.Uncomplete()
	if in.Completed {
		u = progress.Complete(now, in.Link)
	}

	p, err := s.current(ctx, user)
	if err != nil {
		return progress.Problem{}, err
	}
	next, err := progress.UpdateProblem(p, date, in.ProblemNumber, u, now)
	if err != nil {
		return progress.Problem{}, err
	}
	pr, _ := next.Days[calendar.Key(date)].Problem(in.ProblemNumber)

	s.log.Debug("problem updated",
		zap.String("user", user), zap.String("date", calendar.Key(date)),
		zap.Int("problem", in.ProblemNumber), zap.Bool("completed", pr.Completed),
		zap.Int("currentTotal", next.CurrentTotal), zap.Int("streak", next.Streak))

	if err := s.persist(ctx, next); err != nil {
		return pr, err
	}
	kind := store.KindUncomplete
	if pr.Completed {
		kind = store.KindComplete
	}
	s.record(ctx, store.Activity{User: user, Kind: kind,
		Date: calendar.Key(date), Problem: pr.ID, Link: pr.Link})
	return pr, nil
}

// Day returns one day, materialized if it has no data. Nothing is stored.
func (s *Service) Day(ctx context.Context, user, date string) (progress.DayProgress, error) {
	if err := validUser(user); err != nil {
		return progress.DayProgress{}, err
	}
	d, err := parseDate("date", date)
	if err != nil {
		return progress.DayProgress{}, err
	}
	defer s.lockUser(user)()
	p, err := s.current(ctx, user)
	if err != nil {
		return progress.DayProgress{}, err
	}
	return progress.MaterializeDay(p, d), nil
}

// WeekProgress returns every day from start to end inclusive, ascending.
// Days without data are materialized but not stored.
func (s *Service) WeekProgress(ctx context.Context, user, start, end string) ([]progress.DayProgress, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	from, err := parseDate("start", start)
	if err != nil {
		return nil, err
	}
	to, err := parseDate("end", end)
	if err != nil {
		return nil, err
	}
	dates, err := calendar.Range(from, to)
	if err != nil {
		return nil, &progress.ValidationError{Field: "range", Reason: err.Error()}
	}
	return s.days(ctx, user, dates)
}

// MonthProgress returns every day of a month. month0 is zero-based.
func (s *Service) MonthProgress(ctx context.Context, user string, year, month0 int) ([]progress.DayProgress, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	dates, err := calendar.MonthDays(year, month0)
	if err != nil {
		return nil, &progress.ValidationError{Field: "month", Reason: err.Error()}
	}
	return s.days(ctx, user, dates)
}

func (s *Service) days(ctx context.Context, user string, dates []time.Time) ([]progress.DayProgress, error) {
	defer s.lockUser(user)()
	p, err := s.current(ctx, user)
	if err != nil {
		return nil, err
	}
	out := make([]progress.DayProgress, 0, len(dates))
	for _, d := range dates {
		out = append(out, progress.MaterializeDay(p, d))
	}
	return out, nil
}

// Stats returns the dashboard numbers as of today.
func (s *Service) Stats(ctx context.Context, user string) (progress.Stats, error) {
	if err := validUser(user); err != nil {
		return progress.Stats{}, err
	}
	defer s.lockUser(user)()
	p, err := s.current(ctx, user)
	if err != nil {
		return progress.Stats{}, err
	}
	return progress.Summarize(p, s.Today()), nil
}

// Export serializes the user's aggregate.
func (s *Service) Export(ctx context.Context, user string) ([]byte, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	defer s.lockUser(user)()
	p, err := s.current(ctx, user)
	if err != nil {
		return nil, err
	}
	return progress.ExportSnapshot(p)
}

// Import replaces the user's aggregate with a decoded snapshot. The snapshot's
// own user field is ignored. A *progress.ParseError leaves state untouched.
func (s *Service) Import(ctx context.Context, user string, data []byte) (*progress.ProgressData, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	seed := s.seed
	seed.User = user
	p, err := progress.Decode(data, seed)
	if err != nil {
		return nil, err
	}
	p.User = user

	defer s.lockUser(user)()
	s.log.Info("imported snapshot", zap.String("user", user),
		zap.Int("days", len(p.Days)), zap.Int("currentTotal", p.CurrentTotal))
	if err := s.persist(ctx, p); err != nil {
		return p.Clone(), err
	}
	s.record(ctx, store.Activity{User: user, Kind: store.KindImport,
		Detail: fmt.Sprintf("%d days, %d completed", len(p.Days), p.CurrentTotal)})
	return p.Clone(), nil
}

// Repair recomputes currentTotal and streak from the stored days and saves
// the result when anything had drifted.
func (s *Service) Repair(ctx context.Context, user string) (progress.Drift, error) {
	if err := validUser(user); err != nil {
		return progress.Drift{}, err
	}
	defer s.lockUser(user)()

	p, err := s.load(ctx, user)
	if err != nil {
		return progress.Drift{}, err
	}
	fixed, drift := progress.Reconcile(p, s.Today())
	if drift.None() {
		return drift, nil
	}
	s.log.Warn("repaired drifted aggregate", zap.String("user", user),
		zap.Int("currentTotalDrift", drift.CurrentTotal), zap.Int("streakDrift", drift.Streak))
	if err := s.persist(ctx, fixed); err != nil {
		return drift, fmt.Errorf("repair: %w", err)
	}
	s.record(ctx, store.Activity{User: user, Kind: store.KindRepair,
		Detail: fmt.Sprintf("total %+d, streak %+d", drift.CurrentTotal, drift.Streak)})
	return drift, nil
}

// Activity limits.
const (
	DefaultActivityLimit = 20
	MaxActivityLimit     = 500
)

// Activity returns the user's most recent changes, newest first. A limit of
// zero means DefaultActivityLimit.
func (s *Service) Activity(ctx context.Context, user string, limit int) ([]store.Activity, error) {
	if err := validUser(user); err != nil {
		return nil, err
	}
	switch {
	case limit == 0:
		limit = DefaultActivityLimit
	case limit < 0 || limit > MaxActivityLimit:
		return nil, &progress.ValidationError{Field: "limit",
			Reason: fmt.Sprintf("must be between 1 and %d", MaxActivityLimit)}
	}
	entries, err := s.store.ListActivity(ctx, user, store.QueryOpts{Limit: limit})
	if err != nil {
		return nil, &progress.PersistError{Op: "list activity", Err: err}
	}
	return entries, nil
}
