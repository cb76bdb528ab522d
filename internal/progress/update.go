package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
)

// ProblemUpdate describes a change to one problem. A nil Link or CompletedAt
// keeps the current value; a pointer to the zero value clears it.
type ProblemUpdate struct {
	Completed   bool
	Link        *string
	CompletedAt *time.Time
}

func (u ProblemUpdate) apply(p Problem) Problem {
	p.Completed = u.Completed
	if u.Link != nil {
		p.Link = *u.Link
	}
	if u.CompletedAt != nil {
		if u.CompletedAt.IsZero() {
			p.CompletedAt = nil
		} else {
			t := *u.CompletedAt
			p.CompletedAt = &t
		}
	}
	return p
}

// Complete marks a problem done at now. The existing link is kept unless
// link is non-nil.
func Complete(now time.Time, link *string) ProblemUpdate {
	at := now.UTC()
	return ProblemUpdate{Completed: true, Link: link, CompletedAt: &at}
}

// Uncomplete clears completion, link and completion time together.
func Uncomplete() ProblemUpdate {
	var empty string
	var zero time.Time
	return ProblemUpdate{Completed: false, Link: &empty, CompletedAt: &zero}
}

// SetLink marks a problem done and records its link, as the edit-link dialog
// does.
func SetLink(link string, now time.Time) ProblemUpdate {
	return Complete(now, &link)
}

// Toggle flips a problem's completion the way the week view does.
func Toggle(current Problem, now time.Time) ProblemUpdate {
	if current.Completed {
		return Uncomplete()
	}
	return Complete(now, nil)
}

// ValidateProblemID rejects ids outside 1..ProblemsPerDay.
func ValidateProblemID(id int) error {
	if id < 1 || id > ProblemsPerDay {
		return &ValidationError{
			Field:  "problem",
			Reason: fmt.Sprintf("must be between 1 and %d, got %d", ProblemsPerDay, id),
		}
	}
	return nil
}

// UpdateProblem applies u to problem id of date and returns the new aggregate.
// p is never modified. CurrentTotal moves by the change in the day's completed
// count; on completion LastCompletedDate and Streak are refreshed as of now.
// Un-completion leaves Streak untouched.
func UpdateProblem(p *ProgressData, date time.Time, id int, u ProblemUpdate, now time.Time) (*ProgressData, error) {
	if err := ValidateProblemID(id); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("update problem: nil progress")
	}

	next := p.Clone()
	key := calendar.Key(date)
	day := MaterializeDay(next, date)
	before := day.CompletedCount()

	found := false
	for i := range day.Problems {
		if day.Problems[i].ID == id {
			day.Problems[i] = u.apply(day.Problems[i])
			found = true
			break
		}
	}
	if !found {
		day.Problems = append(day.Problems, u.apply(Problem{ID: id}))
		sort.Slice(day.Problems, func(i, j int) bool { return day.Problems[i].ID < day.Problems[j].ID })
	}

	next.CurrentTotal += day.CompletedCount() - before
	next.Days[key] = day

	if u.Completed {
		next.LastCompletedDate = key
		next.Streak = ComputeStreak(next.Days, calendar.Today(now))
	}
	return next, nil
}
