package progress

import (
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
)

// ProblemsPerDay is the fixed number of practice problems tracked each day.
const ProblemsPerDay = 6

// Problem is one practice slot of a day. Identity is (date, ID).
type Problem struct {
	ID          int        `json:"id"`
	Completed   bool       `json:"completed"`
	Link        string     `json:"link,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// DayProgress holds the six problems of one calendar day. Theme is captured
// when the day is first materialized and is never recomputed.
type DayProgress struct {
	Date     string    `json:"date"`
	Theme    string    `json:"theme"`
	Problems []Problem `json:"problems"`
	URL      string    `json:"url,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

// CompletedCount returns how many of the day's problems are completed.
func (d DayProgress) CompletedCount() int {
	n := 0
	for _, p := range d.Problems {
		if p.Completed {
			n++
		}
	}
	return n
}

// Problem returns the problem with the given id.
func (d DayProgress) Problem(id int) (Problem, bool) {
	for _, p := range d.Problems {
		if p.ID == id {
			return p, true
		}
	}
	return Problem{}, false
}

func (d DayProgress) clone() DayProgress {
	out := d
	out.Problems = make([]Problem, len(d.Problems))
	for i, p := range d.Problems {
		out.Problems[i] = p
		if p.CompletedAt != nil {
			t := *p.CompletedAt
			out.Problems[i].CompletedAt = &t
		}
	}
	return out
}

// ProgressData is the aggregate root for one user.
//
// CurrentTotal is maintained incrementally and must equal the sum of
// completed problems across Days; Reconcile repairs it if it ever drifts.
type ProgressData struct {
	User              string                 `json:"user"`
	StartDate         string                 `json:"startDate"`
	TargetDate        string                 `json:"targetDate"`
	TotalProblems     int                    `json:"totalProblems"`
	CurrentTotal      int                    `json:"currentTotal"`
	Streak            int                    `json:"streak"`
	LastCompletedDate string                 `json:"lastCompletedDate,omitempty"`
	Days              map[string]DayProgress `json:"days"`
}

// Clone returns a deep copy of p.
func (p *ProgressData) Clone() *ProgressData {
	out := *p
	out.Days = make(map[string]DayProgress, len(p.Days))
	for k, d := range p.Days {
		out.Days[k] = d.clone()
	}
	return &out
}

// Seed holds the values a fresh aggregate starts from.
type Seed struct {
	User          string
	StartDate     time.Time
	TargetDate    time.Time
	TotalProblems int
}

// DefaultSeed returns the built-in seed. The start date is the cycle epoch so
// cycle day 1 and the first tracked day coincide.
func DefaultSeed() Seed {
	return Seed{
		User:          "local",
		StartDate:     cycle.Epoch(),
		TargetDate:    calendar.Date(2025, time.January, 15),
		TotalProblems: 300,
	}
}

// New returns an empty aggregate built from seed.
func New(seed Seed) *ProgressData {
	return &ProgressData{
		User:          seed.User,
		StartDate:     calendar.Key(seed.StartDate),
		TargetDate:    calendar.Key(seed.TargetDate),
		TotalProblems: seed.TotalProblems,
		Days:          map[string]DayProgress{},
	}
}

// NewDay returns a fresh, all-incomplete day for date.
func NewDay(date time.Time) DayProgress {
	problems := make([]Problem, ProblemsPerDay)
	for i := range problems {
		problems[i] = Problem{ID: i + 1}
	}
	return DayProgress{
		Date:     calendar.Key(date),
		Theme:    cycle.ThemeForDate(date),
		Problems: problems,
	}
}

// MaterializeDay returns the stored day for date, or a fresh one when the
// date has no data yet. It never inserts into p; the returned value is a copy.
func MaterializeDay(p *ProgressData, date time.Time) DayProgress {
	if d, ok := p.Days[calendar.Key(date)]; ok {
		return d.clone()
	}
	return NewDay(date)
}
