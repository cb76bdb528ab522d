package progress

import (
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
)

// Stats is the dashboard view of an aggregate.
type Stats struct {
	User              string  `json:"user"`
	CurrentTotal      int     `json:"currentTotal"`
	TotalProblems     int     `json:"totalProblems"`
	Percent           float64 `json:"percent"`
	Streak            int     `json:"streak"`
	LastCompletedDate string  `json:"lastCompletedDate,omitempty"`
	TargetDate        string  `json:"targetDate"`
	DaysRemaining     int     `json:"daysRemaining"`
	AverageNeeded     float64 `json:"averageNeeded"`
	Today             string  `json:"today"`
	TodayTheme        string  `json:"todayTheme"`
	CycleDay          int     `json:"cycleDay"`
	TodayCompleted    int     `json:"todayCompleted"`
}

// Summarize computes the dashboard numbers as of today. Streak is computed
// live from the day map rather than read from the stored field.
func Summarize(p *ProgressData, today time.Time) Stats {
	today = calendar.Day(today)
	s := Stats{
		User:              p.User,
		CurrentTotal:      p.CurrentTotal,
		TotalProblems:     p.TotalProblems,
		Streak:            ComputeStreak(p.Days, today),
		LastCompletedDate: p.LastCompletedDate,
		TargetDate:        p.TargetDate,
		Today:             calendar.Key(today),
		TodayTheme:        cycle.ThemeForDate(today),
		CycleDay:          cycle.CycleDayForDate(today),
		TodayCompleted:    MaterializeDay(p, today).CompletedCount(),
	}
	if p.TotalProblems > 0 {
		s.Percent = float64(p.CurrentTotal) / float64(p.TotalProblems) * 100
	}

	if target, err := calendar.Parse(p.TargetDate); err == nil {
		s.DaysRemaining = calendar.DaysBetween(today, target)
	}
	if s.DaysRemaining < 0 {
		s.DaysRemaining = 0
	}
	remaining := p.TotalProblems - p.CurrentTotal
	if s.DaysRemaining > 0 && remaining > 0 {
		s.AverageNeeded = float64(remaining) / float64(s.DaysRemaining)
	}
	return s
}
