package progress

import "time"

// Drift is the difference between recomputed and stored aggregates.
type Drift struct {
	CurrentTotal int `json:"currentTotal"`
	Streak       int `json:"streak"`
}

// None reports whether nothing had drifted.
func (d Drift) None() bool {
	return d.CurrentTotal == 0 && d.Streak == 0
}

// CompletedTotal sums completed problems across all days.
func CompletedTotal(days map[string]DayProgress) int {
	total := 0
	for _, d := range days {
		total += d.CompletedCount()
	}
	return total
}

// Reconcile recomputes CurrentTotal and Streak from the day map and returns
// the repaired copy along with how far the stored values were off.
func Reconcile(p *ProgressData, today time.Time) (*ProgressData, Drift) {
	next := p.Clone()
	total := CompletedTotal(next.Days)
	streak := ComputeStreak(next.Days, today)

	drift := Drift{
		CurrentTotal: total - next.CurrentTotal,
		Streak:       streak - next.Streak,
	}
	next.CurrentTotal = total
	next.Streak = streak
	return next, drift
}
