package progress

import (
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
)

// MaxStreakDays bounds the backward walk in ComputeStreak.
const MaxStreakDays = 365

// ComputeStreak counts consecutive days ending at today that have at least one
// completed problem. A today with no completions yields 0.
func ComputeStreak(days map[string]DayProgress, today time.Time) int {
	streak := 0
	d := calendar.Day(today)
	for streak < MaxStreakDays {
		day, ok := days[calendar.Key(d)]
		if !ok || day.CompletedCount() == 0 {
			break
		}
		streak++
		d = d.AddDate(0, 0, -1)
	}
	return streak
}
