// Package cycle maps calendar dates onto the 14-day curriculum rotation.
package cycle

import (
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
)

// Length is the number of days in one rotation.
const Length = 14

// epoch is the first day of cycle day 1. Persisted day themes are snapshots
// of this mapping, so it must never move.
var epoch = calendar.Date(2024, time.November, 20)

// Epoch returns the first day of cycle day 1.
func Epoch() time.Time { return epoch }

// Themes lists the rotation in order; Themes[0] is cycle day 1.
var Themes = [Length]string{
	"Arrays, Two Pointers, Sliding Window",
	"HashMaps, Sets, Linked Lists",
	"Binary Search, Intervals",
	"Trees DFS/BFS",
	"Graphs + Heaps",
	"Backtracking + Greedy",
	"DP (1D)",
	"Advanced Arrays",
	"HashMaps + Tries",
	"Advanced Binary Search",
	"Binary Trees + BST",
	"Graphs + Dijkstra",
	"Advanced Backtracking",
	"DP (2D)",
}

// ThemeIndex returns the position of d in the rotation, always in [0, Length)
// including for dates before Epoch.
func ThemeIndex(d time.Time) int {
	diff := calendar.DaysBetween(epoch, d)
	return ((diff % Length) + Length) % Length
}

// ThemeForDate returns the theme scheduled for d.
func ThemeForDate(d time.Time) string {
	return Themes[ThemeIndex(d)]
}

// CycleDayForDate returns the 1-based cycle day of d.
func CycleDayForDate(d time.Time) int {
	return ThemeIndex(d) + 1
}
