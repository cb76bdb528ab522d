package progress

import (
	"math"
	"testing"
	"time"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
)

func TestReconcile(t *testing.T) {
	today := calendar.Date(2025, time.January, 3)
	p := newTestProgress()
	p.Days = daysWithCompletions(calendar.Date(2025, time.January, 2), today)
	p.CurrentTotal = 99
	p.Streak = 0

	fixed, drift := Reconcile(p, today)
	if fixed.CurrentTotal != 2 {
		t.Errorf("currentTotal = %d, want 2", fixed.CurrentTotal)
	}
	if fixed.Streak != 2 {
		t.Errorf("streak = %d, want 2", fixed.Streak)
	}
	if drift.CurrentTotal != -97 || drift.Streak != 2 {
		t.Errorf("drift = %+v", drift)
	}
	if p.CurrentTotal != 99 {
		t.Error("Reconcile modified its input")
	}

	_, again := Reconcile(fixed, today)
	if !again.None() {
		t.Errorf("second reconcile drift = %+v, want none", again)
	}
}

func TestSummarize(t *testing.T) {
	today := calendar.Date(2025, time.January, 3)
	p := newTestProgress()
	for id := 1; id <= 3; id++ {
		p, _ = UpdateProblem(p, today, id, Complete(testNow, nil), testNow)
	}

	s := Summarize(p, today)
	if s.CurrentTotal != 3 || s.TotalProblems != 300 {
		t.Errorf("totals = %d/%d", s.CurrentTotal, s.TotalProblems)
	}
	if math.Abs(s.Percent-1.0) > 1e-9 {
		t.Errorf("percent = %v, want 1", s.Percent)
	}
	if s.DaysRemaining != 12 {
		t.Errorf("daysRemaining = %d, want 12", s.DaysRemaining)
	}
	if math.Abs(s.AverageNeeded-297.0/12) > 1e-9 {
		t.Errorf("averageNeeded = %v", s.AverageNeeded)
	}
	if s.Today != "2025-01-03" || s.CycleDay != 3 {
		t.Errorf("today = %s cycle day %d", s.Today, s.CycleDay)
	}
	if s.TodayTheme != cycle.ThemeForDate(today) {
		t.Errorf("todayTheme = %q", s.TodayTheme)
	}
	if s.TodayCompleted != 3 || s.Streak != 1 {
		t.Errorf("todayCompleted = %d streak = %d", s.TodayCompleted, s.Streak)
	}
}

func TestSummarizeLiveStreakAndPastTarget(t *testing.T) {
	p := newTestProgress()
	p, _ = UpdateProblem(p, testNow, 1, Complete(testNow, nil), testNow)

	later := calendar.Date(2025, time.February, 1)
	s := Summarize(p, later)
	if s.Streak != 0 {
		t.Errorf("live streak = %d, want 0", s.Streak)
	}
	if p.Streak != 1 {
		t.Errorf("stored streak changed to %d", p.Streak)
	}
	if s.DaysRemaining != 0 || s.AverageNeeded != 0 {
		t.Errorf("past target: remaining %d average %v", s.DaysRemaining, s.AverageNeeded)
	}
}
