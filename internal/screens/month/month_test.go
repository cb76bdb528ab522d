package month

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/router"
	"github.com/abhisek/grindlog/internal/store"
	"github.com/abhisek/grindlog/internal/tracker"
)

var fixedNow = time.Date(2025, 1, 3, 12, 0, 0, 0, time.Local)

func newService() *tracker.Service {
	return tracker.New(store.NewMemory(progress.DefaultSeed()), nil,
		tracker.WithClock(func() time.Time { return fixedNow }), tracker.WithAutoInit())
}

func load(m *MonthScreen, cmd tea.Cmd) {
	if cmd != nil {
		m.Update(cmd())
	}
}

func press(m *MonthScreen, r rune) {
	_, cmd := m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	load(m, cmd)
}

func TestLoadsWholeMonth(t *testing.T) {
	m := New(newService(), "alice", fixedNow)
	load(m, m.Init())

	require.Len(t, m.days, 31)
	assert.Equal(t, "2025-01-01", m.days[0].Date)
	assert.Equal(t, "2025-01-03", calendar.Key(m.Selected()))
	assert.Contains(t, m.View(120, 40), "January 2025")
}

func TestGridReflectsCompletions(t *testing.T) {
	svc := newService()
	for n := 1; n <= progress.ProblemsPerDay; n++ {
		_, err := svc.UpdateProblem(context.Background(), "alice", tracker.UpdateInput{
			Date: "2025-01-02", ProblemNumber: n, Completed: true,
		})
		require.NoError(t, err)
	}

	m := New(svc, "alice", fixedNow)
	load(m, m.Init())

	assert.Equal(t, 6, m.days[1].CompletedCount())
	assert.Contains(t, m.View(120, 40), "6 problems, 1 active days")
}

func TestCursorMovement(t *testing.T) {
	m := New(newService(), "alice", fixedNow)
	load(m, m.Init())

	press(m, 'j')
	assert.Equal(t, "2025-01-10", calendar.Key(m.Selected()))
	press(m, 'h')
	assert.Equal(t, "2025-01-09", calendar.Key(m.Selected()))

	// Moves that would leave the month are ignored.
	for i := 0; i < 3; i++ {
		press(m, 'k')
	}
	assert.Equal(t, "2025-01-02", calendar.Key(m.Selected()))
}

func TestMonthShiftClampsCursor(t *testing.T) {
	m := New(newService(), "alice", calendar.Date(2025, time.January, 31))
	load(m, m.Init())

	press(m, ']')
	require.Len(t, m.days, 28)
	assert.Equal(t, "2025-02-28", calendar.Key(m.Selected()))

	press(m, '[')
	press(m, '[')
	require.Len(t, m.days, 31)
	assert.Equal(t, "2024-12-28", calendar.Key(m.Selected()))
}

func TestEnterPushesDay(t *testing.T) {
	m := New(newService(), "alice", fixedNow)
	load(m, m.Init())

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	push, ok := cmd().(router.PushScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Today", push.Screen.Title())
}
