package app

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/store"
	"github.com/abhisek/grindlog/internal/tracker"
)

var fixedNow = time.Date(2025, 1, 3, 12, 0, 0, 0, time.Local)

// step feeds msg into m and then runs every resulting command to completion.
func step(m AppModel, msg tea.Msg) (AppModel, bool) {
	queue := []tea.Msg{msg}
	quit := false
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, ok := next.(tea.QuitMsg); ok {
			quit = true
			continue
		}
		if batch, ok := next.(tea.BatchMsg); ok {
			for _, c := range batch {
				if c != nil {
					queue = append(queue, c())
				}
			}
			continue
		}
		updated, cmd := m.Update(next)
		m = updated.(AppModel)
		if cmd != nil {
			queue = append(queue, cmd())
		}
	}
	return m, quit
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func newTestApp(t *testing.T) AppModel {
	t.Helper()
	svc := tracker.New(store.NewMemory(progress.DefaultSeed()), nil,
		tracker.WithClock(func() time.Time { return fixedNow }), tracker.WithAutoInit())
	m := newAppModel(Options{Service: svc, User: "alice"})
	m, _ = step(m, tea.WindowSizeMsg{Width: 120, Height: 40})
	init := m.Init()
	require.NotNil(t, init)
	m, _ = step(m, init())
	return m
}

func TestCompletingAProblemUpdatesHeader(t *testing.T) {
	m := newTestApp(t)
	assert.Equal(t, 300, m.header.Total)

	// Dashboard -> Today, then toggle problem 1.
	m, _ = step(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, 2, m.router.Depth())
	assert.Equal(t, "Today", m.router.Active().Title())

	m, _ = step(m, keyPress('x'))
	assert.Equal(t, 1, m.header.Done)
	assert.Equal(t, 1, m.header.Streak)

	content := m.render()
	assert.True(t, strings.Contains(content, "1/300"), "header missing count:\n%s", content)
}

func TestEscapePopsUnlessEditing(t *testing.T) {
	m := newTestApp(t)
	m, _ = step(m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.Equal(t, 2, m.router.Depth())

	m, _ = step(m, keyPress('e'))
	m, _ = step(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, 2, m.router.Depth(), "esc while editing should only close the editor")

	m, _ = step(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.Equal(t, 1, m.router.Depth())

	_, quit := step(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, quit)
}

func TestQuitKeys(t *testing.T) {
	m := newTestApp(t)
	_, quit := step(m, keyPress('q'))
	assert.True(t, quit)

	_, quit = step(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	assert.True(t, quit)
}

func TestTooSmall(t *testing.T) {
	m := newTestApp(t)
	m, _ = step(m, tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, m.render(), "Terminal too small")
}

func TestRunRequiresService(t *testing.T) {
	assert.Error(t, Run(Options{User: "alice"}))
}
