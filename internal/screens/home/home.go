// Package home is the dashboard the TUI starts on.
package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/router"
	"github.com/abhisek/grindlog/internal/screen"
	"github.com/abhisek/grindlog/internal/screens/day"
	"github.com/abhisek/grindlog/internal/screens/month"
	"github.com/abhisek/grindlog/internal/screens/week"
	"github.com/abhisek/grindlog/internal/tracker"
	"github.com/abhisek/grindlog/internal/ui/components"
	"github.com/abhisek/grindlog/internal/ui/layout"
	"github.com/abhisek/grindlog/internal/ui/theme"
)

type statsMsg struct {
	stats progress.Stats
	err   error
}

// HomeScreen shows today's theme, overall progress and the navigation menu.
type HomeScreen struct {
	svc   *tracker.Service
	user  string
	menu  components.Menu
	stats progress.Stats
	err   error
}

var (
	_ screen.Screen    = (*HomeScreen)(nil)
	_ screen.Refresher = (*HomeScreen)(nil)
)

// New creates a HomeScreen for user.
func New(svc *tracker.Service, user string) *HomeScreen {
	h := &HomeScreen{svc: svc, user: user}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Today", Action: func() tea.Cmd {
			return router.Push(day.New(svc, user, svc.Today()))
		}},
		{Label: "This week", Action: func() tea.Cmd {
			return router.Push(week.New(svc, user, svc.Today()))
		}},
		{Label: "This month", Action: func() tea.Cmd {
			return router.Push(month.New(svc, user, svc.Today()))
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	svc, user := h.svc, h.user
	return func() tea.Msg {
		st, err := svc.Stats(context.Background(), user)
		return statsMsg{stats: st, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		h.stats, h.err = msg.stats, msg.err
		return h, nil
	case screen.ProgressChangedMsg:
		return h, h.load()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := layout.IsCompactWidth(width) || height < 22
	cw := contentWidth(width)

	sections := []string{
		renderToday(h.stats, cw, compact),
		renderGoal(h.stats, cw),
		h.menu.View(),
	}
	if h.err != nil {
		sections = append(sections, theme.ErrorText.Render(h.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top).
		Render(strings.Join(sections, "\n\n"))
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}
