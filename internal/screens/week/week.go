// Package week shows seven days at a time.
package week

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/router"
	"github.com/abhisek/grindlog/internal/screen"
	"github.com/abhisek/grindlog/internal/screens/day"
	"github.com/abhisek/grindlog/internal/tracker"
	"github.com/abhisek/grindlog/internal/ui/components"
	"github.com/abhisek/grindlog/internal/ui/layout"
	"github.com/abhisek/grindlog/internal/ui/theme"
)

type loadedMsg struct {
	monday time.Time
	days   []progress.DayProgress
	err    error
}

// WeekScreen lists Monday to Sunday of one week.
type WeekScreen struct {
	svc    *tracker.Service
	user   string
	monday time.Time
	days   []progress.DayProgress
	cursor int
	err    error
}

var (
	_ screen.Screen    = (*WeekScreen)(nil)
	_ screen.Refresher = (*WeekScreen)(nil)
)

// New creates a WeekScreen for the week containing ref, with ref selected.
func New(svc *tracker.Service, user string, ref time.Time) *WeekScreen {
	dates := calendar.WeekOf(ref)
	return &WeekScreen{
		svc:    svc,
		user:   user,
		monday: dates[0],
		cursor: calendar.DaysBetween(dates[0], calendar.Day(ref)),
	}
}

func (w *WeekScreen) Init() tea.Cmd {
	return w.load()
}

func (w *WeekScreen) Refresh() tea.Cmd {
	return w.load()
}

func (w *WeekScreen) load() tea.Cmd {
	svc, user, monday := w.svc, w.user, w.monday
	return func() tea.Msg {
		days, err := svc.WeekProgress(context.Background(), user,
			calendar.Key(monday), calendar.Key(calendar.AddDays(monday, 6)))
		return loadedMsg{monday: monday, days: days, err: err}
	}
}

func (w *WeekScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		// A stale load for a week we already left is dropped.
		if !msg.monday.Equal(w.monday) {
			return w, nil
		}
		w.days, w.err = msg.days, msg.err
		return w, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "up", "k":
			if w.cursor > 0 {
				w.cursor--
			}
		case "down", "j":
			if w.cursor < 6 {
				w.cursor++
			}
		case "left", "h", "[":
			return w, w.shift(-7)
		case "right", "l", "]":
			return w, w.shift(7)
		case "t":
			dates := calendar.WeekOf(w.svc.Today())
			w.monday = dates[0]
			w.cursor = calendar.DaysBetween(w.monday, w.svc.Today())
			return w, w.load()
		case "enter":
			return w, router.Push(day.New(w.svc, w.user, w.Selected()))
		}
	}
	return w, nil
}

func (w *WeekScreen) shift(days int) tea.Cmd {
	w.monday = calendar.AddDays(w.monday, days)
	w.days = nil
	return w.load()
}

// Selected returns the highlighted date.
func (w *WeekScreen) Selected() time.Time {
	return calendar.AddDays(w.monday, w.cursor)
}

func (w *WeekScreen) View(width, height int) string {
	var b strings.Builder

	sunday := calendar.AddDays(w.monday, 6)
	b.WriteString(theme.Title.Render(fmt.Sprintf("%s – %s",
		w.monday.Format("Jan 2"), sunday.Format("Jan 2 2006"))))
	b.WriteString("\n\n")

	if w.err != nil {
		b.WriteString(theme.ErrorText.Render(w.err.Error()))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	today := calendar.Key(w.svc.Today())
	total := 0
	for i, d := range w.days {
		total += d.CompletedCount()
		b.WriteString(w.renderRow(i, d, d.Date == today, width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d of %d problems this week",
		total, progress.ProblemsPerDay*7)))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (w *WeekScreen) renderRow(i int, d progress.DayProgress, isToday bool, width int) string {
	marker := "  "
	if i == w.cursor {
		marker = theme.Selected.Render("▸ ")
	}

	date, _ := calendar.Parse(d.Date)
	label := date.Format("Mon Jan 02")
	switch {
	case isToday:
		label = theme.Today.Render(label)
	case i == w.cursor:
		label = theme.Selected.Render(label)
	default:
		label = theme.Unselected.Render(label)
	}

	row := marker + label + "  " + components.Pips(d.CompletedCount(), progress.ProblemsPerDay) +
		theme.Subtitle.Render(fmt.Sprintf(" %d/%d", d.CompletedCount(), progress.ProblemsPerDay))
	if !layout.IsCompactWidth(width) {
		row += "  " + theme.ThemeName.Render(d.Theme)
	}
	return row
}

func (w *WeekScreen) Title() string {
	return "Week"
}

func (w *WeekScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "←→", Description: "Week"},
		{Key: "t", Description: "This week"},
		{Key: "Enter", Description: "Open day"},
		{Key: "Esc", Description: "Back"},
	}
}
