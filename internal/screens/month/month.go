// Package month renders a calendar grid of one month.
package month

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
	"github.com/abhisek/grindlog/internal/ui/layout"
	"github.com/abhisek/grindlog/internal/ui/theme"
)

const cellWidth = 8

type loadedMsg struct {
	year, month0 int
	days         []progress.DayProgress
	err          error
}

// MonthScreen shows every day of a month with its completion count.
type MonthScreen struct {
	svc    *tracker.Service
	user   string
	year   int
	month0 int
	days   []progress.DayProgress
	cursor int
	err    error
}

var (
	_ screen.Screen    = (*MonthScreen)(nil)
	_ screen.Refresher = (*MonthScreen)(nil)
)

// New creates a MonthScreen for the month containing ref, with ref selected.
func New(svc *tracker.Service, user string, ref time.Time) *MonthScreen {
	ref = calendar.Day(ref)
	return &MonthScreen{
		svc:    svc,
		user:   user,
		year:   ref.Year(),
		month0: int(ref.Month()) - 1,
		cursor: ref.Day() - 1,
	}
}

func (m *MonthScreen) Init() tea.Cmd {
	return m.load()
}

func (m *MonthScreen) Refresh() tea.Cmd {
	return m.load()
}

func (m *MonthScreen) load() tea.Cmd {
	svc, user, year, month0 := m.svc, m.user, m.year, m.month0
	return func() tea.Msg {
		days, err := svc.MonthProgress(context.Background(), user, year, month0)
		return loadedMsg{year: year, month0: month0, days: days, err: err}
	}
}

func (m *MonthScreen) first() time.Time {
	return calendar.Date(m.year, time.Month(m.month0+1), 1)
}

func (m *MonthScreen) length() int {
	return m.first().AddDate(0, 1, -1).Day()
}

func (m *MonthScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.year != m.year || msg.month0 != m.month0 {
			return m, nil
		}
		m.days, m.err = msg.days, msg.err
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "left", "h":
			m.move(-1)
		case "right", "l":
			m.move(1)
		case "up", "k":
			m.move(-7)
		case "down", "j":
			m.move(7)
		case "[":
			return m, m.shift(-1)
		case "]":
			return m, m.shift(1)
		case "enter":
			return m, router.Push(day.New(m.svc, m.user, m.Selected()))
		}
	}
	return m, nil
}

func (m *MonthScreen) move(n int) {
	c := m.cursor + n
	if c >= 0 && c < m.length() {
		m.cursor = c
	}
}

func (m *MonthScreen) shift(months int) tea.Cmd {
	next := m.first().AddDate(0, months, 0)
	m.year, m.month0 = next.Year(), int(next.Month())-1
	if last := m.length() - 1; m.cursor > last {
		m.cursor = last
	}
	m.days = nil
	return m.load()
}

// Selected returns the highlighted date.
func (m *MonthScreen) Selected() time.Time {
	return calendar.AddDays(m.first(), m.cursor)
}

func (m *MonthScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(m.first().Format("January 2006")))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(theme.ErrorText.Render(m.err.Error()))
		return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
	}

	for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%-*s", cellWidth, name)))
	}
	b.WriteString("\n")

	// Monday-first column of the 1st.
	offset := (int(m.first().Weekday()) + 6) % 7
	b.WriteString(strings.Repeat(" ", offset*cellWidth))

	today := calendar.Key(m.svc.Today())
	total, active := 0, 0
	for i, d := range m.days {
		n := d.CompletedCount()
		total += n
		if n > 0 {
			active++
		}
		b.WriteString(m.renderCell(i, d, d.Date == today))
		if (offset+i)%7 == 6 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d problems, %d active days", total, active)))
	if m.cursor < len(m.days) {
		sel := m.days[m.cursor]
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(sel.Date + "  "))
		b.WriteString(theme.ThemeName.Render(sel.Theme))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m *MonthScreen) renderCell(i int, d progress.DayProgress, isToday bool) string {
	n := d.CompletedCount()
	text := fmt.Sprintf("%2d %d/%d", i+1, n, progress.ProblemsPerDay)

	style := theme.Pending
	switch {
	case n == progress.ProblemsPerDay:
		style = theme.Done
	case n > 0:
		style = lipgloss.NewStyle().Foreground(theme.Accent)
	}
	if isToday {
		style = style.Underline(true)
	}
	if i == m.cursor {
		style = style.Reverse(true)
	}
	return style.Render(text) + strings.Repeat(" ", cellWidth-len(text))
}

func (m *MonthScreen) Title() string {
	return "Month"
}

func (m *MonthScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "←↑↓→", Description: "Select"},
		{Key: "[ ]", Description: "Month"},
		{Key: "Enter", Description: "Open day"},
		{Key: "Esc", Description: "Back"},
	}
}
