// Package day shows one calendar day's six problems and edits them.
package day

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/screen"
	"github.com/abhisek/grindlog/internal/tracker"
	"github.com/abhisek/grindlog/internal/ui/components"
	"github.com/abhisek/grindlog/internal/ui/layout"
	"github.com/abhisek/grindlog/internal/ui/theme"
)

type loadedMsg struct {
	day progress.DayProgress
	err error
}

type savedMsg struct {
	problem progress.Problem
	err     error
}

// DayScreen lists the problems of a single date.
type DayScreen struct {
	svc  *tracker.Service
	user string
	date time.Time

	day    progress.DayProgress
	loaded bool
	cursor int

	editing bool
	input   components.TextInput

	err     error
	warning string
}

var (
	_ screen.Screen        = (*DayScreen)(nil)
	_ screen.Refresher     = (*DayScreen)(nil)
	_ screen.InputCapturer = (*DayScreen)(nil)
)

// New creates a DayScreen for date.
func New(svc *tracker.Service, user string, date time.Time) *DayScreen {
	date = calendar.Day(date)
	return &DayScreen{
		svc:  svc,
		user: user,
		date: date,
		day:  progress.NewDay(date),
	}
}

func (d *DayScreen) Init() tea.Cmd {
	return d.load()
}

func (d *DayScreen) Refresh() tea.Cmd {
	return d.load()
}

func (d *DayScreen) CapturingInput() bool {
	return d.editing
}

func (d *DayScreen) load() tea.Cmd {
	svc, user, key := d.svc, d.user, calendar.Key(d.date)
	return func() tea.Msg {
		day, err := svc.Day(context.Background(), user, key)
		return loadedMsg{day: day, err: err}
	}
}

func (d *DayScreen) save(id int, completed bool, link *string) tea.Cmd {
	svc, user := d.svc, d.user
	in := tracker.UpdateInput{
		Date:          calendar.Key(d.date),
		ProblemNumber: id,
		Completed:     completed,
		Link:          link,
	}
	return func() tea.Msg {
		pr, err := svc.UpdateProblem(context.Background(), user, in)
		return savedMsg{problem: pr, err: err}
	}
}

func (d *DayScreen) selected() progress.Problem {
	if d.cursor < len(d.day.Problems) {
		return d.day.Problems[d.cursor]
	}
	return progress.Problem{ID: d.cursor + 1}
}

func (d *DayScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		d.err = msg.err
		if msg.err == nil {
			d.day = msg.day
			d.loaded = true
		}
		return d, nil

	case savedMsg:
		return d, d.handleSaved(msg)

	case tea.KeyPressMsg:
		if d.editing {
			return d, d.updateEditing(msg)
		}
		return d, d.handleKey(msg)
	}

	if d.editing {
		var cmd tea.Cmd
		d.input, cmd = d.input.Update(msg)
		return d, cmd
	}
	return d, nil
}

func (d *DayScreen) handleSaved(msg savedMsg) tea.Cmd {
	d.warning = ""
	if msg.err != nil && !errors.Is(msg.err, progress.ErrPersistence) {
		if d.editing {
			d.input.SetError(msg.err)
		} else {
			d.err = msg.err
		}
		return nil
	}
	if msg.err != nil {
		d.warning = "not saved: " + msg.err.Error()
	}
	d.err = nil
	d.editing = false
	return tea.Batch(d.load(), screen.Changed)
}

func (d *DayScreen) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < progress.ProblemsPerDay-1 {
			d.cursor++
		}
	case "x", "space", " ", "enter":
		pr := d.selected()
		return d.save(pr.ID, !pr.Completed, nil)
	case "e", "L":
		d.editing = true
		d.input = components.NewTextInput("https://leetcode.com/problems/...", d.selected().Link, 512)
		return nil
	}
	return nil
}

func (d *DayScreen) updateEditing(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		d.editing = false
		return nil
	case "enter":
		link := strings.TrimSpace(d.input.Value())
		if link == "" {
			d.editing = false
			return nil
		}
		return d.save(d.selected().ID, true, &link)
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *DayScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(theme.Title.Render(d.date.Format("Monday, Jan 2 2006")))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("   cycle day %d/%d", cycle.CycleDayForDate(d.date), cycle.Length)))
	b.WriteString("\n")
	b.WriteString(theme.ThemeName.Render(d.day.Theme))
	b.WriteString("\n")
	if detail, ok := cycle.Details(d.day.Theme); ok && !layout.IsCompactWidth(width) {
		b.WriteString(theme.Hint.Render(detail.Description + "  (" + detail.Difficulty + ")"))
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render("Key problems: " + strings.Join(detail.KeyProblems, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, pr := range d.day.Problems {
		b.WriteString(d.renderProblem(i, pr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(components.Pips(d.day.CompletedCount(), progress.ProblemsPerDay))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d of %d done", d.day.CompletedCount(), progress.ProblemsPerDay)))
	b.WriteString("\n")

	if d.editing {
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(fmt.Sprintf("Link for problem %d:", d.selected().ID)))
		b.WriteString("\n")
		b.WriteString(d.input.View())
		b.WriteString("\n")
	}
	if d.warning != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render(d.warning) + "\n")
	}
	if d.err != nil {
		b.WriteString("\n" + theme.ErrorText.Render(d.err.Error()) + "\n")
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (d *DayScreen) renderProblem(i int, pr progress.Problem) string {
	marker := "  "
	if i == d.cursor {
		marker = theme.Selected.Render("▸ ")
	}
	box := theme.Pending.Render("[ ]")
	label := theme.Unselected.Render(fmt.Sprintf("Problem %d", pr.ID))
	if pr.Completed {
		box = theme.Done.Render("[✓]")
		label = theme.Done.Render(fmt.Sprintf("Problem %d", pr.ID))
	}

	line := marker + box + " " + label
	if pr.Link != "" {
		line += "  " + theme.Link.Render(pr.Link)
	}
	if pr.CompletedAt != nil {
		line += theme.Subtitle.Render("  " + pr.CompletedAt.Local().Format("Jan 2 15:04"))
	}
	return line
}

func (d *DayScreen) Title() string {
	if calendar.Key(d.date) == calendar.Key(d.svc.Today()) {
		return "Today"
	}
	return calendar.Key(d.date)
}

func (d *DayScreen) KeyHints() []layout.KeyHint {
	if d.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save link"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "x", Description: "Toggle"},
		{Key: "e", Description: "Edit link"},
		{Key: "Esc", Description: "Back"},
	}
}
