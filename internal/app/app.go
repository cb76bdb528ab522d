package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/router"
	"github.com/abhisek/grindlog/internal/screen"
	"github.com/abhisek/grindlog/internal/screens/home"
	"github.com/abhisek/grindlog/internal/tracker"
	"github.com/abhisek/grindlog/internal/ui/layout"
)

// Options holds what the TUI needs to run.
type Options struct {
	Service *tracker.Service
	User    string
}

type headerMsg struct {
	stats progress.Stats
	err   error
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	svc    *tracker.Service
	user   string
	header layout.HeaderStats
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	return AppModel{
		router: router.New(home.New(opts.Service, opts.User)),
		svc:    opts.Service,
		user:   opts.User,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.refreshHeader(), m.router.Active().Init())
}

func (m AppModel) refreshHeader() tea.Cmd {
	svc, user := m.svc, m.user
	return func() tea.Msg {
		st, err := svc.Stats(context.Background(), user)
		return headerMsg{stats: st, err: err}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case headerMsg:
		if msg.err == nil {
			m.header = layout.HeaderStats{
				Done:   msg.stats.CurrentTotal,
				Total:  msg.stats.TotalProblems,
				Streak: msg.stats.Streak,
			}
		}
		return m, nil

	case screen.ProgressChangedMsg:
		return m, tea.Batch(m.refreshHeader(), m.router.Update(msg))

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if c, ok := m.router.Active().(screen.InputCapturer); ok && c.CapturingInput() {
			break
		}
		switch msg.String() {
		case "esc":
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		case "q":
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full frame, or nothing before the first resize.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}
	header := layout.RenderHeader(title, m.header, m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "q", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Service == nil || opts.User == "" {
		return fmt.Errorf("app: service and user are required")
	}
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
