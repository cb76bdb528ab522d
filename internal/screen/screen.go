package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/grindlog/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that show stored progress. The router
// calls Refresh when the screen becomes active again after a pop.
type Refresher interface {
	Refresh() tea.Cmd
}

// ProgressChangedMsg is emitted after a screen wrote to the tracker.
type ProgressChangedMsg struct{}

// Changed is a command that emits ProgressChangedMsg.
func Changed() tea.Msg {
	return ProgressChangedMsg{}
}

// InputCapturer is implemented by screens with a focused text field. While
// CapturingInput reports true the app forwards every key, esc included.
type InputCapturer interface {
	CapturingInput() bool
}
