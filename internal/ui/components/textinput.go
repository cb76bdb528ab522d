package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/grindlog/internal/ui/theme"
)

// TextInput wraps bubbles/textinput and shows a rejection reason under the
// field.
type TextInput struct {
	Model textinput.Model
	err   error
}

// NewTextInput creates a focused text input holding value.
func NewTextInput(placeholder, value string, maxWidth int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxWidth > 0 {
		ti.CharLimit = maxWidth
	}
	ti.SetValue(value)
	ti.CursorEnd()
	ti.Focus()
	return TextInput{Model: ti}
}

// Update forwards messages to the wrapped input. Editing clears the error.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	if _, ok := msg.(tea.KeyPressMsg); ok {
		t.err = nil
	}
	return t, cmd
}

// View renders the input and the last error, if any.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.err != nil {
		view += "\n" + theme.ErrorText.Render("✗ "+t.err.Error())
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the current input value.
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// SetError shows err under the field until the next keystroke.
func (t *TextInput) SetError(err error) {
	t.err = err
}

// Err returns the error currently shown.
func (t TextInput) Err() error {
	return t.err
}
