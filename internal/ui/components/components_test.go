package components

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestMenuSkipsDisabledItems(t *testing.T) {
	fired := ""
	m := NewMenu([]MenuItem{
		{Label: "Today", Disabled: true},
		{Label: "Week", Action: func() tea.Cmd { fired = "week"; return nil }},
		{Label: "Export", Disabled: true},
		{Label: "Month", Action: func() tea.Cmd { fired = "month"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("initial selection = %d, want 1", m.Selected)
	}

	m, _ = m.Update(key('j'))
	if m.Selected != 3 {
		t.Errorf("after down selection = %d, want 3", m.Selected)
	}
	m, _ = m.Update(key('j'))
	if m.Selected != 3 {
		t.Errorf("down at bottom moved to %d", m.Selected)
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if fired != "month" {
		t.Errorf("enter fired %q, want month", fired)
	}

	m, _ = m.Update(key('k'))
	if m.Selected != 1 {
		t.Errorf("after up selection = %d, want 1", m.Selected)
	}
	if !strings.Contains(m.View(), "▸ Week") {
		t.Errorf("view does not mark selection:\n%s", m.View())
	}
}

func TestFilled(t *testing.T) {
	tests := []struct {
		fraction float64
		width    int
		want     int
	}{
		{0, 10, 0},
		{0.5, 10, 5},
		{0.99, 10, 9},
		{1, 10, 10},
		{1.7, 10, 10},
		{-0.2, 10, 0},
	}
	for _, tt := range tests {
		if got := Filled(tt.fraction, tt.width); got != tt.want {
			t.Errorf("Filled(%v, %d) = %d, want %d", tt.fraction, tt.width, got, tt.want)
		}
	}
}

func TestPipsClamp(t *testing.T) {
	if got := strings.Count(Pips(9, 6), "●"); got != 6 {
		t.Errorf("filled pips = %d, want 6", got)
	}
	if got := strings.Count(Pips(-1, 6), "○"); got != 6 {
		t.Errorf("hollow pips = %d, want 6", got)
	}
	p := Pips(2, 6)
	if strings.Count(p, "●") != 2 || strings.Count(p, "○") != 4 {
		t.Errorf("Pips(2, 6) = %q", p)
	}
}

func TestTextInputErrorClearsOnKeypress(t *testing.T) {
	in := NewTextInput("https://", "https://example.com", 0)
	if in.Value() != "https://example.com" {
		t.Fatalf("value = %q", in.Value())
	}

	in.SetError(errors.New("link must be a valid URL"))
	if !strings.Contains(in.View(), "must be a valid URL") {
		t.Errorf("error not rendered: %q", in.View())
	}

	in, _ = in.Update(key('x'))
	if in.Err() != nil {
		t.Errorf("error survived a keypress: %v", in.Err())
	}
	if in.Value() != "https://example.comx" {
		t.Errorf("value after typing = %q", in.Value())
	}
}
