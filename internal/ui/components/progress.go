package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/grindlog/internal/ui/theme"
)

// ProgressBar displays a horizontal progress bar. Fraction is 0..1.
type ProgressBar struct {
	Label       string
	Fraction    float64
	ShowPercent bool
	Width       int
}

// NewProgressBar creates a new progress bar.
func NewProgressBar(label string, fraction float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{
		Label:       label,
		Fraction:    fraction,
		ShowPercent: showPercent,
		Width:       width,
	}
}

// Filled returns how many cells of a bar of barWidth are filled.
func Filled(fraction float64, barWidth int) int {
	filled := int(float64(barWidth) * fraction)
	if filled > barWidth {
		return barWidth
	}
	if filled < 0 {
		return 0
	}
	return filled
}

// View renders the progress bar.
func (p ProgressBar) View() string {
	var result string
	if p.Label != "" {
		result = theme.Body.Render(p.Label) + "  "
	}

	percentWidth := 0
	if p.ShowPercent {
		percentWidth = 7
	}
	barWidth := p.Width - lipgloss.Width(result) - percentWidth
	if barWidth < 4 {
		barWidth = 4
	}

	filled := Filled(p.Fraction, barWidth)
	result += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))

	if p.ShowPercent {
		result += theme.Subtitle.Render(fmt.Sprintf("  %.1f%%", p.Fraction*100))
	}
	return result
}

// Pips renders done out of total as filled and hollow dots.
func Pips(done, total int) string {
	if done > total {
		done = total
	}
	if done < 0 {
		done = 0
	}
	return theme.Done.Render(strings.Repeat("●", done)) +
		theme.Pending.Render(strings.Repeat("○", total-done))
}
