package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/grindlog/internal/cycle"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/ui/components"
	"github.com/abhisek/grindlog/internal/ui/theme"
)

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	w := frameWidth - 6
	if w > 72 {
		w = 72
	}
	if w < 30 {
		w = 30
	}
	return w
}

func renderToday(st progress.Stats, cw int, compact bool) string {
	var b strings.Builder
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%s · cycle day %d/%d", st.Today, st.CycleDay, cycle.Length)))
	b.WriteString("\n")
	b.WriteString(theme.ThemeName.Render(st.TodayTheme))
	if d, ok := cycle.Details(st.TodayTheme); ok && !compact {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(d.Description))
	}
	b.WriteString("\n\n")
	b.WriteString(components.Pips(st.TodayCompleted, progress.ProblemsPerDay))
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d of %d today", st.TodayCompleted, progress.ProblemsPerDay)))

	return theme.ActiveCard.Width(cw).Render(b.String())
}

func renderGoal(st progress.Stats, cw int) string {
	fraction := 0.0
	if st.TotalProblems > 0 {
		fraction = float64(st.CurrentTotal) / float64(st.TotalProblems)
	}
	bar := components.NewProgressBar(
		fmt.Sprintf("%d/%d", st.CurrentTotal, st.TotalProblems), fraction, true, cw-4)

	streak := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).
		Render(fmt.Sprintf("★ %d day streak", st.Streak))

	pace := theme.Subtitle.Render(fmt.Sprintf("%d days to %s", st.DaysRemaining, st.TargetDate))
	if st.AverageNeeded > 0 {
		pace += theme.Subtitle.Render(fmt.Sprintf(" · %.1f/day needed", st.AverageNeeded))
	}

	return theme.Card.Width(cw).Render(bar.View() + "\n\n" + streak + "   " + pace)
}
