package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
)

var weekCmd = &cobra.Command{
	Use:   "week [date]",
	Short: "Show the Monday-to-Sunday week containing date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		ref := rt.svc.Today()
		if len(args) == 1 {
			if ref, err = calendar.Parse(args[0]); err != nil {
				return err
			}
		}
		dates := calendar.WeekOf(ref)
		days, err := rt.svc.WeekProgress(cmd.Context(), rt.user(),
			calendar.Key(dates[0]), calendar.Key(dates[len(dates)-1]))
		if err != nil {
			return err
		}
		printDays(cmd.OutOrStdout(), days, calendar.Key(rt.svc.Today()))
		return nil
	},
}

var monthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Show every day of a month (default this month)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		today := rt.svc.Today()
		year, month0 := today.Year(), int(today.Month())-1
		if len(args) == 1 {
			if year, month0, err = parseMonth(args[0]); err != nil {
				return err
			}
		}
		days, err := rt.svc.MonthProgress(cmd.Context(), rt.user(), year, month0)
		if err != nil {
			return err
		}
		printDays(cmd.OutOrStdout(), days, calendar.Key(today))
		return nil
	},
}

// parseMonth parses YYYY-MM into a year and zero-based month.
func parseMonth(s string) (year, month0 int, err error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must be YYYY-MM, got %q", s)
	}
	return t.Year(), int(t.Month()) - 1, nil
}

func printDays(w io.Writer, days []progress.DayProgress, today string) {
	fmt.Fprintf(w, "%-3s %-10s  %-6s  %-3s  %s\n", "", "Date", "Done", "", "Theme")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	total := 0
	for _, d := range days {
		date, _ := calendar.Parse(d.Date)
		n := d.CompletedCount()
		total += n
		mark := " "
		if d.Date == today {
			mark = "*"
		}
		fmt.Fprintf(w, "%s%s %-10s  %-6s  %d/%d  %s\n",
			mark, date.Format("Mon"), d.Date,
			strings.Repeat("#", n)+strings.Repeat(".", progress.ProblemsPerDay-n),
			n, progress.ProblemsPerDay, d.Theme)
	}
	fmt.Fprintf(w, "\n%d of %d problems\n", total, len(days)*progress.ProblemsPerDay)
}
