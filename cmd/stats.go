package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show progress toward the target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		st, err := rt.svc.Stats(cmd.Context(), rt.user())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "%-16s %s\n", "User", st.User)
		fmt.Fprintf(w, "%-16s %d/%d (%.1f%%)\n", "Solved", st.CurrentTotal, st.TotalProblems, st.Percent)
		fmt.Fprintf(w, "%-16s %d days\n", "Streak", st.Streak)
		if st.LastCompletedDate != "" {
			fmt.Fprintf(w, "%-16s %s\n", "Last completed", st.LastCompletedDate)
		}
		fmt.Fprintf(w, "%-16s %s (%d days left)\n", "Target", st.TargetDate, st.DaysRemaining)
		if st.AverageNeeded > 0 {
			fmt.Fprintf(w, "%-16s %.1f per day\n", "Needed", st.AverageNeeded)
		}
		fmt.Fprintf(w, "%-16s %s, day %d/%d: %s (%d/6 done)\n", "Today",
			st.Today, st.CycleDay, cycle.Length, st.TodayTheme, st.TodayCompleted)
		return nil
	},
}

var themeCmd = &cobra.Command{
	Use:   "theme [date]",
	Short: "Show the rotation theme of a date (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := calendar.Today(timeNow())
		if len(args) == 1 {
			d, err := calendar.Parse(args[0])
			if err != nil {
				return err
			}
			date = d
		}

		w := cmd.OutOrStdout()
		name := cycle.ThemeForDate(date)
		fmt.Fprintf(w, "%s  cycle day %d/%d\n%s\n", calendar.Key(date), cycle.CycleDayForDate(date), cycle.Length, name)
		if d, ok := cycle.Details(name); ok {
			fmt.Fprintf(w, "\n%s\nDifficulty: %s\nKey problems:\n", d.Description, d.Difficulty)
			for _, p := range d.KeyProblems {
				fmt.Fprintln(w, "  - "+p)
			}
		}

		all, _ := cmd.Flags().GetBool("all")
		if all {
			fmt.Fprintln(w, "\nRotation:")
			for i, t := range cycle.Themes {
				fmt.Fprintf(w, "  %2d  %s\n", i+1, t)
			}
		}
		return nil
	},
}

// timeNow is the clock for commands that do not open a store.
var timeNow = time.Now

func init() {
	themeCmd.Flags().Bool("all", false, "Also list the whole rotation")
}
