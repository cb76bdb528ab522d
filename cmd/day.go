package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/cycle"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/tracker"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showDay(cmd, "")
	},
}

var dayCmd = &cobra.Command{
	Use:   "day <date>",
	Short: "Show the problems of a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showDay(cmd, args[0])
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <problem>",
	Short: "Mark a problem complete",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var link *string
		if cmd.Flags().Changed("link") {
			v, _ := cmd.Flags().GetString("link")
			link = &v
		}
		return setProblem(cmd, args[0], true, link)
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <problem>",
	Short: "Mark a problem incomplete and clear its link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setProblem(cmd, args[0], false, nil)
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <problem> <url>",
	Short: "Record the link of a solved problem",
	Long:  "Record the link of a problem. The problem is marked complete.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setProblem(cmd, args[0], true, &args[1])
	},
}

func init() {
	for _, c := range []*cobra.Command{doneCmd, undoCmd, linkCmd} {
		c.Flags().String("date", "", "Date YYYY-MM-DD (default today)")
	}
	doneCmd.Flags().String("link", "", "Link to the solved problem")
}

func showDay(cmd *cobra.Command, date string) error {
	rt, err := openLocal(cmd, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer rt.Close()

	if date == "" {
		date = calendar.Key(rt.svc.Today())
	}
	d, err := rt.svc.Day(cmd.Context(), rt.user(), date)
	if err != nil {
		return err
	}
	printDay(cmd.OutOrStdout(), d)
	return nil
}

func setProblem(cmd *cobra.Command, number string, completed bool, link *string) error {
	n, err := strconv.Atoi(number)
	if err != nil {
		return fmt.Errorf("problem must be a number between 1 and %d, got %q", progress.ProblemsPerDay, number)
	}

	rt, err := openLocal(cmd, zapcore.WarnLevel)
	if err != nil {
		return err
	}
	defer rt.Close()

	date, _ := cmd.Flags().GetString("date")
	if date == "" {
		date = calendar.Key(rt.svc.Today())
	}

	pr, err := rt.svc.UpdateProblem(cmd.Context(), rt.user(), tracker.UpdateInput{
		Date:          date,
		ProblemNumber: n,
		Completed:     completed,
		Link:          link,
	})
	if err != nil {
		return err
	}

	state := "incomplete"
	if pr.Completed {
		state = "complete"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s problem %d: %s\n", date, pr.ID, state)

	st, err := rt.svc.Stats(cmd.Context(), rt.user())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "total %d/%d, streak %d\n", st.CurrentTotal, st.TotalProblems, st.Streak)
	return nil
}

func printDay(w io.Writer, d progress.DayProgress) {
	date, _ := calendar.Parse(d.Date)
	fmt.Fprintf(w, "%s  %s  (cycle day %d/%d)\n", d.Date, d.Theme, cycle.CycleDayForDate(date), cycle.Length)
	for _, pr := range d.Problems {
		box := "[ ]"
		if pr.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("  %s %d", box, pr.ID)
		if pr.Link != "" {
			line += "  " + pr.Link
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "%d/%d done\n", d.CompletedCount(), progress.ProblemsPerDay)
}
