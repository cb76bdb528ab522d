package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/calendar"
	"github.com/abhisek/grindlog/internal/progress"
	"github.com/abhisek/grindlog/internal/tracker"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Start a new plan",
	Long:  "Start a new plan for the current user. Fails if the user already has one.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openService(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		in := tracker.CreateInput{
			StartDate:     calendar.Key(rt.svc.Today()),
			TargetDate:    rt.cfg.Seed.TargetDate,
			TotalProblems: rt.cfg.Seed.TotalProblems,
		}
		if v, _ := cmd.Flags().GetString("start"); v != "" {
			in.StartDate = v
		}
		if v, _ := cmd.Flags().GetString("target"); v != "" {
			in.TargetDate = v
		}
		if v, _ := cmd.Flags().GetInt("total"); v != 0 {
			in.TotalProblems = v
		}

		p, err := rt.svc.Create(cmd.Context(), rt.user(), in)
		if errors.Is(err, progress.ErrConflict) {
			return fmt.Errorf("%s already has a plan; use import to replace it", rt.user())
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Plan for %s: %d problems from %s to %s\n",
			p.User, p.TotalProblems, p.StartDate, p.TargetDate)
		return nil
	},
}

func init() {
	initCmd.Flags().String("start", "", "Start date YYYY-MM-DD (default today)")
	initCmd.Flags().String("target", "", "Target date YYYY-MM-DD (default seed.target_date)")
	initCmd.Flags().Int("total", 0, "Target number of problems (default seed.total_problems)")
}
