package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/store"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent changes to your progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := rt.svc.Activity(cmd.Context(), rt.user(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No activity yet")
			return nil
		}
		for _, a := range entries {
			printActivity(cmd.OutOrStdout(), a)
		}
		return nil
	},
}

func printActivity(w io.Writer, a store.Activity) {
	when := a.At.Local().Format("2006-01-02 15:04")
	switch a.Kind {
	case store.KindComplete, store.KindUncomplete:
		line := fmt.Sprintf("%s  %-10s %s problem %d", when, a.Kind, a.Date, a.Problem)
		if a.Link != "" {
			line += "  " + a.Link
		}
		fmt.Fprintln(w, line)
	default:
		fmt.Fprintf(w, "%s  %-10s %s\n", when, a.Kind, a.Detail)
	}
}

func init() {
	logCmd.Flags().IntP("limit", "n", 0, "Number of entries to show (default 20)")
}
