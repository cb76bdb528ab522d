package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the progress snapshot as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		data, err := rt.svc.Export(cmd.Context(), rt.user())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" || out == "-" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace progress with a snapshot (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}

		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		p, err := rt.svc.Import(cmd.Context(), rt.user(), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d days, %d/%d solved\n",
			len(p.Days), p.CurrentTotal, p.TotalProblems)
		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Recompute the solved total and streak from stored days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openLocal(cmd, zapcore.WarnLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		drift, err := rt.svc.Repair(cmd.Context(), rt.user())
		if err != nil {
			return err
		}
		if drift.None() {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to repair")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Repaired: total %+d, streak %+d\n", drift.CurrentTotal, drift.Streak)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}
