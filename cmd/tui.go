package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/grindlog/internal/app"
)

// runTUI opens the store and launches the terminal UI. Logging is disabled
// because the UI owns the screen.
func runTUI(cmd *cobra.Command) error {
	rt, err := openLocal(cmd, silent)
	if err != nil {
		return err
	}
	defer rt.Close()

	return app.Run(app.Options{Service: rt.svc, User: rt.user()})
}
