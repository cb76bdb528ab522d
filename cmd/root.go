package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/config"
	"github.com/abhisek/grindlog/internal/logger"
	"github.com/abhisek/grindlog/internal/store"
	"github.com/abhisek/grindlog/internal/tracker"
)

var rootCmd = &cobra.Command{
	Use:   "grindlog",
	Short: "Daily coding-interview practice tracker",
	Long: "grindlog tracks six practice problems a day against a 14-day topic rotation,\n" +
		"with a completion streak and progress toward a target total.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which serve uses for
// graceful shutdown.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to grindlog.yaml (default: ./config or $XDG_CONFIG_HOME/grindlog)")
	pf.String("user", "", "User whose progress to use (overrides GRINDLOG_USER)")
	pf.String("driver", "", "Storage driver: file, sqlite, postgres or memory")
	pf.String("db", "", "Database file (sqlite) or data directory (file)")
	pf.BoolP("quiet", "q", false, "Disable logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(todayCmd, dayCmd, doneCmd, undoCmd, linkCmd)
	rootCmd.AddCommand(weekCmd, monthCmd)
	rootCmd.AddCommand(statsCmd, themeCmd)
	rootCmd.AddCommand(exportCmd, importCmd, repairCmd, logCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.User = v
	}
	if v, _ := cmd.Flags().GetString("driver"); v != "" {
		cfg.Storage.Driver = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Storage.Path = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runtime is what a command needs to reach the tracker.
type runtime struct {
	cfg *config.Config
	log *zap.Logger
	svc *tracker.Service
}

func (r *runtime) user() string {
	return r.cfg.User
}

func (r *runtime) Close() {
	if err := r.svc.Close(); err != nil {
		r.log.Warn("failed to close store", zap.Error(err))
	}
	_ = r.log.Sync()
}

// openService loads config, builds the logger and opens the store. A
// negative level disables logging entirely.
func openService(cmd *cobra.Command, level zapcore.Level, opts ...tracker.Option) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop()
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet && level != silent {
		log, err = logger.New(cfg, level)
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
	}

	sc, err := cfg.StoreConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cmd.Context(), sc, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &runtime{
		cfg: cfg,
		log: log,
		svc: tracker.New(st, log, append([]tracker.Option{tracker.WithSeed(sc.Seed)}, opts...)...),
	}, nil
}

// openLocal is openService for commands run by the local user: without a
// stored plan they start from the configured seed.
func openLocal(cmd *cobra.Command, level zapcore.Level) (*runtime, error) {
	return openService(cmd, level, tracker.WithAutoInit())
}

// silent is passed to openService by commands that own the terminal.
const silent = zapcore.InvalidLevel
