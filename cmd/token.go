package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/grindlog/internal/api"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API bearer token for --user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is not set (GRINDLOG_AUTH_JWT_SECRET or JWT_SECRET)")
		}

		ttl := cfg.Auth.TokenTTL
		if v, _ := cmd.Flags().GetDuration("ttl"); v > 0 {
			ttl = v
		}
		tok, err := api.IssueToken(cfg.Auth.JWTSecret, cfg.User, ttl, timeNow())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default auth.token_ttl)")
}
