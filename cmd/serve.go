package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abhisek/grindlog/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openService(cmd, zapcore.InfoLevel)
		if err != nil {
			return err
		}
		defer rt.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = rt.cfg.Server.Addr
		}

		srv, err := api.New(rt.svc, rt.log, rt.cfg.Auth.JWTSecret)
		if err != nil {
			return err
		}

		errc := make(chan error, 1)
		go func() { errc <- srv.Listen(addr) }()

		select {
		case err := <-errc:
			return err
		case <-cmd.Context().Done():
		}

		rt.log.Info("shutting down", zap.Duration("timeout", shutdownTimeout))
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default server.addr from config)")
}
