package cli

import (
	"log/slog"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/monitoring"
	"github.com/spacesedan/starsense/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  `Serve single and bulk analysis over HTTP, with health, readiness and Prometheus metrics endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if settings.AppEnv == config.ENV_PRODUCTION {
			gin.SetMode(gin.ReleaseMode)
		}

		analyzer, stack, err := newAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer stack.Close()

		ready := &atomic.Bool{}
		go monitoring.MonitorClassifierHealth(ctx, stack, ready, monitoring.HEALTHCHECK_TIMER)

		slog.Info("[Main] Starting HTTP API",
			slog.String("backend", stack.Name()),
			slog.String("addr", settings.HTTPAddr))

		return server.Run(ctx, settings.HTTPAddr, server.NewRouter(analyzer, ready))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
