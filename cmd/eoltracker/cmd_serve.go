package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/eoltracker/internal/app"
	"github.com/MrSnakeDoc/eoltracker/internal/config"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API. The catalog is reloaded periodically and on
POST /reload. Settings come from EOL_* and REDIS_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
		defer func() { _ = loggerClient.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.New(ctx, cfg, loggerClient).Run(ctx)
	},
}
