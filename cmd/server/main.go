// Package main implements the entry point for the Recall API server, which
// stores users' memories and reminders and exposes them over a JSON API.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the binary without a
// subcommand serves the API.
func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "recall-api",
		Short:         "Personal memory and reminder API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}

			app, err := newApplication(cmd.Context(), cfg, log, db)
			if err != nil {
				_ = db.Close()
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [" + strings.Join(postgres.MigrationCommands, "|") + "]",
		Short: "Apply or inspect database migrations",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("expected at most one migration command, got %d", len(args))
			}
			if len(args) == 1 && !postgres.ValidMigrationCommand(args[0]) {
				return fmt.Errorf("unknown migration command %q", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, log, err := initializeApp()
			if err != nil {
				return err
			}

			db, err := openDatabase(cmd.Context(), cfg.Database, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Error("failed to close database", "error", err)
				}
			}()

			log.Info("running migrations", "command", command)
			return postgres.Migrate(cmd.Context(), db, log, command)
		},
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)
	log.Debug("optional integrations",
		"gemini_configured", cfg.LLM.GeminiAPIKey != "",
		"cookie_secure", cfg.Auth.CookieSecure)

	return cfg, log, nil
}
