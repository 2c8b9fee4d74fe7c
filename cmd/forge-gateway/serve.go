package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vilaca/forge-gateway/internal/config"
	"github.com/vilaca/forge-gateway/internal/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the GraphQL HTTP server",
		Long: `Start the HTTP server exposing POST /graphql, GET /healthz and GET /metrics.
Configuration is read from the environment and config/.env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	app, err := buildServer(cfg, log)
	if err != nil {
		log.Errorw("server initialization error", "error", err)
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("Starting forge-gateway", "addr", cfg.ServerAddr(), "version", version)
		errCh <- app.Listen(cfg.ServerAddr())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	stop()

	log.Infow("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		log.Warnw("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout, "error", err)
	}
	return nil
}
