package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/medclimate/backend/internal/delivery/http"
	"github.com/medclimate/backend/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MedClimate API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := repo.EnsureSchema(schemaCtx); err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	store := metrics.NewInstrumentedRepository(repo, registry)

	app := http.NewApp(http.AppConfig{
		Name:        "MedClimate API " + version,
		CORSOrigins: cfg.CORSOrigins,
	})
	http.SetupRoutes(app, store, metrics.Handler(registry))

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		slog.Warn("server forced to shutdown", "error", err)
	}
	slog.Info("server exited gracefully")
	return nil
}
