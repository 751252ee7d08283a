package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medclimate/backend/internal/config"
	"github.com/medclimate/backend/internal/logging"
)

const appName = "medclimate"

// Overridden with -ldflags "-X main.version=..."
var version = "dev"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "medclimate",
	Short: "MedClimate API - weather record storage and analysis",
	Long: `MedClimate stores weather observations in PostgreSQL and serves
per-location history, aggregates and extreme events over HTTP.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runServe,
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	slog.SetDefault(logging.New(cfg, version, appName))
	slog.Debug("config loaded",
		"store", cfg.StoreDriver,
		"database", cfg.Database.Redacted(),
		"log_level", cfg.LogLevel.String(),
	)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
