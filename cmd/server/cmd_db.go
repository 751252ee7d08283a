package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/medclimate/backend/internal/domain"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the weather_records table and index if missing",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return err
		}
		slog.Info("schema ready")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a sample weather record",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := repo.EnsureSchema(cmd.Context()); err != nil {
			return err
		}

		id, err := repo.Insert(cmd.Context(), sampleRecord(time.Now()))
		if err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		slog.Info("inserted sample record", "id", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(seedCmd)
}

func sampleRecord(now time.Time) domain.NewWeatherRecord {
	return domain.NewWeatherRecord{
		Timestamp:     now,
		Temperature:   domain.Float64(23.5),
		Humidity:      domain.Float64(65.0),
		Precipitation: domain.Float64(0.0),
		Location:      domain.String("New York"),
	}
}
