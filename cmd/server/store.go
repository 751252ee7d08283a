package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/medclimate/backend/internal/config"
	"github.com/medclimate/backend/internal/domain"
	"github.com/medclimate/backend/internal/repository/memory"
	"github.com/medclimate/backend/internal/repository/postgres"
)

// openStore picks the repository named by STORE_DRIVER. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (domain.RecordRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		slog.Warn("using in-memory store; records are lost on exit")
		return memory.NewRepository(), func() {}, nil

	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		db, err := postgres.Open(connectCtx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to PostgreSQL", "database", cfg.Database.Redacted())

		return postgres.NewPostgresRepository(db), func() {
			if err := db.Close(); err != nil {
				slog.Warn("failed to close database", "error", err)
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
