package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/medclimate/backend/internal/config"
	"github.com/medclimate/backend/internal/domain"
)

// Open builds a *sql.DB backed by pgx and verifies connectivity.
// A bad DSN is a configuration error; an unreachable server is ErrStorageUnavailable.
func Open(ctx context.Context, cfg config.Database) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: invalid connection settings: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, domain.NewStorageError("postgres: failed to connect", err)
	}

	return db, nil
}
