package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/medclimate/backend/internal/domain"
)

const (
	createTableQuery = `
		CREATE TABLE IF NOT EXISTS weather_records (
			id SERIAL PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			temperature FLOAT,
			humidity FLOAT,
			precipitation FLOAT,
			location VARCHAR(100),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`

	createIndexQuery = `
		CREATE INDEX IF NOT EXISTS idx_weather_location_timestamp
		ON weather_records(location, timestamp)
	`

	insertRecordQuery = `
		INSERT INTO weather_records (timestamp, temperature, humidity, precipitation, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	selectRecordColumns = `
		SELECT id, timestamp, temperature, humidity, precipitation, location, created_at
		FROM weather_records
	`

	aggregateQuery = `
		SELECT location,
			   AVG(temperature) AS avg_temp,
			   MIN(temperature) AS min_temp,
			   MAX(temperature) AS max_temp,
			   COUNT(*) AS total_records
		FROM weather_records
		WHERE location = $1
		AND timestamp BETWEEN $2 AND $3
		GROUP BY location
	`

	extremeEventsQuery = selectRecordColumns + `
		WHERE temperature >= $1 OR precipitation >= $2
		ORDER BY timestamp DESC
	`
)

// PostgresRepository implements domain.RecordRepository
// Every call runs on its own connection, released before the call returns.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureSchema creates the weather_records table and its index if they do not exist
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	return r.withConn(ctx, "ensure schema", func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, createTableQuery); err != nil {
			return domain.NewStorageError("postgres: failed to create weather_records table", err)
		}
		if _, err := conn.ExecContext(ctx, createIndexQuery); err != nil {
			return domain.NewStorageError("postgres: failed to create weather_records index", err)
		}
		return nil
	})
}

// Insert persists a weather record and returns its generated id
func (r *PostgresRepository) Insert(ctx context.Context, rec domain.NewWeatherRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := r.withConn(ctx, "insert", func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx, insertRecordQuery,
			rec.Timestamp.UTC(), rec.Temperature, rec.Humidity, rec.Precipitation, rec.Location,
		).Scan(&id)
		if err != nil {
			return domain.NewStorageError("postgres: failed to insert weather record", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// QueryByLocation retrieves records for a location, most recent first
func (r *PostgresRepository) QueryByLocation(ctx context.Context, location string, startDate *time.Time) ([]domain.WeatherRecord, error) {
	query := selectRecordColumns + " WHERE location = $1"
	args := []any{location}

	if startDate != nil {
		query += " AND timestamp >= $2"
		args = append(args, startDate.UTC())
	}
	query += " ORDER BY timestamp DESC"

	var results []domain.WeatherRecord
	err := r.withConn(ctx, "query by location", func(conn *sql.Conn) error {
		var err error
		results, err = queryRecords(ctx, conn, "by location", query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// AggregateByRange computes temperature statistics for a location within [start, end].
// It returns nil when no records match.
func (r *PostgresRepository) AggregateByRange(ctx context.Context, location string, start, end time.Time) (*domain.Aggregate, error) {
	var agg *domain.Aggregate
	err := r.withConn(ctx, "aggregate by range", func(conn *sql.Conn) error {
		var a domain.Aggregate
		err := conn.QueryRowContext(ctx, aggregateQuery, location, start.UTC(), end.UTC()).Scan(
			&a.Location, &a.AvgTemp, &a.MinTemp, &a.MaxTemp, &a.TotalRecords,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return domain.NewStorageError("postgres: failed to aggregate weather records", err)
		}
		agg = &a
		return nil
	})
	if err != nil {
		return nil, err
	}

	return agg, nil
}

// FindExtremeEvents retrieves records meeting either threshold, most recent first
func (r *PostgresRepository) FindExtremeEvents(ctx context.Context, tempThreshold, precipThreshold float64) ([]domain.WeatherRecord, error) {
	var results []domain.WeatherRecord
	err := r.withConn(ctx, "find extreme events", func(conn *sql.Conn) error {
		var err error
		results, err = queryRecords(ctx, conn, "extreme events", extremeEventsQuery, tempThreshold, precipThreshold)
		return err
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return domain.NewStorageError("postgres: health check failed", err)
	}
	return nil
}

// withConn runs fn on a dedicated connection and releases it on every path
func (r *PostgresRepository) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return domain.NewStorageError(fmt.Sprintf("postgres: failed to acquire connection for %s", op), err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Warn("postgres: failed to release connection", "op", op, "error", err)
		}
	}()

	return fn(conn)
}

func queryRecords(ctx context.Context, conn *sql.Conn, what, query string, args ...any) ([]domain.WeatherRecord, error) {
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.NewStorageError(fmt.Sprintf("postgres: failed to query weather records %s", what), err)
	}
	defer rows.Close()

	results := make([]domain.WeatherRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, domain.NewStorageError("postgres: failed to scan weather row", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError("postgres: failed to iterate weather rows", err)
	}

	return results, nil
}

func scanRecord(rows *sql.Rows) (domain.WeatherRecord, error) {
	var (
		rec       domain.WeatherRecord
		createdAt sql.NullTime
	)
	err := rows.Scan(
		&rec.ID, &rec.Timestamp, &rec.Temperature, &rec.Humidity, &rec.Precipitation,
		&rec.Location, &createdAt,
	)
	if err != nil {
		return domain.WeatherRecord{}, err
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return rec, nil
}
