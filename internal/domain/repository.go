package domain

import (
	"context"
	"time"
)

// RecordRepository defines the interface for weather record persistence
// Implementations surface ErrValidation and ErrStorageUnavailable; an empty
// result is never an error.
type RecordRepository interface {
	// EnsureSchema creates the weather_records table and its index if absent
	EnsureSchema(ctx context.Context) error

	// Insert stores a record and returns the id assigned to it
	Insert(ctx context.Context, rec NewWeatherRecord) (int64, error)

	// QueryByLocation returns records for a location, newest first.
	// A nil startDate disables the lower bound.
	QueryByLocation(ctx context.Context, location string, startDate *time.Time) ([]WeatherRecord, error)

	// AggregateByRange returns temperature statistics for [start, end], or nil when nothing matches
	AggregateByRange(ctx context.Context, location string, start, end time.Time) (*Aggregate, error)

	// FindExtremeEvents returns records at or above either threshold, newest first
	FindExtremeEvents(ctx context.Context, tempThreshold, precipThreshold float64) ([]WeatherRecord, error)

	// Health checks storage connectivity
	Health(ctx context.Context) error
}
