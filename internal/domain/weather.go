package domain

import "time"

// Extreme event thresholds used when the caller does not supply any
const (
	DefaultTempThreshold   = 35.0 // °C
	DefaultPrecipThreshold = 50.0 // mm
)

// MaxLocationLength is the width of the location column
const MaxLocationLength = 100

// WeatherRecord represents one stored weather observation
type WeatherRecord struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	Temperature   *float64  `json:"temperature"`
	Humidity      *float64  `json:"humidity"`
	Precipitation *float64  `json:"precipitation"`
	Location      *string   `json:"location"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewWeatherRecord is the caller-supplied part of a record.
// The store assigns ID and CreatedAt.
type NewWeatherRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Temperature   *float64  `json:"temperature,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	Location      *string   `json:"location,omitempty" validate:"omitempty,max=100"`
}

// Aggregate holds temperature statistics for a location over a date range.
// Temperature fields are nil when every matching record lacks a temperature.
type Aggregate struct {
	Location     string   `json:"location"`
	AvgTemp      *float64 `json:"avg_temp"`
	MinTemp      *float64 `json:"min_temp"`
	MaxTemp      *float64 `json:"max_temp"`
	TotalRecords int64    `json:"total_records"`
}

// IsExtreme reports whether the record meets either threshold
func (r WeatherRecord) IsExtreme(tempThreshold, precipThreshold float64) bool {
	if r.Temperature != nil && *r.Temperature >= tempThreshold {
		return true
	}
	return r.Precipitation != nil && *r.Precipitation >= precipThreshold
}

// Float64 returns a pointer to v
func Float64(v float64) *float64 {
	return &v
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}
