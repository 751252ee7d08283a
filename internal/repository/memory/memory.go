package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medclimate/backend/internal/domain"
)

// Repository implements domain.RecordRepository in process memory.
// Used for local runs without PostgreSQL and in handler tests.
type Repository struct {
	mu      sync.RWMutex
	records []domain.WeatherRecord
	nextID  int64
	now     func() time.Time
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{
		nextID: 1,
		now:    time.Now,
	}
}

// EnsureSchema is a no-op in memory
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return nil
}

// Insert stores a copy of rec and returns its id
func (r *Repository) Insert(ctx context.Context, rec domain.NewWeatherRecord) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	r.records = append(r.records, domain.WeatherRecord{
		ID:            id,
		Timestamp:     rec.Timestamp.UTC(),
		Temperature:   cloneFloat(rec.Temperature),
		Humidity:      cloneFloat(rec.Humidity),
		Precipitation: cloneFloat(rec.Precipitation),
		Location:      cloneString(rec.Location),
		CreatedAt:     r.now().UTC(),
	})

	return id, nil
}

// QueryByLocation returns records for a location, most recent first
func (r *Repository) QueryByLocation(ctx context.Context, location string, startDate *time.Time) ([]domain.WeatherRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.WeatherRecord, 0)
	for _, rec := range r.records {
		if !locationIs(rec, location) {
			continue
		}
		if startDate != nil && rec.Timestamp.Before(*startDate) {
			continue
		}
		results = append(results, cloneRecord(rec))
	}

	sortNewestFirst(results)
	return results, nil
}

// AggregateByRange computes temperature statistics for a location within [start, end].
// NULL temperatures count toward TotalRecords but not the statistics.
func (r *Repository) AggregateByRange(ctx context.Context, location string, start, end time.Time) (*domain.Aggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		count, withTemp int64
		sum, lo, hi     float64
	)
	for _, rec := range r.records {
		if !locationIs(rec, location) {
			continue
		}
		if rec.Timestamp.Before(start) || rec.Timestamp.After(end) {
			continue
		}
		count++
		if rec.Temperature == nil {
			continue
		}
		t := *rec.Temperature
		if withTemp == 0 || t < lo {
			lo = t
		}
		if withTemp == 0 || t > hi {
			hi = t
		}
		sum += t
		withTemp++
	}

	if count == 0 {
		return nil, nil
	}

	agg := &domain.Aggregate{Location: location, TotalRecords: count}
	if withTemp > 0 {
		agg.AvgTemp = domain.Float64(sum / float64(withTemp))
		agg.MinTemp = domain.Float64(lo)
		agg.MaxTemp = domain.Float64(hi)
	}
	return agg, nil
}

// FindExtremeEvents returns records meeting either threshold, most recent first
func (r *Repository) FindExtremeEvents(ctx context.Context, tempThreshold, precipThreshold float64) ([]domain.WeatherRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]domain.WeatherRecord, 0)
	for _, rec := range r.records {
		if rec.IsExtreme(tempThreshold, precipThreshold) {
			results = append(results, cloneRecord(rec))
		}
	}

	sortNewestFirst(results)
	return results, nil
}

// Health always returns nil in memory
func (r *Repository) Health(ctx context.Context) error {
	return nil
}

func locationIs(rec domain.WeatherRecord, location string) bool {
	return rec.Location != nil && *rec.Location == location
}

// Ties on timestamp fall back to the newest id.
func sortNewestFirst(records []domain.WeatherRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Timestamp.Equal(records[j].Timestamp) {
			return records[i].Timestamp.After(records[j].Timestamp)
		}
		return records[i].ID > records[j].ID
	})
}

func cloneRecord(rec domain.WeatherRecord) domain.WeatherRecord {
	rec.Temperature = cloneFloat(rec.Temperature)
	rec.Humidity = cloneFloat(rec.Humidity)
	rec.Precipitation = cloneFloat(rec.Precipitation)
	rec.Location = cloneString(rec.Location)
	return rec
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
