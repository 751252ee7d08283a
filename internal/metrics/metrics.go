package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medclimate/backend/internal/domain"
)

// Result label values
const (
	ResultOK         = "ok"
	ResultValidation = "validation_error"
	ResultStorage    = "storage_error"
	ResultError      = "error"
)

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

// Handler exposes the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// InstrumentedRepository wraps a domain.RecordRepository and records
// a counter and a latency histogram for every store operation.
type InstrumentedRepository struct {
	next domain.RecordRepository

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewInstrumentedRepository registers the store metrics on reg and wraps next.
func NewInstrumentedRepository(next domain.RecordRepository, reg prometheus.Registerer) *InstrumentedRepository {
	r := &InstrumentedRepository{
		next: next,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medclimate_store_operations_total",
			Help: "Total weather store operations by outcome.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medclimate_store_operation_duration_seconds",
			Help:    "Duration of weather store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(r.operations)
	reg.MustRegister(r.duration)

	return r
}

// EnsureSchema records the schema setup call
func (r *InstrumentedRepository) EnsureSchema(ctx context.Context) error {
	defer r.observe("ensure_schema", time.Now())
	err := r.next.EnsureSchema(ctx)
	r.count("ensure_schema", err)
	return err
}

// Insert records the insert and returns the new id
func (r *InstrumentedRepository) Insert(ctx context.Context, rec domain.NewWeatherRecord) (int64, error) {
	defer r.observe("insert", time.Now())
	id, err := r.next.Insert(ctx, rec)
	r.count("insert", err)
	return id, err
}

// QueryByLocation records the location query
func (r *InstrumentedRepository) QueryByLocation(ctx context.Context, location string, startDate *time.Time) ([]domain.WeatherRecord, error) {
	defer r.observe("query_by_location", time.Now())
	records, err := r.next.QueryByLocation(ctx, location, startDate)
	r.count("query_by_location", err)
	return records, err
}

// AggregateByRange records the range aggregation
func (r *InstrumentedRepository) AggregateByRange(ctx context.Context, location string, start, end time.Time) (*domain.Aggregate, error) {
	defer r.observe("aggregate_by_range", time.Now())
	agg, err := r.next.AggregateByRange(ctx, location, start, end)
	r.count("aggregate_by_range", err)
	return agg, err
}

// FindExtremeEvents records the extreme events query
func (r *InstrumentedRepository) FindExtremeEvents(ctx context.Context, tempThreshold, precipThreshold float64) ([]domain.WeatherRecord, error) {
	defer r.observe("find_extreme_events", time.Now())
	records, err := r.next.FindExtremeEvents(ctx, tempThreshold, precipThreshold)
	r.count("find_extreme_events", err)
	return records, err
}

// Health records the storage ping
func (r *InstrumentedRepository) Health(ctx context.Context) error {
	defer r.observe("health", time.Now())
	err := r.next.Health(ctx)
	r.count("health", err)
	return err
}

func (r *InstrumentedRepository) observe(op string, start time.Time) {
	r.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (r *InstrumentedRepository) count(op string, err error) {
	r.operations.WithLabelValues(op, resultOf(err)).Inc()
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrValidation):
		return ResultValidation
	case errors.Is(err, domain.ErrStorageUnavailable):
		return ResultStorage
	default:
		return ResultError
	}
}
