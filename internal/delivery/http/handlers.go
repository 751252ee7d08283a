package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/medclimate/backend/internal/domain"
)

var validate = validator.New()

// Handler contains all HTTP handlers
type Handler struct {
	repo domain.RecordRepository
}

// NewHandler creates a new handler
func NewHandler(repo domain.RecordRepository) *Handler {
	return &Handler{repo: repo}
}

// Root returns the welcome message
func (h *Handler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to MedClimate API",
	})
}

// HealthCheck reports that the process is up. It never touches storage.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

// Ready reports whether storage is reachable
func (h *Handler) Ready(c *fiber.Ctx) error {
	if err := h.repo.Health(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ready",
	})
}

// createRecordRequest is the POST body; the timestamp accepts every layout parseTime does
type createRecordRequest struct {
	Timestamp     string   `json:"timestamp"`
	Temperature   *float64 `json:"temperature"`
	Humidity      *float64 `json:"humidity"`
	Precipitation *float64 `json:"precipitation"`
	Location      *string  `json:"location"`
}

// CreateRecord stores a weather record
func (h *Handler) CreateRecord(c *fiber.Ctx) error {
	var req createRecordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	rec := domain.NewWeatherRecord{
		Temperature:   req.Temperature,
		Humidity:      req.Humidity,
		Precipitation: req.Precipitation,
		Location:      req.Location,
	}
	if req.Timestamp != "" {
		ts, err := parseTime(req.Timestamp)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "timestamp: "+err.Error())
		}
		rec.Timestamp = ts
	}

	id, err := h.repo.Insert(c.UserContext(), rec)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": id,
	})
}

// ListRecords returns records for a location, newest first
func (h *Handler) ListRecords(c *fiber.Ctx) error {
	var q listQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	records, err := h.repo.QueryByLocation(c.UserContext(), q.Location, q.StartDate)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":  records,
		"count": len(records),
	})
}

// RecordStats returns temperature statistics for a location and date range
func (h *Handler) RecordStats(c *fiber.Ctx) error {
	var q statsQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	agg, err := h.repo.AggregateByRange(c.UserContext(), q.Location, q.StartDate, q.EndDate)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": agg,
	})
}

// ExtremeEvents returns records meeting either threshold
func (h *Handler) ExtremeEvents(c *fiber.Ctx) error {
	temp, err := floatQuery(c, "temp_threshold", domain.DefaultTempThreshold)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	precip, err := floatQuery(c, "precip_threshold", domain.DefaultPrecipThreshold)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	records, err := h.repo.FindExtremeEvents(c.UserContext(), temp, precip)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data":  records,
		"count": len(records),
	})
}

// listQuery holds query parameters for the list endpoint.
type listQuery struct {
	Location  string `validate:"required,max=100"`
	StartDate *time.Time
}

func (q *listQuery) bind(c *fiber.Ctx) error {
	q.Location = c.Query("location")
	if err := validate.Struct(q); err != nil {
		return queryProblem(err)
	}

	if s := c.Query("start_date"); s != "" {
		ts, err := parseTime(s)
		if err != nil {
			return errors.New("start_date: " + err.Error())
		}
		q.StartDate = &ts
	}
	return nil
}

// statsQuery holds query parameters for the stats endpoint.
type statsQuery struct {
	Location  string    `validate:"required,max=100"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtefield=StartDate"`
}

func (q *statsQuery) bind(c *fiber.Ctx) error {
	q.Location = c.Query("location")

	for _, p := range []struct {
		key string
		dst *time.Time
	}{
		{"start_date", &q.StartDate},
		{"end_date", &q.EndDate},
	} {
		s := c.Query(p.key)
		if s == "" {
			continue
		}
		ts, err := parseTime(s)
		if err != nil {
			return errors.New(p.key + ": " + err.Error())
		}
		*p.dst = ts
	}

	if err := validate.Struct(q); err != nil {
		return queryProblem(err)
	}
	return nil
}

// queryProblem turns the first validator failure into a message naming the query parameter
func queryProblem(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	name := paramName(fe.Field())
	switch fe.Tag() {
	case "required":
		return errors.New(name + " query parameter is required")
	case "max":
		return errors.New(name + " must be at most " + fe.Param() + " characters")
	case "gtefield":
		return errors.New(name + " must not be before " + paramName(fe.Param()))
	default:
		return errors.New(name + " is invalid")
	}
}

func paramName(field string) string {
	switch field {
	case "Location":
		return "location"
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	default:
		return field
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseTime accepts RFC3339, a bare local datetime or a date. Values without an offset are UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DDTHH:MM:SS or YYYY-MM-DD")
}

func floatQuery(c *fiber.Ctx, key string, fallback float64) (float64, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(key + " must be a number")
	}
	return v, nil
}
