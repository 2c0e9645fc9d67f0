package incidents

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
)

// Sparkline window limits.
const (
	DefaultSparklineDays = 30
	MaxSparklineDays     = 365
)

// Handler handles HTTP requests for incident ingestion and analytics.
type Handler struct {
	repo      *Repository
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler creates a new incidents handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{
		repo:      repo,
		validator: validator.New(),
		now:       time.Now,
	}
}

// RegisterRoutes registers all incident routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/incidents", func(r chi.Router) {
		r.Post("/import", h.ImportIncidents)
		r.Get("/", h.ListIncidents)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/trend", h.GetTrend)
		r.Get("/sparkline", h.GetSparkline)
	})
}

// ImportRequest is the bulk ingestion request body.
type ImportRequest struct {
	Rows []RawRow `json:"rows" validate:"required,min=1"`
}

// ImportIncidents replaces the incident record set with the uploaded rows.
// Bad rows come back as per-row diagnostics; good rows are still ingested.
func (h *Handler) ImportIncidents(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return
	}

	report := Ingest(h.repo, req.Rows)
	httputil.Success(w, http.StatusOK, report)
}

// IncidentResponse is the wire form of one incident record.
type IncidentResponse struct {
	Service        string `json:"service"`
	State          string `json:"state"`
	Stage          string `json:"stage"`
	CreatedAt      string `json:"created_at"`
	LastReportedAt string `json:"last_reported_at"`
	Title          string `json:"title"`
	Description    string `json:"description"`
}

func newIncidentResponse(rec domain.IncidentRecord) IncidentResponse {
	return IncidentResponse{
		Service:        rec.Service,
		State:          string(rec.State),
		Stage:          string(rec.Stage),
		CreatedAt:      domain.FormatTimestamp(rec.CreatedAt),
		LastReportedAt: domain.FormatTimestamp(rec.LastReportedAt),
		Title:          rec.Title,
		Description:    rec.Description,
	}
}

// ListIncidents returns the filtered record set.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	filtered, generation, ok := h.filteredSet(w, r)
	if !ok {
		return
	}

	out := make([]IncidentResponse, len(filtered))
	for i, rec := range filtered {
		out[i] = newIncidentResponse(rec)
	}

	httputil.Success(w, http.StatusOK, map[string]interface{}{
		"incidents":  out,
		"generation": generation,
	})
}

// GetKPIs returns counts over the filtered record set.
func (h *Handler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	filtered, _, ok := h.filteredSet(w, r)
	if !ok {
		return
	}
	httputil.Success(w, http.StatusOK, ComputeKPIs(filtered))
}

// TrendBucketResponse is the wire form of one trend bucket.
type TrendBucketResponse struct {
	PeriodStart string `json:"period_start"`
	Granularity string `json:"granularity"`
	Count       int    `json:"count"`
}

// GetTrend returns bucketed incident counts over the filtered set.
// Granularity defaults to daily.
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	granularity := domain.Granularity(r.URL.Query().Get("granularity"))
	if granularity == "" {
		granularity = domain.GranularityDaily
	}
	if !granularity.IsValid() {
		httputil.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid granularity %q", granularity))
		return
	}

	query, err := parseQuery(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	records, _ := h.repo.Snapshot()
	filtered, err := Filter(records, query)
	if err != nil {
		h.queryError(w, r, err)
		return
	}

	buckets, err := BucketTrend(filtered, granularity, query.From, query.To)
	if err != nil {
		h.queryError(w, r, err)
		return
	}

	out := make([]TrendBucketResponse, len(buckets))
	for i, b := range buckets {
		out[i] = TrendBucketResponse{
			PeriodStart: domain.FormatTimestamp(b.Key.PeriodStart),
			Granularity: string(b.Key.Granularity),
			Count:       b.Count,
		}
	}

	httputil.Success(w, http.StatusOK, out)
}

// SparklinePointResponse is the wire form of one sparkline day.
type SparklinePointResponse struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// GetSparkline returns a fixed-length daily series for one service.
func (h *Handler) GetSparkline(w http.ResponseWriter, r *http.Request) {
	service := r.URL.Query().Get("service")

	days := DefaultSparklineDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > MaxSparklineDays {
			httputil.Error(w, http.StatusBadRequest, fmt.Sprintf("days must be an integer between 1 and %d", MaxSparklineDays))
			return
		}
		days = parsed
	}

	records, _ := h.repo.Snapshot()
	points := Sparkline(records, service, days, h.now())

	out := make([]SparklinePointResponse, len(points))
	for i, p := range points {
		out[i] = SparklinePointResponse{
			Day:   domain.FormatTimestamp(p.Day),
			Count: p.Count,
		}
	}

	httputil.Success(w, http.StatusOK, out)
}

// filteredSet parses the filter query and applies it to the current
// generation. On error it writes the response and returns ok=false.
func (h *Handler) filteredSet(w http.ResponseWriter, r *http.Request) ([]domain.IncidentRecord, uint64, bool) {
	query, err := parseQuery(r)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return nil, 0, false
	}

	records, generation := h.repo.Snapshot()
	filtered, err := Filter(records, query)
	if err != nil {
		h.queryError(w, r, err)
		return nil, 0, false
	}

	return filtered, generation, true
}

func (h *Handler) queryError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.HandleError(r.Context(), w, err, []httputil.ErrorMapping{
		{Error: ErrInvalidDateRange, Status: http.StatusBadRequest},
		{Error: ErrInvalidState, Status: http.StatusBadRequest},
		{Error: ErrInvalidStage, Status: http.StatusBadRequest},
		{Error: ErrInvalidGranularity, Status: http.StatusBadRequest},
	})
}

// parseQuery reads the common filter parameters. Date bounds accept the
// canonical millisecond timestamp or a bare date; a bare date on the upper
// bound means end of that day.
func parseQuery(r *http.Request) (Query, error) {
	q := Query{
		Service:    r.URL.Query().Get("service"),
		Stage:      domain.IncidentStage(r.URL.Query().Get("stage")),
		State:      domain.IncidentState(r.URL.Query().Get("state")),
		SearchText: r.URL.Query().Get("q"),
	}

	var err error
	if q.From, err = parseDateParam(r.URL.Query().Get("from"), false); err != nil {
		return Query{}, fmt.Errorf("invalid from parameter: %w", err)
	}
	if q.To, err = parseDateParam(r.URL.Query().Get("to"), true); err != nil {
		return Query{}, fmt.Errorf("invalid to parameter: %w", err)
	}

	return q, nil
}

func parseDateParam(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(domain.TimestampLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.New("expected " + domain.TimestampLayout + " or YYYY-MM-DD")
	}
	if endOfDay {
		return t.Add(24*time.Hour - time.Millisecond), nil
	}
	return t, nil
}
