package snapshot

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
	"github.com/statusdeck/statusdeck/internal/status"
)

// Handler handles HTTP requests for snapshot history.
type Handler struct {
	store     *Store
	retention time.Duration
}

// NewHandler creates a snapshot history handler. retention sets the default
// lower bound of a range query and should match the store's trim window.
func NewHandler(store *Store, retention time.Duration) *Handler {
	if retention <= 0 {
		retention = DefaultSchedulerConfig().Retention
	}
	return &Handler{store: store, retention: retention}
}

// RegisterRoutes registers public snapshot routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status/history", h.GetHistory)
}

// GetHistory returns snapshots in [from, to]. Both bounds accept the
// canonical millisecond timestamp format or a plain date; from defaults to
// the retention horizon, to defaults to now.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()

	from, err := parseBoundParam(r.URL.Query().Get("from"), now.Add(-h.retention), false)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid from parameter: %v", err))
		return
	}

	to, err := parseBoundParam(r.URL.Query().Get("to"), now, true)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid to parameter: %v", err))
		return
	}

	if to.Before(from) {
		httputil.Error(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	snapshots := h.store.RangeQuery(from, to)
	out := make([]status.SnapshotResponse, len(snapshots))
	for i, s := range snapshots {
		out[i] = status.NewSnapshotResponse(s)
	}

	httputil.Success(w, http.StatusOK, out)
}

// parseBoundParam parses a range bound. A bare date means start of day, or
// end of day for the upper bound.
func parseBoundParam(raw string, fallback time.Time, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(domain.TimestampLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected %s or YYYY-MM-DD", domain.TimestampLayout)
	}
	if endOfDay {
		return t.Add(24*time.Hour - time.Millisecond), nil
	}
	return t, nil
}
