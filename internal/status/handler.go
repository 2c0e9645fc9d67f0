package status

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/statusdeck/statusdeck/internal/domain"
	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
)

// Handler handles HTTP requests for the live status dashboard.
type Handler struct {
	controller *Controller
}

// NewHandler creates a new status handler.
func NewHandler(controller *Controller) *Handler {
	return &Handler{controller: controller}
}

// RegisterRoutes registers public status routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/status", h.GetStatus)
	r.Get("/providers", h.ListProviders)
}

// SubServiceResponse is the wire form of one sub-service status.
type SubServiceResponse struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// ServiceStatusResponse is the wire form of one service status. Timestamps
// are UTC ISO-8601 with millisecond precision, bit-exact for consumers that
// persist them.
type ServiceStatusResponse struct {
	ServiceID     string               `json:"service_id"`
	DisplayName   string               `json:"display_name"`
	Grade         string               `json:"grade"`
	SubServices   []SubServiceResponse `json:"sub_services,omitempty"`
	LastCheckedAt string               `json:"last_checked_at"`
	Source        string               `json:"source"`
}

// SnapshotResponse is the wire form of a dashboard snapshot.
type SnapshotResponse struct {
	TakenAt      string                  `json:"taken_at"`
	Services     []ServiceStatusResponse `json:"services"`
	OverallGrade string                  `json:"overall_grade"`
}

// NewSnapshotResponse converts a domain snapshot to its wire form.
func NewSnapshotResponse(s domain.DashboardSnapshot) SnapshotResponse {
	services := make([]ServiceStatusResponse, len(s.Services))
	for i, svc := range s.Services {
		subs := make([]SubServiceResponse, len(svc.SubServices))
		for j, sub := range svc.SubServices {
			subs[j] = SubServiceResponse{Name: sub.Name, Grade: sub.Grade.String()}
		}
		services[i] = ServiceStatusResponse{
			ServiceID:     svc.ServiceID,
			DisplayName:   svc.DisplayName,
			Grade:         svc.Grade.String(),
			SubServices:   subs,
			LastCheckedAt: domain.FormatTimestamp(svc.LastCheckedAt),
			Source:        string(svc.Source),
		}
	}
	return SnapshotResponse{
		TakenAt:      domain.FormatTimestamp(s.TakenAt),
		Services:     services,
		OverallGrade: s.OverallGrade.String(),
	}
}

// GetStatus runs a live poll and returns the resulting snapshot.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := h.controller.Poll(r.Context())
	httputil.Success(w, http.StatusOK, NewSnapshotResponse(snapshot))
}

// ListProviders returns the fixed provider registry.
func (h *Handler) ListProviders(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, h.controller.Providers())
}
