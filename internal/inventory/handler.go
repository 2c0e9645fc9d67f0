package inventory

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/statusdeck/statusdeck/internal/pkg/httputil"
)

// Handler handles HTTP requests for hardware inventory records.
type Handler struct {
	store     *Store
	validator *validator.Validate
}

// NewHandler creates a new inventory handler.
func NewHandler(store *Store) *Handler {
	return &Handler{
		store:     store,
		validator: validator.New(),
	}
}

// RegisterRoutes registers inventory routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// RecordRequest is the request body for creating or updating a record.
type RecordRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=255"`
	Kind         string `json:"kind" validate:"required,min=1,max=255"`
	Location     string `json:"location" validate:"max=255"`
	SerialNumber string `json:"serial_number" validate:"max=255"`
	Notes        string `json:"notes"`
}

// ToRecord converts the request to a store record.
func (r *RecordRequest) ToRecord() Record {
	return Record{
		Name:         r.Name,
		Kind:         r.Kind,
		Location:     r.Location,
		SerialNumber: r.SerialNumber,
		Notes:        r.Notes,
	}
}

var notFoundMapping = []httputil.ErrorMapping{
	{Error: ErrNotFound, Status: http.StatusNotFound},
}

// List returns all inventory records.
func (h *Handler) List(w http.ResponseWriter, _ *http.Request) {
	httputil.Success(w, http.StatusOK, h.store.List())
}

// Create adds a new inventory record.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	rec := h.store.Create(req.ToRecord())
	httputil.Success(w, http.StatusCreated, rec)
}

// Get returns one inventory record by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		httputil.HandleError(r.Context(), w, err, notFoundMapping)
		return
	}
	httputil.Success(w, http.StatusOK, rec)
}

// Update replaces an inventory record's fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.store.Update(chi.URLParam(r, "id"), req.ToRecord())
	if err != nil {
		httputil.HandleError(r.Context(), w, err, notFoundMapping)
		return
	}
	httputil.Success(w, http.StatusOK, rec)
}

// Delete removes an inventory record.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(chi.URLParam(r, "id")); err != nil {
		httputil.HandleError(r.Context(), w, err, notFoundMapping)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (*RecordRequest, bool) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.ValidationError(w, err)
		return nil, false
	}
	return &req, true
}
