package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ukydev/weather-history/internal/middleware"
	"github.com/ukydev/weather-history/internal/models"
)

// LocationService is the location logic the handlers depend on.
type LocationService interface {
	Create(ctx context.Context, req models.CreateLocationRequest) (*models.LocationResponse, error)
	FindAll(ctx context.Context) (*models.LocationsResponse, error)
	FindOne(ctx context.Context, id string) (*models.LocationResponse, error)
	Update(ctx context.Context, id string, update models.LocationUpdate) (*models.LocationResponse, error)
	Remove(ctx context.Context, id string) (*models.DeletedLocationResponse, error)
}

// LocationHandler serves /locations.
type LocationHandler struct {
	service LocationService
}

func NewLocationHandler(service LocationService) *LocationHandler {
	return &LocationHandler{service: service}
}

// Create handles POST /locations
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLocationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	loc, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, loc)
}

// List handles GET /locations
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.FindAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /locations/{id}
func (h *LocationHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc, err := h.service.FindOne(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, loc)
}

// Update handles PUT /locations/{id}
func (h *LocationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var update models.LocationUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := validateStruct(update); err != nil {
		writeServiceError(w, r, err)
		return
	}

	loc, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, loc)
}

// Delete handles DELETE /locations/{id}
func (h *LocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}
