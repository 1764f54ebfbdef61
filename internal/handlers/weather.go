package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ukydev/weather-history/internal/middleware"
	"github.com/ukydev/weather-history/internal/models"
)

// WeatherService is the weather logic the handlers depend on.
type WeatherService interface {
	FetchAndStoreHistoricalWeatherData(ctx context.Context, locationID, fromDate, toDate string) (*models.WeatherResponse, error)
	GetWeatherData(ctx context.Context, locationID string, query models.WeatherQuery) (*models.WeatherResponse, error)
}

// WeatherHandler serves /weather.
type WeatherHandler struct {
	service WeatherService
}

func NewWeatherHandler(service WeatherService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// Get handles GET /weather/{locationId}?startDate=&endDate=
func (h *WeatherHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := models.WeatherQuery{
		StartDate: r.URL.Query().Get("startDate"),
		EndDate:   r.URL.Query().Get("endDate"),
	}
	if err := validateStruct(query); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.service.GetWeatherData(r.Context(), chi.URLParam(r, "locationId"), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Fetch handles POST /weather: pulls the range from the weather API and stores it.
func (h *WeatherHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	var req models.FetchWeatherRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp, err := h.service.FetchAndStoreHistoricalWeatherData(r.Context(), req.LocationID, req.FromDate, req.ToDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, resp)
}
