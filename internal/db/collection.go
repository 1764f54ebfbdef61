package db

import (
	"context"
	"errors"

	"github.com/ukydev/weather-history/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("document not found")
	// ErrIncompleteRecord is returned when a stored document lacks a required field.
	ErrIncompleteRecord = errors.New("stored document is missing required fields")
	errNilCollection    = errors.New("mongo collection is nil")
)

// LocationStore defines the interface for location data operations.
// Single-document reads and UpdateLocation return ErrIncompleteRecord together
// with whatever fields the document holds.
type LocationStore interface {
	InsertLocation(ctx context.Context, location models.Location) (*models.Location, error)
	FindLocations(ctx context.Context) ([]models.Location, error)
	FindLocationByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
	FindLocationByName(ctx context.Context, name string) (*models.Location, error)
	UpdateLocation(ctx context.Context, id primitive.ObjectID, update models.LocationUpdate) (*models.Location, error)
	DeleteLocation(ctx context.Context, id primitive.ObjectID) (*models.Location, error)
}

// WeatherStore defines the interface for weather data operations.
type WeatherStore interface {
	// UpsertWeather inserts the records whose (location, date) is not stored yet
	// and reports how many were inserted. Existing days are left untouched.
	UpsertWeather(ctx context.Context, records []models.Weather) (int64, error)
	FindWeather(ctx context.Context, filter models.WeatherFilter) ([]models.Weather, error)
	DeleteWeatherByLocation(ctx context.Context, locationID primitive.ObjectID) (int64, error)
}
