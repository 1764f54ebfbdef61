package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar-day format used on the wire and towards the weather API.
const DateLayout = "2006-01-02"

// Weather is one day of weather history for a location.
type Weather struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LocationID        primitive.ObjectID `bson:"location_id" json:"location_id"`
	Date              time.Time          `bson:"date" json:"date"` // UTC midnight
	Temperature       float64            `bson:"temperature" json:"temperature"`
	HourlyTemperature []float64          `bson:"hourly_temperature,omitempty" json:"hourly_temperature,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
}

// WeatherFilter selects the weather records of one location, optionally bounded by day (inclusive).
type WeatherFilter struct {
	LocationID primitive.ObjectID
	From       *time.Time
	To         *time.Time
}

// FetchWeatherRequest is the body of POST /weather.
type FetchWeatherRequest struct {
	LocationID string `json:"locationId" validate:"required,mongodb"`
	FromDate   string `json:"fromDate,omitempty" validate:"omitempty,calendarday"`
	ToDate     string `json:"toDate,omitempty" validate:"omitempty,calendarday"`
}

// WeatherQuery holds the optional bounds of GET /weather/{locationId}.
type WeatherQuery struct {
	StartDate string `json:"startDate" validate:"omitempty,calendarday"`
	EndDate   string `json:"endDate" validate:"omitempty,calendarday"`
}

// HistoryEntry is a single day in a weather history response. Temperature is
// nil when the upstream API had no mean for that day.
type HistoryEntry struct {
	Date        string   `json:"date"`
	Temperature *float64 `json:"temperature"`
}

// WeatherResponse is returned by both the ingestion and the query endpoints.
type WeatherResponse struct {
	LocationID  string         `json:"locationId"`
	HistoryData []HistoryEntry `json:"historyData"`
}
