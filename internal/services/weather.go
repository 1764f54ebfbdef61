package services

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/apperrors"
	"github.com/ukydev/weather-history/internal/db"
	"github.com/ukydev/weather-history/internal/events"
	"github.com/ukydev/weather-history/internal/metrics"
	"github.com/ukydev/weather-history/internal/models"
	"github.com/ukydev/weather-history/internal/openmeteo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeatherAPIClient fetches historical weather for a coordinate pair.
type WeatherAPIClient interface {
	GetHistoricalWeather(ctx context.Context, latitude, longitude float64, start, end time.Time) (*openmeteo.HistoricalResponse, error)
}

type WeatherService struct {
	locations db.LocationStore
	store     db.WeatherStore
	client    WeatherAPIClient
	publisher events.Publisher
	now       func() time.Time
}

func NewWeatherService(locations db.LocationStore, store db.WeatherStore, client WeatherAPIClient, publisher events.Publisher) *WeatherService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &WeatherService{
		locations: locations,
		store:     store,
		client:    client,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *WeatherService) today() time.Time {
	return truncateDay(s.now())
}

// findLocation fails with NotFound when the location does not exist. A stored
// location with missing fields still counts as existing.
func (s *WeatherService) findLocation(ctx context.Context, id string) (primitive.ObjectID, *models.Location, error) {
	oid, err := ParseLocationID(id)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}
	loc, err := s.locations.FindLocationByID(ctx, oid)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return oid, nil, apperrors.NotFound("Location %s not found", id)
	case errors.Is(err, db.ErrIncompleteRecord):
		return oid, nil, nil
	case err != nil:
		return oid, nil, apperrors.Classify(err)
	}
	return oid, loc, nil
}

// FetchAndStoreHistoricalWeatherData pulls the range from the weather API and
// stores every day not yet present. The response carries every fetched day,
// new or not.
func (s *WeatherService) FetchAndStoreHistoricalWeatherData(ctx context.Context, locationID, fromDate, toDate string) (*models.WeatherResponse, error) {
	dates, err := resolveStrings(fromDate, toDate, s.today())
	if err != nil {
		return nil, err
	}

	oid, loc, err := s.findLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, apperrors.Internal(db.ErrIncompleteRecord, "Invalid location format")
	}

	logger := log.WithFields(log.Fields{
		"location_id": locationID,
		"from":        dates.From.Format(models.DateLayout),
		"to":          dates.To.Format(models.DateLayout),
	})

	payload, err := s.client.GetHistoricalWeather(ctx, loc.Latitude, loc.Longitude, dates.From, dates.To)
	metrics.ObserveUpstream(err)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindInternal {
			logger.WithError(err).Error("Weather API call failed")
		}
		return nil, apperrors.Classify(err)
	}

	records, history, err := toRecords(oid, payload)
	if err != nil {
		logger.WithError(err).Error("Weather API returned an unusable payload")
		return nil, apperrors.Internal(err, openmeteo.FetchFailedMessage)
	}

	inserted, err := s.store.UpsertWeather(ctx, records)
	if err != nil {
		logger.WithError(err).Error("Failed to store weather records")
		return nil, apperrors.Classify(err)
	}
	metrics.WeatherRecordsInserted.Add(float64(inserted))

	logger.WithFields(log.Fields{"fetched": len(history), "inserted": inserted}).Info("Weather data ingested")
	s.publisher.PublishWeatherIngested(ctx, events.WeatherIngested{
		LocationID: locationID,
		From:       dates.From.Format(models.DateLayout),
		To:         dates.To.Format(models.DateLayout),
		Fetched:    len(history),
		Inserted:   inserted,
	})

	return &models.WeatherResponse{LocationID: locationID, HistoryData: history}, nil
}

// toRecords builds the documents to store and the history to return. Days
// without a mean temperature are returned but not stored.
func toRecords(locationID primitive.ObjectID, payload *openmeteo.HistoricalResponse) ([]models.Weather, []models.HistoryEntry, error) {
	if payload == nil {
		return nil, nil, errors.New("empty weather payload")
	}
	hourly := payload.HourlyByDay()

	records := make([]models.Weather, 0, len(payload.Daily.Time))
	history := make([]models.HistoryEntry, 0, len(payload.Daily.Time))
	for i, day := range payload.Daily.Time {
		var temp *float64
		if i < len(payload.Daily.TemperatureMean) {
			temp = payload.Daily.TemperatureMean[i]
		}
		history = append(history, models.HistoryEntry{Date: day, Temperature: temp})
		if temp == nil {
			continue
		}

		date, err := time.Parse(models.DateLayout, day)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, models.Weather{
			LocationID:        locationID,
			Date:              date,
			Temperature:       *temp,
			HourlyTemperature: hourly[day],
		})
	}
	return records, history, nil
}

// GetWeatherData returns the stored days of a location within the resolved
// range, newest first.
func (s *WeatherService) GetWeatherData(ctx context.Context, locationID string, query models.WeatherQuery) (*models.WeatherResponse, error) {
	dates, err := resolveStrings(query.StartDate, query.EndDate, s.today())
	if err != nil {
		return nil, err
	}

	oid, _, err := s.findLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.FindWeather(ctx, models.WeatherFilter{
		LocationID: oid,
		From:       &dates.From,
		To:         &dates.To,
	})
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	history := make([]models.HistoryEntry, 0, len(records))
	for _, r := range records {
		temp := r.Temperature
		history = append(history, models.HistoryEntry{
			Date:        r.Date.UTC().Format(models.DateLayout),
			Temperature: &temp,
		})
	}
	return &models.WeatherResponse{LocationID: locationID, HistoryData: history}, nil
}

// DeleteWeatherRecordsByLocationID removes the whole history of a location.
// Deleting an empty history is not an error.
func (s *WeatherService) DeleteWeatherRecordsByLocationID(ctx context.Context, locationID primitive.ObjectID) error {
	deleted, err := s.store.DeleteWeatherByLocation(ctx, locationID)
	if err != nil {
		return apperrors.Classify(err)
	}
	log.WithFields(log.Fields{"location_id": locationID.Hex(), "deleted": deleted}).Debug("Weather records deleted")
	return nil
}
