package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/weather-history/internal/events"
	"github.com/ukydev/weather-history/internal/models"
	"github.com/ukydev/weather-history/internal/openmeteo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockLocationStore is a mock implementation of db.LocationStore
type MockLocationStore struct {
	mock.Mock
}

func (m *MockLocationStore) InsertLocation(ctx context.Context, location models.Location) (*models.Location, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationStore) FindLocations(ctx context.Context) ([]models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *MockLocationStore) FindLocationByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationStore) FindLocationByName(ctx context.Context, name string) (*models.Location, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationStore) UpdateLocation(ctx context.Context, id primitive.ObjectID, update models.LocationUpdate) (*models.Location, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *MockLocationStore) DeleteLocation(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

// MockWeatherStore is a mock implementation of db.WeatherStore
type MockWeatherStore struct {
	mock.Mock
}

func (m *MockWeatherStore) UpsertWeather(ctx context.Context, records []models.Weather) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWeatherStore) FindWeather(ctx context.Context, filter models.WeatherFilter) ([]models.Weather, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Weather), args.Error(1)
}

func (m *MockWeatherStore) DeleteWeatherByLocation(ctx context.Context, locationID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, locationID)
	return args.Get(0).(int64), args.Error(1)
}

type MockWeatherAPIClient struct {
	mock.Mock
}

func (m *MockWeatherAPIClient) GetHistoricalWeather(ctx context.Context, latitude, longitude float64, start, end time.Time) (*openmeteo.HistoricalResponse, error) {
	args := m.Called(ctx, latitude, longitude, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openmeteo.HistoricalResponse), args.Error(1)
}

type MockWeatherRemover struct {
	mock.Mock
}

func (m *MockWeatherRemover) DeleteWeatherRecordsByLocationID(ctx context.Context, locationID primitive.ObjectID) error {
	args := m.Called(ctx, locationID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWeatherIngested(ctx context.Context, event events.WeatherIngested) {
	m.Called(ctx, event)
}

func (m *MockPublisher) PublishLocationDeleted(ctx context.Context, location models.LocationResponse) {
	m.Called(ctx, location)
}

func (m *MockPublisher) Close() {
	m.Called()
}

func float(v float64) *float64 { return &v }
