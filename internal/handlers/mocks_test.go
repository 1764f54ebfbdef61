package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/ukydev/weather-history/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockLocationService struct {
	mock.Mock
}

func (m *MockLocationService) Create(ctx context.Context, req models.CreateLocationRequest) (*models.LocationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationResponse), args.Error(1)
}

func (m *MockLocationService) FindAll(ctx context.Context) (*models.LocationsResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationsResponse), args.Error(1)
}

func (m *MockLocationService) FindOne(ctx context.Context, id string) (*models.LocationResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationResponse), args.Error(1)
}

func (m *MockLocationService) Update(ctx context.Context, id string, update models.LocationUpdate) (*models.LocationResponse, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LocationResponse), args.Error(1)
}

func (m *MockLocationService) Remove(ctx context.Context, id string) (*models.DeletedLocationResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeletedLocationResponse), args.Error(1)
}

type MockWeatherService struct {
	mock.Mock
}

func (m *MockWeatherService) FetchAndStoreHistoricalWeatherData(ctx context.Context, locationID, fromDate, toDate string) (*models.WeatherResponse, error) {
	args := m.Called(ctx, locationID, fromDate, toDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherResponse), args.Error(1)
}

func (m *MockWeatherService) GetWeatherData(ctx context.Context, locationID string, query models.WeatherQuery) (*models.WeatherResponse, error) {
	args := m.Called(ctx, locationID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeatherResponse), args.Error(1)
}

// MockUserCollection is a mock implementation of UserCollection
type MockUserCollection struct {
	mock.Mock
}

func (m *MockUserCollection) InsertUser(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserCollection) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
