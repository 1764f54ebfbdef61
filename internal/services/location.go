// Package services holds the location and weather business logic.
package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/apperrors"
	"github.com/ukydev/weather-history/internal/db"
	"github.com/ukydev/weather-history/internal/events"
	"github.com/ukydev/weather-history/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WeatherRemover deletes the weather history of a location.
type WeatherRemover interface {
	DeleteWeatherRecordsByLocationID(ctx context.Context, locationID primitive.ObjectID) error
}

type LocationService struct {
	store     db.LocationStore
	weather   WeatherRemover
	publisher events.Publisher
	validate  *validator.Validate
}

func NewLocationService(store db.LocationStore, weather WeatherRemover, publisher events.Publisher) *LocationService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &LocationService{
		store:     store,
		weather:   weather,
		publisher: publisher,
		validate:  validator.New(),
	}
}

// ParseLocationID converts a 24-hex string into an ObjectID.
func ParseLocationID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.BadRequest("Invalid location ID format")
	}
	return oid, nil
}

// storeError maps gateway sentinels to client-facing kinds.
func storeError(err error, id string) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return apperrors.NotFound("Location %s not found", id)
	case errors.Is(err, db.ErrIncompleteRecord):
		return apperrors.Internal(err, "Invalid location format")
	default:
		return apperrors.Classify(err)
	}
}

// Create stores a new location. Names are unique and compared exactly.
func (s *LocationService) Create(ctx context.Context, req models.CreateLocationRequest) (*models.LocationResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Classify(err)
	}

	// An incomplete document still holds the name.
	_, err := s.store.FindLocationByName(ctx, req.Name)
	if err == nil || errors.Is(err, db.ErrIncompleteRecord) {
		return nil, apperrors.Conflict("Location '%s' exists", req.Name)
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, apperrors.Classify(err)
	}

	created, err := s.store.InsertLocation(ctx, models.Location{
		Name:      req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Location '%s' exists", req.Name)
		}
		return nil, apperrors.Classify(err)
	}

	log.WithFields(log.Fields{"location_id": created.ID.Hex(), "name": created.Name}).Info("Location created")
	resp := created.ToResponse()
	return &resp, nil
}

// FindAll lists every location. A stored location missing a required field
// fails the whole listing.
func (s *LocationService) FindAll(ctx context.Context) (*models.LocationsResponse, error) {
	locations, err := s.store.FindLocations(ctx)
	if err != nil {
		if errors.Is(err, db.ErrIncompleteRecord) {
			return nil, apperrors.Internal(err, "Invalid location format")
		}
		return nil, apperrors.Classify(err)
	}

	resp := &models.LocationsResponse{
		Counts:    len(locations),
		Locations: make([]models.LocationResponse, 0, len(locations)),
	}
	for _, loc := range locations {
		resp.Locations = append(resp.Locations, loc.ToResponse())
	}
	return resp, nil
}

// Get returns the stored location for internal callers.
func (s *LocationService) Get(ctx context.Context, id string) (*models.Location, error) {
	oid, err := ParseLocationID(id)
	if err != nil {
		return nil, err
	}
	loc, err := s.store.FindLocationByID(ctx, oid)
	if err != nil {
		return nil, storeError(err, id)
	}
	return loc, nil
}

func (s *LocationService) FindOne(ctx context.Context, id string) (*models.LocationResponse, error) {
	loc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := loc.ToResponse()
	return &resp, nil
}

// Update applies the supplied fields. The merged location must still be
// valid and its name must not belong to another location. A stored location
// with missing fields is read leniently so a patch can repair it.
func (s *LocationService) Update(ctx context.Context, id string, update models.LocationUpdate) (*models.LocationResponse, error) {
	oid, err := ParseLocationID(id)
	if err != nil {
		return nil, err
	}
	current, err := s.store.FindLocationByID(ctx, oid)
	incomplete := current != nil && errors.Is(err, db.ErrIncompleteRecord)
	if err != nil && !incomplete {
		return nil, storeError(err, id)
	}
	if incomplete {
		log.WithError(err).WithField("location_id", id).Warn("Updating incomplete location")
	}
	if update.IsEmpty() {
		resp := current.ToResponse()
		return &resp, nil
	}

	merged := models.CreateLocationRequest{
		Name:      current.Name,
		Latitude:  &current.Latitude,
		Longitude: &current.Longitude,
	}
	var patched []string
	if update.Name != nil {
		merged.Name = *update.Name
		patched = append(patched, "Name")
	}
	if update.Latitude != nil {
		merged.Latitude = update.Latitude
		patched = append(patched, "Latitude")
	}
	if update.Longitude != nil {
		merged.Longitude = update.Longitude
		patched = append(patched, "Longitude")
	}
	// Fields missing from an incomplete record hold zero values, so only the patched ones are checked.
	if incomplete {
		err = s.validate.StructPartial(merged, patched...)
	} else {
		err = s.validate.Struct(merged)
	}
	if err != nil {
		return nil, apperrors.Classify(err)
	}

	if update.Name != nil && *update.Name != current.Name {
		_, err := s.store.FindLocationByName(ctx, *update.Name)
		if err == nil || errors.Is(err, db.ErrIncompleteRecord) {
			return nil, apperrors.Conflict("Location '%s' exists", *update.Name)
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, apperrors.Classify(err)
		}
	}

	updated, err := s.store.UpdateLocation(ctx, oid, update)
	if err != nil && !(updated != nil && errors.Is(err, db.ErrIncompleteRecord)) {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("Location '%s' exists", merged.Name)
		}
		return nil, storeError(err, id)
	}

	log.WithField("location_id", id).Info("Location updated")
	resp := updated.ToResponse()
	return &resp, nil
}

// Remove deletes a location and then its weather history.
func (s *LocationService) Remove(ctx context.Context, id string) (*models.DeletedLocationResponse, error) {
	oid, err := ParseLocationID(id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.store.DeleteLocation(ctx, oid)
	if err != nil {
		return nil, storeError(err, id)
	}

	if err := s.weather.DeleteWeatherRecordsByLocationID(ctx, deleted.ID); err != nil {
		log.WithError(err).WithField("location_id", id).Error("Failed to delete weather records of removed location")
		return nil, err
	}

	resp := models.DeletedLocationResponse{LocationResponse: deleted.ToResponse(), IsDeleted: true}
	log.WithField("location_id", id).Info("Location removed")
	s.publisher.PublishLocationDeleted(ctx, resp.LocationResponse)
	return &resp, nil
}
