package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ukydev/weather-history/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoLocationCollection implements LocationStore for MongoDB.
type MongoLocationCollection struct {
	Collection *mongo.Collection
}

// locationRecord decodes a stored location keeping track of absent fields,
// which a plain models.Location would silently zero.
type locationRecord struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      *string            `bson:"name"`
	Latitude  *float64           `bson:"latitude"`
	Longitude *float64           `bson:"longitude"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (r locationRecord) toModel() (models.Location, error) {
	if r.ID.IsZero() || r.Name == nil || *r.Name == "" || r.Latitude == nil || r.Longitude == nil {
		return models.Location{}, fmt.Errorf("location %s: %w", r.ID.Hex(), ErrIncompleteRecord)
	}
	return models.Location{
		ID:        r.ID,
		Name:      *r.Name,
		Latitude:  *r.Latitude,
		Longitude: *r.Longitude,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

// partial maps whatever fields are present.
func (r locationRecord) partial() models.Location {
	loc := models.Location{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
	if r.Name != nil {
		loc.Name = *r.Name
	}
	if r.Latitude != nil {
		loc.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		loc.Longitude = *r.Longitude
	}
	return loc
}

// decodeOne returns the fields present together with ErrIncompleteRecord when
// the stored document lacks a required field.
func (c *MongoLocationCollection) decodeOne(res *mongo.SingleResult) (*models.Location, error) {
	var rec locationRecord
	if err := res.Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	loc, err := rec.toModel()
	if err != nil {
		partial := rec.partial()
		return &partial, err
	}
	return &loc, nil
}

// InsertLocation stores a new location and returns it with its generated ID.
func (c *MongoLocationCollection) InsertLocation(ctx context.Context, location models.Location) (*models.Location, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	now := time.Now().UTC()
	if location.ID.IsZero() {
		location.ID = primitive.NewObjectID()
	}
	location.CreatedAt = now
	location.UpdatedAt = now

	if _, err := c.Collection.InsertOne(ctx, location); err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return &location, nil
}

// FindLocations returns every stored location.
func (c *MongoLocationCollection) FindLocations(ctx context.Context) ([]models.Location, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	cursor, err := c.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find locations: %w", err)
	}
	defer cursor.Close(ctx)

	var records []locationRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}

	locations := make([]models.Location, 0, len(records))
	for _, rec := range records {
		loc, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, nil
}

// FindLocationByID finds a location by its ID.
func (c *MongoLocationCollection) FindLocationByID(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	return c.decodeOne(c.Collection.FindOne(ctx, bson.M{"_id": id}))
}

// FindLocationByName finds a location by its exact name.
func (c *MongoLocationCollection) FindLocationByName(ctx context.Context, name string) (*models.Location, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	return c.decodeOne(c.Collection.FindOne(ctx, bson.M{"name": name}))
}

// UpdateLocation applies the supplied fields and returns the updated location.
func (c *MongoLocationCollection) UpdateLocation(ctx context.Context, id primitive.ObjectID, update models.LocationUpdate) (*models.Location, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Latitude != nil {
		set["latitude"] = *update.Latitude
	}
	if update.Longitude != nil {
		set["longitude"] = *update.Longitude
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return c.decodeOne(c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts))
}

// DeleteLocation deletes a location and returns the removed document. The
// document is already gone once it is returned, so missing fields are not an error here.
func (c *MongoLocationCollection) DeleteLocation(ctx context.Context, id primitive.ObjectID) (*models.Location, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	var rec locationRecord
	if err := c.Collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	loc := rec.partial()
	return &loc, nil
}
