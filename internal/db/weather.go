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

// MongoWeatherCollection implements WeatherStore for MongoDB.
type MongoWeatherCollection struct {
	Collection *mongo.Collection
}

// UpsertWeather writes all records in one unordered bulk write. Each record is
// keyed by (location_id, date) and only its insert branch sets fields, so a day
// that is already stored keeps its original values.
func (c *MongoWeatherCollection) UpsertWeather(ctx context.Context, records []models.Weather) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	if len(records) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		doc := bson.M{
			"location_id": r.LocationID,
			"date":        r.Date,
			"temperature": r.Temperature,
			"created_at":  now,
		}
		if len(r.HourlyTemperature) > 0 {
			doc["hourly_temperature"] = r.HourlyTemperature
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"location_id": r.LocationID, "date": r.Date}).
			SetUpdate(bson.M{"$setOnInsert": doc}).
			SetUpsert(true))
	}

	res, err := c.Collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	var upserted int64
	if res != nil {
		upserted = res.UpsertedCount
	}
	if err != nil {
		// Two concurrent ingestions of the same day race on the unique index;
		// the loser's duplicate means the day is stored, which is what we want.
		if onlyDuplicateKeys(err) {
			return upserted, nil
		}
		return upserted, fmt.Errorf("upsert weather: %w", err)
	}
	return upserted, nil
}

func onlyDuplicateKeys(err error) bool {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return false
	}
	if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return false
	}
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return false
		}
	}
	return true
}

// FindWeather returns the records of a location, newest day first.
func (c *MongoWeatherCollection) FindWeather(ctx context.Context, filter models.WeatherFilter) ([]models.Weather, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}

	query := bson.M{"location_id": filter.LocationID}
	dateRange := bson.M{}
	if filter.From != nil {
		dateRange["$gte"] = *filter.From
	}
	if filter.To != nil {
		dateRange["$lte"] = *filter.To
	}
	if len(dateRange) > 0 {
		query["date"] = dateRange
	}

	cursor, err := c.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find weather: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.Weather
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}
	if records == nil {
		records = []models.Weather{}
	}
	return records, nil
}

// DeleteWeatherByLocation removes every record of a location.
func (c *MongoWeatherCollection) DeleteWeatherByLocation(ctx context.Context, locationID primitive.ObjectID) (int64, error) {
	if c.Collection == nil {
		return 0, errNilCollection
	}
	res, err := c.Collection.DeleteMany(ctx, bson.M{"location_id": locationID})
	if err != nil {
		return 0, fmt.Errorf("delete weather: %w", err)
	}
	return res.DeletedCount, nil
}
