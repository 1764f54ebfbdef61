package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a named point on the globe that anchors a weather history.
type Location struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// LocationUpdate carries the fields of a partial location patch. Nil fields are left untouched.
type LocationUpdate struct {
	Name      *string  `json:"name,omitempty" validate:"omitempty,min=1"`
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// IsEmpty reports whether the patch sets no field at all.
func (u LocationUpdate) IsEmpty() bool {
	return u.Name == nil && u.Latitude == nil && u.Longitude == nil
}

// CreateLocationRequest is the body of POST /locations.
type CreateLocationRequest struct {
	Name      string   `json:"name" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// LocationResponse is the public view of a location.
type LocationResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationsResponse lists every stored location.
type LocationsResponse struct {
	Counts    int                `json:"counts"`
	Locations []LocationResponse `json:"locations"`
}

// DeletedLocationResponse confirms a location removal.
type DeletedLocationResponse struct {
	LocationResponse
	IsDeleted bool `json:"isDeleted"`
}

// ToResponse maps a stored location to its public view.
func (l Location) ToResponse() LocationResponse {
	return LocationResponse{
		ID:        l.ID.Hex(),
		Name:      l.Name,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
}
