package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TouristPosition is a current-position cache, one record per tourist,
// replaced on every report. No track log is kept.
type TouristPosition struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TouristID int64              `bson:"touristId" json:"touristId"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
