package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Tour struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID      int64              `bson:"authorId" json:"authorId"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Difficulty    TourDifficulty     `bson:"difficulty" json:"difficulty"`
	Status        TourStatus         `bson:"status" json:"status"`
	Price         float64            `bson:"price" json:"price"`
	Tags          []string           `bson:"tags" json:"tags"`
	KeyPoints     []KeyPoint         `bson:"keyPoints" json:"keyPoints"`
	DurationHours float64            `bson:"durationHours" json:"durationHours"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	PublishedAt   *time.Time         `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
	ArchivedAt    *time.Time         `bson:"archivedAt,omitempty" json:"archivedAt,omitempty"`
}

// StartPoint is the key point with the lowest order, nil when the tour has none.
func (t *Tour) StartPoint() *KeyPoint {
	var start *KeyPoint
	for i := range t.KeyPoints {
		if start == nil || t.KeyPoints[i].Order < start.Order {
			start = &t.KeyPoints[i]
		}
	}
	return start
}

// EndPoint is the key point with the highest order, nil when the tour has none.
func (t *Tour) EndPoint() *KeyPoint {
	var end *KeyPoint
	for i := range t.KeyPoints {
		if end == nil || t.KeyPoints[i].Order > end.Order {
			end = &t.KeyPoints[i]
		}
	}
	return end
}
