package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem snapshots the tour's name and price at add-time so the cart
// is unaffected by later edits to the tour.
type OrderItem struct {
	TourID   primitive.ObjectID `bson:"tourId" json:"tourId"`
	TourName string             `bson:"tourName" json:"tourName"`
	Price    float64            `bson:"price" json:"price"`
}

type ShoppingCart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TouristID  int64              `bson:"touristId" json:"touristId"`
	Items      []OrderItem        `bson:"items" json:"items"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
