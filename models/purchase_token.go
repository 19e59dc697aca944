package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TourPurchaseToken is an immutable ledger entry proving a tourist owns a
// tour. At most one token exists per (touristId, tourId) pair.
type TourPurchaseToken struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TouristID   int64              `bson:"touristId" json:"touristId"`
	TourID      primitive.ObjectID `bson:"tourId" json:"tourId"`
	TourName    string             `bson:"tourName" json:"tourName"`
	PricePaid   float64            `bson:"pricePaid" json:"pricePaid"`
	PurchasedAt time.Time          `bson:"purchasedAt" json:"purchasedAt"`
}
