package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/models"
)

// Store interfaces over the keyed document store. Implemented by
// database.Store (mongo) and database.InMemoryStore (tests).
// Find methods return (nil, nil) when no document matches.

type TourStore interface {
	InsertTour(ctx context.Context, tour *models.Tour) error
	FindTourByID(ctx context.Context, id primitive.ObjectID) (*models.Tour, error)
	FindToursByAuthor(ctx context.Context, authorID int64) ([]models.Tour, error)
	FindPublishedTours(ctx context.Context) ([]models.Tour, error)
	ReplaceTour(ctx context.Context, tour *models.Tour) error
	// DeleteTour removes the tour only when authorID matches; reports
	// whether a document was removed.
	DeleteTour(ctx context.Context, id primitive.ObjectID, authorID int64) (bool, error)
}

type PurchaseStore interface {
	PurchaseExists(ctx context.Context, touristID int64, tourID primitive.ObjectID) (bool, error)
	// InsertPurchaseTokens persists tokens, silently skipping any that
	// would violate the unique (touristId, tourId) constraint, so a retried
	// checkout cannot double-grant.
	InsertPurchaseTokens(ctx context.Context, tokens []models.TourPurchaseToken) error
	FindPurchasesByTourist(ctx context.Context, touristID int64) ([]models.TourPurchaseToken, error)
}

type CartStore interface {
	FindCartByTourist(ctx context.Context, touristID int64) (*models.ShoppingCart, error)
	// SaveCart upserts the tourist's single cart document.
	SaveCart(ctx context.Context, cart *models.ShoppingCart) error
}

type ExecutionStore interface {
	// InsertExecution fails with ErrConflict when the tourist already has
	// an active session, enforced by the store, not just the caller's
	// pre-check.
	InsertExecution(ctx context.Context, execution *models.TourExecution) error
	FindActiveExecution(ctx context.Context, touristID int64) (*models.TourExecution, error)
	FindExecutionsByTourist(ctx context.Context, touristID int64) ([]models.TourExecution, error)
	// AppendCompletedKeyPoint records the completion and bumps lastActivity
	// in one write. Reports false without error when the order was already
	// present, which makes a raced duplicate report a no-op.
	AppendCompletedKeyPoint(ctx context.Context, executionID primitive.ObjectID, completed models.CompletedKeyPoint) (bool, error)
	TouchActivity(ctx context.Context, executionID primitive.ObjectID, at time.Time) error
	// FinishExecution moves the session into a terminal status and stamps
	// the matching timestamp plus lastActivity.
	FinishExecution(ctx context.Context, executionID primitive.ObjectID, status models.ExecutionStatus, at time.Time) error
}

type PositionStore interface {
	FindPositionByTourist(ctx context.Context, touristID int64) (*models.TouristPosition, error)
	UpsertPosition(ctx context.Context, position *models.TouristPosition) error
}
