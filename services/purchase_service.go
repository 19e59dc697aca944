package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/models"
)

// PurchaseService answers entitlement questions against the purchase token
// ledger. No caching: every check reflects the latest committed state.
type PurchaseService struct {
	purchases PurchaseStore
}

func NewPurchaseService(purchases PurchaseStore) *PurchaseService {
	return &PurchaseService{purchases: purchases}
}

func (s *PurchaseService) HasPurchased(ctx context.Context, touristID int64, tourID primitive.ObjectID) (bool, error) {
	return s.purchases.PurchaseExists(ctx, touristID, tourID)
}

// GetPurchased lists the tourist's purchase tokens, newest first.
func (s *PurchaseService) GetPurchased(ctx context.Context, touristID int64) ([]models.PurchaseTokenDto, error) {
	tokens, err := s.purchases.FindPurchasesByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch purchase tokens: %w", err)
	}

	dtos := make([]models.PurchaseTokenDto, 0, len(tokens))
	for i := range tokens {
		dtos = append(dtos, *models.MapToPurchaseTokenDto(&tokens[i]))
	}
	return dtos, nil
}
