package services

import (
	"context"
	"fmt"
	"time"

	"soa/tours-service/models"
)

type PositionService struct {
	positions PositionStore
}

func NewPositionService(positions PositionStore) *PositionService {
	return &PositionService{positions: positions}
}

// Update upserts the tourist's single current-position record.
func (s *PositionService) Update(ctx context.Context, touristID int64, latitude, longitude float64) (*models.PositionDto, error) {
	position := &models.TouristPosition{
		TouristID: touristID,
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.positions.UpsertPosition(ctx, position); err != nil {
		return nil, fmt.Errorf("upsert position: %w", err)
	}
	return &models.PositionDto{
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
		UpdatedAt: position.UpdatedAt,
	}, nil
}

func (s *PositionService) Get(ctx context.Context, touristID int64) (*models.PositionDto, error) {
	position, err := s.positions.FindPositionByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch position: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("position not set: %w", ErrNotFound)
	}
	return &models.PositionDto{
		Latitude:  position.Latitude,
		Longitude: position.Longitude,
		UpdatedAt: position.UpdatedAt,
	}, nil
}
