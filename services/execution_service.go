package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/models"
)

// A reported position within this distance of a key point counts as a visit.
const proximityThresholdMeters = 50

// ExecutionService drives tour sessions: one Active session per tourist,
// advanced by position reports until the tourist completes or abandons it.
type ExecutionService struct {
	executions ExecutionStore
	tours      TourStore
	positions  PositionStore
	purchases  *PurchaseService
}

func NewExecutionService(executions ExecutionStore, tours TourStore, positions PositionStore, purchases *PurchaseService) *ExecutionService {
	return &ExecutionService{
		executions: executions,
		tours:      tours,
		positions:  positions,
		purchases:  purchases,
	}
}

// Start opens a session on the tour. Draft tours cannot be started,
// Published tours require a purchase, Archived tours are freely
// revisitable. The tourist must have a current position on record and no
// other Active session.
func (s *ExecutionService) Start(ctx context.Context, touristID int64, tourID primitive.ObjectID) (*models.TourExecutionDto, error) {
	tour, err := s.tours.FindTourByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("fetch tour: %w", err)
	}
	if tour == nil {
		return nil, fmt.Errorf("tour %s: %w", tourID.Hex(), ErrNotFound)
	}

	if tour.Status == models.Draft {
		return nil, fmt.Errorf("cannot start a draft tour: %w", ErrInvalidState)
	}

	if tour.Status == models.Published {
		purchased, err := s.purchases.HasPurchased(ctx, touristID, tourID)
		if err != nil {
			return nil, fmt.Errorf("check purchase: %w", err)
		}
		if !purchased {
			return nil, fmt.Errorf("tour must be purchased before starting: %w", ErrPreconditionFailed)
		}
	}

	active, err := s.executions.FindActiveExecution(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch active session: %w", err)
	}
	if active != nil {
		return nil, fmt.Errorf("tourist %d already has an active session: %w", touristID, ErrConflict)
	}

	position, err := s.positions.FindPositionByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch position: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("position not set: %w", ErrPreconditionFailed)
	}

	now := time.Now().UTC()
	execution := &models.TourExecution{
		TouristID:          touristID,
		TourID:             tour.ID,
		TourName:           tour.Name,
		Status:             models.ExecutionActive,
		StartLatitude:      position.Latitude,
		StartLongitude:     position.Longitude,
		CompletedKeyPoints: []models.CompletedKeyPoint{},
		StartedAt:          now,
		LastActivity:       now,
	}

	// The store rejects a second Active session for the same tourist, so
	// two concurrent starts cannot both slip past the pre-check above.
	if err := s.executions.InsertExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("insert execution: %w", err)
	}

	return models.MapToExecutionDto(execution, len(tour.KeyPoints)), nil
}

type KeyPointCheckResult struct {
	Message        string `json:"message"`
	KeyPointName   string `json:"keyPointName,omitempty"`
	CompletedCount int    `json:"completedCount,omitempty"`
	TotalCount     int    `json:"totalCount,omitempty"`
}

// Hit reports whether the check completed a key point.
func (r *KeyPointCheckResult) Hit() bool {
	return r.KeyPointName != ""
}

// CheckKeyPoint matches a reported position against the tour's key points
// in ascending order, skipping completed ones, and records the first within
// the proximity threshold. The earliest uncompleted key point wins when the
// position is near several, which keeps a tourist standing between close
// key points from skipping ahead. LastActivity is bumped on a miss too.
func (s *ExecutionService) CheckKeyPoint(ctx context.Context, touristID int64, latitude, longitude float64) (*KeyPointCheckResult, error) {
	execution, err := s.executions.FindActiveExecution(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch active session: %w", err)
	}
	if execution == nil {
		return nil, fmt.Errorf("no active tour session: %w", ErrNotFound)
	}

	tour, err := s.tours.FindTourByID(ctx, execution.TourID)
	if err != nil {
		return nil, fmt.Errorf("fetch tour: %w", err)
	}
	if tour == nil {
		return nil, fmt.Errorf("tour %s: %w", execution.TourID.Hex(), ErrNotFound)
	}

	now := time.Now().UTC()

	completed := make(map[int]bool, len(execution.CompletedKeyPoints))
	for _, ck := range execution.CompletedKeyPoints {
		completed[ck.KeyPointOrder] = true
	}

	keyPoints := make([]models.KeyPoint, len(tour.KeyPoints))
	copy(keyPoints, tour.KeyPoints)
	sort.Slice(keyPoints, func(i, j int) bool { return keyPoints[i].Order < keyPoints[j].Order })

	for _, keyPoint := range keyPoints {
		if completed[keyPoint.Order] {
			continue
		}

		distance := DistanceMeters(latitude, longitude, keyPoint.Latitude, keyPoint.Longitude)
		if distance > proximityThresholdMeters {
			continue
		}

		added, err := s.executions.AppendCompletedKeyPoint(ctx, execution.ID, models.CompletedKeyPoint{
			KeyPointOrder: keyPoint.Order,
			CompletedAt:   now,
		})
		if err != nil {
			return nil, fmt.Errorf("record completed key point: %w", err)
		}
		if !added {
			// A concurrent report of the same position beat us to the
			// write; the set already holds this order exactly once.
			log.Printf("key point %d already recorded for execution %s", keyPoint.Order, execution.ID.Hex())
		}

		return &KeyPointCheckResult{
			Message:        fmt.Sprintf("Key point '%s' completed!", keyPoint.Name),
			KeyPointName:   keyPoint.Name,
			CompletedCount: len(execution.CompletedKeyPoints) + 1,
			TotalCount:     len(tour.KeyPoints),
		}, nil
	}

	if err := s.executions.TouchActivity(ctx, execution.ID, now); err != nil {
		return nil, fmt.Errorf("update session activity: %w", err)
	}
	return &KeyPointCheckResult{Message: "Not near any key point"}, nil
}

// Complete ends the active session at the tourist's request. Covering every
// key point is not required and does not complete the session on its own.
func (s *ExecutionService) Complete(ctx context.Context, touristID int64) (*models.TourExecutionDto, error) {
	return s.finish(ctx, touristID, models.ExecutionCompleted)
}

// Abandon ends the active session without completing it.
func (s *ExecutionService) Abandon(ctx context.Context, touristID int64) (*models.TourExecutionDto, error) {
	return s.finish(ctx, touristID, models.ExecutionAbandoned)
}

func (s *ExecutionService) finish(ctx context.Context, touristID int64, status models.ExecutionStatus) (*models.TourExecutionDto, error) {
	execution, err := s.executions.FindActiveExecution(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch active session: %w", err)
	}
	if execution == nil {
		return nil, fmt.Errorf("no active tour session: %w", ErrNotFound)
	}

	now := time.Now().UTC()
	if err := s.executions.FinishExecution(ctx, execution.ID, status, now); err != nil {
		return nil, fmt.Errorf("finish session: %w", err)
	}

	execution.Status = status
	execution.LastActivity = now
	switch status {
	case models.ExecutionCompleted:
		execution.CompletedAt = &now
	case models.ExecutionAbandoned:
		execution.AbandonedAt = &now
	}

	return models.MapToExecutionDto(execution, s.totalKeyPoints(ctx, execution.TourID)), nil
}

// GetActive returns the tourist's running session, if any.
func (s *ExecutionService) GetActive(ctx context.Context, touristID int64) (*models.TourExecutionDto, error) {
	execution, err := s.executions.FindActiveExecution(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch active session: %w", err)
	}
	if execution == nil {
		return nil, fmt.Errorf("no active tour session: %w", ErrNotFound)
	}
	return models.MapToExecutionDto(execution, s.totalKeyPoints(ctx, execution.TourID)), nil
}

// GetHistory lists the tourist's sessions, newest first.
func (s *ExecutionService) GetHistory(ctx context.Context, touristID int64) ([]models.TourExecutionDto, error) {
	executions, err := s.executions.FindExecutionsByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch sessions: %w", err)
	}

	dtos := make([]models.TourExecutionDto, 0, len(executions))
	for i := range executions {
		dtos = append(dtos, *models.MapToExecutionDto(&executions[i], s.totalKeyPoints(ctx, executions[i].TourID)))
	}
	return dtos, nil
}

// totalKeyPoints is display-only; a deleted tour degrades to zero.
func (s *ExecutionService) totalKeyPoints(ctx context.Context, tourID primitive.ObjectID) int {
	tour, err := s.tours.FindTourByID(ctx, tourID)
	if err != nil || tour == nil {
		return 0
	}
	return len(tour.KeyPoints)
}
