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

const maxTourPrice = 10000

type TourService struct {
	tours     TourStore
	purchases *PurchaseService
}

func NewTourService(tours TourStore, purchases *PurchaseService) *TourService {
	return &TourService{tours: tours, purchases: purchases}
}

type TourInput struct {
	Name          string
	Description   string
	Difficulty    models.TourDifficulty
	Tags          []string
	DurationHours float64
}

// Create always starts a tour in Draft with price 0; the price is only set
// at publish time.
func (s *TourService) Create(ctx context.Context, authorID int64, in TourInput) (*models.Tour, error) {
	tour := &models.Tour{
		AuthorID:      authorID,
		Name:          in.Name,
		Description:   in.Description,
		Difficulty:    in.Difficulty,
		Status:        models.Draft,
		Price:         0,
		Tags:          in.Tags,
		KeyPoints:     []models.KeyPoint{},
		DurationHours: in.DurationHours,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.tours.InsertTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("insert tour: %w", err)
	}
	return tour, nil
}

// findOwned loads the tour and checks authorship.
func (s *TourService) findOwned(ctx context.Context, tourID primitive.ObjectID, actorID int64) (*models.Tour, error) {
	tour, err := s.tours.FindTourByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("fetch tour: %w", err)
	}
	if tour == nil {
		return nil, fmt.Errorf("tour %s: %w", tourID.Hex(), ErrNotFound)
	}
	if tour.AuthorID != actorID {
		return nil, fmt.Errorf("tour %s is not owned by user %d: %w", tourID.Hex(), actorID, ErrForbidden)
	}
	return tour, nil
}

// Update mutates name, description, difficulty, tags and duration only.
// Status and price are untouched.
func (s *TourService) Update(ctx context.Context, tourID primitive.ObjectID, actorID int64, in TourInput) (*models.Tour, error) {
	tour, err := s.findOwned(ctx, tourID, actorID)
	if err != nil {
		return nil, err
	}

	tour.Name = in.Name
	tour.Description = in.Description
	tour.Difficulty = in.Difficulty
	tour.Tags = in.Tags
	tour.DurationHours = in.DurationHours

	if err := s.tours.ReplaceTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("update tour: %w", err)
	}
	return tour, nil
}

// AddKeyPoint appends a key point to the author's tour. Orders must be
// unique within the tour: start and end are derived from min/max order and
// the completion scan walks ascending order, so ties would be ambiguous.
func (s *TourService) AddKeyPoint(ctx context.Context, tourID primitive.ObjectID, actorID int64, keyPoint models.KeyPoint) (*models.KeyPoint, error) {
	tour, err := s.findOwned(ctx, tourID, actorID)
	if err != nil {
		return nil, err
	}

	for _, existing := range tour.KeyPoints {
		if existing.Order == keyPoint.Order {
			return nil, fmt.Errorf("key point order %d already taken: %w", keyPoint.Order, ErrConflict)
		}
	}

	tour.KeyPoints = append(tour.KeyPoints, keyPoint)
	if err := s.tours.ReplaceTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("add key point: %w", err)
	}
	return &keyPoint, nil
}

// Publish moves a Draft tour to Published, fixing the price. Requires at
// least two key points so the tour has a start and an end.
func (s *TourService) Publish(ctx context.Context, tourID primitive.ObjectID, actorID int64, price float64) (*models.Tour, error) {
	tour, err := s.findOwned(ctx, tourID, actorID)
	if err != nil {
		return nil, err
	}

	if tour.Status != models.Draft {
		return nil, fmt.Errorf("tour is %s, only Draft tours can be published: %w", tour.Status, ErrInvalidState)
	}
	if price <= 0 || price > maxTourPrice {
		return nil, fmt.Errorf("price must be in (0, %d]: %w", maxTourPrice, ErrPreconditionFailed)
	}
	if len(tour.KeyPoints) < 2 {
		return nil, fmt.Errorf("tour must have at least 2 key points: %w", ErrPreconditionFailed)
	}

	now := time.Now().UTC()
	tour.Status = models.Published
	tour.Price = price
	tour.PublishedAt = &now

	if err := s.tours.ReplaceTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("publish tour: %w", err)
	}
	return tour, nil
}

// Archive is allowed from any state.
func (s *TourService) Archive(ctx context.Context, tourID primitive.ObjectID, actorID int64) (*models.Tour, error) {
	tour, err := s.findOwned(ctx, tourID, actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tour.Status = models.Archived
	tour.ArchivedAt = &now

	if err := s.tours.ReplaceTour(ctx, tour); err != nil {
		return nil, fmt.Errorf("archive tour: %w", err)
	}
	return tour, nil
}

func (s *TourService) Delete(ctx context.Context, tourID primitive.ObjectID, actorID int64) error {
	deleted, err := s.tours.DeleteTour(ctx, tourID, actorID)
	if err != nil {
		return fmt.Errorf("delete tour: %w", err)
	}
	if !deleted {
		return fmt.Errorf("tour %s not found or not owned by user %d: %w", tourID.Hex(), actorID, ErrNotFound)
	}
	return nil
}

// GetForViewer returns the full projection for the author or an entitled
// tourist, the redacted one otherwise. Draft tours are invisible to anyone
// but their author. A failed entitlement lookup degrades to "not entitled"
// so the public projection stays readable when the ledger is down.
func (s *TourService) GetForViewer(ctx context.Context, tourID primitive.ObjectID, viewerID int64) (*models.TourDto, error) {
	tour, err := s.tours.FindTourByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("fetch tour: %w", err)
	}
	if tour == nil {
		return nil, fmt.Errorf("tour %s: %w", tourID.Hex(), ErrNotFound)
	}

	if tour.AuthorID == viewerID {
		return models.MapToTourDto(tour), nil
	}
	if tour.Status == models.Draft {
		return nil, fmt.Errorf("tour %s: %w", tourID.Hex(), ErrNotFound)
	}

	purchased, err := s.purchases.HasPurchased(ctx, viewerID, tour.ID)
	if err != nil {
		log.Printf("entitlement lookup failed for tourist %d on tour %s: %v", viewerID, tourID.Hex(), err)
		purchased = false
	}
	if purchased {
		return models.MapToTourDto(tour), nil
	}
	return models.MapToRedactedTourDto(tour), nil
}

// GetKeyPoints returns the tour's key points in ascending order. Only the
// author or an entitled tourist may enumerate them.
func (s *TourService) GetKeyPoints(ctx context.Context, tourID primitive.ObjectID, viewerID int64) ([]models.KeyPointDto, error) {
	tour, err := s.tours.FindTourByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("fetch tour: %w", err)
	}
	if tour == nil {
		return nil, fmt.Errorf("tour %s: %w", tourID.Hex(), ErrNotFound)
	}

	if tour.AuthorID != viewerID {
		purchased, err := s.purchases.HasPurchased(ctx, viewerID, tour.ID)
		if err != nil {
			return nil, fmt.Errorf("check purchase: %w", err)
		}
		if !purchased {
			return nil, fmt.Errorf("tour %s must be purchased to see its key points: %w", tourID.Hex(), ErrForbidden)
		}
	}

	keyPoints := make([]models.KeyPoint, len(tour.KeyPoints))
	copy(keyPoints, tour.KeyPoints)
	sort.Slice(keyPoints, func(i, j int) bool { return keyPoints[i].Order < keyPoints[j].Order })

	dtos := make([]models.KeyPointDto, 0, len(keyPoints))
	for i := range keyPoints {
		dtos = append(dtos, *models.MapToKeyPointDto(&keyPoints[i]))
	}
	return dtos, nil
}

// GetMyTours lists the author's tours with full detail, newest first.
func (s *TourService) GetMyTours(ctx context.Context, authorID int64) ([]models.TourDto, error) {
	tours, err := s.tours.FindToursByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("fetch tours: %w", err)
	}

	dtos := make([]models.TourDto, 0, len(tours))
	for i := range tours {
		dtos = append(dtos, *models.MapToTourDto(&tours[i]))
	}
	return dtos, nil
}

// GetPublishedTours lists the catalog with the redacted projection; the
// per-viewer full view is served by GetForViewer.
func (s *TourService) GetPublishedTours(ctx context.Context) ([]models.TourDto, error) {
	tours, err := s.tours.FindPublishedTours(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch published tours: %w", err)
	}

	dtos := make([]models.TourDto, 0, len(tours))
	for i := range tours {
		dtos = append(dtos, *models.MapToRedactedTourDto(&tours[i]))
	}
	return dtos, nil
}
