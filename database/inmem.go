package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/models"
	"soa/tours-service/services"
)

// InMemoryStore is a map-backed stand-in for the mongo store with the same
// uniqueness guarantees. Used by the service tests; not for production.
type InMemoryStore struct {
	mu         sync.Mutex
	tours      map[primitive.ObjectID]models.Tour
	executions map[primitive.ObjectID]models.TourExecution
	carts      map[int64]models.ShoppingCart
	purchases  []models.TourPurchaseToken
	positions  map[int64]models.TouristPosition
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		tours:      make(map[primitive.ObjectID]models.Tour),
		executions: make(map[primitive.ObjectID]models.TourExecution),
		carts:      make(map[int64]models.ShoppingCart),
		positions:  make(map[int64]models.TouristPosition),
	}
}

// Tours

func (m *InMemoryStore) InsertTour(_ context.Context, tour *models.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tour.ID = primitive.NewObjectID()
	m.tours[tour.ID] = *tour
	return nil
}

func (m *InMemoryStore) FindTourByID(_ context.Context, id primitive.ObjectID) (*models.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tour, ok := m.tours[id]
	if !ok {
		return nil, nil
	}
	return copyTour(tour), nil
}

func (m *InMemoryStore) FindToursByAuthor(_ context.Context, authorID int64) ([]models.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tours []models.Tour
	for _, tour := range m.tours {
		if tour.AuthorID == authorID {
			tours = append(tours, *copyTour(tour))
		}
	}
	sort.Slice(tours, func(i, j int) bool { return tours[i].CreatedAt.After(tours[j].CreatedAt) })
	return tours, nil
}

func (m *InMemoryStore) FindPublishedTours(_ context.Context) ([]models.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tours []models.Tour
	for _, tour := range m.tours {
		if tour.Status == models.Published {
			tours = append(tours, *copyTour(tour))
		}
	}
	sort.Slice(tours, func(i, j int) bool {
		return tours[i].PublishedAt != nil && tours[j].PublishedAt != nil &&
			tours[i].PublishedAt.After(*tours[j].PublishedAt)
	})
	return tours, nil
}

func (m *InMemoryStore) ReplaceTour(_ context.Context, tour *models.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tours[tour.ID]; !ok {
		return fmt.Errorf("tour %s does not exist", tour.ID.Hex())
	}
	m.tours[tour.ID] = *copyTour(*tour)
	return nil
}

func (m *InMemoryStore) DeleteTour(_ context.Context, id primitive.ObjectID, authorID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tour, ok := m.tours[id]
	if !ok || tour.AuthorID != authorID {
		return false, nil
	}
	delete(m.tours, id)
	return true, nil
}

// Purchase tokens

func (m *InMemoryStore) PurchaseExists(_ context.Context, touristID int64, tourID primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purchaseExistsLocked(touristID, tourID), nil
}

func (m *InMemoryStore) InsertPurchaseTokens(_ context.Context, tokens []models.TourPurchaseToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, token := range tokens {
		if m.purchaseExistsLocked(token.TouristID, token.TourID) {
			continue
		}
		m.purchases = append(m.purchases, token)
	}
	return nil
}

func (m *InMemoryStore) FindPurchasesByTourist(_ context.Context, touristID int64) ([]models.TourPurchaseToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tokens []models.TourPurchaseToken
	for _, token := range m.purchases {
		if token.TouristID == touristID {
			tokens = append(tokens, token)
		}
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i].PurchasedAt.After(tokens[j].PurchasedAt) })
	return tokens, nil
}

func (m *InMemoryStore) purchaseExistsLocked(touristID int64, tourID primitive.ObjectID) bool {
	for _, token := range m.purchases {
		if token.TouristID == touristID && token.TourID == tourID {
			return true
		}
	}
	return false
}

// Shopping carts

func (m *InMemoryStore) FindCartByTourist(_ context.Context, touristID int64) (*models.ShoppingCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart, ok := m.carts[touristID]
	if !ok {
		return nil, nil
	}
	copied := cart
	copied.Items = append([]models.OrderItem(nil), cart.Items...)
	return &copied, nil
}

func (m *InMemoryStore) SaveCart(_ context.Context, cart *models.ShoppingCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	copied := *cart
	copied.Items = append([]models.OrderItem(nil), cart.Items...)
	m.carts[cart.TouristID] = copied
	return nil
}

// Tour executions

func (m *InMemoryStore) InsertExecution(_ context.Context, execution *models.TourExecution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.executions {
		if existing.TouristID == execution.TouristID && existing.Status == models.ExecutionActive {
			return fmt.Errorf("tourist %d already has an active session: %w", execution.TouristID, services.ErrConflict)
		}
	}

	execution.ID = primitive.NewObjectID()
	m.executions[execution.ID] = *copyExecution(*execution)
	return nil
}

func (m *InMemoryStore) FindActiveExecution(_ context.Context, touristID int64) (*models.TourExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, execution := range m.executions {
		if execution.TouristID == touristID && execution.Status == models.ExecutionActive {
			return copyExecution(execution), nil
		}
	}
	return nil, nil
}

func (m *InMemoryStore) FindExecutionsByTourist(_ context.Context, touristID int64) ([]models.TourExecution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var executions []models.TourExecution
	for _, execution := range m.executions {
		if execution.TouristID == touristID {
			executions = append(executions, *copyExecution(execution))
		}
	}
	sort.Slice(executions, func(i, j int) bool { return executions[i].StartedAt.After(executions[j].StartedAt) })
	return executions, nil
}

func (m *InMemoryStore) AppendCompletedKeyPoint(_ context.Context, executionID primitive.ObjectID, completed models.CompletedKeyPoint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	execution, ok := m.executions[executionID]
	if !ok {
		return false, fmt.Errorf("execution %s does not exist", executionID.Hex())
	}

	execution.LastActivity = completed.CompletedAt
	for _, existing := range execution.CompletedKeyPoints {
		if existing.KeyPointOrder == completed.KeyPointOrder {
			m.executions[executionID] = execution
			return false, nil
		}
	}

	execution.CompletedKeyPoints = append(execution.CompletedKeyPoints, completed)
	m.executions[executionID] = execution
	return true, nil
}

func (m *InMemoryStore) TouchActivity(_ context.Context, executionID primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	execution, ok := m.executions[executionID]
	if !ok {
		return fmt.Errorf("execution %s does not exist", executionID.Hex())
	}
	execution.LastActivity = at
	m.executions[executionID] = execution
	return nil
}

func (m *InMemoryStore) FinishExecution(_ context.Context, executionID primitive.ObjectID, status models.ExecutionStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	execution, ok := m.executions[executionID]
	if !ok {
		return fmt.Errorf("execution %s does not exist", executionID.Hex())
	}

	execution.Status = status
	execution.LastActivity = at
	switch status {
	case models.ExecutionCompleted:
		execution.CompletedAt = &at
	case models.ExecutionAbandoned:
		execution.AbandonedAt = &at
	}
	m.executions[executionID] = execution
	return nil
}

// Tourist positions

func (m *InMemoryStore) FindPositionByTourist(_ context.Context, touristID int64) (*models.TouristPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	position, ok := m.positions[touristID]
	if !ok {
		return nil, nil
	}
	return &position, nil
}

func (m *InMemoryStore) UpsertPosition(_ context.Context, position *models.TouristPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if position.ID.IsZero() {
		position.ID = primitive.NewObjectID()
	}
	m.positions[position.TouristID] = *position
	return nil
}

func copyTour(tour models.Tour) *models.Tour {
	copied := tour
	copied.Tags = append([]string(nil), tour.Tags...)
	copied.KeyPoints = append([]models.KeyPoint(nil), tour.KeyPoints...)
	return &copied
}

func copyExecution(execution models.TourExecution) *models.TourExecution {
	copied := execution
	copied.CompletedKeyPoints = append([]models.CompletedKeyPoint(nil), execution.CompletedKeyPoints...)
	return &copied
}
