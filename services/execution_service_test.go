package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soa/tours-service/database"
	"soa/tours-service/models"
	"soa/tours-service/services"
)

type executionFixture struct {
	store      *database.InMemoryStore
	tours      *services.TourService
	positions  *services.PositionService
	executions *services.ExecutionService
}

func newExecutionFixture(t *testing.T) *executionFixture {
	t.Helper()
	store := database.NewInMemoryStore()
	purchases := services.NewPurchaseService(store)
	return &executionFixture{
		store:      store,
		tours:      services.NewTourService(store, purchases),
		positions:  services.NewPositionService(store),
		executions: services.NewExecutionService(store, store, store, purchases),
	}
}

// publishedTour creates a tour with key points roughly 1.1 km apart going
// north from Kalemegdan, published at 9.99.
func (f *executionFixture) publishedTour(t *testing.T, keyPoints int) *models.Tour {
	t.Helper()

	tour, err := f.tours.Create(context.Background(), authorID, services.TourInput{
		Name:       "Fortress Trail",
		Difficulty: models.Medium,
	})
	require.NoError(t, err)

	for i := 0; i < keyPoints; i++ {
		_, err := f.tours.AddKeyPoint(context.Background(), tour.ID, authorID, models.KeyPoint{
			Name:      keyPointName(i + 1),
			Latitude:  44.8229 + float64(i)*0.01,
			Longitude: 20.4512,
			Order:     i + 1,
		})
		require.NoError(t, err)
	}

	published, err := f.tours.Publish(context.Background(), tour.ID, authorID, 9.99)
	require.NoError(t, err)
	return published
}

func keyPointName(order int) string {
	names := []string{"Gate", "Well", "Tower", "Bridge"}
	return names[(order-1)%len(names)]
}

func (f *executionFixture) setPosition(t *testing.T, latitude, longitude float64) {
	t.Helper()
	_, err := f.positions.Update(context.Background(), touristID, latitude, longitude)
	require.NoError(t, err)
}

func (f *executionFixture) start(t *testing.T, tour *models.Tour) *models.TourExecutionDto {
	t.Helper()
	execution, err := f.executions.Start(context.Background(), touristID, tour.ID)
	require.NoError(t, err)
	return execution
}

func TestStartRequiresExistingTour(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)

	err := f.tours.Delete(context.Background(), tour.ID, authorID)
	require.NoError(t, err)

	_, err = f.executions.Start(context.Background(), touristID, tour.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestStartRejectsDraftTour(t *testing.T) {
	f := newExecutionFixture(t)
	tour, err := f.tours.Create(context.Background(), authorID, services.TourInput{Name: "WIP"})
	require.NoError(t, err)

	_, err = f.executions.Start(context.Background(), touristID, tour.ID)
	assert.ErrorIs(t, err, services.ErrInvalidState)
}

func TestStartPublishedTourRequiresPurchase(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	f.setPosition(t, 44.8229, 20.4512)

	_, err := f.executions.Start(context.Background(), touristID, tour.ID)
	assert.ErrorIs(t, err, services.ErrPreconditionFailed)

	buyTour(t, f.store, touristID, tour)

	execution := f.start(t, tour)
	assert.Equal(t, models.ExecutionActive, execution.Status)
	assert.Equal(t, 2, execution.TotalKeyPointsCount)
}

func TestStartArchivedTourNeedsNoPurchase(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	_, err := f.tours.Archive(context.Background(), tour.ID, authorID)
	require.NoError(t, err)

	f.setPosition(t, 44.8229, 20.4512)

	execution := f.start(t, tour)
	assert.Equal(t, models.ExecutionActive, execution.Status)
}

func TestStartRequiresPosition(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, tour)

	_, err := f.executions.Start(context.Background(), touristID, tour.ID)
	assert.ErrorIs(t, err, services.ErrPreconditionFailed)
}

func TestStartRejectsSecondActiveSession(t *testing.T) {
	f := newExecutionFixture(t)
	first := f.publishedTour(t, 2)
	second := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, first)
	buyTour(t, f.store, touristID, second)
	f.setPosition(t, 44.8229, 20.4512)

	f.start(t, first)

	_, err := f.executions.Start(context.Background(), touristID, second.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestCheckKeyPointWithoutActiveSession(t *testing.T) {
	f := newExecutionFixture(t)

	_, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8229, 20.4512)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCheckKeyPointCompletesNearbyKeyPoint(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	// 0.0002 degrees of latitude is about 22 m, inside the threshold.
	result, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8231, 20.4512)
	require.NoError(t, err)

	assert.True(t, result.Hit())
	assert.Equal(t, "Gate", result.KeyPointName)
	assert.Equal(t, 1, result.CompletedCount)
	assert.Equal(t, 2, result.TotalCount)
}

func TestCheckKeyPointMissOutsideThreshold(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	// 0.001 degrees of latitude is about 111 m away from every key point.
	result, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8219, 20.4512)
	require.NoError(t, err)

	assert.False(t, result.Hit())
	assert.Equal(t, "Not near any key point", result.Message)
}

func TestCheckKeyPointMissStillBumpsActivity(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	started := f.start(t, tour)

	time.Sleep(5 * time.Millisecond)

	_, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8219, 20.4512)
	require.NoError(t, err)

	active, err := f.executions.GetActive(context.Background(), touristID)
	require.NoError(t, err)
	assert.True(t, active.LastActivity.After(started.LastActivity))
}

func TestCheckKeyPointIgnoresAlreadyCompleted(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 3)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	result, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8229, 20.4512)
	require.NoError(t, err)
	require.Equal(t, "Gate", result.KeyPointName)

	// Re-reporting the same position finds no uncompleted key point nearby.
	result, err = f.executions.CheckKeyPoint(context.Background(), touristID, 44.8229, 20.4512)
	require.NoError(t, err)
	assert.False(t, result.Hit())

	active, err := f.executions.GetActive(context.Background(), touristID)
	require.NoError(t, err)
	assert.Equal(t, 1, active.CompletedKeyPointsCount)
}

func TestCheckKeyPointLowestOrderWinsWhenBothInRange(t *testing.T) {
	f := newExecutionFixture(t)

	// Two key points about 30 m apart, so a report from the midpoint is
	// within the threshold of both.
	tour, err := f.tours.Create(context.Background(), authorID, services.TourInput{
		Name:       "Old Town Squares",
		Difficulty: models.Easy,
	})
	require.NoError(t, err)
	_, err = f.tours.AddKeyPoint(context.Background(), tour.ID, authorID, models.KeyPoint{
		Name: "Gate", Latitude: 44.82290, Longitude: 20.4512, Order: 1,
	})
	require.NoError(t, err)
	_, err = f.tours.AddKeyPoint(context.Background(), tour.ID, authorID, models.KeyPoint{
		Name: "Well", Latitude: 44.82317, Longitude: 20.4512, Order: 2,
	})
	require.NoError(t, err)
	published, err := f.tours.Publish(context.Background(), tour.ID, authorID, 9.99)
	require.NoError(t, err)

	buyTour(t, f.store, touristID, published)
	f.setPosition(t, 44.82290, 20.4512)
	f.start(t, published)

	// Midpoint, roughly 15 m from each key point: the lower order
	// completes, not whichever is nearest.
	result, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.823035, 20.4512)
	require.NoError(t, err)
	assert.Equal(t, "Gate", result.KeyPointName)
	assert.Equal(t, 1, result.CompletedCount)

	result, err = f.executions.CheckKeyPoint(context.Background(), touristID, 44.823035, 20.4512)
	require.NoError(t, err)
	assert.Equal(t, "Well", result.KeyPointName)
	assert.Equal(t, 2, result.CompletedCount)
}

func TestCheckKeyPointVisitsInAnyOrder(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 3)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	// Straight to the third key point, skipping the first two.
	result, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8429, 20.4512)
	require.NoError(t, err)
	assert.Equal(t, "Tower", result.KeyPointName)

	result, err = f.executions.CheckKeyPoint(context.Background(), touristID, 44.8229, 20.4512)
	require.NoError(t, err)
	assert.Equal(t, "Gate", result.KeyPointName)
	assert.Equal(t, 2, result.CompletedCount)
}

func TestCompleteEndsSessionRegardlessOfCoverage(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 3)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	completed, err := f.executions.Complete(context.Background(), touristID)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionCompleted, completed.Status)
	assert.Equal(t, 0, completed.CompletedKeyPointsCount)
	require.NotNil(t, completed.CompletedAt)
	assert.Nil(t, completed.AbandonedAt)

	_, err = f.executions.GetActive(context.Background(), touristID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAbandonEndsSession(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	abandoned, err := f.executions.Abandon(context.Background(), touristID)
	require.NoError(t, err)

	assert.Equal(t, models.ExecutionAbandoned, abandoned.Status)
	require.NotNil(t, abandoned.AbandonedAt)
	assert.Nil(t, abandoned.CompletedAt)
}

func TestFullKeyPointCoverageDoesNotAutoComplete(t *testing.T) {
	f := newExecutionFixture(t)
	tour := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, tour)
	f.setPosition(t, 44.8229, 20.4512)
	f.start(t, tour)

	_, err := f.executions.CheckKeyPoint(context.Background(), touristID, 44.8229, 20.4512)
	require.NoError(t, err)
	_, err = f.executions.CheckKeyPoint(context.Background(), touristID, 44.8329, 20.4512)
	require.NoError(t, err)

	active, err := f.executions.GetActive(context.Background(), touristID)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionActive, active.Status)
	assert.Equal(t, 2, active.CompletedKeyPointsCount)
}

func TestFinishAllowsStartingAnotherTour(t *testing.T) {
	f := newExecutionFixture(t)
	first := f.publishedTour(t, 2)
	second := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, first)
	buyTour(t, f.store, touristID, second)
	f.setPosition(t, 44.8229, 20.4512)

	f.start(t, first)
	_, err := f.executions.Abandon(context.Background(), touristID)
	require.NoError(t, err)

	execution := f.start(t, second)
	assert.Equal(t, models.ExecutionActive, execution.Status)
}

func TestGetHistoryNewestFirst(t *testing.T) {
	f := newExecutionFixture(t)
	first := f.publishedTour(t, 2)
	second := f.publishedTour(t, 2)
	buyTour(t, f.store, touristID, first)
	buyTour(t, f.store, touristID, second)
	f.setPosition(t, 44.8229, 20.4512)

	f.start(t, first)
	_, err := f.executions.Complete(context.Background(), touristID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	f.start(t, second)
	_, err = f.executions.Abandon(context.Background(), touristID)
	require.NoError(t, err)

	history, err := f.executions.GetHistory(context.Background(), touristID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID.Hex(), history[0].TourID)
	assert.Equal(t, first.ID.Hex(), history[1].TourID)
}
