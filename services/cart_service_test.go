package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/database"
	"soa/tours-service/models"
	"soa/tours-service/services"
)

// buyTour grants the tourist a purchase token directly at the store, the way
// a completed checkout would.
func buyTour(t *testing.T, store *database.InMemoryStore, touristID int64, tour *models.Tour) {
	t.Helper()
	err := store.InsertPurchaseTokens(context.Background(), []models.TourPurchaseToken{{
		ID:          primitive.NewObjectID(),
		TouristID:   touristID,
		TourID:      tour.ID,
		TourName:    tour.Name,
		PricePaid:   tour.Price,
		PurchasedAt: time.Now().UTC(),
	}})
	require.NoError(t, err)
}

func publishTour(t *testing.T, svc *services.TourService, price float64) *models.Tour {
	t.Helper()
	tour := createDraftTour(t, svc, 2)
	published, err := svc.Publish(context.Background(), tour.ID, authorID, price)
	require.NoError(t, err)
	return published
}

type recordingNotifier struct {
	touristID int64
	tokens    []models.TourPurchaseToken
}

func (n *recordingNotifier) CheckoutCompleted(touristID int64, tokens []models.TourPurchaseToken) {
	n.touristID = touristID
	n.tokens = tokens
}

func newCartService(store *database.InMemoryStore, notifier services.CheckoutNotifier) *services.CartService {
	return services.NewCartService(store, store, store, notifier)
}

func TestGetCartWithoutDocumentIsEmpty(t *testing.T) {
	svc := newCartService(database.NewInMemoryStore(), nil)

	cart, err := svc.GetCart(context.Background(), touristID)
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.Equal(t, float64(0), cart.TotalPrice)
}

func TestAddToCartSnapshotsNameAndPrice(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	svc := newCartService(store, nil)

	tour := publishTour(t, tours, 5.00)

	cart, err := svc.AddToCart(context.Background(), touristID, tour.ID)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, tour.Name, cart.Items[0].TourName)
	assert.Equal(t, 5.00, cart.Items[0].Price)
	assert.Equal(t, 5.00, cart.TotalPrice)
}

func TestCartTotalSumsItems(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	svc := newCartService(store, nil)

	first := publishTour(t, tours, 5.00)
	second := publishTour(t, tours, 12.50)

	_, err := svc.AddToCart(context.Background(), touristID, first.ID)
	require.NoError(t, err)
	cart, err := svc.AddToCart(context.Background(), touristID, second.ID)
	require.NoError(t, err)

	assert.Equal(t, 17.50, cart.TotalPrice)

	cart, err = svc.RemoveFromCart(context.Background(), touristID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.50, cart.TotalPrice)
}

func TestAddToCartRejectsDraftTour(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	svc := newCartService(store, nil)

	draft := createDraftTour(t, tours, 2)

	_, err := svc.AddToCart(context.Background(), touristID, draft.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestAddToCartRejectsDuplicateItem(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	svc := newCartService(store, nil)

	tour := publishTour(t, tours, 5.00)

	_, err := svc.AddToCart(context.Background(), touristID, tour.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), touristID, tour.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestAddToCartRejectsAlreadyOwnedTour(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	svc := newCartService(store, nil)

	tour := publishTour(t, tours, 5.00)
	buyTour(t, store, touristID, tour)

	_, err := svc.AddToCart(context.Background(), touristID, tour.ID)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	store := database.NewInMemoryStore()
	svc := newCartService(store, nil)

	cart, err := svc.RemoveFromCart(context.Background(), touristID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckoutEmptyCartFails(t *testing.T) {
	svc := newCartService(database.NewInMemoryStore(), nil)

	_, err := svc.Checkout(context.Background(), touristID)
	assert.ErrorIs(t, err, services.ErrPreconditionFailed)
}

func TestCheckoutGrantsTokensAndEmptiesCart(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	notifier := &recordingNotifier{}
	svc := newCartService(store, notifier)

	first := publishTour(t, tours, 5.00)
	second := publishTour(t, tours, 12.50)

	_, err := svc.AddToCart(context.Background(), touristID, first.ID)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), touristID, second.ID)
	require.NoError(t, err)

	tokens, err := svc.Checkout(context.Background(), touristID)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	cart, err := svc.GetCart(context.Background(), touristID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Equal(t, float64(0), cart.TotalPrice)

	owned, err := store.PurchaseExists(context.Background(), touristID, first.ID)
	require.NoError(t, err)
	assert.True(t, owned)

	assert.Equal(t, touristID, notifier.touristID)
	assert.Len(t, notifier.tokens, 2)
}

func TestCheckoutRetryDoesNotDoubleGrant(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	svc := newCartService(store, nil)

	tour := publishTour(t, tours, 5.00)

	_, err := svc.AddToCart(context.Background(), touristID, tour.ID)
	require.NoError(t, err)
	_, err = svc.Checkout(context.Background(), touristID)
	require.NoError(t, err)

	// A client retry after a lost response re-inserts the same grant; the
	// unique (touristId, tourId) constraint swallows the duplicate.
	err = store.InsertPurchaseTokens(context.Background(), []models.TourPurchaseToken{{
		ID:          primitive.NewObjectID(),
		TouristID:   touristID,
		TourID:      tour.ID,
		TourName:    tour.Name,
		PricePaid:   tour.Price,
		PurchasedAt: time.Now().UTC(),
	}})
	require.NoError(t, err)

	purchases, err := store.FindPurchasesByTourist(context.Background(), touristID)
	require.NoError(t, err)
	assert.Len(t, purchases, 1)
}

func TestGetPurchasedListsTokens(t *testing.T) {
	store := database.NewInMemoryStore()
	tours := newTourService(store)
	cartSvc := newCartService(store, nil)
	purchaseSvc := services.NewPurchaseService(store)

	tour := publishTour(t, tours, 7.25)
	_, err := cartSvc.AddToCart(context.Background(), touristID, tour.ID)
	require.NoError(t, err)
	_, err = cartSvc.Checkout(context.Background(), touristID)
	require.NoError(t, err)

	purchased, err := purchaseSvc.GetPurchased(context.Background(), touristID)
	require.NoError(t, err)
	require.Len(t, purchased, 1)
	assert.Equal(t, tour.Name, purchased[0].TourName)
	assert.Equal(t, 7.25, purchased[0].PricePaid)
}
