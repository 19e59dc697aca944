package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/models"
)

// CheckoutNotifier broadcasts a completed checkout to the rest of the
// platform. Delivery is best-effort and must not fail the checkout.
type CheckoutNotifier interface {
	CheckoutCompleted(touristID int64, tokens []models.TourPurchaseToken)
}

type CartService struct {
	carts     CartStore
	tours     TourStore
	purchases PurchaseStore
	notifier  CheckoutNotifier
}

// NewCartService wires the ledger. notifier may be nil when eventing is
// disabled.
func NewCartService(carts CartStore, tours TourStore, purchases PurchaseStore, notifier CheckoutNotifier) *CartService {
	return &CartService{carts: carts, tours: tours, purchases: purchases, notifier: notifier}
}

// GetCart returns an empty projection when the tourist has no cart document.
func (s *CartService) GetCart(ctx context.Context, touristID int64) (*models.ShoppingCartDto, error) {
	cart, err := s.carts.FindCartByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	return models.MapToCartDto(cart), nil
}

// AddToCart snapshots the tour's current name and price into a new line
// item. Only Published tours can be carted, and only once.
func (s *CartService) AddToCart(ctx context.Context, touristID int64, tourID primitive.ObjectID) (*models.ShoppingCartDto, error) {
	tour, err := s.tours.FindTourByID(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("fetch tour: %w", err)
	}
	if tour == nil || tour.Status != models.Published {
		return nil, fmt.Errorf("tour not found or not available for purchase: %w", ErrNotFound)
	}

	owned, err := s.purchases.PurchaseExists(ctx, touristID, tourID)
	if err != nil {
		return nil, fmt.Errorf("check purchase: %w", err)
	}
	if owned {
		return nil, fmt.Errorf("tour %s already owned: %w", tourID.Hex(), ErrConflict)
	}

	cart, err := s.carts.FindCartByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if cart == nil {
		cart = &models.ShoppingCart{TouristID: touristID, Items: []models.OrderItem{}}
	}

	for _, item := range cart.Items {
		if item.TourID == tourID {
			return nil, fmt.Errorf("tour %s already in cart: %w", tourID.Hex(), ErrConflict)
		}
	}

	cart.Items = append(cart.Items, models.OrderItem{
		TourID:   tour.ID,
		TourName: tour.Name,
		Price:    tour.Price,
	})
	recalculateTotal(cart)

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return models.MapToCartDto(cart), nil
}

// RemoveFromCart is idempotent: removing an absent item, or having no cart
// at all, is not an error.
func (s *CartService) RemoveFromCart(ctx context.Context, touristID int64, tourID primitive.ObjectID) (*models.ShoppingCartDto, error) {
	cart, err := s.carts.FindCartByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if cart == nil {
		return models.MapToCartDto(nil), nil
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.TourID != tourID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	recalculateTotal(cart)

	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return models.MapToCartDto(cart), nil
}

// Checkout converts every line item into a purchase token, then empties the
// cart. Token insertion ignores duplicates under the unique (touristId,
// tourId) index, so if clearing the cart fails the whole call is safe to
// retry.
func (s *CartService) Checkout(ctx context.Context, touristID int64) ([]models.PurchaseTokenDto, error) {
	cart, err := s.carts.FindCartByTourist(ctx, touristID)
	if err != nil {
		return nil, fmt.Errorf("fetch cart: %w", err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, fmt.Errorf("cart is empty: %w", ErrPreconditionFailed)
	}

	now := time.Now().UTC()
	tokens := make([]models.TourPurchaseToken, 0, len(cart.Items))
	for _, item := range cart.Items {
		tokens = append(tokens, models.TourPurchaseToken{
			ID:          primitive.NewObjectID(),
			TouristID:   touristID,
			TourID:      item.TourID,
			TourName:    item.TourName,
			PricePaid:   item.Price,
			PurchasedAt: now,
		})
	}

	if err := s.purchases.InsertPurchaseTokens(ctx, tokens); err != nil {
		return nil, fmt.Errorf("insert purchase tokens: %w", err)
	}

	cart.Items = []models.OrderItem{}
	recalculateTotal(cart)
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	if s.notifier != nil {
		s.notifier.CheckoutCompleted(touristID, tokens)
	}

	dtos := make([]models.PurchaseTokenDto, 0, len(tokens))
	for i := range tokens {
		dtos = append(dtos, *models.MapToPurchaseTokenDto(&tokens[i]))
	}
	return dtos, nil
}

func recalculateTotal(cart *models.ShoppingCart) {
	var total float64
	for _, item := range cart.Items {
		total += item.Price
	}
	cart.TotalPrice = total
	cart.UpdatedAt = time.Now().UTC()
}
