package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/services"
)

type ShoppingCartHandler struct {
	carts     *services.CartService
	purchases *services.PurchaseService
}

func NewShoppingCartHandler(carts *services.CartService, purchases *services.PurchaseService) *ShoppingCartHandler {
	return &ShoppingCartHandler{carts: carts, purchases: purchases}
}

func (h *ShoppingCartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *ShoppingCartHandler) AddToCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body struct {
		TourID string `json:"tourId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tourID, err := primitive.ObjectIDFromHex(body.TourID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tourId"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.AddToCart(ctx, userID, tourID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *ShoppingCartHandler) RemoveFromCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tourID, ok := parseObjectID(c, "tourId")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cart, err := h.carts.RemoveFromCart(ctx, userID, tourID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *ShoppingCartHandler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tokens, err := h.carts.Checkout(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

func (h *ShoppingCartHandler) GetPurchasedTours(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tokens, err := h.purchases.GetPurchased(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}
