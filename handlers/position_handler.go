package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"soa/tours-service/services"
)

type PositionHandler struct {
	positions *services.PositionService
}

func NewPositionHandler(positions *services.PositionService) *PositionHandler {
	return &PositionHandler{positions: positions}
}

func (h *PositionHandler) UpdatePosition(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body struct {
		Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
		Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	position, err := h.positions.Update(ctx, userID, *body.Latitude, *body.Longitude)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}

func (h *PositionHandler) GetMyPosition(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	position, err := h.positions.Get(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, position)
}
