package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"soa/tours-service/models"
)

type keyPointRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	ImageUrl    string   `json:"imageUrl"`
	Latitude    *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Order       int      `json:"order"`
}

func (h *TourHandler) AddKeyPoint(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tourID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var body keyPointRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	keyPoint, err := h.tours.AddKeyPoint(ctx, tourID, userID, models.KeyPoint{
		Name:        body.Name,
		Description: body.Description,
		ImageUrl:    body.ImageUrl,
		Latitude:    *body.Latitude,
		Longitude:   *body.Longitude,
		Order:       body.Order,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.MapToKeyPointDto(keyPoint))
}

func (h *TourHandler) GetKeyPoints(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tourID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	keyPoints, err := h.tours.GetKeyPoints(ctx, tourID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, keyPoints)
}
