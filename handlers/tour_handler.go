package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"soa/tours-service/models"
	"soa/tours-service/services"
)

type TourHandler struct {
	tours *services.TourService
}

func NewTourHandler(tours *services.TourService) *TourHandler {
	return &TourHandler{tours: tours}
}

type tourRequest struct {
	Name          string                `json:"name" binding:"required"`
	Description   string                `json:"description" binding:"required"`
	Difficulty    models.TourDifficulty `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	Tags          []string              `json:"tags"`
	DurationHours float64               `json:"durationHours" binding:"gte=0"`
}

func (h *TourHandler) CreateTour(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body tourRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tour, err := h.tours.Create(ctx, userID, services.TourInput{
		Name:          body.Name,
		Description:   body.Description,
		Difficulty:    body.Difficulty,
		Tags:          body.Tags,
		DurationHours: body.DurationHours,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.MapToTourDto(tour))
}

func (h *TourHandler) GetTourByID(c *gin.Context) {
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

	dto, err := h.tours.GetForViewer(ctx, tourID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (h *TourHandler) GetMyTours(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tours, err := h.tours.GetMyTours(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tours)
}

func (h *TourHandler) GetPublishedTours(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	tours, err := h.tours.GetPublishedTours(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tours)
}

func (h *TourHandler) UpdateTour(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tourID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var body tourRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tour, err := h.tours.Update(ctx, tourID, userID, services.TourInput{
		Name:          body.Name,
		Description:   body.Description,
		Difficulty:    body.Difficulty,
		Tags:          body.Tags,
		DurationHours: body.DurationHours,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MapToTourDto(tour))
}

func (h *TourHandler) DeleteTour(c *gin.Context) {
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

	if err := h.tours.Delete(ctx, tourID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tour deleted successfully"})
}

func (h *TourHandler) PublishTour(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	tourID, ok := parseObjectID(c, "id")
	if !ok {
		return
	}

	var body struct {
		Price float64 `json:"price" binding:"required,gt=0,lte=10000"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	tour, err := h.tours.Publish(ctx, tourID, userID, body.Price)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MapToTourDto(tour))
}

func (h *TourHandler) ArchiveTour(c *gin.Context) {
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

	tour, err := h.tours.Archive(ctx, tourID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MapToTourDto(tour))
}
