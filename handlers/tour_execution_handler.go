package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"

	"soa/tours-service/models"
	"soa/tours-service/opentelemetery"
	"soa/tours-service/services"
)

type TourExecutionHandler struct {
	executions *services.ExecutionService
}

func NewTourExecutionHandler(executions *services.ExecutionService) *TourExecutionHandler {
	return &TourExecutionHandler{executions: executions}
}

func (h *TourExecutionHandler) StartTourExecution(c *gin.Context) {
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

	execution, err := h.executions.Start(ctx, userID, tourID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, execution)
}

func (h *TourExecutionHandler) CheckKeyPoint(c *gin.Context) {
	traceContext, span := opentelemetery.TraceProvider.Tracer(opentelemetery.ServiceName).Start(c.Request.Context(), "execution-check-keypoint")
	defer span.End()

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var body struct {
		Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
		Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		span.SetStatus(codes.Error, err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.executions.CheckKeyPoint(traceContext, userID, *body.Latitude, *body.Longitude)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *TourExecutionHandler) CompleteTourExecution(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	execution, err := h.executions.Complete(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, execution)
}

func (h *TourExecutionHandler) AbandonTourExecution(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	execution, err := h.executions.Abandon(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, execution)
}

func (h *TourExecutionHandler) GetActiveTourExecution(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	execution, err := h.executions.GetActive(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, execution)
}

func (h *TourExecutionHandler) GetExecutionHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	history, err := h.executions.GetHistory(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseExecutionStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filtered := make([]models.TourExecutionDto, 0, len(history))
		for _, execution := range history {
			if execution.Status == status {
				filtered = append(filtered, execution)
			}
		}
		history = filtered
	}

	c.JSON(http.StatusOK, history)
}
