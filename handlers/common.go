package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"soa/tours-service/services"
	"soa/tours-service/utils"
)

// currentUserID verifies the bearer token and pulls the authenticated
// numeric user id out of it. Writes the error response itself on failure.
func currentUserID(c *gin.Context) (int64, bool) {
	claims, err := utils.VerifyJWT(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}

	userID, err := utils.UserIDFromClaims(claims)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId in token"})
		return 0, false
	}
	return userID, true
}

func parseObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return primitive.NilObjectID, false
	}
	return id, true
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 5*time.Second)
}

// respondError maps the business error kinds to HTTP statuses. Anything
// outside the taxonomy is an infrastructure fault and stays a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrPreconditionFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Println(err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
