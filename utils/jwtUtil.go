package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// GenerateJWT issues the token shape the stakeholders service signs. Kept
// here for tests and local tooling; production tokens come from there.
func GenerateJWT(username string, role string, userID int64) (string, error) {
	claims := jwt.MapClaims{
		"username": username,
		"role":     role,
		"userId":   userID,
		"jti":      uuid.NewString(),
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := []byte(os.Getenv("JWT_SECRET"))
	return token.SignedString(secret)
}

func VerifyJWT(c *gin.Context) (jwt.MapClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("missing or invalid Authorization header")
	}

	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	secret := []byte(os.Getenv("JWT_SECRET"))

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("could not parse JWT claims")
	}

	return claims, nil
}

// UserIDFromClaims extracts the numeric userId claim. JSON numbers decode
// as float64.
func UserIDFromClaims(claims jwt.MapClaims) (int64, error) {
	raw, ok := claims["userId"].(float64)
	if !ok {
		return 0, errors.New("userId claim not found or not numeric")
	}
	return int64(raw), nil
}
