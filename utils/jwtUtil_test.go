package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithAuth(header string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return c
}

func TestVerifyJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("pera", "tourist", 42)
	require.NoError(t, err)

	claims, err := VerifyJWT(contextWithAuth("Bearer " + token))
	require.NoError(t, err)

	userID, err := UserIDFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
	assert.Equal(t, "pera", claims["username"])
}

func TestVerifyJWTMissingHeader(t *testing.T) {
	_, err := VerifyJWT(contextWithAuth(""))
	assert.Error(t, err)
}

func TestVerifyJWTWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateJWT("pera", "tourist", 42)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "another-secret")
	_, err = VerifyJWT(contextWithAuth("Bearer " + token))
	assert.Error(t, err)
}
