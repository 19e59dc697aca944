package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"soa/tours-service/services"
)

func TestDistanceMetersZeroForSamePoint(t *testing.T) {
	assert.Equal(t, float64(0), services.DistanceMeters(44.8176, 20.4569, 44.8176, 20.4569))
}

func TestDistanceMetersIsSymmetric(t *testing.T) {
	d1 := services.DistanceMeters(44.8176, 20.4569, 45.2671, 19.8335)
	d2 := services.DistanceMeters(45.2671, 19.8335, 44.8176, 20.4569)
	assert.InDelta(t, d1, d2, 1e-9)
}

func TestDistanceMetersKnownDistance(t *testing.T) {
	// Belgrade to Novi Sad, roughly 69 km great-circle.
	d := services.DistanceMeters(44.8176, 20.4569, 45.2671, 19.8335)
	assert.InDelta(t, 69000, d, 2000)
}

func TestDistanceMetersShortRange(t *testing.T) {
	// 0.0005 degrees of latitude is about 55.7 m.
	d := services.DistanceMeters(44.8176, 20.4569, 44.8181, 20.4569)
	assert.InDelta(t, 55.7, d, 1)
}
