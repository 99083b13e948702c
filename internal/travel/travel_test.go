package travel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hangawi/coordination-core/internal/models"
)

// P4: travelMinutes(x, x, mode) == 0 for any mode, including zero-value
// coordinates (same missing point counts as "the same place").
func TestHaversineFallbackSameCoordsIsZero(t *testing.T) {
	fb := NewHaversineFallback(OnMissingCoordsReject)
	point := models.Coordinates{Lat: 37.5, Lng: 127.0}

	minutes, err := fb.TravelMinutes(context.Background(), point, point, models.TravelModeDriving)
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)

	minutes, err = fb.TravelMinutes(context.Background(), models.Coordinates{}, models.Coordinates{}, models.TravelModeWalking)
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
}

func TestHaversineFallbackMissingCoordsReject(t *testing.T) {
	fb := NewHaversineFallback(OnMissingCoordsReject)
	from := models.Coordinates{}
	to := models.Coordinates{Lat: 37.5, Lng: 127.0}

	_, err := fb.TravelMinutes(context.Background(), from, to, models.TravelModeDriving)
	assert.ErrorIs(t, err, ErrMissingCoordinates)
}

func TestHaversineFallbackMissingCoordsSkip(t *testing.T) {
	fb := NewHaversineFallback(OnMissingCoordsSkip)
	from := models.Coordinates{}
	to := models.Coordinates{Lat: 37.5, Lng: 127.0}

	minutes, err := fb.TravelMinutes(context.Background(), from, to, models.TravelModeDriving)
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
}

func TestHaversineFallbackDefaultsToReject(t *testing.T) {
	fb := NewHaversineFallback("")
	assert.Equal(t, OnMissingCoordsReject, fb.OnMissingCoords)
}

// Seoul City Hall to Gangnam Station, roughly 8.5km apart.
func TestHaversineFallbackModeSpeedAffectsDuration(t *testing.T) {
	fb := NewHaversineFallback(OnMissingCoordsReject)
	seoul := models.Coordinates{Lat: 37.5663, Lng: 126.9779}
	gangnam := models.Coordinates{Lat: 37.4979, Lng: 127.0276}

	driving, err := fb.TravelMinutes(context.Background(), seoul, gangnam, models.TravelModeDriving)
	require.NoError(t, err)
	walking, err := fb.TravelMinutes(context.Background(), seoul, gangnam, models.TravelModeWalking)
	require.NoError(t, err)

	assert.Greater(t, walking, driving)
	assert.Equal(t, 0, driving%10, "results round up to a 10-minute boundary")
	assert.Equal(t, 0, walking%10, "results round up to a 10-minute boundary")
}

func TestHaversineFallbackUnknownModeIsZero(t *testing.T) {
	fb := NewHaversineFallback(OnMissingCoordsReject)
	from := models.Coordinates{Lat: 37.5, Lng: 127.0}
	to := models.Coordinates{Lat: 37.6, Lng: 127.1}

	minutes, err := fb.TravelMinutes(context.Background(), from, to, models.TravelMode("teleport"))
	require.NoError(t, err)
	assert.Equal(t, 0, minutes)
}

func TestRoundUpTo10(t *testing.T) {
	assert.Equal(t, 0, roundUpTo10(0))
	assert.Equal(t, 0, roundUpTo10(-5))
	assert.Equal(t, 10, roundUpTo10(0.5))
	assert.Equal(t, 10, roundUpTo10(10))
	assert.Equal(t, 20, roundUpTo10(10.1))
}
