// Package travel implements the Travel-Time Calculator (C4): a pluggable
// map-provider adapter returning integer minutes for a (from, to, mode)
// triple, with a Haversine fallback and memoized results.
package travel

import (
	"context"
	"log/slog"
	"math"

	"github.com/hangawi/coordination-core/internal/dto"
	"github.com/hangawi/coordination-core/internal/models"
)

// Calculator is the contract every scheduling/recompute component depends
// on. Implementations never return negative minutes and always round up
// to a 10-minute boundary.
type Calculator interface {
	TravelMinutes(ctx context.Context, from, to models.Coordinates, mode models.TravelMode) (int, error)
}

// OnMissingCoordsPolicy resolves Open Question Q1: what happens when one
// endpoint has no usable coordinates (zero-value lat/lng).
type OnMissingCoordsPolicy string

const (
	// OnMissingCoordsReject surfaces dto.ErrTravelInfeasible with reason
	// "missing_coordinates". This is the default per spec.md §9 Q1.
	OnMissingCoordsReject OnMissingCoordsPolicy = "reject"
	// OnMissingCoordsSkip treats the leg as 0 minutes and proceeds.
	OnMissingCoordsSkip OnMissingCoordsPolicy = "skip"
)

// ErrMissingCoordinates is returned by calculators when a coordinate pair
// is the zero value and the configured policy is OnMissingCoordsReject.
var ErrMissingCoordinates error = &dto.ErrTravelInfeasible{
	Reason:  "missing_coordinates",
	Message: "travel: missing coordinates",
}

func isZero(c models.Coordinates) bool {
	return c.Lat == 0 && c.Lng == 0
}

// modeSpeedKmh is the assumed average speed per travel mode (spec.md §4.4).
var modeSpeedKmh = map[models.TravelMode]float64{
	models.TravelModeDriving:   40,
	models.TravelModeTransit:   30,
	models.TravelModeWalking:   5,
	models.TravelModeBicycling: 15,
}

// HaversineFallback computes travel minutes from great-circle distance
// and a mode-specific average speed, rounded up to the next 10-minute
// boundary. It never does network I/O; its only error is
// ErrMissingCoordinates under OnMissingCoordsReject.
type HaversineFallback struct {
	OnMissingCoords OnMissingCoordsPolicy
}

// NewHaversineFallback builds a HaversineFallback with the given missing-
// coordinates policy (defaults to reject when empty).
func NewHaversineFallback(policy OnMissingCoordsPolicy) *HaversineFallback {
	if policy == "" {
		policy = OnMissingCoordsReject
	}
	return &HaversineFallback{OnMissingCoords: policy}
}

// TravelMinutes implements Calculator.
func (h *HaversineFallback) TravelMinutes(_ context.Context, from, to models.Coordinates, mode models.TravelMode) (int, error) {
	if from == to {
		return 0, nil
	}
	if isZero(from) || isZero(to) {
		if h.OnMissingCoords == OnMissingCoordsSkip {
			return 0, nil
		}
		return 0, ErrMissingCoordinates
	}

	km := haversineKm(from, to)
	speed, ok := modeSpeedKmh[mode]
	if !ok || speed <= 0 {
		return 0, nil
	}
	minutes := km / speed * 60
	return roundUpTo10(minutes), nil
}

const earthRadiusKm = 6371.0

func haversineKm(a, b models.Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func roundUpTo10(minutes float64) int {
	if minutes <= 0 {
		return 0
	}
	return int(math.Ceil(minutes/10)) * 10
}

// logMissingCoordsFallback logs a fall-back to haversine together with its
// cause, since ExternalUnavailable is a recovered error per spec.md §7 and
// must not propagate. MapProviderAdapter logs its own fallbacks and does
// not call it.
func logMissingCoordsFallback(logger *slog.Logger, mode models.TravelMode, err error) {
	if logger == nil {
		return
	}
	logger.Warn("travel calculator falling back to haversine", "mode", mode, "error", err)
}
