package travel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/hangawi/coordination-core/internal/models"
)

// HTTPDoer fetches a path from the map provider and returns the response
// body; DefaultHTTPDoer implements it over *http.Client, and any other
// implementation can stand in for a real routing API.
type HTTPDoer interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// DefaultHTTPDoer is the production HTTPDoer, a thin wrapper around
// *http.Client pointed at the map provider's base URL.
type DefaultHTTPDoer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Get implements HTTPDoer.
func (d *DefaultHTTPDoer) Get(ctx context.Context, url string) ([]byte, error) {
	client := d.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("travel: map provider returned status %d: %s", resp.StatusCode, string(data))
	}
	return data, nil
}

// AdapterConfig configures a MapProviderAdapter.
type AdapterConfig struct {
	// CacheTTL is how long a memoized (from,to,mode) result is kept.
	CacheTTL time.Duration
	// BreakerName identifies this adapter's circuit breaker in logs/metrics.
	BreakerName string
	// MaxRequests allowed through in the half-open state.
	MaxRequests uint32
	// Interval is the closed-state reset window.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// FailureThreshold is consecutive failures before tripping open.
	FailureThreshold uint32
	// OnMissingCoords governs Open Question Q1's policy.
	OnMissingCoords OnMissingCoordsPolicy
}

// DefaultAdapterConfig mirrors the breaker defaults from the enrichment
// source (felixgeelhaar/orbita's engine executor).
func DefaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		CacheTTL:         6 * time.Hour,
		BreakerName:      "map-provider",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          20 * time.Second,
		FailureThreshold: 5,
		OnMissingCoords:  OnMissingCoordsReject,
	}
}

// MapProviderAdapter calls an external routing API for travel minutes,
// behind a circuit breaker, with a Redis-backed memoization cache and an
// in-process fallback cache for when Redis itself is unreachable. On
// provider error, timeout, or an open breaker it falls back to Haversine
// silently (spec.md §7 ExternalUnavailable: "recovered locally").
type MapProviderAdapter struct {
	doer     HTTPDoer
	redis    *redis.Client
	fallback *HaversineFallback
	breaker  *gobreaker.CircuitBreaker[int]
	cfg      AdapterConfig
	logger   *slog.Logger

	localMu    sync.RWMutex
	localCache map[string]cacheEntry
}

type cacheEntry struct {
	minutes int
	at      time.Time
}

// NewMapProviderAdapter builds an adapter. redisClient may be nil, in
// which case only the in-process cache is used.
func NewMapProviderAdapter(doer HTTPDoer, redisClient *redis.Client, cfg AdapterConfig, logger *slog.Logger) *MapProviderAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	a := &MapProviderAdapter{
		doer:       doer,
		redis:      redisClient,
		fallback:   NewHaversineFallback(cfg.OnMissingCoords),
		cfg:        cfg,
		logger:     logger,
		localCache: make(map[string]cacheEntry),
	}

	settings := gobreaker.Settings{
		Name:        cfg.BreakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("map provider circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
	a.breaker = gobreaker.NewCircuitBreaker[int](settings)
	return a
}

// cacheKey matches spec.md §4.4: (roundCoords(from,4), roundCoords(to,4), mode).
func cacheKey(from, to models.Coordinates, mode models.TravelMode) string {
	round := func(f float64) float64 { return math.Round(f*1e4) / 1e4 }
	return fmt.Sprintf("travel:%.4f,%.4f:%.4f,%.4f:%s",
		round(from.Lat), round(from.Lng), round(to.Lat), round(to.Lng), mode)
}

// TravelMinutes implements Calculator.
func (a *MapProviderAdapter) TravelMinutes(ctx context.Context, from, to models.Coordinates, mode models.TravelMode) (int, error) {
	if from == to {
		return 0, nil
	}
	key := cacheKey(from, to, mode)

	if minutes, ok := a.readCache(ctx, key); ok {
		return minutes, nil
	}

	minutes, err := a.breaker.Execute(func() (int, error) {
		return a.callProvider(ctx, from, to, mode)
	})
	if err != nil {
		a.logger.Warn("map provider unavailable, falling back to haversine",
			"error", err, "mode", mode)
		minutes, fbErr := a.fallback.TravelMinutes(ctx, from, to, mode)
		if fbErr != nil {
			return 0, fbErr
		}
		return minutes, nil
	}

	a.writeCache(ctx, key, minutes)
	return minutes, nil
}

func (a *MapProviderAdapter) callProvider(ctx context.Context, from, to models.Coordinates, mode models.TravelMode) (int, error) {
	if a.doer == nil {
		return 0, errors.New("travel: no map-provider client configured")
	}
	url := fmt.Sprintf("/route?from=%f,%f&to=%f,%f&mode=%s", from.Lat, from.Lng, to.Lat, to.Lng, mode)
	body, err := a.doer.Get(ctx, url)
	if err != nil {
		return 0, err
	}
	var resp struct {
		DurationMinutes float64 `json:"durationMinutes"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, err
	}
	return roundUpTo10(resp.DurationMinutes), nil
}

func (a *MapProviderAdapter) readCache(ctx context.Context, key string) (int, bool) {
	if a.redis != nil {
		val, err := a.redis.Get(ctx, key).Int()
		if err == nil {
			return val, true
		}
		if err != redis.Nil {
			a.logger.Warn("redis travel-cache read failed, trying local cache", "error", err)
		}
	}

	a.localMu.RLock()
	defer a.localMu.RUnlock()
	entry, ok := a.localCache[key]
	if !ok || time.Since(entry.at) > a.cfg.CacheTTL {
		return 0, false
	}
	return entry.minutes, true
}

func (a *MapProviderAdapter) writeCache(ctx context.Context, key string, minutes int) {
	if a.redis != nil {
		if err := a.redis.Set(ctx, key, minutes, a.cfg.CacheTTL).Err(); err != nil {
			a.logger.Warn("redis travel-cache write failed", "error", err)
		}
	}

	a.localMu.Lock()
	a.localCache[key] = cacheEntry{minutes: minutes, at: time.Now()}
	a.localMu.Unlock()
}
