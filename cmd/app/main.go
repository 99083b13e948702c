package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hangawi/coordination-core/internal/config"
	"github.com/hangawi/coordination-core/internal/database"
	"github.com/hangawi/coordination-core/internal/eventbus"
	"github.com/hangawi/coordination-core/internal/nlparser"
	"github.com/hangawi/coordination-core/internal/ports"
	"github.com/hangawi/coordination-core/internal/repositories"
	"github.com/hangawi/coordination-core/internal/server"
	"github.com/hangawi/coordination-core/internal/services"
	"github.com/hangawi/coordination-core/internal/travel"
	"github.com/hangawi/coordination-core/internal/websocket"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// Give the server 10 seconds to finish current requests
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown with error: %v", err)
	}

	log.Println("server shutdown complete")
	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Set as default logger
	slog.SetDefault(logger)

	logger.Info("starting coordination-core")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"environment", cfg.Environment,
		"port", cfg.Port,
	)

	// Initialize database connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	logger.Info("database connected successfully")

	// Redis backs the travel-time memoization cache (internal/travel); it
	// is optional, the adapter falls back to an in-process cache.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn("invalid REDIS_URL, travel cache will be in-process only", "error", err)
		} else {
			redisClient = redis.NewClient(opt)
			if err := redisClient.Ping(context.Background()).Err(); err != nil {
				logger.Warn("redis not reachable, travel cache will be in-process only", "error", err)
				redisClient = nil
			} else {
				logger.Info("connected to redis")
			}
		}
	}

	roomRepo := repositories.NewRoomRepository(db)
	profileRepo := repositories.NewUserProfileRepository(db)
	activityRepo := repositories.NewActivityLogRepository(db)

	var calculator travel.Calculator
	if cfg.MapProviderURL != "" {
		doer := &travel.DefaultHTTPDoer{
			BaseURL:    cfg.MapProviderURL,
			HTTPClient: &http.Client{Timeout: cfg.MapProviderTimeout},
		}
		adapterCfg := travel.DefaultAdapterConfig()
		adapterCfg.CacheTTL = cfg.TravelCacheTTL
		calculator = travel.NewMapProviderAdapter(doer, redisClient, adapterCfg, logger)
		logger.Info("travel calculator using external map provider", "url", cfg.MapProviderURL)
	} else {
		calculator = travel.NewHaversineFallback(travel.OnMissingCoordsReject)
		logger.Info("travel calculator using haversine fallback, no MAP_PROVIDER_URL configured")
	}

	var parser ports.IntentParser
	if cfg.NLParserURL != "" {
		parser = nlparser.New(&nlparser.DefaultHTTPPoster{}, cfg.NLParserURL, 5*time.Second)
		logger.Info("nl parser configured", "url", cfg.NLParserURL)
	} else {
		logger.Info("no NL_PARSER_URL configured, /parse-exchange-request will be unavailable")
	}

	bus := eventbus.New(logger)
	coordination := services.New(roomRepo, profileRepo, activityRepo, bus, calculator, parser)

	wsHub := websocket.NewHub(bus, coordination, logger)
	go wsHub.Run()
	wsManager := websocket.NewManager(wsHub, cfg.JWTSecret, logger)

	// Initialize server with all dependencies
	serverInstance := server.New(cfg, logger, db, coordination, wsManager)

	logger.Info("server initialized successfully")
	logger.Info("key endpoints",
		"docs", "GET /",
		"createRoom", "POST /api/coordination/rooms",
		"runSchedule", "POST /api/coordination/rooms/:id/run-schedule",
		"smartExchange", "POST /api/coordination/rooms/:id/smart-exchange",
		"health", "GET /health",
	)

	logger.Info("coordination-core ready",
		"url", "http://localhost:"+cfg.Port,
		"environment", cfg.Environment,
	)

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(serverInstance.GetHTTPServer(), done)

	// Start the server
	if err := serverInstance.Start(); err != nil && err != http.ErrServerClosed {
		logger.Error("server startup error", "error", err)

		// Attempt to close database connection before exit
		if dbErr := database.CloseConnection(db); dbErr != nil {
			logger.Error("failed to close database connection", "error", dbErr)
		}

		os.Exit(1)
	}

	// Wait for the graceful shutdown to complete
	<-done

	// Clean up resources
	if err := database.CloseConnection(db); err != nil {
		logger.Error("failed to close database connection", "error", err)
	} else {
		logger.Info("database connection closed")
	}

	logger.Info("coordination-core shutdown complete")
}
