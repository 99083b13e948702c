package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hangawi/coordination-core/internal/config"
	"github.com/hangawi/coordination-core/internal/server/routes"
	"github.com/hangawi/coordination-core/internal/services"
	"github.com/hangawi/coordination-core/internal/websocket"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Server represents the HTTP server with all dependencies
type Server struct {
	router       *gin.Engine
	logger       *slog.Logger
	config       *config.Config
	db           *gorm.DB
	coordination *services.CoordinationService
	wsManager    *websocket.Manager
	httpServer   *http.Server
}

// New creates a new server instance with all dependencies. wsManager may
// be nil, in which case the room websocket bridge is not mounted.
func New(cfg *config.Config, logger *slog.Logger, db *gorm.DB, coordination *services.CoordinationService, wsManager *websocket.Manager) *Server {
	// Configure Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	}

	// Create Gin router
	router := gin.New()

	// Create server instance
	server := &Server{
		config:       cfg,
		logger:       logger,
		db:           db,
		coordination: coordination,
		wsManager:    wsManager,
		router:       router,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	// Setup middleware and routes
	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures global middleware for the server
func (s *Server) setupMiddleware() {
	// Recovery middleware - recovers from panics
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.logger.Error("panic recovered", "error", recovered)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_server_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Structured request logger
	s.router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		if raw != "" {
			path = path + "?" + raw
		}

		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			s.logger.Error("http request",
				"method", c.Request.Method, "path", path, "status", statusCode,
				"latency", latency, "ip", c.ClientIP(),
			)
		case statusCode >= 400:
			s.logger.Warn("http request",
				"method", c.Request.Method, "path", path, "status", statusCode,
				"latency", latency, "ip", c.ClientIP(),
			)
		default:
			if s.config.Environment != "production" || (path != "/health" && path != "/") {
				s.logger.Info("http request",
					"method", c.Request.Method, "path", path, "status", statusCode,
					"latency", latency, "ip", c.ClientIP(),
				)
			}
		}
	})

	// Security headers
	s.router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("X-API-Version", "1.0.0")
		c.Header("X-Service", "coordination-core")
		c.Next()
	})

	s.logger.Info("middleware configured")
}

// setupRoutes initializes all application routes
func (s *Server) setupRoutes() {
	routes.Setup(s.router, s.config, s.coordination, s.wsManager)

	s.router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "coordination-core",
			"version":     "1.0.0",
			"environment": s.config.Environment,
			"description": "Weekly study-room scheduling and exchange engine",
			"status":      "operational",
			"endpoints": gin.H{
				"health": "GET /health",
				"rooms": gin.H{
					"create":           "POST /api/coordination/rooms",
					"get":              "GET /api/coordination/rooms/:id",
					"runSchedule":      "POST /api/coordination/rooms/:id/run-schedule",
					"confirmSchedule":  "POST /api/coordination/rooms/:id/confirm-schedule",
					"parseExchange":    "POST /api/coordination/rooms/:id/parse-exchange-request",
					"smartExchange":    "POST /api/coordination/rooms/:id/smart-exchange",
				},
				"requests": gin.H{
					"approve": "POST /api/coordination/requests/:id/approve",
					"reject":  "POST /api/coordination/requests/:id/reject",
					"cancel":  "DELETE /api/coordination/requests/:id",
				},
			},
		})
	})

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.HealthCheck())
	})

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "endpoint_not_found",
			"message": "The requested endpoint does not exist",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	s.logger.Info("routes configured")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting http server",
		"address", s.httpServer.Addr,
		"environment", s.config.Environment,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("failed to start server", "error", err)
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("server shutdown error", "error", err)
		return err
	}

	s.logger.Info("http server shutdown complete")
	return nil
}

// GetHTTPServer returns the underlying http.Server for graceful shutdown
func (s *Server) GetHTTPServer() *http.Server {
	return s.httpServer
}

// GetDB returns the database connection (useful for testing)
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// GetRouter returns the Gin router (useful for testing)
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// GetConfig returns the server configuration
func (s *Server) GetConfig() *config.Config {
	return s.config
}

// HealthCheck reports db and server status for monitoring
func (s *Server) HealthCheck() map[string]interface{} {
	sqlDB, err := s.db.DB()
	dbStatus := "healthy"
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "unhealthy"
	}

	return map[string]interface{}{
		"service":     "coordination-core",
		"status":      "healthy",
		"environment": s.config.Environment,
		"timestamp":   time.Now().UTC(),
		"version":     "1.0.0",
		"components": map[string]interface{}{
			"database": dbStatus,
			"server":   "healthy",
		},
	}
}
