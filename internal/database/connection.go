package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hangawi/coordination-core/internal/models"
)

// Connect establishes a connection to the database
func Connect(databaseURL string) (*gorm.DB, error) {
	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Info)

	// Open database connection
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL database to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Auto-migrate models
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.Info("Database connected and migrated successfully")
	return db, nil
}

// autoMigrate runs automatic migrations for the coordination-room schema.
// models.Room is the aggregate root; models.ActivityLogEntry is the
// append-only log keyed by room id. The `users` table backing
// UserProfileRepository belongs to the external auth/profile service and
// is never migrated here (spec.md §1: "authentication and user-profile
// storage" are out of scope).
func autoMigrate(db *gorm.DB) error {
	targets := []interface{}{
		&models.Room{},
		&models.ActivityLogEntry{},
	}

	for _, model := range targets {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates additional database indexes for better performance
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_coordination_rooms_owner ON coordination_rooms(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_coordination_rooms_confirmation_state ON coordination_rooms(confirmation_state)",
		"CREATE INDEX IF NOT EXISTS idx_activity_log_entries_room ON activity_log_entries(room_id)",
		"CREATE INDEX IF NOT EXISTS idx_activity_log_entries_at ON activity_log_entries(at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			slog.Warn("Failed to create index", "query", index, "error", err)
		}
	}

	return nil
}

// CloseConnection closes the database connection
func CloseConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying database: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	slog.Info("Database connection closed")
	return nil
}
