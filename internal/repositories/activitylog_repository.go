package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hangawi/coordination-core/internal/models"
)

// ActivityLogRepository is the append-only log store backing C8/C9's
// user-visible-outcome trail (spec.md §6.3/§7).
type ActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository builds an ActivityLogRepository.
func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Append implements ports.ActivityLogAppender.
func (r *ActivityLogRepository) Append(ctx context.Context, entry models.ActivityLogEntry) error {
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("repositories: append activity log: %w", err)
	}
	return nil
}

// ListByRoom returns a room's activity log, most recent first.
func (r *ActivityLogRepository) ListByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]models.ActivityLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []models.ActivityLogEntry
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("repositories: list activity log for room %s: %w", roomID, err)
	}
	return entries, nil
}
