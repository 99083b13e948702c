package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hangawi/coordination-core/internal/models"
)

// userProfileRow is the GORM row shape backing the `users` table; the
// three calendars are embedded JSONB arrays in the same style as
// RoomRepository's columns. The core only ever reads this table — see
// models.UserProfile's doc comment.
type userProfileRow struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DisplayName        string         `gorm:"column:display_name"`
	Address            string         `gorm:"column:address"`
	Lat                float64        `gorm:"column:lat"`
	Lng                float64        `gorm:"column:lng"`
	DefaultSchedule    datatypes.JSON `gorm:"column:default_schedule;type:jsonb"`
	ScheduleExceptions datatypes.JSON `gorm:"column:schedule_exceptions;type:jsonb"`
	PersonalTimes      datatypes.JSON `gorm:"column:personal_times;type:jsonb"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName pins this row to the teacher's existing `users` table.
func (userProfileRow) TableName() string {
	return "users"
}

// UserProfileRepository implements ports.UserProfileProvider, the
// read-only adapter to the external user-profile store (spec.md §1: auth
// and profile storage are out of scope; this is the read seam the core
// consumes through).
type UserProfileRepository struct {
	db *gorm.DB
}

// NewUserProfileRepository builds a UserProfileRepository.
func NewUserProfileRepository(db *gorm.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

// GetProfile implements ports.UserProfileProvider.
func (r *UserProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error) {
	var row userProfileRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", userID).Error; err != nil {
		return models.UserProfile{}, fmt.Errorf("repositories: load user profile %s: %w", userID, err)
	}

	profile := models.UserProfile{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		Address:     row.Address,
		Coordinates: models.Coordinates{Lat: row.Lat, Lng: row.Lng},
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.DefaultSchedule) > 0 {
		if err := json.Unmarshal(row.DefaultSchedule, &profile.DefaultSchedule); err != nil {
			return models.UserProfile{}, fmt.Errorf("repositories: decode default schedule: %w", err)
		}
	}
	if len(row.ScheduleExceptions) > 0 {
		if err := json.Unmarshal(row.ScheduleExceptions, &profile.ScheduleExceptions); err != nil {
			return models.UserProfile{}, fmt.Errorf("repositories: decode schedule exceptions: %w", err)
		}
	}
	if len(row.PersonalTimes) > 0 {
		if err := json.Unmarshal(row.PersonalTimes, &profile.PersonalTimes); err != nil {
			return models.UserProfile{}, fmt.Errorf("repositories: decode personal times: %w", err)
		}
	}
	return profile, nil
}
