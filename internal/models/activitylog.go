// internal/models/activitylog.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLogEntry is an append-only record of a user-visible outcome in a
// room (a confirmed exchange, a rejected request, an auto-placed slot).
// spec.md §6.3/§7 name the log but leave its shape unspecified; this is
// the SPEC_FULL supplement filling that gap.
type ActivityLogEntry struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID uuid.UUID `gorm:"type:uuid;index;not null" json:"roomId"`
	Actor  uuid.UUID `gorm:"type:uuid;not null" json:"actor"`
	Action string    `gorm:"not null" json:"action"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `gorm:"not null" json:"at"`
}

// TableName matches the teacher's explicit-TableName convention.
func (ActivityLogEntry) TableName() string {
	return "activity_log_entries"
}

// BeforeCreate assigns a UUID when one wasn't set.
func (e *ActivityLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
