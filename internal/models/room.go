// internal/models/room.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TravelMode is the mode assumed for travel-time legs around a room's slots.
type TravelMode string

const (
	TravelModeNone      TravelMode = "none"
	TravelModeWalking   TravelMode = "walking"
	TravelModeBicycling TravelMode = "bicycling"
	TravelModeDriving   TravelMode = "driving"
	TravelModeTransit   TravelMode = "transit"
)

// ConfirmationState is the room's lifecycle state (spec.md §3 "Lifecycle").
type ConfirmationState string

const (
	ConfirmationDraft     ConfirmationState = "draft"
	ConfirmationConfirmed ConfirmationState = "confirmed"
)

// EffectiveTravelMode resolves the Open-Question-3 policy: confirmed mode
// wins when the room is confirmed, else the current (draft) mode, else
// none. Every caller of internal/recompute resolves the mode through this
// method and passes it in.
func (r RoomDocument) EffectiveTravelMode() TravelMode {
	if r.ConfirmationState == ConfirmationConfirmed && r.ConfirmedTravelMode != "" {
		return r.ConfirmedTravelMode
	}
	if r.CurrentTravelMode != "" {
		return r.CurrentTravelMode
	}
	return TravelModeNone
}

// BlockedTime is a recurring or date-specific interval during which no slot
// may be scheduled in the room, regardless of any member's preferences.
type BlockedTime struct {
	DayOfWeek    *Weekday `json:"dayOfWeek,omitempty"`
	SpecificDate string   `json:"specificDate,omitempty"`
	StartTime    string   `json:"startTime"`
	EndTime      string   `json:"endTime"`
	Label        string   `json:"label,omitempty"`
}

// RoomException is a date-specific or recurring override to the room's
// weekday hours, e.g. a holiday closure or a recurring off day. A
// date-specific exception spans [SpecificDate,EndDate] inclusive
// (spec.md §4.3 C3); EndDate empty means a single day.
type RoomException struct {
	SpecificDate string   `json:"specificDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	DayOfWeek    *Weekday `json:"dayOfWeek,omitempty"`
	Recurring    bool     `json:"recurring"`
	Closed       bool     `json:"closed"`
	StartTime    string   `json:"startTime,omitempty"`
	EndTime      string   `json:"endTime,omitempty"`
	Label        string   `json:"label,omitempty"`
}

// RoomSettings holds the room-wide configuration embedded on Room.
type RoomSettings struct {
	WeekdayStartHour int             `json:"weekdayStartHour"`
	WeekdayEndHour   int             `json:"weekdayEndHour"`
	BlockedTimes     []BlockedTime   `json:"blockedTimes"`
	RoomExceptions   []RoomException `json:"roomExceptions"`
}

// Room is the aggregate root: one row per coordination room, persisted as
// a single JSONB document the way the teacher embeds Space.Equipment and
// Reservation.RecurrencePattern as datatypes.JSON columns.
type Room struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID             uuid.UUID         `gorm:"type:uuid;index;not null" json:"ownerId"`
	Name                string            `gorm:"not null" json:"name"`
	CurrentTravelMode   TravelMode        `gorm:"not null;default:none" json:"currentTravelMode"`
	ConfirmedTravelMode TravelMode        `gorm:"not null;default:none" json:"confirmedTravelMode"`
	ConfirmationState   ConfirmationState `gorm:"not null;default:draft" json:"confirmationState"`
	ConfirmedAt         *time.Time        `json:"confirmedAt,omitempty"`
	Members             datatypes.JSON    `gorm:"type:jsonb;not null;default:'[]'" json:"-"`
	Settings            datatypes.JSON    `gorm:"type:jsonb;not null;default:'{}'" json:"-"`
	Slots               datatypes.JSON    `gorm:"type:jsonb;not null;default:'[]'" json:"-"`
	TravelSlots         datatypes.JSON    `gorm:"type:jsonb;not null;default:'[]'" json:"-"`
	Requests            datatypes.JSON    `gorm:"type:jsonb;not null;default:'[]'" json:"-"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// TableName pins the GORM table name the way the teacher's models do
// (see Reservation.TableName, Space.TableName).
func (Room) TableName() string {
	return "coordination_rooms"
}

// BeforeCreate assigns a UUID when one wasn't set, mirroring the
// teacher's Reservation/Space BeforeCreate hooks.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoomDocument is the fully-decoded, in-memory shape of a Room used by the
// engine packages; the repository marshals/unmarshals the JSONB columns
// into and out of this shape on load/save.
type RoomDocument struct {
	ID                  uuid.UUID
	OwnerID             uuid.UUID
	Name                string
	CurrentTravelMode   TravelMode
	ConfirmedTravelMode TravelMode
	ConfirmationState   ConfirmationState
	ConfirmedAt         *time.Time
	Members             []Member
	Settings            RoomSettings
	Slots               []Slot
	TravelSlots         []Slot
	Requests            []Request
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
