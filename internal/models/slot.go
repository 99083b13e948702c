// internal/models/slot.go
package models

import "github.com/google/uuid"

// SlotStatus mirrors the teacher's ReservationStatus enum style.
type SlotStatus string

const (
	SlotProposed  SlotStatus = "proposed"
	SlotConfirmed SlotStatus = "confirmed"
)

// Subject labels mirror the source system's literal strings; spec.md §9
// notes wording is not load-bearing for correctness, only for display.
const (
	SubjectAutoAssigned = "자동 배정"
	SubjectTravelTime   = "이동시간"
	SubjectExchangeResult = "교환 결과"
)

// TravelInfo is the descriptive payload attached to a travel slot, or to
// the class slot it serves, naming the leg it represents.
type TravelInfo struct {
	FromLabel    string     `json:"fromLabel"`
	ToLabel      string     `json:"toLabel"`
	DurationText string     `json:"durationText"`
	DistanceText string     `json:"distanceText,omitempty"`
	Mode         TravelMode `json:"mode"`
}

// Slot is a single scheduled interval in a room on a given date, owned by
// one member. A slot with IsTravel=true represents the travel leg the
// Travel Recomputer inserts ahead of a class slot rather than a class
// itself; it is derived, never hand-edited.
type Slot struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"userId"`
	Date       string      `json:"date"` // "YYYY-MM-DD"
	StartMin   int         `json:"startMin"`
	EndMin     int         `json:"endMin"`
	Weekday    Weekday     `json:"weekday"`
	Subject    string      `json:"subject"`
	Status     SlotStatus  `json:"status"`
	IsTravel   bool        `json:"isTravel"`
	Priority   *int        `json:"priority,omitempty"`
	Color      string      `json:"color,omitempty"`
	TravelInfo *TravelInfo `json:"travelInfo,omitempty"`
}

// Overlaps reports whether two same-date slots' minute ranges intersect.
func (s Slot) Overlaps(other Slot) bool {
	if s.Date != other.Date {
		return false
	}
	return s.StartMin < other.EndMin && other.StartMin < s.EndMin
}

// Duration returns the slot's length in minutes.
func (s Slot) Duration() int {
	return s.EndMin - s.StartMin
}
