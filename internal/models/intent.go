// internal/models/intent.go
package models

import "github.com/google/uuid"

// IntentKind is the discriminator for ParsedIntent, one of the four
// variants spec.md §3 describes as the output of free-form chat parsing
// (itself out of scope; the core only ever sees the parsed result).
type IntentKind string

const (
	IntentTimeChange IntentKind = "time_change"
	IntentDateChange IntentKind = "date_change"
	IntentConfirm    IntentKind = "confirm"
	IntentReject     IntentKind = "reject"
)

// ParsedIntent is the structured instruction the Exchange Planner (C8)
// consumes. Only the fields relevant to Kind are populated by the caller;
// the planner validates presence per-kind rather than trusting the zero
// value of an unused field.
type ParsedIntent struct {
	Kind IntentKind `json:"kind"`

	RequesterID uuid.UUID `json:"requesterId"`

	// time_change
	SourceWeekOffset *int     `json:"sourceWeekOffset,omitempty"`
	SourceDay        *Weekday `json:"sourceDay,omitempty"`
	TargetDay        *Weekday `json:"targetDay,omitempty"`
	TargetTime       *string  `json:"targetTime,omitempty"` // "HH:MM"
	WeekOffset       *int     `json:"weekOffset,omitempty"`
	WeekNumber       *int     `json:"weekNumber,omitempty"`
	Month            *int     `json:"month,omitempty"`

	// date_change
	SourceMonth *int    `json:"sourceMonth,omitempty"`
	SourceDate  *int    `json:"sourceDate,omitempty"`
	SourceYear  *int    `json:"sourceYear,omitempty"`
	SourceTime  *string `json:"sourceTime,omitempty"`
	TargetMonth *int    `json:"targetMonth,omitempty"`
	TargetDate  *int    `json:"targetDate,omitempty"`
	TargetYear  *int    `json:"targetYear,omitempty"`

	// confirm / reject
	RequestID *uuid.UUID `json:"requestId,omitempty"`
}
