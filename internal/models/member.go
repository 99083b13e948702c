// internal/models/member.go
package models

import "github.com/google/uuid"

// Member is a participant in a coordination room.
type Member struct {
	UserID         uuid.UUID `json:"userId"`
	Color          string    `json:"color"`
	CarryOverCount int       `json:"carryOverCount"`
	CompletedCount int       `json:"completedCount"`
	JoinedAt        string   `json:"joinedAt"` // RFC3339; stored as string to stay embeddable
}
