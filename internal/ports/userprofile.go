// Package ports holds the narrow interfaces the core scheduling/exchange
// components depend on but never implement themselves — read-only access
// to user profiles, and the event bus publisher contract. Keeping these
// as a separate package avoids import cycles between internal/recompute,
// internal/scheduler, internal/exchange and their concrete adapters.
package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/hangawi/coordination-core/internal/models"
)

// UserProfileProvider is the read-only port to user profiles. The core
// never writes through it (spec.md §3: "The core never writes profiles").
type UserProfileProvider interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error)
}

// EventPublisher is the C10 Event Bus's publish side, as consumed by
// every component that mutates a room.
type EventPublisher interface {
	Publish(topic string, payload any)
}
