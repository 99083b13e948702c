// internal/models/request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RequestType is the exchange flavor a Request represents (spec.md §3).
type RequestType string

const (
	RequestTimeChange  RequestType = "time_change"
	RequestSlotSwap    RequestType = "slot_swap"
	RequestSlotRelease RequestType = "slot_release"
)

// RequestStatus is the Request State Machine's lifecycle (C9).
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)

// SlotSnapshot is a by-value copy of a slot's fields taken at request
// creation time, per spec.md §9's Design Note: a Request must reference
// slots by value, never by id, so deleting the original slot elsewhere in
// the room can't silently invalidate a pending request.
type SlotSnapshot struct {
	SlotID   uuid.UUID `json:"slotId"`
	UserID   uuid.UUID `json:"userId"`
	Date     string    `json:"date"`
	StartMin int       `json:"startMin"`
	EndMin   int        `json:"endMin"`
	Subject  string     `json:"subject"`
}

// TargetSlotDescriptor names the date/time/subject the requester is
// asking to move into; it is not necessarily an existing slot.
type TargetSlotDescriptor struct {
	Date     string `json:"date"`
	StartMin int    `json:"startMin"`
	EndMin   int    `json:"endMin"`
	Subject  string `json:"subject,omitempty"`
}

// Request is a pending or resolved exchange proposal.
type Request struct {
	ID           uuid.UUID            `json:"id"`
	Type         RequestType          `json:"type"`
	Status       RequestStatus        `json:"status"`
	RequesterID  uuid.UUID            `json:"requesterId"`
	TargetUserID *uuid.UUID           `json:"targetUserId,omitempty"` // null for slot_release
	SourceSlots  []SlotSnapshot       `json:"sourceSlots"`
	TargetSlot   TargetSlotDescriptor `json:"targetSlot"`
	// TargetOccupantSlots snapshots the slot(s) occupying TargetSlot's
	// window, owned by TargetUserID, at request-creation time: isStale
	// uses it to detect the target user moving them before approving
	// (spec.md B3/S6).
	TargetOccupantSlots []SlotSnapshot `json:"targetOccupantSlots,omitempty"`
	Message             string         `json:"message,omitempty"`
	CreatedAt           time.Time      `json:"createdAt"`
	ResolvedAt          *time.Time     `json:"resolvedAt,omitempty"`
	ResolutionNote      string         `json:"resolutionNote,omitempty"`
}
