package dto

import (
	"errors"
	"fmt"
	"net/http"
)

// Coordination-domain error kinds, exactly as spec.md §7 enumerates them.
// These are typed so handlers can switch on kind via errors.As rather
// than string-matching messages (spec.md §9: "messages ... not load-
// bearing for correctness; only the reason codes ... are contractual").

// ErrNotAuthorized is returned when a non-member attempts a room operation.
type ErrNotAuthorized struct {
	Message string
}

func (e *ErrNotAuthorized) Error() string { return e.Message }

// ErrNotFound is returned for an unknown room or request id.
type ErrNotFound struct {
	Resource string
	Message  string
}

func (e *ErrNotFound) Error() string { return e.Message }

// ErrInvalidIntent is returned when a parsed intent is missing required
// fields, has a malformed time, or names an unknown weekday.
type ErrInvalidIntent struct {
	Message string
}

func (e *ErrInvalidIntent) Error() string { return e.Message }

// PreferenceViolationRule names which of V1-V6 (spec.md §4.8.1) failed.
type PreferenceViolationRule string

const (
	RuleV1TargetWeekday       PreferenceViolationRule = "V1_target_weekday"
	RuleV2SourceBlockEmpty    PreferenceViolationRule = "V2_source_block_empty"
	RuleV3OwnerWindow         PreferenceViolationRule = "V3_owner_window"
	RuleV4RequesterWindow     PreferenceViolationRule = "V4_requester_window"
	RuleV5CommonWindow        PreferenceViolationRule = "V5_common_window"
	RuleV6BlockedInterval     PreferenceViolationRule = "V6_blocked_interval"
)

// ErrPreferenceViolation is returned when one of V1-V6 fails.
type ErrPreferenceViolation struct {
	Rule            PreferenceViolationRule
	Message         string
	PermissibleText string // human text naming permissible windows, when applicable
}

func (e *ErrPreferenceViolation) Error() string { return e.Message }

// TravelInfeasibleReason is the machine-readable reason code spec.md §7
// names for a rejected travel-mode pre-flight.
type TravelInfeasibleReason string

const (
	ReasonTravelOwnerPreferenceConflict TravelInfeasibleReason = "travel_time_owner_preference_conflict"
	ReasonTravelPreferenceConflict      TravelInfeasibleReason = "travel_time_preference_conflict"
	ReasonTravelConflict                TravelInfeasibleReason = "travel_time_conflict"
)

// ErrTravelInfeasible is returned when the travel-mode pre-flight
// simulation (spec.md §4.8.2) rejects a move.
type ErrTravelInfeasible struct {
	Reason            TravelInfeasibleReason
	Message           string
	SuggestedStartMin *int
}

func (e *ErrTravelInfeasible) Error() string { return e.Message }

// ErrConflict signals a slot already owned by another user where
// targetTime was specified — callers should escalate to Case C rather
// than treat this as a hard failure (it is not itself an HTTP error).
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string { return e.Message }

// ErrStaleRequest is returned when an approval's optimistic check fails
// because the requester's or target's slots changed since the request
// was created (spec.md §4.9 concurrency clause, B3, S6).
type ErrStaleRequest struct {
	Message string
}

func (e *ErrStaleRequest) Error() string { return e.Message }

// ErrExternalUnavailable marks a map-provider timeout. Per spec.md §7 this
// is recovered locally by the travel calculator and should not normally
// propagate to the HTTP layer; it is defined here for completeness, and
// no component currently returns it.
var ErrExternalUnavailable = errors.New("external map provider unavailable")

// StatusFor maps a coordination-domain error to its HTTP status per
// spec.md §6.2/§7. Unrecognized errors map to 500.
func StatusFor(err error) int {
	switch {
	case asNotAuthorized(err):
		return http.StatusForbidden
	case asNotFound(err):
		return http.StatusNotFound
	case asInvalidIntent(err), asPreferenceViolation(err), asTravelInfeasible(err):
		return http.StatusBadRequest
	case asStaleRequest(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func asNotAuthorized(err error) bool {
	var target *ErrNotAuthorized
	return errors.As(err, &target)
}

func asNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}

func asInvalidIntent(err error) bool {
	var target *ErrInvalidIntent
	return errors.As(err, &target)
}

func asPreferenceViolation(err error) bool {
	var target *ErrPreferenceViolation
	return errors.As(err, &target)
}

func asTravelInfeasible(err error) bool {
	var target *ErrTravelInfeasible
	return errors.As(err, &target)
}

func asStaleRequest(err error) bool {
	var target *ErrStaleRequest
	return errors.As(err, &target)
}

// Reason returns the machine-readable reason code for an error, if it
// carries one, for the envelope's `reason` field (spec.md §6.2).
func Reason(err error) string {
	var pv *ErrPreferenceViolation
	if errors.As(err, &pv) {
		return string(pv.Rule)
	}
	var ti *ErrTravelInfeasible
	if errors.As(err, &ti) {
		return string(ti.Reason)
	}
	var sr *ErrStaleRequest
	if errors.As(err, &sr) {
		return "stale_request"
	}
	return ""
}

// NewInvalidIntent builds an ErrInvalidIntent with a formatted message.
func NewInvalidIntent(format string, args ...any) *ErrInvalidIntent {
	return &ErrInvalidIntent{Message: fmt.Sprintf(format, args...)}
}
