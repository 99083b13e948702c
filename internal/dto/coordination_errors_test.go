package dto

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForMapsEachErrorKind(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not authorized", &ErrNotAuthorized{Message: "x"}, http.StatusForbidden},
		{"not found", &ErrNotFound{Resource: "room", Message: "x"}, http.StatusNotFound},
		{"invalid intent", NewInvalidIntent("bad: %s", "reason"), http.StatusBadRequest},
		{"preference violation", &ErrPreferenceViolation{Rule: RuleV1TargetWeekday, Message: "x"}, http.StatusBadRequest},
		{"travel infeasible", &ErrTravelInfeasible{Reason: ReasonTravelConflict, Message: "x"}, http.StatusBadRequest},
		{"stale request", &ErrStaleRequest{Message: "x"}, http.StatusConflict},
		{"unrecognized", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StatusFor(tc.err))
		})
	}
}

func TestReasonExtractsMachineReadableCode(t *testing.T) {
	assert.Equal(t, string(RuleV5CommonWindow), Reason(&ErrPreferenceViolation{Rule: RuleV5CommonWindow, Message: "x"}))
	assert.Equal(t, string(ReasonTravelOwnerPreferenceConflict), Reason(&ErrTravelInfeasible{Reason: ReasonTravelOwnerPreferenceConflict, Message: "x"}))
	assert.Equal(t, "stale_request", Reason(&ErrStaleRequest{Message: "x"}))
	assert.Empty(t, Reason(fmt.Errorf("plain error")))
}

func TestNewInvalidIntentFormatsMessage(t *testing.T) {
	err := NewInvalidIntent("missing %s", "targetDay")
	assert.Equal(t, "missing targetDay", err.Error())
}
