package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReservationStatus(t *testing.T) {
	for _, s := range []ReservationStatus{
		StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow,
	} {
		got, ok := ParseReservationStatus(string(s))
		assert.True(t, ok, "%s must parse", s)
		assert.Equal(t, s, got)
	}

	for _, raw := range []string{"", "PENDING", "noshow", "no_show", "seated"} {
		_, ok := ParseReservationStatus(raw)
		assert.False(t, ok, "%q must not parse", raw)
	}
}

func TestStatusPartitions(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusNoShow.IsActive())

	// Every status is exactly one of active or terminal.
	for _, s := range []ReservationStatus{
		StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow,
	} {
		assert.NotEqual(t, s.IsActive(), s.IsTerminal(), "%s must be active xor terminal", s)
	}
}
