package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusPartial))
	assert.True(t, CanTransition(StatusPending, StatusPaid))
	assert.True(t, CanTransition(StatusPartial, StatusPaid))
	assert.True(t, CanTransition(StatusPartial, StatusPending))
	assert.True(t, CanTransition(StatusPaid, StatusConfirmed))
	assert.True(t, CanTransition(StatusPaid, StatusPartial), "deleting a handshake can reopen a paid settlement")

	assert.False(t, CanTransition(StatusPending, StatusConfirmed), "confirmation requires full payment first")
	assert.False(t, CanTransition(StatusPartial, StatusConfirmed))
	assert.False(t, CanTransition(StatusConfirmed, StatusPaid), "confirmed is terminal")
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))

	assert.True(t, CanTransition(StatusPaid, StatusPaid), "self transition is always allowed")
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusPaid, DeriveStatus(dec("500"), dec("500"), StatusPartial))
	assert.Equal(t, StatusPaid, DeriveStatus(dec("500"), dec("600"), StatusPending), "overpayment still counts as paid")
	assert.Equal(t, StatusPartial, DeriveStatus(dec("500"), dec("200"), StatusPending))
	assert.Equal(t, StatusPending, DeriveStatus(dec("500"), dec("0"), ""))
	assert.Equal(t, StatusPending, DeriveStatus(dec("500"), dec("0"), StatusPending))

	// Confirmed never degrades, whatever the amounts say.
	assert.Equal(t, StatusConfirmed, DeriveStatus(dec("500"), dec("200"), StatusConfirmed))
	assert.Equal(t, StatusConfirmed, DeriveStatus(dec("500"), dec("500"), StatusConfirmed))
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPartial, StatusPaid, StatusConfirmed} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("Done").Valid())
	assert.False(t, Status("").Valid())
}
