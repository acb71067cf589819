package settlement

import "github.com/shopspring/decimal"

// Status is the lifecycle state of an artist settlement.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPartial   Status = "Partial"
	StatusPaid      Status = "Paid"
	StatusConfirmed Status = "Confirmed"
)

// AllowedTransitions defines which status changes an upsert or confirm may
// perform. Confirmed is terminal; only Paid settlements can be confirmed.
func AllowedTransitions() map[Status][]Status {
	return map[Status][]Status{
		StatusPending:   {StatusPartial, StatusPaid},
		StatusPartial:   {StatusPaid, StatusPending},
		StatusPaid:      {StatusPartial, StatusPending, StatusConfirmed},
		StatusConfirmed: {},
	}
}

// CanTransition reports whether from → to is a legal status change.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range AllowedTransitions()[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DeriveStatus computes the status implied by the amounts: Paid when nothing
// is left owing, Partial when some but not all has been paid, otherwise the
// current status is kept (Pending for new rows). Confirmed is terminal and
// never changes here.
func DeriveStatus(amountDue, amountPaid decimal.Decimal, current Status) Status {
	if current == StatusConfirmed {
		return StatusConfirmed
	}
	balance := amountDue.Sub(amountPaid)
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		return StatusPaid
	case amountPaid.IsPositive() && amountPaid.LessThan(amountDue):
		return StatusPartial
	case current == "":
		return StatusPending
	default:
		return current
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid, StatusConfirmed:
		return true
	}
	return false
}
