package ledger

import "fmt"

// The four error kinds every operation in the engine can surface. All of
// them are returned to the caller unchanged; the engine never retries and
// never performs partial writes before failing.

// ValidationError means the caller supplied an invalid or incomplete
// allocation: an empty invoice list, a non-incoming transaction, a closed
// invoice, an over-allocation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// NotFoundError means a referenced id does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ConflictError means another writer changed or removed a row between read
// and commit: a serialization failure, a foreign-key violation on commit, or
// a duplicate dedup key. Callers decide whether to re-propose against fresh
// state.
type ConflictError struct {
	Msg string
	Err error
}

func (e *ConflictError) Error() string { return "conflict: " + e.Msg }

func (e *ConflictError) Unwrap() error { return e.Err }

// InvalidStateError means the operation was attempted from a disallowed
// state, such as confirming a settlement that is not Paid.
type InvalidStateError struct {
	Msg string
}

func (e *InvalidStateError) Error() string { return "invalid state: " + e.Msg }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
