package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDealNotFound     = errors.New("deal not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUnauthorized     = errors.New("caller is not permitted to perform this operation")
	ErrAlreadyConfirmed = errors.New("return already confirmed by this party")
)

// InvalidInputError is a deal-creation-time validation failure.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewInvalidInput builds an InvalidInputError for a single field.
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// InvalidStateError means the deal exists but its current status does not
// permit the requested operation. It carries both sides for diagnostics.
type InvalidStateError struct {
	DealID   int64
	Current  DealStatus
	Expected []DealStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("deal %d is %s, operation requires %v", e.DealID, e.Current, e.Expected)
}

// LedgerError reports a failed debit or credit. Partial marks the one case
// that leaves the system needing reconciliation: custody was already moved
// but a follow-up credit failed. A reconciler must replay the missing
// credit exactly once; the engine never retries it.
type LedgerError struct {
	DealID  int64
	Op      string
	Partial bool
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Partial {
		return fmt.Sprintf("ledger failure on deal %d (%s): partial completion, reconciliation required: %v", e.DealID, e.Op, e.Err)
	}
	return fmt.Sprintf("ledger failure on deal %d (%s): %v", e.DealID, e.Op, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}
