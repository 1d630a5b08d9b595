package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("requested quantity must be a positive integer")
	ErrInvalidItem     = errors.New("invalid stock item")
)

// LineResult records the outcome of one plan line's stock update.
type LineResult struct {
	ItemID  string
	Applied bool
	Err     error
}

// PartialCommitError reports a commit where per-line stock updates did not
// all succeed. Applied lines are not rolled back; an operator reconciles
// stock against the ledger using the reported outcomes.
type PartialCommitError struct {
	BillID string
	Lines  []LineResult
}

func (e *PartialCommitError) Error() string {
	applied, failed := 0, 0
	for _, l := range e.Lines {
		if l.Applied {
			applied++
		} else {
			failed++
		}
	}
	return fmt.Sprintf("partial commit %s: %d line(s) applied, %d failed", e.BillID, applied, failed)
}

// LedgerWriteError reports a record append failure after stock was already
// decremented. Stock is not reverted; the condition requires manual
// reconciliation and is logged distinctly for that reason.
type LedgerWriteError struct {
	BillID string
	Err    error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger append failed for %s (stock already decremented): %v", e.BillID, e.Err)
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }
