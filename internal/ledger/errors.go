package ledger

import (
	"errors"
	"fmt"

	"github.com/sheikh-saqib/point-ledger-service/internal/models"
)

var (
	// ErrAccountNotFound means no balance record was ever created for the id.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientBalance means the account holds fewer points than the
	// requested use amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is the family of charge-bound violations. Match the
	// sub-kind with ErrAmountBelowMinimum / ErrAmountAboveMaximum, or the
	// whole family with errors.Is(err, ErrInvalidAmount).
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountBelowMinimum means the charge amount is under MinChargeAmount.
	ErrAmountBelowMinimum = fmt.Errorf("%w: below minimum", ErrInvalidAmount)

	// ErrAmountAboveMaximum means the charge amount exceeds MaxChargeAmount.
	ErrAmountAboveMaximum = fmt.Errorf("%w: above maximum", ErrInvalidAmount)

	// ErrAmountNotPositive means a use amount of zero or less was requested.
	// A USE record always carries a negative delta, so the requested amount
	// itself must be positive.
	ErrAmountNotPositive = fmt.Errorf("%w: must be positive", ErrInvalidAmount)

	// ErrLockTimeout means the per-account lock could not be acquired within
	// the configured wait budget.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// PartialCommitError reports that the balance write committed but the
// history append could not be completed, so the two stores have diverged
// for this user. It is the one failure that calls for reconciliation
// rather than a plain retry by the caller.
type PartialCommitError struct {
	UserID int64
	Kind   models.TransactionKind
	Err    error // the append failure
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("partial commit for user %d (%s): balance written, history append failed: %v",
		e.UserID, e.Kind, e.Err)
}

func (e *PartialCommitError) Unwrap() error { return e.Err }
