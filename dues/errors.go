/*
errors.go - Centralized error types for the dues engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers distinguish the four kinds with errors.Is against the sentinels
  or by unwrapping the structured types.

ERROR CATEGORIES:
  1. Validation errors - malformed or out-of-range input, rejected before
     any write
  2. Conflict errors   - a second payment for an already-settled pair
  3. Not-found errors  - referenced semester/student/hall does not exist
  4. Store errors      - the record store is unreachable or a transaction
     could not commit

None of these are swallowed into a default/empty result. In particular,
"no active semester" is never conflated with "everyone has paid".

SEE ALSO:
  - registry.go, recorder.go: Produce these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package dues

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for malformed or out-of-range input.
	// Always raised before any write is attempted.
	ErrValidation = errors.New("validation failed")

	// ErrAlreadyPaid is returned when recording a payment for a
	// (student, semester) pair that already has a settled payment.
	ErrAlreadyPaid = errors.New("dues already paid")

	// ErrNotFound is returned when a referenced semester, student, or hall
	// does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrStore is returned when the record store is unreachable or a
	// transaction could not commit. Transactions are all-or-nothing, so a
	// store failure never leaves a half-applied rollover.
	ErrStore = errors.New("record store failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError identifies which field failed and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AlreadyPaidError reports the payment that already settles the pair.
// Recoverable: surfaced to the operator as an actionable conflict.
type AlreadyPaidError struct {
	StudentID  string
	SemesterID SemesterID
	ExistingID PaymentID
	Receipt    string
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("dues already paid for %s in semester %s (payment %s, receipt %q)",
		e.StudentID, e.SemesterID, e.ExistingID, e.Receipt)
}

func (e *AlreadyPaidError) Unwrap() error { return ErrAlreadyPaid }

// NotFoundError names the missing record.
type NotFoundError struct {
	Kind string // "semester", "student", "hall"
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StoreError wraps a record-store failure with the operation that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return ErrStore }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict returns true for user-actionable conflicts (duplicate payment).
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyPaid)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable returns true if the operation might succeed on retry.
// Rollover is idempotent in effect, so retrying a whole transaction is safe.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStore)
}

// storeErr wraps err as a StoreError unless it already carries domain
// meaning of its own.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrStore) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
