/*
recorder.go - Payment recording

PURPOSE:
  Validates and persists a single dues payment, enforcing
  at-most-one-settled-payment-per-student-per-semester at the point of
  recording. The duplicate check and the append run inside one store
  transaction so two concurrent recorders cannot both slip past the check.

BACK-PAYMENT:
  The referenced semester must exist but need not be the active one;
  operators may record payment against a closed period.

DUPLICATES:
  A second payment attempt for an already-settled (student, semester) pair
  is rejected with AlreadyPaidError. The resolver still treats duplicates
  in old data defensively rather than assuming uniqueness was always
  enforced.
*/
package dues

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PAYMENT RECORDER
// =============================================================================

// RecordPaymentRequest is the fully-populated input for one payment.
// Validation happens once, here, not scattered across call sites.
type RecordPaymentRequest struct {
	Student       StudentRef
	HallID        string
	SemesterID    SemesterID
	Amount        Amount
	ReceiptNumber string
	RecordedBy    string
}

// Recorder persists dues payments.
type Recorder struct {
	Store TxRecordStore

	now func() time.Time
}

func NewRecorder(store TxRecordStore) *Recorder {
	return &Recorder{Store: store, now: time.Now}
}

// RecordPayment validates req, checks for an existing settled payment for
// the same (student, semester) pair, and appends the new payment. The new
// record is visible to the next read; there is no side effect on the
// semester or settings.
func (r *Recorder) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	if err := validatePaymentRequest(req); err != nil {
		return nil, err
	}

	payment := Payment{
		ID:            PaymentID(uuid.NewString()),
		StudentID:     req.Student.Value,
		HallID:        req.HallID,
		SemesterID:    req.SemesterID,
		Amount:        req.Amount,
		ReceiptNumber: strings.TrimSpace(req.ReceiptNumber),
		DatePaid:      r.now().UTC(),
		RecordedBy:    req.RecordedBy,
	}

	err := r.Store.WithTx(ctx, func(tx RecordStore) error {
		sem, err := tx.GetSemester(ctx, req.SemesterID)
		if err != nil {
			return err
		}
		if sem == nil {
			return &NotFoundError{Kind: "semester", Key: string(req.SemesterID)}
		}

		student, err := ResolveStudent(ctx, tx, req.Student)
		if err != nil {
			return err
		}
		if student != nil {
			// Prefer the index number and snapshot directory fields.
			payment.StudentID = student.BillingID()
			payment.StudentName = student.FullName()
			if payment.HallID == "" {
				payment.HallID = student.HallID
			}
		}
		if payment.HallID == "" {
			return &ValidationError{Field: "hall_id", Reason: "required when the student is not in the directory"}
		}

		existing, err := findSettledPayment(ctx, tx, req.Student, student, req.SemesterID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &AlreadyPaidError{
				StudentID:  payment.StudentID,
				SemesterID: req.SemesterID,
				ExistingID: existing.ID,
				Receipt:    existing.ReceiptNumber,
			}
		}

		return tx.AppendPayment(ctx, payment)
	})
	if err != nil {
		return nil, storeErr("record payment", err)
	}
	return &payment, nil
}

// findSettledPayment scans the semester's payments for one matching either
// identifier form of the student.
func findSettledPayment(ctx context.Context, store RecordStore, ref StudentRef, student *Student, semesterID SemesterID) (*Payment, error) {
	payments, err := store.ListPaymentsBySemester(ctx, semesterID)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		p := &payments[i]
		if p.StudentID == ref.Value {
			return p, nil
		}
		if student != nil && student.MatchesPaymentID(p.StudentID) {
			return p, nil
		}
	}
	return nil, nil
}

func validatePaymentRequest(req RecordPaymentRequest) error {
	if req.Student.IsZero() {
		return &ValidationError{Field: "student", Reason: "a student reference is required"}
	}
	if req.SemesterID == "" {
		return &ValidationError{Field: "semester_id", Reason: "must reference a semester"}
	}
	if !req.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if strings.TrimSpace(req.ReceiptNumber) == "" {
		return &ValidationError{Field: "receipt_number", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.RecordedBy) == "" {
		return &ValidationError{Field: "recorded_by", Reason: "the recording operator is required"}
	}
	return nil
}

// =============================================================================
// EXPENSE RECORDING
// =============================================================================

// RecordExpenseRequest is the input for one operational cost entry.
type RecordExpenseRequest struct {
	HallID      string // GeneralHallID or a specific hall
	Title       string
	Amount      Amount
	Category    string
	Description string
	Date        time.Time
	RecordedBy  string
}

// RecordExpense validates and appends one expense entry.
func (r *Recorder) RecordExpense(ctx context.Context, req RecordExpenseRequest) (*Expense, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !req.Amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if req.HallID == "" {
		return nil, &ValidationError{Field: "hall_id", Reason: "use GENERAL for institution-wide costs"}
	}
	if strings.TrimSpace(req.RecordedBy) == "" {
		return nil, &ValidationError{Field: "recorded_by", Reason: "the recording operator is required"}
	}

	date := req.Date
	if date.IsZero() {
		date = r.now().UTC()
	}

	expense := Expense{
		ID:          ExpenseID(uuid.NewString()),
		HallID:      req.HallID,
		Title:       strings.TrimSpace(req.Title),
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		RecordedBy:  req.RecordedBy,
	}
	if err := r.Store.AppendExpense(ctx, expense); err != nil {
		return nil, storeErr("record expense", err)
	}
	return &expense, nil
}
