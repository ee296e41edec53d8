/*
Package dues provides the core semester and dues ledger engine.

PURPOSE:
  This package contains the domain types and operations for hall-dues
  administration: billing periods (semesters), dues payments, operational
  expenses, and the reconciliation reports built on top of them.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A currency quantity backed by decimal.Decimal (no floats in money)
  - Semester: One billing period; exactly one is active at a time
  - Settings: Singleton cache pointing at the active semester
  - Payment: An immutable dues settlement record
  - Expense: An append-only operational cost entry
  - StudentRef: A tagged student reference (index number vs. profile key)

DESIGN PRINCIPLES:
  1. Immutability: Payments and expenses are never modified or deleted
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Single source of truth: paid/unpaid is always derived from payment
     records, never from a mutable "paid" flag on the student

SEE ALSO:
  - registry.go: Semester lifecycle and the single-active invariant
  - recorder.go: Payment recording
  - resolver.go: Paid/unpaid resolution
  - report.go:   Financial reconciliation
*/
package dues

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Currency quantity
// =============================================================================

// Currency is the single currency the ledger operates in.
const Currency = "GHS"

// Amount is a currency quantity. All dues, payments, and expenses use it.
type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value))}
}

// ParseAmount converts a stored decimal string back into an Amount.
// Malformed input yields zero; stored values are written by this package
// and are always well-formed.
func ParseAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{Value: decimal.Zero}
	}
	return Amount{Value: d}
}

func ZeroAmount() Amount { return Amount{Value: decimal.Zero} }

func (a Amount) Add(b Amount) Amount      { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount      { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(n int) Amount         { return Amount{Value: a.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (a Amount) Neg() Amount              { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsZero() bool             { return a.Value.IsZero() }
func (a Amount) IsNegative() bool         { return a.Value.IsNegative() }
func (a Amount) IsPositive() bool         { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool      { return a.Value.Equal(b.Value) }
func (a Amount) String() string           { return a.Value.String() }
func (a Amount) Float64() float64         { f, _ := a.Value.Float64(); return f }

// =============================================================================
// SEMESTER - One billing period
// =============================================================================

type SemesterID string

// Semester is one dues-collection period. Created only via Registry.Rollover,
// mutated only to flip IsActive off when superseded, never deleted.
type Semester struct {
	ID             SemesterID
	AcademicYear   string // e.g. "2025/2026"
	SemesterNumber int    // 1 or 2
	StartDate      time.Time
	EndDate        time.Time
	DuesAmount     Amount
	IsActive       bool
	CreatedAt      time.Time
}

// Label renders the legacy display key, e.g. "2025/2026 - Sem 1".
// Display only; payments bind to SemesterID, never to this string.
func (s Semester) Label() string {
	return fmt.Sprintf("%s - Sem %d", s.AcademicYear, s.SemesterNumber)
}

// Window returns the dues-collection window as [start, end].
func (s Semester) Window() (time.Time, time.Time) {
	return s.StartDate, s.EndDate
}

// NewSemester describes the period supplied to a rollover.
type NewSemester struct {
	AcademicYear   string
	SemesterNumber int
	StartDate      time.Time
	EndDate        time.Time
	DuesAmount     Amount
}

// =============================================================================
// SETTINGS - Singleton cache of the active period
// =============================================================================

// Settings is a denormalized pointer to the active semester plus fallback
// display values. It is rewritten only inside the rollover transaction;
// CurrentSemesterID, when set, must reference a semester with IsActive true.
type Settings struct {
	CurrentSemesterID     SemesterID // empty = no active semester recorded
	CurrentAcademicYear   string
	CurrentSemesterNumber int
	DefaultDuesAmount     Amount
	SemesterOpen          bool
}

// =============================================================================
// PAYMENT - One dues settlement event
// =============================================================================

type PaymentID string

// Payment records a single dues settlement. Append-only: settlement is a
// fact, not an editable field.
type Payment struct {
	ID            PaymentID
	StudentID     string // institutional index number, or profile key on legacy records
	StudentName   string // denormalized snapshot at time of payment
	HallID        string
	SemesterID    SemesterID
	Amount        Amount
	ReceiptNumber string // audit reference, free text, not unique-enforced
	DatePaid      time.Time
	RecordedBy    string
}

// =============================================================================
// EXPENSE - One operational cost entry
// =============================================================================

// GeneralHallID marks institution-wide expenses not tied to a single hall.
const GeneralHallID = "GENERAL"

type ExpenseID string

type Expense struct {
	ID          ExpenseID
	HallID      string // GeneralHallID or a specific hall
	Title       string
	Amount      Amount
	Category    string
	Description string
	Date        time.Time
	RecordedBy  string
}

// =============================================================================
// STUDENT REFERENCE - Dual-identifier handling
// =============================================================================

// RefKind tags which identifier a StudentRef carries. Older payment records
// were keyed by profile key, newer ones by institutional index number; the
// resolver always checks both.
type RefKind string

const (
	RefIndexNumber RefKind = "index_number"
	RefProfileKey  RefKind = "profile_key"
)

// StudentRef is a tagged reference to a student.
type StudentRef struct {
	Kind  RefKind
	Value string
}

func ByIndexNumber(index string) StudentRef {
	return StudentRef{Kind: RefIndexNumber, Value: index}
}

func ByProfileKey(key string) StudentRef {
	return StudentRef{Kind: RefProfileKey, Value: key}
}

func (r StudentRef) IsZero() bool { return r.Value == "" }

// =============================================================================
// DIRECTORY ENTITIES - Students and catalog records
// =============================================================================

// Role mirrors the directory's user roles. Only students and hall
// executives are dues-liable.
type Role string

const (
	RoleStudent       Role = "STUDENT"
	RoleHallExecutive Role = "HALL_EXECUTIVE"
	RoleHallMaster    Role = "HALL_MASTER"
	RoleSuperAdmin    Role = "SUPER_ADMIN"
)

// Student is the ledger's view over a directory user.
type Student struct {
	Key         string // internal profile key
	FirstName   string
	LastName    string
	IndexNumber string // institutional index number, e.g. "NTCW/23/001"; may be empty on legacy records
	HallID      string
	Program     string
	BatchID     string
	Role        Role
	Dismissed   bool
}

// DuesLiable reports whether this person owes hall dues at all.
// Dismissal is a separate concern handled by the report engine.
func (s Student) DuesLiable() bool {
	return s.Role == RoleStudent || s.Role == RoleHallExecutive
}

// BillingID is the identifier new payments are recorded under: the index
// number when present, otherwise the profile key.
func (s Student) BillingID() string {
	if s.IndexNumber != "" {
		return s.IndexNumber
	}
	return s.Key
}

// MatchesPaymentID reports whether a raw Payment.StudentID refers to this
// student under either identifier scheme.
func (s Student) MatchesPaymentID(id string) bool {
	if id == "" {
		return false
	}
	return (s.IndexNumber != "" && id == s.IndexNumber) || id == s.Key
}

// FullName joins the name parts for denormalized payment snapshots.
func (s Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// Ref returns the preferred reference for this student.
func (s Student) Ref() StudentRef {
	if s.IndexNumber != "" {
		return ByIndexNumber(s.IndexNumber)
	}
	return ByProfileKey(s.Key)
}

// Hall is a static grouping key owned by the catalog.
type Hall struct {
	ID   string
	Name string
}

// Program is an academic program, e.g. RGN.
type Program struct {
	ID            string
	Code          string
	Name          string
	DurationYears int
}

// Batch is an intake cohort within a program.
type Batch struct {
	ID       string
	Name     string // e.g. "RGN 12"
	Program  string
	IsActive bool
}
