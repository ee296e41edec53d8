/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request structs carry validator tags and are checked once at the handler
  boundary; semantic validation (date ordering, duplicate payments) stays
  in the domain layer.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/hallops/dues-engine/dues"
)

const dateLayout = "2006-01-02"

// =============================================================================
// SEMESTERS
// =============================================================================

// SemesterDTO represents a billing period in API responses.
type SemesterDTO struct {
	ID             string  `json:"id"`
	AcademicYear   string  `json:"academic_year"`
	SemesterNumber int     `json:"semester_number"`
	Label          string  `json:"label"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	DuesAmount     float64 `json:"dues_amount"`
	Currency       string  `json:"currency"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at,omitempty"`
}

func toSemesterDTO(s dues.Semester) SemesterDTO {
	return SemesterDTO{
		ID:             string(s.ID),
		AcademicYear:   s.AcademicYear,
		SemesterNumber: s.SemesterNumber,
		Label:          s.Label(),
		StartDate:      s.StartDate.Format(dateLayout),
		EndDate:        s.EndDate.Format(dateLayout),
		DuesAmount:     s.DuesAmount.Float64(),
		Currency:       dues.Currency,
		IsActive:       s.IsActive,
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
	}
}

// RolloverRequest opens a new billing period.
type RolloverRequest struct {
	AcademicYear   string  `json:"academic_year" validate:"required"`
	SemesterNumber int     `json:"semester_number" validate:"required,min=1,max=2"`
	StartDate      string  `json:"start_date" validate:"required"`
	EndDate        string  `json:"end_date" validate:"required"`
	DuesAmount     float64 `json:"dues_amount" validate:"gte=0"`
}

// =============================================================================
// PAYMENTS
// =============================================================================

// PaymentDTO represents one dues settlement in API responses.
type PaymentDTO struct {
	ID            string  `json:"id"`
	StudentID     string  `json:"student_id"`
	StudentName   string  `json:"student_name,omitempty"`
	HallID        string  `json:"hall_id"`
	SemesterID    string  `json:"semester_id"`
	Amount        float64 `json:"amount"`
	ReceiptNumber string  `json:"receipt_number"`
	DatePaid      string  `json:"date_paid"`
	RecordedBy    string  `json:"recorded_by"`
}

func toPaymentDTO(p dues.Payment) PaymentDTO {
	return PaymentDTO{
		ID:            string(p.ID),
		StudentID:     p.StudentID,
		StudentName:   p.StudentName,
		HallID:        p.HallID,
		SemesterID:    string(p.SemesterID),
		Amount:        p.Amount.Float64(),
		ReceiptNumber: p.ReceiptNumber,
		DatePaid:      p.DatePaid.Format(time.RFC3339),
		RecordedBy:    p.RecordedBy,
	}
}

// RecordPaymentRequest records one dues payment.
// ref_kind defaults to index_number when omitted.
type RecordPaymentRequest struct {
	StudentRef    string  `json:"student_ref" validate:"required"`
	RefKind       string  `json:"ref_kind" validate:"omitempty,oneof=index_number profile_key"`
	HallID        string  `json:"hall_id"`
	SemesterID    string  `json:"semester_id" validate:"required"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	ReceiptNumber string  `json:"receipt_number" validate:"required"`
	RecordedBy    string  `json:"recorded_by" validate:"required"`
}

// =============================================================================
// EXPENSES
// =============================================================================

type ExpenseDTO struct {
	ID          string  `json:"id"`
	HallID      string  `json:"hall_id"`
	Title       string  `json:"title"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
	RecordedBy  string  `json:"recorded_by"`
}

func toExpenseDTO(e dues.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          string(e.ID),
		HallID:      e.HallID,
		Title:       e.Title,
		Amount:      e.Amount.Float64(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.Format(dateLayout),
		RecordedBy:  e.RecordedBy,
	}
}

// RecordExpenseRequest records one operational cost entry.
type RecordExpenseRequest struct {
	HallID      string  `json:"hall_id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	RecordedBy  string  `json:"recorded_by" validate:"required"`
}

// =============================================================================
// DUES STATUS & REPORTS
// =============================================================================

// DuesStatusDTO answers "has this student settled this semester?".
type DuesStatusDTO struct {
	StudentRef string `json:"student_ref"`
	SemesterID string `json:"semester_id,omitempty"`
	Paid       bool   `json:"paid"`
}

// DefaulterDTO is one unpaid, non-dismissed member of the report scope.
type DefaulterDTO struct {
	IndexNumber string  `json:"index_number"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Program     string  `json:"program,omitempty"`
	HallID      string  `json:"hall_id"`
	HallName    string  `json:"hall_name,omitempty"`
	AmountDue   float64 `json:"amount_due"`
}

// ReportDTO is the reconciled financial summary for one scope.
type ReportDTO struct {
	Semester        *SemesterDTO   `json:"semester"`
	HallID          string         `json:"hall_id"`
	StudentCount    int            `json:"student_count"`
	PaidCount       int            `json:"paid_count"`
	ExpectedRevenue float64        `json:"expected_revenue"`
	ActualRevenue   float64        `json:"actual_revenue"`
	TotalExpenses   float64        `json:"total_expenses"`
	NetBalance      float64        `json:"net_balance"`
	Defaulters      []DefaulterDTO `json:"defaulters"`
}

func toReportDTO(r *dues.Report) ReportDTO {
	out := ReportDTO{
		HallID:          r.HallID,
		StudentCount:    r.StudentCount,
		PaidCount:       r.PaidCount,
		ExpectedRevenue: r.ExpectedRevenue.Float64(),
		ActualRevenue:   r.ActualRevenue.Float64(),
		TotalExpenses:   r.TotalExpenses.Float64(),
		NetBalance:      r.NetBalance.Float64(),
		Defaulters:      []DefaulterDTO{},
	}
	if r.Semester != nil {
		dto := toSemesterDTO(*r.Semester)
		out.Semester = &dto
	}
	for _, d := range r.Defaulters {
		out.Defaulters = append(out.Defaulters, DefaulterDTO{
			IndexNumber: d.IndexNumber,
			FirstName:   d.FirstName,
			LastName:    d.LastName,
			Program:     d.Program,
			HallID:      d.HallID,
			HallName:    d.HallName,
			AmountDue:   d.AmountDue.Float64(),
		})
	}
	return out
}

// HallStatsDTO is the per-hall dashboard summary.
type HallStatsDTO struct {
	HallID         string  `json:"hall_id"`
	TotalStudents  int     `json:"total_students"`
	TotalCollected float64 `json:"total_collected"`
	PaidCount      int     `json:"paid_count"`
	PaidPercentage float64 `json:"paid_percentage"`
}

// =============================================================================
// DIRECTORY & CATALOG
// =============================================================================

type StudentDTO struct {
	Key         string `json:"key"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IndexNumber string `json:"index_number,omitempty"`
	HallID      string `json:"hall_id,omitempty"`
	Program     string `json:"program,omitempty"`
	BatchID     string `json:"batch_id,omitempty"`
	Role        string `json:"role"`
	Dismissed   bool   `json:"dismissed"`
}

func toStudentDTO(s dues.Student) StudentDTO {
	return StudentDTO{
		Key:         s.Key,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		IndexNumber: s.IndexNumber,
		HallID:      s.HallID,
		Program:     s.Program,
		BatchID:     s.BatchID,
		Role:        string(s.Role),
		Dismissed:   s.Dismissed,
	}
}

type HallDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ProgramDTO struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	DurationYears int    `json:"duration_years"`
}

// SettingsDTO exposes the denormalized fallback values for display.
type SettingsDTO struct {
	CurrentSemesterID     string  `json:"current_semester_id,omitempty"`
	CurrentAcademicYear   string  `json:"current_academic_year"`
	CurrentSemesterNumber int     `json:"current_semester_number"`
	DefaultDuesAmount     float64 `json:"default_dues_amount"`
	SemesterOpen          bool    `json:"semester_open"`
}

// =============================================================================
// SCENARIOS & ERRORS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
