/*
handlers.go - HTTP API handlers for the dues engine

PURPOSE:
  Exposes the semester and dues ledger via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Semesters:
    GET    /api/semesters                 List billing periods
    GET    /api/semesters/active          Active semester (null if none)
    POST   /api/semesters/rollover        Open a new billing period

  Payments & dues:
    POST   /api/payments                  Record a dues payment
    GET    /api/payments                  List payments (hall/semester filters)
    GET    /api/dues/status               Paid/unpaid for one student

  Expenses:
    GET    /api/expenses                  List expenses
    POST   /api/expenses                  Record an expense

  Reports:
    GET    /api/reports/financial         Reconciled summary + defaulters
    GET    /api/reports/defaulters.csv    Defaulter list as CSV
    GET    /api/reports/hall-stats        Per-hall dashboard numbers

  Catalog:
    GET    /api/students, /api/halls, /api/programs
    GET    /api/settings

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario
    POST   /api/scenarios/reset           Wipe the database (dev only)

ERROR HANDLING:
  Domain errors map onto HTTP status codes:
  - 400: validation errors
  - 404: missing semester/student/hall
  - 409: duplicate payment (already paid)
  - 502: record store unreachable / transaction failed
  - 500: anything else

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - scenarios.go: Demo data loaders
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/hallops/dues-engine/dues"
	"github.com/hallops/dues-engine/export"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter is implemented by stores that support the dev-only wipe used by
// the scenario loader.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    dues.TxRecordStore
	Registry *dues.Registry
	Recorder *dues.Recorder
	Resolver *dues.Resolver
	Reporter *dues.Reporter

	validate *validator.Validate

	// Track currently loaded scenario (dev/demo only).
	currentScenario string
}

// NewHandler creates a new handler over the given record store.
func NewHandler(store dues.TxRecordStore) *Handler {
	return &Handler{
		Store:    store,
		Registry: dues.NewRegistry(store),
		Recorder: dues.NewRecorder(store),
		Resolver: dues.NewResolver(store),
		Reporter: dues.NewReporter(store),
		validate: validator.New(),
	}
}

// =============================================================================
// SEMESTER HANDLERS
// =============================================================================

// ListSemesters returns every billing period, newest first.
func (h *Handler) ListSemesters(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.Registry.Semesters(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]SemesterDTO, len(semesters))
	for i, s := range semesters {
		dtos[i] = toSemesterDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetActiveSemester returns the active semester, or null when none exists.
func (h *Handler) GetActiveSemester(w http.ResponseWriter, r *http.Request) {
	active, err := h.Registry.ActiveSemester(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if active == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toSemesterDTO(*active))
}

// Rollover opens a new billing period, deactivating the previous one.
func (h *Handler) Rollover(w http.ResponseWriter, r *http.Request) {
	var req RolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rollover request", err)
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Registry.Rollover(r.Context(), dues.NewSemester{
		AcademicYear:   req.AcademicYear,
		SemesterNumber: req.SemesterNumber,
		StartDate:      start,
		EndDate:        end,
		DuesAmount:     dues.NewAmount(req.DuesAmount),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSemesterDTO(*created))
}

// GetSettings exposes the denormalized settings cache. Display values
// only; payment binding always goes through the active semester.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Registry.Settings(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{
		CurrentSemesterID:     string(settings.CurrentSemesterID),
		CurrentAcademicYear:   settings.CurrentAcademicYear,
		CurrentSemesterNumber: settings.CurrentSemesterNumber,
		DefaultDuesAmount:     settings.DefaultDuesAmount.Float64(),
		SemesterOpen:          settings.SemesterOpen,
	})
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// RecordPayment records one dues payment.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment request", err)
		return
	}

	ref := dues.ByIndexNumber(req.StudentRef)
	if req.RefKind == string(dues.RefProfileKey) {
		ref = dues.ByProfileKey(req.StudentRef)
	}

	payment, err := h.Recorder.RecordPayment(r.Context(), dues.RecordPaymentRequest{
		Student:       ref,
		HallID:        req.HallID,
		SemesterID:    dues.SemesterID(req.SemesterID),
		Amount:        dues.NewAmount(req.Amount),
		ReceiptNumber: req.ReceiptNumber,
		RecordedBy:    req.RecordedBy,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(*payment))
}

// ListPayments returns payments, optionally filtered by hall and semester.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	semesterID := r.URL.Query().Get("semester_id")
	hallID := r.URL.Query().Get("hall_id")

	var (
		payments []dues.Payment
		err      error
	)
	if semesterID != "" {
		payments, err = h.Store.ListPaymentsBySemester(ctx, dues.SemesterID(semesterID))
	} else {
		payments, err = h.Store.ListPayments(ctx)
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list payments", err)
		return
	}

	dtos := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		if hallID != "" && p.HallID != hallID {
			continue
		}
		dtos = append(dtos, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDuesStatus answers paid/unpaid for one student and one semester.
// With no semester_id the active semester is used; when none is active
// the answer is always unpaid.
func (h *Handler) GetDuesStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentRef := r.URL.Query().Get("student")
	if studentRef == "" {
		writeError(w, http.StatusBadRequest, "Missing student query parameter", nil)
		return
	}

	ref := dues.ByIndexNumber(studentRef)
	if r.URL.Query().Get("kind") == string(dues.RefProfileKey) {
		ref = dues.ByProfileKey(studentRef)
	}

	semesterID := dues.SemesterID(r.URL.Query().Get("semester_id"))
	if semesterID == "" {
		active, err := h.Registry.ActiveSemester(ctx)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if active != nil {
			semesterID = active.ID
		}
	}

	paid, err := h.Resolver.IsPaid(ctx, ref, semesterID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DuesStatusDTO{
		StudentRef: studentRef,
		SemesterID: string(semesterID),
		Paid:       paid,
	})
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns expenses, optionally filtered by hall.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Store.ListExpenses(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list expenses", err)
		return
	}

	hallID := r.URL.Query().Get("hall_id")
	dtos := make([]ExpenseDTO, 0, len(expenses))
	for _, e := range expenses {
		if hallID != "" && e.HallID != hallID {
			continue
		}
		dtos = append(dtos, toExpenseDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RecordExpense records one operational cost entry.
func (h *Handler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	var req RecordExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid expense request", err)
		return
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
	}

	expense, err := h.Recorder.RecordExpense(r.Context(), dues.RecordExpenseRequest{
		HallID:      req.HallID,
		Title:       req.Title,
		Amount:      dues.NewAmount(req.Amount),
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		RecordedBy:  req.RecordedBy,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(*expense))
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// resolveReportScope parses the shared report query parameters.
func (h *Handler) resolveReportScope(r *http.Request) (string, *dues.Semester, error) {
	q := r.URL.Query()
	hallID := q.Get("hall_id")
	if hallID == "" {
		hallID = dues.HallAll
	}

	year := q.Get("academic_year")
	number := 0
	if raw := q.Get("semester_number"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &number); err != nil {
			return "", nil, &dues.ValidationError{Field: "semester_number", Reason: "must be numeric"}
		}
	}

	target, err := h.Reporter.ResolveTargetSemester(r.Context(), year, number)
	if err != nil {
		return "", nil, err
	}
	return hallID, target, nil
}

// GetFinancialReport returns the reconciled summary for a scope.
func (h *Handler) GetFinancialReport(w http.ResponseWriter, r *http.Request) {
	hallID, target, err := h.resolveReportScope(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report, err := h.Reporter.ComputeReport(r.Context(), hallID, target)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// ExportDefaultersCSV streams the defaulter list as a CSV download.
func (h *Handler) ExportDefaultersCSV(w http.ResponseWriter, r *http.Request) {
	hallID, target, err := h.resolveReportScope(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report, err := h.Reporter.ComputeReport(r.Context(), hallID, target)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	filename := "defaulters.csv"
	if target != nil {
		filename = fmt.Sprintf("defaulters-%s-sem%d.csv", safeFilename(target.AcademicYear), target.SemesterNumber)
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteDefaulterCSV(w, report.Defaulters); err != nil {
		// Headers are out; nothing useful left to send.
		return
	}
}

// GetHallStats returns the per-hall dashboard summary.
func (h *Handler) GetHallStats(w http.ResponseWriter, r *http.Request) {
	hallID := r.URL.Query().Get("hall_id")
	if hallID == "" {
		writeError(w, http.StatusBadRequest, "Missing hall_id query parameter", nil)
		return
	}

	stats, err := h.Reporter.ComputeHallStats(r.Context(), hallID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HallStatsDTO{
		HallID:         stats.HallID,
		TotalStudents:  stats.TotalStudents,
		TotalCollected: stats.TotalCollected.Float64(),
		PaidCount:      stats.PaidCount,
		PaidPercentage: stats.PaidPercentage,
	})
}

// =============================================================================
// DIRECTORY & CATALOG HANDLERS
// =============================================================================

// ListStudents returns the directory view, optionally filtered by hall.
func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Store.ListStudents(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list students", err)
		return
	}

	hallID := r.URL.Query().Get("hall_id")
	dtos := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		if hallID != "" && s.HallID != hallID {
			continue
		}
		dtos = append(dtos, toStudentDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.Store.ListHalls(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list halls", err)
		return
	}

	dtos := make([]HallDTO, len(halls))
	for i, hall := range halls {
		dtos[i] = HallDTO{ID: hall.ID, Name: hall.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.Store.ListPrograms(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list programs", err)
		return
	}

	dtos := make([]ProgramDTO, len(programs))
	for i, p := range programs {
		dtos[i] = ProgramDTO{ID: p.ID, Code: p.Code, Name: p.Name, DurationYears: p.DurationYears}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps the error taxonomy onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case dues.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case dues.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case dues.IsConflict(err):
		writeError(w, http.StatusConflict, "Dues already paid", err)
	case errors.Is(err, dues.ErrStore):
		writeError(w, http.StatusBadGateway, "Record store unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

// safeFilename keeps download names header-friendly.
func safeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}
