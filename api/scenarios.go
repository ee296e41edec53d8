/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates halls, programs,
	batches, students, semesters, and payment history that demonstrate
	specific features.

AVAILABLE SCENARIOS:

	fresh-term:      Newly opened semester, no payments yet
	mid-collection:  Active semester with partial payments and expenses
	legacy-records:  Old payment rows keyed by profile key instead of
	                 index number, plus a dismissed student
	year-rollover:   Two academic years showing the rollover transition

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Seed halls, programs, batches
 3. Seed the student directory
 4. Roll over into one or more semesters
 5. Optionally record payments and expenses

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "mid-collection"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Create loader function: loadXxxScenario(ctx, h)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: LoadScenario, ListScenarios handlers
  - dues/registry.go: Rollover used to open scenario semesters
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hallops/dues-engine/dues"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-term",
		Name:        "Fresh Term",
		Description: "Semester just opened, full directory, no payments yet",
		Category:    "dues",
	},
	{
		ID:          "mid-collection",
		Name:        "Mid Collection",
		Description: "Active semester with partial payments and hall expenses",
		Category:    "dues",
	},
	{
		ID:          "legacy-records",
		Name:        "Legacy Records",
		Description: "Old payments keyed by profile key plus a dismissed student",
		Category:    "dues",
	},
	{
		ID:          "year-rollover",
		Name:        "Year Rollover",
		Description: "Two academic years showing the semester transition",
		Category:    "dues",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}

	// Scenario ID exists but not in list (shouldn't happen)
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	resetter, ok := h.Store.(Resetter)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Store does not support scenarios", nil)
		return
	}
	if err := resetter.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	var err error
	switch req.ScenarioID {
	case "fresh-term":
		err = h.loadFreshTermScenario(ctx)
	case "mid-collection":
		err = h.loadMidCollectionScenario(ctx)
	case "legacy-records":
		err = h.loadLegacyRecordsScenario(ctx)
	case "year-rollover":
		err = h.loadYearRolloverScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.currentScenario = req.ScenarioID

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase wipes all records (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Store does not support reset", nil)
		return
	}
	if err := resetter.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SEED CATALOG
// =============================================================================

// NTC Wa campus catalog used by all scenarios.

var seedHalls = []dues.Hall{
	{ID: "h1", Name: "Agongo"},
	{ID: "h2", Name: "Segnitome"},
	{ID: "h3", Name: "Putiaha"},
	{ID: "h4", Name: "Jong"},
}

var seedPrograms = []dues.Program{
	{ID: "p1", Code: "NAC", Name: "Nursing Assistant Clinical", DurationYears: 2},
	{ID: "p2", Code: "RGN", Name: "Registered General Nursing", DurationYears: 3},
}

var seedBatches = []dues.Batch{
	{ID: "b1", Name: "NAC 19", Program: "NAC", IsActive: true},
	{ID: "b2", Name: "NAC 20", Program: "NAC", IsActive: true},
	{ID: "b3", Name: "RGN 10", Program: "RGN", IsActive: true},
	{ID: "b4", Name: "RGN 11", Program: "RGN", IsActive: true},
	{ID: "b5", Name: "RGN 12", Program: "RGN", IsActive: true},
}

var seedStudents = []dues.Student{
	{Key: "s1", IndexNumber: "NTCW/23/001", FirstName: "Kwame", LastName: "Mensah", HallID: "h1", Program: "RGN", BatchID: "b5", Role: dues.RoleStudent},
	{Key: "s2", IndexNumber: "NTCW/23/002", FirstName: "Abena", LastName: "Owusu", HallID: "h1", Program: "RGN", BatchID: "b5", Role: dues.RoleStudent},
	{Key: "s3", IndexNumber: "NTCW/23/003", FirstName: "Yaw", LastName: "Boateng", HallID: "h2", Program: "RGN", BatchID: "b4", Role: dues.RoleStudent},
	{Key: "s4", IndexNumber: "NTCW/24/010", FirstName: "Esi", LastName: "Asante", HallID: "h2", Program: "NAC", BatchID: "b2", Role: dues.RoleStudent},
	{Key: "s5", IndexNumber: "NTCW/24/011", FirstName: "Kofi", LastName: "Adjei", HallID: "h3", Program: "NAC", BatchID: "b2", Role: dues.RoleStudent},
	{Key: "s6", IndexNumber: "NTCW/22/050", FirstName: "Akosua", LastName: "Frimpong", HallID: "h3", Program: "RGN", BatchID: "b3", Role: dues.RoleHallExecutive},
	{Key: "s7", IndexNumber: "NTCW/24/012", FirstName: "Ama", LastName: "Darko", HallID: "h4", Program: "NAC", BatchID: "b1", Role: dues.RoleStudent},
	{Key: "s8", IndexNumber: "NTCW/23/004", FirstName: "Kojo", LastName: "Appiah", HallID: "h4", Program: "RGN", BatchID: "b4", Role: dues.RoleStudent},
}

func (h *Handler) seedCatalog(ctx context.Context) error {
	return h.Store.WithTx(ctx, func(s dues.RecordStore) error {
		for _, hall := range seedHalls {
			if err := s.PutHall(ctx, hall); err != nil {
				return err
			}
		}
		for _, p := range seedPrograms {
			if err := s.PutProgram(ctx, p); err != nil {
				return err
			}
		}
		for _, b := range seedBatches {
			if err := s.PutBatch(ctx, b); err != nil {
				return err
			}
		}
		for _, st := range seedStudents {
			if err := s.PutStudent(ctx, st); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *Handler) openSemester(ctx context.Context, year string, number int, startMonth time.Month) (*dues.Semester, error) {
	y := time.Now().Year()
	start := time.Date(y, startMonth, 1, 0, 0, 0, 0, time.UTC)
	return h.Registry.Rollover(ctx, dues.NewSemester{
		AcademicYear:   year,
		SemesterNumber: number,
		StartDate:      start,
		EndDate:        start.AddDate(0, 4, 0),
		DuesAmount:     dues.NewAmountFromInt(20),
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFreshTermScenario(ctx context.Context) error {
	if err := h.seedCatalog(ctx); err != nil {
		return err
	}
	_, err := h.openSemester(ctx, "2025/2026", 1, time.September)
	return err
}

func (h *Handler) loadMidCollectionScenario(ctx context.Context) error {
	if err := h.seedCatalog(ctx); err != nil {
		return err
	}
	sem, err := h.openSemester(ctx, "2025/2026", 1, time.September)
	if err != nil {
		return err
	}

	// Half the directory has settled, the rest are defaulters.
	paid := []struct {
		index   string
		receipt string
	}{
		{"NTCW/23/001", "RCT-0001"},
		{"NTCW/23/002", "RCT-0002"},
		{"NTCW/24/010", "RCT-0003"},
		{"NTCW/24/012", "RCT-0004"},
	}
	for _, p := range paid {
		_, err := h.Recorder.RecordPayment(ctx, dues.RecordPaymentRequest{
			Student:       dues.ByIndexNumber(p.index),
			SemesterID:    sem.ID,
			Amount:        sem.DuesAmount,
			ReceiptNumber: p.receipt,
			RecordedBy:    "s6",
		})
		if err != nil {
			return err
		}
	}

	expenses := []dues.RecordExpenseRequest{
		{HallID: "h1", Title: "Cleaning supplies", Amount: dues.NewAmountFromInt(15), Category: "maintenance", RecordedBy: "s6"},
		{HallID: dues.GeneralHallID, Title: "Inter-hall games levy", Amount: dues.NewAmountFromInt(10), Category: "events", RecordedBy: "s6"},
	}
	for _, e := range expenses {
		if _, err := h.Recorder.RecordExpense(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadLegacyRecordsScenario(ctx context.Context) error {
	if err := h.seedCatalog(ctx); err != nil {
		return err
	}

	// One student has had their index number retired: old payment rows
	// reference the profile key instead.
	dismissed := seedStudents[7]
	dismissed.Dismissed = true
	if err := h.Store.PutStudent(ctx, dismissed); err != nil {
		return err
	}

	sem, err := h.openSemester(ctx, "2025/2026", 1, time.September)
	if err != nil {
		return err
	}

	// Legacy-shaped payment: StudentID holds the profile key.
	_, err = h.Recorder.RecordPayment(ctx, dues.RecordPaymentRequest{
		Student:       dues.ByProfileKey("s3"),
		SemesterID:    sem.ID,
		Amount:        sem.DuesAmount,
		ReceiptNumber: "RCT-LEG-001",
		RecordedBy:    "s6",
	})
	if err != nil {
		return err
	}

	_, err = h.Recorder.RecordPayment(ctx, dues.RecordPaymentRequest{
		Student:       dues.ByIndexNumber("NTCW/23/001"),
		SemesterID:    sem.ID,
		Amount:        sem.DuesAmount,
		ReceiptNumber: "RCT-0005",
		RecordedBy:    "s6",
	})
	return err
}

func (h *Handler) loadYearRolloverScenario(ctx context.Context) error {
	if err := h.seedCatalog(ctx); err != nil {
		return err
	}

	prev, err := h.openSemester(ctx, "2024/2025", 2, time.February)
	if err != nil {
		return err
	}

	// Payments recorded against the outgoing semester stay attached to it.
	for i, index := range []string{"NTCW/23/001", "NTCW/23/003", "NTCW/24/011"} {
		_, err := h.Recorder.RecordPayment(ctx, dues.RecordPaymentRequest{
			Student:       dues.ByIndexNumber(index),
			SemesterID:    prev.ID,
			Amount:        prev.DuesAmount,
			ReceiptNumber: fmt.Sprintf("RCT-24-%03d", i+1),
			RecordedBy:    "s6",
		})
		if err != nil {
			return err
		}
	}

	// Rolling over deactivates 2024/2025 Sem 2 and makes the new term
	// the only active one.
	_, err = h.openSemester(ctx, "2025/2026", 1, time.September)
	return err
}
