/*
report.go - Financial reconciliation

PURPOSE:
  Aggregates payments and expenses over a scope (hall x semester) into
  expected/actual revenue, total expenses, net balance, and a defaulter
  list. Reports are read-only; computing one has no side effects.

SCOPE RULES:
  - Hall filter: a specific hall id, or HallAll for the whole institution.
    HallAll includes GENERAL expenses and every hall.
  - Semester selector: a concrete academicYear+semesterNumber pair, or
    unset to mean "the active semester". A concrete selector that matches
    nothing yields a zeroed report, not an error.

DEFAULTERS:
  Eligible population = students and hall executives, dismissed excluded,
  hall-filtered. A defaulter is an eligible member with no payment matching
  either of their identifiers for the target semester. Matching goes
  through the resolver semantics, never by scanning raw id strings alone.

FAILURE SEMANTICS:
  If the record store is unreachable the whole computation fails with a
  store error; a partially computed report is never returned.
*/
package dues

import (
	"context"
	"sort"
)

// HallAll selects every hall (and GENERAL expenses) in a report scope.
const HallAll = "ALL"

// =============================================================================
// REPORT TYPES
// =============================================================================

// Report is a reconciled financial summary for one scope.
type Report struct {
	Semester *Semester // nil when the selector matched nothing
	HallID   string    // HallAll or a specific hall

	StudentCount int // eligible population size
	PaidCount    int

	ExpectedRevenue Amount
	ActualRevenue   Amount
	TotalExpenses   Amount
	NetBalance      Amount

	Defaulters []Defaulter
}

// Defaulter is one eligible, non-dismissed member with unsettled dues.
type Defaulter struct {
	IndexNumber string
	FirstName   string
	LastName    string
	Program     string
	HallID      string
	HallName    string
	AmountDue   Amount
}

// HallStats is the per-hall dashboard summary.
type HallStats struct {
	HallID         string
	TotalStudents  int
	TotalCollected Amount
	PaidCount      int
	PaidPercentage float64
}

// =============================================================================
// FINANCIAL REPORT ENGINE
// =============================================================================

// Reporter computes financial reports over the record store.
type Reporter struct {
	Store    RecordStore
	Registry *Registry
}

func NewReporter(store TxRecordStore) *Reporter {
	return &Reporter{Store: store, Registry: NewRegistry(store)}
}

// ResolveTargetSemester picks the semester a report runs against. Concrete
// filters select that exact semester; unset filters (empty year, zero
// number) fall back to the active one. No match with concrete filters
// returns nil with no error so the caller renders zeroed figures.
func (r *Reporter) ResolveTargetSemester(ctx context.Context, academicYear string, semesterNumber int) (*Semester, error) {
	if academicYear == "" && semesterNumber == 0 {
		return r.Registry.ActiveSemester(ctx)
	}

	semesters, err := r.Store.ListSemesters(ctx)
	if err != nil {
		return nil, storeErr("list semesters", err)
	}
	for i := range semesters {
		s := &semesters[i]
		if s.AcademicYear == academicYear && s.SemesterNumber == semesterNumber {
			return s, nil
		}
	}
	return nil, nil
}

// ComputeReport reconciles one scope. A nil target semester zeroes the
// revenue figures and reports the whole eligible population as defaulting.
func (r *Reporter) ComputeReport(ctx context.Context, hallFilter string, target *Semester) (*Report, error) {
	if hallFilter == "" {
		hallFilter = HallAll
	}

	students, err := r.Store.ListStudents(ctx)
	if err != nil {
		return nil, storeErr("list students", err)
	}
	halls, err := r.Store.ListHalls(ctx)
	if err != nil {
		return nil, storeErr("list halls", err)
	}
	expenses, err := r.Store.ListExpenses(ctx)
	if err != nil {
		return nil, storeErr("list expenses", err)
	}

	var payments []Payment
	if target != nil {
		payments, err = r.Store.ListPaymentsBySemester(ctx, target.ID)
		if err != nil {
			return nil, storeErr("list payments", err)
		}
	}

	eligible := eligiblePopulation(students, hallFilter)

	report := &Report{
		Semester:        target,
		HallID:          hallFilter,
		StudentCount:    len(eligible),
		ExpectedRevenue: ZeroAmount(),
		ActualRevenue:   ZeroAmount(),
		TotalExpenses:   ZeroAmount(),
	}

	dues := ZeroAmount()
	if target != nil {
		dues = target.DuesAmount
		report.ExpectedRevenue = dues.Mul(len(eligible))
	}

	for i := range payments {
		if hallFilter == HallAll || payments[i].HallID == hallFilter {
			report.ActualRevenue = report.ActualRevenue.Add(payments[i].Amount)
		}
	}

	for i := range expenses {
		if hallFilter == HallAll || expenses[i].HallID == hallFilter {
			report.TotalExpenses = report.TotalExpenses.Add(expenses[i].Amount)
		}
	}
	report.NetBalance = report.ActualRevenue.Sub(report.TotalExpenses)

	hallNames := make(map[string]string, len(halls))
	for _, h := range halls {
		hallNames[h.ID] = h.Name
	}

	for i := range eligible {
		s := &eligible[i]
		if settledByAny(payments, s) {
			report.PaidCount++
			continue
		}
		report.Defaulters = append(report.Defaulters, Defaulter{
			IndexNumber: s.BillingID(),
			FirstName:   s.FirstName,
			LastName:    s.LastName,
			Program:     s.Program,
			HallID:      s.HallID,
			HallName:    hallNames[s.HallID],
			AmountDue:   dues,
		})
	}

	// Stable output regardless of store iteration order.
	sort.Slice(report.Defaulters, func(i, j int) bool {
		a, b := report.Defaulters[i], report.Defaulters[j]
		if a.HallID != b.HallID {
			return a.HallID < b.HallID
		}
		return a.IndexNumber < b.IndexNumber
	})

	return report, nil
}

// ComputeHallStats produces the dashboard summary for one hall: headcount,
// lifetime collections, and the paid percentage for the active semester.
func (r *Reporter) ComputeHallStats(ctx context.Context, hallID string) (*HallStats, error) {
	hall, err := r.Store.GetHall(ctx, hallID)
	if err != nil {
		return nil, storeErr("get hall", err)
	}
	if hall == nil {
		return nil, &NotFoundError{Kind: "hall", Key: hallID}
	}

	students, err := r.Store.ListStudents(ctx)
	if err != nil {
		return nil, storeErr("list students", err)
	}
	payments, err := r.Store.ListPayments(ctx)
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	active, err := r.Registry.ActiveSemester(ctx)
	if err != nil {
		return nil, err
	}

	stats := &HallStats{HallID: hallID, TotalCollected: ZeroAmount()}

	var residents []Student
	for i := range students {
		s := students[i]
		if s.HallID != hallID || !s.DuesLiable() || s.Dismissed {
			continue
		}
		residents = append(residents, s)
	}
	stats.TotalStudents = len(residents)

	var semesterPayments []Payment
	for i := range payments {
		p := payments[i]
		if p.HallID != hallID {
			continue
		}
		stats.TotalCollected = stats.TotalCollected.Add(p.Amount)
		if active != nil && p.SemesterID == active.ID {
			semesterPayments = append(semesterPayments, p)
		}
	}

	for i := range residents {
		if settledByAny(semesterPayments, &residents[i]) {
			stats.PaidCount++
		}
	}
	if stats.TotalStudents > 0 {
		stats.PaidPercentage = float64(stats.PaidCount) / float64(stats.TotalStudents) * 100
	}
	return stats, nil
}

// eligiblePopulation filters to dues-liable, non-dismissed members of the
// selected hall. Dismissed students keep their payment history but do not
// count toward revenue expectation or the defaulter list.
func eligiblePopulation(students []Student, hallFilter string) []Student {
	var out []Student
	for i := range students {
		s := students[i]
		if !s.DuesLiable() || s.Dismissed {
			continue
		}
		if hallFilter != HallAll && s.HallID != hallFilter {
			continue
		}
		out = append(out, s)
	}
	return out
}

// settledByAny applies the resolver's dual-identifier matching against an
// already-loaded payment slice.
func settledByAny(payments []Payment, s *Student) bool {
	for i := range payments {
		if s.MatchesPaymentID(payments[i].StudentID) {
			return true
		}
	}
	return false
}
