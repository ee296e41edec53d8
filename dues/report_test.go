package dues_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallops/dues-engine/dues"
	"github.com/hallops/dues-engine/dues/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// seedCampus loads five eligible students across two halls plus one
// dismissed student and one hall master.
func seedCampus(t *testing.T, st *store.TxMemory) {
	t.Helper()
	ctx := context.Background()

	students := []dues.Student{
		{Key: "s1", IndexNumber: "NTCW/23/001", FirstName: "Kwame", LastName: "Mensah", HallID: "h1", Program: "RGN", Role: dues.RoleStudent},
		{Key: "s2", IndexNumber: "NTCW/23/002", FirstName: "Abena", LastName: "Owusu", HallID: "h1", Program: "RGN", Role: dues.RoleStudent},
		{Key: "s3", IndexNumber: "NTCW/23/003", FirstName: "Yaw", LastName: "Boateng", HallID: "h2", Program: "RGN", Role: dues.RoleStudent},
		{Key: "s4", IndexNumber: "NTCW/24/010", FirstName: "Esi", LastName: "Asante", HallID: "h2", Program: "NAC", Role: dues.RoleStudent},
		{Key: "s5", IndexNumber: "NTCW/22/050", FirstName: "Akosua", LastName: "Frimpong", HallID: "h2", Program: "RGN", Role: dues.RoleHallExecutive},
		// ineligible
		{Key: "s6", IndexNumber: "NTCW/21/001", FirstName: "Kojo", LastName: "Appiah", HallID: "h1", Program: "RGN", Role: dues.RoleStudent, Dismissed: true},
		{Key: "s7", FirstName: "Master", LastName: "Jong", HallID: "h2", Role: dues.RoleHallMaster},
	}
	for _, s := range students {
		require.NoError(t, st.PutStudent(ctx, s))
	}
	require.NoError(t, st.PutHall(ctx, dues.Hall{ID: "h1", Name: "Agongo"}))
	require.NoError(t, st.PutHall(ctx, dues.Hall{ID: "h2", Name: "Segnitome"}))
}

func pay(t *testing.T, st *store.TxMemory, index string, sem *dues.Semester, receipt string) {
	t.Helper()
	_, err := dues.NewRecorder(st).RecordPayment(context.Background(),
		payReq(dues.ByIndexNumber(index), sem.ID, receipt))
	require.NoError(t, err)
}

// =============================================================================
// FINANCIAL REPORT
// =============================================================================

func TestComputeReport_ReconcilesRevenueAndDefaulters(t *testing.T) {
	// GIVEN: Five eligible students at 20 each, three settled
	// THEN: Expected 100, actual 60, two defaulters sorted by hall then index

	st := newTestStore(t)
	seedCampus(t, st)
	sem := openTerm(t, st, "2025/2026", 1)

	pay(t, st, "NTCW/23/001", sem, "RCT-001")
	pay(t, st, "NTCW/23/003", sem, "RCT-002")
	pay(t, st, "NTCW/22/050", sem, "RCT-003")

	rep := dues.NewReporter(st)
	out, err := rep.ComputeReport(context.Background(), dues.HallAll, sem)
	require.NoError(t, err)

	assert.Equal(t, 5, out.StudentCount)
	assert.Equal(t, 3, out.PaidCount)
	assert.True(t, out.ExpectedRevenue.Equal(dues.NewAmountFromInt(100)), "expected %s", out.ExpectedRevenue)
	assert.True(t, out.ActualRevenue.Equal(dues.NewAmountFromInt(60)), "actual %s", out.ActualRevenue)
	assert.True(t, out.NetBalance.Equal(dues.NewAmountFromInt(60)))

	require.Len(t, out.Defaulters, 2)
	assert.Equal(t, "NTCW/23/002", out.Defaulters[0].IndexNumber)
	assert.Equal(t, "Agongo", out.Defaulters[0].HallName)
	assert.Equal(t, "NTCW/24/010", out.Defaulters[1].IndexNumber)
	assert.True(t, out.Defaulters[0].AmountDue.Equal(dues.NewAmountFromInt(20)))
}

func TestComputeReport_DismissedAndStaffExcluded(t *testing.T) {
	// GIVEN: A dismissed student with payment history and a hall master
	// THEN: Neither counts toward the population or the defaulter list

	st := newTestStore(t)
	seedCampus(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	ctx := context.Background()

	// Dismissed student's old payment stays on the books
	require.NoError(t, st.AppendPayment(ctx, dues.Payment{
		ID: "p-dismissed", StudentID: "NTCW/21/001", HallID: "h1",
		SemesterID: sem.ID, Amount: dues.NewAmountFromInt(20),
	}))

	rep := dues.NewReporter(st)
	out, err := rep.ComputeReport(ctx, dues.HallAll, sem)
	require.NoError(t, err)

	assert.Equal(t, 5, out.StudentCount)
	for _, d := range out.Defaulters {
		assert.NotEqual(t, "NTCW/21/001", d.IndexNumber)
	}
	// The kept payment still counts toward collections
	assert.True(t, out.ActualRevenue.Equal(dues.NewAmountFromInt(20)))
}

func TestComputeReport_HallFilter(t *testing.T) {
	// GIVEN: Payments in both halls
	// WHEN: Scoping the report to h1
	// THEN: Only h1 residents and h1 payments are counted

	st := newTestStore(t)
	seedCampus(t, st)
	sem := openTerm(t, st, "2025/2026", 1)

	pay(t, st, "NTCW/23/001", sem, "RCT-001") // h1
	pay(t, st, "NTCW/23/003", sem, "RCT-002") // h2

	rep := dues.NewReporter(st)
	out, err := rep.ComputeReport(context.Background(), "h1", sem)
	require.NoError(t, err)

	assert.Equal(t, 2, out.StudentCount)
	assert.Equal(t, 1, out.PaidCount)
	assert.True(t, out.ExpectedRevenue.Equal(dues.NewAmountFromInt(40)))
	assert.True(t, out.ActualRevenue.Equal(dues.NewAmountFromInt(20)))
	require.Len(t, out.Defaulters, 1)
	assert.Equal(t, "NTCW/23/002", out.Defaulters[0].IndexNumber)
}

func TestComputeReport_PaidElsewhereStillSettles(t *testing.T) {
	// GIVEN: An h1 resident whose payment was recorded under h2
	// WHEN: Scoping the report to h1
	// THEN: Revenue follows the payment's hall, but the student is not a
	//       defaulter; settlement is hall-agnostic

	st := newTestStore(t)
	seedCampus(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	ctx := context.Background()

	req := payReq(dues.ByIndexNumber("NTCW/23/001"), sem.ID, "RCT-001")
	req.HallID = "h2"
	_, err := dues.NewRecorder(st).RecordPayment(ctx, req)
	require.NoError(t, err)

	rep := dues.NewReporter(st)
	out, err := rep.ComputeReport(ctx, "h1", sem)
	require.NoError(t, err)

	assert.True(t, out.ActualRevenue.IsZero(), "payment went to h2's books")
	assert.Equal(t, 1, out.PaidCount)
	require.Len(t, out.Defaulters, 1)
	assert.Equal(t, "NTCW/23/002", out.Defaulters[0].IndexNumber)
}

func TestComputeReport_ExpenseFilters(t *testing.T) {
	// GIVEN: A hall expense and a GENERAL expense
	// THEN: ALL sees both; a specific hall sees only its own

	st := newTestStore(t)
	seedCampus(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	ctx := context.Background()
	rec := dues.NewRecorder(st)

	_, err := rec.RecordExpense(ctx, dues.RecordExpenseRequest{
		HallID: "h1", Title: "Cleaning supplies", Amount: dues.NewAmountFromInt(15), RecordedBy: "exec-1",
	})
	require.NoError(t, err)
	_, err = rec.RecordExpense(ctx, dues.RecordExpenseRequest{
		HallID: dues.GeneralHallID, Title: "Games levy", Amount: dues.NewAmountFromInt(10), RecordedBy: "exec-1",
	})
	require.NoError(t, err)

	rep := dues.NewReporter(st)

	all, err := rep.ComputeReport(ctx, dues.HallAll, sem)
	require.NoError(t, err)
	assert.True(t, all.TotalExpenses.Equal(dues.NewAmountFromInt(25)))
	assert.True(t, all.NetBalance.Equal(dues.NewAmountFromInt(-25)))

	h1, err := rep.ComputeReport(ctx, "h1", sem)
	require.NoError(t, err)
	assert.True(t, h1.TotalExpenses.Equal(dues.NewAmountFromInt(15)), "GENERAL excluded from specific hall")
}

func TestComputeReport_NilTargetZeroesRevenue(t *testing.T) {
	// GIVEN: No semester matches the requested scope
	// THEN: Revenue figures are zero and everyone eligible is defaulting

	st := newTestStore(t)
	seedCampus(t, st)

	rep := dues.NewReporter(st)
	out, err := rep.ComputeReport(context.Background(), dues.HallAll, nil)
	require.NoError(t, err)

	assert.Nil(t, out.Semester)
	assert.Equal(t, 5, out.StudentCount)
	assert.Equal(t, 0, out.PaidCount)
	assert.True(t, out.ExpectedRevenue.IsZero())
	assert.True(t, out.ActualRevenue.IsZero())
	assert.Len(t, out.Defaulters, 5)
	assert.True(t, out.Defaulters[0].AmountDue.IsZero())
}

// =============================================================================
// TARGET SEMESTER RESOLUTION
// =============================================================================

func TestResolveTargetSemester(t *testing.T) {
	st := newTestStore(t)
	old := openTerm(t, st, "2024/2025", 2)
	active := openTerm(t, st, "2025/2026", 1)
	rep := dues.NewReporter(st)
	ctx := context.Background()

	t.Run("unset filters pick the active semester", func(t *testing.T) {
		got, err := rep.ResolveTargetSemester(ctx, "", 0)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, active.ID, got.ID)
	})

	t.Run("concrete filters match exactly", func(t *testing.T) {
		got, err := rep.ResolveTargetSemester(ctx, "2024/2025", 2)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, old.ID, got.ID)
	})

	t.Run("no match yields nil without error", func(t *testing.T) {
		got, err := rep.ResolveTargetSemester(ctx, "2023/2024", 1)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

// =============================================================================
// HALL STATS
// =============================================================================

func TestComputeHallStats(t *testing.T) {
	// GIVEN: h2 with three eligible residents, one settled this semester,
	//        plus a prior-semester payment on the same hall's books
	// THEN: Lifetime collections sum both; paid % covers the active term only

	st := newTestStore(t)
	seedCampus(t, st)
	ctx := context.Background()

	old := openTerm(t, st, "2024/2025", 2)
	pay(t, st, "NTCW/23/003", old, "RCT-OLD")

	sem := openTerm(t, st, "2025/2026", 1)
	pay(t, st, "NTCW/24/010", sem, "RCT-001")

	rep := dues.NewReporter(st)
	stats, err := rep.ComputeHallStats(ctx, "h2")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalStudents)
	assert.True(t, stats.TotalCollected.Equal(dues.NewAmountFromInt(40)))
	assert.Equal(t, 1, stats.PaidCount)
	assert.InDelta(t, 33.33, stats.PaidPercentage, 0.1)
}

func TestComputeHallStats_UnknownHall(t *testing.T) {
	st := newTestStore(t)
	seedCampus(t, st)

	_, err := dues.NewReporter(st).ComputeHallStats(context.Background(), "h9")
	require.Error(t, err)
	assert.True(t, dues.IsNotFound(err))
}
