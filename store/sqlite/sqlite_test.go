package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallops/dues-engine/dues"
	"github.com/hallops/dues-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testSemester(id string, active bool) dues.Semester {
	return dues.Semester{
		ID:             dues.SemesterID(id),
		AcademicYear:   "2025/2026",
		SemesterNumber: 1,
		StartDate:      time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
		DuesAmount:     dues.NewAmountFromInt(20),
		IsActive:       active,
		CreatedAt:      time.Date(2025, time.August, 20, 12, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestSemesterRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testSemester("sem-1", true)
	require.NoError(t, store.PutSemester(ctx, want))

	got, err := store.GetSemester(ctx, "sem-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.AcademicYear, got.AcademicYear)
	assert.Equal(t, want.SemesterNumber, got.SemesterNumber)
	assert.True(t, want.StartDate.Equal(got.StartDate))
	assert.True(t, want.DuesAmount.Equal(got.DuesAmount))
	assert.True(t, got.IsActive)

	missing, err := store.GetSemester(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPutSemester_UpsertFlipsActive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sem := testSemester("sem-1", true)
	require.NoError(t, store.PutSemester(ctx, sem))

	sem.IsActive = false
	require.NoError(t, store.PutSemester(ctx, sem))

	all, err := store.ListSemesters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)
}

func TestListSemesters_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testSemester("sem-old", false)
	older.CreatedAt = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := testSemester("sem-new", true)
	newer.CreatedAt = time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.PutSemester(ctx, older))
	require.NoError(t, store.PutSemester(ctx, newer))

	all, err := store.ListSemesters(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, dues.SemesterID("sem-new"), all[0].ID)
}

func TestSettingsSingleton(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Never written: nil, not an error
	s, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, store.PutSettings(ctx, dues.Settings{
		CurrentSemesterID:     "sem-1",
		CurrentAcademicYear:   "2025/2026",
		CurrentSemesterNumber: 1,
		DefaultDuesAmount:     dues.NewAmountFromInt(20),
		SemesterOpen:          true,
	}))
	// Second write replaces, never adds a row
	require.NoError(t, store.PutSettings(ctx, dues.Settings{
		CurrentSemesterID:     "sem-2",
		CurrentAcademicYear:   "2025/2026",
		CurrentSemesterNumber: 2,
		DefaultDuesAmount:     dues.NewAmountFromInt(25),
		SemesterOpen:          true,
	}))

	s, err = store.GetSettings(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, dues.SemesterID("sem-2"), s.CurrentSemesterID)
	assert.True(t, s.DefaultDuesAmount.Equal(dues.NewAmountFromInt(25)))
}

func TestPaymentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := dues.Payment{
		ID:            "pay-1",
		StudentID:     "NTCW/23/001",
		StudentName:   "Kwame Mensah",
		HallID:        "h1",
		SemesterID:    "sem-1",
		Amount:        dues.NewAmountFromInt(20),
		ReceiptNumber: "RCT-001",
		DatePaid:      time.Date(2025, time.September, 5, 10, 30, 0, 0, time.UTC),
		RecordedBy:    "exec-1",
	}
	require.NoError(t, store.AppendPayment(ctx, p))
	require.NoError(t, store.AppendPayment(ctx, dues.Payment{
		ID: "pay-2", StudentID: "NTCW/23/002", HallID: "h1", SemesterID: "sem-2",
		Amount: dues.NewAmountFromInt(20), ReceiptNumber: "RCT-002",
		DatePaid: time.Date(2025, time.September, 6, 9, 0, 0, 0, time.UTC), RecordedBy: "exec-1",
	}))

	bySem, err := store.ListPaymentsBySemester(ctx, "sem-1")
	require.NoError(t, err)
	require.Len(t, bySem, 1)
	got := bySem[0]
	assert.Equal(t, p.StudentID, got.StudentID)
	assert.Equal(t, p.StudentName, got.StudentName)
	assert.True(t, p.Amount.Equal(got.Amount))
	assert.True(t, p.DatePaid.Equal(got.DatePaid))

	all, err := store.ListPayments(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStudentLookupByEitherIdentifier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutStudent(ctx, dues.Student{
		Key: "s1", FirstName: "Kwame", LastName: "Mensah",
		IndexNumber: "NTCW/23/001", HallID: "h1", Program: "RGN",
		Role: dues.RoleStudent,
	}))
	// Legacy record with no index number
	require.NoError(t, store.PutStudent(ctx, dues.Student{
		Key: "s2", FirstName: "Yaw", LastName: "Boateng",
		HallID: "h2", Program: "RGN", Role: dues.RoleStudent,
	}))

	byIndex, err := store.GetStudentByIndex(ctx, "NTCW/23/001")
	require.NoError(t, err)
	require.NotNil(t, byIndex)
	assert.Equal(t, "s1", byIndex.Key)

	byKey, err := store.GetStudentByKey(ctx, "s2")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Empty(t, byKey.IndexNumber)

	// Empty index never matches the legacy rows' empty strings
	none, err := store.GetStudentByIndex(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCatalogRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutHall(ctx, dues.Hall{ID: "h1", Name: "Agongo"}))
	require.NoError(t, store.PutHall(ctx, dues.Hall{ID: "h1", Name: "Agongo Hall"})) // upsert
	require.NoError(t, store.PutProgram(ctx, dues.Program{ID: "p2", Code: "RGN", Name: "Registered General Nursing", DurationYears: 3}))
	require.NoError(t, store.PutBatch(ctx, dues.Batch{ID: "b5", Name: "RGN 12", Program: "RGN", IsActive: true}))

	halls, err := store.ListHalls(ctx)
	require.NoError(t, err)
	require.Len(t, halls, 1)
	assert.Equal(t, "Agongo Hall", halls[0].Name)

	hall, err := store.GetHall(ctx, "h1")
	require.NoError(t, err)
	require.NotNil(t, hall)

	programs, err := store.ListPrograms(ctx)
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, 3, programs[0].DurationYears)

	batches, err := store.ListBatches(ctx)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.True(t, batches[0].IsActive)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func TestWithTx_RollbackOnError(t *testing.T) {
	// GIVEN: A transaction that writes then fails
	// THEN: None of its writes survive

	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s dues.RecordStore) error {
		if err := s.PutSemester(ctx, testSemester("sem-1", true)); err != nil {
			return err
		}
		if err := s.PutSettings(ctx, dues.Settings{CurrentSemesterID: "sem-1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	sem, err := store.GetSemester(ctx, "sem-1")
	require.NoError(t, err)
	assert.Nil(t, sem)

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestWithTx_CommitAndReadOwnWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s dues.RecordStore) error {
		if err := s.PutSemester(ctx, testSemester("sem-1", true)); err != nil {
			return err
		}
		// Reads inside the transaction see its own writes
		got, err := s.GetSemester(ctx, "sem-1")
		if err != nil {
			return err
		}
		require.NotNil(t, got)
		return s.PutSettings(ctx, dues.Settings{CurrentSemesterID: "sem-1", SemesterOpen: true})
	})
	require.NoError(t, err)

	sem, err := store.GetSemester(ctx, "sem-1")
	require.NoError(t, err)
	require.NotNil(t, sem)
	assert.True(t, sem.IsActive)
}

// =============================================================================
// DEV RESET
// =============================================================================

func TestReset_WipesEveryCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutSemester(ctx, testSemester("sem-1", true)))
	require.NoError(t, store.PutSettings(ctx, dues.Settings{CurrentSemesterID: "sem-1"}))
	require.NoError(t, store.AppendPayment(ctx, dues.Payment{
		ID: "p1", StudentID: "x", HallID: "h1", SemesterID: "sem-1",
		Amount: dues.NewAmountFromInt(20), ReceiptNumber: "R", RecordedBy: "e",
	}))
	require.NoError(t, store.PutHall(ctx, dues.Hall{ID: "h1", Name: "Agongo"}))

	require.NoError(t, store.Reset(ctx))

	sems, err := store.ListSemesters(ctx)
	require.NoError(t, err)
	assert.Empty(t, sems)

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	payments, err := store.ListPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)

	halls, err := store.ListHalls(ctx)
	require.NoError(t, err)
	assert.Empty(t, halls)
}
