package dues_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallops/dues-engine/dues"
)

// =============================================================================
// SINGLE-STUDENT RESOLUTION
// =============================================================================

func TestIsPaid_EmptySemesterAlwaysUnpaid(t *testing.T) {
	// GIVEN: No billing period to settle against
	// THEN: Unpaid, never an error

	st := newTestStore(t)
	seedDirectory(t, st)
	res := dues.NewResolver(st)

	paid, err := res.IsPaid(context.Background(), dues.ByIndexNumber("NTCW/23/001"), "")
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestIsPaid_MatchesEitherIdentifier(t *testing.T) {
	// GIVEN: A payment recorded under the index number
	// WHEN: Asking by index number and by profile key
	// THEN: Both answer paid

	st := newTestStore(t)
	seedDirectory(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	rec := dues.NewRecorder(st)
	res := dues.NewResolver(st)
	ctx := context.Background()

	_, err := rec.RecordPayment(ctx, payReq(dues.ByIndexNumber("NTCW/23/001"), sem.ID, "RCT-001"))
	require.NoError(t, err)

	paid, err := res.IsPaid(ctx, dues.ByIndexNumber("NTCW/23/001"), sem.ID)
	require.NoError(t, err)
	assert.True(t, paid)

	paid, err = res.IsPaid(ctx, dues.ByProfileKey("s1"), sem.ID)
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestIsPaid_LegacyPaymentKeyedByProfileKey(t *testing.T) {
	// GIVEN: An old payment row whose student id holds a profile key
	// WHEN: Asking by index number
	// THEN: Paid; the resolver checks both identifier forms

	st := newTestStore(t)
	seedDirectory(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	res := dues.NewResolver(st)
	ctx := context.Background()

	require.NoError(t, st.AppendPayment(ctx, dues.Payment{
		ID:         "legacy-1",
		StudentID:  "s1", // profile key, pre-migration shape
		HallID:     "h1",
		SemesterID: sem.ID,
		Amount:     dues.NewAmountFromInt(20),
	}))

	paid, err := res.IsPaid(ctx, dues.ByIndexNumber("NTCW/23/001"), sem.ID)
	require.NoError(t, err)
	assert.True(t, paid)
}

func TestIsPaid_DifferentSemesterDoesNotSettle(t *testing.T) {
	st := newTestStore(t)
	seedDirectory(t, st)
	rec := dues.NewRecorder(st)
	res := dues.NewResolver(st)
	ctx := context.Background()

	sem1 := openTerm(t, st, "2025/2026", 1)
	sem2 := openTerm(t, st, "2025/2026", 2)

	_, err := rec.RecordPayment(ctx, payReq(dues.ByIndexNumber("NTCW/23/001"), sem1.ID, "RCT-001"))
	require.NoError(t, err)

	paid, err := res.IsPaid(ctx, dues.ByIndexNumber("NTCW/23/001"), sem2.ID)
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestIsPaid_UnknownStudentNeverPaid(t *testing.T) {
	st := newTestStore(t)
	seedDirectory(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	res := dues.NewResolver(st)

	paid, err := res.IsPaid(context.Background(), dues.ByIndexNumber("NTCW/99/999"), sem.ID)
	require.NoError(t, err)
	assert.False(t, paid)
}

// =============================================================================
// POPULATION PARTITION
// =============================================================================

func TestPartition_SplitsPaidAndUnpaid(t *testing.T) {
	// GIVEN: Three students, one settled
	// WHEN: Partitioning the population
	// THEN: One paid, two unpaid, input order preserved

	st := newTestStore(t)
	seedDirectory(t, st)
	sem := openTerm(t, st, "2025/2026", 1)
	rec := dues.NewRecorder(st)
	res := dues.NewResolver(st)
	ctx := context.Background()

	_, err := rec.RecordPayment(ctx, payReq(dues.ByIndexNumber("NTCW/23/002"), sem.ID, "RCT-001"))
	require.NoError(t, err)

	population := []dues.StudentRef{
		dues.ByIndexNumber("NTCW/23/001"),
		dues.ByIndexNumber("NTCW/23/002"),
		dues.ByProfileKey("s3"),
	}

	part, err := res.Partition(ctx, population, sem.ID)
	require.NoError(t, err)
	require.Len(t, part.Paid, 1)
	require.Len(t, part.Unpaid, 2)
	assert.Equal(t, "NTCW/23/002", part.Paid[0].Value)
	assert.Equal(t, "NTCW/23/001", part.Unpaid[0].Value)
	assert.Equal(t, "s3", part.Unpaid[1].Value)
}

func TestPartition_EmptySemesterAllUnpaid(t *testing.T) {
	st := newTestStore(t)
	seedDirectory(t, st)
	res := dues.NewResolver(st)

	population := []dues.StudentRef{
		dues.ByIndexNumber("NTCW/23/001"),
		dues.ByIndexNumber("NTCW/23/002"),
	}

	part, err := res.Partition(context.Background(), population, "")
	require.NoError(t, err)
	assert.Empty(t, part.Paid)
	assert.Len(t, part.Unpaid, 2)
}
