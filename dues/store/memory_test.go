package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallops/dues-engine/dues"
	"github.com/hallops/dues-engine/dues/store"
)

func TestMemory_SemestersNewestFirst(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.PutSemester(ctx, dues.Semester{ID: "a", AcademicYear: "2024/2025"}))
	require.NoError(t, m.PutSemester(ctx, dues.Semester{ID: "b", AcademicYear: "2025/2026"}))

	out, err := m.ListSemesters(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, dues.SemesterID("b"), out[0].ID)
	assert.Equal(t, dues.SemesterID("a"), out[1].ID)
}

func TestMemory_PutSemesterUpdatesInPlace(t *testing.T) {
	// Re-putting an existing id must not duplicate the list entry
	m := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, m.PutSemester(ctx, dues.Semester{ID: "a", IsActive: true}))
	require.NoError(t, m.PutSemester(ctx, dues.Semester{ID: "a", IsActive: false}))

	out, err := m.ListSemesters(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.False(t, out[0].IsActive)
}

func TestMemory_GetReturnsNilForAbsent(t *testing.T) {
	m := store.NewMemory()
	ctx := context.Background()

	sem, err := m.GetSemester(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, sem)

	settings, err := m.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)

	student, err := m.GetStudentByIndex(ctx, "NTCW/23/001")
	require.NoError(t, err)
	assert.Nil(t, student)
}

func TestTxMemory_RollbackOnError(t *testing.T) {
	// GIVEN: A transaction that writes then fails
	// THEN: None of its writes survive

	tm := store.NewTxMemory()
	ctx := context.Background()

	require.NoError(t, tm.PutSemester(ctx, dues.Semester{ID: "keep", IsActive: true}))

	boom := errors.New("boom")
	err := tm.WithTx(ctx, func(s dues.RecordStore) error {
		if err := s.PutSemester(ctx, dues.Semester{ID: "discard"}); err != nil {
			return err
		}
		if err := s.AppendPayment(ctx, dues.Payment{ID: "p1", StudentID: "x", SemesterID: "keep"}); err != nil {
			return err
		}
		if err := s.PutSettings(ctx, dues.Settings{CurrentSemesterID: "discard"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	sems, err := tm.ListSemesters(ctx)
	require.NoError(t, err)
	require.Len(t, sems, 1)
	assert.Equal(t, dues.SemesterID("keep"), sems[0].ID)

	payments, err := tm.ListPayments(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)

	settings, err := tm.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, settings)
}

func TestTxMemory_CommitOnSuccess(t *testing.T) {
	tm := store.NewTxMemory()
	ctx := context.Background()

	err := tm.WithTx(ctx, func(s dues.RecordStore) error {
		return s.PutSemester(ctx, dues.Semester{ID: "a", IsActive: true})
	})
	require.NoError(t, err)

	sem, err := tm.GetSemester(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, sem)
	assert.True(t, sem.IsActive)
}

func TestTxMemory_ReadsSeeUncommittedWrites(t *testing.T) {
	// Within one transaction, reads observe the transaction's own writes
	tm := store.NewTxMemory()
	ctx := context.Background()

	err := tm.WithTx(ctx, func(s dues.RecordStore) error {
		if err := s.AppendPayment(ctx, dues.Payment{ID: "p1", StudentID: "x", SemesterID: "sem"}); err != nil {
			return err
		}
		got, err := s.ListPaymentsBySemester(ctx, "sem")
		if err != nil {
			return err
		}
		require.Len(t, got, 1)
		return nil
	})
	require.NoError(t, err)
}
