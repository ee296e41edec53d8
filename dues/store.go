/*
store.go - Persistence interface for the record store

PURPOSE:
  Defines the interface between the domain logic and the record store.
  The store holds the collections (semesters, settings, payments, expenses,
  students, halls, programs, batches) and a multi-write atomic transaction
  primitive. Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  SemesterStore:  Semester documents, keyed by generated id
  SettingsStore:  The settings singleton
  PaymentStore:   Append-only payment records
  ExpenseStore:   Append-only expense records
  DirectoryStore: Read surface over students and catalog records
  RecordStore:    All of the above
  TxRecordStore:  RecordStore plus WithTx (all-or-nothing multi-write)

APPEND-ONLY CONTRACT:
  Payments and expenses have Append methods only. No Update, no Delete.
  A settlement is a fact; corrections happen outside this core.

READ-AFTER-WRITE:
  A payment appended through the store must be visible to the next read.
  Implementations provide read-after-write consistency, not eventual
  consistency.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - dues/store/memory.go:   In-memory for testing

SEE ALSO:
  - registry.go: Uses WithTx for the rollover transaction
  - recorder.go: Uses WithTx for the duplicate-check-then-append write
*/
package dues

import "context"

// =============================================================================
// COLLECTION STORES
// =============================================================================

// SemesterStore persists billing periods.
type SemesterStore interface {
	// ListSemesters returns every semester, newest first.
	ListSemesters(ctx context.Context) ([]Semester, error)

	// GetSemester returns the semester with the given id, or nil if absent.
	GetSemester(ctx context.Context, id SemesterID) (*Semester, error)

	// PutSemester inserts or replaces a semester document.
	PutSemester(ctx context.Context, s Semester) error
}

// SettingsStore persists the settings singleton.
type SettingsStore interface {
	// GetSettings returns the singleton, or nil if it was never written.
	GetSettings(ctx context.Context) (*Settings, error)

	// PutSettings replaces the singleton.
	PutSettings(ctx context.Context, s Settings) error
}

// PaymentStore persists dues payments. Append-only.
type PaymentStore interface {
	// ListPayments returns all payments, in recorded order.
	ListPayments(ctx context.Context) ([]Payment, error)

	// ListPaymentsBySemester returns payments bound to one semester.
	ListPaymentsBySemester(ctx context.Context, id SemesterID) ([]Payment, error)

	// AppendPayment persists one payment. The ONLY write operation.
	AppendPayment(ctx context.Context, p Payment) error
}

// ExpenseStore persists operational expenses. Append-only.
type ExpenseStore interface {
	ListExpenses(ctx context.Context) ([]Expense, error)
	AppendExpense(ctx context.Context, e Expense) error
}

// DirectoryStore is the boundary to the profile/catalog collaborator.
// The ledger reads students and halls; the Put methods exist for seeding
// and for the collaborator to sync records in.
type DirectoryStore interface {
	ListStudents(ctx context.Context) ([]Student, error)

	// GetStudentByIndex looks a student up by institutional index number.
	// Returns nil if absent.
	GetStudentByIndex(ctx context.Context, index string) (*Student, error)

	// GetStudentByKey looks a student up by internal profile key.
	// Returns nil if absent.
	GetStudentByKey(ctx context.Context, key string) (*Student, error)

	PutStudent(ctx context.Context, s Student) error

	ListHalls(ctx context.Context) ([]Hall, error)
	GetHall(ctx context.Context, id string) (*Hall, error)
	PutHall(ctx context.Context, h Hall) error

	ListPrograms(ctx context.Context) ([]Program, error)
	PutProgram(ctx context.Context, p Program) error

	ListBatches(ctx context.Context) ([]Batch, error)
	PutBatch(ctx context.Context, b Batch) error
}

// =============================================================================
// RECORD STORE - The full document store surface
// =============================================================================

// RecordStore combines every collection the ledger reads or writes.
type RecordStore interface {
	SemesterStore
	SettingsStore
	PaymentStore
	ExpenseStore
	DirectoryStore
}

// TxRecordStore adds the atomic multi-write primitive. Readers never
// observe an intermediate state of fn: either every write inside fn
// commits, or none do.
type TxRecordStore interface {
	RecordStore

	// WithTx executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTx(ctx context.Context, fn func(RecordStore) error) error
}

// ResolveStudent finds a student by either identifier form.
// Returns nil (no error) when the directory has no matching record.
func ResolveStudent(ctx context.Context, store DirectoryStore, ref StudentRef) (*Student, error) {
	if ref.IsZero() {
		return nil, nil
	}
	switch ref.Kind {
	case RefProfileKey:
		s, err := store.GetStudentByKey(ctx, ref.Value)
		if err != nil || s != nil {
			return s, err
		}
		// Some callers hold an index number but tag it as a key; check both.
		return store.GetStudentByIndex(ctx, ref.Value)
	default:
		s, err := store.GetStudentByIndex(ctx, ref.Value)
		if err != nil || s != nil {
			return s, err
		}
		return store.GetStudentByKey(ctx, ref.Value)
	}
}
