/*
Package sqlite provides a SQLite-backed implementation of the record store.

PURPOSE:
  Implements dues.TxRecordStore using SQLite. In production the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the payments table
  - No DELETE statements on payments or expenses (outside dev reset)
  - Settlement corrections happen outside this core

KEY TABLES:
  semesters:  Billing periods; at most one row with is_active = 1
  settings:   Single-row table (id fixed to 1) caching the active period
  payments:   Immutable dues settlement records
  expenses:   Append-only operational costs
  students, halls, programs, batches: Directory/catalog collections

TRANSACTIONS:
  WithTx wraps a database transaction and hands the callback a view that
  routes every store method through the same *sql.Tx. Either all writes
  commit or none do; the store-level write lock is held for the duration
  so readers never observe an intermediate state (e.g. two active
  semesters).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/dues.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  registry := dues.NewRegistry(store)

SEE ALSO:
  - dues/store.go: Interface definitions
  - dues/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hallops/dues-engine/dues"
)

// Store implements dues.TxRecordStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Billing periods. Created by rollover, flipped inactive when superseded,
	-- never deleted.
	CREATE TABLE IF NOT EXISTS semesters (
		id TEXT PRIMARY KEY,
		academic_year TEXT NOT NULL,
		semester_number INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		dues_amount TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_semesters_active
		ON semesters(is_active) WHERE is_active = 1;
	CREATE INDEX IF NOT EXISTS idx_semesters_year_number
		ON semesters(academic_year, semester_number);

	-- Settings singleton. id is pinned to 1.
	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		current_semester_id TEXT NOT NULL DEFAULT '',
		current_academic_year TEXT NOT NULL DEFAULT '',
		current_semester_number INTEGER NOT NULL DEFAULT 0,
		default_dues_amount TEXT NOT NULL DEFAULT '0',
		semester_open INTEGER NOT NULL DEFAULT 0
	);

	-- Payments (append-only; settlement is a fact, not an editable field)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		student_name TEXT,
		hall_id TEXT NOT NULL,
		semester_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		receipt_number TEXT NOT NULL,
		date_paid TEXT NOT NULL,
		recorded_by TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_semester
		ON payments(semester_id);
	CREATE INDEX IF NOT EXISTS idx_payments_student_semester
		ON payments(student_id, semester_id);
	CREATE INDEX IF NOT EXISTS idx_payments_hall
		ON payments(hall_id);

	-- Expenses (append-only)
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		hall_id TEXT NOT NULL,
		title TEXT NOT NULL,
		amount TEXT NOT NULL,
		category TEXT,
		description TEXT,
		date TEXT NOT NULL,
		recorded_by TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_hall
		ON expenses(hall_id);

	-- Directory: students as seen by the ledger
	CREATE TABLE IF NOT EXISTS students (
		key TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		index_number TEXT NOT NULL DEFAULT '',
		hall_id TEXT NOT NULL DEFAULT '',
		program TEXT NOT NULL DEFAULT '',
		batch_id TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		dismissed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_students_index_number
		ON students(index_number) WHERE index_number <> '';
	CREATE INDEX IF NOT EXISTS idx_students_hall
		ON students(hall_id);

	-- Catalog
	CREATE TABLE IF NOT EXISTS halls (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS programs (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		duration_years INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS batches (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		program TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every store method against an abstract connection so the
// same code serves the pool and an open transaction.
type queries struct {
	db dbtx
}

// =============================================================================
// SEMESTERS
// =============================================================================

func (q queries) ListSemesters(ctx context.Context) ([]dues.Semester, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, academic_year, semester_number, start_date, end_date,
		       dues_amount, is_active, created_at
		FROM semesters
		ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dues.Semester
	for rows.Next() {
		sem, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sem)
	}
	return out, rows.Err()
}

func (q queries) GetSemester(ctx context.Context, id dues.SemesterID) (*dues.Semester, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, academic_year, semester_number, start_date, end_date,
		       dues_amount, is_active, created_at
		FROM semesters WHERE id = ?`, string(id))
	sem, err := scanSemester(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sem, nil
}

func (q queries) PutSemester(ctx context.Context, sem dues.Semester) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO semesters
			(id, academic_year, semester_number, start_date, end_date,
			 dues_amount, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			academic_year = excluded.academic_year,
			semester_number = excluded.semester_number,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			dues_amount = excluded.dues_amount,
			is_active = excluded.is_active`,
		string(sem.ID),
		sem.AcademicYear,
		sem.SemesterNumber,
		sem.StartDate.UTC().Format(time.RFC3339),
		sem.EndDate.UTC().Format(time.RFC3339),
		sem.DuesAmount.String(),
		boolToInt(sem.IsActive),
		sem.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSemester(row rowScanner) (dues.Semester, error) {
	var (
		sem                 dues.Semester
		id                  string
		start, end, created string
		amount              string
		active              int
	)
	if err := row.Scan(&id, &sem.AcademicYear, &sem.SemesterNumber,
		&start, &end, &amount, &active, &created); err != nil {
		return dues.Semester{}, err
	}
	sem.ID = dues.SemesterID(id)
	sem.StartDate = parseTime(start)
	sem.EndDate = parseTime(end)
	sem.CreatedAt = parseTime(created)
	sem.DuesAmount = dues.ParseAmount(amount)
	sem.IsActive = active != 0
	return sem, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (q queries) GetSettings(ctx context.Context) (*dues.Settings, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT current_semester_id, current_academic_year,
		       current_semester_number, default_dues_amount, semester_open
		FROM settings WHERE id = 1`)

	var (
		s      dues.Settings
		semID  string
		amount string
		open   int
	)
	err := row.Scan(&semID, &s.CurrentAcademicYear, &s.CurrentSemesterNumber, &amount, &open)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.CurrentSemesterID = dues.SemesterID(semID)
	s.DefaultDuesAmount = dues.ParseAmount(amount)
	s.SemesterOpen = open != 0
	return &s, nil
}

func (q queries) PutSettings(ctx context.Context, s dues.Settings) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO settings
			(id, current_semester_id, current_academic_year,
			 current_semester_number, default_dues_amount, semester_open)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_semester_id = excluded.current_semester_id,
			current_academic_year = excluded.current_academic_year,
			current_semester_number = excluded.current_semester_number,
			default_dues_amount = excluded.default_dues_amount,
			semester_open = excluded.semester_open`,
		string(s.CurrentSemesterID),
		s.CurrentAcademicYear,
		s.CurrentSemesterNumber,
		s.DefaultDuesAmount.String(),
		boolToInt(s.SemesterOpen),
	)
	return err
}

// =============================================================================
// PAYMENTS (append-only)
// =============================================================================

const paymentColumns = `id, student_id, student_name, hall_id, semester_id,
	amount, receipt_number, date_paid, recorded_by`

func (q queries) ListPayments(ctx context.Context) ([]dues.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments ORDER BY date_paid, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (q queries) ListPaymentsBySemester(ctx context.Context, id dues.SemesterID) ([]dues.Payment, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE semester_id = ? ORDER BY date_paid, id`,
		string(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (q queries) AppendPayment(ctx context.Context, p dues.Payment) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(p.ID),
		p.StudentID,
		p.StudentName,
		p.HallID,
		string(p.SemesterID),
		p.Amount.String(),
		p.ReceiptNumber,
		p.DatePaid.UTC().Format(time.RFC3339),
		p.RecordedBy,
	)
	return err
}

func collectPayments(rows *sql.Rows) ([]dues.Payment, error) {
	var out []dues.Payment
	for rows.Next() {
		var (
			p            dues.Payment
			id, semID    string
			amount, paid string
			name         sql.NullString
		)
		if err := rows.Scan(&id, &p.StudentID, &name, &p.HallID, &semID,
			&amount, &p.ReceiptNumber, &paid, &p.RecordedBy); err != nil {
			return nil, err
		}
		p.ID = dues.PaymentID(id)
		p.SemesterID = dues.SemesterID(semID)
		p.StudentName = name.String
		p.Amount = dues.ParseAmount(amount)
		p.DatePaid = parseTime(paid)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// EXPENSES (append-only)
// =============================================================================

func (q queries) ListExpenses(ctx context.Context) ([]dues.Expense, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, hall_id, title, amount, category, description, date, recorded_by
		FROM expenses ORDER BY date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dues.Expense
	for rows.Next() {
		var (
			e                     dues.Expense
			id, amount, date      string
			category, description sql.NullString
		)
		if err := rows.Scan(&id, &e.HallID, &e.Title, &amount,
			&category, &description, &date, &e.RecordedBy); err != nil {
			return nil, err
		}
		e.ID = dues.ExpenseID(id)
		e.Amount = dues.ParseAmount(amount)
		e.Category = category.String
		e.Description = description.String
		e.Date = parseTime(date)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q queries) AppendExpense(ctx context.Context, e dues.Expense) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO expenses
			(id, hall_id, title, amount, category, description, date, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID),
		e.HallID,
		e.Title,
		e.Amount.String(),
		e.Category,
		e.Description,
		e.Date.UTC().Format(time.RFC3339),
		e.RecordedBy,
	)
	return err
}

// =============================================================================
// DIRECTORY
// =============================================================================

const studentColumns = `key, first_name, last_name, index_number, hall_id,
	program, batch_id, role, dismissed`

func (q queries) ListStudents(ctx context.Context) ([]dues.Student, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students ORDER BY hall_id, index_number, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dues.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (q queries) GetStudentByIndex(ctx context.Context, index string) (*dues.Student, error) {
	if index == "" {
		return nil, nil
	}
	return q.getStudent(ctx,
		`SELECT `+studentColumns+` FROM students WHERE index_number = ?`, index)
}

func (q queries) GetStudentByKey(ctx context.Context, key string) (*dues.Student, error) {
	return q.getStudent(ctx,
		`SELECT `+studentColumns+` FROM students WHERE key = ?`, key)
}

func (q queries) getStudent(ctx context.Context, query, arg string) (*dues.Student, error) {
	s, err := scanStudent(q.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanStudent(row rowScanner) (dues.Student, error) {
	var (
		s         dues.Student
		role      string
		dismissed int
	)
	if err := row.Scan(&s.Key, &s.FirstName, &s.LastName, &s.IndexNumber,
		&s.HallID, &s.Program, &s.BatchID, &role, &dismissed); err != nil {
		return dues.Student{}, err
	}
	s.Role = dues.Role(role)
	s.Dismissed = dismissed != 0
	return s, nil
}

func (q queries) PutStudent(ctx context.Context, s dues.Student) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO students (`+studentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			index_number = excluded.index_number,
			hall_id = excluded.hall_id,
			program = excluded.program,
			batch_id = excluded.batch_id,
			role = excluded.role,
			dismissed = excluded.dismissed`,
		s.Key, s.FirstName, s.LastName, s.IndexNumber, s.HallID,
		s.Program, s.BatchID, string(s.Role), boolToInt(s.Dismissed),
	)
	return err
}

func (q queries) ListHalls(ctx context.Context) ([]dues.Hall, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM halls ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dues.Hall
	for rows.Next() {
		var h dues.Hall
		if err := rows.Scan(&h.ID, &h.Name); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (q queries) GetHall(ctx context.Context, id string) (*dues.Hall, error) {
	var h dues.Hall
	err := q.db.QueryRowContext(ctx, `SELECT id, name FROM halls WHERE id = ?`, id).
		Scan(&h.ID, &h.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (q queries) PutHall(ctx context.Context, h dues.Hall) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO halls (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		h.ID, h.Name)
	return err
}

func (q queries) ListPrograms(ctx context.Context) ([]dues.Program, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, code, name, duration_years FROM programs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dues.Program
	for rows.Next() {
		var p dues.Program
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.DurationYears); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (q queries) PutProgram(ctx context.Context, p dues.Program) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO programs (id, code, name, duration_years) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			duration_years = excluded.duration_years`,
		p.ID, p.Code, p.Name, p.DurationYears)
	return err
}

func (q queries) ListBatches(ctx context.Context) ([]dues.Batch, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, program, is_active FROM batches ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dues.Batch
	for rows.Next() {
		var (
			b      dues.Batch
			active int
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Program, &active); err != nil {
			return nil, err
		}
		b.IsActive = active != 0
		out = append(out, b)
	}
	return out, rows.Err()
}

func (q queries) PutBatch(ctx context.Context, b dues.Batch) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO batches (id, name, program, is_active) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			program = excluded.program,
			is_active = excluded.is_active`,
		b.ID, b.Name, b.Program, boolToInt(b.IsActive))
	return err
}

// =============================================================================
// STORE SURFACE - lock wrappers around queries
// =============================================================================

func (s *Store) reader() queries { return queries{db: s.db} }

func (s *Store) ListSemesters(ctx context.Context) ([]dues.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListSemesters(ctx)
}

func (s *Store) GetSemester(ctx context.Context, id dues.SemesterID) (*dues.Semester, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().GetSemester(ctx, id)
}

func (s *Store) PutSemester(ctx context.Context, sem dues.Semester) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().PutSemester(ctx, sem)
}

func (s *Store) GetSettings(ctx context.Context) (*dues.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().GetSettings(ctx)
}

func (s *Store) PutSettings(ctx context.Context, set dues.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().PutSettings(ctx, set)
}

func (s *Store) ListPayments(ctx context.Context) ([]dues.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListPayments(ctx)
}

func (s *Store) ListPaymentsBySemester(ctx context.Context, id dues.SemesterID) ([]dues.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListPaymentsBySemester(ctx, id)
}

func (s *Store) AppendPayment(ctx context.Context, p dues.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().AppendPayment(ctx, p)
}

func (s *Store) ListExpenses(ctx context.Context) ([]dues.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListExpenses(ctx)
}

func (s *Store) AppendExpense(ctx context.Context, e dues.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().AppendExpense(ctx, e)
}

func (s *Store) ListStudents(ctx context.Context) ([]dues.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListStudents(ctx)
}

func (s *Store) GetStudentByIndex(ctx context.Context, index string) (*dues.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().GetStudentByIndex(ctx, index)
}

func (s *Store) GetStudentByKey(ctx context.Context, key string) (*dues.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().GetStudentByKey(ctx, key)
}

func (s *Store) PutStudent(ctx context.Context, st dues.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().PutStudent(ctx, st)
}

func (s *Store) ListHalls(ctx context.Context) ([]dues.Hall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListHalls(ctx)
}

func (s *Store) GetHall(ctx context.Context, id string) (*dues.Hall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().GetHall(ctx, id)
}

func (s *Store) PutHall(ctx context.Context, h dues.Hall) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().PutHall(ctx, h)
}

func (s *Store) ListPrograms(ctx context.Context) ([]dues.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListPrograms(ctx)
}

func (s *Store) PutProgram(ctx context.Context, p dues.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().PutProgram(ctx, p)
}

func (s *Store) ListBatches(ctx context.Context) ([]dues.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reader().ListBatches(ctx)
}

func (s *Store) PutBatch(ctx context.Context, b dues.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader().PutBatch(ctx, b)
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. The write lock is held
// for the duration so in-process readers also never observe intermediate
// state.
func (s *Store) WithTx(ctx context.Context, fn func(dues.RecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	view := &txView{queries{db: tx}}
	if err := fn(view); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// txView routes every RecordStore method through one open transaction.
type txView struct {
	queries
}

// =============================================================================
// DEV RESET
// =============================================================================

// Reset wipes every collection. Development/demo only; the scenario loader
// calls this before seeding.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"semesters", "settings", "payments", "expenses",
		"students", "halls", "programs", "batches",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
