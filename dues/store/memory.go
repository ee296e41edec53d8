// Package store provides RecordStore implementations.
package store

import (
	"context"
	"sync"

	"github.com/hallops/dues-engine/dues"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	semesters map[dues.SemesterID]dues.Semester
	order     []dues.SemesterID // insertion order, newest first on list
	settings  *dues.Settings
	payments  []dues.Payment
	expenses  []dues.Expense
	students  map[string]dues.Student // keyed by profile key
	halls     map[string]dues.Hall
	programs  map[string]dues.Program
	batches   map[string]dues.Batch
}

func NewMemory() *Memory {
	return &Memory{
		semesters: make(map[dues.SemesterID]dues.Semester),
		students:  make(map[string]dues.Student),
		halls:     make(map[string]dues.Hall),
		programs:  make(map[string]dues.Program),
		batches:   make(map[string]dues.Batch),
	}
}

// --- Semesters ---

func (m *Memory) ListSemesters(_ context.Context) ([]dues.Semester, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listSemestersLocked(), nil
}

func (m *Memory) listSemestersLocked() []dues.Semester {
	out := make([]dues.Semester, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.semesters[m.order[i]])
	}
	return out
}

func (m *Memory) GetSemester(_ context.Context, id dues.SemesterID) (*dues.Semester, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getSemesterLocked(id), nil
}

func (m *Memory) getSemesterLocked(id dues.SemesterID) *dues.Semester {
	if s, ok := m.semesters[id]; ok {
		copy := s
		return &copy
	}
	return nil
}

func (m *Memory) PutSemester(_ context.Context, s dues.Semester) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putSemesterLocked(s)
	return nil
}

func (m *Memory) putSemesterLocked(s dues.Semester) {
	if _, ok := m.semesters[s.ID]; !ok {
		m.order = append(m.order, s.ID)
	}
	m.semesters[s.ID] = s
}

// --- Settings ---

func (m *Memory) GetSettings(_ context.Context) (*dues.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return nil, nil
	}
	copy := *m.settings
	return &copy, nil
}

func (m *Memory) PutSettings(_ context.Context, s dues.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

// --- Payments (append-only) ---

func (m *Memory) ListPayments(_ context.Context) ([]dues.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dues.Payment, len(m.payments))
	copy(out, m.payments)
	return out, nil
}

func (m *Memory) ListPaymentsBySemester(_ context.Context, id dues.SemesterID) ([]dues.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paymentsBySemesterLocked(id), nil
}

func (m *Memory) paymentsBySemesterLocked(id dues.SemesterID) []dues.Payment {
	var out []dues.Payment
	for _, p := range m.payments {
		if p.SemesterID == id {
			out = append(out, p)
		}
	}
	return out
}

func (m *Memory) AppendPayment(_ context.Context, p dues.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments = append(m.payments, p)
	return nil
}

// --- Expenses (append-only) ---

func (m *Memory) ListExpenses(_ context.Context) ([]dues.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dues.Expense, len(m.expenses))
	copy(out, m.expenses)
	return out, nil
}

func (m *Memory) AppendExpense(_ context.Context, e dues.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, e)
	return nil
}

// --- Directory ---

func (m *Memory) ListStudents(_ context.Context) ([]dues.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dues.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *Memory) GetStudentByIndex(_ context.Context, index string) (*dues.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index == "" {
		return nil, nil
	}
	for _, s := range m.students {
		if s.IndexNumber == index {
			copy := s
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetStudentByKey(_ context.Context, key string) (*dues.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.students[key]; ok {
		copy := s
		return &copy, nil
	}
	return nil, nil
}

func (m *Memory) PutStudent(_ context.Context, s dues.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.Key] = s
	return nil
}

func (m *Memory) ListHalls(_ context.Context) ([]dues.Hall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dues.Hall, 0, len(m.halls))
	for _, h := range m.halls {
		out = append(out, h)
	}
	return out, nil
}

func (m *Memory) GetHall(_ context.Context, id string) (*dues.Hall, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.halls[id]; ok {
		copy := h
		return &copy, nil
	}
	return nil, nil
}

func (m *Memory) PutHall(_ context.Context, h dues.Hall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halls[h.ID] = h
	return nil
}

func (m *Memory) ListPrograms(_ context.Context) ([]dues.Program, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dues.Program, 0, len(m.programs))
	for _, p := range m.programs {
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) PutProgram(_ context.Context, p dues.Program) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.programs[p.ID] = p
	return nil
}

func (m *Memory) ListBatches(_ context.Context) ([]dues.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]dues.Batch, 0, len(m.batches))
	for _, b := range m.batches {
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) PutBatch(_ context.Context, b dues.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = b
	return nil
}

// Reset wipes every collection. Development/demo only.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semesters = make(map[dues.SemesterID]dues.Semester)
	m.order = nil
	m.settings = nil
	m.payments = nil
	m.expenses = nil
	m.students = make(map[string]dues.Student)
	m.halls = make(map[string]dues.Hall)
	m.programs = make(map[string]dues.Program)
	m.batches = make(map[string]dues.Batch)
	return nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction. For the memory store this is
// simulated with a full snapshot and restore on error; the store lock is
// held for the duration, so readers never observe an intermediate state.
func (tm *TxMemory) WithTx(_ context.Context, fn func(dues.RecordStore) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	view := &txMemoryView{parent: tm.Memory}

	if err := fn(view); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	semesters map[dues.SemesterID]dues.Semester
	order     []dues.SemesterID
	settings  *dues.Settings
	payments  []dues.Payment
	expenses  []dues.Expense
	students  map[string]dues.Student
	halls     map[string]dues.Hall
	programs  map[string]dues.Program
	batches   map[string]dues.Batch
}

func (tm *TxMemory) snapshot() memorySnapshot {
	s := memorySnapshot{
		semesters: make(map[dues.SemesterID]dues.Semester, len(tm.semesters)),
		order:     append([]dues.SemesterID{}, tm.order...),
		payments:  append([]dues.Payment{}, tm.payments...),
		expenses:  append([]dues.Expense{}, tm.expenses...),
		students:  make(map[string]dues.Student, len(tm.students)),
		halls:     make(map[string]dues.Hall, len(tm.halls)),
		programs:  make(map[string]dues.Program, len(tm.programs)),
		batches:   make(map[string]dues.Batch, len(tm.batches)),
	}
	for k, v := range tm.semesters {
		s.semesters[k] = v
	}
	for k, v := range tm.students {
		s.students[k] = v
	}
	for k, v := range tm.halls {
		s.halls[k] = v
	}
	for k, v := range tm.programs {
		s.programs[k] = v
	}
	for k, v := range tm.batches {
		s.batches[k] = v
	}
	if tm.settings != nil {
		copy := *tm.settings
		s.settings = &copy
	}
	return s
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.semesters = s.semesters
	tm.order = s.order
	tm.settings = s.settings
	tm.payments = s.payments
	tm.expenses = s.expenses
	tm.students = s.students
	tm.halls = s.halls
	tm.programs = s.programs
	tm.batches = s.batches
}

// txMemoryView accesses the parent store without re-locking; WithTx holds
// the write lock while the view is live.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) ListSemesters(_ context.Context) ([]dues.Semester, error) {
	return tv.parent.listSemestersLocked(), nil
}

func (tv *txMemoryView) GetSemester(_ context.Context, id dues.SemesterID) (*dues.Semester, error) {
	return tv.parent.getSemesterLocked(id), nil
}

func (tv *txMemoryView) PutSemester(_ context.Context, s dues.Semester) error {
	tv.parent.putSemesterLocked(s)
	return nil
}

func (tv *txMemoryView) GetSettings(_ context.Context) (*dues.Settings, error) {
	if tv.parent.settings == nil {
		return nil, nil
	}
	copy := *tv.parent.settings
	return &copy, nil
}

func (tv *txMemoryView) PutSettings(_ context.Context, s dues.Settings) error {
	tv.parent.settings = &s
	return nil
}

func (tv *txMemoryView) ListPayments(_ context.Context) ([]dues.Payment, error) {
	return append([]dues.Payment{}, tv.parent.payments...), nil
}

func (tv *txMemoryView) ListPaymentsBySemester(_ context.Context, id dues.SemesterID) ([]dues.Payment, error) {
	return tv.parent.paymentsBySemesterLocked(id), nil
}

func (tv *txMemoryView) AppendPayment(_ context.Context, p dues.Payment) error {
	tv.parent.payments = append(tv.parent.payments, p)
	return nil
}

func (tv *txMemoryView) ListExpenses(_ context.Context) ([]dues.Expense, error) {
	return append([]dues.Expense{}, tv.parent.expenses...), nil
}

func (tv *txMemoryView) AppendExpense(_ context.Context, e dues.Expense) error {
	tv.parent.expenses = append(tv.parent.expenses, e)
	return nil
}

func (tv *txMemoryView) ListStudents(_ context.Context) ([]dues.Student, error) {
	out := make([]dues.Student, 0, len(tv.parent.students))
	for _, s := range tv.parent.students {
		out = append(out, s)
	}
	return out, nil
}

func (tv *txMemoryView) GetStudentByIndex(_ context.Context, index string) (*dues.Student, error) {
	if index == "" {
		return nil, nil
	}
	for _, s := range tv.parent.students {
		if s.IndexNumber == index {
			copy := s
			return &copy, nil
		}
	}
	return nil, nil
}

func (tv *txMemoryView) GetStudentByKey(_ context.Context, key string) (*dues.Student, error) {
	if s, ok := tv.parent.students[key]; ok {
		copy := s
		return &copy, nil
	}
	return nil, nil
}

func (tv *txMemoryView) PutStudent(_ context.Context, s dues.Student) error {
	tv.parent.students[s.Key] = s
	return nil
}

func (tv *txMemoryView) ListHalls(_ context.Context) ([]dues.Hall, error) {
	out := make([]dues.Hall, 0, len(tv.parent.halls))
	for _, h := range tv.parent.halls {
		out = append(out, h)
	}
	return out, nil
}

func (tv *txMemoryView) GetHall(_ context.Context, id string) (*dues.Hall, error) {
	if h, ok := tv.parent.halls[id]; ok {
		copy := h
		return &copy, nil
	}
	return nil, nil
}

func (tv *txMemoryView) PutHall(_ context.Context, h dues.Hall) error {
	tv.parent.halls[h.ID] = h
	return nil
}

func (tv *txMemoryView) ListPrograms(_ context.Context) ([]dues.Program, error) {
	out := make([]dues.Program, 0, len(tv.parent.programs))
	for _, p := range tv.parent.programs {
		out = append(out, p)
	}
	return out, nil
}

func (tv *txMemoryView) PutProgram(_ context.Context, p dues.Program) error {
	tv.parent.programs[p.ID] = p
	return nil
}

func (tv *txMemoryView) ListBatches(_ context.Context) ([]dues.Batch, error) {
	out := make([]dues.Batch, 0, len(tv.parent.batches))
	for _, b := range tv.parent.batches {
		out = append(out, b)
	}
	return out, nil
}

func (tv *txMemoryView) PutBatch(_ context.Context, b dues.Batch) error {
	tv.parent.batches[b.ID] = b
	return nil
}
