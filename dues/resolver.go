/*
resolver.go - Paid/unpaid resolution

PURPOSE:
  Answers "did this student settle dues for this semester?" for a single
  student or a whole population. Identifier-aware: a student may appear in
  payment records under their institutional index number or their internal
  profile key, and the resolver checks both forms to avoid false negatives
  on legacy data.

EDGE POLICY:
  An empty semester id means there is no billing period to settle against:
  IsPaid returns false and Partition returns everyone as unpaid. Absence
  of a billing period is never interpreted as "everyone has paid".
*/
package dues

import "context"

// =============================================================================
// DUES RESOLVER
// =============================================================================

// Resolver computes dues status from payment records.
type Resolver struct {
	Store RecordStore
}

func NewResolver(store RecordStore) *Resolver {
	return &Resolver{Store: store}
}

// IsPaid reports whether at least one payment settles the given semester
// for the referenced student. Duplicate payments in old data count as paid
// once; the resolver never assumes the store enforced uniqueness.
func (r *Resolver) IsPaid(ctx context.Context, ref StudentRef, semesterID SemesterID) (bool, error) {
	if semesterID == "" || ref.IsZero() {
		return false, nil
	}

	student, err := ResolveStudent(ctx, r.Store, ref)
	if err != nil {
		return false, storeErr("resolve student", err)
	}

	payments, err := r.Store.ListPaymentsBySemester(ctx, semesterID)
	if err != nil {
		return false, storeErr("list payments", err)
	}
	return anySettles(payments, ref, student), nil
}

// Partition splits a population into paid and unpaid for one semester.
// Order within each half follows the input order. Dismissed students are
// treated the same as active ones here; eligibility filtering is the
// report engine's responsibility.
func (r *Resolver) Partition(ctx context.Context, population []StudentRef, semesterID SemesterID) (Partition, error) {
	part := Partition{}
	if semesterID == "" {
		part.Unpaid = append(part.Unpaid, population...)
		return part, nil
	}

	payments, err := r.Store.ListPaymentsBySemester(ctx, semesterID)
	if err != nil {
		return Partition{}, storeErr("list payments", err)
	}
	students, err := r.Store.ListStudents(ctx)
	if err != nil {
		return Partition{}, storeErr("list students", err)
	}
	index := indexStudents(students)

	for _, ref := range population {
		if anySettles(payments, ref, index.lookup(ref)) {
			part.Paid = append(part.Paid, ref)
		} else {
			part.Unpaid = append(part.Unpaid, ref)
		}
	}
	return part, nil
}

// Partition is the result of splitting a population by dues status.
type Partition struct {
	Paid   []StudentRef
	Unpaid []StudentRef
}

// anySettles reports whether any payment's raw student id matches the
// reference value or either identifier of the resolved student.
func anySettles(payments []Payment, ref StudentRef, student *Student) bool {
	for i := range payments {
		id := payments[i].StudentID
		if id == "" {
			continue
		}
		if id == ref.Value {
			return true
		}
		if student != nil && student.MatchesPaymentID(id) {
			return true
		}
	}
	return false
}

// studentIndex maps both identifier forms onto directory records so a
// population partition does one directory read, not one per member.
type studentIndex struct {
	byIndex map[string]*Student
	byKey   map[string]*Student
}

func indexStudents(students []Student) studentIndex {
	idx := studentIndex{
		byIndex: make(map[string]*Student, len(students)),
		byKey:   make(map[string]*Student, len(students)),
	}
	for i := range students {
		s := &students[i]
		if s.IndexNumber != "" {
			idx.byIndex[s.IndexNumber] = s
		}
		if s.Key != "" {
			idx.byKey[s.Key] = s
		}
	}
	return idx
}

func (idx studentIndex) lookup(ref StudentRef) *Student {
	if s, ok := idx.byIndex[ref.Value]; ok {
		return s
	}
	return idx.byKey[ref.Value]
}
