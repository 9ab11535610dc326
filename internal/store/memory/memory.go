// Package memory provides an in-memory store implementation with the
// same uniqueness rules as the SQLite repository. It backs tests and
// throwaway local setups.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"feesbook/internal/core"
)

type Store struct {
	mu       sync.Mutex
	students []core.Student
	payments []core.Payment
	now      func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewAt pins the store clock, so tests get deterministic timestamps.
func NewAt(now func() time.Time) *Store {
	return &Store{now: now}
}

func (s *Store) ListStudents(_ context.Context) ([]core.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Student(nil), s.students...)
	sort.Slice(out, func(i, j int) bool { return out[i].RollNo < out[j].RollNo })
	return out, nil
}

func (s *Store) InsertStudent(_ context.Context, st core.Student) (core.Student, error) {
	if err := st.Validate(); err != nil {
		return core.Student{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.students {
		if existing.RollNo == st.RollNo {
			return core.Student{}, core.ErrDuplicateRollNo
		}
	}
	now := s.now()
	st.ID = uuid.NewString()
	st.CreatedAt = now
	st.UpdatedAt = now
	s.students = append(s.students, st)
	return st, nil
}

func (s *Store) UpdateStudent(_ context.Context, id string, u core.StudentUpdate) (core.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.students {
		if existing.ID != id {
			continue
		}
		updated := u.Apply(existing)
		if err := updated.Validate(); err != nil {
			return core.Student{}, err
		}
		updated.UpdatedAt = s.now()
		s.students[i] = updated
		return updated, nil
	}
	return core.Student{}, core.ErrStudentNotFound
}

func (s *Store) DeleteStudent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, existing := range s.students {
		if existing.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrStudentNotFound
	}
	s.students = append(s.students[:idx], s.students[idx+1:]...)
	// Cascade, as the schema's FK would.
	kept := s.payments[:0]
	for _, p := range s.payments {
		if p.StudentID != id {
			kept = append(kept, p)
		}
	}
	s.payments = kept
	return nil
}

func (s *Store) ListPayments(_ context.Context) ([]core.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Payment, 0, len(s.payments))
	// Stored oldest first; list newest first.
	for i := len(s.payments) - 1; i >= 0; i-- {
		out = append(out, s.payments[i])
	}
	return out, nil
}

func (s *Store) InsertPayment(_ context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// The schema's FK rejects payments for unknown students; mirror it.
	known := false
	for _, st := range s.students {
		if st.ID == p.StudentID {
			known = true
			break
		}
	}
	if !known {
		return core.Payment{}, core.ErrStudentNotFound
	}
	for _, existing := range s.payments {
		if existing.StudentID == p.StudentID && existing.MonthFor == p.MonthFor && existing.YearFor == p.YearFor {
			return core.Payment{}, core.ErrDuplicatePayment
		}
		if existing.ReceiptNo == p.ReceiptNo {
			return core.Payment{}, core.ErrDuplicateReceiptNo
		}
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.PaymentDate = now
	p.CreatedAt = now
	s.payments = append(s.payments, p)
	return p, nil
}
