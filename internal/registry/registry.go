// Package registry owns the student collection: a snapshot synced from
// the store, mutated only after a confirmed write, with change
// notification for dependent views.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"feesbook/internal/core"
	"feesbook/internal/store"
)

type Registry struct {
	store store.StudentStore

	mu       sync.Mutex
	students []core.Student
	version  uint64
	subs     []func()
}

// New loads the initial snapshot. A failed load is reported but leaves
// a usable registry with an empty snapshot; Refresh can retry later.
func New(ctx context.Context, st store.StudentStore) (*Registry, error) {
	r := &Registry{store: st}
	if err := r.Refresh(ctx); err != nil {
		return r, fmt.Errorf("initial student fetch: %w", err)
	}
	return r, nil
}

// Refresh re-fetches the collection. On failure the last-known-good
// snapshot is retained.
func (r *Registry) Refresh(ctx context.Context) error {
	students, err := r.store.ListStudents(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Student fetch failed, keeping snapshot", "error", err)
		return err
	}
	r.mu.Lock()
	r.students = students
	r.version++
	r.mu.Unlock()
	r.notify()
	return nil
}

// List returns a copy of the current snapshot, roll number ascending.
func (r *Registry) List() []core.Student {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Student(nil), r.students...)
}

// Version increments on every snapshot change; the stats engine keys
// its memo on it.
func (r *Registry) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// Find returns the student with the given id from the snapshot.
func (r *Registry) Find(id string) (core.Student, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.students {
		if s.ID == id {
			return s, true
		}
	}
	return core.Student{}, false
}

// Add registers a student. The snapshot is only touched once the store
// confirms the write; a duplicate roll number surfaces as
// core.ErrDuplicateRollNo and leaves the collection unchanged.
func (r *Registry) Add(ctx context.Context, candidate core.Student) (core.Student, error) {
	saved, err := r.store.InsertStudent(ctx, candidate)
	if err != nil {
		return core.Student{}, err
	}

	r.mu.Lock()
	// Keep roll-number order without a full re-fetch.
	idx := len(r.students)
	for i, s := range r.students {
		if saved.RollNo < s.RollNo {
			idx = i
			break
		}
	}
	r.students = append(r.students, core.Student{})
	copy(r.students[idx+1:], r.students[idx:])
	r.students[idx] = saved
	r.version++
	r.mu.Unlock()
	r.notify()

	return saved, nil
}

// Update applies a partial field replacement.
func (r *Registry) Update(ctx context.Context, id string, u core.StudentUpdate) (core.Student, error) {
	updated, err := r.store.UpdateStudent(ctx, id, u)
	if err != nil {
		return core.Student{}, err
	}

	r.mu.Lock()
	for i, s := range r.students {
		if s.ID == id {
			r.students[i] = updated
			break
		}
	}
	r.version++
	r.mu.Unlock()
	r.notify()

	return updated, nil
}

// Delete removes the student; the store cascades to their payments.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteStudent(ctx, id); err != nil {
		return err
	}

	r.mu.Lock()
	for i, s := range r.students {
		if s.ID == id {
			r.students = append(r.students[:i], r.students[i+1:]...)
			break
		}
	}
	r.version++
	r.mu.Unlock()
	r.notify()

	return nil
}

// Subscribe registers a callback invoked after every snapshot change.
// Callbacks run synchronously on the mutating goroutine and must be
// cheap.
func (r *Registry) Subscribe(fn func()) {
	r.mu.Lock()
	r.subs = append(r.subs, fn)
	r.mu.Unlock()
}

func (r *Registry) notify() {
	r.mu.Lock()
	subs := append([]func(){}, r.subs...)
	r.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
