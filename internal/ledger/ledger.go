// Package ledger owns the payment collection. Its add path carries the
// two business rules of the system: at most one payment per
// (student, month, year), and date-derived receipt numbers that retry
// on collision.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"feesbook/internal/core"
	"feesbook/internal/store"
)

// receiptAttempts bounds the regeneration loop when the random suffix
// collides with an existing receipt number for the same day.
const receiptAttempts = 3

type Ledger struct {
	store store.PaymentStore
	now   func() time.Time

	mu       sync.Mutex
	rnd      *rand.Rand
	payments []core.Payment // newest first
	version  uint64
	subs     []func()
}

// New loads the initial snapshot. As with the registry, a failed load
// leaves an empty but usable ledger.
func New(ctx context.Context, st store.PaymentStore) (*Ledger, error) {
	l := &Ledger{
		store: st,
		now:   time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := l.Refresh(ctx); err != nil {
		return l, fmt.Errorf("initial payment fetch: %w", err)
	}
	return l, nil
}

// NewAt pins the clock and random source for tests.
func NewAt(ctx context.Context, st store.PaymentStore, now func() time.Time, seed int64) (*Ledger, error) {
	l, err := New(ctx, st)
	l.now = now
	l.rnd = rand.New(rand.NewSource(seed))
	return l, err
}

// Refresh re-fetches the collection, retaining the snapshot on failure.
func (l *Ledger) Refresh(ctx context.Context) error {
	payments, err := l.store.ListPayments(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Payment fetch failed, keeping snapshot", "error", err)
		return err
	}
	l.mu.Lock()
	l.payments = payments
	l.version++
	l.mu.Unlock()
	l.notify()
	return nil
}

// List returns a copy of the current snapshot, most recent first.
func (l *Ledger) List() []core.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]core.Payment(nil), l.payments...)
}

func (l *Ledger) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}

// ListForStudent returns the student's payments, most recent first.
func (l *Ledger) ListForStudent(id string) []core.Payment {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []core.Payment
	for _, p := range l.payments {
		if p.StudentID == id {
			out = append(out, p)
		}
	}
	return out
}

// Find returns the payment with the given id from the snapshot.
func (l *Ledger) Find(id string) (core.Payment, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.payments {
		if p.ID == id {
			return p, true
		}
	}
	return core.Payment{}, false
}

// HasPaid reports the student's status for a period from the snapshot.
func (l *Ledger) HasPaid(studentID string, month core.Month, year int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return core.HasPaid(l.payments, studentID, month, year)
}

// Add records a payment. The snapshot check is a fast path for the
// common duplicate case; the store's composite unique index remains the
// authoritative arbiter when concurrent clients race past it. Receipt
// numbers are regenerated with a fresh suffix on collision, bounded by
// receiptAttempts.
func (l *Ledger) Add(ctx context.Context, candidate core.Payment) (core.Payment, error) {
	if err := candidate.Validate(); err != nil {
		return core.Payment{}, err
	}

	l.mu.Lock()
	dup := core.HasPaid(l.payments, candidate.StudentID, candidate.MonthFor, candidate.YearFor)
	l.mu.Unlock()
	if dup {
		return core.Payment{}, core.ErrDuplicatePayment
	}

	var saved core.Payment
	for attempt := 0; attempt < receiptAttempts; attempt++ {
		l.mu.Lock()
		candidate.ReceiptNo = core.NewReceiptNo(l.now(), l.rnd)
		l.mu.Unlock()

		var err error
		saved, err = l.store.InsertPayment(ctx, candidate)
		if errors.Is(err, core.ErrDuplicateReceiptNo) {
			slog.WarnContext(ctx, "Receipt number collision, regenerating",
				"receipt_no", candidate.ReceiptNo, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return core.Payment{}, err
		}

		l.mu.Lock()
		l.payments = append([]core.Payment{saved}, l.payments...)
		l.version++
		l.mu.Unlock()
		l.notify()
		return saved, nil
	}

	return core.Payment{}, fmt.Errorf("generate unique receipt number after %d attempts: %w",
		receiptAttempts, core.ErrDuplicateReceiptNo)
}

// Subscribe registers a callback invoked after every snapshot change.
func (l *Ledger) Subscribe(fn func()) {
	l.mu.Lock()
	l.subs = append(l.subs, fn)
	l.mu.Unlock()
}

func (l *Ledger) notify() {
	l.mu.Lock()
	subs := append([]func(){}, l.subs...)
	l.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
