package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"feesbook/internal/amqp"
	"feesbook/internal/core"
	"feesbook/internal/export"
	"feesbook/internal/export/memory"
	"feesbook/internal/storage"
)

func newRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedPayment(t *testing.T, repo *storage.Repository) (core.Student, core.Payment) {
	t.Helper()
	ctx := context.Background()

	student, err := repo.InsertStudent(ctx, core.Student{
		ID:         "student-1",
		RollNo:     "101",
		Name:       "Aarav Sharma",
		FatherName: "Rajesh Sharma",
		ContactNo:  "9876543210",
		Class:      "7th",
		MonthlyFee: core.Rupees(1500),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertStudent: %v", err)
	}

	payment, err := repo.InsertPayment(ctx, core.Payment{
		ID:          "payment-1",
		StudentID:   student.ID,
		Amount:      core.Rupees(1500),
		PaymentDate: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		MonthFor:    core.March,
		YearFor:     2025,
		ReceiptNo:   "RCP250307042",
		Mode:        core.ModeCash,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		t.Fatalf("InsertPayment: %v", err)
	}
	return student, payment
}

func TestHandleSyncMessageAppendsAndMarksSynced(t *testing.T) {
	repo := newRepo(t)
	register := memory.New()
	w := NewSyncWorker(repo, register, 10)
	ctx := context.Background()

	student, payment := seedPayment(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewPaymentSyncMessage(payment.ID)); err != nil {
		t.Fatalf("HandleSyncMessage: %v", err)
	}

	entries := register.Entries()
	if len(entries) != 1 {
		t.Fatalf("register has %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.ReceiptNo != payment.ReceiptNo {
		t.Errorf("entry ReceiptNo = %q, want %q", e.ReceiptNo, payment.ReceiptNo)
	}
	if e.RollNo != student.RollNo || e.StudentName != student.Name {
		t.Errorf("entry student = %q/%q, want %q/%q", e.RollNo, e.StudentName, student.RollNo, student.Name)
	}
	if e.Month != "March" || e.Year != 2025 {
		t.Errorf("entry period = %s %d, want March 2025", e.Month, e.Year)
	}

	pending, err := repo.GetPendingSyncPayments(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncPayments: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("still %d pending payments after sync", len(pending))
	}
}

func TestHandleSyncMessageUnknownPayment(t *testing.T) {
	repo := newRepo(t)
	w := NewSyncWorker(repo, memory.New(), 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewPaymentSyncMessage("no-such-payment"))
	if err == nil {
		t.Fatal("HandleSyncMessage should fail for unknown payment")
	}
}

type failingRegister struct{}

func (failingRegister) Append(context.Context, export.RegisterEntry) (string, error) {
	return "", errors.New("register unavailable")
}

func TestHandleSyncMessageRegisterFailure(t *testing.T) {
	repo := newRepo(t)
	w := NewSyncWorker(repo, failingRegister{}, 10)
	ctx := context.Background()

	_, payment := seedPayment(t, repo)

	if err := w.HandleSyncMessage(ctx, amqp.NewPaymentSyncMessage(payment.ID)); err == nil {
		t.Fatal("HandleSyncMessage should propagate register failure")
	}

	// The payment is flagged with a sync error and left out of the
	// periodic pending scan.
	pending, err := repo.GetPendingSyncPayments(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncPayments: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("payment still pending after sync error, got %d", len(pending))
	}
}

func TestProcessPendingPayments(t *testing.T) {
	repo := newRepo(t)
	register := memory.New()
	w := NewSyncWorker(repo, register, 10)
	ctx := context.Background()

	seedPayment(t, repo)

	if err := w.ProcessPendingPayments(ctx); err != nil {
		t.Fatalf("ProcessPendingPayments: %v", err)
	}
	if len(register.Entries()) != 1 {
		t.Fatalf("register has %d entries, want 1", len(register.Entries()))
	}

	// A second scan finds nothing left to do.
	if err := w.ProcessPendingPayments(ctx); err != nil {
		t.Fatalf("ProcessPendingPayments (second): %v", err)
	}
	if len(register.Entries()) != 1 {
		t.Fatalf("register grew to %d entries on empty scan", len(register.Entries()))
	}
}

func TestStartupSyncCheck(t *testing.T) {
	repo := newRepo(t)
	register := memory.New()
	w := NewSyncWorker(repo, register, 2)
	ctx := context.Background()

	student, _ := seedPayment(t, repo)

	// Add more payments than one periodic batch would cover.
	months := []core.Month{core.April, core.May, core.June}
	for i, m := range months {
		_, err := repo.InsertPayment(ctx, core.Payment{
			ID:          "payment-extra-" + string(rune('a'+i)),
			StudentID:   student.ID,
			Amount:      core.Rupees(1500),
			PaymentDate: time.Date(2025, time.Month(4+i), 5, 0, 0, 0, 0, time.UTC),
			MonthFor:    m,
			YearFor:     2025,
			ReceiptNo:   "RCP25040500" + string(rune('1'+i)),
			Mode:        core.ModeUPI,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			t.Fatalf("InsertPayment %s: %v", m, err)
		}
	}

	if err := w.StartupSyncCheck(ctx); err != nil {
		t.Fatalf("StartupSyncCheck: %v", err)
	}
	if got := len(register.Entries()); got != 4 {
		t.Fatalf("register has %d entries after startup check, want 4", got)
	}
}

func TestRegisterEntryForDeletedStudent(t *testing.T) {
	p := core.Payment{
		ReceiptNo:   "RCP250307042",
		PaymentDate: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		MonthFor:    core.March,
		YearFor:     2025,
		Amount:      core.Rupees(1500),
		Mode:        core.ModeCash,
	}
	e := RegisterEntryFor(p, core.Student{})
	if e.RollNo != "" || e.StudentName != "" {
		t.Errorf("entry should have empty student fields, got %q/%q", e.RollNo, e.StudentName)
	}
	if e.Amount != "₹1,500" {
		t.Errorf("entry Amount = %q, want ₹1,500", e.Amount)
	}
	if e.PaymentDate != "2025-03-07" {
		t.Errorf("entry PaymentDate = %q, want 2025-03-07", e.PaymentDate)
	}
}
