package worker

import (
	"context"
	"fmt"
	"log/slog"

	"feesbook/internal/amqp"
	"feesbook/internal/core"
	"feesbook/internal/export"
	"feesbook/internal/storage"
)

// Store is the slice of the payment database the worker needs: fetching
// payment and student rows and tracking register sync status.
type Store interface {
	GetPayment(ctx context.Context, id string) (core.Payment, error)
	GetStudent(ctx context.Context, id string) (core.Student, error)
	GetPendingSyncPayments(ctx context.Context, limit int) ([]storage.PendingSyncPayment, error)
	MarkPaymentSynced(ctx context.Context, id string) error
	MarkPaymentSyncError(ctx context.Context, id string) error
}

// SyncWorker mirrors recorded payments from SQLite to the fee register
type SyncWorker struct {
	store     Store
	register  export.RegisterAppender
	batchSize int
}

func NewSyncWorker(store Store, register export.RegisterAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		register:  register,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single payment sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "payment_id", msg.PaymentID)
	return w.syncPaymentToRegister(ctx, msg.PaymentID)
}

// ProcessPendingPayments processes any payments that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingPayments(ctx context.Context) error {
	pending, err := w.store.GetPendingSyncPayments(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending payments: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending payments", "count", len(pending))

	for _, p := range pending {
		if err := w.syncPaymentToRegister(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment", "payment_id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck verifies and syncs any pending payments at worker
// startup, recovering from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.store.GetPendingSyncPayments(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending payments for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending payments found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending payments on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.syncPaymentToRegister(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment during startup",
				"payment_id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncPaymentToRegister(ctx context.Context, paymentID string) error {
	payment, err := w.store.GetPayment(ctx, paymentID)
	if err != nil {
		if markErr := w.store.MarkPaymentSyncError(ctx, paymentID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "payment_id", paymentID, "error", markErr)
		}
		return fmt.Errorf("get payment from storage: %w", err)
	}

	// The student may have been removed after the payment was recorded;
	// the register row then carries the bare payment data.
	var student core.Student
	if s, err := w.store.GetStudent(ctx, payment.StudentID); err == nil {
		student = s
	} else {
		slog.WarnContext(ctx, "Student not found for payment, exporting without roll number",
			"payment_id", paymentID, "student_id", payment.StudentID, "error", err)
	}

	entry := RegisterEntryFor(payment, student)

	ref, err := w.register.Append(ctx, entry)
	if err != nil {
		if markErr := w.store.MarkPaymentSyncError(ctx, paymentID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "payment_id", paymentID, "error", markErr)
		}
		return fmt.Errorf("append to register: %w", err)
	}

	// Mark as successfully synced
	if err := w.store.MarkPaymentSynced(ctx, paymentID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "payment_id", paymentID, "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Successfully synced payment",
		"payment_id", paymentID,
		"register_ref", ref,
		"receipt_no", payment.ReceiptNo,
		"amount_paise", payment.Amount.Paise)

	return nil
}

// RegisterEntryFor flattens a payment and its student into one register row.
func RegisterEntryFor(p core.Payment, s core.Student) export.RegisterEntry {
	return export.RegisterEntry{
		ReceiptNo:   p.ReceiptNo,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		RollNo:      s.RollNo,
		StudentName: s.Name,
		Class:       s.Class,
		Month:       string(p.MonthFor),
		Year:        p.YearFor,
		Amount:      p.Amount.String(),
		Mode:        string(p.Mode),
		Remarks:     p.Remarks,
	}
}
