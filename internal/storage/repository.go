// Package storage is the SQLite persistence layer. It owns the schema
// and is the final arbiter of the uniqueness invariants: roll numbers,
// one payment per (student, month, year), and receipt numbers.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"feesbook/internal/core"
)

// Sync states for the payment register mirror.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys must be on for the payment cascade to fire.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListStudents implements store.StudentStore.
func (r *Repository) ListStudents(ctx context.Context) ([]core.Student, error) {
	rows, err := r.db.QueryContext(ctx, listStudentsSQL)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var out []core.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

func (r *Repository) GetStudent(ctx context.Context, id string) (core.Student, error) {
	row := r.db.QueryRowContext(ctx, getStudentSQL, id)
	s, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return core.Student{}, core.ErrStudentNotFound
	}
	if err != nil {
		return core.Student{}, fmt.Errorf("get student: %w", err)
	}
	return s, nil
}

// InsertStudent implements store.StudentStore.
func (r *Repository) InsertStudent(ctx context.Context, s core.Student) (core.Student, error) {
	if err := s.Validate(); err != nil {
		return core.Student{}, err
	}

	now := time.Now().UTC()
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, insertStudentSQL,
		s.ID, s.RollNo, s.Name, s.FatherName, s.ContactNo, s.Class,
		s.MonthlyFee.Paise, s.Address, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if e := translateConstraint(err); e != err {
			return core.Student{}, e
		}
		return core.Student{}, fmt.Errorf("insert student: %w", err)
	}

	slog.InfoContext(ctx, "Student saved",
		"id", s.ID,
		"roll_no", s.RollNo,
		"class", s.Class,
		"monthly_fee_paise", s.MonthlyFee.Paise)

	return s, nil
}

// UpdateStudent implements store.StudentStore. The update is applied to
// the current row inside one transaction so a partial replacement never
// races a concurrent write.
func (r *Repository) UpdateStudent(ctx context.Context, id string, u core.StudentUpdate) (core.Student, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Student{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, getStudentSQL, id)
	current, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return core.Student{}, core.ErrStudentNotFound
	}
	if err != nil {
		return core.Student{}, fmt.Errorf("read student for update: %w", err)
	}

	updated := u.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Student{}, err
	}
	updated.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, updateStudentSQL,
		updated.Name, updated.FatherName, updated.ContactNo, updated.Class,
		updated.MonthlyFee.Paise, updated.Address, updated.UpdatedAt, id)
	if err != nil {
		return core.Student{}, fmt.Errorf("update student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Student{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Student updated", "id", id, "roll_no", updated.RollNo)
	return updated, nil
}

// DeleteStudent implements store.StudentStore. The schema cascades the
// delete to the student's payments.
func (r *Repository) DeleteStudent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, deleteStudentSQL, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if n == 0 {
		return core.ErrStudentNotFound
	}

	slog.InfoContext(ctx, "Student deleted", "id", id)
	return nil
}

// ListPayments implements store.PaymentStore.
func (r *Repository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, listPaymentsSQL)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (r *Repository) GetPayment(ctx context.Context, id string) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx, getPaymentSQL, id)
	p, err := scanPayment(row)
	if err == sql.ErrNoRows {
		return core.Payment{}, fmt.Errorf("payment %s not found", id)
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// InsertPayment implements store.PaymentStore.
func (r *Repository) InsertPayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}

	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.PaymentDate = now
	p.CreatedAt = now

	_, err := r.db.ExecContext(ctx, insertPaymentSQL,
		p.ID, p.StudentID, p.Amount.Paise, p.PaymentDate, string(p.MonthFor),
		p.YearFor, p.ReceiptNo, string(p.Mode), p.Remarks, p.CreatedAt, SyncPending)
	if err != nil {
		if e := translateConstraint(err); e != err {
			return core.Payment{}, e
		}
		return core.Payment{}, fmt.Errorf("insert payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved",
		"id", p.ID,
		"student_id", p.StudentID,
		"receipt_no", p.ReceiptNo,
		"month_for", p.MonthFor,
		"year_for", p.YearFor,
		"amount_paise", p.Amount.Paise)

	return p, nil
}

// PendingSyncPayment is the minimal row handed to the register worker.
type PendingSyncPayment struct {
	ID        string
	CreatedAt time.Time
}

// GetPendingSyncPayments returns payments not yet mirrored to the
// register, oldest first.
func (r *Repository) GetPendingSyncPayments(ctx context.Context, limit int) ([]PendingSyncPayment, error) {
	rows, err := r.db.QueryContext(ctx, pendingSyncSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync payments: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncPayment
	for rows.Next() {
		var p PendingSyncPayment
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkPaymentSynced records a successful register append.
func (r *Repository) MarkPaymentSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, setSyncStatusSQL, SyncDone, id); err != nil {
		return fmt.Errorf("mark payment synced: %w", err)
	}
	slog.InfoContext(ctx, "Payment marked as synced", "id", id)
	return nil
}

// MarkPaymentSyncError flags a payment whose register append failed; the
// periodic scan will not retry it automatically.
func (r *Repository) MarkPaymentSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, setSyncStatusSQL, SyncError, id); err != nil {
		return fmt.Errorf("mark payment sync error: %w", err)
	}
	slog.WarnContext(ctx, "Payment marked with sync error", "id", id)
	return nil
}

// translateConstraint maps sqlite unique-constraint failures onto the
// domain sentinels. SQLite names the violated columns in the message,
// e.g. "UNIQUE constraint failed: students.roll_no".
func translateConstraint(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "students.roll_no"):
		return core.ErrDuplicateRollNo
	case strings.Contains(msg, "payments.receipt_no"):
		return core.ErrDuplicateReceiptNo
	case strings.Contains(msg, "payments.student_id"):
		return core.ErrDuplicatePayment
	}
	return err
}
