package store

import (
	"context"

	"feesbook/internal/core"
)

// Ports for the persistence layer. The SQLite repository is the real
// implementation; memory.Store backs tests and throwaway setups.
type (
	StudentStore interface {
		// ListStudents returns all students ordered by roll number ascending.
		ListStudents(ctx context.Context) ([]core.Student, error)
		// InsertStudent assigns identity and timestamps and stores the
		// student. Returns core.ErrDuplicateRollNo when the roll number
		// is taken.
		InsertStudent(ctx context.Context, s core.Student) (core.Student, error)
		// UpdateStudent applies a partial field replacement. Returns
		// core.ErrStudentNotFound for an unknown id.
		UpdateStudent(ctx context.Context, id string, u core.StudentUpdate) (core.Student, error)
		// DeleteStudent removes the student and, by cascade, all of its
		// payments.
		DeleteStudent(ctx context.Context, id string) error
	}

	PaymentStore interface {
		// ListPayments returns all payments, most recent first.
		ListPayments(ctx context.Context) ([]core.Payment, error)
		// InsertPayment assigns identity, payment date and timestamps and
		// stores the payment. Returns core.ErrDuplicatePayment when the
		// (student, month, year) period is already covered and
		// core.ErrDuplicateReceiptNo on a receipt number collision.
		InsertPayment(ctx context.Context, p core.Payment) (core.Payment, error)
	}
)
