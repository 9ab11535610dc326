package export

import "context"

// RegisterEntry is one row of the fee register: a payment joined with
// the student it belongs to, flattened for export.
type RegisterEntry struct {
	ReceiptNo   string
	PaymentDate string
	RollNo      string
	StudentName string
	Class       string
	Month       string
	Year        int
	Amount      string
	Mode        string
	Remarks     string
}

// RegisterAppender appends entries to an external fee register.
type RegisterAppender interface {
	Append(ctx context.Context, e RegisterEntry) (rowRef string, err error)
}
