package storage

import (
	"feesbook/internal/core"
)

const (
	studentColumns = `id, roll_no, student_name, father_name, contact_no, class,
		monthly_fee_paise, address, created_at, updated_at`

	listStudentsSQL = `SELECT ` + studentColumns + ` FROM students ORDER BY roll_no ASC`
	getStudentSQL   = `SELECT ` + studentColumns + ` FROM students WHERE id = ?`

	insertStudentSQL = `INSERT INTO students (` + studentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	updateStudentSQL = `UPDATE students
		SET student_name = ?, father_name = ?, contact_no = ?, class = ?,
		    monthly_fee_paise = ?, address = ?, updated_at = ?
		WHERE id = ?`

	deleteStudentSQL = `DELETE FROM students WHERE id = ?`

	paymentColumns = `id, student_id, amount_paise, payment_date, month_for,
		year_for, receipt_no, payment_mode, remarks, created_at`

	listPaymentsSQL = `SELECT ` + paymentColumns + ` FROM payments
		ORDER BY created_at DESC, id DESC`
	getPaymentSQL = `SELECT ` + paymentColumns + ` FROM payments WHERE id = ?`

	insertPaymentSQL = `INSERT INTO payments (` + paymentColumns + `, sync_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	pendingSyncSQL = `SELECT id, created_at FROM payments
		WHERE sync_status = 'pending' ORDER BY created_at ASC LIMIT ?`

	setSyncStatusSQL = `UPDATE payments SET sync_status = ? WHERE id = ?`
)

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (core.Student, error) {
	var s core.Student
	err := row.Scan(&s.ID, &s.RollNo, &s.Name, &s.FatherName, &s.ContactNo,
		&s.Class, &s.MonthlyFee.Paise, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanPayment(row rowScanner) (core.Payment, error) {
	var p core.Payment
	var month, mode string
	err := row.Scan(&p.ID, &p.StudentID, &p.Amount.Paise, &p.PaymentDate,
		&month, &p.YearFor, &p.ReceiptNo, &mode, &p.Remarks, &p.CreatedAt)
	p.MonthFor = core.Month(month)
	p.Mode = core.PaymentMode(mode)
	return p, err
}
