package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ModeCash         PaymentMode = "cash"
	ModeUPI          PaymentMode = "upi"
	ModeBankTransfer PaymentMode = "bank_transfer"
	ModeCheque       PaymentMode = "cheque"
)

type (
	PaymentMode string

	// Student is a registered student. ID is assigned by the store;
	// RollNo is the human-assigned identifier and is unique.
	Student struct {
		ID         string
		RollNo     string
		Name       string
		FatherName string
		ContactNo  string
		Class      string
		MonthlyFee Money
		Address    string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// Payment records one fee payment for one (student, month, year) period.
	// Payments are immutable once recorded.
	Payment struct {
		ID          string
		StudentID   string
		Amount      Money
		PaymentDate time.Time
		MonthFor    Month
		YearFor     int
		ReceiptNo   string
		Mode        PaymentMode
		Remarks     string
		CreatedAt   time.Time
	}

	// StudentUpdate carries a partial field replacement for a student.
	// Nil fields are left untouched; RollNo is intentionally absent.
	StudentUpdate struct {
		Name       *string
		FatherName *string
		ContactNo  *string
		Class      *string
		MonthlyFee *Money
		Address    *string
	}
)

var (
	ErrDuplicateRollNo    = errors.New("roll number already exists")
	ErrDuplicatePayment   = errors.New("payment already recorded for this month")
	ErrDuplicateReceiptNo = errors.New("receipt number already exists")
	ErrStudentNotFound    = errors.New("student not found")

	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidFee      = errors.New("invalid monthly fee")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidMode     = errors.New("invalid payment mode")
	ErrEmptyRollNo     = errors.New("empty roll number")
	ErrEmptyName       = errors.New("empty student name")
	ErrEmptyFatherName = errors.New("empty father name")
	ErrEmptyContactNo  = errors.New("empty contact number")
	ErrEmptyClass      = errors.New("empty class")
	ErrEmptyStudentID  = errors.New("empty student id")
)

func (m PaymentMode) Valid() bool {
	switch m {
	case ModeCash, ModeUPI, ModeBankTransfer, ModeCheque:
		return true
	default:
		return false
	}
}

// PaymentModes lists the accepted modes in display order.
func PaymentModes() []PaymentMode {
	return []PaymentMode{ModeCash, ModeUPI, ModeBankTransfer, ModeCheque}
}

// Validate checks the fields supplied at registration time. ID and
// timestamps are store-assigned and not inspected.
func (s Student) Validate() error {
	if strings.TrimSpace(s.RollNo) == "" {
		return ErrEmptyRollNo
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.FatherName) == "" {
		return ErrEmptyFatherName
	}
	if strings.TrimSpace(s.ContactNo) == "" {
		return ErrEmptyContactNo
	}
	if strings.TrimSpace(s.Class) == "" {
		return ErrEmptyClass
	}
	if s.MonthlyFee.Paise < 0 {
		return ErrInvalidFee
	}
	return nil
}

// Validate checks the fields supplied when recording a payment. ID,
// ReceiptNo, PaymentDate and CreatedAt are assigned later.
func (p Payment) Validate() error {
	if strings.TrimSpace(p.StudentID) == "" {
		return ErrEmptyStudentID
	}
	if p.Amount.Paise <= 0 {
		return ErrInvalidAmount
	}
	if !p.MonthFor.Valid() {
		return ErrInvalidMonth
	}
	if p.YearFor < 2000 || p.YearFor > 2100 {
		return ErrInvalidYear
	}
	if !p.Mode.Valid() {
		return ErrInvalidMode
	}
	return nil
}

// Apply copies the non-nil fields of u onto s and returns the result.
func (u StudentUpdate) Apply(s Student) Student {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.FatherName != nil {
		s.FatherName = *u.FatherName
	}
	if u.ContactNo != nil {
		s.ContactNo = *u.ContactNo
	}
	if u.Class != nil {
		s.Class = *u.Class
	}
	if u.MonthlyFee != nil {
		s.MonthlyFee = *u.MonthlyFee
	}
	if u.Address != nil {
		s.Address = *u.Address
	}
	return s
}
