// Package receipt renders printable fee receipts.
package receipt

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"feesbook/internal/core"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Institute identifies the tuition centre on the receipt header.
type Institute struct {
	Name    string
	Address string
}

// Renderer produces HTML receipts for recorded payments.
type Renderer struct {
	tmpl      *template.Template
	institute Institute
}

func NewRenderer(inst Institute) (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse receipt templates: %w", err)
	}
	return &Renderer{tmpl: t, institute: inst}, nil
}

type receiptData struct {
	Institute     Institute
	ReceiptNo     string
	PaymentDate   string
	RollNo        string
	StudentName   string
	FatherName    string
	Class         string
	Month         string
	Year          int
	Amount        string
	AmountInWords string
	Mode          string
	Remarks       string
}

// Render writes the receipt for a payment and its student as HTML.
func (r *Renderer) Render(p core.Payment, s core.Student) ([]byte, error) {
	data := receiptData{
		Institute:     r.institute,
		ReceiptNo:     p.ReceiptNo,
		PaymentDate:   p.PaymentDate.Format("02 Jan 2006"),
		RollNo:        s.RollNo,
		StudentName:   s.Name,
		FatherName:    s.FatherName,
		Class:         s.Class,
		Month:         string(p.MonthFor),
		Year:          p.YearFor,
		Amount:        p.Amount.String(),
		AmountInWords: AmountInWords(p.Amount),
		Mode:          modeLabel(p.Mode),
		Remarks:       p.Remarks,
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "receipt.html", data); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", p.ReceiptNo, err)
	}
	return buf.Bytes(), nil
}

func modeLabel(m core.PaymentMode) string {
	switch m {
	case core.ModeCash:
		return "Cash"
	case core.ModeUPI:
		return "UPI"
	case core.ModeBankTransfer:
		return "Bank Transfer"
	case core.ModeCheque:
		return "Cheque"
	default:
		return string(m)
	}
}
