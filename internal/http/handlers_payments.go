package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"feesbook/internal/core"
)

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	form, err := paymentFormFrom(r.Form, time.Now())
	if err != nil {
		UnprocessableEntityError("Invalid fee period: " + err.Error()).Write(w)
		return
	}
	if err := s.validate.Struct(form); err != nil {
		UnprocessableEntityError("Invalid payment data: " + err.Error()).Write(w)
		return
	}

	amountPaise, err := core.ParseDecimalToPaise(form.Amount)
	if err != nil || amountPaise <= 0 {
		UnprocessableEntityError("Invalid amount").Write(w)
		return
	}

	student, ok := s.registry.Find(form.StudentID)
	if !ok {
		NotFoundError("Student not found").Write(w)
		return
	}

	candidate := core.Payment{
		StudentID: student.ID,
		Amount:    core.Money{Paise: amountPaise},
		MonthFor:  core.Month(form.Month),
		YearFor:   form.Year,
		Mode:      core.PaymentMode(form.Mode),
		Remarks:   form.Remarks,
	}

	payment, err := s.ledger.Add(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, core.ErrDuplicatePayment) {
			ConflictError(fmt.Sprintf("Payment for %s %s %d is already recorded",
				student.Name, form.Month, form.Year)).Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to record payment",
			"error", err,
			"student_id", student.ID,
			"month", form.Month,
			"year", form.Year,
			"component", "payment_handler",
			"operation", "create")
		InternalServerError("Error recording payment").Write(w)
		return
	}

	s.structLog.LogPaymentRecorded(r.Context(), payment.ID, payment.ReceiptNo,
		payment.Amount.Paise, string(payment.Mode))

	if s.publisher != nil {
		if err := s.publisher.PublishPaymentSync(r.Context(), payment.ID); err != nil {
			// Register sync is best-effort; the pending scan picks it up later.
			slog.WarnContext(r.Context(), "Failed to publish payment sync message",
				"error", err,
				"payment_id", payment.ID,
				"component", "payment_handler")
		}
	}

	successMsg := fmt.Sprintf("Payment of %s recorded for %s (%s %d), receipt %s",
		payment.Amount.String(), student.Name, payment.MonthFor, payment.YearFor, payment.ReceiptNo)

	NewHTMXResponse().
		TriggerPaymentRecorded(payment.YearFor, string(payment.MonthFor)).
		TriggerOverviewRefresh(payment.YearFor, string(payment.MonthFor)).
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		BodyHTML(fmt.Sprintf(`<div class="success">%s <a href="/receipts?no=%s" target="_blank">Print receipt</a></div>`,
			template.HTMLEscapeString(successMsg), template.HTMLEscapeString(payment.ReceiptNo))).
		Write(w)
}

func (s *Server) handleReceipt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	no := strings.TrimSpace(r.URL.Query().Get("no"))
	if !core.ValidReceiptNo(no) {
		BadRequestError("Invalid receipt number").Write(w)
		return
	}

	var payment core.Payment
	found := false
	for _, p := range s.ledger.List() {
		if p.ReceiptNo == no {
			payment = p
			found = true
			break
		}
	}
	if !found {
		NotFoundError("Receipt not found").Write(w)
		return
	}

	// The student may have been removed; render with what is left.
	student, _ := s.registry.Find(payment.StudentID)

	page, err := s.receipts.Render(payment, student)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to render receipt",
			"error", err,
			"receipt_no", no,
			"component", "receipt_handler",
			"operation", "render")
		InternalServerError("Error rendering receipt").Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *Server) handlePaymentHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	studentID := strings.TrimSpace(r.URL.Query().Get("student_id"))
	if studentID == "" {
		BadRequestError("Missing student id").Write(w)
		return
	}

	student, ok := s.registry.Find(studentID)
	if !ok {
		NotFoundError("Student not found").Write(w)
		return
	}

	payments := s.ledger.ListForStudent(studentID)

	type paymentRow struct {
		ReceiptNo string
		Period    string
		Amount    string
		Mode      string
		Date      string
		Remarks   string
	}
	data := struct {
		Student  core.Student
		Fee      string
		Payments []paymentRow
	}{
		Student: student,
		Fee:     student.MonthlyFee.String(),
	}
	for _, p := range payments {
		data.Payments = append(data.Payments, paymentRow{
			ReceiptNo: p.ReceiptNo,
			Period:    fmt.Sprintf("%s %d", p.MonthFor, p.YearFor),
			Amount:    p.Amount.String(),
			Mode:      string(p.Mode),
			Date:      p.PaymentDate.Format("02 Jan 2006"),
			Remarks:   p.Remarks,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "payment_history.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template error",
			"error", err,
			"template", "payment_history.html",
			"component", "payment_handler")
	}
}
