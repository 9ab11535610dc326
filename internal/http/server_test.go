package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"feesbook/internal/core"
	"feesbook/internal/ledger"
	"feesbook/internal/receipt"
	"feesbook/internal/registry"
	"feesbook/internal/stats"
	"feesbook/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	ctx := context.Background()
	st := memory.New()

	reg, err := registry.New(ctx, st)
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	led, err := ledger.NewAt(ctx, st, func() time.Time {
		return time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)
	}, 1)
	if err != nil {
		t.Fatalf("ledger.NewAt: %v", err)
	}
	renderer, err := receipt.NewRenderer(receipt.Institute{Name: "Test Tuition Centre"})
	if err != nil {
		t.Fatalf("receipt.NewRenderer: %v", err)
	}

	s := NewServer(":0", Deps{
		Registry:  reg,
		Ledger:    led,
		Stats:     stats.New(reg, led),
		Receipts:  renderer,
		Institute: receipt.Institute{Name: "Test Tuition Centre"},
	})
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func postForm(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(w, req)
	return w
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(w, req)
	return w
}

func studentPayload(rollNo string) url.Values {
	return url.Values{
		"roll_no":     {rollNo},
		"name":        {"Aarav Sharma"},
		"father_name": {"Vikram Sharma"},
		"contact_no":  {"9876543210"},
		"class":       {"8th"},
		"monthly_fee": {"1500"},
		"address":     {"12 MG Road"},
	}
}

func TestCreateStudent(t *testing.T) {
	s := newTestServer(t)

	w := postForm(s, "/students", studentPayload("R-001"))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("HX-Trigger"), `"student:created"`) {
		t.Errorf("missing student:created trigger: %s", w.Header().Get("HX-Trigger"))
	}
	if len(s.registry.List()) != 1 {
		t.Fatalf("registry size = %d, want 1", len(s.registry.List()))
	}
}

func TestCreateStudentDuplicateRollNo(t *testing.T) {
	s := newTestServer(t)

	if w := postForm(s, "/students", studentPayload("R-001")); w.Code != http.StatusOK {
		t.Fatalf("first create status = %d", w.Code)
	}
	w := postForm(s, "/students", studentPayload("R-001"))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "R-001") {
		t.Errorf("conflict body should name the roll number: %s", w.Body.String())
	}
}

func TestCreateStudentValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(url.Values)
	}{
		{"missing name", func(f url.Values) { f.Del("name") }},
		{"short contact", func(f url.Values) { f.Set("contact_no", "123") }},
		{"bad fee", func(f url.Values) { f.Set("monthly_fee", "abc") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := studentPayload("R-00x")
			tt.mutate(form)
			w := postForm(s, "/students", form)
			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
			}
		})
	}
}

func TestUpdateStudent(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID

	w := postForm(s, "/students/update", url.Values{
		"id":          {id},
		"name":        {"Renamed"},
		"monthly_fee": {"1800"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	got, _ := s.registry.Find(id)
	if got.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", got.Name)
	}
	if got.MonthlyFee.Paise != 180000 {
		t.Errorf("MonthlyFee = %d, want 180000", got.MonthlyFee.Paise)
	}
	if got.RollNo != "R-001" {
		t.Errorf("RollNo changed to %q", got.RollNo)
	}
}

func TestUpdateStudentNotFound(t *testing.T) {
	s := newTestServer(t)

	w := postForm(s, "/students/update", url.Values{
		"id":   {"11111111-2222-4333-8444-555555555555"},
		"name": {"Ghost"},
	})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestDeleteStudentRemovesPayments(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID

	if w := postForm(s, "/payments", paymentPayload(id)); w.Code != http.StatusOK {
		t.Fatalf("payment status = %d, body = %s", w.Code, w.Body.String())
	}
	w := postForm(s, "/students/delete", url.Values{"id": {id}})

	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if len(s.registry.List()) != 0 {
		t.Errorf("registry size = %d, want 0", len(s.registry.List()))
	}
	if len(s.ledger.List()) != 0 {
		t.Errorf("ledger size = %d after cascade, want 0", len(s.ledger.List()))
	}
}

func paymentPayload(studentID string) url.Values {
	return url.Values{
		"student_id": {studentID},
		"amount":     {"1500"},
		"month":      {"March"},
		"year":       {"2025"},
		"mode":       {"upi"},
	}
}

func TestCreatePayment(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID

	w := postForm(s, "/payments", paymentPayload(id))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	trigger := w.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, `"payment:recorded"`) {
		t.Errorf("missing payment:recorded trigger: %s", trigger)
	}

	payments := s.ledger.ListForStudent(id)
	if len(payments) != 1 {
		t.Fatalf("payments = %d, want 1", len(payments))
	}
	p := payments[0]
	if !core.ValidReceiptNo(p.ReceiptNo) {
		t.Errorf("ReceiptNo = %q, not a valid receipt number", p.ReceiptNo)
	}
	if !strings.Contains(w.Body.String(), p.ReceiptNo) {
		t.Errorf("body should link the receipt: %s", w.Body.String())
	}
	if p.Mode != core.ModeUPI {
		t.Errorf("Mode = %q, want upi", p.Mode)
	}
}

func TestCreatePaymentDuplicatePeriod(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID

	postForm(s, "/payments", paymentPayload(id))
	w := postForm(s, "/payments", paymentPayload(id))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	if !strings.Contains(w.Body.String(), "already recorded") {
		t.Errorf("conflict body = %s", w.Body.String())
	}
}

func TestCreatePaymentMalformedPeriod(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown month name", "month", "Smarch"},
		{"month number out of range", "month", "13"},
		{"year out of range", "year", "1899"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := paymentPayload(id)
			payload.Set(tt.key, tt.value)

			w := postForm(s, "/payments", payload)

			if w.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
			}
			if len(s.ledger.ListForStudent(id)) != 0 {
				t.Errorf("payment recorded despite malformed period")
			}
		})
	}
}

func TestCreatePaymentUnknownStudent(t *testing.T) {
	s := newTestServer(t)

	w := postForm(s, "/payments", paymentPayload("11111111-2222-4333-8444-555555555555"))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestReceiptEndpoint(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID
	postForm(s, "/payments", paymentPayload(id))
	no := s.ledger.ListForStudent(id)[0].ReceiptNo

	w := get(s, "/receipts?no="+no)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{no, "Aarav Sharma", "Test Tuition Centre", "₹1,500"} {
		if !strings.Contains(body, want) {
			t.Errorf("receipt missing %q", want)
		}
	}
}

func TestReceiptEndpointRejectsBadNumber(t *testing.T) {
	s := newTestServer(t)

	if w := get(s, "/receipts?no=not-a-receipt"); w.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	if w := get(s, "/receipts?no=RCP250307999"); w.Code != http.StatusNotFound {
		t.Errorf("unknown receipt status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestMonthOverviewPartial(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID
	postForm(s, "/payments", paymentPayload(id))

	w := get(s, "/ui/month-overview?month=March&year=2025")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"March 2025", "₹1,500", "₹0"} {
		if !strings.Contains(body, want) {
			t.Errorf("overview missing %q: %s", want, body)
		}
	}
}

func TestMonthOverviewMalformedPeriod(t *testing.T) {
	s := newTestServer(t)

	w := get(s, "/ui/month-overview?month=Smarch")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestStudentsTablePartial(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID
	postForm(s, "/payments", paymentPayload(id))

	w := get(s, "/ui/students?month=March&year=2025")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Paid") {
		t.Errorf("paid badge missing: %s", w.Body.String())
	}

	w = get(s, "/ui/students?month=April&year=2025")
	if !strings.Contains(w.Body.String(), "Due") {
		t.Errorf("due badge missing for unpaid period: %s", w.Body.String())
	}
}

func TestPaymentHistoryPartial(t *testing.T) {
	s := newTestServer(t)
	postForm(s, "/students", studentPayload("R-001"))
	id := s.registry.List()[0].ID
	postForm(s, "/payments", paymentPayload(id))

	w := get(s, "/ui/payments?student_id="+id)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "March 2025") || !strings.Contains(body, "₹1,500") {
		t.Errorf("history missing payment row: %s", body)
	}
}

func TestIndexServesPage(t *testing.T) {
	s := newTestServer(t)

	w := get(s, "/")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Test Tuition Centre") {
		t.Errorf("index missing institute name")
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if w := get(s, "/healthz"); w.Code != http.StatusOK {
		t.Errorf("healthz = %d", w.Code)
	}
	if w := get(s, "/readyz"); w.Code != http.StatusOK {
		t.Errorf("readyz = %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	if w := get(s, "/students"); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /students = %d, want 405", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/ui/month-overview", nil)
	w := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ui/month-overview = %d, want 405", w.Code)
	}
}
