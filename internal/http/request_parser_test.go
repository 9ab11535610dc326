package http

import (
	"net/url"
	"testing"
	"time"

	"feesbook/internal/core"
)

var parserNow = time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)

func TestParsePeriodParams(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantMonth core.Month
		wantYear  int
		wantErr   bool
	}{
		{
			name:      "defaults to current period",
			values:    url.Values{},
			wantMonth: core.March,
			wantYear:  2025,
		},
		{
			name:      "month by name",
			values:    url.Values{"month": {"July"}, "year": {"2024"}},
			wantMonth: core.July,
			wantYear:  2024,
		},
		{
			name:      "month name is case-insensitive",
			values:    url.Values{"month": {"december"}},
			wantMonth: core.December,
			wantYear:  2025,
		},
		{
			name:      "month by number",
			values:    url.Values{"month": {"11"}},
			wantMonth: core.November,
			wantYear:  2025,
		},
		{
			name:    "unknown month is rejected",
			values:  url.Values{"month": {"Smarch"}},
			wantErr: true,
		},
		{
			name:    "month number out of range is rejected",
			values:  url.Values{"month": {"13"}},
			wantErr: true,
		},
		{
			name:    "year out of range is rejected",
			values:  url.Values{"year": {"1999"}},
			wantErr: true,
		},
		{
			name:      "whitespace is trimmed",
			values:    url.Values{"month": {" April "}, "year": {" 2026 "}},
			wantMonth: core.April,
			wantYear:  2026,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePeriodParams(tt.values, parserNow)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePeriodParams = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePeriodParams: %v", err)
			}
			if got.Month != tt.wantMonth {
				t.Errorf("Month = %q, want %q", got.Month, tt.wantMonth)
			}
			if got.Year != tt.wantYear {
				t.Errorf("Year = %d, want %d", got.Year, tt.wantYear)
			}
		})
	}
}

func TestStudentFormFrom(t *testing.T) {
	form := url.Values{
		"roll_no":     {" R-001 "},
		"name":        {"Aarav Sharma"},
		"father_name": {"Vikram Sharma"},
		"contact_no":  {"9876543210"},
		"class":       {"8th"},
		"monthly_fee": {" 1500.00 "},
		"address":     {"12 MG Road"},
	}

	got := studentFormFrom(form)

	if got.RollNo != "R-001" {
		t.Errorf("RollNo = %q, want %q", got.RollNo, "R-001")
	}
	if got.Name != "Aarav Sharma" {
		t.Errorf("Name = %q, want %q", got.Name, "Aarav Sharma")
	}
	if got.MonthlyFee != "1500.00" {
		t.Errorf("MonthlyFee = %q, want %q", got.MonthlyFee, "1500.00")
	}
	if got.Address != "12 MG Road" {
		t.Errorf("Address = %q, want %q", got.Address, "12 MG Road")
	}
}

func TestPaymentFormFrom(t *testing.T) {
	form := url.Values{
		"student_id": {"6ba7b810-9dad-41d1-80b4-00c04fd430c8"},
		"amount":     {"1500"},
		"month":      {"February"},
		"year":       {"2025"},
		"remarks":    {"partial"},
	}

	got, err := paymentFormFrom(form, parserNow)
	if err != nil {
		t.Fatalf("paymentFormFrom: %v", err)
	}

	if got.Month != "February" {
		t.Errorf("Month = %q, want %q", got.Month, "February")
	}
	if got.Year != 2025 {
		t.Errorf("Year = %d, want %d", got.Year, 2025)
	}
	if got.Mode != "cash" {
		t.Errorf("Mode = %q, want default %q", got.Mode, "cash")
	}
	if got.Remarks != "partial" {
		t.Errorf("Remarks = %q, want %q", got.Remarks, "partial")
	}
}

func TestPaymentFormFromExplicitMode(t *testing.T) {
	form := url.Values{
		"student_id": {"6ba7b810-9dad-41d1-80b4-00c04fd430c8"},
		"amount":     {"1500"},
		"mode":       {"upi"},
	}

	got, err := paymentFormFrom(form, parserNow)
	if err != nil {
		t.Fatalf("paymentFormFrom: %v", err)
	}

	if got.Mode != "upi" {
		t.Errorf("Mode = %q, want %q", got.Mode, "upi")
	}
	if got.Month != "March" || got.Year != 2025 {
		t.Errorf("period = %s %d, want March 2025", got.Month, got.Year)
	}
}

func TestStudentUpdateFrom(t *testing.T) {
	form := url.Values{
		"name":        {"New Name"},
		"monthly_fee": {"1800.50"},
	}

	u, err := studentUpdateFrom(form)
	if err != nil {
		t.Fatalf("studentUpdateFrom: %v", err)
	}

	if u.Name == nil || *u.Name != "New Name" {
		t.Errorf("Name = %v, want New Name", u.Name)
	}
	if u.MonthlyFee == nil || u.MonthlyFee.Paise != 180050 {
		t.Errorf("MonthlyFee = %v, want 180050 paise", u.MonthlyFee)
	}
	if u.FatherName != nil || u.ContactNo != nil || u.Class != nil || u.Address != nil {
		t.Error("fields not submitted should stay nil")
	}
}

func TestStudentUpdateFromBadFee(t *testing.T) {
	form := url.Values{"monthly_fee": {"abc"}}

	if _, err := studentUpdateFrom(form); err == nil {
		t.Fatal("expected error for malformed fee")
	}
}
