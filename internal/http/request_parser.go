// Request parsing and validation helpers shared by the form handlers.
package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"feesbook/internal/core"
)

// PeriodParams holds a parsed fee period from request parameters.
type PeriodParams struct {
	Month core.Month
	Year  int
}

// ParsePeriodParams extracts month and year from query or form values.
// Missing parameters default to the current period; a parameter that is
// present but unparsable is an error, so a typo never lands on the
// wrong period. The month is accepted either as an English name
// ("March") or a 1-based number ("3").
func ParsePeriodParams(values url.Values, now time.Time) (PeriodParams, error) {
	month, year := core.CurrentPeriod(now)
	params := PeriodParams{Month: month, Year: year}

	if v := strings.TrimSpace(values.Get("month")); v != "" {
		if m, err := core.ParseMonth(v); err == nil {
			params.Month = m
		} else if idx, err := strconv.Atoi(v); err == nil && idx >= 1 && idx <= 12 {
			params.Month = core.MonthOf(time.Month(idx))
		} else {
			return PeriodParams{}, fmt.Errorf("unknown month %q", v)
		}
	}
	if v := strings.TrimSpace(values.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 2000 || y > 2100 {
			return PeriodParams{}, fmt.Errorf("year %q out of range", v)
		}
		params.Year = y
	}

	return params, nil
}

// studentForm carries the student creation fields from the admission form.
type studentForm struct {
	RollNo     string `validate:"required,max=20"`
	Name       string `validate:"required,max=100"`
	FatherName string `validate:"required,max=100"`
	ContactNo  string `validate:"required,min=7,max=15"`
	Class      string `validate:"required,max=30"`
	MonthlyFee string `validate:"required"`
	Address    string `validate:"omitempty,max=200"`
}

func studentFormFrom(form url.Values) studentForm {
	return studentForm{
		RollNo:     sanitizeInput(form.Get("roll_no")),
		Name:       sanitizeInput(form.Get("name")),
		FatherName: sanitizeInput(form.Get("father_name")),
		ContactNo:  sanitizeInput(form.Get("contact_no")),
		Class:      sanitizeInput(form.Get("class")),
		MonthlyFee: strings.TrimSpace(form.Get("monthly_fee")),
		Address:    sanitizeInput(form.Get("address")),
	}
}

// paymentForm carries the payment recording fields.
type paymentForm struct {
	StudentID string `validate:"required,uuid4"`
	Amount    string `validate:"required"`
	Month     string `validate:"required"`
	Year      int    `validate:"required,gte=2000,lte=2100"`
	Mode      string `validate:"required,oneof=cash upi bank_transfer cheque"`
	Remarks   string `validate:"omitempty,max=200"`
}

func paymentFormFrom(form url.Values, now time.Time) (paymentForm, error) {
	period, err := ParsePeriodParams(form, now)
	if err != nil {
		return paymentForm{}, err
	}
	mode := strings.TrimSpace(form.Get("mode"))
	if mode == "" {
		mode = string(core.ModeCash)
	}
	return paymentForm{
		StudentID: strings.TrimSpace(form.Get("student_id")),
		Amount:    strings.TrimSpace(form.Get("amount")),
		Month:     string(period.Month),
		Year:      period.Year,
		Mode:      mode,
		Remarks:   sanitizeInput(form.Get("remarks")),
	}, nil
}

// studentUpdateFrom builds a partial update from the form, touching only
// the fields that were submitted.
func studentUpdateFrom(form url.Values) (core.StudentUpdate, error) {
	var u core.StudentUpdate

	set := func(key string, dst **string) {
		if _, ok := form[key]; ok {
			v := sanitizeInput(form.Get(key))
			*dst = &v
		}
	}
	set("name", &u.Name)
	set("father_name", &u.FatherName)
	set("contact_no", &u.ContactNo)
	set("class", &u.Class)
	set("address", &u.Address)

	if _, ok := form["monthly_fee"]; ok {
		paise, err := core.ParseDecimalToPaise(strings.TrimSpace(form.Get("monthly_fee")))
		if err != nil {
			return core.StudentUpdate{}, err
		}
		fee := core.Money{Paise: paise}
		u.MonthlyFee = &fee
	}

	return u, nil
}
