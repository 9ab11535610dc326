package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"feesbook/internal/core"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	month, year := core.CurrentPeriod(time.Now())

	data := struct {
		InstituteName    string
		InstituteAddress string
		Months           []core.Month
		Modes            []core.PaymentMode
		CurrentMonth     core.Month
		CurrentYear      int
		Students         []core.Student
	}{
		InstituteName:    s.institute.Name,
		InstituteAddress: s.institute.Address,
		Months:           core.Months(),
		Modes:            core.PaymentModes(),
		CurrentMonth:     month,
		CurrentYear:      year,
		Students:         s.registry.List(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template error",
			"error", err,
			"template", "index.html",
			"component", "dashboard_handler")
	}
}

func (s *Server) handleMonthOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	period, err := ParsePeriodParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError("Invalid fee period: " + err.Error()).Write(w)
		return
	}
	summary := s.stats.Summary(period.Month, period.Year)

	data := struct {
		Month           core.Month
		Year            int
		TotalStudents   int
		TotalMonthlyFee string
		ReceivedFee     string
		PendingFee      string
	}{
		Month:           summary.Month,
		Year:            summary.Year,
		TotalStudents:   summary.TotalStudents,
		TotalMonthlyFee: summary.TotalMonthlyFee.String(),
		ReceivedFee:     summary.ReceivedFee.String(),
		PendingFee:      summary.PendingFee.String(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "month_overview.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template error",
			"error", err,
			"template", "month_overview.html",
			"component", "dashboard_handler")
	}
}

func (s *Server) handleStudentsTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowedError("GET").Write(w)
		return
	}

	period, err := ParsePeriodParams(r.URL.Query(), time.Now())
	if err != nil {
		BadRequestError("Invalid fee period: " + err.Error()).Write(w)
		return
	}

	type studentRow struct {
		ID         string
		RollNo     string
		Name       string
		FatherName string
		ContactNo  string
		Class      string
		MonthlyFee string
		Paid       bool
	}
	data := struct {
		Month    core.Month
		Year     int
		Period   string
		Students []studentRow
	}{
		Month:  period.Month,
		Year:   period.Year,
		Period: fmt.Sprintf("%s %d", period.Month, period.Year),
	}
	for _, st := range s.registry.List() {
		data.Students = append(data.Students, studentRow{
			ID:         st.ID,
			RollNo:     st.RollNo,
			Name:       st.Name,
			FatherName: st.FatherName,
			ContactNo:  st.ContactNo,
			Class:      st.Class,
			MonthlyFee: st.MonthlyFee.String(),
			Paid:       s.ledger.HasPaid(st.ID, period.Month, period.Year),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "students_table.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Template error",
			"error", err,
			"template", "students_table.html",
			"component", "dashboard_handler")
	}
}
