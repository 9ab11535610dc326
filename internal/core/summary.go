package core

// Summary is the derived monthly aggregate shown on the dashboard.
type Summary struct {
	Month Month
	Year  int

	TotalStudents   int
	TotalMonthlyFee Money // expected if every student pays this period
	ReceivedFee     Money // payments recorded against this period
	PendingFee      Money // shortfall, clamped at zero
}

// Summarize derives the aggregate for one fee period from the current
// student and payment snapshots. It is a pure function of its inputs.
func Summarize(students []Student, payments []Payment, month Month, year int) Summary {
	s := Summary{Month: month, Year: year, TotalStudents: len(students)}
	for _, st := range students {
		s.TotalMonthlyFee.Paise += st.MonthlyFee.Paise
	}
	for _, p := range payments {
		if p.MonthFor == month && p.YearFor == year {
			s.ReceivedFee.Paise += p.Amount.Paise
		}
	}
	// Overpayment is not reported as negative pending.
	if pending := s.TotalMonthlyFee.Paise - s.ReceivedFee.Paise; pending > 0 {
		s.PendingFee.Paise = pending
	}
	return s
}

// HasPaid reports whether a payment exists for the student in the
// given period. Used for the per-student paid/pending column; not part
// of the numeric summary.
func HasPaid(payments []Payment, studentID string, month Month, year int) bool {
	for _, p := range payments {
		if p.StudentID == studentID && p.MonthFor == month && p.YearFor == year {
			return true
		}
	}
	return false
}
