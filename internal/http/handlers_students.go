package http

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"feesbook/internal/core"
)

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	form := studentFormFrom(r.Form)
	if err := s.validate.Struct(form); err != nil {
		UnprocessableEntityError("Invalid student data: " + err.Error()).Write(w)
		return
	}

	feePaise, err := core.ParseDecimalToPaise(form.MonthlyFee)
	if err != nil || feePaise < 0 {
		UnprocessableEntityError("Invalid monthly fee").Write(w)
		return
	}

	candidate := core.Student{
		RollNo:     form.RollNo,
		Name:       form.Name,
		FatherName: form.FatherName,
		ContactNo:  form.ContactNo,
		Class:      form.Class,
		MonthlyFee: core.Money{Paise: feePaise},
		Address:    form.Address,
	}

	student, err := s.registry.Add(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateRollNo) {
			ConflictError("Roll number " + form.RollNo + " is already registered").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to register student",
			"error", err,
			"roll_no", form.RollNo,
			"component", "student_handler",
			"operation", "create")
		InternalServerError("Error registering student").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Student registered",
		"student_id", student.ID,
		"roll_no", student.RollNo,
		"class", student.Class,
		"monthly_fee_paise", student.MonthlyFee.Paise,
		"component", "student_handler",
		"operation", "create")

	successMsg := fmt.Sprintf("Student %s (roll no %s) registered", student.Name, student.RollNo)

	NewHTMXResponse().
		TriggerStudentCreated(student.RollNo).
		TriggerFormReset().
		TriggerSuccessNotification(successMsg).
		BodyHTML(`<div class="success">` + template.HTMLEscapeString(successMsg) + `</div>`).
		Write(w)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Missing student id").Write(w)
		return
	}

	update, err := studentUpdateFrom(r.Form)
	if err != nil {
		UnprocessableEntityError("Invalid monthly fee").Write(w)
		return
	}

	student, err := s.registry.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, core.ErrStudentNotFound) {
			NotFoundError("Student not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update student",
			"error", err,
			"student_id", id,
			"component", "student_handler",
			"operation", "update")
		InternalServerError("Error updating student").Write(w)
		return
	}

	slog.InfoContext(r.Context(), "Student updated",
		"student_id", student.ID,
		"roll_no", student.RollNo,
		"component", "student_handler",
		"operation", "update")

	NewHTMXResponse().
		TriggerStudentUpdated(student.ID).
		TriggerSuccessNotification(fmt.Sprintf("Student %s updated", student.Name)).
		BodyHTML(`<div class="success">Student updated</div>`).
		Write(w)
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		MethodNotAllowedError("POST, DELETE").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		BadRequestError("Invalid request format").Write(w)
		return
	}

	id := strings.TrimSpace(r.Form.Get("id"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("id"))
	}
	if id == "" {
		BadRequestError("Missing student id").Write(w)
		return
	}

	if err := s.registry.Delete(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrStudentNotFound) {
			NotFoundError("Student not found").Write(w)
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete student",
			"error", err,
			"student_id", id,
			"component", "student_handler",
			"operation", "delete")
		InternalServerError("Error deleting student").Write(w)
		return
	}

	// The store cascades payment deletion; pull a fresh payment snapshot.
	if err := s.ledger.Refresh(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "Failed to refresh payments after delete",
			"error", err,
			"student_id", id,
			"component", "student_handler")
	}

	slog.InfoContext(r.Context(), "Student deleted",
		"student_id", id,
		"component", "student_handler",
		"operation", "delete")

	NewHTMXResponse().
		TriggerStudentDeleted(id).
		TriggerSuccessNotification("Student removed").
		BodyHTML(``).
		Write(w)
}
