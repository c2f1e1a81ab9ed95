package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// CreateReport handles POST /reports
// Stores a report with caller-supplied parameters.
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req model.CreateReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	report, err := h.reports.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// GenerateAttendanceReport handles POST /events/{id}/reports/attendance
func (h *Handler) GenerateAttendanceReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GenerateAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// GenerateSalesReport handles POST /events/{id}/reports/sales
func (h *Handler) GenerateSalesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.GenerateSales(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// ListEventReports handles GET /events/{id}/reports
func (h *Handler) ListEventReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}

// ListOrganizerReports handles GET /users/{id}/reports
// Returns the reports kept for an organizer, newest first.
func (h *Handler) ListOrganizerReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.ListByOrganizer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	writeJSON(w, http.StatusOK, reports)
}
