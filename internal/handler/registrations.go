package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// CreateRegistration handles POST /registrations
// Takes one ticket and one seat for the user; the registration starts PENDING.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRegistrationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	reg, err := h.registrations.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// GetRegistration handles GET /registrations/{id}
func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CancelRegistration handles POST /registrations/{id}/cancel
// A completed payment is refunded to the wallet as part of the cancellation.
func (h *Handler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrations.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// UpdateRegistrationStatus handles PATCH /registrations/{id}/status
func (h *Handler) UpdateRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRegistrationStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	reg, err := h.registrations.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// CreatePayment handles POST /payments
// Charges the ticket price to the registrant's wallet.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	res, err := h.payments.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// GetPayment handles GET /registrations/{id}/payment
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.GetByRegistration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RefundPayment handles POST /registrations/{id}/refund
func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	res, err := h.payments.Refund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
