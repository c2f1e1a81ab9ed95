package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// CreateEvent handles POST /events
// Creates an event together with its ticket types.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	event, err := h.events.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns a JSON array of all events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// SearchEvents handles GET /events/search
// Query parameters: category, location, start_from, end_until (RFC 3339),
// min_price, max_price.
func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	f, err := parseSearch(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.events.Search(r.Context(), f)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func parseSearch(v url.Values) (model.EventSearch, error) {
	f := model.EventSearch{
		Category: v.Get("category"),
		Location: v.Get("location"),
	}
	for key, dst := range map[string]**time.Time{"start_from": &f.StartFrom, "end_until": &f.EndUntil} {
		if raw := v.Get(key); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return f, fmt.Errorf("%s must be an RFC 3339 timestamp", key)
			}
			*dst = &t
		}
	}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		if raw := v.Get(key); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return f, fmt.Errorf("%s must be a number", key)
			}
			*dst = &d
		}
	}
	return f, nil
}

// GetEvent handles GET /events/{id}
// Returns a single event with its tickets.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// UpdateEvent handles PATCH /events/{id}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.badBody(w, err)
		return
	}

	event, err := h.events.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeactivateEvent handles POST /events/{id}/deactivate
func (h *Handler) DeactivateEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// DeleteEvent handles DELETE /events/{id}
// Removes the event with its tickets, registrations and payments.
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EventSummary handles GET /events/{id}/summary
func (h *Handler) EventSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.events.Summary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListEventRegistrations handles GET /events/{id}/registrations
// Returns all registrations for a given event.
func (h *Handler) ListEventRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registrations.ListByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// ListEventPayments handles GET /events/{id}/payments
func (h *Handler) ListEventPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.payments.ListByEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}
