package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// ListNotifications handles GET /users/{id}/notifications
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkAllNotificationsRead handles POST /users/{id}/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	resp, err := h.notifications.MarkAllRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkNotificationRead handles PATCH /notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notifications.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// DeleteNotification handles DELETE /notifications/{id}
func (h *Handler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
