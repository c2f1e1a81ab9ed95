// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/service"
)

// Handler holds all HTTP handlers for the ticketing API.
type Handler struct {
	users         *service.UserService
	events        *service.EventService
	registrations *service.RegistrationService
	payments      *service.PaymentService
	wallet        *service.WalletService
	notifications *service.NotificationService
	reports       *service.ReportService
	logger        *zap.Logger
}

// Services groups the services the handlers call.
type Services struct {
	Users         *service.UserService
	Events        *service.EventService
	Registrations *service.RegistrationService
	Payments      *service.PaymentService
	Wallet        *service.WalletService
	Notifications *service.NotificationService
	Reports       *service.ReportService
}

// New constructs a Handler.
func New(svc Services, logger *zap.Logger) *Handler {
	return &Handler{
		users:         svc.Users,
		events:        svc.Events,
		registrations: svc.Registrations,
		payments:      svc.Payments,
		wallet:        svc.Wallet,
		notifications: svc.Notifications,
		reports:       svc.Reports,
		logger:        logger,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps a domain error to its HTTP status. Unclassified
// errors are logged and reported without detail.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, "insufficient wallet balance: please add funds to your wallet and try again")
	case errors.Is(err, model.ErrSoldOut),
		errors.Is(err, model.ErrDuplicateRegistration),
		errors.Is(err, model.ErrInvalidState),
		errors.Is(err, model.ErrAlreadyPaid),
		errors.Is(err, model.ErrAlreadyRefunded),
		errors.Is(err, model.ErrNoPayment):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) badBody(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
