package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
)

// NewRouter builds the chi router with the global middleware stack and
// every API route.
func NewRouter(h *Handler, logger *zap.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(logger))          // structured access log
	r.Use(m.Middleware)            // request counters and latency
	r.Use(CORS)                    // permissive CORS for browser clients

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", m.Handler())

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Patch("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
			r.Get("/wallet", h.GetBalance)
			r.Post("/wallet/deposit", h.Deposit)
			r.Get("/wallet/transactions", h.ListTransactions)
			r.Get("/registrations", h.ListUserRegistrations)
			r.Get("/notifications", h.ListNotifications)
			r.Post("/notifications/read-all", h.MarkAllNotificationsRead)
			r.Get("/reports", h.ListOrganizerReports)
		})
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.CreateEvent)
		r.Get("/", h.ListEvents)
		r.Get("/search", h.SearchEvents)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetEvent)
			r.Patch("/", h.UpdateEvent)
			r.Delete("/", h.DeleteEvent)
			r.Post("/deactivate", h.DeactivateEvent)
			r.Get("/summary", h.EventSummary)
			r.Get("/registrations", h.ListEventRegistrations)
			r.Get("/payments", h.ListEventPayments)
			r.Get("/reports", h.ListEventReports)
			r.Post("/reports/attendance", h.GenerateAttendanceReport)
			r.Post("/reports/sales", h.GenerateSalesReport)
		})
	})

	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", h.CreateRegistration)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetRegistration)
			r.Post("/cancel", h.CancelRegistration)
			r.Patch("/status", h.UpdateRegistrationStatus)
			r.Get("/payment", h.GetPayment)
			r.Post("/refund", h.RefundPayment)
		})
	})

	r.Post("/payments", h.CreatePayment)
	r.Post("/reports", h.CreateReport)

	r.Route("/notifications/{id}", func(r chi.Router) {
		r.Patch("/read", h.MarkNotificationRead)
		r.Delete("/", h.DeleteNotification)
	})

	return r
}
