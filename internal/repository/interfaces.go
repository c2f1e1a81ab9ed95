// Package repository defines the ledger store used by the ticketing core and
// implements it on PostgreSQL with pgx. Every multi-record change runs inside
// one unit of work obtained from TransactionManager.
package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// UserQueries covers users and their wallet balance.
type UserQueries interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error
	// CountUserHoldings returns how many registrations the user has in any
	// status plus how many events the user organizes.
	CountUserHoldings(ctx context.Context, userID string) (int, error)

	// CreditBalance adds amount to the balance and returns the new balance.
	CreditBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	// DebitBalance subtracts amount only if the balance covers it. It fails
	// with model.ErrInsufficientFunds otherwise and leaves the row untouched.
	DebitBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
}

// TransactionQueries covers the append-only wallet audit log.
type TransactionQueries interface {
	CreateTransaction(ctx context.Context, t *model.Transaction) error
	// ListTransactions returns newest first, ties broken by insertion order.
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
}

// EventQueries covers events, their tickets and the capacity counters.
type EventQueries interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	CreateTicket(ctx context.Context, t *model.Ticket) error
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	// GetEventForUpdate locks the event row until the unit of work ends.
	GetEventForUpdate(ctx context.Context, id string) (*model.Event, error)
	ListEvents(ctx context.Context) ([]model.Event, error)
	// SearchEvents applies every filter except the price range.
	SearchEvents(ctx context.Context, f model.EventSearch) ([]model.Event, error)
	UpdateEvent(ctx context.Context, e *model.Event) error
	// DeleteEvent removes the event with its tickets, registrations,
	// payments and reports.
	DeleteEvent(ctx context.Context, id string) error

	// GetTicket returns the ticket only when it belongs to eventID.
	GetTicket(ctx context.Context, eventID, ticketID string) (*model.Ticket, error)
	// TakeTicket decrements remaining_count when it is positive, otherwise
	// it fails with model.ErrSoldOut.
	TakeTicket(ctx context.Context, eventID, ticketID string) error
	// ReturnTicket increments remaining_count while it is below quantity.
	ReturnTicket(ctx context.Context, ticketID string) error
	// OccupySeat increments current_capacity while it is below
	// max_capacity, otherwise it fails with model.ErrSoldOut.
	OccupySeat(ctx context.Context, eventID string) error
	// ReleaseSeat decrements current_capacity while it is positive.
	ReleaseSeat(ctx context.Context, eventID string) error
}

// RegistrationQueries covers registrations. Reads populate Ticket and
// Payment; User and Event are left to the caller.
type RegistrationQueries interface {
	CreateRegistration(ctx context.Context, r *model.Registration) error
	GetRegistration(ctx context.Context, id string) (*model.Registration, error)
	// GetRegistrationForUpdate locks the registration row until the unit of
	// work ends.
	GetRegistrationForUpdate(ctx context.Context, id string) (*model.Registration, error)
	// FindLiveRegistration returns the non-cancelled registration of the
	// user for the event, or model.ErrNotFound.
	FindLiveRegistration(ctx context.Context, userID, eventID string) (*model.Registration, error)
	ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	ListRegistrationsByUser(ctx context.Context, userID string) ([]model.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id string, status model.RegistrationStatus) error
}

// PaymentQueries covers wallet payments.
type PaymentQueries interface {
	// CreatePayment fails with model.ErrAlreadyPaid when the registration
	// already has a payment.
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPaymentByRegistration(ctx context.Context, registrationID string) (*model.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error
	ListPaymentsByEvent(ctx context.Context, eventID string) ([]model.Payment, error)
}

// NotificationQueries covers user notifications.
type NotificationQueries interface {
	CreateNotification(ctx context.Context, n *model.Notification) error
	// ListNotifications returns newest first.
	ListNotifications(ctx context.Context, userID string) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error)
	DeleteNotification(ctx context.Context, id string) error
}

// ReportQueries covers stored event reports.
type ReportQueries interface {
	CreateReport(ctx context.Context, r *model.Report) error
	// ListReportsByEvent and ListReportsByOrganizer return newest first.
	ListReportsByEvent(ctx context.Context, eventID string) ([]model.Report, error)
	ListReportsByOrganizer(ctx context.Context, organizerID string) ([]model.Report, error)
}

// Queries is every read and write primitive of the ledger store. A Queries
// obtained from WithTransaction is bound to that unit of work.
type Queries interface {
	UserQueries
	TransactionQueries
	EventQueries
	RegistrationQueries
	PaymentQueries
	NotificationQueries
	ReportQueries
}

// TransactionManager defines methods for database transaction management.
type TransactionManager interface {
	// WithTransaction runs fn in a unit of work. All writes made through q
	// commit when fn returns nil and roll back otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
}

// Store is the ledger store: autocommit queries plus units of work.
type Store interface {
	Queries
	TransactionManager
}
