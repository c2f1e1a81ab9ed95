// Package memstore is an in-memory repository.Store. Units of work are
// serializable: each one runs on a private copy of the ledger that replaces
// the shared copy only when the work succeeds.
package memstore

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// Store guards a single ledger state. Code running inside WithTransaction
// must use the Queries it is handed, never the Store itself.
type Store struct {
	mu sync.Mutex
	st *state
}

var _ repository.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{st: newState()}
}

// WithTransaction runs fn on a private copy of the ledger and publishes the
// copy only when fn and ctx both succeed. Units of work run one at a time.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, q repository.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

func do(s *Store, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

func get[T any](s *Store, fn func(st *state) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// CreateUser inserts a user; emails are unique regardless of case.
func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	return do(s, func(st *state) error { return st.CreateUser(ctx, u) })
}

// GetUser returns a single user or model.ErrNotFound.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return get(s, func(st *state) (*model.User, error) { return st.GetUser(ctx, id) })
}

// ListUsers returns all users in creation order.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	return get(s, func(st *state) ([]model.User, error) { return st.ListUsers(ctx) })
}

// UpdateUser writes the profile fields of u.
func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	return do(s, func(st *state) error { return st.UpdateUser(ctx, u) })
}

// DeleteUser removes a user with its wallet history, notifications and reports.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return do(s, func(st *state) error { return st.DeleteUser(ctx, id) })
}

// CountUserHoldings counts the user's registrations and organized events.
func (s *Store) CountUserHoldings(ctx context.Context, userID string) (int, error) {
	return get(s, func(st *state) (int, error) { return st.CountUserHoldings(ctx, userID) })
}

// CreditBalance adds amount to the wallet balance.
func (s *Store) CreditBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return get(s, func(st *state) (decimal.Decimal, error) { return st.CreditBalance(ctx, userID, amount) })
}

// DebitBalance subtracts amount when the balance covers it.
func (s *Store) DebitBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	return get(s, func(st *state) (decimal.Decimal, error) { return st.DebitBalance(ctx, userID, amount) })
}

// CreateTransaction appends a wallet transaction.
func (s *Store) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	return do(s, func(st *state) error { return st.CreateTransaction(ctx, t) })
}

// ListTransactions returns the user's transactions newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	return get(s, func(st *state) ([]model.Transaction, error) { return st.ListTransactions(ctx, userID) })
}

// CreateEvent inserts an event without its tickets.
func (s *Store) CreateEvent(ctx context.Context, e *model.Event) error {
	return do(s, func(st *state) error { return st.CreateEvent(ctx, e) })
}

// CreateTicket inserts a ticket type of an event.
func (s *Store) CreateTicket(ctx context.Context, t *model.Ticket) error {
	return do(s, func(st *state) error { return st.CreateTicket(ctx, t) })
}

// GetEvent returns an event with its tickets.
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	return get(s, func(st *state) (*model.Event, error) { return st.GetEvent(ctx, id) })
}

// GetEventForUpdate returns an event without tickets.
func (s *Store) GetEventForUpdate(ctx context.Context, id string) (*model.Event, error) {
	return get(s, func(st *state) (*model.Event, error) { return st.GetEventForUpdate(ctx, id) })
}

// ListEvents returns all events newest first.
func (s *Store) ListEvents(ctx context.Context) ([]model.Event, error) {
	return get(s, func(st *state) ([]model.Event, error) { return st.ListEvents(ctx) })
}

// SearchEvents returns active events matching every non-price filter.
func (s *Store) SearchEvents(ctx context.Context, f model.EventSearch) ([]model.Event, error) {
	return get(s, func(st *state) ([]model.Event, error) { return st.SearchEvents(ctx, f) })
}

// UpdateEvent writes the editable fields of e.
func (s *Store) UpdateEvent(ctx context.Context, e *model.Event) error {
	return do(s, func(st *state) error { return st.UpdateEvent(ctx, e) })
}

// DeleteEvent removes an event with everything that belongs to it.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return do(s, func(st *state) error { return st.DeleteEvent(ctx, id) })
}

// GetTicket returns a ticket scoped to its event.
func (s *Store) GetTicket(ctx context.Context, eventID, ticketID string) (*model.Ticket, error) {
	return get(s, func(st *state) (*model.Ticket, error) { return st.GetTicket(ctx, eventID, ticketID) })
}

// TakeTicket decrements the remaining count or fails with model.ErrSoldOut.
func (s *Store) TakeTicket(ctx context.Context, eventID, ticketID string) error {
	return do(s, func(st *state) error { return st.TakeTicket(ctx, eventID, ticketID) })
}

// ReturnTicket increments the remaining count up to the quantity.
func (s *Store) ReturnTicket(ctx context.Context, ticketID string) error {
	return do(s, func(st *state) error { return st.ReturnTicket(ctx, ticketID) })
}

// OccupySeat takes one seat of the event or fails with model.ErrSoldOut.
func (s *Store) OccupySeat(ctx context.Context, eventID string) error {
	return do(s, func(st *state) error { return st.OccupySeat(ctx, eventID) })
}

// ReleaseSeat gives back one seat of the event.
func (s *Store) ReleaseSeat(ctx context.Context, eventID string) error {
	return do(s, func(st *state) error { return st.ReleaseSeat(ctx, eventID) })
}

// CreateRegistration inserts a registration, enforcing one live registration per user and event.
func (s *Store) CreateRegistration(ctx context.Context, r *model.Registration) error {
	return do(s, func(st *state) error { return st.CreateRegistration(ctx, r) })
}

// GetRegistration returns a registration with its ticket and payment.
func (s *Store) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	return get(s, func(st *state) (*model.Registration, error) { return st.GetRegistration(ctx, id) })
}

// GetRegistrationForUpdate is GetRegistration; units of work are already exclusive.
func (s *Store) GetRegistrationForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	return get(s, func(st *state) (*model.Registration, error) { return st.GetRegistrationForUpdate(ctx, id) })
}

// FindLiveRegistration returns the user's non-cancelled registration for the event.
func (s *Store) FindLiveRegistration(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	return get(s, func(st *state) (*model.Registration, error) { return st.FindLiveRegistration(ctx, userID, eventID) })
}

// ListRegistrationsByEvent returns the event's registrations oldest first.
func (s *Store) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return get(s, func(st *state) ([]model.Registration, error) { return st.ListRegistrationsByEvent(ctx, eventID) })
}

// ListRegistrationsByUser returns the user's registrations newest first.
func (s *Store) ListRegistrationsByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return get(s, func(st *state) ([]model.Registration, error) { return st.ListRegistrationsByUser(ctx, userID) })
}

// UpdateRegistrationStatus overwrites the status of a registration.
func (s *Store) UpdateRegistrationStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	return do(s, func(st *state) error { return st.UpdateRegistrationStatus(ctx, id, status) })
}

// CreatePayment inserts a payment or fails with model.ErrAlreadyPaid.
func (s *Store) CreatePayment(ctx context.Context, p *model.Payment) error {
	return do(s, func(st *state) error { return st.CreatePayment(ctx, p) })
}

// GetPaymentByRegistration returns the payment of a registration.
func (s *Store) GetPaymentByRegistration(ctx context.Context, registrationID string) (*model.Payment, error) {
	return get(s, func(st *state) (*model.Payment, error) { return st.GetPaymentByRegistration(ctx, registrationID) })
}

// UpdatePaymentStatus overwrites the status of a payment.
func (s *Store) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	return do(s, func(st *state) error { return st.UpdatePaymentStatus(ctx, id, status) })
}

// ListPaymentsByEvent returns the payments made for an event.
func (s *Store) ListPaymentsByEvent(ctx context.Context, eventID string) ([]model.Payment, error) {
	return get(s, func(st *state) ([]model.Payment, error) { return st.ListPaymentsByEvent(ctx, eventID) })
}

// CreateNotification inserts a notification.
func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	return do(s, func(st *state) error { return st.CreateNotification(ctx, n) })
}

// ListNotifications returns the user's notifications newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	return get(s, func(st *state) ([]model.Notification, error) { return st.ListNotifications(ctx, userID) })
}

// MarkNotificationRead flags one notification as read.
func (s *Store) MarkNotificationRead(ctx context.Context, id string) (*model.Notification, error) {
	return get(s, func(st *state) (*model.Notification, error) { return st.MarkNotificationRead(ctx, id) })
}

// MarkAllNotificationsRead flags every unread notification of the user.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	return get(s, func(st *state) (int64, error) { return st.MarkAllNotificationsRead(ctx, userID) })
}

// DeleteNotification removes a notification.
func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	return do(s, func(st *state) error { return st.DeleteNotification(ctx, id) })
}

// CreateReport inserts a report.
func (s *Store) CreateReport(ctx context.Context, r *model.Report) error {
	return do(s, func(st *state) error { return st.CreateReport(ctx, r) })
}

// ListReportsByEvent returns the event's reports newest first.
func (s *Store) ListReportsByEvent(ctx context.Context, eventID string) ([]model.Report, error) {
	return get(s, func(st *state) ([]model.Report, error) { return st.ListReportsByEvent(ctx, eventID) })
}

// ListReportsByOrganizer returns the organizer's reports newest first.
func (s *Store) ListReportsByOrganizer(ctx context.Context, organizerID string) ([]model.Report, error) {
	return get(s, func(st *state) ([]model.Report, error) { return st.ListReportsByOrganizer(ctx, organizerID) })
}
