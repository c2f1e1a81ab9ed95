package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// state is one consistent version of the ledger. It implements
// repository.Queries without locking; Store guards it.
type state struct {
	seq int64
	// order records insertion sequence per id, used to break timestamp ties.
	order map[string]int64

	users         map[string]model.User
	events        map[string]model.Event
	tickets       map[string]model.Ticket
	registrations map[string]model.Registration
	payments      map[string]model.Payment
	paymentByReg  map[string]string
	transactions  []model.Transaction
	notifications map[string]model.Notification
	reports       map[string]model.Report
}

var _ repository.Queries = (*state)(nil)

func newState() *state {
	return &state{
		order:         map[string]int64{},
		users:         map[string]model.User{},
		events:        map[string]model.Event{},
		tickets:       map[string]model.Ticket{},
		registrations: map[string]model.Registration{},
		payments:      map[string]model.Payment{},
		paymentByReg:  map[string]string{},
		notifications: map[string]model.Notification{},
		reports:       map[string]model.Report{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// clone returns a copy that can be mutated without affecting s. Stored
// values carry no nested pointers and their byte slices are never written
// in place, so a shallow copy of each map is enough.
func (s *state) clone() *state {
	return &state{
		seq:           s.seq,
		order:         cloneMap(s.order),
		users:         cloneMap(s.users),
		events:        cloneMap(s.events),
		tickets:       cloneMap(s.tickets),
		registrations: cloneMap(s.registrations),
		payments:      cloneMap(s.payments),
		paymentByReg:  cloneMap(s.paymentByReg),
		transactions:  append([]model.Transaction(nil), s.transactions...),
		notifications: cloneMap(s.notifications),
		reports:       cloneMap(s.reports),
	}
}

func (s *state) track(id string) {
	s.seq++
	s.order[id] = s.seq
}

func notFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, model.ErrNotFound)
}

// users

func (s *state) CreateUser(_ context.Context, u *model.User) error {
	for _, other := range s.users {
		if strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("email %q already in use: %w", u.Email, model.ErrInvalidInput)
		}
	}
	s.users[u.ID] = *u
	s.track(u.ID)
	return nil
}

func (s *state) GetUser(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (s *state) ListUsers(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out, nil
}

func (s *state) UpdateUser(_ context.Context, u *model.User) error {
	cur, ok := s.users[u.ID]
	if !ok {
		return notFound("user")
	}
	for id, other := range s.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return fmt.Errorf("email %q already in use: %w", u.Email, model.ErrInvalidInput)
		}
	}
	cur.Name, cur.Email, cur.Role, cur.UpdatedAt = u.Name, u.Email, u.Role, u.UpdatedAt
	s.users[u.ID] = cur
	return nil
}

func (s *state) DeleteUser(_ context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return notFound("user")
	}
	delete(s.users, id)
	kept := s.transactions[:0]
	for _, t := range s.transactions {
		if t.UserID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	for nid, n := range s.notifications {
		if n.UserID == id {
			delete(s.notifications, nid)
		}
	}
	for rid, r := range s.reports {
		if r.OrganizerID == id {
			delete(s.reports, rid)
		}
	}
	return nil
}

func (s *state) CountUserHoldings(_ context.Context, userID string) (int, error) {
	n := 0
	for _, r := range s.registrations {
		if r.UserID == userID {
			n++
		}
	}
	for _, e := range s.events {
		if e.OrganizerID == userID {
			n++
		}
	}
	return n, nil
}

func (s *state) CreditBalance(_ context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, notFound("user")
	}
	balance := u.WalletBalance.Add(amount)
	if balance.GreaterThan(model.MaxAmount) {
		return decimal.Zero, fmt.Errorf("balance would exceed %s: %w", model.MaxAmount.StringFixed(2), model.ErrInvalidInput)
	}
	u.WalletBalance = balance
	s.users[userID] = u
	return u.WalletBalance, nil
}

func (s *state) DebitBalance(_ context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, notFound("user")
	}
	if u.WalletBalance.LessThan(amount) {
		return decimal.Zero, model.ErrInsufficientFunds
	}
	u.WalletBalance = u.WalletBalance.Sub(amount)
	s.users[userID] = u
	return u.WalletBalance, nil
}

// transactions

func (s *state) CreateTransaction(_ context.Context, t *model.Transaction) error {
	if _, ok := s.users[t.UserID]; !ok {
		return notFound("user")
	}
	s.transactions = append(s.transactions, *t)
	s.track(t.ID)
	return nil
}

func (s *state) ListTransactions(_ context.Context, userID string) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, t := range s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

// events and tickets

func (s *state) CreateEvent(_ context.Context, e *model.Event) error {
	if _, ok := s.users[e.OrganizerID]; !ok {
		return notFound("organizer")
	}
	stored := *e
	stored.Tickets = nil
	s.events[e.ID] = stored
	s.track(e.ID)
	return nil
}

func (s *state) CreateTicket(_ context.Context, t *model.Ticket) error {
	if _, ok := s.events[t.EventID]; !ok {
		return notFound("event")
	}
	s.tickets[t.ID] = *t
	s.track(t.ID)
	return nil
}

func (s *state) withTickets(e model.Event) model.Event {
	e.Tickets = []model.Ticket{}
	for _, t := range s.tickets {
		if t.EventID == e.ID {
			e.Tickets = append(e.Tickets, t)
		}
	}
	sort.Slice(e.Tickets, func(i, j int) bool { return s.order[e.Tickets[i].ID] < s.order[e.Tickets[j].ID] })
	return e
}

func (s *state) GetEvent(_ context.Context, id string) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, notFound("event")
	}
	e = s.withTickets(e)
	return &e, nil
}

func (s *state) GetEventForUpdate(_ context.Context, id string) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, notFound("event")
	}
	return &e, nil
}

func (s *state) ListEvents(_ context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		out = append(out, s.withTickets(e))
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] > s.order[out[j].ID] })
	return out, nil
}

func (s *state) SearchEvents(_ context.Context, f model.EventSearch) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		switch {
		case !e.IsActive:
			continue
		case f.Category != "" && e.Category != f.Category:
			continue
		case f.StartFrom != nil && e.StartDate.Before(*f.StartFrom):
			continue
		case f.EndUntil != nil && e.EndDate.After(*f.EndUntil):
			continue
		case f.Location != "" && !strings.Contains(strings.ToLower(e.Location), strings.ToLower(f.Location)):
			continue
		}
		out = append(out, s.withTickets(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (s *state) UpdateEvent(_ context.Context, e *model.Event) error {
	cur, ok := s.events[e.ID]
	if !ok {
		return notFound("event")
	}
	if e.MaxCapacity < cur.CurrentCapacity || !e.StartDate.Before(e.EndDate) {
		return fmt.Errorf("update event: %w", model.ErrInvalidState)
	}
	cur.Title, cur.Description, cur.Category = e.Title, e.Description, e.Category
	cur.StartDate, cur.EndDate, cur.Location = e.StartDate, e.EndDate, e.Location
	cur.MaxCapacity, cur.IsActive, cur.UpdatedAt = e.MaxCapacity, e.IsActive, e.UpdatedAt
	s.events[e.ID] = cur
	return nil
}

func (s *state) DeleteEvent(_ context.Context, id string) error {
	if _, ok := s.events[id]; !ok {
		return notFound("event")
	}
	delete(s.events, id)
	for tid, t := range s.tickets {
		if t.EventID == id {
			delete(s.tickets, tid)
		}
	}
	for rid, r := range s.registrations {
		if r.EventID != id {
			continue
		}
		if pid, ok := s.paymentByReg[rid]; ok {
			delete(s.payments, pid)
			delete(s.paymentByReg, rid)
		}
		delete(s.registrations, rid)
	}
	for rid, r := range s.reports {
		if r.EventID == id {
			delete(s.reports, rid)
		}
	}
	return nil
}

func (s *state) GetTicket(_ context.Context, eventID, ticketID string) (*model.Ticket, error) {
	t, ok := s.tickets[ticketID]
	if !ok || t.EventID != eventID {
		return nil, notFound("ticket")
	}
	return &t, nil
}

func (s *state) TakeTicket(ctx context.Context, eventID, ticketID string) error {
	t, err := s.GetTicket(ctx, eventID, ticketID)
	if err != nil {
		return err
	}
	if t.RemainingCount <= 0 {
		return fmt.Errorf("ticket: %w", model.ErrSoldOut)
	}
	t.RemainingCount--
	s.tickets[ticketID] = *t
	return nil
}

func (s *state) ReturnTicket(_ context.Context, ticketID string) error {
	t, ok := s.tickets[ticketID]
	if !ok {
		return notFound("ticket")
	}
	if t.RemainingCount >= t.Quantity {
		return fmt.Errorf("ticket %s already at full inventory: %w", ticketID, model.ErrInvalidState)
	}
	t.RemainingCount++
	s.tickets[ticketID] = t
	return nil
}

func (s *state) OccupySeat(_ context.Context, eventID string) error {
	e, ok := s.events[eventID]
	if !ok {
		return notFound("event")
	}
	if e.CurrentCapacity >= e.MaxCapacity {
		return fmt.Errorf("event is fully booked: %w", model.ErrSoldOut)
	}
	e.CurrentCapacity++
	s.events[eventID] = e
	return nil
}

func (s *state) ReleaseSeat(_ context.Context, eventID string) error {
	e, ok := s.events[eventID]
	if !ok {
		return notFound("event")
	}
	if e.CurrentCapacity <= 0 {
		return fmt.Errorf("event %s has no occupied seats: %w", eventID, model.ErrInvalidState)
	}
	e.CurrentCapacity--
	s.events[eventID] = e
	return nil
}

// registrations

func (s *state) hydrate(r model.Registration) *model.Registration {
	if t, ok := s.tickets[r.TicketID]; ok {
		r.Ticket = &t
	}
	if pid, ok := s.paymentByReg[r.ID]; ok {
		p := s.payments[pid]
		r.Payment = &p
	}
	return &r
}

func (s *state) CreateRegistration(_ context.Context, r *model.Registration) error {
	if r.IsLive() {
		for _, other := range s.registrations {
			if other.UserID == r.UserID && other.EventID == r.EventID && other.IsLive() {
				return model.ErrDuplicateRegistration
			}
		}
	}
	stored := *r
	stored.User, stored.Event, stored.Ticket, stored.Payment = nil, nil, nil, nil
	s.registrations[r.ID] = stored
	s.track(r.ID)
	return nil
}

func (s *state) GetRegistration(_ context.Context, id string) (*model.Registration, error) {
	r, ok := s.registrations[id]
	if !ok {
		return nil, notFound("registration")
	}
	return s.hydrate(r), nil
}

func (s *state) GetRegistrationForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	return s.GetRegistration(ctx, id)
}

func (s *state) FindLiveRegistration(_ context.Context, userID, eventID string) (*model.Registration, error) {
	for _, r := range s.registrations {
		if r.UserID == userID && r.EventID == eventID && r.IsLive() {
			return s.hydrate(r), nil
		}
	}
	return nil, notFound("registration")
}

func (s *state) listRegistrations(match func(model.Registration) bool, newestFirst bool) []model.Registration {
	var out []model.Registration
	for _, r := range s.registrations {
		if match(r) {
			out = append(out, *s.hydrate(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if newestFirst {
			return s.order[out[i].ID] > s.order[out[j].ID]
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out
}

func (s *state) ListRegistrationsByEvent(_ context.Context, eventID string) ([]model.Registration, error) {
	return s.listRegistrations(func(r model.Registration) bool { return r.EventID == eventID }, false), nil
}

func (s *state) ListRegistrationsByUser(_ context.Context, userID string) ([]model.Registration, error) {
	return s.listRegistrations(func(r model.Registration) bool { return r.UserID == userID }, true), nil
}

func (s *state) UpdateRegistrationStatus(_ context.Context, id string, status model.RegistrationStatus) error {
	r, ok := s.registrations[id]
	if !ok {
		return notFound("registration")
	}
	if status != model.RegistrationCancelled && !r.IsLive() {
		for oid, other := range s.registrations {
			if oid != id && other.UserID == r.UserID && other.EventID == r.EventID && other.IsLive() {
				return model.ErrDuplicateRegistration
			}
		}
	}
	r.Status = status
	s.registrations[id] = r
	return nil
}

// payments

func (s *state) CreatePayment(_ context.Context, p *model.Payment) error {
	if _, ok := s.registrations[p.RegistrationID]; !ok {
		return notFound("registration")
	}
	if _, ok := s.paymentByReg[p.RegistrationID]; ok {
		return model.ErrAlreadyPaid
	}
	s.payments[p.ID] = *p
	s.paymentByReg[p.RegistrationID] = p.ID
	s.track(p.ID)
	return nil
}

func (s *state) GetPaymentByRegistration(_ context.Context, registrationID string) (*model.Payment, error) {
	pid, ok := s.paymentByReg[registrationID]
	if !ok {
		return nil, notFound("payment")
	}
	p := s.payments[pid]
	return &p, nil
}

func (s *state) UpdatePaymentStatus(_ context.Context, id string, status model.PaymentStatus) error {
	p, ok := s.payments[id]
	if !ok {
		return notFound("payment")
	}
	p.Status = status
	s.payments[id] = p
	return nil
}

func (s *state) ListPaymentsByEvent(_ context.Context, eventID string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range s.payments {
		if s.registrations[p.RegistrationID].EventID == eventID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.order[out[i].ID] < s.order[out[j].ID] })
	return out, nil
}

// notifications

func (s *state) CreateNotification(_ context.Context, n *model.Notification) error {
	if _, ok := s.users[n.UserID]; !ok {
		return notFound("user")
	}
	s.notifications[n.ID] = *n
	s.track(n.ID)
	return nil
}

func (s *state) ListNotifications(_ context.Context, userID string) ([]model.Notification, error) {
	var out []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out, nil
}

func (s *state) MarkNotificationRead(_ context.Context, id string) (*model.Notification, error) {
	n, ok := s.notifications[id]
	if !ok {
		return nil, notFound("notification")
	}
	n.IsRead = true
	s.notifications[id] = n
	return &n, nil
}

func (s *state) MarkAllNotificationsRead(_ context.Context, userID string) (int64, error) {
	var count int64
	for id, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			s.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (s *state) DeleteNotification(_ context.Context, id string) error {
	if _, ok := s.notifications[id]; !ok {
		return notFound("notification")
	}
	delete(s.notifications, id)
	return nil
}

// reports

func (s *state) CreateReport(_ context.Context, r *model.Report) error {
	if _, ok := s.events[r.EventID]; !ok {
		return notFound("event")
	}
	if _, ok := s.users[r.OrganizerID]; !ok {
		return notFound("organizer")
	}
	stored := *r
	if len(stored.Parameters) == 0 {
		stored.Parameters = []byte(`{}`)
	} else {
		stored.Parameters = append([]byte(nil), r.Parameters...)
	}
	s.reports[r.ID] = stored
	s.track(r.ID)
	return nil
}

func (s *state) listReports(match func(model.Report) bool) []model.Report {
	var out []model.Report
	for _, r := range s.reports {
		if match(r) {
			r.Parameters = append([]byte(nil), r.Parameters...)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return s.order[out[i].ID] > s.order[out[j].ID]
	})
	return out
}

func (s *state) ListReportsByEvent(_ context.Context, eventID string) ([]model.Report, error) {
	return s.listReports(func(r model.Report) bool { return r.EventID == eventID }), nil
}

func (s *state) ListReportsByOrganizer(_ context.Context, organizerID string) ([]model.Report, error) {
	return s.listReports(func(r model.Report) bool { return r.OrganizerID == organizerID }), nil
}
