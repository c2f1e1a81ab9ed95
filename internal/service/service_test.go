package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/notify"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository/memstore"
)

type testEnv struct {
	store         repository.Store
	metrics       *metrics.Metrics
	wallet        *WalletService
	registrations *RegistrationService
	payments      *PaymentService
	events        *EventService
	users         *UserService
	notifications *NotificationService
	reports       *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithStore(t, memstore.New())
}

func newTestEnvWithStore(t *testing.T, store repository.Store) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	m := metrics.New()
	dispatcher := notify.NewDispatcher(log, m, notify.NewStoreSink(store))
	wallet := NewWalletService(store, log, m)
	return &testEnv{
		store:         store,
		metrics:       m,
		wallet:        wallet,
		registrations: NewRegistrationService(store, wallet, dispatcher, log, m),
		payments:      NewPaymentService(store, wallet, dispatcher, log, m),
		events:        NewEventService(store, log),
		users:         NewUserService(store, log),
		notifications: NewNotificationService(store),
		reports:       NewReportService(store, log),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (e *testEnv) user(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), model.CreateUserRequest{
		Name:  name,
		Email: name + "@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) event(t *testing.T, organizerID string, maxCapacity int, tickets ...model.CreateTicketRequest) *model.Event {
	t.Helper()
	start := time.Date(2030, 5, 1, 18, 0, 0, 0, time.UTC)
	ev, err := e.events.Create(context.Background(), model.CreateEventRequest{
		OrganizerID: organizerID,
		Title:       "Go Meetup",
		Category:    "tech",
		StartDate:   start,
		EndDate:     start.Add(3 * time.Hour),
		Location:    "Berlin",
		MaxCapacity: maxCapacity,
		Tickets:     tickets,
	})
	require.NoError(t, err)
	return ev
}

func general(price string, quantity int) model.CreateTicketRequest {
	return model.CreateTicketRequest{Type: model.TicketGeneral, Price: dec(price), Quantity: quantity}
}

func (e *testEnv) deposit(t *testing.T, userID, amount string) {
	t.Helper()
	_, err := e.wallet.Deposit(context.Background(), userID, dec(amount))
	require.NoError(t, err)
}

func (e *testEnv) register(t *testing.T, userID string, ev *model.Event) *model.Registration {
	t.Helper()
	reg, err := e.registrations.Create(context.Background(), model.CreateRegistrationRequest{
		UserID:   userID,
		EventID:  ev.ID,
		TicketID: ev.Tickets[0].ID,
	})
	require.NoError(t, err)
	return reg
}

func (e *testEnv) ticket(t *testing.T, eventID, ticketID string) *model.Ticket {
	t.Helper()
	tk, err := e.store.GetTicket(context.Background(), eventID, ticketID)
	require.NoError(t, err)
	return tk
}

func (e *testEnv) capacity(t *testing.T, eventID string) int {
	t.Helper()
	ev, err := e.store.GetEvent(context.Background(), eventID)
	require.NoError(t, err)
	return ev.CurrentCapacity
}

func (e *testEnv) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	b, err := e.wallet.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b.Balance
}

// requireLedgerConsistent checks that the balance equals the signed sum of
// the user's transactions and is not negative.
func (e *testEnv) requireLedgerConsistent(t *testing.T, userID string) {
	t.Helper()
	txs, err := e.wallet.ListTransactions(context.Background(), userID)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, tx := range txs {
		sum = sum.Add(tx.Type.Signed(tx.Amount))
	}
	b := e.balance(t, userID)
	require.True(t, sum.Equal(b), "balance %s != transaction sum %s", b, sum)
	require.False(t, b.IsNegative())
}
