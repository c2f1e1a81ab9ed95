package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

func seed(t *testing.T) (*Store, *model.Event, *model.Ticket) {
	t.Helper()
	ctx := context.Background()
	s := New()
	now := time.Now().UTC()
	require.NoError(t, s.CreateUser(ctx, &model.User{ID: "u1", Name: "A", Email: "a@example.com", Role: model.RoleOrganizer}))
	ev := &model.Event{ID: "e1", OrganizerID: "u1", Title: "T", StartDate: now, EndDate: now.Add(time.Hour), MaxCapacity: 1, IsActive: true}
	require.NoError(t, s.CreateEvent(ctx, ev))
	tk := &model.Ticket{ID: "t1", EventID: "e1", Type: model.TicketGeneral, Price: decimal.NewFromInt(5), Quantity: 1, RemainingCount: 1}
	require.NoError(t, s.CreateTicket(ctx, tk))
	return s, ev, tk
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		require.NoError(t, q.TakeTicket(ctx, "e1", "t1"))
		require.NoError(t, q.OccupySeat(ctx, "e1"))
		_, err := q.CreditBalance(ctx, "u1", decimal.NewFromInt(10))
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	tk, err := s.GetTicket(ctx, "e1", "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, tk.RemainingCount)
	ev, err := s.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 0, ev.CurrentCapacity)
	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, u.WalletBalance.IsZero())
}

func TestWithTransactionCommits(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()

	require.NoError(t, s.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		return q.TakeTicket(ctx, "e1", "t1")
	}))
	err := s.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		return q.TakeTicket(ctx, "e1", "t1")
	})
	assert.ErrorIs(t, err, model.ErrSoldOut)
}

func TestConditionalPrimitives(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.TakeTicket(ctx, "other-event", "t1"), model.ErrNotFound)
	assert.ErrorIs(t, s.ReturnTicket(ctx, "t1"), model.ErrInvalidState)
	assert.ErrorIs(t, s.ReleaseSeat(ctx, "e1"), model.ErrInvalidState)
	require.NoError(t, s.OccupySeat(ctx, "e1"))
	assert.ErrorIs(t, s.OccupySeat(ctx, "e1"), model.ErrSoldOut)

	_, err := s.DebitBalance(ctx, "u1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, model.ErrInsufficientFunds)
	_, err = s.DebitBalance(ctx, "nobody", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLiveRegistrationUniqueness(t *testing.T) {
	s, _, _ := seed(t)
	ctx := context.Background()
	reg := func(id string, status model.RegistrationStatus) *model.Registration {
		return &model.Registration{ID: id, UserID: "u1", EventID: "e1", TicketID: "t1", Status: status}
	}

	require.NoError(t, s.CreateRegistration(ctx, reg("r1", model.RegistrationPending)))
	assert.ErrorIs(t, s.CreateRegistration(ctx, reg("r2", model.RegistrationPending)), model.ErrDuplicateRegistration)
	require.NoError(t, s.UpdateRegistrationStatus(ctx, "r1", model.RegistrationCancelled))
	require.NoError(t, s.CreateRegistration(ctx, reg("r3", model.RegistrationPending)))
	assert.ErrorIs(t, s.UpdateRegistrationStatus(ctx, "r1", model.RegistrationPending), model.ErrDuplicateRegistration)

	require.NoError(t, s.CreatePayment(ctx, &model.Payment{ID: "p1", RegistrationID: "r3", Amount: decimal.NewFromInt(5), Status: model.PaymentCompleted}))
	assert.ErrorIs(t, s.CreatePayment(ctx, &model.Payment{ID: "p2", RegistrationID: "r3"}), model.ErrAlreadyPaid)

	got, err := s.GetRegistration(ctx, "r3")
	require.NoError(t, err)
	require.NotNil(t, got.Payment)
	require.NotNil(t, got.Ticket)
	assert.Equal(t, "p1", got.Payment.ID)
}

func TestCancelledContextSkipsTransaction(t *testing.T) {
	s, _, _ := seed(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithTransaction(ctx, func(context.Context, repository.Queries) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
