package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

func TestCreateRegistration(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))

	reg := env.register(t, alice.ID, ev)

	assert.Equal(t, model.RegistrationPending, reg.Status)
	require.NotNil(t, reg.User)
	require.NotNil(t, reg.Event)
	require.NotNil(t, reg.Ticket)
	assert.Nil(t, reg.Payment)
	assert.Equal(t, alice.ID, reg.User.ID)
	assert.Equal(t, 4, reg.Ticket.RemainingCount)
	assert.Equal(t, 1, reg.Event.CurrentCapacity)

	assert.Equal(t, 4, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 1, env.capacity(t, ev.ID))

	mine, err := env.notifications.List(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Registration Pending", mine[0].Title)

	theirs, err := env.notifications.List(context.Background(), org.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, "New Registration", theirs[0].Title)
}

func TestCreateRegistrationFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	other := env.event(t, org.ID, 10, general("5", 5))

	cases := []struct {
		name string
		req  model.CreateRegistrationRequest
		want error
	}{
		{"missing user", model.CreateRegistrationRequest{UserID: "nobody", EventID: ev.ID, TicketID: ev.Tickets[0].ID}, model.ErrNotFound},
		{"missing event", model.CreateRegistrationRequest{UserID: alice.ID, EventID: "nope", TicketID: ev.Tickets[0].ID}, model.ErrNotFound},
		{"ticket of another event", model.CreateRegistrationRequest{UserID: alice.ID, EventID: ev.ID, TicketID: other.Tickets[0].ID}, model.ErrNotFound},
		{"empty ticket id", model.CreateRegistrationRequest{UserID: alice.ID, EventID: ev.ID}, model.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.registrations.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	assert.Equal(t, 5, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 0, env.capacity(t, ev.ID))
}

func TestCreateRegistrationInactiveEvent(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))

	_, err := env.events.Deactivate(context.Background(), ev.ID)
	require.NoError(t, err)

	_, err = env.registrations.Create(context.Background(), model.CreateRegistrationRequest{
		UserID: alice.ID, EventID: ev.ID, TicketID: ev.Tickets[0].ID,
	})
	assert.ErrorIs(t, err, model.ErrInvalidState)
}

func TestCreateRegistrationSoldOutLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 1))
	env.register(t, alice.ID, ev)

	_, err := env.registrations.Create(context.Background(), model.CreateRegistrationRequest{
		UserID: bob.ID, EventID: ev.ID, TicketID: ev.Tickets[0].ID,
	})
	require.ErrorIs(t, err, model.ErrSoldOut)

	assert.Equal(t, 0, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 1, env.capacity(t, ev.ID))
	regs, err := env.registrations.ListByUser(context.Background(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestCreateRegistrationEventCapacityReached(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	ev := env.event(t, org.ID, 1, general("20", 5))
	env.register(t, alice.ID, ev)

	_, err := env.registrations.Create(context.Background(), model.CreateRegistrationRequest{
		UserID: bob.ID, EventID: ev.ID, TicketID: ev.Tickets[0].ID,
	})
	require.ErrorIs(t, err, model.ErrSoldOut)
	assert.Equal(t, 4, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
}

func TestCreateRegistrationDuplicate(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	first := env.register(t, alice.ID, ev)

	_, err := env.registrations.Create(context.Background(), model.CreateRegistrationRequest{
		UserID: alice.ID, EventID: ev.ID, TicketID: ev.Tickets[0].ID,
	})
	require.ErrorIs(t, err, model.ErrDuplicateRegistration)
	assert.Equal(t, 4, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)

	// a cancelled registration no longer blocks a new one
	_, err = env.registrations.Cancel(context.Background(), first.ID)
	require.NoError(t, err)
	again := env.register(t, alice.ID, ev)
	assert.NotEqual(t, first.ID, again.ID)
}

func TestConcurrentRegistrationsForLastTicket(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	ev := env.event(t, org.ID, 100, general("10", 1))

	const n = 20
	users := make([]*model.User, n)
	for i := range users {
		users[i] = env.user(t, "user"+string(rune('a'+i)), model.RoleAttendee)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)
	start := make(chan struct{})
	for _, u := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			<-start
			_, err := env.registrations.Create(context.Background(), model.CreateRegistrationRequest{
				UserID: userID, EventID: ev.ID, TicketID: ev.Tickets[0].ID,
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, model.ErrSoldOut):
				soldOut++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u.ID)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, soldOut)
	assert.Equal(t, 0, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 1, env.capacity(t, ev.ID))
}

func TestCancelPendingRegistration(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	reg := env.register(t, alice.ID, ev)

	cancelled, err := env.registrations.Cancel(context.Background(), reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationCancelled, cancelled.Status)
	assert.Nil(t, cancelled.Payment)
	assert.Equal(t, 5, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 0, env.capacity(t, ev.ID))
	assert.True(t, env.balance(t, alice.ID).IsZero())
}

func TestCancelPaidRegistrationRefunds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	env.deposit(t, alice.ID, "50")
	reg := env.register(t, alice.ID, ev)
	_, err := env.payments.Create(ctx, model.CreatePaymentRequest{RegistrationID: reg.ID})
	require.NoError(t, err)
	require.True(t, env.balance(t, alice.ID).Equal(dec("30")))

	cancelled, err := env.registrations.Cancel(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationCancelled, cancelled.Status)
	require.NotNil(t, cancelled.Payment)
	assert.Equal(t, model.PaymentRefunded, cancelled.Payment.Status)
	assert.True(t, env.balance(t, alice.ID).Equal(dec("50")))
	env.requireLedgerConsistent(t, alice.ID)
}

func TestCancelTwiceFailsWithoutSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	env.deposit(t, alice.ID, "20")
	reg := env.register(t, alice.ID, ev)
	_, err := env.payments.Create(ctx, model.CreatePaymentRequest{RegistrationID: reg.ID})
	require.NoError(t, err)

	_, err = env.registrations.Cancel(ctx, reg.ID)
	require.NoError(t, err)
	_, err = env.registrations.Cancel(ctx, reg.ID)
	require.ErrorIs(t, err, model.ErrInvalidState)

	assert.Equal(t, 5, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 0, env.capacity(t, ev.ID))
	assert.True(t, env.balance(t, alice.ID).Equal(dec("20")))
	env.requireLedgerConsistent(t, alice.ID)
}

func TestCancelUnknownRegistration(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.registrations.Cancel(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestUpdateRegistrationStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	reg := env.register(t, alice.ID, ev)

	_, err := env.registrations.UpdateStatus(ctx, reg.ID, model.UpdateRegistrationStatusRequest{Status: "LOST"})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	updated, err := env.registrations.UpdateStatus(ctx, reg.ID, model.UpdateRegistrationStatusRequest{Status: model.RegistrationApproved})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationApproved, updated.Status)
	assert.Equal(t, 4, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)

	cancelled, err := env.registrations.UpdateStatus(ctx, reg.ID, model.UpdateRegistrationStatusRequest{Status: model.RegistrationCancelled})
	require.NoError(t, err)
	assert.Equal(t, model.RegistrationCancelled, cancelled.Status)
	assert.Equal(t, 5, env.ticket(t, ev.ID, ev.Tickets[0].ID).RemainingCount)
	assert.Equal(t, 0, env.capacity(t, ev.ID))

	_, err = env.registrations.UpdateStatus(ctx, reg.ID, model.UpdateRegistrationStatusRequest{Status: model.RegistrationPending})
	assert.ErrorIs(t, err, model.ErrInvalidState)

	notes, err := env.notifications.List(ctx, alice.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, "Registration Cancelled", notes[0].Title)
}

func TestListRegistrations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("20", 5))
	first := env.register(t, alice.ID, ev)
	second := env.register(t, bob.ID, ev)

	byEvent, err := env.registrations.ListByEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 2)
	assert.Equal(t, first.ID, byEvent[0].ID)
	assert.Equal(t, second.ID, byEvent[1].ID)

	byUser, err := env.registrations.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, second.ID, byUser[0].ID)

	_, err = env.registrations.ListByEvent(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)

	got, err := env.registrations.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.User.ID)
	assert.Equal(t, ev.ID, got.Event.ID)
}
