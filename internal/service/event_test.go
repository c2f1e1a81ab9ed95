package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

func TestCreateEventValidation(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	start := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	valid := func() model.CreateEventRequest {
		return model.CreateEventRequest{
			OrganizerID: org.ID,
			Title:       "Conf",
			StartDate:   start,
			EndDate:     start.Add(time.Hour),
			MaxCapacity: 10,
			Tickets:     []model.CreateTicketRequest{general("5", 10)},
		}
	}

	cases := []struct {
		name   string
		mutate func(*model.CreateEventRequest)
		want   error
	}{
		{"blank title", func(r *model.CreateEventRequest) { r.Title = "  " }, model.ErrInvalidInput},
		{"end before start", func(r *model.CreateEventRequest) { r.EndDate = start.Add(-time.Hour) }, model.ErrInvalidInput},
		{"zero capacity", func(r *model.CreateEventRequest) { r.MaxCapacity = 0 }, model.ErrInvalidInput},
		{"no tickets", func(r *model.CreateEventRequest) { r.Tickets = nil }, model.ErrInvalidInput},
		{"bad ticket type", func(r *model.CreateEventRequest) { r.Tickets[0].Type = "BACKSTAGE" }, model.ErrInvalidInput},
		{"negative price", func(r *model.CreateEventRequest) { r.Tickets[0].Price = dec("-1") }, model.ErrInvalidInput},
		{"zero quantity", func(r *model.CreateEventRequest) { r.Tickets[0].Quantity = 0 }, model.ErrInvalidInput},
		{"unknown organizer", func(r *model.CreateEventRequest) { r.OrganizerID = "ghost" }, model.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid()
			tc.mutate(&req)
			_, err := env.events.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	events, err := env.events.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestCreateEventTicketsStartFull(t *testing.T) {
	env := newTestEnv(t)
	org := env.user(t, "org", model.RoleOrganizer)
	ev := env.event(t, org.ID, 50,
		general("10", 40),
		model.CreateTicketRequest{Type: model.TicketVIP, Price: dec("99.5"), Quantity: 10, Benefits: "front row"},
	)

	got, err := env.events.Get(context.Background(), ev.ID)
	require.NoError(t, err)
	require.Len(t, got.Tickets, 2)
	for _, tk := range got.Tickets {
		assert.Equal(t, tk.Quantity, tk.RemainingCount)
	}
	assert.True(t, got.IsActive)
	assert.Equal(t, 0, got.CurrentCapacity)
}

func TestSearchEvents(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	base := time.Date(2030, 3, 1, 9, 0, 0, 0, time.UTC)

	mk := func(title, category, location string, start time.Time, prices ...string) *model.Event {
		tickets := make([]model.CreateTicketRequest, 0, len(prices))
		for _, p := range prices {
			tickets = append(tickets, general(p, 10))
		}
		ev, err := env.events.Create(ctx, model.CreateEventRequest{
			OrganizerID: org.ID, Title: title, Category: category, Location: location,
			StartDate: start, EndDate: start.Add(2 * time.Hour), MaxCapacity: 100, Tickets: tickets,
		})
		require.NoError(t, err)
		return ev
	}
	cheap := mk("cheap", "music", "Berlin Arena", base, "5", "15")
	pricey := mk("pricey", "music", "Munich Hall", base.AddDate(0, 0, 1), "40", "120")
	talk := mk("talk", "tech", "berlin office", base.AddDate(0, 0, 2), "0")
	hidden := mk("hidden", "music", "Berlin", base, "10")
	_, err := env.events.Deactivate(ctx, hidden.ID)
	require.NoError(t, err)

	ptr := func(s string) *decimal.Decimal { d := dec(s); return &d }
	at := func(tm time.Time) *time.Time { return &tm }
	titles := func(evs []model.Event) []string {
		out := make([]string, 0, len(evs))
		for _, e := range evs {
			out = append(out, e.Title)
		}
		return out
	}

	cases := []struct {
		name string
		f    model.EventSearch
		want []string
	}{
		{"active only", model.EventSearch{}, []string{cheap.Title, pricey.Title, talk.Title}},
		{"category", model.EventSearch{Category: "music"}, []string{cheap.Title, pricey.Title}},
		{"location is case insensitive", model.EventSearch{Location: "BERLIN"}, []string{cheap.Title, talk.Title}},
		{"start from", model.EventSearch{StartFrom: at(base.AddDate(0, 0, 1))}, []string{pricey.Title, talk.Title}},
		{"end until", model.EventSearch{EndUntil: at(base.Add(3 * time.Hour))}, []string{cheap.Title}},
		{"min price compares cheapest ticket", model.EventSearch{MinPrice: ptr("5")}, []string{cheap.Title, pricey.Title}},
		{"max price compares dearest ticket", model.EventSearch{MaxPrice: ptr("20")}, []string{cheap.Title, talk.Title}},
		{"range contains every ticket", model.EventSearch{MinPrice: ptr("10"), MaxPrice: ptr("150")}, []string{pricey.Title}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.events.Search(ctx, tc.f)
			require.NoError(t, err)
			assert.Equal(t, tc.want, titles(got))
		})
	}

	_, err = env.events.Search(ctx, model.EventSearch{MinPrice: ptr("10"), MaxPrice: ptr("5")})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestUpdateEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("10", 10))
	env.register(t, alice.ID, ev)
	env.register(t, bob.ID, ev)

	one := 1
	_, err := env.events.Update(ctx, ev.ID, model.UpdateEventRequest{MaxCapacity: &one})
	require.ErrorIs(t, err, model.ErrInvalidState)

	early := ev.StartDate.Add(-48 * time.Hour)
	_, err = env.events.Update(ctx, ev.ID, model.UpdateEventRequest{EndDate: &early})
	require.ErrorIs(t, err, model.ErrInvalidInput)

	two, title := 2, "Renamed"
	updated, err := env.events.Update(ctx, ev.ID, model.UpdateEventRequest{MaxCapacity: &two, Title: &title})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MaxCapacity)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 2, updated.CurrentCapacity)
	assert.Len(t, updated.Tickets, 1)

	_, err = env.events.Update(ctx, "missing", model.UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteEventCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("10", 10))
	env.deposit(t, alice.ID, "10")
	reg := env.register(t, alice.ID, ev)
	_, err := env.payments.Create(ctx, model.CreatePaymentRequest{RegistrationID: reg.ID})
	require.NoError(t, err)

	require.NoError(t, env.events.Delete(ctx, ev.ID))

	_, err = env.events.Get(ctx, ev.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = env.registrations.Get(ctx, reg.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	regs, err := env.registrations.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, regs)

	assert.ErrorIs(t, env.events.Delete(ctx, ev.ID), model.ErrNotFound)
}

func TestEventSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	carol := env.user(t, "carol", model.RoleAttendee)
	ev := env.event(t, org.ID, 10,
		general("10", 5),
		model.CreateTicketRequest{Type: model.TicketVIP, Price: dec("30"), Quantity: 5},
	)
	env.deposit(t, alice.ID, "100")
	env.deposit(t, bob.ID, "100")

	a := env.register(t, alice.ID, ev)
	b, err := env.registrations.Create(ctx, model.CreateRegistrationRequest{UserID: bob.ID, EventID: ev.ID, TicketID: ev.Tickets[1].ID})
	require.NoError(t, err)
	env.register(t, carol.ID, ev)

	_, err = env.payments.Create(ctx, model.CreatePaymentRequest{RegistrationID: a.ID})
	require.NoError(t, err)
	_, err = env.payments.Create(ctx, model.CreatePaymentRequest{RegistrationID: b.ID})
	require.NoError(t, err)
	_, err = env.payments.Refund(ctx, a.ID)
	require.NoError(t, err)

	s, err := env.events.Summary(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, s.CurrentCapacity)
	assert.Equal(t, 10, s.MaxCapacity)
	assert.Equal(t, 8, s.Remaining)
	assert.Equal(t, 1, s.ByStatus[model.RegistrationApproved])
	assert.Equal(t, 1, s.ByStatus[model.RegistrationPending])
	assert.Equal(t, 1, s.ByStatus[model.RegistrationCancelled])
	assert.Equal(t, 2, s.ByTicketType[model.TicketGeneral])
	assert.Equal(t, 1, s.ByTicketType[model.TicketVIP])
	assert.True(t, s.Revenue.Equal(dec("30")))
	assert.True(t, s.Refunded.Equal(dec("10")))
}
