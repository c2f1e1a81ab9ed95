package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

func TestGenerateAttendanceReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	ev := env.event(t, org.ID, 10,
		general("10", 5),
		model.CreateTicketRequest{Type: model.TicketVIP, Price: dec("30"), Quantity: 5},
	)
	a := env.register(t, alice.ID, ev)
	_, err := env.registrations.Create(ctx, model.CreateRegistrationRequest{UserID: bob.ID, EventID: ev.ID, TicketID: ev.Tickets[1].ID})
	require.NoError(t, err)
	_, err = env.registrations.Cancel(ctx, a.ID)
	require.NoError(t, err)

	report, err := env.reports.GenerateAttendance(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportAttendance, report.Type)
	assert.Equal(t, org.ID, report.OrganizerID)
	assert.Equal(t, "Attendance Report - Go Meetup", report.Title)

	var figures model.AttendanceFigures
	require.NoError(t, json.Unmarshal(report.Parameters, &figures))
	assert.Equal(t, 2, figures.TotalRegistrations)
	assert.Equal(t, 1, figures.ByStatus[model.RegistrationCancelled])
	assert.Equal(t, 1, figures.ByStatus[model.RegistrationPending])
	assert.Equal(t, 1, figures.ByTicketType[model.TicketVIP])
	assert.Equal(t, 1, figures.CurrentCapacity)
	require.Len(t, figures.Registrations, 2)
	assert.Equal(t, "alice", figures.Registrations[0].UserName)
	assert.Equal(t, "alice@example.com", figures.Registrations[0].UserEmail)
	assert.Equal(t, model.TicketGeneral, figures.Registrations[0].TicketType)
}

func TestGenerateSalesReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	alice := env.user(t, "alice", model.RoleAttendee)
	bob := env.user(t, "bob", model.RoleAttendee)
	carol := env.user(t, "carol", model.RoleAttendee)
	ev := env.event(t, org.ID, 10, general("12.50", 5))
	env.deposit(t, alice.ID, "100")
	env.deposit(t, bob.ID, "100")

	a := env.register(t, alice.ID, ev)
	b := env.register(t, bob.ID, ev)
	env.register(t, carol.ID, ev)
	for _, id := range []string{a.ID, b.ID} {
		_, err := env.payments.Create(ctx, model.CreatePaymentRequest{RegistrationID: id})
		require.NoError(t, err)
	}
	_, err := env.payments.Refund(ctx, b.ID)
	require.NoError(t, err)

	report, err := env.reports.GenerateSales(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportSales, report.Type)

	var figures model.SalesFigures
	require.NoError(t, json.Unmarshal(report.Parameters, &figures))
	assert.True(t, figures.TotalRevenue.Equal(dec("12.50")), figures.TotalRevenue.String())
	assert.Equal(t, model.PaymentBreakdown{Completed: 1, Unpaid: 1, Refunded: 1}, figures.Payments)
	require.Len(t, figures.Tickets, 1)
	assert.Equal(t, 2, figures.Tickets[0].Sold)
	assert.Equal(t, 3, figures.Tickets[0].Remaining)
	assert.True(t, figures.Tickets[0].Revenue.Equal(dec("12.50")))
}

func TestCreateAndListReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	other := env.user(t, "other", model.RoleOrganizer)
	ev := env.event(t, org.ID, 10, general("10", 5))

	custom, err := env.reports.Create(ctx, model.CreateReportRequest{
		EventID:    ev.ID,
		Type:       model.ReportCustom,
		Title:      "Door notes",
		Parameters: json.RawMessage(`{"weather":"rain"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, org.ID, custom.OrganizerID)

	generated, err := env.reports.GenerateSales(ctx, ev.ID)
	require.NoError(t, err)

	byEvent, err := env.reports.ListByEvent(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, byEvent, 2)
	assert.Equal(t, generated.ID, byEvent[0].ID)
	assert.JSONEq(t, `{"weather":"rain"}`, string(byEvent[1].Parameters))

	byOrganizer, err := env.reports.ListByOrganizer(ctx, org.ID)
	require.NoError(t, err)
	assert.Len(t, byOrganizer, 2)

	none, err := env.reports.ListByOrganizer(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	cases := []model.CreateReportRequest{
		{EventID: ev.ID, Type: "SECRET", Title: "x"},
		{EventID: ev.ID, Type: model.ReportCustom, Title: ""},
		{EventID: ev.ID, Type: model.ReportCustom, Title: "x", Parameters: json.RawMessage(`{"broken"`)},
		{EventID: ev.ID, OrganizerID: other.ID, Type: model.ReportCustom, Title: "x"},
	}
	for _, req := range cases {
		_, err := env.reports.Create(ctx, req)
		assert.ErrorIs(t, err, model.ErrInvalidInput, req)
	}

	_, err = env.reports.GenerateAttendance(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = env.reports.ListByEvent(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteEventRemovesReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	org := env.user(t, "org", model.RoleOrganizer)
	ev := env.event(t, org.ID, 10, general("10", 5))
	_, err := env.reports.GenerateAttendance(ctx, ev.ID)
	require.NoError(t, err)

	require.NoError(t, env.events.Delete(ctx, ev.ID))
	reports, err := env.reports.ListByOrganizer(ctx, org.ID)
	require.NoError(t, err)
	assert.Empty(t, reports)
}
