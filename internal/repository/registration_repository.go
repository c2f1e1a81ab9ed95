package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// registrationSelect joins the ticket and the optional payment so a
// registration is always read with both.
const registrationSelect = `
	SELECT r.id, r.user_id, r.event_id, r.ticket_id, r.status, r.created_at, r.updated_at,
	       t.id, t.event_id, t.type, t.price, t.quantity, t.remaining_count, t.benefits, t.created_at,
	       p.id, p.registration_id, p.amount, p.status, p.payment_date, p.updated_at
	FROM registrations r
	JOIN tickets t ON t.id = r.ticket_id
	LEFT JOIN payments p ON p.registration_id = r.id`

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var (
		r model.Registration
		t model.Ticket

		payID, payRegID, payStatus *string
		payAmount                  decimal.NullDecimal
		payDate, payUpdated        *time.Time
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.EventID, &r.TicketID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		&t.ID, &t.EventID, &t.Type, &t.Price, &t.Quantity, &t.RemainingCount, &t.Benefits, &t.CreatedAt,
		&payID, &payRegID, &payAmount, &payStatus, &payDate, &payUpdated,
	)
	if err != nil {
		return nil, err
	}
	r.Ticket = &t
	if payID != nil {
		r.Payment = &model.Payment{
			ID:             *payID,
			RegistrationID: *payRegID,
			Amount:         payAmount.Decimal,
			Status:         model.PaymentStatus(*payStatus),
			PaymentDate:    *payDate,
			UpdatedAt:      *payUpdated,
		}
	}
	return &r, nil
}

// CreateRegistration inserts a registration. The partial unique index on
// (user_id, event_id) for live registrations closes the race between two
// concurrent duplicate checks.
func (q *queries) CreateRegistration(ctx context.Context, r *model.Registration) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO registrations (id, user_id, event_id, ticket_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.UserID, r.EventID, r.TicketID, r.Status, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		if code, name, ok := constraintViolation(err); ok && code == pgUniqueViolation && name == constraintLiveRegistration {
			return model.ErrDuplicateRegistration
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// GetRegistration returns a registration with its ticket and payment.
func (q *queries) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	r, err := scanRegistration(q.db.QueryRow(ctx, registrationSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "registration")
	}
	return r, nil
}

// GetRegistrationForUpdate locks the registration row. Concurrent payment,
// refund and cancel calls on the same registration queue behind it and
// re-read the committed status.
func (q *queries) GetRegistrationForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	r, err := scanRegistration(q.db.QueryRow(ctx, registrationSelect+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if err != nil {
		return nil, notFound(err, "registration")
	}
	return r, nil
}

// FindLiveRegistration returns the user's non-cancelled registration for
// the event.
func (q *queries) FindLiveRegistration(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	r, err := scanRegistration(q.db.QueryRow(ctx,
		registrationSelect+` WHERE r.user_id = $1 AND r.event_id = $2 AND r.status <> 'CANCELLED'`,
		userID, eventID,
	))
	if err != nil {
		return nil, notFound(err, "registration")
	}
	return r, nil
}

// ListRegistrationsByEvent returns all registrations for a given event.
func (q *queries) ListRegistrationsByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return q.queryRegistrations(ctx, registrationSelect+` WHERE r.event_id = $1 ORDER BY r.created_at ASC`, eventID)
}

// ListRegistrationsByUser returns all registrations of a user, newest first.
func (q *queries) ListRegistrationsByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return q.queryRegistrations(ctx, registrationSelect+` WHERE r.user_id = $1 ORDER BY r.created_at DESC`, userID)
}

func (q *queries) queryRegistrations(ctx context.Context, sql string, args ...any) ([]model.Registration, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *r)
	}
	return regs, rows.Err()
}

// UpdateRegistrationStatus overwrites the status.
func (q *queries) UpdateRegistrationStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		if code, name, ok := constraintViolation(err); ok && code == pgUniqueViolation && name == constraintLiveRegistration {
			return model.ErrDuplicateRegistration
		}
		return fmt.Errorf("update registration status: %w", err)
	}
	return expectOne(tag, "registration")
}
