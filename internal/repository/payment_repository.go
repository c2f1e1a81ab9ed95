package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

const paymentColumns = `id, registration_id, amount, status, payment_date, updated_at`

// CreatePayment inserts the payment of a registration. payments has a
// unique registration_id, so a second payment for the same registration is
// rejected even if two callers race past the existence check.
func (q *queries) CreatePayment(ctx context.Context, p *model.Payment) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO payments (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.RegistrationID, p.Amount, p.Status, p.PaymentDate, p.UpdatedAt,
	)
	if err != nil {
		if code, name, ok := constraintViolation(err); ok && code == pgUniqueViolation && name == constraintPaymentPerReg {
			return model.ErrAlreadyPaid
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetPaymentByRegistration returns the payment of a registration or
// model.ErrNotFound.
func (q *queries) GetPaymentByRegistration(ctx context.Context, registrationID string) (*model.Payment, error) {
	var p model.Payment
	err := q.db.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE registration_id = $1`,
		registrationID,
	).Scan(&p.ID, &p.RegistrationID, &p.Amount, &p.Status, &p.PaymentDate, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "payment")
	}
	return &p, nil
}

// UpdatePaymentStatus overwrites the payment status.
func (q *queries) UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE payments SET status = $2, updated_at = $3 WHERE id = $1`,
		id, status, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	return expectOne(tag, "payment")
}

// ListPaymentsByEvent returns the payments of all registrations of an event.
func (q *queries) ListPaymentsByEvent(ctx context.Context, eventID string) ([]model.Payment, error) {
	rows, err := q.db.Query(ctx,
		`SELECT p.id, p.registration_id, p.amount, p.status, p.payment_date, p.updated_at
		 FROM payments p
		 JOIN registrations r ON r.id = p.registration_id
		 WHERE r.event_id = $1
		 ORDER BY p.payment_date ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.Amount, &p.Status, &p.PaymentDate, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
