package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

const userColumns = `id, name, email, role, wallet_balance, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.WalletBalance, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. The balance starts at whatever u carries,
// normally zero.
func (q *queries) CreateUser(ctx context.Context, u *model.User) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Name, u.Email, u.Role, u.WalletBalance, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if code, _, ok := constraintViolation(err); ok && code == pgUniqueViolation {
			return fmt.Errorf("email %q already in use: %w", u.Email, model.ErrInvalidInput)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns a single user or model.ErrNotFound.
func (q *queries) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

// ListUsers returns all users ordered by creation time.
func (q *queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser writes the profile fields. The wallet balance is not touched.
func (q *queries) UpdateUser(ctx context.Context, u *model.User) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE users SET name = $2, email = $3, role = $4, updated_at = $5 WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Role, u.UpdatedAt,
	)
	if err != nil {
		if code, _, ok := constraintViolation(err); ok && code == pgUniqueViolation {
			return fmt.Errorf("email %q already in use: %w", u.Email, model.ErrInvalidInput)
		}
		return fmt.Errorf("update user: %w", err)
	}
	return expectOne(tag, "user")
}

// DeleteUser removes a user together with its wallet history and
// notifications.
func (q *queries) DeleteUser(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectOne(tag, "user")
}

// CountUserHoldings counts registrations in any status and organized
// events. Cancelled registrations keep their payment history, so they pin
// the user as well.
func (q *queries) CountUserHoldings(ctx context.Context, userID string) (int, error) {
	var n int
	err := q.db.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM registrations WHERE user_id = $1)
		      + (SELECT COUNT(*) FROM events WHERE organizer_id = $1)`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count user holdings: %w", err)
	}
	return n, nil
}

// CreditBalance adds amount to the wallet in a single statement.
func (q *queries) CreditBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.db.QueryRow(ctx,
		`UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = $3
		 WHERE id = $1
		 RETURNING wallet_balance`,
		userID, amount, time.Now().UTC(),
	).Scan(&balance)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgNumericRange {
			return decimal.Zero, fmt.Errorf("balance would exceed %s: %w", model.MaxAmount.StringFixed(2), model.ErrInvalidInput)
		}
		return decimal.Zero, notFound(err, "user")
	}
	return balance, nil
}

// DebitBalance is a conditional decrement: the row is only updated when the
// balance covers the amount, so concurrent debits can never overdraw it.
func (q *queries) DebitBalance(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := q.db.QueryRow(ctx,
		`UPDATE users SET wallet_balance = wallet_balance - $2, updated_at = $3
		 WHERE id = $1 AND wallet_balance >= $2
		 RETURNING wallet_balance`,
		userID, amount, time.Now().UTC(),
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("debit balance: %w", err)
	}

	found, exErr := q.exists(ctx, "users", userID)
	if exErr != nil {
		return decimal.Zero, exErr
	}
	if !found {
		return decimal.Zero, fmt.Errorf("user: %w", model.ErrNotFound)
	}
	return decimal.Zero, model.ErrInsufficientFunds
}

// CreateTransaction appends a wallet audit record.
func (q *queries) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	_, err := q.db.Exec(ctx,
		`INSERT INTO transactions (id, user_id, type, amount, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.UserID, t.Type, t.Amount, t.Description, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's wallet history newest first.
func (q *queries) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, user_id, type, amount, description, created_at
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Type, &t.Amount, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
