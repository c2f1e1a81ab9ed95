package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// PostgreSQL error codes the store translates into domain errors.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
	pgInvalidText     = "22P02"
	pgNumericRange    = "22003"
)

// Constraint names from schema.sql that carry domain meaning.
const (
	constraintLiveRegistration = "registrations_live_user_event_key"
	constraintPaymentPerReg    = "payments_registration_id_key"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query code
// runs in autocommit mode and inside a unit of work.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries implements Queries against a dbtx.
type queries struct {
	db dbtx
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	*queries
	pool *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{queries: &queries{db: pool}, pool: pool}
}

// WithTransaction executes fn within a database transaction. The Queries
// handed to fn is bound to the transaction; row locks taken through it are
// held until commit or rollback.
func (s *PostgresStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, q Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// notFound maps pgx.ErrNoRows to model.ErrNotFound with the entity name.
// A malformed uuid can never match a row, so it is reported the same way.
func notFound(err error, entity string) error {
	var pgErr *pgconn.PgError
	if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == pgInvalidText) {
		return fmt.Errorf("%s: %w", entity, model.ErrNotFound)
	}
	return err
}

// constraintViolation reports the violated constraint for unique and check
// violations.
func constraintViolation(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgUniqueViolation || pgErr.Code == pgCheckViolation) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

// expectOne fails with model.ErrNotFound when an UPDATE or DELETE touched
// no row.
func expectOne(tag pgconn.CommandTag, entity string) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", entity, model.ErrNotFound)
	}
	return nil
}

// exists reports whether a row with the given id is present in table.
// table is always a package constant, never caller input.
func (q *queries) exists(ctx context.Context, table, id string) (bool, error) {
	var ok bool
	err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check %s exists: %w", table, err)
	}
	return ok, nil
}

var _ Store = (*PostgresStore)(nil)
