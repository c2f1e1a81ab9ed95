// Package service implements the ticketing core: the wallet, registration
// and payment engines plus the supporting event, user and notification
// services. Every multi-record change runs in one unit of work; notices are
// dispatched only after it commits.
package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
)

// outcome turns an operation result into a metrics label.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, model.ErrDuplicateRegistration):
		return "duplicate"
	case errors.Is(err, model.ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, model.ErrAlreadyRefunded):
		return "already_refunded"
	case errors.Is(err, model.ErrNoPayment):
		return "no_payment"
	case errors.Is(err, model.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, model.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), model.ErrInvalidInput)
}

// validAmount checks that amount is a positive money value the ledger can
// store exactly.
func validAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return invalid("amount must be greater than zero")
	case !amount.Equal(amount.Round(2)):
		return invalid("amount must have at most two decimal places")
	case amount.GreaterThan(model.MaxAmount):
		return invalid("amount must not exceed %s", model.MaxAmount.StringFixed(2))
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid("%s is required", field)
	}
	return nil
}

// isValidEmail does a structural check of a bare address.
func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	parts := strings.Split(email, "@")
	return len(parts) == 2 && strings.Contains(parts[1], ".")
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
