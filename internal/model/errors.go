package model

import "errors"

var (
	// ErrNotFound is returned when a referenced user, event, ticket,
	// registration or payment does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState is returned when an operation is not valid for the
	// current state of an entity.
	ErrInvalidState = errors.New("invalid state")
	// ErrSoldOut is returned when a ticket or event has no room left.
	ErrSoldOut = errors.New("sold out")
	// ErrDuplicateRegistration is returned when the user already holds a
	// live registration for the event.
	ErrDuplicateRegistration = errors.New("already registered for this event")
	// ErrAlreadyPaid is returned when a registration already has a payment.
	ErrAlreadyPaid = errors.New("payment already exists for this registration")
	// ErrAlreadyRefunded is returned when a payment was already refunded.
	ErrAlreadyRefunded = errors.New("payment has already been refunded")
	// ErrNoPayment is returned when a refund is requested without a payment.
	ErrNoPayment = errors.New("registration has no payment")
	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPaymentFailed wraps wallet failures surfaced by payment creation.
	ErrPaymentFailed = errors.New("payment failed")
)
