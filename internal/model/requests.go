package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateUserRequest is the payload for creating a user.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UpdateUserRequest is the payload for editing a user profile.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *Role   `json:"role"`
}

// CreateTicketRequest defines one ticket type nested in an event.
type CreateTicketRequest struct {
	Type     TicketType      `json:"type"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Benefits string          `json:"benefits"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	OrganizerID string                `json:"organizer_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	StartDate   time.Time             `json:"start_date"`
	EndDate     time.Time             `json:"end_date"`
	Location    string                `json:"location"`
	MaxCapacity int                   `json:"max_capacity"`
	Tickets     []CreateTicketRequest `json:"tickets"`
}

// UpdateEventRequest is the payload for editing an event.
// Nil fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Location    *string    `json:"location"`
	MaxCapacity *int       `json:"max_capacity"`
	IsActive    *bool      `json:"is_active"`
}

// EventSearch filters active events. Zero values mean "no filter".
type EventSearch struct {
	Category  string
	StartFrom *time.Time
	EndUntil  *time.Time
	Location  string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

// CreateRegistrationRequest is the payload for registering for an event.
type CreateRegistrationRequest struct {
	UserID   string `json:"user_id"`
	EventID  string `json:"event_id"`
	TicketID string `json:"ticket_id"`
}

// UpdateRegistrationStatusRequest is the administrative status overwrite.
type UpdateRegistrationStatusRequest struct {
	Status RegistrationStatus `json:"status"`
}

// CreatePaymentRequest pays for a registration from the wallet. The amount
// is always the ticket price.
type CreatePaymentRequest struct {
	RegistrationID string `json:"registration_id"`
}

// DepositRequest adds funds to a wallet.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// BalanceResponse reports a wallet balance.
type BalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// DepositResponse reports the balance after a deposit and its transaction.
type DepositResponse struct {
	Balance     decimal.Decimal `json:"balance"`
	Transaction *Transaction    `json:"transaction"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PaymentResult is the registration after a payment or refund together
// with the owner's wallet balance at commit.
type PaymentResult struct {
	*Registration
	WalletBalance decimal.Decimal `json:"wallet_balance"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
