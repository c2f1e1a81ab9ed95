// Package model defines the core domain types for the event ticketing system.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest money value the ledger stores. Amounts carry at
// most two decimal places.
var MaxAmount = decimal.RequireFromString("999999999999999999.99")

// Role distinguishes attendees from event organizers.
type Role string

const (
	RoleAttendee  Role = "ATTENDEE"
	RoleOrganizer Role = "ORGANIZER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAttendee || r == RoleOrganizer
}

// User is an account holder. WalletBalance is only ever changed by the
// wallet engine and never drops below zero.
type User struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          Role            `json:"role"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Event represents a bookable event created by an organizer.
type Event struct {
	ID              string    `json:"id"`
	OrganizerID     string    `json:"organizer_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Category        string    `json:"category"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Location        string    `json:"location"`
	MaxCapacity     int       `json:"max_capacity"`
	CurrentCapacity int       `json:"current_capacity"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Tickets         []Ticket  `json:"tickets,omitempty"`
}

// Remaining returns the number of available seats.
func (e *Event) Remaining() int {
	return e.MaxCapacity - e.CurrentCapacity
}

// IsFull returns true when no seats remain.
func (e *Event) IsFull() bool {
	return e.CurrentCapacity >= e.MaxCapacity
}

// TicketType is the admission category of a ticket.
type TicketType string

const (
	TicketGeneral TicketType = "GENERAL"
	TicketVIP     TicketType = "VIP"
)

// Valid reports whether t is a known ticket type.
func (t TicketType) Valid() bool {
	return t == TicketGeneral || t == TicketVIP
}

// Ticket is a priced ticket type of an event with a finite quantity.
type Ticket struct {
	ID             string          `json:"id"`
	EventID        string          `json:"event_id"`
	Type           TicketType      `json:"type"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	RemainingCount int             `json:"remaining_count"`
	Benefits       string          `json:"benefits,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SoldOut returns true when no tickets of this type remain.
func (t *Ticket) SoldOut() bool {
	return t.RemainingCount <= 0
}

// RegistrationStatus is the lifecycle state of a registration.
// PENDING moves to APPROVED or CANCELLED; APPROVED may move to CANCELLED.
// CANCELLED is terminal.
type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationApproved  RegistrationStatus = "APPROVED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationApproved, RegistrationCancelled:
		return true
	}
	return false
}

// Registration links one user to one ticket of one event.
type Registration struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	EventID   string             `json:"event_id"`
	TicketID  string             `json:"ticket_id"`
	Status    RegistrationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`

	User    *User    `json:"user,omitempty"`
	Event   *Event   `json:"event,omitempty"`
	Ticket  *Ticket  `json:"ticket,omitempty"`
	Payment *Payment `json:"payment,omitempty"`
}

// IsLive reports whether the registration still holds a seat.
func (r *Registration) IsLive() bool {
	return r.Status != RegistrationCancelled
}

// PaymentStatus is the state of a wallet payment.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment records the wallet charge for exactly one registration.
type Payment struct {
	ID             string          `json:"id"`
	RegistrationID string          `json:"registration_id"`
	Amount         decimal.Decimal `json:"amount"`
	Status         PaymentStatus   `json:"status"`
	PaymentDate    time.Time       `json:"payment_date"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TransactionType classifies a wallet movement.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionRefund     TransactionType = "REFUND"
)

// Signed returns the effect of a transaction of this type on a balance.
func (t TransactionType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TransactionWithdrawal {
		return amount.Neg()
	}
	return amount
}

// Transaction is an append-only audit record of a wallet movement.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Notification is an informational message shown to a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// EventSummary aggregates the registration and sales figures of an event.
type EventSummary struct {
	EventID         string                     `json:"event_id"`
	Title           string                     `json:"title"`
	MaxCapacity     int                        `json:"max_capacity"`
	CurrentCapacity int                        `json:"current_capacity"`
	Remaining       int                        `json:"remaining"`
	ByStatus        map[RegistrationStatus]int `json:"registrations_by_status"`
	ByTicketType    map[TicketType]int         `json:"registrations_by_ticket_type"`
	Revenue         decimal.Decimal            `json:"revenue"`
	Refunded        decimal.Decimal            `json:"refunded"`
}
