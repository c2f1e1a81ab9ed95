package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReportType classifies a stored report.
type ReportType string

const (
	ReportAttendance ReportType = "ATTENDANCE"
	ReportSales      ReportType = "SALES"
	ReportCustom     ReportType = "CUSTOM"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportAttendance, ReportSales, ReportCustom:
		return true
	}
	return false
}

// Report is a snapshot of figures about one event, kept for its organizer.
// Parameters holds the figures as JSON; generated reports store an
// AttendanceFigures or SalesFigures document.
type Report struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	OrganizerID string          `json:"organizer_id"`
	Type        ReportType      `json:"type"`
	Title       string          `json:"title"`
	Parameters  json.RawMessage `json:"parameters"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateReportRequest stores a report with caller-supplied figures.
// OrganizerID defaults to the event's organizer.
type CreateReportRequest struct {
	EventID     string          `json:"event_id"`
	OrganizerID string          `json:"organizer_id"`
	Type        ReportType      `json:"type"`
	Title       string          `json:"title"`
	Parameters  json.RawMessage `json:"parameters"`
}

// AttendanceEntry is one registration in an attendance report.
type AttendanceEntry struct {
	RegistrationID string             `json:"registration_id"`
	UserID         string             `json:"user_id"`
	UserName       string             `json:"user_name"`
	UserEmail      string             `json:"user_email"`
	TicketType     TicketType         `json:"ticket_type"`
	Status         RegistrationStatus `json:"status"`
}

// AttendanceFigures is the body of an ATTENDANCE report.
type AttendanceFigures struct {
	TotalRegistrations int                        `json:"total_registrations"`
	ByStatus           map[RegistrationStatus]int `json:"registrations_by_status"`
	ByTicketType       map[TicketType]int         `json:"registrations_by_ticket_type"`
	CurrentCapacity    int                        `json:"current_capacity"`
	MaxCapacity        int                        `json:"max_capacity"`
	Registrations      []AttendanceEntry          `json:"registrations"`
}

// TicketSales reports the sales of one ticket type.
type TicketSales struct {
	TicketID  string          `json:"ticket_id"`
	Type      TicketType      `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Sold      int             `json:"sold"`
	Remaining int             `json:"remaining"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// PaymentBreakdown counts registrations by payment state.
type PaymentBreakdown struct {
	Completed int `json:"completed"`
	Unpaid    int `json:"unpaid"`
	Refunded  int `json:"refunded"`
}

// SalesFigures is the body of a SALES report. TotalRevenue counts
// completed payments only.
type SalesFigures struct {
	TotalRevenue decimal.Decimal  `json:"total_revenue"`
	Tickets      []TicketSales    `json:"tickets"`
	Payments     PaymentBreakdown `json:"payments"`
}
