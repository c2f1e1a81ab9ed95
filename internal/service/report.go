package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// ReportService stores report snapshots for event organizers. Generated
// reports are computed from one consistent read of the event's ledger.
type ReportService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewReportService constructs a ReportService with its dependencies.
func NewReportService(store repository.Store, logger *zap.Logger) *ReportService {
	return &ReportService{store: store, logger: logger}
}

// Create stores a report with caller-supplied parameters. The organizer
// must be the event's organizer and defaults to it.
func (s *ReportService) Create(ctx context.Context, req model.CreateReportRequest) (*model.Report, error) {
	req.EventID = strings.TrimSpace(req.EventID)
	req.OrganizerID = strings.TrimSpace(req.OrganizerID)
	req.Title = strings.TrimSpace(req.Title)
	if err := required("event_id", req.EventID); err != nil {
		return nil, err
	}
	if err := required("title", req.Title); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, invalid("unknown report type %q", req.Type)
	}
	if len(req.Parameters) > 0 && !json.Valid(req.Parameters) {
		return nil, invalid("parameters must be valid JSON")
	}

	var report *model.Report
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		event, err := q.GetEvent(ctx, req.EventID)
		if err != nil {
			return err
		}
		if req.OrganizerID == "" {
			req.OrganizerID = event.OrganizerID
		}
		if req.OrganizerID != event.OrganizerID {
			return invalid("organizer_id does not organize event %s", event.ID)
		}
		report = &model.Report{
			ID:          uuid.NewString(),
			EventID:     event.ID,
			OrganizerID: event.OrganizerID,
			Type:        req.Type,
			Title:       req.Title,
			Parameters:  req.Parameters,
			CreatedAt:   now(),
		}
		return q.CreateReport(ctx, report)
	})
	if err != nil {
		return nil, err
	}
	if len(report.Parameters) == 0 {
		report.Parameters = json.RawMessage(`{}`)
	}

	s.logger.Info("report created",
		zap.String("report_id", report.ID),
		zap.String("event_id", report.EventID),
		zap.String("type", string(report.Type)),
	)
	return report, nil
}

// GenerateAttendance stores an ATTENDANCE report listing every
// registration of the event with per-status and per-ticket-type counts.
func (s *ReportService) GenerateAttendance(ctx context.Context, eventID string) (*model.Report, error) {
	return s.generate(ctx, eventID, model.ReportAttendance, func(ctx context.Context, q repository.Queries, event *model.Event, regs []model.Registration) (any, error) {
		figures := model.AttendanceFigures{
			TotalRegistrations: len(regs),
			ByStatus:           map[model.RegistrationStatus]int{},
			ByTicketType:       map[model.TicketType]int{},
			CurrentCapacity:    event.CurrentCapacity,
			MaxCapacity:        event.MaxCapacity,
			Registrations:      make([]model.AttendanceEntry, 0, len(regs)),
		}
		users := map[string]*model.User{}
		for _, r := range regs {
			u, ok := users[r.UserID]
			if !ok {
				var err error
				if u, err = q.GetUser(ctx, r.UserID); err != nil {
					return nil, err
				}
				users[r.UserID] = u
			}
			entry := model.AttendanceEntry{
				RegistrationID: r.ID,
				UserID:         u.ID,
				UserName:       u.Name,
				UserEmail:      u.Email,
				Status:         r.Status,
			}
			figures.ByStatus[r.Status]++
			if r.Ticket != nil {
				entry.TicketType = r.Ticket.Type
				figures.ByTicketType[r.Ticket.Type]++
			}
			figures.Registrations = append(figures.Registrations, entry)
		}
		return figures, nil
	})
}

// GenerateSales stores a SALES report with per-ticket sales and revenue
// from completed payments.
func (s *ReportService) GenerateSales(ctx context.Context, eventID string) (*model.Report, error) {
	return s.generate(ctx, eventID, model.ReportSales, func(_ context.Context, _ repository.Queries, event *model.Event, regs []model.Registration) (any, error) {
		revenue := map[string]decimal.Decimal{}
		figures := model.SalesFigures{TotalRevenue: decimal.Zero}
		for _, r := range regs {
			switch {
			case r.Payment == nil:
				figures.Payments.Unpaid++
			case r.Payment.Status == model.PaymentRefunded:
				figures.Payments.Refunded++
			case r.Payment.Status == model.PaymentCompleted:
				figures.Payments.Completed++
				figures.TotalRevenue = figures.TotalRevenue.Add(r.Payment.Amount)
				revenue[r.TicketID] = revenue[r.TicketID].Add(r.Payment.Amount)
			}
		}
		figures.Tickets = make([]model.TicketSales, 0, len(event.Tickets))
		for _, t := range event.Tickets {
			figures.Tickets = append(figures.Tickets, model.TicketSales{
				TicketID:  t.ID,
				Type:      t.Type,
				Price:     t.Price,
				Sold:      t.Quantity - t.RemainingCount,
				Remaining: t.RemainingCount,
				Revenue:   revenue[t.ID],
			})
		}
		return figures, nil
	})
}

type reportFigures func(ctx context.Context, q repository.Queries, event *model.Event, regs []model.Registration) (any, error)

func (s *ReportService) generate(ctx context.Context, eventID string, typ model.ReportType, compute reportFigures) (*model.Report, error) {
	var report *model.Report
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		event, err := q.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		regs, err := q.ListRegistrationsByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		figures, err := compute(ctx, q, event, regs)
		if err != nil {
			return err
		}
		params, err := json.Marshal(figures)
		if err != nil {
			return fmt.Errorf("encode %s report: %w", typ, err)
		}

		report = &model.Report{
			ID:          uuid.NewString(),
			EventID:     event.ID,
			OrganizerID: event.OrganizerID,
			Type:        typ,
			Title:       fmt.Sprintf("%s Report - %s", reportLabel(typ), event.Title),
			Parameters:  params,
			CreatedAt:   now(),
		}
		return q.CreateReport(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("report generated",
		zap.String("report_id", report.ID),
		zap.String("event_id", eventID),
		zap.String("type", string(typ)),
	)
	return report, nil
}

func reportLabel(typ model.ReportType) string {
	switch typ {
	case model.ReportAttendance:
		return "Attendance"
	case model.ReportSales:
		return "Sales"
	}
	return "Custom"
}

// ListByEvent returns the reports of an event, newest first.
func (s *ReportService) ListByEvent(ctx context.Context, eventID string) ([]model.Report, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListReportsByEvent(ctx, eventID)
}

// ListByOrganizer returns the reports kept for an organizer, newest first.
func (s *ReportService) ListByOrganizer(ctx context.Context, organizerID string) ([]model.Report, error) {
	if _, err := s.store.GetUser(ctx, organizerID); err != nil {
		return nil, err
	}
	return s.store.ListReportsByOrganizer(ctx, organizerID)
}
