package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

const maxEventCapacity = 100_000

// EventService manages events and their ticket types.
type EventService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(store repository.Store, logger *zap.Logger) *EventService {
	return &EventService{store: store, logger: logger}
}

// Create validates the request and stores the event with its tickets.
// Every ticket starts with its full quantity available.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.OrganizerID = strings.TrimSpace(req.OrganizerID)
	if err := required("title", req.Title); err != nil {
		return nil, err
	}
	if err := required("organizer_id", req.OrganizerID); err != nil {
		return nil, err
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, invalid("start_date and end_date are required")
	}
	if !req.StartDate.Before(req.EndDate) {
		return nil, invalid("start_date must be before end_date")
	}
	if req.MaxCapacity <= 0 {
		return nil, invalid("max_capacity must be a positive integer")
	}
	if req.MaxCapacity > maxEventCapacity {
		return nil, invalid("max_capacity cannot exceed 100,000")
	}
	if len(req.Tickets) == 0 {
		return nil, invalid("at least one ticket is required")
	}
	for i, t := range req.Tickets {
		if !t.Type.Valid() {
			return nil, invalid("tickets[%d]: unknown type %q", i, t.Type)
		}
		if t.Price.IsNegative() {
			return nil, invalid("tickets[%d]: price must not be negative", i)
		}
		if t.Price.Round(2).GreaterThan(model.MaxAmount) {
			return nil, invalid("tickets[%d]: price must not exceed %s", i, model.MaxAmount.StringFixed(2))
		}
		if t.Quantity <= 0 {
			return nil, invalid("tickets[%d]: quantity must be a positive integer", i)
		}
	}

	ts := now()
	event := &model.Event{
		ID:          uuid.NewString(),
		OrganizerID: req.OrganizerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    strings.TrimSpace(req.Category),
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Location:    strings.TrimSpace(req.Location),
		MaxCapacity: req.MaxCapacity,
		IsActive:    true,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		if _, err := q.GetUser(ctx, req.OrganizerID); err != nil {
			return fmt.Errorf("organizer: %w", err)
		}
		if err := q.CreateEvent(ctx, event); err != nil {
			return err
		}
		for _, t := range req.Tickets {
			ticket := model.Ticket{
				ID:             uuid.NewString(),
				EventID:        event.ID,
				Type:           t.Type,
				Price:          t.Price.Round(2),
				Quantity:       t.Quantity,
				RemainingCount: t.Quantity,
				Benefits:       t.Benefits,
				CreatedAt:      ts,
			}
			if err := q.CreateTicket(ctx, &ticket); err != nil {
				return err
			}
			event.Tickets = append(event.Tickets, ticket)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", event.OrganizerID),
		zap.Int("tickets", len(event.Tickets)),
	)
	return event, nil
}

// Get returns a single event with its tickets.
func (s *EventService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, invalid("event id is required")
	}
	return s.store.GetEvent(ctx, id)
}

// List returns all events, newest first.
func (s *EventService) List(ctx context.Context) ([]model.Event, error) {
	return s.store.ListEvents(ctx)
}

// Search returns active events matching every given filter. With both
// price bounds an event matches when all its ticket prices lie inside the
// range; with one bound only the cheapest (min) or dearest (max) ticket is
// compared. Events without tickets pass the price filter.
func (s *EventService) Search(ctx context.Context, f model.EventSearch) ([]model.Event, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return nil, invalid("min_price must not exceed max_price")
	}
	events, err := s.store.SearchEvents(ctx, f)
	if err != nil {
		return nil, err
	}
	if f.MinPrice == nil && f.MaxPrice == nil {
		return events, nil
	}

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if priceMatches(e.Tickets, f.MinPrice, f.MaxPrice) {
			out = append(out, e)
		}
	}
	return out, nil
}

func priceMatches(tickets []model.Ticket, minPrice, maxPrice *decimal.Decimal) bool {
	if len(tickets) == 0 {
		return true
	}
	lo, hi := tickets[0].Price, tickets[0].Price
	for _, t := range tickets[1:] {
		lo = decimal.Min(lo, t.Price)
		hi = decimal.Max(hi, t.Price)
	}
	if minPrice != nil && lo.LessThan(*minPrice) {
		return false
	}
	if maxPrice != nil && hi.GreaterThan(*maxPrice) {
		return false
	}
	return true
}

// Update applies the non-nil fields of req. The capacity can not drop
// below the seats already taken.
func (s *EventService) Update(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	var event *model.Event
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		current, err := q.GetEventForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Title != nil {
			if err := required("title", *req.Title); err != nil {
				return err
			}
			current.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			current.Description = *req.Description
		}
		if req.Category != nil {
			current.Category = strings.TrimSpace(*req.Category)
		}
		if req.Location != nil {
			current.Location = strings.TrimSpace(*req.Location)
		}
		if req.StartDate != nil {
			current.StartDate = req.StartDate.UTC()
		}
		if req.EndDate != nil {
			current.EndDate = req.EndDate.UTC()
		}
		if !current.StartDate.Before(current.EndDate) {
			return invalid("start_date must be before end_date")
		}
		if req.MaxCapacity != nil {
			if *req.MaxCapacity <= 0 || *req.MaxCapacity > maxEventCapacity {
				return invalid("max_capacity must be between 1 and 100,000")
			}
			if *req.MaxCapacity < current.CurrentCapacity {
				return fmt.Errorf("max_capacity %d is below the %d seats taken: %w",
					*req.MaxCapacity, current.CurrentCapacity, model.ErrInvalidState)
			}
			current.MaxCapacity = *req.MaxCapacity
		}
		if req.IsActive != nil {
			current.IsActive = *req.IsActive
		}
		current.UpdatedAt = now()

		if err := q.UpdateEvent(ctx, current); err != nil {
			return err
		}
		event, err = q.GetEvent(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("event updated", zap.String("event_id", id))
	return event, nil
}

// Deactivate stops new registrations for the event. Existing registrations
// are kept.
func (s *EventService) Deactivate(ctx context.Context, id string) (*model.Event, error) {
	inactive := false
	return s.Update(ctx, id, model.UpdateEventRequest{IsActive: &inactive})
}

// Delete removes the event with its tickets, registrations and payments.
func (s *EventService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("event deleted", zap.String("event_id", id))
	return nil
}

// Summary aggregates registrations and sales of an event.
func (s *EventService) Summary(ctx context.Context, id string) (*model.EventSummary, error) {
	var summary *model.EventSummary
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		event, err := q.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		regs, err := q.ListRegistrationsByEvent(ctx, id)
		if err != nil {
			return err
		}

		summary = &model.EventSummary{
			EventID:         event.ID,
			Title:           event.Title,
			MaxCapacity:     event.MaxCapacity,
			CurrentCapacity: event.CurrentCapacity,
			Remaining:       event.Remaining(),
			ByStatus:        map[model.RegistrationStatus]int{},
			ByTicketType:    map[model.TicketType]int{},
			Revenue:         decimal.Zero,
			Refunded:        decimal.Zero,
		}
		for _, r := range regs {
			summary.ByStatus[r.Status]++
			if r.Ticket != nil {
				summary.ByTicketType[r.Ticket.Type]++
			}
			if p := r.Payment; p != nil {
				switch p.Status {
				case model.PaymentCompleted:
					summary.Revenue = summary.Revenue.Add(p.Amount)
				case model.PaymentRefunded:
					summary.Refunded = summary.Refunded.Add(p.Amount)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
