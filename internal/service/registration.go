package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/notify"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// RegistrationService creates and cancels registrations, keeping ticket
// inventory and event capacity in lockstep with registration state.
type RegistrationService struct {
	store    repository.Store
	wallet   *WalletService
	notifier *notify.Dispatcher
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewRegistrationService constructs a RegistrationService with its dependencies.
func NewRegistrationService(
	store repository.Store,
	wallet *WalletService,
	notifier *notify.Dispatcher,
	logger *zap.Logger,
	m *metrics.Metrics,
) *RegistrationService {
	return &RegistrationService{store: store, wallet: wallet, notifier: notifier, logger: logger, metrics: m}
}

// Create registers the user for one ticket of an event. The registration
// starts PENDING and holds one ticket and one seat until it is cancelled.
func (s *RegistrationService) Create(ctx context.Context, req model.CreateRegistrationRequest) (*model.Registration, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.EventID = strings.TrimSpace(req.EventID)
	req.TicketID = strings.TrimSpace(req.TicketID)
	if err := required("user_id", req.UserID); err != nil {
		return nil, err
	}
	if err := required("event_id", req.EventID); err != nil {
		return nil, err
	}
	if err := required("ticket_id", req.TicketID); err != nil {
		return nil, err
	}

	var (
		reg     *model.Registration
		notices []model.Notice
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		user, err := q.GetUser(ctx, req.UserID)
		if err != nil {
			return err
		}
		// Locking the event serializes registrations per event.
		event, err := q.GetEventForUpdate(ctx, req.EventID)
		if err != nil {
			return err
		}
		ticket, err := q.GetTicket(ctx, req.EventID, req.TicketID)
		if err != nil {
			return err
		}
		if !event.IsActive {
			return fmt.Errorf("event is not active: %w", model.ErrInvalidState)
		}
		if ticket.SoldOut() {
			return fmt.Errorf("ticket is sold out: %w", model.ErrSoldOut)
		}
		if event.IsFull() {
			return fmt.Errorf("event is at capacity: %w", model.ErrSoldOut)
		}
		if _, err := q.FindLiveRegistration(ctx, user.ID, event.ID); err == nil {
			return model.ErrDuplicateRegistration
		} else if !isNotFound(err) {
			return err
		}

		if err := q.TakeTicket(ctx, event.ID, ticket.ID); err != nil {
			return err
		}
		if err := q.OccupySeat(ctx, event.ID); err != nil {
			return err
		}

		ts := now()
		reg = &model.Registration{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			EventID:   event.ID,
			TicketID:  ticket.ID,
			Status:    model.RegistrationPending,
			CreatedAt: ts,
			UpdatedAt: ts,
		}
		if err := q.CreateRegistration(ctx, reg); err != nil {
			return err
		}

		reg, err = loadRegistration(ctx, q, reg.ID)
		if err != nil {
			return err
		}
		notices = []model.Notice{
			{
				Kind:           model.NoticeRegistrationPending,
				UserID:         user.ID,
				RegistrationID: reg.ID,
				Title:          "Registration Pending",
				Message:        fmt.Sprintf("Your registration for %s is pending. Please complete the payment to confirm your spot.", reg.Event.Title),
				OccurredAt:     ts,
			},
			{
				Kind:           model.NoticeRegistrationReceived,
				UserID:         reg.Event.OrganizerID,
				RegistrationID: reg.ID,
				Title:          "New Registration",
				Message:        fmt.Sprintf("New registration received for %s from %s.", reg.Event.Title, user.Name),
				OccurredAt:     ts,
			},
		}
		return nil
	})
	s.metrics.RecordRegistration("create", outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("user_id", reg.UserID),
		zap.String("event_id", reg.EventID),
		zap.String("ticket_id", reg.TicketID),
	)
	s.notifier.Dispatch(ctx, notices)
	return reg, nil
}

// Cancel moves a live registration to CANCELLED, returns its ticket and
// seat, and refunds a completed payment to the owner's wallet.
func (s *RegistrationService) Cancel(ctx context.Context, id string) (*model.Registration, error) {
	var (
		reg     *model.Registration
		notices []model.Notice
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		var err error
		reg, notices, err = s.cancel(ctx, q, id)
		return err
	})
	s.metrics.RecordRegistration("cancel", outcome(err))
	if err != nil {
		return nil, err
	}
	if reg.Payment != nil && reg.Payment.Status == model.PaymentRefunded {
		s.metrics.RecordWallet(string(model.TransactionRefund))
	}

	s.logger.Info("registration cancelled", zap.String("registration_id", id))
	s.notifier.Dispatch(ctx, notices)
	return reg, nil
}

func (s *RegistrationService) cancel(ctx context.Context, q repository.Queries, id string) (*model.Registration, []model.Notice, error) {
	current, err := q.GetRegistrationForUpdate(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !current.IsLive() {
		return nil, nil, fmt.Errorf("registration is already cancelled: %w", model.ErrInvalidState)
	}

	refunded := false
	if p := current.Payment; p != nil && p.Status == model.PaymentCompleted {
		if err := refundPayment(ctx, q, s.wallet, current, "Refund for cancelled registration"); err != nil {
			return nil, nil, err
		}
		refunded = true
	}
	if err := q.UpdateRegistrationStatus(ctx, id, model.RegistrationCancelled); err != nil {
		return nil, nil, err
	}
	if err := release(ctx, q, current); err != nil {
		return nil, nil, err
	}

	reg, err := loadRegistration(ctx, q, id)
	if err != nil {
		return nil, nil, err
	}
	ts := now()
	notices := []model.Notice{
		{
			Kind:           model.NoticeRegistrationCancelled,
			UserID:         reg.UserID,
			RegistrationID: reg.ID,
			Title:          "Registration Cancelled",
			Message:        fmt.Sprintf("Your registration for %s has been cancelled.", reg.Event.Title),
			OccurredAt:     ts,
		},
		{
			Kind:           model.NoticeRegistrationCancelled,
			UserID:         reg.Event.OrganizerID,
			RegistrationID: reg.ID,
			Title:          "Registration Cancelled",
			Message:        fmt.Sprintf("A registration for %s has been cancelled by %s.", reg.Event.Title, reg.User.Name),
			OccurredAt:     ts,
		},
	}
	if refunded {
		notices = append(notices, model.Notice{
			Kind:           model.NoticeRefundIssued,
			UserID:         reg.UserID,
			RegistrationID: reg.ID,
			Title:          "Refund Issued",
			Message:        fmt.Sprintf("%s has been returned to your wallet for %s.", reg.Payment.Amount.StringFixed(2), reg.Event.Title),
			OccurredAt:     ts,
		})
	}
	return reg, notices, nil
}

// UpdateStatus overwrites the status of a registration. Moving to
// CANCELLED runs the full cancellation so counters and wallet stay
// consistent; no status leaves CANCELLED.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id string, req model.UpdateRegistrationStatusRequest) (*model.Registration, error) {
	if !req.Status.Valid() {
		return nil, invalid("unknown registration status %q", req.Status)
	}
	if req.Status == model.RegistrationCancelled {
		return s.Cancel(ctx, id)
	}

	var (
		reg     *model.Registration
		notices []model.Notice
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		current, err := q.GetRegistrationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !current.IsLive() {
			return fmt.Errorf("registration is cancelled: %w", model.ErrInvalidState)
		}
		if err := q.UpdateRegistrationStatus(ctx, id, req.Status); err != nil {
			return err
		}
		reg, err = loadRegistration(ctx, q, id)
		if err != nil {
			return err
		}
		notices = []model.Notice{{
			Kind:           model.NoticeRegistrationUpdated,
			UserID:         reg.UserID,
			RegistrationID: reg.ID,
			Title:          "Registration Status Updated",
			Message:        fmt.Sprintf("Your registration for %s has been %s.", reg.Event.Title, strings.ToLower(string(req.Status))),
			OccurredAt:     now(),
		}}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("registration status updated",
		zap.String("registration_id", id),
		zap.String("status", string(req.Status)),
	)
	s.notifier.Dispatch(ctx, notices)
	return reg, nil
}

// Get returns a registration with its user, event, ticket and payment.
func (s *RegistrationService) Get(ctx context.Context, id string) (*model.Registration, error) {
	return loadRegistration(ctx, s.store, id)
}

// ListByEvent returns the registrations of an event in creation order.
func (s *RegistrationService) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListRegistrationsByEvent(ctx, eventID)
}

// ListByUser returns the registrations of a user, newest first.
func (s *RegistrationService) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListRegistrationsByUser(ctx, userID)
}

// release gives back the ticket and seat held by a live registration.
func release(ctx context.Context, q repository.Queries, reg *model.Registration) error {
	if err := q.ReturnTicket(ctx, reg.TicketID); err != nil {
		return fmt.Errorf("return ticket: %w", err)
	}
	if err := q.ReleaseSeat(ctx, reg.EventID); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}

// refundPayment credits a completed payment back to the registrant and
// marks it REFUNDED. The credit happens first so a failure leaves the
// payment untouched.
func refundPayment(ctx context.Context, q repository.Queries, wallet *WalletService, reg *model.Registration, description string) error {
	p := reg.Payment
	if p.Amount.IsPositive() {
		if _, _, err := wallet.Credit(ctx, q, reg.UserID, p.Amount, description); err != nil {
			return fmt.Errorf("refund credit: %w", err)
		}
	}
	if err := q.UpdatePaymentStatus(ctx, p.ID, model.PaymentRefunded); err != nil {
		return err
	}
	return nil
}

// loadRegistration reads a registration and attaches its user and event.
func loadRegistration(ctx context.Context, q repository.Queries, id string) (*model.Registration, error) {
	reg, err := q.GetRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg.User, err = q.GetUser(ctx, reg.UserID); err != nil {
		return nil, err
	}
	if reg.Event, err = q.GetEvent(ctx, reg.EventID); err != nil {
		return nil, err
	}
	return reg, nil
}
