package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/notify"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// PaymentService pays for registrations from the wallet and refunds them.
type PaymentService struct {
	store    repository.Store
	wallet   *WalletService
	notifier *notify.Dispatcher
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewPaymentService constructs a PaymentService with its dependencies.
func NewPaymentService(
	store repository.Store,
	wallet *WalletService,
	notifier *notify.Dispatcher,
	logger *zap.Logger,
	m *metrics.Metrics,
) *PaymentService {
	return &PaymentService{store: store, wallet: wallet, notifier: notifier, logger: logger, metrics: m}
}

// Create charges the ticket price to the registrant's wallet, records a
// COMPLETED payment and approves the registration. When the wallet cannot
// cover the price nothing changes and the error matches both
// model.ErrPaymentFailed and model.ErrInsufficientFunds.
func (s *PaymentService) Create(ctx context.Context, req model.CreatePaymentRequest) (*model.PaymentResult, error) {
	id := strings.TrimSpace(req.RegistrationID)
	if err := required("registration_id", id); err != nil {
		return nil, err
	}

	var (
		result  *model.PaymentResult
		notices []model.Notice
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		current, err := q.GetRegistrationForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Payment != nil {
			return model.ErrAlreadyPaid
		}
		if !current.IsLive() {
			return fmt.Errorf("registration is cancelled: %w", model.ErrInvalidState)
		}

		amount := current.Ticket.Price
		if amount.IsPositive() {
			if _, _, err := s.wallet.Debit(ctx, q, current.UserID, amount, "Payment for registration "+current.ID); err != nil {
				return fmt.Errorf("%w: %w", model.ErrPaymentFailed, err)
			}
		}

		ts := now()
		payment := &model.Payment{
			ID:             uuid.NewString(),
			RegistrationID: current.ID,
			Amount:         amount,
			Status:         model.PaymentCompleted,
			PaymentDate:    ts,
			UpdatedAt:      ts,
		}
		if err := q.CreatePayment(ctx, payment); err != nil {
			return err
		}
		if err := q.UpdateRegistrationStatus(ctx, current.ID, model.RegistrationApproved); err != nil {
			return err
		}

		result, err = loadResult(ctx, q, current.ID)
		if err != nil {
			return err
		}
		reg := result.Registration
		notices = []model.Notice{
			{
				Kind:           model.NoticePaymentCompleted,
				UserID:         reg.UserID,
				RegistrationID: reg.ID,
				Title:          "Payment Successful",
				Message:        fmt.Sprintf("Your payment of %s for %s was successful. Your registration is confirmed.", amount.StringFixed(2), reg.Event.Title),
				OccurredAt:     ts,
			},
			{
				Kind:           model.NoticePaymentReceived,
				UserID:         reg.Event.OrganizerID,
				RegistrationID: reg.ID,
				Title:          "Payment Received",
				Message:        fmt.Sprintf("Payment of %s received for %s from %s.", amount.StringFixed(2), reg.Event.Title, reg.User.Name),
				OccurredAt:     ts,
			},
		}
		return nil
	})
	s.metrics.RecordPayment(outcome(err))
	if err != nil {
		return nil, err
	}
	if result.Payment.Amount.IsPositive() {
		s.metrics.RecordWallet(string(model.TransactionWithdrawal))
	}

	s.logger.Info("payment completed",
		zap.String("registration_id", id),
		zap.String("payment_id", result.Payment.ID),
		zap.String("amount", result.Payment.Amount.String()),
	)
	s.notifier.Dispatch(ctx, notices)
	return result, nil
}

// Refund returns a completed payment to the registrant's wallet, marks it
// REFUNDED and cancels the registration, releasing its ticket and seat.
func (s *PaymentService) Refund(ctx context.Context, registrationID string) (*model.PaymentResult, error) {
	var (
		result  *model.PaymentResult
		notices []model.Notice
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		current, err := q.GetRegistrationForUpdate(ctx, registrationID)
		if err != nil {
			return err
		}
		if current.Payment == nil {
			return model.ErrNoPayment
		}
		if current.Payment.Status == model.PaymentRefunded {
			return model.ErrAlreadyRefunded
		}

		if err := refundPayment(ctx, q, s.wallet, current, "Refund for registration "+current.ID); err != nil {
			return err
		}
		if current.IsLive() {
			if err := q.UpdateRegistrationStatus(ctx, current.ID, model.RegistrationCancelled); err != nil {
				return err
			}
			if err := release(ctx, q, current); err != nil {
				return err
			}
		}

		result, err = loadResult(ctx, q, current.ID)
		if err != nil {
			return err
		}
		reg := result.Registration
		amount := reg.Payment.Amount.StringFixed(2)
		ts := now()
		notices = []model.Notice{
			{
				Kind:           model.NoticeRefundIssued,
				UserID:         reg.UserID,
				RegistrationID: reg.ID,
				Title:          "Refund Issued",
				Message:        fmt.Sprintf("%s has been returned to your wallet for %s.", amount, reg.Event.Title),
				OccurredAt:     ts,
			},
			{
				Kind:           model.NoticeRefundProcessed,
				UserID:         reg.Event.OrganizerID,
				RegistrationID: reg.ID,
				Title:          "Refund Processed",
				Message:        fmt.Sprintf("A refund of %s was processed for %s to %s.", amount, reg.Event.Title, reg.User.Name),
				OccurredAt:     ts,
			},
		}
		return nil
	})
	s.metrics.RecordRefund(outcome(err))
	if err != nil {
		return nil, err
	}
	if result.Payment.Amount.IsPositive() {
		s.metrics.RecordWallet(string(model.TransactionRefund))
	}

	s.logger.Info("payment refunded",
		zap.String("registration_id", registrationID),
		zap.String("payment_id", result.Payment.ID),
	)
	s.notifier.Dispatch(ctx, notices)
	return result, nil
}

// GetByRegistration returns the payment of a registration.
func (s *PaymentService) GetByRegistration(ctx context.Context, registrationID string) (*model.Payment, error) {
	if _, err := s.store.GetRegistration(ctx, registrationID); err != nil {
		return nil, err
	}
	return s.store.GetPaymentByRegistration(ctx, registrationID)
}

// ListByEvent returns every payment made for an event.
func (s *PaymentService) ListByEvent(ctx context.Context, eventID string) ([]model.Payment, error) {
	if _, err := s.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.store.ListPaymentsByEvent(ctx, eventID)
}

func loadResult(ctx context.Context, q repository.Queries, registrationID string) (*model.PaymentResult, error) {
	reg, err := loadRegistration(ctx, q, registrationID)
	if err != nil {
		return nil, err
	}
	balance := decimal.Zero
	if reg.User != nil {
		balance = reg.User.WalletBalance
	}
	return &model.PaymentResult{Registration: reg, WalletBalance: balance}, nil
}
