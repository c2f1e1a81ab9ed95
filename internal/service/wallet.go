package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/model"
	"github.com/Shivanand-hulikatti/event-wallet-ticketing/internal/repository"
)

// WalletService owns every change to a user's wallet balance. Each change
// is paired with a Transaction row in the same unit of work.
type WalletService struct {
	store   repository.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewWalletService constructs a WalletService with its dependencies.
func NewWalletService(store repository.Store, logger *zap.Logger, m *metrics.Metrics) *WalletService {
	return &WalletService{store: store, logger: logger, metrics: m}
}

// Debit takes amount from the balance inside the caller's unit of work and
// records a WITHDRAWAL. It fails with model.ErrInsufficientFunds when the
// balance does not cover amount, leaving q untouched.
func (s *WalletService) Debit(ctx context.Context, q repository.Queries, userID string, amount decimal.Decimal, description string) (*model.Transaction, decimal.Decimal, error) {
	return s.apply(ctx, q, userID, model.TransactionWithdrawal, amount, description)
}

// Credit adds amount to the balance inside the caller's unit of work and
// records a REFUND.
func (s *WalletService) Credit(ctx context.Context, q repository.Queries, userID string, amount decimal.Decimal, description string) (*model.Transaction, decimal.Decimal, error) {
	return s.apply(ctx, q, userID, model.TransactionRefund, amount, description)
}

func (s *WalletService) apply(
	ctx context.Context,
	q repository.Queries,
	userID string,
	txType model.TransactionType,
	amount decimal.Decimal,
	description string,
) (*model.Transaction, decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		return nil, decimal.Zero, err
	}

	var (
		balance decimal.Decimal
		err     error
	)
	if txType == model.TransactionWithdrawal {
		balance, err = q.DebitBalance(ctx, userID, amount)
	} else {
		balance, err = q.CreditBalance(ctx, userID, amount)
	}
	if err != nil {
		return nil, decimal.Zero, err
	}

	t := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		CreatedAt:   now(),
	}
	if err := q.CreateTransaction(ctx, t); err != nil {
		return nil, decimal.Zero, fmt.Errorf("record %s: %w", txType, err)
	}
	return t, balance, nil
}

// Deposit adds funds to the wallet.
func (s *WalletService) Deposit(ctx context.Context, userID string, amount decimal.Decimal) (*model.DepositResponse, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	var resp model.DepositResponse
	err := s.store.WithTransaction(ctx, func(ctx context.Context, q repository.Queries) error {
		t, balance, err := s.apply(ctx, q, userID, model.TransactionDeposit, amount, "Wallet deposit")
		if err != nil {
			return err
		}
		resp = model.DepositResponse{Balance: balance, Transaction: t}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordWallet(string(model.TransactionDeposit))
	s.logger.Info("wallet deposit",
		zap.String("user_id", userID),
		zap.String("amount", amount.String()),
		zap.String("balance", resp.Balance.String()),
	)
	return &resp, nil
}

// GetBalance returns the current balance of the user.
func (s *WalletService) GetBalance(ctx context.Context, userID string) (*model.BalanceResponse, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.BalanceResponse{Balance: u.WalletBalance}, nil
}

// ListTransactions returns the user's wallet history, newest first.
func (s *WalletService) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, userID)
}
