package ledger

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mcoot/playerledger/internal/dependencies/clock"
	"github.com/mcoot/playerledger/internal/metrics"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

// Service owns account balances and keeps every balance non-negative
type Service struct {
	store   storage.AccountStore
	clock   clock.Clock
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new ledger service
func New(store storage.AccountStore, clock clock.Clock, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:   store,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

// CreateAccount opens a zero-balance account for playerID.
// The player is assumed to exist.
func (s *Service) CreateAccount(ctx context.Context, playerID model.PlayerID) (*model.Account, error) {
	if !playerID.Valid() {
		return nil, model.ErrInvalidID
	}

	acc, err := s.store.CreateAccount(ctx, playerID, s.clock.Now())
	if err != nil {
		return nil, model.StorageError(err)
	}

	s.metrics.RecordAccountCreated()
	s.logger.Info("account created", "account_id", acc.ID, "player_id", playerID)
	return acc, nil
}

// GetAccount returns the current state of an account
func (s *Service) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	if !id.Valid() {
		return nil, model.ErrInvalidID
	}
	return s.store.GetAccount(ctx, id)
}

// ListAccounts returns every account owned by playerID
func (s *Service) ListAccounts(ctx context.Context, playerID model.PlayerID) ([]*model.Account, error) {
	if !playerID.Valid() {
		return nil, model.ErrInvalidID
	}
	return s.store.ListAccountsByPlayer(ctx, playerID)
}

// Credit adds amount to the balance and logs a CREDIT operation
func (s *Service) Credit(ctx context.Context, id model.AccountID, amount decimal.Decimal) (*model.Account, error) {
	acc, _, err := s.apply(ctx, id, model.OperationCredit, amount)
	return acc, err
}

// Debit subtracts amount from the balance and logs a DEBIT operation.
// Returns model.ErrInsufficientFunds, leaving the account untouched, if the
// balance is smaller than amount.
func (s *Service) Debit(ctx context.Context, id model.AccountID, amount decimal.Decimal) (*model.Account, error) {
	acc, _, err := s.apply(ctx, id, model.OperationDebit, amount)
	return acc, err
}

// apply validates input and runs the balance change as a single storage mutation
func (s *Service) apply(ctx context.Context, id model.AccountID, opType model.OperationType, amount decimal.Decimal) (*model.Account, *model.Operation, error) {
	acc, op, err := s.mutate(ctx, id, opType, amount)
	if err != nil {
		s.metrics.RecordRejected(opType, err)
		s.logger.Debug("operation rejected",
			"account_id", id,
			"type", opType,
			"amount", amount.String(),
			"kind", model.KindOf(err).String(),
		)
		return nil, nil, err
	}

	s.metrics.RecordOperation(opType)
	s.logger.Info("operation applied",
		"account_id", id,
		"operation_id", op.ID,
		"type", opType,
		"amount", amount.String(),
	)
	return acc, op, nil
}

func (s *Service) mutate(ctx context.Context, id model.AccountID, opType model.OperationType, amount decimal.Decimal) (*model.Account, *model.Operation, error) {
	if !id.Valid() {
		return nil, nil, model.ErrInvalidID
	}
	if err := model.ValidateAmount(amount); err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	acc, op, err := s.store.MutateAccount(ctx, id, func(acc *model.Account) (*model.Operation, error) {
		switch opType {
		case model.OperationCredit:
			acc.Amount = acc.Amount.Add(amount)
		case model.OperationDebit:
			if amount.GreaterThan(acc.Amount) {
				return nil, model.ErrInsufficientFunds
			}
			acc.Amount = acc.Amount.Sub(amount)
		}
		acc.UpdatedAt = now
		return &model.Operation{
			Type:      opType,
			Amount:    amount,
			CreatedAt: now,
		}, nil
	})
	if err != nil {
		return nil, nil, model.StorageError(err)
	}
	return acc, op, nil
}
