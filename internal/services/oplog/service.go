package oplog

import (
	"context"

	"github.com/mcoot/playerledger/internal/dependencies/clock"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

// Service is the append-only log of credit and debit operations
type Service struct {
	store storage.OperationStore
	clock clock.Clock
}

// New creates a new operation log service
func New(store storage.OperationStore, clock clock.Clock) *Service {
	return &Service{
		store: store,
		clock: clock,
	}
}

// Append stores op and returns it with its assigned id.
// CreatedAt defaults to the current time.
func (s *Service) Append(ctx context.Context, op *model.Operation) (*model.Operation, error) {
	if !op.AccountID.Valid() {
		return nil, model.ErrInvalidID
	}
	if !op.Type.Valid() {
		return nil, model.Errorf(model.KindInvalidAmount, "unknown operation type %q", op.Type)
	}
	if err := model.ValidateAmount(op.Amount); err != nil {
		return nil, err
	}

	entry := *op
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}
	stored, err := s.store.AppendOperation(ctx, &entry)
	if err != nil {
		return nil, model.StorageError(err)
	}
	return stored, nil
}

// Get returns a single operation
func (s *Service) Get(ctx context.Context, id model.OperationID) (*model.Operation, error) {
	if !id.Valid() {
		return nil, model.ErrInvalidID
	}
	return s.store.GetOperation(ctx, id)
}

// ListByAccount returns every operation recorded for the account, oldest first
func (s *Service) ListByAccount(ctx context.Context, accountID model.AccountID) ([]*model.Operation, error) {
	if !accountID.Valid() {
		return nil, model.ErrInvalidID
	}
	return s.store.ListOperationsByAccount(ctx, accountID)
}
