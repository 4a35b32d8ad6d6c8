package audit

import (
	"context"

	"github.com/mcoot/playerledger/internal/dependencies/clock"
	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

// Service is the append-only trail of player actions and their outcomes
type Service struct {
	store storage.ActionStore
	clock clock.Clock
}

// New creates a new audit service
func New(store storage.ActionStore, clock clock.Clock) *Service {
	return &Service{
		store: store,
		clock: clock,
	}
}

// Record appends one action entry. Any failure is a storage error.
func (s *Service) Record(ctx context.Context, playerID model.PlayerID, actionType model.ActionType, status model.ActionStatus) (*model.Action, error) {
	action := &model.Action{
		PlayerID:  playerID,
		Type:      actionType,
		Status:    status,
		CreatedAt: s.clock.Now(),
	}
	stored, err := s.store.AppendAction(ctx, action)
	if err != nil {
		return nil, model.StorageError(err)
	}
	return stored, nil
}

// ListByPlayer returns every action recorded for the player, oldest first
func (s *Service) ListByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Action, error) {
	actions, err := s.store.ListActionsByPlayer(ctx, playerID)
	if err != nil {
		return nil, model.StorageError(err)
	}
	return actions, nil
}
