package storage

import (
	"context"
	"time"

	"github.com/mcoot/playerledger/internal/model"
)

// MutateFunc computes the next state of an account. It receives a private
// copy of the current account and returns the operation to append, or an
// error to abort without any change. Optimistic adapters may call it more
// than once; it must depend only on acc.
type MutateFunc func(acc *model.Account) (*model.Operation, error)

// PlayerStore persists players
type PlayerStore interface {
	// CreatePlayer assigns an id and stores the player.
	// Returns model.ErrDuplicatePlayer if the name is taken.
	CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error)
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
}

// AccountStore persists accounts
type AccountStore interface {
	CreateAccount(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Account, error)
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	ListAccountsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Account, error)

	// MutateAccount runs fn and persists its result exclusively for the
	// account: no other mutation of the same account interleaves between the
	// read handed to fn and the write of the new balance plus the append of
	// the returned operation. Both are applied together or not at all.
	// Mutations of different accounts do not contend.
	MutateAccount(ctx context.Context, id model.AccountID, fn MutateFunc) (*model.Account, *model.Operation, error)
}

// OperationStore is the append-only operation log
type OperationStore interface {
	AppendOperation(ctx context.Context, op *model.Operation) (*model.Operation, error)
	GetOperation(ctx context.Context, id model.OperationID) (*model.Operation, error)
	// ListOperationsByAccount returns operations in ascending id order
	ListOperationsByAccount(ctx context.Context, accountID model.AccountID) ([]*model.Operation, error)
}

// ActionStore is the append-only action audit log
type ActionStore interface {
	AppendAction(ctx context.Context, action *model.Action) (*model.Action, error)
	// ListActionsByPlayer returns actions in ascending id order
	ListActionsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Action, error)
}

// Storage defines the interface for data persistence
type Storage interface {
	PlayerStore
	AccountStore
	OperationStore
	ActionStore

	Close() error
}
