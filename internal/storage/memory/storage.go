package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

// accountSlot is one entry of the account arena. Its mutex serializes every
// read-check-write-append on the account it holds.
type accountSlot struct {
	mu      sync.Mutex
	account *model.Account
}

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	// mu guards map membership only; balances are guarded per slot
	mu sync.RWMutex

	players          map[model.PlayerID]*model.Player
	nameIndex        map[string]model.PlayerID
	accounts         map[model.AccountID]*accountSlot
	accountsByPlayer map[model.PlayerID][]model.AccountID
	lastPlayerID     model.PlayerID
	lastAccountID    model.AccountID

	opsMu           sync.Mutex
	operations      map[model.OperationID]*model.Operation
	opsByAccount    map[model.AccountID][]model.OperationID
	lastOperationID model.OperationID

	actionsMu       sync.Mutex
	actions         map[model.ActionID]*model.Action
	actionsByPlayer map[model.PlayerID][]model.ActionID
	lastActionID    model.ActionID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players:          make(map[model.PlayerID]*model.Player),
		nameIndex:        make(map[string]model.PlayerID),
		accounts:         make(map[model.AccountID]*accountSlot),
		accountsByPlayer: make(map[model.PlayerID][]model.AccountID),
		operations:       make(map[model.OperationID]*model.Operation),
		opsByAccount:     make(map[model.AccountID][]model.OperationID),
		actions:          make(map[model.ActionID]*model.Action),
		actionsByPlayer:  make(map[model.PlayerID][]model.ActionID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.nameIndex[player.Name]; taken {
		return nil, model.ErrDuplicatePlayer
	}
	s.lastPlayerID++
	stored := *player
	stored.ID = s.lastPlayerID
	s.players[stored.ID] = &stored
	s.nameIndex[stored.Name] = stored.ID
	out := stored
	return &out, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	out := *player
	return &out, nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.nameIndex[name]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	out := *s.players[id]
	return &out, nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccountID++
	acc := &model.Account{
		ID:        s.lastAccountID,
		PlayerID:  playerID,
		Amount:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.accounts[acc.ID] = &accountSlot{account: acc}
	s.accountsByPlayer[playerID] = append(s.accountsByPlayer[playerID], acc.ID)
	return acc.Clone(), nil
}

func (s *Storage) slot(id model.AccountID) (*accountSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.accounts[id]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	return slot, nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	slot, err := s.slot(id)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.account.Clone(), nil
}

func (s *Storage) ListAccountsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Account, error) {
	s.mu.RLock()
	ids := append([]model.AccountID(nil), s.accountsByPlayer[playerID]...)
	s.mu.RUnlock()

	accounts := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		acc, err := s.GetAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (s *Storage) MutateAccount(ctx context.Context, id model.AccountID, fn storage.MutateFunc) (*model.Account, *model.Operation, error) {
	slot, err := s.slot(id)
	if err != nil {
		return nil, nil, err
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	next := slot.account.Clone()
	op, err := fn(next)
	if err != nil {
		return nil, nil, err
	}

	// The slot lock is still held, so the append and the balance swap are
	// observed together by any other mutation of this account.
	op.AccountID = id
	stored, err := s.AppendOperation(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	slot.account = next
	return next.Clone(), stored, nil
}

// Operation log

func (s *Storage) AppendOperation(ctx context.Context, op *model.Operation) (*model.Operation, error) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	s.lastOperationID++
	stored := *op
	stored.ID = s.lastOperationID
	s.operations[stored.ID] = &stored
	s.opsByAccount[stored.AccountID] = append(s.opsByAccount[stored.AccountID], stored.ID)
	out := stored
	return &out, nil
}

func (s *Storage) GetOperation(ctx context.Context, id model.OperationID) (*model.Operation, error) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	op, ok := s.operations[id]
	if !ok {
		return nil, model.ErrOperationNotFound
	}
	out := *op
	return &out, nil
}

func (s *Storage) ListOperationsByAccount(ctx context.Context, accountID model.AccountID) ([]*model.Operation, error) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()
	ids := s.opsByAccount[accountID]
	ops := make([]*model.Operation, len(ids))
	for i, id := range ids {
		op := *s.operations[id]
		ops[i] = &op
	}
	return ops, nil
}

// Action log

func (s *Storage) AppendAction(ctx context.Context, action *model.Action) (*model.Action, error) {
	s.actionsMu.Lock()
	defer s.actionsMu.Unlock()
	s.lastActionID++
	stored := *action
	stored.ID = s.lastActionID
	s.actions[stored.ID] = &stored
	s.actionsByPlayer[stored.PlayerID] = append(s.actionsByPlayer[stored.PlayerID], stored.ID)
	out := stored
	return &out, nil
}

func (s *Storage) ListActionsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Action, error) {
	s.actionsMu.Lock()
	defer s.actionsMu.Unlock()
	ids := s.actionsByPlayer[playerID]
	actions := make([]*model.Action, len(ids))
	for i, id := range ids {
		a := *s.actions[id]
		actions[i] = &a
	}
	return actions, nil
}
