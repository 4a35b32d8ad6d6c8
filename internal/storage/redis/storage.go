package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

var errTooMuchContention = errors.New("account mutation lost too many optimistic races")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getJSON loads and decodes key, returning notFound on redis.Nil
func getJSON[T any](ctx context.Context, c redis.Cmdable, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, model.StorageError(err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, model.StorageError(err)
	}
	return &v, nil
}

// listByIndex resolves a LIST of ids into entities, preserving list order
func listByIndex[T any](ctx context.Context, c redis.Cmdable, indexKey string, entityKey func(string) string) ([]*T, error) {
	ids, err := c.LRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	if len(ids) == 0 {
		return []*T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entityKey(id)
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}

	out := make([]*T, 0, len(values))
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			return nil, model.StorageError(fmt.Errorf("dangling index entry %s", keys[i]))
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			return nil, model.StorageError(err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func (s *Storage) nextID(ctx context.Context, c redis.Cmdable, seqKey string) (int64, error) {
	id, err := c.Incr(ctx, seqKey).Result()
	if err != nil {
		return 0, model.StorageError(err)
	}
	return id, nil
}

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	id, err := s.nextID(ctx, s.client, playerSeqKey())
	if err != nil {
		return nil, err
	}

	stored := *player
	stored.ID = model.PlayerID(id)

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, model.StorageError(err)
	}

	nameKey := playerNameIndexKey(stored.Name)
	claimed, err := s.client.SetNX(ctx, nameKey, id, 0).Result()
	if err != nil {
		return nil, model.StorageError(err)
	}
	if !claimed {
		return nil, model.ErrDuplicatePlayer
	}

	if err := s.client.Set(ctx, playerKey(stored.ID), data, 0).Err(); err != nil {
		// Release the name so it does not point at a player that was never written
		_ = s.client.Del(context.WithoutCancel(ctx), nameKey).Err()
		return nil, model.StorageError(err)
	}
	return &stored, nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	return getJSON[model.Player](ctx, s.client, playerKey(id), model.ErrPlayerNotFound)
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	id, err := s.client.Get(ctx, playerNameIndexKey(name)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPlayerNotFound
		}
		return nil, model.StorageError(err)
	}
	return s.GetPlayer(ctx, model.PlayerID(id))
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Account, error) {
	id, err := s.nextID(ctx, s.client, accountSeqKey())
	if err != nil {
		return nil, err
	}

	acc := &model.Account{
		ID:        model.AccountID(id),
		PlayerID:  playerID,
		Amount:    decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(acc)
	if err != nil {
		return nil, model.StorageError(err)
	}

	// MULTI/EXEC so the account and its owner index appear together
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, accountKey(acc.ID), data, 0)
		pipe.RPush(ctx, playerAccountsKey(playerID), id)
		return nil
	})
	if err != nil {
		return nil, model.StorageError(err)
	}
	return acc, nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.client, accountKey(id), model.ErrAccountNotFound)
}

func (s *Storage) ListAccountsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Account, error) {
	return listByIndex[model.Account](ctx, s.client, playerAccountsKey(playerID), func(id string) string {
		return keyPrefix + ":account:" + id
	})
}

// MutateAccount is a compare-and-swap loop: WATCH the account key, read,
// apply fn, and commit balance plus operation in one MULTI. A concurrent
// commit to the same account aborts the EXEC and fn is re-run against the
// fresh balance.
func (s *Storage) MutateAccount(ctx context.Context, id model.AccountID, fn storage.MutateFunc) (*model.Account, *model.Operation, error) {
	key := accountKey(id)

	var (
		updated *model.Account
		stored  *model.Operation
	)

	txf := func(tx *redis.Tx) error {
		acc, err := getJSON[model.Account](ctx, tx, key, model.ErrAccountNotFound)
		if err != nil {
			return err
		}

		op, err := fn(acc)
		if err != nil {
			return err
		}

		opID, err := s.nextID(ctx, tx, operationSeqKey())
		if err != nil {
			return err
		}
		op.ID = model.OperationID(opID)
		op.AccountID = id

		accData, err := json.Marshal(acc)
		if err != nil {
			return model.StorageError(err)
		}
		opData, err := json.Marshal(op)
		if err != nil {
			return model.StorageError(err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, accData, 0)
			pipe.Set(ctx, operationKey(op.ID), opData, 0)
			pipe.RPush(ctx, accountOperationsKey(id), opID)
			return nil
		})
		if err != nil {
			return err
		}

		updated, stored = acc, op
		return nil
	}

	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, stored, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, nil, model.StorageError(err)
	}
	return nil, nil, model.StorageError(errTooMuchContention)
}

// Operation log

func (s *Storage) AppendOperation(ctx context.Context, op *model.Operation) (*model.Operation, error) {
	id, err := s.nextID(ctx, s.client, operationSeqKey())
	if err != nil {
		return nil, err
	}
	stored := *op
	stored.ID = model.OperationID(id)

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, model.StorageError(err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, operationKey(stored.ID), data, 0)
		pipe.RPush(ctx, accountOperationsKey(stored.AccountID), id)
		return nil
	})
	if err != nil {
		return nil, model.StorageError(err)
	}
	return &stored, nil
}

func (s *Storage) GetOperation(ctx context.Context, id model.OperationID) (*model.Operation, error) {
	return getJSON[model.Operation](ctx, s.client, operationKey(id), model.ErrOperationNotFound)
}

func (s *Storage) ListOperationsByAccount(ctx context.Context, accountID model.AccountID) ([]*model.Operation, error) {
	return listByIndex[model.Operation](ctx, s.client, accountOperationsKey(accountID), func(id string) string {
		return keyPrefix + ":operation:" + id
	})
}

// Action log

func (s *Storage) AppendAction(ctx context.Context, action *model.Action) (*model.Action, error) {
	id, err := s.nextID(ctx, s.client, actionSeqKey())
	if err != nil {
		return nil, err
	}
	stored := *action
	stored.ID = model.ActionID(id)

	data, err := json.Marshal(&stored)
	if err != nil {
		return nil, model.StorageError(err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, actionKey(stored.ID), data, 0)
		pipe.RPush(ctx, playerActionsKey(stored.PlayerID), id)
		return nil
	})
	if err != nil {
		return nil, model.StorageError(err)
	}
	return &stored, nil
}

func (s *Storage) ListActionsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Action, error) {
	return listByIndex[model.Action](ctx, s.client, playerActionsKey(playerID), func(id string) string {
		return keyPrefix + ":action:" + id
	})
}
