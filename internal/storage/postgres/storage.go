package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/storage"
)

const pqUniqueViolation = "23505"

// Storage is a Postgres-backed implementation of the storage interface.
// Account mutations lock the account row for the length of one transaction.
type Storage struct {
	db *sqlx.DB
}

// Open connects to Postgres and applies the schema
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	s := NewWithDB(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB creates a storage over an existing handle (for testing)
func NewWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// Migrate creates tables and indexes if they do not exist
func (s *Storage) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database handle
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Player operations

func (s *Storage) CreatePlayer(ctx context.Context, player *model.Player) (*model.Player, error) {
	var row playerRow
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO players (name, password_hash, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, password_hash, created_at`,
		player.Name, player.PasswordHash, player.CreatedAt,
	).StructScan(&row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, model.ErrDuplicatePlayer
		}
		return nil, model.StorageError(err)
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, password_hash, created_at FROM players WHERE id = $1`, int64(id))
	if err != nil {
		return nil, notFoundOr(err, model.ErrPlayerNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	var row playerRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, name, password_hash, created_at FROM players WHERE name = $1`, name)
	if err != nil {
		return nil, notFoundOr(err, model.ErrPlayerNotFound)
	}
	return row.toModel(), nil
}

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, playerID model.PlayerID, now time.Time) (*model.Account, error) {
	var row accountRow
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO accounts (player_id, amount, created_at, updated_at)
		 VALUES ($1, 0, $2, $2)
		 RETURNING id, player_id, amount, created_at, updated_at`,
		int64(playerID), now,
	).StructScan(&row)
	if err != nil {
		return nil, model.StorageError(err)
	}
	return row.toModel(), nil
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	var row accountRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, player_id, amount, created_at, updated_at FROM accounts WHERE id = $1`, int64(id))
	if err != nil {
		return nil, notFoundOr(err, model.ErrAccountNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) ListAccountsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Account, error) {
	var rows []accountRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, player_id, amount, created_at, updated_at
		 FROM accounts
		 WHERE player_id = $1
		 ORDER BY id`, int64(playerID))
	if err != nil {
		return nil, model.StorageError(err)
	}
	accounts := make([]*model.Account, len(rows))
	for i, r := range rows {
		accounts[i] = r.toModel()
	}
	return accounts, nil
}

func (s *Storage) MutateAccount(ctx context.Context, id model.AccountID, fn storage.MutateFunc) (*model.Account, *model.Operation, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, model.StorageError(err)
	}
	defer func() { _ = tx.Rollback() }()

	var row accountRow
	err = tx.GetContext(ctx, &row,
		`SELECT id, player_id, amount, created_at, updated_at
		 FROM accounts
		 WHERE id = $1
		 FOR UPDATE`, int64(id))
	if err != nil {
		return nil, nil, notFoundOr(err, model.ErrAccountNotFound)
	}

	acc := row.toModel()
	op, err := fn(acc)
	if err != nil {
		return nil, nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET amount = $1, updated_at = $2 WHERE id = $3`,
		acc.Amount, acc.UpdatedAt, int64(id))
	if err != nil {
		return nil, nil, model.StorageError(err)
	}

	op.AccountID = id
	stored, err := insertOperation(ctx, tx, op)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, model.StorageError(err)
	}
	return acc, stored, nil
}

// Operation log

func insertOperation(ctx context.Context, q sqlx.QueryerContext, op *model.Operation) (*model.Operation, error) {
	var row operationRow
	err := q.QueryRowxContext(ctx,
		`INSERT INTO operations (account_id, type, amount, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, account_id, type, amount, created_at`,
		int64(op.AccountID), string(op.Type), op.Amount, op.CreatedAt,
	).StructScan(&row)
	if err != nil {
		return nil, model.StorageError(err)
	}
	return row.toModel(), nil
}

func (s *Storage) AppendOperation(ctx context.Context, op *model.Operation) (*model.Operation, error) {
	return insertOperation(ctx, s.db, op)
}

func (s *Storage) GetOperation(ctx context.Context, id model.OperationID) (*model.Operation, error) {
	var row operationRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, account_id, type, amount, created_at FROM operations WHERE id = $1`, int64(id))
	if err != nil {
		return nil, notFoundOr(err, model.ErrOperationNotFound)
	}
	return row.toModel(), nil
}

func (s *Storage) ListOperationsByAccount(ctx context.Context, accountID model.AccountID) ([]*model.Operation, error) {
	var rows []operationRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, account_id, type, amount, created_at
		 FROM operations
		 WHERE account_id = $1
		 ORDER BY id`, int64(accountID))
	if err != nil {
		return nil, model.StorageError(err)
	}
	ops := make([]*model.Operation, len(rows))
	for i, r := range rows {
		ops[i] = r.toModel()
	}
	return ops, nil
}

// Action log

func (s *Storage) AppendAction(ctx context.Context, action *model.Action) (*model.Action, error) {
	var row actionRow
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO actions (player_id, type, status, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, player_id, type, status, created_at`,
		int64(action.PlayerID), string(action.Type), string(action.Status), action.CreatedAt,
	).StructScan(&row)
	if err != nil {
		return nil, model.StorageError(err)
	}
	return row.toModel(), nil
}

func (s *Storage) ListActionsByPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Action, error) {
	var rows []actionRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, player_id, type, status, created_at
		 FROM actions
		 WHERE player_id = $1
		 ORDER BY id`, int64(playerID))
	if err != nil {
		return nil, model.StorageError(err)
	}
	actions := make([]*model.Action, len(rows))
	for i, r := range rows {
		actions[i] = r.toModel()
	}
	return actions, nil
}

func notFoundOr(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return model.StorageError(err)
}
