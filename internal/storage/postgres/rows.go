package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcoot/playerledger/internal/model"
)

type playerRow struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r playerRow) toModel() *model.Player {
	return &model.Player{
		ID:           model.PlayerID(r.ID),
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}

type accountRow struct {
	ID        int64           `db:"id"`
	PlayerID  int64           `db:"player_id"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r accountRow) toModel() *model.Account {
	return &model.Account{
		ID:        model.AccountID(r.ID),
		PlayerID:  model.PlayerID(r.PlayerID),
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type operationRow struct {
	ID        int64           `db:"id"`
	AccountID int64           `db:"account_id"`
	Type      string          `db:"type"`
	Amount    decimal.Decimal `db:"amount"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r operationRow) toModel() *model.Operation {
	return &model.Operation{
		ID:        model.OperationID(r.ID),
		AccountID: model.AccountID(r.AccountID),
		Type:      model.OperationType(r.Type),
		Amount:    r.Amount,
		CreatedAt: r.CreatedAt,
	}
}

type actionRow struct {
	ID        int64     `db:"id"`
	PlayerID  int64     `db:"player_id"`
	Type      string    `db:"type"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

func (r actionRow) toModel() *model.Action {
	return &model.Action{
		ID:        model.ActionID(r.ID),
		PlayerID:  model.PlayerID(r.PlayerID),
		Type:      model.ActionType(r.Type),
		Status:    model.ActionStatus(r.Status),
		CreatedAt: r.CreatedAt,
	}
}
