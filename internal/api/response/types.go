package response

import (
	"time"

	"github.com/mcoot/playerledger/internal/model"
	"github.com/mcoot/playerledger/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:        int64(p.ID),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player    Player    `json:"player"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:    PlayerFromModel(&s.Player),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// Account represents an account in API responses
type Account struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountFromModel converts model.Account
func AccountFromModel(a *model.Account) Account {
	return Account{
		ID:        int64(a.ID),
		PlayerID:  int64(a.PlayerID),
		Amount:    a.Amount.StringFixed(model.AmountScale),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromModel converts a slice of accounts, never returning nil
func AccountsFromModel(accounts []*model.Account) []Account {
	out := make([]Account, len(accounts))
	for i, a := range accounts {
		out[i] = AccountFromModel(a)
	}
	return out
}

// Operation represents an operation in API responses
type Operation struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Type      string    `json:"type"`
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// OperationFromModel converts model.Operation
func OperationFromModel(o *model.Operation) Operation {
	return Operation{
		ID:        int64(o.ID),
		AccountID: int64(o.AccountID),
		Type:      string(o.Type),
		Amount:    o.Amount.StringFixed(model.AmountScale),
		CreatedAt: o.CreatedAt,
	}
}

// OperationsFromModel converts a slice of operations
func OperationsFromModel(ops []*model.Operation) []Operation {
	out := make([]Operation, len(ops))
	for i, o := range ops {
		out[i] = OperationFromModel(o)
	}
	return out
}

// Action represents an audit entry in API responses
type Action struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ActionsFromModel converts a slice of audit entries
func ActionsFromModel(actions []*model.Action) []Action {
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[i] = Action{
			ID:        int64(a.ID),
			PlayerID:  int64(a.PlayerID),
			Type:      string(a.Type),
			Status:    string(a.Status),
			CreatedAt: a.CreatedAt,
		}
	}
	return out
}

// Health is the response body of the health endpoint
type Health struct {
	Status string `json:"status"`
}
