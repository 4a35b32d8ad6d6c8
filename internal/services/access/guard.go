package access

import (
	"github.com/mcoot/playerledger/internal/model"
)

// Guard decides whether a player may touch an account
type Guard struct{}

// New creates a Guard
func New() *Guard {
	return &Guard{}
}

// AuthorizeAccountAccess returns model.ErrForbidden unless playerID owns account
func (g *Guard) AuthorizeAccountAccess(playerID model.PlayerID, account *model.Account) error {
	if account == nil || account.PlayerID != playerID {
		return model.ErrForbidden
	}
	return nil
}
