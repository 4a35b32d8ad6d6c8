package redis

import (
	"fmt"

	"github.com/mcoot/playerledger/internal/model"
)

// Key prefix for all ledger data
const keyPrefix = "ledger"

// Sequence counters

func playerSeqKey() string {
	return keyPrefix + ":seq:player"
}

func accountSeqKey() string {
	return keyPrefix + ":seq:account"
}

func operationSeqKey() string {
	return keyPrefix + ":seq:operation"
}

func actionSeqKey() string {
	return keyPrefix + ":seq:action"
}

// Entities

func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%d", keyPrefix, id)
}

func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%d", keyPrefix, id)
}

func operationKey(id model.OperationID) string {
	return fmt.Sprintf("%s:operation:%d", keyPrefix, id)
}

func actionKey(id model.ActionID) string {
	return fmt.Sprintf("%s:action:%d", keyPrefix, id)
}

// Indexes

// playerNameIndexKey maps a player name to its id; claimed with SETNX
func playerNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:player_name:%s", keyPrefix, name)
}

// playerAccountsKey is the LIST of account ids owned by a player
func playerAccountsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_accounts:%d", keyPrefix, id)
}

// accountOperationsKey is the LIST of operation ids of an account, in append order
func accountOperationsKey(id model.AccountID) string {
	return fmt.Sprintf("%s:idx:account_operations:%d", keyPrefix, id)
}

// playerActionsKey is the LIST of action ids of a player, in append order
func playerActionsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_actions:%d", keyPrefix, id)
}
