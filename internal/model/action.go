package model

import (
	"strconv"
	"time"
)

// ActionID identifies an audit entry
type ActionID int64

func (id ActionID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ActionType names a player-initiated action
type ActionType string

const (
	ActionCreateAccount     ActionType = "CREATE_ACCOUNT"
	ActionCreditAccount     ActionType = "CREDIT_ACCOUNT"
	ActionDebitAccount      ActionType = "DEBIT_ACCOUNT"
	ActionOperationAccount  ActionType = "OPERATION_ACCOUNT"
	ActionOperationsAccount ActionType = "OPERATIONS_ACCOUNT"
	ActionActions           ActionType = "ACTIONS"
)

// ActionStatus is the outcome of an attempted action
type ActionStatus string

const (
	ActionSuccess ActionStatus = "SUCCESS"
	ActionFail    ActionStatus = "FAIL"
)

// StatusFor returns the status matching the outcome err
func StatusFor(err error) ActionStatus {
	if err != nil {
		return ActionFail
	}
	return ActionSuccess
}

// Action is an immutable audit record of one attempted action
type Action struct {
	ID        ActionID
	PlayerID  PlayerID
	Type      ActionType
	Status    ActionStatus
	CreatedAt time.Time
}
