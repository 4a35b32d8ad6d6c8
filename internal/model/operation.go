package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// OperationID identifies an operation. Ids increase with every append.
type OperationID int64

func (id OperationID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Valid reports whether the id can refer to a stored operation
func (id OperationID) Valid() bool {
	return id > 0
}

// OperationType is the direction of a balance change
type OperationType string

const (
	OperationCredit OperationType = "CREDIT"
	OperationDebit  OperationType = "DEBIT"
)

// Valid reports whether t is a known operation type
func (t OperationType) Valid() bool {
	return t == OperationCredit || t == OperationDebit
}

// Operation is an immutable record of one balance change
type Operation struct {
	ID        OperationID
	AccountID AccountID
	Type      OperationType
	Amount    decimal.Decimal
	CreatedAt time.Time
}
