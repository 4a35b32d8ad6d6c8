package model

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits an amount may carry
const AmountScale = 2

// AccountID uniquely identifies an account
type AccountID int64

func (id AccountID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Valid reports whether the id can refer to a stored account
func (id AccountID) Valid() bool {
	return id > 0
}

// Account holds a player's balance. Amount is never negative.
type Account struct {
	ID        AccountID
	PlayerID  PlayerID
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy safe to hand out of a store
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// ValidateAmount checks that amount is positive and has at most AmountScale fractional digits
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return Errorf(KindInvalidAmount, "amount must have at most %d fractional digits", AmountScale)
	}
	return nil
}

// ParseAmount parses a decimal string into a validated amount
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, Errorf(KindInvalidAmount, "invalid amount %q", s)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}
