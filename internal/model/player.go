package model

import (
	"strconv"
	"time"
)

const (
	// MaxNameLength is the longest allowed player name
	MaxNameLength = 100
	// MaxPasswordBytes is the bcrypt input limit
	MaxPasswordBytes = 72
)

// PlayerID uniquely identifies a player across the system
type PlayerID int64

func (id PlayerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Valid reports whether the id can refer to a stored player
func (id PlayerID) Valid() bool {
	return id > 0
}

// Player is an account owner. Name is unique and immutable.
type Player struct {
	ID           PlayerID
	Name         string
	PasswordHash string // bcrypt hash, never logged
	CreatedAt    time.Time
}

// ValidateName checks that name is 1-100 latin letters
func ValidateName(name string) error {
	if len(name) == 0 || len(name) > MaxNameLength {
		return ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return ErrInvalidName
		}
	}
	return nil
}

// ValidatePassword checks the password fits bcrypt limits
func ValidatePassword(password string) error {
	if len(password) == 0 || len(password) > MaxPasswordBytes {
		return ErrInvalidPassword
	}
	return nil
}
