package model

import (
	"errors"
	"fmt"
)

// Kind identifies a failure in a machine-readable way. Transport layers map
// kinds to their own status codes.
type Kind int

const (
	KindUnknown Kind = iota

	// Auth
	KindMissingToken
	KindInvalidSignatureOrExpired
	KindMissingClaim
	KindInvalidCredentials

	// Validation
	KindInvalidAmount
	KindInvalidID
	KindInvalidName
	KindInvalidPassword

	// Domain
	KindInsufficientFunds
	KindForbidden
	KindDuplicatePlayer

	// Not found
	KindPlayerNotFound
	KindAccountNotFound
	KindOperationNotFound

	// Storage
	KindStorage
)

// Category groups kinds into the error families surfaced to callers
type Category string

const (
	CategoryUnknown    Category = "unknown"
	CategoryAuth       Category = "auth"
	CategoryValidation Category = "validation"
	CategoryDomain     Category = "domain"
	CategoryNotFound   Category = "not_found"
	CategoryStorage    Category = "storage"
)

var kindNames = map[Kind]string{
	KindUnknown:                   "UNKNOWN",
	KindMissingToken:              "MISSING_TOKEN",
	KindInvalidSignatureOrExpired: "INVALID_SIGNATURE_OR_EXPIRED",
	KindMissingClaim:              "MISSING_CLAIM",
	KindInvalidCredentials:        "INVALID_CREDENTIALS",
	KindInvalidAmount:             "INVALID_AMOUNT",
	KindInvalidID:                 "INVALID_ID",
	KindInvalidName:               "INVALID_NAME",
	KindInvalidPassword:           "INVALID_PASSWORD",
	KindInsufficientFunds:         "INSUFFICIENT_FUNDS",
	KindForbidden:                 "FORBIDDEN",
	KindDuplicatePlayer:           "DUPLICATE_PLAYER",
	KindPlayerNotFound:            "PLAYER_NOT_FOUND",
	KindAccountNotFound:           "ACCOUNT_NOT_FOUND",
	KindOperationNotFound:         "OPERATION_NOT_FOUND",
	KindStorage:                   "STORAGE_ERROR",
}

// String returns the wire name of the kind
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// Category returns the error family the kind belongs to
func (k Kind) Category() Category {
	switch k {
	case KindMissingToken, KindInvalidSignatureOrExpired, KindMissingClaim, KindInvalidCredentials:
		return CategoryAuth
	case KindInvalidAmount, KindInvalidID, KindInvalidName, KindInvalidPassword:
		return CategoryValidation
	case KindInsufficientFunds, KindForbidden, KindDuplicatePlayer:
		return CategoryDomain
	case KindPlayerNotFound, KindAccountNotFound, KindOperationNotFound:
		return CategoryNotFound
	case KindStorage:
		return CategoryStorage
	default:
		return CategoryUnknown
	}
}

// Error is the single error type produced by the ledger core.
// Two Errors match under errors.Is when their kinds match.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates an Error with the given kind and message
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Errorf creates an Error with a formatted message
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps an underlying persistence failure.
// Errors that already carry a kind are returned unchanged.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf extracts the kind from err, or KindUnknown for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Common errors used across the application
var (
	// Auth errors
	ErrMissingToken              = NewError(KindMissingToken, "access token is missing")
	ErrInvalidSignatureOrExpired = NewError(KindInvalidSignatureOrExpired, "access token signature is invalid or token has expired")
	ErrMissingClaim              = NewError(KindMissingClaim, "access token has no player claim")
	ErrInvalidCredentials        = NewError(KindInvalidCredentials, "invalid name or password")

	// Validation errors
	ErrInvalidAmount   = NewError(KindInvalidAmount, "amount must be a positive decimal")
	ErrInvalidID       = NewError(KindInvalidID, "id must be a positive integer")
	ErrInvalidName     = NewError(KindInvalidName, "name must be 1-100 latin letters")
	ErrInvalidPassword = NewError(KindInvalidPassword, "password must be 1-72 bytes")

	// Domain errors
	ErrInsufficientFunds = NewError(KindInsufficientFunds, "insufficient funds")
	ErrForbidden         = NewError(KindForbidden, "account belongs to another player")
	ErrDuplicatePlayer   = NewError(KindDuplicatePlayer, "player name already taken")

	// Not found errors
	ErrPlayerNotFound    = NewError(KindPlayerNotFound, "player not found")
	ErrAccountNotFound   = NewError(KindAccountNotFound, "account not found")
	ErrOperationNotFound = NewError(KindOperationNotFound, "operation not found")

	// Storage errors
	ErrStorage = NewError(KindStorage, "storage failure")
)
