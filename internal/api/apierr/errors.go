package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/playerledger/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code     string `json:"code"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Codes that do not come from a model.Kind
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeNotFound       = "NOT_FOUND"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// StatusOf returns the HTTP status WriteError would use for err
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// kindStatus maps every failure kind to its HTTP status
var kindStatus = map[model.Kind]int{
	model.KindMissingToken:              http.StatusUnauthorized,
	model.KindInvalidSignatureOrExpired: http.StatusUnauthorized,
	model.KindMissingClaim:              http.StatusUnauthorized,
	model.KindInvalidCredentials:        http.StatusUnauthorized,

	model.KindInvalidAmount:   http.StatusBadRequest,
	model.KindInvalidID:       http.StatusBadRequest,
	model.KindInvalidName:     http.StatusBadRequest,
	model.KindInvalidPassword: http.StatusBadRequest,

	model.KindInsufficientFunds: http.StatusUnprocessableEntity,
	model.KindForbidden:         http.StatusForbidden,
	model.KindDuplicatePlayer:   http.StatusConflict,

	model.KindPlayerNotFound:    http.StatusNotFound,
	model.KindAccountNotFound:   http.StatusNotFound,
	model.KindOperationNotFound: http.StatusNotFound,
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var me *model.Error
	if errors.As(err, &me) {
		if status, ok := kindStatus[me.Kind]; ok {
			return &httpError{status, APIError{
				Code:     me.Kind.String(),
				Category: string(me.Kind.Category()),
				Message:  me.Message,
			}}
		}
	}

	// Storage and unknown failures never leak their cause
	return &httpError{http.StatusInternalServerError, APIError{
		Code:     CodeInternalError,
		Category: string(model.CategoryStorage),
		Message:  "Internal server error",
	}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, string(model.CategoryValidation), message}}
}

// NewNotFoundError creates an error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, string(model.CategoryNotFound), "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, string(model.CategoryUnknown), "Internal server error"}}
}
