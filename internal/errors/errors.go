package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when an entity is missing or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a user-scoped name is already taken.
	ErrDuplicateName = errors.New("name already exists")
	// ErrInsufficientFunds is returned when a debit exceeds the ledger balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientQuantity is returned when a resource spend exceeds the held quantity.
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	// ErrInvalidAmount is returned when amount is invalid.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidStatus is returned for an unknown task status.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrTaskFinalized is returned when a completed task is moved to another status.
	ErrTaskFinalized = errors.New("task already completed")
	// ErrPresetCategory is returned when a preset category is edited.
	ErrPresetCategory = errors.New("preset categories cannot be modified")
	// ErrEmptyUpdate is returned when an update carries no fields.
	ErrEmptyUpdate = errors.New("nothing to update")
	// ErrInvalidInput is returned when a request fails domain validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUserAlreadyExists is returned when a handle is already registered.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrItemNotFound is returned for an unknown shop item.
	ErrItemNotFound = errors.New("shop item not found")
	// ErrInvalidCredentials is returned when handle or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid handle or password")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var httpMappings = []struct {
	target error
	status int
	code   string
}{
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND"},
	{ErrDuplicateName, http.StatusConflict, "DUPLICATE_NAME"},
	{ErrUserAlreadyExists, http.StatusConflict, "USER_EXISTS"},
	{ErrTaskFinalized, http.StatusConflict, "TASK_FINALIZED"},
	{ErrPresetCategory, http.StatusConflict, "PRESET_CATEGORY"},
	{ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	{ErrInsufficientQuantity, http.StatusUnprocessableEntity, "INSUFFICIENT_QUANTITY"},
	{ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrEmptyUpdate, http.StatusBadRequest, "EMPTY_UPDATE"},
	{ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
}

// MapErrorToHTTP maps domain errors (possibly wrapped) to HTTP errors.
// Anything unrecognised is treated as a system fault.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range httpMappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
