package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the operation conflicts with the current state of a resource.
var ErrConflict = errors.New("resource conflict")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is not allowed to act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrRefreshTokenExpired indicates the presented refresh token is past its expiry.
var ErrRefreshTokenExpired = errors.New("refresh token expired")

// Transfer error taxonomy. Each precondition failure of the transfer engine
// maps to a distinct sentinel so handlers can pick status codes with errors.Is
// instead of string matching.
var (
	// ErrInvalidAmount indicates the amount is malformed, non-positive, or has
	// more than two decimal places.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrSelfTransfer indicates sender and recipient resolve to the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")

	// ErrInsufficientBalance indicates the sender's balance is below the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrContentionTimeout indicates a row lock could not be acquired within the
	// configured bound. The operation was rolled back and may be retried.
	ErrContentionTimeout = errors.New("account is busy, retry the transfer")

	// ErrTransferFailed wraps any other failure inside the transfer's atomic
	// unit; the unit was rolled back with no partial effect.
	ErrTransferFailed = errors.New("transfer failed")
)

// AppError carries an HTTP-ish status code alongside a message and the
// underlying cause. The pgsql layer uses it for infrastructure failures that
// have no business sentinel.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that satisfies errors.Is(err, ErrNotFound).
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
