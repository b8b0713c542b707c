// Package errors provides custom error types for the TripLedger API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches AppErrors by code, so wrapped errors still compare equal to
// their sentinel with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors. Absence of an identity is an
// expected steady state for anonymous users, never a retryable failure.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Ledger validation errors. These are rejected before any store call is made.
var (
	ErrEmptyCategory     = &AppError{Code: "EMPTY_CATEGORY", Message: "Expense category must not be empty", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount    = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Expense amount must not be negative", StatusCode: http.StatusBadRequest}
	ErrNonPositiveBudget = &AppError{Code: "NON_POSITIVE_BUDGET", Message: "Budget amount must be greater than zero", StatusCode: http.StatusBadRequest}
	ErrPastTravelDate    = &AppError{Code: "PAST_TRAVEL_DATE", Message: "Travel date must be in the future", StatusCode: http.StatusBadRequest}
)

// Ledger errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrLoadFailed      = &AppError{Code: "LOAD_FAILED", Message: "Failed to load ledger data after multiple attempts", StatusCode: http.StatusBadGateway}
	ErrLoadTimeout     = &AppError{Code: "LOAD_TIMEOUT", Message: "Loading ledger data timed out", StatusCode: http.StatusGatewayTimeout}
)

// Travel profile errors.
var (
	ErrProfileNotFound = &AppError{Code: "PROFILE_NOT_FOUND", Message: "Travel profile not found", StatusCode: http.StatusNotFound}
	ErrNotProfileOwner = &AppError{Code: "NOT_PROFILE_OWNER", Message: "Only the profile owner may perform this action", StatusCode: http.StatusForbidden}
)

// Invitation errors.
var (
	ErrInvitationNotFound = &AppError{Code: "INVITATION_NOT_FOUND", Message: "Invitation not found", StatusCode: http.StatusNotFound}
	ErrInvitationExists   = &AppError{Code: "INVITATION_EXISTS", Message: "A pending invitation already exists for this email", StatusCode: http.StatusConflict}
	ErrInvitationExpired  = &AppError{Code: "INVITATION_EXPIRED", Message: "This invitation has expired", StatusCode: http.StatusGone}
	ErrInvitationResolved = &AppError{Code: "INVITATION_RESOLVED", Message: "This invitation has already been answered", StatusCode: http.StatusConflict}
	ErrAlreadyMember      = &AppError{Code: "ALREADY_MEMBER", Message: "This user is already a member of the travel profile", StatusCode: http.StatusConflict}
)
