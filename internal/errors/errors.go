// Package errors provides custom error types for the Hearth API.
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

// Authentication & tenancy errors. Each failure mode of the tenancy guard
// maps to a distinct status so callers can tell them apart.
var (
	ErrUnauthenticated    = &AppError{Code: "UNAUTHENTICATED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrMissingTenant      = &AppError{Code: "MISSING_TENANT", Message: "X-Household-ID header is required", StatusCode: http.StatusBadRequest}
	ErrNotAMember         = &AppError{Code: "NOT_A_MEMBER", Message: "You are not a member of this household", StatusCode: http.StatusForbidden}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrOwnerRequired      = &AppError{Code: "OWNER_REQUIRED", Message: "Only a household owner may perform this action", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Not-found errors. A resource outside the caller's household reports the
// same code as one that does not exist, so cross-tenant existence never leaks.
var (
	ErrUserNotFound         = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrHouseholdNotFound    = &AppError{Code: "HOUSEHOLD_NOT_FOUND", Message: "Household not found", StatusCode: http.StatusNotFound}
	ErrAccountGroupNotFound = &AppError{Code: "ACCOUNT_GROUP_NOT_FOUND", Message: "Account group not found", StatusCode: http.StatusNotFound}
	ErrAccountNotFound      = &AppError{Code: "ACCOUNT_NOT_FOUND", Message: "Account not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound     = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrTransactionNotFound  = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrTransferNotFound     = &AppError{Code: "TRANSFER_NOT_FOUND", Message: "Transfer not found", StatusCode: http.StatusNotFound}
	ErrInvitationNotFound   = &AppError{Code: "INVITATION_NOT_FOUND", Message: "Invitation not found", StatusCode: http.StatusNotFound}
)

// Conflict errors (uniqueness violations).
var (
	ErrDuplicateEmail      = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrDuplicateCategory   = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists in the household", StatusCode: http.StatusConflict}
	ErrDuplicateMembership = &AppError{Code: "DUPLICATE_MEMBERSHIP", Message: "User is already a member of this household", StatusCode: http.StatusConflict}
	ErrInvitationAccepted  = &AppError{Code: "INVITATION_ALREADY_ACCEPTED", Message: "Invitation has already been accepted", StatusCode: http.StatusConflict}
)

// Invalid operation errors (structurally invalid requests).
var (
	ErrInvalidOperation    = &AppError{Code: "INVALID_OPERATION", Message: "Invalid operation", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount       = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a positive decimal", StatusCode: http.StatusBadRequest}
	ErrSameAccountTransfer = &AppError{Code: "SAME_ACCOUNT_TRANSFER", Message: "Cannot transfer to the same account", StatusCode: http.StatusBadRequest}
	ErrGroupMismatch       = &AppError{Code: "ACCOUNT_GROUP_MISMATCH", Message: "Both accounts must belong to the same account group", StatusCode: http.StatusBadRequest}
	ErrTransferLegLocked   = &AppError{Code: "TRANSFER_LEG_LOCKED", Message: "Transfer legs can only be changed through the transfer endpoints", StatusCode: http.StatusBadRequest}
	ErrInvalidTypeChange   = &AppError{Code: "INVALID_TYPE_CHANGE", Message: "Cannot change transaction type to or from a transfer type", StatusCode: http.StatusBadRequest}
	ErrInvitationExpired   = &AppError{Code: "INVITATION_EXPIRED", Message: "Invitation has expired", StatusCode: http.StatusBadRequest}
)
