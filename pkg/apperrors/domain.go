package apperrors

import (
	"fmt"
	"net/http"
)

// Factories wrapping repository errors.

// ErrNotFound converts a repository not-found error (e.g. gorm.ErrRecordNotFound)
// into an AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into an AppError.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict is the generic 409 factory.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation is the generic 400 factory for disallowed operations.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// Predefined domain errors.

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"An account with this email already exists",
	http.StatusConflict,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrCannotModifySelf guards admin operations targeting the acting admin.
var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// ErrMessageLimitExceeded is returned when a free account hits the
// sent-message quota. Match with errors.Is; user-facing responses
// carry the configured limit via NewMessageLimitExceededError.
var ErrMessageLimitExceeded = New(
	CodeLimitExceeded,
	"messaging",
	"Free message limit reached. Upgrade to Premium for unlimited messaging.",
	http.StatusForbidden,
)

// NewMessageLimitExceededError builds the quota error with the
// configured limit in the message. Unwraps to ErrMessageLimitExceeded.
func NewMessageLimitExceededError(limit int64) *AppError {
	return Wrap(
		ErrMessageLimitExceeded,
		CodeLimitExceeded,
		"messaging",
		fmt.Sprintf("Free accounts are limited to %d messages. Upgrade to Premium for unlimited messaging.", limit),
		http.StatusForbidden,
	)
}

var ErrSelfReviewNotAllowed = New(
	CodeInvalidOperation,
	"review",
	"You cannot review yourself",
	http.StatusBadRequest,
)

var ErrDuplicateReview = New(
	CodeAlreadyExists,
	"review",
	"You have already reviewed this user",
	http.StatusConflict,
)

var ErrInvalidReviewRating = New(
	CodeValidationFailed,
	"review",
	"Rating must be between 1 and 5",
	http.StatusBadRequest,
)

var ErrInvalidWebhookSignature = New(
	CodeUnauthorized,
	"billing",
	"Webhook signature verification failed",
	http.StatusBadRequest,
)

var ErrPaymentProviderError = New(
	CodeExternalServiceError,
	"billing",
	"Payment provider error",
	http.StatusServiceUnavailable,
)
