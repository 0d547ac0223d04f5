package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCategory string

const (
	CategoryValidation     ErrorCategory = "VALIDATION"
	CategoryUnauthorized   ErrorCategory = "UNAUTHORIZED"
	CategoryForbidden      ErrorCategory = "FORBIDDEN"
	CategoryNotFound       ErrorCategory = "NOT_FOUND"
	CategoryConflict       ErrorCategory = "CONFLICT"
	CategoryInternal       ErrorCategory = "INTERNAL"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

type DomainError interface {
	error
	Code() string
	Category() ErrorCategory
	HTTPStatus() int
	Message() string
	Unwrap() error
	WithCause(cause error) DomainError
	WithDetails(details map[string]any) DomainError
	Details() map[string]any
}

type domainError struct {
	code     string
	category ErrorCategory
	status   int
	message  string
	details  map[string]any
	cause    error
}

func (e *domainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *domainError) Code() string {
	return e.code
}

func (e *domainError) Category() ErrorCategory {
	return e.category
}

func (e *domainError) HTTPStatus() int {
	return e.status
}

func (e *domainError) Message() string {
	return e.message
}

func (e *domainError) Details() map[string]any {
	return e.details
}

func (e *domainError) Unwrap() error {
	return e.cause
}

func (e *domainError) WithCause(cause error) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		details:  e.details,
		cause:    cause,
	}
}

func (e *domainError) WithDetails(details map[string]any) DomainError {
	return &domainError{
		code:     e.code,
		category: e.category,
		status:   e.status,
		message:  e.message,
		details:  details,
		cause:    e.cause,
	}
}

// Is lets two instances of the same sentinel compare equal through
// errors.Is even after WithCause/WithDetails copied the value.
func (e *domainError) Is(target error) bool {
	var de *domainError
	if !errors.As(target, &de) {
		return false
	}
	return e.code == de.code
}

func NewDomainError(code string, category ErrorCategory, status int, message string) DomainError {
	return &domainError{
		code:     code,
		category: category,
		status:   status,
		message:  message,
	}
}

func IsDomainError(err error) bool {
	var de DomainError
	return errors.As(err, &de)
}

func AsDomainError(err error) (DomainError, bool) {
	var de DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

var (
	ErrMissingRequiredEnv = NewDomainError(
		"MISSING_REQUIRED_ENV",
		CategoryValidation,
		http.StatusInternalServerError,
		"missing required environment variable",
	)

	// Absent credential: the client should authenticate first.
	ErrMissingAuthorization = NewDomainError(
		"MISSING_AUTHORIZATION",
		CategoryUnauthorized,
		http.StatusUnauthorized,
		"missing Authorization header",
	)

	// Credential was presented but did not resolve to a live token.
	ErrAccessTokenInvalid = NewDomainError(
		"ACCESS_TOKEN_INVALID",
		CategoryForbidden,
		http.StatusForbidden,
		"access token not found",
	)

	// Single failure for unknown user, wrong password and dead refresh
	// tokens, so responses never reveal which part was wrong.
	ErrAuthFailed = NewDomainError(
		"AUTH_FAILED",
		CategoryForbidden,
		http.StatusForbidden,
		"authentication failed",
	)

	ErrValidationFailed = NewDomainError(
		"VALIDATION_FAILED",
		CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrUserAlreadyExists = NewDomainError(
		"USER_ALREADY_EXISTS",
		CategoryConflict,
		http.StatusConflict,
		"username or email already taken",
	)

	ErrUserNotFound = NewDomainError(
		"USER_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"user not found",
	)

	ErrCollectionNotFound = NewDomainError(
		"COLLECTION_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"collection not found",
	)

	ErrItemNotFound = NewDomainError(
		"ITEM_NOT_FOUND",
		CategoryNotFound,
		http.StatusNotFound,
		"item not found",
	)

	ErrStoreUnavailable = NewDomainError(
		"STORE_UNAVAILABLE",
		CategoryInfrastructure,
		http.StatusServiceUnavailable,
		"storage temporarily unavailable",
	)

	ErrInternalError = NewDomainError(
		"INTERNAL_ERROR",
		CategoryInternal,
		http.StatusInternalServerError,
		"internal server error",
	)
)
