package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

const (
	// Authentication errors (1xxx)
	ErrCodeMissingToken       ErrorCode = "AUTH_1001"
	ErrCodeMalformedHeader    ErrorCode = "AUTH_1002"
	ErrCodeInvalidToken       ErrorCode = "AUTH_1003"
	ErrCodeTokenExpired       ErrorCode = "AUTH_1004"
	ErrCodeMalformedToken     ErrorCode = "AUTH_1005"
	ErrCodeInvalidCredentials ErrorCode = "AUTH_1006"

	// Validation errors (2xxx)
	ErrCodeInvalidRequest ErrorCode = "VALID_2001"

	// Rate limiting errors (3xxx)
	ErrCodeRateLimitExceeded ErrorCode = "RATE_3001"

	// Resource errors (4xxx)
	ErrCodeNotFound ErrorCode = "RES_4001"
	ErrCodeConflict ErrorCode = "RES_4002"

	// Server errors (6xxx)
	ErrCodeInternalServerError ErrorCode = "SERVER_6001"
	ErrCodeConfigurationError  ErrorCode = "SERVER_6003"

	// Authorization errors (7xxx)
	ErrCodeForbidden    ErrorCode = "SEC_7001"
	ErrCodeAccessDenied ErrorCode = "SEC_7002"
)

// AppError is a structured application error. Message is safe to show to
// clients; Cause is for logs only.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"-"`
	Cause   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Code so that a copy carrying a cause still compares equal
// to its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause returns a copy of e wrapping cause.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithMessage returns a copy of e with a different public message.
func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

func New(code ErrorCode, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// Token and access-guard taxonomy.
var (
	ErrMissingToken    = New(ErrCodeMissingToken, http.StatusUnauthorized, "Token is missing")
	ErrMalformedHeader = New(ErrCodeMalformedHeader, http.StatusUnauthorized, "Invalid authorization header format")
	ErrInvalidToken    = New(ErrCodeInvalidToken, http.StatusUnauthorized, "Invalid token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, http.StatusUnauthorized, "Token has expired")
	ErrMalformedToken  = New(ErrCodeMalformedToken, http.StatusUnauthorized, "Token cannot be refreshed")
	ErrForbidden       = New(ErrCodeForbidden, http.StatusForbidden, "Admin access required")
	ErrConfiguration   = New(ErrCodeConfigurationError, http.StatusInternalServerError, "Internal server error")
)

// Application errors used by the user management collaborator.
var (
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, http.StatusUnauthorized, "Email or password is incorrect")
	ErrAccessDenied       = New(ErrCodeAccessDenied, http.StatusForbidden, "Access denied")
	ErrInvalidRequest     = New(ErrCodeInvalidRequest, http.StatusBadRequest, "Invalid request")
	ErrNotFound           = New(ErrCodeNotFound, http.StatusNotFound, "Not found")
	ErrConflict           = New(ErrCodeConflict, http.StatusConflict, "Conflict")
	ErrEmailInUse         = New(ErrCodeConflict, http.StatusBadRequest, "This email address is already in use")
	ErrRateLimitExceeded  = New(ErrCodeRateLimitExceeded, http.StatusTooManyRequests, "Too many requests. Please try again later.")
	ErrInternal           = New(ErrCodeInternalServerError, http.StatusInternalServerError, "Internal server error")
)

func BadRequest(message string) *AppError {
	return ErrInvalidRequest.WithMessage(message)
}

func NotFound(message string) *AppError {
	return ErrNotFound.WithMessage(message)
}

func Conflict(message string) *AppError {
	return ErrConflict.WithMessage(message)
}

func AccessDenied(message string) *AppError {
	return ErrAccessDenied.WithMessage(message)
}

func Internal(cause error) *AppError {
	return ErrInternal.WithCause(cause)
}

// HTTPStatus maps an error to the status the boundary should answer with.
// Anything that is not an AppError is a 500.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the client-facing message for err. Causes, signing
// details and unknown errors are never exposed.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			return ErrInternal.Message
		}
		return appErr.Message
	}
	return ErrInternal.Message
}
