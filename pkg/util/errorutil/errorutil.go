package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/reparolabs/repairshop-service/internal/domain"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewTooManyRequests(message string, details map[string]any) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError, mapping domain
// sentinels and storage errors onto the HTTP taxonomy.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return mustDomain(NewNotFound("resource", nil))
	case errors.Is(err, domain.ErrInvalidCredentials):
		return mustDomain(NewUnauthorized("invalid credentials"))
	case errors.Is(err, domain.ErrTooManyAttempts):
		return mustDomain(NewTooManyRequests("too many attempts", nil))
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrSKUTaken):
		return mustDomain(NewConflict(err.Error(), nil))
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderFinalized),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrCustomerHasOrders),
		errors.Is(err, domain.ErrSelfDelete),
		errors.Is(err, domain.ErrBudgetNotPending):
		return mustDomain(NewConflict(err.Error(), nil))
	}

	return mustDomain(NewInternalError(err))
}

func MapError(err error) error {
	return ToDomainError(err)
}

func mustDomain(err error) *DomainError {
	de, ok := err.(*DomainError)
	if !ok {
		return &DomainError{
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
			HTTPStatus: http.StatusInternalServerError,
			Err:        err,
		}
	}
	return de
}
