package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("resource not found")

	ErrInvalidArgument = errors.New("invalid argument")

	ErrValidation = errors.New("validation failed")

	ErrInvalidTransition = errors.New("invalid status transition")

	ErrInvalidOperation = errors.New("operation not allowed for loan status")

	ErrOverpayment = errors.New("payment exceeds remaining balance")

	ErrExternalDependency = errors.New("external dependency failed")

	ErrDatabase = errors.New("database error")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")
)

type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func NewValidationError(field, message string) error {
	return fmt.Errorf("%w: %w", ErrValidation, &ValidationError{Field: field, Message: message})
}

// TransitionError reports a lifecycle operation attempted against a loan
// whose current status does not permit it. It always names the current
// status and the status(es) the operation requires.
type TransitionError struct {
	Operation     string
	CurrentStatus string
	AllowedStatus []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s loan in status %s (requires %v)", e.Operation, e.CurrentStatus, e.AllowedStatus)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func NewTransitionError(operation, current string, allowed ...string) error {
	return &TransitionError{Operation: operation, CurrentStatus: current, AllowedStatus: allowed}
}

// OverpaymentError reports both the attempted amount and the actual
// remaining balance, so callers can surface the limit to the user.
type OverpaymentError struct {
	Amount    decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment amount (%s) exceeds total remaining balance (%s)",
		e.Amount.StringFixed(2), e.Remaining.StringFixed(2))
}

func (e *OverpaymentError) Unwrap() error {
	return ErrOverpayment
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
