package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNoActivePlan       = errors.New("no active billing plan configured")
	ErrInvalidPhone       = errors.New("phone number is not a valid local mobile number")
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrRateLimited        = errors.New("too many requests")
	ErrLockNotAcquired    = errors.New("could not acquire lock")
)

// GatewayError wraps a failure reported by (or while talking to) the payment
// provider. The provider's own message is preserved for the caller.
type GatewayError struct {
	Provider string
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s gateway: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s gateway error", e.Provider)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func NewGatewayError(provider, message string, err error) *GatewayError {
	return &GatewayError{Provider: provider, Message: message, Err: err}
}
