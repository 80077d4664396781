package shared

import (
	"errors"
	"fmt"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Sentinels returned by stores and wrapped by callers.
var (
	ErrSettingNotFound    = errors.New("setting not found")
	ErrSettingOutOfRange  = errors.New("setting value out of range")
	ErrUnknownWorkerType  = errors.New("unknown worker type")
	ErrStationNotLeased   = errors.New("station is not leased by this process")
	ErrProcessNotFound    = errors.New("process not found")
	ErrDuplicateStationID = errors.New("station already exists")
)

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Configuration errors

// ConfigurationError reports a stored setting that cannot drive the simulation,
// such as a non-positive time-scale.
type ConfigurationError struct {
	*DomainError
	Setting string
	Value   int
}

func NewConfigurationError(setting string, value int, message string) *ConfigurationError {
	return &ConfigurationError{
		DomainError: &DomainError{Message: fmt.Sprintf("setting %s=%d: %s", setting, value, message)},
		Setting:     setting,
		Value:       value,
	}
}

// Store errors

// StoreError wraps any failure talking to the coordination store.
// Transient marks connectivity failures that may be retried when the
// operation is idempotent.
type StoreError struct {
	Op        string
	Err       error
	Transient bool
}

func (e *StoreError) Error() string {
	if e.Transient {
		return fmt.Sprintf("store %s (connectivity): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func NewConnectivityError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err, Transient: true}
}

// IsTransient reports whether err carries a retryable connectivity failure
func IsTransient(err error) bool {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Transient
	}
	return false
}
