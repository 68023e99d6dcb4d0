package race

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every *ConfigError.
	ErrInvalidConfig = errors.New("invalid race configuration")

	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("engine already initialized")

	// ErrNotInitialized is returned by Tick before Initialize succeeded.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrTickInProgress is returned when Tick is entered while another Tick runs.
	ErrTickInProgress = errors.New("tick already in progress")

	// ErrInvalidDelta is returned for a non-positive tick delta.
	ErrInvalidDelta = errors.New("tick delta must be positive")

	// ErrDecisionPending replaces a decision while the car's previous
	// Decide call, abandoned at its deadline, has not returned yet.
	ErrDecisionPending = errors.New("previous decision still running")
)

// ConfigError reports a single invalid configuration field.
type ConfigError struct {
	// Field is the offending option, e.g. "track_length" or "cars[2].speed".
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidConfig.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// IsConfigError returns true if err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func newConfigError(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvariantCode categorizes state machine violations.
type InvariantCode string

const (
	// InvariantFrozenCar means a non-active car was about to be mutated.
	InvariantFrozenCar InvariantCode = "FROZEN_CAR"

	// InvariantDecisionForInactive means a decision was produced for a car
	// that was not active when the tick started.
	InvariantDecisionForInactive InvariantCode = "DECISION_FOR_INACTIVE"

	// InvariantOutcomeRegressed means a terminal outcome was about to change.
	InvariantOutcomeRegressed InvariantCode = "OUTCOME_REGRESSED"
)

// InvariantError is the panic value used when the engine detects a broken
// state machine. It is never returned as an ordinary error.
type InvariantError struct {
	Code    InvariantCode
	Message string
	CarID   CarID
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.CarID != 0 {
		return fmt.Sprintf("invariant %s: %s (car=%d)", e.Code, e.Message, e.CarID)
	}
	return fmt.Sprintf("invariant %s: %s", e.Code, e.Message)
}

func violate(code InvariantCode, id CarID, format string, args ...any) {
	panic(&InvariantError{Code: code, CarID: id, Message: fmt.Sprintf(format, args...)})
}

// DecisionError records why a strategy's decision was replaced by Stay.
type DecisionError struct {
	CarID CarID
	Err   error
}

// Error implements the error interface.
func (e *DecisionError) Error() string {
	return fmt.Sprintf("car %d decision failed: %v", e.CarID, e.Err)
}

// Unwrap returns the underlying strategy failure.
func (e *DecisionError) Unwrap() error {
	return e.Err
}
