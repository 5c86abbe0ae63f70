package dirwatch

import (
	"errors"
	"fmt"
)

// Exit statuses used by the dirwatch command
const (
	// ExitError is the status for operational and configuration failures
	ExitError = 1

	// ExitInterrupted is the status after a user-initiated interruption
	ExitInterrupted = 130
)

// Common errors returned by dirwatch operations
var (
	// ErrInterrupted indicates the run ended because the user interrupted it
	ErrInterrupted = errors.New("dirwatch: interrupted")

	// ErrNoCommand indicates no command was given to run
	ErrNoCommand = errors.New("dirwatch: no command specified")

	// ErrUnsupported indicates process-group control is unavailable on this platform
	ErrUnsupported = errors.New("dirwatch: process groups not supported on this platform")
)

// PatternError reports a filter pattern that failed to compile
type PatternError struct {
	// Pattern is the offending pattern
	Pattern string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *PatternError) Error() string {
	return fmt.Sprintf("dirwatch: bad pattern %q: %v", e.Pattern, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *PatternError) Unwrap() error {
	return e.Err
}
