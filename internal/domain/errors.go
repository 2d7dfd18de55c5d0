package domain

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed caller input: bad holdings, a confidence
// level outside (0,1), an unrecognized period, or an unknown scenario key.
// ValidKeys is populated for unknown-scenario errors so the caller can see
// every configured key.
type ValidationError struct {
	Message   string
	ValidKeys []string
}

func (e *ValidationError) Error() string {
	if len(e.ValidKeys) > 0 {
		return fmt.Sprintf("%s (valid: %s)", e.Message, strings.Join(e.ValidKeys, ", "))
	}
	return e.Message
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NoDataError reports tickers for which the market-data provider returned no
// usable observations.
type NoDataError struct {
	Tickers []string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no price data found for ticker(s): %s", strings.Join(e.Tickers, ", "))
}

// InsufficientDataError reports a series too short, or a date intersection
// too small, for the requested computation.
type InsufficientDataError struct {
	Message string
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// NewInsufficientDataError creates an InsufficientDataError with a formatted message.
func NewInsufficientDataError(format string, args ...interface{}) *InsufficientDataError {
	return &InsufficientDataError{Message: fmt.Sprintf(format, args...)}
}

// NumericalError reports a fatal numerical failure, e.g. a covariance matrix
// that is not positive-definite even after regularization. Not retried.
type NumericalError struct {
	Message string
}

func (e *NumericalError) Error() string {
	return e.Message
}

// NewNumericalError creates a NumericalError with a formatted message.
func NewNumericalError(format string, args ...interface{}) *NumericalError {
	return &NumericalError{Message: fmt.Sprintf(format, args...)}
}
