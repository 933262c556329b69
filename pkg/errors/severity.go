// Package errors provides severity-aware error types.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// EnergyError is a structured error with context.
type EnergyError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	Field       string   `json:"field,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *EnergyError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s (field: %s)", e.Severity, e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeEmptyBillHistory   = "EMPTY_BILL_HISTORY"
	ErrCodeInvalidAppliance   = "INVALID_APPLIANCE"
	ErrCodeInvariantViolation = "INVARIANT_VIOLATION"
	ErrCodePolicyEvaluation   = "POLICY_EVALUATION_FAILED"
)

// NewInvalidInputError reports a request field the caller must fix.
func NewInvalidInputError(field, format string, args ...any) *EnergyError {
	return &EnergyError{
		Code:        ErrCodeInvalidInput,
		Message:     fmt.Sprintf(format, args...),
		Severity:    SeverityError,
		Field:       field,
		Recoverable: true,
	}
}

// NewEmptyBillHistoryError is returned when no billing months were supplied.
func NewEmptyBillHistoryError() *EnergyError {
	return &EnergyError{
		Code:        ErrCodeEmptyBillHistory,
		Message:     "bill history must contain at least one month",
		Severity:    SeverityError,
		Field:       "bill_history",
		Recoverable: true,
	}
}

// NewInvalidApplianceError reports an appliance entry with out-of-range values.
func NewInvalidApplianceError(index int, reason string) *EnergyError {
	return &EnergyError{
		Code:        ErrCodeInvalidAppliance,
		Message:     reason,
		Severity:    SeverityError,
		Field:       fmt.Sprintf("appliances[%d]", index),
		Recoverable: true,
	}
}

// NewInvariantError marks a state the engine should never reach.
func NewInvariantError(format string, args ...any) *EnergyError {
	return &EnergyError{
		Code:        ErrCodeInvariantViolation,
		Message:     fmt.Sprintf(format, args...),
		Severity:    SeverityFatal,
		Recoverable: false,
	}
}

// NewPolicyError wraps a failure to load or evaluate budget policies.
func NewPolicyError(err error) *EnergyError {
	return &EnergyError{
		Code:        ErrCodePolicyEvaluation,
		Message:     err.Error(),
		Severity:    SeverityError,
		Recoverable: false,
	}
}

// IsInvalidInput reports whether err carries a caller-correctable code.
func IsInvalidInput(err error) bool {
	var e *EnergyError
	if !stderrors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrCodeInvalidInput, ErrCodeEmptyBillHistory, ErrCodeInvalidAppliance:
		return true
	}
	return false
}

// IsInvariant reports whether err is an internal invariant violation.
func IsInvariant(err error) bool {
	var e *EnergyError
	return stderrors.As(err, &e) && e.Code == ErrCodeInvariantViolation
}
