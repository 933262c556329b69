package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := NewInvalidApplianceError(2, "hours must be between 0 and 24")
	assert.Equal(t, "[error] INVALID_APPLIANCE: hours must be between 0 and 24 (field: appliances[2])", err.Error())

	inv := NewInvariantError("expected %d months, got %d", 12, 11)
	assert.Equal(t, "[fatal] INVARIANT_VIOLATION: expected 12 months, got 11", inv.Error())
	assert.False(t, inv.Recoverable)
}

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("predict: %w", NewEmptyBillHistoryError())

	assert.True(t, IsInvalidInput(wrapped))
	assert.False(t, IsInvariant(wrapped))

	assert.True(t, IsInvariant(fmt.Errorf("x: %w", NewInvariantError("bad"))))
	assert.False(t, IsInvalidInput(NewInvariantError("bad")))
	assert.False(t, IsInvalidInput(NewPolicyError(fmt.Errorf("rego"))))
	assert.False(t, IsInvalidInput(fmt.Errorf("plain")))
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
