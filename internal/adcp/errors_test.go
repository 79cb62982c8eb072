package adcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors_HasFatal(t *testing.T) {
	warningsOnly := Errors{{Code: CodeValidation, Message: "minor", Severity: SeverityWarning}}
	assert.False(t, warningsOnly.HasFatal())

	mixed := Errors{
		{Code: CodeValidation, Message: "minor", Severity: SeverityWarning},
		{Code: CodeAdapterError, Message: "boom", Severity: SeverityError},
	}
	assert.True(t, mixed.HasFatal())
}

func TestErrors_AsError(t *testing.T) {
	var empty Errors
	assert.NoError(t, empty.AsError())

	warningsOnly := Errors{{Code: CodeValidation, Message: "minor", Severity: SeverityWarning}}
	assert.NoError(t, warningsOnly.AsError())

	fatal := Errors{
		{Code: CodeAdapterError, Message: "first failure", Severity: SeverityError, Field: "pkg_1"},
		{Code: CodeAdapterError, Message: "second failure", Severity: SeverityError, Field: "pkg_2"},
		{Code: CodeValidation, Message: "ignored warning", Severity: SeverityWarning},
	}
	err := fatal.AsError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failure")
	assert.Contains(t, err.Error(), "second failure")
	assert.NotContains(t, err.Error(), "ignored warning")
}
