// Package adcp contains the AdCP wire types shared by the A2A and MCP
// transports: request/response records, legacy-field coercion, and the
// to_wire()/to_internal() serialization split.
package adcp

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Severity classifies how serious a domain Error is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Error kinds. Not an exhaustive enum — handlers may mint new codes as
// long as they stay in this style (lower_snake_case, stable).
const (
	CodeValidation             = "validation_error"
	CodeAuthentication         = "authentication_error"
	CodeAuthorization          = "authorization_error"
	CodeTenantDetectionFailed  = "tenant_detection_failed"
	CodePrincipalNotInTenant   = "principal_not_in_tenant"
	CodePricingModelUnsupported = "pricing_model_unsupported"
	CodeProductNotFound        = "product_not_found"
	CodeFormatNotFound         = "format_not_found"
	CodeAdapterError           = "adapter_error"
	CodeManualApprovalRequired = "manual_approval_required"
)

// Error is the structured domain-error record appended to every
// response's errors[] array. It is never returned as a Go error at the
// handler boundary — handlers collect Errors and return a typed
// response, reserving the error return value for protocol-level faults.
type Error struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Field    string   `json:"field,omitempty"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError builds a field-scoped validation error.
func NewValidationError(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Severity: SeverityError, Field: field}
}

// Errors is a slice of domain Errors with helpers matching the spec's
// "aggregate into errors[], never throw" propagation policy.
type Errors []*Error

// HasFatal reports whether any error in the slice has SeverityError.
func (e Errors) HasFatal() bool {
	for _, err := range e {
		if err.Severity == SeverityError {
			return true
		}
	}
	return false
}

// AsError folds the fatal (SeverityError) entries into a single error
// via multierror, for handlers that need to log one combined line
// alongside the errors[] they still return to the caller. Returns nil
// when there are no fatal entries, so callers can pass it straight to
// a logger without an extra HasFatal check.
func (e Errors) AsError() error {
	var merr *multierror.Error
	for _, err := range e {
		if err.Severity == SeverityError {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}
