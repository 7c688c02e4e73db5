// Package access provides the value objects, errors and audit records shared by the
// holiday calendar and the eligibility evaluator
package access

import "fmt"

// ValidationError is returned when an identity number, date or time does not have the required shape.
// It is always returned before any eligibility rule runs.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func newValidationError(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// ConfigurationError is returned when a holiday lookup lacks the credentials it needs.
// It is distinct from a lookup answering "not a holiday".
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// TransportError is returned when a remote lookup fails at the network layer or the
// remote service answers with something that can't be used
type TransportError struct {
	URL string
	// StatusCode is 0 when no response was received
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error calling %s, status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
