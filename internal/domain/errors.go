package domain

import (
	"fmt"
	"strings"
)

// RuleSchemaError reports why a rule source failed validation. A failed load
// or reload is all-or-nothing: the previously active ruleset stays untouched
// and the caller receives every reason at once.
type RuleSchemaError struct {
	Reasons []string `json:"reasons"`
}

// Error implements the error interface.
func (e *RuleSchemaError) Error() string {
	return fmt.Sprintf("rule schema invalid: %s", strings.Join(e.Reasons, "; "))
}

// Add appends a reason, optionally prefixed with the offending rule id.
func (e *RuleSchemaError) Add(ruleID, format string, args ...interface{}) {
	reason := fmt.Sprintf(format, args...)
	if ruleID != "" {
		reason = fmt.Sprintf("rule %q: %s", ruleID, reason)
	}
	e.Reasons = append(e.Reasons, reason)
}

// HasReasons reports whether any validation failure was recorded.
func (e *RuleSchemaError) HasReasons() bool {
	return len(e.Reasons) > 0
}

// ValidationError represents input validation errors on feedback submission.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
