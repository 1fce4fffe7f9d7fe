package draft

import (
	"fmt"
	"strings"

	"github.com/garyjia/procurement-drafts/internal/domain/workflow"
)

// FieldError describes one invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem found in one pass.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// FieldNames returns the offending field names in the order found.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidStateError is returned when an action is not allowed from the
// document's current lifecycle state. Nothing is mutated when it is returned.
type InvalidStateError struct {
	Action string
	State  workflow.State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a document in state %s", strings.ToLower(e.Action), e.State)
}
