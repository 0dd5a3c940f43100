// Package errors provides rich structural-validation errors for
// template spec packs. Errors accumulate into lists so a single
// validation pass reports every problem, never just the first.
package errors

import (
	"fmt"
	"strings"
)

// ErrorType categorizes the kind of problem found in a spec pack.
type ErrorType string

const (
	ErrorTypeSyntax     ErrorType = "syntax"     // YAML syntax error
	ErrorTypeStructural ErrorType = "structural" // Schema violation (missing/invalid fields)
	ErrorTypeSemantic   ErrorType = "semantic"   // Cross-reference or consistency violation
	ErrorTypeIO         ErrorType = "io"         // File I/O error
)

// Error is a rich validation error with a path into the pack document
// and an optional suggested fix.
type Error struct {
	Type       ErrorType // Category of error
	Message    string    // Error message
	Path       string    // Path into the pack (e.g., "templates[1].fieldRules.serialNumber")
	Suggestion string    // Suggested fix (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", e.Type, e.Message))

	if e.Path != "" {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Path))
	}

	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}

	return sb.String()
}

// ErrorList accumulates validation errors so callers can report all
// problems in one pass instead of failing on the first.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Error, 0),
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and adds a new error with the given parameters.
func (el *ErrorList) AddError(errType ErrorType, message, path string) {
	el.Add(&Error{
		Type:    errType,
		Message: message,
		Path:    path,
	})
}

// AddErrorWithSuggestion creates and adds a new error with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, message, path, suggestion string) {
	el.Add(&Error{
		Type:       errType,
		Message:    message,
		Path:       path,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Messages returns the error messages with their paths as flat strings,
// suitable for registration records.
func (el *ErrorList) Messages() []string {
	out := make([]string, 0, len(el.Errors))
	for _, err := range el.Errors {
		if err.Path != "" {
			out = append(out, fmt.Sprintf("%s: %s", err.Path, err.Message))
		} else {
			out = append(out, err.Message)
		}
	}
	return out
}

// Error implements the error interface, formatting all errors together.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d error(s):\n\n", el.Count()))

	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("Error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// ByType returns all errors of the given type.
func (el *ErrorList) ByType(errType ErrorType) []*Error {
	var result []*Error
	for _, err := range el.Errors {
		if err.Type == errType {
			result = append(result, err)
		}
	}
	return result
}

// HasErrorType returns true if at least one error of the given type exists.
func (el *ErrorList) HasErrorType(errType ErrorType) bool {
	for _, err := range el.Errors {
		if err.Type == errType {
			return true
		}
	}
	return false
}
