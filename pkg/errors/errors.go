package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a failure reading or decoding a YAML document, with
// optional line metadata extracted from the decoder.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures prompt-configuration problems: bad settings,
// invalid field references, dependency cycles. These surface before any
// generation work starts.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// NewCycleError reports a dependency cycle among smart fields as a
// ValidationError naming the fields involved.
func NewCycleError(fields []string) error {
	return &ValidationError{
		Field:   "fields",
		Message: fmt.Sprintf("smart fields form a dependency cycle among: %s", strings.Join(fields, ", ")),
	}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ResolutionError represents a runtime failure resolving a single field.
// It is confined to that field: the scheduler records it and carries on
// with every sibling in the same frontier.
type ResolutionError struct {
	Field string
	Err   error
}

// NewResolutionError constructs a ResolutionError for the given field.
func NewResolutionError(field string, err error) error {
	return &ResolutionError{Field: field, Err: err}
}

func (e *ResolutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("resolution error on field %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("resolution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ResolutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CapacityError indicates a provider declined to generate because the
// account is out of capacity for the given generation kind. Resolvers map
// it to a skipped field rather than a failure.
type CapacityError struct {
	Kind string
}

// NewCapacityError constructs a CapacityError for a generation kind.
func NewCapacityError(kind string) error {
	return &CapacityError{Kind: kind}
}

func (e *CapacityError) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind != "" {
		return fmt.Sprintf("capacity exhausted for %s generation", e.Kind)
	}
	return "capacity exhausted"
}

// ProviderError indicates an HTTP-class failure from a generation provider,
// retaining the status code for callers that branch on it.
type ProviderError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

// NewProviderError constructs a ProviderError.
func NewProviderError(provider string, status int, message string, err error) error {
	return &ProviderError{Provider: provider, Status: status, Message: message, Err: err}
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status > 0 {
		return fmt.Sprintf("provider error [%s]: http %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error [%s]: %s", e.Provider, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// HTTPStatusCode reports the provider's HTTP status, satisfying the retry
// classification used by the provider clients.
func (e *ProviderError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.Status
}
