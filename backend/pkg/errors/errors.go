package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
	// ErrorTypeLayout represents layout selection errors
	ErrorTypeLayout ErrorType = "layout"
	// ErrorTypeRender represents frame encoding errors
	ErrorTypeRender ErrorType = "render"
	// ErrorTypeNotes represents note extraction (LLM) errors
	ErrorTypeNotes ErrorType = "notes"
	// ErrorTypeSnapshot represents malformed graph snapshots
	ErrorTypeSnapshot ErrorType = "snapshot"
	// ErrorTypeView represents requests against nodes the view does not show
	ErrorTypeView ErrorType = "view"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when Neo4j connection fails
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// ErrPersonNotFound is returned when a person is not found in the graph
type ErrPersonNotFound struct {
	*BaseError
	PersonID string
}

func NewPersonNotFound(personID string) *ErrPersonNotFound {
	return &ErrPersonNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("person not found: %s", personID), nil),
		PersonID:  personID,
	}
}

// View Errors

// ErrNodeNotFound is returned when a node is not in the view or has no position yet
type ErrNodeNotFound struct {
	*BaseError
	NodeID string
}

func NewNodeNotFound(nodeID string) *ErrNodeNotFound {
	return &ErrNodeNotFound{
		BaseError: NewBaseError(ErrorTypeView, fmt.Sprintf("node not in view: %s", nodeID), nil),
		NodeID:    nodeID,
	}
}

// Layout Errors

// ErrUnknownLayout is returned when a layout name does not match any strategy
type ErrUnknownLayout struct {
	*BaseError
	Name string
}

func NewUnknownLayout(name string) *ErrUnknownLayout {
	return &ErrUnknownLayout{
		BaseError: NewBaseError(ErrorTypeLayout, fmt.Sprintf("unknown layout: %q", name), nil),
		Name:      name,
	}
}

// ErrInvalidOption is returned when a presentation option has an unsupported value
type ErrInvalidOption struct {
	*BaseError
	Option string
	Value  string
}

func NewInvalidOption(option, value string) *ErrInvalidOption {
	return &ErrInvalidOption{
		BaseError: NewBaseError(ErrorTypeLayout, fmt.Sprintf("invalid value %q for %s", value, option), nil),
		Option:    option,
		Value:     value,
	}
}

// Snapshot Errors

// ErrInvalidSnapshot is returned when a snapshot cannot be decoded or is structurally broken
type ErrInvalidSnapshot struct {
	*BaseError
	Reason string
}

func NewInvalidSnapshot(reason string, err error) *ErrInvalidSnapshot {
	return &ErrInvalidSnapshot{
		BaseError: NewBaseError(ErrorTypeSnapshot, fmt.Sprintf("invalid snapshot: %s", reason), err),
		Reason:    reason,
	}
}

// Render Errors

// ErrRenderFailed is returned when a frame cannot be encoded
type ErrRenderFailed struct {
	*BaseError
	Format string
}

func NewRenderFailed(format string, err error) *ErrRenderFailed {
	return &ErrRenderFailed{
		BaseError: NewBaseError(ErrorTypeRender, fmt.Sprintf("failed to encode frame as %s", format), err),
		Format:    format,
	}
}

// Notes Errors

// ErrNotesExtractionFailed is returned when the LLM request for a note fails
type ErrNotesExtractionFailed struct {
	*BaseError
	Model     string
	Attempts  int
	Retryable bool
}

func NewNotesExtractionFailed(model string, attempts int, retryable bool, err error) *ErrNotesExtractionFailed {
	return &ErrNotesExtractionFailed{
		BaseError: NewBaseError(ErrorTypeNotes, fmt.Sprintf("note extraction failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
		Retryable: retryable,
	}
}

// ErrNotesEmptyResponse is returned when the model answers without usable content
var ErrNotesEmptyResponse = NewBaseError(ErrorTypeNotes, "no analysis in LLM response", nil)

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// ErrContextTimeout is returned when context times out
type ErrContextTimeout struct {
	*BaseError
	Operation string
	Timeout   time.Duration
}

func NewContextTimeout(operation string, timeout time.Duration) *ErrContextTimeout {
	return &ErrContextTimeout{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context timeout: %s (timeout: %v)", operation, timeout), nil),
		Operation: operation,
		Timeout:   timeout,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

// typed is satisfied by every error in this package through the embedded BaseError.
type typed interface {
	errorType() ErrorType
}

func (e *BaseError) errorType() ErrorType { return e.Type }

// IsErrorType checks if an error (or anything it wraps) is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if t, ok := err.(typed); ok && t.errorType() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	var notesErr *ErrNotesExtractionFailed
	if stderrors.As(err, &notesErr) {
		return notesErr.Retryable
	}
	// Graph connection errors are retryable
	return IsErrorType(err, ErrorTypeGraph)
}
