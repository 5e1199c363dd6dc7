// Package errors provides a lightweight structured error type (MetricsError)
// for category-based classification in the CLI and HTTP adapters.
package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorCategory classifies an error for exit codes and HTTP statuses.
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// External system integration errors
	CategoryNetwork   ErrorCategory = "network"
	CategoryDirectory ErrorCategory = "directory"
	CategoryIngest    ErrorCategory = "ingest"
	CategoryExport    ErrorCategory = "export"

	// Runtime and infrastructure errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryRuntime    ErrorCategory = "runtime"
	CategoryInternal   ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ContextFields carries structured context for MetricsError
type ContextFields map[string]any

// MetricsError is a structured error with category, retryability, and context
type MetricsError struct {
	Category  ErrorCategory `json:"category"`
	Severity  ErrorSeverity `json:"severity"`
	Message   string        `json:"message"`
	Cause     error         `json:"cause,omitempty"`
	Retryable bool          `json:"retryable"`
	Context   ContextFields `json:"context,omitempty"`
}

// Error implements the error interface
func (e *MetricsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping
func (e *MetricsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *MetricsError) WithContext(key string, value any) *MetricsError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new MetricsError
func New(category ErrorCategory, severity ErrorSeverity, message string) *MetricsError {
	return &MetricsError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new MetricsError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *MetricsError {
	return &MetricsError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// WrapRetryable creates a new retryable MetricsError that wraps an existing error
func WrapRetryable(err error, category ErrorCategory, severity ErrorSeverity, message string) *MetricsError {
	return &MetricsError{
		Category:  category,
		Severity:  severity,
		Message:   message,
		Cause:     err,
		Retryable: true,
	}
}

// As returns the outermost MetricsError in err's chain.
func As(err error) (*MetricsError, bool) {
	var me *MetricsError
	if stdErrors.As(err, &me) {
		return me, true
	}
	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if me, ok := As(err); ok {
		return me.Category == category
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if me, ok := As(err); ok {
		return me.Retryable
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a MetricsError
func GetCategory(err error) ErrorCategory {
	if me, ok := As(err); ok {
		return me.Category
	}
	return CategoryInternal
}
