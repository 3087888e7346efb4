package hyni

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrorCategory tells a caller whether a failed provider call is worth
// repeating.
type ErrorCategory string

const (
	// ErrorTransient marks failures the provider may not repeat: HTTP 429,
	// 5xx responses, dropped connections, unreadable response bodies.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent marks failures a retry cannot fix: rejected credentials
	// (401/403), a schema that cannot be loaded, or a response whose shape
	// does not match the schema's paths.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput marks requests the caller must change: other 4xx
	// responses and engine validation failures such as an unknown model, an
	// out-of-range parameter or a role the schema does not declare.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is implemented by every error hyni returns on purpose:
// the transport errors of the chat client and the engine's SchemaError,
// ValidationError and ExtractionError.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool           // Category() == ErrorTransient
	StatusCode() int           // provider HTTP status, 0 for engine errors
	RetryAfter() time.Duration // provider Retry-After, 0 when absent
}

// Error is a provider call failure. The chat client builds one from every
// non-2xx response, with Msg carrying the text found at the schema's
// response_format.error.error_path, and Code and RetryDelay taken from the
// HTTP response.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status, 0 when no response was received
	RetryDelay time.Duration // parsed Retry-After header
	Cause      error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Category returns the error category.
func (e *Error) Category() ErrorCategory { return e.Cat }

// Retryable reports whether the call may succeed if repeated.
func (e *Error) Retryable() bool { return e.Cat == ErrorTransient }

// StatusCode returns the provider's HTTP status, or 0.
func (e *Error) StatusCode() int { return e.Code }

// RetryAfter returns the delay the provider asked for, or 0.
func (e *Error) RetryAfter() time.Duration { return e.RetryDelay }

// NewTransientError returns an ErrorTransient failure.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, Cause: cause}
}

// NewTransientErrorWithRetry is NewTransientError with the provider's
// Retry-After delay, which the retry loop honours over its own backoff.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorTransient, Code: statusCode, RetryDelay: retryAfter, Cause: cause}
}

// NewPermanentError returns an ErrorPermanent failure.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorPermanent, Code: statusCode, Cause: cause}
}

// NewUserInputError returns an ErrorUserInput failure.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{Msg: msg, Cat: ErrorUserInput, Code: statusCode, Cause: cause}
}

// categorized finds the first CategorizedError in err's chain.
func categorized(err error) (CategorizedError, bool) {
	var ce CategorizedError
	ok := errors.As(err, &ce)
	return ce, ok
}

func hasCategory(err error, cat ErrorCategory) bool {
	ce, ok := categorized(err)
	return ok && ce.Category() == cat
}

// IsTransient reports whether err, or an error it wraps, is transient.
func IsTransient(err error) bool { return hasCategory(err, ErrorTransient) }

// IsPermanent reports whether err, or an error it wraps, is permanent.
func IsPermanent(err error) bool { return hasCategory(err, ErrorPermanent) }

// IsUserInput reports whether err, or an error it wraps, is a user input
// error. Every *ValidationError is one.
func IsUserInput(err error) bool { return hasCategory(err, ErrorUserInput) }

// StatusCodeOf returns the provider HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	if ce, ok := categorized(err); ok {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the Retry-After delay carried by err, or 0.
func RetryAfterOf(err error) time.Duration {
	if ce, ok := categorized(err); ok {
		return ce.RetryAfter()
	}
	return 0
}

// SchemaError reports an unreadable, unparsable or incomplete schema.
// It is only produced while constructing a context.
type SchemaError struct {
	Location string // file path or resource name, empty for in-memory schemas
	Field    string // missing schema field, if any
	Msg      string
	Err      error
}

// Error returns the error message.
func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema error: %s: %v", e.Msg, e.Err)
	}
	return "schema error: " + e.Msg
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error { return e.Err }

// Category returns ErrorPermanent.
func (e *SchemaError) Category() ErrorCategory { return ErrorPermanent }

// Retryable returns false.
func (e *SchemaError) Retryable() bool { return false }

// StatusCode returns 0.
func (e *SchemaError) StatusCode() int { return 0 }

// RetryAfter returns 0.
func (e *SchemaError) RetryAfter() time.Duration { return 0 }

// ValidationError reports a rejected model, parameter, message, system
// message or API key, or a parameter lookup miss.
type ValidationError struct {
	Field   string // offending key or field name
	Msg     string
	Allowed []any // declared allowed set or bound, when applicable
	Err     error
}

// Error returns the error message.
func (e *ValidationError) Error() string {
	msg := "validation error: " + e.Msg
	if len(e.Allowed) > 0 {
		parts := make([]string, len(e.Allowed))
		for i, a := range e.Allowed {
			parts[i] = fmt.Sprint(a)
		}
		msg += " (allowed: " + strings.Join(parts, ", ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error { return e.Err }

// Category returns ErrorUserInput.
func (e *ValidationError) Category() ErrorCategory { return ErrorUserInput }

// Retryable returns false.
func (e *ValidationError) Retryable() bool { return false }

// StatusCode returns 0.
func (e *ValidationError) StatusCode() int { return 0 }

// RetryAfter returns 0.
func (e *ValidationError) RetryAfter() time.Duration { return 0 }

// ExtractionError reports a response path that did not resolve.
type ExtractionError struct {
	What string   // "text response", "full response", ...
	Path []string // the path that was attempted
	Err  error
}

// Error returns the error message.
func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s at %v: %v", e.What, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExtractionError) Unwrap() error { return e.Err }

// Category returns ErrorPermanent.
func (e *ExtractionError) Category() ErrorCategory { return ErrorPermanent }

// Retryable returns false.
func (e *ExtractionError) Retryable() bool { return false }

// StatusCode returns 0.
func (e *ExtractionError) StatusCode() int { return 0 }

// RetryAfter returns 0.
func (e *ExtractionError) RetryAfter() time.Duration { return 0 }

var errNoContentPath = errors.New("schema declares no response_format.success.content_path")

// IsSchemaError reports whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsExtractionError reports whether err is or wraps an *ExtractionError.
func IsExtractionError(err error) bool {
	var ee *ExtractionError
	return errors.As(err, &ee)
}
