// Package errors provides the error taxonomy of the img2catalog pipeline.
// Every stage reports failures through one of these types so callers can
// decide programmatically whether a failure aborts the run, skips a record,
// or is only surfaced as a warning.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join re-export the standard library helpers so callers only
// need a single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinel errors, one per taxonomy class.
var (
	// ErrConfiguration indicates missing or malformed run configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication indicates rejected credentials for a source or sink.
	ErrAuthentication = errors.New("authentication failed")

	// ErrFetch indicates a source record could not be retrieved.
	ErrFetch = errors.New("fetch failed")

	// ErrResolution indicates a supplemental form payload could not be resolved.
	ErrResolution = errors.New("resolution failed")

	// ErrInvalidInput indicates a mapped record failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrReconciliation indicates the remote index could not be queried.
	ErrReconciliation = errors.New("reconciliation failed")

	// ErrPublish indicates a write to the remote store failed.
	ErrPublish = errors.New("publish failed")

	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited indicates that a remote rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnavailable indicates that a remote service is temporarily unavailable.
	ErrUnavailable = errors.New("service unavailable")

	// ErrCanceled indicates that an operation was canceled.
	ErrCanceled = errors.New("operation canceled")
)

// ConfigurationError represents missing or malformed configuration. It is fatal.
type ConfigurationError struct {
	Key     string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("configuration error for %s: %s", e.Key, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(key, message string, err error) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: message, Err: err}
}

// AuthenticationError represents rejected credentials. It is fatal.
type AuthenticationError struct {
	Service string // "xnat", "fdp", "sparql"
	Method  string // "basic", "bearer", "token"
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("authentication error for %s (%s): %s", e.Service, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthentication
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(service, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{Service: service, Method: method, Message: message, Err: err}
}

// FetchError represents a source record that could not be retrieved.
// The record is skipped and the run continues.
type FetchError struct {
	Project string
	Message string
	Err     error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("failed to fetch project %s: %s", e.Project, e.Message)
	}
	return fmt.Sprintf("fetch error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// NewFetchError creates a new FetchError.
func NewFetchError(project string, err error) *FetchError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &FetchError{Project: project, Message: message, Err: err}
}

// ResolutionError represents a supplemental form field that could not be
// resolved. The field is omitted or falls back; it never aborts a record.
type ResolutionError struct {
	Project string
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	if e.Project != "" {
		return fmt.Sprintf("cannot resolve field %s of project %s: %s", e.Field, e.Project, e.Message)
	}
	return fmt.Sprintf("cannot resolve field %s: %s", e.Field, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// NewResolutionError creates a new ResolutionError.
func NewResolutionError(project, field, message string) *ResolutionError {
	return &ResolutionError{Project: project, Field: field, Message: message}
}

// ValidationError represents a validation failure of a mapped record or an
// option value.
type ValidationError struct {
	Record  string
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	switch {
	case e.Record != "" && e.Field != "":
		return fmt.Sprintf("validation failed for %s field %s: %s", e.Record, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	default:
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ReconciliationError represents a failed remote index query. The run
// degrades to create-only mode.
type ReconciliationError struct {
	Endpoint string
	Message  string
	Err      error
}

// Error implements the error interface
func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconciliation against %s failed: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ReconciliationError) Is(target error) bool {
	return target == ErrReconciliation
}

// NewReconciliationError creates a new ReconciliationError.
func NewReconciliationError(endpoint string, err error) *ReconciliationError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ReconciliationError{Endpoint: endpoint, Message: message, Err: err}
}

// PublishError represents a failed write of one record to the remote store.
type PublishError struct {
	Operation string // "create", "update", "publish"
	Record    string
	Attempts  int
	Err       error
}

// Error implements the error interface
func (e *PublishError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("failed to %s %s after %d attempts: %v", e.Operation, e.Record, e.Attempts, e.Err)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Record, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PublishError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PublishError) Is(target error) bool {
	return target == ErrPublish
}

// NewPublishError creates a new PublishError.
func NewPublishError(operation, record string, attempts int, err error) *PublishError {
	return &PublishError{Operation: operation, Record: record, Attempts: attempts, Err: err}
}

// APIError represents an unexpected HTTP response from a remote service.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return target == ErrUnavailable
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return target == ErrAuthentication
	}
	return false
}

// NewAPIError creates a new APIError.
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{Service: service, StatusCode: statusCode, Message: message}
}

// ParseError represents an error when parsing data formats.
type ParseError struct {
	Format  string // "json", "yaml", "toml", "turtle"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError.
func NewParseError(format, file, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// Helper functions for error checking

// IsFatal reports whether err must abort the run before any remote write.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) || errors.Is(err, ErrAuthentication)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// IsTransient reports whether err is worth retrying: rate limits, server
// side failures, and transport failures that never produced a response.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 0
	}
	if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrConfiguration) || errors.Is(err, ErrCanceled) {
		return false
	}
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// TransportError represents a request that never produced an HTTP response.
type TransportError struct {
	Service string
	Err     error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Service, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Helper wrapping functions for common patterns

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(service string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{Service: service, StatusCode: statusCode, Message: err.Error(), Err: err}
}

// WrapTransport wraps an error as a TransportError
func WrapTransport(service string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Service: service, Err: err}
}

// WrapConfiguration wraps an error as a ConfigurationError
func WrapConfiguration(key string, err error) error {
	if err == nil {
		return nil
	}
	return NewConfigurationError(key, err.Error(), err)
}
