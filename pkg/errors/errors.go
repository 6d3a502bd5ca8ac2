// Package errors provides custom error types for the groupsync system.
// These errors enable programmatic error checking across the reconciliation
// pipeline and carry enough request context for useful diagnostics.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As.
var As = errors.As

// Join combines multiple errors into one.
// It's an alias for the standard library errors.Join.
var Join = errors.Join

// Common sentinel errors for the groupsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousMatch indicates that a lookup matched more than one entity
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthFailed indicates that a directory rejected our credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrDirectoryUnavailable indicates that a directory is temporarily unavailable
	ErrDirectoryUnavailable = errors.New("directory unavailable")
)

// GroupNotFoundError indicates that a named group does not exist in a directory.
type GroupNotFoundError struct {
	Directory string
	Name      string
}

// Error implements the error interface
func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("group %q not found in %s directory", e.Name, e.Directory)
}

// Is implements errors.Is support
func (e *GroupNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewGroupNotFoundError creates a new GroupNotFoundError
func NewGroupNotFoundError(directory, name string) *GroupNotFoundError {
	return &GroupNotFoundError{Directory: directory, Name: name}
}

// UserNotFoundError indicates that a user lookup by principal name found nothing.
type UserNotFoundError struct {
	Directory string
	Principal string
}

// Error implements the error interface
func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("user %q not found in %s directory", e.Principal, e.Directory)
}

// Is implements errors.Is support
func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousMatchError indicates that a name lookup matched more than one
// entity. Vendor response ordering is not guaranteed, so picking one
// silently risks operating on the wrong entity; callers opt into
// first-match behavior explicitly.
type AmbiguousMatchError struct {
	Directory string
	Resource  string
	Name      string
	Count     int
}

// Error implements the error interface
func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d %ss named %q in %s directory", e.Count, e.Resource, e.Name, e.Directory)
}

// Is implements errors.Is support
func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}

// APIError represents an error response from a directory API.
type APIError struct {
	Directory  string
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Directory, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Directory, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == 401 || e.StatusCode == 403:
		return target == ErrAuthFailed
	case e.StatusCode == 429:
		return target == ErrRateLimited
	case e.StatusCode >= 500:
		return target == ErrDirectoryUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(directory string, statusCode int, endpoint, message string) *APIError {
	return &APIError{
		Directory:  directory,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// FetchError represents a failed page fetch during paginated retrieval.
// It carries the request context of the failing page; records yielded by
// earlier pages must be discarded by the caller.
type FetchError struct {
	Directory string
	Resource  string
	Page      string // next link or startIndex of the failing page
	Err       error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	if e.Page != "" {
		return fmt.Sprintf("fetching %s from %s (page %s): %v", e.Resource, e.Directory, e.Page, e.Err)
	}
	return fmt.Sprintf("fetching %s from %s: %v", e.Resource, e.Directory, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(directory, resource, page string, err error) *FetchError {
	return &FetchError{Directory: directory, Resource: resource, Page: page, Err: err}
}

// ResolutionError represents a failed user resolution for a single member.
// Resolution errors are non-fatal; the reconciler accumulates them into the
// run summary instead of aborting.
type ResolutionError struct {
	DisplayName string
	Principal   string
	Err         error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving user %q (%s): %v", e.DisplayName, e.Principal, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ApplyError represents a failed membership update. The patch is not retried;
// a run makes at most one apply attempt.
type ApplyError struct {
	Directory string
	GroupID   string
	Count     int
	Err       error
}

// Error implements the error interface
func (e *ApplyError) Error() string {
	return fmt.Sprintf("applying %d member additions to group %s in %s directory: %v", e.Count, e.GroupID, e.Directory, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ApplyError) Unwrap() error {
	return e.Err
}

// AuthenticationError represents an authentication/authorization failure.
type AuthenticationError struct {
	Directory string
	Method    string // "bearer", "token_header"
	Message   string
	Err       error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Directory != "" {
		return fmt.Sprintf("authentication error for %s directory (%s): %s", e.Directory, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthFailed
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthFailed checks if an error is an authentication failure
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsAmbiguous checks if an error is an ambiguous match error
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguousMatch)
}

// Helper wrapping functions for common patterns

// WrapFetch wraps an error as a FetchError
func WrapFetch(directory, resource, page string, err error) error {
	if err == nil {
		return nil
	}
	return NewFetchError(directory, resource, page, err)
}

// WrapAPI wraps an error as an APIError
func WrapAPI(directory string, statusCode int, endpoint string, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Directory:  directory,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    err.Error(),
		Err:        err,
	}
}
