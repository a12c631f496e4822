package sealcrypt

import (
	"errors"
	"fmt"
)

// Error types represent different categories of failures. The engine
// collapses most of them to a boolean at its public boundary, but the
// internal components report them precisely so the engine can decide
// what is rate-limited, what is cleaned up, and which message is safe
// to surface.

// ValidationError represents a configuration or parameter validation error
type ValidationError struct {
	Field   string // The field or parameter that failed validation
	Value   any    // The invalid value
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SizeLimitError reports that an input, archive, or declared archive
// content exceeds the configured maximum size.
type SizeLimitError struct {
	Limit     int64 // Configured maximum in bytes
	Requested int64 // Observed or declared size in bytes
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("size limit exceeded: %d bytes requested, limit is %d bytes", e.Requested, e.Limit)
}

// WriteVerificationError reports that a persisted artifact did not
// match its expected length when re-read after writing. It indicates a
// partial write (disk full, interrupted I/O) and always triggers
// cleanup of the bad output.
type WriteVerificationError struct {
	Path     string // Destination path of the failed write
	Expected int64  // Expected artifact length in bytes
	Actual   int64  // Length observed on disk
}

func (e *WriteVerificationError) Error() string {
	return fmt.Sprintf("write verification failed: %s: wrote %d bytes, found %d on disk", e.Path, e.Expected, e.Actual)
}

// Common sentinel errors
var (
	ErrInvalidHeader      = errors.New("invalid container header")
	ErrUnsupportedVersion = errors.New("unsupported container format version")
	ErrAuthFailed         = errors.New("authentication failed - wrong password or corrupted data")
	ErrEmptyInput         = errors.New("nothing to encrypt: folder contains no files")
	ErrTooManyEntries     = errors.New("archive contains too many entries")
)

// Helper functions for creating structured errors

// NewValidationError creates a new validation error
func NewValidationError(field string, value any, message string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NewSizeLimitError creates a new size limit error
func NewSizeLimitError(limit, requested int64) error {
	return &SizeLimitError{
		Limit:     limit,
		Requested: requested,
	}
}

// Error checking helpers

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsSizeLimitError checks if an error is a size limit error
func IsSizeLimitError(err error) bool {
	var se *SizeLimitError
	return errors.As(err, &se)
}

// IsWriteVerificationError checks if an error is a write verification error
func IsWriteVerificationError(err error) bool {
	var we *WriteVerificationError
	return errors.As(err, &we)
}

// IsFormatError reports whether an error indicates a malformed or
// unsupported container rather than a failed password guess. Format
// failures are never rate-limited.
func IsFormatError(err error) bool {
	return errors.Is(err, ErrInvalidHeader) || errors.Is(err, ErrUnsupportedVersion)
}
