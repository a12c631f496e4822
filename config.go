package sealcrypt

import (
	"strings"
)

// Defaults for engine configuration
const (
	// DefaultMaxInputBytes bounds the plaintext (or packed archive)
	// held in memory during one operation (1 GiB)
	DefaultMaxInputBytes = int64(1024 * 1024 * 1024)

	// DefaultEncryptedSuffix is appended to encrypted output names
	DefaultEncryptedSuffix = ".sealed"

	// DefaultMaxArchiveFiles caps the number of entries packed into or
	// extracted from a folder archive
	DefaultMaxArchiveFiles = 10000
)

// Config contains configuration for the encryption engine
type Config struct {
	// MaxInputBytes is the maximum size of a file, the cumulative size
	// of a folder, or the declared decompressed size of an archive.
	MaxInputBytes int64

	// EncryptedSuffix is the fixed suffix appended to encrypted output
	// names and stripped when decrypting.
	EncryptedSuffix string

	// MaxArchiveFiles caps archive entry counts in both directions.
	MaxArchiveFiles int
}

// DefaultConfig returns a config with the package defaults
func DefaultConfig() *Config {
	return &Config{
		MaxInputBytes:   DefaultMaxInputBytes,
		EncryptedSuffix: DefaultEncryptedSuffix,
		MaxArchiveFiles: DefaultMaxArchiveFiles,
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c == nil {
		return NewValidationError("config", nil, "config cannot be nil")
	}
	if c.MaxInputBytes <= 0 {
		return NewValidationError("MaxInputBytes", c.MaxInputBytes, "maximum input size must be positive")
	}
	if c.MaxArchiveFiles <= 0 {
		return NewValidationError("MaxArchiveFiles", c.MaxArchiveFiles, "maximum archive file count must be positive")
	}
	if c.EncryptedSuffix == "" || !strings.HasPrefix(c.EncryptedSuffix, ".") {
		return NewValidationError("EncryptedSuffix", c.EncryptedSuffix, "suffix must start with a dot")
	}
	return nil
}
