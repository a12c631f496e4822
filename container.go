package sealcrypt

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

const (
	// MagicBytes identifies sealcrypt containers (ASCII: "SEAL")
	MagicBytes = "SEAL"

	// CurrentVersion is the current container format version. Version 1
	// places the content-type byte inside the encrypted payload, not in
	// the header, and fixes the key derivation parameters; changing
	// either requires a version bump.
	CurrentVersion = uint8(1)

	// SaltSize is the Argon2id salt length in bytes
	SaltSize = 16

	// NonceSize is the XChaCha20-Poly1305 nonce length in bytes
	NonceSize = 24

	// TagSize is the Poly1305 authentication tag length in bytes
	TagSize = 16

	// HeaderSize is the fixed prefix before the ciphertext:
	// magic (4) + version (1) + salt (16) + nonce (24)
	HeaderSize = 4 + 1 + SaltSize + NonceSize

	// MinContainerSize is the smallest valid container: a full header
	// followed by an empty ciphertext and its authentication tag.
	MinContainerSize = HeaderSize + TagSize
)

// Container holds the decoded fields of an encrypted artifact.
type Container struct {
	Version    uint8  // Container format version
	Salt       []byte // Salt for key derivation
	Nonce      []byte // Nonce for the cipher
	Ciphertext []byte // Encrypted payload, same length as the plaintext
	Tag        []byte // Authentication tag over the ciphertext
}

// EncodeContainer serializes the container fields in their fixed wire
// order: magic, version, salt, nonce, ciphertext, tag. No length
// prefixes are needed; salt, nonce, and tag have fixed sizes and the
// ciphertext is everything in between.
func EncodeContainer(salt, nonce, ciphertext, tag []byte) ([]byte, error) {
	if err := ValidateBuffer(salt, "salt", SaltSize); err != nil {
		return nil, err
	}
	if err := ValidateBuffer(nonce, "nonce", NonceSize); err != nil {
		return nil, err
	}
	if err := ValidateBuffer(tag, "tag", TagSize); err != nil {
		return nil, err
	}

	out := make([]byte, 0, HeaderSize+len(ciphertext)+TagSize)
	out = append(out, MagicBytes...)
	out = append(out, CurrentVersion)
	out = append(out, salt[:SaltSize]...)
	out = append(out, nonce[:NonceSize]...)
	out = append(out, ciphertext...)
	out = append(out, tag[:TagSize]...)
	return out, nil
}

// DecodeContainer parses a serialized container. It returns
// ErrInvalidHeader for truncated data or a magic mismatch, and
// ErrUnsupportedVersion for any version other than CurrentVersion.
// Unknown versions are rejected outright rather than best-effort
// parsed.
func DecodeContainer(data []byte) (*Container, error) {
	if len(data) < MinContainerSize {
		return nil, ErrInvalidHeader
	}
	if subtle.ConstantTimeCompare(data[:4], []byte(MagicBytes)) != 1 {
		return nil, ErrInvalidHeader
	}

	version := data[4]
	if version != CurrentVersion {
		return nil, ErrUnsupportedVersion
	}

	c := &Container{
		Version:    version,
		Salt:       data[5 : 5+SaltSize],
		Nonce:      data[5+SaltSize : HeaderSize],
		Ciphertext: data[HeaderSize : len(data)-TagSize],
		Tag:        data[len(data)-TagSize:],
	}
	return c, nil
}

// WriteContainerFile persists an encoded container at path. The data
// is written to a uniquely named temporary file in the same directory,
// synced, re-stat'ed, and renamed into place only if the on-disk
// length matches the expected length. A length mismatch (disk full,
// interrupted write) removes the temporary file and returns a
// *WriteVerificationError, so a bad artifact never lands at path.
func WriteContainerFile(path string, data []byte) error {
	return writeVerifiedFile(path, data, 0600)
}

// writeVerifiedFile is the shared write-then-verify-then-rename path
// used for containers and restored plaintext alike.
func writeVerifiedFile(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".partial-" + uuid.NewString()

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close output file: %w", err)
	}

	info, err := os.Stat(tmp)
	if err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to verify output file: %w", err)
	}
	if info.Size() != int64(len(data)) {
		os.Remove(tmp)
		return &WriteVerificationError{
			Path:     path,
			Expected: int64(len(data)),
			Actual:   info.Size(),
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}

// IsEncryptedFile reports whether the file at path starts with the
// sealcrypt magic bytes. It reads only the magic and never derives a
// key.
func IsEncryptedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		// Shorter than a magic prefix means not a container; any other
		// read failure is the caller's to see.
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return string(magic) == MagicBytes, nil
}
