package sealcrypt

import (
	"crypto/rand"
	"fmt"
	"runtime"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for format version 1. They are deliberately
// expensive (tens to hundreds of milliseconds) to raise the cost of
// password guessing, and they are not stored in the container: the
// same fixed values are used for encryption and decryption, and a
// future parameter change must bump CurrentVersion.
const (
	// ArgonTime is the Argon2id iteration count
	ArgonTime = uint32(3)

	// ArgonMemory is the Argon2id memory cost in KiB (64 MiB)
	ArgonMemory = uint32(64 * 1024)

	// ArgonThreads is the Argon2id parallelism degree
	ArgonThreads = uint8(4)

	// KeySize is the derived key length in bytes, matching the cipher
	KeySize = 32
)

// DeriveKey derives the symmetric encryption key from a password and
// salt using Argon2id with the fixed version-1 parameters. The caller
// owns the returned key and must Wipe it when done.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, ArgonTime, ArgonMemory, ArgonThreads, KeySize)
}

// GenerateSalt returns a fresh random salt. Every encryption call must
// use a new salt; reuse across containers weakens the derived keys.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// GenerateNonce returns a fresh random nonce. A (key, nonce) pair must
// never be reused; the 24-byte XChaCha20 nonce makes random generation
// safe.
func GenerateNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return nonce, nil
}

// Wipe overwrites a secret buffer with zeros. The KeepAlive stops the
// compiler from eliding the writes.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
