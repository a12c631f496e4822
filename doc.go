// Package sealcrypt implements a password-based encryption engine for
// files and folders, producing a single self-contained binary
// container per input.
//
// # Overview
//
// sealcrypt exposes two operations, Encrypt and Decrypt, through an
// Engine. Encrypting a file seals its bytes; encrypting a folder first
// packs the directory tree into a size-bounded archive. The entire
// plaintext (or packed archive) is held in memory, bounded by an
// explicit maximum; streaming of larger-than-memory data is out of
// scope.
//
// # Container Format
//
// Encrypted artifacts use a fixed layout (version 1):
//   - Magic bytes (4 bytes): "SEAL"
//   - Version (1 byte)
//   - Salt (16 bytes): random, input to key derivation
//   - Nonce (24 bytes): random, input to the cipher
//   - Ciphertext (variable): same length as the plaintext
//   - Authentication tag (16 bytes)
//
// The minimum valid container is 61 bytes. The first byte of the
// encrypted payload is a content-type discriminator (file or folder);
// it lives inside the ciphertext, not the header.
//
// # Cryptography
//
//   - Cipher: XChaCha20-Poly1305 (authenticated encryption, 24-byte
//     nonces safe for random generation)
//   - Key derivation: Argon2id with fixed published parameters
//     (64 MiB memory, 3 iterations, parallelism 4); parameters are a
//     property of the format version and are not stored per container
//
// # Basic Usage
//
//	engine, err := sealcrypt.NewEngine(nil, nil)
//	if err != nil {
//	    panic(err)
//	}
//
//	ok := engine.Encrypt("report.pdf", "/backups", []byte("password"), nil)
//	// produces /backups/report.pdf.sealed
//
//	ok = engine.Decrypt("/backups/report.pdf.sealed", "/restore", []byte("password"), nil)
//	// restores /restore/report.pdf
//
// # Security Considerations
//
// Protected against:
//   - Offline brute-force (memory-hard key derivation, per-instance
//     exponential delay after repeated failed attempts)
//   - Tampering and corruption (authenticated encryption; wrong
//     password and corrupted data are deliberately indistinguishable)
//   - Zip-slip and symlink path escapes during folder restore
//   - Decompression bombs (declared sizes are checked before any
//     extraction)
//   - Partial-write corruption (outputs are verified and renamed into
//     place, or removed)
//
// Not protected against:
//   - Memory dumps while plaintext is held in memory
//   - Compromised systems with keyloggers or malware
//   - Metadata leakage (artifact sizes, names, timestamps)
//
// Secret material (password, derived key, plaintext buffers) is
// zeroed on every exit path; the password slice passed to Encrypt and
// Decrypt is consumed and must not be reused by the caller.
package sealcrypt
