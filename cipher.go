package sealcrypt

import (
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Seal encrypts plaintext with XChaCha20-Poly1305 under the given key
// and nonce, returning the ciphertext and the detached authentication
// tag. The ciphertext has exactly the length of the plaintext; there
// is no implicit padding.
func Seal(plaintext, key, nonce []byte) (ciphertext, tag []byte, err error) {
	if err := ValidateKey(key, chacha20poly1305.KeySize); err != nil {
		return nil, nil, err
	}
	if err := ValidateNonce(nonce); err != nil {
		return nil, nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	ciphertext = sealed[:len(sealed)-TagSize]
	tag = sealed[len(sealed)-TagSize:]
	return ciphertext, tag, nil
}

// Open authenticates and decrypts a ciphertext/tag pair. Every
// verification failure returns ErrAuthFailed: a wrong key and
// corrupted bytes are deliberately indistinguishable so the caller
// cannot be used as an oracle for which one occurred.
func Open(ciphertext, tag, key, nonce []byte) ([]byte, error) {
	if err := ValidateKey(key, chacha20poly1305.KeySize); err != nil {
		return nil, err
	}
	if err := ValidateNonce(nonce); err != nil {
		return nil, err
	}
	if err := ValidateBuffer(tag, "tag", TagSize); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
