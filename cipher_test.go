package sealcrypt

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"
)

func testKeyNonce(t *testing.T) (key, nonce []byte) {
	t.Helper()
	key = make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		t.Fatal(err)
	}
	return key, nonce
}

func TestSealOpen_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello")},
		{"binary", func() []byte {
			b := make([]byte, 256)
			for i := range b {
				b[i] = byte(i)
			}
			return b
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, nonce := testKeyNonce(t)

			ciphertext, tag, err := Seal(tt.plaintext, key, nonce)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if len(ciphertext) != len(tt.plaintext) {
				t.Errorf("ciphertext length = %d, want %d", len(ciphertext), len(tt.plaintext))
			}
			if len(tag) != TagSize {
				t.Errorf("tag length = %d, want %d", len(tag), TagSize)
			}

			got, err := Open(ciphertext, tag, key, nonce)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if !bytes.Equal(got, tt.plaintext) {
				t.Errorf("round trip mismatch")
			}
		})
	}
}

func TestOpen_WrongKey(t *testing.T) {
	key, nonce := testKeyNonce(t)
	ciphertext, tag, err := Seal([]byte("secret payload"), key, nonce)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	wrongKey := make([]byte, KeySize)
	copy(wrongKey, key)
	wrongKey[0] ^= 0x01

	if _, err := Open(ciphertext, tag, wrongKey, nonce); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("wrong key: error = %v, want ErrAuthFailed", err)
	}
}

func TestOpen_Tampered(t *testing.T) {
	key, nonce := testKeyNonce(t)
	ciphertext, tag, err := Seal([]byte("secret payload"), key, nonce)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	// Every kind of corruption must surface as the same error.
	flipped := func(b []byte, i int) []byte {
		out := append([]byte(nil), b...)
		out[i] ^= 0xFF
		return out
	}

	if _, err := Open(flipped(ciphertext, 3), tag, key, nonce); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("tampered ciphertext: error = %v, want ErrAuthFailed", err)
	}
	if _, err := Open(ciphertext, flipped(tag, 0), key, nonce); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("tampered tag: error = %v, want ErrAuthFailed", err)
	}
	if _, err := Open(ciphertext, tag, key, flipped(nonce, 10)); !errors.Is(err, ErrAuthFailed) {
		t.Errorf("wrong nonce: error = %v, want ErrAuthFailed", err)
	}
}

func TestSealOpen_ParameterValidation(t *testing.T) {
	key, nonce := testKeyNonce(t)

	if _, _, err := Seal(nil, key[:KeySize-1], nonce); !IsValidationError(err) {
		t.Errorf("short key: error = %v, want validation error", err)
	}
	if _, _, err := Seal(nil, key, nonce[:NonceSize-1]); !IsValidationError(err) {
		t.Errorf("short nonce: error = %v, want validation error", err)
	}
	if _, err := Open(nil, nil, key, nonce); !IsValidationError(err) {
		t.Errorf("nil tag: error = %v, want validation error", err)
	}
}
