package sealcrypt

import (
	"bytes"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt := bytes.Repeat([]byte{0x42}, SaltSize)

	k1 := DeriveKey(password, salt)
	k2 := DeriveKey(password, salt)

	if len(k1) != KeySize {
		t.Fatalf("key length = %d, want %d", len(k1), KeySize)
	}
	if !bytes.Equal(k1, k2) {
		t.Errorf("same password and salt produced different keys")
	}
}

func TestDeriveKey_SaltChangesKey(t *testing.T) {
	password := []byte("correct horse battery staple")
	salt1 := bytes.Repeat([]byte{0x01}, SaltSize)
	salt2 := bytes.Repeat([]byte{0x02}, SaltSize)

	if bytes.Equal(DeriveKey(password, salt1), DeriveKey(password, salt2)) {
		t.Errorf("different salts produced the same key")
	}
}

func TestGenerateSalt(t *testing.T) {
	s1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	s2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}
	if len(s1) != SaltSize {
		t.Errorf("salt length = %d, want %d", len(s1), SaltSize)
	}
	if bytes.Equal(s1, s2) {
		t.Errorf("two generated salts are identical")
	}
}

func TestGenerateNonce(t *testing.T) {
	n1, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce failed: %v", err)
	}
	n2, err := GenerateNonce()
	if err != nil {
		t.Fatalf("GenerateNonce failed: %v", err)
	}
	if len(n1) != NonceSize {
		t.Errorf("nonce length = %d, want %d", len(n1), NonceSize)
	}
	if bytes.Equal(n1, n2) {
		t.Errorf("two generated nonces are identical")
	}
}

func TestWipe(t *testing.T) {
	secret := []byte("sensitive material")
	Wipe(secret)
	for i, b := range secret {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}

	// Wipe must tolerate nil and empty slices.
	Wipe(nil)
	Wipe([]byte{})
}
