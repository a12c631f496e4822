package sealcrypt

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validContainerBytes(t *testing.T, ciphertext []byte) []byte {
	t.Helper()

	salt := bytes.Repeat([]byte{0x01}, SaltSize)
	nonce := bytes.Repeat([]byte{0x02}, NonceSize)
	tag := bytes.Repeat([]byte{0x03}, TagSize)

	data, err := EncodeContainer(salt, nonce, ciphertext, tag)
	if err != nil {
		t.Fatalf("EncodeContainer failed: %v", err)
	}
	return data
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	ciphertext := []byte("not really ciphertext, but opaque bytes")
	data := validContainerBytes(t, ciphertext)

	if len(data) != HeaderSize+len(ciphertext)+TagSize {
		t.Fatalf("encoded length = %d, want %d", len(data), HeaderSize+len(ciphertext)+TagSize)
	}
	if string(data[:4]) != MagicBytes {
		t.Errorf("magic = %q, want %q", data[:4], MagicBytes)
	}
	if data[4] != CurrentVersion {
		t.Errorf("version = %d, want %d", data[4], CurrentVersion)
	}

	c, err := DecodeContainer(data)
	if err != nil {
		t.Fatalf("DecodeContainer failed: %v", err)
	}
	if !bytes.Equal(c.Ciphertext, ciphertext) {
		t.Errorf("ciphertext mismatch")
	}
	if len(c.Salt) != SaltSize || len(c.Nonce) != NonceSize || len(c.Tag) != TagSize {
		t.Errorf("field sizes: salt=%d nonce=%d tag=%d", len(c.Salt), len(c.Nonce), len(c.Tag))
	}
}

func TestDecodeContainer_EmptyCiphertext(t *testing.T) {
	data := validContainerBytes(t, nil)

	if len(data) != MinContainerSize {
		t.Fatalf("minimum container = %d bytes, want %d", len(data), MinContainerSize)
	}

	c, err := DecodeContainer(data)
	if err != nil {
		t.Fatalf("DecodeContainer failed: %v", err)
	}
	if len(c.Ciphertext) != 0 {
		t.Errorf("ciphertext length = %d, want 0", len(c.Ciphertext))
	}
}

func TestDecodeContainer_Errors(t *testing.T) {
	valid := validContainerBytes(t, []byte("payload"))

	badMagic := append([]byte(nil), valid...)
	copy(badMagic[:4], "NOPE")

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = CurrentVersion + 1

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrInvalidHeader},
		{"below minimum", valid[:MinContainerSize-1], ErrInvalidHeader},
		{"header only", valid[:HeaderSize], ErrInvalidHeader},
		{"wrong magic", badMagic, ErrInvalidHeader},
		{"unknown version", badVersion, ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeContainer(tt.data)
			if err != tt.want {
				t.Errorf("DecodeContainer error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeContainer_Validation(t *testing.T) {
	salt := bytes.Repeat([]byte{0x01}, SaltSize)
	nonce := bytes.Repeat([]byte{0x02}, NonceSize)
	tag := bytes.Repeat([]byte{0x03}, TagSize)

	if _, err := EncodeContainer(salt[:SaltSize-1], nonce, nil, tag); !IsValidationError(err) {
		t.Errorf("short salt: error = %v, want validation error", err)
	}
	if _, err := EncodeContainer(salt, nonce[:NonceSize-2], nil, tag); !IsValidationError(err) {
		t.Errorf("short nonce: error = %v, want validation error", err)
	}
	if _, err := EncodeContainer(salt, nonce, nil, nil); !IsValidationError(err) {
		t.Errorf("nil tag: error = %v, want validation error", err)
	}
}

func TestWriteContainerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.sealed")
	data := validContainerBytes(t, []byte("payload"))

	if err := WriteContainerFile(path, data); err != nil {
		t.Fatalf("WriteContainerFile failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("persisted bytes differ from encoded bytes")
	}

	// No temporary artifacts may survive a successful write.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".partial-") {
			t.Errorf("leftover temporary file: %s", e.Name())
		}
	}
}

func TestIsEncryptedFile(t *testing.T) {
	dir := t.TempDir()

	sealed := filepath.Join(dir, "a.sealed")
	if err := os.WriteFile(sealed, validContainerBytes(t, []byte("x")), 0600); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(plain, []byte("hello world"), 0600); err != nil {
		t.Fatal(err)
	}
	short := filepath.Join(dir, "c.bin")
	if err := os.WriteFile(short, []byte{0x01}, 0600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{sealed, true},
		{plain, false},
		{short, false},
	}
	for _, tt := range tests {
		got, err := IsEncryptedFile(tt.path)
		if err != nil {
			t.Errorf("IsEncryptedFile(%s) error: %v", tt.path, err)
			continue
		}
		if got != tt.want {
			t.Errorf("IsEncryptedFile(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := IsEncryptedFile(filepath.Join(dir, "missing")); err == nil {
		t.Errorf("expected error for missing file")
	}

	// A directory opens fine but fails on read; that failure must
	// surface instead of being reported as "not a container".
	if _, err := IsEncryptedFile(dir); err == nil {
		t.Errorf("expected error when the path is a directory")
	}
}
