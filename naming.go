package sealcrypt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output naming. Encryption appends the configured suffix to the
// input's base name; decryption strips it. When the target already
// exists, a numeric disambiguator is inserted before the original
// extension (name_1.ext, name_2.ext, ...) until a free name is found.

// encryptedOutputPath returns the path for the encrypted artifact of
// inputPath inside outputDir.
func (e *Engine) encryptedOutputPath(outputDir, inputPath string) string {
	base := filepath.Base(filepath.Clean(inputPath))
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = insertCounter(base, i)
		}
		candidate := filepath.Join(outputDir, name+e.config.EncryptedSuffix)
		if !pathExists(candidate) {
			return candidate
		}
	}
}

// decryptedOutputPath returns the path for the restored file or folder
// of the container at inputPath inside outputDir.
func (e *Engine) decryptedOutputPath(outputDir, inputPath string) string {
	base := filepath.Base(filepath.Clean(inputPath))
	restored := strings.TrimSuffix(base, e.config.EncryptedSuffix)
	if restored == "" {
		restored = "restored"
	}
	for i := 0; ; i++ {
		name := restored
		if i > 0 {
			name = insertCounter(restored, i)
		}
		candidate := filepath.Join(outputDir, name)
		if !pathExists(candidate) {
			return candidate
		}
	}
}

// insertCounter places the disambiguator before the extension:
// report.pdf -> report_1.pdf, photos -> photos_1.
func insertCounter(name string, n int) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_%d%s", stem, n, ext)
}

// pathExists reports whether any file or directory occupies the path.
// Lstat is used so a dangling symlink still counts as occupied.
func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
