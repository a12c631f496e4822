package sealcrypt

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Archiver packs a directory tree into a single byte buffer and
// restores it, with size accounting and path-safety checks in both
// directions.
type Archiver struct {
	maxBytes int64
	maxFiles int
	logger   *logrus.Logger
}

// NewArchiver creates an archiver bounded by a cumulative byte limit
// and an entry-count limit.
func NewArchiver(maxBytes int64, maxFiles int, logger *logrus.Logger) *Archiver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Archiver{
		maxBytes: maxBytes,
		maxFiles: maxFiles,
		logger:   logger,
	}
}

// UnpackResult contains information about an extraction
type UnpackResult struct {
	ExtractedFiles []string // Relative paths of files restored
	FileCount      int      // Number of files restored
	TotalBytes     int64    // Plaintext bytes written
	SkippedEntries int      // Entries rejected by path-safety checks
}

// Pack walks the directory tree rooted at dir and produces a single
// archive preserving relative paths and nesting. The running total of
// source bytes is checked against the limit before each file is read,
// so an oversized tree fails before it is fully enumerated. Entries
// whose relative path is absolute or contains a parent-traversal
// segment are skipped. Packing a tree with no regular files returns
// ErrEmptyInput.
func (a *Archiver) Pack(dir string) ([]byte, error) {
	root := filepath.Clean(dir)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	var total int64
	files := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)

		if isUnsafeEntryName(name) {
			a.logger.WithFields(logrus.Fields{
				"event": "archive_entry_skipped",
				"name":  name,
			}).Warn("skipping unsafe path while packing")
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			// Explicit directory entries preserve empty directories.
			_, err := zw.Create(name + "/")
			return err
		}

		if !d.Type().IsRegular() {
			// Symlinks and special files are not archived.
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		total += info.Size()
		if total > a.maxBytes {
			return NewSizeLimitError(a.maxBytes, total)
		}

		files++
		if files > a.maxFiles {
			return ErrTooManyEntries
		}

		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, src)
		src.Close()
		return err
	})
	if err != nil {
		return nil, err
	}

	if files == 0 {
		return nil, ErrEmptyInput
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack restores an archive into dest. The declared uncompressed
// sizes of all entries are summed before any byte is extracted and the
// whole operation fails with a *SizeLimitError if they exceed the
// limit, so a decompression bomb is rejected before allocation.
// Entries with absolute or parent-traversal names are skipped, not
// fatal; after each file or directory is created its canonical path is
// verified to still be a descendant of the canonical destination, and
// anything that escaped through a symlink is deleted.
func (a *Archiver) Unpack(data []byte, dest string) (*UnpackResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if len(zr.File) > a.maxFiles {
		return nil, ErrTooManyEntries
	}

	// Decompression-bomb defense: reject on declared sizes before
	// extracting anything. Declared sizes are attacker-controlled, so
	// the sum is kept in uint64 and each entry is bounded on its own;
	// a forged size cannot wrap the running total past the limit.
	var declared uint64
	limit := uint64(a.maxBytes)
	for _, f := range zr.File {
		size := f.UncompressedSize64
		if size > limit || declared+size > limit {
			requested := int64(math.MaxInt64)
			if size <= limit {
				requested = int64(declared + size)
			}
			return nil, NewSizeLimitError(a.maxBytes, requested)
		}
		declared += size
	}

	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}
	root, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}

	result := &UnpackResult{}

	for _, f := range zr.File {
		name := f.Name
		if isUnsafeEntryName(name) {
			result.SkippedEntries++
			a.logger.WithFields(logrus.Fields{
				"event": "archive_entry_rejected",
				"name":  name,
			}).Warn("skipping unsafe path while extracting")
			continue
		}

		target := filepath.Join(root, filepath.FromSlash(name))

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return result, err
			}
			if !containedIn(root, target) {
				os.Remove(target)
				result.SkippedEntries++
				a.logger.WithFields(logrus.Fields{
					"event": "archive_entry_escaped",
					"name":  name,
				}).Warn("removed directory that escaped the destination root")
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return result, err
		}

		written, err := a.extractFile(f, target)
		if err != nil {
			return result, err
		}

		// A symlink planted inside the destination can redirect the
		// write outside it even though the entry name looked safe. The
		// canonical check catches what the string check cannot.
		if !containedIn(root, target) {
			os.Remove(target)
			result.SkippedEntries++
			a.logger.WithFields(logrus.Fields{
				"event": "archive_entry_escaped",
				"name":  name,
			}).Warn("removed file that escaped the destination root")
			continue
		}

		result.ExtractedFiles = append(result.ExtractedFiles, name)
		result.FileCount++
		result.TotalBytes += written
	}

	return result, nil
}

// extractFile writes one archive entry to target with sanitized
// permissions, bounding the copy by the entry's declared size.
func (a *Archiver) extractFile(f *zip.File, target string) (int64, error) {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		out.Close()
		os.Remove(target)
		return 0, err
	}

	declared := int64(f.UncompressedSize64)
	written, err := io.Copy(out, io.LimitReader(rc, declared+1))
	rc.Close()
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return 0, err
	}
	if written > declared {
		// The entry lied about its size; the pre-scan cannot be trusted.
		os.Remove(target)
		return 0, fmt.Errorf("archive entry %q exceeds its declared size", f.Name)
	}
	return written, nil
}

// isUnsafeEntryName reports whether an archive entry name could place
// content outside the extraction root by string manipulation alone.
func isUnsafeEntryName(name string) bool {
	if name == "" {
		return true
	}
	if strings.HasPrefix(name, "/") || filepath.IsAbs(name) {
		return true
	}
	if filepath.VolumeName(name) != "" {
		return true
	}
	// Archives written on Windows may use backslash separators; treat
	// both as separators when looking for traversal segments.
	for _, part := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return true
		}
	}
	return false
}

// containedIn reports whether path canonically resolves to a
// descendant of root. root must already be canonical.
func containedIn(root, path string) bool {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
