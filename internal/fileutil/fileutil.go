// Package fileutil provides file and path utility functions.
package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrEmptyPath      = errors.New("path cannot be empty")
	ErrExtensionEmpty = errors.New("extension cannot be empty")
	ErrInvalidExt     = errors.New("extension contains path separator or null byte")
)

// WriteAtomic writes data to path through a temporary file in the same
// directory, then renames it into place. A failed write leaves any existing
// file at path untouched and no partial output behind.
func WriteAtomic(path string, data []byte, perm os.FileMode) (err error) {
	if path == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReplaceExt returns path with its extension replaced by ext (".epub").
// Double extensions such as ".fb2.zip" are not special-cased.
func ReplaceExt(path, ext string) (string, error) {
	if ext == "" {
		return "", ErrExtensionEmpty
	}
	if strings.ContainsAny(ext, "/\\\x00") {
		return "", ErrInvalidExt
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "sans" -> false (name)
//   - "./book.css" -> true (relative path)
//   - "/usr/share/fonts/serif.ttf" -> true (absolute)
//   - "C:\fonts\serif.ttf" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
