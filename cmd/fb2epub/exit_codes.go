package main

import (
	"errors"
	"os"

	fb2epub "github.com/alnah/go-fb2epub"
	"github.com/alnah/go-fb2epub/internal/config"
	"github.com/alnah/go-fb2epub/internal/logging"
)

// Exit codes for fb2epub CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Successful conversion
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, config, or validation
	ExitIO       = 3 // File not found, permission denied
	ExitDocument = 4 // Malformed or inconsistent FB2 document
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Document errors (exit 4)
	if fb2epub.IsDocumentError(err) {
		return ExitDocument
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrReadColophon) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, logging.ErrInvalidFormat) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, fb2epub.ErrEmptyInput) ||
		errors.Is(err, fb2epub.ErrInvalidConfig) ||
		errors.Is(err, fb2epub.ErrInvalidDate) ||
		errors.Is(err, fb2epub.ErrInvalidFont) ||
		errors.Is(err, fb2epub.ErrStyleNotFound) ||
		errors.Is(err, fb2epub.ErrTemplateSetNotFound) ||
		errors.Is(err, fb2epub.ErrIncompleteTemplateSet) ||
		errors.Is(err, fb2epub.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
