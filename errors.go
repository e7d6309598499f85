package fb2epub

import (
	"errors"

	"github.com/alnah/go-fb2epub/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyInput = errors.New("FB2 content cannot be empty")

	// Document errors, fatal for the whole run.
	ErrStructure = pipeline.ErrStructure
	ErrLexical   = pipeline.ErrLexical
	ErrAssembly  = pipeline.ErrAssembly

	// Option and input validation errors.
	ErrInvalidConfig = pipeline.ErrInvalidConfig
	ErrInvalidDate   = errors.New("invalid publication date")

	// Colophon errors.
	ErrColophon = pipeline.ErrColophon

	// Packaging errors.
	ErrPackage = errors.New("EPUB packaging failed")

	// Asset loading errors.
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidAssetPath      = errors.New("invalid asset path")
	ErrInvalidFont           = errors.New("invalid font file")
)

// IsDocumentError reports whether err comes from a malformed or
// inconsistent source document rather than from options or I/O.
func IsDocumentError(err error) bool {
	return errors.Is(err, ErrStructure) ||
		errors.Is(err, ErrLexical) ||
		errors.Is(err, ErrAssembly)
}
