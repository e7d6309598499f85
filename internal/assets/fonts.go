package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fontExtensions lists the font formats reading systems accept.
var fontExtensions = map[string]bool{
	".ttf":   true,
	".otf":   true,
	".woff":  true,
	".woff2": true,
}

// Font is a font file to embed in the book.
type Font struct {
	Name string // base file name inside the package fonts directory
	Data []byte
}

// LoadFont reads a font file from an explicit path.
// Returns ErrInvalidFont for unsupported extensions or empty files and
// ErrAssetRead when the file cannot be read.
func LoadFont(path string) (Font, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	if !fontExtensions[ext] {
		return Font{}, fmt.Errorf("%w: %q (want .ttf, .otf, .woff or .woff2)", ErrInvalidFont, name)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path supplied by the user
	if err != nil {
		return Font{}, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if len(data) == 0 {
		return Font{}, fmt.Errorf("%w: %q is empty", ErrInvalidFont, name)
	}

	return Font{Name: name, Data: data}, nil
}
