package assets

import "embed"

//go:embed styles templates
var embedded embed.FS

// EmbeddedLoader loads the stylesheets and template sets compiled into the
// binary.
type EmbeddedLoader struct {
	tree
}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{tree{fsys: embedded}}
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
