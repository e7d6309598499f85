package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemLoader loads assets from a directory on disk with the same
// layout as the embedded tree. Symlinks may point anywhere inside the
// directory but never out of it.
type FilesystemLoader struct {
	tree
	dir string // absolute, symlinks resolved
}

// NewFilesystemLoader creates a FilesystemLoader for basePath.
// Returns ErrInvalidBasePath unless basePath is a readable directory.
func NewFilesystemLoader(basePath string) (*FilesystemLoader, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	dir, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, dir)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, dir)
	}
	if _, err := os.ReadDir(dir); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	l := &FilesystemLoader{dir: dir}
	l.tree = tree{fsys: os.DirFS(dir), contain: l.within}
	return l, nil
}

// within rejects rel when its resolved location is outside the directory.
// Missing files pass: they fail as not found on read.
func (l *FilesystemLoader) within(rel string) error {
	real, err := filepath.EvalSymlinks(filepath.Join(l.dir, filepath.FromSlash(rel)))
	if err != nil {
		return nil
	}
	inside, err := filepath.Rel(l.dir, real)
	if err != nil || !filepath.IsLocal(inside) {
		return fmt.Errorf("%w: %s resolves outside %s", ErrPathTraversal, rel, l.dir)
	}
	return nil
}

// Compile-time interface check.
var _ AssetLoader = (*FilesystemLoader)(nil)
