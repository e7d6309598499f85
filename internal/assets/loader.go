package assets

import (
	"fmt"
	"io/fs"
	"path"
)

// Directory layout shared by the embedded assets and custom asset paths.
const (
	stylesDir    = "styles"
	templatesDir = "templates"
)

// AssetLoader defines the contract for loading stylesheets and package
// templates.
type AssetLoader interface {
	// LoadStyle loads a stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the OPF and NCX templates of a named set.
	// Returns ErrTemplateSetNotFound if the set doesn't exist and
	// ErrIncompleteTemplateSet if one of its files is missing.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// tree loads assets from a file system laid out as
// styles/<name>.css and templates/<name>/{content.opf,toc.ncx}.
type tree struct {
	fsys    fs.FS
	contain func(rel string) error // nil when fsys cannot reach outside itself
}

// LoadStyle reads styles/<name>.css.
func (t tree) LoadStyle(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	rel := path.Join(stylesDir, name+".css")
	if err := t.check(rel); err != nil {
		return "", err
	}

	content, err := fs.ReadFile(t.fsys, rel)
	switch {
	case isNotExist(err):
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return string(content), nil
}

// LoadTemplateSet reads both files of templates/<name>/.
func (t tree) LoadTemplateSet(name string) (*TemplateSet, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}
	dir := path.Join(templatesDir, name)
	if err := t.check(dir); err != nil {
		return nil, err
	}
	return readTemplateSet(t.fsys, dir, name)
}

func (t tree) check(rel string) error {
	if t.contain == nil {
		return nil
	}
	return t.contain(rel)
}

// readTemplateSet reads both template files of a set from fsys.
// A set with neither file is missing; a set with one is incomplete.
func readTemplateSet(fsys fs.FS, dir, name string) (*TemplateSet, error) {
	pkg, pkgErr := fs.ReadFile(fsys, path.Join(dir, PackageTemplateFile))
	ncx, ncxErr := fs.ReadFile(fsys, path.Join(dir, NCXTemplateFile))

	switch {
	case isNotExist(pkgErr) && isNotExist(ncxErr):
		return nil, fmt.Errorf("%w: %q", ErrTemplateSetNotFound, name)
	case pkgErr != nil && !isNotExist(pkgErr):
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, PackageTemplateFile, pkgErr)
	case ncxErr != nil && !isNotExist(ncxErr):
		return nil, fmt.Errorf("%w: reading %s: %v", ErrAssetRead, NCXTemplateFile, ncxErr)
	case pkgErr != nil:
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, PackageTemplateFile)
	case ncxErr != nil:
		return nil, fmt.Errorf("%w: %q missing %s", ErrIncompleteTemplateSet, name, NCXTemplateFile)
	}

	return &TemplateSet{Name: name, Package: string(pkg), NCX: string(ncx)}, nil
}
