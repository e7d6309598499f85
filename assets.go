package fb2epub

import (
	"errors"

	"github.com/alnah/go-fb2epub/internal/assets"
)

// Asset name constants for built-in styles and templates.
const (
	// DefaultStyle is the name of the built-in stylesheet.
	DefaultStyle = "default"

	// DefaultTemplateSet is the name of the built-in package template set.
	DefaultTemplateSet = "default"
)

// AssetLoader defines the contract for loading stylesheets and package
// templates. Implementations may load from filesystem, embedded assets,
// a database, etc.
//
// The library provides NewAssetLoader() for filesystem-based loading with
// fallback to embedded defaults. Implement this interface for custom backends.
type AssetLoader interface {
	// LoadStyle loads a CSS stylesheet by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the content.opf and toc.ncx templates by name.
	// Returns ErrTemplateSetNotFound if the template set doesn't exist.
	// Returns ErrIncompleteTemplateSet if required templates are missing.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// TemplateSet holds the text/template sources for the package document and
// the navigation map.
type TemplateSet struct {
	Name    string // Identifier (name or path)
	Package string // content.opf template
	NCX     string // toc.ncx template
}

// NewTemplateSet creates a TemplateSet from template sources.
func NewTemplateSet(name, pkg, ncx string) *TemplateSet {
	return &TemplateSet{
		Name:    name,
		Package: pkg,
		NCX:     ncx,
	}
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory should contain:
//   - styles/{name}.css for stylesheets
//   - templates/{name}/content.opf and toc.ncx for template sets
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps internal AssetResolver to return public types.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplateSet(name string) (*TemplateSet, error) {
	ts, err := a.resolver.LoadTemplateSet(name)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return NewTemplateSet(ts.Name, ts.Package, ts.NCX), nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateSetNotFound):
		return wrapError(ErrTemplateSetNotFound, err)
	case errors.Is(err, assets.ErrIncompleteTemplateSet):
		return wrapError(ErrIncompleteTemplateSet, err)
	case errors.Is(err, assets.ErrInvalidBasePath), errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrStyleNotFound, err) // Invalid name means not found
	case errors.Is(err, assets.ErrInvalidFont):
		return wrapError(ErrInvalidFont, err)
	default:
		return err
	}
}

// wrapError creates a new error that wraps the original with a public sentinel.
// The resulting error preserves the original message via Error() and supports
// errors.Is() matching against the public sentinel via Unwrap().
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}

// internalLoader adapts a public AssetLoader to the internal interface.
type internalLoader struct {
	pub AssetLoader
}

func (a *internalLoader) LoadStyle(name string) (string, error) {
	return a.pub.LoadStyle(name)
}

func (a *internalLoader) LoadTemplateSet(name string) (*assets.TemplateSet, error) {
	ts, err := a.pub.LoadTemplateSet(name)
	if err != nil {
		return nil, err
	}
	return &assets.TemplateSet{Name: ts.Name, Package: ts.Package, NCX: ts.NCX}, nil
}

// Compile-time interface checks.
var (
	_ AssetLoader        = (*assetLoaderAdapter)(nil)
	_ assets.AssetLoader = (*internalLoader)(nil)
)
