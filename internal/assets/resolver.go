package assets

import "errors"

// AssetResolver combines custom and embedded loaders. With a custom loader
// configured, it tries custom first and falls back to embedded when the
// asset is not found there.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver. An empty customBasePath uses
// embedded assets only. Returns an error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// LoadStyle loads a stylesheet, custom first.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return withFallback(r, func(l AssetLoader) (string, error) {
		return l.LoadStyle(name)
	})
}

// LoadTemplateSet loads a template set, custom first.
func (r *AssetResolver) LoadTemplateSet(name string) (*TemplateSet, error) {
	return withFallback(r, func(l AssetLoader) (*TemplateSet, error) {
		return l.LoadTemplateSet(name)
	})
}

// withFallback runs load against the custom loader, then the embedded one.
// Only not-found errors fall through; validation and I/O errors do not.
func withFallback[T any](r *AssetResolver, load func(AssetLoader) (T, error)) (T, error) {
	if r.custom == nil {
		return load(r.embedded)
	}

	v, err := load(r.custom)
	if err == nil || !isNotFoundError(err) {
		return v, err
	}

	return load(r.embedded)
}

// isNotFoundError checks if the error indicates the asset was not found.
func isNotFoundError(err error) bool {
	return errors.Is(err, ErrStyleNotFound) ||
		errors.Is(err, ErrTemplateSetNotFound)
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
