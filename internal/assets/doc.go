// Package assets provides stylesheets, EPUB package templates and fonts for
// book generation. Assets can be loaded from embedded files or a custom
// directory.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (default, sans)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the converter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset is
// not found there, so a directory may override a single file.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # book stylesheet
//	└── templates/
//	    └── {name}/
//	        ├── content.opf      # package document template
//	        └── toc.ncx          # navigation template
//
// Fonts are not looked up by name: LoadFont reads an explicit file path.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
