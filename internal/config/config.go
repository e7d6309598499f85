package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-fb2epub/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxNameLength     = 100  // style and code style names
	MaxDateLength     = 30   // "auto:YYYY-MM-DD" or "1869-01-01"
	MaxTitleLength    = 200  // colophon title
	MaxLanguageLength = 35   // BCP 47 tag upper bound
	MaxFontCount      = 64   // fonts + mangled fonts
)

// MaxUnitSizeLimit bounds split.maxUnitSize to keep files well under what
// reading systems accept.
const MaxUnitSizeLimit = 10_000_000

// Config holds all configuration for book conversion.
type Config struct {
	Output        OutputConfig        `yaml:"output"`
	Style         string              `yaml:"style"` // name or path, empty = "default"
	Split         SplitConfig         `yaml:"split"`
	TOC           TOCConfig           `yaml:"toc"`
	Links         LinksConfig         `yaml:"links"`
	Assets        AssetsConfig        `yaml:"assets"`
	Fonts         FontsConfig         `yaml:"fonts"`
	Transliterate TransliterateConfig `yaml:"transliterate"`
	Metadata      MetadataConfig      `yaml:"metadata"`
	Colophon      ColophonConfig      `yaml:"colophon"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source
}

// SplitConfig controls how the book is divided into files.
type SplitConfig struct {
	MaxUnitSize int  `yaml:"maxUnitSize"` // 0 = library default
	ElementCost *int `yaml:"elementCost"` // nil = library default, 0 allowed
}

// TOCConfig defines navigation options.
type TOCConfig struct {
	Policy string `yaml:"policy"` // "files" (default) or "fragments"
}

// LinksConfig defines the handling of unresolved references.
type LinksConfig struct {
	Fallback    string `yaml:"fallback"`    // "drop" (default) or "deadlink"
	AllowBroken bool   `yaml:"allowBroken"` // undefined ids warn instead of failing
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// FontsConfig lists font files to embed.
type FontsConfig struct {
	Embed  []string `yaml:"embed"`  // copied verbatim
	Mangle []string `yaml:"mangle"` // obfuscated with the IDPF algorithm
}

// TransliterateConfig enables Cyrillic to Latin transliteration of text.
type TransliterateConfig struct {
	Enabled        bool `yaml:"enabled"`
	FoldDiacritics bool `yaml:"foldDiacritics"`
}

// MetadataConfig overrides publication metadata.
type MetadataConfig struct {
	Date     string `yaml:"date"`     // literal, "auto" or "auto:FORMAT"
	Language string `yaml:"language"` // used when the book declares none
}

// ColophonConfig defines the optional Markdown page appended to the book.
type ColophonConfig struct {
	File      string `yaml:"file"`      // Markdown source path
	Title     string `yaml:"title"`     // TOC entry, empty keeps it out of the TOC
	CodeStyle string `yaml:"codeStyle"` // chroma style for code blocks
}

// Validate checks field values and lengths. Called automatically by
// LoadConfig, but available for consumers who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("style", c.Style, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}

	if c.Split.MaxUnitSize < 0 || c.Split.MaxUnitSize > MaxUnitSizeLimit {
		return fmt.Errorf("%w: split.maxUnitSize must be between 0 and %d, got %d", ErrInvalidValue, MaxUnitSizeLimit, c.Split.MaxUnitSize)
	}
	if c.Split.ElementCost != nil && *c.Split.ElementCost < 0 {
		return fmt.Errorf("%w: split.elementCost cannot be negative, got %d", ErrInvalidValue, *c.Split.ElementCost)
	}

	switch strings.ToLower(c.TOC.Policy) {
	case "", "files", "fragments":
	default:
		return fmt.Errorf("%w: toc.policy %q (must be files or fragments)", ErrInvalidValue, c.TOC.Policy)
	}
	switch strings.ToLower(c.Links.Fallback) {
	case "", "drop", "deadlink", "dead-link":
	default:
		return fmt.Errorf("%w: links.fallback %q (must be drop or deadlink)", ErrInvalidValue, c.Links.Fallback)
	}

	if n := len(c.Fonts.Embed) + len(c.Fonts.Mangle); n > MaxFontCount {
		return fmt.Errorf("%w: %d fonts (max %d)", ErrInvalidValue, n, MaxFontCount)
	}
	for i, p := range c.Fonts.Embed {
		if err := validateFieldLength(fmt.Sprintf("fonts.embed[%d]", i), p, MaxPathLength); err != nil {
			return err
		}
	}
	for i, p := range c.Fonts.Mangle {
		if err := validateFieldLength(fmt.Sprintf("fonts.mangle[%d]", i), p, MaxPathLength); err != nil {
			return err
		}
	}

	if err := validateFieldLength("metadata.date", c.Metadata.Date, MaxDateLength); err != nil {
		return err
	}
	if err := validateFieldLength("metadata.language", c.Metadata.Language, MaxLanguageLength); err != nil {
		return err
	}

	if err := validateFieldLength("colophon.file", c.Colophon.File, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("colophon.title", c.Colophon.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("colophon.codeStyle", c.Colophon.CodeStyle, MaxNameLength); err != nil {
		return err
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a neutral configuration: library defaults throughout.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// SearchPaths lists the files tried for a config name, in order:
// ./name.yaml, ./name.yml, then the same under ~/.config/go-fb2epub/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, "go-fb2epub", name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
