package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Style != "" || cfg.Split.MaxUnitSize != 0 || cfg.Split.ElementCost != nil {
		t.Errorf("DefaultConfig() = %+v, want zero values", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{name: "empty", value: "", max: 5},
		{name: "at limit", value: "abcde", max: 5},
		{name: "over limit", value: "abcdef", max: 5, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("field", tt.value, tt.max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateFieldLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestConfig_Validate - Field checks
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "full valid config",
			cfg: Config{
				Style:         "sans",
				Split:         SplitConfig{MaxUnitSize: 50_000, ElementCost: intPtr(0)},
				TOC:           TOCConfig{Policy: "Fragments"},
				Links:         LinksConfig{Fallback: "deadlink", AllowBroken: true},
				Fonts:         FontsConfig{Embed: []string{"a.ttf"}, Mangle: []string{"b.otf"}},
				Transliterate: TransliterateConfig{Enabled: true},
				Metadata:      MetadataConfig{Date: "auto:year", Language: "ru"},
				Colophon:      ColophonConfig{File: "colophon.md", Title: "Colophon", CodeStyle: "monokai"},
			},
		},
		{
			name:    "negative max unit size",
			cfg:     Config{Split: SplitConfig{MaxUnitSize: -1}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "max unit size over limit",
			cfg:     Config{Split: SplitConfig{MaxUnitSize: MaxUnitSizeLimit + 1}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "negative element cost",
			cfg:     Config{Split: SplitConfig{ElementCost: intPtr(-3)}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown toc policy",
			cfg:     Config{TOC: TOCConfig{Policy: "chapters"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unknown fallback",
			cfg:     Config{Links: LinksConfig{Fallback: "remove"}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "too many fonts",
			cfg:     Config{Fonts: FontsConfig{Embed: make([]string, MaxFontCount), Mangle: []string{"x.ttf"}}},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "date too long",
			cfg:     Config{Metadata: MetadataConfig{Date: strings.Repeat("Y", MaxDateLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "colophon title too long",
			cfg:     Config{Colophon: ColophonConfig{Title: strings.Repeat("x", MaxTitleLength+1)}},
			wantErr: ErrFieldTooLong,
		},
		{
			name:    "mangled font path too long",
			cfg:     Config{Fonts: FontsConfig{Mangle: []string{strings.Repeat("x", MaxPathLength+1)}}},
			wantErr: ErrFieldTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig - File loading
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr error
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "all sections",
			content: `
style: sans
split:
  maxUnitSize: 40000
  elementCost: 0
toc:
  policy: fragments
links:
  fallback: deadlink
  allowBroken: true
fonts:
  embed: [serif.ttf]
  mangle: [serif-bold.otf]
transliterate:
  enabled: true
  foldDiacritics: true
metadata:
  date: auto
colophon:
  file: notes.md
  title: About
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Style != "sans" || cfg.Split.MaxUnitSize != 40000 {
					t.Errorf("Style = %q, MaxUnitSize = %d", cfg.Style, cfg.Split.MaxUnitSize)
				}
				if cfg.Split.ElementCost == nil || *cfg.Split.ElementCost != 0 {
					t.Errorf("ElementCost = %v, want explicit 0", cfg.Split.ElementCost)
				}
				if cfg.TOC.Policy != "fragments" || cfg.Links.Fallback != "deadlink" || !cfg.Links.AllowBroken {
					t.Errorf("TOC = %+v, Links = %+v", cfg.TOC, cfg.Links)
				}
				if len(cfg.Fonts.Embed) != 1 || len(cfg.Fonts.Mangle) != 1 {
					t.Errorf("Fonts = %+v", cfg.Fonts)
				}
				if !cfg.Transliterate.Enabled || !cfg.Transliterate.FoldDiacritics {
					t.Errorf("Transliterate = %+v", cfg.Transliterate)
				}
				if cfg.Metadata.Date != "auto" || cfg.Colophon.File != "notes.md" || cfg.Colophon.Title != "About" {
					t.Errorf("Metadata = %+v, Colophon = %+v", cfg.Metadata, cfg.Colophon)
				}
			},
		},
		{
			name:    "unknown field",
			content: "style: sans\npage:\n  size: a4\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "invalid yaml",
			content: "style: [unclosed\n",
			wantErr: ErrConfigParse,
		},
		{
			name:    "invalid value",
			content: "toc:\n  policy: chapters\n",
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, t.TempDir(), "book.yaml", tt.content)
			cfg, err := LoadConfig(path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LoadConfig() error = %v, want %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
		t.Errorf("LoadConfig(\"\") error = %v, want ErrEmptyConfigName", err)
	}

	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := LoadConfig(missing); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("LoadConfig(missing) error = %v, want ErrConfigNotFound", err)
	}
}

// Changes the working directory, so not parallel.
func TestLoadConfig_ByName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "novel.yml", "style: sans\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("novel")
	if err != nil {
		t.Fatalf("LoadConfig(novel) error = %v", err)
	}
	if cfg.Style != "sans" {
		t.Errorf("Style = %q, want sans", cfg.Style)
	}

	_, err = LoadConfig("nonexistent-config-xyz")
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("LoadConfig(nonexistent) error = %v, want ErrConfigNotFound", err)
	}
	if !strings.Contains(err.Error(), "nonexistent-config-xyz.yaml") {
		t.Errorf("error %q does not list tried paths", err)
	}
}

func TestSearchPaths(t *testing.T) {
	t.Parallel()

	paths := SearchPaths("book")
	if len(paths) < 2 || paths[0] != "book.yaml" || paths[1] != "book.yml" {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	for _, p := range paths[2:] {
		if !strings.Contains(p, "go-fb2epub") {
			t.Errorf("user path %q not under go-fb2epub", p)
		}
	}
}
