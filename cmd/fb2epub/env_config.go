package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alnah/go-fb2epub/internal/config"
)

// envPrefix starts every recognized environment variable.
const envPrefix = "FB2EPUB_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	// Tier 1 - Essential
	ConfigPath string // FB2EPUB_CONFIG: config file name or path
	Style      string // FB2EPUB_STYLE: style name or path
	OutputDir  string // FB2EPUB_OUTPUT_DIR: default output directory

	// Tier 2 - Conversion
	MaxUnitSize   int    // FB2EPUB_MAX_UNIT_SIZE: split ceiling
	TOCPolicy     string // FB2EPUB_TOC: files or fragments
	Fallback      string // FB2EPUB_FALLBACK: drop or deadlink
	AssetPath     string // FB2EPUB_ASSET_PATH: custom asset directory
	Transliterate bool   // FB2EPUB_TRANSLITERATE: Cyrillic to Latin

	// Tier 3 - Metadata and logging
	Date      string // FB2EPUB_DATE: publication date override
	Language  string // FB2EPUB_LANGUAGE: fallback language
	LogFormat string // FB2EPUB_LOG_FORMAT: text or json
}

// knownEnvVars lists valid FB2EPUB_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	// Tier 1 - Essential
	"FB2EPUB_CONFIG":     true,
	"FB2EPUB_STYLE":      true,
	"FB2EPUB_OUTPUT_DIR": true,
	// Tier 2 - Conversion
	"FB2EPUB_MAX_UNIT_SIZE": true,
	"FB2EPUB_TOC":           true,
	"FB2EPUB_FALLBACK":      true,
	"FB2EPUB_ASSET_PATH":    true,
	"FB2EPUB_TRANSLITERATE": true,
	// Tier 3 - Metadata and logging
	"FB2EPUB_DATE":       true,
	"FB2EPUB_LANGUAGE":   true,
	"FB2EPUB_LOG_FORMAT": true,
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and booleans are ignored.
func loadEnvConfig(env *Environment) *envConfig {
	cfg := &envConfig{
		// Tier 1
		ConfigPath: env.getenv("FB2EPUB_CONFIG"),
		Style:      env.getenv("FB2EPUB_STYLE"),
		OutputDir:  env.getenv("FB2EPUB_OUTPUT_DIR"),
		// Tier 2
		TOCPolicy: env.getenv("FB2EPUB_TOC"),
		Fallback:  env.getenv("FB2EPUB_FALLBACK"),
		AssetPath: env.getenv("FB2EPUB_ASSET_PATH"),
		// Tier 3
		Date:      env.getenv("FB2EPUB_DATE"),
		Language:  env.getenv("FB2EPUB_LANGUAGE"),
		LogFormat: env.getenv("FB2EPUB_LOG_FORMAT"),
	}

	if size := env.getenv("FB2EPUB_MAX_UNIT_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.MaxUnitSize = n
		}
	}
	if v := env.getenv("FB2EPUB_TRANSLITERATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Transliterate = b
		}
	}

	return cfg
}

// warnUnknownEnvVars prints warnings for unrecognized FB2EPUB_* variables.
// Helps catch typos like FB2EPUB_STLYE instead of FB2EPUB_STYLE.
func warnUnknownEnvVars(env *Environment, w io.Writer) {
	for _, kv := range env.Environ() {
		if strings.HasPrefix(kv, envPrefix) {
			name, _, _ := strings.Cut(kv, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Only sets values if the env var is set AND the config value is empty/zero.
// This ensures: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	// Tier 1
	if env.Style != "" && cfg.Style == "" {
		cfg.Style = env.Style
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}

	// Tier 2
	if env.MaxUnitSize > 0 && cfg.Split.MaxUnitSize == 0 {
		cfg.Split.MaxUnitSize = env.MaxUnitSize
	}
	if env.TOCPolicy != "" && cfg.TOC.Policy == "" {
		cfg.TOC.Policy = env.TOCPolicy
	}
	if env.Fallback != "" && cfg.Links.Fallback == "" {
		cfg.Links.Fallback = env.Fallback
	}
	if env.AssetPath != "" && cfg.Assets.BasePath == "" {
		cfg.Assets.BasePath = env.AssetPath
	}
	if env.Transliterate {
		cfg.Transliterate.Enabled = true
	}

	// Tier 3
	if env.Date != "" && cfg.Metadata.Date == "" {
		cfg.Metadata.Date = env.Date
	}
	if env.Language != "" && cfg.Metadata.Language == "" {
		cfg.Metadata.Language = env.Language
	}
}
