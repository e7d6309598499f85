// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-fb2epub/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-fb2epub") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output file errors.
func ForOutputDirectory() string {
	return format("check the output directory exists and is writable")
}

// ForStyleNotFound returns hints for style not found errors.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForBrokenLink returns hints for links to ids the document never defines.
func ForBrokenLink() string {
	return formatHints([]string{
		"the FB2 links to an id it never defines",
		"use --allow-broken-links to convert anyway",
	})
}

// ForMalformedDocument returns hints for structure and syntax errors.
func ForMalformedDocument() string {
	return format("validate the file against the FictionBook 2 schema or re-save it in an FB2 editor")
}

// ForFont returns hints for rejected font files.
func ForFont() string {
	return format("supported formats: TTF, OTF, WOFF, WOFF2")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
