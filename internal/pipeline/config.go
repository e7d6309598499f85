package pipeline

import (
	"fmt"
	"strings"
)

// DefaultMaxUnitSize keeps every generated XHTML file well below the 300 KB
// limit of common reading systems once markup overhead is added.
const DefaultMaxUnitSize = 100_000

// DefaultElementCost is the size charged for each element start.
const DefaultElementCost = 8

// TOCPolicy selects what navigation entries point to.
type TOCPolicy int

const (
	TOCFiles     TOCPolicy = iota // entries point at files
	TOCFragments                  // entries point at a fragment inside the file
)

// String returns the policy name used in configuration files.
func (p TOCPolicy) String() string {
	switch p {
	case TOCFiles:
		return "files"
	case TOCFragments:
		return "fragments"
	default:
		return fmt.Sprintf("TOCPolicy(%d)", int(p))
	}
}

// ParseTOCPolicy parses "files" or "fragments".
func ParseTOCPolicy(s string) (TOCPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "files":
		return TOCFiles, nil
	case "fragments":
		return TOCFragments, nil
	default:
		return TOCFiles, fmt.Errorf("%w: toc policy %q (must be files or fragments)", ErrInvalidConfig, s)
	}
}

// Fallback selects how a link whose target never reached a file is emitted.
type Fallback int

const (
	FallbackDrop     Fallback = iota // keep the link text, drop the anchor
	FallbackDeadLink                 // keep the anchor pointing at "#id"
)

// String returns the fallback name used in configuration files.
func (f Fallback) String() string {
	switch f {
	case FallbackDrop:
		return "drop"
	case FallbackDeadLink:
		return "deadlink"
	default:
		return fmt.Sprintf("Fallback(%d)", int(f))
	}
}

// ParseFallback parses "drop" or "deadlink".
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return FallbackDrop, nil
	case "deadlink", "dead-link":
		return FallbackDeadLink, nil
	default:
		return FallbackDrop, fmt.Errorf("%w: unresolved fallback %q (must be drop or deadlink)", ErrInvalidConfig, s)
	}
}

// Config holds the settings consumed by both passes.
type Config struct {
	MaxUnitSize      int       // soft ceiling for one output file
	ElementCost      int       // size charged per element start, 0 allowed
	TOCPolicy        TOCPolicy // file or fragment navigation targets
	Fallback         Fallback  // emission of unresolved links
	AllowBrokenLinks bool      // links to undefined ids warn instead of failing
}

// DefaultConfig returns the default conversion settings.
func DefaultConfig() Config {
	return Config{
		MaxUnitSize: DefaultMaxUnitSize,
		ElementCost: DefaultElementCost,
		TOCPolicy:   TOCFiles,
		Fallback:    FallbackDrop,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.MaxUnitSize <= 0 {
		return fmt.Errorf("%w: max unit size must be positive, got %d", ErrInvalidConfig, c.MaxUnitSize)
	}
	if c.ElementCost < 0 {
		return fmt.Errorf("%w: element cost cannot be negative, got %d", ErrInvalidConfig, c.ElementCost)
	}
	if c.TOCPolicy != TOCFiles && c.TOCPolicy != TOCFragments {
		return fmt.Errorf("%w: unknown toc policy %d", ErrInvalidConfig, int(c.TOCPolicy))
	}
	if c.Fallback != FallbackDrop && c.Fallback != FallbackDeadLink {
		return fmt.Errorf("%w: unknown fallback %d", ErrInvalidConfig, int(c.Fallback))
	}
	return nil
}
