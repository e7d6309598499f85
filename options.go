package fb2epub

import (
	"log/slog"
	"time"

	"github.com/alnah/go-fb2epub/internal/pipeline"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds the settings gathered from options.
type converterConfig struct {
	pipeline       pipeline.Config
	styleInput     string // name, path or CSS content
	assetPath      string
	fonts          []string
	mangledFonts   []string
	transliterate  bool
	foldDiacritics bool
	date           string // literal, "auto" or "auto:FORMAT"
	language       string
	colophonTitle  string
	codeStyle      string
}

// WithMaxUnitSize sets the soft size ceiling of one output file.
// Panics if n <= 0 (programmer error, similar to time.NewTicker).
func WithMaxUnitSize(n int) Option {
	if n <= 0 {
		panic("fb2epub: WithMaxUnitSize size must be positive")
	}
	return func(c *Converter) {
		c.cfg.pipeline.MaxUnitSize = n
	}
}

// WithElementCost sets the size charged for each element start.
// Zero counts text only. Panics if n < 0.
func WithElementCost(n int) Option {
	if n < 0 {
		panic("fb2epub: WithElementCost cost cannot be negative")
	}
	return func(c *Converter) {
		c.cfg.pipeline.ElementCost = n
	}
}

// WithTOCPolicy selects whether navigation points at files or fragments.
func WithTOCPolicy(p TOCPolicy) Option {
	return func(c *Converter) {
		c.cfg.pipeline.TOCPolicy = p
	}
}

// WithFallback selects how links to content that never reached a file are
// emitted.
func WithFallback(f Fallback) Option {
	return func(c *Converter) {
		c.cfg.pipeline.Fallback = f
	}
}

// WithAllowBrokenLinks turns links to undefined ids into warnings instead
// of failing the conversion.
func WithAllowBrokenLinks() Option {
	return func(c *Converter) {
		c.cfg.pipeline.AllowBrokenLinks = true
	}
}

// WithStyle sets the stylesheet linked from every content document.
// Accepts a style name ("default", "sans"), a file path ("./custom.css")
// or raw CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath sets a directory of custom styles and templates, searched
// before the embedded ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over
// WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}

// WithFonts adds font files copied into the package unchanged.
func WithFonts(paths ...string) Option {
	return func(c *Converter) {
		c.cfg.fonts = append(c.cfg.fonts, paths...)
	}
}

// WithMangledFonts adds font files obfuscated with the IDPF algorithm.
func WithMangledFonts(paths ...string) Option {
	return func(c *Converter) {
		c.cfg.mangledFonts = append(c.cfg.mangledFonts, paths...)
	}
}

// WithTransliteration renders Cyrillic text in Latin script. With fold set,
// diacritics left over are removed as well.
func WithTransliteration(fold bool) Option {
	return func(c *Converter) {
		c.cfg.transliterate = true
		c.cfg.foldDiacritics = fold
	}
}

// WithLogger sets the logger for pass boundaries, split decisions and
// unresolved references. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDate overrides the publication date. Accepts a literal date,
// "auto" or "auto:FORMAT" (see the date presets iso, day, month, year).
func WithDate(date string) Option {
	return func(c *Converter) {
		c.cfg.date = date
	}
}

// WithLanguage sets the language used when the book declares none.
func WithLanguage(lang string) Option {
	return func(c *Converter) {
		c.cfg.language = lang
	}
}

// WithColophonTitle sets the navigation title of the colophon page.
// Without it the colophon is reachable from the spine only.
func WithColophonTitle(title string) Option {
	return func(c *Converter) {
		c.cfg.colophonTitle = title
	}
}

// WithCodeStyle sets the chroma style for code blocks in the colophon.
func WithCodeStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.codeStyle = style
	}
}

// withClock injects the time source used by "auto" dates.
func withClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}
