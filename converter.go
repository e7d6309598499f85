package fb2epub

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-fb2epub/internal/assets"
	"github.com/alnah/go-fb2epub/internal/dateutil"
	"github.com/alnah/go-fb2epub/internal/epub"
	"github.com/alnah/go-fb2epub/internal/fb2"
	"github.com/alnah/go-fb2epub/internal/fileutil"
	"github.com/alnah/go-fb2epub/internal/pipeline"
	"github.com/alnah/go-fb2epub/internal/translit"
)

// StylesheetName is the package file name of the main stylesheet.
const StylesheetName = "style.css"

// Compile-time interface implementation checks.
var (
	_ pipeline.Scanner        = (*fb2.Scanner)(nil)
	_ pipeline.Packager       = (*epub.Writer)(nil)
	_ pipeline.Transliterator = (*translit.Transliterator)(nil)
)

// Converter turns FictionBook 2 documents into split EPUB 2 packages.
// Create with NewConverter() and reuse it for any number of books; a
// Converter holds no per-book state and is safe for concurrent use.
type Converter struct {
	cfg               converterConfig
	assetLoader       assets.AssetLoader // internal loader
	publicAssetLoader AssetLoader        // public loader (from WithAssetLoader)
	logger            *slog.Logger
	now               func() time.Time

	style     pipeline.Resource
	templates epub.Templates
	fonts     []pipeline.Resource
	mangled   []pipeline.Resource
	xlit      pipeline.Transliterator // nil when transliteration is off
	colophon  *pipeline.ColophonRenderer
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithMaxUnitSize, WithStyle, WithFonts).
// Returns error if options are invalid or an asset cannot be loaded.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:         converterConfig{pipeline: pipeline.DefaultConfig()},
		assetLoader: assets.NewEmbeddedLoader(),
		logger:      slog.New(slog.DiscardHandler),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.pipeline.Validate(); err != nil {
		return nil, err
	}

	// Handle WithAssetPath: resolve to internal loader
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
		}
		c.assetLoader = resolver
	}

	// Handle WithAssetLoader (public interface): wrap to internal interface
	if c.publicAssetLoader != nil {
		c.assetLoader = &internalLoader{pub: c.publicAssetLoader}
	}

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}
	if err := c.loadTemplates(); err != nil {
		return nil, err
	}
	if err := c.loadFonts(); err != nil {
		return nil, err
	}

	if c.cfg.date != "" {
		if _, err := dateutil.ResolveDate(c.cfg.date, c.now()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
	}

	if c.cfg.transliterate {
		var topts []translit.Option
		if c.cfg.foldDiacritics {
			topts = append(topts, translit.WithDiacriticFolding())
		}
		c.xlit = translit.New(topts...)
	}
	c.colophon = pipeline.NewColophonRenderer(c.cfg.codeStyle)

	return c, nil
}

// Convert runs both passes over input and returns the packaged book.
// The context is checked between passes and periodically inside them.
// Nothing is returned on failure: the package only exists once the second
// pass has fully succeeded.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if len(input.FB2) == 0 {
		return nil, ErrEmptyInput
	}
	log := c.logger
	if input.Name != "" {
		log = log.With("source", input.Name)
	}

	col, err := c.collect(ctx, input.FB2, log)
	if err != nil {
		return nil, err
	}

	book, err := c.bookInfo(col.Book, log)
	if err != nil {
		return nil, err
	}
	col.Book = book

	res, err := c.resources(ctx, input.Colophon)
	if err != nil {
		return nil, err
	}

	id := epub.Identifier(book.DocumentID, input.FB2)
	var buf bytes.Buffer
	w, err := epub.NewWriter(&buf, c.templates, epub.WithIdentifier(id))
	if err != nil {
		return nil, packageError(err)
	}

	aopts := []pipeline.AssemblerOption{pipeline.WithLogger(log)}
	if c.xlit != nil {
		aopts = append(aopts, pipeline.WithTransliterator(c.xlit))
	}
	asm, err := pipeline.NewAssembler(c.cfg.pipeline, aopts...)
	if err != nil {
		return nil, err
	}
	log.Debug("pass 2 started", "units", len(col.Units))
	out, err := asm.Assemble(ctx, fb2.NewBytesScanner(input.FB2), col, res, w)
	if err != nil {
		if isPackageError(err) {
			return nil, packageError(err)
		}
		return nil, fmt.Errorf("assembling output: %w", err)
	}

	log.Info("converted book",
		"title", book.Title,
		"files", len(out.Files),
		"images", len(out.Images),
		"warnings", len(out.Warnings),
		"bytes", buf.Len(),
	)

	return &Result{
		EPUB:       buf.Bytes(),
		Identifier: w.Identifier(),
		Book:       book,
		Spine:      out.Spine(),
		TOC:        out.TOC,
		Images:     len(out.Images),
		Warnings:   out.Warnings,
		Unplaced:   out.Unplaced,
		Duplicates: col.Duplicates,
		Dropped:    col.Dropped,
	}, nil
}

// Inspect runs the first pass only and describes the structure of a book.
// Recovers from internal panics like Convert.
func (c *Converter) Inspect(ctx context.Context, fb2Data []byte) (info *Info, err error) {
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if len(fb2Data) == 0 {
		return nil, ErrEmptyInput
	}
	col, err := c.collect(ctx, fb2Data, c.logger)
	if err != nil {
		return nil, err
	}
	return toInfo(col), nil
}

// collect runs pass 1 and reports what it found.
func (c *Converter) collect(ctx context.Context, data []byte, log *slog.Logger) (*pipeline.Collection, error) {
	log.Debug("pass 1 started", "bytes", len(data))
	col, err := pipeline.Collect(ctx, fb2.NewBytesScanner(data), c.cfg.pipeline)
	if err != nil {
		return nil, fmt.Errorf("collecting structure: %w", err)
	}
	for _, id := range col.Duplicates {
		log.Warn("duplicate id", "id", id)
	}
	if col.Dropped > 0 {
		log.Warn("content outside any unit dropped", "size", col.Dropped)
	}
	log.Debug("pass 1 complete", "units", len(col.Units), "binaries", len(col.Binaries))
	return col, nil
}

// bookInfo applies date and language overrides to the collected metadata.
func (c *Converter) bookInfo(b BookInfo, log *slog.Logger) (BookInfo, error) {
	switch {
	case c.cfg.date != "":
		d, err := dateutil.ResolveDate(c.cfg.date, c.now())
		if err != nil {
			return b, fmt.Errorf("%w: %v", ErrInvalidDate, err)
		}
		b.Date = d
	case b.Date != "":
		d, ok := dateutil.W3CDate(b.Date)
		if !ok {
			log.Debug("publication date without a year ignored", "date", b.Date)
		}
		b.Date = d
	}
	if b.Language == "" {
		b.Language = c.cfg.language
	}
	return b, nil
}

// resources gathers stylesheets, fonts and the optional colophon page.
func (c *Converter) resources(ctx context.Context, colophon string) (pipeline.Resources, error) {
	res := pipeline.Resources{
		Styles:       []pipeline.Resource{c.style},
		Fonts:        c.fonts,
		MangledFonts: c.mangled,
	}
	if strings.TrimSpace(colophon) == "" {
		return res, nil
	}

	page, err := c.colophon.Render(ctx, c.cfg.colophonTitle, colophon)
	if err != nil {
		return res, fmt.Errorf("rendering colophon: %w", err)
	}
	css, err := c.colophon.Stylesheet()
	if err != nil {
		return res, fmt.Errorf("rendering colophon: %w", err)
	}
	res.Styles = append(res.Styles, css)
	res.Pages = append(res.Pages, page)
	return res, nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
// Called during NewConverter() after options are applied and the asset loader is configured.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		input = assets.DefaultStyleName
	}

	var css string
	switch {
	case fileutil.IsFilePath(input):
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		css = string(content)
	case strings.Contains(input, "{"):
		css = input
	default:
		content, err := c.assetLoader.LoadStyle(input)
		if err != nil {
			return fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
		}
		css = content
	}

	c.style = pipeline.Resource{Name: StylesheetName, Data: []byte(css)}
	return nil
}

// loadTemplates loads the package templates and checks that they parse.
func (c *Converter) loadTemplates() error {
	ts, err := c.assetLoader.LoadTemplateSet(assets.DefaultTemplateSetName)
	if err != nil {
		return fmt.Errorf("loading template set: %w", convertAssetError(err))
	}
	c.templates = epub.Templates{Package: ts.Package, NCX: ts.NCX}
	if _, err := epub.NewWriter(io.Discard, c.templates); err != nil {
		return fmt.Errorf("loading template set: %w", packageError(err))
	}
	return nil
}

// loadFonts reads every font once. Names must be unique across both lists
// since they share the package fonts directory.
func (c *Converter) loadFonts() error {
	seen := make(map[string]string)
	load := func(paths []string) ([]pipeline.Resource, error) {
		var out []pipeline.Resource
		for _, p := range paths {
			f, err := assets.LoadFont(p)
			if err != nil {
				return nil, fmt.Errorf("loading font %q: %w", p, convertAssetError(err))
			}
			key := strings.ToLower(f.Name)
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("%w: %q and %q share the name %s", ErrInvalidFont, prev, p, filepath.Base(p))
			}
			seen[key] = p
			out = append(out, pipeline.Resource{Name: f.Name, Data: f.Data})
		}
		return out, nil
	}

	var err error
	if c.fonts, err = load(c.cfg.fonts); err != nil {
		return err
	}
	c.mangled, err = load(c.cfg.mangledFonts)
	return err
}

// isPackageError reports whether err was raised by the EPUB writer.
func isPackageError(err error) bool {
	return errors.Is(err, epub.ErrTemplate) ||
		errors.Is(err, epub.ErrWrite) ||
		errors.Is(err, epub.ErrDuplicateFile) ||
		errors.Is(err, epub.ErrFinished)
}

// packageError tags an EPUB writer error with ErrPackage.
func packageError(err error) error {
	return fmt.Errorf("%w: %w", ErrPackage, err)
}
