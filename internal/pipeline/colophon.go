package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// DefaultCodeStyle is the chroma style used for code blocks in colophons.
const DefaultCodeStyle = "github"

// ColophonName is the file name of the colophon page.
const ColophonName = "colophon.xhtml"

// Highlight markers use Private Use Area code points so they pass through
// goldmark untouched and raw HTML can stay disabled.
const (
	markStart = "\uE000"
	markEnd   = "\uE001"
)

var (
	crlfOrCR           = regexp.MustCompile(`\r\n?`)
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)
	highlightPattern   = regexp.MustCompile(`==(.*?)==`)
)

// preprocessColophon normalizes line endings, turns ==text== into highlight
// markers and limits blank line runs.
func preprocessColophon(content string) string {
	content = crlfOrCR.ReplaceAllString(content, "\n")
	content = highlightPattern.ReplaceAllString(content, markStart+"$1"+markEnd)
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// convertMarks replaces highlight markers with spans. XHTML 1.1 has no mark
// element.
func convertMarks(s string) string {
	return strings.NewReplacer(markStart, `<span class="highlight">`, markEnd, "</span>").Replace(s)
}

// ColophonRenderer turns a Markdown colophon into a Page appended after the
// book content.
type ColophonRenderer struct {
	md    goldmark.Markdown
	style string
}

// NewColophonRenderer creates a renderer with GFM extensions and class-based
// syntax highlighting. An empty style selects DefaultCodeStyle.
func NewColophonRenderer(style string) *ColophonRenderer {
	if style == "" {
		style = DefaultCodeStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
		),
	)
	return &ColophonRenderer{md: md, style: style}
}

// Render converts Markdown to a Page. goldmark has no context support, so
// cancellation is honored around the conversion.
func (c *ColophonRenderer) Render(ctx context.Context, title, content string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		buf.WriteString(`<div class="colophon">` + "\n")
		if err := c.md.Convert([]byte(preprocessColophon(content)), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrColophon, err)}
			return
		}
		buf.WriteString("</div>")
		done <- result{body: []byte(convertMarks(buf.String()))}
	}()

	select {
	case <-ctx.Done():
		return Page{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return Page{}, r.err
		}
		return Page{Name: ColophonName, Title: title, Body: r.body}, nil
	}
}

// Stylesheet returns the CSS for highlighted code blocks.
func (c *ColophonRenderer) Stylesheet() (Resource, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(c.style)); err != nil {
		return Resource{}, fmt.Errorf("%w: code style %q: %v", ErrColophon, c.style, err)
	}
	return Resource{Name: "code.css", Data: buf.Bytes()}, nil
}
