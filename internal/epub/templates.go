package epub

import (
	"bytes"
	"fmt"
	"text/template"

	"golang.org/x/net/html"

	"github.com/alnah/go-fb2epub/internal/pipeline"
)

// Templates holds the text/template sources of the package document and
// the NCX. Both receive the escaping function "xml".
type Templates struct {
	Package string
	NCX     string
}

var templateFuncs = template.FuncMap{"xml": html.EscapeString}

type parsedTemplates struct {
	pkg *template.Template
	ncx *template.Template
}

func parseTemplates(t Templates) (*parsedTemplates, error) {
	pkg, err := template.New("content.opf").Funcs(templateFuncs).Parse(t.Package)
	if err != nil {
		return nil, fmt.Errorf("%w: content.opf: %v", ErrTemplate, err)
	}
	ncx, err := template.New("toc.ncx").Funcs(templateFuncs).Parse(t.NCX)
	if err != nil {
		return nil, fmt.Errorf("%w: toc.ncx: %v", ErrTemplate, err)
	}
	return &parsedTemplates{pkg: pkg, ncx: ncx}, nil
}

func render(t *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, t.Name(), err)
	}
	return buf.Bytes(), nil
}

// Item is one manifest entry.
type Item struct {
	ID        string
	Href      string
	MediaType string
}

// PackageData is the data passed to the package document template.
type PackageData struct {
	Identifier  string
	Title       string
	Language    string
	Date        string
	Authors     []string
	Subjects    []string
	Series      string
	SeriesIndex string
	CoverID     string // manifest id of the cover image
	CoverPage   string // href of the cover document
	Items       []Item
	Spine       []string // manifest ids in reading order
}

// NavPoint is one NCX navigation point.
type NavPoint struct {
	ID        string
	PlayOrder int
	Label     string
	Src       string
	Children  []*NavPoint
}

// NCXData is the data passed to the NCX template.
type NCXData struct {
	Identifier string
	Title      string
	Depth      int
	Points     []*NavPoint
}

// navTree nests flat TOC entries by level. A level deeper than its
// predecessor allows is attached one level below it.
func navTree(entries []pipeline.TOCEntry) ([]*NavPoint, int) {
	var roots []*NavPoint
	var stack []*NavPoint
	depth := 0
	for i, e := range entries {
		p := &NavPoint{
			ID:        fmt.Sprintf("navpoint-%d", i+1),
			PlayOrder: i + 1,
			Label:     e.Title,
			Src:       e.Href,
		}
		level := max(e.Level, 1)
		if level > len(stack)+1 {
			level = len(stack) + 1
		}
		stack = stack[:level-1]
		if len(stack) == 0 {
			roots = append(roots, p)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, p)
		}
		stack = append(stack, p)
		depth = max(depth, len(stack))
	}
	return roots, depth
}
