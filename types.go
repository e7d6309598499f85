package fb2epub

import "github.com/alnah/go-fb2epub/internal/pipeline"

// Input contains conversion parameters.
type Input struct {
	FB2      []byte // FictionBook 2 source (required)
	Name     string // Source name used in log records (optional)
	Colophon string // Markdown page appended after the book (optional)
}

// BookInfo is the publication metadata read from the document description.
type BookInfo = pipeline.BookInfo

// TOCEntry is one navigation entry of the finished book.
type TOCEntry = pipeline.TOCEntry

// Warning reports a link whose target never reached an output file.
// The link is emitted according to the configured Fallback.
type Warning = pipeline.UnresolvedReference

// Binary describes an embedded image of the source.
type Binary = pipeline.Binary

// TOCPolicy selects what navigation entries point to.
type TOCPolicy = pipeline.TOCPolicy

// TOC policies.
const (
	TOCFiles     = pipeline.TOCFiles
	TOCFragments = pipeline.TOCFragments
)

// Fallback selects how unresolved links are emitted.
type Fallback = pipeline.Fallback

// Unresolved link fallbacks.
const (
	FallbackDrop     = pipeline.FallbackDrop
	FallbackDeadLink = pipeline.FallbackDeadLink
)

// ParseTOCPolicy parses "files" or "fragments".
func ParseTOCPolicy(s string) (TOCPolicy, error) { return pipeline.ParseTOCPolicy(s) }

// ParseFallback parses "drop" or "deadlink".
func ParseFallback(s string) (Fallback, error) { return pipeline.ParseFallback(s) }

// Result is a finished conversion.
type Result struct {
	EPUB       []byte     // complete EPUB container
	Identifier string     // dc:identifier written to the package
	Book       BookInfo   // metadata as written, after overrides
	Spine      []string   // content documents in reading order
	TOC        []TOCEntry // navigation entries
	Images     int        // images packed from binaries
	Warnings   []Warning  // unresolved references, non-fatal
	Unplaced   []string   // ids with no target that nothing links to
	Duplicates []string   // ids defined more than once in the source
	Dropped    int        // body content no unit could own
}

// UnitInfo describes one structural unit found by Inspect.
type UnitInfo struct {
	Type   string // coverpage, annotation, image, title, section
	Body   string // none, main, notes, comments
	ID     int    // sequential within type and body
	Parent int    // index of the enclosing unit, -1 at top level
	Depth  int    // navigation depth, 0 for units outside the hierarchy
	Size   int    // content cost used by the split policy
	Title  string
	Anchor string // id declared on the unit's own element
}

// Info is the structure of a book as seen by the first pass.
type Info struct {
	Book       BookInfo
	Units      []UnitInfo
	Binaries   []Binary
	Duplicates []string
	Dropped    int
}

// toInfo converts a pass 1 collection to its public form.
func toInfo(col *pipeline.Collection) *Info {
	info := &Info{
		Book:       col.Book,
		Binaries:   col.Binaries,
		Duplicates: col.Duplicates,
		Dropped:    col.Dropped,
		Units:      make([]UnitInfo, len(col.Units)),
	}
	for i := range col.Units {
		u := &col.Units[i]
		info.Units[i] = UnitInfo{
			Type:   u.Type.String(),
			Body:   u.BodyType.String(),
			ID:     u.ID,
			Parent: u.Parent,
			Depth:  col.Units.Depth(i),
			Size:   u.Size,
			Title:  u.Title,
			Anchor: u.Anchor,
		}
	}
	return info
}
