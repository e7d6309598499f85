package pipeline

// Media types of the files produced by the assembler.
const (
	MediaTypeXHTML = "application/xhtml+xml"
	MediaTypeCSS   = "text/css"
)

// File is one finished content document or image handed to the Packager.
// Name is relative to the package content directory.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// Resource is a static file copied into the package unchanged (stylesheets,
// fonts) or obfuscated (mangled fonts).
type Resource struct {
	Name string
	Data []byte
}

// Resources are the static lists the assembler passes through to the
// Packager, plus extra pages appended after the book content.
type Resources struct {
	Styles       []Resource
	Fonts        []Resource
	MangledFonts []Resource
	Pages        []Page
}

// Page is a pre-rendered XHTML body fragment appended to the spine.
type Page struct {
	Name  string // file name, e.g. "colophon.xhtml"
	Title string // TOC title, empty keeps it out of the TOC
	Body  []byte
}

// Manifest describes the finished package.
type Manifest struct {
	Book         BookInfo
	Spine        []string // content documents in reading order
	TOC          []TOCEntry
	Styles       []Resource
	Fonts        []Resource
	MangledFonts []Resource
	CoverImage   string // package path of the cover image, empty if none
}

// Packager serializes finished files into a container. The assembler calls
// AddFile for every content document and image, then Finish exactly once.
// Nothing is handed over before pass 2 has fully succeeded.
type Packager interface {
	AddFile(f File) error
	Finish(m Manifest) error
}

// Transliterator rewrites a text run for the target character set.
type Transliterator interface {
	Transliterate(s string) string
}

// identity leaves text unchanged.
type identity struct{}

func (identity) Transliterate(s string) string { return s }

// Compile-time interface check.
var _ Transliterator = identity{}
