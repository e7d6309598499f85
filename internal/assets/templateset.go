package assets

// Template file names inside a template set directory.
const (
	PackageTemplateFile = "content.opf"
	NCXTemplateFile     = "toc.ncx"
)

// TemplateSet holds the text/template sources used to write the EPUB
// package document and navigation map.
type TemplateSet struct {
	Name    string // identifier (name or directory path)
	Package string // content.opf template
	NCX     string // toc.ncx template
}

// DefaultTemplateSetName is the name of the built-in template set.
const DefaultTemplateSetName = "default"

// DefaultStyleName is the name of the built-in stylesheet.
const DefaultStyleName = "default"
