package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/alnah/go-fb2epub/internal/pipeline"
)

const (
	contentDir = "OEBPS"
	fontDir    = "fonts"
	mimetype   = "application/epub+zip"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

// defaultModTime is stamped on every entry so identical input gives
// identical archives.
var defaultModTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Writer streams an EPUB 2 container to an io.Writer.
type Writer struct {
	zw         *zip.Writer
	tmpl       *parsedTemplates
	identifier string
	modified   time.Time

	items    []Item
	ids      map[string]bool
	paths    map[string]bool
	started  bool
	finished bool
}

// Option configures a Writer.
type Option func(*Writer)

// WithIdentifier sets the unique book identifier. Without it a random
// urn:uuid is used.
func WithIdentifier(id string) Option {
	return func(w *Writer) {
		if id != "" {
			w.identifier = id
		}
	}
}

// WithModTime sets the modification time of every archive entry.
func WithModTime(t time.Time) Option {
	return func(w *Writer) {
		if !t.IsZero() {
			w.modified = t
		}
	}
}

// NewWriter creates a Writer over out using the given templates.
func NewWriter(out io.Writer, t Templates, opts ...Option) (*Writer, error) {
	tmpl, err := parseTemplates(t)
	if err != nil {
		return nil, err
	}
	w := &Writer{
		zw:         zip.NewWriter(out),
		tmpl:       tmpl,
		identifier: "urn:uuid:" + uuid.NewString(),
		modified:   defaultModTime,
		ids:        make(map[string]bool),
		paths:      make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Identifier returns the unique identifier written to the package.
func (w *Writer) Identifier() string { return w.identifier }

// start writes the entries that must precede everything else.
func (w *Writer) start() error {
	if w.started {
		return nil
	}
	w.started = true
	mt, err := w.zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store, Modified: w.modified})
	if err != nil {
		return fmt.Errorf("%w: mimetype: %v", ErrWrite, err)
	}
	if _, err := io.WriteString(mt, mimetype); err != nil {
		return fmt.Errorf("%w: mimetype: %v", ErrWrite, err)
	}
	return w.write("META-INF/container.xml", []byte(containerXML))
}

func (w *Writer) write(name string, data []byte) error {
	if w.paths[name] {
		return fmt.Errorf("%w: %s", ErrDuplicateFile, name)
	}
	w.paths[name] = true
	f, err := w.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: w.modified})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, name, err)
	}
	return nil
}

// addItem writes a content file and records it in the manifest.
func (w *Writer) addItem(href, mediaType string, data []byte) (Item, error) {
	if err := w.write(contentDir+"/"+href, data); err != nil {
		return Item{}, err
	}
	it := Item{ID: w.itemID(href), Href: href, MediaType: mediaType}
	w.items = append(w.items, it)
	return it, nil
}

// itemID derives a unique manifest id from an href.
func (w *Writer) itemID(href string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			return r
		}
		return '-'
	}, href)
	if !pipeline.ValidID(base) {
		base = "item-" + base
	}
	id := base
	for n := 2; w.ids[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	w.ids[id] = true
	return id
}

// AddFile writes a content document or image.
func (w *Writer) AddFile(f pipeline.File) error {
	if w.finished {
		return ErrFinished
	}
	if err := w.start(); err != nil {
		return err
	}
	_, err := w.addItem(f.Name, f.MediaType, f.Data)
	return err
}

// Finish writes stylesheets, fonts, the NCX and the package document, then
// closes the archive. The underlying writer is not closed.
func (w *Writer) Finish(m pipeline.Manifest) error {
	if w.finished {
		return ErrFinished
	}
	if err := w.start(); err != nil {
		return err
	}
	w.finished = true

	for _, s := range m.Styles {
		if _, err := w.addItem(pipeline.StyleDir+"/"+s.Name, pipeline.MediaTypeCSS, s.Data); err != nil {
			return err
		}
	}
	for _, f := range m.Fonts {
		if _, err := w.addItem(fontDir+"/"+f.Name, FontMediaType(f.Name), f.Data); err != nil {
			return err
		}
	}
	var encrypted []string
	for _, f := range m.MangledFonts {
		href := fontDir + "/" + f.Name
		if _, err := w.addItem(href, FontMediaType(f.Name), Obfuscate(f.Data, w.identifier)); err != nil {
			return err
		}
		encrypted = append(encrypted, contentDir+"/"+href)
	}
	if len(encrypted) > 0 {
		if err := w.write("META-INF/encryption.xml", encryptionXML(encrypted)); err != nil {
			return err
		}
	}

	ncx, err := render(w.tmpl.ncx, w.ncxData(m))
	if err != nil {
		return err
	}
	if err := w.write(contentDir+"/toc.ncx", ncx); err != nil {
		return err
	}
	opf, err := render(w.tmpl.pkg, w.packageData(m))
	if err != nil {
		return err
	}
	if err := w.write(contentDir+"/content.opf", opf); err != nil {
		return err
	}
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (w *Writer) packageData(m pipeline.Manifest) PackageData {
	b := m.Book
	d := PackageData{
		Identifier:  w.identifier,
		Title:       b.Title,
		Language:    b.Language,
		Date:        b.Date,
		Authors:     b.Authors,
		Subjects:    b.Genres,
		Series:      b.Sequence,
		SeriesIndex: b.SequenceNumber,
		Items:       w.items,
	}
	if d.Title == "" {
		d.Title = "Untitled"
	}
	if d.Language == "" {
		d.Language = "en"
	}
	byHref := make(map[string]string, len(w.items))
	for _, it := range w.items {
		byHref[it.Href] = it.ID
	}
	for _, name := range m.Spine {
		if id, ok := byHref[name]; ok {
			d.Spine = append(d.Spine, id)
		}
	}
	if m.CoverImage != "" {
		d.CoverID = byHref[m.CoverImage]
	}
	if len(m.Spine) > 0 && path.Base(m.Spine[0]) == "cover.xhtml" {
		d.CoverPage = m.Spine[0]
	}
	return d
}

func (w *Writer) ncxData(m pipeline.Manifest) NCXData {
	title := m.Book.Title
	if title == "" {
		title = "Untitled"
	}
	toc := m.TOC
	if len(toc) == 0 && len(m.Spine) > 0 {
		// NCX requires at least one navigation point.
		toc = []pipeline.TOCEntry{{Title: title, Href: m.Spine[0], Level: 1}}
	}
	points, depth := navTree(toc)
	return NCXData{
		Identifier: w.identifier,
		Title:      title,
		Depth:      max(depth, 1),
		Points:     points,
	}
}

func encryptionXML(paths []string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container" xmlns:enc="http://www.w3.org/2001/04/xmlenc#">` + "\n")
	for _, p := range paths {
		b.WriteString("  <enc:EncryptedData>\n")
		b.WriteString(`    <enc:EncryptionMethod Algorithm="` + obfuscationAlgorithm + `"/>` + "\n")
		b.WriteString(`    <enc:CipherData><enc:CipherReference URI="` + html.EscapeString(p) + `"/></enc:CipherData>` + "\n")
		b.WriteString("  </enc:EncryptedData>\n")
	}
	b.WriteString("</encryption>\n")
	return []byte(b.String())
}

// FontMediaType returns the manifest media type for a font file name.
func FontMediaType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".otf":
		return "application/vnd.ms-opentype"
	case ".woff":
		return "application/font-woff"
	case ".woff2":
		return "font/woff2"
	default:
		return "application/x-font-ttf"
	}
}

// Compile-time interface check.
var _ pipeline.Packager = (*Writer)(nil)
