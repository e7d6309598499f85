package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Assembly is the result of pass 2.
type Assembly struct {
	Files    []File // content documents in spine order
	Images   []File
	TOC      []TOCEntry
	Warnings []UnresolvedReference
	Unplaced []string // ids no file holds and nothing links to
}

// Spine returns the content document names in reading order.
func (a *Assembly) Spine() []string {
	out := make([]string, len(a.Files))
	for i, f := range a.Files {
		out[i] = f.Name
	}
	return out
}

// Assembler runs pass 2.
type Assembler struct {
	cfg    Config
	policy SplitPolicy
	xlit   Transliterator
	logger *slog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithTransliterator sets the text rewriter applied to every text run.
func WithTransliterator(t Transliterator) AssemblerOption {
	return func(a *Assembler) {
		if t != nil {
			a.xlit = t
		}
	}
}

// WithLogger sets the logger for split decisions and reference warnings.
func WithLogger(l *slog.Logger) AssemblerOption {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(cfg Config, opts ...AssemblerOption) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Assembler{
		cfg:    cfg,
		policy: NewSplitPolicy(cfg.MaxUnitSize),
		xlit:   identity{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// outFile is a content document being written.
type outFile struct {
	name     string
	buf      bytes.Buffer
	deferred bool // holds data-ref placeholders
}

// frame is the output state of one open source element.
type frame struct {
	close   string // markup closing the element, empty when transparent
	pushed  bool   // close belongs to an entry on run.open
	heading bool   // title rendered as hN
	lines   int    // lines written into a heading
	unit    int    // unit opened by this element
	titleOf int    // section whose heading this title is
}

type binaryBuf struct {
	id          string
	contentType string
	data        strings.Builder
}

// run is the state of one Assemble call.
type run struct {
	*Assembler
	units Units
	idx   *Index
	book  BookInfo
	res   Resources

	tr      tracker
	frames  []frame
	open    []blockTag // rendered tags reopened after a split
	next    int
	current int
	line    int

	files        []*outFile
	cur          *outFile
	acc          int
	pend         bytes.Buffer
	pendDeferred bool
	partSeq      int
	usedCover    bool
	usedAnnot    bool

	emitted     map[string]bool
	backlinks   map[int]string
	backlinkDue int

	bin       *binaryBuf
	images    []File
	imageRefs map[string]bool
	imageSeen map[string]bool

	warned   map[string]bool
	warnings []UnresolvedReference
}

// Assemble runs pass 2 over s, which must yield the same tokens the
// collection was built from. Unit File, FileID and Level are filled in and
// the index is resolved in place. When pkg is not nil it receives every file
// and the manifest, but only after the whole pass has succeeded.
func (a *Assembler) Assemble(ctx context.Context, s Scanner, col *Collection, res Resources, pkg Packager) (*Assembly, error) {
	if col == nil {
		return nil, fmt.Errorf("%w: nil collection", ErrAssembly)
	}
	r := &run{
		Assembler:   a,
		units:       col.Units,
		idx:         col.Index,
		book:        col.Book,
		res:         res,
		current:     NoUnit,
		emitted:     make(map[string]bool),
		backlinks:   make(map[int]string),
		backlinkDue: NoUnit,
		imageRefs:   make(map[string]bool),
		imageSeen:   make(map[string]bool),
		warned:      make(map[string]bool),
	}

	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LexicalError{Unit: r.owner(), Line: r.line, Err: err}
		}
		if tok.Line > 0 {
			r.line = tok.Line
		}
		switch tok.Kind {
		case TokenStart:
			err = r.start(tok)
		case TokenEnd:
			err = r.end(tok)
		case TokenText:
			r.text(tok.Text)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := r.tr.unclosed(r.line); err != nil {
		return nil, err
	}
	if r.next != len(r.units) {
		return nil, &AssemblyError{Unit: r.next, Line: r.line, Msg: fmt.Sprintf("token stream ended after %d of %d units", r.next, len(r.units))}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.finish(pkg)
}

// owner returns the unit that owns content written now. Body content seen
// before the first unit belongs to the next unit.
func (r *run) owner() int {
	if r.current != NoUnit {
		return r.current
	}
	if r.next < len(r.units) {
		return r.next
	}
	return NoUnit
}

func (r *run) out() *bytes.Buffer {
	if r.current == NoUnit {
		return &r.pend
	}
	return &r.cur.buf
}

func (r *run) write(s string) { r.out().WriteString(s) }

func (r *run) markDeferred() {
	if r.current == NoUnit {
		r.pendDeferred = true
		return
	}
	r.cur.deferred = true
}

// expect checks that the boundary just found matches the next collected unit.
func (r *run) expect(typ UnitType, body BodyType, tok Token) error {
	if r.next >= len(r.units) {
		return &AssemblyError{Unit: r.next, Element: tok.Name, Line: tok.Line, Msg: "token stream has more units than pass 1"}
	}
	u := &r.units[r.next]
	if u.Type != typ || u.BodyType != body {
		return &AssemblyError{
			Unit:    r.next,
			Element: tok.Name,
			Line:    tok.Line,
			Msg:     fmt.Sprintf("token stream diverged: found %s/%s, expected %s", typ, body, u),
		}
	}
	return nil
}

// beginUnit applies the split policy and assigns unit i to a file.
func (r *run) beginUnit(i int) {
	u := &r.units[i]
	if r.cur == nil || r.policy.ShouldSplit(r.acc, r.units, i) {
		r.newFile(i)
	}
	u.File = r.cur.name
	u.Level = r.units.Depth(i)
	r.acc += u.Size

	for _, id := range u.RefIDs {
		r.idx.Resolve(id, Target{File: u.File, Fragment: id})
	}
	if r.cfg.TOCPolicy == TOCFragments && u.Navigable() {
		if u.Anchor != "" {
			u.FileID = u.Anchor
		} else {
			u.FileID = r.idx.Reserve("toc", i, Target{File: u.File})
		}
	}
	if _, ok := r.backlinks[i]; ok {
		r.backlinkDue = i
	}

	r.current = i
	if r.pend.Len() > 0 {
		r.cur.buf.Write(r.pend.Bytes())
		r.pend.Reset()
	}
	if r.pendDeferred {
		r.cur.deferred = true
		r.pendDeferred = false
	}
}

func (r *run) newFile(i int) {
	r.closeFile()
	f := &outFile{name: r.fileName(i)}
	documentHead(&f.buf, r.xlit.Transliterate(r.book.Title), r.book.Language, bodyClass(r.units[i].BodyType), r.res.Styles)
	for _, t := range r.open {
		f.buf.WriteString(openTag(t.tag, t.class, ""))
	}
	r.logger.Debug("starting output file", "file", f.name, "unit", i, "previous_size", r.acc)
	r.files = append(r.files, f)
	r.cur = f
	r.acc = 0
}

func (r *run) closeFile() {
	if r.cur == nil {
		return
	}
	for i := len(r.open) - 1; i >= 0; i-- {
		r.cur.buf.WriteString("</" + r.open[i].tag + ">")
	}
	documentTail(&r.cur.buf)
}

func (r *run) fileName(i int) string {
	if r.units[i].Type == UnitCoverPage && !r.usedCover {
		r.usedCover = true
		return "cover.xhtml"
	}
	if r.units[i].Type == UnitAnnotation && !r.usedAnnot {
		r.usedAnnot = true
		return "annotation.xhtml"
	}
	r.partSeq++
	return fmt.Sprintf("part%04d.xhtml", r.partSeq)
}

func (r *run) start(tok Token) error {
	typ, body, opens := r.tr.classify(tok)
	parentElem := r.tr.parent()
	sections := 0
	for _, e := range r.tr.elems {
		if e == "section" {
			sections++
		}
	}
	r.tr.push(tok)

	fr := frame{unit: NoUnit, titleOf: NoUnit}
	if opens {
		if err := r.expect(typ, body, tok); err != nil {
			return err
		}
		fr.unit = r.next
		r.tr.openUnit(r.next)
		r.beginUnit(r.next)
		r.next++
	}

	if !r.tr.inRegion() {
		if tok.Name == "binary" {
			r.bin = &binaryBuf{}
			r.bin.id, _ = tok.Attr("id")
			r.bin.contentType, _ = tok.Attr("content-type")
		}
		r.frames = append(r.frames, fr)
		return nil
	}

	id := r.anchor(tok, fr.unit)
	var parent *frame
	if n := len(r.frames); n > 0 {
		parent = &r.frames[n-1]
	}

	switch tok.Name {
	case "title":
		level := 0
		switch {
		case opens:
			level = 1
		case parentElem == "section":
			level = min(sections+1, 6)
			fr.titleOf = r.current
		}
		if level > 0 {
			tag := fmt.Sprintf("h%d", level)
			fr.heading = true
			r.push(&fr, blockTag{tag: tag, class: "title"}, id)
		} else {
			r.push(&fr, blockTag{tag: "div", class: "title"}, id)
		}
	case "p":
		if parent != nil && parent.heading {
			if parent.lines > 0 {
				r.write("<br/>")
			}
			parent.lines++
			if id != "" {
				r.write(openTag("span", "", id) + "</span>")
			}
			break
		}
		r.push(&fr, elementTags["p"], id)
	case "empty-line":
		if parent != nil && parent.heading {
			r.write("<br/>")
			break
		}
		r.write(openTag("p", "empty-line", id) + "&#160;</p>")
	case "image":
		r.image(tok, id, parentElem, parent)
	case "a":
		if err := r.link(tok, &fr, id); err != nil {
			return err
		}
	default:
		if t, ok := elementTags[tok.Name]; ok {
			r.push(&fr, t, id, tok.Attrs...)
		} else if id != "" {
			r.write(openTag("span", "", id) + "</span>")
		}
	}
	r.frames = append(r.frames, fr)
	return nil
}

// push renders a start tag and remembers it for closing and reopening.
func (r *run) push(fr *frame, t blockTag, id string, attrs ...Attr) {
	s := openTag(t.tag, t.class, id)
	for _, a := range attrs {
		if passAttrs[a.Name] {
			s = s[:len(s)-1] + attr(a.Name, a.Value) + ">"
		}
	}
	r.write(s)
	r.open = append(r.open, t)
	fr.close = "</" + t.tag + ">"
	fr.pushed = true
}

// anchor returns the id attribute to emit for tok: its canonical id when
// the current unit owns it and it was not emitted before, or the generated
// fragment id of a navigable unit element.
func (r *run) anchor(tok Token, unit int) string {
	if raw, ok := tok.Attr("id"); ok && raw != "" {
		c := r.idx.Canonical(raw)
		if !r.emitted[c] && r.idx.Owner(c) == r.owner() {
			r.emitted[c] = true
			return c
		}
	}
	if unit != NoUnit {
		if fid := r.units[unit].FileID; fid != "" && !r.emitted[fid] {
			r.emitted[fid] = true
			return fid
		}
	}
	return ""
}

func (r *run) image(tok Token, id, parentElem string, parent *frame) {
	href, _ := tok.Attr("href")
	src := href
	if strings.HasPrefix(href, "#") {
		bin := href[1:]
		r.imageRefs[bin] = true
		src = ImagePath(bin)
	}
	alt, _ := tok.Attr("alt")
	img := "<img" + attr("src", src) + attr("alt", alt) + "/>"
	if inlineParents[parentElem] || (parent != nil && parent.heading) {
		if id != "" {
			img = "<img" + attr("id", id) + img[len("<img"):]
		}
		r.write(img)
		return
	}
	r.write(openTag("div", "image", id) + img + "</div>")
}

func (r *run) link(tok Token, fr *frame, id string) error {
	href, _ := tok.Attr("href")
	class := ""
	if t, _ := tok.Attr("type"); t == "note" {
		class = "note"
	}
	if !strings.HasPrefix(href, "#") || len(href) == 1 {
		r.write(anchorTag(class, id, attr("href", href)))
		fr.close = "</a>"
		return nil
	}

	raw := href[1:]
	if !r.idx.Registered(raw) {
		if !r.cfg.AllowBrokenLinks {
			return &AssemblyError{Unit: r.owner(), Element: "a", ID: raw, Line: tok.Line, Msg: "link to undefined id"}
		}
		r.warn(raw, r.owner(), "undefined")
		r.fallback(raw, class, id, fr)
		return nil
	}
	if r.idx.Owner(raw) == NoUnit {
		r.fallback(raw, class, id, fr)
		return nil
	}

	id = r.backAnchor(raw, id)
	if t, ok := r.idx.Lookup(raw); ok {
		r.write(anchorTag(class, id, attr("href", t.Href())))
	} else {
		r.write(anchorTag(class, id, attr("href", "#")+attr(refAttr, raw)))
		r.markDeferred()
	}
	fr.close = "</a>"
	return nil
}

// fallback renders a link whose target will never reach a file.
func (r *run) fallback(raw, class, id string, fr *frame) {
	if r.cfg.Fallback == FallbackDeadLink {
		r.write(anchorTag(class, id, attr("href", "#"+raw)))
		fr.close = "</a>"
		return
	}
	if id != "" {
		r.write(openTag("span", "", id) + "</span>")
	}
}

func anchorTag(class, id, rest string) string {
	s := "<a"
	if class != "" {
		s += attr("class", class)
	}
	if id != "" {
		s += attr("id", id)
	}
	return s + rest + ">"
}

// backAnchor gives the first main-text link to an addressable note an id
// the note can link back to.
func (r *run) backAnchor(raw, id string) string {
	if id != "" || r.current == NoUnit || r.units[r.current].BodyType != BodyMain {
		return id
	}
	note := r.idx.Owner(raw)
	if note == NoUnit || r.units[note].NoteRefID == "" || r.units[note].NoteRefID != r.idx.Canonical(raw) {
		return id
	}
	if _, done := r.backlinks[note]; done {
		return id
	}
	back := r.idx.Reserve("back", r.current, Target{File: r.cur.name})
	r.backlinks[note] = back
	r.emitted[back] = true
	return back
}

func (r *run) emitBacklink(note int) {
	t, _ := r.idx.Lookup(r.backlinks[note])
	r.write(`<p class="backlink"><a` + attr("href", t.Href()) + `>&#8617;</a></p>`)
	r.backlinkDue = NoUnit
}

func (r *run) end(tok Token) error {
	var fr frame
	if n := len(r.frames); n > 0 {
		fr = r.frames[n-1]
		r.frames = r.frames[:n-1]
	}
	if tok.Name == "binary" && r.bin != nil {
		r.finishBinary()
	}
	if r.tr.inRegion() {
		if fr.unit != NoUnit && fr.unit == r.backlinkDue {
			r.emitBacklink(fr.unit)
		}
		if fr.close != "" {
			r.write(fr.close)
		}
		if fr.pushed {
			r.open = r.open[:len(r.open)-1]
		}
		if fr.heading && fr.titleOf != NoUnit && fr.titleOf == r.backlinkDue {
			r.emitBacklink(fr.titleOf)
		}
	}

	_, bodyEnd, err := r.tr.pop(tok)
	if err != nil {
		return err
	}
	if bodyEnd {
		if r.pend.Len() > 0 {
			r.logger.Warn("dropping body content outside any unit", "bytes", r.pend.Len(), "line", tok.Line)
			r.pend.Reset()
			r.pendDeferred = false
		}
		r.current = NoUnit
	}
	if !r.tr.inRegion() {
		r.current = NoUnit
	}
	return nil
}

func (r *run) text(s string) {
	if r.bin != nil {
		r.bin.data.WriteString(s)
		return
	}
	if !r.tr.inRegion() {
		return
	}
	r.write(html.EscapeString(r.xlit.Transliterate(s)))
}

func (r *run) finishBinary() {
	b := r.bin
	r.bin = nil
	encoded := strings.Map(func(c rune) rune {
		if unicode.IsSpace(c) {
			return -1
		}
		return c
	}, b.data.String())
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		r.logger.Warn("skipping undecodable binary", "id", b.id, "error", err)
		return
	}
	name := ImagePath(b.id)
	if r.imageSeen[name] {
		r.logger.Warn("skipping binary with duplicate file name", "id", b.id, "file", name)
		return
	}
	r.imageSeen[name] = true
	ct := b.contentType
	if ct == "" {
		ct = mime.TypeByExtension(path.Ext(name))
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	r.images = append(r.images, File{Name: name, MediaType: ct, Data: data})
}

// warn records an unresolved reference once per id.
func (r *run) warn(id string, unit int, reason string) {
	if r.warned[id] {
		return
	}
	r.warned[id] = true
	w := UnresolvedReference{ID: id, Unit: unit, Reason: reason}
	r.warnings = append(r.warnings, w)
	r.logger.Warn("unresolved reference", "id", id, "unit", unit, "reason", reason)
}

// unplaced returns the unresolved index keys not already reported as
// warnings, such as ids defined in the description.
func (r *run) unplaced() []string {
	var out []string
	for _, id := range r.idx.Unresolved() {
		if r.warned[id] || r.warned[r.idx.Canonical(id)] {
			continue
		}
		out = append(out, id)
	}
	if len(out) > 0 {
		r.logger.Debug("ids left without a target", "ids", out)
	}
	return out
}

func (r *run) finish(pkg Packager) (*Assembly, error) {
	r.closeFile()
	for _, p := range r.res.Pages {
		f := &outFile{name: p.Name}
		documentHead(&f.buf, r.xlit.Transliterate(r.book.Title), r.book.Language, "page", r.res.Styles)
		f.buf.Write(p.Body)
		documentTail(&f.buf)
		r.files = append(r.files, f)
	}

	r.idx.Flatten()
	for i := range r.units {
		for _, ref := range r.units[i].Refs {
			if !r.idx.Registered(ref) {
				continue
			}
			if _, ok := r.idx.Lookup(ref); !ok {
				r.warn(ref, i, "not emitted")
			}
		}
	}
	for _, f := range r.files {
		if !f.deferred {
			continue
		}
		data, err := r.rewrite(f.buf.Bytes())
		if err != nil {
			return nil, &AssemblyError{Unit: NoUnit, Msg: fmt.Sprintf("rewriting links in %s: %v", f.name, err)}
		}
		f.buf.Reset()
		f.buf.Write(data)
	}

	for id := range r.imageRefs {
		if !r.imageSeen[ImagePath(id)] {
			r.logger.Warn("image references a missing binary", "id", id)
		}
	}

	toc := BuildTOC(r.units, r.cfg.TOCPolicy, r.xlit)
	for _, p := range r.res.Pages {
		if p.Title != "" {
			toc = append(toc, TOCEntry{Title: p.Title, Href: p.Name, Level: 1, Unit: NoUnit})
		}
	}

	asm := &Assembly{TOC: toc, Images: r.images, Warnings: r.warnings, Unplaced: r.unplaced()}
	for _, f := range r.files {
		asm.Files = append(asm.Files, File{Name: f.name, MediaType: MediaTypeXHTML, Data: f.buf.Bytes()})
	}
	r.logger.Info("assembled output", "files", len(asm.Files), "images", len(asm.Images), "warnings", len(asm.Warnings))

	if pkg == nil {
		return asm, nil
	}
	for _, f := range asm.Files {
		if err := pkg.AddFile(f); err != nil {
			return nil, fmt.Errorf("packaging %s: %w", f.Name, err)
		}
	}
	for _, f := range asm.Images {
		if err := pkg.AddFile(f); err != nil {
			return nil, fmt.Errorf("packaging %s: %w", f.Name, err)
		}
	}
	m := Manifest{
		Book:         r.book,
		Spine:        asm.Spine(),
		TOC:          asm.TOC,
		Styles:       r.res.Styles,
		Fonts:        r.res.Fonts,
		MangledFonts: r.res.MangledFonts,
	}
	if r.book.CoverImage != "" && r.imageSeen[ImagePath(r.book.CoverImage)] {
		m.CoverImage = ImagePath(r.book.CoverImage)
	}
	if err := pkg.Finish(m); err != nil {
		return nil, fmt.Errorf("finishing package: %w", err)
	}
	return asm, nil
}
