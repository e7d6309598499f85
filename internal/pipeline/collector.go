package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ctxCheckInterval is the number of tokens between cancellation checks.
const ctxCheckInterval = 4096

// Collection is the result of pass 1.
type Collection struct {
	Units      Units
	Index      *Index
	Book       BookInfo
	Binaries   []Binary
	Duplicates []string // ids defined more than once, in document order
	Dropped    int      // content cost inside a body that no unit could own
}

// pending holds body content seen before the first unit of that body. It is
// handed to the next unit that opens in the same body.
type pending struct {
	size int
	ids  []string
	refs []string
}

func (p *pending) empty() bool {
	return p.size == 0 && len(p.ids) == 0 && len(p.refs) == 0
}

type collector struct {
	cfg      Config
	tr       tracker
	col      *Collection
	counters map[[2]int]int
	current  int
	pend     pending
	meta     metaCollector

	titleUnit  int
	titleDepth int
	titleText  strings.Builder

	binary *Binary
	line   int
}

// Collect runs pass 1 over s. It returns a *StructureError for unbalanced
// markup and a *LexicalError when the scanner fails.
func Collect(ctx context.Context, s Scanner, cfg Config) (*Collection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &collector{
		cfg:       cfg,
		col:       &Collection{Index: NewIndex()},
		counters:  make(map[[2]int]int),
		current:   NoUnit,
		titleUnit: NoUnit,
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
			return nil, &LexicalError{Unit: c.tr.innermost(), Line: c.line, Err: err}
		}
		if tok.Line > 0 {
			c.line = tok.Line
		}
		switch tok.Kind {
		case TokenStart:
			c.start(tok)
		case TokenEnd:
			if err := c.end(tok); err != nil {
				return nil, err
			}
		case TokenText:
			c.text(tok.Text)
		}
	}

	if err := c.tr.unclosed(c.line); err != nil {
		return nil, err
	}
	c.col.Book = c.meta.result()
	return c.col, nil
}

func (c *collector) start(tok Token) {
	typ, body, opens := c.tr.classify(tok)
	parent := c.tr.innermost()
	c.tr.push(tok)
	c.meta.start(c.tr.elems, tok)

	if opens {
		c.openUnit(typ, body, parent)
	}

	if !c.tr.inRegion() {
		if tok.Name == "binary" {
			id, _ := tok.Attr("id")
			ct, _ := tok.Attr("content-type")
			c.col.Binaries = append(c.col.Binaries, Binary{ID: id, ContentType: ct})
			c.binary = &c.col.Binaries[len(c.col.Binaries)-1]
			return
		}
		if id, ok := tok.Attr("id"); ok && id != "" {
			if _, fresh := c.col.Index.Register(id, NoUnit); !fresh {
				c.col.Duplicates = append(c.col.Duplicates, id)
			}
		}
		return
	}

	c.charge(c.cfg.ElementCost)

	if id, ok := tok.Attr("id"); ok && id != "" {
		canonical, fresh := c.col.Index.Register(id, c.current)
		switch {
		case !fresh:
			c.col.Duplicates = append(c.col.Duplicates, id)
		case c.current == NoUnit:
			c.pend.ids = append(c.pend.ids, canonical)
		default:
			u := &c.col.Units[c.current]
			u.RefIDs = append(u.RefIDs, canonical)
			if opens {
				u.Anchor = canonical
			}
		}
	}

	if tok.Name == "a" {
		if href, ok := tok.Attr("href"); ok && strings.HasPrefix(href, "#") && len(href) > 1 {
			c.addRef(href[1:])
		}
	}

	if c.titleUnit != NoUnit && (tok.Name == "p" || tok.Name == "empty-line") {
		c.titleText.WriteByte(' ')
	}

	if tok.Name == "title" && c.titleUnit == NoUnit {
		owner := NoUnit
		switch {
		case opens:
			owner = c.current
		case c.tr.grandparent() == "section" && parent != NoParent &&
			c.col.Units[parent].Type == UnitSection && c.sectionDepth(parent) == len(c.tr.elems)-1:
			owner = parent
		}
		if owner != NoUnit && c.col.Units[owner].Title == "" {
			c.titleUnit = owner
			c.titleDepth = len(c.tr.elems)
			c.titleText.Reset()
		}
	}
}

// sectionDepth returns the element depth at which open unit i started.
func (c *collector) sectionDepth(i int) int {
	for _, o := range c.tr.open {
		if o.index == i {
			return o.depth
		}
	}
	return -1
}

func (c *collector) openUnit(typ UnitType, body BodyType, parent int) {
	key := [2]int{int(typ), int(body)}
	c.counters[key]++
	idx := len(c.col.Units)
	u := Unit{
		BodyType: body,
		Type:     typ,
		ID:       c.counters[key],
		Parent:   parent,
		Size:     c.pend.size,
		RefIDs:   c.pend.ids,
	}
	for _, r := range c.pend.refs {
		u.Refs = addRef(u.Refs, r)
	}
	for _, id := range c.pend.ids {
		c.col.Index.SetOwner(id, idx)
	}
	c.pend = pending{}
	c.col.Units = append(c.col.Units, u)
	c.tr.openUnit(idx)
	c.current = idx
}

func (c *collector) end(tok Token) error {
	c.meta.end(c.tr.elems)
	if c.titleUnit != NoUnit && len(c.tr.elems) == c.titleDepth && tok.Name == "title" {
		c.col.Units[c.titleUnit].Title = collapse(c.titleText.String())
		c.titleUnit = NoUnit
	}
	if tok.Name == "binary" {
		c.binary = nil
	}

	closed, bodyEnd, err := c.tr.pop(tok)
	if err != nil {
		return err
	}
	if closed != NoUnit {
		c.closeUnit(closed)
	}
	if bodyEnd {
		if !c.pend.empty() {
			c.col.Dropped += c.pend.size
			c.pend = pending{}
		}
		c.current = NoUnit
	}
	if !c.tr.inRegion() {
		c.current = NoUnit
	}
	return nil
}

// closeUnit marks addressable notes once their content is complete.
func (c *collector) closeUnit(i int) {
	u := &c.col.Units[i]
	if u.Type != UnitSection || (u.BodyType != BodyNotes && u.BodyType != BodyComments) {
		return
	}
	if u.Anchor != "" && len(u.RefIDs) == 1 && u.RefIDs[0] == u.Anchor {
		u.NoteRefID = u.Anchor
	}
}

func (c *collector) text(s string) {
	if c.binary != nil {
		c.binary.Size += len(s)
		return
	}
	c.meta.text(c.tr.elems, s)
	if !c.tr.inRegion() {
		return
	}
	c.charge(len(s))
	if c.titleUnit != NoUnit {
		c.titleText.WriteString(s)
	}
}

// charge attributes content cost to the current unit or to pending content.
func (c *collector) charge(n int) {
	if c.current == NoUnit {
		c.pend.size += n
		return
	}
	c.col.Units[c.current].Size += n
}

func (c *collector) addRef(id string) {
	if c.current == NoUnit {
		c.pend.refs = append(c.pend.refs, id)
		return
	}
	u := &c.col.Units[c.current]
	u.Refs = addRef(u.Refs, id)
}
