package pipeline

// openUnit is a unit whose element has not been closed yet.
type openUnit struct {
	index int
	depth int // element stack depth of the unit element
}

// tracker follows element nesting and recognizes unit boundaries. Both passes
// drive one, so they agree on where units start and end.
type tracker struct {
	elems  []string
	open   []openUnit
	inBody bool
	body   BodyType
}

// bodyTypeFor maps the name attribute of <body>.
func bodyTypeFor(name string) BodyType {
	switch name {
	case "notes":
		return BodyNotes
	case "comments":
		return BodyComments
	default:
		return BodyMain
	}
}

// parent returns the name of the innermost open element.
func (t *tracker) parent() string {
	if len(t.elems) == 0 {
		return ""
	}
	return t.elems[len(t.elems)-1]
}

// grandparent returns the name of the element enclosing the parent.
func (t *tracker) grandparent() string {
	if len(t.elems) < 2 {
		return ""
	}
	return t.elems[len(t.elems)-2]
}

// within reports whether name is open anywhere on the stack.
func (t *tracker) within(name string) bool {
	for _, e := range t.elems {
		if e == name {
			return true
		}
	}
	return false
}

// inRegion reports whether content at this point is written to output.
func (t *tracker) inRegion() bool {
	return t.inBody || len(t.open) > 0
}

// innermost returns the innermost open unit or NoParent.
func (t *tracker) innermost() int {
	if len(t.open) == 0 {
		return NoParent
	}
	return t.open[len(t.open)-1].index
}

// classify decides whether a start element opens a unit. It must be called
// before push.
func (t *tracker) classify(tok Token) (UnitType, BodyType, bool) {
	if t.inBody {
		switch tok.Name {
		case "section":
			return UnitSection, t.body, true
		case "title":
			if t.parent() == "body" {
				return UnitTitle, t.body, true
			}
		case "image":
			if t.parent() == "body" {
				return UnitImage, t.body, true
			}
		}
		return UnitNone, t.body, false
	}
	if t.parent() == "title-info" && t.grandparent() == "description" {
		switch tok.Name {
		case "coverpage":
			return UnitCoverPage, BodyNone, true
		case "annotation":
			return UnitAnnotation, BodyNone, true
		}
	}
	return UnitNone, BodyNone, false
}

// push enters a start element. Body elements switch the body type.
func (t *tracker) push(tok Token) {
	if tok.Name == "body" && !t.inBody && len(t.open) == 0 {
		name, _ := tok.Attr("name")
		t.inBody = true
		t.body = bodyTypeFor(name)
	}
	t.elems = append(t.elems, tok.Name)
}

// openUnit records that the element just pushed opened unit index.
func (t *tracker) openUnit(index int) {
	t.open = append(t.open, openUnit{index: index, depth: len(t.elems)})
}

// pop leaves an end element. It returns the unit closed by it, or NoUnit,
// and whether the enclosing body ended.
func (t *tracker) pop(tok Token) (closed int, bodyEnd bool, err error) {
	if len(t.elems) == 0 || t.parent() != tok.Name {
		msg := "unexpected end tag"
		if len(t.elems) > 0 {
			msg = "end tag does not match <" + t.parent() + ">"
		}
		return NoUnit, false, &StructureError{Unit: t.innermost(), Element: tok.Name, Line: tok.Line, Msg: msg}
	}
	closed = NoUnit
	if n := len(t.open); n > 0 && t.open[n-1].depth == len(t.elems) {
		closed = t.open[n-1].index
		t.open = t.open[:n-1]
	}
	t.elems = t.elems[:len(t.elems)-1]
	if tok.Name == "body" && t.inBody && !t.within("body") {
		t.inBody = false
		bodyEnd = true
	}
	return closed, bodyEnd, nil
}

// unclosed returns an error when elements remain open at end of stream.
func (t *tracker) unclosed(line int) error {
	if len(t.elems) == 0 {
		return nil
	}
	return &StructureError{
		Unit:    t.innermost(),
		Element: t.parent(),
		Line:    line,
		Msg:     "unexpected end of document with open elements",
	}
}
