package pipeline

import "strings"

// BookInfo is the publication metadata found in the document description.
type BookInfo struct {
	Title          string
	Authors        []string
	Language       string
	Genres         []string
	Sequence       string
	SequenceNumber string
	Date           string
	DocumentID     string
	CoverImage     string // binary id of the cover page image
}

// Binary describes an embedded <binary> resource.
type Binary struct {
	ID          string
	ContentType string
	Size        int // encoded length
}

// metaCollector gathers BookInfo while the collector walks the description.
type metaCollector struct {
	info   BookInfo
	title  strings.Builder
	date   strings.Builder
	genre  strings.Builder
	docID  strings.Builder
	lang   strings.Builder
	author [4]strings.Builder // first, middle, last, nickname
}

var authorParts = map[string]int{
	"first-name":  0,
	"middle-name": 1,
	"last-name":   2,
	"nickname":    3,
}

// hasSuffix reports whether the open element stack ends with names.
func hasSuffix(elems []string, names ...string) bool {
	if len(elems) < len(names) {
		return false
	}
	off := len(elems) - len(names)
	for i, n := range names {
		if elems[off+i] != n {
			return false
		}
	}
	return true
}

// start is called after the element has been pushed.
func (m *metaCollector) start(elems []string, tok Token) {
	switch {
	case hasSuffix(elems, "title-info", "sequence"):
		if m.info.Sequence == "" {
			m.info.Sequence, _ = tok.Attr("name")
			m.info.SequenceNumber, _ = tok.Attr("number")
		}
	case hasSuffix(elems, "title-info", "date"):
		if v, ok := tok.Attr("value"); ok && m.info.Date == "" {
			m.info.Date = v
		}
	case hasSuffix(elems, "title-info", "coverpage", "image"):
		if href, ok := tok.Attr("href"); ok && m.info.CoverImage == "" {
			m.info.CoverImage = strings.TrimPrefix(href, "#")
		}
	}
}

// text is called with the element stack enclosing the text.
func (m *metaCollector) text(elems []string, s string) {
	switch {
	case hasSuffix(elems, "title-info", "book-title"):
		m.title.WriteString(s)
	case hasSuffix(elems, "title-info", "date"):
		m.date.WriteString(s)
	case hasSuffix(elems, "title-info", "genre"):
		m.genre.WriteString(s)
	case hasSuffix(elems, "title-info", "lang"):
		m.lang.WriteString(s)
	case hasSuffix(elems, "document-info", "id"):
		m.docID.WriteString(s)
	case len(elems) >= 3 && hasSuffix(elems[:len(elems)-1], "title-info", "author"):
		if i, ok := authorParts[elems[len(elems)-1]]; ok {
			m.author[i].WriteString(s)
		}
	}
}

// end is called before the element is popped.
func (m *metaCollector) end(elems []string) {
	switch {
	case hasSuffix(elems, "title-info", "genre"):
		if g := collapse(m.genre.String()); g != "" {
			m.info.Genres = append(m.info.Genres, g)
		}
		m.genre.Reset()
	case hasSuffix(elems, "title-info", "author"):
		var parts []string
		for i := 0; i < 3; i++ {
			if p := collapse(m.author[i].String()); p != "" {
				parts = append(parts, p)
			}
		}
		name := strings.Join(parts, " ")
		if name == "" {
			name = collapse(m.author[3].String())
		}
		if name != "" {
			m.info.Authors = append(m.info.Authors, name)
		}
		for i := range m.author {
			m.author[i].Reset()
		}
	}
}

// result returns the collected metadata.
func (m *metaCollector) result() BookInfo {
	info := m.info
	info.Title = collapse(m.title.String())
	info.Language = collapse(m.lang.String())
	info.DocumentID = collapse(m.docID.String())
	if info.Date == "" {
		info.Date = collapse(m.date.String())
	}
	return info
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
