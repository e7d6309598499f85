// Package fb2 tokenizes FictionBook 2 documents for the conversion pipeline.
package fb2

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/alnah/go-fb2epub/internal/pipeline"
)

// ErrSyntax indicates malformed XML in the source.
var ErrSyntax = errors.New("FB2 syntax error")

// Scanner reads a FictionBook document and yields pipeline tokens. Element
// and attribute names lose their namespace prefix, so l:href and xlink:href
// both arrive as href. Nesting is not checked here: the collector reports
// unbalanced markup with unit context.
type Scanner struct {
	dec *xml.Decoder
}

// NewScanner creates a Scanner over r. Non-UTF-8 documents are decoded
// according to their XML declaration.
func NewScanner(r io.Reader) *Scanner {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity
	return &Scanner{dec: dec}
}

// NewBytesScanner creates a Scanner over an in-memory document. Both passes
// use one so the source is read from disk once.
func NewBytesScanner(data []byte) *Scanner {
	return NewScanner(bytes.NewReader(data))
}

// Next returns the next token, io.EOF at the end of the document, or an
// error wrapping ErrSyntax.
func (s *Scanner) Next() (pipeline.Token, error) {
	for {
		line, _ := s.dec.InputPos()
		raw, err := s.dec.RawToken()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return pipeline.Token{}, io.EOF
			}
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return pipeline.Token{}, fmt.Errorf("%w: line %d: %s", ErrSyntax, se.Line, se.Msg)
			}
			return pipeline.Token{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}

		switch v := raw.(type) {
		case xml.StartElement:
			return pipeline.Token{
				Kind:  pipeline.TokenStart,
				Name:  v.Name.Local,
				Attrs: attrs(v.Attr),
				Line:  line,
			}, nil
		case xml.EndElement:
			return pipeline.Token{Kind: pipeline.TokenEnd, Name: v.Name.Local, Line: line}, nil
		case xml.CharData:
			if len(v) == 0 {
				continue
			}
			return pipeline.Token{Kind: pipeline.TokenText, Text: string(v), Line: line}, nil
		}
		// Comments, processing instructions and directives carry no content.
	}
}

func attrs(in []xml.Attr) []pipeline.Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]pipeline.Attr, 0, len(in))
	for _, a := range in {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		out = append(out, pipeline.Attr{Name: a.Name.Local, Value: a.Value})
	}
	return out
}

// Compile-time interface check.
var _ pipeline.Scanner = (*Scanner)(nil)
