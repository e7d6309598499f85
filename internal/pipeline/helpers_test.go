package pipeline

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

// tokenize turns a small XML document into tokens the way the FB2 lexer
// does: local names only, namespace declarations skipped.
func tokenize(t testing.TB, src string) []Token {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(src))
	var out []Token
	for {
		line, _ := d.InputPos()
		tok, err := d.RawToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("tokenize: %v", err)
		}
		switch v := tok.(type) {
		case xml.StartElement:
			var attrs []Attr
			for _, a := range v.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				attrs = append(attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			out = append(out, Token{Kind: TokenStart, Name: v.Name.Local, Attrs: attrs, Line: line})
		case xml.EndElement:
			out = append(out, Token{Kind: TokenEnd, Name: v.Name.Local, Line: line})
		case xml.CharData:
			out = append(out, Token{Kind: TokenText, Text: string(v), Line: line})
		}
	}
}

// fb2 wraps body markup in a minimal document.
func fb2(bodies string) string {
	return `<FictionBook xmlns="http://www.gribuser.ru/xml/fictionbook/2.0" xmlns:l="http://www.w3.org/1999/xlink">` +
		`<description><title-info><book-title>Test Book</book-title><lang>en</lang></title-info></description>` +
		bodies + `</FictionBook>`
}

func mustCollect(t testing.TB, src string, cfg Config) *Collection {
	t.Helper()
	col, err := Collect(context.Background(), NewSliceScanner(tokenize(t, src)), cfg)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	return col
}

// testConfig returns a config without element cost so sizes equal text
// lengths.
func testConfig(maxUnitSize int) Config {
	cfg := DefaultConfig()
	cfg.MaxUnitSize = maxUnitSize
	cfg.ElementCost = 0
	return cfg
}

// memPackager records what the assembler hands over.
type memPackager struct {
	files    []File
	manifest *Manifest
	addErr   error
}

func (m *memPackager) AddFile(f File) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.files = append(m.files, f)
	return nil
}

func (m *memPackager) Finish(mf Manifest) error {
	m.manifest = &mf
	return nil
}

var _ Packager = (*memPackager)(nil)

// errScanner fails after replaying tokens.
type errScanner struct {
	inner *SliceScanner
	err   error
}

func (s *errScanner) Next() (Token, error) {
	tok, err := s.inner.Next()
	if errors.Is(err, io.EOF) {
		return Token{}, s.err
	}
	return tok, err
}

// upper is a Transliterator that upper-cases text.
type upper struct{}

func (upper) Transliterate(s string) string { return strings.ToUpper(s) }
