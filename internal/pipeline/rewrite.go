package pipeline

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// refAttr marks a link whose target was not known when it was written.
const refAttr = "data-ref"

// rewrite replaces every data-ref placeholder in a finished document with
// its resolved href. Links that still have no target get the configured
// fallback. Everything else is copied byte for byte.
func (r *run) rewrite(src []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(src))
	var out bytes.Buffer
	out.Grow(len(src))
	var dropEnd []bool // one entry per open <a>

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out.Bytes(), nil
			}
			return nil, z.Err()

		case html.StartTagToken:
			raw := z.Raw()
			tok := z.Token()
			if tok.Data != "a" {
				out.Write(raw)
				continue
			}
			ref, ok := tokenAttr(tok, refAttr)
			if !ok {
				out.Write(raw)
				dropEnd = append(dropEnd, false)
				continue
			}
			if t, found := r.idx.Lookup(ref); found {
				out.WriteString(rebuildAnchor(tok, t.Href()))
				dropEnd = append(dropEnd, false)
				continue
			}
			r.warn(ref, NoUnit, "not emitted")
			if r.cfg.Fallback == FallbackDeadLink {
				out.WriteString(rebuildAnchor(tok, "#"+ref))
				dropEnd = append(dropEnd, false)
				continue
			}
			if id, ok := tokenAttr(tok, "id"); ok {
				out.WriteString(openTag("span", "", id) + "</span>")
			}
			dropEnd = append(dropEnd, true)

		case html.EndTagToken:
			raw := z.Raw()
			name, _ := z.TagName()
			if string(name) == "a" && len(dropEnd) > 0 {
				drop := dropEnd[len(dropEnd)-1]
				dropEnd = dropEnd[:len(dropEnd)-1]
				if drop {
					continue
				}
			}
			out.Write(raw)

		default:
			out.Write(z.Raw())
		}
	}
}

func tokenAttr(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// rebuildAnchor renders tok with href replaced and the placeholder removed.
func rebuildAnchor(tok html.Token, href string) string {
	var b strings.Builder
	b.WriteString("<a")
	for _, a := range tok.Attr {
		if a.Key == "href" || a.Key == refAttr {
			continue
		}
		b.WriteString(attr(a.Key, a.Val))
	}
	b.WriteString(attr("href", href))
	b.WriteString(">")
	return b.String()
}
