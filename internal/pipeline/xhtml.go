package pipeline

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// ImageDir is the package directory that holds decoded binaries.
const ImageDir = "images"

// StyleDir is the package directory that holds stylesheets.
const StyleDir = "css"

// blockTag maps a source element to the XHTML element that renders it.
type blockTag struct {
	tag   string
	class string
}

// elementTags lists elements rendered one to one. Elements missing here
// (body, unknown extensions) are transparent: their content is kept, their
// tag is not. title, image, a and empty-line are handled separately.
var elementTags = map[string]blockTag{
	"section":       {tag: "div", class: "section"},
	"coverpage":     {tag: "div", class: "coverpage"},
	"annotation":    {tag: "div", class: "annotation"},
	"epigraph":      {tag: "div", class: "epigraph"},
	"cite":          {tag: "div", class: "cite"},
	"poem":          {tag: "div", class: "poem"},
	"stanza":        {tag: "div", class: "stanza"},
	"p":             {tag: "p"},
	"v":             {tag: "p", class: "v"},
	"subtitle":      {tag: "p", class: "subtitle"},
	"text-author":   {tag: "p", class: "text-author"},
	"date":          {tag: "p", class: "date"},
	"emphasis":      {tag: "em"},
	"strong":        {tag: "strong"},
	"strikethrough": {tag: "del"},
	"sub":           {tag: "sub"},
	"sup":           {tag: "sup"},
	"code":          {tag: "code"},
	"style":         {tag: "span"},
	"table":         {tag: "table"},
	"tr":            {tag: "tr"},
	"td":            {tag: "td"},
	"th":            {tag: "th"},
}

// inlineParents are elements whose image children render inline.
var inlineParents = map[string]bool{
	"p": true, "v": true, "subtitle": true, "text-author": true,
	"td": true, "th": true, "emphasis": true, "strong": true,
}

// passAttrs are copied verbatim from source to output.
var passAttrs = map[string]bool{"colspan": true, "rowspan": true, "align": true}

// ImageName maps a binary id to a safe file name inside ImageDir.
func ImageName(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if name == "" {
		name = "image"
	}
	return name
}

// ImagePath returns the package path of a binary.
func ImagePath(id string) string {
	return ImageDir + "/" + ImageName(id)
}

// bodyClass is the class of the body element of a file starting with a unit
// of body type b.
func bodyClass(b BodyType) string {
	if b == BodyNone {
		return "description"
	}
	return b.String()
}

// attr renders one escaped attribute with a leading space.
func attr(name, value string) string {
	return " " + name + `="` + html.EscapeString(value) + `"`
}

// openTag renders a start tag.
func openTag(tag, class, id string) string {
	var b strings.Builder
	b.WriteString("<" + tag)
	if class != "" {
		b.WriteString(attr("class", class))
	}
	if id != "" {
		b.WriteString(attr("id", id))
	}
	b.WriteString(">")
	return b.String()
}

// documentHead writes the XHTML prolog through the opening body tag.
func documentHead(buf *bytes.Buffer, title, lang, bodyClass string, styles []Resource) {
	if lang == "" {
		lang = "en"
	}
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.1//EN" "http://www.w3.org/TR/xhtml11/DTD/xhtml11.dtd">` + "\n")
	fmt.Fprintf(buf, `<html xmlns="http://www.w3.org/1999/xhtml" xml:lang="%s">`+"\n", html.EscapeString(lang))
	buf.WriteString("<head>\n")
	buf.WriteString(`<meta http-equiv="Content-Type" content="application/xhtml+xml; charset=utf-8"/>` + "\n")
	fmt.Fprintf(buf, "<title>%s</title>\n", html.EscapeString(title))
	for _, s := range styles {
		fmt.Fprintf(buf, `<link rel="stylesheet" type="text/css" href="%s"/>`+"\n", html.EscapeString(StyleDir+"/"+s.Name))
	}
	buf.WriteString("</head>\n")
	buf.WriteString(openTag("body", bodyClass, "") + "\n")
}

// documentTail closes what documentHead opened.
func documentTail(buf *bytes.Buffer) {
	buf.WriteString("\n</body>\n</html>\n")
}
