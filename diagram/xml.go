package diagram

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/tsawler/wordview/model"
)

// XML renders one DocBook <book> per document. The XML prolog and the
// <set> element that groups several books belong to the caller.
type XML struct {
	sink[*xmlRenderer]
}

// NewXML creates a DocBook diagram for the named file.
func NewXML(file string, w io.Writer, opts *RenderOptions) *XML {
	o := opts.normalized()
	out := newDest(w)
	r := &xmlRenderer{out: out, title: file, showHidden: o.ShowHidden}
	if o.Wrapped {
		r.indent = 1
		r.id = BookID(file)
	}
	return &XML{sink[*xmlRenderer]{r: r, out: out}}
}

type xmlRenderer struct {
	out        *dest
	title      string
	id         string
	indent     int
	showHidden bool
}

func (x *xmlRenderer) line(depth int, s string) {
	x.out.WriteString(strings.Repeat("  ", x.indent+depth))
	x.out.WriteString(s)
	x.out.WriteString("\n")
}

func (x *xmlRenderer) openDocument() error {
	if x.id != "" {
		x.line(0, `<book id="`+escapeXML(x.id)+`">`)
	} else {
		x.line(0, "<book>")
	}
	x.line(1, "<bookinfo>")
	x.line(2, "<title>"+escapeXML(filepath.Base(x.title))+"</title>")
	x.line(1, "</bookinfo>")
	x.line(1, "<chapter>")
	x.line(2, "<title></title>")
	return nil
}

func (x *xmlRenderer) openParagraph(model.Paragraph) error {
	x.out.WriteString(strings.Repeat("  ", x.indent+2))
	x.out.WriteString("<para>")
	return nil
}

func (x *xmlRenderer) run(text string, style model.Style) error {
	if style.Hidden && !x.showHidden {
		return nil
	}
	text = escapeXML(style.Transform(text))
	if text == "" {
		return nil
	}
	var openTags, closeTags []string
	for _, e := range []struct {
		on  bool
		tag string
	}{
		{style.Bold, `<emphasis role="bold">`},
		{style.Italic, `<emphasis>`},
		{style.Underline, `<emphasis role="underline">`},
		{style.Strike, `<emphasis role="strikethrough">`},
	} {
		if e.on {
			openTags = append(openTags, e.tag)
			closeTags = append(closeTags, "</emphasis>")
		}
	}
	x.out.WriteString(strings.Join(openTags, ""))
	x.out.WriteString(text)
	x.out.WriteString(strings.Join(closeTags, ""))
	return nil
}

func (x *xmlRenderer) closeParagraph() error {
	x.out.WriteString("</para>\n")
	return nil
}

func (x *xmlRenderer) pageBreak() error {
	x.line(2, "<?hard-pagebreak?>")
	return nil
}

func (x *xmlRenderer) image(*model.Image) error { return nil }

func (x *xmlRenderer) closeDocument() error {
	x.line(1, "</chapter>")
	x.line(0, "</book>")
	return nil
}

// escapeXML escapes markup characters and drops code points that XML 1.0
// does not allow.
func escapeXML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&apos;")
		default:
			if validXMLChar(r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func validXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

// BookID derives an XML id from a file name: the base name with
// characters outside [A-Za-z0-9._-] replaced, prefixed when it does not
// start with a letter.
func BookID(file string) string {
	base := filepath.Base(file)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	id := b.String()
	if id == "" || !(id[0] >= 'a' && id[0] <= 'z' || id[0] >= 'A' && id[0] <= 'Z') {
		id = "doc-" + id
	}
	return id
}
