package diagram

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tsawler/wordview/model"
)

// Text renders paragraphs as word-wrapped plain text. Each paragraph is
// followed by one blank line; page breaks produce no output.
type Text struct {
	sink[*textRenderer]
}

// NewText creates a text diagram writing to w.
func NewText(w io.Writer, opts *RenderOptions) *Text {
	o := opts.normalized()
	out := newDest(o.Mapping.NewWriter(w))
	return &Text{sink[*textRenderer]{
		r:   &textRenderer{out: out, width: o.Width, showHidden: o.ShowHidden},
		out: out,
	}}
}

type textRenderer struct {
	out        *dest
	width      int
	showHidden bool

	line     strings.Builder
	lineCols int
	hasText  bool
	word     strings.Builder
	wordCols int
}

func (t *textRenderer) openDocument() error                { return nil }
func (t *textRenderer) openParagraph(model.Paragraph) error { return nil }
func (t *textRenderer) pageBreak() error                   { return nil }
func (t *textRenderer) image(*model.Image) error           { return nil }

func (t *textRenderer) closeDocument() error {
	t.commitWord()
	if t.line.Len() > 0 {
		t.flushLine()
	}
	return nil
}

func (t *textRenderer) run(text string, style model.Style) error {
	if style.Hidden && !t.showHidden {
		return nil
	}
	for _, r := range style.Transform(text) {
		switch r {
		case '\n':
			t.commitWord()
			t.flushLine()
		case ' ', '\t':
			t.commitWord()
			t.line.WriteByte(' ')
			t.lineCols++
		default:
			t.word.WriteRune(r)
			t.wordCols += runewidth.RuneWidth(r)
		}
	}
	return nil
}

func (t *textRenderer) closeParagraph() error {
	t.commitWord()
	if t.line.Len() > 0 {
		t.flushLine()
	}
	t.out.WriteString("\n")
	return nil
}

// commitWord moves the pending word onto the line. When the word would
// overflow, a line holding text is wrapped first and a line holding only
// indentation loses it.
func (t *textRenderer) commitWord() {
	if t.word.Len() == 0 {
		return
	}
	if t.width > 0 && t.lineCols > 0 && t.lineCols+t.wordCols > t.width {
		if t.hasText {
			t.flushLine()
		} else {
			t.line.Reset()
			t.lineCols = 0
		}
	}
	t.line.WriteString(t.word.String())
	t.lineCols += t.wordCols
	t.hasText = true
	t.word.Reset()
	t.wordCols = 0
}

func (t *textRenderer) flushLine() {
	t.out.WriteString(strings.TrimRight(t.line.String(), " "))
	t.out.WriteString("\n")
	t.line.Reset()
	t.lineCols = 0
	t.hasText = false
}
