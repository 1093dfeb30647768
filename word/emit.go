package word

import (
	"context"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/wordview/diagram"
	"github.com/tsawler/wordview/model"
)

// Special characters of the text stream.
const (
	chPicture      = 0x01
	chFootnoteRef  = 0x02
	chCellMark     = 0x07
	chTab          = 0x09
	chLineBreak    = 0x0B
	chPageBreak    = 0x0C
	chParagraphEnd = 0x0D
	chFieldBegin   = 0x13
	chFieldSep     = 0x14
	chFieldEnd     = 0x15
	chNonBreakHyph = 0x1E
)

// item is a stretch of equally styled text or a picture of the open
// paragraph.
type item struct {
	text  []byte
	style model.Style
	img   *model.Image
}

type emitter struct {
	ctx    context.Context
	lay    *layout
	sink   diagram.Diagram
	images diagram.ImageSink
	cfg    *config

	// piece decode cache
	pieceIdx int
	runes    []rune

	// character property memo
	memoRun, memoPiece int
	memo               charProps

	items      []item
	inTable    bool
	prevCell   bool
	fields     []bool // true while inside a field's code
	paragraphs int
	broke      bool
	lastFC     uint32
	footnotes  bool
	refs       [2]int
}

func newEmitter(ctx context.Context, lay *layout, sink diagram.Diagram, cfg *config) *emitter {
	e := &emitter{ctx: ctx, lay: lay, sink: sink, cfg: cfg, pieceIdx: -1, memoRun: -2}
	if is, ok := sink.(diagram.ImageSink); ok && cfg.images && len(lay.pictures) > 0 {
		e.images = is
	}
	return e
}

func (e *emitter) run() error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	if err := e.check("open-document", e.sink.OpenDocument()); err != nil {
		return err
	}
	if err := e.walk(0, e.lay.ccpText); err != nil {
		return err
	}
	if e.cfg.footnotes && e.lay.ccpFtn > 0 {
		e.footnotes = true
		e.fields = e.fields[:0]
		if err := e.walk(e.lay.ccpText, e.lay.ccpText+e.lay.ccpFtn); err != nil {
			return err
		}
	}
	return e.check("close-document", e.sink.CloseDocument())
}

// check wraps a diagram failure.
func (e *emitter) check(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindRender, Op: op, Err: err}
}

// walk emits the characters in [from, to) in CP order.
func (e *emitter) walk(from, to uint32) error {
	for pi := range e.lay.pieces {
		pc := &e.lay.pieces[pi]
		if pc.cpEnd <= from || pc.cpStart >= to {
			continue
		}
		runes, err := e.pieceRunes(pi)
		if err != nil {
			return err
		}
		lo, hi := max(from, pc.cpStart), min(to, pc.cpEnd)
		for cp := lo; cp < hi; cp++ {
			i := int(cp - pc.cpStart)
			if i >= len(runes) {
				break
			}
			if runes[i] == noRune {
				continue
			}
			if err := e.char(cp, pc.fcAt(cp), runes[i], pi); err != nil {
				return err
			}
		}
	}
	if len(e.items) > 0 || e.inTable {
		return e.endParagraph(e.lastFC)
	}
	return nil
}

func (e *emitter) pieceRunes(pi int) ([]rune, error) {
	if pi == e.pieceIdx {
		return e.runes, nil
	}
	runes, err := e.lay.pieces[pi].decode(e.lay.main, e.cfg)
	if err != nil {
		return nil, err
	}
	e.pieceIdx, e.runes = pi, runes
	return runes, nil
}

func (e *emitter) props(fc uint32, pi int) charProps {
	run := e.lay.chpx.find(fc)
	if run == e.memoRun && pi == e.memoPiece {
		return e.memo
	}
	c := e.lay.charProps(run, &e.lay.pieces[pi])
	c.style.FontName = e.lay.fonts.name(c.style.FontID)
	e.memoRun, e.memoPiece, e.memo = run, pi, c
	return c
}

// inFieldCode reports whether any open field is still in its code part.
func (e *emitter) inFieldCode() bool {
	for _, code := range e.fields {
		if code {
			return true
		}
	}
	return false
}

func (e *emitter) char(cp, fc uint32, r rune, pi int) error {
	e.lastFC = fc
	switch r {
	case chFieldBegin:
		e.fields = append(e.fields, true)
		return nil
	case chFieldSep:
		if n := len(e.fields); n > 0 {
			e.fields[n-1] = false
		}
		return nil
	case chFieldEnd:
		if n := len(e.fields); n > 0 {
			e.fields = e.fields[:n-1]
		}
		return nil
	case chParagraphEnd:
		e.prevCell = false
		return e.endParagraph(fc)
	case chCellMark:
		return e.cellMark(fc, e.props(fc, pi).style)
	case chPageBreak:
		e.prevCell = false
		return e.pageBreak(cp, fc)
	}
	e.prevCell = false
	if e.inFieldCode() {
		return nil
	}

	props := e.props(fc, pi)
	switch r {
	case chPicture:
		return e.picture(props)
	case chFootnoteRef:
		if props.special {
			k := 0
			if e.footnotes {
				k = 1
			}
			e.refs[k]++
			e.text("["+strconv.Itoa(e.refs[k])+"]", props.style)
		}
		return nil
	case chLineBreak:
		e.text("\n", props.style)
		return nil
	case chTab:
		e.text("\t", props.style)
		return nil
	case chNonBreakHyph:
		e.text("-", props.style)
		return nil
	}
	if r < 0x20 {
		return nil
	}
	e.appendRune(r, props.style)
	return nil
}

func (e *emitter) appendRune(r rune, style model.Style) {
	if n := len(e.items); n > 0 && e.items[n-1].img == nil && e.items[n-1].style == style {
		e.items[n-1].text = utf8.AppendRune(e.items[n-1].text, r)
		return
	}
	e.items = append(e.items, item{text: utf8.AppendRune(nil, r), style: style})
}

func (e *emitter) text(s string, style model.Style) {
	for _, r := range s {
		e.appendRune(r, style)
	}
}

// cellMark ends a cell, or the row when the mark closes a table row.
func (e *emitter) cellMark(fc uint32, style model.Style) error {
	e.inTable = true
	if e.prevCell || e.lay.paraProps(fc).rowEnd {
		e.prevCell = false
		return e.endParagraph(fc)
	}
	e.prevCell = true
	if !e.inFieldCode() {
		e.text("|", style)
	}
	return nil
}

func (e *emitter) pageBreak(cp, fc uint32) error {
	if len(e.items) > 0 || e.inTable {
		if err := e.endParagraph(fc); err != nil {
			return err
		}
	}
	if e.footnotes || !e.breaksPage(cp) || e.broke {
		return nil
	}
	if err := e.ctx.Err(); err != nil {
		return err
	}
	e.broke = true
	return e.check("page-break", e.sink.PageBreak())
}

// breaksPage decides whether the 0x0C at cp starts a new page.
func (e *emitter) breaksPage(cp uint32) bool {
	secs := e.lay.sections
	if len(secs) < 2 {
		return true
	}
	next := cp + 1
	if next >= secs[len(secs)-1].cp {
		return false
	}
	for _, s := range secs[1 : len(secs)-1] {
		if s.cp == next {
			return s.newPage
		}
	}
	return true
}

func (e *emitter) picture(props charProps) error {
	if e.images == nil || !props.special || !props.hasPic {
		return nil
	}
	img, err := e.lay.picture(props.picFC, e.cfg)
	if err != nil || img == nil {
		return err
	}
	e.items = append(e.items, item{img: img})
	return nil
}

// endParagraph sends the buffered paragraph, whose mark is at markFC.
func (e *emitter) endParagraph(markFC uint32) error {
	if err := e.ctx.Err(); err != nil {
		return err
	}
	items, inTable := e.items, e.inTable
	e.items, e.inTable, e.prevCell = nil, false, false

	para := e.lay.paraProps(markFC).para
	if inTable {
		para.InTable = true
	}
	if para.PageBreakBefore && e.paragraphs > 0 && !e.broke {
		if err := e.check("page-break", e.sink.PageBreak()); err != nil {
			return err
		}
	}
	e.paragraphs++
	e.broke = false

	if err := e.check("open-paragraph", e.sink.OpenParagraph(para)); err != nil {
		return err
	}
	if para.InTable {
		if len(items) > 0 && items[0].img == nil {
			items[0].text = append([]byte{'|'}, items[0].text...)
		} else {
			items = append([]item{{text: []byte{'|'}}}, items...)
		}
	}
	for _, it := range items {
		var err error
		if it.img != nil {
			err = e.check("image", e.images.DrawImage(it.img))
		} else {
			err = e.check("run", e.sink.EmitRun(norm.NFC.String(string(it.text)), it.style))
		}
		if err != nil {
			return err
		}
	}
	return e.check("close-paragraph", e.sink.CloseParagraph())
}
