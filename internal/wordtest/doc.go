package wordtest

import (
	"encoding/binary"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// NoMark leaves a paragraph without a terminating character.
const NoMark rune = -1

// NoSEPX as a section break code writes the section without properties.
const NoSEPX byte = 0xFF

// Picture is an embedded image stored behind a PICF header.
type Picture struct {
	Data []byte
	// Header is written between the PICF header and Data.
	Header                  []byte
	WidthTwips, HeightTwips int16
	// ScaleX and ScaleY are in 0.1%; zero means 100%.
	ScaleX, ScaleY uint16
}

// Run is a span of text with character formatting.
type Run struct {
	Text                                                     string
	Bold, Italic, Underline, Strike, Hidden, Caps, SmallCaps bool
	Font                                                     uint16
	HalfPoints                                               uint16
	// Special sets fSpec, used by footnote references and pictures.
	Special bool
	Picture *Picture
}

// Paragraph is a sequence of runs followed by Mark.
type Paragraph struct {
	Runs []Run
	// Mark terminates the paragraph: 0 means '\r' ('\f' when EndsSection).
	Mark            rune
	Justification   byte
	PageBreakBefore bool
	InTable         bool
	RowEnd          bool
	EndsSection     bool
	// PieceBold makes the paragraph's piece bold through its prm. It
	// needs Doc.Pieces.
	PieceBold bool
}

// Doc describes a synthetic document.
type Doc struct {
	Paragraphs []Paragraph
	Footnotes  []Paragraph
	Fonts      []string
	// SectionBreaks holds the break code of each section after the
	// first; missing entries mean 2 (new page).
	SectionBreaks []byte
	LID           uint16
	NFib          uint16
	Encrypted     bool
	// CodePage encodes 8-bit text; nil means Windows-1252.
	CodePage *charmap.Charmap
	// Unicode stores Word 97 text as UTF-16 instead of compressed bytes.
	Unicode bool
	// Pieces gives every paragraph its own piece, stored in reverse
	// order. Word 97 pieces alternate between compressed and UTF-16.
	Pieces bool
	// Complex writes a piece table for Word 6 even without Pieces.
	Complex bool
}

type version int

const (
	winword2 version = iota
	word6
	word97
)

func (v version) fibSize() int {
	switch v {
	case winword2:
		return 0x180
	case word6:
		return 0x200
	}
	return 0x400
}

// Word97 returns a Word 97 compound file.
func Word97(d Doc) []byte { return Compound(Word97Streams(d)) }

// Word6 returns a Word 6 compound file; set Doc.NFib to 104 for Word 7.
func Word6(d Doc) []byte { return Compound(Word6Streams(d)) }

// Word97Streams returns the streams of a Word 97 document so that tests
// can damage them before calling Compound.
func Word97Streams(d Doc) map[string][]byte {
	b := newBuilder(word97, d)
	b.build()
	streams := map[string][]byte{"WordDocument": b.main, "1Table": b.table}
	if len(b.data) > 0 {
		streams["Data"] = b.data
	}
	return streams
}

// Word6Streams returns the streams of a Word 6 document.
func Word6Streams(d Doc) map[string][]byte {
	b := newBuilder(word6, d)
	b.build()
	return map[string][]byte{"WordDocument": b.main}
}

// WinWord2 returns a flat WinWord 2 file. Pictures are not written.
func WinWord2(d Doc) []byte {
	b := newBuilder(winword2, d)
	b.build()
	return b.main
}

type unit struct {
	code  uint16
	width int
	run   *Run
	para  int
	fc    uint32
}

type piece struct {
	cpStart, cpEnd int
	unicode        bool
	bold           bool
	off            int
}

type fcRun struct {
	start, end uint32
	props      []byte
	key        string
}

type builder struct {
	v     version
	d     Doc
	cp    *charmap.Charmap
	main  []byte
	table []byte
	data  []byte

	paras      []Paragraph
	units      []unit
	pieces     []piece
	sectionCPs []int
	ccpText    int
	picFC      map[*Run]uint32
	fib        map[int][2]uint32
}

func newBuilder(v version, d Doc) *builder {
	b := &builder{v: v, d: d, cp: d.CodePage, picFC: make(map[*Run]uint32), fib: make(map[int][2]uint32)}
	if b.cp == nil {
		b.cp = charmap.Windows1252
	}
	return b
}

var le = binary.LittleEndian

func (b *builder) complex() bool {
	return b.v == word97 || (b.v == word6 && (b.d.Pieces || b.d.Complex))
}

func (b *builder) unicodePiece(i int) bool {
	if b.v != word97 {
		return false
	}
	return b.d.Unicode != (b.d.Pieces && i%2 == 1)
}

func (b *builder) build() {
	b.collect()
	b.placeText()
	fcMac := len(b.main)
	b.placePictures()

	b.align(512)
	chpx := b.chpxRuns()
	b.writeBTE(12, chpx, 1)
	if b.v != winword2 {
		bx := 13
		if b.v == word6 {
			bx = 7
		}
		b.writeBTE(13, b.papxRuns(), bx)
	}
	b.writeSections()
	if b.complex() {
		b.writeCLX()
	}
	b.writeFonts()
	b.writeFIB(fcMac)
}

func (b *builder) collect() {
	b.paras = append(append([]Paragraph(nil), b.d.Paragraphs...), b.d.Footnotes...)
	b.sectionCPs = []int{0}
	start := 0
	for i := range b.paras {
		p := &b.paras[i]
		uni := b.unicodePiece(i)
		for j := range p.Runs {
			r := &p.Runs[j]
			for _, c := range r.Text {
				b.appendRune(c, uni, r, i)
			}
		}
		mark := p.Mark
		if mark == 0 {
			mark = '\r'
			if p.EndsSection {
				mark = '\f'
			}
		}
		if mark != NoMark {
			b.appendRune(mark, uni, nil, i)
		}
		if i == len(b.d.Paragraphs)-1 {
			b.ccpText = len(b.units)
		}
		if p.EndsSection && i < len(b.d.Paragraphs) {
			b.sectionCPs = append(b.sectionCPs, len(b.units))
		}
		if b.d.Pieces {
			b.pieces = append(b.pieces, piece{cpStart: start, cpEnd: len(b.units), unicode: uni, bold: p.PieceBold})
			start = len(b.units)
		}
	}
	if !b.d.Pieces && len(b.units) > 0 {
		b.pieces = []piece{{cpStart: 0, cpEnd: len(b.units), unicode: b.unicodePiece(0)}}
	}
}

func (b *builder) appendRune(c rune, uni bool, r *Run, para int) {
	if uni {
		for _, u := range utf16.Encode([]rune{c}) {
			b.units = append(b.units, unit{code: u, width: 2, run: r, para: para})
		}
		return
	}
	code := uint16('?')
	if c < 0x80 {
		code = uint16(c)
	} else if e, ok := b.cp.EncodeRune(c); ok {
		code = uint16(e)
	}
	b.units = append(b.units, unit{code: code, width: 1, run: r, para: para})
}

func (b *builder) placeText() {
	b.main = make([]byte, b.v.fibSize())
	order := make([]int, len(b.pieces))
	for i := range order {
		order[i] = i
		if b.d.Pieces {
			order[i] = len(b.pieces) - 1 - i
		}
	}
	for _, k := range order {
		pc := &b.pieces[k]
		pc.off = len(b.main)
		for cp := pc.cpStart; cp < pc.cpEnd; cp++ {
			u := &b.units[cp]
			u.fc = uint32(len(b.main))
			if pc.unicode {
				b.main = le.AppendUint16(b.main, u.code)
			} else {
				b.main = append(b.main, byte(u.code))
			}
		}
	}
}

func (b *builder) placePictures() {
	if b.v == winword2 {
		return
	}
	for i := range b.paras {
		for j := range b.paras[i].Runs {
			r := &b.paras[i].Runs[j]
			if r.Picture == nil {
				continue
			}
			if b.v == word97 {
				b.picFC[r] = uint32(len(b.data))
				b.data = append(b.data, picf(r.Picture)...)
			} else {
				b.picFC[r] = uint32(len(b.main))
				b.main = append(b.main, picf(r.Picture)...)
			}
		}
	}
}

func picf(p *Picture) []byte {
	const cbHeader = 0x44
	h := make([]byte, cbHeader)
	le.PutUint32(h, uint32(cbHeader+len(p.Header)+len(p.Data)))
	le.PutUint16(h[4:], cbHeader)
	le.PutUint16(h[6:], 100)
	le.PutUint16(h[0x1C:], uint16(p.WidthTwips))
	le.PutUint16(h[0x1E:], uint16(p.HeightTwips))
	sx, sy := p.ScaleX, p.ScaleY
	if sx == 0 {
		sx = 1000
	}
	if sy == 0 {
		sy = 1000
	}
	le.PutUint16(h[0x20:], sx)
	le.PutUint16(h[0x22:], sy)
	return append(append(h, p.Header...), p.Data...)
}

func (b *builder) align(n int) {
	for len(b.main)%n != 0 {
		b.main = append(b.main, 0)
	}
}

// groupRuns turns units into contiguous FC runs keyed by props.
func groupRuns(units []unit, props func(u unit) (string, []byte)) []fcRun {
	sorted := append([]unit(nil), units...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].fc < sorted[j].fc })
	var runs []fcRun
	for _, u := range sorted {
		key, p := props(u)
		end := u.fc + uint32(u.width)
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if last.end == u.fc && last.key == key {
				last.end = end
				continue
			}
			if last.end < u.fc {
				runs = append(runs, fcRun{start: last.end, end: u.fc, key: "\x00gap"})
			}
		}
		runs = append(runs, fcRun{start: u.fc, end: end, props: p, key: key})
	}
	return runs
}

func (b *builder) chpxRuns() []fcRun {
	cache := make(map[*Run][]byte)
	return groupRuns(b.units, func(u unit) (string, []byte) {
		if u.run == nil {
			return "", nil
		}
		p, ok := cache[u.run]
		if !ok {
			p = b.chpx(u.run)
			cache[u.run] = p
		}
		return string(p), p
	})
}

func (b *builder) papxRuns() []fcRun {
	return groupRuns(b.units, func(u unit) (string, []byte) {
		p := b.papx(&b.paras[u.para])
		return string(rune(u.para)) + string(p), p
	})
}

func toggle(on bool) byte {
	if on {
		return 1
	}
	return 0
}

func (b *builder) chpx(r *Run) []byte {
	switch b.v {
	case winword2:
		if !(r.Bold || r.Italic || r.Strike || r.SmallCaps || r.Caps || r.Hidden || r.Special || r.Underline || r.Font != 0 || r.HalfPoints != 0) {
			return nil
		}
		chp := make([]byte, 7)
		chp[0] = toggle(r.Bold) | toggle(r.Italic)<<1 | toggle(r.Strike)<<2 | toggle(r.SmallCaps)<<5 | toggle(r.Caps)<<6 | toggle(r.Hidden)<<7
		chp[1] = toggle(r.Special) << 1
		le.PutUint16(chp[2:], r.Font)
		chp[4] = byte(r.HalfPoints)
		chp[6] = toggle(r.Underline) << 3
		return chp
	case word6:
		var g []byte
		flag := func(op byte, on bool) {
			if on {
				g = append(g, op, 1)
			}
		}
		flag(85, r.Bold)
		flag(86, r.Italic)
		flag(87, r.Strike)
		flag(90, r.SmallCaps)
		flag(91, r.Caps)
		flag(92, r.Hidden)
		if r.Font != 0 {
			g = le.AppendUint16(append(g, 93), r.Font)
		}
		flag(94, r.Underline)
		if r.HalfPoints != 0 {
			g = le.AppendUint16(append(g, 99), r.HalfPoints)
		}
		flag(117, r.Special)
		if fc, ok := b.picFC[r]; ok {
			g = le.AppendUint32(append(g, 68, 4), fc)
		}
		return g
	}
	var g []byte
	flag := func(op uint16, on bool) {
		if on {
			g = append(le.AppendUint16(g, op), 1)
		}
	}
	flag(0x0835, r.Bold)
	flag(0x0836, r.Italic)
	flag(0x0837, r.Strike)
	flag(0x083A, r.SmallCaps)
	flag(0x083B, r.Caps)
	flag(0x083C, r.Hidden)
	if r.Font != 0 {
		g = le.AppendUint16(le.AppendUint16(g, 0x4A4F), r.Font)
	}
	flag(0x2A3E, r.Underline)
	if r.HalfPoints != 0 {
		g = le.AppendUint16(le.AppendUint16(g, 0x4A43), r.HalfPoints)
	}
	flag(0x0855, r.Special)
	if fc, ok := b.picFC[r]; ok {
		g = le.AppendUint32(le.AppendUint16(g, 0x6A03), fc)
	}
	return g
}

func (b *builder) papx(p *Paragraph) []byte {
	if b.v == word6 {
		g := []byte{0}
		if p.Justification != 0 {
			g = append(g, 5, p.Justification)
		}
		if p.PageBreakBefore {
			g = append(g, 9, 1)
		}
		if p.InTable {
			g = append(g, 24, 1)
		}
		if p.RowEnd {
			g = append(g, 25, 1)
		}
		return g
	}
	g := []byte{0, 0}
	if p.Justification != 0 {
		g = append(le.AppendUint16(g, 0x2403), p.Justification)
	}
	if p.PageBreakBefore {
		g = append(le.AppendUint16(g, 0x2407), 1)
	}
	if p.InTable {
		g = append(le.AppendUint16(g, 0x2416), 1)
	}
	if p.RowEnd {
		g = append(le.AppendUint16(g, 0x2417), 1)
	}
	return g
}

// encodeProps returns the FKP storage form of props: a count byte and
// the bytes, word-aligned by the caller.
func (b *builder) encodeProps(props []byte, bx int) []byte {
	switch {
	case bx == 1:
		return append([]byte{byte(len(props))}, props...)
	case b.v == word6:
		if len(props)%2 == 1 {
			props = append(append([]byte(nil), props...), 0)
		}
		return append([]byte{byte(len(props) / 2)}, props...)
	case len(props)%2 == 1:
		return append([]byte{byte((len(props) + 1) / 2)}, props...)
	default:
		return append([]byte{0, byte(len(props) / 2)}, props...)
	}
}

type fkpEntry struct {
	run fcRun
	pos int
}

// writeBTE packs runs into FKP pages in the main stream and writes the
// bin table for FIB pair idx.
func (b *builder) writeBTE(idx int, runs []fcRun, bx int) {
	if len(runs) == 0 {
		return
	}
	var fcs []uint32
	var pns []uint32
	var entries []fkpEntry
	top := 511

	flush := func() {
		page := make([]byte, 512)
		n := len(entries)
		page[511] = byte(n)
		for i, e := range entries {
			le.PutUint32(page[4*i:], e.run.start)
		}
		le.PutUint32(page[4*n:], entries[n-1].run.end)
		for i, e := range entries {
			if e.pos == 0 {
				continue
			}
			page[4*(n+1)+i*bx] = byte(e.pos / 2)
			copy(page[e.pos:], b.encodeProps(e.run.props, bx))
		}
		fcs = append(fcs, entries[0].run.start)
		pns = append(pns, uint32(len(b.main)/512))
		b.main = append(b.main, page...)
		entries = nil
		top = 511
	}

	for _, r := range runs {
		for {
			n := len(entries) + 1
			front := 4*(n+1) + n*bx
			pos := 0
			if len(r.props) > 0 || bx > 1 {
				pos = (top - len(b.encodeProps(r.props, bx))) &^ 1
			}
			if (pos == 0 && front <= top) || (pos > 0 && pos >= front) {
				entries = append(entries, fkpEntry{run: r, pos: pos})
				if pos > 0 {
					top = pos
				}
				break
			}
			flush()
		}
	}
	flush()
	fcs = append(fcs, runs[len(runs)-1].end)

	var plc []byte
	for _, fc := range fcs {
		plc = le.AppendUint32(plc, fc)
	}
	for _, pn := range pns {
		if b.v == word97 {
			plc = le.AppendUint32(plc, pn)
		} else {
			plc = le.AppendUint16(plc, uint16(pn))
		}
	}
	b.putTable(idx, plc)
}

func (b *builder) writeSections() {
	cps := append(append([]int(nil), b.sectionCPs...), b.ccpText)
	var seds []byte
	for s := 0; s+1 < len(cps); s++ {
		bkc := byte(2)
		if s > 0 && s-1 < len(b.d.SectionBreaks) {
			bkc = b.d.SectionBreaks[s-1]
		}
		fcSepx := uint32(0xFFFFFFFF)
		if b.v != winword2 && bkc != NoSEPX {
			b.align(2)
			fcSepx = uint32(len(b.main))
			grpprl := []byte{142, bkc}
			if b.v == word97 {
				grpprl = []byte{0x09, 0x30, bkc}
			}
			b.main = le.AppendUint16(b.main, uint16(len(grpprl)))
			b.main = append(b.main, grpprl...)
		}
		sed := make([]byte, 12)
		if b.v == winword2 {
			sed = sed[:6]
		}
		le.PutUint32(sed[2:], fcSepx)
		seds = append(seds, sed...)
	}
	var plc []byte
	for _, cp := range cps {
		plc = le.AppendUint32(plc, uint32(cp))
	}
	b.putTable(6, append(plc, seds...))
}

func (b *builder) writeCLX() {
	var clx []byte
	boldProp := -1
	for _, pc := range b.pieces {
		if pc.bold {
			grpprl := []byte{0x35, 0x08, 0x01}
			if b.v == word6 {
				grpprl = []byte{85, 1}
			}
			clx = append(le.AppendUint16(append(clx, 0x01), uint16(len(grpprl))), grpprl...)
			boldProp = 0
			break
		}
	}
	var plc []byte
	for _, pc := range b.pieces {
		plc = le.AppendUint32(plc, uint32(pc.cpStart))
	}
	last := 0
	if n := len(b.pieces); n > 0 {
		last = b.pieces[n-1].cpEnd
	}
	plc = le.AppendUint32(plc, uint32(last))
	for _, pc := range b.pieces {
		fc := uint32(pc.off)
		if b.v == word97 && !pc.unicode {
			fc = uint32(pc.off*2) | 0x40000000
		}
		var prm uint16
		if pc.bold && boldProp >= 0 {
			prm = uint16(boldProp<<1) | 1
		}
		plc = le.AppendUint16(le.AppendUint32(le.AppendUint16(plc, 0), fc), prm)
	}
	clx = append(le.AppendUint32(append(clx, 0x02), uint32(len(plc))), plc...)
	b.putTable(33, clx)
}

func (b *builder) writeFonts() {
	if len(b.d.Fonts) == 0 {
		return
	}
	var out []byte
	switch b.v {
	case word97:
		out = le.AppendUint16(le.AppendUint16(out, uint16(len(b.d.Fonts))), 0)
		for _, name := range b.d.Fonts {
			units := utf16.Encode([]rune(name))
			ffn := make([]byte, 40, 40+2*len(units)+2)
			for _, u := range units {
				ffn = le.AppendUint16(ffn, u)
			}
			ffn = le.AppendUint16(ffn, 0)
			ffn[0] = byte(len(ffn) - 1)
			out = append(out, ffn...)
		}
	default:
		hdr := 6
		if b.v == winword2 {
			hdr = 2
		}
		out = []byte{0, 0}
		for _, name := range b.d.Fonts {
			ffn := make([]byte, hdr, hdr+len(name)+1)
			ffn = append(append(ffn, name...), 0)
			ffn[0] = byte(len(ffn) - 1)
			out = append(out, ffn...)
		}
		le.PutUint16(out, uint16(len(out)))
	}
	b.putTable(15, out)
}

// putTable stores a structure in the table stream (Word 97) or the main
// stream and records its fc/lcb pair.
func (b *builder) putTable(idx int, data []byte) {
	if b.v == word97 {
		b.fib[idx] = [2]uint32{uint32(len(b.table)), uint32(len(data))}
		b.table = append(b.table, data...)
		return
	}
	b.align(2)
	b.fib[idx] = [2]uint32{uint32(len(b.main)), uint32(len(data))}
	b.main = append(b.main, data...)
}

func (b *builder) writeFIB(fcMac int) {
	fib := b.main
	ident, nFib := uint16(0xA5EC), uint16(193)
	switch b.v {
	case winword2:
		ident, nFib = 0xA5DB, 45
	case word6:
		ident, nFib = 0xA5DC, 101
	}
	if b.d.NFib != 0 {
		nFib = b.d.NFib
	}
	lid := b.d.LID
	if lid == 0 {
		lid = 0x0409
	}
	var flags uint16
	if b.complex() {
		flags |= 0x0004
	}
	if b.d.Encrypted {
		flags |= 0x0100
	}
	if b.v == word97 {
		flags |= 0x0200
	}
	le.PutUint16(fib, ident)
	le.PutUint16(fib[2:], nFib)
	le.PutUint16(fib[6:], lid)
	le.PutUint16(fib[0x0A:], flags)
	le.PutUint32(fib[0x18:], uint32(b.v.fibSize()))
	le.PutUint32(fib[0x1C:], uint32(fcMac))

	ccpFtn := uint32(len(b.units) - b.ccpText)
	switch b.v {
	case word97:
		le.PutUint32(fib[0x4C:], uint32(b.ccpText))
		le.PutUint32(fib[0x50:], ccpFtn)
		for idx, p := range b.fib {
			le.PutUint32(fib[0x9A+8*idx:], p[0])
			le.PutUint32(fib[0x9A+8*idx+4:], p[1])
		}
	case word6:
		le.PutUint32(fib[0x34:], uint32(b.ccpText))
		le.PutUint32(fib[0x38:], ccpFtn)
		for idx, p := range b.fib {
			le.PutUint32(fib[0x58+8*idx:], p[0])
			le.PutUint32(fib[0x58+8*idx+4:], p[1])
		}
	case winword2:
		le.PutUint32(fib[0x34:], uint32(b.ccpText))
		le.PutUint32(fib[0x38:], ccpFtn)
		slots := map[int]int{6: 6, 12: 11, 13: 12, 15: 15}
		for idx, p := range b.fib {
			slot := slots[idx]
			le.PutUint32(fib[0x5E+6*slot:], p[0])
			le.PutUint16(fib[0x5E+6*slot+4:], uint16(p[1]))
		}
	}
}
