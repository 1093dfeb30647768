package diagram

import (
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/wordview/font"
	"github.com/tsawler/wordview/mapping"
	"github.com/tsawler/wordview/model"
)

const (
	// leading is the line height as a multiple of the font size.
	leading = 1.2
	// paragraphGap is the extra space after a paragraph, in lines of the
	// default size.
	paragraphGap = 0.5
)

// PostScript renders paginated, DSC-conforming PostScript. Lines are
// filled using Standard 14 font metrics; the lines of the current page
// are held until the page is full or a page break arrives.
type PostScript struct {
	sink[*psRenderer]
}

// NewPostScript creates a PostScript diagram. task and file appear in the
// %%Creator and %%Title comments.
func NewPostScript(task, file string, w io.Writer, opts *RenderOptions) *PostScript {
	o := opts.normalized()
	out := newDest(w)
	latin1, _ := mapping.Named("iso-8859-1")
	r := &psRenderer{
		out:        out,
		task:       task,
		file:       file,
		geo:        o.Geometry,
		area:       o.Geometry.TextArea(),
		level:      o.ImageLevel,
		showHidden: o.ShowHidden,
		latin1:     latin1,
		fonts:      make(map[string]bool),
	}
	r.y = r.area.Top()
	return &PostScript{sink[*psRenderer]{r: r, out: out}}
}

// Pages returns the number of pages emitted so far.
func (p *PostScript) Pages() int {
	return p.r.pages
}

type psSegment struct {
	font      string
	size      float64
	text      string
	x         float64
	width     float64
	underline bool
	strike    bool
}

type psLine struct {
	segs     []psSegment
	width    float64
	size     float64
	baseline float64
	just     model.Justification
	image    *psImage
}

type psRenderer struct {
	out        *dest
	task, file string
	geo        model.PageGeometry
	area       model.BBox
	level      ImageLevel
	showHidden bool
	latin1     *mapping.Table

	pages   int
	fonts   map[string]bool
	pending []psLine
	// y is the top of the next line on the current page.
	y    float64
	cur  psLine
	para model.Paragraph
	// spaceRun holds spaces that are placed only if a word follows on
	// the same line.
	spaceRun []psSegment
}

func (p *psRenderer) languageLevel() int {
	if p.level == ImagesLevel3 {
		return 3
	}
	return 2
}

func (p *psRenderer) openDocument() error {
	w, h := p.geo.Width, p.geo.Height
	if p.geo.Orientation == model.Landscape {
		w, h = h, w
	}
	p.out.WriteString("%!PS-Adobe-2.0\n")
	p.out.Printf("%%%%Title: %s\n", dscText(p.file))
	p.out.Printf("%%%%Creator: %s\n", dscText(p.task))
	p.out.Printf("%%%%BoundingBox: 0 0 %s %s\n", num(w), num(h))
	p.out.Printf("%%%%Orientation: %s\n", p.geo.Orientation)
	p.out.WriteString("%%DocumentFonts: (atend)\n")
	p.out.WriteString("%%Pages: (atend)\n")
	p.out.Printf("%%%%LanguageLevel: %d\n", p.languageLevel())
	p.out.WriteString("%%EndComments\n")
	p.out.WriteString(psProlog)
	p.out.WriteString("%%BeginSetup\n")
	for _, name := range reencodedFonts {
		p.out.Printf("/%s-ISO /%s reencode\n", name, name)
	}
	p.out.WriteString("%%EndSetup\n")
	return nil
}

const psProlog = `%%BeginProlog
/reencode {
  findfont dup length dict begin
    { 1 index /FID ne { def } { pop pop } ifelse } forall
    /Encoding ISOLatin1Encoding def
    currentdict
  end
  definefont pop
} bind def
/rule { newpath moveto 0 rlineto 0.5 setlinewidth stroke } bind def
%%EndProlog
`

var reencodedFonts = []string{
	"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic",
	"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique",
	"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique",
}

func (p *psRenderer) openParagraph(para model.Paragraph) error {
	p.para = para
	p.cur = psLine{just: para.Justification}
	return nil
}

func (p *psRenderer) run(text string, style model.Style) error {
	if style.Hidden && !p.showHidden {
		return nil
	}
	fontName := font.PostScriptName(font.Resolve(style.FontName), style.Bold, style.Italic)
	size := style.Size()
	seg := psSegment{font: fontName, size: size, underline: style.Underline, strike: style.Strike}

	var word strings.Builder
	flushWord := func() {
		if word.Len() > 0 {
			p.addWord(seg, word.String())
			word.Reset()
		}
	}
	for _, r := range style.Transform(text) {
		switch r {
		case '\n':
			flushWord()
			p.finishLine(true)
		case ' ', '\t':
			flushWord()
			p.addSpace(seg)
		default:
			word.WriteRune(r)
		}
	}
	flushWord()
	return nil
}

func (p *psRenderer) addSpace(style psSegment) {
	if len(p.cur.segs) == 0 {
		return
	}
	style.text = " "
	style.width = font.StringWidth(style.font, " ", style.size)
	p.spaceRun = append(p.spaceRun, style)
}

func (p *psRenderer) addWord(style psSegment, word string) {
	w := font.StringWidth(style.font, word, style.size)
	spaces := 0.0
	for _, s := range p.spaceRun {
		spaces += s.width
	}
	if len(p.cur.segs) > 0 && p.cur.width+spaces+w > p.area.Width {
		p.finishLine(false)
		p.spaceRun = nil
		spaces = 0
	}
	for _, s := range p.spaceRun {
		p.appendSegment(s)
	}
	p.spaceRun = nil
	style.text = word
	style.width = w
	p.appendSegment(style)
}

func (p *psRenderer) appendSegment(s psSegment) {
	if s.size > p.cur.size {
		p.cur.size = s.size
	}
	p.fonts[s.font] = true
	if n := len(p.cur.segs); n > 0 {
		last := &p.cur.segs[n-1]
		if last.font == s.font && last.size == s.size && last.underline == s.underline && last.strike == s.strike {
			last.text += s.text
			last.width += s.width
			p.cur.width += s.width
			return
		}
	}
	s.x = p.cur.width
	p.cur.segs = append(p.cur.segs, s)
	p.cur.width += s.width
}

// finishLine places the current line on the page. Empty lines are kept
// only when forced by a hard line break or an empty paragraph.
func (p *psRenderer) finishLine(force bool) {
	p.spaceRun = nil
	if len(p.cur.segs) == 0 && !force {
		return
	}
	line := p.cur
	if line.size == 0 {
		line.size = model.DefaultHalfPoints / 2
	}
	p.place(line, line.size*leading)
	p.cur = psLine{just: p.para.Justification}
}

// place reserves height on the page, starting a new page first when the
// line would cross the bottom margin. A line taller than the room left on
// an empty page is cut to it.
func (p *psRenderer) place(line psLine, height float64) {
	if p.y-height < p.area.Bottom() && len(p.pending) > 0 {
		p.flushPage()
	}
	height = math.Max(0, math.Min(height, p.y-p.area.Bottom()))
	line.baseline = math.Max(p.y-height+(height-line.size)/2, p.area.Bottom())
	if line.image != nil {
		line.baseline = p.y - height
	}
	p.y -= height
	p.pending = append(p.pending, line)
}

func (p *psRenderer) closeParagraph() error {
	p.finishLine(len(p.cur.segs) == 0)
	p.y -= paragraphGap * leading * model.DefaultHalfPoints / 2
	return nil
}

func (p *psRenderer) pageBreak() error {
	if len(p.pending) > 0 {
		p.flushPage()
	}
	return nil
}

func (p *psRenderer) image(img *model.Image) error {
	p.finishLine(false)
	if p.level == ImagesNone {
		return nil
	}
	pi := preparePSImage(img, p.level, p.area)
	if pi == nil {
		return nil
	}
	p.place(psLine{image: pi, size: pi.height}, pi.height)
	return nil
}

func (p *psRenderer) closeDocument() error {
	p.finishLine(false)
	if len(p.pending) > 0 {
		p.flushPage()
	}
	names := make([]string, 0, len(p.fonts))
	for n := range p.fonts {
		names = append(names, n)
	}
	sort.Strings(names)
	p.out.WriteString("%%Trailer\n")
	p.out.Printf("%%%%Pages: %d\n", p.pages)
	if len(names) > 0 {
		p.out.Printf("%%%%DocumentFonts: %s\n", strings.Join(names, " "))
	}
	p.out.WriteString("%%EOF\n")
	return nil
}

func (p *psRenderer) flushPage() {
	p.pages++
	p.out.Printf("%%%%Page: %d %d\n", p.pages, p.pages)
	p.out.WriteString("%%BeginPageSetup\nsave\n")
	if p.geo.Orientation == model.Landscape {
		p.out.Printf("90 rotate 0 %s translate\n", num(-p.geo.Height))
	}
	p.out.WriteString("%%EndPageSetup\n")

	for _, line := range p.pending {
		if line.image != nil {
			line.image.write(p.out, p.area.Left(), line.baseline)
			continue
		}
		p.writeLine(line)
	}

	p.out.WriteString("restore\nshowpage\n")
	p.pending = p.pending[:0]
	p.y = p.area.Top()
}

func (p *psRenderer) writeLine(line psLine) {
	x := p.area.Left()
	switch line.just {
	case model.JustifyCenter:
		x += (p.area.Width - line.width) / 2
	case model.JustifyRight:
		x += p.area.Width - line.width
	}
	y := line.baseline
	for _, s := range line.segs {
		fontRef := s.font
		if fontRef != "Symbol" && fontRef != "ZapfDingbats" {
			fontRef += "-ISO"
		}
		sx := x + s.x
		p.out.Printf("/%s %s selectfont\n", fontRef, num(s.size))
		p.out.Printf("%s %s moveto (%s) show\n", num(sx), num(y), p.escape(s.text))
		if s.underline {
			p.out.Printf("%s %s %s rule\n", num(s.width), num(sx), num(y-s.size*0.12))
		}
		if s.strike {
			p.out.Printf("%s %s %s rule\n", num(s.width), num(sx), num(y+s.size*0.3))
		}
	}
}

// escape converts text to an ISO Latin-1 PostScript string body.
func (p *psRenderer) escape(s string) string {
	var b strings.Builder
	for _, c := range p.latin1.Encode(s) {
		switch {
		case c == '(' || c == ')' || c == '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case c < 0x20 || c >= 0x7F:
			b.WriteByte('\\')
			b.WriteString(strconv.FormatInt(int64(c)+01000, 8)[1:])
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// dscText keeps DSC comment values on one printable line.
func dscText(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return ' '
		}
		return r
	}, s)
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
