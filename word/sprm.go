package word

import (
	"encoding/binary"

	"github.com/tsawler/wordview/model"
)

// charProps is the character formatting of one CP.
type charProps struct {
	style   model.Style
	special bool
	hasPic  bool
	picFC   uint32
}

// paraProps is the paragraph formatting of one paragraph mark.
type paraProps struct {
	para   model.Paragraph
	rowEnd bool
}

// sprmSet knows how one version encodes property modifiers.
type sprmSet interface {
	// each calls fn for every modifier of grpprl.
	each(grpprl []byte, fn func(op uint16, arg []byte))
	applyChar(c *charProps, op uint16, arg []byte)
	applyPara(p *paraProps, op uint16, arg []byte)
	// sectionBreak returns the break code set by grpprl, or -1.
	sectionBreak(grpprl []byte) int
}

func applyChars(s sprmSet, c *charProps, grpprl []byte) {
	s.each(grpprl, func(op uint16, arg []byte) { s.applyChar(c, op, arg) })
}

func applyParas(s sprmSet, p *paraProps, grpprl []byte) {
	s.each(grpprl, func(op uint16, arg []byte) { s.applyPara(p, op, arg) })
}

// toggle interprets a boolean character operand: 0 off, 1 on,
// 0x80 keep, 0x81 invert.
func toggle(cur bool, arg []byte) bool {
	if len(arg) == 0 {
		return cur
	}
	switch arg[0] {
	case 0:
		return false
	case 1:
		return true
	case 0x80:
		return cur
	case 0x81:
		return !cur
	}
	return arg[0]&1 == 1
}

func u16(arg []byte) (uint16, bool) {
	if len(arg) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(arg), true
}

func justification(arg []byte) model.Justification {
	if len(arg) == 0 {
		return model.JustifyLeft
	}
	switch arg[0] {
	case 0:
		return model.JustifyLeft
	case 1:
		return model.JustifyCenter
	case 2:
		return model.JustifyRight
	}
	return model.JustifyBoth
}

func flag(arg []byte) bool { return len(arg) > 0 && arg[0] != 0 }

// word97Sprms handles the two-byte modifiers of Word 97.
type word97Sprms struct{}

func (word97Sprms) each(g []byte, fn func(op uint16, arg []byte)) {
	for pos := 0; pos+2 <= len(g); {
		op := binary.LittleEndian.Uint16(g[pos:])
		pos += 2
		var size int
		switch op >> 13 {
		case 0, 1:
			size = 1
		case 2, 4, 5:
			size = 2
		case 3:
			size = 4
		case 7:
			size = 3
		case 6:
			if op == 0xD608 {
				if pos+2 > len(g) {
					return
				}
				size = int(binary.LittleEndian.Uint16(g[pos:])) + 1
				break
			}
			if pos >= len(g) {
				return
			}
			size = int(g[pos])
			pos++
		}
		if pos+size > len(g) {
			return
		}
		fn(op, g[pos:pos+size])
		pos += size
	}
}

func (word97Sprms) applyChar(c *charProps, op uint16, arg []byte) {
	s := &c.style
	switch op {
	case 0x0835:
		s.Bold = toggle(s.Bold, arg)
	case 0x0836:
		s.Italic = toggle(s.Italic, arg)
	case 0x0837, 0x2A53:
		s.Strike = toggle(s.Strike, arg)
	case 0x083A:
		s.SmallCaps = toggle(s.SmallCaps, arg)
	case 0x083B:
		s.Caps = toggle(s.Caps, arg)
	case 0x083C:
		s.Hidden = toggle(s.Hidden, arg)
	case 0x4A4F, 0x4A3D:
		if v, ok := u16(arg); ok {
			s.FontID = v
		}
	case 0x2A3E:
		s.Underline = flag(arg)
	case 0x4A43:
		if v, ok := u16(arg); ok {
			s.HalfPoints = v
		}
	case 0x6A03:
		if len(arg) >= 4 {
			c.picFC, c.hasPic = binary.LittleEndian.Uint32(arg), true
		}
	case 0x0855:
		c.special = flag(arg)
	case 0x2A33:
		*c = charProps{style: model.Style{FontID: s.FontID}}
	}
}

func (word97Sprms) applyPara(p *paraProps, op uint16, arg []byte) {
	switch op {
	case 0x2403, 0x2461:
		p.para.Justification = justification(arg)
	case 0x2407:
		p.para.PageBreakBefore = flag(arg)
	case 0x2416:
		p.para.InTable = flag(arg)
	case 0x2417:
		p.rowEnd = flag(arg)
	}
}

func (s word97Sprms) sectionBreak(g []byte) int {
	bkc := -1
	s.each(g, func(op uint16, arg []byte) {
		if op == 0x3009 && len(arg) > 0 {
			bkc = int(arg[0])
		}
	})
	return bkc
}

// Operand sizes of the Word 6 one-byte modifiers. varLen operands carry
// a byte count, varLen16 operands a 16-bit count.
const (
	varLen   = -1
	varLen16 = -2
)

var word6Operands = func() map[byte]int {
	m := make(map[byte]int)
	set := func(size int, ops ...int) {
		for _, op := range ops {
			m[byte(op)] = size
		}
	}
	span := func(size, from, to int) {
		for op := from; op <= to; op++ {
			m[byte(op)] = size
		}
	}
	// paragraph
	set(2, 2)
	set(varLen, 3, 12, 15, 23, 52)
	span(1, 4, 11)
	set(1, 13, 14, 24, 25, 29, 37, 44, 50, 51)
	span(2, 16, 19)
	set(4, 20)
	set(2, 21, 22)
	span(2, 26, 28)
	span(2, 30, 36)
	span(2, 38, 43)
	span(2, 45, 49)
	// character
	span(1, 65, 67)
	set(varLen, 68, 74, 81, 103, 105, 106, 108)
	set(2, 69, 72, 80, 93, 96, 97, 99, 101, 107, 109, 110)
	set(4, 70)
	set(1, 71, 75, 94, 98, 100, 102, 104, 117, 118)
	set(3, 73, 95)
	set(0, 82, 83)
	span(1, 85, 92)
	// picture
	set(1, 119)
	set(varLen, 120)
	span(2, 121, 124)
	// section
	set(1, 131, 132, 138, 139, 142, 143, 146, 147, 158, 159, 162)
	set(varLen, 133)
	set(3, 136, 137)
	set(2, 140, 141, 144, 145, 148, 149, 160, 161)
	span(1, 150, 153)
	span(2, 154, 157)
	span(2, 164, 171)
	// table
	span(2, 182, 184)
	set(1, 185, 186)
	set(12, 187)
	set(varLen16, 188, 190)
	set(2, 189, 195, 197, 198)
	set(varLen, 191)
	set(4, 192, 194, 196, 200)
	set(5, 193, 199)
	return m
}()

// word6Sprms handles the one-byte modifiers of Word 6 and 7.
type word6Sprms struct{}

func (word6Sprms) each(g []byte, fn func(op uint16, arg []byte)) {
	for pos := 0; pos < len(g); {
		op := g[pos]
		pos++
		size, ok := word6Operands[op]
		if !ok {
			return
		}
		switch size {
		case varLen:
			if pos >= len(g) {
				return
			}
			size = int(g[pos])
			pos++
		case varLen16:
			if pos+2 > len(g) {
				return
			}
			size = int(binary.LittleEndian.Uint16(g[pos:]))
			pos += 2
		}
		if pos+size > len(g) {
			return
		}
		fn(uint16(op), g[pos:pos+size])
		pos += size
	}
}

func (word6Sprms) applyChar(c *charProps, op uint16, arg []byte) {
	s := &c.style
	switch op {
	case 85:
		s.Bold = toggle(s.Bold, arg)
	case 86:
		s.Italic = toggle(s.Italic, arg)
	case 87:
		s.Strike = toggle(s.Strike, arg)
	case 90:
		s.SmallCaps = toggle(s.SmallCaps, arg)
	case 91:
		s.Caps = toggle(s.Caps, arg)
	case 92:
		s.Hidden = toggle(s.Hidden, arg)
	case 93:
		if v, ok := u16(arg); ok {
			s.FontID = v
		}
	case 94:
		s.Underline = flag(arg)
	case 99:
		if v, ok := u16(arg); ok {
			s.HalfPoints = v
		}
	case 68:
		if len(arg) >= 4 {
			c.picFC, c.hasPic = binary.LittleEndian.Uint32(arg), true
		}
	case 117:
		c.special = flag(arg)
	case 83:
		*c = charProps{style: model.Style{FontID: s.FontID}}
	}
}

func (word6Sprms) applyPara(p *paraProps, op uint16, arg []byte) {
	switch op {
	case 5:
		p.para.Justification = justification(arg)
	case 9:
		p.para.PageBreakBefore = flag(arg)
	case 24:
		p.para.InTable = flag(arg)
	case 25:
		p.rowEnd = flag(arg)
	}
}

func (s word6Sprms) sectionBreak(g []byte) int {
	bkc := -1
	s.each(g, func(op uint16, arg []byte) {
		if op == 142 && len(arg) > 0 {
			bkc = int(arg[0])
		}
	})
	return bkc
}

// winword2CHP applies the fixed-layout CHP prefix stored in WinWord 2
// character FKPs.
func winword2CHP(c *charProps, chp []byte) {
	if len(chp) == 0 {
		return
	}
	s := &c.style
	b := chp[0]
	s.Bold = b&0x01 != 0
	s.Italic = b&0x02 != 0
	s.Strike = b&0x04 != 0
	s.SmallCaps = b&0x20 != 0
	s.Caps = b&0x40 != 0
	s.Hidden = b&0x80 != 0
	if len(chp) > 1 {
		c.special = chp[1]&0x02 != 0
	}
	if len(chp) >= 4 {
		s.FontID = binary.LittleEndian.Uint16(chp[2:])
	}
	if len(chp) > 4 && chp[4] != 0 {
		s.HalfPoints = uint16(chp[4])
	}
	if len(chp) > 6 {
		s.Underline = (chp[6]>>3)&0x07 != 0
	}
}
