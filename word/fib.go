package word

import (
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
)

const (
	flagComplex    = 0x0004
	flagEncrypted  = 0x0100
	flagWhichTable = 0x0200
)

// fcLcb locates a structure: offset and length in bytes.
type fcLcb struct {
	fc, lcb uint32
}

// fibLayout gives the offsets of the FIB fields one version uses.
type fibLayout struct {
	min      int
	ccpText  int
	ccpFtn   int
	pairs    int
	pairSize int
	sed      int
	chpx     int
	papx     int
	ffn      int
	clx      int
}

var (
	fibWinWord2 = fibLayout{min: 0xC0, ccpText: 0x34, ccpFtn: 0x38, pairs: 0x5E, pairSize: 6, sed: 6, chpx: 11, papx: 12, ffn: 15, clx: -1}
	fibWord6    = fibLayout{min: 0x168, ccpText: 0x34, ccpFtn: 0x38, pairs: 0x58, pairSize: 8, sed: 6, chpx: 12, papx: 13, ffn: 15, clx: 33}
	fibWord97   = fibLayout{min: 0x1AA, ccpText: 0x4C, ccpFtn: 0x50, pairs: 0x9A, pairSize: 8, sed: 6, chpx: 12, papx: 13, ffn: 15, clx: 33}
)

// fib holds the File Information Block fields the decoder uses.
type fib struct {
	ident, nFib uint16
	lid         uint16
	flags       uint16
	fcMin       uint32
	fcMac       uint32
	ccpText     uint32
	ccpFtn      uint32

	plcfsed  fcLcb
	bteChpx  fcLcb
	btePapx  fcLcb
	sttbfFfn fcLcb
	clx      fcLcb
}

func parseFIB(l fibLayout, b []byte) (fib, error) {
	if len(b) < l.min {
		return fib{}, newError(KindTruncated, "fib", "%d bytes, need %d", len(b), l.min)
	}
	le := binary.LittleEndian
	f := fib{
		ident:   le.Uint16(b),
		nFib:    le.Uint16(b[2:]),
		lid:     le.Uint16(b[6:]),
		flags:   le.Uint16(b[0x0A:]),
		fcMin:   le.Uint32(b[0x18:]),
		fcMac:   le.Uint32(b[0x1C:]),
		ccpText: le.Uint32(b[l.ccpText:]),
		ccpFtn:  le.Uint32(b[l.ccpFtn:]),
	}
	pair := func(i int) fcLcb {
		off := l.pairs + i*l.pairSize
		if l.pairSize == 6 {
			return fcLcb{le.Uint32(b[off:]), uint32(le.Uint16(b[off+4:]))}
		}
		return fcLcb{le.Uint32(b[off:]), le.Uint32(b[off+4:])}
	}
	f.plcfsed = pair(l.sed)
	f.bteChpx = pair(l.chpx)
	f.btePapx = pair(l.papx)
	f.sttbfFfn = pair(l.ffn)
	if l.clx >= 0 {
		f.clx = pair(l.clx)
	}
	return f, nil
}

func (f fib) complex() bool   { return f.flags&flagComplex != 0 }
func (f fib) encrypted() bool { return f.flags&flagEncrypted != 0 }

// tableStream names the Word 97 stream holding the formatting tables.
func (f fib) tableStream() string {
	if f.flags&flagWhichTable != 0 {
		return "1Table"
	}
	return "0Table"
}

// codePage returns the 8-bit character set of the document language.
func (f fib) codePage() *charmap.Charmap {
	switch f.lid & 0x3FF {
	case 0x05, 0x0E, 0x15, 0x18, 0x1A, 0x1B, 0x24, 0x1C:
		return charmap.Windows1250
	case 0x19, 0x22, 0x23, 0x02, 0x2F:
		return charmap.Windows1251
	case 0x08:
		return charmap.Windows1253
	case 0x1F:
		return charmap.Windows1254
	case 0x0D:
		return charmap.Windows1255
	case 0x01, 0x29, 0x20:
		return charmap.Windows1256
	case 0x25, 0x26, 0x27:
		return charmap.Windows1257
	}
	return charmap.Windows1252
}
