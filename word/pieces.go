package word

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	fcCompressed = 0x40000000
	pcdSize      = 8
	// noRune fills the CP of the second half of a surrogate pair.
	noRune rune = -1
)

// piece maps the CP range [cpStart, cpEnd) to bytes at fc in the main
// stream.
type piece struct {
	cpStart, cpEnd uint32
	fc             uint32
	wide           bool
	cm             *charmap.Charmap
	// prm is the grpprl applied to every character of the piece.
	prm []byte
}

func (p piece) width() uint32 {
	if p.wide {
		return 2
	}
	return 1
}

// fcAt returns the stream offset of cp, which must lie in the piece.
func (p piece) fcAt(cp uint32) uint32 {
	return p.fc + (cp-p.cpStart)*p.width()
}

// decode returns one rune per CP. A piece running past the end of main
// is clamped; one starting beyond it is an error.
func (p piece) decode(main []byte, cfg *config) ([]rune, error) {
	n := int(p.cpEnd - p.cpStart)
	if n == 0 {
		return nil, nil
	}
	start := int64(p.fc)
	if start >= int64(len(main)) {
		return nil, newError(KindTruncated, "text", "piece at cp %d starts at fc %d beyond stream of %d bytes", p.cpStart, p.fc, len(main))
	}
	end := start + int64(n)*int64(p.width())
	if end > int64(len(main)) {
		cfg.warnf("text", "piece at cp %d clamped to the stream end", p.cpStart)
		end = int64(len(main))
		n = int(end-start) / int(p.width())
	}
	raw := main[start:end]

	runes := make([]rune, n)
	if !p.wide {
		for i := 0; i < n; i++ {
			runes[i] = p.cm.DecodeByte(raw[i])
		}
		return runes, nil
	}
	for i := 0; i < n; i++ {
		u := rune(binary.LittleEndian.Uint16(raw[2*i:]))
		if !utf16.IsSurrogate(u) {
			runes[i] = u
			continue
		}
		if i+1 < n {
			next := rune(binary.LittleEndian.Uint16(raw[2*i+2:]))
			if r := utf16.DecodeRune(u, next); r != utf8.RuneError {
				runes[i], runes[i+1] = r, noRune
				i++
				continue
			}
		}
		runes[i] = utf8.RuneError
	}
	return runes, nil
}

// simplePieces covers the text of a non-complex file: one 8-bit piece at
// fcMin.
func simplePieces(f fib, cm *charmap.Charmap) []piece {
	total := f.ccpText + f.ccpFtn
	if total == 0 {
		return nil
	}
	return []piece{{cpStart: 0, cpEnd: total, fc: f.fcMin, cm: cm}}
}

// parseCLX reads the piece table. wideCapable enables the Word 97
// distinction between compressed and UTF-16 pieces.
func parseCLX(table []byte, loc fcLcb, cm *charmap.Charmap, wideCapable bool) ([]piece, error) {
	const op = "clx"
	if loc.lcb == 0 {
		return nil, newError(KindCorruptIndex, op, "missing piece table")
	}
	if uint64(loc.fc)+uint64(loc.lcb) > uint64(len(table)) {
		return nil, newError(KindTruncated, op, "clx at %d+%d beyond table of %d bytes", loc.fc, loc.lcb, len(table))
	}
	clx := table[loc.fc : loc.fc+loc.lcb]
	le := binary.LittleEndian

	var grpprls [][]byte
	pos := 0
	for pos < len(clx) && clx[pos] == 0x01 {
		if pos+3 > len(clx) {
			return nil, newError(KindCorruptIndex, op, "short property block at %d", pos)
		}
		cb := int(le.Uint16(clx[pos+1:]))
		if pos+3+cb > len(clx) {
			return nil, newError(KindCorruptIndex, op, "property block at %d overruns the clx", pos)
		}
		grpprls = append(grpprls, clx[pos+3:pos+3+cb])
		pos += 3 + cb
	}
	if pos+5 > len(clx) || clx[pos] != 0x02 {
		return nil, newError(KindCorruptIndex, op, "no piece descriptor block")
	}
	lcb := int(le.Uint32(clx[pos+1:]))
	plc := clx[pos+5:]
	if lcb > len(plc) || lcb < 4 || (lcb-4)%(4+pcdSize) != 0 {
		return nil, newError(KindCorruptIndex, op, "piece table length %d inconsistent", lcb)
	}
	n := (lcb - 4) / (4 + pcdSize)
	pieces := make([]piece, 0, n)
	for i := 0; i < n; i++ {
		start := le.Uint32(plc[4*i:])
		end := le.Uint32(plc[4*i+4:])
		if end <= start {
			return nil, newError(KindCorruptIndex, op, "piece %d has cp range %d-%d", i, start, end)
		}
		if i > 0 && start != pieces[i-1].cpEnd {
			return nil, newError(KindCorruptIndex, op, "piece %d does not follow piece %d", i, i-1)
		}
		pcd := plc[4*(n+1)+pcdSize*i:]
		fc := le.Uint32(pcd[2:])
		prm := le.Uint16(pcd[6:])
		p := piece{cpStart: start, cpEnd: end, fc: fc, cm: cm}
		if wideCapable {
			if fc&fcCompressed != 0 {
				p.fc = (fc &^ fcCompressed) / 2
				p.cm = charmap.Windows1252
			} else {
				p.wide = true
			}
		}
		if prm&1 == 1 {
			if idx := int(prm >> 1); idx < len(grpprls) {
				p.prm = grpprls[idx]
			}
		}
		pieces = append(pieces, p)
	}
	return pieces, nil
}
