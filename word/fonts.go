package word

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// winword2Fonts are the ftc values WinWord 2 reserves before its table.
var winword2Fonts = []string{"Tms Rmn", "Symbol", "Helv"}

// fontTable maps ftc to font names.
type fontTable []string

func (t fontTable) name(ftc uint16) string {
	if int(ftc) < len(t) {
		return t[ftc]
	}
	return ""
}

// parseFonts97 reads a Word 97 SttbfFfn: a count, an extra-data size
// and FFN entries with UTF-16 names at offset 40.
func parseFonts97(table []byte, loc fcLcb, cfg *config) fontTable {
	b, ok := slice(table, loc)
	if !ok || len(b) < 4 {
		return nil
	}
	count := int(binary.LittleEndian.Uint16(b))
	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	var fonts fontTable
	pos := 4
	for i := 0; i < count && pos < len(b); i++ {
		size := int(b[pos]) + 1
		if pos+size > len(b) {
			cfg.warnf("fonts", "entry %d overruns the font table", i)
			break
		}
		entry := b[pos : pos+size]
		name := ""
		if len(entry) > 40 {
			raw := entry[40:]
			for j := 0; j+1 < len(raw); j += 2 {
				if raw[j] == 0 && raw[j+1] == 0 {
					raw = raw[:j]
					break
				}
			}
			if s, err := dec.Bytes(raw); err == nil {
				name = string(s)
			}
		}
		fonts = append(fonts, name)
		pos += size
	}
	return fonts
}

// parseFonts8 reads the 8-bit font tables of Word 6 and WinWord 2: a
// total size, then entries whose names start at nameOff.
func parseFonts8(table []byte, loc fcLcb, nameOff int, cm *charmap.Charmap, cfg *config) fontTable {
	b, ok := slice(table, loc)
	if !ok || len(b) < 2 {
		return nil
	}
	if total := int(binary.LittleEndian.Uint16(b)); total < len(b) {
		b = b[:total]
	}
	var fonts fontTable
	for pos := 2; pos < len(b); {
		size := int(b[pos]) + 1
		if pos+size > len(b) {
			cfg.warnf("fonts", "entry at %d overruns the font table", pos)
			break
		}
		entry := b[pos : pos+size]
		name := ""
		if len(entry) > nameOff {
			raw := entry[nameOff:]
			if i := bytes.IndexByte(raw, 0); i >= 0 {
				raw = raw[:i]
			}
			if s, err := cm.NewDecoder().Bytes(raw); err == nil {
				name = string(s)
			}
		}
		fonts = append(fonts, name)
		pos += size
	}
	return fonts
}

// slice returns the bytes loc points at, if they lie inside b.
func slice(b []byte, loc fcLcb) ([]byte, bool) {
	if loc.lcb == 0 || uint64(loc.fc)+uint64(loc.lcb) > uint64(len(b)) {
		return nil, false
	}
	return b[loc.fc : loc.fc+loc.lcb], true
}
