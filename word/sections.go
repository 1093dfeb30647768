package word

import "encoding/binary"

const noSEPX = 0xFFFFFFFF

// section starts at cp; newPage reports whether its break starts a page.
type section struct {
	cp      uint32
	newPage bool
}

// parseSections reads PlcfSed. sedSize is 12 for Word 6 and 97 and 6
// for WinWord 2. sprms is nil when section properties are not decoded;
// every section then starts a new page.
func parseSections(table, main []byte, loc fcLcb, sedSize int, sprms sprmSet, cfg *config) ([]section, error) {
	const op = "plcfsed"
	if loc.lcb == 0 {
		return nil, nil
	}
	b, ok := slice(table, loc)
	if !ok {
		return nil, newError(KindTruncated, op, "section table at %d+%d beyond %d bytes", loc.fc, loc.lcb, len(table))
	}
	if len(b) < 4 || (len(b)-4)%(4+sedSize) != 0 {
		return nil, newError(KindCorruptIndex, op, "section table length %d inconsistent", len(b))
	}
	le := binary.LittleEndian
	n := (len(b) - 4) / (4 + sedSize)
	secs := make([]section, 0, n+1)
	for i := 0; i <= n; i++ {
		cp := le.Uint32(b[4*i:])
		if i > 0 && cp < secs[i-1].cp {
			return nil, newError(KindCorruptIndex, op, "section %d starts before section %d", i, i-1)
		}
		s := section{cp: cp, newPage: true}
		if i < n && sprms != nil {
			fcSepx := le.Uint32(b[4*(n+1)+i*sedSize+2:])
			s.newPage = sepxNewPage(main, fcSepx, sprms, cfg)
		}
		secs = append(secs, s)
	}
	return secs, nil
}

func sepxNewPage(main []byte, fc uint32, sprms sprmSet, cfg *config) bool {
	if fc == noSEPX {
		return true
	}
	if uint64(fc)+2 > uint64(len(main)) {
		cfg.warnf("sepx", "properties at %d beyond the stream", fc)
		return true
	}
	cb := uint64(binary.LittleEndian.Uint16(main[fc:]))
	end := uint64(fc) + 2 + cb
	if end > uint64(len(main)) {
		cfg.warnf("sepx", "properties at %d overrun the stream", fc)
		return true
	}
	bkc := sprms.sectionBreak(main[fc+2 : end])
	return bkc < 0 || bkc >= 2
}
