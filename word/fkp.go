package word

import (
	"encoding/binary"
	"sort"
)

const fkpSize = 512

// fcRun carries the raw properties of the stream range [start, end).
type fcRun struct {
	start, end uint32
	props      []byte
}

// runTable is sorted by start and free of overlaps.
type runTable []fcRun

// find returns the index of the run containing fc, or -1.
func (t runTable) find(fc uint32) int {
	i := sort.Search(len(t), func(i int) bool { return t[i].end > fc })
	if i < len(t) && t[i].start <= fc {
		return i
	}
	return -1
}

// fkpKind selects how FKP entries are laid out and decoded.
type fkpKind struct {
	name string
	// bx is the size of an entry after rgfc: 1 for character FKPs.
	bx int
	// extract returns the properties stored at byte offset off of page.
	extract func(page []byte, off int) ([]byte, bool)
}

var (
	chpxFKP = fkpKind{name: "chpx", bx: 1, extract: extractCHPX}
	papx97  = fkpKind{name: "papx", bx: 13, extract: extractPAPX97}
	papx6   = fkpKind{name: "papx", bx: 7, extract: extractPAPX6}
)

func extractCHPX(page []byte, off int) ([]byte, bool) {
	cb := int(page[off])
	if off+1+cb > fkpSize-1 {
		return nil, false
	}
	return page[off+1 : off+1+cb], true
}

// extractPAPX97 returns the grpprl of a Word 97 PAPX, skipping istd.
func extractPAPX97(page []byte, off int) ([]byte, bool) {
	n := 2*int(page[off]) - 1
	start := off + 1
	if page[off] == 0 {
		if off+1 >= fkpSize-1 {
			return nil, false
		}
		n = 2 * int(page[off+1])
		start = off + 2
	}
	if start+n > fkpSize-1 {
		return nil, false
	}
	if n < 2 {
		return nil, true
	}
	return page[start+2 : start+n], true
}

// extractPAPX6 returns the grpprl of a Word 6 PAPX, skipping istd.
func extractPAPX6(page []byte, off int) ([]byte, bool) {
	n := 2 * int(page[off])
	start := off + 1
	if start+n > fkpSize-1 {
		return nil, false
	}
	if n < 1 {
		return nil, true
	}
	return page[start+1 : start+n], true
}

// readBinTable reads a PlcfBte: (n+1) FCs then n page numbers of pnSize
// bytes. Only the page numbers are needed.
func readBinTable(op string, table []byte, loc fcLcb, pnSize int) ([]uint32, error) {
	if loc.lcb == 0 {
		return nil, nil
	}
	if uint64(loc.fc)+uint64(loc.lcb) > uint64(len(table)) {
		return nil, newError(KindTruncated, op, "bin table at %d+%d beyond %d bytes", loc.fc, loc.lcb, len(table))
	}
	lcb := int(loc.lcb)
	if lcb < 4 || (lcb-4)%(4+pnSize) != 0 {
		return nil, newError(KindCorruptIndex, op, "bin table length %d inconsistent with entry size %d", lcb, 4+pnSize)
	}
	n := (lcb - 4) / (4 + pnSize)
	plc := table[loc.fc : loc.fc+loc.lcb]
	pns := make([]uint32, n)
	for i := range pns {
		off := 4*(n+1) + i*pnSize
		if pnSize == 2 {
			pns[i] = uint32(binary.LittleEndian.Uint16(plc[off:]))
		} else {
			pns[i] = binary.LittleEndian.Uint32(plc[off:])
		}
	}
	return pns, nil
}

// readFKPs collects the runs of every FKP page and normalizes them into
// a runTable. Unreadable pages and entries are skipped with a warning.
func readFKPs(main []byte, pns []uint32, kind fkpKind, cfg *config) runTable {
	var runs []fcRun
	for _, pn := range pns {
		off := int64(pn) * fkpSize
		if off+fkpSize > int64(len(main)) {
			cfg.warnf(kind.name, "page %d beyond the stream", pn)
			continue
		}
		page := main[off : off+fkpSize]
		crun := int(page[fkpSize-1])
		if 4*(crun+1)+crun*kind.bx > fkpSize-1 {
			cfg.warnf(kind.name, "page %d claims %d runs", pn, crun)
			continue
		}
		le := binary.LittleEndian
		for i := 0; i < crun; i++ {
			r := fcRun{start: le.Uint32(page[4*i:]), end: le.Uint32(page[4*i+4:])}
			if wo := int(page[4*(crun+1)+i*kind.bx]); wo != 0 {
				props, ok := kind.extract(page, 2*wo)
				if !ok {
					cfg.warnf(kind.name, "page %d entry %d overruns the page", pn, i)
					continue
				}
				r.props = props
			}
			runs = append(runs, r)
		}
	}
	return normalizeRuns(runs, kind.name, cfg)
}

func normalizeRuns(runs []fcRun, op string, cfg *config) runTable {
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].start < runs[j].start })
	out := make(runTable, 0, len(runs))
	for _, r := range runs {
		if n := len(out); n > 0 && r.start < out[n-1].end {
			cfg.warnf(op, "run %d-%d overlaps the previous run", r.start, r.end)
			r.start = out[n-1].end
		}
		if r.end <= r.start {
			continue
		}
		out = append(out, r)
	}
	return out
}
