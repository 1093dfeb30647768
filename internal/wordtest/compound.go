// Package wordtest builds small synthetic Word documents for tests: OLE2
// compound files, Word 97 and Word 6 streams, and flat WinWord 2 files.
package wordtest

import (
	"encoding/binary"
	"sort"
	"unicode/utf16"
)

const (
	sectorSize   = 512
	miniSize     = 64
	miniCutoff   = 4096
	dirEntrySize = 128

	freeSect   = 0xFFFFFFFF
	endOfChain = 0xFFFFFFFE
	fatSect    = 0xFFFFFFFD
	noStream   = 0xFFFFFFFF
)

var signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

type placed struct {
	name  string
	data  []byte
	start uint32
	mini  bool
}

// Compound returns a version 3 compound file holding the given streams.
// Streams shorter than 4096 bytes go to the mini stream.
func Compound(streams map[string][]byte) []byte {
	names := make([]string, 0, len(streams))
	for n := range streams {
		names = append(names, n)
	}
	sort.Strings(names)

	var entries []placed
	var ministream []byte
	var miniFAT []uint32
	for _, n := range names {
		data := streams[n]
		if len(data) >= miniCutoff {
			entries = append(entries, placed{name: n, data: data})
			continue
		}
		p := placed{name: n, data: data, mini: true, start: endOfChain}
		count := (len(data) + miniSize - 1) / miniSize
		if count > 0 {
			p.start = uint32(len(miniFAT))
			for i := 0; i < count; i++ {
				next := uint32(len(miniFAT) + 1)
				if i == count-1 {
					next = endOfChain
				}
				miniFAT = append(miniFAT, next)
			}
			padded := make([]byte, count*miniSize)
			copy(padded, data)
			ministream = append(ministream, padded...)
		}
		entries = append(entries, p)
	}

	sectors := func(n int) int { return (n + sectorSize - 1) / sectorSize }
	dirSecs := sectors((len(entries) + 1) * dirEntrySize)
	miniFATSecs := sectors(len(miniFAT) * 4)
	miniStreamSecs := sectors(len(ministream))
	bigSecs := 0
	for _, e := range entries {
		if !e.mini {
			bigSecs += sectors(len(e.data))
		}
	}
	payload := dirSecs + miniFATSecs + miniStreamSecs + bigSecs
	fatSecs := 1
	for (fatSecs+payload+sectorSize/4-1)/(sectorSize/4) > fatSecs {
		fatSecs++
	}
	if fatSecs > 109 {
		panic("wordtest: compound file too large")
	}

	total := fatSecs + payload
	fat := make([]uint32, fatSecs*sectorSize/4)
	for i := range fat {
		fat[i] = freeSect
	}
	for i := 0; i < fatSecs; i++ {
		fat[i] = fatSect
	}
	next := uint32(fatSecs)
	chain := func(count int) uint32 {
		if count == 0 {
			return endOfChain
		}
		start := next
		for i := 0; i < count; i++ {
			if i == count-1 {
				fat[next] = endOfChain
			} else {
				fat[next] = next + 1
			}
			next++
		}
		return start
	}
	dirStart := chain(dirSecs)
	miniFATStart := chain(miniFATSecs)
	miniStreamStart := chain(miniStreamSecs)
	for i := range entries {
		if !entries[i].mini {
			entries[i].start = chain(sectors(len(entries[i].data)))
		}
	}

	out := make([]byte, (total+1)*sectorSize)
	hdr := out[:sectorSize]
	copy(hdr, signature)
	le := binary.LittleEndian
	le.PutUint16(hdr[0x18:], 0x3E)
	le.PutUint16(hdr[0x1A:], 3)
	le.PutUint16(hdr[0x1C:], 0xFFFE)
	le.PutUint16(hdr[0x1E:], 9)
	le.PutUint16(hdr[0x20:], 6)
	le.PutUint32(hdr[0x2C:], uint32(fatSecs))
	le.PutUint32(hdr[0x30:], dirStart)
	le.PutUint32(hdr[0x38:], miniCutoff)
	le.PutUint32(hdr[0x3C:], miniFATStart)
	le.PutUint32(hdr[0x40:], uint32(miniFATSecs))
	le.PutUint32(hdr[0x44:], endOfChain)
	for i := 0; i < 109; i++ {
		id := uint32(freeSect)
		if i < fatSecs {
			id = uint32(i)
		}
		le.PutUint32(hdr[0x4C+4*i:], id)
	}

	at := func(sector uint32) []byte {
		off := (int(sector) + 1) * sectorSize
		return out[off:]
	}
	for i, v := range fat {
		le.PutUint32(at(uint32(i/(sectorSize/4)))[4*(i%(sectorSize/4)):], v)
	}

	dir := at(dirStart)
	writeDirEntry(dir, "Root Entry", 5, miniStreamStart, uint32(len(ministream)))
	if len(entries) > 0 {
		le.PutUint32(dir[0x4C:], 1)
	}
	for i, e := range entries {
		raw := dir[(i+1)*dirEntrySize:]
		writeDirEntry(raw, e.name, 2, e.start, uint32(len(e.data)))
		if i+1 < len(entries) {
			le.PutUint32(raw[0x48:], uint32(i+2))
		}
	}

	if miniFATSecs > 0 {
		mf := at(miniFATStart)
		for i := 0; i < miniFATSecs*sectorSize/4; i++ {
			v := uint32(freeSect)
			if i < len(miniFAT) {
				v = miniFAT[i]
			}
			le.PutUint32(mf[4*i:], v)
		}
	}
	if miniStreamSecs > 0 {
		copy(at(miniStreamStart), ministream)
	}
	for _, e := range entries {
		if !e.mini {
			copy(at(e.start), e.data)
		}
	}
	return out
}

func writeDirEntry(raw []byte, name string, typ byte, start, size uint32) {
	le := binary.LittleEndian
	units := utf16.Encode([]rune(name))
	for i, u := range units {
		le.PutUint16(raw[2*i:], u)
	}
	le.PutUint16(raw[0x40:], uint16(2*(len(units)+1)))
	raw[0x42] = typ
	raw[0x43] = 1
	le.PutUint32(raw[0x44:], noStream)
	le.PutUint32(raw[0x48:], noStream)
	le.PutUint32(raw[0x4C:], noStream)
	le.PutUint32(raw[0x74:], start)
	le.PutUint32(raw[0x78:], size)
}
