package word

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/tsawler/wordview/model"
)

func TestToggle(t *testing.T) {
	tests := []struct {
		cur  bool
		arg  byte
		want bool
	}{
		{true, 0, false},
		{false, 1, true},
		{true, 0x80, true},
		{false, 0x80, false},
		{true, 0x81, false},
		{false, 0x81, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toggle(tt.cur, []byte{tt.arg}), "cur=%v arg=%#x", tt.cur, tt.arg)
	}
	assert.True(t, toggle(true, nil))
}

func TestWord97SprmOperands(t *testing.T) {
	g := []byte{
		0x35, 0x08, 0x01, // bold, 1 byte
		0x4F, 0x4A, 0x02, 0x00, // font 2, 2 bytes
		0x03, 0x6A, 0x10, 0x00, 0x00, 0x00, // picture fc, 4 bytes
		0x08, 0xD6, 0x03, 0x00, 0xAA, 0xBB, // table defs: count plus one
		0x15, 0xC6, 0x02, 0xCC, 0xDD, // variable, byte count
		0x36, 0x08, 0x01, // italic
	}
	var ops []uint16
	var c charProps
	word97Sprms{}.each(g, func(op uint16, arg []byte) {
		ops = append(ops, op)
		word97Sprms{}.applyChar(&c, op, arg)
	})
	assert.Equal(t, []uint16{0x0835, 0x4A4F, 0x6A03, 0xD608, 0xC615, 0x0836}, ops)
	assert.True(t, c.style.Bold)
	assert.True(t, c.style.Italic)
	assert.Equal(t, uint16(2), c.style.FontID)
	assert.True(t, c.hasPic)
	assert.Equal(t, uint32(0x10), c.picFC)
}

func TestWord97SprmTruncatedStops(t *testing.T) {
	var n int
	word97Sprms{}.each([]byte{0x35, 0x08, 0x01, 0x4F, 0x4A, 0x02}, func(uint16, []byte) { n++ })
	assert.Equal(t, 1, n)
}

func TestPlainResetKeepsFont(t *testing.T) {
	c := charProps{style: model.Style{Bold: true, FontID: 3}, special: true}
	applyChars(word97Sprms{}, &c, []byte{0x33, 0x2A, 0x00})
	assert.False(t, c.style.Bold)
	assert.False(t, c.special)
	assert.Equal(t, uint16(3), c.style.FontID)

	c = charProps{style: model.Style{Bold: true, FontID: 5}}
	applyChars(word6Sprms{}, &c, []byte{83, 86, 1})
	assert.False(t, c.style.Bold)
	assert.True(t, c.style.Italic)
	assert.Equal(t, uint16(5), c.style.FontID)
}

func TestWord6SprmsStopAtUnknownOperator(t *testing.T) {
	var ops []uint16
	word6Sprms{}.each([]byte{85, 1, 188, 2, 0, 9, 9, 0, 86, 1}, func(op uint16, _ []byte) { ops = append(ops, op) })
	assert.Equal(t, []uint16{85, 188}, ops)
}

func TestSectionBreakCode(t *testing.T) {
	assert.Equal(t, 0, word97Sprms{}.sectionBreak([]byte{0x09, 0x30, 0x00}))
	assert.Equal(t, -1, word97Sprms{}.sectionBreak([]byte{0x35, 0x08, 0x01}))
	assert.Equal(t, 3, word6Sprms{}.sectionBreak([]byte{142, 3}))
}

func TestWinWord2CHP(t *testing.T) {
	var c charProps
	winword2CHP(&c, []byte{0x83, 0x02, 0x05, 0x00, 24, 0, 0x08})
	assert.True(t, c.style.Bold)
	assert.True(t, c.style.Italic)
	assert.True(t, c.style.Hidden)
	assert.True(t, c.special)
	assert.Equal(t, uint16(5), c.style.FontID)
	assert.Equal(t, uint16(24), c.style.HalfPoints)
	assert.True(t, c.style.Underline)

	c = charProps{}
	winword2CHP(&c, []byte{0x01, 0x00, 0x07})
	assert.True(t, c.style.Bold)
	assert.Zero(t, c.style.FontID)
}

func TestRunTableFind(t *testing.T) {
	rt := runTable{{start: 10, end: 20}, {start: 20, end: 25}, {start: 30, end: 40}}
	assert.Equal(t, -1, rt.find(5))
	assert.Equal(t, 0, rt.find(10))
	assert.Equal(t, 0, rt.find(19))
	assert.Equal(t, 1, rt.find(20))
	assert.Equal(t, -1, rt.find(27))
	assert.Equal(t, 2, rt.find(39))
	assert.Equal(t, -1, rt.find(40))
}

func TestNormalizeRunsClampsOverlaps(t *testing.T) {
	var warnings []Warning
	cfg := newConfig([]Option{WithWarnings(func(w Warning) { warnings = append(warnings, w) })})
	rt := normalizeRuns([]fcRun{
		{start: 30, end: 40},
		{start: 10, end: 20},
		{start: 15, end: 25},
		{start: 18, end: 19},
	}, "chpx", cfg)
	require.Len(t, rt, 3)
	assert.Equal(t, fcRun{start: 10, end: 20}, rt[0])
	assert.Equal(t, fcRun{start: 20, end: 25}, rt[1])
	assert.Equal(t, uint32(30), rt[2].start)
	assert.Len(t, warnings, 2)
}

func TestExtractPAPX(t *testing.T) {
	page := make([]byte, fkpSize)
	// odd length: cb=2 gives 3 bytes, istd then one sprm byte
	copy(page[100:], []byte{2, 0x00, 0x00, 0x7F})
	g, ok := extractPAPX97(page, 100)
	require.True(t, ok)
	assert.Equal(t, []byte{0x7F}, g)

	// even length: cb=0 then cb'=3 gives 6 bytes
	copy(page[200:], []byte{0, 3, 0x00, 0x00, 0x03, 0x24, 0x01, 0x00})
	g, ok = extractPAPX97(page, 200)
	require.True(t, ok)
	assert.Equal(t, []byte{0x03, 0x24, 0x01, 0x00}, g)

	copy(page[300:], []byte{2, 0x00, 5, 1, 0})
	g, ok = extractPAPX6(page, 300)
	require.True(t, ok)
	assert.Equal(t, []byte{5, 1, 0}, g)

	page[508] = 40
	_, ok = extractPAPX97(page, 508)
	assert.False(t, ok)
}

func TestReadBinTable(t *testing.T) {
	var plc []byte
	for _, v := range []uint32{0x400, 0x500, 0x600} {
		plc = binary.LittleEndian.AppendUint32(plc, v)
	}
	plc = binary.LittleEndian.AppendUint16(plc, 3)
	plc = binary.LittleEndian.AppendUint16(plc, 4)
	pns, err := readBinTable("chpx", plc, fcLcb{0, uint32(len(plc))}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{3, 4}, pns)

	_, err = readBinTable("chpx", plc, fcLcb{0, uint32(len(plc)) - 1}, 2)
	assert.ErrorIs(t, err, ErrCorruptIndex)
	_, err = readBinTable("chpx", plc, fcLcb{4, uint32(len(plc))}, 2)
	assert.ErrorIs(t, err, ErrTruncated)

	pns, err = readBinTable("chpx", nil, fcLcb{}, 4)
	require.NoError(t, err)
	assert.Empty(t, pns)
}

func clx(pieces [][3]uint32, grpprls ...[]byte) []byte {
	le := binary.LittleEndian
	var b []byte
	for _, g := range grpprls {
		b = append(le.AppendUint16(append(b, 0x01), uint16(len(g))), g...)
	}
	var plc []byte
	for _, p := range pieces {
		plc = le.AppendUint32(plc, p[0])
	}
	plc = le.AppendUint32(plc, pieces[len(pieces)-1][1])
	for _, p := range pieces {
		plc = le.AppendUint16(le.AppendUint32(le.AppendUint16(plc, 0), p[2]), 0)
	}
	return append(le.AppendUint32(append(b, 0x02), uint32(len(plc))), plc...)
}

func TestParseCLX(t *testing.T) {
	b := clx([][3]uint32{{0, 5, 0x40000000 | 0x800}, {5, 9, 0x600}}, []byte{0x35, 0x08, 0x01})
	pieces, err := parseCLX(b, fcLcb{0, uint32(len(b))}, charmap.Windows1252, true)
	require.NoError(t, err)
	require.Len(t, pieces, 2)
	assert.False(t, pieces[0].wide)
	assert.Equal(t, uint32(0x400), pieces[0].fc)
	assert.True(t, pieces[1].wide)
	assert.Equal(t, uint32(0x600+2*2), pieces[1].fcAt(7))

	t.Run("empty piece", func(t *testing.T) {
		b := clx([][3]uint32{{0, 5, 0}, {5, 9, 0}})
		binary.LittleEndian.PutUint32(b[5+4:], 0)
		_, err := parseCLX(b, fcLcb{0, uint32(len(b))}, charmap.Windows1252, true)
		assert.ErrorIs(t, err, ErrCorruptIndex)
	})
	t.Run("overrun", func(t *testing.T) {
		_, err := parseCLX(b, fcLcb{0, uint32(len(b)) + 1}, charmap.Windows1252, true)
		assert.ErrorIs(t, err, ErrTruncated)
	})
	t.Run("bad block", func(t *testing.T) {
		bad := append([]byte{0x01, 0xFF, 0x00}, b...)
		_, err := parseCLX(bad, fcLcb{0, uint32(len(bad))}, charmap.Windows1252, true)
		assert.ErrorIs(t, err, ErrCorruptIndex)
	})
}

func TestPieceDecode(t *testing.T) {
	cfg := newConfig(nil)
	main := []byte{'a', 0x3D, 0xD8, 0x00, 0xDE, 'b', 0x00}
	p := piece{cpStart: 10, cpEnd: 13, fc: 1, wide: true}
	runes, err := p.decode(main, cfg)
	require.NoError(t, err)
	assert.Equal(t, []rune{'😀', noRune, 'b'}, runes)

	p = piece{cpStart: 0, cpEnd: 4, fc: 0, cm: charmap.Windows1252}
	runes, err = p.decode([]byte{'x', 0x80}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []rune{'x', '€'}, runes)

	p = piece{cpStart: 0, cpEnd: 1, fc: 10, cm: charmap.Windows1252}
	_, err = p.decode([]byte{'x'}, cfg)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestErrorFormatting(t *testing.T) {
	err := newError(KindCorruptIndex, "clx", "piece %d is bad", 3)
	assert.Equal(t, "word: corrupt structural index in clx: piece 3 is bad", err.Error())
	assert.ErrorIs(t, err, ErrCorruptIndex)
	assert.NotErrorIs(t, err, ErrTruncated)
}
