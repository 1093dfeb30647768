package ole

import (
	"bytes"
	"encoding/binary"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordview/internal/wordtest"
)

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

func open(t *testing.T, data []byte) *File {
	t.Helper()
	f, err := Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return f
}

func TestReadStreams(t *testing.T) {
	small, big := pattern(100, 1), pattern(10000, 2)
	f := open(t, wordtest.Compound(map[string][]byte{"Small": small, "Big": big}))

	assert.ElementsMatch(t, []string{"Small", "Big"}, f.Names())
	assert.True(t, f.Has("Big"))
	assert.False(t, f.Has("Missing"))

	got, err := f.Stream("Small")
	require.NoError(t, err)
	assert.Equal(t, small, got)

	got, err = f.Stream("Big")
	require.NoError(t, err)
	assert.Equal(t, big, got)
}

func TestPrefix(t *testing.T) {
	big := pattern(5000, 3)
	f := open(t, wordtest.Compound(map[string][]byte{"Big": big, "Tiny": {1, 2}}))

	p, err := f.Prefix("Big", 4)
	require.NoError(t, err)
	assert.Equal(t, big[:4], p)

	p, err = f.Prefix("Tiny", 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, p)

	_, err = f.Prefix("Nope", 4)
	assert.ErrorIs(t, err, ErrNoStream)
}

func TestPrefixThenStream(t *testing.T) {
	for _, n := range []int{100, 6000} {
		data := pattern(n, 9)
		f := open(t, wordtest.Compound(map[string][]byte{"S": data}))

		p, err := f.Prefix("S", 10)
		require.NoError(t, err)
		assert.Equal(t, data[:10], p)

		got, err := f.Stream("S")
		require.NoError(t, err)
		assert.Equal(t, data, got)

		p, err = f.Prefix("S", 20)
		require.NoError(t, err)
		assert.Equal(t, data[:20], p)
	}
}

func TestBrokenDirectory(t *testing.T) {
	data := wordtest.Compound(map[string][]byte{"A": {1}})
	binary.LittleEndian.PutUint32(data[0x30:], 0x00FFFFF0)
	_, err := Open(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestMissingStream(t *testing.T) {
	f := open(t, wordtest.Compound(map[string][]byte{"A": {1}}))
	_, err := f.Stream("B")
	assert.ErrorIs(t, err, ErrNoStream)
}

func TestNotCompound(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("short"), make([]byte, 1024)} {
		_, err := Open(bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, ErrNotCompound)
	}
	assert.False(t, IsCompound([]byte{0xD0, 0xCF}))
	assert.True(t, IsCompound(Signature))
}

func TestBadSectorShift(t *testing.T) {
	data := wordtest.Compound(map[string][]byte{"A": {1}})
	binary.LittleEndian.PutUint16(data[0x1E:], 3)
	_, err := Open(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBrokenChain(t *testing.T) {
	data := wordtest.Compound(map[string][]byte{"Big": pattern(9000, 4)})
	dir := 512 * (1 + int(binary.LittleEndian.Uint32(data[0x30:])))
	name := utf16.Encode([]rune("Big"))
	found := false
	for off := dir; off+128 <= dir+512; off += 128 {
		if binary.LittleEndian.Uint16(data[off:]) == name[0] && binary.LittleEndian.Uint16(data[off+2:]) == name[1] {
			binary.LittleEndian.PutUint32(data[off+0x74:], 0x7FFF)
			found = true
		}
	}
	require.True(t, found)

	f := open(t, data)
	_, err := f.Stream("Big")
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestTruncatedFile(t *testing.T) {
	data := wordtest.Compound(map[string][]byte{"Big": pattern(9000, 5)})
	data = data[:len(data)-4096]
	f, err := Open(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		assert.ErrorIs(t, err, ErrCorrupt)
		return
	}
	_, err = f.Stream("Big")
	assert.ErrorIs(t, err, ErrCorrupt)
}
