package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF8IsIdentity(t *testing.T) {
	tbl := UTF8()
	assert.True(t, tbl.UTF8())
	assert.Equal(t, []byte("naïve “quotes”"), tbl.Encode("naïve “quotes”"))

	var buf bytes.Buffer
	assert.Same(t, &buf, tbl.NewWriter(&buf).(*bytes.Buffer))
}

func TestNamed(t *testing.T) {
	for _, name := range []string{"iso-8859-1", "ISO-8859-2", "8859-5.txt", "cp1252", "windows-1251", "koi8-r", "latin1", "macroman"} {
		tbl, err := Named(name)
		require.NoError(t, err, name)
		assert.False(t, tbl.UTF8(), name)
	}

	tbl, err := Named("utf-8")
	require.NoError(t, err)
	assert.True(t, tbl.UTF8())

	_, err = Named("klingon")
	assert.Error(t, err)
	_, err = Named("shift_jis")
	assert.ErrorContains(t, err, "single-byte")
}

func TestEncodeLatin1WithFallbacks(t *testing.T) {
	tbl, err := Named("iso-8859-1")
	require.NoError(t, err)
	got := tbl.Encode("café – “ok” € 中")
	assert.Equal(t, []byte("caf\xe9 - \"ok\" EUR ?"), got)
}

func TestLoadMappingFile(t *testing.T) {
	src := `# sample
0x41	0x0041
0xA4	0x20AC	# euro
0xB0	#UNDEFINED
`
	tbl, err := Load("euro.txt", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "euro.txt", tbl.Name())
	assert.Equal(t, []byte("A\xa4b?"), tbl.Encode("A€b°"))

	_, err = Load("empty.txt", strings.NewReader("# nothing\n"))
	assert.Error(t, err)
	_, err = Load("bad.txt", strings.NewReader("0x100 0x41\n"))
	assert.ErrorContains(t, err, "bad code")
}

func TestOpenFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.txt")
	require.NoError(t, os.WriteFile(path, []byte("0x80 0x20AC\n"), 0o644))

	tbl, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x80}, tbl.Encode("€"))

	_, err = Open(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestWriterReassemblesSplitRunes(t *testing.T) {
	tbl, err := Named("iso-8859-1")
	require.NoError(t, err)

	var buf bytes.Buffer
	w := tbl.NewWriter(&buf)
	e := []byte("é")
	_, err = w.Write([]byte{'x', e[0]})
	require.NoError(t, err)
	_, err = w.Write([]byte{e[1], 'y'})
	require.NoError(t, err)
	assert.Equal(t, []byte("x\xe9y"), buf.Bytes())
}

func TestMap(t *testing.T) {
	tbl, err := Named("iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "é", tbl.Map('é'))
	assert.Equal(t, "-", tbl.Map('–'))
	assert.Equal(t, "?", tbl.Map('中'))
	assert.Equal(t, "中", UTF8().Map('中'))
}
