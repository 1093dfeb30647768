package format

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordview/internal/ole"
	"github.com/tsawler/wordview/internal/wordtest"
)

func classify(b []byte) Tag {
	return Classify(bytes.NewReader(b), int64(len(b)))
}

func sampleDoc() wordtest.Doc {
	return wordtest.Doc{Paragraphs: []wordtest.Paragraph{{Runs: []wordtest.Run{{Text: "Hello"}}}}}
}

func flatFIB(ident, nFib uint16) []byte {
	b := make([]byte, 256)
	binary.LittleEndian.PutUint16(b, ident)
	binary.LittleEndian.PutUint16(b[2:], nFib)
	return b
}

func TestClassifyBuiltDocuments(t *testing.T) {
	word7 := sampleDoc()
	word7.NFib = 104

	tests := []struct {
		name string
		data []byte
		want Tag
	}{
		{"winword2", wordtest.WinWord2(sampleDoc()), WinWord2},
		{"word6", wordtest.Word6(sampleDoc()), Word6},
		{"word7", wordtest.Word6(word7), Word7},
		{"word97", wordtest.Word97(sampleDoc()), Word97},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.data))
		})
	}
}

func TestClassifyFlatHeaders(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Tag
	}{
		{"winword1", flatFIB(0xA59B, 33), WinWord1},
		{"winword2 nfib 44", flatFIB(0xA5DB, 44), WinWord2},
		{"winword2 unknown nfib", flatFIB(0xA5DB, 50), Ambiguous},
		{"word for dos", append([]byte{0x31, 0xBE, 0x00, 0x00}, make([]byte, 60)...), Ambiguous},
		{"mac word 5", append([]byte{0xFE, 0x37, 0x00, 0x1C}, make([]byte, 60)...), Ambiguous},
		{"random ident", flatFIB(0x1234, 45), Unsupported},
		{"too short", flatFIB(0xA5DB, 45)[:MinHeaderSize-1], Unsupported},
		{"empty", nil, Unsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.data))
		})
	}
}

func TestClassifyCompoundFiles(t *testing.T) {
	t.Run("no WordDocument stream", func(t *testing.T) {
		data := wordtest.Compound(map[string][]byte{"Workbook": make([]byte, 64)})
		assert.Equal(t, Ambiguous, classify(data))
	})
	t.Run("unknown nFib", func(t *testing.T) {
		fib := make([]byte, 64)
		binary.LittleEndian.PutUint16(fib, 0xA5EC)
		binary.LittleEndian.PutUint16(fib[2:], 400)
		data := wordtest.Compound(map[string][]byte{WordStream: fib})
		res := Sniff(bytes.NewReader(data), int64(len(data)))
		assert.Equal(t, Ambiguous, res.Tag)
		assert.Equal(t, uint16(400), res.NFib)
	})
	t.Run("signature only", func(t *testing.T) {
		data := append(append([]byte(nil), ole.Signature...), make([]byte, 600)...)
		assert.Equal(t, Ambiguous, classify(data))
	})
}

func TestSniffDetails(t *testing.T) {
	data := wordtest.Word97(sampleDoc())
	res := Sniff(bytes.NewReader(data), int64(len(data)))
	assert.Equal(t, Word97, res.Tag)
	assert.Equal(t, ContainerOLE, res.Container)
	assert.Equal(t, uint16(0xA5EC), res.Ident)
	assert.Equal(t, uint16(193), res.NFib)
	assert.Equal(t, "word97", res.Version)
}

func TestSniffNeverReadsPastSize(t *testing.T) {
	data := wordtest.WinWord2(sampleDoc())
	// a declared size below the header makes the input too short
	assert.Equal(t, Unsupported, Classify(bytes.NewReader(data), MinHeaderSize-1))
}

func TestSnifferCustomRegistry(t *testing.T) {
	reg, err := LoadRegistry(strings.NewReader(`
versions:
  - name: winword2-legacy
    container: flat
    ident: 0xA5DB
    nfib_min: 45
    nfib_max: 45
    supported: false
`))
	require.NoError(t, err)
	data := wordtest.WinWord2(sampleDoc())
	res := Sniffer{Registry: reg}.Sniff(bytes.NewReader(data), int64(len(data)))
	assert.Equal(t, Ambiguous, res.Tag)
	assert.Equal(t, "winword2-legacy", res.Version)
}

func TestLoadRegistryValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "versions: []"},
		{"no name", "versions:\n  - container: flat\n    ident: 1"},
		{"bad container", "versions:\n  - name: x\n    container: zip\n    ident: 1"},
		{"bad magic", "versions:\n  - name: x\n    container: flat\n    magic: zz"},
		{"magic in ole", "versions:\n  - name: x\n    container: ole\n    magic: 'ff'"},
		{"no ident", "versions:\n  - name: x\n    container: ole"},
		{"inverted range", "versions:\n  - name: x\n    container: ole\n    ident: 1\n    nfib_min: 5\n    nfib_max: 4"},
		{"undecodable", "versions:\n  - name: x\n    container: ole\n    ident: 1\n    tag: ambiguous\n    supported: true"},
		{"unknown field", "versions:\n  - name: x\n    container: ole\n    ident: 1\n    colour: red"},
		{"unknown tag", "versions:\n  - name: x\n    container: ole\n    ident: 1\n    tag: word2000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRegistry(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestTagNames(t *testing.T) {
	for tag := Unsupported; tag <= Word97; tag++ {
		parsed, err := ParseTag(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
		assert.NotEmpty(t, tag.Description())
	}
	assert.True(t, Word7.Supported())
	assert.False(t, Ambiguous.Supported())
	assert.Equal(t, "Tag(42)", Tag(42).String())
}

func zipped(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDetectForeign(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Foreign
	}{
		{"rtf", []byte(`{\rtf1\ansi hello}`), RTF},
		{"wordperfect", []byte("\xFFWPC\x10\x00\x00\x00"), WordPerfect},
		{"pdf", []byte("%PDF-1.4\n"), PDF},
		{"docx", zipped(t, map[string]string{"word/document.xml": "<w:document/>"}), OfficeOpenXML},
		{"odt", zipped(t, map[string]string{"mimetype": "application/vnd.oasis.opendocument.text"}), OpenDocument},
		{"plain zip", zipped(t, map[string]string{"a.txt": "x"}), NotForeign},
		{"html doctype", []byte("<!-- c -->\n<!DOCTYPE html><html></html>"), HTML},
		{"html tag", []byte("  <html><body>x</body></html>"), HTML},
		{"xml", []byte(`<?xml version="1.0"?><book/>`), NotForeign},
		{"text", []byte("just some text"), NotForeign},
		{"word97", wordtest.Word97(sampleDoc()), NotForeign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectForeign(bytes.NewReader(tt.data), int64(len(tt.data))))
		})
	}
	assert.Equal(t, ".rtf", RTF.Extension())
	assert.Equal(t, "Rich Text Format", RTF.String())
}

func FuzzClassify(f *testing.F) {
	f.Add(wordtest.WinWord2(sampleDoc()))
	f.Add(wordtest.Word97(sampleDoc()))
	f.Add(flatFIB(0xA5DB, 45))
	f.Fuzz(func(t *testing.T, data []byte) {
		tag := classify(data)
		if tag < Unsupported || tag > Word97 {
			t.Fatalf("tag %d out of range", tag)
		}
		if len(data) < MinHeaderSize && tag != Unsupported {
			t.Fatalf("short input classified as %s", tag)
		}
	})
}
