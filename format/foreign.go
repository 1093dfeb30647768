package format

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Foreign identifies a recognised document format that is not Word binary.
type Foreign int

const (
	// NotForeign means no foreign format was recognised.
	NotForeign Foreign = iota
	RTF
	WordPerfect
	PDF
	OfficeOpenXML
	OpenDocument
	HTML
)

// String returns the name used in diagnostics.
func (f Foreign) String() string {
	switch f {
	case RTF:
		return "Rich Text Format"
	case WordPerfect:
		return "Word Perfect"
	case PDF:
		return "PDF"
	case OfficeOpenXML:
		return "Office Open XML"
	case OpenDocument:
		return "OpenDocument"
	case HTML:
		return "HTML"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Foreign) Extension() string {
	switch f {
	case RTF:
		return ".rtf"
	case WordPerfect:
		return ".wpd"
	case PDF:
		return ".pdf"
	case OfficeOpenXML:
		return ".docx"
	case OpenDocument:
		return ".odt"
	case HTML:
		return ".html"
	default:
		return ""
	}
}

// foreignChecks is ordered from cheapest to most expensive.
var foreignChecks = []struct {
	format Foreign
	check  func(io.ReaderAt, int64) bool
}{
	{RTF, IsRTF},
	{WordPerfect, IsWordPerfect},
	{PDF, IsPDF},
	{OfficeOpenXML, IsOfficeOpenXML},
	{OpenDocument, IsOpenDocument},
	{HTML, IsHTML},
}

// DetectForeign returns the first foreign format whose predicate matches.
func DetectForeign(r io.ReaderAt, size int64) Foreign {
	for _, fc := range foreignChecks {
		if fc.check(r, size) {
			return fc.format
		}
	}
	return NotForeign
}

// IsRTF reports whether the input starts with the RTF signature.
func IsRTF(r io.ReaderAt, size int64) bool {
	return bytes.HasPrefix(readHead(r, size), []byte(`{\rtf`))
}

// IsWordPerfect reports whether the input starts with the WordPerfect
// signature, 0xFF followed by "WPC".
func IsWordPerfect(r io.ReaderAt, size int64) bool {
	return bytes.HasPrefix(readHead(r, size), []byte{0xFF, 'W', 'P', 'C'})
}

// IsPDF reports whether the input starts with %PDF.
func IsPDF(r io.ReaderAt, size int64) bool {
	return bytes.HasPrefix(readHead(r, size), []byte("%PDF"))
}

func isZIP(r io.ReaderAt, size int64) bool {
	return bytes.HasPrefix(readHead(r, size), []byte{0x50, 0x4B, 0x03, 0x04})
}

// IsOfficeOpenXML reports whether the input is a ZIP package with
// Office Open XML parts (word/, xl/ or ppt/).
func IsOfficeOpenXML(r io.ReaderAt, size int64) bool {
	if !isZIP(r, size) {
		return false
	}
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/") || strings.HasPrefix(f.Name, "xl/") || strings.HasPrefix(f.Name, "ppt/") {
			return true
		}
	}
	return false
}

// IsOpenDocument reports whether the input is a ZIP package whose
// mimetype entry names an OpenDocument type.
func IsOpenDocument(r io.ReaderAt, size int64) bool {
	if !isZIP(r, size) {
		return false
	}
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name != "mimetype" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return false
		}
		data := make([]byte, 256)
		n, _ := io.ReadFull(rc, data)
		rc.Close()
		return strings.HasPrefix(string(data[:n]), "application/vnd.oasis.opendocument")
	}
	return false
}

// IsHTML reports whether the first markup in the input is an HTML
// doctype or an <html> start tag.
func IsHTML(r io.ReaderAt, size int64) bool {
	head := readHead(r, size)
	if len(head) == 0 {
		return false
	}
	z := html.NewTokenizer(bytes.NewReader(head))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.TextToken:
			if len(bytes.TrimSpace(z.Text())) > 0 {
				return false
			}
		case html.CommentToken:
			continue
		case html.DoctypeToken:
			return strings.HasPrefix(strings.ToLower(string(z.Text())), "html")
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			return string(name) == "html"
		default:
			return false
		}
	}
}
