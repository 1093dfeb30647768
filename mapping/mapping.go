// Package mapping converts decoded document text into the character set
// requested for text output.
//
// A Table is either UTF-8 (the default, no conversion), a named 8-bit
// character set such as "iso-8859-2" or "cp1251", or a mapping file in
// the classic two-column format:
//
//	# code  unicode
//	0xA4    0x20AC
//
// Characters a table cannot represent are replaced with an ASCII
// approximation where one exists, otherwise with '?'.
package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Table is an output character set. The zero value is not usable; use
// UTF8, Named, Load or Open.
type Table struct {
	name string
	cm   *charmap.Charmap
	// custom is set for mapping files and takes precedence over cm.
	custom map[rune]byte
}

// UTF8 returns the identity table.
func UTF8() *Table {
	return &Table{name: "utf-8"}
}

// Named returns the table for a character set name. IANA names and the
// WHATWG labels ("cp1252", "latin2", "koi8-u") are accepted, as is the
// classic "8859-1.txt" file-name form.
func Named(name string) (*Table, error) {
	label := canonicalLabel(name)
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(label)
		if err != nil {
			return nil, fmt.Errorf("unknown character set %q", name)
		}
	}
	if isUTF8(enc) {
		return UTF8(), nil
	}
	cm, ok := enc.(*charmap.Charmap)
	if !ok {
		return nil, fmt.Errorf("character set %q is not a single-byte encoding", name)
	}
	return &Table{name: cm.String(), cm: cm}, nil
}

func isUTF8(enc encoding.Encoding) bool {
	return enc == unicode.UTF8 || enc == encoding.Nop
}

func canonicalLabel(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimSuffix(s, ".txt")
	switch {
	case strings.HasPrefix(s, "8859-"):
		s = "iso-" + s
	case strings.HasPrefix(s, "cp") && len(s) == 6 && s[2] == '1':
		s = "windows-" + s[2:]
	case s == "macroman":
		s = "macintosh"
	}
	return s
}

// Load parses a mapping file. Each non-comment line holds an output code
// and the Unicode code point it represents, both in hexadecimal.
// "#UNDEFINED" in the second column leaves the code unassigned.
func Load(name string, r io.Reader) (*Table, error) {
	t := &Table{name: name, custom: make(map[rune]byte)}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(text), "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			continue
		}
		if strings.HasPrefix(fields[1], "#") {
			continue
		}
		code, err := strconv.ParseUint(fields[0], 0, 8)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad code %q", name, line, fields[0])
		}
		uc, err := strconv.ParseUint(fields[1], 0, 32)
		if err != nil || !utf8.ValidRune(rune(uc)) {
			return nil, fmt.Errorf("%s:%d: bad code point %q", name, line, fields[1])
		}
		if _, dup := t.custom[rune(uc)]; !dup {
			t.custom[rune(uc)] = byte(code)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(t.custom) == 0 {
		return nil, fmt.Errorf("%s: no mappings found", name)
	}
	return t, nil
}

// Open resolves a character set name first and falls back to reading a
// mapping file from disk.
func Open(nameOrPath string) (*Table, error) {
	if t, err := Named(nameOrPath); err == nil {
		return t, nil
	}
	f, err := os.Open(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("unknown character set or mapping file %q", nameOrPath)
	}
	defer f.Close()
	return Load(filepath.Base(nameOrPath), f)
}

// Name returns the table name.
func (t *Table) Name() string {
	return t.name
}

// UTF8 reports whether output is UTF-8.
func (t *Table) UTF8() bool {
	return t.cm == nil && t.custom == nil
}

// Encode converts s into output bytes.
func (t *Table) Encode(s string) []byte {
	if t.UTF8() {
		return []byte(s)
	}
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = t.appendRune(out, r)
	}
	return out
}

// Map returns the output form of r as UTF-8 text: r itself when the
// target can represent it, its typographic fallback, or "?".
func (t *Table) Map(r rune) string {
	if t.UTF8() {
		return string(r)
	}
	if _, ok := t.encodeRune(r); ok {
		return string(r)
	}
	if alt, ok := fallbacks[r]; ok {
		return alt
	}
	return "?"
}

func (t *Table) encodeRune(r rune) (byte, bool) {
	if t.custom != nil {
		b, ok := t.custom[r]
		if !ok && r < 0x80 {
			return byte(r), true
		}
		return b, ok
	}
	return t.cm.EncodeRune(r)
}

func (t *Table) appendRune(out []byte, r rune) []byte {
	if b, ok := t.encodeRune(r); ok {
		return append(out, b)
	}
	if alt, ok := fallbacks[r]; ok {
		for _, a := range alt {
			if b, ok := t.encodeRune(a); ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
		return out
	}
	return append(out, '?')
}

// NewWriter returns a writer that encodes UTF-8 input with the table.
// Runes split across Write calls are reassembled.
func (t *Table) NewWriter(w io.Writer) io.Writer {
	if t.UTF8() {
		return w
	}
	return &encodingWriter{t: t, w: w}
}

type encodingWriter struct {
	t       *Table
	w       io.Writer
	pending []byte
}

func (ew *encodingWriter) Write(p []byte) (int, error) {
	buf := append(ew.pending, p...)
	cut := len(buf)
	// Hold back an incomplete trailing rune.
	for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
		if utf8.RuneStart(buf[i]) {
			if !utf8.FullRune(buf[i:]) {
				cut = i
			}
			break
		}
	}
	ew.pending = append([]byte(nil), buf[cut:]...)
	if _, err := ew.w.Write(ew.t.Encode(string(buf[:cut]))); err != nil {
		return 0, err
	}
	return len(p), nil
}

// fallbacks approximates typographic characters in ASCII.
var fallbacks = map[rune]string{
	0x00A0: " ",
	0x00A9: "(c)",
	0x00AE: "(R)",
	0x2010: "-",
	0x2011: "-",
	0x2012: "-",
	0x2013: "-",
	0x2014: "-",
	0x2018: "'",
	0x2019: "'",
	0x201A: ",",
	0x201C: "\"",
	0x201D: "\"",
	0x201E: "\"",
	0x2022: "o",
	0x2026: "...",
	0x20AC: "EUR",
	0x2122: "(TM)",
	0x2212: "-",
}
