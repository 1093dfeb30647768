package font

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Family is a Standard 14 font family.
type Family int

const (
	Serif Family = iota
	Sans
	Mono
	Symbol
)

// String returns the lower-case family name used in name tables.
func (f Family) String() string {
	switch f {
	case Sans:
		return "sans"
	case Mono:
		return "mono"
	case Symbol:
		return "symbol"
	default:
		return "serif"
	}
}

//go:embed fontnames.yaml
var defaultNames []byte

// Names maps Word font names to families.
type Names struct {
	byName map[string]Family
}

var (
	namesOnce    sync.Once
	builtinNames *Names
)

// DefaultNames returns the built-in name table.
func DefaultNames() *Names {
	namesOnce.Do(func() {
		n, err := LoadNames(bytes.NewReader(defaultNames))
		if err != nil {
			panic(fmt.Sprintf("font: embedded name table: %v", err))
		}
		builtinNames = n
	})
	return builtinNames
}

// LoadNames reads a YAML document mapping family names to lists of
// font names.
func LoadNames(r io.Reader) (*Names, error) {
	var raw map[string][]string
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse font names: %w", err)
	}
	n := &Names{byName: make(map[string]Family)}
	for fam, list := range raw {
		f, ok := parseFamily(fam)
		if !ok {
			return nil, fmt.Errorf("unknown font family %q", fam)
		}
		for _, name := range list {
			n.byName[normalizeName(name)] = f
		}
	}
	return n, nil
}

// Resolve returns the family of a Word font name using the built-in table.
func Resolve(name string) Family {
	return DefaultNames().Resolve(name)
}

// Resolve returns the family of name. Unknown names are Serif, the
// Word default.
func (n *Names) Resolve(name string) Family {
	key := normalizeName(name)
	if f, ok := n.byName[key]; ok {
		return f
	}
	// "Arial Black", "Courier New Baltic" and friends.
	best, bestLen := Serif, 0
	for known, f := range n.byName {
		if len(known) > bestLen && strings.HasPrefix(key, known+" ") {
			best, bestLen = f, len(known)
		}
	}
	return best
}

func parseFamily(s string) (Family, bool) {
	for _, f := range []Family{Serif, Sans, Mono, Symbol} {
		if f.String() == strings.ToLower(s) {
			return f, true
		}
	}
	return Serif, false
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// PostScriptName returns the Standard 14 font for a family and emphasis.
func PostScriptName(f Family, bold, italic bool) string {
	switch f {
	case Symbol:
		return "Symbol"
	case Sans:
		return variant("Helvetica", "", "-Bold", "-Oblique", "-BoldOblique", bold, italic)
	case Mono:
		return variant("Courier", "", "-Bold", "-Oblique", "-BoldOblique", bold, italic)
	default:
		return variant("Times", "-Roman", "-Bold", "-Italic", "-BoldItalic", bold, italic)
	}
}

func variant(base, regular, b, i, bi string, bold, italic bool) string {
	switch {
	case bold && italic:
		return base + bi
	case bold:
		return base + b
	case italic:
		return base + i
	}
	return base + regular
}
