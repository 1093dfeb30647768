package format

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed versions.yaml
var defaultVersions []byte

// Containers named in registry entries.
const (
	ContainerOLE  = "ole"
	ContainerFlat = "flat"
)

// Entry describes one known layout. Flat entries are matched either by
// the FIB ident at offset 0 or, for non-FIB files, by a magic prefix.
type Entry struct {
	Name      string `yaml:"name"`
	Container string `yaml:"container"`
	Ident     uint16 `yaml:"ident"`
	NFibMin   uint16 `yaml:"nfib_min"`
	NFibMax   uint16 `yaml:"nfib_max"`
	Magic     string `yaml:"magic"`
	Tag       Tag    `yaml:"tag"`
	Supported bool   `yaml:"supported"`

	magic []byte
}

// Registry is the table of known Word layouts.
type Registry struct {
	Versions []Entry `yaml:"versions"`
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the built-in version table.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		reg, err := LoadRegistry(bytes.NewReader(defaultVersions))
		if err != nil {
			panic(fmt.Sprintf("format: embedded version table: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// LoadRegistry parses and validates a YAML version table.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var reg Registry
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("failed to parse version table: %w", err)
	}
	if err := reg.validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (reg *Registry) validate() error {
	if len(reg.Versions) == 0 {
		return fmt.Errorf("version table is empty")
	}
	for i := range reg.Versions {
		e := &reg.Versions[i]
		if e.Name == "" {
			return fmt.Errorf("version entry %d has no name", i)
		}
		switch e.Container {
		case ContainerOLE, ContainerFlat:
		default:
			return fmt.Errorf("version %s: unknown container %q", e.Name, e.Container)
		}
		if e.Magic != "" {
			m, err := hex.DecodeString(e.Magic)
			if err != nil || len(m) == 0 {
				return fmt.Errorf("version %s: bad magic %q", e.Name, e.Magic)
			}
			if e.Container != ContainerFlat {
				return fmt.Errorf("version %s: magic is only valid for flat files", e.Name)
			}
			e.magic = m
			continue
		}
		if e.Ident == 0 {
			return fmt.Errorf("version %s: needs an ident or a magic", e.Name)
		}
		if e.NFibMax < e.NFibMin {
			return fmt.Errorf("version %s: nfib_max below nfib_min", e.Name)
		}
		if e.Supported && !e.Tag.Supported() {
			return fmt.Errorf("version %s: supported entries need a decodable tag", e.Name)
		}
	}
	return nil
}

// knowsIdent reports whether any entry of the container uses ident.
func (reg *Registry) knowsIdent(container string, ident uint16) bool {
	for _, e := range reg.Versions {
		if e.Container == container && e.magic == nil && e.Ident == ident {
			return true
		}
	}
	return false
}

func (reg *Registry) lookup(container string, ident, nFib uint16) (Entry, bool) {
	for _, e := range reg.Versions {
		if e.Container != container || e.magic != nil || e.Ident != ident {
			continue
		}
		if nFib >= e.NFibMin && nFib <= e.NFibMax {
			return e, true
		}
	}
	return Entry{}, false
}

func (reg *Registry) matchMagic(head []byte) (Entry, bool) {
	for _, e := range reg.Versions {
		if e.magic != nil && bytes.HasPrefix(head, e.magic) {
			return e, true
		}
	}
	return Entry{}, false
}
