package format

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/tsawler/wordview/internal/ole"
)

const (
	// MinHeaderSize is the shortest input that can be a Word document.
	MinHeaderSize = 32
	// headSize bounds the prefix read from the source.
	headSize = 512
	// WordStream is the compound file stream holding the FIB and text.
	WordStream = "WordDocument"
)

// Result is the detailed outcome of Sniff.
type Result struct {
	Tag       Tag
	Container string
	Ident     uint16
	NFib      uint16
	// Version is the name of the matching registry entry, if any.
	Version string
}

// Sniffer classifies inputs against a version registry.
// The zero value uses DefaultRegistry.
type Sniffer struct {
	Registry *Registry
}

// Classify returns the Tag of the input using the built-in registry.
func Classify(r io.ReaderAt, size int64) Tag {
	return Sniffer{}.Sniff(r, size).Tag
}

// Sniff inspects r using the built-in registry.
func Sniff(r io.ReaderAt, size int64) Result {
	return Sniffer{}.Sniff(r, size)
}

// Classify returns the Tag of the input.
func (s Sniffer) Classify(r io.ReaderAt, size int64) Tag {
	return s.Sniff(r, size).Tag
}

// Sniff inspects the header of r and, for compound files, the start of
// the WordDocument stream. It never modifies r and never reads past size.
func (s Sniffer) Sniff(r io.ReaderAt, size int64) Result {
	reg := s.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}

	head := readHead(r, size)
	if len(head) < MinHeaderSize {
		return Result{Tag: Unsupported}
	}

	if ole.IsCompound(head) {
		return sniffCompound(reg, r, size)
	}

	if e, ok := reg.matchMagic(head); ok {
		return fromEntry(e, ContainerFlat, 0, 0)
	}

	ident := binary.LittleEndian.Uint16(head)
	nFib := binary.LittleEndian.Uint16(head[2:])
	if e, ok := reg.lookup(ContainerFlat, ident, nFib); ok {
		return fromEntry(e, ContainerFlat, ident, nFib)
	}
	if reg.knowsIdent(ContainerFlat, ident) {
		return Result{Tag: Ambiguous, Container: ContainerFlat, Ident: ident, NFib: nFib}
	}
	return Result{Tag: Unsupported}
}

func sniffCompound(reg *Registry, r io.ReaderAt, size int64) Result {
	res := Result{Tag: Ambiguous, Container: ContainerOLE}
	if size < headSize {
		return Result{Tag: Unsupported}
	}
	f, err := ole.Open(r, size)
	if err != nil {
		return res
	}
	fib, err := f.Prefix(WordStream, 4)
	if err != nil || len(fib) < 4 {
		return res
	}
	res.Ident = binary.LittleEndian.Uint16(fib)
	res.NFib = binary.LittleEndian.Uint16(fib[2:])
	if e, ok := reg.lookup(ContainerOLE, res.Ident, res.NFib); ok {
		return fromEntry(e, ContainerOLE, res.Ident, res.NFib)
	}
	return res
}

func fromEntry(e Entry, container string, ident, nFib uint16) Result {
	res := Result{
		Tag:       Ambiguous,
		Container: container,
		Ident:     ident,
		NFib:      nFib,
		Version:   e.Name,
	}
	if e.Supported {
		res.Tag = e.Tag
	}
	return res
}

// readHead returns up to headSize leading bytes, bounded by size.
func readHead(r io.ReaderAt, size int64) []byte {
	if size <= 0 {
		return nil
	}
	n := int64(headSize)
	if size < n {
		n = size
	}
	head := make([]byte, n)
	got, err := r.ReadAt(head, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil
	}
	return head[:got]
}
