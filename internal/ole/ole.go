// Package ole reads OLE2 compound files, the container used by Word 6
// and later for the WordDocument, table and Data streams. Sector chains
// are followed by github.com/richardlehane/mscfb; this package adds the
// header checks, random access by stream name and error classification
// the decoder needs.
package ole

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/richardlehane/mscfb"
)

// Signature is the eight-byte magic at the start of every compound file.
var Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

var (
	ErrNotCompound = errors.New("ole: not a compound file")
	ErrCorrupt     = errors.New("ole: corrupt compound file")
	ErrNoStream    = errors.New("ole: stream not found")
)

const headerSize = 512

// File is an opened compound file. Streams are read on demand and kept
// once read.
type File struct {
	size    int64
	names   []string
	streams map[string]*stream
}

type stream struct {
	f    *mscfb.File
	data []byte
	err  error
}

// Open checks the header and reads the directory of a compound file.
func Open(r io.ReaderAt, size int64) (f *File, err error) {
	if size < headerSize {
		return nil, ErrNotCompound
	}
	hdr := make([]byte, headerSize)
	if _, err := r.ReadAt(hdr, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !IsCompound(hdr) {
		return nil, ErrNotCompound
	}
	shift := binary.LittleEndian.Uint16(hdr[0x1E:])
	miniShift := binary.LittleEndian.Uint16(hdr[0x20:])
	if shift < 7 || shift > 16 || miniShift > shift {
		return nil, fmt.Errorf("%w: sector shift %d", ErrCorrupt, shift)
	}

	defer recoverCorrupt(&err)
	doc, err := mscfb.New(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	f = &File{size: size, streams: make(map[string]*stream)}
	for _, e := range doc.File {
		if len(e.Path) > 0 || e.FileInfo().IsDir() {
			continue
		}
		if _, dup := f.streams[e.Name]; dup {
			continue
		}
		f.names = append(f.names, e.Name)
		f.streams[e.Name] = &stream{f: e}
	}
	return f, nil
}

// recoverCorrupt turns a panic while walking malformed sector tables
// into ErrCorrupt.
func recoverCorrupt(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrCorrupt, r)
	}
}

// IsCompound reports whether b starts with the compound file signature.
func IsCompound(b []byte) bool {
	return bytes.HasPrefix(b, Signature)
}

// Names lists the top-level stream names in directory order.
func (f *File) Names() []string {
	return append([]string(nil), f.names...)
}

// Has reports whether a stream with the given name exists.
func (f *File) Has(name string) bool {
	_, ok := f.streams[name]
	return ok
}

// Stream returns the full contents of the named stream.
func (f *File) Stream(name string) ([]byte, error) {
	s, ok := f.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStream, name)
	}
	return f.read(name, s, s.f.Size)
}

// Prefix returns at most n leading bytes of the named stream.
func (f *File) Prefix(name string, n int64) ([]byte, error) {
	s, ok := f.streams[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoStream, name)
	}
	return f.read(name, s, min(n, s.f.Size))
}

// read extends the bytes read so far from s to n. Streams are read
// sequentially, so a prefix read first is not read twice.
func (f *File) read(name string, s *stream, n int64) (data []byte, err error) {
	if s.f.Size > f.size {
		return nil, fmt.Errorf("%w: stream %s claims %d bytes", ErrCorrupt, name, s.f.Size)
	}
	if int64(len(s.data)) >= n {
		return s.data[:n], nil
	}
	if s.err != nil {
		return nil, s.err
	}

	defer recoverCorrupt(&err)
	buf := make([]byte, n-int64(len(s.data)))
	if _, rerr := io.ReadFull(s.f, buf); rerr != nil {
		s.err = fmt.Errorf("%w: stream %s: %v", ErrCorrupt, name, rerr)
		return nil, s.err
	}
	s.data = append(s.data, buf...)
	return s.data[:n], nil
}
