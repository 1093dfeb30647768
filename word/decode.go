// Package word decodes the content of legacy Word binary documents and
// drives a diagram with it.
//
// Three strategies cover the supported versions: WinWord 1 and 2 (flat
// files), Word 6 and 7, and Word 97-2003 (OLE2 compound files). Each one
// turns the version's tables into a layout; a common emitter walks the
// layout in character order and sends paragraphs, runs, page breaks and
// pictures to the diagram.
package word

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/wordview/diagram"
	"github.com/tsawler/wordview/format"
	"github.com/tsawler/wordview/internal/ole"
)

// maxFlatSize bounds the WinWord 2 files read into memory.
const maxFlatSize = 64 << 20

// layout is everything the emitter needs, independent of the version.
type layout struct {
	tag      format.Tag
	main     []byte
	pieces   []piece
	chpx     runTable
	papx     runTable
	sections []section
	fonts    fontTable
	pictures []byte
	ccpText  uint32
	ccpFtn   uint32
	// sprms is nil for WinWord 2, whose CHPXs hold a fixed CHP prefix.
	sprms sprmSet
}

func (l *layout) charProps(run int, pc *piece) charProps {
	var c charProps
	if run >= 0 {
		if props := l.chpx[run].props; len(props) > 0 {
			if l.sprms == nil {
				winword2CHP(&c, props)
			} else {
				applyChars(l.sprms, &c, props)
			}
		}
	}
	if pc.prm != nil && l.sprms != nil {
		applyChars(l.sprms, &c, pc.prm)
	}
	return c
}

func (l *layout) paraProps(fc uint32) paraProps {
	var p paraProps
	if l.sprms == nil {
		return p
	}
	if i := l.papx.find(fc); i >= 0 {
		applyParas(l.sprms, &p, l.papx[i].props)
	}
	return p
}

type strategy interface {
	load(src io.ReaderAt, size int64, cfg *config) (*layout, error)
}

// strategyFor is the single dispatch point from version to decoder.
func strategyFor(tag format.Tag) (strategy, error) {
	switch tag {
	case format.WinWord1, format.WinWord2:
		return winword2Strategy{tag: tag}, nil
	case format.Word6, format.Word7:
		return word6Strategy{tag: tag}, nil
	case format.Word97:
		return word97Strategy{}, nil
	}
	return nil, newError(KindUnsupportedSubVariant, "decode", "%s cannot be decoded", tag)
}

// Decode reads the document in src, which Classify tagged as tag, and
// drives sink with its content. The caller still owns sink and must
// Close it.
func Decode(src io.ReaderAt, size int64, tag format.Tag, sink diagram.Diagram, opts ...Option) error {
	return DecodeContext(context.Background(), src, size, tag, sink, opts...)
}

// DecodeContext is Decode with cancellation between paragraphs.
func DecodeContext(ctx context.Context, src io.ReaderAt, size int64, tag format.Tag, sink diagram.Diagram, opts ...Option) error {
	if sink == nil {
		return errors.New("word: nil diagram")
	}
	cfg := newConfig(opts)
	st, err := strategyFor(tag)
	if err != nil {
		return err
	}
	lay, err := st.load(src, size, cfg)
	if err != nil {
		return err
	}
	cfg.log.WithFields(logrus.Fields{
		"version": tag,
		"pieces":  len(lay.pieces),
		"ccpText": lay.ccpText,
		"ccpFtn":  lay.ccpFtn,
	}).Debug("decoding document")
	return newEmitter(ctx, lay, sink, cfg).run()
}

func rejectFlags(f fib) error {
	if f.encrypted() {
		return newError(KindUnsupportedSubVariant, "fib", "document is encrypted")
	}
	return nil
}

type winword2Strategy struct{ tag format.Tag }

func (s winword2Strategy) load(src io.ReaderAt, size int64, cfg *config) (*layout, error) {
	if size > maxFlatSize {
		return nil, newError(KindUnsupportedSubVariant, "file", "%d bytes is too large for a WinWord file", size)
	}
	buf := make([]byte, size)
	n, err := src.ReadAt(buf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	buf = buf[:n]

	f, err := parseFIB(fibWinWord2, buf)
	if err != nil {
		return nil, err
	}
	if err := rejectFlags(f); err != nil {
		return nil, err
	}
	if f.complex() {
		return nil, newError(KindUnsupportedSubVariant, "fib", "fast-saved WinWord documents are not supported")
	}
	cm := f.codePage()

	pns, err := readBinTable("chpx", buf, f.bteChpx, 2)
	if err != nil {
		return nil, err
	}
	secs, err := parseSections(buf, buf, f.plcfsed, 6, nil, cfg)
	if err != nil {
		return nil, err
	}
	fonts := append(fontTable(nil), winword2Fonts...)
	fonts = append(fonts, parseFonts8(buf, f.sttbfFfn, 2, cm, cfg)...)

	return &layout{
		tag:      s.tag,
		main:     buf,
		pieces:   simplePieces(f, cm),
		chpx:     readFKPs(buf, pns, chpxFKP, cfg),
		sections: secs,
		fonts:    fonts,
		ccpText:  f.ccpText,
		ccpFtn:   f.ccpFtn,
	}, nil
}

// openCompound opens src and returns the container and its WordDocument
// stream.
func openCompound(src io.ReaderAt, size int64) (*ole.File, []byte, error) {
	cf, err := ole.Open(src, size)
	if err != nil {
		return nil, nil, &Error{Kind: KindCorruptIndex, Op: "container", Err: err}
	}
	main, err := cf.Stream(format.WordStream)
	if err != nil {
		return nil, nil, &Error{Kind: KindCorruptIndex, Op: "container", Err: err}
	}
	return cf, main, nil
}

type word6Strategy struct{ tag format.Tag }

func (s word6Strategy) load(src io.ReaderAt, size int64, cfg *config) (*layout, error) {
	_, main, err := openCompound(src, size)
	if err != nil {
		return nil, err
	}
	f, err := parseFIB(fibWord6, main)
	if err != nil {
		return nil, err
	}
	if err := rejectFlags(f); err != nil {
		return nil, err
	}
	cm := f.codePage()

	pieces := simplePieces(f, cm)
	if f.complex() {
		if pieces, err = parseCLX(main, f.clx, cm, false); err != nil {
			return nil, err
		}
	}
	chpxPNs, err := readBinTable("chpx", main, f.bteChpx, 2)
	if err != nil {
		return nil, err
	}
	papxPNs, err := readBinTable("papx", main, f.btePapx, 2)
	if err != nil {
		return nil, err
	}
	secs, err := parseSections(main, main, f.plcfsed, 12, word6Sprms{}, cfg)
	if err != nil {
		return nil, err
	}

	return &layout{
		tag:      s.tag,
		main:     main,
		pieces:   pieces,
		chpx:     readFKPs(main, chpxPNs, chpxFKP, cfg),
		papx:     readFKPs(main, papxPNs, papx6, cfg),
		sections: secs,
		fonts:    parseFonts8(main, f.sttbfFfn, 6, cm, cfg),
		pictures: main,
		ccpText:  f.ccpText,
		ccpFtn:   f.ccpFtn,
		sprms:    word6Sprms{},
	}, nil
}

type word97Strategy struct{}

func (word97Strategy) load(src io.ReaderAt, size int64, cfg *config) (*layout, error) {
	cf, main, err := openCompound(src, size)
	if err != nil {
		return nil, err
	}
	f, err := parseFIB(fibWord97, main)
	if err != nil {
		return nil, err
	}
	if err := rejectFlags(f); err != nil {
		return nil, err
	}
	table, err := cf.Stream(f.tableStream())
	if err != nil {
		return nil, &Error{Kind: KindCorruptIndex, Op: "container", Err: err}
	}

	pieces, err := parseCLX(table, f.clx, f.codePage(), true)
	if err != nil {
		return nil, err
	}
	chpxPNs, err := readBinTable("chpx", table, f.bteChpx, 4)
	if err != nil {
		return nil, err
	}
	papxPNs, err := readBinTable("papx", table, f.btePapx, 4)
	if err != nil {
		return nil, err
	}
	secs, err := parseSections(table, main, f.plcfsed, 12, word97Sprms{}, cfg)
	if err != nil {
		return nil, err
	}
	var pictures []byte
	if cf.Has("Data") {
		if pictures, err = cf.Stream("Data"); err != nil {
			cfg.warnf("container", "unreadable Data stream: %v", err)
		}
	}

	return &layout{
		tag:      format.Word97,
		main:     main,
		pieces:   pieces,
		chpx:     readFKPs(main, chpxPNs, chpxFKP, cfg),
		papx:     readFKPs(main, papxPNs, papx97, cfg),
		sections: secs,
		fonts:    parseFonts97(table, f.sttbfFfn, cfg),
		pictures: pictures,
		ccpText:  f.ccpText,
		ccpFtn:   f.ccpFtn,
		sprms:    word97Sprms{},
	}, nil
}
