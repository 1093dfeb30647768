package diagram

import (
	"bufio"
	"fmt"
	"io"

	"github.com/tsawler/wordview/model"
)

type state int

const (
	stateUnopened state = iota
	stateDocument
	stateParagraph
	stateClosed
	stateTerminal
)

func (s state) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateDocument:
		return "document open"
	case stateParagraph:
		return "paragraph open"
	case stateClosed:
		return "document closed"
	default:
		return "terminal"
	}
}

// renderer is the backend half of a diagram. The sink guarantees that
// calls arrive in protocol order.
type renderer interface {
	openDocument() error
	openParagraph(p model.Paragraph) error
	run(text string, style model.Style) error
	closeParagraph() error
	pageBreak() error
	image(img *model.Image) error
	closeDocument() error
}

// dest is a buffered writer whose first error sticks.
type dest struct {
	w   *bufio.Writer
	err error
}

func newDest(w io.Writer) *dest {
	return &dest{w: bufio.NewWriter(w)}
}

func (d *dest) WriteString(s string) {
	if d.err == nil {
		_, d.err = d.w.WriteString(s)
	}
}

func (d *dest) Write(p []byte) (int, error) {
	if d.err == nil {
		_, d.err = d.w.Write(p)
	}
	if d.err != nil {
		return 0, d.err
	}
	return len(p), nil
}

func (d *dest) Printf(format string, args ...any) {
	if d.err == nil {
		_, d.err = fmt.Fprintf(d.w, format, args...)
	}
}

func (d *dest) flush() {
	if d.err == nil {
		d.err = d.w.Flush()
	}
}

// sink enforces the event protocol and forwards to a renderer.
type sink[R renderer] struct {
	state state
	r     R
	out   *dest
}

func (s *sink[R]) sealed() {}

func (s *sink[R]) expect(op string, allowed ...state) {
	for _, a := range allowed {
		if s.state == a {
			return
		}
	}
	panic(fmt.Sprintf("diagram: %s called while %s", op, s.state))
}

func (s *sink[R]) result(err error) error {
	if err != nil {
		return err
	}
	if s.out.err != nil {
		return fmt.Errorf("%w: %v", ErrDestination, s.out.err)
	}
	return nil
}

// OpenDocument starts the output.
func (s *sink[R]) OpenDocument() error {
	s.expect("OpenDocument", stateUnopened)
	s.state = stateDocument
	return s.result(s.r.openDocument())
}

// OpenParagraph starts a paragraph.
func (s *sink[R]) OpenParagraph(p model.Paragraph) error {
	s.expect("OpenParagraph", stateDocument)
	s.state = stateParagraph
	return s.result(s.r.openParagraph(p))
}

// EmitRun adds text to the open paragraph. Hidden runs are always
// accepted; the backend decides whether to show them.
func (s *sink[R]) EmitRun(text string, style model.Style) error {
	s.expect("EmitRun", stateParagraph)
	return s.result(s.r.run(text, style))
}

// CloseParagraph ends the open paragraph.
func (s *sink[R]) CloseParagraph() error {
	s.expect("CloseParagraph", stateParagraph)
	s.state = stateDocument
	return s.result(s.r.closeParagraph())
}

// PageBreak starts a new page between paragraphs.
func (s *sink[R]) PageBreak() error {
	s.expect("PageBreak", stateDocument)
	return s.result(s.r.pageBreak())
}

// DrawImage places a picture at the current position.
func (s *sink[R]) DrawImage(img *model.Image) error {
	s.expect("DrawImage", stateDocument, stateParagraph)
	if img == nil {
		return nil
	}
	return s.result(s.r.image(img))
}

// CloseDocument ends the output.
func (s *sink[R]) CloseDocument() error {
	s.expect("CloseDocument", stateDocument)
	s.state = stateClosed
	err := s.r.closeDocument()
	s.out.flush()
	return s.result(err)
}

// Close finalizes the diagram from any state and flushes the output.
func (s *sink[R]) Close() error {
	var err error
	switch s.state {
	case stateTerminal:
		return ErrClosed
	case stateParagraph:
		err = s.r.closeParagraph()
		if cerr := s.r.closeDocument(); err == nil {
			err = cerr
		}
	case stateDocument:
		err = s.r.closeDocument()
	}
	s.state = stateTerminal
	s.out.flush()
	return s.result(err)
}
