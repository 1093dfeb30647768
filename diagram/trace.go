package diagram

import (
	"fmt"
	"io"
	"strconv"

	"github.com/tsawler/wordview/model"
)

// EventKind names a diagram event.
type EventKind string

const (
	EventOpenDocument   EventKind = "open-document"
	EventOpenParagraph  EventKind = "open-paragraph"
	EventRun            EventKind = "run"
	EventCloseParagraph EventKind = "close-paragraph"
	EventPageBreak      EventKind = "page-break"
	EventImage          EventKind = "image"
	EventCloseDocument  EventKind = "close-document"
)

// Event is one recorded call.
type Event struct {
	Kind      EventKind
	Text      string
	Style     model.Style
	Paragraph model.Paragraph
	Image     *model.Image
}

// String formats the event as one trace line.
func (e Event) String() string {
	switch e.Kind {
	case EventOpenParagraph:
		s := string(e.Kind) + " " + e.Paragraph.Justification.String()
		if e.Paragraph.InTable {
			s += " table"
		}
		if e.Paragraph.PageBreakBefore {
			s += " page-break-before"
		}
		return s
	case EventRun:
		return fmt.Sprintf("%s %s %s", e.Kind, strconv.Quote(e.Text), e.Style)
	case EventImage:
		return fmt.Sprintf("%s %s %dx%d", e.Kind, e.Image.Format, e.Image.PixelWidth, e.Image.PixelHeight)
	}
	return string(e.Kind)
}

// Trace records every event and, when created with a writer, prints one
// line per event. Hidden runs are recorded like any other.
type Trace struct {
	sink[*traceRenderer]
}

// NewTrace creates a trace diagram. w may be io.Discard.
func NewTrace(w io.Writer) *Trace {
	out := newDest(w)
	return &Trace{sink[*traceRenderer]{r: &traceRenderer{out: out}, out: out}}
}

// Events returns the events recorded so far.
func (t *Trace) Events() []Event {
	return append([]Event(nil), t.r.events...)
}

// Runs returns the text of every run in order.
func (t *Trace) Runs() []string {
	var runs []string
	for _, e := range t.r.events {
		if e.Kind == EventRun {
			runs = append(runs, e.Text)
		}
	}
	return runs
}

type traceRenderer struct {
	out    *dest
	events []Event
}

func (t *traceRenderer) record(e Event) error {
	t.events = append(t.events, e)
	t.out.WriteString(e.String())
	t.out.WriteString("\n")
	return nil
}

func (t *traceRenderer) openDocument() error {
	return t.record(Event{Kind: EventOpenDocument})
}

func (t *traceRenderer) openParagraph(p model.Paragraph) error {
	return t.record(Event{Kind: EventOpenParagraph, Paragraph: p})
}

func (t *traceRenderer) run(text string, style model.Style) error {
	return t.record(Event{Kind: EventRun, Text: text, Style: style})
}

func (t *traceRenderer) closeParagraph() error {
	return t.record(Event{Kind: EventCloseParagraph})
}

func (t *traceRenderer) pageBreak() error {
	return t.record(Event{Kind: EventPageBreak})
}

func (t *traceRenderer) image(img *model.Image) error {
	return t.record(Event{Kind: EventImage, Image: img})
}

func (t *traceRenderer) closeDocument() error {
	return t.record(Event{Kind: EventCloseDocument})
}
