package diagram

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/wordview/mapping"
	"github.com/tsawler/wordview/model"
)

var (
	// ErrClosed is returned by a second call to Close.
	ErrClosed = errors.New("diagram: already closed")
	// ErrDestination wraps the first write error of a diagram.
	ErrDestination = errors.New("diagram: destination failure")
)

// Diagram is the rendering sink driven by the decoder.
type Diagram interface {
	OpenDocument() error
	OpenParagraph(p model.Paragraph) error
	EmitRun(text string, style model.Style) error
	CloseParagraph() error
	PageBreak() error
	CloseDocument() error
	// Close finalizes the output. It may be called in any state, exactly once.
	Close() error

	sealed()
}

// ImageSink is implemented by diagrams that accept embedded pictures.
// DrawImage is valid while the document or a paragraph is open.
type ImageSink interface {
	DrawImage(img *model.Image) error
}

// Conversion selects the backend.
type Conversion int

const (
	ConvertText Conversion = iota
	ConvertPostScript
	ConvertXML
	ConvertTrace
)

var conversionNames = []string{"text", "postscript", "xml", "trace"}

// String returns the lower-case backend name.
func (c Conversion) String() string {
	if c >= 0 && int(c) < len(conversionNames) {
		return conversionNames[c]
	}
	return fmt.Sprintf("Conversion(%d)", int(c))
}

// ParseConversion accepts the names returned by String plus "ps" and "docbook".
func ParseConversion(s string) (Conversion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt":
		return ConvertText, nil
	case "postscript", "ps":
		return ConvertPostScript, nil
	case "xml", "docbook", "db":
		return ConvertXML, nil
	case "trace":
		return ConvertTrace, nil
	}
	return ConvertText, fmt.Errorf("unknown conversion %q", s)
}

// ImageLevel controls picture output in PostScript.
type ImageLevel int

const (
	// ImagesDefault behaves like ImagesLevel2.
	ImagesDefault ImageLevel = iota
	// ImagesNone omits pictures.
	ImagesNone
	// ImagesLevel2 decodes pictures and emits raw samples.
	ImagesLevel2
	// ImagesLevel3 additionally passes PNG data through /FlateDecode.
	ImagesLevel3
)

// ParseImageLevel converts the numeric command line form (0-3).
func ParseImageLevel(n int) (ImageLevel, error) {
	if n < 0 || n > 3 {
		return ImagesDefault, fmt.Errorf("image level %d out of range 0-3", n)
	}
	return ImageLevel(n), nil
}

// DefaultWidth is the text wrap width used by DefaultOptions.
const DefaultWidth = 76

// RenderOptions configures one conversion. A diagram copies the options
// when it is created.
type RenderOptions struct {
	Conversion Conversion
	// Width is the text wrap width in columns; 0 or less disables wrapping.
	Width int
	// Geometry is the PostScript page; the zero value means portrait A4.
	Geometry   model.PageGeometry
	ImageLevel ImageLevel
	ShowHidden bool
	// Mapping is the text output character set; nil means UTF-8.
	Mapping *mapping.Table
	// Wrapped marks XML output that is part of a multi-document set.
	Wrapped bool
}

// DefaultOptions returns text output at DefaultWidth on A4.
func DefaultOptions() RenderOptions {
	return RenderOptions{
		Conversion: ConvertText,
		Width:      DefaultWidth,
		Geometry:   model.DefaultPageGeometry(),
	}
}

// WantsImages reports whether pictures should be decoded for these options.
func (o *RenderOptions) WantsImages() bool {
	return o.Conversion == ConvertPostScript && o.ImageLevel != ImagesNone
}

func (o *RenderOptions) normalized() RenderOptions {
	c := *o
	if !c.Geometry.Valid() {
		c.Geometry = model.DefaultPageGeometry()
	}
	if c.Mapping == nil {
		c.Mapping = mapping.UTF8()
	}
	return c
}

// New creates the diagram selected by opts.Conversion, bound to w.
// task and file label the output (PostScript comments, XML titles).
func New(task, file string, opts *RenderOptions, w io.Writer) (Diagram, error) {
	if opts == nil {
		d := DefaultOptions()
		opts = &d
	}
	if w == nil {
		return nil, errors.New("diagram: nil destination")
	}
	switch opts.Conversion {
	case ConvertText:
		return NewText(w, opts), nil
	case ConvertPostScript:
		return NewPostScript(task, file, w, opts), nil
	case ConvertXML:
		return NewXML(file, w, opts), nil
	case ConvertTrace:
		return NewTrace(w), nil
	}
	return nil, fmt.Errorf("diagram: unknown conversion %v", opts.Conversion)
}
