package wordview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tsawler/wordview/convert"
	"github.com/tsawler/wordview/diagram"
	"github.com/tsawler/wordview/format"
	"github.com/tsawler/wordview/mapping"
	"github.com/tsawler/wordview/model"
	"github.com/tsawler/wordview/word"
)

// task is the creator name written into PostScript headers.
const task = "wordview"

// Converter provides a fluent interface for converting one Word document.
// Each configuration method returns a new Converter, so a Converter is
// safe for concurrent use and can serve as a template for several
// conversions.
type Converter struct {
	// Source
	name  string
	path  string
	data  []byte
	inMem bool

	// Configuration
	options ConvertOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a copy of the Converter. The source bytes are shared;
// they are never modified.
func (c *Converter) clone() *Converter {
	return &Converter{
		name:    c.name,
		path:    c.path,
		data:    c.data,
		inMem:   c.inMem,
		options: c.options.clone(),
		err:     c.err,
	}
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// Width sets the text wrap width in columns. Zero or less disables
// wrapping.
//
// Example:
//
//	text, _, err := wordview.Open("doc.doc").Width(60).Text()
func (c *Converter) Width(columns int) *Converter {
	n := c.clone()
	n.options.width = columns
	return n
}

// ShowHidden includes text formatted as hidden.
func (c *Converter) ShowHidden() *Converter {
	n := c.clone()
	n.options.showHidden = true
	return n
}

// NoFootnotes leaves footnote text out of the output.
func (c *Converter) NoFootnotes() *Converter {
	n := c.clone()
	n.options.footnotes = false
	return n
}

// Paper selects the PostScript paper size, such as "a4" or "letter".
//
// Example:
//
//	ps, _, err := wordview.Open("doc.doc").Paper("letter").PostScript()
func (c *Converter) Paper(name string) *Converter {
	n := c.clone()
	if _, err := model.NewPageGeometry(name, model.Portrait); err != nil && n.err == nil {
		n.err = err
	}
	n.options.paper = name
	return n
}

// Landscape turns PostScript pages sideways.
func (c *Converter) Landscape() *Converter {
	n := c.clone()
	n.options.landscape = true
	return n
}

// ImageLevel sets the PostScript picture handling: 0 default, 1 no
// images, 2 PostScript level 2, 3 PostScript level 3.
func (c *Converter) ImageLevel(level int) *Converter {
	n := c.clone()
	l, err := diagram.ParseImageLevel(level)
	if err != nil && n.err == nil {
		n.err = err
	}
	n.options.imageLevel = l
	return n
}

// Mapping selects the text output character set by name ("iso-8859-2",
// "cp1251") or mapping file path. The default is UTF-8.
//
// Example:
//
//	text, _, err := wordview.Open("doc.doc").Mapping("iso-8859-1").Text()
func (c *Converter) Mapping(nameOrPath string) *Converter {
	n := c.clone()
	n.options.mapping = nameOrPath
	return n
}

// Logger routes decoder debug output and warnings to l.
func (c *Converter) Logger(l logrus.FieldLogger) *Converter {
	n := c.clone()
	n.options.logger = l
	return n
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Version classifies the document without decoding it.
//
// Example:
//
//	tag, err := wordview.Open("doc.doc").Version()
//	fmt.Println(tag.Description())
func (c *Converter) Version() (format.Tag, error) {
	if c.err != nil {
		return format.Unsupported, c.err
	}
	src, size, closer, err := c.source()
	if err != nil {
		return format.Unsupported, err
	}
	defer closer()
	return format.Classify(src, size), nil
}

// Text returns the document as wrapped plain text.
func (c *Converter) Text() (string, []Warning, error) {
	return c.render(diagram.ConvertText)
}

// PostScript returns the document as a DSC-conforming PostScript program.
func (c *Converter) PostScript() (string, []Warning, error) {
	return c.render(diagram.ConvertPostScript)
}

// XML returns the document as a DocBook XML book.
func (c *Converter) XML() (string, []Warning, error) {
	return c.render(diagram.ConvertXML)
}

func (c *Converter) render(conv diagram.Conversion) (string, []Warning, error) {
	var buf bytes.Buffer
	warnings, err := c.WriteTo(&buf, conv)
	if err != nil {
		return "", warnings, err
	}
	return buf.String(), warnings, nil
}

// WriteTo converts the document into w. XML output is a complete
// document, prolog included.
func (c *Converter) WriteTo(w io.Writer, conv diagram.Conversion) ([]Warning, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, err := c.processor(conv)
	if err != nil {
		return nil, err
	}
	var warnings []Warning
	p.Warnings = func(_ string, wn Warning) { warnings = append(warnings, wn) }

	src, size, closer, err := c.source()
	if err != nil {
		return nil, err
	}
	defer closer()

	if conv == diagram.ConvertXML {
		if err := convert.WriteXMLProlog(w, false); err != nil {
			return nil, err
		}
	}
	err = p.ProcessFile(context.Background(), c.name, src, size, w)
	return warnings, err
}

func (c *Converter) processor(conv diagram.Conversion) (*convert.Processor, error) {
	orientation := model.Portrait
	if c.options.landscape {
		orientation = model.Landscape
	}
	geo, err := model.NewPageGeometry(c.options.paper, orientation)
	if err != nil {
		return nil, err
	}
	opts := diagram.DefaultOptions()
	opts.Conversion = conv
	opts.Width = c.options.width
	opts.Geometry = geo
	opts.ImageLevel = c.options.imageLevel
	opts.ShowHidden = c.options.showHidden
	if c.options.mapping != "" {
		table, err := mapping.Open(c.options.mapping)
		if err != nil {
			return nil, err
		}
		opts.Mapping = table
	}

	p := convert.New(task)
	p.Options = opts
	p.Logger = c.options.logger
	if !c.options.footnotes {
		p.Decode = append(p.Decode, word.WithFootnotes(false))
	}
	return p, nil
}

// source opens the document. The returned function releases it.
func (c *Converter) source() (io.ReaderAt, int64, func(), error) {
	if c.inMem {
		return bytes.NewReader(c.data), int64(len(c.data)), func() {}, nil
	}
	if strings.TrimSpace(c.path) == "" {
		return nil, 0, nil, fmt.Errorf("no filename specified")
	}
	f, err := os.Open(c.path)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to open document: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, fi.Size(), func() { f.Close() }, nil
}
