package wordview

import (
	"github.com/sirupsen/logrus"

	"github.com/tsawler/wordview/diagram"
)

// ConvertOptions holds the rendering configuration of a Converter.
type ConvertOptions struct {
	// Text output
	width   int
	mapping string

	// PostScript output
	paper      string
	landscape  bool
	imageLevel diagram.ImageLevel

	showHidden bool
	footnotes  bool

	logger logrus.FieldLogger
}

// defaultOptions returns the default conversion options.
func defaultOptions() ConvertOptions {
	return ConvertOptions{
		width:      diagram.DefaultWidth,
		paper:      "a4",
		imageLevel: diagram.ImagesDefault,
		footnotes:  true,
	}
}

// clone returns a copy of o; every field is a value or shared read-only.
func (o ConvertOptions) clone() ConvertOptions {
	return o
}
