package word

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Warning describes a recoverable problem; decoding continues.
type Warning struct {
	Op      string
	Message string
}

func (w Warning) String() string {
	return w.Op + ": " + w.Message
}

// Option configures Decode.
type Option func(*config)

type config struct {
	log       logrus.FieldLogger
	warn      func(Warning)
	footnotes bool
	images    bool
}

func newConfig(opts []Option) *config {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	cfg := &config{log: discard, footnotes: true, images: true}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithLogger sets the logger for debug output and warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// WithWarnings registers a callback for recoverable problems.
func WithWarnings(fn func(Warning)) Option {
	return func(c *config) { c.warn = fn }
}

// WithFootnotes controls whether footnote text follows the main text.
// The default is true.
func WithFootnotes(on bool) Option {
	return func(c *config) { c.footnotes = on }
}

// WithImages controls whether pictures are decoded for diagrams that
// accept them. The default is true.
func WithImages(on bool) Option {
	return func(c *config) { c.images = on }
}

func (c *config) warnf(op, format string, args ...any) {
	w := Warning{Op: op, Message: fmt.Sprintf(format, args...)}
	c.log.WithField("op", op).Warn(w.Message)
	if c.warn != nil {
		c.warn(w)
	}
}
