// Package convert drives the conversion of Word documents: it classifies
// each input, builds the requested diagram and runs the decoder into it.
//
// A Processor converts one file at a time with ProcessFile, or a list of
// inputs with Batch, which adds the multi-file framing of the classic
// command line tool (text banners, the DocBook prolog and set wrapper)
// and keeps going when a file fails.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/wordview/diagram"
	"github.com/tsawler/wordview/format"
	"github.com/tsawler/wordview/internal/logging"
	"github.com/tsawler/wordview/word"
)

// Stdin is the file name that selects standard input.
const Stdin = "-"

const banner = "::::::::::::::\n"

// SniffError reports an input that is not a decodable Word document.
type SniffError struct {
	File    string
	Tag     format.Tag
	Foreign format.Foreign
}

func (e *SniffError) Error() string {
	if e.Foreign != format.NotForeign {
		return fmt.Sprintf("%s is not a Word Document. It is probably a %s file", e.File, e.Foreign)
	}
	return e.File + " is not a Word Document."
}

// ReaderAtCloser is an opened input.
type ReaderAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Input is one document of a batch. Open is called once, when the file
// is about to be converted.
type Input struct {
	Name string
	Open func() (ReaderAtCloser, int64, error)
}

// Result counts the outcome of a batch.
type Result struct {
	Converted int
	Failed    int
}

// Total returns the number of inputs processed.
func (r Result) Total() int {
	return r.Converted + r.Failed
}

// ExitCode is 0 when at least one file was converted, otherwise 1.
func (r Result) ExitCode() int {
	if r.Converted >= 1 {
		return 0
	}
	return 1
}

// Processor converts documents with fixed options. A Processor is safe
// for concurrent use; it is never modified by its methods.
type Processor struct {
	// Task is the program name used in output headers and diagnostics.
	Task    string
	Options diagram.RenderOptions
	// Registry overrides the built-in version table.
	Registry *format.Registry
	Logger   logrus.FieldLogger
	// Jobs is the number of files converted at once by Batch; values
	// below 2 convert sequentially.
	Jobs int
	// Warnings receives recoverable decoder problems.
	Warnings func(file string, w word.Warning)
	// Decode holds extra decoder options, applied last.
	Decode []word.Option
}

// New returns a Processor with default text options.
func New(task string) *Processor {
	return &Processor{Task: task, Options: diagram.DefaultOptions(), Jobs: 1}
}

func (p *Processor) log() logrus.FieldLogger {
	if p.Logger == nil {
		return logging.Discard()
	}
	return p.Logger
}

// ProcessFile converts a single document read from src into w. The
// diagram is torn down exactly once, whether or not decoding succeeds.
func (p *Processor) ProcessFile(ctx context.Context, name string, src io.ReaderAt, size int64, w io.Writer) (err error) {
	res := format.Sniffer{Registry: p.Registry}.Sniff(src, size)
	if !res.Tag.Supported() {
		return &SniffError{File: name, Tag: res.Tag, Foreign: format.DetectForeign(src, size)}
	}

	opts := p.Options
	d, err := diagram.New(p.Task, name, &opts, w)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer func() {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%s: %w", name, cerr)
		}
	}()

	log := p.log().WithField("file", name)
	log.WithFields(logrus.Fields{"version": res.Version, "nfib": res.NFib}).Debug("sniffed")
	decodeOpts := []word.Option{
		word.WithImages(opts.WantsImages()),
		word.WithLogger(log),
	}
	if p.Warnings != nil {
		decodeOpts = append(decodeOpts, word.WithWarnings(func(wn word.Warning) { p.Warnings(name, wn) }))
	}
	decodeOpts = append(decodeOpts, p.Decode...)
	if err := word.DecodeContext(ctx, src, size, res.Tag, d, decodeOpts...); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// Batch converts every input into w, in order, and reports one
// diagnostic per failed file through the logger.
func (p *Processor) Batch(ctx context.Context, inputs []Input, w io.Writer) Result {
	multiple := len(inputs) > 1
	q := *p
	q.Options.Wrapped = multiple && q.Options.Conversion == diagram.ConvertXML

	if q.Options.Conversion == diagram.ConvertXML {
		if err := WriteXMLProlog(w, multiple); err != nil {
			q.log().WithError(err).Error("writing XML prolog")
		}
	}

	var res Result
	if q.Jobs > 1 && multiple {
		res = q.parallel(ctx, inputs, w, multiple)
	} else {
		for i, in := range inputs {
			if ctx.Err() != nil {
				q.log().WithError(ctx.Err()).Errorf("stopped before %s", in.Name)
				res.Failed += len(inputs) - i
				break
			}
			q.count(&res, in.Name, q.one(ctx, in, w, multiple))
		}
	}

	if multiple && q.Options.Conversion == diagram.ConvertXML {
		if _, err := io.WriteString(w, "</set>\n"); err != nil {
			q.log().WithError(err).Error("closing XML set")
		}
	}
	q.log().WithFields(logrus.Fields{"converted": res.Converted, "failed": res.Failed}).Debug("batch done")
	return res
}

// WriteXMLProlog writes the XML declaration and the DocBook DOCTYPE. A
// set also opens the <set> element, which the caller closes.
func WriteXMLProlog(w io.Writer, set bool) error {
	root := "book"
	if set {
		root = "set"
	}
	_, err := fmt.Fprintf(w, "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n"+
		"<!DOCTYPE %s PUBLIC \"-//OASIS//DTD DocBook XML V4.1.2//EN\"\n"+
		"\t\"http://www.oasis-open.org/docbook/xml/4.1.2/docbookx.dtd\">\n", root)
	if err == nil && set {
		_, err = io.WriteString(w, "<set>\n")
	}
	return err
}

// parallel renders each file into its own buffer and replays the
// buffers in input order.
func (p *Processor) parallel(ctx context.Context, inputs []Input, w io.Writer, multiple bool) Result {
	bufs := make([]bytes.Buffer, len(inputs))
	errs := make([]error, len(inputs))

	var g errgroup.Group
	g.SetLimit(p.Jobs)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = p.one(ctx, in, &bufs[i], multiple)
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	for i, in := range inputs {
		if _, err := bufs[i].WriteTo(w); err != nil && errs[i] == nil {
			errs[i] = fmt.Errorf("%s: %w", in.Name, err)
		}
		p.count(&res, in.Name, errs[i])
	}
	return res
}

func (p *Processor) count(res *Result, name string, err error) {
	if err == nil {
		res.Converted++
		return
	}
	res.Failed++
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		p.log().WithError(err).Errorf("%s: conversion stopped", name)
		return
	}
	p.log().Error(err.Error())
}

// OpenError reports an input that could not be read.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("I can't open '%s' for reading", e.Name)
}

func (e *OpenError) Unwrap() error { return e.Err }

// one converts a single input, writing the text banner first when
// several files share the output.
func (p *Processor) one(ctx context.Context, in Input, w io.Writer, multiple bool) error {
	if multiple && p.Options.Conversion == diagram.ConvertText {
		if _, err := fmt.Fprintf(w, "%s%s\n%s", banner, filepath.Base(in.Name), banner); err != nil {
			return fmt.Errorf("%s: writing banner: %w", in.Name, err)
		}
	}
	src, size, err := in.Open()
	if err != nil {
		return &OpenError{Name: in.Name, Err: err}
	}
	defer src.Close()
	return p.ProcessFile(ctx, in.Name, src, size, w)
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

// FileInput opens path from disk; Stdin reads standard input instead.
func FileInput(path string) Input {
	if path == Stdin {
		return ReaderInput(Stdin, os.Stdin)
	}
	return Input{Name: path, Open: func() (ReaderAtCloser, int64, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, err
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, err
		}
		if fi.IsDir() {
			f.Close()
			return nil, 0, fmt.Errorf("%s is a directory", path)
		}
		return f, fi.Size(), nil
	}}
}

// ReaderInput reads r fully into memory when opened.
func ReaderInput(name string, r io.Reader) Input {
	return Input{Name: name, Open: func() (ReaderAtCloser, int64, error) {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, 0, err
		}
		return nopCloser{bytes.NewReader(data)}, int64(len(data)), nil
	}}
}

// BytesInput serves data from memory.
func BytesInput(name string, data []byte) Input {
	return Input{Name: name, Open: func() (ReaderAtCloser, int64, error) {
		return nopCloser{bytes.NewReader(data)}, int64(len(data)), nil
	}}
}

// FileInputs maps command line arguments to inputs.
func FileInputs(paths []string) []Input {
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		inputs[i] = FileInput(p)
	}
	return inputs
}
