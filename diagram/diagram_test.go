package diagram

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordview/model"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestNewSelectsBackend(t *testing.T) {
	tests := []struct {
		conv Conversion
		want any
	}{
		{ConvertText, &Text{}},
		{ConvertPostScript, &PostScript{}},
		{ConvertXML, &XML{}},
		{ConvertTrace, &Trace{}},
	}
	for _, tt := range tests {
		opts := DefaultOptions()
		opts.Conversion = tt.conv
		d, err := New("wordview", "a.doc", &opts, io.Discard)
		require.NoError(t, err)
		assert.IsType(t, tt.want, d, tt.conv.String())
	}

	_, err := New("wordview", "a.doc", nil, nil)
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.Conversion = Conversion(42)
	_, err = New("wordview", "a.doc", &opts, io.Discard)
	assert.Error(t, err)
}

func TestParseConversion(t *testing.T) {
	for in, want := range map[string]Conversion{
		"text": ConvertText, "PS": ConvertPostScript, "docbook": ConvertXML, "db": ConvertXML, "trace": ConvertTrace,
	} {
		got, err := ParseConversion(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseConversion("rtf")
	assert.Error(t, err)
}

func TestParseImageLevel(t *testing.T) {
	lvl, err := ParseImageLevel(3)
	require.NoError(t, err)
	assert.Equal(t, ImagesLevel3, lvl)
	_, err = ParseImageLevel(4)
	assert.Error(t, err)
}

func TestWantsImages(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.WantsImages())
	opts.Conversion = ConvertPostScript
	assert.True(t, opts.WantsImages())
	opts.ImageLevel = ImagesNone
	assert.False(t, opts.WantsImages())
}

func TestProtocolViolationsPanic(t *testing.T) {
	d := NewTrace(io.Discard)
	assert.PanicsWithValue(t, "diagram: EmitRun called while unopened", func() {
		d.EmitRun("x", model.Style{})
	})

	require.NoError(t, d.OpenDocument())
	assert.Panics(t, func() { d.OpenDocument() })
	assert.Panics(t, func() { d.CloseParagraph() })

	require.NoError(t, d.OpenParagraph(model.Paragraph{}))
	assert.Panics(t, func() { d.OpenParagraph(model.Paragraph{}) }, "nested paragraph")
	assert.Panics(t, func() { d.PageBreak() }, "page break inside a paragraph")
	assert.Panics(t, func() { d.CloseDocument() }, "document closed with open paragraph")

	require.NoError(t, d.CloseParagraph())
	require.NoError(t, d.CloseDocument())
	assert.Panics(t, func() { d.OpenParagraph(model.Paragraph{}) }, "event after close")
}

func TestCloseExactlyOnce(t *testing.T) {
	d := NewTrace(io.Discard)
	require.NoError(t, d.OpenDocument())
	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Close(), ErrClosed)
}

func TestCloseFinalizesOpenStructure(t *testing.T) {
	d := NewTrace(io.Discard)
	require.NoError(t, d.OpenDocument())
	require.NoError(t, d.OpenParagraph(model.Paragraph{}))
	require.NoError(t, d.EmitRun("partial", model.Style{}))
	require.NoError(t, d.Close())

	var kinds []EventKind
	for _, e := range d.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []EventKind{EventOpenDocument, EventOpenParagraph, EventRun, EventCloseParagraph, EventCloseDocument}, kinds)
}

func TestCloseUnopenedWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	d := NewXML("a.doc", &buf, &RenderOptions{})
	require.NoError(t, d.Close())
	assert.Empty(t, buf.String())
}

func TestDestinationErrorIsSticky(t *testing.T) {
	opts := DefaultOptions()
	d := NewText(failingWriter{}, &opts)
	require.NoError(t, d.OpenDocument())
	require.NoError(t, d.OpenParagraph(model.Paragraph{}))
	require.NoError(t, d.EmitRun("buffered", model.Style{}))
	require.NoError(t, d.CloseParagraph())

	err := d.CloseDocument()
	require.ErrorIs(t, err, ErrDestination)
	assert.Contains(t, err.Error(), "disk full")
	assert.ErrorIs(t, d.Close(), ErrDestination)
}

func TestTraceLines(t *testing.T) {
	var buf bytes.Buffer
	d := NewTrace(&buf)
	require.NoError(t, d.OpenDocument())
	require.NoError(t, d.OpenParagraph(model.Paragraph{Justification: model.JustifyCenter, InTable: true}))
	require.NoError(t, d.EmitRun("Hi \"there\"", model.Style{Bold: true}))
	require.NoError(t, d.DrawImage(&model.Image{Format: model.ImagePNG, PixelWidth: 2, PixelHeight: 3}))
	require.NoError(t, d.CloseParagraph())
	require.NoError(t, d.PageBreak())
	require.NoError(t, d.CloseDocument())
	require.NoError(t, d.Close())

	want := "open-document\n" +
		"open-paragraph center table\n" +
		"run \"Hi \\\"there\\\"\" bold\n" +
		"image png 2x3\n" +
		"close-paragraph\n" +
		"page-break\n" +
		"close-document\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, []string{"Hi \"there\""}, d.Runs())
}
