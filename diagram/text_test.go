package diagram

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/wordview/mapping"
	"github.com/tsawler/wordview/model"
)

type run struct {
	text  string
	style model.Style
}

// render drives d with one paragraph per element of paras.
func render(t *testing.T, d Diagram, paras ...[]run) {
	t.Helper()
	require.NoError(t, d.OpenDocument())
	for _, p := range paras {
		require.NoError(t, d.OpenParagraph(model.Paragraph{}))
		for _, r := range p {
			require.NoError(t, d.EmitRun(r.text, r.style))
		}
		require.NoError(t, d.CloseParagraph())
	}
	require.NoError(t, d.CloseDocument())
	require.NoError(t, d.Close())
}

func textOutput(t *testing.T, opts RenderOptions, paras ...[]run) string {
	t.Helper()
	var buf bytes.Buffer
	render(t, NewText(&buf, &opts), paras...)
	return buf.String()
}

func TestTextTwoParagraphs(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 80
	got := textOutput(t, opts,
		[]run{{"Hello", model.Style{Bold: true, Italic: true}}, {" world", model.Style{}}},
		[]run{{"Goodbye", model.Style{}}},
	)
	assert.Equal(t, "Hello world\n\nGoodbye\n\n", got)

	var nonEmpty []string
	for _, l := range strings.Split(got, "\n") {
		if l != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}
	assert.Equal(t, []string{"Hello world", "Goodbye"}, nonEmpty)
}

func TestTextHiddenGating(t *testing.T) {
	paras := []run{{"before ", model.Style{}}, {"X", model.Style{Hidden: true}}, {" after", model.Style{}}}

	opts := DefaultOptions()
	assert.Equal(t, "before  after\n\n", textOutput(t, opts, paras))

	opts.ShowHidden = true
	assert.Equal(t, "before X after\n\n", textOutput(t, opts, paras))
}

func TestTextWrapsAtWhitespace(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 10
	got := textOutput(t, opts, []run{{"the quick brown fox jumps", model.Style{}}})
	assert.Equal(t, "the quick\nbrown fox\njumps\n\n", got)
}

func TestTextLongTokenIsNotSplit(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 5
	got := textOutput(t, opts, []run{{"a supercalifragilistic b", model.Style{}}})
	assert.Equal(t, "a\nsupercalifragilistic\nb\n\n", got)
}

func TestTextWordSpanningRuns(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 8
	got := textOutput(t, opts, []run{{"one tw", model.Style{}}, {"o three", model.Style{Bold: true}}})
	assert.Equal(t, "one two\nthree\n\n", got)
}

func TestTextUnboundedWidth(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 0
	long := strings.Repeat("word ", 100)
	got := textOutput(t, opts, []run{{long, model.Style{}}})
	assert.Equal(t, strings.TrimRight(long, " ")+"\n\n", got)
}

func TestTextHardBreaksAndTabs(t *testing.T) {
	opts := DefaultOptions()
	got := textOutput(t, opts, []run{{"a\tb\nc", model.Style{}}}, nil)
	assert.Equal(t, "a b\nc\n\n\n", got)
}

func TestTextIndentDroppedWhenWordOverflows(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 4
	assert.Equal(t, "abcd\n\n", textOutput(t, opts, []run{{"\tabcd", model.Style{}}}))
	assert.Equal(t, "  ab\n\n", textOutput(t, opts, []run{{"  ab", model.Style{}}}))
	assert.Equal(t, "x\nabcd\n\n", textOutput(t, opts, []run{{"x\n \tabcd", model.Style{}}}))
}

func TestTextCaps(t *testing.T) {
	opts := DefaultOptions()
	got := textOutput(t, opts, []run{{"shout", model.Style{Caps: true}}})
	assert.Equal(t, "SHOUT\n\n", got)
}

func TestTextWideCharactersCountColumns(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 6
	got := textOutput(t, opts, []run{{"日本 語語", model.Style{}}})
	assert.Equal(t, "日本\n語語\n\n", got)
}

func TestTextMapping(t *testing.T) {
	tbl, err := mapping.Named("iso-8859-1")
	require.NoError(t, err)
	opts := DefaultOptions()
	opts.Mapping = tbl
	got := textOutput(t, opts, []run{{"café “x”", model.Style{}}})
	assert.Equal(t, "caf\xe9 \"x\"\n\n", got)
}

func TestTextWrapLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	letters := "abcdefghijklmnopqrstuvwxyz"
	for iter := 0; iter < 200; iter++ {
		width := 1 + rng.Intn(40)
		var runs []run
		for i := 0; i < 1+rng.Intn(8); i++ {
			var b strings.Builder
			for j := 0; j < rng.Intn(3); j++ {
				b.WriteString([]string{" ", "\t"}[rng.Intn(2)])
			}
			for j := 0; j < rng.Intn(30); j++ {
				if rng.Intn(5) == 0 {
					b.WriteByte(' ')
				} else {
					b.WriteByte(letters[rng.Intn(len(letters))])
				}
			}
			runs = append(runs, run{b.String(), model.Style{Bold: rng.Intn(2) == 0}})
		}

		opts := DefaultOptions()
		opts.Width = width
		out := textOutput(t, opts, runs)
		for _, line := range strings.Split(out, "\n") {
			if len(line) > width {
				assert.NotContains(t, line, " ",
					"width %d: line %q overflows and is not a single token", width, line)
			}
		}
	}
}
