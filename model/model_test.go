package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleString(t *testing.T) {
	assert.Equal(t, "plain", Style{}.String())
	assert.Equal(t, "bold italic", Style{Bold: true, Italic: true}.String())
	assert.Equal(t, "hidden 12pt font=Arial", Style{Hidden: true, HalfPoints: 24, FontName: "Arial"}.String())
}

func TestStyleSize(t *testing.T) {
	assert.Equal(t, 10.0, Style{}.Size())
	assert.Equal(t, 10.5, Style{HalfPoints: 21}.Size())
}

func TestStyleTransform(t *testing.T) {
	assert.Equal(t, "abc", Style{}.Transform("abc"))
	assert.Equal(t, "ABC", Style{SmallCaps: true}.Transform("abc"))
}

func TestNewPageGeometry(t *testing.T) {
	tests := []struct {
		paper  string
		o      Orientation
		width  float64
		height float64
	}{
		{"a4", Portrait, 595, 842},
		{"A4", Landscape, 842, 595},
		{"letter", Portrait, 612, 792},
		{" legal ", Portrait, 612, 1008},
		{"10x14", Landscape, 1008, 720},
	}
	for _, tt := range tests {
		g, err := NewPageGeometry(tt.paper, tt.o)
		require.NoError(t, err, tt.paper)
		assert.Equal(t, tt.width, g.Width, tt.paper)
		assert.Equal(t, tt.height, g.Height, tt.paper)
		assert.Equal(t, tt.o, g.Orientation)
	}

	_, err := NewPageGeometry("napkin", Portrait)
	assert.ErrorContains(t, err, "unknown paper size")
}

func TestTextArea(t *testing.T) {
	g := DefaultPageGeometry()
	area := g.TextArea()
	assert.Equal(t, 72.0, area.Left())
	assert.Equal(t, 72.0, area.Bottom())
	assert.Equal(t, 595.0-72, area.Right())
	assert.Equal(t, 842.0-72, area.Top())
	assert.True(t, area.Contains(Point{300, 400}))
	assert.False(t, area.Contains(Point{10, 400}))
	assert.True(t, g.Valid())

	g.Margins.Left = 600
	assert.False(t, g.Valid())
}

func TestPaperNamesSorted(t *testing.T) {
	names := PaperNames()
	assert.Len(t, names, 14)
	assert.IsIncreasing(t, names)
}

func TestJustificationString(t *testing.T) {
	assert.Equal(t, "left", Paragraph{}.Justification.String())
	assert.Equal(t, "both", JustifyBoth.String())
}
