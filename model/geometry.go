package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Point represents a 2D point in PostScript points.
type Point struct {
	X, Y float64
}

// BBox represents a rectangle with its origin at the bottom left, the
// PostScript convention.
type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewBBox creates a bounding box from coordinates.
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate.
func (b BBox) Left() float64 { return b.X }

// Right returns the right edge X coordinate.
func (b BBox) Right() float64 { return b.X + b.Width }

// Bottom returns the bottom edge Y coordinate.
func (b BBox) Bottom() float64 { return b.Y }

// Top returns the top edge Y coordinate.
func (b BBox) Top() float64 { return b.Y + b.Height }

// Contains checks if a point is inside the bounding box.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.Left() && p.X <= b.Right() &&
		p.Y >= b.Bottom() && p.Y <= b.Top()
}

// Orientation of the printed page.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

// String returns the DSC spelling of the orientation.
func (o Orientation) String() string {
	if o == Landscape {
		return "Landscape"
	}
	return "Portrait"
}

// Margins in points.
type Margins struct {
	Left, Right, Top, Bottom float64
}

// DefaultMargin is one inch.
const DefaultMargin = 72

// PageGeometry describes the physical page.
type PageGeometry struct {
	// Width and Height are the dimensions as printed, after any
	// landscape rotation.
	Width       float64
	Height      float64
	Orientation Orientation
	Margins     Margins
}

// paperSizes lists portrait dimensions in points.
var paperSizes = map[string][2]float64{
	"10x14":     {720, 1008},
	"a3":        {842, 1191},
	"a4":        {595, 842},
	"a5":        {420, 595},
	"b4":        {729, 1032},
	"b5":        {516, 729},
	"executive": {540, 720},
	"folio":     {612, 936},
	"legal":     {612, 1008},
	"letter":    {612, 792},
	"note":      {540, 720},
	"quarto":    {610, 780},
	"statement": {396, 612},
	"tabloid":   {792, 1224},
}

// PaperNames returns the accepted paper names in sorted order.
func PaperNames() []string {
	names := make([]string, 0, len(paperSizes))
	for n := range paperSizes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewPageGeometry builds the geometry of a named paper size with
// one-inch margins. Landscape swaps width and height.
func NewPageGeometry(paper string, o Orientation) (PageGeometry, error) {
	size, ok := paperSizes[strings.ToLower(strings.TrimSpace(paper))]
	if !ok {
		return PageGeometry{}, fmt.Errorf("unknown paper size %q (want one of %s)", paper, strings.Join(PaperNames(), ", "))
	}
	g := PageGeometry{
		Width:       size[0],
		Height:      size[1],
		Orientation: o,
		Margins:     Margins{DefaultMargin, DefaultMargin, DefaultMargin, DefaultMargin},
	}
	if o == Landscape {
		g.Width, g.Height = g.Height, g.Width
	}
	return g, nil
}

// DefaultPageGeometry is portrait A4.
func DefaultPageGeometry() PageGeometry {
	g, _ := NewPageGeometry("a4", Portrait)
	return g
}

// TextArea returns the printable rectangle inside the margins.
func (g PageGeometry) TextArea() BBox {
	return NewBBox(
		g.Margins.Left,
		g.Margins.Bottom,
		math.Max(0, g.Width-g.Margins.Left-g.Margins.Right),
		math.Max(0, g.Height-g.Margins.Top-g.Margins.Bottom),
	)
}

// Valid reports whether the text area has a positive size.
func (g PageGeometry) Valid() bool {
	a := g.TextArea()
	return a.Width > 0 && a.Height > 0
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
