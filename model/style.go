package model

import "strings"

// DefaultHalfPoints is the font size used when a run does not set one (10pt).
const DefaultHalfPoints = 20

// Style holds the character formatting of one run.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	Hidden    bool
	Caps      bool
	SmallCaps bool

	// FontID indexes the document font table.
	FontID uint16
	// FontName is resolved from the font table, empty if unknown.
	FontName string
	// HalfPoints is the font size in half points; 0 means the default.
	HalfPoints uint16
}

// Size returns the font size in points.
func (s Style) Size() float64 {
	if s.HalfPoints == 0 {
		return DefaultHalfPoints / 2
	}
	return float64(s.HalfPoints) / 2
}

// Emphasized reports whether any visual emphasis is set.
func (s Style) Emphasized() bool {
	return s.Bold || s.Italic || s.Underline || s.Strike
}

// String lists the set attributes, e.g. "bold italic 12pt".
func (s Style) String() string {
	var parts []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{s.Bold, "bold"},
		{s.Italic, "italic"},
		{s.Underline, "underline"},
		{s.Strike, "strike"},
		{s.Hidden, "hidden"},
		{s.Caps, "caps"},
		{s.SmallCaps, "smallcaps"},
	} {
		if f.on {
			parts = append(parts, f.name)
		}
	}
	if s.HalfPoints != 0 && s.HalfPoints != DefaultHalfPoints {
		parts = append(parts, trimFloat(s.Size())+"pt")
	}
	if s.FontName != "" {
		parts = append(parts, "font="+s.FontName)
	}
	if len(parts) == 0 {
		return "plain"
	}
	return strings.Join(parts, " ")
}

// Transform applies the capitalisation attributes to text.
func (s Style) Transform(text string) string {
	if s.Caps || s.SmallCaps {
		return strings.ToUpper(text)
	}
	return text
}

// Justification is the horizontal alignment of a paragraph.
type Justification int

const (
	JustifyLeft Justification = iota
	JustifyCenter
	JustifyRight
	JustifyBoth
)

// String returns the lower-case name of the alignment.
func (j Justification) String() string {
	switch j {
	case JustifyCenter:
		return "center"
	case JustifyRight:
		return "right"
	case JustifyBoth:
		return "both"
	default:
		return "left"
	}
}

// Paragraph holds the properties of a paragraph. The zero value is a
// plain left-aligned paragraph.
type Paragraph struct {
	Justification   Justification
	InTable         bool
	PageBreakBefore bool
}
