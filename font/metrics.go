package font

import "golang.org/x/text/unicode/norm"

// Widths are in 1000ths of an em for the printable ASCII range ' '..'~'.
type asciiWidths [95]float64

var helveticaWidths = asciiWidths{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278, 584, 584, 584, 556,
	1015, 667, 667, 722, 722, 667, 611, 778, 722, 278, 500, 667, 556, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 278, 278, 278, 469, 556,
	333, 556, 556, 500, 556, 556, 278, 556, 556, 222, 222, 500, 222, 833, 556, 556,
	556, 556, 333, 500, 278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

var helveticaBoldWidths = asciiWidths{
	278, 333, 474, 556, 556, 889, 722, 278, 333, 333, 389, 584, 278, 333, 278, 278,
	556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 333, 333, 584, 584, 584, 611,
	975, 722, 722, 722, 722, 667, 611, 778, 722, 278, 556, 722, 611, 833, 722, 778,
	667, 778, 722, 667, 611, 722, 667, 944, 667, 667, 611, 333, 278, 333, 584, 556,
	333, 556, 611, 556, 611, 556, 333, 611, 611, 278, 278, 556, 278, 889, 611, 611,
	611, 611, 389, 556, 333, 611, 556, 778, 556, 556, 500, 389, 280, 389, 584,
}

var timesWidths = asciiWidths{
	250, 333, 408, 500, 500, 833, 778, 333, 333, 333, 500, 564, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 278, 278, 564, 564, 564, 444,
	921, 722, 667, 667, 722, 611, 556, 722, 722, 333, 389, 722, 611, 889, 722, 722,
	556, 722, 667, 556, 611, 722, 722, 944, 722, 722, 611, 333, 278, 333, 469, 500,
	333, 444, 500, 444, 500, 444, 333, 500, 500, 278, 278, 500, 278, 778, 500, 500,
	500, 500, 333, 389, 278, 500, 500, 722, 500, 500, 444, 480, 200, 480, 541,
}

var timesBoldWidths = asciiWidths{
	250, 333, 555, 500, 500, 1000, 833, 333, 333, 333, 500, 570, 250, 333, 250, 278,
	500, 500, 500, 500, 500, 500, 500, 500, 500, 500, 333, 333, 570, 570, 570, 500,
	930, 722, 667, 722, 722, 667, 611, 778, 778, 389, 500, 778, 667, 944, 722, 778,
	611, 778, 722, 556, 667, 722, 722, 1000, 722, 722, 667, 333, 278, 333, 581, 500,
	333, 500, 556, 444, 556, 444, 333, 500, 556, 278, 333, 556, 278, 833, 556, 500,
	556, 556, 444, 389, 333, 556, 500, 722, 500, 500, 444, 394, 220, 394, 520,
}

// Italic faces reuse the upright tables; the differences are small enough
// for line filling.
var standardFonts = map[string]*asciiWidths{
	"Helvetica":             &helveticaWidths,
	"Helvetica-Bold":        &helveticaBoldWidths,
	"Helvetica-Oblique":     &helveticaWidths,
	"Helvetica-BoldOblique": &helveticaBoldWidths,
	"Times-Roman":           &timesWidths,
	"Times-Bold":            &timesBoldWidths,
	"Times-Italic":          &timesWidths,
	"Times-BoldItalic":      &timesBoldWidths,
	"Courier":               nil,
	"Courier-Bold":          nil,
	"Courier-Oblique":       nil,
	"Courier-BoldOblique":   nil,
	"Symbol":                nil,
	"ZapfDingbats":          nil,
}

// IsStandard reports whether name is one of the Standard 14 fonts.
func IsStandard(name string) bool {
	_, ok := standardFonts[name]
	return ok
}

// Width returns the advance of r in font name, in 1000ths of an em.
// Accented letters take the width of their base letter.
func Width(name string, r rune) float64 {
	switch name {
	case "Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique":
		return 600
	}
	table := standardFonts[name]
	if table == nil {
		return 500
	}
	if r >= ' ' && r <= '~' {
		return table[r-' ']
	}
	if r == 0xA0 {
		return table[0]
	}
	if base := baseLetter(r); base != r && base >= ' ' && base <= '~' {
		return table[base-' ']
	}
	return 500
}

// StringWidth returns the width of s in points at the given size.
func StringWidth(name, s string, size float64) float64 {
	total := 0.0
	for _, r := range s {
		total += Width(name, r)
	}
	return total * size / 1000
}

func baseLetter(r rune) rune {
	d := norm.NFD.String(string(r))
	for _, c := range d {
		return c
	}
	return r
}
