// Package format classifies byte streams as one of the supported Word
// binary layouts, an ambiguous Word-like container, or something else.
//
// Classification is a pure function of the header bytes and the declared
// size. Foreign formats are reported separately through DetectForeign so
// callers can produce a better diagnostic than "not a Word document".
package format

import (
	"fmt"
	"strings"
)

// Tag identifies a binary layout.
type Tag int

const (
	// Unsupported means the bytes are not a Word document.
	Unsupported Tag = iota
	// Ambiguous means a Word-like container whose version is unknown or
	// not decodable.
	Ambiguous
	// WinWord1 is Word for Windows 1.x.
	WinWord1
	// WinWord2 is Word for Windows 2.0.
	WinWord2
	// Word6 is Word 6.0 for Windows, stored in a compound file.
	Word6
	// Word7 is Word 95.
	Word7
	// Word97 covers Word 97 through Word 2003.
	Word97
)

var tagNames = map[Tag]string{
	Unsupported: "unsupported",
	Ambiguous:   "ambiguous",
	WinWord1:    "winword1",
	WinWord2:    "winword2",
	Word6:       "word6",
	Word7:       "word7",
	Word97:      "word97",
}

// String returns the registry name of the tag.
func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Supported reports whether the decoder can handle the tag.
func (t Tag) Supported() bool {
	return t >= WinWord1 && t <= Word97
}

// Description returns a human readable product name.
func (t Tag) Description() string {
	switch t {
	case WinWord1:
		return "Word for Windows 1"
	case WinWord2:
		return "Word for Windows 2"
	case Word6:
		return "Word 6"
	case Word7:
		return "Word 7 (Word 95)"
	case Word97:
		return "Word 97-2003"
	case Ambiguous:
		return "unrecognised Word version"
	default:
		return "not a Word document"
	}
}

// ParseTag converts a registry name into a Tag.
func ParseTag(s string) (Tag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range tagNames {
		if name == s {
			return t, nil
		}
	}
	return Unsupported, fmt.Errorf("unknown format tag %q", s)
}

// UnmarshalText lets registry files name tags.
func (t *Tag) UnmarshalText(b []byte) error {
	v, err := ParseTag(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
