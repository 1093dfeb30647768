// Package wordview provides a fluent API for converting legacy Microsoft
// Word documents (Word for Windows 1.x/2.0, Word 6, Word 95 and Word
// 97-2003) to plain text, PostScript or DocBook XML.
//
// Basic usage:
//
//	text, warnings, err := wordview.Open("letter.doc").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", wordview.FormatWarnings(warnings))
//	}
//
// With options:
//
//	ps, _, err := wordview.Open("report.doc").
//	    Paper("letter").
//	    Landscape().
//	    ImageLevel(3).
//	    PostScript()
//
// For batch conversion and lower-level control, see the convert, word and
// diagram packages.
package wordview

// Open returns a Converter for the document at path. The file is read
// when a terminal operation such as Text runs.
//
// Example:
//
//	text, warnings, err := wordview.Open("letter.doc").Text()
func Open(path string) *Converter {
	return &Converter{
		name:    path,
		path:    path,
		options: defaultOptions(),
	}
}

// FromBytes returns a Converter for a document held in memory. name is
// used in diagnostics and output headers.
//
// Example:
//
//	data, _ := os.ReadFile("letter.doc")
//	text, _, err := wordview.FromBytes("letter.doc", data).Text()
func FromBytes(name string, data []byte) *Converter {
	return &Converter{
		name:    name,
		data:    data,
		inMem:   true,
		options: defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil.
//
// Example:
//
//	tag := wordview.Must(wordview.Open("letter.doc").Version())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText wraps a call to Text, PostScript or XML and panics if the
// error is non-nil. Warnings are discarded.
//
// Example:
//
//	text := wordview.MustText(wordview.Open("letter.doc").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
