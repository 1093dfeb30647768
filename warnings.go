package wordview

import (
	"strings"

	"github.com/tsawler/wordview/word"
)

// Warning is a recoverable problem met while decoding; the conversion
// still produced output.
type Warning = word.Warning

// FormatWarnings joins warnings into a single line for logging.
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, len(warnings))
	for i, w := range warnings {
		parts[i] = w.String()
	}
	return strings.Join(parts, "; ")
}
