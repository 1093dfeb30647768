// Package logging configures the logrus logger used for diagnostics.
//
// Diagnostics follow the classic converter style: one line per message,
// prefixed with the task name, e.g.
//
//	wordview: report.doc is not a Word Document.
//
// At debug level the level name follows the task and structured fields are
// appended as key=value pairs in sorted order.
package logging

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// PlainFormatter prints "task: message" lines.
type PlainFormatter struct {
	Task string
	// Level adds the upper-case level after the task.
	Level bool
	// Fields appends the entry's fields.
	Fields bool
}

// Format implements logrus.Formatter.
func (f *PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	if f.Task != "" {
		b.WriteString(f.Task)
		b.WriteString(": ")
	}
	if f.Level {
		b.WriteString(strings.ToUpper(entry.Level.String()))
		b.WriteString(" ")
	}
	b.WriteString(entry.Message)
	if f.Fields && len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, formatValue(entry.Data[k]))
		}
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		if strings.ContainsAny(v, " \t\"") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case error:
		return fmt.Sprintf("%q", v.Error())
	default:
		return fmt.Sprint(v)
	}
}

// New returns a logger writing to w. level is a logrus level name;
// an empty string means "info".
func New(task, level string, w io.Writer) (*logrus.Logger, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		var err error
		if lvl, err = logrus.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	debug := lvl >= logrus.DebugLevel
	l.SetFormatter(&PlainFormatter{Task: task, Level: debug, Fields: debug})
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
