package word

import (
	"errors"
	"fmt"
)

// Kind classifies decoder failures.
type Kind int

const (
	// KindUnsupportedSubVariant: encrypted, fast-saved or otherwise
	// unsupported flavour of a supported version.
	KindUnsupportedSubVariant Kind = iota + 1
	// KindCorruptIndex: an internal table is inconsistent.
	KindCorruptIndex
	// KindTruncated: a structure points past the end of its stream.
	KindTruncated
	// KindDecompression: embedded compressed data did not inflate.
	KindDecompression
	// KindRender: the diagram reported a failure.
	KindRender
)

var (
	ErrUnsupportedSubVariant = errors.New("unsupported document variant")
	ErrCorruptIndex          = errors.New("corrupt structural index")
	ErrTruncated             = errors.New("truncated document")
	ErrDecompression         = errors.New("decompression failure")
	ErrRender                = errors.New("render failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindUnsupportedSubVariant:
		return ErrUnsupportedSubVariant
	case KindCorruptIndex:
		return ErrCorruptIndex
	case KindTruncated:
		return ErrTruncated
	case KindDecompression:
		return ErrDecompression
	case KindRender:
		return ErrRender
	}
	return nil
}

// String returns the sentinel message of the kind.
func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by Decode. It matches its kind's sentinel with
// errors.Is and unwraps to the underlying cause, if any.
type Error struct {
	Kind Kind
	// Op names the structure being decoded, e.g. "clx" or "fib".
	Op  string
	Err error
}

func (e *Error) Error() string {
	msg := "word: " + e.Kind.String()
	if e.Op != "" {
		msg += " in " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}
