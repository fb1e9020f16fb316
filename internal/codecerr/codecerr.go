// Package codecerr defines the error taxonomy shared by the LZ and GLZ
// decoders and the decoder window. It exists so that internal/lz,
// internal/glz, internal/wire and internal/composite can all produce errors
// of the same shape without importing the root package (which in turn
// imports all of them).
package codecerr

import "fmt"

// Kind identifies which of the spec's error categories an Error belongs to.
type Kind int

const (
	// InvalidMagic means a header's magic constant did not match.
	InvalidMagic Kind = iota
	// InvalidVersion means a header's version constant did not match.
	InvalidVersion
	// InvalidImageType means the pixel-format tag was outside {8, 9, 10}.
	InvalidImageType
	// InvalidFrameSize means declared dimensions overflow or the output
	// buffer supplied by the caller is too small.
	InvalidFrameSize
	// CorruptedStream covers malformed back-references, truncated
	// variable-length fields, and literal payloads that run past the
	// input.
	CorruptedStream
	// ReferenceNotFound means an inter-image reference named an id not
	// present in the window, or whose gross_pixels was smaller than the
	// requested offset.
	ReferenceNotFound
	// OutputOverflow means a fully decoded op would write past the
	// caller's output buffer.
	OutputOverflow
	// OutOfMemory means window growth or entry copy could not allocate.
	OutOfMemory
)

func (k Kind) String() string {
	switch k {
	case InvalidMagic:
		return "InvalidMagic"
	case InvalidVersion:
		return "InvalidVersion"
	case InvalidImageType:
		return "InvalidImageType"
	case InvalidFrameSize:
		return "InvalidFrameSize"
	case CorruptedStream:
		return "CorruptedStream"
	case ReferenceNotFound:
		return "ReferenceNotFound"
	case OutputOverflow:
		return "OutputOverflow"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by every decoder in this
// module. Op names the operation that failed (e.g. "lz.Decode",
// "wire.ParseGLZHeader"); Err, when non-nil, is the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality by Kind, so callers can write
// errors.Is(err, codecerr.Sentinel(codecerr.CorruptedStream)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error with no wrapped cause.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// Wrap builds an Error wrapping an existing cause.
func Wrap(kind Kind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// Sentinel returns a bare Error carrying only a Kind, suitable as the
// target of errors.Is.
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}
