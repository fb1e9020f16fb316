package glzcodec

import (
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/spice-space/glzcodec/internal/codecerr"
)

// Kind identifies which of the error taxonomy's categories (spec.md §7)
// a DecodeError belongs to.
type Kind = codecerr.Kind

// The error kinds a decode call can fail with.
const (
	InvalidMagic      = codecerr.InvalidMagic
	InvalidVersion    = codecerr.InvalidVersion
	InvalidImageType  = codecerr.InvalidImageType
	InvalidFrameSize  = codecerr.InvalidFrameSize
	CorruptedStream   = codecerr.CorruptedStream
	ReferenceNotFound = codecerr.ReferenceNotFound
	OutputOverflow    = codecerr.OutputOverflow
	OutOfMemory       = codecerr.OutOfMemory
)

// DecodeError is the error type every exported decode call returns on
// failure. It wraps the internal codecerr.Error with caller-facing
// context (the frame id, when known) using github.com/pkg/errors so a
// stack trace is attached at the point the facade first sees the error.
type DecodeError struct {
	FrameID uint64
	cause   error
}

func (e *DecodeError) Error() string {
	return pkgerrors.Wrap(e.cause, "glzcodec: decode failed").Error()
}

func (e *DecodeError) Unwrap() error { return e.cause }

// KindOf reports the error taxonomy Kind of err, if it or anything it
// wraps carries one.
func KindOf(err error) (Kind, bool) {
	var ce *codecerr.Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

func wrapDecodeError(frameID uint64, err error) error {
	if err == nil {
		return nil
	}
	return &DecodeError{FrameID: frameID, cause: pkgerrors.WithStack(err)}
}
