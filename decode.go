package glzcodec

import (
	"go.uber.org/zap"

	"github.com/spice-space/glzcodec/internal/codecerr"
	"github.com/spice-space/glzcodec/internal/glz"
	"github.com/spice-space/glzcodec/internal/lz"
	"github.com/spice-space/glzcodec/internal/pixel"
	"github.com/spice-space/glzcodec/internal/wire"
	"github.com/spice-space/glzcodec/internal/window"
)

// Format is the pixel format tag carried on the wire (spec.md §3).
type Format = pixel.Format

// The three wire pixel formats this module decodes.
const (
	RGB32 = pixel.RGB32
	RGBA  = pixel.RGBA
	XXXA  = pixel.XXXA
)

// DecodeLZ runs the LZ back-reference grammar (spec.md §4.1) against
// input starting at byte 0, writing width*height BGRA pixels into output.
// output must have length at least width*height*4. When topDown is false
// the decoded rows are reversed in place before returning, matching the
// frame facade's decode_lz contract (spec.md §4.6).
//
// defaultAlpha selects the alpha value literal RGB32 runs write: 255 when
// true, 0 when false. It has no effect for RGBA/XXXA, whose alpha bytes
// always come from the stream.
func DecodeLZ(width, height int, input []byte, format Format, topDown, defaultAlpha bool, output []byte) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, wrapDecodeError(0, codecerr.New(codecerr.InvalidFrameSize, "glzcodec.DecodeLZ", "non-positive dimension"))
	}
	need := width * height * pixel.BytesPerPixel
	if len(output) < need {
		return 0, wrapDecodeError(0, codecerr.New(codecerr.InvalidFrameSize, "glzcodec.DecodeLZ", "output buffer too small"))
	}
	consumed, err := lz.Decode(input, 0, output[:need], format, defaultAlpha)
	if err != nil {
		return consumed, wrapDecodeError(0, err)
	}
	if !topDown {
		pixel.FlipRows(output[:need], width, height)
	}
	return consumed, nil
}

// DecoderConfig configures a Decoder. The zero value is valid: logging is
// disabled and the window starts at its floor capacity.
type DecoderConfig struct {
	// Logger receives window lifecycle events (slot-table growth and
	// displacement of an entry on a persistent slot collision); eviction
	// is not logged. Nil disables logging.
	Logger *zap.Logger
}

// Decoder runs GLZ decodes against a single owned decoder window. It is
// not safe for concurrent use; run independent streams through
// independent Decoders (spec.md §5).
type Decoder struct {
	win *window.Window
	log *zap.Logger
}

// NewDecoder returns a Decoder with an empty window.
func NewDecoder(cfg DecoderConfig) *Decoder {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{win: window.New(log), log: log}
}

// GLZHeader is the parsed header of a decoded GLZ frame, returned to the
// caller alongside the decode result so it can learn the frame's id,
// dimensions, and retention hint without re-parsing the input.
type GLZHeader = wire.GLZHeader

// DecodeGLZ implements the frame facade's decode_glz (spec.md §4.6): it
// parses the GLZ header from input, verifies output is large enough,
// decodes the body (the RGB pass, followed by the alpha pass for RGBA;
// XXXA runs only the alpha pass),
// registers the decoded frame with d's window, and advances eviction. It
// returns the parsed header and the number of input bytes consumed.
func (d *Decoder) DecodeGLZ(input []byte, output []byte) (GLZHeader, int, error) {
	const op = "glzcodec.Decoder.DecodeGLZ"

	header, headerLen, err := wire.ParseGLZHeader(input)
	if err != nil {
		return GLZHeader{}, 0, wrapDecodeError(0, err)
	}

	need := header.GrossPixels() * pixel.BytesPerPixel
	if len(output) < need {
		return header, headerLen, wrapDecodeError(header.ID,
			codecerr.New(codecerr.InvalidFrameSize, op, "output buffer smaller than gross_pixels*4"))
	}
	frameOut := output[:need]

	bodyConsumed, err := glz.Decode(input, headerLen, frameOut, header.Format, header.ID, d.win)
	if err != nil {
		return header, headerLen + bodyConsumed, wrapDecodeError(header.ID, err)
	}

	// Unlike decode_lz, decode_glz does not row-flip: pixel_ofs in future
	// references indexes this frame's decode-order buffer, so the stored
	// orientation must stay whatever the RGB/alpha passes produced. A
	// caller that needs top-down pixels for display applies
	// pixel.FlipRows itself on a copy, never on the buffer the window may
	// be borrowing.
	d.win.Register(window.ImageHeader{
		ID:          header.ID,
		Format:      header.Format,
		TopDown:     header.TopDown,
		Width:       header.Width,
		Height:      header.Height,
		WinHeadDist: header.WinHeadDist,
	}, frameOut)

	return header, headerLen + bodyConsumed, nil
}

// WindowStats reports the decoder window's current occupancy: live entry
// count, capacity, and cursor positions. It exists for diagnostics and
// tests; the protocol itself never queries it.
type WindowStats = window.Stats

// WindowStats returns d's window occupancy.
func (d *Decoder) WindowStats() WindowStats { return d.win.Stats() }

// Reset destroys every entry in d's window and resets it to its floor
// capacity, matching the window's clear/destroy operation (spec.md §4.5).
// Use it to reuse a Decoder across unrelated streams.
func (d *Decoder) Reset() { d.win.Clear() }
