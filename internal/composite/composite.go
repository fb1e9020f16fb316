// Package composite unwraps the transport envelopes SPICE uses around raw
// LZ/GLZ payloads: LZ4 bulk compression and a zlib-wrapped GLZ stream.
// Both are treated as provided primitives per spec.md §1 — this package
// only wires them in, it does not reimplement either algorithm.
package composite

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/spice-space/glzcodec/internal/codecerr"
)

// DecodeLZ4Frame unwraps a raw LZ4 block carrying decompressedSize bytes
// of an uncompressed pixel buffer. LZ4 frames carry no back-references of
// their own — SPICE uses LZ4 for bulk transport compression only, never
// dictionary coding — so the result is handed to the caller as a plain
// pixel buffer, not passed through internal/lz or internal/glz.
func DecodeLZ4Frame(block []byte, decompressedSize int) ([]byte, error) {
	const op = "composite.DecodeLZ4Frame"
	dst := make([]byte, decompressedSize)
	n, err := lz4.UncompressBlock(block, dst)
	if err != nil {
		return nil, codecerr.Wrap(codecerr.CorruptedStream, op, "lz4 block decompression failed", err)
	}
	if n != decompressedSize {
		return nil, codecerr.New(codecerr.CorruptedStream, op, "lz4 block decompressed to an unexpected size")
	}
	return dst, nil
}

// InflateZlibGLZ inflates a zlib-compressed GLZ stream (the
// SPICE_IMAGE_TYPE_ZLIB_GLZ_RGB wire envelope) and returns the raw GLZ
// bytes the caller then hands to internal/wire and internal/glz exactly
// as it would an unwrapped GLZ frame.
func InflateZlibGLZ(compressed []byte) ([]byte, error) {
	const op = "composite.InflateZlibGLZ"
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, codecerr.Wrap(codecerr.CorruptedStream, op, "zlib header invalid", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, codecerr.Wrap(codecerr.CorruptedStream, op, "zlib stream truncated or corrupt", err)
	}
	return out, nil
}
