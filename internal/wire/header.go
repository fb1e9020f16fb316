// Package wire parses the fixed-layout binary headers that precede GLZ
// frame bodies and the LZ file-layout frames used by this module's own
// test harness. The field-by-field big-endian reads and (magic,
// version)-checked-first structure are grounded on the teacher's
// ParseRIFFHeader in internal/container/riff.go.
package wire

import (
	"encoding/binary"

	"github.com/spice-space/glzcodec/internal/codecerr"
	"github.com/spice-space/glzcodec/internal/pixel"
)

// GLZHeaderSize is the fixed byte length of a GLZ frame header (spec.md §4.3).
const GLZHeaderSize = 4 + 4 + 1 + 4 + 4 + 4 + 8 + 4

// glzMagic is ASCII "  ZL" (0x20 0x20 0x5A 0x4C), read big-endian.
const glzMagic = 0x20205A4C

// glzVersion is the only version this decoder accepts.
const glzVersion = 0x00010001

// GLZHeader is the parsed fixed-layout header preceding a GLZ frame body.
type GLZHeader struct {
	Format      pixel.Format
	TopDown     bool
	Width       int
	Height      int
	Stride      int
	ID          uint64
	WinHeadDist uint64
}

// ParseGLZHeader validates and parses the GLZHeaderSize-byte header at the
// start of data. It returns the parsed header and the number of bytes
// consumed.
func ParseGLZHeader(data []byte) (GLZHeader, int, error) {
	const op = "wire.ParseGLZHeader"
	if len(data) < GLZHeaderSize {
		return GLZHeader{}, 0, codecerr.New(codecerr.CorruptedStream, op, "header truncated")
	}

	magic := binary.BigEndian.Uint32(data[0:4])
	if magic != glzMagic {
		return GLZHeader{}, 0, codecerr.New(codecerr.InvalidMagic, op, "magic mismatch")
	}

	version := binary.BigEndian.Uint32(data[4:8])
	if version != glzVersion {
		return GLZHeader{}, 0, codecerr.New(codecerr.InvalidVersion, op, "version mismatch")
	}

	typeFlags := data[8]
	format := pixel.Format(typeFlags & 0x0F)
	if !format.Valid() {
		return GLZHeader{}, 0, codecerr.New(codecerr.InvalidImageType, op, "unknown pixel format tag")
	}
	topDown := typeFlags&0x10 != 0

	width := int(binary.BigEndian.Uint32(data[9:13]))
	height := int(binary.BigEndian.Uint32(data[13:17]))
	stride := int(binary.BigEndian.Uint32(data[17:21]))
	id := binary.BigEndian.Uint64(data[21:29])
	winHeadDist := uint64(binary.BigEndian.Uint32(data[29:33]))

	if width <= 0 || height <= 0 {
		return GLZHeader{}, 0, codecerr.New(codecerr.InvalidFrameSize, op, "non-positive dimension")
	}
	if uint64(width)*uint64(height) > maxGrossPixels {
		return GLZHeader{}, 0, codecerr.New(codecerr.InvalidFrameSize, op, "width*height too large to address")
	}

	return GLZHeader{
		Format:      format,
		TopDown:     topDown,
		Width:       width,
		Height:      height,
		Stride:      stride,
		ID:          id,
		WinHeadDist: winHeadDist,
	}, GLZHeaderSize, nil
}

// maxGrossPixels caps width*height well below the point where
// width*height*pixel.BytesPerPixel would overflow int, so GrossPixels and
// its callers never need their own overflow checks.
const maxGrossPixels = 1 << 28

// GrossPixels returns width*height for h.
func (h GLZHeader) GrossPixels() int { return h.Width * h.Height }

// LZFrameHeaderSize is the fixed byte length of the test harness's LZ file
// layout (spec.md §6): the same fields as GLZHeader minus id and
// win_head_dist, with the magic and version fields little-endian.
const LZFrameHeaderSize = 4 + 4 + 1 + 3 + 4 + 4 + 4

// lzMagic is "  ZL" read little-endian, i.e. 0x4C5A2020.
const lzMagic = 0x4C5A2020

// LZFrameHeader is the parsed header of one test-harness LZ frame.
type LZFrameHeader struct {
	Format  pixel.Format
	TopDown bool
	Width   int
	Height  int
	Stride  int
}

// ParseLZFrameHeader validates and parses the LZFrameHeaderSize-byte
// header at the start of data.
func ParseLZFrameHeader(data []byte) (LZFrameHeader, int, error) {
	const op = "wire.ParseLZFrameHeader"
	if len(data) < LZFrameHeaderSize {
		return LZFrameHeader{}, 0, codecerr.New(codecerr.CorruptedStream, op, "header truncated")
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != lzMagic {
		return LZFrameHeader{}, 0, codecerr.New(codecerr.InvalidMagic, op, "magic mismatch")
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != glzVersion {
		return LZFrameHeader{}, 0, codecerr.New(codecerr.InvalidVersion, op, "version mismatch")
	}

	typeFlags := data[8]
	format := pixel.Format(typeFlags & 0x0F)
	if !format.Valid() {
		return LZFrameHeader{}, 0, codecerr.New(codecerr.InvalidImageType, op, "unknown pixel format tag")
	}
	topDown := typeFlags&0x10 != 0

	// data[9:12] is padding.
	width := int(binary.BigEndian.Uint32(data[12:16]))
	height := int(binary.BigEndian.Uint32(data[16:20]))
	stride := int(binary.BigEndian.Uint32(data[20:24]))

	if width <= 0 || height <= 0 {
		return LZFrameHeader{}, 0, codecerr.New(codecerr.InvalidFrameSize, op, "non-positive dimension")
	}

	return LZFrameHeader{Format: format, TopDown: topDown, Width: width, Height: height, Stride: stride}, LZFrameHeaderSize, nil
}
