// Package lz implements the SPICE LZ back-reference decoder: the
// self-contained byte-stream state machine described in spec.md §4.1.
//
// The copy-block logic (bulk copy() for non-overlapping runs, a doubling
// copy for overlapping ones) is grounded on the teacher's copyBlock32 in
// internal/lossless/decode_image.go; the batched literal expansion is
// grounded on its argbToNRGBARows.
package lz

import (
	"github.com/spice-space/glzcodec/internal/codecerr"
	"github.com/spice-space/glzcodec/internal/pixel"
)

const opName = "lz.Decode"

// lengthEscape is the ctrl-byte length nibble value (7) that signals an
// extended length field follows.
const lengthEscape = 7

// longOffsetBase is the 5-bit base-offset field value (31) that, combined
// with an adjustment byte of 0xFF, signals an escaped 16-bit offset.
const longOffsetBase = 31

// longOffsetBias is added to the escaped 16-bit offset value per spec.md §4.1.
const longOffsetBias = 8191

// Decode consumes an LZ-encoded byte stream starting at data[start] and
// writes decoded pixels into out, which must be sized for exactly
// width*height pixels (out must have length a multiple of
// pixel.BytesPerPixel, and pixel.Count(len(out)) is the pixel budget).
// It returns the number of input bytes consumed.
//
// defaultAlpha only affects RGB32 literal runs: when true, the alpha byte
// of each newly-written literal pixel is set to 255, otherwise 0. Alpha
// bytes written by back-reference copies always come from the copy
// source, never from defaultAlpha.
//
// Decode does not row-flip; the caller applies pixel.FlipRows when the
// source was not top-down.
func Decode(data []byte, start int, out []byte, format pixel.Format, defaultAlpha bool) (int, error) {
	if !format.Valid() {
		return 0, codecerr.New(codecerr.InvalidImageType, opName, "pixel format tag out of range")
	}
	total := pixel.Count(len(out))
	alphaOnly := format.AlphaOnly()

	pos := start
	cur := 0
	for cur < total {
		if pos >= len(data) {
			return pos - start, codecerr.New(codecerr.CorruptedStream, opName, "input exhausted before op")
		}
		ctrl := data[pos]
		pos++

		if ctrl < 32 {
			n := int(ctrl) + 1
			if cur+n > total {
				return pos - start, codecerr.New(codecerr.OutputOverflow, opName, "literal run exceeds output")
			}
			if alphaOnly {
				if pos+n > len(data) {
					return pos - start, codecerr.New(codecerr.CorruptedStream, opName, "alpha literal exceeds input")
				}
				writeLiteralAlpha(out, cur, data[pos:pos+n])
				pos += n
			} else {
				need := n * 3
				if pos+need > len(data) {
					return pos - start, codecerr.New(codecerr.CorruptedStream, opName, "RGB32 literal exceeds input")
				}
				writeLiteralRGB32(out, cur, data[pos:pos+need], defaultAlpha)
				pos += need
			}
			cur += n
			continue
		}

		length := int(ctrl >> 5)
		offset := int(ctrl&31) << 8

		if length == lengthEscape {
			var err error
			length, pos, err = readExtendedLength(data, pos, length)
			if err != nil {
				return pos - start, err
			}
		}

		if pos >= len(data) {
			return pos - start, codecerr.New(codecerr.CorruptedStream, opName, "missing offset adjustment byte")
		}
		c := data[pos]
		pos++
		offset += int(c)
		if c == 255 && (ctrl&31) == longOffsetBase {
			if pos+2 > len(data) {
				return pos - start, codecerr.New(codecerr.CorruptedStream, opName, "truncated escaped long offset")
			}
			hi, lo := data[pos], data[pos+1]
			pos += 2
			offset += (int(hi)<<8 | int(lo)) + longOffsetBias
		}

		length++
		if alphaOnly {
			length += 2
		}
		offset++

		// Open question resolved per spec.md §9: offset > current pixel
		// index is corruption; offset == current is allowed (copy starts
		// at the beginning of the buffer).
		if offset > cur {
			return pos - start, codecerr.New(codecerr.CorruptedStream, opName, "back-reference offset exceeds current position")
		}
		if cur+length > total {
			return pos - start, codecerr.New(codecerr.OutputOverflow, opName, "back-reference exceeds output")
		}

		if alphaOnly {
			copyAlphaPixels(out, cur, offset, length)
		} else {
			copyFullPixels(out, cur, offset, length)
		}
		cur += length
	}

	return pos - start, nil
}

// readExtendedLength reads the 255-sentinel length extension: bytes are
// summed until one less than 255 terminates the run. The accumulated
// count is capped implicitly by the input length check inside the loop,
// bounding the number of bytes read on corrupt input.
func readExtendedLength(data []byte, pos, length int) (int, int, error) {
	extra := 0
	for {
		if pos >= len(data) {
			return 0, pos, codecerr.New(codecerr.CorruptedStream, opName, "truncated extended length")
		}
		b := data[pos]
		pos++
		extra += int(b)
		if b < 255 {
			break
		}
	}
	return length + extra, pos, nil
}

// writeLiteralRGB32 expands a packed B,G,R literal payload into BGRA
// output, four pixels at a time when enough remain, falling back to a
// scalar tail. The batched and scalar paths are byte-identical.
func writeLiteralRGB32(out []byte, cur int, payload []byte, defaultAlpha bool) {
	var alpha byte
	if defaultAlpha {
		alpha = 255
	}
	n := len(payload) / 3
	i := 0
	for ; i+4 <= n; i += 4 {
		po := i * 3
		oo := pixel.ByteOffset(cur + i)
		_ = payload[po+11]
		_ = out[oo+15]
		out[oo+0], out[oo+1], out[oo+2], out[oo+3] = payload[po+0], payload[po+1], payload[po+2], alpha
		out[oo+4], out[oo+5], out[oo+6], out[oo+7] = payload[po+3], payload[po+4], payload[po+5], alpha
		out[oo+8], out[oo+9], out[oo+10], out[oo+11] = payload[po+6], payload[po+7], payload[po+8], alpha
		out[oo+12], out[oo+13], out[oo+14], out[oo+15] = payload[po+9], payload[po+10], payload[po+11], alpha
	}
	for ; i < n; i++ {
		po := i * 3
		oo := pixel.ByteOffset(cur + i)
		out[oo+0], out[oo+1], out[oo+2], out[oo+3] = payload[po+0], payload[po+1], payload[po+2], alpha
	}
}

// writeLiteralAlpha writes one alpha byte per pixel, leaving the color
// bytes untouched (spec.md §8 property: RGBA/XXXA literal writes leave
// B, G, R bytes as whatever a prior pass or the caller set them to).
func writeLiteralAlpha(out []byte, cur int, payload []byte) {
	for i, a := range payload {
		out[pixel.ByteOffset(cur+i)+3] = a
	}
}

// copyFullPixels copies length pixels (all 4 bytes) from cur-offset to
// cur. Since offset and length are uniformly pixel-granular, scaling both
// by pixel.BytesPerPixel turns this into the same byte-range problem the
// teacher's copyBlock32 solves, and its algorithm applies unchanged.
func copyFullPixels(out []byte, cur, offset, length int) {
	copyBytesBlock(out, pixel.ByteOffset(cur), offset*pixel.BytesPerPixel, length*pixel.BytesPerPixel)
}

// copyBytesBlock copies a length-byte run ending at pos from pos-dist,
// handling overlap. Non-overlapping runs use a single copy() (maps to
// memmove); overlapping runs double an initial dist-byte copy until the
// full length is filled.
func copyBytesBlock(data []byte, pos, dist, length int) {
	src := pos - dist
	if dist >= length {
		copy(data[pos:pos+length], data[src:src+length])
		return
	}
	copy(data[pos:pos+dist], data[src:src+dist])
	copied := dist
	for copied < length {
		n := copied
		if n > length-copied {
			n = length - copied
		}
		copy(data[pos+copied:pos+copied+n], data[pos:pos+n])
		copied += n
	}
}

// copyAlphaPixels copies length alpha bytes (stride 4, the high byte of
// each BGRA pixel) from cur-offset to cur. The bytes are not contiguous,
// so copyBytesBlock's memmove trick does not apply; offset==1 (the common
// run-length case) gets a constant-fill fast path, everything else is a
// forward per-pixel loop whose correctness for overlap follows the same
// argument as copyBytesBlock: src is always already-finalized when dst is
// written, since offset >= 1.
func copyAlphaPixels(out []byte, cur, offset, length int) {
	if offset == 1 {
		v := out[pixel.ByteOffset(cur-1)+3]
		for i := 0; i < length; i++ {
			out[pixel.ByteOffset(cur+i)+3] = v
		}
		return
	}
	for i := 0; i < length; i++ {
		out[pixel.ByteOffset(cur+i)+3] = out[pixel.ByteOffset(cur+i-offset)+3]
	}
}
