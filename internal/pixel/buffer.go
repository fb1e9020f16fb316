package pixel

// ByteOffset returns the byte offset of pixel i's B channel in a BGRA
// buffer; the pixel occupies [ByteOffset(i), ByteOffset(i)+4).
func ByteOffset(i int) int { return i * BytesPerPixel }

// Count returns the number of whole BGRA pixels a buffer of the given
// byte length holds.
func Count(bufLen int) int { return bufLen / BytesPerPixel }

// FlipRows exchanges row i and row height-1-i for i < height/2, turning
// a bottom-up buffer into a top-down one (or back). It operates in place
// using a single row of scratch space, matching spec.md §4.2.
//
// Flipping twice is a no-op: FlipRows(FlipRows(buf)) is byte-identical to
// buf (spec.md §8 property 6).
func FlipRows(buf []byte, width, height int) {
	if height < 2 {
		return
	}
	stride := width * BytesPerPixel
	if len(buf) < stride*height {
		return
	}
	scratch := make([]byte, stride)
	for i, j := 0, height-1; i < j; i, j = i+1, j-1 {
		rowI := buf[i*stride : i*stride+stride]
		rowJ := buf[j*stride : j*stride+stride]
		copy(scratch, rowI)
		copy(rowI, rowJ)
		copy(rowJ, scratch)
	}
}
