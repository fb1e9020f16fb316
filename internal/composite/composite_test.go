package composite

import (
	"bytes"
	"compress/zlib"

	"testing"

	"github.com/pierrec/lz4/v4"

	"github.com/spice-space/glzcodec/internal/codecerr"
)

func TestDecodeLZ4FrameRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte{0xAB, 0xCD, 0xEF, 0x01}, 64)
	block := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, block)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	block = block[:n]

	out, err := DecodeLZ4Frame(block, len(src))
	if err != nil {
		t.Fatalf("DecodeLZ4Frame: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("round-trip mismatch")
	}
}

func TestDecodeLZ4FrameWrongSizeIsCorruption(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	block := make([]byte, lz4.CompressBlockBound(len(src)))
	var c lz4.Compressor
	n, err := c.CompressBlock(src, block)
	if err != nil {
		t.Fatalf("CompressBlock: %v", err)
	}
	block = block[:n]

	_, err = DecodeLZ4Frame(block, len(src)+1)
	assertKind(t, err, codecerr.CorruptedStream)
}

func TestInflateZlibGLZRoundTrip(t *testing.T) {
	src := []byte("a glz frame's worth of bytes, compressed for transport")
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	out, err := InflateZlibGLZ(buf.Bytes())
	if err != nil {
		t.Fatalf("InflateZlibGLZ: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Errorf("round-trip mismatch: got %q, want %q", out, src)
	}
}

func TestInflateZlibGLZBadHeaderIsCorruption(t *testing.T) {
	_, err := InflateZlibGLZ([]byte{0x00, 0x01, 0x02})
	assertKind(t, err, codecerr.CorruptedStream)
}

func TestInflateZlibGLZTruncatedStreamIsCorruption(t *testing.T) {
	src := bytes.Repeat([]byte{0x42}, 4096)
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-4]
	_, err := InflateZlibGLZ(truncated)
	assertKind(t, err, codecerr.CorruptedStream)
}

func assertKind(t *testing.T, err error, want codecerr.Kind) {
	t.Helper()
	ce, ok := err.(*codecerr.Error)
	if !ok {
		t.Fatalf("err = %v (%T), want *codecerr.Error", err, err)
	}
	if ce.Kind != want {
		t.Errorf("Kind = %v, want %v", ce.Kind, want)
	}
}
