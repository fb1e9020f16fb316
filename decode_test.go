package glzcodec

import (
	"encoding/binary"
	"testing"
)

const (
	glzMagicTest   = 0x20205A4C
	glzVersionTest = 0x00010001
)

func buildGLZFrame(format Format, topDown bool, w, h, stride int, id uint64, winHeadDist uint32, body []byte) []byte {
	buf := make([]byte, 33+len(body))
	binary.BigEndian.PutUint32(buf[0:4], glzMagicTest)
	binary.BigEndian.PutUint32(buf[4:8], glzVersionTest)
	tf := byte(format)
	if topDown {
		tf |= 0x10
	}
	buf[8] = tf
	binary.BigEndian.PutUint32(buf[9:13], uint32(w))
	binary.BigEndian.PutUint32(buf[13:17], uint32(h))
	binary.BigEndian.PutUint32(buf[17:21], uint32(stride))
	binary.BigEndian.PutUint64(buf[21:29], id)
	binary.BigEndian.PutUint32(buf[29:33], winHeadDist)
	copy(buf[33:], body)
	return buf
}

func TestDecodeLZTopDown(t *testing.T) {
	input := []byte{0x01, 10, 20, 30, 11, 21, 31} // literal run of 2 pixels
	out := make([]byte, 2*4)
	n, err := DecodeLZ(2, 1, input, RGB32, true, false, out)
	if err != nil {
		t.Fatalf("DecodeLZ: %v", err)
	}
	if n != len(input) {
		t.Errorf("consumed = %d, want %d", n, len(input))
	}
	want := []byte{10, 20, 30, 0, 11, 21, 31, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}
}

func TestDecodeLZFlipsWhenNotTopDown(t *testing.T) {
	// 1x2 image: two 1-pixel rows, literal pixels distinguishable by color.
	input := []byte{0x01, 1, 1, 1, 2, 2, 2}
	out := make([]byte, 2*4)
	if _, err := DecodeLZ(1, 2, input, RGB32, false, false, out); err != nil {
		t.Fatalf("DecodeLZ: %v", err)
	}
	// Decode order is row0={1,1,1}, row1={2,2,2}; bottom-up means row1 is
	// actually the top row on the wire, so after the flip row0 of the
	// output buffer holds what was decoded second.
	if out[0] != 2 || out[4] != 1 {
		t.Errorf("out = %v, want rows flipped (2.. then 1..)", out)
	}
}

func TestDecodeLZRejectsUndersizedOutput(t *testing.T) {
	input := []byte{0x00, 1, 2, 3}
	out := make([]byte, 2) // too small for even 1 pixel
	_, err := DecodeLZ(1, 1, input, RGB32, true, false, out)
	if err == nil {
		t.Fatal("expected error for undersized output")
	}
	kind, ok := KindOf(err)
	if !ok || kind != InvalidFrameSize {
		t.Errorf("KindOf = (%v, %v), want (InvalidFrameSize, true)", kind, ok)
	}
}

func TestDecodeLZRejectsNonPositiveDimensions(t *testing.T) {
	_, err := DecodeLZ(0, 1, nil, RGB32, true, false, nil)
	kind, ok := KindOf(err)
	if !ok || kind != InvalidFrameSize {
		t.Errorf("KindOf = (%v, %v), want (InvalidFrameSize, true)", kind, ok)
	}
}

func TestDecoderDecodeGLZSingleFrame(t *testing.T) {
	body := []byte{0x01, 10, 20, 30, 11, 21, 31} // 2-pixel literal run
	frame := buildGLZFrame(RGB32, true, 2, 1, 8, 1, 1, body)

	d := NewDecoder(DecoderConfig{})
	out := make([]byte, 2*4)
	header, n, err := d.DecodeGLZ(frame, out)
	if err != nil {
		t.Fatalf("DecodeGLZ: %v", err)
	}
	if n != len(frame) {
		t.Errorf("consumed = %d, want %d", n, len(frame))
	}
	if header.ID != 1 || header.Width != 2 || header.Height != 1 {
		t.Errorf("header = %+v", header)
	}
	want := []byte{10, 20, 30, 0, 11, 21, 31, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out = %v, want %v", out, want)
		}
	}

	stats := d.WindowStats()
	if stats.Live != 1 {
		t.Errorf("WindowStats().Live = %d, want 1", stats.Live)
	}
}

func TestDecoderDecodeGLZInterFrameReference(t *testing.T) {
	d := NewDecoder(DecoderConfig{})

	f1Body := []byte{0x01, 7, 8, 9, 10, 11, 12}
	f1 := buildGLZFrame(RGB32, true, 2, 1, 8, 1, 1, f1Body)
	out1 := make([]byte, 2*4)
	if _, _, err := d.DecodeGLZ(f1, out1); err != nil {
		t.Fatalf("decode f1: %v", err)
	}

	f2Body := []byte{0x20, 0x00, 0x01} // whole-frame reference, image_dist=1
	f2 := buildGLZFrame(RGB32, true, 2, 1, 8, 2, 1, f2Body)
	out2 := make([]byte, 2*4)
	if _, _, err := d.DecodeGLZ(f2, out2); err != nil {
		t.Fatalf("decode f2: %v", err)
	}

	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("out2 = %v, want byte-identical to out1 %v", out2, out1)
		}
	}
}

func TestDecoderResetClearsWindow(t *testing.T) {
	d := NewDecoder(DecoderConfig{})
	f1Body := []byte{0x01, 1, 2, 3, 4, 5, 6}
	f1 := buildGLZFrame(RGB32, true, 2, 1, 8, 1, 1, f1Body)
	out := make([]byte, 2*4)
	if _, _, err := d.DecodeGLZ(f1, out); err != nil {
		t.Fatalf("decode f1: %v", err)
	}
	if d.WindowStats().Live != 1 {
		t.Fatalf("expected 1 live entry before Reset")
	}

	d.Reset()
	stats := d.WindowStats()
	if stats.Live != 0 || stats.Capacity != 16 {
		t.Errorf("WindowStats after Reset = %+v, want Live=0 Capacity=16", stats)
	}
}

func TestDecoderDecodeGLZBadMagicReportsKind(t *testing.T) {
	frame := buildGLZFrame(RGB32, true, 1, 1, 4, 1, 0, []byte{0x00, 1, 2, 3})
	frame[0] ^= 0xFF

	d := NewDecoder(DecoderConfig{})
	out := make([]byte, 4)
	_, _, err := d.DecodeGLZ(frame, out)
	kind, ok := KindOf(err)
	if !ok || kind != InvalidMagic {
		t.Errorf("KindOf = (%v, %v), want (InvalidMagic, true)", kind, ok)
	}
}
