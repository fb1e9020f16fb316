// Package window implements the decoder window: the bounded table of
// recently-decoded frames that GLZ back-references resolve against
// (spec.md §3, §4.5).
package window

import (
	"github.com/spice-space/glzcodec/internal/bufpool"
	"github.com/spice-space/glzcodec/internal/pixel"
)

// ImageHeader carries the fields of a decoded frame that the window needs
// to retain alongside its pixels: identity, shape, and the retention hint
// the encoder attached to it (spec.md §3).
type ImageHeader struct {
	ID          uint64
	Format      pixel.Format
	TopDown     bool
	Width       int
	Height      int
	WinHeadDist uint64
}

// GrossPixels is the total pixel count of the frame, the unit Lookup's
// offset argument is measured in.
func (h ImageHeader) GrossPixels() int { return h.Width * h.Height }

// Entry is a single slot's live contents: a header plus the BGRA pixels it
// decoded to. When the header's WinHeadDist is zero the entry borrows the
// caller's output buffer directly (OwnsBuffer is false); otherwise its
// pixels are a pooled copy the window is responsible for releasing.
type Entry struct {
	ImageHeader
	pixels     []byte
	ownsBuffer bool
}

// Pixels returns the entry's BGRA buffer, length GrossPixels()*4.
func (e *Entry) Pixels() []byte { return e.pixels }

// OwnsBuffer reports whether the entry holds a pooled copy rather than a
// borrowed view into a caller-owned buffer.
func (e *Entry) OwnsBuffer() bool { return e.ownsBuffer }

// newEntry builds an Entry for h from src. When h.WinHeadDist is zero the
// frame is terminal — it will never be referenced beyond the caller's next
// decode call — so the entry may borrow the caller's buffer directly.
// Otherwise the pixels must survive independently of whatever the caller
// does with its buffer next, so they are copied into an owned, pooled
// buffer, per spec.md §4.5's zero-copy rule.
func newEntry(h ImageHeader, src []byte) *Entry {
	want := h.GrossPixels() * pixel.BytesPerPixel
	if h.WinHeadDist == 0 {
		return &Entry{ImageHeader: h, pixels: src[:want], ownsBuffer: false}
	}
	buf := bufpool.Get(want)
	copy(buf, src[:want])
	return &Entry{ImageHeader: h, pixels: buf, ownsBuffer: true}
}

// destroy releases any pooled buffer the entry owns. Borrowed entries do
// nothing; the buffer belongs to whoever lent it.
func (e *Entry) destroy() {
	if e.ownsBuffer {
		bufpool.Put(e.pixels)
	}
	e.pixels = nil
}
