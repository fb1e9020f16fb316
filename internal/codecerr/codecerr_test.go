package codecerr

import (
	"errors"
	"testing"
)

func TestErrorMessageIncludesOpKindMsg(t *testing.T) {
	err := New(CorruptedStream, "pkg.Op", "bad thing")
	want := "pkg.Op: CorruptedStream: bad thing"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(OutOfMemory, "pkg.Op", "alloc failed", cause)
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
}

func TestIsMatchesByKindOnly(t *testing.T) {
	a := New(ReferenceNotFound, "a.Op", "msg a")
	b := New(ReferenceNotFound, "b.Op", "msg b")
	if !errors.Is(a, b) {
		t.Error("expected errors with the same Kind to match via errors.Is")
	}

	c := New(OutputOverflow, "c.Op", "msg c")
	if errors.Is(a, c) {
		t.Error("expected errors with different Kinds not to match")
	}
}

func TestSentinel(t *testing.T) {
	err := Wrap(InvalidMagic, "op", "bad magic", errors.New("x"))
	if !errors.Is(err, Sentinel(InvalidMagic)) {
		t.Error("expected err to match its own Kind's sentinel")
	}
	if errors.Is(err, Sentinel(InvalidVersion)) {
		t.Error("expected err not to match an unrelated sentinel")
	}
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		InvalidMagic:      "InvalidMagic",
		CorruptedStream:   "CorruptedStream",
		ReferenceNotFound: "ReferenceNotFound",
		Kind(99):          "Unknown",
	}
	for k, want := range tests {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
