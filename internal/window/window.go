package window

import "go.uber.org/zap"

// minCapacity is the window's initial and floor slot-array size.
const minCapacity = 16

// Window is the bounded table of recently-decoded GLZ frames that
// inter-image back-references resolve against (spec.md §4.5). It is keyed
// by a power-of-two-sized slot array, slot = id mod capacity, and is not
// safe for concurrent use — a single GLZ decoder drives one Window.
type Window struct {
	slots    []*Entry
	capacity uint64
	oldest   uint64
	tailGap  uint64
	log      *zap.Logger
}

// New returns an empty Window at the floor capacity. A nil logger is
// replaced with a no-op one; callers that want window-lifecycle logging
// pass a configured *zap.Logger.
func New(log *zap.Logger) *Window {
	if log == nil {
		log = zap.NewNop()
	}
	return &Window{
		slots:    make([]*Entry, minCapacity),
		capacity: minCapacity,
		log:      log,
	}
}

func (w *Window) slotFor(id uint64) uint64 { return id & (w.capacity - 1) }

// Add inserts a new entry for h, copying or borrowing src per
// spec.md §4.5's zero-copy rule. It performs the resize-on-collision and
// displaced-entry destruction described there, then advances tail_gap.
func (w *Window) Add(h ImageHeader, src []byte) *Entry {
	e := newEntry(h, src)

	slot := w.slotFor(e.ID)
	if w.slots[slot] != nil {
		w.grow()
		slot = w.slotFor(e.ID)
	}
	if old := w.slots[slot]; old != nil {
		w.log.Debug("window: displacing entry on persistent collision",
			zap.Uint64("displaced_id", old.ID), zap.Uint64("new_id", e.ID))
		old.destroy()
	}
	w.slots[slot] = e

	for w.tailGap <= e.ID && w.slots[w.slotFor(w.tailGap)] != nil {
		w.tailGap++
	}
	return e
}

// grow doubles capacity and rehashes every live entry into the new slot
// array. A collision surviving the rehash (only possible when two live
// ids differ by an exact multiple of the new capacity) is resolved the
// same way add() resolves any other persistent collision: the entry
// already placed is destroyed and replaced.
func (w *Window) grow() {
	newCap := w.capacity * 2
	newSlots := make([]*Entry, newCap)
	for _, e := range w.slots {
		if e == nil {
			continue
		}
		ns := e.ID & (newCap - 1)
		if old := newSlots[ns]; old != nil {
			old.destroy()
		}
		newSlots[ns] = e
	}
	w.slots = newSlots
	w.capacity = newCap
	w.log.Debug("window: grew", zap.Uint64("capacity", newCap))
}

// Resolve returns the full pixel buffer and pixel count of the entry
// named by (current_id - dist), without applying any pixel offset. The
// GLZ reference cache calls this directly so it can reuse the result
// across ops sharing an image_dist without redoing the offset check each
// time.
func (w *Window) Resolve(currentID, dist uint64) (pixels []byte, grossPixels int, ok bool) {
	target := currentID - dist
	slot := w.slotFor(target)
	e := w.slots[slot]
	if e == nil || e.ID != target {
		return nil, 0, false
	}
	return e.pixels, e.GrossPixels(), true
}

// Lookup implements bits(current_id, dist, offset): it resolves an
// inter-image back-reference to a byte-offset view into the target
// entry's pixels, or reports ok=false per spec.md §4.5's three failure
// conditions (no entry at the slot, id mismatch, or offset out of range).
func (w *Window) Lookup(currentID, dist uint64, offset int) (view []byte, ok bool) {
	pixels, gross, ok := w.Resolve(currentID, dist)
	if !ok || gross < offset {
		return nil, false
	}
	return pixels[offset*4:], true
}

// Release implements release(new_oldest): for each k in
// [oldest, new_oldest), whatever entry occupies slot k mod capacity is
// destroyed, without checking its id, and oldest advances to new_oldest.
// new_oldest below the current oldest is a no-op.
func (w *Window) Release(newOldest uint64) {
	for w.oldest < newOldest {
		slot := w.slotFor(w.oldest)
		if e := w.slots[slot]; e != nil {
			e.destroy()
			w.slots[slot] = nil
		}
		w.oldest++
	}
}

// Evict runs the retention policy of spec.md §4.5 step 2: it looks up the
// entry at the tail of the dense id run and releases everything older
// than that entry's own retention hint. Callers invoke this once after
// Add, as part of registering a newly decoded frame.
func (w *Window) Evict() {
	if w.tailGap == 0 {
		return
	}
	tail := w.slots[w.slotFor(w.tailGap-1)]
	if tail == nil {
		return
	}
	w.Release(tail.ID - tail.WinHeadDist)
}

// Register adds h/src to the window and then runs the retention policy,
// the combined operation spec.md §4.5 describes as following every
// successful GLZ decode.
func (w *Window) Register(h ImageHeader, src []byte) *Entry {
	e := w.Add(h, src)
	w.Evict()
	return e
}

// Clear implements clear/destroy: every live entry is destroyed and the
// window resets to its floor capacity.
func (w *Window) Clear() {
	for i, e := range w.slots {
		if e != nil {
			e.destroy()
			w.slots[i] = nil
		}
	}
	w.slots = make([]*Entry, minCapacity)
	w.capacity = minCapacity
	w.oldest = 0
	w.tailGap = 0
}

// Stats reports the window's current occupancy, a diagnostic surface the
// protocol itself has no use for but that exercises the same state a
// caller debugging eviction behavior would want to inspect.
type Stats struct {
	Live     int
	Capacity uint64
	Oldest   uint64
	TailGap  uint64
}

func (w *Window) Stats() Stats {
	live := 0
	for _, e := range w.slots {
		if e != nil {
			live++
		}
	}
	return Stats{Live: live, Capacity: w.capacity, Oldest: w.oldest, TailGap: w.tailGap}
}

// Capacity returns the current slot-array size.
func (w *Window) Capacity() uint64 { return w.capacity }
