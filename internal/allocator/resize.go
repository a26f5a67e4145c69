package allocator

import "unsafe"

// Realloc implements spec.md §4.5. Case A (shrink/equal) trims and
// frees any worthwhile trailing remainder. Case B (grow) tries
// absorbing a free forward neighbor, then a free backward neighbor,
// then falls back to allocate-copy-free.
func (h *Heap) Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return h.Alloc(newSize)
	}

	blk := h.find(ptr)
	if blk == nil {
		reportReallocNonHeapPointer(h.debugDetail())

		return nil
	}

	sNew := h.config.align(newSize)
	sOld := blk.size

	if sNew <= sOld {
		h.trimTail(blk, sNew)

		return ptr
	}

	if blk.next != nil && blk.next.isFree && blk.size+headerSize+blk.next.size >= sNew {
		h.absorbForward(blk)
		h.trimTail(blk, sNew)

		return ptr
	}

	if blk.prev != nil && blk.prev.isFree && blk.prev.size+headerSize+blk.size >= sNew {
		pred := h.absorbBackward(blk, sOld)
		h.trimTail(pred, sNew)

		return pred.payload()
	}

	newPtr := h.Alloc(newSize)
	if newPtr == nil {
		return nil
	}

	copyPayload(newPtr, ptr, sOld)
	h.Free(ptr)

	return newPtr
}

// trimTail splits b at sNew and frees the trailing remainder, when the
// remainder is large enough to be worth carving off (spec.md §4.5 Case
// A, and the trim step of Case B after an absorb).
func (h *Heap) trimTail(b *block, sNew uintptr) {
	remainder := maybeSplit(b, sNew)
	if remainder != nil {
		h.coalesce(remainder)
	}
}

// absorbForward merges b with its free successor into a single block
// at b's address.
func (h *Heap) absorbForward(b *block) {
	succ := b.next
	b.size = b.size + headerSize + succ.size
	b.next = succ.next

	if succ.next != nil {
		succ.next.prev = b
	}
}

// absorbBackward merges b into its free predecessor, copies the
// payload (which may overlap) to the predecessor's payload address,
// and returns the predecessor, now the live used block.
func (h *Heap) absorbBackward(b *block, oldSize uintptr) *block {
	pred := b.prev
	pred.size = pred.size + headerSize + b.size
	pred.next = b.next

	if b.next != nil {
		b.next.prev = pred
	}

	pred.isFree = false
	copyPayload(pred.payload(), b.payload(), oldSize)

	return pred
}
