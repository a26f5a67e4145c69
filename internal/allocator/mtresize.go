package allocator

import "unsafe"

// Realloc implements spec.md §4.6's multi-threaded resize. Growth only
// ever absorbs forward within the same area and under the same lock;
// backward absorption is not attempted in the multi-threaded variant
// (spec.md: "may be omitted"), and anything that doesn't fit in place
// falls back to allocate-copy-free, which takes its own locks through
// Alloc and Free.
func (h *MTHeap) Realloc(ptr unsafe.Pointer, newSize uintptr) unsafe.Pointer {
	if ptr == nil {
		return h.Alloc(newSize)
	}

	if newSize == 0 {
		h.Free(ptr)
		return nil
	}

	blk := mtPayloadToBlock(ptr)

	lock := blk.lock
	if lock == nil {
		reportReallocNonHeapPointer(h.debugDetail())
		return nil
	}

	lock.Lock()

	sNew := h.config.align(newSize)
	sOld := blk.size

	if sNew <= sOld {
		mtTrimTail(blk, sNew)
		lock.Unlock()

		return ptr
	}

	if blk.next != nil && blk.next.isFree && blk.size+mtHeaderSize+blk.next.size >= sNew {
		mtAbsorbForward(blk)
		mtTrimTail(blk, sNew)
		lock.Unlock()

		return ptr
	}

	lock.Unlock()

	newPtr := h.Alloc(newSize)
	if newPtr == nil {
		return nil
	}

	copyPayload(newPtr, ptr, sOld)
	h.Free(ptr)

	return newPtr
}

// mtTrimTail splits off and frees any leftover tail, called with the
// block's area already locked.
func mtTrimTail(b *mtBlock, sNew uintptr) {
	remainder := mtMaybeSplit(b, sNew)
	if remainder == nil {
		return
	}

	mtCoalesce(remainder)
}

// mtAbsorbForward merges b with its free successor, called with the
// block's area already locked.
func mtAbsorbForward(b *mtBlock) {
	succ := b.next
	b.size += mtHeaderSize + succ.size
	b.next = succ.next

	if succ.next != nil {
		succ.next.prev = b
	}
}
