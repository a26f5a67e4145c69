package allocator

import "unsafe"

// Free implements spec.md §4.6's multi-threaded free: the owning area's
// lock is recovered from the block's own header rather than searched
// for, so only that one area is ever locked. A block whose lock field
// is nil cannot have come from a live area (every block installed by
// newMemArea or mtMaybeSplit always carries one), so that case is
// reported as a non-heap pointer.
func (h *MTHeap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		reportFreeNullPointer(h.debugDetail())
		return
	}

	blk := mtPayloadToBlock(ptr)

	lock := blk.lock
	if lock == nil {
		reportFreeNonHeapPointer(h.debugDetail())
		return
	}

	lock.Lock()
	freed := blk.size
	blk.isFree = true
	mtCoalesce(blk)
	lock.Unlock()

	h.stats.incFree(freed)
}

// mtCoalesce merges blk with a free predecessor then a free successor,
// entirely within the single area its caller already holds locked.
// Unlike the single-threaded coalesce, it never trims the area back to
// the OS — MemAreas are never shrunk except at MTHeap.Close (spec.md
// §5).
func mtCoalesce(b *mtBlock) {
	if b.prev != nil && b.prev.isFree {
		pred := b.prev
		pred.size += mtHeaderSize + b.size
		pred.next = b.next

		if b.next != nil {
			b.next.prev = pred
		}

		b = pred
	}

	if b.next != nil && b.next.isFree {
		succ := b.next
		b.size += mtHeaderSize + succ.size
		b.next = succ.next

		if succ.next != nil {
			succ.next.prev = b
		}
	}
}
