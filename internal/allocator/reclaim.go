package allocator

import "unsafe"

// find walks the heap's block list looking for a block whose
// payload address exactly equals ptr. Returns nil if ptr is not a live
// heap pointer.
func (h *Heap) find(ptr unsafe.Pointer) *block {
	for cur := h.head; cur != nil; cur = cur.next {
		if cur.payload() == ptr {
			return cur
		}
	}

	return nil
}

// Free implements spec.md §4.3: mark the block free, coalesce with
// free neighbors, and trim a tail-most block back to the Region.
func (h *Heap) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		reportFreeNullPointer(h.debugDetail())

		return
	}

	blk := h.find(ptr)
	if blk == nil {
		reportFreeNonHeapPointer(h.debugDetail())

		return
	}

	h.freeBlock(blk)
}

func (h *Heap) freeBlock(blk *block) {
	freedSize := blk.size
	blk.isFree = true
	h.coalesce(blk)

	if h.config.EnableTracking {
		h.stats.freeCount++
		h.stats.totalFreed += uintptr(freedSize)
	}
}

// coalesce merges b with a free predecessor and/or free successor, then
// releases the resulting block back to the Region if it is now
// tail-most (spec.md §4.3's "coalesce" and "tail trim").
func (h *Heap) coalesce(b *block) {
	if b.prev != nil && b.prev.isFree {
		pred := b.prev
		pred.size = pred.size + b.size + headerSize
		pred.next = b.next

		if b.next != nil {
			b.next.prev = pred
		}

		b = pred
	}

	if b.next != nil && b.next.isFree {
		succ := b.next
		b.size = b.size + succ.size + headerSize
		b.next = succ.next

		if succ.next != nil {
			succ.next.prev = b
		}
	}

	if b.next == nil {
		if b.prev != nil {
			b.prev.next = nil
		} else {
			h.head = nil
		}

		h.region.Shrink(headerSize + b.size)
	}
}
