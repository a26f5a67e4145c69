package allocator

import "unsafe"

// block is the fixed-size header prepended to every payload, used by
// the single-threaded Heap. Field order follows original_source's
// customAllocator.h (size, is_free, next, prev) even though Go does
// not require it.
//
// block headers live inside a Region's reserved buffer and are
// recovered from a user pointer by subtracting headerSize, exactly the
// "intrusive metadata alongside user memory" pattern spec.md §9 calls
// out: next/prev are real Go pointers, but every block they can ever
// point to is itself an offset into the same Region buffer, which
// stays reachable for as long as the Region does, so Go's non-moving
// GC never invalidates them.
type block struct {
	size   uintptr
	isFree bool
	next   *block
	prev   *block
}

const headerSize = unsafe.Sizeof(block{})

func blockAt(ptr unsafe.Pointer) *block {
	return (*block)(ptr)
}

// payload returns the address immediately past the header.
func (b *block) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), headerSize)
}

// payloadToBlock recovers a block header from a payload address.
func payloadToBlock(ptr unsafe.Pointer) *block {
	return (*block)(unsafe.Add(ptr, -int(headerSize)))
}

// addrAfterPayload returns the address n bytes past b's payload start,
// i.e. where a block carved out of b's tail would begin its own
// header. Used when splitting a block.
func addrAfterPayload(b *block, n uintptr) unsafe.Pointer {
	return unsafe.Add(b.payload(), n)
}

// zeroPayload fills a block's payload with zero bytes, for calloc.
func (b *block) zeroPayload() {
	buf := unsafe.Slice((*byte)(b.payload()), b.size)
	for i := range buf {
		buf[i] = 0
	}
}

// copyPayload copies n bytes from src to dst, tolerating overlap
// (spec.md §4.5's backward-absorb case moves a payload to a lower
// address that may overlap its old location). Go's builtin copy is
// memmove-based and handles overlapping byte slices correctly.
func copyPayload(dst, src unsafe.Pointer, n uintptr) {
	copy(unsafe.Slice((*byte)(dst), n), unsafe.Slice((*byte)(src), n))
}
