package allocator

import (
	"sync"
	"unsafe"
)

// mtBlock is the sharded allocator's header: the same fields as block
// plus a back-pointer to the owning MemArea's mutex (spec.md §3,
// "Header fields... lock (multi-threaded only)"). Kept as its own type
// rather than unified with block via generics, matching the teacher's
// own convention of one independent implementation per allocator
// variant (SystemAllocatorImpl/ArenaAllocatorImpl/PoolAllocatorImpl in
// allocator.go/arena.go/pool.go all duplicate Alloc/Free/Realloc rather
// than sharing one generic core).
type mtBlock struct {
	size   uintptr
	isFree bool
	next   *mtBlock
	prev   *mtBlock
	lock   *sync.Mutex
}

const mtHeaderSize = unsafe.Sizeof(mtBlock{})

func mtBlockAt(ptr unsafe.Pointer) *mtBlock {
	return (*mtBlock)(ptr)
}

func (b *mtBlock) payload() unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), mtHeaderSize)
}

func mtPayloadToBlock(ptr unsafe.Pointer) *mtBlock {
	return (*mtBlock)(unsafe.Add(ptr, -int(mtHeaderSize)))
}

func mtAddrAfterPayload(b *mtBlock, n uintptr) unsafe.Pointer {
	return unsafe.Add(b.payload(), n)
}

func (b *mtBlock) zeroPayload() {
	buf := unsafe.Slice((*byte)(b.payload()), b.size)
	for i := range buf {
		buf[i] = 0
	}
}
