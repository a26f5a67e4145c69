package allocator

import (
	"fmt"
	"os"
	"unsafe"
)

// Heap is the single-threaded allocator of spec.md §4.2–§4.5: one
// address-ordered block list per Heap handle, carved out of its Region.
// Heap is not safe for concurrent use — per spec.md §5, the
// single-threaded variant assumes one caller at a time and deliberately
// carries no synchronization; use MTHeap when that assumption does not
// hold.
type Heap struct {
	config   *Config
	region   *Region
	snapshot uintptr
	head     *block
	stats    liveStats
}

// HeapCreate snapshots a fresh Region's break and returns a Heap ready
// to serve allocations. The block list itself is created lazily on the
// first successful Alloc (spec.md §3).
func HeapCreate(opts ...Option) *Heap {
	cfg := NewConfig(opts...)

	capacity := cfg.MemoryLimit
	if capacity == 0 {
		capacity = defaultRegionCapacity()
	}

	region := NewRegion(capacity)

	return &Heap{
		config:   cfg,
		region:   region,
		snapshot: region.Snapshot(),
	}
}

// Close tears the heap down: restores the program break to the
// snapshot taken at HeapCreate and drops the block list. It implements
// io.Closer so callers can `defer h.Close()`.
func (h *Heap) Close() error {
	h.region.Restore(h.snapshot)
	h.head = nil

	return nil
}

// Break reports the current simulated program break, as an offset from
// the Region's start. Exposed for the testable properties in spec.md
// §8 (full tail reclamation after free / after teardown).
func (h *Heap) Break() uintptr {
	return h.region.Query()
}

// Stats reports cumulative allocation activity.
func (h *Heap) Stats() Stats {
	return h.stats.snapshot()
}

// Alloc implements spec.md §4.2. A zero size returns nil silently.
func (h *Heap) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}

	s := h.config.align(size)

	var blk *block
	if h.head == nil {
		blk = h.extendNewHead(s)
	} else if candidate := bestFit(h.head, s); candidate != nil {
		maybeSplit(candidate, s)
		candidate.isFree = false
		blk = candidate
	} else {
		blk = h.extendTail(s)
	}

	if h.config.EnableTracking {
		h.stats.allocCount++
		h.stats.totalAlloc += uintptr(blk.size)
	}

	return blk.payload()
}

// Calloc composes Alloc with a zero-fill, per spec.md §4.4. Overflow of
// n*elemSize is not checked, matching the source's customCalloc and
// spec.md §9's note that this is an open question left to the caller.
func (h *Heap) Calloc(n, elemSize uintptr) unsafe.Pointer {
	total := n * elemSize

	ptr := h.Alloc(total)
	if ptr == nil {
		return nil
	}

	payloadToBlock(ptr).zeroPayload()

	return ptr
}

// extendNewHead grows the Region for the very first block and installs
// it as the list head, used (spec.md §4.2 step 2).
func (h *Heap) extendNewHead(s uintptr) *block {
	addr, ok := h.region.Extend(headerSize + s)
	if !ok {
		h.fatalOOM()
	}

	blk := blockAt(addr)
	blk.size = s
	blk.isFree = false
	blk.next = nil
	blk.prev = nil
	h.head = blk

	return blk
}

// extendTail grows the Region for a fresh block appended at the list
// tail, used when no free candidate satisfies the request (spec.md
// §4.2 step 5).
func (h *Heap) extendTail(s uintptr) *block {
	addr, ok := h.region.Extend(headerSize + s)
	if !ok {
		h.fatalOOM()
	}

	blk := blockAt(addr)
	blk.size = s
	blk.isFree = false
	blk.next = nil

	last := h.head
	for last.next != nil {
		last = last.next
	}

	last.next = blk
	blk.prev = last

	return blk
}

// fatalOOM matches the source's customMalloc behavior on ENOMEM: report
// the diagnostic, tear the heap down, and terminate the process.
// Because Region's only failure mode is running out of reserved
// address space, every Region.Extend failure is treated as this fatal
// case rather than the "other kernel failure" recoverable case in
// spec.md §7 (there is no second failure mode to distinguish in this
// simulation).
func (h *Heap) fatalOOM() {
	reportOutOfMemory(h.debugDetail())
	_ = h.Close()
	os.Exit(1)
}

// debugDetail reports the current break offset when Config.EnableDebug
// is set, and is otherwise empty (spec.md §10.2).
func (h *Heap) debugDetail() string {
	if !h.config.EnableDebug {
		return ""
	}

	return fmt.Sprintf("break=%d", h.region.Query())
}
