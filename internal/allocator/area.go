package allocator

import "sync"

// MemArea is a fixed-size region carved out of the shared Region as a
// unit (spec.md §3, "Memory Area"). No block ever straddles an area
// boundary, so a single area's mutex is always sufficient to guard any
// header within it — including during coalescing, which never crosses
// an area (spec.md §4.6, §5).
type MemArea struct {
	areaLock sync.Mutex
	head     *mtBlock
	next     *MemArea
}

// newMemArea extends region by areaSize and installs a single free
// block covering areaSize - headerSize bytes, per spec.md §3.
func newMemArea(region *Region, areaSize uintptr) (*MemArea, bool) {
	addr, ok := region.Extend(areaSize)
	if !ok {
		return nil, false
	}

	area := &MemArea{}

	blk := mtBlockAt(addr)
	blk.size = areaSize - mtHeaderSize
	blk.isFree = true
	blk.next = nil
	blk.prev = nil
	blk.lock = &area.areaLock

	area.head = blk

	return area, true
}
