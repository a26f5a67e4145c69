package allocator

import "sync/atomic"

// Stats reports cumulative allocation activity, in the same spirit as
// the teacher's AllocatorStats (allocator.go) though trimmed to what a
// block-list allocator can cheaply track without a dedicated size-class
// registry.
type Stats struct {
	AllocationCount uint64
	FreeCount       uint64
	TotalAllocated  uintptr
	TotalFreed      uintptr
	BytesInUse      uintptr
}

type liveStats struct {
	allocCount uint64
	freeCount  uint64
	totalAlloc uintptr
	totalFreed uintptr
}

func (s *liveStats) snapshot() Stats {
	return Stats{
		AllocationCount: s.allocCount,
		FreeCount:       s.freeCount,
		TotalAllocated:  s.totalAlloc,
		TotalFreed:      s.totalFreed,
		BytesInUse:      s.totalAlloc - s.totalFreed,
	}
}

// incAlloc and incFree update the counters with atomic operations, for
// use by MTHeap where several areas can report activity concurrently.
func (s *liveStats) incAlloc(size uintptr) {
	atomic.AddUint64(&s.allocCount, 1)
	atomic.AddUintptr(&s.totalAlloc, size)
}

func (s *liveStats) incFree(size uintptr) {
	atomic.AddUint64(&s.freeCount, 1)
	atomic.AddUintptr(&s.totalFreed, size)
}

// snapshotAtomic is snapshot's counterpart using atomic loads, so
// MTHeap.Stats never races with concurrent incAlloc/incFree calls.
func (s *liveStats) snapshotAtomic() Stats {
	totalAlloc := atomic.LoadUintptr(&s.totalAlloc)
	totalFreed := atomic.LoadUintptr(&s.totalFreed)

	return Stats{
		AllocationCount: atomic.LoadUint64(&s.allocCount),
		FreeCount:       atomic.LoadUint64(&s.freeCount),
		TotalAllocated:  totalAlloc,
		TotalFreed:      totalFreed,
		BytesInUse:      totalAlloc - totalFreed,
	}
}
