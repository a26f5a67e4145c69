package allocator

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"unsafe"
)

// MTHeap is the sharded, concurrency-safe allocator of spec.md §4.6 and
// §5: a growable list of fixed-size MemAreas, each independently
// locked, with a shared Region standing in for the process break and a
// global mutex guarding only area creation.
type MTHeap struct {
	config   *Config
	region   *Region
	snapshot uintptr

	globalMu  sync.Mutex
	areasHead *MemArea
	areasTail *MemArea
	areaCount atomic.Int64
	cursor    atomic.Pointer[MemArea]

	// areaSize is the size used for areas created from this point
	// forward. It starts at Config.AreaSize and is updated by a
	// TuningWatcher reload (spec.md §10.2); areas already in the
	// registry keep whatever size they were carved with.
	areaSize atomic.Uint64

	tuning *TuningWatcher
	done   chan struct{}

	stats liveStats
}

// HeapMTCreate eagerly creates Config.NumAreas areas of Config.AreaSize
// bytes each (spec.md §3, §4.6 step 1), then, if Config.TuningPath is
// set, starts watching it for AreaSize/NumAreas reloads (spec.md
// §10.2).
func HeapMTCreate(opts ...Option) *MTHeap {
	cfg := NewConfig(opts...)

	capacity := cfg.MemoryLimit
	if capacity == 0 {
		capacity = defaultRegionCapacity()
	}

	region := NewRegion(capacity)

	h := &MTHeap{
		config:   cfg,
		region:   region,
		snapshot: region.Snapshot(),
		done:     make(chan struct{}),
	}
	h.areaSize.Store(uint64(cfg.AreaSize))

	for i := 0; i < cfg.NumAreas; i++ {
		area, ok := newMemArea(h.region, h.currentAreaSize())
		if !ok {
			h.fatalOOM()
		}

		h.appendArea(area)
	}

	h.cursor.Store(h.areasHead)

	if cfg.TuningPath != "" {
		h.startTuning(cfg.TuningPath)
	}

	return h
}

// currentAreaSize returns the size new areas are carved with.
func (h *MTHeap) currentAreaSize() uintptr {
	return uintptr(h.areaSize.Load())
}

// startTuning starts a TuningWatcher on path and applies each update it
// reports: a new AreaSize takes effect for areas created from then on,
// and a larger NumAreas grows the registry immediately (existing areas
// are never torn down, per spec.md §10.2). Failure to start the
// watcher is logged as a debug diagnostic and otherwise ignored — a
// missing tuning file should not prevent the heap from serving
// allocations.
func (h *MTHeap) startTuning(path string) {
	tw, err := NewTuningWatcher(path)
	if err != nil {
		if h.config.EnableDebug {
			reportTuningError(err)
		}

		return
	}

	h.tuning = tw

	go func() {
		for {
			select {
			case <-h.done:
				return
			case t, ok := <-tw.Updates():
				if !ok {
					return
				}

				h.applyTuning(t)
			case err, ok := <-tw.Errors():
				if !ok {
					continue
				}

				if h.config.EnableDebug {
					reportTuningError(err)
				}
			}
		}
	}()
}

// applyTuning installs a reloaded AreaSize for future areas and grows
// the registry to the reloaded NumAreas if it is larger than the
// current count.
func (h *MTHeap) applyTuning(t Tuning) {
	if t.AreaSize > 0 {
		h.areaSize.Store(uint64(t.AreaSize))
	}

	for t.NumAreas > 0 && int(h.areaCount.Load()) < t.NumAreas {
		h.createArea()
	}
}

// appendArea links area onto the registry's tail. Callers during
// HeapMTCreate run single-threaded; createArea holds globalMu.
func (h *MTHeap) appendArea(area *MemArea) {
	if h.areasHead == nil {
		h.areasHead = area
		h.areasTail = area
	} else {
		h.areasTail.next = area
		h.areasTail = area
	}

	h.areaCount.Add(1)
}

// createArea grows the registry by one area under the global mutex,
// per spec.md §4.6 step 5 ("a full pass finds nothing... create a new
// area, append it to the registry").
func (h *MTHeap) createArea() *MemArea {
	h.globalMu.Lock()
	defer h.globalMu.Unlock()

	area, ok := newMemArea(h.region, h.currentAreaSize())
	if !ok {
		h.fatalOOMLocked()
	}

	h.appendArea(area)

	return area
}

// Close tears the heap down: drops the area registry and restores the
// program break to the snapshot taken at HeapMTCreate. Matches Heap's
// Close modulo the lack of a tail-trim-on-free — the only trim to the
// OS a MTHeap ever performs is this one, at teardown (spec.md §5).
func (h *MTHeap) Close() error {
	select {
	case <-h.done:
	default:
		close(h.done)
	}

	if h.tuning != nil {
		_ = h.tuning.Close()
	}

	h.globalMu.Lock()
	defer h.globalMu.Unlock()

	h.closeLocked()

	return nil
}

func (h *MTHeap) closeLocked() {
	h.areasHead = nil
	h.areasTail = nil
	h.areaCount.Store(0)
	h.cursor.Store(nil)
	h.region.Restore(h.snapshot)
}

// Stats reports cumulative allocation activity, read with atomic loads
// since several areas may be updating it concurrently.
func (h *MTHeap) Stats() Stats {
	return h.stats.snapshotAtomic()
}

// Break reports the current simulated program break, mirroring Heap's
// Break for the testable properties in spec.md §8 (full reclamation
// after heap_mt_kill).
func (h *MTHeap) Break() uintptr {
	return h.region.Query()
}

// Alloc implements spec.md §4.6: round-robin over the area registry
// starting at the cursor, best-fit within whichever area is tried, and
// a new area created only after a full pass finds no room.
func (h *MTHeap) Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}

	s := h.config.align(size)
	if s > h.currentAreaSize()-mtHeaderSize {
		return nil
	}

	count := int(h.areaCount.Load())
	area := h.cursor.Load()

	for i := 0; i < count && area != nil; i++ {
		area.areaLock.Lock()

		candidate := mtBestFit(area.head, s)
		if candidate != nil {
			mtMaybeSplit(candidate, s)
			candidate.isFree = false
			ptr := candidate.payload()
			allocated := candidate.size

			area.areaLock.Unlock()
			h.advanceCursorPast(area)
			h.stats.incAlloc(allocated)

			return ptr
		}

		area.areaLock.Unlock()

		area = area.next
		if area == nil {
			area = h.areasHead
		}
	}

	newArea := h.createArea()

	newArea.areaLock.Lock()
	candidate := mtBestFit(newArea.head, s)
	mtMaybeSplit(candidate, s)
	candidate.isFree = false
	ptr := candidate.payload()
	allocated := candidate.size
	newArea.areaLock.Unlock()

	h.cursor.Store(h.areasHead)
	h.stats.incAlloc(allocated)

	return ptr
}

// advanceCursorPast moves the round-robin cursor to the area following
// area, wrapping to the registry head. Precise ordering under
// concurrent callers is not guaranteed — only eventual rotation is
// (spec.md §4.6: "the cursor need not be perfectly fair").
func (h *MTHeap) advanceCursorPast(area *MemArea) {
	next := area.next
	if next == nil {
		next = h.areasHead
	}

	h.cursor.Store(next)
}

// Calloc composes Alloc with a zero-fill, per spec.md §4.4/§4.6.
func (h *MTHeap) Calloc(n, elemSize uintptr) unsafe.Pointer {
	total := n * elemSize

	ptr := h.Alloc(total)
	if ptr == nil {
		return nil
	}

	mtPayloadToBlock(ptr).zeroPayload()

	return ptr
}

// fatalOOM is used outside any globalMu hold (HeapMTCreate's initial
// area creation loop runs before the heap is visible to other
// goroutines).
func (h *MTHeap) fatalOOM() {
	reportOutOfMemory(h.debugDetail())
	_ = h.Close()
	os.Exit(1)
}

// fatalOOMLocked is fatalOOM's counterpart for callers that already
// hold globalMu (createArea), avoiding a recursive lock.
func (h *MTHeap) fatalOOMLocked() {
	reportOutOfMemory(h.debugDetail())
	h.closeLocked()
	os.Exit(1)
}

// debugDetail reports the current break offset when Config.EnableDebug
// is set, and is otherwise empty (spec.md §10.2).
func (h *MTHeap) debugDetail() string {
	if !h.config.EnableDebug {
		return ""
	}

	return fmt.Sprintf("break=%d", h.region.Query())
}
