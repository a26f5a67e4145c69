// Package brkalloc re-exports the heap allocator implemented in
// internal/allocator, following the teacher's convention of a single
// internal package behind the public commands and library surface.
package brkalloc

import (
	"unsafe"

	"github.com/orizon-lang/brkalloc/internal/allocator"
)

// Config, Option and the With* constructors mirror internal/allocator
// so callers never need to import the internal package directly.
type (
	Config = allocator.Config
	Option = allocator.Option
	Stats  = allocator.Stats
)

var (
	NewConfig       = allocator.NewConfig
	WithAlignSize   = allocator.WithAlignSize
	WithAreaSize    = allocator.WithAreaSize
	WithNumAreas    = allocator.WithNumAreas
	WithMemoryLimit = allocator.WithMemoryLimit
	WithTracking    = allocator.WithTracking
	WithDebug       = allocator.WithDebug
	WithTuningPath  = allocator.WithTuningPath
)

// Heap is the single-threaded allocator; see internal/allocator.Heap.
type Heap = allocator.Heap

// HeapCreate creates a single-threaded heap (spec.md's heap_create).
func HeapCreate(opts ...Option) *Heap { return allocator.HeapCreate(opts...) }

// HeapKill tears heap h down (spec.md's heap_kill). Equivalent to
// h.Close().
func HeapKill(h *Heap) error { return h.Close() }

// MTHeap is the sharded, concurrency-safe allocator; see
// internal/allocator.MTHeap.
type MTHeap = allocator.MTHeap

// HeapMTCreate creates a multi-threaded heap (spec.md's
// heap_mt_create).
func HeapMTCreate(opts ...Option) *MTHeap { return allocator.HeapMTCreate(opts...) }

// HeapMTKill tears MT heap h down (spec.md's heap_mt_kill). Equivalent
// to h.Close().
func HeapMTKill(h *MTHeap) error { return h.Close() }

// The four operations, as free functions, for callers that prefer
// spec.md's naming over methods.

func Allocate(h *Heap, n uintptr) unsafe.Pointer         { return h.Alloc(n) }
func Free(h *Heap, p unsafe.Pointer)                     { h.Free(p) }
func ZeroAllocate(h *Heap, nElems, elemSize uintptr) unsafe.Pointer {
	return h.Calloc(nElems, elemSize)
}
func Resize(h *Heap, p unsafe.Pointer, n uintptr) unsafe.Pointer { return h.Realloc(p, n) }

func AllocateMT(h *MTHeap, n uintptr) unsafe.Pointer         { return h.Alloc(n) }
func FreeMT(h *MTHeap, p unsafe.Pointer)                     { h.Free(p) }
func ZeroAllocateMT(h *MTHeap, nElems, elemSize uintptr) unsafe.Pointer {
	return h.Calloc(nElems, elemSize)
}
func ResizeMT(h *MTHeap, p unsafe.Pointer, n uintptr) unsafe.Pointer { return h.Realloc(p, n) }

// DefaultHeap and DefaultMTHeap are process-wide singleton handles for
// call sites that want the original C global's ergonomics instead of
// threading an explicit handle everywhere, mirroring the teacher's own
// GlobalAllocator/Initialize pattern (internal/allocator's former
// allocator.go). They are nil until InitializeDefaultHeap /
// InitializeDefaultMTHeap is called.
var (
	DefaultHeap   *Heap
	DefaultMTHeap *MTHeap
)

// InitializeDefaultHeap creates DefaultHeap, replacing any previous
// one. Callers that need teardown should still call HeapKill
// (DefaultHeap) themselves; this mirrors Initialize's bare assignment
// in the teacher rather than adding lifecycle management of its own.
func InitializeDefaultHeap(opts ...Option) {
	DefaultHeap = HeapCreate(opts...)
}

// InitializeDefaultMTHeap creates DefaultMTHeap, replacing any previous
// one.
func InitializeDefaultMTHeap(opts ...Option) {
	DefaultMTHeap = HeapMTCreate(opts...)
}

// The singleton-flavored counterparts of Allocate/Free/ZeroAllocate/
// Resize and their MT equivalents, operating on DefaultHeap /
// DefaultMTHeap.

func DefaultAllocate(n uintptr) unsafe.Pointer { return DefaultHeap.Alloc(n) }
func DefaultFree(p unsafe.Pointer)             { DefaultHeap.Free(p) }
func DefaultZeroAllocate(nElems, elemSize uintptr) unsafe.Pointer {
	return DefaultHeap.Calloc(nElems, elemSize)
}
func DefaultResize(p unsafe.Pointer, n uintptr) unsafe.Pointer { return DefaultHeap.Realloc(p, n) }

func DefaultAllocateMT(n uintptr) unsafe.Pointer { return DefaultMTHeap.Alloc(n) }
func DefaultFreeMT(p unsafe.Pointer)             { DefaultMTHeap.Free(p) }
func DefaultZeroAllocateMT(nElems, elemSize uintptr) unsafe.Pointer {
	return DefaultMTHeap.Calloc(nElems, elemSize)
}
func DefaultResizeMT(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	return DefaultMTHeap.Realloc(p, n)
}
