// Package allocator implements a heap allocator on top of a simulated
// program-break primitive.
//
// Heap is the single-threaded variant: one block list per Heap, laid
// out in address order, best-fit placement with split-on-overfit, and
// coalesce-on-free with tail-trim release back to the Region.
//
// MTHeap is the concurrent variant: a round-robin list of fixed-size
// memory areas, each with its own block list and mutex, so unrelated
// allocations never contend on a single global lock.
//
// Neither variant uses size classes, thread-local caches, or guard
// pages; see SPEC_FULL.md at the repository root for the full design.
package allocator
