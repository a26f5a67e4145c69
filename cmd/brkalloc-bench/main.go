// Command brkalloc-bench runs a fixed allocate/free workload against
// both heap variants and prints their resulting Stats.
package main

import (
	"flag"
	"fmt"
	"sync"
	"unsafe"

	"github.com/orizon-lang/brkalloc/internal/allocator"
)

const (
	workloadCount = 4096
	workloadSize  = 64
)

func main() {
	threads := flag.Int("threads", 8, "goroutines to run against the multi-threaded heap")
	flag.Parse()

	fmt.Println("brkalloc-bench: single-threaded heap")
	runSingleThreaded()

	fmt.Printf("brkalloc-bench: multi-threaded heap (%d threads)\n", *threads)
	runMultiThreaded(*threads)
}

func runSingleThreaded() {
	h := allocator.HeapCreate()
	defer h.Close()

	ptrs := make([]unsafe.Pointer, 0, workloadCount)

	for i := 0; i < workloadCount; i++ {
		p := h.Alloc(workloadSize)
		if p == nil {
			continue
		}

		ptrs = append(ptrs, p)
	}

	for _, p := range ptrs {
		h.Free(p)
	}

	printStats(h.Stats())
}

func runMultiThreaded(threads int) {
	h := allocator.HeapMTCreate()
	defer h.Close()

	var wg sync.WaitGroup

	for t := 0; t < threads; t++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ptrs := make([]unsafe.Pointer, 0, workloadCount/threads)

			for i := 0; i < workloadCount/threads; i++ {
				p := h.Alloc(workloadSize)
				if p == nil {
					continue
				}

				ptrs = append(ptrs, p)
			}

			for _, p := range ptrs {
				h.Free(p)
			}
		}()
	}

	wg.Wait()

	printStats(h.Stats())
}

func printStats(s allocator.Stats) {
	fmt.Printf(
		"  allocations=%d frees=%d totalAllocated=%d totalFreed=%d bytesInUse=%d\n",
		s.AllocationCount, s.FreeCount, s.TotalAllocated, s.TotalFreed, s.BytesInUse,
	)
}
