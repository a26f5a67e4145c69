package allocator

import (
	"fmt"
	"os"
)

// Category classifies a diagnostic, adapted from the compiler's
// StandardError category scheme but trimmed to the cases an allocator
// actually raises.
type Category string

const (
	CategoryMemory     Category = "MEMORY"
	CategoryValidation Category = "VALIDATION"
	CategorySystem     Category = "SYSTEM"
)

// diagnostic is a classified, human-readable allocator notice. Per
// spec.md §7, diagnostics are never returned as error values; Heap and
// MTHeap render one to stderr and otherwise no-op or return nil/null.
type diagnostic struct {
	Category Category
	Tag      string
	Message  string
}

func (d diagnostic) String() string {
	return fmt.Sprintf("<%s error>: %s", d.Tag, d.Message)
}

// report renders d, plus detail when non-empty — detail is only ever
// populated when Config.EnableDebug is set (spec.md §10.2's "additional
// diagnostic detail").
func report(d diagnostic, detail string) {
	if detail == "" {
		fmt.Fprintln(os.Stderr, d.String())
		return
	}

	fmt.Fprintf(os.Stderr, "%s (%s)\n", d.String(), detail)
}

// The literal diagnostics named by spec.md §7.
func diagFreeNullPointer() diagnostic {
	return diagnostic{Category: CategoryMemory, Tag: "free", Message: "passed null pointer"}
}

func diagFreeNonHeapPointer() diagnostic {
	return diagnostic{Category: CategoryMemory, Tag: "free", Message: "passed non-heap pointer"}
}

func diagReallocNonHeapPointer() diagnostic {
	return diagnostic{Category: CategoryMemory, Tag: "realloc", Message: "passed non-heap pointer"}
}

func diagOutOfMemory() diagnostic {
	return diagnostic{Category: CategorySystem, Tag: "sbrk/brk", Message: "out of memory"}
}

func diagTuningError() diagnostic {
	return diagnostic{Category: CategoryValidation, Tag: "tuning", Message: "reload failed"}
}

func reportFreeNullPointer(detail string)       { report(diagFreeNullPointer(), detail) }
func reportFreeNonHeapPointer(detail string)    { report(diagFreeNonHeapPointer(), detail) }
func reportReallocNonHeapPointer(detail string) { report(diagReallocNonHeapPointer(), detail) }
func reportOutOfMemory(detail string)           { report(diagOutOfMemory(), detail) }

// reportTuningError is only ever called with EnableDebug set (see
// MTHeap.startTuning), so it always includes detail.
func reportTuningError(err error) { report(diagTuningError(), err.Error()) }
