package allocator

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestHeapAllocBasic(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	p := h.Alloc(32)
	require.NotNil(t, p)

	s := h.Stats()
	require.EqualValues(t, 1, s.AllocationCount)
	require.GreaterOrEqual(t, s.TotalAllocated, uintptr(32))
}

func TestHeapAllocZeroReturnsNil(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	require.Nil(t, h.Alloc(0))
}

func TestHeapCallocZeroesPayload(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	p := h.Calloc(16, 4)
	require.NotNil(t, p)

	buf := unsafe.Slice((*byte)(p), 64)
	for i, b := range buf {
		require.EqualValuesf(t, 0, b, "byte %d not zeroed", i)
	}
}

func TestHeapFreeThenReuseExactFit(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	a := h.Alloc(64)
	require.NotNil(t, a)

	// Keep a used block after a so freeing a leaves it on the list
	// instead of trimming it back to the Region.
	_ = h.Alloc(16)

	h.Free(a)

	b := h.Alloc(64)
	require.Equal(t, a, b, "exact-fit free block should be reused")
}

func TestHeapCoalesceMiddleBlock(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	a := h.Alloc(32)
	b := h.Alloc(32)
	c := h.Alloc(32)
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)

	h.Free(a)
	h.Free(c)
	h.Free(b)

	// a, b and c have coalesced into a single block covering their
	// combined payload plus two headers; being tail-most it was trimmed
	// back to the Region, so the next allocation starts at a's header.
	big := h.Alloc(32*3 + 2*headerSize)
	require.Equal(t, a, big, "coalesced run should satisfy a request spanning all three original blocks")
}

func TestHeapFreeTailTrimsBreak(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	before := h.Break()

	p := h.Alloc(128)
	require.NotNil(t, p)
	require.Greater(t, h.Break(), before)

	h.Free(p)
	require.Equal(t, before, h.Break(), "freeing the tail-most block should release its space back to the break")
}

func TestHeapFreeNullAndNonHeapPointer(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	h.Free(nil) // must not panic

	var x int
	h.Free(unsafe.Pointer(&x)) // foreign pointer, must not panic
}

func TestHeapReallocShrinkKeepsAddress(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	p := h.Alloc(256)
	require.NotNil(t, p)

	q := h.Realloc(p, 16)
	require.Equal(t, p, q)
}

func TestHeapReallocGrowAbsorbsForward(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	a := h.Alloc(32)
	b := h.Alloc(32)
	require.NotNil(t, a)
	require.NotNil(t, b)

	// Keep a used block after b so freeing b leaves a free forward
	// neighbor instead of trimming b back to the Region.
	_ = h.Alloc(32)

	h.Free(b)

	grown := h.Realloc(a, 32+32+headerSize)
	require.Equal(t, a, grown, "growth into a free forward neighbor should keep the same address")
}

func TestHeapReallocGrowRelocatesAndPreservesContent(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	a := h.Alloc(16)
	require.NotNil(t, a)

	src := unsafe.Slice((*byte)(a), 16)
	for i := range src {
		src[i] = byte(i + 1)
	}

	// Allocate a neighbor so a cannot simply absorb forward, forcing a
	// relocation on growth.
	_ = h.Alloc(16)

	grown := h.Realloc(a, 4096)
	require.NotNil(t, grown)

	dst := unsafe.Slice((*byte)(grown), 16)
	for i := range dst {
		require.EqualValues(t, i+1, dst[i])
	}
}

func TestHeapReallocNilActsAsAlloc(t *testing.T) {
	h := HeapCreate()
	defer h.Close()

	p := h.Realloc(nil, 16)
	require.NotNil(t, p)
}

func TestConfigAlign(t *testing.T) {
	c := NewConfig()

	require.EqualValues(t, 4, c.align(0))
	require.EqualValues(t, 4, c.align(1))
	require.EqualValues(t, 4, c.align(4))
	require.EqualValues(t, 8, c.align(5))
}

func TestConfigOptions(t *testing.T) {
	c := NewConfig(WithAlignSize(16), WithAreaSize(8192), WithNumAreas(2), WithTracking(false))

	require.EqualValues(t, 16, c.AlignSize)
	require.EqualValues(t, 8192, c.AreaSize)
	require.Equal(t, 2, c.NumAreas)
	require.False(t, c.EnableTracking)
}
