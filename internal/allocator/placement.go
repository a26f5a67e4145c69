package allocator

// minSplitRemainder is the "+4" in spec.md §4.2 step 4: a candidate is
// only split when the trailing remainder can itself hold a header plus
// at least four bytes of payload.
const minSplitRemainder = 4

// bestFit scans the address-ordered list starting at head for the
// smallest free block whose size is >= s. Ties are broken by order of
// first encounter; an exact match (size == s) short-circuits the scan
// immediately, which differs from a textbook best-fit when a
// later-in-list block ties exactly — spec.md §9 calls this out as
// intentional and requires it be preserved.
func bestFit(head *block, s uintptr) *block {
	var best *block

	for cur := head; cur != nil; cur = cur.next {
		if !cur.isFree || cur.size < s {
			continue
		}

		if cur.size == s {
			return cur
		}

		if best == nil || cur.size < best.size {
			best = cur
		}
	}

	return best
}

// maybeSplit replaces an overfit free candidate with a tight block of
// size s plus a trailing free remainder, when the remainder is large
// enough to be useful (spec.md §4.2 step 4). It returns the trailing
// remainder block, or nil if no split occurred. The remainder is
// spliced into the doubly-linked list in place; since next/prev are
// the only bookkeeping the list needs, no separate list-head update is
// required by the Heap caller (MTHeap uses mtMaybeSplit instead).
func maybeSplit(candidate *block, s uintptr) *block {
	if candidate.size < s+headerSize+minSplitRemainder {
		return nil
	}

	remainderSize := candidate.size - s - headerSize
	remainder := blockAt(addrAfterPayload(candidate, s))
	remainder.size = remainderSize
	remainder.isFree = true
	remainder.next = candidate.next
	remainder.prev = candidate

	if candidate.next != nil {
		candidate.next.prev = remainder
	}

	candidate.next = remainder
	candidate.size = s

	return remainder
}
