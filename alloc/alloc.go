// Package alloc provides device-space allocators for the object store: a
// monotonic bump allocator for tests and bootstrap, and a first-fit free
// list with coalescing for long-running use. Both satisfy the store's
// Allocator interface.
package alloc

import (
	"errors"
	"fmt"
	"sync"
)

// ErrExhausted is returned when no free span can satisfy an allocation.
var ErrExhausted = errors.New("alloc: no free space")

// Bump hands out monotonically increasing offsets and never reclaims.
// Freed space is dropped on the floor, which is fine for tests and for
// bootstrap phases where nothing is ever freed.
type Bump struct {
	mu   sync.Mutex
	next uint64
}

// NewBump returns a bump allocator starting at the given offset.
func NewBump(start uint64) *Bump {
	return &Bump{next: start}
}

func (b *Bump) Allocate(length uint64) (uint64, error) {
	if length == 0 {
		return 0, fmt.Errorf("alloc: zero-length allocation")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	off := b.next
	if off+length < off {
		return 0, ErrExhausted
	}
	b.next = off + length
	return off, nil
}

func (b *Bump) Free(deviceOffset, length uint64) {}

type span struct {
	start, end uint64
}

// FreeList is a first-fit allocator over a sorted list of free spans.
// Adjacent spans are coalesced on free, so fragmentation stays bounded by
// the actual layout of live extents.
type FreeList struct {
	mu   sync.Mutex
	free []span // sorted by start, pairwise disjoint and non-adjacent
}

// NewFreeList returns an allocator managing the device range [start, end).
func NewFreeList(start, end uint64) *FreeList {
	if start >= end {
		panic(fmt.Sprintf("alloc: invalid device range [%d, %d)", start, end))
	}
	return &FreeList{free: []span{{start, end}}}
}

func (fl *FreeList) Allocate(length uint64) (uint64, error) {
	if length == 0 {
		return 0, fmt.Errorf("alloc: zero-length allocation")
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	for i, sp := range fl.free {
		if sp.end-sp.start < length {
			continue
		}
		off := sp.start
		if sp.end-sp.start == length {
			fl.free = append(fl.free[:i], fl.free[i+1:]...)
		} else {
			fl.free[i].start = off + length
		}
		return off, nil
	}
	return 0, ErrExhausted
}

func (fl *FreeList) Free(deviceOffset, length uint64) {
	if length == 0 {
		return
	}
	start, end := deviceOffset, deviceOffset+length
	fl.mu.Lock()
	defer fl.mu.Unlock()

	i := 0
	for i < len(fl.free) && fl.free[i].start < start {
		i++
	}

	// Merge with the preceding span if adjacent.
	if i > 0 && fl.free[i-1].end == start {
		fl.free[i-1].end = end
		// And with the following one if the freed span bridges the gap.
		if i < len(fl.free) && fl.free[i].start == end {
			fl.free[i-1].end = fl.free[i].end
			fl.free = append(fl.free[:i], fl.free[i+1:]...)
		}
		return
	}

	// Merge with the following span if adjacent.
	if i < len(fl.free) && fl.free[i].start == end {
		fl.free[i].start = start
		return
	}

	fl.free = append(fl.free, span{})
	copy(fl.free[i+1:], fl.free[i:])
	fl.free[i] = span{start, end}
}

// FreeBytes reports the total unallocated space.
func (fl *FreeList) FreeBytes() uint64 {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	var total uint64
	for _, sp := range fl.free {
		total += sp.end - sp.start
	}
	return total
}
