// Package memory tracks the Arrow memory held by decoded datasets.
package memory

import (
	"sync/atomic"

	arrowmem "github.com/apache/arrow-go/v18/arrow/memory"
)

// TrackingAllocator wraps an Arrow allocator and counts live and peak bytes.
// It is safe for concurrent use.
type TrackingAllocator struct {
	underlying arrowmem.Allocator
	allocated  atomic.Int64
	peak       atomic.Int64
}

var _ arrowmem.Allocator = (*TrackingAllocator)(nil)

// NewTrackingAllocator wraps underlying; nil selects the Go allocator
func NewTrackingAllocator(underlying arrowmem.Allocator) *TrackingAllocator {
	if underlying == nil {
		underlying = arrowmem.NewGoAllocator()
	}
	return &TrackingAllocator{underlying: underlying}
}

// Allocate implements arrow's memory.Allocator
func (a *TrackingAllocator) Allocate(size int) []byte {
	buf := a.underlying.Allocate(size)
	if buf != nil {
		a.record(int64(size))
	}
	return buf
}

// Reallocate implements arrow's memory.Allocator
func (a *TrackingAllocator) Reallocate(size int, b []byte) []byte {
	oldSize := len(b)
	buf := a.underlying.Reallocate(size, b)
	if buf != nil {
		a.record(int64(size - oldSize))
	}
	return buf
}

// Free implements arrow's memory.Allocator
func (a *TrackingAllocator) Free(b []byte) {
	if b == nil {
		return
	}
	a.allocated.Add(-int64(len(b)))
	a.underlying.Free(b)
}

// AllocatedBytes returns the bytes currently held
func (a *TrackingAllocator) AllocatedBytes() int64 {
	return a.allocated.Load()
}

// PeakBytes returns the high-water mark of AllocatedBytes
func (a *TrackingAllocator) PeakBytes() int64 {
	return a.peak.Load()
}

func (a *TrackingAllocator) record(delta int64) {
	total := a.allocated.Add(delta)
	for {
		peak := a.peak.Load()
		if total <= peak || a.peak.CompareAndSwap(peak, total) {
			return
		}
	}
}
