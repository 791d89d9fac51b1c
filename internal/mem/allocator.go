package mem

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/colgo/internal/conv"
	"github.com/hupe1980/colgo/internal/mmap"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/typeinfo"
)

// ErrAllocationFailed is returned when a buffer cannot be obtained.
var ErrAllocationFailed = errors.New("mem: allocation failed")

// Buffer is a raw allocation holding Cap values of one type.
type Buffer struct {
	Ptr   unsafe.Pointer
	Cap   int
	Bytes int

	mapping *mmap.Mapping
}

// IsOffHeap reports whether the buffer lives outside the Go heap.
func (b Buffer) IsOffHeap() bool { return b.mapping != nil }

// Allocator obtains and releases column buffers.
type Allocator interface {
	Allocate(desc *typeinfo.Descriptor, n int) (Buffer, error)
	Free(b Buffer)
	Stats() Stats
}

// Stats tracks allocator usage.
type Stats struct {
	LiveBytes    int64  // Current: bytes held by live buffers
	OffHeapBytes int64  // Current: bytes held by off-heap buffers
	Allocations  uint64 // Historical: buffers handed out
	Frees        uint64 // Historical: buffers released
	FailedAllocs uint64 // Historical: refused allocations
}

type atomicStats struct {
	liveBytes    atomic.Int64
	offHeapBytes atomic.Int64
	allocations  atomic.Uint64
	frees        atomic.Uint64
	failed       atomic.Uint64
}

func (s *atomicStats) snapshot() Stats {
	return Stats{
		LiveBytes:    s.liveBytes.Load(),
		OffHeapBytes: s.offHeapBytes.Load(),
		Allocations:  s.allocations.Load(),
		Frees:        s.frees.Load(),
		FailedAllocs: s.failed.Load(),
	}
}

// Heap allocates column buffers on the Go heap.
type Heap struct {
	rc    *resource.Controller
	stats atomicStats
}

// NewHeap creates a heap allocator charging rc (which may be nil).
func NewHeap(rc *resource.Controller) *Heap {
	return &Heap{rc: rc}
}

// Allocate returns a zeroed buffer for n values of desc.
func (h *Heap) Allocate(desc *typeinfo.Descriptor, n int) (Buffer, error) {
	bytes, err := bufferSize(desc, n)
	if err != nil {
		h.stats.failed.Add(1)
		return Buffer{}, err
	}
	if err := h.rc.AcquireMemory(int64(bytes)); err != nil {
		h.stats.failed.Add(1)
		return Buffer{}, fmt.Errorf("%w: %s x %d: %w", ErrAllocationFailed, desc.Name(), n, err)
	}

	var ptr unsafe.Pointer
	if desc.HasPointers() {
		ptr = desc.Alloc(n)
	} else {
		ptr = unsafe.Pointer(unsafe.SliceData(AllocAligned(bytes))) //nolint:gosec // raw column storage
	}

	h.stats.liveBytes.Add(int64(bytes))
	h.stats.allocations.Add(1)
	return Buffer{Ptr: ptr, Cap: n, Bytes: bytes}, nil
}

// Free releases the buffer's charge. The memory itself is reclaimed by the
// collector once the column drops its pointer.
func (h *Heap) Free(b Buffer) {
	if b.Ptr == nil {
		return
	}
	h.rc.ReleaseMemory(int64(b.Bytes))
	h.stats.liveBytes.Add(-int64(b.Bytes))
	h.stats.frees.Add(1)
}

// Stats returns the allocator statistics.
func (h *Heap) Stats() Stats {
	return h.stats.snapshot()
}

// OffHeap places pointer-free buffers in anonymous mappings and delegates
// everything else to a Heap.
type OffHeap struct {
	rc    *resource.Controller
	heap  *Heap
	stats atomicStats
}

// NewOffHeap creates an off-heap allocator charging rc (which may be nil).
func NewOffHeap(rc *resource.Controller) *OffHeap {
	return &OffHeap{rc: rc, heap: NewHeap(rc)}
}

// Allocate returns a zeroed buffer for n values of desc.
func (o *OffHeap) Allocate(desc *typeinfo.Descriptor, n int) (Buffer, error) {
	if desc.HasPointers() {
		return o.heap.Allocate(desc, n)
	}

	bytes, err := bufferSize(desc, n)
	if err != nil {
		o.stats.failed.Add(1)
		return Buffer{}, err
	}
	if err := o.rc.AcquireMemory(int64(bytes)); err != nil {
		o.stats.failed.Add(1)
		return Buffer{}, fmt.Errorf("%w: %s x %d: %w", ErrAllocationFailed, desc.Name(), n, err)
	}

	m, err := mmap.MapAnon(bytes)
	if err != nil {
		o.rc.ReleaseMemory(int64(bytes))
		o.stats.failed.Add(1)
		return Buffer{}, fmt.Errorf("%w: %s x %d: %w", ErrAllocationFailed, desc.Name(), n, err)
	}

	o.stats.liveBytes.Add(int64(bytes))
	o.stats.offHeapBytes.Add(int64(bytes))
	o.stats.allocations.Add(1)
	return Buffer{Ptr: m.Pointer(), Cap: n, Bytes: bytes, mapping: m}, nil
}

// Free unmaps off-heap buffers and releases their charge.
func (o *OffHeap) Free(b Buffer) {
	if b.mapping == nil {
		o.heap.Free(b)
		return
	}
	_ = b.mapping.Close()
	o.rc.ReleaseMemory(int64(b.Bytes))
	o.stats.liveBytes.Add(-int64(b.Bytes))
	o.stats.offHeapBytes.Add(-int64(b.Bytes))
	o.stats.frees.Add(1)
}

// Stats returns the combined statistics of off-heap and heap buffers.
func (o *OffHeap) Stats() Stats {
	s := o.stats.snapshot()
	h := o.heap.Stats()
	s.LiveBytes += h.LiveBytes
	s.Allocations += h.Allocations
	s.Frees += h.Frees
	s.FailedAllocs += h.FailedAllocs
	return s
}

func bufferSize(desc *typeinfo.Descriptor, n int) (int, error) {
	if n <= 0 || desc.Size() == 0 {
		return 0, fmt.Errorf("%w: %s x %d: nothing to allocate", ErrAllocationFailed, desc.Name(), n)
	}
	bytes, err := conv.MulSize(n, desc.Size())
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrAllocationFailed, err)
	}
	return bytes, nil
}

// Advise forwards an access hint to off-heap buffers. Heap buffers ignore it.
func (b Buffer) Advise(pattern mmap.AccessPattern) error {
	if b.mapping == nil {
		return nil
	}
	return b.mapping.Advise(pattern)
}
