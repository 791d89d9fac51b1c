package mem

import (
	"math"
	"testing"
	"unsafe"

	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/typeinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec3 struct{ X, Y, Z float32 }

type label struct{ Text string }

type tag struct{}

func TestHeap_Allocate(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	h := NewHeap(rc)

	buf, err := h.Allocate(typeinfo.Describe[vec3](), 64)
	require.NoError(t, err)
	assert.Equal(t, 64, buf.Cap)
	assert.Equal(t, 64*12, buf.Bytes)
	assert.False(t, buf.IsOffHeap())
	assert.Equal(t, uintptr(0), uintptr(buf.Ptr)%Alignment)
	assert.Equal(t, int64(64*12), rc.MemoryUsage())

	vals := unsafe.Slice((*vec3)(buf.Ptr), buf.Cap)
	vals[63] = vec3{1, 2, 3}
	assert.Equal(t, vec3{1, 2, 3}, vals[63])

	h.Free(buf)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	s := h.Stats()
	assert.Equal(t, uint64(1), s.Allocations)
	assert.Equal(t, uint64(1), s.Frees)
	assert.Equal(t, int64(0), s.LiveBytes)
}

func TestHeap_PointerTypes(t *testing.T) {
	h := NewHeap(nil)

	buf, err := h.Allocate(typeinfo.Describe[label](), 8)
	require.NoError(t, err)

	vals := unsafe.Slice((*label)(buf.Ptr), buf.Cap)
	vals[0] = label{Text: "hello"}
	assert.Equal(t, "hello", vals[0].Text)
	h.Free(buf)
}

func TestHeap_Failures(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	h := NewHeap(rc)

	_, err := h.Allocate(typeinfo.Describe[vec3](), 64)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

	_, err = h.Allocate(typeinfo.Describe[vec3](), math.MaxInt/4)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	_, err = h.Allocate(typeinfo.Describe[tag](), 4)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	_, err = h.Allocate(typeinfo.Describe[vec3](), 0)
	assert.ErrorIs(t, err, ErrAllocationFailed)

	assert.Equal(t, uint64(4), h.Stats().FailedAllocs)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}

func TestOffHeap_Allocate(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	o := NewOffHeap(rc)

	buf, err := o.Allocate(typeinfo.Describe[vec3](), 128)
	require.NoError(t, err)
	assert.True(t, buf.IsOffHeap())
	assert.Equal(t, int64(128*12), rc.MemoryUsage())

	vals := unsafe.Slice((*vec3)(buf.Ptr), buf.Cap)
	for i := range vals {
		assert.Equal(t, vec3{}, vals[i])
	}
	vals[127] = vec3{X: 7}
	assert.Equal(t, float32(7), vals[127].X)

	// Pointerful types stay on the Go heap.
	lbl, err := o.Allocate(typeinfo.Describe[label](), 4)
	require.NoError(t, err)
	assert.False(t, lbl.IsOffHeap())

	s := o.Stats()
	assert.Equal(t, uint64(2), s.Allocations)
	assert.Equal(t, int64(128*12), s.OffHeapBytes)

	o.Free(buf)
	o.Free(lbl)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	s = o.Stats()
	assert.Equal(t, uint64(2), s.Frees)
	assert.Equal(t, int64(0), s.LiveBytes)
	assert.Equal(t, int64(0), s.OffHeapBytes)
}

func TestOffHeap_LimitExceeded(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})
	o := NewOffHeap(rc)

	_, err := o.Allocate(typeinfo.Describe[vec3](), 64)
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, uint64(1), o.Stats().FailedAllocs)
	assert.Equal(t, int64(0), rc.MemoryUsage())
}
