package column

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/hupe1980/colgo/internal/mem"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/typeinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }

type name struct{ Value string }

type marker struct{}

type tracked struct {
	ID    int
	drops *int
}

func (t *tracked) Drop() {
	if t.drops != nil {
		*t.drops++
	}
}

func put[T any](t *testing.T, c *Column, id uint32, v T) uint32 {
	t.Helper()
	slot, err := c.Allocate(id)
	require.NoError(t, err)
	c.PutRaw(unsafe.Pointer(&v), slot)
	return slot
}

func TestColumn_AllocateAndGrow(t *testing.T) {
	var grows [][2]int
	c := New(typeinfo.Describe[position](), nil, WithOnGrow(func(o, n int) {
		grows = append(grows, [2]int{o, n})
	}))
	defer c.Close()

	assert.Equal(t, 0, c.Cap())

	for i := 0; i < 100; i++ {
		slot := put(t, c, uint32(i), position{X: float64(i)})
		assert.Equal(t, uint32(i), slot)
	}

	assert.Equal(t, 100, c.Len())
	assert.Equal(t, 128, c.Cap())
	assert.Equal(t, [][2]int{{0, 64}, {64, 128}}, grows)
	assert.Equal(t, 2, c.Grows())

	vals := Slice[position](c)
	require.Len(t, vals, 100)
	for i, v := range vals {
		assert.Equal(t, float64(i), v.X)
	}
}

func TestColumn_GrowPolicy(t *testing.T) {
	tests := []struct {
		start, minInc, want int
	}{
		{0, 64, 64},
		{0, 10, 10},
		{64, 64, 128},
		{128, 64, 256},
		{64, 1000, 1064},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d+%d", tt.start, tt.minInc), func(t *testing.T) {
			c := New(typeinfo.Describe[position](), nil)
			defer c.Close()
			if tt.start > 0 {
				require.NoError(t, c.Grow(tt.start))
			}
			require.NoError(t, c.Grow(tt.minInc))
			assert.Equal(t, tt.want, c.Cap())
		})
	}
}

func TestColumn_GrowFailureLeavesColumnUnchanged(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 * 16})
	c := New(typeinfo.Describe[position](), mem.NewHeap(rc))
	defer c.Close()

	for i := 0; i < 64; i++ {
		put(t, c, uint32(i), position{X: float64(i)})
	}
	require.Equal(t, 64, c.Cap())

	_, err := c.Allocate(64)
	require.ErrorIs(t, err, ErrAllocationFailure)

	assert.Equal(t, 64, c.Len())
	assert.Equal(t, 64, c.Cap())
	assert.False(t, c.Contains(64))
	assert.Equal(t, 63.0, Slice[position](c)[63].X)
}

func TestColumn_Duplicate(t *testing.T) {
	c := New(typeinfo.Describe[position](), nil)
	defer c.Close()

	put(t, c, 3, position{})
	_, err := c.Allocate(3)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestColumn_SwapRemove(t *testing.T) {
	c := New(typeinfo.Describe[name](), nil)
	defer c.Close()

	put(t, c, 10, name{"a"})
	put(t, c, 11, name{"b"})
	put(t, c, 12, name{"c"})

	movedID, moved, err := c.Remove(10)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, uint32(12), movedID)

	assert.Equal(t, []uint32{12, 11}, c.Keys())
	assert.Equal(t, []name{{"c"}, {"b"}}, Slice[name](c))

	slot, ok := c.Slot(12)
	assert.True(t, ok)
	assert.Equal(t, uint32(0), slot)
	assert.False(t, c.Contains(10))

	// Removing the last slot moves nothing.
	_, moved, err = c.Remove(11)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, []uint32{12}, c.Keys())

	_, _, err = c.Remove(11)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestColumn_KeysAndSlotsConsistent(t *testing.T) {
	c := New(typeinfo.Describe[position](), nil)
	defer c.Close()

	for i := 0; i < 200; i++ {
		put(t, c, uint32(i*3), position{X: float64(i * 3)})
	}
	for i := 0; i < 200; i += 7 {
		_, _, err := c.Remove(uint32(i * 3))
		require.NoError(t, err)
	}

	vals := Slice[position](c)
	for i, id := range c.Keys() {
		slot, ok := c.Slot(id)
		require.True(t, ok)
		assert.Equal(t, uint32(i), slot)
		assert.Equal(t, float64(id), vals[i].X)
	}
}

func TestColumn_DropsExactlyOnce(t *testing.T) {
	drops := 0
	c := New(typeinfo.Describe[tracked](), nil)

	for i := 0; i < 70; i++ {
		put(t, c, uint32(i), tracked{ID: i, drops: &drops})
	}
	assert.Equal(t, 0, drops, "growth relocates without dropping")

	_, _, err := c.Remove(5)
	require.NoError(t, err)
	assert.Equal(t, 1, drops)

	slot, _ := c.Slot(6)
	v := tracked{ID: 600, drops: &drops}
	c.Replace(slot, unsafe.Pointer(&v))
	assert.Equal(t, 2, drops)
	assert.Equal(t, 600, At[tracked](c, slot).ID)

	c.Close()
	assert.Equal(t, 71, drops)

	c.Close()
	assert.Equal(t, 71, drops)
	assert.True(t, c.Closed())
}

func TestColumn_ZeroSized(t *testing.T) {
	alloc := mem.NewHeap(nil)
	c := New(typeinfo.Describe[marker](), alloc)
	defer c.Close()

	for i := 0; i < 100; i++ {
		put(t, c, uint32(i), marker{})
	}

	assert.Equal(t, 100, c.Len())
	assert.Equal(t, 128, c.Cap())
	assert.Equal(t, uint64(0), alloc.Stats().Allocations)
	assert.Equal(t, typeinfo.Describe[marker]().ZeroSizePointer(), c.Data())
	assert.Len(t, Slice[marker](c), 100)

	_, _, err := c.Remove(50)
	require.NoError(t, err)
	assert.Equal(t, 99, c.Len())
}

func TestColumn_Clear(t *testing.T) {
	c := New(typeinfo.Describe[position](), nil)
	defer c.Close()

	for i := 0; i < 10; i++ {
		put(t, c, uint32(i), position{})
	}
	c.Clear()

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 64, c.Cap())
	assert.False(t, c.Contains(3))
	assert.Nil(t, Slice[position](c))
}

func TestColumn_ClosedRejectsWrites(t *testing.T) {
	c := New(typeinfo.Describe[position](), nil)
	c.Close()

	_, err := c.Allocate(1)
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Grow(1), ErrClosed)
}

func TestColumn_OffHeap(t *testing.T) {
	alloc := mem.NewOffHeap(nil)
	c := New(typeinfo.Describe[position](), alloc)

	for i := 0; i < 10; i++ {
		put(t, c, uint32(i), position{X: float64(i)})
	}
	assert.True(t, c.OffHeap())
	assert.Equal(t, 9.0, Slice[position](c)[9].X)

	c.Clear()
	assert.Equal(t, 64, c.Cap())
	put(t, c, 3, position{X: 7})
	assert.Equal(t, 7.0, Slice[position](c)[0].X)

	c.Close()
	assert.Equal(t, int64(0), alloc.Stats().LiveBytes)
}

func TestSlice_TypeMismatchPanics(t *testing.T) {
	c := New(typeinfo.Describe[position](), nil)
	defer c.Close()

	assert.Panics(t, func() { Slice[name](c) })
}
