package column

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/hupe1980/colgo/internal/borrow"
	"github.com/hupe1980/colgo/internal/conv"
	"github.com/hupe1980/colgo/internal/mem"
	"github.com/hupe1980/colgo/internal/mmap"
	"github.com/hupe1980/colgo/typeinfo"
)

const (
	// MinGrowth is the smallest number of slots a grow adds.
	MinGrowth = 64
	// Sentinel marks an absent slot.
	Sentinel = math.MaxUint32
)

var (
	// ErrAllocationFailure is returned when the column cannot grow.
	ErrAllocationFailure = errors.New("column: allocation failure")
	// ErrDuplicateKey is returned when a record already has a slot.
	ErrDuplicateKey = errors.New("column: record already present")
	// ErrMissingKey is returned when a record has no slot.
	ErrMissingKey = errors.New("column: record not present")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("column: closed")
)

// Column is a growable array of one field type plus its owning record ids.
//
// Column is not safe for concurrent mutation; the borrow counter is the
// only concurrently accessed state.
type Column struct {
	desc  *typeinfo.Descriptor
	alloc mem.Allocator

	buf   mem.Buffer
	keys  []uint32
	slots []uint32
	len   int
	cap   int

	borrow borrow.Counter
	grows  int
	closed bool
	onGrow func(oldCap, newCap int)
}

// Option configures a Column.
type Option func(*Column)

// WithOnGrow registers a callback invoked after every successful grow.
func WithOnGrow(fn func(oldCap, newCap int)) Option {
	return func(c *Column) {
		c.onGrow = fn
	}
}

// New creates an empty column for desc. A nil allocator means mem.NewHeap(nil).
func New(desc *typeinfo.Descriptor, alloc mem.Allocator, opts ...Option) *Column {
	if alloc == nil {
		alloc = mem.NewHeap(nil)
	}
	c := &Column{
		desc:  desc,
		alloc: alloc,
	}
	if desc.IsZeroSized() {
		c.buf.Ptr = desc.ZeroSizePointer()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Descriptor returns the column's type descriptor.
func (c *Column) Descriptor() *typeinfo.Descriptor { return c.desc }

// Borrow returns the column's borrow counter.
func (c *Column) Borrow() *borrow.Counter { return &c.borrow }

// Len returns the number of live values.
func (c *Column) Len() int { return c.len }

// Cap returns the number of slots the buffer can hold.
func (c *Column) Cap() int { return c.cap }

// Grows returns how many times the buffer was reallocated.
func (c *Column) Grows() int { return c.grows }

// Bytes returns the size of the value buffer.
func (c *Column) Bytes() int { return c.buf.Bytes }

// OffHeap reports whether the value buffer lives outside the Go heap.
func (c *Column) OffHeap() bool { return c.buf.IsOffHeap() }

// Data returns the buffer base address. Valid until the next grow.
func (c *Column) Data() unsafe.Pointer { return c.buf.Ptr }

// Keys returns the record ids of the live slots in slot order.
func (c *Column) Keys() []uint32 { return c.keys[:c.len:c.len] }

// Slot returns the slot holding recordID.
func (c *Column) Slot(recordID uint32) (uint32, bool) {
	if int(recordID) >= len(c.slots) {
		return Sentinel, false
	}
	s := c.slots[recordID]
	return s, s != Sentinel
}

// Contains reports whether recordID has a slot.
func (c *Column) Contains(recordID uint32) bool {
	_, ok := c.Slot(recordID)
	return ok
}

// Allocate reserves the next slot for recordID, growing if needed. It does
// not write a value: exactly one PutRaw for the returned slot must follow.
func (c *Column) Allocate(recordID uint32) (uint32, error) {
	if c.closed {
		return Sentinel, ErrClosed
	}
	if c.Contains(recordID) {
		return Sentinel, ErrDuplicateKey
	}
	if c.len == c.cap {
		if err := c.Grow(MinGrowth); err != nil {
			return Sentinel, err
		}
	}

	slot, err := conv.IntToUint32(c.len)
	if err != nil || slot == Sentinel {
		return Sentinel, fmt.Errorf("%w: slot index overflow", ErrAllocationFailure)
	}

	c.ensureSlots(recordID)
	c.keys[c.len] = recordID
	c.slots[recordID] = slot
	c.len++
	return slot, nil
}

// PutRaw moves the value at src into slot. Ownership transfers to the
// column; the caller must not use or drop src afterwards. slot must have
// been freshly returned by Allocate.
func (c *Column) PutRaw(src unsafe.Pointer, slot uint32) {
	c.desc.Move(c.ptr(int(slot)), src)
}

// GetRaw returns a pointer to the value in slot. Undefined if slot >= Len.
func (c *Column) GetRaw(slot uint32) unsafe.Pointer {
	return c.ptr(int(slot))
}

// Replace drops the value in slot and moves src into it.
func (c *Column) Replace(slot uint32, src unsafe.Pointer) {
	p := c.ptr(int(slot))
	c.desc.Drop(p)
	c.desc.Move(p, src)
}

// Remove drops recordID's value and swap-removes its slot.
func (c *Column) Remove(recordID uint32) (movedID uint32, moved bool, err error) {
	slot, ok := c.Slot(recordID)
	if !ok {
		return 0, false, ErrMissingKey
	}
	movedID, moved = c.SwapRemove(slot)
	return movedID, moved, nil
}

// SwapRemove drops the value in slot and moves the last live value into it.
// It returns the record id that now occupies slot, if any was moved.
func (c *Column) SwapRemove(slot uint32) (movedID uint32, moved bool) {
	i := int(slot)
	last := c.len - 1
	removedID := c.keys[i]

	p := c.ptr(i)
	c.desc.Drop(p)

	if i != last {
		lp := c.ptr(last)
		c.desc.Move(p, lp)
		c.desc.Zero(lp)

		movedID = c.keys[last]
		c.keys[i] = movedID
		c.slots[movedID] = slot
		moved = true
	}

	c.slots[removedID] = Sentinel
	c.len--
	return movedID, moved
}

// Grow adds max(Cap, minIncrement) slots. On failure the column is
// unchanged and the error wraps ErrAllocationFailure.
func (c *Column) Grow(minIncrement int) error {
	if c.closed {
		return ErrClosed
	}
	newCap := c.cap + max(c.cap, minIncrement)
	if newCap <= c.cap || uint64(newCap) > math.MaxUint32 {
		return fmt.Errorf("%w: capacity overflow (%d)", ErrAllocationFailure, newCap)
	}

	var newBuf mem.Buffer
	if c.desc.IsZeroSized() {
		newBuf = c.buf
	} else {
		var err error
		newBuf, err = c.alloc.Allocate(c.desc, newCap)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
		}
		if c.len > 0 {
			c.desc.CopyN(newBuf.Ptr, c.buf.Ptr, c.len)
		}
		_ = newBuf.Advise(mmap.AccessSequential)
	}

	newKeys := make([]uint32, newCap)
	copy(newKeys, c.keys[:c.len])

	// Commit. Values were relocated, not dropped.
	if !c.desc.IsZeroSized() && c.cap > 0 {
		c.alloc.Free(c.buf)
	}
	oldCap := c.cap
	c.buf = newBuf
	c.keys = newKeys
	c.cap = newCap
	c.grows++

	if c.onGrow != nil {
		c.onGrow(oldCap, newCap)
	}
	return nil
}

// Clear drops every live value and empties the column. Capacity is kept.
func (c *Column) Clear() {
	for i := 0; i < c.len; i++ {
		c.desc.Drop(c.ptr(i))
		c.slots[c.keys[i]] = Sentinel
	}
	c.len = 0
	if c.cap > 0 {
		_ = c.buf.Advise(mmap.AccessDontNeed)
	}
}

// Close clears the column and releases its buffer. Close is idempotent.
func (c *Column) Close() {
	if c.closed {
		return
	}
	c.Clear()
	if !c.desc.IsZeroSized() && c.cap > 0 {
		c.alloc.Free(c.buf)
	}
	c.buf = mem.Buffer{}
	c.keys = nil
	c.slots = nil
	c.cap = 0
	c.closed = true
}

// Closed reports whether Close was called.
func (c *Column) Closed() bool { return c.closed }

func (c *Column) ptr(i int) unsafe.Pointer {
	return unsafe.Add(c.buf.Ptr, i*c.desc.Size())
}

func (c *Column) ensureSlots(recordID uint32) {
	if int(recordID) < len(c.slots) {
		return
	}
	n := max(int(recordID)+1, 2*len(c.slots), MinGrowth)
	grown := make([]uint32, n)
	copy(grown, c.slots)
	for i := len(c.slots); i < n; i++ {
		grown[i] = Sentinel
	}
	c.slots = grown
}

// Slice returns the live values as a []T of length and capacity Len.
// It panics if T is not the column's type. The slice is valid until the
// next structural change of the column.
func Slice[T any](c *Column) []T {
	checkType[T](c)
	if c.len == 0 {
		return nil
	}
	return unsafe.Slice((*T)(c.buf.Ptr), c.len)
}

// At returns a typed pointer to the value in slot.
func At[T any](c *Column, slot uint32) *T {
	checkType[T](c)
	return (*T)(c.ptr(int(slot)))
}

func checkType[T any](c *Column) {
	if typ := reflect.TypeFor[T](); typ != c.desc.Type() {
		panic(fmt.Sprintf("column: type mismatch: column holds %s, requested %s", c.desc.Name(), typ))
	}
}
