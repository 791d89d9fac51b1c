package typeinfo

import (
	"fmt"
	"reflect"
	"unsafe"
)

// TypeID is the stable identity of a described type.
type TypeID uint64

// String returns the id in hex.
func (id TypeID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Layout is the memory layout of one value.
type Layout struct {
	Size  int
	Align int
}

// Dropper is implemented by field types that must release something when
// the column discards a value.
type Dropper interface {
	Drop()
}

var dropperType = reflect.TypeFor[Dropper]()

// Descriptor is the erased run-time description of one field type.
// Descriptors are compared by identity; use Describe or DescribeType to
// obtain one.
type Descriptor struct {
	id          TypeID
	typ         reflect.Type
	layout      Layout
	hasPointers bool
	dropper     bool

	drop  func(p unsafe.Pointer)
	zero  func(p unsafe.Pointer)
	move  func(dst, src unsafe.Pointer)
	copyN func(dst, src unsafe.Pointer, n int)
	alloc func(n int) unsafe.Pointer
	zst   unsafe.Pointer
}

// ID returns the type identity.
func (d *Descriptor) ID() TypeID { return d.id }

// Type returns the reflected type.
func (d *Descriptor) Type() reflect.Type { return d.typ }

// Name returns the Go name of the type.
func (d *Descriptor) Name() string { return d.typ.String() }

// Layout returns size and alignment.
func (d *Descriptor) Layout() Layout { return d.layout }

// Size returns the size of one value in bytes.
func (d *Descriptor) Size() int { return d.layout.Size }

// Align returns the alignment of one value in bytes.
func (d *Descriptor) Align() int { return d.layout.Align }

// IsZeroSized reports whether values occupy no memory.
func (d *Descriptor) IsZeroSized() bool { return d.layout.Size == 0 }

// HasPointers reports whether values contain Go pointers. Buffers of such
// types must live on the Go heap.
func (d *Descriptor) HasPointers() bool { return d.hasPointers }

// NeedsDrop reports whether the type implements Dropper.
func (d *Descriptor) NeedsDrop() bool { return d.dropper }

// Drop runs the type's Drop hook, if any, on the value at p and zeroes it.
// p must point at an initialized value of the described type.
func (d *Descriptor) Drop(p unsafe.Pointer) { d.drop(p) }

// Zero clears the value at p without running its Drop hook. Used on slots
// whose value was moved elsewhere.
func (d *Descriptor) Zero(p unsafe.Pointer) { d.zero(p) }

// Move transfers the value at src into dst. The caller gives up ownership of
// src and must not drop it.
func (d *Descriptor) Move(dst, src unsafe.Pointer) { d.move(dst, src) }

// CopyN relocates n consecutive values from src to dst with the write
// barriers the collector needs for pointerful types.
func (d *Descriptor) CopyN(dst, src unsafe.Pointer, n int) {
	if n <= 0 || d.layout.Size == 0 {
		return
	}
	d.copyN(dst, src, n)
}

// Alloc returns a zeroed Go heap buffer of n values, or nil when n is zero.
// The buffer stays alive as long as the returned pointer is reachable.
func (d *Descriptor) Alloc(n int) unsafe.Pointer {
	if n <= 0 {
		return nil
	}
	return d.alloc(n)
}

// ZeroSizePointer returns the sentinel buffer address for zero-sized types.
// It is never allocated or freed by a column.
func (d *Descriptor) ZeroSizePointer() unsafe.Pointer { return d.zst }

// Implements reports whether values (or pointers to them) implement iface.
func (d *Descriptor) Implements(iface reflect.Type) bool {
	if iface == nil || iface.Kind() != reflect.Interface {
		return false
	}
	return d.typ.Implements(iface) || reflect.PointerTo(d.typ).Implements(iface)
}

// Less orders descriptors by descending alignment, then ascending id.
func (d *Descriptor) Less(other *Descriptor) bool {
	if d.layout.Align != other.layout.Align {
		return d.layout.Align > other.layout.Align
	}
	return d.id < other.id
}

// Compare is the three-way form of Less.
func (d *Descriptor) Compare(other *Descriptor) int {
	switch {
	case d.id == other.id:
		return 0
	case d.Less(other):
		return -1
	default:
		return 1
	}
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(size=%d, align=%d)", d.typ, d.layout.Size, d.layout.Align)
}

func newGeneric[T any](typ reflect.Type) *Descriptor {
	d := &Descriptor{
		typ:         typ,
		layout:      Layout{Size: int(typ.Size()), Align: typ.Align()},
		hasPointers: hasPointers(typ),
		dropper:     reflect.PointerTo(typ).Implements(dropperType),
	}

	if d.dropper {
		d.drop = func(p unsafe.Pointer) {
			v := (*T)(p)
			any(v).(Dropper).Drop()
			var zero T
			*v = zero
		}
	} else {
		d.drop = func(p unsafe.Pointer) {
			var zero T
			*(*T)(p) = zero
		}
	}
	d.zero = func(p unsafe.Pointer) {
		var zero T
		*(*T)(p) = zero
	}
	d.move = func(dst, src unsafe.Pointer) {
		*(*T)(dst) = *(*T)(src)
	}
	d.copyN = func(dst, src unsafe.Pointer, n int) {
		copy(unsafe.Slice((*T)(dst), n), unsafe.Slice((*T)(src), n))
	}
	d.alloc = func(n int) unsafe.Pointer {
		return unsafe.Pointer(unsafe.SliceData(make([]T, n)))
	}
	if d.layout.Size == 0 {
		d.zst = unsafe.Pointer(new(T))
	}
	return d
}

func newReflect(typ reflect.Type) *Descriptor {
	d := &Descriptor{
		typ:         typ,
		layout:      Layout{Size: int(typ.Size()), Align: typ.Align()},
		hasPointers: hasPointers(typ),
		dropper:     reflect.PointerTo(typ).Implements(dropperType),
	}
	size := uintptr(d.layout.Size)

	dropper := d.dropper
	d.drop = func(p unsafe.Pointer) {
		v := reflect.NewAt(typ, p)
		if dropper {
			v.Interface().(Dropper).Drop()
		}
		v.Elem().SetZero()
	}
	d.zero = func(p unsafe.Pointer) {
		reflect.NewAt(typ, p).Elem().SetZero()
	}
	d.move = func(dst, src unsafe.Pointer) {
		reflect.NewAt(typ, dst).Elem().Set(reflect.NewAt(typ, src).Elem())
	}
	d.copyN = func(dst, src unsafe.Pointer, n int) {
		for i := 0; i < n; i++ {
			off := uintptr(i) * size
			reflect.NewAt(typ, unsafe.Add(dst, off)).Elem().Set(reflect.NewAt(typ, unsafe.Add(src, off)).Elem())
		}
	}
	sliceType := reflect.SliceOf(typ)
	d.alloc = func(n int) unsafe.Pointer {
		return reflect.MakeSlice(sliceType, n, n).UnsafePointer()
	}
	if size == 0 {
		d.zst = reflect.New(typ).UnsafePointer()
	}
	return d
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Slice, reflect.String, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
