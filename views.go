package colgo

import (
	"iter"
	"unsafe"

	"github.com/hupe1980/colgo/internal/column"
	"github.com/hupe1980/colgo/typeinfo"
)

// ColumnRef is a shared view of every value of one field type.
//
// The view holds a shared borrow of the column until Release. While any
// view is outstanding, structural changes to the column fail with
// ErrBorrowConflict.
type ColumnRef[T any] struct {
	col  *column.Column
	vals []T
	keys []uint32
}

// Slice returns the values in slot order. len == cap == Len().
func (v *ColumnRef[T]) Slice() []T { return v.vals }

// Keys returns the owning record ids, parallel to Slice.
func (v *ColumnRef[T]) Keys() []uint32 { return v.keys }

// Len returns the number of values.
func (v *ColumnRef[T]) Len() int { return len(v.vals) }

// All yields (record id, value) pairs in slot order.
func (v *ColumnRef[T]) All() iter.Seq2[uint32, T] {
	return func(yield func(uint32, T) bool) {
		for i, val := range v.vals {
			if !yield(v.keys[i], val) {
				return
			}
		}
	}
}

// Release returns the borrow. Further calls are no-ops.
func (v *ColumnRef[T]) Release() {
	if v.col == nil {
		return
	}
	v.col.Borrow().ReleaseShared()
	v.col, v.vals, v.keys = nil, nil, nil
}

// ColumnMutRef is an exclusive view of every value of one field type.
type ColumnMutRef[T any] struct {
	col  *column.Column
	vals []T
	keys []uint32
}

// Slice returns the values in slot order for in-place modification.
func (v *ColumnMutRef[T]) Slice() []T { return v.vals }

// Keys returns the owning record ids, parallel to Slice.
func (v *ColumnMutRef[T]) Keys() []uint32 { return v.keys }

// Len returns the number of values.
func (v *ColumnMutRef[T]) Len() int { return len(v.vals) }

// Release returns the borrow. Further calls are no-ops.
func (v *ColumnMutRef[T]) Release() {
	if v.col == nil {
		return
	}
	v.col.Borrow().ReleaseUnique()
	v.col, v.vals, v.keys = nil, nil, nil
}

// FieldRef is a shared view of one record's field.
type FieldRef[T any] struct {
	col *column.Column
	ptr *T
}

// Get returns a pointer to the value. It must not be written through or
// used after Release.
func (v *FieldRef[T]) Get() *T { return v.ptr }

// Value returns a copy of the value.
func (v *FieldRef[T]) Value() T { return *v.ptr }

// Release returns the borrow. Further calls are no-ops.
func (v *FieldRef[T]) Release() {
	if v.col == nil {
		return
	}
	v.col.Borrow().ReleaseShared()
	v.col, v.ptr = nil, nil
}

// FieldMutRef is an exclusive view of one record's field.
type FieldMutRef[T any] struct {
	col  *column.Column
	slot uint32
	ptr  *T
}

// Get returns a pointer to the value for in-place modification.
func (v *FieldMutRef[T]) Get() *T { return v.ptr }

// Value returns a copy of the value.
func (v *FieldMutRef[T]) Value() T { return *v.ptr }

// Set drops the current value and stores val in its place.
func (v *FieldMutRef[T]) Set(val T) {
	v.col.Replace(v.slot, unsafe.Pointer(&val))
}

// Release returns the borrow. Further calls are no-ops.
func (v *FieldMutRef[T]) Release() {
	if v.col == nil {
		return
	}
	v.col.Borrow().ReleaseUnique()
	v.col, v.ptr = nil, nil
}

// Column returns a shared view of the column of T. If no record ever had a
// T, the view is empty.
func Column[T any](db *Database) (*ColumnRef[T], error) {
	c, err := borrowColumn[T](db, false)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &ColumnRef[T]{}, nil
	}
	return &ColumnRef[T]{col: c, vals: column.Slice[T](c), keys: c.Keys()}, nil
}

// MustColumn is like Column but panics on error.
func MustColumn[T any](db *Database) *ColumnRef[T] {
	v, err := Column[T](db)
	if err != nil {
		panic(err)
	}
	return v
}

// ColumnMut returns an exclusive view of the column of T.
func ColumnMut[T any](db *Database) (*ColumnMutRef[T], error) {
	c, err := borrowColumn[T](db, true)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &ColumnMutRef[T]{}, nil
	}
	return &ColumnMutRef[T]{col: c, vals: column.Slice[T](c), keys: c.Keys()}, nil
}

// MustColumnMut is like ColumnMut but panics on error.
func MustColumnMut[T any](db *Database) *ColumnMutRef[T] {
	v, err := ColumnMut[T](db)
	if err != nil {
		panic(err)
	}
	return v
}

// Field returns a shared view of r's field of type T.
func Field[T any](db *Database, r Record) (*FieldRef[T], error) {
	c, slot, err := borrowField[T](db, r, false)
	if err != nil {
		return nil, err
	}
	return &FieldRef[T]{col: c, ptr: column.At[T](c, slot)}, nil
}

// MustField is like Field but panics on error.
func MustField[T any](db *Database, r Record) *FieldRef[T] {
	v, err := Field[T](db, r)
	if err != nil {
		panic(err)
	}
	return v
}

// FieldMut returns an exclusive view of r's field of type T.
func FieldMut[T any](db *Database, r Record) (*FieldMutRef[T], error) {
	c, slot, err := borrowField[T](db, r, true)
	if err != nil {
		return nil, err
	}
	return &FieldMutRef[T]{col: c, slot: slot, ptr: column.At[T](c, slot)}, nil
}

// MustFieldMut is like FieldMut but panics on error.
func MustFieldMut[T any](db *Database, r Record) *FieldMutRef[T] {
	v, err := FieldMut[T](db, r)
	if err != nil {
		panic(err)
	}
	return v
}

// ViewColumn calls fn with the values of T under a shared borrow.
func ViewColumn[T any](db *Database, fn func(vals []T)) error {
	v, err := Column[T](db)
	if err != nil {
		return err
	}
	defer v.Release()
	fn(v.Slice())
	return nil
}

// UpdateColumn calls fn with the values of T under the unique borrow.
func UpdateColumn[T any](db *Database, fn func(vals []T)) error {
	v, err := ColumnMut[T](db)
	if err != nil {
		return err
	}
	defer v.Release()
	fn(v.Slice())
	return nil
}

// UpdateField calls fn with r's field of type T under the unique borrow.
func UpdateField[T any](db *Database, r Record, fn func(v *T)) error {
	v, err := FieldMut[T](db, r)
	if err != nil {
		return err
	}
	defer v.Release()
	fn(v.Get())
	return nil
}

func borrowColumn[T any](db *Database, unique bool) (*column.Column, error) {
	if db.closed {
		return nil, ErrClosed
	}
	c := db.lookup(typeinfo.Describe[T]())
	if c == nil {
		return nil, nil
	}
	if err := db.acquire(c, unique); err != nil {
		return nil, err
	}
	return c, nil
}

func borrowField[T any](db *Database, r Record, unique bool) (*column.Column, uint32, error) {
	desc := typeinfo.Describe[T]()
	if err := db.checkRecord(r); err != nil {
		return nil, 0, err
	}
	c := db.lookup(desc)
	if c == nil {
		return nil, 0, &FieldError{Record: r, Type: desc.Name(), Err: ErrMissingField}
	}
	slot, ok := c.Slot(r.ID)
	if !ok {
		return nil, 0, &FieldError{Record: r, Type: desc.Name(), Err: ErrMissingField}
	}
	if err := db.acquire(c, unique); err != nil {
		return nil, 0, err
	}
	return c, slot, nil
}
