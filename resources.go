package colgo

import (
	"unsafe"

	"github.com/hupe1980/colgo/typeinfo"
)

// resourceEntry is a database-owned singleton value.
type resourceEntry struct {
	desc *typeinfo.Descriptor
	ptr  unsafe.Pointer
}

// SetResource stores v as the database's singleton of type T. A previous
// value is dropped. It reports whether one existed.
func SetResource[T any](db *Database, v T) bool {
	db.mustBeOpen()
	desc := typeinfo.Describe[T]()
	if old, ok := db.resources[desc.ID()]; ok {
		desc.Drop(old.ptr)
		*(*T)(old.ptr) = v
		return true
	}
	p := new(T)
	*p = v
	db.resources[desc.ID()] = resourceEntry{desc: desc, ptr: unsafe.Pointer(p)}
	return false
}

// Resource returns a copy of the singleton of type T.
func Resource[T any](db *Database) (T, bool) {
	if p, ok := ResourcePtr[T](db); ok {
		return *p, true
	}
	var zero T
	return zero, false
}

// ResourcePtr returns the singleton of type T for in-place modification.
// The pointer is valid until the resource is replaced or removed.
func ResourcePtr[T any](db *Database) (*T, bool) {
	e, ok := db.resources[typeinfo.Describe[T]().ID()]
	if !ok {
		return nil, false
	}
	return (*T)(e.ptr), true
}

// HasResource reports whether a singleton of type T is stored.
func HasResource[T any](db *Database) bool {
	_, ok := db.resources[typeinfo.Describe[T]().ID()]
	return ok
}

// RemoveResource removes the singleton of type T and hands it back to the
// caller without dropping it.
func RemoveResource[T any](db *Database) (T, bool) {
	id := typeinfo.Describe[T]().ID()
	e, ok := db.resources[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(db.resources, id)
	return *(*T)(e.ptr), true
}

func (db *Database) dropResources() {
	for id, e := range db.resources {
		e.desc.Drop(e.ptr)
		delete(db.resources, id)
	}
}
