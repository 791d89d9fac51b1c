package colgo

import (
	"time"
	"unsafe"

	"github.com/hupe1980/colgo/typeinfo"
)

// AddField stores v as r's field of type T, creating the column for T on
// first use. It fails with ErrDuplicateField if r already has a T, and with
// ErrNoSuchRecord if r is not live. Running out of memory panics.
func AddField[T any](db *Database, r Record, v T) error {
	return db.addField(typeinfo.Describe[T](), r, unsafe.Pointer(&v))
}

// MustAddField is like AddField but panics on error.
func MustAddField[T any](db *Database, r Record, v T) {
	if err := AddField(db, r, v); err != nil {
		panic(err)
	}
}

// ReplaceField stores v as r's field of type T. An existing value is
// dropped first; if r has no T yet, v is added.
func ReplaceField[T any](db *Database, r Record, v T) error {
	return db.replaceField(typeinfo.Describe[T](), r, unsafe.Pointer(&v))
}

// MustReplaceField is like ReplaceField but panics on error.
func MustReplaceField[T any](db *Database, r Record, v T) {
	if err := ReplaceField(db, r, v); err != nil {
		panic(err)
	}
}

// RemoveField drops r's field of type T. The last value of the column is
// moved into the freed slot. It fails with ErrMissingField if r has no T.
func RemoveField[T any](db *Database, r Record) error {
	return db.removeField(typeinfo.Describe[T](), r)
}

// MustRemoveField is like RemoveField but panics on error.
func MustRemoveField[T any](db *Database, r Record) {
	if err := RemoveField[T](db, r); err != nil {
		panic(err)
	}
}

// HasField reports whether r is live and has a field of type T.
func HasField[T any](db *Database, r Record) bool {
	if db.checkRecord(r) != nil {
		return false
	}
	c := db.lookup(typeinfo.Describe[T]())
	return c != nil && c.Contains(r.ID)
}

// Get returns a copy of r's field of type T.
func Get[T any](db *Database, r Record) (T, error) {
	ref, err := Field[T](db, r)
	if err != nil {
		var zero T
		return zero, err
	}
	defer ref.Release()
	return ref.Value(), nil
}

func (db *Database) addField(desc *typeinfo.Descriptor, r Record, src unsafe.Pointer) error {
	start := time.Now()
	err := db.insert(desc, r, src)
	db.metrics.RecordAddField(time.Since(start), err)
	return err
}

func (db *Database) insert(desc *typeinfo.Descriptor, r Record, src unsafe.Pointer) error {
	if err := db.checkRecord(r); err != nil {
		return err
	}

	c := db.columnFor(desc)
	if c.Contains(r.ID) {
		return &FieldError{Record: r, Type: desc.Name(), Err: ErrDuplicateField}
	}
	if err := db.acquire(c, true); err != nil {
		return err
	}
	defer c.Borrow().ReleaseUnique()

	slot, err := c.Allocate(r.ID)
	if err != nil {
		err = translateError(err)
		abortOnAllocation(err)
		return &FieldError{Record: r, Type: desc.Name(), Err: err}
	}
	c.PutRaw(src, slot)
	return nil
}

func (db *Database) replaceField(desc *typeinfo.Descriptor, r Record, src unsafe.Pointer) error {
	if err := db.checkRecord(r); err != nil {
		return err
	}

	c := db.lookup(desc)
	if c == nil || !c.Contains(r.ID) {
		return db.addField(desc, r, src)
	}
	if err := db.acquire(c, true); err != nil {
		return err
	}
	defer c.Borrow().ReleaseUnique()

	slot, _ := c.Slot(r.ID)
	c.Replace(slot, src)
	return nil
}

func (db *Database) removeField(desc *typeinfo.Descriptor, r Record) error {
	start := time.Now()
	err := db.remove(desc, r)
	db.metrics.RecordRemoveField(time.Since(start), err)
	return err
}

func (db *Database) remove(desc *typeinfo.Descriptor, r Record) error {
	if err := db.checkRecord(r); err != nil {
		return err
	}

	c := db.lookup(desc)
	if c == nil || !c.Contains(r.ID) {
		return &FieldError{Record: r, Type: desc.Name(), Err: ErrMissingField}
	}
	if err := db.acquire(c, true); err != nil {
		return err
	}
	defer c.Borrow().ReleaseUnique()

	if _, _, err := c.Remove(r.ID); err != nil {
		return &FieldError{Record: r, Type: desc.Name(), Err: translateError(err)}
	}
	return nil
}
