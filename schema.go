package colgo

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/hupe1980/colgo/internal/column"
	"github.com/hupe1980/colgo/typeinfo"
)

// schema is a resolved field set: the columns a multi-field insertion
// writes to, in canonical order.
type schema struct {
	fields  typeinfo.FieldSet
	columns []*column.Column
}

// Schema registers the field set of types, creating their columns.
// Permutations of the same types share one schema.
func Schema(db *Database, types ...reflect.Type) error {
	if db.closed {
		return ErrClosed
	}
	fs, err := typeinfo.FieldSetOf(types...)
	if err != nil {
		return translateError(err)
	}
	db.schemaFor(fs)
	return nil
}

// Schemas returns the number of registered field sets.
func (db *Database) Schemas() int {
	n := 0
	for _, bucket := range db.schemas {
		n += len(bucket)
	}
	return n
}

func (db *Database) schemaFor(fs typeinfo.FieldSet) *schema {
	for _, s := range db.schemas[fs.Key()] {
		if s.fields.Equal(fs) {
			return s
		}
	}

	s := &schema{fields: fs, columns: make([]*column.Column, fs.Len())}
	for i, desc := range fs.Descriptors() {
		s.columns[i] = db.columnFor(desc)
	}
	db.schemas[fs.Key()] = append(db.schemas[fs.Key()], s)
	return s
}

// AddFields adds several fields of distinct types to r at once. Every
// precondition is checked before anything is stored, so on error r is
// unchanged. Values are stored by their dynamic type.
func AddFields(db *Database, r Record, values ...any) error {
	start := time.Now()
	err := db.insertMany(r, values)
	db.metrics.RecordAddField(time.Since(start), err)
	return err
}

// MustAddFields is like AddFields but panics on error.
func MustAddFields(db *Database, r Record, values ...any) {
	if err := AddFields(db, r, values...); err != nil {
		panic(err)
	}
}

func (db *Database) insertMany(r Record, values []any) error {
	if err := db.checkRecord(r); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	descs := make([]*typeinfo.Descriptor, len(values))
	for i, v := range values {
		if v == nil {
			return &RecordError{Record: r, Err: fmt.Errorf("value %d is nil", i)}
		}
		descs[i] = typeinfo.DescribeValue(v)
	}
	fs, err := typeinfo.NewFieldSet(descs...)
	if err != nil {
		return &RecordError{Record: r, Err: translateError(err)}
	}
	s := db.schemaFor(fs)

	for i, c := range s.columns {
		if c.Contains(r.ID) {
			return &FieldError{Record: r, Type: fs.At(i).Name(), Err: ErrDuplicateField}
		}
	}

	release, err := db.acquireAll(s.columns)
	if err != nil {
		return err
	}
	defer release()

	for i, v := range values {
		c := s.columns[fs.Index(descs[i].ID())]
		slot, err := c.Allocate(r.ID)
		if err != nil {
			err = translateError(err)
			abortOnAllocation(err)
			return &FieldError{Record: r, Type: descs[i].Name(), Err: err}
		}
		c.PutRaw(valuePointer(descs[i], v), slot)
	}
	return nil
}

// valuePointer copies v into a fresh addressable value of desc's type.
func valuePointer(desc *typeinfo.Descriptor, v any) unsafe.Pointer {
	p := reflect.New(desc.Type())
	p.Elem().Set(reflect.ValueOf(v))
	return p.UnsafePointer()
}
