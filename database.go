package colgo

import (
	"iter"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/colgo/internal/column"
	"github.com/hupe1980/colgo/internal/mem"
	"github.com/hupe1980/colgo/record"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/typeinfo"
)

// Record is a generation-tagged record handle.
type Record = record.Record

// Database is an in-process column store.
//
// A Database is not safe for concurrent mutation. Reserve and ReserveN may
// be called from any goroutine, and shared views may be held and read from
// several goroutines at once.
type Database struct {
	id      uuid.UUID
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
	alloc   mem.Allocator
	offHeap bool

	initialCapacity int

	records   *record.Set
	columns   []*column.Column
	byType    map[typeinfo.TypeID]int
	schemas   map[uint64][]*schema
	resources map[typeinfo.TypeID]resourceEntry

	closed bool
}

// New creates an empty database.
func New(optFns ...Option) *Database {
	o := applyOptions(optFns)

	rc := o.controller
	if rc == nil {
		rc = resource.NewController(resource.Config{MemoryLimitBytes: o.memoryLimit})
	}

	var alloc mem.Allocator = mem.NewHeap(rc)
	if o.offHeap {
		alloc = mem.NewOffHeap(rc)
	}

	id := uuid.New()
	return &Database{
		id:              id,
		logger:          o.logger.WithID(id.String()),
		metrics:         o.metricsCollector,
		rc:              rc,
		alloc:           alloc,
		offHeap:         o.offHeap,
		initialCapacity: o.initialCapacity,
		records:         record.NewSet(),
		byType:          make(map[typeinfo.TypeID]int),
		schemas:         make(map[uint64][]*schema),
		resources:       make(map[typeinfo.TypeID]resourceEntry),
	}
}

// ID returns the instance id used to tag logs and metrics.
func (db *Database) ID() uuid.UUID { return db.id }

// Allocate returns a new live record with no fields.
func (db *Database) Allocate() Record {
	db.mustBeOpen()
	return db.records.Allocate()
}

// Reserve reserves a record handle. It is safe for concurrent use; the
// record becomes live at the next Flush, Allocate or Free.
func (db *Database) Reserve() Record {
	db.mustBeOpen()
	return db.records.Reserve()
}

// ReserveN reserves n record handles at once.
func (db *Database) ReserveN(n int) []Record {
	db.mustBeOpen()
	return db.records.ReserveN(n)
}

// Flush makes all reserved records live and returns how many there were.
func (db *Database) Flush() int {
	db.mustBeOpen()
	return db.records.Flush()
}

// Contains reports whether r is live.
func (db *Database) Contains(r Record) bool {
	return db.records.Contains(r)
}

// Len returns the number of live records.
func (db *Database) Len() int {
	return db.records.Len()
}

// Records yields the live records in ascending id order. The database must
// not be mutated during iteration.
func (db *Database) Records() iter.Seq[Record] {
	return db.records.Records()
}

// FieldTypes returns the field types r currently has, in column creation order.
func (db *Database) FieldTypes(r Record) ([]reflect.Type, error) {
	if err := db.checkRecord(r); err != nil {
		return nil, err
	}
	var types []reflect.Type
	for _, c := range db.columns {
		if c.Contains(r.ID) {
			types = append(types, c.Descriptor().Type())
		}
	}
	return types, nil
}

// Free removes r from every column holding it, dropping each value, and
// invalidates the handle. Nothing changes if any affected column is
// borrowed.
func (db *Database) Free(r Record) error {
	start := time.Now()
	fields, err := db.free(r)
	db.metrics.RecordFree(fields, time.Since(start), err)
	db.logger.LogFree(r, fields, err)
	return err
}

// MustFree is like Free but panics on error.
func (db *Database) MustFree(r Record) {
	if err := db.Free(r); err != nil {
		panic(err)
	}
}

func (db *Database) free(r Record) (int, error) {
	if err := db.checkRecord(r); err != nil {
		return 0, err
	}

	var affected []*column.Column
	for _, c := range db.columns {
		if c.Contains(r.ID) {
			affected = append(affected, c)
		}
	}

	release, err := db.acquireAll(affected)
	if err != nil {
		return 0, err
	}
	for _, c := range affected {
		_, _, _ = c.Remove(r.ID)
	}
	release()

	if _, err := db.records.Free(r); err != nil {
		return len(affected), &RecordError{Record: r, Err: translateError(err)}
	}
	return len(affected), nil
}

// Clear frees every record, including pending reservations, and drops every
// value. Handles issued before Clear stay invalid. Columns, schemas and
// resources are kept.
func (db *Database) Clear() error {
	if db.closed {
		return ErrClosed
	}
	release, err := db.acquireAll(db.columns)
	if err != nil {
		return err
	}
	defer release()

	for _, c := range db.columns {
		c.Clear()
	}
	db.records.FreeAll()
	return nil
}

func (db *Database) mustBeOpen() {
	if db.closed {
		panic(ErrClosed)
	}
}

func (db *Database) checkRecord(r Record) error {
	if db.closed {
		return ErrClosed
	}
	if !db.records.Contains(r) {
		return &RecordError{Record: r, Err: ErrNoSuchRecord}
	}
	return nil
}

func (db *Database) lookup(desc *typeinfo.Descriptor) *column.Column {
	if i, ok := db.byType[desc.ID()]; ok {
		return db.columns[i]
	}
	return nil
}

// columnFor resolves the column of desc, creating it on first use.
func (db *Database) columnFor(desc *typeinfo.Descriptor) *column.Column {
	if c := db.lookup(desc); c != nil {
		return c
	}

	name := desc.Name()
	c := column.New(desc, db.alloc, column.WithOnGrow(func(oldCap, newCap int) {
		db.logger.LogGrow(name, oldCap, newCap)
		db.metrics.RecordGrow(name, oldCap, newCap)
	}))
	if db.initialCapacity > 0 {
		abortOnAllocation(translateError(c.Grow(db.initialCapacity)))
	}

	db.byType[desc.ID()] = len(db.columns)
	db.columns = append(db.columns, c)
	db.logger.LogColumnCreated(name, desc.Size(), db.offHeap && !desc.HasPointers() && !desc.IsZeroSized())
	return c
}

func (db *Database) acquire(c *column.Column, unique bool) error {
	if err := c.Borrow().Acquire(unique); err != nil {
		name := c.Descriptor().Name()
		db.metrics.RecordBorrowConflict(name, unique)
		return &BorrowError{Type: name, Unique: unique, Err: translateError(err)}
	}
	return nil
}

// acquireAll takes the unique borrow of every column or of none.
func (db *Database) acquireAll(cols []*column.Column) (func(), error) {
	for i, c := range cols {
		if err := db.acquire(c, true); err != nil {
			for _, held := range cols[:i] {
				held.Borrow().ReleaseUnique()
			}
			return nil, err
		}
	}
	return func() {
		for _, c := range cols {
			c.Borrow().ReleaseUnique()
		}
	}, nil
}

// ColumnStats describes one column.
type ColumnStats struct {
	Type    string
	Len     int
	Cap     int
	Bytes   int
	Grows   int
	OffHeap bool
	Shared  int
	Unique  bool
}

// Stats is a snapshot of database state.
type Stats struct {
	Records         int
	NeedsFlush      bool
	LiveBitmapBytes uint64
	Columns         []ColumnStats
	Schemas         int
	Resources       int
	MemoryUsage     int64
	PeakMemoryUsage int64
	MemoryLimit     int64
	OffHeapBytes    int64
	Allocations     uint64
	Frees           uint64
}

// Stats returns a snapshot of database state.
func (db *Database) Stats() Stats {
	a := db.alloc.Stats()
	s := Stats{
		Records:         db.records.Len(),
		NeedsFlush:      db.records.NeedsFlush(),
		LiveBitmapBytes: db.records.Live().GetSizeInBytes(),
		Columns:         make([]ColumnStats, 0, len(db.columns)),
		Schemas:         db.Schemas(),
		Resources:       len(db.resources),
		MemoryUsage:     db.rc.MemoryUsage(),
		PeakMemoryUsage: db.rc.PeakMemoryUsage(),
		MemoryLimit:     db.rc.MemoryLimit(),
		OffHeapBytes:    a.OffHeapBytes,
		Allocations:     a.Allocations,
		Frees:           a.Frees,
	}
	for _, c := range db.columns {
		s.Columns = append(s.Columns, ColumnStats{
			Type:    c.Descriptor().Name(),
			Len:     c.Len(),
			Cap:     c.Cap(),
			Bytes:   c.Bytes(),
			Grows:   c.Grows(),
			OffHeap: c.OffHeap(),
			Shared:  c.Borrow().Shared(),
			Unique:  c.Borrow().IsUnique(),
		})
	}
	return s
}
