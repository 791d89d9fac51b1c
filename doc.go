// Package colgo provides an in-process archetypal column store for Go.
//
// A Database hands out Records: dense 32-bit ids tagged with a generation so
// that a handle kept past Free is recognized as stale. Any value can be
// attached to a record as a field. Fields of the same Go type live
// contiguously in one column, so iterating a field type is a walk over a
// plain slice.
//
// # Quick Start
//
//	db := colgo.New()
//	defer db.Close()
//
//	r := db.Allocate()
//	colgo.MustAddField(db, r, Health{Value: 100})
//	colgo.MustAddField(db, r, Regen{Rate: 1})
//
//	colgo.UpdateColumn(db, func(hs []Health) {
//	    for i := range hs {
//	        hs[i].Value--
//	    }
//	})
//
// # Borrowing
//
// Column and Field return views that hold a shared borrow of the column;
// ColumnMut and FieldMut hold the unique borrow. Views must be released.
// While a column is borrowed, adding or removing its fields and freeing
// records that live in it fails with ErrBorrowConflict. ViewColumn and
// UpdateColumn scope the borrow to a callback.
//
// # Drop
//
// Field types whose pointer implements typeinfo.Dropper are dropped exactly
// once: on RemoveField, on ReplaceField, on Free, and on Close for whatever
// is still stored.
//
// # Errors
//
// Fallible operations return errors that match ErrNoSuchRecord,
// ErrMissingField, ErrDuplicateField, ErrBorrowConflict and ErrClosed with
// errors.Is; *RecordError, *FieldError and *BorrowError carry the context.
// The Must variants panic with the same errors. Running out of memory
// (including the budget set with WithMemoryLimit) always panics with an
// error matching ErrAllocationFailure.
//
// # Concurrent Reservation
//
// Reserve and ReserveN may be called from many goroutines while the
// database is otherwise idle. Reserved records become live at Flush.
package colgo
