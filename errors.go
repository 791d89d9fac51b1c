package colgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/colgo/internal/borrow"
	"github.com/hupe1980/colgo/internal/column"
	"github.com/hupe1980/colgo/internal/mem"
	"github.com/hupe1980/colgo/record"
	"github.com/hupe1980/colgo/resource"
	"github.com/hupe1980/colgo/typeinfo"
)

var (
	// ErrNoSuchRecord is returned for stale, freed, or unflushed handles.
	ErrNoSuchRecord = errors.New("no such record")

	// ErrMissingField is returned when a record has no field of the requested type.
	ErrMissingField = errors.New("missing field")

	// ErrDuplicateField is returned when a record already has a field of the type.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrBorrowConflict is returned when a view or mutation conflicts with an
	// outstanding borrow of the same column.
	ErrBorrowConflict = errors.New("borrow conflict")

	// ErrAllocationFailure is the panic value (wrapped) when a column buffer
	// cannot be obtained.
	ErrAllocationFailure = errors.New("allocation failure")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("database closed")
)

// RecordError reports an operation on a record handle that failed.
type RecordError struct {
	Record Record
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("colgo: %s: %v", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// FieldError reports a field operation that failed.
type FieldError struct {
	Record Record
	Type   string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("colgo: %s field %s: %v", e.Record, e.Type, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// BorrowError reports a borrow that could not be acquired.
type BorrowError struct {
	Type   string
	Unique bool
	Err    error
}

func (e *BorrowError) Error() string {
	kind := "shared"
	if e.Unique {
		kind = "unique"
	}
	return fmt.Sprintf("colgo: %s borrow of column %s: %v", kind, e.Type, e.Err)
}

func (e *BorrowError) Unwrap() error { return e.Err }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, record.ErrNoSuchRecord):
		return fmt.Errorf("%w: %w", ErrNoSuchRecord, err)
	case errors.Is(err, column.ErrDuplicateKey), errors.Is(err, typeinfo.ErrDuplicateType):
		return fmt.Errorf("%w: %w", ErrDuplicateField, err)
	case errors.Is(err, column.ErrMissingKey):
		return fmt.Errorf("%w: %w", ErrMissingField, err)
	case errors.Is(err, borrow.ErrConflict):
		return fmt.Errorf("%w: %w", ErrBorrowConflict, err)
	case errors.Is(err, column.ErrAllocationFailure),
		errors.Is(err, mem.ErrAllocationFailed),
		errors.Is(err, resource.ErrMemoryLimitExceeded):
		return fmt.Errorf("%w: %w", ErrAllocationFailure, err)
	case errors.Is(err, column.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}

	return err
}

// abortOnAllocation panics when err is an allocation failure. Running out of
// memory is not recoverable for the store.
func abortOnAllocation(err error) {
	if err != nil && errors.Is(err, ErrAllocationFailure) {
		panic(err)
	}
}
