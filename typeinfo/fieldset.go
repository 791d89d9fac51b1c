package typeinfo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrDuplicateType is returned when a field set names a type twice.
	ErrDuplicateType = errors.New("typeinfo: duplicate type in field set")
	// ErrEmptyFieldSet is returned for a field set without types.
	ErrEmptyFieldSet = errors.New("typeinfo: empty field set")
)

// FieldSet is the canonical ordered form of a set of field types.
type FieldSet struct {
	descs []*Descriptor
	key   uint64
}

// NewFieldSet canonicalizes descs. The input slice is not modified.
func NewFieldSet(descs ...*Descriptor) (FieldSet, error) {
	if len(descs) == 0 {
		return FieldSet{}, ErrEmptyFieldSet
	}

	sorted := slices.Clone(descs)
	slices.SortFunc(sorted, func(a, b *Descriptor) int { return a.Compare(b) })

	for i := 1; i < len(sorted); i++ {
		if sorted[i].id == sorted[i-1].id {
			return FieldSet{}, fmt.Errorf("%w: %s", ErrDuplicateType, sorted[i].Name())
		}
	}

	return FieldSet{descs: sorted, key: hashIDs(sorted)}, nil
}

// FieldSetOf builds the canonical field set of the given reflected types.
func FieldSetOf(types ...reflect.Type) (FieldSet, error) {
	descs := make([]*Descriptor, len(types))
	for i, typ := range types {
		descs[i] = DescribeType(typ)
	}
	return NewFieldSet(descs...)
}

// Key returns the hash of the ordered type-id sequence.
func (fs FieldSet) Key() uint64 { return fs.key }

// Len returns the number of types.
func (fs FieldSet) Len() int { return len(fs.descs) }

// Descriptors returns the canonical sequence. Callers must not modify it.
func (fs FieldSet) Descriptors() []*Descriptor { return fs.descs }

// At returns the i-th descriptor in canonical order.
func (fs FieldSet) At(i int) *Descriptor { return fs.descs[i] }

// Index returns the canonical position of id, or -1.
func (fs FieldSet) Index(id TypeID) int {
	for i, d := range fs.descs {
		if d.id == id {
			return i
		}
	}
	return -1
}

// Contains reports whether id is part of the set.
func (fs FieldSet) Contains(id TypeID) bool {
	return fs.Index(id) >= 0
}

// Equal compares by the ordered type-id sequence.
func (fs FieldSet) Equal(other FieldSet) bool {
	if fs.key != other.key || len(fs.descs) != len(other.descs) {
		return false
	}
	for i := range fs.descs {
		if fs.descs[i].id != other.descs[i].id {
			return false
		}
	}
	return true
}

func (fs FieldSet) String() string {
	names := make([]string, len(fs.descs))
	for i, d := range fs.descs {
		names[i] = d.Name()
	}
	return "(" + strings.Join(names, ", ") + ")"
}

func hashIDs(descs []*Descriptor) uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, d := range descs {
		binary.LittleEndian.PutUint64(buf[:], uint64(d.id))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
