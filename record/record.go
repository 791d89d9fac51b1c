package record

import (
	"fmt"
	"math"
)

// Sentinel marks an empty meta index.
const Sentinel = math.MaxUint32

// Record is a generation-tagged handle. The zero Record is never live.
type Record struct {
	ID         uint32
	Generation uint32
}

// FromBits unpacks a handle produced by Bits.
func FromBits(bits uint64) Record {
	return Record{ID: uint32(bits), Generation: uint32(bits >> 32)}
}

// Bits packs the handle into a uint64, generation in the high half.
func (r Record) Bits() uint64 {
	return uint64(r.Generation)<<32 | uint64(r.ID)
}

// IsZero reports whether r is the zero handle.
func (r Record) IsZero() bool { return r.Generation == 0 }

// String returns a string representation of the Record.
func (r Record) String() string {
	return fmt.Sprintf("Record(%dv%d)", r.ID, r.Generation)
}

// Meta is the per-id bookkeeping of a Set.
type Meta struct {
	// Generation of the id's current (or next) handle. Never 0.
	Generation uint32
	// Index is the record's row in the set's dense live table, or Sentinel.
	Index uint32
}

func nextGeneration(g uint32) uint32 {
	g++
	if g == 0 {
		return 1
	}
	return g
}
