package record

import (
	"errors"
	"fmt"
	"iter"
	"sync/atomic"
)

// ErrNoSuchRecord is returned for stale, freed, or unflushed handles.
var ErrNoSuchRecord = errors.New("record: no such record")

// Set allocates and frees record handles.
//
// Allocate, Free, Flush and Clear require exclusive access. Reserve and
// ReserveN may run concurrently with each other and with the read-only
// methods.
type Set struct {
	meta  []Meta
	dense []uint32 // live ids; meta[dense[i]].Index == i
	free  []uint32 // LIFO
	live  *LiveBitmap

	// freeCursor counts the free-list entries not yet reserved. A negative
	// value -n means n fresh ids beyond len(meta) are reserved.
	freeCursor atomic.Int64
}

// NewSet creates an empty record set.
func NewSet() *Set {
	return &Set{live: newLiveBitmap()}
}

// Len returns the number of live records.
func (s *Set) Len() int { return len(s.dense) }

// Allocate returns a fresh live handle, reusing freed ids first.
func (s *Set) Allocate() Record {
	s.Flush()

	var id uint32
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		id = uint32(len(s.meta))
		s.meta = append(s.meta, Meta{Generation: 1, Index: Sentinel})
	}
	s.activate(id)
	s.freeCursor.Store(int64(len(s.free)))

	return Record{ID: id, Generation: s.meta[id].Generation}
}

// Reserve reserves a handle without exclusive access. The handle becomes
// live on the next Flush.
func (s *Set) Reserve() Record {
	before := s.freeCursor.Add(-1) + 1
	return s.reserved(before)
}

// ReserveN reserves n handles at once.
func (s *Set) ReserveN(n int) []Record {
	if n <= 0 {
		return nil
	}
	before := s.freeCursor.Add(-int64(n)) + int64(n)
	out := make([]Record, n)
	for i := range out {
		out[i] = s.reserved(before - int64(i))
	}
	return out
}

func (s *Set) reserved(cursor int64) Record {
	if cursor > 0 {
		id := s.free[cursor-1]
		return Record{ID: id, Generation: s.meta[id].Generation}
	}
	return Record{ID: uint32(int64(len(s.meta)) - cursor), Generation: 1}
}

// NeedsFlush reports whether reserved handles are waiting for Flush.
func (s *Set) NeedsFlush() bool {
	return s.freeCursor.Load() != int64(len(s.free))
}

// Flush makes every reserved handle live and returns how many there were.
func (s *Set) Flush() int {
	cursor := s.freeCursor.Load()
	if cursor == int64(len(s.free)) {
		return 0
	}

	n := 0
	if cursor < 0 {
		for i := int64(0); i < -cursor; i++ {
			id := uint32(len(s.meta))
			s.meta = append(s.meta, Meta{Generation: 1, Index: Sentinel})
			s.activate(id)
			n++
		}
	}

	start := max(cursor, 0)
	for _, id := range s.free[start:] {
		s.activate(id)
		n++
	}
	s.free = s.free[:start]
	s.freeCursor.Store(int64(len(s.free)))
	return n
}

func (s *Set) activate(id uint32) {
	s.meta[id].Index = uint32(len(s.dense))
	s.dense = append(s.dense, id)
	s.live.add(id)
}

// Free invalidates r and returns its previous index. Reserved handles that
// were not flushed yet are rejected; other pending reservations are flushed.
func (s *Set) Free(r Record) (uint32, error) {
	if !s.Contains(r) || !s.live.Contains(r.ID) {
		return Sentinel, fmt.Errorf("%w: %s", ErrNoSuchRecord, r)
	}
	s.Flush()

	m := &s.meta[r.ID]
	row := m.Index
	last := uint32(len(s.dense) - 1)
	if row != last {
		moved := s.dense[last]
		s.dense[row] = moved
		s.meta[moved].Index = row
	}
	s.dense = s.dense[:last]

	m.Index = Sentinel
	m.Generation = nextGeneration(m.Generation)
	s.free = append(s.free, r.ID)
	s.live.remove(r.ID)
	s.freeCursor.Store(int64(len(s.free)))

	return row, nil
}

// MustFree is like Free but panics on a stale handle.
func (s *Set) MustFree(r Record) uint32 {
	idx, err := s.Free(r)
	if err != nil {
		panic(err)
	}
	return idx
}

// Get validates r and returns its index. A handle that is reserved but not
// yet flushed yields Sentinel without error.
func (s *Set) Get(r Record) (uint32, error) {
	if int(r.ID) >= len(s.meta) {
		if s.isPendingFresh(r) {
			return Sentinel, nil
		}
		return Sentinel, fmt.Errorf("%w: %s", ErrNoSuchRecord, r)
	}
	m := s.meta[r.ID]
	if m.Generation != r.Generation {
		return Sentinel, fmt.Errorf("%w: %s", ErrNoSuchRecord, r)
	}
	return m.Index, nil
}

func (s *Set) isPendingFresh(r Record) bool {
	cursor := s.freeCursor.Load()
	if cursor >= 0 || r.Generation != 1 {
		return false
	}
	return int64(r.ID) < int64(len(s.meta))-cursor
}

// Contains reports whether r is live.
func (s *Set) Contains(r Record) bool {
	if int(r.ID) >= len(s.meta) {
		return false
	}
	m := s.meta[r.ID]
	return m.Generation == r.Generation && m.Index != Sentinel
}

// Meta returns the bookkeeping for id.
func (s *Set) Meta(id uint32) (Meta, bool) {
	if int(id) >= len(s.meta) {
		return Meta{}, false
	}
	return s.meta[id], true
}

// Live returns the live-id bitmap. The caller must not retain it across
// mutations.
func (s *Set) Live() *LiveBitmap { return s.live }

// Records yields the live handles in ascending id order.
func (s *Set) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for id := range s.live.Iterator() {
			if !yield(Record{ID: id, Generation: s.meta[id].Generation}) {
				return
			}
		}
	}
}

// FreeAll flushes pending reservations, then frees every live record. Each
// id keeps its generation history, so handles issued before FreeAll stay
// invalid after their ids are reused.
func (s *Set) FreeAll() int {
	s.Flush()
	n := len(s.dense)
	for i := n - 1; i >= 0; i-- {
		id := s.dense[i]
		m := &s.meta[id]
		m.Index = Sentinel
		m.Generation = nextGeneration(m.Generation)
		s.free = append(s.free, id)
	}
	s.dense = s.dense[:0]
	s.live.clear()
	s.freeCursor.Store(int64(len(s.free)))
	return n
}

// Clear forgets every record, including pending reservations and
// generations. Only use it when no handle will be presented again.
func (s *Set) Clear() {
	s.meta = nil
	s.dense = nil
	s.free = nil
	s.live.clear()
	s.freeCursor.Store(0)
}
