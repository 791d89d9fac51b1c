// Package column implements the contiguous per-type storage of the store.
//
// A Column holds values of exactly one field type in a single raw buffer,
// a parallel array of owning record ids (keys), and a sparse index from
// record id to slot. For every slot i < Len: the value at i is initialized
// and Slot(Keys()[i]) == i.
//
// # Growth
//
// When full, capacity doubles but never grows by less than MinGrowth.
// Capacity never shrinks. Growth is all-or-nothing: a failed allocation
// leaves the column exactly as it was.
//
// # Zero-sized types
//
// Zero-sized values need no storage. The buffer pointer is the descriptor's
// sentinel; nothing is allocated or freed, while keys grow normally.
package column
