// Package typeinfo describes field types at run time.
//
// A Descriptor is the erased form of a Go type as the column store needs it:
// a stable identity, the memory layout, and a small function table that
// moves, copies, allocates and drops values given only raw pointers. There
// is exactly one Descriptor per type per process.
//
//	health := typeinfo.Describe[Health]()
//	health.ID()     // stable 64-bit identity
//	health.Layout() // {Size: 4, Align: 4}
//
// # Drop
//
// Go has no destructors. A field type that owns something beyond memory
// implements Dropper on its pointer receiver; the column calls Drop exactly
// once for every value it stored, then zeroes the slot.
//
// # Field sets
//
// A FieldSet is the canonical, order-independent form of several types that
// are added together. Descriptors are ordered by descending alignment, then
// ascending type id, so permutations of the same types produce equal keys.
package typeinfo
