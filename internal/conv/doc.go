// Package conv provides checked integer conversions and size arithmetic.
//
// Record ids and slot indices are 32-bit while Go lengths are int. Column
// buffers are sized as count*elemSize bytes, which must not wrap.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices bounded by a column length), use direct type casts instead.
package conv
