// Package borrow provides the dynamic borrow counter guarding a column.
//
// A Counter admits any number of shared borrows or exactly one unique
// borrow. Acquisition never blocks: it either succeeds or reports a
// conflict. Unbalanced releases are programmer errors; they panic when the
// module is built with the colgo_debug tag and are ignored otherwise.
package borrow
