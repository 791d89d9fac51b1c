// Package testutil provides testing utilities for colgo.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Workloads
//
//	rng := testutil.NewRNG(seed)
//	ops := rng.Ops(1000, 0.3) // true = remove, false = add
//
// # Drop Accounting
//
//	var drops testutil.DropCounter
//	colgo.MustAddField(db, r, drops.New(1))
//	db.Close()
//	drops.Count() // 1
package testutil
