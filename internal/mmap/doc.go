// Package mmap provides anonymous memory mappings for off-heap column buffers.
//
// # Overview
//
// Column buffers for pointer-free field types can live outside the Go heap.
// The garbage collector never scans them and never moves them, which keeps
// large numeric columns out of GC mark work.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes()
//	m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2)
//   - Windows: VirtualAlloc/VirtualFree (Advise is a no-op)
//
// # Safety
//
// Memory returned by MapAnon must never hold Go pointers: the collector does
// not see it. Close is idempotent; callers must not touch Bytes() after it.
package mmap
