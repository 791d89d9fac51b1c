// Package mem provides the raw buffer allocators behind columns.
//
// # Allocators
//
//   - Heap: Go heap buffers. Pointer-free types get 64-byte aligned byte
//     storage; types with pointers get typed storage so the collector scans
//     them.
//   - OffHeap: anonymous mmap for pointer-free types, Heap for the rest.
//
// Every allocation is charged to an optional resource.Controller before
// memory is obtained and refunded on Free.
package mem
