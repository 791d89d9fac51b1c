// Package record allocates generation-tagged record handles.
//
// A Record is a dense 32-bit id paired with a generation. Ids are reused
// after Free; the generation is bumped on every free so handles held from
// before the reuse are recognized as stale.
//
// Ids can be reserved from many goroutines at once through Reserve and
// ReserveN. Reserved ids become live only after a single-threaded Flush.
// Until then they fail closed: Get reports Sentinel and Free rejects them.
package record
