package colgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    grows *prometheus.CounterVec
//	}
//
//	func (p *PrometheusCollector) RecordGrow(typeName string, oldCap, newCap int) {
//	    p.grows.WithLabelValues(typeName).Inc()
//	}
type MetricsCollector interface {
	// RecordAddField is called after each field insertion.
	// duration is the total time taken, err is nil if successful.
	RecordAddField(duration time.Duration, err error)

	// RecordRemoveField is called after each field removal.
	RecordRemoveField(duration time.Duration, err error)

	// RecordFree is called after each record free. fields is the number of
	// columns the record was removed from.
	RecordFree(fields int, duration time.Duration, err error)

	// RecordGrow is called after a column buffer is reallocated.
	RecordGrow(typeName string, oldCap, newCap int)

	// RecordBorrowConflict is called when a view or mutation is rejected.
	RecordBorrowConflict(typeName string, unique bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAddField(time.Duration, error)    {}
func (NoopMetricsCollector) RecordRemoveField(time.Duration, error) {}
func (NoopMetricsCollector) RecordFree(int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordGrow(string, int, int)            {}
func (NoopMetricsCollector) RecordBorrowConflict(string, bool)      {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount        atomic.Int64
	AddErrors       atomic.Int64
	AddTotalNanos   atomic.Int64
	RemoveCount     atomic.Int64
	RemoveErrors    atomic.Int64
	FreeCount       atomic.Int64
	FreeErrors      atomic.Int64
	FreedFields     atomic.Int64
	GrowCount       atomic.Int64
	GrowSlots       atomic.Int64
	SharedConflicts atomic.Int64
	UniqueConflicts atomic.Int64
}

// RecordAddField implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAddField(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordRemoveField implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemoveField(_ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(fields int, _ time.Duration, err error) {
	b.FreeCount.Add(1)
	if err != nil {
		b.FreeErrors.Add(1)
		return
	}
	b.FreedFields.Add(int64(fields))
}

// RecordGrow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGrow(_ string, oldCap, newCap int) {
	b.GrowCount.Add(1)
	b.GrowSlots.Add(int64(newCap - oldCap))
}

// RecordBorrowConflict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBorrowConflict(_ string, unique bool) {
	if unique {
		b.UniqueConflicts.Add(1)
	} else {
		b.SharedConflicts.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AddCount:        b.AddCount.Load(),
		AddErrors:       b.AddErrors.Load(),
		AddAvgNanos:     b.getAvgAddNanos(),
		RemoveCount:     b.RemoveCount.Load(),
		RemoveErrors:    b.RemoveErrors.Load(),
		FreeCount:       b.FreeCount.Load(),
		FreeErrors:      b.FreeErrors.Load(),
		FreedFields:     b.FreedFields.Load(),
		GrowCount:       b.GrowCount.Load(),
		GrowSlots:       b.GrowSlots.Load(),
		SharedConflicts: b.SharedConflicts.Load(),
		UniqueConflicts: b.UniqueConflicts.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgAddNanos() int64 {
	count := b.AddCount.Load()
	if count == 0 {
		return 0
	}
	return b.AddTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AddCount        int64
	AddErrors       int64
	AddAvgNanos     int64
	RemoveCount     int64
	RemoveErrors    int64
	FreeCount       int64
	FreeErrors      int64
	FreedFields     int64
	GrowCount       int64
	GrowSlots       int64
	SharedConflicts int64
	UniqueConflicts int64
}
