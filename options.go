package colgo

import (
	"log/slog"

	"github.com/hupe1980/colgo/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	memoryLimit      int64
	controller       *resource.Controller
	offHeap          bool
	initialCapacity  int
}

// Option configures a Database.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &colgo.BasicMetricsCollector{}
//	db := colgo.New(colgo.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Adds: %d, Grows: %d\n", stats.AddCount, stats.GrowCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := colgo.NewJSONLogger(slog.LevelDebug)
//	db := colgo.New(colgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMemoryLimit caps the bytes all column buffers may hold together.
// A column that would exceed the limit cannot grow, which is fatal.
// Ignored when WithResourceController is also given.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithResourceController charges column buffers to rc, which may be shared
// between databases.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithOffHeap places the buffers of pointer-free field types in anonymous
// memory mappings outside the Go heap. Field types containing pointers stay
// on the heap regardless.
func WithOffHeap() Option {
	return func(o *options) {
		o.offHeap = true
	}
}

// WithInitialCapacity sizes every new column for n values up front.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
