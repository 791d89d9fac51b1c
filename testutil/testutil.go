package testutil

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Ops returns n random operation flags; each is true with probability
// removeRate. Workload tests read true as "remove" and false as "add".
func (r *RNG) Ops(n int, removeRate float64) []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]bool, n)
	for i := range ops {
		ops[i] = r.rand.Float64() < removeRate
	}
	return ops
}

// DropCounter counts drops of the Tracked values it creates.
// It is safe for concurrent use.
type DropCounter struct {
	n atomic.Int64
}

// New returns a Tracked value reporting to c.
func (c *DropCounter) New(id int) Tracked {
	return Tracked{ID: id, counter: c}
}

// Count returns the number of drops so far.
func (c *DropCounter) Count() int {
	return int(c.n.Load())
}

// Tracked is a field type whose drops are counted.
type Tracked struct {
	ID      int
	counter *DropCounter
}

// Drop implements typeinfo.Dropper.
func (t *Tracked) Drop() {
	if t.counter != nil {
		t.counter.n.Add(1)
	}
}
