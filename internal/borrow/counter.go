package borrow

import (
	"errors"
	"sync/atomic"
)

// ErrConflict is returned when a borrow cannot be acquired.
var ErrConflict = errors.New("borrow conflict")

const (
	uniqueBit  uint32 = 1 << 31
	sharedMask uint32 = uniqueBit - 1
	// MaxShared is the number of shared borrows a counter can hold.
	MaxShared = sharedMask
)

// Counter is an atomic many-readers-xor-one-writer counter.
// The zero value is an unborrowed counter.
type Counter struct {
	state atomic.Uint32
}

// TryAcquireShared takes a shared borrow. It fails if a unique borrow is
// held or the shared count is saturated.
func (c *Counter) TryAcquireShared() bool {
	for {
		s := c.state.Load()
		if s&uniqueBit != 0 || s&sharedMask == sharedMask {
			return false
		}
		if c.state.CompareAndSwap(s, s+1) {
			return true
		}
	}
}

// TryAcquireUnique takes the unique borrow. It succeeds only when nothing
// is borrowed.
func (c *Counter) TryAcquireUnique() bool {
	return c.state.CompareAndSwap(0, uniqueBit)
}

// ReleaseShared returns a shared borrow.
func (c *Counter) ReleaseShared() {
	for {
		s := c.state.Load()
		if s&uniqueBit != 0 || s&sharedMask == 0 {
			assertf("borrow: shared release without shared borrow (state=%#x)", s)
			return
		}
		if c.state.CompareAndSwap(s, s-1) {
			return
		}
	}
}

// ReleaseUnique returns the unique borrow.
func (c *Counter) ReleaseUnique() {
	if !c.state.CompareAndSwap(uniqueBit, 0) {
		assertf("borrow: unique release without unique borrow (state=%#x)", c.state.Load())
	}
}

// Shared returns the number of outstanding shared borrows.
func (c *Counter) Shared() int {
	s := c.state.Load()
	if s&uniqueBit != 0 {
		return 0
	}
	return int(s & sharedMask)
}

// IsUnique reports whether the unique borrow is held.
func (c *Counter) IsUnique() bool {
	return c.state.Load()&uniqueBit != 0
}

// IsFree reports whether nothing is borrowed.
func (c *Counter) IsFree() bool {
	return c.state.Load() == 0
}

// Acquire takes a unique or shared borrow, returning ErrConflict when it
// cannot.
func (c *Counter) Acquire(unique bool) error {
	ok := false
	if unique {
		ok = c.TryAcquireUnique()
	} else {
		ok = c.TryAcquireShared()
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// Release returns a borrow taken by Acquire.
func (c *Counter) Release(unique bool) {
	if unique {
		c.ReleaseUnique()
	} else {
		c.ReleaseShared()
	}
}
