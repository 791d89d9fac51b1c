package borrow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_SharedExcludesUnique(t *testing.T) {
	var c Counter

	require.True(t, c.TryAcquireShared())
	require.True(t, c.TryAcquireShared())
	assert.Equal(t, 2, c.Shared())

	assert.False(t, c.TryAcquireUnique())

	c.ReleaseShared()
	assert.False(t, c.TryAcquireUnique())

	c.ReleaseShared()
	assert.True(t, c.IsFree())
	assert.True(t, c.TryAcquireUnique())
}

func TestCounter_UniqueExcludesAll(t *testing.T) {
	var c Counter

	require.True(t, c.TryAcquireUnique())
	assert.True(t, c.IsUnique())
	assert.Equal(t, 0, c.Shared())

	assert.False(t, c.TryAcquireShared())
	assert.False(t, c.TryAcquireUnique())
	assert.True(t, c.IsUnique(), "failed acquisitions leave state untouched")

	c.ReleaseUnique()
	assert.True(t, c.IsFree())
	assert.True(t, c.TryAcquireShared())
}

func TestCounter_Saturation(t *testing.T) {
	var c Counter
	c.state.Store(sharedMask - 1)

	require.True(t, c.TryAcquireShared())
	assert.Equal(t, int(MaxShared), c.Shared())
	assert.False(t, c.TryAcquireShared())
	assert.Equal(t, int(MaxShared), c.Shared())
	assert.False(t, c.IsUnique())
}

func TestCounter_ConcurrentShared(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if c.TryAcquireShared() {
					c.ReleaseShared()
				}
			}
		}()
	}
	wg.Wait()

	assert.True(t, c.IsFree())
}

func TestCounter_Acquire(t *testing.T) {
	var c Counter

	require.NoError(t, c.Acquire(false))
	assert.ErrorIs(t, c.Acquire(true), ErrConflict)
	c.Release(false)

	require.NoError(t, c.Acquire(true))
	assert.ErrorIs(t, c.Acquire(false), ErrConflict)
	c.Release(true)
	assert.True(t, c.IsFree())
}
