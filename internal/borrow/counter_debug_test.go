//go:build colgo_debug

package borrow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter_UnbalancedReleasePanics(t *testing.T) {
	var c Counter

	assert.Panics(t, func() { c.ReleaseShared() })
	assert.Panics(t, func() { c.ReleaseUnique() })

	c.TryAcquireShared()
	assert.Panics(t, func() { c.ReleaseUnique() })
	c.ReleaseShared()

	c.TryAcquireUnique()
	assert.Panics(t, func() { c.ReleaseShared() })
}
