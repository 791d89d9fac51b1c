package mmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapAnon(t *testing.T) {
	m, err := MapAnon(4096)
	require.NoError(t, err)
	defer m.Close()

	assert.Equal(t, 4096, m.Size())
	assert.NotNil(t, m.Pointer())

	buf := m.Bytes()
	require.Len(t, buf, 4096)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, b)
		}
	}

	buf[0] = 0xAB
	buf[4095] = 0xCD
	assert.Equal(t, byte(0xAB), m.Bytes()[0])
	assert.Equal(t, byte(0xCD), m.Bytes()[4095])

	assert.NoError(t, m.Advise(AccessSequential))
	assert.NoError(t, m.Advise(AccessDontNeed))
}

func TestMapAnon_InvalidSize(t *testing.T) {
	_, err := MapAnon(0)
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = MapAnon(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestMapping_CloseIdempotent(t *testing.T) {
	m, err := MapAnon(128)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.Nil(t, m.Bytes())
	assert.Nil(t, m.Pointer())
	assert.ErrorIs(t, m.Advise(AccessDontNeed), ErrClosed)
}
