package typeinfo

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldSet_Canonical(t *testing.T) {
	a, err := NewFieldSet(Describe[health](), Describe[position](), Describe[uint8]())
	require.NoError(t, err)
	b, err := NewFieldSet(Describe[uint8](), Describe[health](), Describe[position]())
	require.NoError(t, err)
	c, err := NewFieldSet(Describe[position](), Describe[uint8](), Describe[health]())
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(c))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), c.Key())

	// Descending alignment.
	require.Equal(t, 3, a.Len())
	assert.Same(t, Describe[position](), a.At(0))
	assert.Same(t, Describe[health](), a.At(1))
	assert.Same(t, Describe[uint8](), a.At(2))
	assert.Equal(t, "(typeinfo.position, typeinfo.health, uint8)", a.String())
}

func TestFieldSet_Distinct(t *testing.T) {
	a, err := NewFieldSet(Describe[health](), Describe[position]())
	require.NoError(t, err)
	b, err := NewFieldSet(Describe[health](), Describe[name]())
	require.NoError(t, err)
	c, err := NewFieldSet(Describe[health]())
	require.NoError(t, err)

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Key(), b.Key())
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestFieldSet_Errors(t *testing.T) {
	_, err := NewFieldSet()
	assert.ErrorIs(t, err, ErrEmptyFieldSet)

	_, err = NewFieldSet(Describe[health](), Describe[position](), Describe[health]())
	assert.ErrorIs(t, err, ErrDuplicateType)
}

func TestFieldSet_InputUntouched(t *testing.T) {
	in := []*Descriptor{Describe[uint8](), Describe[position]()}
	_, err := NewFieldSet(in...)
	require.NoError(t, err)
	assert.Same(t, Describe[uint8](), in[0])
}

func TestFieldSet_Lookup(t *testing.T) {
	fs, err := FieldSetOf(reflect.TypeFor[health](), reflect.TypeFor[position]())
	require.NoError(t, err)

	assert.Equal(t, 0, fs.Index(Describe[position]().ID()))
	assert.Equal(t, 1, fs.Index(Describe[health]().ID()))
	assert.Equal(t, -1, fs.Index(Describe[name]().ID()))
	assert.True(t, fs.Contains(Describe[health]().ID()))
	assert.False(t, fs.Contains(Describe[name]().ID()))
	assert.Len(t, fs.Descriptors(), 2)
}
