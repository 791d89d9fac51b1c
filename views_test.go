package colgo

import (
	"testing"

	"github.com/hupe1980/colgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViews_Exclusivity(t *testing.T) {
	db := New()
	defer db.Close()
	r := db.Allocate()
	MustAddField(db, r, Health{1})

	tests := []struct {
		name   string
		hold   func() func()
		shared bool
		unique bool
	}{
		{"ColumnRef", func() func() { return MustColumn[Health](db).Release }, true, false},
		{"FieldRef", func() func() { return MustField[Health](db, r).Release }, true, false},
		{"ColumnMutRef", func() func() { return MustColumnMut[Health](db).Release }, false, false},
		{"FieldMutRef", func() func() { return MustFieldMut[Health](db, r).Release }, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := tt.hold()

			_, err := Column[Health](db)
			if tt.shared {
				assert.NoError(t, err)
				MustColumn[Health](db).Release()
			} else {
				assert.ErrorIs(t, err, ErrBorrowConflict)
			}

			_, err = ColumnMut[Health](db)
			assert.ErrorIs(t, err, ErrBorrowConflict)

			assert.ErrorIs(t, AddField(db, db.Allocate(), Health{}), ErrBorrowConflict)
			assert.ErrorIs(t, RemoveField[Health](db, r), ErrBorrowConflict)
			assert.ErrorIs(t, ReplaceField(db, r, Health{9}), ErrBorrowConflict)

			release()
			release()

			v, err := ColumnMut[Health](db)
			require.NoError(t, err)
			v.Release()
		})
	}
}

func TestViews_BorrowErrorContext(t *testing.T) {
	db := New()
	defer db.Close()
	MustAddField(db, db.Allocate(), Health{1})

	v := MustColumnMut[Health](db)
	defer v.Release()

	_, err := Column[Health](db)
	var be *BorrowError
	require.ErrorAs(t, err, &be)
	assert.False(t, be.Unique)
	assert.Equal(t, "colgo.Health", be.Type)
	assert.Contains(t, err.Error(), "shared borrow")

	assert.Panics(t, func() { MustColumn[Health](db) })
	assert.Panics(t, func() { MustColumnMut[Health](db) })
}

func TestViews_OtherColumnsIndependent(t *testing.T) {
	db := New()
	defer db.Close()
	r := db.Allocate()
	MustAddField(db, r, Health{1})

	v := MustColumnMut[Health](db)
	defer v.Release()

	require.NoError(t, AddField(db, r, Armor{2}))
	a, err := Get[Armor](db, r)
	require.NoError(t, err)
	assert.Equal(t, float32(2), a.Value)
}

func TestViews_EmptyColumn(t *testing.T) {
	db := New()
	defer db.Close()

	v, err := Column[Name](db)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Len())
	assert.Nil(t, v.Slice())
	v.Release()

	called := false
	require.NoError(t, UpdateColumn(db, func(ns []Name) {
		called = true
		assert.Empty(t, ns)
	}))
	assert.True(t, called)
}

func TestViews_ColumnSlices(t *testing.T) {
	db := New()
	defer db.Close()

	rs := make([]Record, 5)
	for i := range rs {
		rs[i] = db.Allocate()
		MustAddField(db, rs[i], Health{float32(i)})
	}

	require.NoError(t, UpdateColumn(db, func(hs []Health) {
		assert.Equal(t, len(hs), cap(hs))
		for i := range hs {
			hs[i].Value *= 10
		}
	}))

	v := MustColumn[Health](db)
	i := 0
	for id, h := range v.All() {
		assert.Equal(t, rs[i].ID, id)
		assert.Equal(t, float32(i*10), h.Value)
		i++
	}
	assert.Equal(t, 5, i)
	v.Release()
	assert.Nil(t, v.Slice(), "released views are empty")
}

func TestViews_Field(t *testing.T) {
	db := New()
	defer db.Close()
	r := db.Allocate()
	other := db.Allocate()
	MustAddField(db, r, Name{"a"})

	ref := MustField[Name](db, r)
	assert.Equal(t, "a", ref.Get().Text)
	assert.Equal(t, Name{"a"}, ref.Value())
	ref.Release()

	_, err := Field[Name](db, other)
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = Field[Armor](db, r)
	assert.ErrorIs(t, err, ErrMissingField)
	assert.Panics(t, func() { MustField[Armor](db, r) })
	assert.Panics(t, func() { MustFieldMut[Armor](db, r) })

	require.NoError(t, UpdateField(db, r, func(n *Name) { n.Text = "b" }))
	got, err := Get[Name](db, r)
	require.NoError(t, err)
	assert.Equal(t, "b", got.Text)

	_, err = Get[Armor](db, r)
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestViews_FieldMutSetDrops(t *testing.T) {
	var drops testutil.DropCounter
	db := New()
	defer db.Close()
	r := db.Allocate()
	MustAddField(db, r, drops.New(1))

	m := MustFieldMut[testutil.Tracked](db, r)
	m.Set(drops.New(2))
	assert.Equal(t, 2, m.Value().ID)
	assert.Equal(t, 2, m.Get().ID)
	m.Release()

	assert.Equal(t, 1, drops.Count())
}

func TestViews_ConcurrentSharedReaders(t *testing.T) {
	db := New()
	defer db.Close()
	for i := 0; i < 10; i++ {
		MustAddField(db, db.Allocate(), Health{float32(i)})
	}

	done := make(chan float32)
	for w := 0; w < 4; w++ {
		go func() {
			var sum float32
			_ = ViewColumn(db, func(hs []Health) {
				for _, h := range hs {
					sum += h.Value
				}
			})
			done <- sum
		}()
	}
	for w := 0; w < 4; w++ {
		assert.Equal(t, float32(45), <-done)
	}
	assert.Equal(t, 0, db.Stats().Columns[0].Shared)
}
