package record

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// LiveBitmap is the set of live record ids.
type LiveBitmap struct {
	rb *roaring.Bitmap
}

func newLiveBitmap() *LiveBitmap {
	return &LiveBitmap{rb: roaring.New()}
}

// Contains reports whether id is live.
func (b *LiveBitmap) Contains(id uint32) bool {
	return b.rb.Contains(id)
}

// Cardinality returns the number of live ids.
func (b *LiveBitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Iterator yields live ids in ascending order.
func (b *LiveBitmap) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// GetSizeInBytes returns the size of the bitmap in bytes.
func (b *LiveBitmap) GetSizeInBytes() uint64 {
	return b.rb.GetSizeInBytes()
}

func (b *LiveBitmap) add(id uint32)    { b.rb.Add(id) }
func (b *LiveBitmap) remove(id uint32) { b.rb.Remove(id) }
func (b *LiveBitmap) clear()           { b.rb.Clear() }
