package conv

import (
	"fmt"
	"math"
	"math/bits"
)

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (negative)", v)
	}
	// On 64-bit systems, int can exceed uint32 max; on 32-bit, this is always false
	if uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to uint32 (too large)", v)
	}
	return uint32(v), nil
}

// MulSize returns count*size as a byte length, failing on negative inputs
// or when the product does not fit in an int.
func MulSize(count, size int) (int, error) {
	if count < 0 || size < 0 {
		return 0, fmt.Errorf("size overflow: negative operand (%d * %d)", count, size)
	}
	hi, lo := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || lo > uint64(math.MaxInt) {
		return 0, fmt.Errorf("size overflow: %d * %d exceeds int", count, size)
	}
	return int(lo), nil
}
