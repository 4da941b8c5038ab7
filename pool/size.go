package pool

import (
	"fmt"
	"math"
	"math/bits"
)

const (
	// MinBucketSize is the smallest bucket a CachingPool hands out.
	MinBucketSize = 4 << 10

	// MaxRegionSize is the largest region a pool can hand out. Bucket
	// rounding saturates here.
	MaxRegionSize = math.MaxInt32
)

// roundSize maps a requested size to its bucket. Buckets are MinBucketSize up
// to 4 KiB; above that each power-of-two range (2^(k-1), 2^k] is split into 16
// equal steps, so rounding wastes at most 1/16 of the request.
func roundSize(size int) int {
	if size < 0 || size > MaxRegionSize {
		panic(fmt.Sprintf("pool: invalid region size %d", size))
	}
	if size <= MinBucketSize {
		return MinBucketSize
	}

	k := bits.Len(uint(size - 1))
	step := 1 << (k - 5)
	rounded := (size + step - 1) &^ (step - 1)
	if rounded > MaxRegionSize {
		return MaxRegionSize
	}

	return rounded
}

// isBucketSize reports whether n is a size roundSize can produce.
func isBucketSize(n int) bool {
	return n >= MinBucketSize && n <= MaxRegionSize && roundSize(n) == n
}
