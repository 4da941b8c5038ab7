package block

import (
	"fmt"
	"math"

	"github.com/arloliu/snapframe/errs"
)

// maxVarintLen is the longest varint a block may start with.
const maxVarintLen = 5

// putVarint writes v to dst and returns the number of bytes written.
func putVarint(dst []byte, v uint32) int {
	i := 0
	for v >= 0x80 {
		dst[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	dst[i] = byte(v)

	return i + 1
}

// readVarint decodes the length prefix of a block.
func readVarint(src []byte) (uint32, int, error) {
	var v uint64
	for i := 0; i < maxVarintLen; i++ {
		if i >= len(src) {
			return 0, 0, fmt.Errorf("%w: truncated length prefix", errs.ErrParsing)
		}
		b := src[i]
		v |= uint64(b&0x7f) << (7 * i)
		if b < 0x80 {
			if v > math.MaxUint32 {
				return 0, 0, fmt.Errorf("%w: length prefix overflows 32 bits", errs.ErrParsing)
			}

			return uint32(v), i + 1, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: length prefix longer than %d bytes", errs.ErrParsing, maxVarintLen)
}
