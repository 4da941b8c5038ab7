package block

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"sync"

	"github.com/arloliu/snapframe/errs"
)

const (
	tagLiteral = 0x00
	tagCopy1   = 0x01
	tagCopy2   = 0x02
	tagCopy4   = 0x03
)

const (
	// MaxWindowSize is the largest input compressed as one window. Match
	// offsets are stored in 16 bits, so windows never exceed it.
	MaxWindowSize = 65536

	minTableSize = 1 << 8
	maxTableSize = 1 << 14

	// inputMargin is the tail of a window that is never searched for matches,
	// which keeps 8-byte loads in bounds.
	inputMargin = 16 - 1

	// minNonLiteralBlockSize is the shortest window worth scanning.
	minNonLiteralBlockSize = 1 + 1 + inputMargin

	hashMul = 0x1e35a7bd
)

// MaxEncodedLen returns the worst-case compressed size of n input bytes.
func MaxEncodedLen(n int) int {
	return 32 + n + n/6
}

// Encoder holds the hash table scratch space of the compressor.
//
// An Encoder may be reused for any number of blocks but must not be used by
// two goroutines at once.
type Encoder struct {
	table [maxTableSize]uint16
}

// NewEncoder allocates an Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

var encoderPool = sync.Pool{
	New: func() any {
		return NewEncoder()
	},
}

// GetEncoder retrieves an Encoder from the shared pool.
func GetEncoder() *Encoder {
	e, _ := encoderPool.Get().(*Encoder)
	return e
}

// PutEncoder returns an Encoder to the shared pool.
func PutEncoder(e *Encoder) {
	if e == nil {
		return
	}
	encoderPool.Put(e)
}

// Encode compresses src and returns the compressed block. The result is
// written into dst when it is large enough, otherwise a new slice is
// allocated.
func Encode(dst, src []byte) ([]byte, error) {
	n := MaxEncodedLen(len(src))
	if cap(dst) < n {
		dst = make([]byte, n)
	} else {
		dst = dst[:n]
	}

	e := GetEncoder()
	defer PutEncoder(e)

	d, err := e.EncodeBlock(dst, src)
	if err != nil {
		return nil, err
	}

	return dst[:d], nil
}

// EncodeBlock compresses src into dst and returns the number of bytes
// written.
//
// Parameters:
//   - dst: destination, at least MaxEncodedLen(len(src)) bytes long
//   - src: input of any length up to math.MaxUint32
//
// Returns:
//   - int: compressed length
//   - error: ErrShortBuffer if dst is below the bound, ErrInvalidChunkSize if
//     src cannot be described by a 32-bit length prefix
func (e *Encoder) EncodeBlock(dst, src []byte) (int, error) {
	if uint64(len(src)) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: input of %d bytes exceeds 32-bit length", errs.ErrInvalidChunkSize, len(src))
	}
	if len(dst) < MaxEncodedLen(len(src)) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", errs.ErrShortBuffer, MaxEncodedLen(len(src)), len(dst))
	}

	d := putVarint(dst, uint32(len(src)))
	for len(src) > 0 {
		window := src
		if len(window) > MaxWindowSize {
			window = window[:MaxWindowSize]
		}
		src = src[len(window):]

		if len(window) < minNonLiteralBlockSize {
			d += emitLiteral(dst[d:], window)
		} else {
			d += e.compressWindow(dst[d:], window)
		}
	}

	return d, nil
}

func hash(v, shift uint32) uint32 {
	return (v * hashMul) >> shift
}

func load32(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i : i+4 : len(b)])
}

func load64(b []byte, i int) uint64 {
	return binary.LittleEndian.Uint64(b[i : i+8 : len(b)])
}

// compressWindow compresses one window of at least minNonLiteralBlockSize
// bytes. Positions stored in the table are relative to the window start.
func (e *Encoder) compressWindow(dst, src []byte) int {
	shift := uint32(32 - 8)
	tableSize := minTableSize
	for tableSize < maxTableSize && tableSize < len(src) {
		tableSize *= 2
		shift--
	}
	table := e.table[:tableSize]
	clear(table)
	mask := uint32(tableSize - 1)

	sLimit := len(src) - inputMargin
	d, nextEmit := 0, 0
	s := 1
	nextHash := hash(load32(src, s), shift)

scan:
	for {
		// skip grows by one per failed lookup; every 32 failures widen the
		// stride by a byte. It starts over after each match.
		skip := 32
		nextS := s
		candidate := 0
		for {
			s = nextS
			stride := skip >> 5
			nextS = s + stride
			skip++
			if nextS > sLimit {
				break scan
			}
			candidate = int(table[nextHash&mask])
			table[nextHash&mask] = uint16(s)
			nextHash = hash(load32(src, nextS), shift)
			if load32(src, s) == load32(src, candidate) {
				break
			}
		}

		d += emitLiteral(dst[d:], src[nextEmit:s])

		// Emit copies for as long as the byte right after a match starts
		// another one.
		for {
			base := s
			s = extendMatch(src, candidate+4, s+4)
			d += emitCopy(dst[d:], base-candidate, s-base)
			nextEmit = s
			if s >= sLimit {
				break scan
			}

			x := load64(src, s-1)
			prevHash := hash(uint32(x), shift)
			table[prevHash&mask] = uint16(s - 1)
			currHash := hash(uint32(x>>8), shift)
			candidate = int(table[currHash&mask])
			table[currHash&mask] = uint16(s)
			if uint32(x>>8) != load32(src, candidate) {
				nextHash = hash(uint32(x>>16), shift)
				s++

				break
			}
		}
	}

	if nextEmit < len(src) {
		d += emitLiteral(dst[d:], src[nextEmit:])
	}

	return d
}

// extendMatch returns the end of the match between src[i:] and src[j:],
// with i < j, bounded by the end of src.
func extendMatch(src []byte, i, j int) int {
	for j+8 <= len(src) {
		if x := load64(src, i) ^ load64(src, j); x != 0 {
			return j + bits.TrailingZeros64(x)>>3
		}
		i, j = i+8, j+8
	}
	for j < len(src) && src[i] == src[j] {
		i, j = i+1, j+1
	}

	return j
}

// emitLiteral writes a literal element for a non-empty lit.
func emitLiteral(dst, lit []byte) int {
	i, n := 0, uint32(len(lit)-1)
	switch {
	case n < 60:
		dst[0] = uint8(n)<<2 | tagLiteral
		i = 1
	case n < 1<<8:
		dst[0] = 60<<2 | tagLiteral
		dst[1] = uint8(n)
		i = 2
	case n < 1<<16:
		dst[0] = 61<<2 | tagLiteral
		dst[1] = uint8(n)
		dst[2] = uint8(n >> 8)
		i = 3
	case n < 1<<24:
		dst[0] = 62<<2 | tagLiteral
		dst[1] = uint8(n)
		dst[2] = uint8(n >> 8)
		dst[3] = uint8(n >> 16)
		i = 4
	default:
		dst[0] = 63<<2 | tagLiteral
		binary.LittleEndian.PutUint32(dst[1:], n)
		i = 5
	}

	return i + copy(dst[i:], lit)
}

// emitCopy writes copy elements for a match of at least 4 bytes. Long
// matches become 64-byte copies, keeping at least 4 bytes for the last one.
func emitCopy(dst []byte, offset, length int) int {
	i := 0
	for length >= 68 {
		i += emitShortCopy(dst[i:], offset, 64)
		length -= 64
	}
	if length > 64 {
		i += emitShortCopy(dst[i:], offset, 60)
		length -= 60
	}

	return i + emitShortCopy(dst[i:], offset, length)
}

// emitShortCopy writes one copy element of 4..64 bytes.
func emitShortCopy(dst []byte, offset, length int) int {
	if length < 12 && offset < 2048 {
		dst[0] = uint8(offset>>8)<<5 | uint8(length-4)<<2 | tagCopy1
		dst[1] = uint8(offset)

		return 2
	}
	dst[0] = uint8(length-1)<<2 | tagCopy2
	dst[1] = uint8(offset)
	dst[2] = uint8(offset >> 8)

	return 3
}
