package block

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/snapframe/errs"
)

// maxExpansion bounds the decoded size per compressed byte: the densest
// element is a 3-byte copy of 64 bytes.
const maxExpansion = 22

// opTable describes every tag byte: element length in bits 0-7, copy offset
// bits 8-10 in bits 8-10, and the trailer byte count in bits 11-13. For
// long literals the trailer holds length-1 and the stored length is 1.
var opTable = buildOpTable()

func buildOpTable() [256]uint16 {
	var t [256]uint16
	for b := range 256 {
		m := b >> 2
		switch b & 0x03 {
		case tagLiteral:
			if m < 60 {
				t[b] = uint16(m + 1)
			} else {
				t[b] = 1 | uint16(m-59)<<11
			}
		case tagCopy1:
			t[b] = uint16(4+(m&0x07)) | uint16(b>>5)<<8 | 1<<11
		case tagCopy2:
			t[b] = uint16(m+1) | 2<<11
		case tagCopy4:
			t[b] = uint16(m+1) | 4<<11
		}
	}

	return t
}

// DecodedLen returns the uncompressed length recorded in a block.
func DecodedLen(src []byte) (int, error) {
	v, _, err := readVarint(src)
	if err != nil {
		return 0, err
	}
	if uint64(v) > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w: declared length %d does not fit in int", errs.ErrInvalidChunkSize, v)
	}

	return int(v), nil
}

// Decode decompresses src. The result is written into dst when it is large
// enough, otherwise a new slice is allocated.
//
// Declared lengths that src could not possibly expand to are rejected before
// anything is allocated.
func Decode(dst, src []byte) ([]byte, error) {
	v, n, err := readVarint(src)
	if err != nil {
		return nil, err
	}
	if uint64(v) > uint64(len(src)-n)*maxExpansion || uint64(v) > uint64(math.MaxInt) {
		return nil, fmt.Errorf("%w: declared length %d for a %d byte payload",
			errs.ErrInvalidChunkSize, v, len(src)-n)
	}

	// A zero-length block still decodes to a non-nil slice.
	if dst == nil || cap(dst) < int(v) {
		dst = make([]byte, v)
	} else {
		dst = dst[:v]
	}

	d, err := decodeElements(dst, src[n:])
	if err != nil {
		return nil, err
	}
	if d != len(dst) {
		return nil, fmt.Errorf("%w: produced %d bytes, declared %d", errs.ErrInvalidChunkSize, d, len(dst))
	}

	return dst, nil
}

// DecodeBlock decompresses src into dst and returns the number of bytes
// written, which always equals the length recorded in src.
//
// Returns:
//   - int: decoded length
//   - error: ErrParsing for malformed input, ErrInvalidChunkSize if the
//     declared length exceeds len(dst) or does not match the produced length
func DecodeBlock(dst, src []byte) (int, error) {
	v, n, err := readVarint(src)
	if err != nil {
		return 0, err
	}
	if uint64(v) > uint64(len(dst)) {
		return 0, fmt.Errorf("%w: declared length %d exceeds destination capacity %d",
			errs.ErrInvalidChunkSize, v, len(dst))
	}

	d, err := decodeElements(dst[:v], src[n:])
	if err != nil {
		return 0, err
	}
	if d != int(v) {
		return 0, fmt.Errorf("%w: produced %d bytes, declared %d", errs.ErrInvalidChunkSize, d, v)
	}

	return d, nil
}

// Validate reports whether src is a well-formed block without producing
// output.
func Validate(src []byte) error {
	v, n, err := readVarint(src)
	if err != nil {
		return err
	}
	if uint64(v) > uint64(math.MaxInt) {
		return fmt.Errorf("%w: declared length %d does not fit in int", errs.ErrInvalidChunkSize, v)
	}

	d, err := scanElements(int(v), src[n:])
	if err != nil {
		return err
	}
	if d != int(v) {
		return fmt.Errorf("%w: produced %d bytes, declared %d", errs.ErrInvalidChunkSize, d, v)
	}

	return nil
}

// element is one parsed tag. For literals, length bytes start at next; for
// copies, next is the following tag.
type element struct {
	literal bool
	length  int
	offset  uint64
	next    int
}

func parseElement(src []byte, s int) (element, error) {
	op := src[s]
	entry := opTable[op]
	s++

	trailerLen := int(entry >> 11)
	if trailerLen > len(src)-s {
		return element{}, fmt.Errorf("%w: truncated trailer at %d", errs.ErrParsing, s-1)
	}
	trailer := readTrailer(src[s:], trailerLen)
	s += trailerLen

	if op&0x03 == tagLiteral {
		n := uint64(entry&0xff) + trailer
		if n > uint64(len(src)-s) {
			return element{}, fmt.Errorf("%w: literal of %d bytes overruns input at %d", errs.ErrParsing, n, s)
		}

		return element{literal: true, length: int(n), next: s}, nil
	}

	return element{length: int(entry & 0xff), offset: uint64(entry&0x700) + trailer, next: s}, nil
}

func readTrailer(b []byte, n int) uint64 {
	switch n {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 3:
		return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return 0
	}
}

// decodeElements expands src into dst and returns the bytes produced. It
// never reads past src or writes past len(dst).
func decodeElements(dst, src []byte) (int, error) {
	d, s := 0, 0
	for s < len(src) {
		el, err := parseElement(src, s)
		if err != nil {
			return d, err
		}

		if el.length > len(dst)-d {
			return d, fmt.Errorf("%w: element of %d bytes overruns output at %d", errs.ErrParsing, el.length, d)
		}

		if el.literal {
			copyLiteral(dst[d:], src[el.next:], el.length)
			d += el.length
			s = el.next + el.length

			continue
		}

		if el.offset == 0 || el.offset > uint64(d) {
			return d, fmt.Errorf("%w: copy offset %d at output position %d", errs.ErrParsing, el.offset, d)
		}
		forwardCopy(dst, d, int(el.offset), el.length)
		d += el.length
		s = el.next
	}

	return d, nil
}

// scanElements performs the checks of decodeElements against an output of
// dstLen bytes without writing anything.
func scanElements(dstLen int, src []byte) (int, error) {
	d, s := 0, 0
	for s < len(src) {
		el, err := parseElement(src, s)
		if err != nil {
			return d, err
		}
		if el.length > dstLen-d {
			return d, fmt.Errorf("%w: element of %d bytes overruns output at %d", errs.ErrParsing, el.length, d)
		}

		if el.literal {
			s = el.next + el.length
		} else {
			if el.offset == 0 || el.offset > uint64(d) {
				return d, fmt.Errorf("%w: copy offset %d at output position %d", errs.ErrParsing, el.offset, d)
			}
			s = el.next
		}
		d += el.length
	}

	return d, nil
}

// copyLiteral copies n bytes. Short literals are moved as one 16-byte block
// when both sides have room, overwriting bytes that later elements replace.
func copyLiteral(dst, src []byte, n int) {
	if n <= 16 && len(dst) >= 16 && len(src) >= 16 {
		copy(dst[:16], src[:16])
		return
	}
	copy(dst[:n], src[:n])
}

// forwardCopy appends length bytes starting offset bytes back from d. The
// ranges overlap whenever offset < length.
func forwardCopy(dst []byte, d, offset, length int) {
	end := d + length
	from := d - offset
	if offset >= length {
		copy(dst[d:end], dst[from:from+length])
		return
	}

	if offset < 8 {
		// Double the repeating pattern in place until the copy is done.
		for pos := d; pos < end; {
			pos += copy(dst[pos:end], dst[from:pos])
		}

		return
	}

	for pos := d; pos < end; {
		pos += copy(dst[pos:end], dst[pos-offset:pos])
	}
}
