package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/format"
)

// lz4MaxExpansion is the largest ratio an LZ4 block can expand by.
const lz4MaxExpansion = 255

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses with pierrec/lz4. A raw LZ4 block does not record its
// decoded size, so the codec prefixes it with a uvarint, the same header a
// Snappy block carries:
//
//	+------------------------+----------------+
//	| decoded length uvarint | raw LZ4 block  |
//	+------------------------+----------------+
//
// Decompress can then allocate the output once and reject oversized inputs
// before decoding.
type LZ4Codec struct {
	cfg *CodecConfig
}

var _ Codec = (*LZ4Codec)(nil)

// NewLZ4Codec creates an LZ4 codec.
func NewLZ4Codec(opts ...CodecOption) (*LZ4Codec, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	return &LZ4Codec{cfg: cfg}, nil
}

// Type returns format.CompressionLZ4.
func (c *LZ4Codec) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress writes the length header and the LZ4 block into pooled scratch
// space and returns a copy of the used part.
func (c *LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bound := binary.MaxVarintLen64 + lz4.CompressBlockBound(len(data))

	return c.cfg.withScratch(bound, func(buf []byte) ([]byte, error) {
		k := binary.PutUvarint(buf, uint64(len(data)))

		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		defer lz4CompressorPool.Put(lc)

		n, err := lc.CompressBlock(data, buf[k:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("%w: lz4 produced no output for %d bytes", errs.ErrShortBuffer, len(data))
		}

		return buf[:k+n], nil
	})
}

// Decompress reads the length header, checks it against the configured
// limit and the largest expansion LZ4 allows, and decodes into an exact-size
// buffer.
func (c *LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	v, k := binary.Uvarint(data)
	if k <= 0 {
		return nil, fmt.Errorf("%w: bad lz4 length header", errs.ErrParsing)
	}
	payload := data[k:]
	if v == 0 || v > uint64(len(payload))*lz4MaxExpansion {
		return nil, fmt.Errorf("%w: declared length %d for a %d byte lz4 block",
			errs.ErrInvalidChunkSize, v, len(payload))
	}
	if v > uint64(c.cfg.maxDecodedSize) {
		return nil, fmt.Errorf("%w: declared length %d exceeds limit %d",
			errs.ErrInvalidChunkSize, v, c.cfg.maxDecodedSize)
	}

	out := make([]byte, v)
	n, err := lz4.UncompressBlock(payload, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrParsing, err)
	}
	if n != len(out) {
		return nil, fmt.Errorf("%w: produced %d bytes, declared %d", errs.ErrInvalidChunkSize, n, len(out))
	}

	return out, nil
}
