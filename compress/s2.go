package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/format"
)

// S2Codec runs the klauspost S2 encoder in Snappy-compatible mode, so its
// output is a standard Snappy block that block.Decode (and SnappyCodec)
// read. It is the point of comparison for this module's own encoder.
type S2Codec struct {
	cfg *CodecConfig
}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a Snappy-compatible S2 codec.
func NewS2Codec(opts ...CodecOption) (*S2Codec, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	return &S2Codec{cfg: cfg}, nil
}

// Type returns format.CompressionS2.
func (c *S2Codec) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress encodes data as one Snappy block with the S2 encoder.
func (c *S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bound := s2.MaxEncodedLen(len(data))
	if bound < 0 {
		return nil, fmt.Errorf("%w: input of %d bytes is too large", errs.ErrInvalidChunkSize, len(data))
	}

	return c.cfg.withScratch(bound, func(buf []byte) ([]byte, error) {
		return s2.EncodeSnappy(buf, data), nil
	})
}

// Decompress decodes a Snappy block with the S2 decoder.
func (c *S2Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrParsing, err)
	}
	if err := c.cfg.checkDecodedSize(n); err != nil {
		return nil, err
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrParsing, err)
	}

	return out, nil
}
