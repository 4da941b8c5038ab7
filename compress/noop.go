package compress

import (
	"bytes"

	"github.com/arloliu/snapframe/format"
)

// NoOpCodec passes data through unchanged. It is the baseline in codec
// comparisons.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a codec that performs no compression. It accepts the
// shared options for symmetry with the other constructors and ignores them.
func NewNoOpCodec(opts ...CodecOption) (*NoOpCodec, error) {
	if _, err := buildConfig(opts); err != nil {
		return nil, err
	}

	return &NoOpCodec{}, nil
}

// Compress returns a copy of data, so callers own the result like every
// other codec's. Nil stays nil.
func (c *NoOpCodec) Compress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

// Decompress returns a copy of data.
func (c *NoOpCodec) Decompress(data []byte) ([]byte, error) {
	return bytes.Clone(data), nil
}

// Type returns format.CompressionNone.
func (c *NoOpCodec) Type() format.CompressionType {
	return format.CompressionNone
}
