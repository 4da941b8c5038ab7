package compress

import (
	"github.com/arloliu/snapframe/block"
	"github.com/arloliu/snapframe/format"
)

// SnappyCodec compresses with this module's Snappy block codec. Its output
// is a standard Snappy block.
type SnappyCodec struct {
	cfg *CodecConfig
}

var _ Codec = (*SnappyCodec)(nil)

// NewSnappyCodec creates a Snappy block codec.
func NewSnappyCodec(opts ...CodecOption) (*SnappyCodec, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	return &SnappyCodec{cfg: cfg}, nil
}

// Type returns format.CompressionSnappy.
func (c *SnappyCodec) Type() format.CompressionType {
	return format.CompressionSnappy
}

// Compress encodes data as one Snappy block. The worst-case output is built
// in pooled scratch space and only the used bytes are copied out. Empty
// input yields nil.
func (c *SnappyCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return c.cfg.withScratch(block.MaxEncodedLen(len(data)), func(buf []byte) ([]byte, error) {
		enc := block.GetEncoder()
		defer block.PutEncoder(enc)

		n, err := enc.EncodeBlock(buf, data)
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	})
}

// Decompress decodes a Snappy block. Empty input yields nil.
func (c *SnappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := block.DecodedLen(data)
	if err != nil {
		return nil, err
	}
	if err := c.cfg.checkDecodedSize(n); err != nil {
		return nil, err
	}

	return block.Decode(nil, data)
}
