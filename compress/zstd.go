package compress

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/format"
)

// ZstdCodec compresses with the pure-Go Zstandard implementation from
// klauspost/compress. It is the high-ratio reference point in comparisons.
//
// Each codec keeps its own encoder and decoder pools so the configured level
// and decode limit apply to every pooled instance.
type ZstdCodec struct {
	cfg      *CodecConfig
	encoders sync.Pool
	decoders sync.Pool
}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a Zstd codec. The level defaults to
// zstd.SpeedDefault; see WithZstdLevel.
func NewZstdCodec(opts ...CodecOption) (*ZstdCodec, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}

	c := &ZstdCodec{cfg: cfg}
	c.encoders.New = func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(cfg.zstdLevel),
			zstd.WithEncoderCRC(false),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return enc
	}
	c.decoders.New = func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
			zstd.WithDecoderMaxMemory(uint64(cfg.maxDecodedSize)),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return dec
	}

	return c, nil
}

// Type returns format.CompressionZstd.
func (c *ZstdCodec) Type() format.CompressionType {
	return format.CompressionZstd
}

// Compress encodes data as one Zstandard frame, built in pooled scratch
// space sized by zstdBound.
func (c *ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	enc, _ := c.encoders.Get().(*zstd.Encoder)
	defer c.encoders.Put(enc)

	return c.cfg.withScratch(zstdBound(len(data)), func(buf []byte) ([]byte, error) {
		// EncodeAll appends; it only reallocates if the bound was too small.
		return enc.EncodeAll(data, buf[:0]), nil
	})
}

// Decompress decodes one Zstandard frame.
func (c *ZstdCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dec, _ := c.decoders.Get().(*zstd.Decoder)
	defer c.decoders.Put(dec)

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrParsing, err)
	}

	return out, nil
}

// zstdBound matches ZSTD_compressBound from the reference library.
func zstdBound(n int) int {
	margin := 0
	if n < 128<<10 {
		margin = ((128 << 10) - n) >> 11
	}

	return n + n>>8 + margin
}
