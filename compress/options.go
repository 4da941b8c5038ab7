package compress

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/internal/options"
	"github.com/arloliu/snapframe/pool"
)

// DefaultMaxDecodedSize bounds what Decompress will produce unless configured.
const DefaultMaxDecodedSize = 128 << 20 // 128MiB

// CodecConfig holds the settings shared by the built-in codecs.
type CodecConfig struct {
	pool           pool.Pool
	maxDecodedSize int
	zstdLevel      zstd.EncoderLevel
}

func newCodecConfig() *CodecConfig {
	return &CodecConfig{
		pool:           pool.Default(),
		maxDecodedSize: DefaultMaxDecodedSize,
		zstdLevel:      zstd.SpeedDefault,
	}
}

// MaxDecodedSize returns the decompression limit.
func (c CodecConfig) MaxDecodedSize() int {
	return c.maxDecodedSize
}

// CodecOption configures a codec.
type CodecOption = options.Option[*CodecConfig]

// WithPool sets the pool compression scratch space is drawn from.
func WithPool(p pool.Pool) CodecOption {
	return options.New(func(c *CodecConfig) error {
		if p == nil {
			return fmt.Errorf("%w: nil pool", errs.ErrInvalidOption)
		}
		c.pool = p

		return nil
	})
}

// WithMaxDecodedSize rejects payloads that declare or produce more than n
// bytes.
func WithMaxDecodedSize(n int) CodecOption {
	return options.New(func(c *CodecConfig) error {
		if n < 1 {
			return fmt.Errorf("%w: max decoded size %d", errs.ErrInvalidOption, n)
		}
		c.maxDecodedSize = n

		return nil
	})
}

// WithZstdLevel sets the Zstd encoder level. Other codecs ignore it.
func WithZstdLevel(level zstd.EncoderLevel) CodecOption {
	return options.New(func(c *CodecConfig) error {
		if level < zstd.SpeedFastest || level > zstd.SpeedBestCompression {
			return fmt.Errorf("%w: zstd level %d", errs.ErrInvalidOption, level)
		}
		c.zstdLevel = level

		return nil
	})
}

func buildConfig(opts []CodecOption) (*CodecConfig, error) {
	cfg := newCodecConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withScratch checks out n bytes of working memory, lets fill write into it
// and returns a caller-owned copy of the result. fill may return a slice that
// does not alias its argument.
func (c *CodecConfig) withScratch(n int, fill func(buf []byte) ([]byte, error)) ([]byte, error) {
	if n > pool.MaxRegionSize {
		out, err := fill(make([]byte, n))
		if err != nil {
			return nil, err
		}

		return out, nil
	}

	r := c.pool.AllocateArray(n)
	defer r.Release()

	out, err := fill(r.Bytes())
	if err != nil {
		return nil, err
	}

	return bytes.Clone(out), nil
}

// checkDecodedSize rejects declared lengths above the configured limit.
func (c *CodecConfig) checkDecodedSize(n int) error {
	if n > c.maxDecodedSize {
		return fmt.Errorf("%w: declared length %d exceeds limit %d", errs.ErrInvalidChunkSize, n, c.maxDecodedSize)
	}

	return nil
}
