package frame

import (
	"fmt"

	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/internal/options"
	"github.com/arloliu/snapframe/pool"
)

// WriterConfig holds the settings of a Writer.
type WriterConfig struct {
	blockSize int
	minRatio  float64
	pool      pool.Pool
	direct    bool
}

func newWriterConfig() *WriterConfig {
	return &WriterConfig{
		blockSize: DefaultBlockSize,
		minRatio:  DefaultMinCompressionRatio,
		pool:      pool.Default(),
	}
}

// BlockSize returns the configured block size.
func (c WriterConfig) BlockSize() int {
	return c.blockSize
}

// MinCompressionRatio returns the configured ratio threshold.
func (c WriterConfig) MinCompressionRatio() float64 {
	return c.minRatio
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*WriterConfig]

// WithBlockSize sets how many input bytes are collected before a chunk is
// written. It must lie in [1, MaxBlockSize].
func WithBlockSize(n int) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if n < 1 || n > MaxBlockSize {
			return fmt.Errorf("%w: block size %d not in [1, %d]", errs.ErrInvalidOption, n, MaxBlockSize)
		}
		c.blockSize = n

		return nil
	})
}

// WithMinCompressionRatio sets the highest compressed/raw size ratio at which
// a block is stored compressed. Blocks that compress worse are stored raw.
// It must lie in (0, 1].
func WithMinCompressionRatio(r float64) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if !(r > 0 && r <= 1) {
			return fmt.Errorf("%w: compression ratio %v not in (0, 1]", errs.ErrInvalidOption, r)
		}
		c.minRatio = r

		return nil
	})
}

// WithWriterPool sets the pool the writer draws its buffers from.
func WithWriterPool(p pool.Pool) WriterOption {
	return options.New(func(c *WriterConfig) error {
		if p == nil {
			return fmt.Errorf("%w: nil pool", errs.ErrInvalidOption)
		}
		c.pool = p

		return nil
	})
}

// WithWriterDirectBuffers makes the writer use direct (off-heap) regions.
func WithWriterDirectBuffers(enabled bool) WriterOption {
	return options.NoError(func(c *WriterConfig) {
		c.direct = enabled
	})
}

// ReaderConfig holds the settings of a Reader.
type ReaderConfig struct {
	verify bool
	pool   pool.Pool
	direct bool
}

func newReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		verify: true,
		pool:   pool.Default(),
	}
}

// VerifyChecksum reports whether chunk checksums are checked.
func (c ReaderConfig) VerifyChecksum() bool {
	return c.verify
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*ReaderConfig]

// WithVerifyChecksum enables or disables checksum verification. It is
// enabled by default.
func WithVerifyChecksum(enabled bool) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.verify = enabled
	})
}

// WithReaderPool sets the pool the reader draws its buffers from.
func WithReaderPool(p pool.Pool) ReaderOption {
	return options.New(func(c *ReaderConfig) error {
		if p == nil {
			return fmt.Errorf("%w: nil pool", errs.ErrInvalidOption)
		}
		c.pool = p

		return nil
	})
}

// WithReaderDirectBuffers makes the reader use direct (off-heap) regions.
func WithReaderDirectBuffers(enabled bool) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.direct = enabled
	})
}

func allocate(p pool.Pool, direct bool, n int) *pool.Region {
	if direct {
		return p.AllocateDirect(n)
	}

	return p.AllocateArray(n)
}
