package compress

import (
	"fmt"

	"github.com/arloliu/snapframe/format"
)

// Compressor compresses whole payloads.
type Compressor interface {
	// Compress compresses data and returns the result.
	//
	// The returned slice is owned by the caller and data is never
	// modified. Empty input yields an empty result.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Example:
//
//	codec, _ := compress.NewSnappyCodec()
//	original, err := codec.Decompress(block)
//	if err != nil {
//	    return fmt.Errorf("decompress: %w", err)
//	}
type Decompressor interface {
	// Decompress returns the original bytes of data, or an error if data is
	// corrupt or was produced by a different algorithm.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions and names its algorithm.
//
// Every built-in codec is safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor

	// Type identifies the algorithm.
	Type() format.CompressionType
}

// CompressionStats records the outcome of compressing one payload.
type CompressionStats struct {
	// Algorithm identifies the compression algorithm used
	Algorithm format.CompressionType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64

	// CompressionTimeNs is the time taken to compress the data
	CompressionTimeNs int64

	// DecompressionTimeNs is the time taken to decompress the data (if measured)
	DecompressionTimeNs int64
}

// CompressionRatio returns compressed size / original size.
//
// Values below 1.0 mean the payload shrank.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space saved as a percentage of the original size.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CompressThroughput returns the compression speed in MB/s, or 0 when no
// time was recorded.
func (s CompressionStats) CompressThroughput() float64 {
	return throughput(s.OriginalSize, s.CompressionTimeNs)
}

// DecompressThroughput returns the decompression speed in MB/s, or 0 when no
// time was recorded.
func (s CompressionStats) DecompressThroughput() float64 {
	return throughput(s.OriginalSize, s.DecompressionTimeNs)
}

func throughput(size, ns int64) float64 {
	if ns <= 0 {
		return 0
	}

	return float64(size) / (1 << 20) / (float64(ns) / 1e9)
}

// CreateCodec creates a new Codec for the given compression type.
//
// Parameters:
//   - compressionType: one of the format.Compression* constants
//   - opts: shared codec options (pool, decode limit, zstd level)
//
// Returns:
//   - Codec: new codec instance
//   - error: unsupported compression type or invalid option
func CreateCodec(compressionType format.CompressionType, opts ...CodecOption) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(opts...)
	case format.CompressionZstd:
		return NewZstdCodec(opts...)
	case format.CompressionS2:
		return NewS2Codec(opts...)
	case format.CompressionLZ4:
		return NewLZ4Codec(opts...)
	case format.CompressionSnappy:
		return NewSnappyCodec(opts...)
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

var builtinCodecs = func() map[format.CompressionType]Codec {
	m := make(map[format.CompressionType]Codec)
	for _, ct := range Types() {
		codec, err := CreateCodec(ct)
		if err != nil {
			panic(fmt.Sprintf("built-in codec %s: %v", ct, err))
		}
		m[ct] = codec
	}

	return m
}()

// GetCodec returns the shared built-in Codec for the compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// SnappyCompatible reports whether the codec for compressionType emits
// standard Snappy blocks that block.Decode can read.
func SnappyCompatible(compressionType format.CompressionType) bool {
	return compressionType == format.CompressionSnappy || compressionType == format.CompressionS2
}

// Types returns the built-in compression types in ascending order.
func Types() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionSnappy,
	}
}
