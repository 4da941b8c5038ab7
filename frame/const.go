package frame

import "github.com/arloliu/snapframe/block"

const (
	// streamPreamble is the stream identifier chunk that opens every stream.
	streamPreamble = "\xff\x06\x00\x00" + streamMagic
	streamMagic    = "sNaPpY"

	chunkHeaderSize = 4 // flag + 3-byte length
	checksumSize    = 4
	dataHeaderSize  = chunkHeaderSize + checksumSize

	// MaxBlockSize is the largest amount of uncompressed data in one chunk.
	MaxBlockSize = block.MaxWindowSize

	// DefaultBlockSize is the writer's block size unless configured.
	DefaultBlockSize = MaxBlockSize

	// DefaultMinCompressionRatio is the highest compressed/raw ratio at which
	// the writer still emits a compressed chunk.
	DefaultMinCompressionRatio = 0.85

	// minDataChunkLen is the checksum plus at least one payload byte.
	minDataChunkLen = checksumSize + 1

	maxUncompressedChunkLen = checksumSize + MaxBlockSize
	maxCompressedChunkLen   = checksumSize + 76490 // block.MaxEncodedLen(MaxBlockSize)
)

// Preamble returns a copy of the 10 bytes every stream starts with.
func Preamble() []byte {
	return []byte(streamPreamble)
}
