package format

type (
	ChunkType       uint8
	CompressionType uint8
)

const (
	ChunkCompressed       ChunkType = 0x00 // ChunkCompressed carries a checksummed snappy block.
	ChunkUncompressed     ChunkType = 0x01 // ChunkUncompressed carries checksummed raw bytes.
	ChunkPadding          ChunkType = 0xFE // ChunkPadding is a skippable chunk with ignored content.
	ChunkStreamIdentifier ChunkType = 0xFF // ChunkStreamIdentifier opens every stream.

	CompressionNone   CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionSnappy CompressionType = 0x5 // CompressionSnappy represents the native snappy block codec.
)

// IsData reports whether the chunk carries a checksum and payload.
func (c ChunkType) IsData() bool {
	return c == ChunkCompressed || c == ChunkUncompressed
}

// IsReservedUnskippable reports whether c lies in 0x02-0x7F. A reader must
// fail on such chunks.
func (c ChunkType) IsReservedUnskippable() bool {
	return c >= 0x02 && c <= 0x7F
}

// IsReservedSkippable reports whether c lies in 0x80-0xFE. A reader must skip
// such chunks. Padding is part of this range.
func (c ChunkType) IsReservedSkippable() bool {
	return c >= 0x80 && c <= 0xFE
}

func (c ChunkType) String() string {
	switch {
	case c == ChunkCompressed:
		return "Compressed"
	case c == ChunkUncompressed:
		return "Uncompressed"
	case c == ChunkPadding:
		return "Padding"
	case c == ChunkStreamIdentifier:
		return "StreamIdentifier"
	case c.IsReservedSkippable():
		return "ReservedSkippable"
	default:
		return "ReservedUnskippable"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionSnappy:
		return "Snappy"
	default:
		return "Unknown"
	}
}
