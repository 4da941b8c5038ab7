package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkType_Classification(t *testing.T) {
	for v := 0; v <= 0xFF; v++ {
		c := ChunkType(v)
		switch {
		case v == 0x00 || v == 0x01:
			require.True(t, c.IsData(), "0x%02x", v)
			require.False(t, c.IsReservedSkippable(), "0x%02x", v)
			require.False(t, c.IsReservedUnskippable(), "0x%02x", v)
		case v <= 0x7F:
			require.True(t, c.IsReservedUnskippable(), "0x%02x", v)
			require.False(t, c.IsReservedSkippable(), "0x%02x", v)
		case v <= 0xFE:
			require.True(t, c.IsReservedSkippable(), "0x%02x", v)
			require.False(t, c.IsReservedUnskippable(), "0x%02x", v)
		default:
			require.Equal(t, ChunkStreamIdentifier, c)
			require.False(t, c.IsData())
		}
	}
}

func TestChunkType_String(t *testing.T) {
	tests := []struct {
		chunk    ChunkType
		expected string
	}{
		{ChunkCompressed, "Compressed"},
		{ChunkUncompressed, "Uncompressed"},
		{ChunkPadding, "Padding"},
		{ChunkStreamIdentifier, "StreamIdentifier"},
		{ChunkType(0x80), "ReservedSkippable"},
		{ChunkType(0x02), "ReservedUnskippable"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.chunk.String())
		})
	}
}

func TestCompressionType_String(t *testing.T) {
	tests := []struct {
		cType    CompressionType
		expected string
	}{
		{CompressionNone, "None"},
		{CompressionZstd, "Zstd"},
		{CompressionS2, "S2"},
		{CompressionLZ4, "LZ4"},
		{CompressionSnappy, "Snappy"},
		{CompressionType(0xFF), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.cType.String())
		})
	}
}
