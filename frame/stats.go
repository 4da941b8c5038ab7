package frame

// Stats counts the chunks and bytes that passed through a Writer or Reader.
type Stats struct {
	CompressedChunks   int64 // data chunks carrying a snappy block
	UncompressedChunks int64 // data chunks carrying raw bytes
	SkippedChunks      int64 // padding, reserved skippable and repeated stream identifiers
	DataBytes          int64 // uncompressed payload bytes
	StreamBytes        int64 // framed bytes, preamble included
}

// CompressionRatio returns StreamBytes / DataBytes, or 0 when no data was seen.
func (s Stats) CompressionRatio() float64 {
	if s.DataBytes == 0 {
		return 0
	}

	return float64(s.StreamBytes) / float64(s.DataBytes)
}
