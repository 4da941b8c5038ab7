// Package compress provides whole-payload codecs behind one interface, used
// to compare this module's Snappy block codec with other algorithms.
//
// # Codecs
//
//   - None (NoOpCodec): data passes through unchanged; the baseline
//   - Snappy (SnappyCodec): this module's block codec
//   - S2 (S2Codec): klauspost/compress/s2 in Snappy-compatible mode, so its
//     output is a standard Snappy block
//   - LZ4 (LZ4Codec): pierrec/lz4 blocks behind a uvarint decoded-length
//     header
//   - Zstd (ZstdCodec): klauspost/compress/zstd, pure Go
//
// Each codec compresses a complete payload in one call:
//
//	codec, err := compress.GetCodec(format.CompressionSnappy)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(data)
//
// GetCodec returns shared instances with default settings; CreateCodec and
// the New*Codec constructors take CodecOption values:
//
//	codec, err := compress.CreateCodec(format.CompressionLZ4,
//	    compress.WithPool(myPool),
//	    compress.WithMaxDecodedSize(16<<20),
//	)
//
// All built-in codecs are safe for concurrent use. Compression builds its
// worst-case output in an array region checked out of a pool.Pool (the
// shared default unless WithPool says otherwise) and returns a right-sized
// copy. Decompression checks the declared output size against the
// WithMaxDecodedSize limit before allocating. Decode failures wrap
// errs.ErrParsing or errs.ErrInvalidChunkSize.
//
// # Measuring
//
// CompressionStats records sizes and timings of one compression so callers
// (such as the snapframe bench command) can report ratio, space savings and
// throughput per algorithm.
//
// # Streams
//
// The codecs here work on whole payloads. For unbounded input use the frame
// package, which splits data into checksummed Snappy chunks.
package compress
