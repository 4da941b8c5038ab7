// Package snapframe is a pure-Go implementation of the Snappy block format
// and the Snappy framing stream.
//
// The top-level functions cover the common cases; the block, frame and pool
// packages expose the full API.
//
// # Blocks
//
// A block is a single compressed buffer whose uncompressed length is
// recorded in its header:
//
//	compressed, err := snapframe.Compress(data)
//	original, err := snapframe.Uncompress(compressed)
//
// # Streams
//
// A stream is a sequence of checksummed chunks of at most 64 KiB each and
// can be produced or consumed incrementally:
//
//	w, err := snapframe.NewWriter(dst)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//	_, err = io.Copy(w, src)
//
// EncodeStream and DecodeStream handle whole streams held in memory.
//
// # Package Structure
//
//   - block: block compressor and decompressor
//   - frame: stream Writer and Reader
//   - pool: the buffer pool streams draw from
//   - errs: sentinel errors, matched with errors.Is
//   - compress: codec registry comparing snappy with S2, LZ4 and Zstd
package snapframe

import (
	"bytes"
	"io"

	"github.com/arloliu/snapframe/block"
	"github.com/arloliu/snapframe/frame"
)

// Compress compresses src into a new Snappy block.
func Compress(src []byte) ([]byte, error) {
	return block.Encode(nil, src)
}

// Uncompress decompresses a Snappy block.
//
// Returns:
//   - []byte: the decompressed bytes
//   - error: errs.ErrParsing or errs.ErrInvalidChunkSize for malformed input
func Uncompress(src []byte) ([]byte, error) {
	return block.Decode(nil, src)
}

// MaxCompressedLength returns the largest block Compress can produce for n
// input bytes.
func MaxCompressedLength(n int) int {
	return block.MaxEncodedLen(n)
}

// UncompressedLength returns the length recorded in a block header without
// decompressing it.
func UncompressedLength(src []byte) (int, error) {
	return block.DecodedLen(src)
}

// IsValidCompressed reports whether src is a well-formed Snappy block.
func IsValidCompressed(src []byte) bool {
	return block.Validate(src) == nil
}

// EncodeStream compresses data into a complete framed stream.
func EncodeStream(data []byte, opts ...frame.WriterOption) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(frame.Preamble()) + len(data) + len(data)/8 + 64)

	w, err := frame.NewWriter(&buf, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DecodeStream decompresses a complete framed stream.
func DecodeStream(stream []byte, opts ...frame.ReaderOption) ([]byte, error) {
	r, err := frame.NewReader(bytes.NewReader(stream), opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out bytes.Buffer
	if _, err := r.WriteTo(&out); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// NewWriter returns a frame.Writer that writes a stream to w.
func NewWriter(w io.Writer, opts ...frame.WriterOption) (*frame.Writer, error) {
	return frame.NewWriter(w, opts...)
}

// NewReader returns a frame.Reader that reads a stream from r.
func NewReader(r io.Reader, opts ...frame.ReaderOption) (*frame.Reader, error) {
	return frame.NewReader(r, opts...)
}
