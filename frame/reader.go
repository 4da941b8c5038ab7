package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/snapframe/block"
	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/format"
	"github.com/arloliu/snapframe/internal/options"
	"github.com/arloliu/snapframe/pool"
)

// chunkAction is the reader's decision for a chunk header.
type chunkAction uint8

const (
	actionUncompress chunkAction = iota
	actionRaw
	actionSkip
)

// Reader decompresses a framed stream.
//
// Note: Reader is NOT thread-safe. Once an error other than a short write
// has been returned, every further read returns it.
type Reader struct {
	r   io.Reader
	cfg *ReaderConfig

	frame frameBuffer               // decoded bytes of the current chunk
	body  *pool.Region              // compressed payload of the current chunk
	hdr   [len(streamPreamble)]byte // chunk header, then checksum or identifier body

	stats  Stats
	err    error
	closed bool
}

var (
	_ io.ReadCloser = (*Reader)(nil)
	_ io.ByteReader = (*Reader)(nil)
	_ io.WriterTo   = (*Reader)(nil)
)

// NewReader creates a Reader and consumes the stream preamble from r.
//
// Returns:
//   - *Reader: the reader, which must be closed to release its buffers
//   - error: ErrStreamFormat if the preamble is missing, short or wrong;
//     ErrInvalidOption for bad options
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	cfg := newReaderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	var preamble [len(streamPreamble)]byte
	if n, err := io.ReadFull(r, preamble[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: preamble truncated after %d bytes", errs.ErrStreamFormat, n)
		}

		return nil, err
	}
	if string(preamble[:]) != streamPreamble {
		return nil, fmt.Errorf("%w: bad preamble %x", errs.ErrStreamFormat, preamble[:])
	}

	fr := &Reader{r: r, cfg: cfg}
	fr.stats.StreamBytes = int64(len(streamPreamble))

	return fr, nil
}

// Read reads decoded bytes into p. It returns io.EOF once the stream ends at
// a chunk boundary.
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.usable(); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	if err := r.fill(); err != nil {
		return 0, err
	}

	return r.frame.copyTo(p), nil
}

// ReadByte reads a single decoded byte.
func (r *Reader) ReadByte() (byte, error) {
	if err := r.usable(); err != nil {
		return 0, err
	}
	if err := r.fill(); err != nil {
		return 0, err
	}

	return r.frame.readByte(), nil
}

// WriteTo writes the rest of the decoded stream to w. Buffered bytes are
// written first; no chunk is decoded twice.
func (r *Reader) WriteTo(w io.Writer) (int64, error) {
	if err := r.usable(); err != nil {
		if err == io.EOF {
			return 0, nil
		}

		return 0, err
	}

	var total int64
	for {
		if err := r.fill(); err != nil {
			if err == io.EOF {
				return total, nil
			}

			return total, err
		}

		n, err := r.frame.writeTo(w)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
}

// Close returns the reader's buffers to the pool. It does not close the
// underlying reader.
func (r *Reader) Close() error {
	if r.closed {
		return errs.ErrClosed
	}
	r.closed = true

	r.frame.release()
	if r.body != nil {
		r.body.Release()
		r.body = nil
	}

	return nil
}

// Config returns the effective configuration.
func (r *Reader) Config() ReaderConfig {
	return *r.cfg
}

// Stats returns the counters of the chunks read so far.
func (r *Reader) Stats() Stats {
	return r.stats
}

func (r *Reader) usable() error {
	if r.closed {
		return errs.ErrClosed
	}

	return r.err
}

// fill reads chunks until decoded bytes are available.
func (r *Reader) fill() error {
	for r.frame.remaining() == 0 {
		if err := r.nextChunk(); err != nil {
			r.err = err
			return err
		}
	}

	return nil
}

// nextChunk reads one chunk. Skipped chunks leave the frame buffer empty.
func (r *Reader) nextChunk() error {
	r.frame.discard()

	n, err := io.ReadFull(r.r, r.hdr[:chunkHeaderSize])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return io.EOF
		}

		return r.readError(err, "chunk header", n, chunkHeaderSize)
	}
	r.stats.StreamBytes += chunkHeaderSize

	chunk := format.ChunkType(r.hdr[0])
	chunkLen := int(r.hdr[1]) | int(r.hdr[2])<<8 | int(r.hdr[3])<<16

	action, err := classify(chunk, chunkLen)
	if err != nil {
		return err
	}

	switch action {
	case actionSkip:
		return r.skipChunk(chunk, chunkLen)
	case actionRaw:
		return r.readRawChunk(chunkLen)
	default:
		return r.readCompressedChunk(chunkLen)
	}
}

// classify maps a chunk header to an action and validates its length.
func classify(chunk format.ChunkType, chunkLen int) (chunkAction, error) {
	switch {
	case chunk == format.ChunkCompressed:
		if chunkLen < minDataChunkLen || chunkLen > maxCompressedChunkLen {
			return 0, fmt.Errorf("%w: compressed chunk length %d not in [%d, %d]",
				errs.ErrInvalidChunkSize, chunkLen, minDataChunkLen, maxCompressedChunkLen)
		}

		return actionUncompress, nil
	case chunk == format.ChunkUncompressed:
		if chunkLen < minDataChunkLen || chunkLen > maxUncompressedChunkLen {
			return 0, fmt.Errorf("%w: uncompressed chunk length %d not in [%d, %d]",
				errs.ErrInvalidChunkSize, chunkLen, minDataChunkLen, maxUncompressedChunkLen)
		}

		return actionRaw, nil
	case chunk == format.ChunkStreamIdentifier:
		if chunkLen != len(streamMagic) {
			return 0, fmt.Errorf("%w: stream identifier of length %d", errs.ErrStreamFormat, chunkLen)
		}

		return actionSkip, nil
	case chunk.IsReservedSkippable():
		return actionSkip, nil
	default:
		return 0, fmt.Errorf("%w: unskippable chunk type 0x%02x", errs.ErrStreamFormat, uint8(chunk))
	}
}

func (r *Reader) skipChunk(chunk format.ChunkType, chunkLen int) error {
	if chunk == format.ChunkStreamIdentifier {
		magic := r.hdr[chunkHeaderSize : chunkHeaderSize+len(streamMagic)]
		if n, err := io.ReadFull(r.r, magic); err != nil {
			return r.readError(err, "stream identifier", n, len(magic))
		}
		if string(magic) != streamMagic {
			return fmt.Errorf("%w: bad stream identifier %x", errs.ErrStreamFormat, magic)
		}
	} else {
		n, err := io.CopyN(io.Discard, r.r, int64(chunkLen))
		if err != nil {
			return r.readError(err, "skippable chunk", int(n), chunkLen)
		}
	}

	r.stats.StreamBytes += int64(chunkLen)
	r.stats.SkippedChunks++

	return nil
}

func (r *Reader) readRawChunk(chunkLen int) error {
	crc, err := r.readChecksum()
	if err != nil {
		return err
	}

	data := r.frame.reset(r.cfg.pool, r.cfg.direct, chunkLen-checksumSize)
	if n, err := io.ReadFull(r.r, data); err != nil {
		r.frame.discard()
		return r.readError(err, "chunk body", n, len(data))
	}
	r.stats.StreamBytes += int64(chunkLen)
	r.stats.UncompressedChunks++

	return r.verify(crc)
}

func (r *Reader) readCompressedChunk(chunkLen int) error {
	crc, err := r.readChecksum()
	if err != nil {
		return err
	}

	payloadLen := chunkLen - checksumSize
	r.body = grow(r.cfg.pool, r.cfg.direct, r.body, payloadLen)
	payload := r.body.Bytes()[:payloadLen]
	if n, err := io.ReadFull(r.r, payload); err != nil {
		return r.readError(err, "chunk body", n, payloadLen)
	}
	r.stats.StreamBytes += int64(chunkLen)
	r.stats.CompressedChunks++

	decodedLen, err := block.DecodedLen(payload)
	if err != nil {
		return err
	}
	if decodedLen > MaxBlockSize {
		return fmt.Errorf("%w: chunk decodes to %d bytes, limit %d", errs.ErrInvalidChunkSize, decodedLen, MaxBlockSize)
	}

	data := r.frame.reset(r.cfg.pool, r.cfg.direct, decodedLen)
	if _, err := block.DecodeBlock(data, payload); err != nil {
		r.frame.discard()
		return err
	}

	return r.verify(crc)
}

func (r *Reader) readChecksum() (uint32, error) {
	b := r.hdr[chunkHeaderSize:dataHeaderSize]
	if n, err := io.ReadFull(r.r, b); err != nil {
		return 0, r.readError(err, "chunk checksum", n, checksumSize)
	}

	return binary.LittleEndian.Uint32(b), nil
}

// verify checks the decoded chunk against crc and accounts for its bytes.
func (r *Reader) verify(crc uint32) error {
	if r.cfg.verify {
		if actual := maskedChecksum(r.frame.data); actual != crc {
			r.frame.discard()
			return fmt.Errorf("%w: expected 0x%08x, computed 0x%08x", errs.ErrCorruptChecksum, crc, actual)
		}
	}
	r.stats.DataBytes += int64(len(r.frame.data))

	return nil
}

// readError converts an end of input inside a chunk into ErrTruncated.
func (r *Reader) readError(err error, what string, got, want int) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: read %d of %d bytes", errs.ErrTruncated, what, got, want)
	}

	return err
}
