package frame

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/arloliu/snapframe/block"
	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/format"
	"github.com/arloliu/snapframe/internal/options"
	"github.com/arloliu/snapframe/pool"
)

// Writer compresses data into a framed stream.
//
// Note: Writer is NOT thread-safe. After an error from the underlying writer
// every further call returns that error.
type Writer struct {
	w   io.Writer
	cfg *WriterConfig
	enc *block.Encoder

	in  *pool.Region // pending input, blockSize bytes
	out *pool.Region // chunk header plus compressed block
	n   int          // pending input length

	stats  Stats
	err    error
	closed bool
}

var (
	_ io.WriteCloser = (*Writer)(nil)
	_ io.ReaderFrom  = (*Writer)(nil)
	_ io.ByteWriter  = (*Writer)(nil)
)

// NewWriter creates a Writer and writes the stream preamble to w.
//
// Returns:
//   - *Writer: the writer, which must be closed to flush pending data
//   - error: ErrInvalidOption for bad options, or the error writing the preamble
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	cfg := newWriterConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	fw := &Writer{
		w:   w,
		cfg: cfg,
		enc: block.GetEncoder(),
		in:  allocate(cfg.pool, cfg.direct, cfg.blockSize),
		out: allocate(cfg.pool, cfg.direct, dataHeaderSize+block.MaxEncodedLen(cfg.blockSize)),
	}

	if err := fw.write([]byte(streamPreamble)); err != nil {
		fw.release()
		return nil, err
	}

	return fw, nil
}

// Write buffers p and writes a chunk each time a block fills up.
func (w *Writer) Write(p []byte) (int, error) {
	if err := w.usable(); err != nil {
		return 0, err
	}

	total := 0
	for len(p) > 0 {
		// Whole blocks are compressed straight from p.
		if w.n == 0 && len(p) >= w.cfg.blockSize {
			if err := w.writeBlock(p[:w.cfg.blockSize]); err != nil {
				return total, err
			}
			total += w.cfg.blockSize
			p = p[w.cfg.blockSize:]

			continue
		}

		c := copy(w.in.Bytes()[w.n:], p)
		w.n += c
		total += c
		p = p[c:]

		if w.n == w.cfg.blockSize {
			if err := w.flushPending(); err != nil {
				return total, err
			}
		}
	}

	return total, nil
}

// WriteByte buffers a single byte.
func (w *Writer) WriteByte(c byte) error {
	if err := w.usable(); err != nil {
		return err
	}

	w.in.Bytes()[w.n] = c
	w.n++
	if w.n == w.cfg.blockSize {
		return w.flushPending()
	}

	return nil
}

// ReadFrom reads r until EOF directly into the block buffer. The stream
// produced is identical to the one Write would produce for the same bytes.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	if err := w.usable(); err != nil {
		return 0, err
	}

	var total int64
	for {
		m, err := r.Read(w.in.Bytes()[w.n:])
		w.n += m
		total += int64(m)

		if w.n == w.cfg.blockSize {
			if ferr := w.flushPending(); ferr != nil {
				return total, ferr
			}
		}

		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Flush writes any pending input as a chunk, even if the block is not full.
func (w *Writer) Flush() error {
	if err := w.usable(); err != nil {
		return err
	}
	if w.n == 0 {
		return nil
	}

	return w.flushPending()
}

// Close flushes pending input and returns the writer's buffers to the pool.
// It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return errs.ErrClosed
	}

	if w.err == nil && w.n > 0 {
		_ = w.flushPending()
	}
	w.closed = true
	w.release()

	return w.err
}

// Stats returns the counters of the chunks written so far.
func (w *Writer) Stats() Stats {
	return w.stats
}

// Config returns the effective configuration.
func (w *Writer) Config() WriterConfig {
	return *w.cfg
}

func (w *Writer) usable() error {
	if w.closed {
		return errs.ErrClosed
	}

	return w.err
}

func (w *Writer) flushPending() error {
	err := w.writeBlock(w.in.Bytes()[:w.n])
	w.n = 0

	return err
}

// writeBlock writes raw as one data chunk, compressed if it shrinks enough.
func (w *Writer) writeBlock(raw []byte) error {
	out := w.out.Bytes()
	crc := maskedChecksum(raw)

	n, err := w.enc.EncodeBlock(out[dataHeaderSize:], raw)
	if err != nil {
		w.err = err
		return err
	}

	chunk := format.ChunkCompressed
	if float64(n)/float64(len(raw)) > w.cfg.minRatio {
		chunk = format.ChunkUncompressed
		n = len(raw)
	}
	putDataHeader(out, chunk, n, crc)

	if chunk == format.ChunkCompressed {
		err = w.write(out[:dataHeaderSize+n])
	} else {
		err = w.write(out[:dataHeaderSize])
		if err == nil {
			err = w.write(raw)
		}
	}
	if err != nil {
		return err
	}

	if chunk == format.ChunkCompressed {
		w.stats.CompressedChunks++
	} else {
		w.stats.UncompressedChunks++
	}
	w.stats.DataBytes += int64(len(raw))

	return nil
}

func (w *Writer) write(b []byte) error {
	n, err := w.w.Write(b)
	w.stats.StreamBytes += int64(n)
	if err == nil && n < len(b) {
		err = io.ErrShortWrite
	}
	if err != nil {
		w.err = fmt.Errorf("snapframe: write chunk: %w", err)
		return w.err
	}

	return nil
}

func (w *Writer) release() {
	w.in.Release()
	w.out.Release()
	block.PutEncoder(w.enc)
	w.in, w.out, w.enc = nil, nil, nil
}

// putDataHeader writes the flag, the 3-byte length (payload plus checksum)
// and the checksum.
func putDataHeader(dst []byte, chunk format.ChunkType, payloadLen int, crc uint32) {
	chunkLen := payloadLen + checksumSize
	dst[0] = byte(chunk)
	dst[1] = byte(chunkLen)
	dst[2] = byte(chunkLen >> 8)
	dst[3] = byte(chunkLen >> 16)
	binary.LittleEndian.PutUint32(dst[4:8], crc)
}
