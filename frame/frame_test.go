package frame

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/snapframe/block"
	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/format"
	"github.com/arloliu/snapframe/pool"
)

const runsInput = "aaaaaaaaaaaabbbbbbbaaaaaa"

func randomBytes(seed int64, n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)

	return b
}

func encodeStream(t testing.TB, data []byte, opts ...WriterOption) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, opts...)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func decodeStream(t testing.TB, stream []byte, opts ...ReaderOption) ([]byte, error) {
	t.Helper()

	r, err := NewReader(bytes.NewReader(stream), opts...)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// rawChunk builds an uncompressed data chunk carrying payload.
func rawChunk(payload []byte) []byte {
	chunk := make([]byte, dataHeaderSize, dataHeaderSize+len(payload))
	putDataHeader(chunk, format.ChunkUncompressed, len(payload), maskedChecksum(payload))

	return append(chunk, payload...)
}

// =============================================================================
// Round Trip Tests
// =============================================================================

func TestRoundTrip(t *testing.T) {
	tests := map[string][]byte{
		"one byte":       {'x'},
		"runs":           []byte(runsInput),
		"text":           []byte(strings.Repeat("lorem ipsum dolor sit amet ", 10_000)),
		"random":         randomBytes(1, 200_000),
		"exact block":    make([]byte, MaxBlockSize),
		"block plus one": make([]byte, MaxBlockSize+1),
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			stream := encodeStream(t, data)

			got, err := decodeStream(t, stream)
			require.NoError(t, err)
			require.Equal(t, data, got)
		})
	}
}

func TestWriter_EmptyInputIsPreamble(t *testing.T) {
	stream := encodeStream(t, nil)
	require.Equal(t, Preamble(), stream)

	got, err := decodeStream(t, stream)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestWriter_KnownStream(t *testing.T) {
	stream := encodeStream(t, []byte(runsInput))

	require.Len(t, stream, 37)
	assert.Equal(t, Preamble(), stream[:10])
	assert.Equal(t, []byte{0x00, 0x17, 0x00, 0x00}, stream[10:14])
	assert.Equal(t, []byte{0xa8, 0xcd, 0x74, 0x92}, stream[14:18])

	want, err := block.Encode(nil, []byte(runsInput))
	require.NoError(t, err)
	assert.Equal(t, want, stream[18:])
}

func TestWriter_IncompressibleIsRaw(t *testing.T) {
	data := randomBytes(7, 5000)
	stream := encodeStream(t, data)

	require.Len(t, stream, 10+4+4+5000)
	assert.Equal(t, []byte{0x01, 0x8c, 0x13, 0x00}, stream[10:14])
	assert.Equal(t, data, stream[18:])
}

func TestWriter_MinCompressionRatio(t *testing.T) {
	// 19 of 25 bytes is a ratio of 0.76.
	stream := encodeStream(t, []byte(runsInput), WithMinCompressionRatio(0.5))
	assert.Equal(t, byte(format.ChunkUncompressed), stream[10])

	stream = encodeStream(t, []byte(runsInput), WithMinCompressionRatio(0.8))
	assert.Equal(t, byte(format.ChunkCompressed), stream[10])
}

func TestWriter_BlockSize(t *testing.T) {
	data := []byte(strings.Repeat("0123456789", 1000))

	var buf bytes.Buffer
	w, err := NewWriter(&buf, WithBlockSize(1000))
	require.NoError(t, err)
	assert.Equal(t, 1000, w.Config().BlockSize())

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	stats := w.Stats()
	assert.Equal(t, int64(10), stats.CompressedChunks+stats.UncompressedChunks)
	assert.Equal(t, int64(len(data)), stats.DataBytes)
	assert.Equal(t, int64(buf.Len()), stats.StreamBytes)

	got, err := decodeStream(t, buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestWriter_WriteSplitsMatchSingleWrite(t *testing.T) {
	data := append([]byte(strings.Repeat("split me into pieces ", 8000)), randomBytes(3, 70_000)...)
	want := encodeStream(t, data)

	t.Run("small writes", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter(&buf)
		require.NoError(t, err)

		for rest := data; len(rest) > 0; {
			n := min(777, len(rest))
			_, err := w.Write(rest[:n])
			require.NoError(t, err)
			rest = rest[n:]
		}
		require.NoError(t, w.Close())
		require.Equal(t, want, buf.Bytes())
	})

	t.Run("write byte", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter(&buf)
		require.NoError(t, err)

		for _, c := range data {
			require.NoError(t, w.WriteByte(c))
		}
		require.NoError(t, w.Close())
		require.Equal(t, want, buf.Bytes())
	})

	t.Run("read from", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := NewWriter(&buf)
		require.NoError(t, err)

		n, err := w.ReadFrom(iotest.HalfReader(bytes.NewReader(data)))
		require.NoError(t, err)
		require.Equal(t, int64(len(data)), n)
		require.NoError(t, w.Close())
		require.Equal(t, want, buf.Bytes())
	})
}

func TestWriter_Flush(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)

	_, err = w.Write([]byte("first"))
	require.NoError(t, err)
	require.Equal(t, len(Preamble()), buf.Len())

	require.NoError(t, w.Flush())
	require.Equal(t, len(Preamble())+dataHeaderSize+5, buf.Len())

	// Nothing pending: no empty chunk.
	require.NoError(t, w.Flush())
	require.Equal(t, len(Preamble())+dataHeaderSize+5, buf.Len())

	_, err = w.Write([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	got, err := decodeStream(t, buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, "firstsecond", string(got))
}

func TestConfig_Accessors(t *testing.T) {
	w, err := NewWriter(io.Discard, WithBlockSize(4096), WithMinCompressionRatio(0.5))
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 4096, w.Config().BlockSize())
	assert.InDelta(t, 0.5, w.Config().MinCompressionRatio(), 1e-9)

	r, err := NewReader(bytes.NewReader(Preamble()), WithVerifyChecksum(false))
	require.NoError(t, err)
	defer r.Close()

	assert.False(t, r.Config().VerifyChecksum())
}

func TestWriter_InvalidOptions(t *testing.T) {
	tests := map[string]WriterOption{
		"block size zero":  WithBlockSize(0),
		"block size large": WithBlockSize(MaxBlockSize + 1),
		"ratio zero":       WithMinCompressionRatio(0),
		"ratio above one":  WithMinCompressionRatio(1.5),
		"nil pool":         WithWriterPool(nil),
	}

	for name, opt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewWriter(io.Discard, opt)
			require.ErrorIs(t, err, errs.ErrInvalidOption)
		})
	}

	_, err := NewReader(bytes.NewReader(Preamble()), WithReaderPool(nil))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestWriter_Closed(t *testing.T) {
	w, err := NewWriter(io.Discard)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.ErrorIs(t, w.Close(), errs.ErrClosed)
	_, err = w.Write([]byte("late"))
	require.ErrorIs(t, err, errs.ErrClosed)
	require.ErrorIs(t, w.WriteByte('x'), errs.ErrClosed)
	require.ErrorIs(t, w.Flush(), errs.ErrClosed)
}

type failingWriter struct {
	budget int
}

var errSinkFull = errors.New("sink full")

func (f *failingWriter) Write(p []byte) (int, error) {
	if len(p) > f.budget {
		n := f.budget
		f.budget = 0

		return n, errSinkFull
	}
	f.budget -= len(p)

	return len(p), nil
}

func TestWriter_UnderlyingErrorIsSticky(t *testing.T) {
	_, err := NewWriter(&failingWriter{budget: 3})
	require.ErrorIs(t, err, errSinkFull)

	w, err := NewWriter(&failingWriter{budget: len(Preamble()) + 4})
	require.NoError(t, err)

	_, err = w.Write(randomBytes(5, MaxBlockSize))
	require.ErrorIs(t, err, errSinkFull)

	// The failed chunk never reached the sink, so it is not counted.
	stats := w.Stats()
	assert.Zero(t, stats.CompressedChunks+stats.UncompressedChunks)
	assert.Zero(t, stats.DataBytes)
	assert.Equal(t, int64(len(Preamble())+4), stats.StreamBytes)

	_, err = w.Write([]byte("more"))
	require.ErrorIs(t, err, errSinkFull)
	require.ErrorIs(t, w.Close(), errSinkFull)
}

// =============================================================================
// Reader Tests
// =============================================================================

func TestReader_Preamble(t *testing.T) {
	tests := map[string][]byte{
		"empty":     {},
		"truncated": Preamble()[:6],
		"bad magic": []byte("\xff\x06\x00\x00sNaPpZ"),
		"bad flag":  []byte("\x00\x06\x00\x00sNaPpY"),
	}

	for name, stream := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(stream))
			require.ErrorIs(t, err, errs.ErrStreamFormat)
		})
	}
}

func TestReader_ChunkTooShort(t *testing.T) {
	stream := append(Preamble(), 0x01, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00)

	_, err := decodeStream(t, stream)
	require.ErrorIs(t, err, errs.ErrInvalidChunkSize)
}

func TestReader_ChunkTooLong(t *testing.T) {
	tests := map[string][]byte{
		"uncompressed": {0x01, 0x05, 0x00, 0x01},
		"compressed":   {0x00, 0xff, 0xff, 0x01},
	}

	for name, hdr := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeStream(t, append(Preamble(), hdr...))
			require.ErrorIs(t, err, errs.ErrInvalidChunkSize)
		})
	}
}

func TestReader_TruncatedHeader(t *testing.T) {
	for n := 1; n <= 3; n++ {
		stream := append(Preamble(), []byte{0x00, 0x17, 0x00}[:n]...)

		_, err := decodeStream(t, stream)
		require.ErrorIs(t, err, errs.ErrTruncated, "header bytes %d", n)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	}
}

func TestReader_TruncatedBody(t *testing.T) {
	stream := encodeStream(t, []byte(runsInput))

	for _, n := range []int{12, 15, 18, 30, len(stream) - 1} {
		_, err := decodeStream(t, stream[:n])
		require.ErrorIs(t, err, errs.ErrTruncated, "cut at %d", n)
	}
}

func TestReader_Checksum(t *testing.T) {
	stream := encodeStream(t, []byte(runsInput))
	stream[14] ^= 0xff

	_, err := decodeStream(t, stream)
	require.ErrorIs(t, err, errs.ErrCorruptChecksum)

	got, err := decodeStream(t, stream, WithVerifyChecksum(false))
	require.NoError(t, err)
	require.Equal(t, runsInput, string(got))
}

func TestReader_ChecksumCoversEveryByte(t *testing.T) {
	data := randomBytes(9, 300)
	stream := encodeStream(t, data)
	require.Equal(t, byte(format.ChunkUncompressed), stream[10])

	for i := 18; i < len(stream); i++ {
		corrupt := bytes.Clone(stream)
		corrupt[i] ^= 0x01

		_, err := decodeStream(t, corrupt)
		require.ErrorIs(t, err, errs.ErrCorruptChecksum, "byte %d", i)
	}
}

func TestReader_ReservedUnskippable(t *testing.T) {
	for flag := 0x02; flag <= 0x7f; flag++ {
		stream := append(Preamble(), byte(flag), 0x05, 0x00, 0x00, 1, 2, 3, 4, 5)

		_, err := decodeStream(t, stream)
		require.ErrorIs(t, err, errs.ErrStreamFormat, "flag 0x%02x", flag)
	}
}

func TestReader_ReservedSkippable(t *testing.T) {
	for flag := 0x80; flag <= 0xfe; flag++ {
		stream := append(Preamble(), byte(flag), 0x03, 0x00, 0x00, 'x', 'y', 'z')
		stream = append(stream, byte(flag), 0x00, 0x00, 0x00)
		stream = append(stream, rawChunk([]byte("hello"))...)

		r, err := NewReader(bytes.NewReader(stream))
		require.NoError(t, err)

		got, err := io.ReadAll(r)
		require.NoError(t, err, "flag 0x%02x", flag)
		require.Equal(t, "hello", string(got))

		stats := r.Stats()
		require.Equal(t, int64(2), stats.SkippedChunks)
		require.Equal(t, int64(len(stream)), stats.StreamBytes)
		require.NoError(t, r.Close())
	}
}

func TestReader_TruncatedSkippable(t *testing.T) {
	stream := append(Preamble(), 0xfe, 0x10, 0x00, 0x00, 1, 2, 3)

	_, err := decodeStream(t, stream)
	require.ErrorIs(t, err, errs.ErrTruncated)
}

func TestReader_ConcatenatedStreams(t *testing.T) {
	first := encodeStream(t, []byte("first stream "))
	second := encodeStream(t, []byte("second stream"))

	got, err := decodeStream(t, append(first, second...))
	require.NoError(t, err)
	require.Equal(t, "first stream second stream", string(got))
}

func TestReader_BadStreamIdentifier(t *testing.T) {
	tests := map[string][]byte{
		"wrong length": {0xff, 0x05, 0x00, 0x00, 's', 'N', 'a', 'P', 'p'},
		"wrong magic":  {0xff, 0x06, 0x00, 0x00, 's', 'n', 'a', 'p', 'p', 'y'},
	}

	for name, chunk := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := decodeStream(t, append(Preamble(), chunk...))
			require.ErrorIs(t, err, errs.ErrStreamFormat)
		})
	}
}

func TestReader_OversizedCompressedChunk(t *testing.T) {
	data := make([]byte, MaxBlockSize+1)
	payload, err := block.Encode(nil, data)
	require.NoError(t, err)

	chunk := make([]byte, dataHeaderSize, dataHeaderSize+len(payload))
	putDataHeader(chunk, format.ChunkCompressed, len(payload), maskedChecksum(data))
	stream := append(Preamble(), append(chunk, payload...)...)

	_, err = decodeStream(t, stream)
	require.ErrorIs(t, err, errs.ErrInvalidChunkSize)
}

func TestReader_CorruptBlock(t *testing.T) {
	payload := []byte{0x0a, 0x0c, 'a', 'b', 'c', 'd', 0x09, 0x05} // offset 5 after 4 bytes
	chunk := make([]byte, dataHeaderSize, dataHeaderSize+len(payload))
	putDataHeader(chunk, format.ChunkCompressed, len(payload), 0)
	stream := append(Preamble(), append(chunk, payload...)...)

	_, err := decodeStream(t, stream)
	require.ErrorIs(t, err, errs.ErrParsing)
}

func TestReader_ErrorIsSticky(t *testing.T) {
	stream := append(Preamble(), rawChunk([]byte("ok"))...)
	stream = append(stream, 0x02, 0x00, 0x00, 0x00)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)
	defer r.Close()

	buf := make([]byte, 16)
	n, err := r.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "ok", string(buf[:n]))

	_, err = r.Read(buf)
	require.ErrorIs(t, err, errs.ErrStreamFormat)
	_, err = r.ReadByte()
	require.ErrorIs(t, err, errs.ErrStreamFormat)
}

func TestReader_ReadByteAndWriteTo(t *testing.T) {
	data := []byte(strings.Repeat("byte by byte ", 12_000))
	stream := encodeStream(t, data)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)

	head := make([]byte, 0, 100)
	for range 100 {
		c, err := r.ReadByte()
		require.NoError(t, err)
		head = append(head, c)
	}

	var rest bytes.Buffer
	n, err := r.WriteTo(&rest)
	require.NoError(t, err)
	require.Equal(t, int64(len(data)-100), n)
	require.Equal(t, data, append(head, rest.Bytes()...))

	_, err = r.ReadByte()
	require.ErrorIs(t, err, io.EOF)
	require.NoError(t, r.Close())
}

func TestReader_SmallReads(t *testing.T) {
	data := randomBytes(11, 150_000)
	stream := encodeStream(t, data)

	r, err := NewReader(iotest.OneByteReader(bytes.NewReader(stream)))
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(iotest.HalfReader(r))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestReader_Stats(t *testing.T) {
	data := append([]byte(strings.Repeat("z", MaxBlockSize)), randomBytes(2, 1000)...)
	stream := encodeStream(t, data)

	r, err := NewReader(bytes.NewReader(stream))
	require.NoError(t, err)
	_, err = io.Copy(io.Discard, r)
	require.NoError(t, err)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.CompressedChunks)
	assert.Equal(t, int64(1), stats.UncompressedChunks)
	assert.Equal(t, int64(len(data)), stats.DataBytes)
	assert.Equal(t, int64(len(stream)), stats.StreamBytes)
	assert.Less(t, stats.CompressionRatio(), 0.1)
	assert.True(t, r.Config().VerifyChecksum())

	require.NoError(t, r.Close())
	require.ErrorIs(t, r.Close(), errs.ErrClosed)
	_, err = r.Read(make([]byte, 1))
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestStats_CompressionRatioEmpty(t *testing.T) {
	assert.Zero(t, Stats{}.CompressionRatio())
}

// =============================================================================
// Buffer Tests
// =============================================================================

func TestBuffers_ReturnedToPool(t *testing.T) {
	p, err := pool.NewCachingPool()
	require.NoError(t, err)

	data := []byte(strings.Repeat("pooled ", 30_000))
	for range 3 {
		stream := encodeStream(t, data, WithWriterPool(p))
		got, err := decodeStream(t, stream, WithReaderPool(p))
		require.NoError(t, err)
		require.Equal(t, data, got)
	}

	stats := p.Stats()
	assert.Positive(t, stats.Hits)
	assert.Positive(t, stats.RetainedBytes)
}

func TestBuffers_Direct(t *testing.T) {
	p, err := pool.NewCachingPool()
	require.NoError(t, err)
	defer p.Purge()

	data := append([]byte(strings.Repeat("direct ", 20_000)), randomBytes(4, 90_000)...)
	stream := encodeStream(t, data, WithWriterPool(p), WithWriterDirectBuffers(true))
	require.Equal(t, encodeStream(t, data), stream)

	got, err := decodeStream(t, stream, WithReaderPool(p), WithReaderDirectBuffers(true))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestBuffers_NoopPool(t *testing.T) {
	data := []byte(strings.Repeat("noop ", 40_000))
	stream := encodeStream(t, data, WithWriterPool(pool.NewNoopPool()))

	got, err := decodeStream(t, stream, WithReaderPool(pool.NewNoopPool()))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestMaxCompressedChunkLen(t *testing.T) {
	require.Equal(t, block.MaxEncodedLen(MaxBlockSize), maxCompressedChunkLen-checksumSize)
}

func TestMaskChecksum(t *testing.T) {
	assert.Equal(t, uint32(0xa282ead8), maskChecksum(0))
	assert.Equal(t, uint32(0x9274cda8), maskedChecksum([]byte(runsInput)))
}

// =============================================================================
// Fuzz Tests
// =============================================================================

func FuzzReader(f *testing.F) {
	f.Add(encodeStream(f, []byte(runsInput)))
	f.Add(encodeStream(f, randomBytes(6, 500)))
	f.Add(append(Preamble(), 0xfe, 0x01, 0x00, 0x00, 0x00))

	f.Fuzz(func(t *testing.T, stream []byte) {
		r, err := NewReader(bytes.NewReader(stream), WithVerifyChecksum(false))
		if err != nil {
			return
		}
		defer r.Close()

		_, _ = io.Copy(io.Discard, r)
	})
}
