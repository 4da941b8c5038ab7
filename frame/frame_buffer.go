package frame

import (
	"io"

	"github.com/arloliu/snapframe/pool"
)

// frameBuffer holds the decoded bytes of the current chunk and the read
// cursor into them.
type frameBuffer struct {
	region *pool.Region
	data   []byte
	pos    int
}

// remaining returns the number of unread bytes.
func (f *frameBuffer) remaining() int {
	return len(f.data) - f.pos
}

// reset prepares the buffer to receive n bytes and returns them, growing the
// backing region from p when it is too small.
func (f *frameBuffer) reset(p pool.Pool, direct bool, n int) []byte {
	f.region = grow(p, direct, f.region, n)
	f.data = f.region.Bytes()[:n]
	f.pos = 0

	return f.data
}

// discard drops unread bytes without releasing the region.
func (f *frameBuffer) discard() {
	f.data, f.pos = nil, 0
}

func (f *frameBuffer) readByte() byte {
	c := f.data[f.pos]
	f.pos++

	return c
}

// copyTo copies unread bytes into p and advances the cursor.
func (f *frameBuffer) copyTo(p []byte) int {
	n := copy(p, f.data[f.pos:])
	f.pos += n

	return n
}

// writeTo writes all unread bytes to w and advances the cursor by the amount
// written.
func (f *frameBuffer) writeTo(w io.Writer) (int, error) {
	n, err := w.Write(f.data[f.pos:])
	f.pos += n
	if err == nil && f.pos < len(f.data) {
		err = io.ErrShortWrite
	}

	return n, err
}

func (f *frameBuffer) release() {
	if f.region != nil {
		f.region.Release()
	}
	f.region, f.data, f.pos = nil, nil, 0
}

// grow returns a region of at least n bytes, reusing r when its capacity
// suffices.
func grow(p pool.Pool, direct bool, r *pool.Region, n int) *pool.Region {
	if r != nil && r.Cap() >= n {
		return r
	}
	if r != nil {
		r.Release()
	}

	return allocate(p, direct, n)
}
