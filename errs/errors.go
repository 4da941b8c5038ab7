// Package errs defines the sentinel errors returned by the block codec and the
// framing protocol.
//
// Every error surfaced by snapframe wraps exactly one of these sentinels, so
// callers can classify failures with errors.Is:
//
//	if errors.Is(err, errs.ErrCorruptChecksum) {
//	    // re-fetch the source data
//	}
//
// None of the data errors are recoverable for the stream that produced them.
package errs

import (
	"errors"
	"io"
)

// Block codec errors.
var (
	// ErrParsing reports a malformed compressed block: bad varint, truncated
	// trailer, or a literal/copy element that would read or write out of bounds.
	ErrParsing = errors.New("snapframe: malformed compressed block")

	// ErrInvalidChunkSize reports a mismatch between a declared length and the
	// actual or permitted length.
	ErrInvalidChunkSize = errors.New("snapframe: invalid chunk size")

	// ErrShortBuffer reports a destination smaller than the documented bound.
	ErrShortBuffer = errors.New("snapframe: destination buffer too small")
)

// Stream errors.
var (
	// ErrCorruptChecksum reports a masked CRC32C mismatch on a verified frame.
	ErrCorruptChecksum = errors.New("snapframe: corrupt checksum")

	// ErrStreamFormat reports a missing or bad preamble, or an unsupported
	// unskippable chunk flag.
	ErrStreamFormat = errors.New("snapframe: invalid stream format")

	// ErrTruncated reports a short read of a frame header or body.
	ErrTruncated = errTruncated{}

	// ErrClosed is returned by Writer and Reader operations after Close.
	ErrClosed = errors.New("snapframe: already closed")

	// ErrInvalidOption reports an out-of-range configuration value.
	ErrInvalidOption = errors.New("snapframe: invalid option")
)

// errTruncated matches both itself and io.ErrUnexpectedEOF.
type errTruncated struct{}

func (errTruncated) Error() string { return "snapframe: truncated stream" }

func (errTruncated) Is(target error) bool {
	return target == io.ErrUnexpectedEOF
}
