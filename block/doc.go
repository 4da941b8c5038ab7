// Package block implements the Snappy block format: a from-scratch compressor
// and decompressor with no cgo and no native library.
//
// # Format
//
// A compressed block is the uncompressed length as a little-endian base-128
// varint (at most 5 bytes), followed by a sequence of elements. The low two
// bits of each element's tag byte select its class:
//
//   - 0b00 literal: the upper six bits hold length-1 when below 60; values
//     60..63 mean the length-1 follows in 1..4 little-endian bytes. The
//     literal bytes follow.
//   - 0b01 copy with 1-byte offset: length 4..11 in bits 2-4, offset bits 8-10
//     in bits 5-7, offset bits 0-7 in the next byte.
//   - 0b10 copy with 2-byte offset: length-1 in the upper six bits, offset in
//     the next two bytes.
//   - 0b11 copy with 4-byte offset: as 0b10 with a 4-byte offset. Decoded but
//     never produced.
//
// # Compression
//
// Input is split into windows of at most MaxWindowSize bytes so every match
// offset fits in 16 bits. Each window is scanned with a hash table of 4-byte
// prefixes; runs without matches are sampled progressively more sparsely
// until the next match. Compressed output never exceeds MaxEncodedLen(n).
//
// # Usage
//
//	compressed, err := block.Encode(nil, data)
//	original, err := block.Decode(nil, compressed)
//
// For zero-allocation use, keep an Encoder per goroutine and pass buffers
// checked out from a pool.Pool:
//
//	enc := block.NewEncoder()
//	n, err := enc.EncodeBlock(dst, src) // len(dst) >= MaxEncodedLen(len(src))
//
// # Errors
//
// Decoding reports errs.ErrParsing for malformed elements and
// errs.ErrInvalidChunkSize for length mismatches. Both are final for the
// block in question.
package block
