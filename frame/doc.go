// Package frame implements the Snappy framing format: a self-describing
// stream of checksummed chunks, each holding at most 64 KiB of input.
//
// # Stream Layout
//
// A stream starts with a fixed 10-byte preamble, the stream identifier chunk:
//
//	ff 06 00 00 73 4e 61 50 70 59   ("sNaPpY")
//
// and continues with chunks of the form
//
//	+------+-----------------+-------------------+-----------+
//	| flag | length (3B, LE) | masked CRC32C (4B) |  payload  |
//	+------+-----------------+-------------------+-----------+
//
// where the checksum and payload are present for data chunks only and the
// length counts both. The checksum covers the uncompressed bytes and is
// masked as ((crc >> 15) | (crc << 17)) + 0xa282ead8.
//
// Flags (format.ChunkType):
//
//   - 0x00 compressed data: payload is a snappy block
//   - 0x01 uncompressed data: payload is raw bytes
//   - 0x02-0x7f reserved unskippable: the stream cannot be read
//   - 0x80-0xfe reserved skippable (0xfe is padding): ignored
//   - 0xff stream identifier: may repeat where streams were concatenated
//
// # Writing
//
// Writer buffers input into blocks (64 KiB by default), compresses each block
// and keeps the compressed form only when it is at most 85% of the raw size.
//
//	w, err := frame.NewWriter(dst)
//	if err != nil {
//	    return err
//	}
//	if _, err := w.Write(data); err != nil {
//	    return err
//	}
//	return w.Close()
//
// # Reading
//
//	r, err := frame.NewReader(src)
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	_, err = io.Copy(dst, r)
//
// # Resources
//
// Writer and Reader draw their buffers from a pool.Pool (pool.Default unless
// configured) and return them on Close. Neither is safe for concurrent use.
// Any data error is final: the stream must be discarded.
package frame
