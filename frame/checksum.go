package frame

import "hash/crc32"

var crcTable = crc32.MakeTable(crc32.Castagnoli)

// maskedChecksum returns the masked CRC32C of b.
func maskedChecksum(b []byte) uint32 {
	return maskChecksum(crc32.Checksum(b, crcTable))
}

// maskChecksum rotates crc right by 15 bits and adds a constant, so that a
// checksum stored inside checksummed data does not cancel itself out.
func maskChecksum(crc uint32) uint32 {
	return (crc>>15 | crc<<17) + 0xa282ead8
}
