package ipc

import "encoding/binary"

// WriteUint32LE packs v into dst[0:4] as little-endian, the wire format every integer in a
// Message's payload uses.
func WriteUint32LE(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

// ReadUint32LE unpacks a little-endian uint32 from src[0:4].
func ReadUint32LE(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}
