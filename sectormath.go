package vmdk

import "encoding/binary"

// Sector-granular constants used throughout the layout and header math.
const (
	SectorSize = 512
	OneKiB     = 1024
	OneMiB     = 1 << 20
	OneGiB     = 1 << 30
)

// CeilDiv returns ceil(a / b) for positive a, b.
func CeilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

// RoundUpTo rounds a up to the next multiple of b.
func RoundUpTo(a, b int64) int64 {
	return CeilDiv(a, b) * b
}

// little-endian field codecs over fixed byte windows, used by the header
// and grain/redundant-grain table encoders.

func getUint16LE(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func getUint32LE(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func getUint64LE(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

func putUint16LE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func putUint32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func putUint64LE(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
