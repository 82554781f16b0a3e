package vmdk

// HostedSparseMagic is the 4-byte little-endian magic ("KDMV") at offset 0
// of a hosted-sparse extent file.
const HostedSparseMagic uint32 = 0x564d444b

// Flags understood in a HostedSparseExtentHeader.
const (
	FlagValidLineDetectionTest uint32 = 1 << 0
	FlagRedundantGrainTable    uint32 = 1 << 1
	FlagCompressedGrains       uint32 = 1 << 16
	FlagHasMarkers             uint32 = 1 << 17
)

// hostedSparseHeaderSize is the full on-disk sector occupied by the header;
// only the first 72 bytes carry meaningful fields, the rest is zero.
const hostedSparseHeaderSize = SectorSize

// field byte offsets within the header sector.
const (
	offMagic            = 0
	offVersion          = 4
	offFlags            = 8
	offCapacity         = 12
	offGrainSize        = 20
	offDescriptorOffset = 28
	offDescriptorSize   = 36
	offNumGTEsPerGT     = 44
	offRGDOffset        = 48
	offGDOffset         = 56
	offOverhead         = 64
)

// NumGTEsPerGT is fixed at 512 entries per grain table, per spec.md §3.
const NumGTEsPerGT = 512

// HostedSparseExtentHeader is the fixed 512-byte header at offset 0 of a
// hosted-sparse extent file (spec.md §3, §4.2).
type HostedSparseExtentHeader struct {
	Version          uint32
	Flags            uint32
	Capacity         uint64 // sectors
	GrainSize        uint64 // sectors
	DescriptorOffset uint64 // sectors, 0 if no embedded descriptor
	DescriptorSize   uint64 // sectors
	NumGTEsPerGT     uint32
	RGDOffset        uint64 // sectors
	GDOffset         uint64 // sectors
	Overhead         uint64 // sectors; offset of the first data grain
}

// ToBytes serializes the header into exactly 512 bytes, magic first,
// remaining bytes zero.
func (h *HostedSparseExtentHeader) ToBytes() []byte {
	b := make([]byte, hostedSparseHeaderSize)
	putUint32LE(b[offMagic:], HostedSparseMagic)
	putUint32LE(b[offVersion:], h.Version)
	putUint32LE(b[offFlags:], h.Flags)
	putUint64LE(b[offCapacity:], h.Capacity)
	putUint64LE(b[offGrainSize:], h.GrainSize)
	putUint64LE(b[offDescriptorOffset:], h.DescriptorOffset)
	putUint64LE(b[offDescriptorSize:], h.DescriptorSize)
	putUint32LE(b[offNumGTEsPerGT:], h.NumGTEsPerGT)
	putUint64LE(b[offRGDOffset:], h.RGDOffset)
	putUint64LE(b[offGDOffset:], h.GDOffset)
	putUint64LE(b[offOverhead:], h.Overhead)
	return b
}

// ParseHostedSparseExtentHeader decodes a 512-byte header sector. It fails
// with *CorruptError if b is short and with *NotAVmdkError when the leading
// u32 is not the VMDK magic.
func ParseHostedSparseExtentHeader(b []byte) (*HostedSparseExtentHeader, error) {
	if len(b) < hostedSparseHeaderSize {
		return nil, &CorruptError{Reason: "hosted sparse header short read"}
	}
	magic := getUint32LE(b[offMagic:])
	if magic != HostedSparseMagic {
		return nil, &NotAVmdkError{Path: "<stream>"}
	}
	return &HostedSparseExtentHeader{
		Version:          getUint32LE(b[offVersion:]),
		Flags:            getUint32LE(b[offFlags:]),
		Capacity:         getUint64LE(b[offCapacity:]),
		GrainSize:        getUint64LE(b[offGrainSize:]),
		DescriptorOffset: getUint64LE(b[offDescriptorOffset:]),
		DescriptorSize:   getUint64LE(b[offDescriptorSize:]),
		NumGTEsPerGT:     getUint32LE(b[offNumGTEsPerGT:]),
		RGDOffset:        getUint64LE(b[offRGDOffset:]),
		GDOffset:         getUint64LE(b[offGDOffset:]),
		Overhead:         getUint64LE(b[offOverhead:]),
	}, nil
}
