package vmdk

// ServerSparseMagic is the magic ("COWD") carried at the front of a
// server-sparse (VMFS-sparse) extent header.
const ServerSparseMagic uint32 = 0x44574f43

// serverSparseHeaderSectors is the header's on-disk footprint: 4 sectors
// (2048 bytes), per spec.md §4.3.
const serverSparseHeaderSectors = 4
const serverSparseHeaderSize = serverSparseHeaderSectors * SectorSize

// serverSparseGrainRegionSize is the 2MiB unit that num_gd_entries is
// computed against.
const serverSparseGrainRegionSize = 2 * OneMiB

const (
	offServerMagic        = 0
	offServerVersion      = 4
	offServerFlags        = 8
	offServerCapacity     = 12
	offServerGrainSize    = 20
	offServerGDOffset     = 28
	offServerNumGDEntries = 36
	offServerFreeSector   = 40
)

// ServerSparseExtentHeader is the fixed header of a server-sparse (VMFS
// sparse) extent, per spec.md §3/§4.3.
type ServerSparseExtentHeader struct {
	Version      uint32
	Flags        uint32
	Capacity     uint64 // sectors
	GrainSize    uint64 // sectors, always 1
	GDOffset     uint64 // sectors, always 4
	NumGDEntries uint32
	FreeSector   uint64
}

// NewServerSparseExtentHeader computes the header for a new server-sparse
// extent of the given capacity, per spec.md §4.3's formulas.
func NewServerSparseExtentHeader(capacitySectors uint64) *ServerSparseExtentHeader {
	capacityBytes := int64(capacitySectors) * SectorSize
	numGDEntries := uint32(CeilDiv(capacityBytes, serverSparseGrainRegionSize))
	gdLengthBytes := int64(numGDEntries) * 4
	freeSector := uint64(serverSparseHeaderSectors) + uint64(CeilDiv(gdLengthBytes, SectorSize))
	return &ServerSparseExtentHeader{
		Version:      1,
		Capacity:     capacitySectors,
		GrainSize:    1,
		GDOffset:     serverSparseHeaderSectors,
		NumGDEntries: numGDEntries,
		FreeSector:   freeSector,
	}
}

// ToBytes serializes the header into the first 2048 bytes (4 sectors) of
// the extent file; the remainder of those sectors is zero.
func (h *ServerSparseExtentHeader) ToBytes() []byte {
	b := make([]byte, serverSparseHeaderSize)
	putUint32LE(b[offServerMagic:], ServerSparseMagic)
	putUint32LE(b[offServerVersion:], h.Version)
	putUint32LE(b[offServerFlags:], h.Flags)
	putUint64LE(b[offServerCapacity:], h.Capacity)
	putUint64LE(b[offServerGrainSize:], h.GrainSize)
	putUint64LE(b[offServerGDOffset:], h.GDOffset)
	putUint32LE(b[offServerNumGDEntries:], h.NumGDEntries)
	putUint64LE(b[offServerFreeSector:], h.FreeSector)
	return b
}

// ParseServerSparseExtentHeader decodes a 2048-byte header region.
func ParseServerSparseExtentHeader(b []byte) (*ServerSparseExtentHeader, error) {
	if len(b) < serverSparseHeaderSize {
		return nil, &CorruptError{Reason: "server sparse header short read"}
	}
	magic := getUint32LE(b[offServerMagic:])
	if magic != ServerSparseMagic {
		return nil, &NotAVmdkError{Path: "<stream>"}
	}
	return &ServerSparseExtentHeader{
		Version:      getUint32LE(b[offServerVersion:]),
		Flags:        getUint32LE(b[offServerFlags:]),
		Capacity:     getUint64LE(b[offServerCapacity:]),
		GrainSize:    getUint64LE(b[offServerGrainSize:]),
		GDOffset:     getUint64LE(b[offServerGDOffset:]),
		NumGDEntries: getUint32LE(b[offServerNumGDEntries:]),
		FreeSector:   getUint64LE(b[offServerFreeSector:]),
	}, nil
}
