package vmdk

import (
	"github.com/diskfs/go-vmdk/backend"
)

// InitializeFlatExtent sets a flat or Vmfs extent file's length to
// sizeBytes, per spec.md §4.6.
func InitializeFlatExtent(storage backend.Storage, sizeBytes int64) error {
	w, err := storage.Writable()
	if err != nil {
		return err
	}
	return growTo(w, sizeBytes)
}

// growTo extends the file's length to size by writing a single zero byte
// at its last offset; WriteAt past the current end of a regular file grows
// it with a hole, which is exactly the semantics a freshly initialized
// flat/sparse extent wants.
func growTo(w backend.WritableFile, size int64) error {
	if size == 0 {
		return nil
	}
	_, err := w.WriteAt([]byte{0}, size-1)
	return err
}

// InitializeHostedSparseExtent lays out and zero-initializes a new SPARSE
// extent of capacityBytes, with an embedded descriptor window of
// descriptorLengthBytes (0 if the descriptor lives in a separate file),
// per spec.md §4.6. It returns the header written to sector 0 and the
// layout it was derived from, so the caller can serialize the descriptor
// into the reserved window afterward.
func InitializeHostedSparseExtent(storage backend.Storage, capacityBytes, descriptorLengthBytes int64) (*HostedSparseExtentHeader, *ExtentLayout, error) {
	layout := PlanHostedSparseLayout(capacityBytes, descriptorLengthBytes)
	capacitySectors := RoundUpTo(capacityBytes, layout.GrainSizeSectors*SectorSize) / SectorSize
	descriptorSectors := CeilDiv(descriptorLengthBytes, SectorSize)

	header := &HostedSparseExtentHeader{
		Version:          1,
		Flags:            FlagValidLineDetectionTest | FlagRedundantGrainTable,
		Capacity:         uint64(capacitySectors),
		GrainSize:        uint64(layout.GrainSizeSectors),
		DescriptorOffset: uint64(layout.DescriptorStartSector),
		DescriptorSize:   uint64(descriptorSectors),
		NumGTEsPerGT:     NumGTEsPerGT,
		RGDOffset:        uint64(layout.RGDStartSector),
		GDOffset:         uint64(layout.GDStartSector),
		Overhead:         uint64(layout.DataStartSector),
	}

	w, err := storage.Writable()
	if err != nil {
		return nil, nil, err
	}

	if _, err := w.WriteAt(header.ToBytes(), 0); err != nil {
		return nil, nil, err
	}

	if descriptorSectors > 0 {
		zeros := make([]byte, descriptorSectors*SectorSize)
		if _, err := w.WriteAt(zeros, layout.DescriptorStartSector*SectorSize); err != nil {
			return nil, nil, err
		}
	}

	gtStride := grainTableStrideSectors()
	numGT := layout.NumGrainTables

	if err := writeGrainDirectory(w, layout.RGDStartSector, layout.RedundantGTStartSector, numGT, gtStride); err != nil {
		return nil, nil, err
	}
	if err := writeZeroGrainTables(w, layout.RedundantGTStartSector, numGT, gtStride); err != nil {
		return nil, nil, err
	}

	if err := writeGrainDirectory(w, layout.GDStartSector, layout.GTStartSector, numGT, gtStride); err != nil {
		return nil, nil, err
	}
	if err := writeZeroGrainTables(w, layout.GTStartSector, numGT, gtStride); err != nil {
		return nil, nil, err
	}

	if err := growTo(w, layout.DataStartSector*SectorSize); err != nil {
		return nil, nil, err
	}

	return header, &layout, nil
}

// writeGrainDirectory writes numGT little-endian 32-bit sector offsets at
// gdStartSector, one per grain table, each gtStride sectors past the
// previous, starting at gtRegionStartSector.
func writeGrainDirectory(w backend.WritableFile, gdStartSector, gtRegionStartSector, numGT, gtStride int64) error {
	gd := make([]byte, numGT*4)
	for i := int64(0); i < numGT; i++ {
		sectorOffset := uint32(gtRegionStartSector + i*gtStride)
		putUint32LE(gd[i*4:], sectorOffset)
	}
	_, err := w.WriteAt(gd, gdStartSector*SectorSize)
	return err
}

// writeZeroGrainTables zero-fills the numGT grain tables (every grain
// unallocated) starting at regionStartSector.
func writeZeroGrainTables(w backend.WritableFile, regionStartSector, numGT, gtStride int64) error {
	zeros := make([]byte, numGT*gtStride*SectorSize)
	_, err := w.WriteAt(zeros, regionStartSector*SectorSize)
	return err
}

// InitializeServerSparseExtent lays out a new VmfsSparse extent: the
// 4-sector header followed by a zero-filled global directory, per
// spec.md §4.6. Grain allocation on write is out of scope, so the data
// region is left unallocated.
func InitializeServerSparseExtent(storage backend.Storage, capacityBytes int64) (*ServerSparseExtentHeader, error) {
	capacitySectors := uint64(CeilDiv(capacityBytes, SectorSize))
	header := NewServerSparseExtentHeader(capacitySectors)

	w, err := storage.Writable()
	if err != nil {
		return nil, err
	}
	if _, err := w.WriteAt(header.ToBytes(), 0); err != nil {
		return nil, err
	}
	gd := make([]byte, int64(header.NumGDEntries)*4)
	if _, err := w.WriteAt(gd, int64(header.GDOffset)*SectorSize); err != nil {
		return nil, err
	}
	if err := growTo(w, int64(header.FreeSector)*SectorSize); err != nil {
		return nil, err
	}
	return header, nil
}
