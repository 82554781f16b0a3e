package vmdk

// ExtentLayout is the computed on-disk geometry for a new hosted-sparse
// extent: grain size, redundant-grain-directory/table and main
// grain-directory/table placement, and the data start offset, per
// spec.md §4.5.
type ExtentLayout struct {
	GrainSizeSectors       int64
	NumGrainTables         int64
	DescriptorStartSector  int64
	RGDStartSector         int64
	RedundantGTStartSector int64
	GDStartSector          int64
	GTStartSector          int64
	DataStartSector        int64 // == header Overhead
}

// targetGrainTables and gtesPerGrainTable are the constants the source's
// grain-size heuristic is built from: aim for 256 grain tables of 512
// entries each covering the whole disk.
const (
	targetGrainTables = 256
	gtesPerGrainTable = NumGTEsPerGT
)

// PlanHostedSparseLayout computes the layout for a new hosted-sparse
// extent of sizeBytes, with an embedded descriptor of
// descriptorLengthBytes bytes (0 if the descriptor is not embedded in this
// extent).
//
// The formulas reproduce the source byte-for-byte: grain size is plain
// integer division (never rounded to a power of two), and every region is
// placed immediately after the previous one, sector-aligned.
func PlanHostedSparseLayout(sizeBytes, descriptorLengthBytes int64) ExtentLayout {
	grainSize := sizeBytes / (targetGrainTables * gtesPerGrainTable * SectorSize)
	if grainSize < 8 {
		grainSize = 8
	}

	grainTableSpanBytes := grainSize * gtesPerGrainTable * SectorSize
	numGrainTables := CeilDiv(sizeBytes, grainTableSpanBytes)

	descriptorLength := RoundUpTo(descriptorLengthBytes, SectorSize)
	var descriptorStart int64
	if descriptorLength != 0 {
		descriptorStart = 1
	}

	rgdStart := max(descriptorStart, 1) + CeilDiv(descriptorLength, SectorSize)

	rgdLength := numGrainTables * 4
	redundantGTStart := rgdStart + CeilDiv(rgdLength, SectorSize)

	gtStride := RoundUpTo(gtesPerGrainTable*4, SectorSize)
	redundantGTLength := numGrainTables * gtStride
	gdStart := redundantGTStart + CeilDiv(redundantGTLength, SectorSize)

	gdLength := numGrainTables * 4
	gtStart := gdStart + CeilDiv(gdLength, SectorSize)

	gtLength := numGrainTables * gtStride
	dataStart := RoundUpTo(gtStart+CeilDiv(gtLength, SectorSize), grainSize)

	return ExtentLayout{
		GrainSizeSectors:       grainSize,
		NumGrainTables:         numGrainTables,
		DescriptorStartSector:  descriptorStart,
		RGDStartSector:         rgdStart,
		RedundantGTStartSector: redundantGTStart,
		GDStartSector:          gdStart,
		GTStartSector:          gtStart,
		DataStartSector:        dataStart,
	}
}

// grainTableStrideSectors is the on-disk stride, in sectors, between
// successive grain tables: each table occupies ceil(gtesPerGrainTable*4,
// SectorSize) sectors, rounded up to a whole sector.
func grainTableStrideSectors() int64 {
	return CeilDiv(RoundUpTo(gtesPerGrainTable*4, SectorSize), SectorSize)
}
