package vmdk

import (
	"fmt"
	"strings"
)

// Adorn appends an adornment to a base ".vmdk" filename, producing
// "<basename>-<adornment>.vmdk". name must end in ".vmdk" (case
// insensitive); fails with *InvalidArgumentError otherwise.
func Adorn(name, adornment string) (string, error) {
	if len(name) < 5 || !strings.EqualFold(name[len(name)-5:], ".vmdk") {
		return "", &InvalidArgumentError{Reason: fmt.Sprintf("filename %q does not end in .vmdk", name)}
	}
	base := name[:len(name)-5]
	return fmt.Sprintf("%s-%s.vmdk", base, adornment), nil
}

// FlatAdornment, SparseAdornment: fixed adornments for the single-extent
// create-types (MonolithicFlat/Vmfs and VmfsSparse).
const (
	FlatAdornment   = "flat"
	SparseAdornment = "sparse"
)

// FlatExtentAdornment and SparseExtentAdornment format the per-extent
// adornment used by the 2GB-max-extent create-types: "-{i:06x}.vmdk" for
// flat extents, "-s{i:03x}.vmdk" for sparse extents, with i starting at 1.
func FlatExtentAdornment(i int) string {
	return fmt.Sprintf("%06x", i)
}

func SparseExtentAdornment(i int) string {
	return fmt.Sprintf("s%03x", i)
}

// Geometry is a disk's CHS geometry, as embedded in the descriptor's
// ddb.geometry.* fields. The actual partition/geometry semantics beyond
// this triple are an external collaborator (see spec.md §1).
type Geometry struct {
	Cylinders uint32
	Heads     uint32
	Sectors   uint32
}

// DefaultGeometry derives a CHS geometry heuristically from capacity, per
// spec.md §4.10.
func DefaultGeometry(capacityBytes int64) Geometry {
	var heads, sectors uint32
	switch {
	case capacityBytes < OneGiB:
		heads, sectors = 64, 32
	case capacityBytes < 2*OneGiB:
		heads, sectors = 128, 32
	default:
		heads, sectors = 255, 63
	}
	cylinders := uint32(capacityBytes / (int64(heads) * int64(sectors) * SectorSize))
	return Geometry{Cylinders: cylinders, Heads: heads, Sectors: sectors}
}
