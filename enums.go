package vmdk

import "github.com/diskfs/go-vmdk/backend"

// CreateType enumerates the VMDK variants this package can open or
// initialize. The string form matches the createType token used in the
// textual descriptor (see descriptor.go).
type CreateType int

const (
	CreateTypeUnknown CreateType = iota
	MonolithicSparse
	MonolithicFlat
	TwoGbMaxExtentSparse
	TwoGbMaxExtentFlat
	FullDevice
	PartitionedDevice
	StreamOptimized
	Vmfs
	VmfsSparse
	VmfsRaw
	VmfsRawDeviceMap
	VmfsPassthroughRawDeviceMap
)

var createTypeNames = map[CreateType]string{
	MonolithicSparse:            "monolithicSparse",
	MonolithicFlat:              "monolithicFlat",
	TwoGbMaxExtentSparse:        "twoGbMaxExtentSparse",
	TwoGbMaxExtentFlat:          "twoGbMaxExtentFlat",
	FullDevice:                  "fullDevice",
	PartitionedDevice:           "partitionedDevice",
	StreamOptimized:             "streamOptimized",
	Vmfs:                        "vmfs",
	VmfsSparse:                  "vmfsSparse",
	VmfsRaw:                     "vmfsRaw",
	VmfsRawDeviceMap:            "vmfsRawDeviceMap",
	VmfsPassthroughRawDeviceMap: "vmfsPassthroughRawDeviceMap",
}

var createTypeByName = func() map[string]CreateType {
	m := make(map[string]CreateType, len(createTypeNames))
	for k, v := range createTypeNames {
		m[v] = k
	}
	return m
}()

func (c CreateType) String() string {
	if s, ok := createTypeNames[c]; ok {
		return s
	}
	return "unknown"
}

// ParseCreateType parses the descriptor's createType token.
func ParseCreateType(s string) (CreateType, error) {
	if c, ok := createTypeByName[s]; ok {
		return c, nil
	}
	return CreateTypeUnknown, &InvalidArgumentError{Reason: "unknown create type " + s}
}

// ExtentType enumerates the kinds of extent an ExtentDescriptor can name.
type ExtentType int

const (
	ExtentTypeUnknown ExtentType = iota
	ExtentFlat
	ExtentSparse
	ExtentZero
	ExtentVmfs
	ExtentVmfsSparse
	ExtentVmfsRdm
	ExtentVmfsRaw
)

var extentTypeNames = map[ExtentType]string{
	ExtentFlat:       "FLAT",
	ExtentSparse:     "SPARSE",
	ExtentZero:       "ZERO",
	ExtentVmfs:       "VMFS",
	ExtentVmfsSparse: "VMFSSPARSE",
	ExtentVmfsRdm:    "VMFSRDM",
	ExtentVmfsRaw:    "VMFSRAW",
}

var extentTypeByName = func() map[string]ExtentType {
	m := make(map[string]ExtentType, len(extentTypeNames))
	for k, v := range extentTypeNames {
		m[v] = k
	}
	return m
}()

func (e ExtentType) String() string {
	if s, ok := extentTypeNames[e]; ok {
		return s
	}
	return "UNKNOWN"
}

// ParseExtentType parses the extent-type token from an extent description
// line (e.g. "SPARSE", "FLAT").
func ParseExtentType(s string) (ExtentType, error) {
	if e, ok := extentTypeByName[s]; ok {
		return e, nil
	}
	return ExtentTypeUnknown, &InvalidArgumentError{Reason: "unknown extent type " + s}
}

// TypeMap maps a create-type to the extent type used for its data extent(s),
// per spec.md §4.11.
func TypeMap(c CreateType) (ExtentType, error) {
	switch c {
	case FullDevice, MonolithicFlat, PartitionedDevice, TwoGbMaxExtentFlat:
		return ExtentFlat, nil
	case MonolithicSparse, StreamOptimized, TwoGbMaxExtentSparse:
		return ExtentSparse, nil
	case Vmfs:
		return ExtentVmfs, nil
	case VmfsPassthroughRawDeviceMap:
		return ExtentVmfsRdm, nil
	case VmfsRaw, VmfsRawDeviceMap:
		return ExtentVmfsRaw, nil
	case VmfsSparse:
		return ExtentVmfsSparse, nil
	default:
		return ExtentTypeUnknown, &InvalidArgumentError{Reason: "no extent type for create type " + c.String()}
	}
}

// AccessMode is the access requested when opening a disk or an individual
// extent file. It is a type alias for backend.AccessMode so that both this
// package and vmdk/locator can implement FileLocator without an import
// cycle between them.
type AccessMode = backend.AccessMode

const (
	AccessRead      = backend.AccessRead
	AccessReadWrite = backend.AccessReadWrite
)

// ShareMode governs the file lock taken while an extent (or the monolithic
// file) is open, per spec.md §5's locking discipline.
type ShareMode = backend.ShareMode

const (
	ShareRead      = backend.ShareRead
	ShareExclusive = backend.ShareExclusive
)

// OpenMode tells a FileLocator whether the named file must already exist
// or should be created fresh.
type OpenMode = backend.OpenMode

const (
	OpenExisting = backend.OpenExisting
	OpenCreate   = backend.OpenCreate
)
