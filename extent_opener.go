package vmdk

import (
	"github.com/diskfs/go-vmdk/backend"
	"github.com/diskfs/go-vmdk/stream"
)

// FileLocator resolves an extent's filename (relative to the directory the
// top-level descriptor lives in) to backing storage. Implementations live
// outside this package (see vmdk/locator); this is the seam spec.md
// describes as an external collaborator.
type FileLocator interface {
	Open(relativeName string, mode OpenMode, access AccessMode, share ShareMode) (backend.Storage, error)
}

// OpenExtent opens a single extent per spec.md §4.7: dispatching on the
// extent's declared type, and wiring parent ownership through to whichever
// stream kind can fall through to it. extentStart is the extent's starting
// byte offset within the logical disk, used to re-anchor the parent stream
// onto this extent's own slice of the address space for a differencing
// disk's fallback reads.
func OpenExtent(loc FileLocator, ext ExtentDescriptor, extentStart int64, diskAccess AccessMode, parent stream.Stream, ownsParent bool) (stream.Stream, error) {
	access, share := effectiveAccessShare(diskAccess, ext.Access)
	size := ext.SizeSectors * SectorSize

	switch ext.Type {
	case ExtentFlat, ExtentVmfs:
		disposeParent(parent, ownsParent)
		storage, err := loc.Open(ext.Filename, OpenExisting, access, share)
		if err != nil {
			return nil, err
		}
		if ext.OffsetSectors != 0 {
			storage = backend.Sub(storage, ext.OffsetSectors*SectorSize, size)
		}
		return stream.NewPassthroughStream(storage, size, true), nil

	case ExtentZero:
		disposeParent(parent, ownsParent)
		return stream.NewZeroStream(size), nil

	case ExtentSparse:
		windowed, owns := windowParent(parent, ownsParent, extentStart, size)
		storage, err := loc.Open(ext.Filename, OpenExisting, access, share)
		if err != nil {
			return nil, err
		}
		head := make([]byte, hostedSparseHeaderSize)
		if _, err := storage.ReadAt(head, 0); err != nil {
			return nil, err
		}
		header, err := ParseHostedSparseExtentHeader(head)
		if err != nil {
			return nil, err
		}
		view := &stream.HostedHeaderView{
			Capacity:     header.Capacity,
			GrainSize:    header.GrainSize,
			GDOffset:     header.GDOffset,
			NumGTEsPerGT: header.NumGTEsPerGT,
			SectorSize:   SectorSize,
		}
		return stream.NewHostedSparseStream(storage, view, windowed, owns)

	case ExtentVmfsSparse:
		windowed, owns := windowParent(parent, ownsParent, extentStart, size)
		storage, err := loc.Open(ext.Filename, OpenExisting, access, share)
		if err != nil {
			return nil, err
		}
		head := make([]byte, serverSparseHeaderSize)
		if _, err := storage.ReadAt(head, 0); err != nil {
			return nil, err
		}
		header, err := ParseServerSparseExtentHeader(head)
		if err != nil {
			return nil, err
		}
		view := &stream.ServerHeaderView{
			Capacity:     header.Capacity,
			GDOffset:     header.GDOffset,
			NumGDEntries: header.NumGDEntries,
			SectorSize:   SectorSize,
		}
		return stream.NewServerSparseStream(storage, view, windowed, owns)

	default:
		disposeParent(parent, ownsParent)
		return nil, &UnsupportedExtentTypeError{Type: ext.Type}
	}
}

// windowParent re-anchors parent onto [extentStart, extentStart+size) so a
// sparse extent's internal grain lookups can address it with local,
// extent-relative offsets. A non-owning reference is passed through
// unwrapped-but-windowed; ownership (and thus eventual Close) travels with
// owns exactly as the caller specified.
func windowParent(parent stream.Stream, owns bool, extentStart, size int64) (stream.Stream, bool) {
	if parent == nil {
		return nil, false
	}
	return stream.Sub(parent, extentStart, size), owns
}

func disposeParent(parent stream.Stream, owns bool) {
	if parent != nil && owns {
		_ = parent.Close()
	}
}

// effectiveAccessShare implements spec.md §4.7's rule: an extent opens
// read-write only if both the disk's access mode and the extent's declared
// access allow it; share is exclusive whenever writable, shared-read
// otherwise.
func effectiveAccessShare(diskAccess AccessMode, extentAccess AccessMode) (AccessMode, ShareMode) {
	if diskAccess == AccessReadWrite && extentAccess == AccessReadWrite {
		return AccessReadWrite, ShareExclusive
	}
	return AccessRead, ShareRead
}
