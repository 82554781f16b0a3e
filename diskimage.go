package vmdk

import (
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/diskfs/go-vmdk/backend"
	"github.com/diskfs/go-vmdk/locator"
	"github.com/diskfs/go-vmdk/stream"
)

// DiskImageFile is the top-level handle on a VMDK: its parsed descriptor,
// the locator used to resolve extent filenames, and (for the OpenStream
// path) the already-open monolithic byte source, per spec.md §4.8.
//
// Not safe for concurrent mutation: it holds no lock of its own.
type DiskImageFile struct {
	descriptor *Descriptor
	access     AccessMode
	path       string

	loc FileLocator

	// set when opened via Open or Initialize: the storage backing the
	// descriptor itself, so rewriteDescriptor can serialize back into it.
	descStorage  backend.Storage
	descEmbedded bool
	descOffset   int64
	descWindow   int64

	// set when opened via OpenStream: the single sparse extent's own byte
	// source, probed directly rather than resolved through loc.
	monolithicStorage backend.Storage
	monolithicHeader  *HostedSparseExtentHeader
	ownsMonolithic    bool
}

// Open opens the VMDK descriptor at path (either a bare descriptor file or
// a hosted-sparse extent carrying an embedded one), per spec.md §4.8.
// Access governs both the share mode taken on path and whether extents are
// later opened read-write. A writable open immediately rewrites the
// descriptor with a fresh content id (spec.md §5's mandatory side effect).
func Open(path string, access AccessMode) (*DiskImageFile, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	dirLocator := locator.NewDirectory(dir)

	share := ShareRead
	if access == AccessReadWrite {
		share = ShareExclusive
	}

	storage, err := dirLocator.Open(base, OpenExisting, access, share)
	if err != nil {
		return nil, err
	}

	result, err := DescriptorProbe(storage)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	if result.Descriptor == nil {
		_ = storage.Close()
		return nil, &NotAVmdkError{Path: path}
	}

	d := &DiskImageFile{
		descriptor:   result.Descriptor,
		access:       access,
		path:         path,
		loc:          dirLocator,
		descStorage:  storage,
		descEmbedded: result.IsHostedSparse,
		descOffset:   result.DescriptorOffset,
		descWindow:   result.DescriptorSectorCapacity * SectorSize,
	}

	if access == AccessReadWrite {
		logrus.WithField("path", path).Debug("vmdk: rewriting descriptor on writable open")
		if err := d.rewriteDescriptor(); err != nil {
			_ = storage.Close()
			return nil, err
		}
	}

	return d, nil
}

// OpenStream probes storage directly as a self-contained monolithic
// sparse extent (descriptor embedded in its own header), per spec.md
// §4.8. It requires create_type MonolithicSparse, exactly one Sparse
// extent, and no parent. ownsStorage governs whether Close disposes
// storage.
func OpenStream(storage backend.Storage, ownsStorage bool) (*DiskImageFile, error) {
	result, err := DescriptorProbe(storage)
	if err != nil {
		return nil, err
	}
	if result.Descriptor == nil {
		return nil, &NotAVmdkError{Path: "<stream>"}
	}
	desc := result.Descriptor
	if desc.CreateType != MonolithicSparse {
		return nil, &InvalidArgumentError{Reason: "OpenStream requires create type monolithicSparse"}
	}
	if len(desc.Extents) != 1 || desc.Extents[0].Type != ExtentSparse {
		return nil, &InvalidArgumentError{Reason: "OpenStream requires exactly one Sparse extent"}
	}
	if desc.HasParent() {
		return nil, &InvalidArgumentError{Reason: "OpenStream requires no parent"}
	}

	return &DiskImageFile{
		descriptor:        desc,
		access:            AccessReadWrite,
		monolithicStorage: storage,
		monolithicHeader:  result.Header,
		ownsMonolithic:    ownsStorage,
	}, nil
}

// Initialize creates a new VMDK of the given capacity and create-type at
// path, per spec.md §4.8. Initialize is not atomic: a failure partway
// through may leave some extent files already written; the caller is
// responsible for cleanup.
func Initialize(path string, capacityBytes int64, createType CreateType) (*DiskImageFile, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	dirLocator := locator.NewDirectory(dir)

	switch createType {
	case MonolithicSparse:
		return initializeMonolithicSparse(dirLocator, path, base, capacityBytes)
	case MonolithicFlat, Vmfs, VmfsSparse:
		return initializeSingleExtentWithDescriptor(dirLocator, path, base, capacityBytes, createType)
	case TwoGbMaxExtentFlat, TwoGbMaxExtentSparse:
		return initializeSplitExtents(dirLocator, path, base, capacityBytes, createType)
	default:
		return nil, &UnsupportedCreateTypeError{Type: createType}
	}
}

func newInitializedDescriptor(createType CreateType, capacityBytes int64) *Descriptor {
	desc := NewDescriptor(createType)
	desc.Geometry = DefaultGeometry(capacityBytes)
	desc.UniqueID = uuid.NewString()
	return desc
}

func initializeMonolithicSparse(loc *locator.Directory, path, base string, capacityBytes int64) (*DiskImageFile, error) {
	const reservedDescriptorBytes = 10 * OneKiB

	storage, err := loc.Open(base, OpenCreate, AccessReadWrite, ShareExclusive)
	if err != nil {
		return nil, err
	}
	header, layout, err := InitializeHostedSparseExtent(storage, capacityBytes, reservedDescriptorBytes)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	desc := newInitializedDescriptor(MonolithicSparse, capacityBytes)
	desc.Extents = []ExtentDescriptor{{
		Access:      AccessReadWrite,
		SizeSectors: CeilDiv(capacityBytes, SectorSize),
		Type:        ExtentSparse,
		Filename:    base,
	}}

	d := &DiskImageFile{
		descriptor:   desc,
		access:       AccessReadWrite,
		path:         path,
		loc:          loc,
		descStorage:  storage,
		descEmbedded: true,
		descOffset:   layout.DescriptorStartSector * SectorSize,
		descWindow:   int64(header.DescriptorSize) * SectorSize,
	}
	if err := d.rewriteDescriptor(); err != nil {
		_ = storage.Close()
		return nil, err
	}
	return d, nil
}

func initializeSingleExtentWithDescriptor(loc *locator.Directory, path, base string, capacityBytes int64, createType CreateType) (*DiskImageFile, error) {
	extentType, err := TypeMap(createType)
	if err != nil {
		return nil, err
	}

	adornment := FlatAdornment
	if createType == VmfsSparse {
		adornment = SparseAdornment
	}
	extentName, err := Adorn(base, adornment)
	if err != nil {
		return nil, err
	}

	extentStorage, err := loc.Open(extentName, OpenCreate, AccessReadWrite, ShareExclusive)
	if err != nil {
		return nil, err
	}
	switch extentType {
	case ExtentFlat, ExtentVmfs:
		err = InitializeFlatExtent(extentStorage, capacityBytes)
	case ExtentVmfsSparse:
		_, err = InitializeServerSparseExtent(extentStorage, capacityBytes)
	default:
		err = &UnsupportedExtentTypeError{Type: extentType}
	}
	closeErr := extentStorage.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	desc := newInitializedDescriptor(createType, capacityBytes)
	desc.Extents = []ExtentDescriptor{{
		Access:      AccessReadWrite,
		SizeSectors: CeilDiv(capacityBytes, SectorSize),
		Type:        extentType,
		Filename:    extentName,
	}}

	return writeBareDescriptorAndOpen(loc, path, base, desc)
}

func initializeSplitExtents(loc *locator.Directory, path, base string, capacityBytes int64, createType CreateType) (*DiskImageFile, error) {
	const maxExtentBytes = 2*OneGiB - OneMiB

	extentType, err := TypeMap(createType)
	if err != nil {
		return nil, err
	}

	var extents []ExtentDescriptor
	remaining := capacityBytes
	for i := 1; remaining > 0; i++ {
		size := remaining
		if size > maxExtentBytes {
			size = maxExtentBytes
		}

		var adornment string
		if createType == TwoGbMaxExtentFlat {
			adornment = FlatExtentAdornment(i)
		} else {
			adornment = SparseExtentAdornment(i)
		}
		name, err := Adorn(base, adornment)
		if err != nil {
			return nil, err
		}

		storage, err := loc.Open(name, OpenCreate, AccessReadWrite, ShareExclusive)
		if err != nil {
			return nil, err
		}
		if extentType == ExtentFlat {
			err = InitializeFlatExtent(storage, size)
		} else {
			_, _, err = InitializeHostedSparseExtent(storage, size, 0)
		}
		closeErr := storage.Close()
		if err != nil {
			return nil, err
		}
		if closeErr != nil {
			return nil, closeErr
		}

		extents = append(extents, ExtentDescriptor{
			Access:      AccessReadWrite,
			SizeSectors: CeilDiv(size, SectorSize),
			Type:        extentType,
			Filename:    name,
		})
		remaining -= size
	}

	desc := newInitializedDescriptor(createType, capacityBytes)
	desc.Extents = extents

	return writeBareDescriptorAndOpen(loc, path, base, desc)
}

func writeBareDescriptorAndOpen(loc *locator.Directory, path, base string, desc *Descriptor) (*DiskImageFile, error) {
	storage, err := loc.Open(base, OpenCreate, AccessReadWrite, ShareExclusive)
	if err != nil {
		return nil, err
	}
	d := &DiskImageFile{
		descriptor:  desc,
		access:      AccessReadWrite,
		path:        path,
		loc:         loc,
		descStorage: storage,
	}
	if err := d.rewriteDescriptor(); err != nil {
		_ = storage.Close()
		return nil, err
	}
	return d, nil
}

// rewriteDescriptor serializes d.descriptor with a fresh content id back
// into its backing storage: the fixed embedded window for a hosted-sparse
// carrier, or the whole file (truncated to the new length) for a bare
// descriptor file. Serializing to a buffer before touching storage is
// deliberate: a failure constructing the new bytes must never leave a
// half-written descriptor on disk.
func (d *DiskImageFile) rewriteDescriptor() error {
	d.descriptor.ContentID = newContentID()
	buf := d.descriptor.Serialize()

	w, err := d.descStorage.Writable()
	if err != nil {
		return err
	}

	if d.descEmbedded {
		if int64(len(buf)) > d.descWindow {
			return &CorruptError{Reason: "rewritten descriptor exceeds reserved embedded window"}
		}
		padded := make([]byte, d.descWindow)
		copy(padded, buf)
		_, err := w.WriteAt(padded, d.descOffset)
		return err
	}

	if sys, sysErr := d.descStorage.Sys(); sysErr == nil {
		if err := sys.Truncate(int64(len(buf))); err != nil {
			return err
		}
	}
	_, err = w.WriteAt(buf, 0)
	return err
}

// OpenContent composes the disk's logical sparse stream, per spec.md
// §4.8. If the descriptor names no parent, the caller-supplied parent (if
// any) is disposed per ownsParent and replaced with a zero-stream of the
// disk's own capacity.
func (d *DiskImageFile) OpenContent(parent stream.Stream, ownsParent bool) (stream.Stream, error) {
	if !d.descriptor.HasParent() {
		if parent != nil && ownsParent {
			_ = parent.Close()
		}
		parent = stream.NewZeroStream(d.Capacity())
		ownsParent = true
	}

	if d.monolithicStorage != nil {
		view := &stream.HostedHeaderView{
			Capacity:     d.monolithicHeader.Capacity,
			GrainSize:    d.monolithicHeader.GrainSize,
			GDOffset:     d.monolithicHeader.GDOffset,
			NumGTEsPerGT: d.monolithicHeader.NumGTEsPerGT,
			SectorSize:   SectorSize,
		}
		return stream.NewHostedSparseStream(d.monolithicStorage, view, parent, ownsParent)
	}

	extents := d.descriptor.Extents
	if len(extents) == 1 {
		return OpenExtent(d.loc, extents[0], 0, d.access, parent, ownsParent)
	}

	members := make([]stream.Stream, len(extents))
	var extentStart int64
	for i, ext := range extents {
		owns := i == len(extents)-1
		member, err := OpenExtent(d.loc, ext, extentStart, d.access, parent, owns)
		if err != nil {
			for _, opened := range members[:i] {
				if opened != nil {
					_ = opened.Close()
				}
			}
			return nil, err
		}
		members[i] = member
		extentStart += ext.SizeSectors * SectorSize
	}
	return stream.NewConcatStream(members), nil
}

// Capacity is the sum of the descriptor's extent sizes, in bytes.
func (d *DiskImageFile) Capacity() int64 {
	return d.descriptor.CapacitySectors() * SectorSize
}

// IsSparse reports whether the disk's create-type uses sparse (grain
// table driven) extents.
func (d *DiskImageFile) IsSparse() bool {
	switch d.descriptor.CreateType {
	case MonolithicSparse, TwoGbMaxExtentSparse, VmfsSparse:
		return true
	default:
		return false
	}
}

// Descriptor returns the disk's parsed descriptor, primarily for
// inspection tooling (see cmd/vmdkctl).
func (d *DiskImageFile) Descriptor() *Descriptor {
	return d.descriptor
}

// CreateType is the descriptor's create-type.
func (d *DiskImageFile) CreateType() CreateType {
	return d.descriptor.CreateType
}

// NeedsParent reports whether the descriptor names a parent disk.
func (d *DiskImageFile) NeedsParent() bool {
	return d.descriptor.HasParent()
}

// ParentLocation is the descriptor's parentFileNameHint, valid only when
// NeedsParent is true.
func (d *DiskImageFile) ParentLocation() string {
	return d.descriptor.ParentFileNameHint
}

// Close releases whichever storage this DiskImageFile owns.
func (d *DiskImageFile) Close() error {
	if d.monolithicStorage != nil {
		if d.ownsMonolithic {
			return d.monolithicStorage.Close()
		}
		return nil
	}
	if d.descStorage != nil {
		return d.descStorage.Close()
	}
	return nil
}
