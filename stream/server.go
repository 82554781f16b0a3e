package stream

import (
	"github.com/diskfs/go-vmdk/backend"
)

// serverSparseRegionSize is the fixed 2MiB granularity a server-sparse
// (VMFS-sparse) grain directory addresses, per spec.md §3/§4.3.
const serverSparseRegionSize = 2 * 1024 * 1024

// ServerSparseStream is the stream implementation for a VMFSSPARSE extent:
// a single-level grain directory over fixed 2MiB regions, each either
// wholly unallocated or backed 1:1 by an equal-sized region of the extent
// file (no further grain-table indirection within a region).
type ServerSparseStream struct {
	storage  storageCloser
	capacity int64
	gd       []uint32 // one region sector offset per entry, 0 = unallocated
	parent   Stream
	owns     bool
}

// ServerHeaderView is the subset of a server-sparse header this stream
// needs.
type ServerHeaderView struct {
	Capacity     uint64
	GDOffset     uint64
	NumGDEntries uint32
	SectorSize   int64
}

// NewServerSparseStream loads the grain directory from storage.
func NewServerSparseStream(storage backend.Storage, h *ServerHeaderView, parent Stream, ownsParent bool) (*ServerSparseStream, error) {
	raw := make([]byte, int64(h.NumGDEntries)*4)
	if _, err := storage.ReadAt(raw, int64(h.GDOffset)*h.SectorSize); err != nil {
		return nil, err
	}
	gd := make([]uint32, h.NumGDEntries)
	for i := range gd {
		gd[i] = leUint32(raw[i*4:])
	}
	return &ServerSparseStream{
		storage:  storageCloser{Storage: storage, owns: true},
		capacity: int64(h.Capacity) * h.SectorSize,
		gd:       gd,
		parent:   parent,
		owns:     ownsParent,
	}, nil
}

func (s *ServerSparseStream) Size() int64 { return s.capacity }

func (s *ServerSparseStream) ReadAt(p []byte, off int64) (int, error) {
	var total int
	for total < len(p) {
		cur := off + int64(total)
		if cur >= s.capacity {
			break
		}
		regionIndex := cur / serverSparseRegionSize
		inRegion := cur % serverSparseRegionSize
		if int(regionIndex) >= len(s.gd) {
			return total, &OutOfRangeError{Offset: off, Size: s.capacity}
		}
		chunk := len(p) - total
		if int64(chunk) > serverSparseRegionSize-inRegion {
			chunk = int(serverSparseRegionSize - inRegion)
		}

		sectorOffset := s.gd[regionIndex]
		switch {
		case sectorOffset != 0:
			dataOffset := int64(sectorOffset)*512 + inRegion
			if _, err := s.storage.ReadAt(p[total:total+chunk], dataOffset); err != nil {
				return total, err
			}
		case s.parent != nil:
			if _, err := s.parent.ReadAt(p[total:total+chunk], cur); err != nil {
				return total, err
			}
		default:
			for i := 0; i < chunk; i++ {
				p[total+i] = 0
			}
		}
		total += chunk
	}
	return total, nil
}

func (s *ServerSparseStream) WriteAt(p []byte, off int64) (int, error) {
	var total int
	w, err := s.storage.Writable()
	if err != nil {
		return 0, err
	}
	for total < len(p) {
		cur := off + int64(total)
		if cur >= s.capacity {
			break
		}
		regionIndex := cur / serverSparseRegionSize
		inRegion := cur % serverSparseRegionSize
		chunk := len(p) - total
		if int64(chunk) > serverSparseRegionSize-inRegion {
			chunk = int(serverSparseRegionSize - inRegion)
		}
		sectorOffset := s.gd[regionIndex]
		if sectorOffset == 0 {
			return total, &ErrNotAllocated{Offset: cur}
		}
		dataOffset := int64(sectorOffset)*512 + inRegion
		if _, err := w.WriteAt(p[total:total+chunk], dataOffset); err != nil {
			return total, err
		}
		total += chunk
	}
	return total, nil
}

func (s *ServerSparseStream) Close() error {
	if s.parent != nil && s.owns {
		if err := s.parent.Close(); err != nil {
			return err
		}
	}
	return s.storage.Close()
}
