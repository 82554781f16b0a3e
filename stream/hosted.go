package stream

import (
	"github.com/diskfs/go-vmdk/backend"
)

// HostedSparseStream is the stream implementation for a SPARSE extent: a
// two-level grain directory/table indirection over grain-sized regions of
// the backing file, with optional fallback to a parent stream for grains
// this extent has never allocated (spec.md §3, §4.6's differencing-disk
// support).
//
// Only the data grains make up the logical stream; the grain directory
// and tables are read from storage to locate them, and the header and
// descriptor regions are not part of the stream.
type HostedSparseStream struct {
	storage       storageCloser
	capacity      int64 // bytes
	grainSize     int64 // bytes
	gdOffset      int64 // bytes
	gtesPerGT     int64
	numGrainTbls  int64
	gd            []uint32 // one grain-table sector offset per entry, 0 = unallocated
	gtCache       map[int64][]uint32
	parent        Stream // nil if this is a base disk
	ownsParent    bool
}

// NewHostedSparseStream loads the grain directory from storage and returns
// a ready Stream. parent may be nil.
func NewHostedSparseStream(storage backend.Storage, h *HostedHeaderView, parent Stream, ownsParent bool) (*HostedSparseStream, error) {
	capacityBytes := int64(h.Capacity) * int64(h.SectorSize)
	grainSizeBytes := int64(h.GrainSize) * int64(h.SectorSize)
	gtesPerGT := int64(h.NumGTEsPerGT)
	grainTableSpan := grainSizeBytes * gtesPerGT
	numGrainTbls := (capacityBytes + grainTableSpan - 1) / grainTableSpan

	gdBytes := make([]byte, numGrainTbls*4)
	if _, err := storage.ReadAt(gdBytes, int64(h.GDOffset)*int64(h.SectorSize)); err != nil {
		return nil, err
	}
	gd := make([]uint32, numGrainTbls)
	for i := range gd {
		gd[i] = leUint32(gdBytes[i*4:])
	}

	return &HostedSparseStream{
		storage:      storageCloser{Storage: storage, owns: true},
		capacity:     capacityBytes,
		grainSize:    grainSizeBytes,
		gdOffset:     int64(h.GDOffset) * int64(h.SectorSize),
		gtesPerGT:    gtesPerGT,
		numGrainTbls: numGrainTbls,
		gd:           gd,
		gtCache:      make(map[int64][]uint32),
		parent:       parent,
		ownsParent:   ownsParent,
	}, nil
}

// HostedHeaderView is the subset of a hosted-sparse extent header this
// stream needs, kept independent of the vmdk package's own header type so
// stream has no import cycle back to it.
type HostedHeaderView struct {
	Capacity     uint64
	GrainSize    uint64
	GDOffset     uint64
	NumGTEsPerGT uint32
	SectorSize   int64
}

func (s *HostedSparseStream) Size() int64 { return s.capacity }

func (s *HostedSparseStream) grainTable(index int64) ([]uint32, error) {
	if gt, ok := s.gtCache[index]; ok {
		return gt, nil
	}
	sectorOffset := s.gd[index]
	if sectorOffset == 0 {
		return nil, nil
	}
	raw := make([]byte, s.gtesPerGT*4)
	if _, err := s.storage.ReadAt(raw, int64(sectorOffset)*512); err != nil {
		return nil, err
	}
	gt := make([]uint32, s.gtesPerGT)
	for i := range gt {
		gt[i] = leUint32(raw[i*4:])
	}
	s.gtCache[index] = gt
	return gt, nil
}

func (s *HostedSparseStream) locate(off int64) (sectorOffset uint32, err error) {
	grainIndex := off / s.grainSize
	gtIndex := grainIndex / s.gtesPerGT
	gteIndex := grainIndex % s.gtesPerGT
	if gtIndex >= s.numGrainTbls {
		return 0, &OutOfRangeError{Offset: off, Size: s.capacity}
	}
	gt, err := s.grainTable(gtIndex)
	if err != nil {
		return 0, err
	}
	if gt == nil {
		return 0, nil
	}
	return gt[gteIndex], nil
}

func (s *HostedSparseStream) ReadAt(p []byte, off int64) (int, error) {
	var total int
	for total < len(p) {
		cur := off + int64(total)
		if cur >= s.capacity {
			break
		}
		grainOffsetInGrain := cur % s.grainSize
		chunk := len(p) - total
		if int64(chunk) > s.grainSize-grainOffsetInGrain {
			chunk = int(s.grainSize - grainOffsetInGrain)
		}

		sectorOffset, err := s.locate(cur)
		if err != nil {
			return total, err
		}
		switch {
		case sectorOffset != 0:
			dataOffset := int64(sectorOffset)*512 + grainOffsetInGrain
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

func (s *HostedSparseStream) WriteAt(p []byte, off int64) (int, error) {
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
		grainOffsetInGrain := cur % s.grainSize
		chunk := len(p) - total
		if int64(chunk) > s.grainSize-grainOffsetInGrain {
			chunk = int(s.grainSize - grainOffsetInGrain)
		}

		sectorOffset, err := s.locate(cur)
		if err != nil {
			return total, err
		}
		if sectorOffset == 0 {
			return total, &ErrNotAllocated{Offset: cur}
		}
		dataOffset := int64(sectorOffset)*512 + grainOffsetInGrain
		if _, err := w.WriteAt(p[total:total+chunk], dataOffset); err != nil {
			return total, err
		}
		total += chunk
	}
	return total, nil
}

func (s *HostedSparseStream) Close() error {
	if s.parent != nil && s.ownsParent {
		if err := s.parent.Close(); err != nil {
			return err
		}
	}
	return s.storage.Close()
}

func leUint32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
