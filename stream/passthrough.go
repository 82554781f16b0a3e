package stream

import (
	"github.com/diskfs/go-vmdk/backend"
)

// PassthroughStream is the stream implementation for FLAT and VMFS
// extents: every logical offset maps 1:1 onto the backing storage, with no
// grain indirection at all (spec.md §3).
type PassthroughStream struct {
	storage storageCloser
	size    int64
}

// NewPassthroughStream wraps storage (already windowed to the extent's own
// region, e.g. via backend.Sub for a raw/flat extent sharing a file with
// other content) as a flat Stream of the given logical size.
func NewPassthroughStream(storage backend.Storage, size int64, owns bool) *PassthroughStream {
	return &PassthroughStream{storage: storageCloser{Storage: storage, owns: owns}, size: size}
}

func (p *PassthroughStream) Size() int64 { return p.size }

func (p *PassthroughStream) ReadAt(b []byte, off int64) (int, error) {
	return p.storage.ReadAt(b, off)
}

func (p *PassthroughStream) WriteAt(b []byte, off int64) (int, error) {
	w, err := p.storage.Writable()
	if err != nil {
		return 0, err
	}
	return w.WriteAt(b, off)
}

func (p *PassthroughStream) Close() error {
	return p.storage.Close()
}
