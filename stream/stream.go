// Package stream implements the sparse-stream side of a VMDK: the
// grain-table-driven random access into hosted-sparse and server-sparse
// extents, the always-zero stream, and the concatenation that stitches a
// disk's extents into one logical address space.
//
// Grain allocation on write is out of scope (see the disk image's
// package-level Non-goals): WriteAt only succeeds against a grain or
// region that is already allocated.
package stream

import (
	"io"

	"github.com/diskfs/go-vmdk/backend"
)

// Stream is a logical, randomly addressable view over an extent (or a
// concatenation of extents). Offsets and lengths are in bytes, relative to
// the stream's own start.
type Stream interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	// Size is the logical size of the stream, in bytes.
	Size() int64
}

// ErrNotAllocated is returned by WriteAt when the target grain or region
// has not been allocated; allocating new grains on write is out of scope.
type ErrNotAllocated struct {
	Offset int64
}

func (e *ErrNotAllocated) Error() string {
	return "grain at offset is not allocated and allocation on write is not supported"
}

// storageCloser wraps a backend.Storage to satisfy io.Closer without
// forcing every stream to track whether it owns its underlying storage.
type storageCloser struct {
	backend.Storage
	owns bool
}

func (s storageCloser) Close() error {
	if !s.owns {
		return nil
	}
	return s.Storage.Close()
}
