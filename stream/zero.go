package stream

import "io"

// ZeroStream is a logical all-zero region of a given size, with no backing
// storage: the stream implementation of the ZERO extent type, and the
// parent that OpenContent substitutes for a disk with no parent
// (spec.md §4.8).
type ZeroStream struct {
	size int64
}

// NewZeroStream returns a Stream that reads as size bytes of zero and
// rejects all writes.
func NewZeroStream(size int64) *ZeroStream {
	return &ZeroStream{size: size}
}

func (z *ZeroStream) Size() int64 { return z.size }

func (z *ZeroStream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > z.size {
		return 0, &OutOfRangeError{Offset: off, Size: z.size}
	}
	n := len(p)
	if int64(n) > z.size-off {
		n = int(z.size - off)
	}
	for i := 0; i < n; i++ {
		p[i] = 0
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (z *ZeroStream) WriteAt(p []byte, off int64) (int, error) {
	return 0, &ErrNotAllocated{Offset: off}
}

func (z *ZeroStream) Close() error { return nil }

// OutOfRangeError reports an access beyond a stream's logical size.
type OutOfRangeError struct {
	Offset int64
	Size   int64
}

func (e *OutOfRangeError) Error() string {
	return "offset out of range for stream"
}
