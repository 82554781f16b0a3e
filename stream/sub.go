package stream

// subStream offsets a Stream into a fixed-size window, the stream-layer
// counterpart of backend.Sub: used to re-anchor a differencing disk's
// parent stream onto a single extent's slice of the logical address space
// before handing it to that extent's own stream.
type subStream struct {
	underlying Stream
	offset     int64
	size       int64
}

// Sub returns a Stream presenting u[offset:offset+size] as a stream
// starting at 0.
func Sub(u Stream, offset, size int64) Stream {
	return &subStream{underlying: u, offset: offset, size: size}
}

func (s *subStream) Size() int64 { return s.size }

func (s *subStream) ReadAt(p []byte, off int64) (int, error) {
	return s.underlying.ReadAt(p, s.offset+off)
}

func (s *subStream) WriteAt(p []byte, off int64) (int, error) {
	return s.underlying.WriteAt(p, s.offset+off)
}

func (s *subStream) Close() error {
	return s.underlying.Close()
}
