package stream

// segment is one member stream's placement in a ConcatStream's address
// space.
type segment struct {
	start  int64
	stream Stream
}

// ConcatStream stitches an ordered list of per-extent streams into one
// logical address space, per spec.md §4.7. Ownership of the parent stream
// (for a differencing disk) belongs only to the last extent in the chain;
// ConcatStream.Close relies on each member stream's own Close to honor
// that, so it simply closes every member once.
type ConcatStream struct {
	segments []segment
	size     int64
}

// NewConcatStream concatenates members in order. Each member's Size()
// determines its extent of the logical address space.
func NewConcatStream(members []Stream) *ConcatStream {
	segments := make([]segment, len(members))
	var offset int64
	for i, m := range members {
		segments[i] = segment{start: offset, stream: m}
		offset += m.Size()
	}
	return &ConcatStream{segments: segments, size: offset}
}

func (c *ConcatStream) Size() int64 { return c.size }

// find returns the index of the segment containing off.
func (c *ConcatStream) find(off int64) int {
	lo, hi := 0, len(c.segments)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if c.segments[mid].start <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func (c *ConcatStream) ReadAt(p []byte, off int64) (int, error) {
	var total int
	for total < len(p) {
		cur := off + int64(total)
		if cur >= c.size || len(c.segments) == 0 {
			break
		}
		idx := c.find(cur)
		seg := c.segments[idx]
		segEnd := seg.start + seg.stream.Size()
		inSeg := cur - seg.start
		chunk := len(p) - total
		if int64(chunk) > segEnd-cur {
			chunk = int(segEnd - cur)
		}
		n, err := seg.stream.ReadAt(p[total:total+chunk], inSeg)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (c *ConcatStream) WriteAt(p []byte, off int64) (int, error) {
	var total int
	for total < len(p) {
		cur := off + int64(total)
		if cur >= c.size || len(c.segments) == 0 {
			break
		}
		idx := c.find(cur)
		seg := c.segments[idx]
		segEnd := seg.start + seg.stream.Size()
		inSeg := cur - seg.start
		chunk := len(p) - total
		if int64(chunk) > segEnd-cur {
			chunk = int(segEnd - cur)
		}
		n, err := seg.stream.WriteAt(p[total:total+chunk], inSeg)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Close closes every member stream in order, returning the first error
// encountered (but still attempting to close the rest).
func (c *ConcatStream) Close() error {
	var firstErr error
	for _, seg := range c.segments {
		if err := seg.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
