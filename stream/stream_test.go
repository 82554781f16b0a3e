package stream

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/diskfs/go-vmdk/backend"
)

// memStorage is a minimal in-memory backend.Storage for exercising stream
// logic without touching the filesystem.
type memStorage struct {
	data []byte
}

func newMemStorage(b []byte) *memStorage { return &memStorage{data: b} }

func (m *memStorage) Stat() (fs.FileInfo, error)                  { return memInfo{size: int64(len(m.data))}, nil }
func (m *memStorage) Read(p []byte) (int, error)                  { return 0, io.EOF }
func (m *memStorage) Close() error                                { return nil }
func (m *memStorage) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (m *memStorage) Sys() (*os.File, error)                      { return nil, backend.ErrNotSuitable }
func (m *memStorage) Writable() (backend.WritableFile, error)     { return memWritable{m}, nil }

func (m *memStorage) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type memWritable struct{ m *memStorage }

func (w memWritable) Stat() (fs.FileInfo, error)                  { return w.m.Stat() }
func (w memWritable) Read(p []byte) (int, error)                  { return w.m.Read(p) }
func (w memWritable) Close() error                                { return nil }
func (w memWritable) Seek(offset int64, whence int) (int64, error) { return w.m.Seek(offset, whence) }
func (w memWritable) ReadAt(p []byte, off int64) (int, error)      { return w.m.ReadAt(p, off) }
func (w memWritable) WriteAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > int64(len(w.m.data)) {
		grown := make([]byte, off+int64(len(p)))
		copy(grown, w.m.data)
		w.m.data = grown
	}
	return copy(w.m.data[off:], p), nil
}

type memInfo struct{ size int64 }

func (m memInfo) Name() string       { return "mem" }
func (m memInfo) Size() int64        { return m.size }
func (m memInfo) Mode() fs.FileMode  { return 0 }
func (m memInfo) ModTime() time.Time { return time.Time{} }
func (m memInfo) IsDir() bool        { return false }
func (m memInfo) Sys() interface{}   { return nil }

func TestZeroStream(t *testing.T) {
	z := NewZeroStream(16)
	buf := make([]byte, 16)
	for i := range buf {
		buf[i] = 0xff
	}
	n, err := z.ReadAt(buf, 0)
	if err != nil || n != 16 {
		t.Fatalf("ReadAt = %d, %v", n, err)
	}
	if !bytes.Equal(buf, make([]byte, 16)) {
		t.Errorf("expected all-zero, got %v", buf)
	}
	if _, err := z.WriteAt(buf, 0); err == nil {
		t.Error("expected WriteAt to fail on zero stream")
	}
}

func TestConcatStream(t *testing.T) {
	a := NewZeroStream(8)
	bStorage := newMemStorage([]byte("abcdefgh"))
	b := NewPassthroughStream(bStorage, 8, false)
	c := NewConcatStream([]Stream{a, b})

	if c.Size() != 16 {
		t.Fatalf("Size() = %d, want 16", c.Size())
	}

	buf := make([]byte, 16)
	n, err := c.ReadAt(buf, 0)
	if err != nil || n != 16 {
		t.Fatalf("ReadAt = %d, %v", n, err)
	}
	want := append(make([]byte, 8), []byte("abcdefgh")...)
	if !bytes.Equal(buf, want) {
		t.Errorf("got %q, want %q", buf, want)
	}

	// crossing the segment boundary
	buf2 := make([]byte, 4)
	n, err = c.ReadAt(buf2, 6)
	if err != nil || n != 4 {
		t.Fatalf("ReadAt at boundary = %d, %v", n, err)
	}
	if !bytes.Equal(buf2, []byte{0, 0, 'a', 'b'}) {
		t.Errorf("got %v, want [0 0 a b]", buf2)
	}
}

func TestHostedSparseStreamGrainLookup(t *testing.T) {
	// Layout: GD at sector 0 (1 entry), GT at sector 1 (entries 0..N),
	// data grains starting sector 2. Grain size = 1 sector (512 bytes),
	// 4 GTEs per GT, capacity = 4 sectors (one grain table's worth).
	const sectorSize = 512
	gd := make([]byte, sectorSize)
	putLE32(gd, 0, 1) // GT lives at sector 1

	gt := make([]byte, sectorSize)
	putLE32(gt, 0, 0) // grain 0 unallocated
	putLE32(gt, 1, 2) // grain 1 at sector 2
	putLE32(gt, 2, 0) // grain 2 unallocated
	putLE32(gt, 3, 3) // grain 3 at sector 3

	grain1 := bytes.Repeat([]byte{0xAA}, sectorSize)
	grain3 := bytes.Repeat([]byte{0xBB}, sectorSize)

	data := append([]byte{}, gd...)
	data = append(data, gt...)
	data = append(data, grain1...)
	data = append(data, grain3...)
	storage := newMemStorage(data)

	h := &HostedHeaderView{
		Capacity:     4,
		GrainSize:    1,
		GDOffset:     0,
		NumGTEsPerGT: 4,
		SectorSize:   sectorSize,
	}
	s, err := NewHostedSparseStream(storage, h, nil, false)
	if err != nil {
		t.Fatalf("NewHostedSparseStream: %v", err)
	}

	buf := make([]byte, sectorSize)
	if _, err := s.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt grain0: %v", err)
	}
	if !bytes.Equal(buf, make([]byte, sectorSize)) {
		t.Errorf("grain0: expected zero (unallocated, no parent)")
	}

	if _, err := s.ReadAt(buf, sectorSize); err != nil {
		t.Fatalf("ReadAt grain1: %v", err)
	}
	if !bytes.Equal(buf, grain1) {
		t.Errorf("grain1: data mismatch")
	}

	if _, err := s.ReadAt(buf, 3*sectorSize); err != nil {
		t.Fatalf("ReadAt grain3: %v", err)
	}
	if !bytes.Equal(buf, grain3) {
		t.Errorf("grain3: data mismatch")
	}
}

func putLE32(b []byte, entryIndex int, v uint32) {
	off := entryIndex * 4
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}
