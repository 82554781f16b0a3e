package vmdk

import (
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/diskfs/go-vmdk/backend"
)

type fakeStorage struct {
	data []byte
	name string
}

func (f *fakeStorage) Stat() (fs.FileInfo, error) { return fakeInfo{f}, nil }
func (f *fakeStorage) Read(p []byte) (int, error) { return 0, nil }
func (f *fakeStorage) Close() error                { return nil }
func (f *fakeStorage) Seek(int64, int) (int64, error) { return 0, nil }
func (f *fakeStorage) Sys() (*os.File, error)      { return nil, backend.ErrNotSuitable }
func (f *fakeStorage) Writable() (backend.WritableFile, error) {
	return nil, backend.ErrIncorrectOpenMode
}
func (f *fakeStorage) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, f.data[off:])
	return n, nil
}

type fakeInfo struct{ f *fakeStorage }

func (i fakeInfo) Name() string       { return i.f.name }
func (i fakeInfo) Size() int64        { return int64(len(i.f.data)) }
func (i fakeInfo) Mode() fs.FileMode  { return 0 }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return false }
func (i fakeInfo) Sys() interface{}   { return nil }

func TestDescriptorProbeBareDescriptor(t *testing.T) {
	storage := &fakeStorage{data: []byte(sampleDescriptorText()), name: "disk.vmdk"}
	result, err := DescriptorProbe(storage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsHostedSparse {
		t.Error("bare descriptor should not be reported as hosted sparse")
	}
	if result.Descriptor == nil || result.Descriptor.CreateType != MonolithicSparse {
		t.Errorf("unexpected descriptor: %+v", result.Descriptor)
	}
}

func TestDescriptorProbeHostedSparseEmbedded(t *testing.T) {
	desc := NewDescriptor(MonolithicSparse)
	desc.Extents = []ExtentDescriptor{{Access: AccessReadWrite, SizeSectors: 2048, Type: ExtentSparse, Filename: "disk.vmdk"}}
	descBytes := desc.Serialize()

	header := &HostedSparseExtentHeader{
		Version:          1,
		Capacity:         2048,
		GrainSize:        8,
		DescriptorOffset: 1,
		DescriptorSize:   2,
		NumGTEsPerGT:     NumGTEsPerGT,
		RGDOffset:        3,
		GDOffset:         10,
		Overhead:         20,
	}

	data := make([]byte, 20*SectorSize)
	copy(data, header.ToBytes())
	copy(data[SectorSize:], descBytes)
	storage := &fakeStorage{data: data, name: "disk.vmdk"}

	result, err := DescriptorProbe(storage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsHostedSparse {
		t.Fatal("expected hosted sparse")
	}
	if result.Descriptor == nil {
		t.Fatal("expected embedded descriptor to be parsed")
	}
	if result.Descriptor.CreateType != MonolithicSparse {
		t.Errorf("CreateType = %v, want MonolithicSparse", result.Descriptor.CreateType)
	}
	if result.DescriptorOffset != SectorSize {
		t.Errorf("DescriptorOffset = %d, want %d", result.DescriptorOffset, SectorSize)
	}
}

func TestDescriptorProbeNotAVmdk(t *testing.T) {
	storage := &fakeStorage{data: []byte("garbage data here"), name: "x.vmdk"}
	if _, err := DescriptorProbe(storage); err == nil {
		t.Fatal("expected error")
	} else if _, ok := err.(*NotAVmdkError); !ok {
		t.Fatalf("expected *NotAVmdkError, got %T", err)
	}
}
