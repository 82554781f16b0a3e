package vmdk

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/diskfs/go-vmdk/backend/file"
)

func TestInitializeMonolithicSparse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "disk.vmdk")

	const capacity = 100 * OneMiB
	d, err := Initialize(path, capacity, MonolithicSparse)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer d.Close()

	if got := d.Capacity(); got < capacity {
		t.Errorf("Capacity() = %d, want >= %d (sector-rounded)", got, capacity)
	}
	if !d.IsSparse() {
		t.Error("MonolithicSparse disk should report IsSparse")
	}
	if d.NeedsParent() {
		t.Error("fresh disk should not need a parent")
	}

	// Initialize keeps the file open under an exclusive lock; release it
	// before reopening.
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, AccessRead)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.CreateType() != MonolithicSparse {
		t.Errorf("CreateType = %v, want MonolithicSparse", reopened.CreateType())
	}

	content, err := reopened.OpenContent(nil, false)
	if err != nil {
		t.Fatalf("OpenContent: %v", err)
	}
	defer content.Close()

	buf := make([]byte, SectorSize)
	if _, err := content.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt unallocated grain: %v", err)
	}
	if !bytes.Equal(buf, make([]byte, SectorSize)) {
		t.Error("unallocated grain should read back as zeros")
	}
}

func TestInitializeTwoGbMaxExtentFlat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "split.vmdk")

	const capacity = 3 * OneGiB
	d, err := Initialize(path, capacity, TwoGbMaxExtentFlat)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer d.Close()

	if len(d.descriptor.Extents) != 2 {
		t.Fatalf("expected 2 extents for a 3GiB split-flat disk, got %d", len(d.descriptor.Extents))
	}
	for _, ext := range d.descriptor.Extents {
		if ext.Type != ExtentFlat {
			t.Errorf("extent %s: type = %v, want ExtentFlat", ext.Filename, ext.Type)
		}
	}

	content, err := d.OpenContent(nil, false)
	if err != nil {
		t.Fatalf("OpenContent: %v", err)
	}
	defer content.Close()
	if content.Size() != d.Capacity() {
		t.Errorf("content.Size() = %d, want %d", content.Size(), d.Capacity())
	}
}

func TestInitializeVmfs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vmfs.vmdk")

	d, err := Initialize(path, 512*OneMiB, Vmfs)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer d.Close()

	if d.IsSparse() {
		t.Error("Vmfs (flat) disk should not report IsSparse")
	}
	if d.descriptor.Extents[0].Type != ExtentVmfs {
		t.Errorf("extent type = %v, want ExtentVmfs", d.descriptor.Extents[0].Type)
	}
}

func TestOpenStreamRejectsNonMonolithic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flat.vmdk")

	if _, err := Initialize(path, 10*OneMiB, MonolithicFlat); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	storage, err := file.OpenFromPath(path, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer storage.Close()

	if _, err := OpenStream(storage, false); err == nil {
		t.Fatal("expected OpenStream to reject a bare-descriptor MonolithicFlat image")
	}
}

func TestUnsupportedCreateType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.vmdk")

	if _, err := Initialize(path, OneMiB, StreamOptimized); err == nil {
		t.Fatal("expected StreamOptimized to be unsupported for Initialize")
	} else if _, ok := err.(*UnsupportedCreateTypeError); !ok {
		t.Fatalf("expected *UnsupportedCreateTypeError, got %T: %v", err, err)
	}
}
