package vmdk

import (
	"strings"
	"testing"
)

func sampleDescriptorText() string {
	return strings.Join([]string{
		`# Disk DescriptorFile`,
		`version=1`,
		`encoding="UTF-8"`,
		`CID=fffffffe`,
		`parentCID=ffffffff`,
		`createType="monolithicSparse"`,
		``,
		`# Extent description`,
		`RW 204800 SPARSE "disk.vmdk"`,
		``,
		`# The Disk Data Base`,
		`#DDB`,
		`ddb.virtualHWVersion = "4"`,
		`ddb.adapterType = "ide"`,
		`ddb.geometry.cylinders = "400"`,
		`ddb.geometry.heads = "16"`,
		`ddb.geometry.sectors = "63"`,
		``,
	}, "\n")
}

func TestParseDescriptor(t *testing.T) {
	d, err := ParseDescriptor([]byte(sampleDescriptorText()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Version != 1 {
		t.Errorf("Version = %d, want 1", d.Version)
	}
	if d.ContentID != 0xfffffffe {
		t.Errorf("ContentID = %#x, want 0xfffffffe", d.ContentID)
	}
	if d.HasParent() {
		t.Errorf("expected no parent, parentCID=%#x", d.ParentContentID)
	}
	if d.CreateType != MonolithicSparse {
		t.Errorf("CreateType = %v, want MonolithicSparse", d.CreateType)
	}
	if len(d.Extents) != 1 {
		t.Fatalf("Extents len = %d, want 1", len(d.Extents))
	}
	e := d.Extents[0]
	if e.Access != AccessReadWrite || e.SizeSectors != 204800 || e.Type != ExtentSparse || e.Filename != "disk.vmdk" {
		t.Errorf("unexpected extent: %+v", e)
	}
	if d.AdapterType != "ide" || d.Geometry.Cylinders != 400 || d.Geometry.Heads != 16 || d.Geometry.Sectors != 63 {
		t.Errorf("unexpected ddb fields: adapter=%s geometry=%+v", d.AdapterType, d.Geometry)
	}
}

func TestParseDescriptorNotAVmdk(t *testing.T) {
	if _, err := ParseDescriptor([]byte("not a descriptor\n")); err == nil {
		t.Fatal("expected error")
	} else if _, ok := err.(*NotAVmdkError); !ok {
		t.Fatalf("expected *NotAVmdkError, got %T", err)
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	d, err := ParseDescriptor([]byte(sampleDescriptorText()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reparsed, err := ParseDescriptor(d.Serialize())
	if err != nil {
		t.Fatalf("reparse error: %v", err)
	}
	if reparsed.ContentID != d.ContentID || reparsed.CreateType != d.CreateType {
		t.Errorf("round trip mismatch: got %+v, want %+v", reparsed, d)
	}
	if len(reparsed.Extents) != len(d.Extents) || reparsed.Extents[0] != d.Extents[0] {
		t.Errorf("extent round trip mismatch: got %+v, want %+v", reparsed.Extents, d.Extents)
	}
}

func TestNewDescriptorDefaults(t *testing.T) {
	d := NewDescriptor(MonolithicSparse)
	if d.HasParent() {
		t.Error("new descriptor should not have a parent")
	}
	if d.Version != 1 {
		t.Errorf("Version = %d, want 1", d.Version)
	}
}
