package vmdk

import "testing"

func TestAdorn(t *testing.T) {
	got, err := Adorn("foo.VMDK", "s001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "foo-s001.vmdk" {
		t.Errorf("got %q, want foo-s001.vmdk", got)
	}

	if _, err := Adorn("foo.txt", "s001"); err == nil {
		t.Fatal("expected error for non-.vmdk filename")
	} else if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("expected *InvalidArgumentError, got %T", err)
	}
}

func TestExtentAdornments(t *testing.T) {
	if got := FlatExtentAdornment(1); got != "000001" {
		t.Errorf("FlatExtentAdornment(1) = %q, want 000001", got)
	}
	if got := SparseExtentAdornment(2); got != "s002" {
		t.Errorf("SparseExtentAdornment(2) = %q, want s002", got)
	}
}

func TestDefaultGeometry(t *testing.T) {
	cases := []struct {
		capacity       int64
		heads, sectors uint32
	}{
		{500 * OneMiB, 64, 32},
		{1500 * OneMiB, 128, 32},
		{3 * OneGiB, 255, 63},
	}
	for _, c := range cases {
		g := DefaultGeometry(c.capacity)
		if g.Heads != c.heads || g.Sectors != c.sectors {
			t.Errorf("capacity=%d: got heads=%d sectors=%d, want heads=%d sectors=%d",
				c.capacity, g.Heads, g.Sectors, c.heads, c.sectors)
		}
	}
}
