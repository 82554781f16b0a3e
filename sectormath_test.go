package vmdk

import "testing"

func TestCeilDiv(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{0, 512, 0},
		{1, 512, 1},
		{512, 512, 1},
		{513, 512, 2},
		{1024, 512, 2},
	}
	for _, c := range cases {
		if got := CeilDiv(c.a, c.b); got != c.want {
			t.Errorf("CeilDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestRoundUpTo(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{0, 512, 0},
		{1, 512, 512},
		{512, 512, 512},
		{513, 512, 1024},
	}
	for _, c := range cases {
		if got := RoundUpTo(c.a, c.b); got != c.want {
			t.Errorf("RoundUpTo(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLEFieldRoundTrip(t *testing.T) {
	b := make([]byte, 8)
	putUint64LE(b, 0x0102030405060708)
	if got := getUint64LE(b); got != 0x0102030405060708 {
		t.Errorf("got %x", got)
	}
	if b[0] != 0x08 {
		t.Errorf("expected little-endian byte order, got %x", b[0])
	}
}
