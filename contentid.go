package vmdk

import "math/rand"

// NoParentContentID is the sentinel value of Descriptor.ParentContentID
// meaning "this disk has no parent".
const NoParentContentID uint32 = 0xFFFFFFFF

// newContentID returns a fresh non-cryptographic 32-bit content id.
//
// The source this package is based on instantiated a fresh RNG per call
// with default (time-based) seeding, which can hand out duplicate ids when
// several disks are initialized in the same process tick. Go's top-level
// math/rand functions are auto-seeded from a random source at program
// startup (since Go 1.20), so reusing the package-global generator here
// avoids that bug without needing to thread a seed through every call.
func newContentID() uint32 {
	return rand.Uint32()
}
