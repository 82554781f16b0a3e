package backend

// AccessMode is the access requested when opening a file or device.
type AccessMode int

const (
	AccessRead AccessMode = iota
	AccessReadWrite
)

// ShareMode governs the advisory file lock taken while a file is open.
type ShareMode int

const (
	ShareRead ShareMode = iota
	ShareExclusive
)

// OpenMode tells a locator whether the named file must already exist or
// should be created fresh.
type OpenMode int

const (
	OpenExisting OpenMode = iota
	OpenCreate
)
