// Package locator implements vmdk.FileLocator against a plain directory on
// the local filesystem: an extent's relative filename is resolved under a
// fixed root directory (the directory the top-level descriptor lives in),
// opened with the requested access mode, and advisory-locked per the
// requested share mode.
package locator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/diskfs/go-vmdk/backend"
	"github.com/diskfs/go-vmdk/backend/file"
)

// Directory is a FileLocator rooted at a single directory.
type Directory struct {
	root string
}

// NewDirectory returns a Directory locator rooted at root.
func NewDirectory(root string) *Directory {
	return &Directory{root: root}
}

// Open resolves relativeName under the locator's root and opens it with
// the requested mode, access and share semantics.
func (d *Directory) Open(relativeName string, mode backend.OpenMode, access backend.AccessMode, share backend.ShareMode) (backend.Storage, error) {
	path := filepath.Join(d.root, relativeName)

	flags := os.O_RDONLY
	if access == backend.AccessReadWrite {
		flags = os.O_RDWR
	}
	if mode == backend.OpenCreate {
		flags |= os.O_CREATE
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening extent %s: %w", relativeName, err)
	}

	if err := lockShare(f, share); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking extent %s: %w", relativeName, err)
	}

	readOnly := access != backend.AccessReadWrite
	return file.New(f, readOnly), nil
}
