//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package locator

import (
	"os"

	"github.com/diskfs/go-vmdk/backend"
)

// lockShare is a no-op on platforms without flock; share-mode enforcement
// is best-effort there, matching diskfs's own !unix fallback for
// device-specific ioctls.
func lockShare(f *os.File, share backend.ShareMode) error {
	return nil
}
