//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package locator

import (
	"os"

	"github.com/diskfs/go-vmdk/backend"
	"golang.org/x/sys/unix"
)

// lockShare takes an advisory BSD flock on f: exclusive for a writable
// open (spec.md §5 requires exclusive share on any writable open), shared
// otherwise.
func lockShare(f *os.File, share backend.ShareMode) error {
	how := unix.LOCK_SH
	if share == backend.ShareExclusive {
		how = unix.LOCK_EX
	}
	return unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
}
