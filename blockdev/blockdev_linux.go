//go:build linux

package blockdev

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

// BLKGETSIZE64 is not exposed by golang.org/x/sys/unix as a typed ioctl
// helper, since it reports a uint64 rather than the int that
// unix.IoctlGetInt assumes.
const blkGetSize64 = 0x80081272

func sizeOf(f *os.File) (int64, error) {
	var size uint64
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), blkGetSize64, uintptr(unsafe.Pointer(&size)))
	if errno != 0 {
		return 0, fmt.Errorf("BLKGETSIZE64 ioctl on %s: %w", f.Name(), errno)
	}
	return int64(size), nil
}
