//go:build !linux

package blockdev

import (
	"errors"
	"os"
)

func sizeOf(f *os.File) (int64, error) {
	return 0, errors.New("block device size probing is not supported on this platform")
}
