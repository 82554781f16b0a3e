// Package blockdev determines whether a path names a regular file or a
// block device, and probes the size of the latter, supporting the
// FullDevice and PartitionedDevice create-types (spec.md §4.11).
package blockdev

import (
	"fmt"
	iofs "io/fs"
	"os"
)

// Kind is what DetermineKind found at a path.
type Kind int

const (
	KindUnknown Kind = iota
	KindRegularFile
	KindBlockDevice
)

// DetermineKind inspects f's mode to classify it as a regular file or a
// block device. Anything else (socket, named pipe, directory) is an error:
// neither create-type accepts it.
func DetermineKind(f iofs.File) (Kind, error) {
	info, err := f.Stat()
	if err != nil {
		return KindUnknown, fmt.Errorf("could not stat file: %w", err)
	}
	mode := info.Mode()
	switch {
	case mode.IsRegular():
		return KindRegularFile, nil
	case mode&os.ModeDevice != 0:
		return KindBlockDevice, nil
	default:
		return KindUnknown, fmt.Errorf("%s is neither a block device nor a regular file", info.Name())
	}
}

// Size returns the logical size in bytes of the block device or regular
// file backing f. For a regular file this is just its stat size; for a
// block device, regular Stat().Size() is usually zero and the platform's
// sizeOf implementation (blockdev_linux.go) is used instead.
func Size(f *os.File) (int64, error) {
	kind, err := DetermineKind(f)
	if err != nil {
		return 0, err
	}
	if kind == KindRegularFile {
		info, err := f.Stat()
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	}
	return sizeOf(f)
}
