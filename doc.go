// Package vmdk opens, creates and exposes the logical contents of a VMware
// Virtual Machine Disk (VMDK) image as a random-access, sparse-aware byte
// stream addressable by sector.
//
// It covers the on-disk layout math for hosted-sparse extents, the extent
// composition engine that stitches flat, hosted-sparse, VMFS-sparse and
// zero extents into a single logical stream (optionally backed by a parent
// disk for differencing), and the descriptor parse/rewrite pipeline that
// detects whether an input is a bare textual descriptor or a sparse extent
// with an embedded descriptor.
//
// Grain allocation for sparse writes, network/remote I/O and encryption are
// out of scope: the streams returned by this package satisfy reads against
// existing on-disk grains and fall through to a parent disk (or zeros) for
// unallocated ones.
package vmdk
