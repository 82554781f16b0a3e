package vmdk

import (
	"io"

	"github.com/diskfs/go-vmdk/backend"
)

// ProbeResult is what probing learns about a single extent file or stream:
// whether it carries a hosted-sparse binary header, and if so the parsed
// header plus the embedded descriptor's byte window (so the descriptor can
// be rewritten in place without disturbing the grain data that follows it).
type ProbeResult struct {
	IsHostedSparse bool
	Header         *HostedSparseExtentHeader
	Descriptor     *Descriptor

	// DescriptorOffset/DescriptorSectorCapacity describe the embedded
	// descriptor's byte window within the extent file. Both are zero for a
	// bare textual descriptor, since there the whole file is the window.
	DescriptorOffset         int64
	DescriptorSectorCapacity int64
}

const bareDescriptorMagic = "# Disk DescriptorFile"

// DescriptorProbe reads the first bytes of storage and determines whether
// it holds a hosted-sparse extent (magic "KDMV") with an embedded
// descriptor, or a bare textual descriptor ("# Disk DescriptorFile"). Per
// spec.md §4, these are the only two descriptor carriers in scope;
// anything else is *NotAVmdkError.
func DescriptorProbe(storage backend.Storage) (*ProbeResult, error) {
	info, err := storage.Stat()
	if err != nil {
		return nil, err
	}
	return probe(storage, info.Size(), info.Name())
}

// probeStream is DescriptorProbe's counterpart for a bare io.ReaderAt of
// known size, for callers that have no Stat to take the size from.
func probeStream(ra io.ReaderAt, size int64) (*ProbeResult, error) {
	return probe(ra, size, "<stream>")
}

func probe(ra io.ReaderAt, size int64, name string) (*ProbeResult, error) {
	probeLen := int64(hostedSparseHeaderSize)
	if size < probeLen {
		probeLen = size
	}
	head := make([]byte, probeLen)
	if _, err := ra.ReadAt(head, 0); err != nil {
		return nil, err
	}

	if probeLen >= 4 && getUint32LE(head) == HostedSparseMagic {
		return probeHostedSparse(ra, head, size)
	}

	if probeLen >= int64(len(bareDescriptorMagic)) && string(head[:len(bareDescriptorMagic)]) == bareDescriptorMagic {
		buf := make([]byte, size)
		if _, err := ra.ReadAt(buf, 0); err != nil {
			return nil, err
		}
		desc, err := ParseDescriptor(buf)
		if err != nil {
			return nil, err
		}
		return &ProbeResult{Descriptor: desc}, nil
	}

	return nil, &NotAVmdkError{Path: name}
}

func probeHostedSparse(ra io.ReaderAt, head []byte, size int64) (*ProbeResult, error) {
	if int64(len(head)) < hostedSparseHeaderSize {
		full := make([]byte, hostedSparseHeaderSize)
		copy(full, head)
		if _, err := ra.ReadAt(full[len(head):], int64(len(head))); err != nil {
			return nil, err
		}
		head = full
	}

	header, err := ParseHostedSparseExtentHeader(head)
	if err != nil {
		return nil, err
	}

	result := &ProbeResult{IsHostedSparse: true, Header: header}

	if header.DescriptorOffset == 0 || header.DescriptorSize == 0 {
		// No embedded descriptor: this extent relies on an external
		// descriptor file named by the caller (e.g. one extent of a
		// twoGbMaxExtentSparse image), nothing to parse here.
		return result, nil
	}

	offset := int64(header.DescriptorOffset) * SectorSize
	window := int64(header.DescriptorSize) * SectorSize
	if offset+window > size {
		return nil, &CorruptError{Reason: "embedded descriptor window exceeds file size"}
	}

	raw := make([]byte, window)
	if _, err := ra.ReadAt(raw, offset); err != nil {
		return nil, err
	}
	// The embedded window is sector-padded with NUL bytes beyond the
	// descriptor's actual text; trim before parsing.
	trimmed := trimNulPadding(raw)

	desc, err := ParseDescriptor(trimmed)
	if err != nil {
		return nil, err
	}
	result.Descriptor = desc
	result.DescriptorOffset = offset
	result.DescriptorSectorCapacity = int64(header.DescriptorSize)
	return result, nil
}

func trimNulPadding(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return b[:end]
}
