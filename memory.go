package mecabbridge

import (
	"github.com/wippyai/mecab-bridge/errors"
)

// Memory represents a foreign linear memory
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	WriteU8(offset uint32, value uint8) error
	WriteU32(offset uint32, value uint32) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Allocator allocates memory in foreign linear memory
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// CopyBounded copies src into dst. When src does not fit nothing is
// written and a buffer_overflow error is returned.
func CopyBounded(dst, src []byte) (int, error) {
	if len(src) > len(dst) {
		return 0, errors.BufferOverflow(len(src), len(dst))
	}
	return copy(dst, src), nil
}

// WriteBounded writes src at ptr in mem when it fits in capacity bytes.
func WriteBounded(mem Memory, ptr, capacity uint32, src []byte) (int, error) {
	if uint64(len(src)) > uint64(capacity) {
		return 0, errors.BufferOverflow(len(src), int(capacity))
	}
	if len(src) == 0 {
		return 0, nil
	}
	if err := mem.Write(ptr, src); err != nil {
		return 0, errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "write caller buffer")
	}
	return len(src), nil
}

const minScratch = 64

// Scratch is a reusable region in foreign memory that holds the most
// recent engine-owned string of one handle. Each Put invalidates the
// previous contents.
type Scratch struct {
	ptr uint32
	cap uint32
}

// Put stores data in the region, growing it through alloc when needed,
// and returns its address.
func (s *Scratch) Put(mem Memory, alloc Allocator, data []byte) (uint32, error) {
	need := uint32(len(data))
	if need > s.cap || s.ptr == 0 {
		size := max(need, 2*s.cap, minScratch)
		ptr, err := alloc.Alloc(size, 1)
		if err != nil {
			return 0, errors.Wrap(errors.PhaseMarshal, errors.KindUnavailable, err, "allocate scratch")
		}
		if ptr == 0 {
			return 0, errors.Unavailable(errors.PhaseMarshal, "allocator returned null")
		}
		s.Release(alloc)
		s.ptr, s.cap = ptr, size
	}
	if need > 0 {
		if err := mem.Write(s.ptr, data); err != nil {
			return 0, errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "write scratch")
		}
	}
	return s.ptr, nil
}

// Release frees the region.
func (s *Scratch) Release(alloc Allocator) {
	if s.ptr != 0 {
		alloc.Free(s.ptr, s.cap, 1)
	}
	s.ptr, s.cap = 0, 0
}

// Cap returns the region capacity.
func (s *Scratch) Cap() uint32 { return s.cap }
