package hostmod

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	mecabbridge "github.com/wippyai/mecab-bridge"
)

// guestMemory adapts a guest's exported memory to mecabbridge.Memory.
type guestMemory struct {
	mem api.Memory
}

func (m *guestMemory) Read(offset uint32, length uint32) ([]byte, error) {
	if m.mem == nil {
		return nil, fmt.Errorf("guest exports no memory")
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *guestMemory) Write(offset uint32, data []byte) error {
	if m.mem == nil {
		return fmt.Errorf("guest exports no memory")
	}
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *guestMemory) ReadU8(offset uint32) (uint8, error) {
	data, err := m.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return data[0], nil
}

func (m *guestMemory) ReadU32(offset uint32) (uint32, error) {
	if m.mem == nil {
		return 0, fmt.Errorf("guest exports no memory")
	}
	val, ok := m.mem.ReadUint32Le(offset)
	if !ok {
		return 0, fmt.Errorf("read out of bounds: offset=%d", offset)
	}
	return val, nil
}

func (m *guestMemory) WriteU8(offset uint32, value uint8) error {
	return m.Write(offset, []byte{value})
}

func (m *guestMemory) WriteU32(offset uint32, value uint32) error {
	if m.mem == nil {
		return fmt.Errorf("guest exports no memory")
	}
	if !m.mem.WriteUint32Le(offset, value) {
		return fmt.Errorf("write out of bounds: offset=%d", offset)
	}
	return nil
}

func (m *guestMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

// guestAllocator allocates through the guest's cabi_realloc. Regions are
// returned with cabi_free when the guest exports it, otherwise by
// reallocating them to size zero.
type guestAllocator struct {
	reallocFn api.Function
	freeFn    api.Function
	ctx       context.Context
	stackBuf  [4]uint64
}

func newGuestAllocator(mod api.Module) *guestAllocator {
	return &guestAllocator{
		reallocFn: mod.ExportedFunction("cabi_realloc"),
		freeFn:    mod.ExportedFunction("cabi_free"),
	}
}

func (a *guestAllocator) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	if a.reallocFn == nil {
		return 0, fmt.Errorf("guest exports no cabi_realloc")
	}
	a.stackBuf[0] = 0
	a.stackBuf[1] = 0
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.reallocFn.CallWithStack(a.context(), a.stackBuf[:4]); err != nil {
		return 0, err
	}
	return uint32(a.stackBuf[0]), nil
}

func (a *guestAllocator) Free(ptr, size, align uint32) {
	if ptr == 0 {
		return
	}
	var err error
	switch {
	case a.freeFn != nil:
		a.stackBuf[0] = uint64(ptr)
		a.stackBuf[1] = uint64(size)
		a.stackBuf[2] = uint64(align)
		err = a.freeFn.CallWithStack(a.context(), a.stackBuf[:3])
	case a.reallocFn != nil:
		a.stackBuf[0] = uint64(ptr)
		a.stackBuf[1] = uint64(size)
		a.stackBuf[2] = uint64(align)
		a.stackBuf[3] = 0
		err = a.reallocFn.CallWithStack(a.context(), a.stackBuf[:4])
	}
	if err != nil {
		Logger().Warn("free scratch",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

var (
	_ mecabbridge.Memory      = (*guestMemory)(nil)
	_ mecabbridge.MemorySizer = (*guestMemory)(nil)
	_ mecabbridge.Allocator   = (*guestAllocator)(nil)
)
