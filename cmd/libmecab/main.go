// Command libmecab builds the bridge as a C shared library:
//
//	go build -buildmode=c-shared -o libmecab.so ./cmd/libmecab
//
// Handles are size_t values, booleans are int, and 0 is the null handle.
// Failing calls return zero values (NULL, 0, or -1 where noted) and leave
// their message for mecab_get_global_error. Strings returned by the
// library are NUL terminated and owned by it: each stays valid until the
// same function is called again on the same handle or the handle is
// released. Caller-buffer variants count the terminating NUL in the
// buffer size and return NULL, writing nothing, when the result does not
// fit.
package main

// #include <stdlib.h>
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/resource"
)

func main() {}

type textKey struct {
	owner uint32
	fn    string
}

// library is the process-wide bridge with the C strings it handed out.
type library struct {
	b *bridge.Bridge

	alloc func([]byte) unsafe.Pointer
	free  func(unsafe.Pointer)

	mu    sync.Mutex
	texts map[textKey]unsafe.Pointer
}

func newLibrary(alloc func([]byte) unsafe.Pointer, free func(unsafe.Pointer), opts ...bridge.Option) *library {
	l := &library{alloc: alloc, free: free, texts: make(map[textKey]unsafe.Pointer)}
	l.b = bridge.New(append(opts, bridge.WithObserver(l))...)
	return l
}

func cAlloc(data []byte) unsafe.Pointer {
	p := C.malloc(C.size_t(len(data) + 1))
	buf := unsafe.Slice((*byte)(p), len(data)+1)
	copy(buf, data)
	buf[len(data)] = 0
	return p
}

func cFree(p unsafe.Pointer) {
	C.free(p)
}

var lib = newLibrary(cAlloc, cFree)

// OnResourceEvent frees the strings of dropped handles.
func (l *library) OnResourceEvent(e resource.Event) {
	if e.Type != resource.EventDropped {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, p := range l.texts {
		if k.owner == uint32(e.Handle) {
			l.free(p)
			delete(l.texts, k)
		}
	}
}

// keep copies data into a NUL-terminated string owned by (owner, fn),
// freeing the one it replaces.
func (l *library) keep(owner uint32, fn string, data []byte) unsafe.Pointer {
	p := l.alloc(data)
	k := textKey{owner: owner, fn: fn}
	l.mu.Lock()
	defer l.mu.Unlock()
	if old, ok := l.texts[k]; ok {
		l.free(old)
	}
	l.texts[k] = p
	return p
}

func (l *library) textCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.texts)
}

// guard runs f and returns zero when it fails or panics. Errors are already
// recorded by the bridge; panics are recorded here.
func guard[T any](l *library, fn string, zero T, f func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			bridge.Logger().Error("export panicked", zap.String("function", fn), zap.Any("panic", r))
			l.b.Report(errors.New(errors.PhaseHandle, errors.KindInvalidData).
				Detail("%s", fmt.Sprintf("%s: internal error: %v", fn, r)).
				Build())
			out = zero
		}
	}()
	v, err := f()
	if err != nil {
		return zero
	}
	return v
}

// text runs f and keeps its result as a C string owned by owner.
func (l *library) text(owner uint32, fn string, f func() ([]byte, error)) unsafe.Pointer {
	return guard(l, fn, unsafe.Pointer(nil), func() (unsafe.Pointer, error) {
		data, err := f()
		if err != nil {
			return nil, err
		}
		return l.keep(owner, fn, data), nil
	})
}

// status runs an action and reports it as an int boolean.
func (l *library) status(fn string, f func() error) int {
	return guard(l, fn, 0, func() (int, error) {
		if err := f(); err != nil {
			return 0, err
		}
		return 1, nil
	})
}

// fill runs a caller-buffer operation on a buffer of size bytes, leaving
// room for the NUL. It returns false, having written nothing, when the
// result does not fit.
func (l *library) fill(fn string, buf unsafe.Pointer, size int, f func(dst []byte) (int, error)) bool {
	return guard(l, fn, false, func() (bool, error) {
		if buf == nil || size < 1 {
			return false, l.b.Report(errors.New(errors.PhaseMarshal, errors.KindBufferOverflow).
				Detail("%s: no room for the terminating NUL", fn).
				Build())
		}
		dst := unsafe.Slice((*byte)(buf), size)
		n, err := f(dst[:size-1])
		if err != nil {
			return false, err
		}
		dst[n] = 0
		return true, nil
	})
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
