package main

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/internal/testdict"
)

type goHeap struct {
	live map[unsafe.Pointer][]byte
}

func (h *goHeap) alloc(data []byte) unsafe.Pointer {
	buf := append(append([]byte(nil), data...), 0)
	p := unsafe.Pointer(&buf[0])
	h.live[p] = buf
	return p
}

func (h *goHeap) free(p unsafe.Pointer) {
	delete(h.live, p)
}

func newTestLibrary(t *testing.T) (*library, *goHeap) {
	t.Helper()
	h := &goHeap{live: make(map[unsafe.Pointer][]byte)}
	l := newLibrary(h.alloc, h.free)
	t.Cleanup(func() { l.b.Close() })
	return l, h
}

func goString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	var n int
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}

func TestTextsFollowHandles(t *testing.T) {
	t.Setenv("MECABRC", "")
	l, heap := newTestLibrary(t)

	m, err := l.b.NewModel([]string{"mecab", "-d", testdict.Write(t)})
	require.NoError(t, err)
	lat, err := l.b.NewLattice(m)
	require.NoError(t, err)
	require.NoError(t, l.b.LatticeSetSentence(lat, []byte("ab")))

	p := l.text(uint32(lat), "sentence", func() ([]byte, error) { return l.b.LatticeSentence(lat) })
	assert.Equal(t, "ab", goString(p))
	assert.Len(t, heap.live, 1)

	// a second call on the same handle replaces the first string
	p = l.text(uint32(lat), "sentence", func() ([]byte, error) { return l.b.LatticeSentence(lat) })
	assert.Equal(t, "ab", goString(p))
	assert.Len(t, heap.live, 1)
	assert.Equal(t, 1, l.textCount())

	require.NoError(t, l.b.ReleaseModel(m))
	assert.Empty(t, heap.live, "strings are freed with their handle")
	assert.Zero(t, l.textCount())
}

func TestTextFailure(t *testing.T) {
	l, heap := newTestLibrary(t)

	p := l.text(42, "sentence", func() ([]byte, error) { return l.b.LatticeSentence(42) })
	assert.Nil(t, p)
	assert.Empty(t, heap.live)
	assert.NotEmpty(t, l.b.LastError())
}

func TestGuardRecoversPanics(t *testing.T) {
	l, _ := newTestLibrary(t)

	got := guard(l, "mecab_boom", -1, func() (int, error) {
		var n *bridge.Bridge
		return n.Len(), nil
	})
	assert.Equal(t, -1, got)
	assert.True(t, errors.IsKind(l.b.Err(), errors.KindInvalidData))
	assert.Contains(t, l.b.LastError(), "mecab_boom")
}

func TestStatus(t *testing.T) {
	l, _ := newTestLibrary(t)

	assert.Equal(t, 0, l.status("mecab_lattice_clear", func() error { return l.b.LatticeClear(7) }))
	lat, err := l.b.NewStandaloneLattice()
	require.NoError(t, err)
	assert.Equal(t, 1, l.status("mecab_lattice_clear", func() error { return l.b.LatticeClear(lat) }))
}

func TestFill(t *testing.T) {
	t.Setenv("MECABRC", "")
	l, _ := newTestLibrary(t)

	m, err := l.b.NewModel([]string{"mecab", "-d", testdict.Write(t), "-O", "wakati"})
	require.NoError(t, err)
	tg, err := l.b.NewTagger(m)
	require.NoError(t, err)
	lat, err := l.b.NewLattice(m)
	require.NoError(t, err)
	require.NoError(t, l.b.LatticeSetSentence(lat, []byte("ab")))
	require.NoError(t, l.b.TaggerParse(tg, lat))

	tostr := func(dst []byte) (int, error) { return l.b.LatticeToBuffer(lat, dst) }

	buf := make([]byte, 5)
	require.True(t, l.fill("tostr2", unsafe.Pointer(&buf[0]), len(buf), tostr))
	assert.Equal(t, "ab \n\x00", string(buf))

	// "ab \n" plus the NUL needs five bytes
	small := []byte{'x', 'x', 'x', 'x'}
	assert.False(t, l.fill("tostr2", unsafe.Pointer(&small[0]), len(small), tostr))
	assert.Equal(t, "xxxx", string(small))
	assert.True(t, errors.IsKind(l.b.Err(), errors.KindBufferOverflow))

	assert.False(t, l.fill("tostr2", nil, 0, tostr))
	assert.True(t, errors.IsKind(l.b.Err(), errors.KindBufferOverflow))
}
