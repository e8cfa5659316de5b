package resource

import (
	"sync"
)

// LocalBackend is an in-memory backend with generations, ownership and
// borrow tracking.
type LocalBackend struct {
	entries  []entry
	freeList []uint32
	mu       sync.RWMutex
	live     int
	closed   bool
}

type entry struct {
	value       any
	children    []Handle
	typeID      uint32
	borrowCount uint32
	owner       Handle
	gen         uint8
	valid       bool
	view        bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]uint32, 0, 16),
	}
}

// resolve returns the slot for a live handle. Caller holds the lock.
func (b *LocalBackend) resolve(handle Handle) (*entry, error) {
	if handle.IsNull() {
		return nil, ErrNullHandle
	}
	idx := handle.Index()
	if int(idx) >= len(b.entries) {
		return nil, ErrStaleHandle
	}
	e := &b.entries[idx]
	if !e.valid || e.gen != handle.Generation() {
		return nil, ErrStaleHandle
	}
	return e, nil
}

// Create stores a value and returns a handle.
func (b *LocalBackend) Create(typeID uint32, value any, owner Handle, view bool) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	if owner != 0 {
		if _, err := b.resolve(owner); err != nil {
			return 0, err
		}
	}

	var idx uint32
	if n := len(b.freeList); n > 0 {
		idx = b.freeList[n-1]
		b.freeList = b.freeList[:n-1]
	} else {
		if len(b.entries) >= MaxEntries {
			return 0, ErrTableFull
		}
		idx = uint32(len(b.entries))
		b.entries = append(b.entries, entry{})
	}

	e := &b.entries[idx]
	gen := e.gen
	*e = entry{
		typeID: typeID,
		value:  value,
		owner:  owner,
		gen:    gen,
		valid:  true,
		view:   view,
	}
	handle := makeHandle(idx, gen)

	if owner != 0 {
		o := &b.entries[owner.Index()]
		o.children = append(o.children, handle)
	}
	b.live++

	return handle, nil
}

// Lookup retrieves a live entry.
func (b *LocalBackend) Lookup(handle Handle) (Entry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, err := b.resolve(handle)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Value: e.value, Owner: e.owner, TypeID: e.typeID, View: e.view}, nil
}

// Drop removes an entry and its descendants. Views are only dropped when
// force is set; nothing is dropped if any entry in the subtree is borrowed.
func (b *LocalBackend) Drop(handle Handle, force bool) ([]Dropped, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.resolve(handle)
	if err != nil {
		return nil, err
	}
	if e.view && !force {
		return nil, ErrBorrowedView
	}
	if b.borrowedLocked(handle) {
		return nil, ErrOutstandingBorrow
	}

	if e.owner != 0 {
		b.unlinkLocked(e.owner, handle)
	}

	var out []Dropped
	b.dropLocked(handle, &out)
	return out, nil
}

// DropChildren removes the entries of typeID owned directly by owner,
// along with their descendants. Borrowed children are kept.
func (b *LocalBackend) DropChildren(owner Handle, typeID uint32) []Dropped {
	b.mu.Lock()
	defer b.mu.Unlock()

	o, err := b.resolve(owner)
	if err != nil {
		return nil
	}

	var out []Dropped
	kept := o.children[:0]
	for _, child := range o.children {
		c := &b.entries[child.Index()]
		if c.typeID != typeID || b.borrowedLocked(child) {
			kept = append(kept, child)
			continue
		}
		b.dropLocked(child, &out)
	}
	o.children = kept
	return out
}

func (b *LocalBackend) borrowedLocked(handle Handle) bool {
	e := &b.entries[handle.Index()]
	if e.borrowCount > 0 {
		return true
	}
	for _, child := range e.children {
		if b.borrowedLocked(child) {
			return true
		}
	}
	return false
}

func (b *LocalBackend) unlinkLocked(owner, child Handle) {
	o, err := b.resolve(owner)
	if err != nil {
		return
	}
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

func (b *LocalBackend) dropLocked(handle Handle, out *[]Dropped) {
	idx := handle.Index()
	e := &b.entries[idx]
	for _, child := range e.children {
		b.dropLocked(child, out)
	}

	*out = append(*out, Dropped{
		Value:  e.value,
		Handle: handle,
		Owner:  e.owner,
		TypeID: e.typeID,
		View:   e.view,
	})

	// a slot whose generation is exhausted is retired, never reused
	if e.gen == maxGeneration {
		*e = entry{gen: e.gen}
	} else {
		*e = entry{gen: e.gen + 1}
		b.freeList = append(b.freeList, idx)
	}
	b.live--
}

// Borrow increments the borrow count for a handle.
func (b *LocalBackend) Borrow(handle Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.resolve(handle)
	if err != nil {
		return err
	}
	e.borrowCount++
	return nil
}

// ReturnBorrow decrements the borrow count for a handle.
func (b *LocalBackend) ReturnBorrow(handle Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, err := b.resolve(handle)
	if err != nil {
		return err
	}
	if e.borrowCount == 0 {
		return ErrStaleHandle
	}
	e.borrowCount--
	return nil
}

// Close releases all entries.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].value.(Dropper); ok {
				d.Drop()
			}
		}
	}

	b.entries = nil
	b.freeList = nil
	b.live = 0
	return nil
}

// Len returns the number of live entries.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.live
}

// CountType returns the number of live entries of typeID.
func (b *LocalBackend) CountType(typeID uint32) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	count := 0
	for _, e := range b.entries {
		if e.valid && e.typeID == typeID {
			count++
		}
	}
	return count
}

// Roots returns the live handles that have no owner.
func (b *LocalBackend) Roots() []Handle {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Handle
	for i, e := range b.entries {
		if e.valid && e.owner == 0 {
			out = append(out, makeHandle(uint32(i), e.gen))
		}
	}
	return out
}
