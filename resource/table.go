package resource

import (
	"sync"
)

// Table maps handles to values with kind tags, ownership and observers.
type Table struct {
	backend   *LocalBackend
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

// NewTable creates a new table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
	}
}

func (t *Table) isClosed() bool {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	return t.closed
}

// Insert adds a value owned by owner (0 for none) and returns its handle.
func (t *Table) Insert(typeID uint32, value any, owner Handle) (Handle, error) {
	return t.insert(typeID, value, owner, false)
}

// InsertView adds a value that lives exactly as long as owner and can not
// be removed on its own.
func (t *Table) InsertView(typeID uint32, value any, owner Handle) (Handle, error) {
	return t.insert(typeID, value, owner, true)
}

func (t *Table) insert(typeID uint32, value any, owner Handle, view bool) (Handle, error) {
	if t.isClosed() {
		return 0, ErrClosed
	}

	handle, err := t.backend.Create(typeID, value, owner, view)
	if err != nil {
		return 0, err
	}

	t.notify(Event{
		Type:   EventCreated,
		Handle: handle,
		Owner:  owner,
		TypeID: typeID,
		Value:  value,
		View:   view,
	})

	return handle, nil
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	e, err := t.backend.Lookup(handle)
	if err != nil {
		return nil, false
	}
	return e.Value, true
}

// Lookup retrieves the full entry for a handle.
func (t *Table) Lookup(handle Handle) (Entry, error) {
	if t.isClosed() {
		return Entry{}, ErrClosed
	}
	return t.backend.Lookup(handle)
}

// GetTyped retrieves a value only if it matches the expected type.
func (t *Table) GetTyped(handle Handle, typeID uint32) (any, error) {
	e, err := t.Lookup(handle)
	if err != nil {
		return nil, err
	}
	if e.TypeID != typeID {
		return nil, ErrTypeMismatch
	}
	return e.Value, nil
}

// Remove drops an entry and everything it owns, returning the entry's value.
func (t *Table) Remove(handle Handle) (any, error) {
	return t.remove(handle, false)
}

// RemoveTyped is Remove guarded by a kind check.
func (t *Table) RemoveTyped(handle Handle, typeID uint32) (any, error) {
	e, err := t.Lookup(handle)
	if err != nil {
		return nil, err
	}
	if e.TypeID != typeID {
		return nil, ErrTypeMismatch
	}
	return t.remove(handle, false)
}

func (t *Table) remove(handle Handle, force bool) (any, error) {
	if t.isClosed() {
		return nil, ErrClosed
	}

	dropped, err := t.backend.Drop(handle, force)
	if err != nil {
		return nil, err
	}
	t.finish(dropped)

	// the requested entry is always last
	return dropped[len(dropped)-1].Value, nil
}

// RemoveChildren drops the entries of typeID directly owned by owner and
// returns how many were dropped, descendants excluded.
func (t *Table) RemoveChildren(owner Handle, typeID uint32) int {
	if t.isClosed() {
		return 0
	}
	dropped := t.backend.DropChildren(owner, typeID)
	t.finish(dropped)

	n := 0
	for _, d := range dropped {
		if d.Owner == owner {
			n++
		}
	}
	return n
}

func (t *Table) finish(dropped []Dropped) {
	for _, d := range dropped {
		if dr, ok := d.Value.(Dropper); ok {
			dr.Drop()
		}
		t.notify(Event{
			Type:   EventDropped,
			Handle: d.Handle,
			Owner:  d.Owner,
			TypeID: d.TypeID,
			Value:  d.Value,
			View:   d.View,
		})
	}
}

// Borrow marks a handle as in use; it can not be removed until returned.
func (t *Table) Borrow(handle Handle) error {
	if err := t.backend.Borrow(handle); err != nil {
		return err
	}
	t.notify(Event{Type: EventBorrowed, Handle: handle})
	return nil
}

// ReturnBorrow releases a borrow taken with Borrow.
func (t *Table) ReturnBorrow(handle Handle) error {
	if err := t.backend.ReturnBorrow(handle); err != nil {
		return err
	}
	t.notify(Event{Type: EventBorrowReturned, Handle: handle})
	return nil
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	return t.backend.Len()
}

// CountType returns the number of live entries of one kind.
func (t *Table) CountType(typeID uint32) int {
	return t.backend.CountType(typeID)
}

// Clear drops all entries.
func (t *Table) Clear() {
	for _, h := range t.backend.Roots() {
		t.remove(h, true)
	}
}

// Close releases all entries and stops accepting operations.
func (t *Table) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
