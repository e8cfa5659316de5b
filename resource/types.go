package resource

import "errors"

// Handle is an opaque reference to an entry in a table.
// Handle 0 is reserved and always invalid.
//
// The low 24 bits hold the slot index plus one, the high 8 bits the slot
// generation. A slot is retired after its last generation, so a handle to
// a released entry never aliases a later one.
type Handle uint32

const (
	indexBits = 24
	indexMask = 1<<indexBits - 1

	// MaxEntries is the number of slots a table can hold.
	MaxEntries = indexMask

	maxGeneration = 1<<(32-indexBits) - 1
)

func makeHandle(idx uint32, gen uint8) Handle {
	return Handle(uint32(gen)<<indexBits | (idx + 1))
}

// Index returns the slot index of h. It is meaningless for the null handle.
func (h Handle) Index() uint32 {
	return uint32(h)&indexMask - 1
}

// Generation returns the slot generation h was issued in.
func (h Handle) Generation() uint8 {
	return uint8(uint32(h) >> indexBits)
}

// IsNull reports whether h is the reserved zero handle.
func (h Handle) IsNull() bool {
	return uint32(h)&indexMask == 0
}

var (
	ErrClosed            = errors.New("resource table closed")
	ErrOutstandingBorrow = errors.New("cannot drop resource with outstanding borrows")
	ErrNullHandle        = errors.New("null handle")
	ErrStaleHandle       = errors.New("handle is not live")
	ErrTypeMismatch      = errors.New("handle refers to a different kind")
	ErrBorrowedView      = errors.New("view handles are released with their owner")
	ErrTableFull         = errors.New("resource table full")
)

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventBorrowed
	EventBorrowReturned
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	case EventBorrowed:
		return "borrowed"
	case EventBorrowReturned:
		return "borrow_returned"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	Owner  Handle
	TypeID uint32
	Type   EventType
	View   bool
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Entry is a snapshot of a live table slot.
type Entry struct {
	Value  any
	Owner  Handle
	TypeID uint32
	View   bool
}

// Dropped describes an entry removed from the table.
type Dropped struct {
	Value  any
	Handle Handle
	Owner  Handle
	TypeID uint32
	View   bool
}

// Backend provides the underlying storage mechanism for entries.
type Backend interface {
	// Create stores a value owned by owner (0 for top-level) and returns a handle.
	Create(typeID uint32, value any, owner Handle, view bool) (Handle, error)

	// Lookup retrieves a live entry.
	Lookup(handle Handle) (Entry, error)

	// Drop removes an entry and every entry it transitively owns.
	// Owned entries are listed before their owners.
	Drop(handle Handle, force bool) ([]Dropped, error)

	// DropChildren removes the entries of typeID owned directly by owner.
	DropChildren(owner Handle, typeID uint32) []Dropped

	// Borrow increments the borrow count for a handle.
	Borrow(handle Handle) error

	// ReturnBorrow decrements the borrow count for a handle.
	ReturnBorrow(handle Handle) error

	// Close releases all entries held by the backend.
	Close() error
}

// Dropper is optionally implemented by values that need cleanup.
type Dropper interface {
	Drop()
}
