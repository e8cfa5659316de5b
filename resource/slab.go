package resource

// Slab gives type-safe access to the entries of one kind in a shared Table.
type Slab[T any] struct {
	table  *Table
	typeID uint32
}

// NewSlab binds a kind to a table.
func NewSlab[T any](table *Table, typeID uint32) *Slab[T] {
	return &Slab[T]{table: table, typeID: typeID}
}

// TypeID returns the kind tag of the slab.
func (s *Slab[T]) TypeID() uint32 {
	return s.typeID
}

// Insert adds a value owned by owner and returns its handle.
func (s *Slab[T]) Insert(value T, owner Handle) (Handle, error) {
	return s.table.Insert(s.typeID, value, owner)
}

// InsertView adds a value bound to owner's lifetime.
func (s *Slab[T]) InsertView(value T, owner Handle) (Handle, error) {
	return s.table.InsertView(s.typeID, value, owner)
}

// Get retrieves a value by handle.
func (s *Slab[T]) Get(handle Handle) (T, error) {
	var zero T
	v, err := s.table.GetTyped(handle, s.typeID)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Owner returns the handle that owns handle.
func (s *Slab[T]) Owner(handle Handle) (Handle, error) {
	e, err := s.table.Lookup(handle)
	if err != nil {
		return 0, err
	}
	if e.TypeID != s.typeID {
		return 0, ErrTypeMismatch
	}
	return e.Owner, nil
}

// Remove drops an entry of this kind and everything it owns.
func (s *Slab[T]) Remove(handle Handle) (T, error) {
	var zero T
	v, err := s.table.RemoveTyped(handle, s.typeID)
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// RemoveOwned drops every entry of this kind owned directly by owner.
func (s *Slab[T]) RemoveOwned(owner Handle) int {
	return s.table.RemoveChildren(owner, s.typeID)
}

// Len returns the number of live entries of this kind.
func (s *Slab[T]) Len() int {
	return s.table.CountType(s.typeID)
}
