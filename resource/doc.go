// Package resource provides the handle table behind the bridge.
//
// Engine objects are never handed across the language boundary directly.
// Callers receive uint32 handles into a Table; every entry carries a kind
// tag, an optional owner and a borrow count.
//
// # Handles
//
// Handle 0 is reserved. The low 24 bits of a handle select a slot and the
// high 8 bits record the slot generation. Releasing an entry bumps its
// generation, so a released handle reports ErrStaleHandle instead of
// silently resolving to whatever reuses the slot. A slot that has used all
// 256 generations is retired rather than wrapped.
//
//	table := resource.NewTable()
//
//	model, _ := table.Insert(KindModel, m, 0)
//	tagger, _ := table.Insert(KindTagger, t, model)
//
//	v, err := table.GetTyped(tagger, KindTagger)   // ok
//	_, err = table.GetTyped(tagger, KindLattice)   // ErrTypeMismatch
//
// # Ownership
//
// An entry inserted with an owner is removed when the owner is removed.
// Views (InsertView) cannot be removed on their own at all; they exist
// exactly as long as their owner or until RemoveChildren drops them.
//
//	_, err = table.Remove(model)          // drops tagger too
//	_, err = table.GetTyped(tagger, ...)  // ErrStaleHandle
//
// # Borrows
//
// Borrow pins an entry for the duration of a call. Removing a pinned
// entry, or an owner of one, fails with ErrOutstandingBorrow.
//
// # Observers
//
// Observers receive an Event for every insert, drop and borrow. Dropped
// events arrive children first.
//
// Slab[T] wraps a Table for one kind with typed Insert/Get/Remove.
package resource
