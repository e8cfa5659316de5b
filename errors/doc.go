// Package errors provides structured error types for the mecab bridge.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the entity kind and handle it refers to, a source
// location path for dictionary files, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseHandle, errors.KindStaleHandle).
//		Entity("lattice", uint32(h)).
//		Detail("handle was released").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidData(errors.PhaseLoad, []string{"matrix.def", "3"}, "bad cost")
//	err := errors.BufferOverflow(need, len(dst))
//
// All errors implement the standard error interface and support errors.Is/As.
// IsKind and KindOf classify an error chain by Kind alone.
package errors
