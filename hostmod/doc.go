// Package hostmod exports the bridge to WebAssembly guests as a wazero host
// module named "mecab".
//
// Every function is described with WIT types and lowered to core wasm
// types with the canonical ABI flattening rules: strings travel as
// (ptr, len), a result that flattens to more than one core value is
// written through a trailing retptr parameter.
//
//	model-new-from-string: func(arg: string) -> u32        ;; (i32 i32) -> (i32)
//	tagger-parse: func(tagger: u32, lattice: u32) -> bool  ;; (i32 i32) -> (i32)
//	node-surface: func(node: u32) -> option<string>        ;; (i32 i32) -> ()
//
// model-swap consumes its second model even when it fails, and request
// type setters apply to the next tagger-parse.
//
// Failing calls return zero values (the null handle, false, none, -1 for
// caller buffers) and record the error, which last-error returns.
//
// Guests must export "memory" and "cabi_realloc". Strings returned by the
// host are placed in scratch regions the host allocates with cabi_realloc
// and keeps per handle and function; a region is overwritten by the next
// call of the same function on the same handle and freed (through
// "cabi_free" when exported) once the handle is released.
package hostmod
