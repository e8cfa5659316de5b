package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // dictionary and model construction
	PhaseOption  Phase = "option"  // option vector / rc file handling
	PhaseParse   Phase = "parse"   // tagger analysis
	PhaseLookup  Phase = "lookup"  // raw dictionary lookup
	PhaseFormat  Phase = "format"  // result string production
	PhaseMarshal Phase = "marshal" // foreign memory and buffers
	PhaseHandle  Phase = "handle"  // handle lifecycle
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindInvalidData       Kind = "invalid_data"
	KindUnavailable       Kind = "unavailable"
	KindOutOfRange        Kind = "out_of_range"
	KindBufferOverflow    Kind = "buffer_overflow"
	KindIncompatible      Kind = "incompatible"
	KindUnsupported       Kind = "unsupported"
	KindStaleHandle       Kind = "stale_handle"
	KindTypeMismatch      Kind = "type_mismatch"
	KindBorrowedView      Kind = "borrowed_view"
	KindOutstandingBorrow Kind = "outstanding_borrow"
	KindClosed            Kind = "closed"
	KindExhausted         Kind = "exhausted"
)

// Error is the structured error type used across the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Entity string
	Detail string
	Path   []string
	Handle uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Entity != "" {
		b.WriteByte(' ')
		b.WriteString(e.Entity)
		if e.Handle != 0 {
			b.WriteByte('#')
			b.WriteString(strconv.FormatUint(uint64(e.Handle), 10))
		}
	}

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, ":"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Message returns the detail text alone, falling back to the full form.
// Engine what() strings use it so they read like the engine's own messages.
func (e *Error) Message() string {
	if e.Detail == "" {
		return e.Error()
	}
	if e.Cause != nil {
		return e.Detail + ": " + e.Cause.Error()
	}
	return e.Detail
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path (file, line)
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Entity sets the entity kind and handle the error refers to
func (b *Builder) Entity(entity string, handle uint32) *Builder {
	b.err.Entity = entity
	b.err.Handle = handle
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidData creates an invalid data error located in a source file
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Unavailable creates an error for an entity that cannot serve the call in its current state
func Unavailable(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnavailable,
		Detail: detail,
	}
}

// OutOfRange creates an out of range error
func OutOfRange(phase Phase, what string, value any, limit any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfRange,
		Detail: fmt.Sprintf("%s %v out of range (limit %v)", what, value, limit),
		Value:  value,
	}
}

// BufferOverflow creates the caller-buffer truncation error
func BufferOverflow(need, capacity int) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindBufferOverflow,
		Detail: "output buffer overflow",
		Value:  need,
		Cause:  fmt.Errorf("need %d bytes, capacity %d", need, capacity),
	}
}

// Incompatible creates an incompatibility error
func Incompatible(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindIncompatible,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a model loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates an analysis error
func ParseFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}
