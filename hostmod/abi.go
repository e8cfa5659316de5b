package hostmod

import (
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

const (
	maxFlatParams  = 16
	maxFlatResults = 1
)

// Param is a named function parameter.
type Param struct {
	Name string
	Type wit.Type
}

// Signature describes one exported host function: its WIT-level types and
// the core wasm types they flatten to.
type Signature struct {
	Result      wit.Type
	Name        string
	Params      []Param
	CoreParams  []api.ValueType
	CoreResults []api.ValueType
	// RetPtr is set when the result does not fit in one core value and is
	// written through a pointer passed as the last core parameter.
	RetPtr bool
}

// String renders the signature in WIT syntax followed by its core form.
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString(": func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", p.Name, witName(p.Type))
	}
	b.WriteString(")")
	if s.Result != nil {
		b.WriteString(" -> ")
		b.WriteString(witName(s.Result))
	}
	b.WriteString("  ;; (")
	b.WriteString(coreNames(s.CoreParams))
	b.WriteString(") -> (")
	b.WriteString(coreNames(s.CoreResults))
	b.WriteString(")")
	return b.String()
}

func coreNames(ts []api.ValueType) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, " ")
}

func witName(t wit.Type) string {
	switch t := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.F64:
		return "f64"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.List:
			return "list<" + witName(kind.Type) + ">"
		case *wit.Option:
			return "option<" + witName(kind.Type) + ">"
		}
	}
	return fmt.Sprintf("%T", t)
}

// newSignature flattens params and result with the canonical ABI rules.
// The exported surface never needs spilled parameters, so more than
// maxFlatParams is a programming error.
func newSignature(name string, params []Param, result wit.Type) Signature {
	s := Signature{Name: name, Params: params, Result: result}
	for _, p := range params {
		s.CoreParams = append(s.CoreParams, flatten(p.Type)...)
	}
	if len(s.CoreParams) > maxFlatParams {
		panic(fmt.Sprintf("hostmod: %s flattens to %d params", name, len(s.CoreParams)))
	}
	if result != nil {
		flat := flatten(result)
		if len(flat) > maxFlatResults {
			s.RetPtr = true
			s.CoreParams = append(s.CoreParams, api.ValueTypeI32)
		} else {
			s.CoreResults = flat
		}
	}
	return s
}

// flatten returns the core value types t is passed as.
func flatten(t wit.Type) []api.ValueType {
	switch t := t.(type) {
	case wit.Bool, wit.U8, wit.S8, wit.U16, wit.S16, wit.U32, wit.S32, wit.Char:
		return []api.ValueType{api.ValueTypeI32}
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}
	case wit.String:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.List:
			return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
		case *wit.Option:
			return append([]api.ValueType{api.ValueTypeI32}, flatten(kind.Type)...)
		case *wit.Record:
			var out []api.ValueType
			for _, f := range kind.Fields {
				out = append(out, flatten(f.Type)...)
			}
			return out
		case *wit.Enum, *wit.Flags:
			return []api.ValueType{api.ValueTypeI32}
		}
	}
	panic(fmt.Sprintf("hostmod: cannot flatten %T", t))
}

// sizeOf returns the in-memory size of the result types written through a
// retptr.
func sizeOf(t wit.Type) uint32 {
	switch t := t.(type) {
	case wit.String:
		return 8
	case *wit.TypeDef:
		switch kind := t.Kind.(type) {
		case *wit.List:
			return 8
		case *wit.Option:
			// tag byte padded to the payload alignment
			return 4 + sizeOf(kind.Type)
		}
	}
	return 4
}

var (
	tString       wit.Type = wit.String{}
	tOptionString wit.Type = &wit.TypeDef{Kind: &wit.Option{Type: wit.String{}}}
	tStringList   wit.Type = &wit.TypeDef{Kind: &wit.List{Type: wit.String{}}}
)

func u32(name string) Param  { return Param{Name: name, Type: wit.U32{}} }
func s32(name string) Param  { return Param{Name: name, Type: wit.S32{}} }
func u16(name string) Param  { return Param{Name: name, Type: wit.U16{}} }
func f64(name string) Param  { return Param{Name: name, Type: wit.F64{}} }
func str(name string) Param  { return Param{Name: name, Type: tString} }
func strs(name string) Param { return Param{Name: name, Type: tStringList} }
