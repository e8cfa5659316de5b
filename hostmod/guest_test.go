package hostmod

import (
	"bytes"

	"github.com/tetratelabs/wazero/api"
)

// assembleGuest encodes a minimal core module that imports every host
// function and re-exports each behind a thunk named "call-<name>". It
// exports one memory, a bump allocator as cabi_realloc and, when withFree
// is set, a cabi_free that counts its calls in the exported global
// "frees".
func assembleGuest(sigs []Signature, withFree bool) []byte {
	var (
		types   bytes.Buffer
		imports bytes.Buffer
		funcs   bytes.Buffer
		exports bytes.Buffer
		code    bytes.Buffer
	)
	n := uint32(len(sigs))
	reallocType, freeType := n, n+1

	writeU32(&types, n+2)
	for _, s := range sigs {
		writeFuncType(&types, s.CoreParams, s.CoreResults)
	}
	i32 := api.ValueTypeI32
	writeFuncType(&types, []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32})
	writeFuncType(&types, []api.ValueType{i32, i32, i32}, nil)

	writeU32(&imports, n)
	for i, s := range sigs {
		writeName(&imports, ModuleName)
		writeName(&imports, s.Name)
		imports.WriteByte(0x00)
		writeU32(&imports, uint32(i))
	}

	defined := n + 1 // realloc and thunks
	if withFree {
		defined++
	}
	writeU32(&funcs, defined)
	writeU32(&funcs, reallocType)
	if withFree {
		writeU32(&funcs, freeType)
	}
	for i := range sigs {
		writeU32(&funcs, uint32(i))
	}

	reallocIdx := n
	thunkBase := n + 1
	if withFree {
		thunkBase++
	}

	exportCount := 2 + n
	if withFree {
		exportCount += 2
	}
	writeU32(&exports, exportCount)
	writeName(&exports, "memory")
	exports.WriteByte(0x02)
	writeU32(&exports, 0)
	writeName(&exports, "cabi_realloc")
	exports.WriteByte(0x00)
	writeU32(&exports, reallocIdx)
	if withFree {
		writeName(&exports, "cabi_free")
		exports.WriteByte(0x00)
		writeU32(&exports, reallocIdx+1)
		writeName(&exports, "frees")
		exports.WriteByte(0x03)
		writeU32(&exports, 1)
	}
	for i, s := range sigs {
		writeName(&exports, "call-"+s.Name)
		exports.WriteByte(0x00)
		writeU32(&exports, thunkBase+uint32(i))
	}

	writeU32(&code, defined)
	// cabi_realloc: returns the heap top and bumps it by the new size,
	// keeping it 8-aligned.
	writeBody(&code, []byte{
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x03, // local.get 3
		0x6a,       // i32.add
		0x41, 0x07, // i32.const 7
		0x6a,       // i32.add
		0x41, 0x78, // i32.const -8
		0x71,       // i32.and
		0x24, 0x00, // global.set 0
	})
	if withFree {
		writeBody(&code, []byte{
			0x23, 0x01, // global.get 1
			0x41, 0x01, // i32.const 1
			0x6a,       // i32.add
			0x24, 0x01, // global.set 1
		})
	}
	for i, s := range sigs {
		var body bytes.Buffer
		for j := range s.CoreParams {
			body.WriteByte(0x20)
			writeU32(&body, uint32(j))
		}
		body.WriteByte(0x10)
		writeU32(&body, uint32(i))
		writeBody(&code, body.Bytes())
	}

	var memory bytes.Buffer
	writeU32(&memory, 1)
	memory.WriteByte(0x00)
	writeU32(&memory, 4)

	var globals bytes.Buffer
	writeU32(&globals, 2)
	globals.Write([]byte{0x7f, 0x01, 0x41})
	writeS32(&globals, 1024)
	globals.WriteByte(0x0b)
	globals.Write([]byte{0x7f, 0x01, 0x41, 0x00, 0x0b})

	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})
	writeSection(&out, 1, types.Bytes())
	writeSection(&out, 2, imports.Bytes())
	writeSection(&out, 3, funcs.Bytes())
	writeSection(&out, 5, memory.Bytes())
	writeSection(&out, 6, globals.Bytes())
	writeSection(&out, 7, exports.Bytes())
	writeSection(&out, 10, code.Bytes())
	return out.Bytes()
}

func writeFuncType(b *bytes.Buffer, params, results []api.ValueType) {
	b.WriteByte(0x60)
	writeU32(b, uint32(len(params)))
	for _, p := range params {
		b.WriteByte(p)
	}
	writeU32(b, uint32(len(results)))
	for _, r := range results {
		b.WriteByte(r)
	}
}

func writeBody(b *bytes.Buffer, instrs []byte) {
	// no locals, instructions, end
	body := append([]byte{0x00}, instrs...)
	body = append(body, 0x0b)
	writeU32(b, uint32(len(body)))
	b.Write(body)
}

func writeSection(b *bytes.Buffer, id byte, content []byte) {
	b.WriteByte(id)
	writeU32(b, uint32(len(content)))
	b.Write(content)
}

func writeName(b *bytes.Buffer, s string) {
	writeU32(b, uint32(len(s)))
	b.WriteString(s)
}

func writeU32(b *bytes.Buffer, v uint32) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b.WriteByte(c)
		if v == 0 {
			return
		}
	}
}

func writeS32(b *bytes.Buffer, v int32) {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		done := (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0)
		if !done {
			c |= 0x80
		}
		b.WriteByte(c)
		if done {
			return
		}
	}
}
