package hostmod

import (
	"github.com/tetratelabs/wazero/api"

	mecabbridge "github.com/wippyai/mecab-bridge"
	"github.com/wippyai/mecab-bridge/errors"
)

// call decodes the flat parameters of one host call in order and encodes
// its result. Parameters must all be read before a result is set, since
// results overwrite the front of the stack.
type call struct {
	inst  *instance
	sig   *Signature
	stack []uint64
	pos   int
	ret   uint32
	slot  uint16
	err   error
	// owner is the handle whose scratch region receives string results.
	owner uint32
	// failure is the flat result reported when the call fails.
	failure uint64
}

func (c *call) next() uint64 {
	v := c.stack[c.pos]
	c.pos++
	return v
}

func (c *call) u32() uint32  { return api.DecodeU32(c.next()) }
func (c *call) s32() int32   { return api.DecodeI32(c.next()) }
func (c *call) f64() float64 { return api.DecodeF64(c.next()) }
func (c *call) u16() uint16  { return uint16(api.DecodeU32(c.next())) }

// bytes reads a (ptr, len) string parameter. The returned slice is a copy.
func (c *call) bytes() []byte {
	ptr, n := c.u32(), c.u32()
	if c.err != nil || n == 0 {
		return nil
	}
	data, err := c.inst.mem.Read(ptr, n)
	if err != nil {
		c.err = errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "read string argument")
		return nil
	}
	return append([]byte(nil), data...)
}

func (c *call) str() string { return string(c.bytes()) }

// strings reads a list<string> parameter.
func (c *call) strings() []string {
	ptr, n := c.u32(), c.u32()
	if c.err != nil {
		return nil
	}
	out := make([]string, 0, n)
	for i := range n {
		elem := ptr + 8*i
		sp, err := c.inst.mem.ReadU32(elem)
		if err != nil {
			c.err = errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "read list argument")
			return nil
		}
		sn, err := c.inst.mem.ReadU32(elem + 4)
		if err != nil {
			c.err = errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "read list argument")
			return nil
		}
		data, err := c.inst.mem.Read(sp, sn)
		if err != nil {
			c.err = errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "read list argument")
			return nil
		}
		out = append(out, string(data))
	}
	return out
}

// buffer reads a (ptr, cap) caller buffer parameter.
func (c *call) buffer() (ptr, capacity uint32) {
	return c.u32(), c.u32()
}

// ok reports whether the parameters decoded cleanly. On failure the error
// is recorded and the zero result set.
func (c *call) ok() bool {
	if c.err == nil {
		return true
	}
	c.fail(c.err)
	return false
}

func (c *call) setU32(v uint32) { c.stack[0] = api.EncodeU32(v) }
func (c *call) setS64(v int64)  { c.stack[0] = api.EncodeI64(v) }
func (c *call) setS32(v int32)  { c.stack[0] = api.EncodeI32(v) }
func (c *call) setF64(v float64) {
	c.stack[0] = api.EncodeF64(v)
}

func (c *call) setBool(v bool) {
	if v {
		c.stack[0] = 1
	} else {
		c.stack[0] = 0
	}
}

// setString places data in the scratch region of owner and writes its
// (ptr, len) through the retptr.
func (c *call) setString(data []byte) {
	ptr, err := c.inst.scratchFor(c.owner, c.slot).Put(c.inst.mem, c.inst.alloc, data)
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.writeRet(0, ptr, uint32(len(data))); err != nil {
		c.fail(err)
	}
}

// setOption writes an option<string>: tag byte at 0, ptr at 4, len at 8.
func (c *call) setOption(data []byte, some bool) {
	if !some {
		c.zero()
		return
	}
	ptr, err := c.inst.scratchFor(c.owner, c.slot).Put(c.inst.mem, c.inst.alloc, data)
	if err != nil {
		c.fail(err)
		return
	}
	if err := c.inst.mem.WriteU8(c.ret, 1); err != nil {
		c.fail(errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "write result"))
		return
	}
	if err := c.writeRet(4, ptr, uint32(len(data))); err != nil {
		c.fail(err)
	}
}

func (c *call) writeRet(off, ptr, n uint32) error {
	if err := c.inst.mem.WriteU32(c.ret+off, ptr); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "write result")
	}
	if err := c.inst.mem.WriteU32(c.ret+off+4, n); err != nil {
		return errors.Wrap(errors.PhaseMarshal, errors.KindOutOfRange, err, "write result")
	}
	return nil
}

// setBuffer writes data into a caller buffer and returns the byte count,
// or -1 when it does not fit or err is set.
func (c *call) setBuffer(ptr, capacity uint32, data []byte, err error) {
	if err != nil {
		c.zero()
		return
	}
	n, err := mecabbridge.WriteBounded(c.inst.mem, ptr, capacity, data)
	if err != nil {
		c.fail(err)
		return
	}
	c.setS32(int32(n))
}

// fail records err and sets the zero result.
func (c *call) fail(err error) {
	c.inst.bridge.Report(err)
	c.zero()
}

func (c *call) zero() {
	if c.sig.RetPtr {
		zeros := make([]byte, sizeOf(c.sig.Result))
		_ = c.inst.mem.Write(c.ret, zeros)
		return
	}
	if len(c.sig.CoreResults) > 0 {
		c.stack[0] = c.failure
	}
}
