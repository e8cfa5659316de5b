package hostmod

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/dict"
	"github.com/wippyai/mecab-bridge/mecab"
)

type function struct {
	sig     Signature
	failure uint64
	call    func(c *call)
}

func fn(name string, params []Param, result wit.Type, body func(c *call)) *function {
	return &function{sig: newSignature(name, params, result), call: body}
}

// query builds a function of one handle returning one value. String
// results land in the scratch region of that handle.
func query[H ~uint32, T any](name string, p Param, result wit.Type, get func(*bridge.Bridge, H) (T, error), enc func(*call, T)) *function {
	return fn(name, []Param{p}, result, func(c *call) {
		h := H(c.u32())
		c.owner = uint32(h)
		v, err := get(c.inst.bridge, h)
		if err != nil {
			c.zero()
			return
		}
		enc(c, v)
	})
}

// action builds a function reporting success as a bool.
func action(name string, params []Param, do func(c *call) error) *function {
	return fn(name, params, wit.Bool{}, func(c *call) {
		err := do(c)
		if !c.ok() {
			return
		}
		c.setBool(err == nil)
	})
}

// buffer builds a caller-buffer function: the result is copied into
// (buf, cap) and the byte count returned, or -1.
func buffer(name string, params []Param, get func(c *call) ([]byte, error)) *function {
	params = append(params, u32("buf"), u32("cap"))
	f := fn(name, params, wit.S32{}, func(c *call) {
		data, err := get(c)
		ptr, capacity := c.buffer()
		if !c.ok() {
			return
		}
		c.setBuffer(ptr, capacity, data, err)
	})
	f.failure = api.EncodeI32(-1)
	return f
}

func encHandle[T ~uint32](c *call, v T) { c.setU32(uint32(v)) }
func encUint[T ~uint8 | ~uint16 | ~uint32 | ~int](c *call, v T) {
	c.setU32(uint32(v))
}
func encInt[T ~int | ~int16](c *call, v T) { c.setS32(int32(v)) }
func encBool(c *call, v bool)              { c.setBool(v) }
func encF64(c *call, v float64)            { c.setF64(v) }
func encCost(c *call, v int64)             { c.setS64(v) }
func encBytes(c *call, v []byte)           { c.setOption(v, true) }
func encText(c *call, v string)            { c.setOption([]byte(v), true) }

func functions() []*function {
	var (
		model   = u32("model")
		tagger  = u32("tagger")
		lattice = u32("lattice")
		node    = u32("node")
		info    = u32("info")
	)
	lh := func(c *call) bridge.LatticeHandle { return bridge.LatticeHandle(c.u32()) }
	nh := func(c *call) bridge.NodeHandle { return bridge.NodeHandle(c.u32()) }
	mh := func(c *call) bridge.ModelHandle { return bridge.ModelHandle(c.u32()) }

	return []*function{
		// global
		fn("version", nil, tString, func(c *call) {
			c.setString([]byte(mecab.Version()))
		}),
		fn("last-error", nil, tOptionString, func(c *call) {
			msg := c.inst.bridge.LastError()
			c.setOption([]byte(msg), msg != "")
		}),
		fn("clear-error", nil, nil, func(c *call) {
			c.inst.bridge.ClearError()
		}),
		action("release", []Param{u32("handle")}, func(c *call) error {
			return c.inst.bridge.Release(c.u32())
		}),

		// model
		fn("model-new", []Param{strs("argv")}, wit.U32{}, func(c *call) {
			argv := c.strings()
			if !c.ok() {
				return
			}
			m, _ := c.inst.bridge.NewModel(argv)
			c.setU32(uint32(m))
		}),
		fn("model-new-from-string", []Param{str("arg")}, wit.U32{}, func(c *call) {
			arg := c.str()
			if !c.ok() {
				return
			}
			m, _ := c.inst.bridge.NewModelFromString(arg)
			c.setU32(uint32(m))
		}),
		action("model-release", []Param{model}, func(c *call) error {
			return c.inst.bridge.ReleaseModel(mh(c))
		}),
		query("model-dictionary-info", model, wit.U32{}, (*bridge.Bridge).ModelDictionaryInfo, encHandle),
		fn("model-transition-cost", []Param{model, u16("rattr"), u16("lattr")}, wit.S32{}, func(c *call) {
			m, r, l := mh(c), c.u16(), c.u16()
			cost, err := c.inst.bridge.ModelTransitionCost(m, r, l)
			if err != nil {
				c.zero()
				return
			}
			c.setS32(int32(cost))
		}),
		action("model-swap", []Param{model, u32("other")}, func(c *call) error {
			m, other := mh(c), mh(c)
			return c.inst.bridge.ModelSwap(m, other)
		}),
		fn("model-lookup", []Param{model, u32("begin"), u32("end"), lattice}, wit.U32{}, func(c *call) {
			m, begin, end, l := mh(c), c.u32(), c.u32(), lh(c)
			n, _ := c.inst.bridge.ModelLookup(m, int(begin), int(end), l)
			c.setU32(uint32(n))
		}),
		query("model-new-tagger", model, wit.U32{}, (*bridge.Bridge).NewTagger, encHandle),
		query("model-new-lattice", model, wit.U32{}, (*bridge.Bridge).NewLattice, encHandle),

		// tagger
		action("tagger-release", []Param{tagger}, func(c *call) error {
			return c.inst.bridge.ReleaseTagger(bridge.TaggerHandle(c.u32()))
		}),
		action("tagger-parse", []Param{tagger, lattice}, func(c *call) error {
			t, l := bridge.TaggerHandle(c.u32()), lh(c)
			return c.inst.bridge.TaggerParse(t, l)
		}),
		query("tagger-what", tagger, tOptionString, (*bridge.Bridge).TaggerWhat, encText),

		// lattice
		fn("lattice-new", nil, wit.U32{}, func(c *call) {
			l, _ := c.inst.bridge.NewStandaloneLattice()
			c.setU32(uint32(l))
		}),
		action("lattice-release", []Param{lattice}, func(c *call) error {
			return c.inst.bridge.ReleaseLattice(lh(c))
		}),
		action("lattice-set-sentence", []Param{lattice, str("sentence")}, func(c *call) error {
			l, s := lh(c), c.bytes()
			if c.err != nil {
				return c.err
			}
			return c.inst.bridge.LatticeSetSentence(l, s)
		}),
		query("lattice-sentence", lattice, tOptionString, (*bridge.Bridge).LatticeSentence, encBytes),
		query("lattice-size", lattice, wit.U32{}, (*bridge.Bridge).LatticeSize, encUint[int]),
		action("lattice-clear", []Param{lattice}, func(c *call) error {
			return c.inst.bridge.LatticeClear(lh(c))
		}),
		query("lattice-is-available", lattice, wit.Bool{}, (*bridge.Bridge).LatticeIsAvailable, encBool),
		query("lattice-state", lattice, wit.U32{}, (*bridge.Bridge).LatticeState, func(c *call, s mecab.State) {
			c.setU32(uint32(s))
		}),
		query("lattice-to-string", lattice, tOptionString, (*bridge.Bridge).LatticeToString, encBytes),
		buffer("lattice-to-buffer", []Param{lattice}, func(c *call) ([]byte, error) {
			return c.inst.bridge.LatticeToString(lh(c))
		}),
		fn("lattice-nbest-string", []Param{lattice, u32("n")}, tOptionString, func(c *call) {
			l, n := lh(c), c.u32()
			c.owner = uint32(l)
			out, err := c.inst.bridge.LatticeNBestString(l, int(n))
			c.setOption(out, err == nil)
		}),
		buffer("lattice-nbest-buffer", []Param{lattice, u32("n")}, func(c *call) ([]byte, error) {
			l, n := lh(c), c.u32()
			return c.inst.bridge.LatticeNBestString(l, int(n))
		}),
		fn("lattice-node-string", []Param{lattice, node}, tOptionString, func(c *call) {
			l, n := lh(c), nh(c)
			c.owner = uint32(l)
			out, err := c.inst.bridge.LatticeNodeString(l, n)
			c.setOption(out, err == nil)
		}),
		buffer("lattice-node-buffer", []Param{lattice, node}, func(c *call) ([]byte, error) {
			l, n := lh(c), nh(c)
			return c.inst.bridge.LatticeNodeString(l, n)
		}),
		query("lattice-bos-node", lattice, wit.U32{}, (*bridge.Bridge).LatticeBOSNode, encHandle),
		query("lattice-eos-node", lattice, wit.U32{}, (*bridge.Bridge).LatticeEOSNode, encHandle),
		query("lattice-new-node", lattice, wit.U32{}, (*bridge.Bridge).LatticeNewNode, encHandle),
		query("lattice-request-type", lattice, wit.U32{}, (*bridge.Bridge).LatticeRequestType, encHandle),
		action("lattice-set-request-type", []Param{lattice, u32("type")}, func(c *call) error {
			l, r := lh(c), mecab.RequestType(c.u32())
			return c.inst.bridge.LatticeSetRequestType(l, r)
		}),
		action("lattice-add-request-type", []Param{lattice, u32("type")}, func(c *call) error {
			l, r := lh(c), mecab.RequestType(c.u32())
			return c.inst.bridge.LatticeAddRequestType(l, r)
		}),
		action("lattice-remove-request-type", []Param{lattice, u32("type")}, func(c *call) error {
			l, r := lh(c), mecab.RequestType(c.u32())
			return c.inst.bridge.LatticeRemoveRequestType(l, r)
		}),
		query("lattice-next", lattice, wit.Bool{}, (*bridge.Bridge).LatticeNext, encBool),
		query("lattice-z", lattice, wit.F64{}, (*bridge.Bridge).LatticeZ, encF64),
		action("lattice-set-z", []Param{lattice, f64("z")}, func(c *call) error {
			l, z := lh(c), c.f64()
			return c.inst.bridge.LatticeSetZ(l, z)
		}),
		query("lattice-theta", lattice, wit.F64{}, (*bridge.Bridge).LatticeTheta, encF64),
		action("lattice-set-theta", []Param{lattice, f64("theta")}, func(c *call) error {
			l, theta := lh(c), c.f64()
			return c.inst.bridge.LatticeSetTheta(l, theta)
		}),
		query("lattice-has-constraint", lattice, wit.Bool{}, (*bridge.Bridge).LatticeHasConstraint, encBool),
		fn("lattice-boundary-constraint", []Param{lattice, u32("pos")}, wit.S32{}, func(c *call) {
			l, pos := lh(c), c.u32()
			t, err := c.inst.bridge.LatticeBoundaryConstraint(l, int(pos))
			if err != nil {
				c.zero()
				return
			}
			c.setS32(int32(t))
		}),
		action("lattice-set-boundary-constraint", []Param{lattice, u32("pos"), s32("type")}, func(c *call) error {
			l, pos, t := lh(c), c.u32(), c.s32()
			return c.inst.bridge.LatticeSetBoundaryConstraint(l, int(pos), mecab.BoundaryType(t))
		}),
		fn("lattice-feature-constraint", []Param{lattice, u32("pos")}, tOptionString, func(c *call) {
			l, pos := lh(c), c.u32()
			c.owner = uint32(l)
			feature, ok, err := c.inst.bridge.LatticeFeatureConstraint(l, int(pos))
			c.setOption([]byte(feature), ok && err == nil)
		}),
		action("lattice-set-feature-constraint", []Param{lattice, u32("begin"), u32("end"), str("feature")}, func(c *call) error {
			l, begin, end, feature := lh(c), c.u32(), c.u32(), c.str()
			if c.err != nil {
				return c.err
			}
			return c.inst.bridge.LatticeSetFeatureConstraint(l, int(begin), int(end), feature)
		}),
		action("lattice-set-result", []Param{lattice, str("result")}, func(c *call) error {
			l, result := lh(c), c.bytes()
			if c.err != nil {
				return c.err
			}
			return c.inst.bridge.LatticeSetResult(l, result)
		}),
		query("lattice-what", lattice, tOptionString, (*bridge.Bridge).LatticeWhat, encText),
		action("lattice-set-what", []Param{lattice, str("what")}, func(c *call) error {
			l, what := lh(c), c.str()
			if c.err != nil {
				return c.err
			}
			return c.inst.bridge.LatticeSetWhat(l, what)
		}),

		// node
		query("node-next", node, wit.U32{}, (*bridge.Bridge).NodeNext, encHandle),
		query("node-prev", node, wit.U32{}, (*bridge.Bridge).NodePrev, encHandle),
		query("node-bnext", node, wit.U32{}, (*bridge.Bridge).NodeBNext, encHandle),
		query("node-enext", node, wit.U32{}, (*bridge.Bridge).NodeENext, encHandle),
		query("node-surface", node, tOptionString, (*bridge.Bridge).NodeSurface, encBytes),
		query("node-feature", node, tOptionString, (*bridge.Bridge).NodeFeature, encText),
		query("node-id", node, wit.U32{}, (*bridge.Bridge).NodeID, encUint[uint32]),
		query("node-begin", node, wit.U32{}, (*bridge.Bridge).NodeBegin, encUint[int]),
		query("node-length", node, wit.U32{}, (*bridge.Bridge).NodeLength, encUint[int]),
		query("node-rlength", node, wit.U32{}, (*bridge.Bridge).NodeRLength, encUint[int]),
		query("node-rattr", node, wit.U16{}, (*bridge.Bridge).NodeRAttr, encUint[uint16]),
		query("node-lattr", node, wit.U16{}, (*bridge.Bridge).NodeLAttr, encUint[uint16]),
		query("node-posid", node, wit.U16{}, (*bridge.Bridge).NodePosID, encUint[uint16]),
		query("node-char-type", node, wit.U8{}, (*bridge.Bridge).NodeCharType, encUint[uint8]),
		query("node-status", node, wit.U8{}, (*bridge.Bridge).NodeStatus, encUint[mecab.NodeStatus]),
		query("node-is-best", node, wit.Bool{}, (*bridge.Bridge).NodeIsBest, encBool),
		query("node-alpha", node, wit.F64{}, (*bridge.Bridge).NodeAlpha, encF64),
		query("node-beta", node, wit.F64{}, (*bridge.Bridge).NodeBeta, encF64),
		query("node-prob", node, wit.F64{}, (*bridge.Bridge).NodeProb, encF64),
		query("node-wcost", node, wit.S16{}, (*bridge.Bridge).NodeWCost, encInt[int16]),
		query("node-cost", node, wit.S64{}, (*bridge.Bridge).NodeCost, encCost),
		action("node-set-span", []Param{node, u32("begin"), u32("length"), u32("leading")}, func(c *call) error {
			n, begin, length, leading := nh(c), c.u32(), c.u32(), c.u32()
			return c.inst.bridge.NodeSetSpan(n, int(begin), int(length), int(leading))
		}),
		action("node-set-feature", []Param{node, str("feature")}, func(c *call) error {
			n, feature := nh(c), c.str()
			if c.err != nil {
				return c.err
			}
			return c.inst.bridge.NodeSetFeature(n, feature)
		}),

		// dictionary info
		query("dictionary-info-next", info, wit.U32{}, (*bridge.Bridge).DictionaryInfoNext, encHandle),
		query("dictionary-info-filename", info, tOptionString, (*bridge.Bridge).DictionaryInfoFilename, encText),
		query("dictionary-info-charset", info, tOptionString, (*bridge.Bridge).DictionaryInfoCharset, encText),
		query("dictionary-info-size", info, wit.U32{}, (*bridge.Bridge).DictionaryInfoSize, encUint[uint32]),
		query("dictionary-info-type", info, wit.U32{}, (*bridge.Bridge).DictionaryInfoType, func(c *call, t dict.InfoType) {
			c.setU32(uint32(t))
		}),
		query("dictionary-info-lsize", info, wit.U32{}, (*bridge.Bridge).DictionaryInfoLSize, encUint[uint32]),
		query("dictionary-info-rsize", info, wit.U32{}, (*bridge.Bridge).DictionaryInfoRSize, encUint[uint32]),
		query("dictionary-info-version", info, wit.U16{}, (*bridge.Bridge).DictionaryInfoVersion, encUint[uint16]),
	}
}
