package bridge

import (
	"github.com/wippyai/mecab-bridge/dict"
	"github.com/wippyai/mecab-bridge/mecab"
)

// syncNodes releases the node handles of an outdated epoch.
func (b *Bridge) syncNodes(le *latticeEntry) {
	if le.epoch == le.lattice.Epoch() {
		return
	}
	if len(le.nodes) > 0 {
		b.nodes.RemoveOwned(raw(le.handle))
	}
	le.nodes = nil
	le.epoch = le.lattice.Epoch()
}

// nodeHandle returns the handle of n, issuing one on first use in the
// current epoch. A nil node maps to the null handle.
func (b *Bridge) nodeHandle(le *latticeEntry, n *mecab.Node) (NodeHandle, error) {
	if n == nil {
		return 0, nil
	}
	b.syncNodes(le)
	if h, ok := le.nodes[n]; ok {
		return h, nil
	}
	h, err := b.nodes.InsertView(&nodeEntry{node: n, lattice: le, epoch: le.epoch}, raw(le.handle))
	if err != nil {
		return 0, b.fail(handleError(TypeNode, 0, err))
	}
	if le.nodes == nil {
		le.nodes = make(map[*mecab.Node]NodeHandle)
	}
	le.nodes[n] = NodeHandle(h)
	return NodeHandle(h), nil
}

func nodeGet[T any](b *Bridge, h NodeHandle, get func(n *mecab.Node) T) (T, error) {
	e, err := b.node(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(e.node), nil
}

func (b *Bridge) nodeLink(h NodeHandle, next func(n *mecab.Node) *mecab.Node) (NodeHandle, error) {
	e, err := b.node(h)
	if err != nil {
		return 0, err
	}
	return b.nodeHandle(e.lattice, next(e.node))
}

// NodeNext returns the next node of the result chain, or the null handle
// after EOS.
func (b *Bridge) NodeNext(h NodeHandle) (NodeHandle, error) {
	return b.nodeLink(h, (*mecab.Node).Next)
}

// NodePrev returns the previous node of the result chain, or the null
// handle before BOS.
func (b *Bridge) NodePrev(h NodeHandle) (NodeHandle, error) {
	return b.nodeLink(h, (*mecab.Node).Prev)
}

// NodeBNext returns the next node starting at the same position.
func (b *Bridge) NodeBNext(h NodeHandle) (NodeHandle, error) {
	return b.nodeLink(h, (*mecab.Node).BNext)
}

// NodeENext returns the next node ending at the same position.
func (b *Bridge) NodeENext(h NodeHandle) (NodeHandle, error) {
	return b.nodeLink(h, (*mecab.Node).ENext)
}

// NodeSurface returns the surface bytes. They alias the lattice sentence.
func (b *Bridge) NodeSurface(h NodeHandle) ([]byte, error) {
	return nodeGet(b, h, (*mecab.Node).Surface)
}

// NodeFeature returns the comma-separated feature string. It is a copy.
func (b *Bridge) NodeFeature(h NodeHandle) (string, error) {
	return nodeGet(b, h, (*mecab.Node).Feature)
}

// NodeID returns the node's index in the lattice, unique per parse.
func (b *Bridge) NodeID(h NodeHandle) (uint32, error) {
	return nodeGet(b, h, (*mecab.Node).ID)
}

// NodeBegin returns the byte offset of the surface in the sentence.
func (b *Bridge) NodeBegin(h NodeHandle) (int, error) {
	return nodeGet(b, h, (*mecab.Node).Begin)
}

// NodeLength returns the surface length in bytes.
func (b *Bridge) NodeLength(h NodeHandle) (int, error) {
	return nodeGet(b, h, (*mecab.Node).Length)
}

// NodeRLength returns the length including the leading spaces.
func (b *Bridge) NodeRLength(h NodeHandle) (int, error) {
	return nodeGet(b, h, (*mecab.Node).RLength)
}

// NodeRAttr returns the right context id.
func (b *Bridge) NodeRAttr(h NodeHandle) (uint16, error) {
	return nodeGet(b, h, (*mecab.Node).RAttr)
}

// NodeLAttr returns the left context id.
func (b *Bridge) NodeLAttr(h NodeHandle) (uint16, error) {
	return nodeGet(b, h, (*mecab.Node).LAttr)
}

// NodePosID returns the part-of-speech id from pos-id.def.
func (b *Bridge) NodePosID(h NodeHandle) (uint16, error) {
	return nodeGet(b, h, (*mecab.Node).PosID)
}

// NodeCharType returns the char.def category of the surface's first
// character.
func (b *Bridge) NodeCharType(h NodeHandle) (uint8, error) {
	return nodeGet(b, h, (*mecab.Node).CharType)
}

// NodeStatus returns the node kind (NOR, UNK, BOS, EOS or EON).
func (b *Bridge) NodeStatus(h NodeHandle) (mecab.NodeStatus, error) {
	return nodeGet(b, h, (*mecab.Node).Status)
}

// NodeIsBest reports whether the node lies on the current result path.
func (b *Bridge) NodeIsBest(h NodeHandle) (bool, error) {
	return nodeGet(b, h, (*mecab.Node).IsBest)
}

// NodeAlpha returns the forward log probability. It is 0 unless the
// lattice was parsed with MARGINAL_PROB.
func (b *Bridge) NodeAlpha(h NodeHandle) (float64, error) {
	return nodeGet(b, h, (*mecab.Node).Alpha)
}

// NodeBeta returns the backward log probability (MARGINAL_PROB only).
func (b *Bridge) NodeBeta(h NodeHandle) (float64, error) {
	return nodeGet(b, h, (*mecab.Node).Beta)
}

// NodeProb returns the marginal probability in [0, 1] (MARGINAL_PROB
// only).
func (b *Bridge) NodeProb(h NodeHandle) (float64, error) {
	return nodeGet(b, h, (*mecab.Node).Prob)
}

// NodeWCost returns the word cost from the lexicon.
func (b *Bridge) NodeWCost(h NodeHandle) (int16, error) {
	return nodeGet(b, h, (*mecab.Node).WCost)
}

// NodeCost returns the accumulated best-path cost from BOS.
func (b *Bridge) NodeCost(h NodeHandle) (int64, error) {
	return nodeGet(b, h, (*mecab.Node).Cost)
}

// NodeSetSpan places a manually built node over [begin, begin+length).
func (b *Bridge) NodeSetSpan(h NodeHandle, begin, length, leading int) error {
	e, err := b.node(h)
	if err != nil {
		return err
	}
	return b.fail(e.node.SetSpan(begin, length, leading))
}

// NodeSetFeature replaces the feature of a node made with LatticeNewNode.
func (b *Bridge) NodeSetFeature(h NodeHandle, feature string) error {
	e, err := b.node(h)
	if err != nil {
		return err
	}
	e.node.SetFeature(feature)
	return nil
}

// DictionaryInfoNext returns the next dictionary of the model, or the null
// handle after the last.
func (b *Bridge) DictionaryInfoNext(h DictionaryInfoHandle) (DictionaryInfoHandle, error) {
	e, err := b.info(h)
	if err != nil {
		return 0, err
	}
	return b.infoHandle(e.model, e.info.Next())
}

func infoGet[T any](b *Bridge, h DictionaryInfoHandle, get func(di *mecab.DictionaryInfo) T) (T, error) {
	e, err := b.info(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(e.info), nil
}

// DictionaryInfoFilename returns the path the dictionary was loaded from.
func (b *Bridge) DictionaryInfoFilename(h DictionaryInfoHandle) (string, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) string { return di.Filename })
}

// DictionaryInfoCharset returns the charset name the dictionary was
// compiled in.
func (b *Bridge) DictionaryInfoCharset(h DictionaryInfoHandle) (string, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) string { return di.Charset })
}

// DictionaryInfoSize returns the number of entries.
func (b *Bridge) DictionaryInfoSize(h DictionaryInfoHandle) (uint32, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) uint32 { return di.Size })
}

// DictionaryInfoType returns the dictionary kind.
func (b *Bridge) DictionaryInfoType(h DictionaryInfoHandle) (dict.InfoType, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) dict.InfoType { return di.Type })
}

// DictionaryInfoLSize returns the number of left context ids.
func (b *Bridge) DictionaryInfoLSize(h DictionaryInfoHandle) (uint32, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) uint32 { return di.LSize })
}

// DictionaryInfoRSize returns the number of right context ids.
func (b *Bridge) DictionaryInfoRSize(h DictionaryInfoHandle) (uint32, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) uint32 { return di.RSize })
}

// DictionaryInfoVersion returns the dictionary format version.
func (b *Bridge) DictionaryInfoVersion(h DictionaryInfoHandle) (uint16, error) {
	return infoGet(b, h, func(di *mecab.DictionaryInfo) uint16 { return di.Version })
}
