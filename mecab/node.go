package mecab

import (
	"github.com/wippyai/mecab-bridge/dict"
)

// Node is one morpheme candidate in a lattice. Nodes are allocated in the
// lattice arena and live until the lattice is cleared or re-parsed.
type Node struct {
	prev  *Node
	next  *Node
	bnext *Node
	enext *Node
	lpath *Path
	rpath *Path

	lattice *Lattice
	feature string

	id       uint32
	begin    int
	length   int
	rlength  int
	rattr    uint16
	lattr    uint16
	posid    uint16
	charType uint8
	stat     NodeStatus
	isbest   bool
	alpha    float64
	beta     float64
	prob     float64
	wcost    int16
	cost     int64
}

// Path is one scored edge between two adjacent nodes.
type Path struct {
	rnode *Node
	lnode *Node
	rnext *Path
	lnext *Path
	cost  int
	prob  float64
}

func (n *Node) Next() *Node { return n.next }
func (n *Node) Prev() *Node { return n.prev }
func (n *Node) BNext() *Node { return n.bnext }
func (n *Node) ENext() *Node { return n.enext }
func (n *Node) LPath() *Path { return n.lpath }
func (n *Node) RPath() *Path { return n.rpath }

// Surface returns the morpheme bytes without leading spaces. The slice
// aliases the lattice sentence.
func (n *Node) Surface() []byte {
	if n.lattice == nil {
		return nil
	}
	s := n.lattice.sentence
	if n.begin < 0 || n.begin+n.length > len(s) {
		return nil
	}
	return s[n.begin : n.begin+n.length]
}

// SpacedSurface returns the surface with the leading spaces counted in
// RLength.
func (n *Node) SpacedSurface() []byte {
	if n.lattice == nil {
		return nil
	}
	s := n.lattice.sentence
	start := n.begin + n.length - n.rlength
	if start < 0 || n.begin+n.length > len(s) {
		return n.Surface()
	}
	return s[start : n.begin+n.length]
}

func (n *Node) Feature() string { return n.feature }

// Features splits the feature CSV.
func (n *Node) Features() []string { return dict.SplitFeature(n.feature) }

func (n *Node) ID() uint32 { return n.id }
func (n *Node) Begin() int { return n.begin }
func (n *Node) End() int { return n.begin + n.length }
func (n *Node) Length() int { return n.length }
func (n *Node) RLength() int { return n.rlength }
func (n *Node) RAttr() uint16 { return n.rattr }
func (n *Node) LAttr() uint16 { return n.lattr }
func (n *Node) PosID() uint16 { return n.posid }
func (n *Node) CharType() uint8 { return n.charType }
func (n *Node) Status() NodeStatus { return n.stat }
func (n *Node) IsBest() bool { return n.isbest }
func (n *Node) Alpha() float64 { return n.alpha }
func (n *Node) Beta() float64 { return n.beta }
func (n *Node) Prob() float64 { return n.prob }
func (n *Node) WCost() int16 { return n.wcost }
func (n *Node) Cost() int64 { return n.cost }
func (n *Node) Lattice() *Lattice { return n.lattice }
func (n *Node) IsBOS() bool { return n.stat == BOSNode }
func (n *Node) IsEOS() bool { return n.stat == EOSNode }
func (n *Node) IsUnknown() bool { return n.stat == UnknownNode }
func (n *Node) SetStatus(s NodeStatus) { n.stat = s }

// SetSpan places a manually built node at [begin, begin+length) of the
// sentence; leading counts the spaces before it.
func (n *Node) SetSpan(begin, length, leading int) error {
	size := 0
	if n.lattice != nil {
		size = len(n.lattice.sentence)
	}
	if begin < 0 || length < 0 || leading < 0 || leading > begin || begin+length > size {
		return errOutOfSentence(begin, length, size)
	}
	n.begin = begin
	n.length = length
	n.rlength = length + leading
	return nil
}

// SetFeature replaces the feature CSV.
func (n *Node) SetFeature(feature string) { n.feature = feature }

// SetAttributes sets context ids, part-of-speech id and word cost.
func (n *Node) SetAttributes(lattr, rattr, posid uint16, wcost int16) {
	n.lattr = lattr
	n.rattr = rattr
	n.posid = posid
	n.wcost = wcost
}

func (p *Path) RNode() *Node { return p.rnode }
func (p *Path) LNode() *Node { return p.lnode }
func (p *Path) RNext() *Path { return p.rnext }
func (p *Path) LNext() *Path { return p.lnext }
func (p *Path) Cost() int { return p.cost }
func (p *Path) Prob() float64 { return p.prob }
