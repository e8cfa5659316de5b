package mecab

import "strings"

// RequestType selects what a parse produces. Flags combine.
type RequestType uint32

const (
	OneBest       RequestType = 1
	NBest         RequestType = 2
	Partial       RequestType = 4
	MarginalProb  RequestType = 8
	Alternative   RequestType = 16
	AllMorphs     RequestType = 32
	AllocSentence RequestType = 64
)

var requestNames = []struct {
	flag RequestType
	name string
}{
	{OneBest, "one-best"},
	{NBest, "nbest"},
	{Partial, "partial"},
	{MarginalProb, "marginal-prob"},
	{Alternative, "alternative"},
	{AllMorphs, "all-morphs"},
	{AllocSentence, "alloc-sentence"},
}

// Has reports whether every bit of f is set.
func (r RequestType) Has(f RequestType) bool {
	return r&f == f
}

func (r RequestType) String() string {
	var parts []string
	for _, n := range requestNames {
		if r&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// BoundaryType constrains the morpheme boundary at one byte offset.
type BoundaryType int

const (
	AnyBoundary   BoundaryType = 0
	TokenBoundary BoundaryType = 1
	InsideToken   BoundaryType = 2
)

func (b BoundaryType) String() string {
	switch b {
	case AnyBoundary:
		return "any"
	case TokenBoundary:
		return "token"
	case InsideToken:
		return "inside"
	default:
		return "invalid"
	}
}

// NodeStatus marks what produced a node.
type NodeStatus uint8

const (
	NormalNode  NodeStatus = 0
	UnknownNode NodeStatus = 1
	BOSNode     NodeStatus = 2
	EOSNode     NodeStatus = 3
	EONNode     NodeStatus = 4
)

func (s NodeStatus) String() string {
	switch s {
	case NormalNode:
		return "NOR"
	case UnknownNode:
		return "UNK"
	case BOSNode:
		return "BOS"
	case EOSNode:
		return "EOS"
	case EONNode:
		return "EON"
	default:
		return "?"
	}
}

// State is the lattice lifecycle position.
type State int

const (
	Empty State = iota
	Ready
	Parsed
	Enumerating
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Ready:
		return "ready"
	case Parsed:
		return "parsed"
	case Enumerating:
		return "enumerating"
	default:
		return "unknown"
	}
}
