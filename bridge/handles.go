package bridge

import (
	"sync"

	"github.com/wippyai/mecab-bridge/mecab"
	"github.com/wippyai/mecab-bridge/resource"
)

// Kind tags of the entries a Bridge keeps in its table.
const (
	TypeModel uint32 = iota + 1
	TypeTagger
	TypeLattice
	TypeNode
	TypeDictionaryInfo
)

// TypeName returns the entity name of a kind tag.
func TypeName(typeID uint32) string {
	switch typeID {
	case TypeModel:
		return "model"
	case TypeTagger:
		return "tagger"
	case TypeLattice:
		return "lattice"
	case TypeNode:
		return "node"
	case TypeDictionaryInfo:
		return "dictionary_info"
	default:
		return "handle"
	}
}

// Handles are distinct types per entity so that one kind never type-checks
// as another. The zero value of each is the null handle.
type (
	ModelHandle          uint32
	TaggerHandle         uint32
	LatticeHandle        uint32
	NodeHandle           uint32
	DictionaryInfoHandle uint32
)

type modelEntry struct {
	model  *mecab.Model
	handle ModelHandle

	mu    sync.Mutex
	infos map[*mecab.DictionaryInfo]DictionaryInfoHandle
}

type taggerEntry struct {
	tagger *mecab.Tagger
	handle TaggerHandle
}

// latticeEntry memoizes the node handles issued for one lattice epoch.
type latticeEntry struct {
	lattice *mecab.Lattice
	handle  LatticeHandle

	epoch uint64
	nodes map[*mecab.Node]NodeHandle
}

type nodeEntry struct {
	node    *mecab.Node
	lattice *latticeEntry
	epoch   uint64
}

type infoEntry struct {
	info  *mecab.DictionaryInfo
	model *modelEntry
}

func raw[H ~uint32](h H) resource.Handle { return resource.Handle(h) }
