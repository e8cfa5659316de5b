package dict

import "sort"

// Trie is a byte-keyed prefix tree over dictionary surfaces.
// Values are indexes into the owning dictionary's token groups.
type Trie struct {
	nodes []trieNode
	size  int
}

type trieNode struct {
	edges []trieEdge
	value int32
}

type trieEdge struct {
	label byte
	next  int32
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{nodes: []trieNode{{value: -1}}}
}

func (t *Trie) child(n int32, b byte) int32 {
	edges := t.nodes[n].edges
	i := sort.Search(len(edges), func(i int) bool { return edges[i].label >= b })
	if i < len(edges) && edges[i].label == b {
		return edges[i].next
	}
	return -1
}

// Insert stores value under key, replacing any previous value.
func (t *Trie) Insert(key []byte, value int32) {
	n := int32(0)
	for _, b := range key {
		next := t.child(n, b)
		if next < 0 {
			next = int32(len(t.nodes))
			t.nodes = append(t.nodes, trieNode{value: -1})
			edges := t.nodes[n].edges
			i := sort.Search(len(edges), func(i int) bool { return edges[i].label >= b })
			edges = append(edges, trieEdge{})
			copy(edges[i+1:], edges[i:])
			edges[i] = trieEdge{label: b, next: next}
			t.nodes[n].edges = edges
		}
		n = next
	}
	if t.nodes[n].value < 0 {
		t.size++
	}
	t.nodes[n].value = value
}

// Get returns the value stored under key.
func (t *Trie) Get(key []byte) (int32, bool) {
	n := int32(0)
	for _, b := range key {
		n = t.child(n, b)
		if n < 0 {
			return 0, false
		}
	}
	v := t.nodes[n].value
	return v, v >= 0
}

// CommonPrefixSearch calls fn for every stored key that is a prefix of
// text, shortest first.
func (t *Trie) CommonPrefixSearch(text []byte, fn func(length int, value int32)) {
	n := int32(0)
	for i, b := range text {
		n = t.child(n, b)
		if n < 0 {
			return
		}
		if v := t.nodes[n].value; v >= 0 {
			fn(i+1, v)
		}
	}
}

// Len returns the number of stored keys.
func (t *Trie) Len() int {
	return t.size
}
