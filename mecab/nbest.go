package mecab

import "container/heap"

// nbestItem is a partial path from EOS back to node. gx is the cost of
// the suffix, fx adds the best prefix cost of node.
type nbestItem struct {
	node *Node
	next *nbestItem
	gx   int64
	fx   int64
	seq  uint64
}

type nbestQueue []*nbestItem

func (q nbestQueue) Len() int { return len(q) }

func (q nbestQueue) Less(i, j int) bool {
	if q[i].fx != q[j].fx {
		return q[i].fx < q[j].fx
	}
	return q[i].seq < q[j].seq
}

func (q nbestQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nbestQueue) Push(x any) { *q = append(*q, x.(*nbestItem)) }

func (q *nbestQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// nbestGenerator enumerates complete paths in non-decreasing cost order
// with A* search from EOS, using each node's Viterbi cost as the exact
// remaining estimate.
type nbestGenerator struct {
	queue nbestQueue
	seq   uint64
}

func newNBestGenerator(l *Lattice) *nbestGenerator {
	g := &nbestGenerator{}
	if l.eos != nil {
		heap.Push(&g.queue, &nbestItem{node: l.eos})
	}
	return g
}

// next returns the nodes between BOS and EOS of the next path.
func (g *nbestGenerator) next() ([]*Node, bool) {
	for g.queue.Len() > 0 {
		top := heap.Pop(&g.queue).(*nbestItem)
		if top.node.stat == BOSNode {
			var out []*Node
			for it := top.next; it != nil && it.node.stat != EOSNode; it = it.next {
				out = append(out, it.node)
			}
			return out, true
		}
		for p := top.node.lpath; p != nil; p = p.lnext {
			gx := int64(p.cost) + top.gx
			heap.Push(&g.queue, &nbestItem{
				node: p.lnode,
				next: top,
				gx:   gx,
				fx:   p.lnode.cost + gx,
				seq:  g.seq,
			})
			g.seq++
		}
	}
	return nil, false
}
