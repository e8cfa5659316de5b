package mecab

import (
	"math"
	"slices"
	"strconv"

	"github.com/wippyai/mecab-bridge/errors"
)

// analyze builds the lattice graph for the current sentence and links the
// best path.
func (st *modelState) analyze(l *Lattice) error {
	l.prepare()
	size := len(l.sentence)

	l.bos = st.newBoundaryNode(l, BOSNode, 0)
	l.endNodes[0] = l.bos
	l.order = append(l.order, l.bos)

	for pos := 0; pos < size; pos++ {
		if l.endNodes[pos] == nil {
			continue
		}
		rnodes := st.lookup(l, pos, size)
		l.beginNodes[pos] = rnodes
		if err := st.connect(l, pos, rnodes); err != nil {
			return err
		}
	}

	l.eos = st.newBoundaryNode(l, EOSNode, size)
	l.beginNodes[size] = l.eos
	for pos := size; pos >= 0; pos-- {
		if l.endNodes[pos] != nil {
			if err := st.connect(l, pos, l.eos); err != nil {
				return err
			}
			break
		}
	}

	var path []*Node
	for n := l.eos.prev; n != nil && n != l.bos; n = n.prev {
		path = append(path, n)
	}
	slices.Reverse(path)
	l.setPath(path)
	return nil
}

// connect scores every node of rnodes against the nodes ending at pos,
// records the paths and keeps the cheapest predecessor.
func (st *modelState) connect(l *Lattice, pos int, rnodes *Node) error {
	m := st.dic.Matrix
	for r := rnodes; r != nil; r = r.bnext {
		var best *Node
		bestCost := int64(math.MaxInt64)
		for ln := l.endNodes[pos]; ln != nil; ln = ln.enext {
			c, err := m.Cost(ln.rattr, r.lattr)
			if err != nil {
				return err
			}
			pc := c + int(r.wcost)
			if cost := ln.cost + int64(pc); cost < bestCost {
				best = ln
				bestCost = cost
			}
			p := &Path{lnode: ln, rnode: r, cost: pc}
			p.lnext = r.lpath
			r.lpath = p
			p.rnext = ln.rpath
			ln.rpath = p
		}
		if best == nil {
			return errors.ParseFailed("no path to node at byte "+strconv.Itoa(r.begin), nil)
		}
		r.prev = best
		r.next = nil
		r.cost = bestCost
		if r.stat != EOSNode {
			x := pos + r.rlength
			r.enext = l.endNodes[x]
			l.endNodes[x] = r
		}
		l.order = append(l.order, r)
	}
	return nil
}
