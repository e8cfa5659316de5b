package bridge

import (
	"github.com/wippyai/mecab-bridge/mecab"
	"github.com/wippyai/mecab-bridge/resource"
)

func (b *Bridge) insertLattice(l *mecab.Lattice, owner resource.Handle) (LatticeHandle, error) {
	le := &latticeEntry{lattice: l, epoch: l.Epoch()}
	h, err := b.lattices.Insert(le, owner)
	if err != nil {
		return 0, b.fail(handleError(TypeLattice, 0, err))
	}
	le.handle = LatticeHandle(h)
	return le.handle, nil
}

// NewStandaloneLattice creates a lattice bound to no model. It parses with
// any tagger and formats results with the default lattice format.
func (b *Bridge) NewStandaloneLattice() (LatticeHandle, error) {
	return b.insertLattice(mecab.NewLattice(), 0)
}

// ReleaseLattice releases a lattice and its node handles.
func (b *Bridge) ReleaseLattice(h LatticeHandle) error {
	return b.release(TypeLattice, raw(h))
}

// latticeOp resolves h, runs fn and drops node handles the call made
// stale.
func (b *Bridge) latticeOp(h LatticeHandle, fn func(l *mecab.Lattice) error) error {
	le, err := b.lattice(h)
	if err != nil {
		return err
	}
	err = fn(le.lattice)
	b.syncNodes(le)
	return b.fail(err)
}

func latticeGet[T any](b *Bridge, h LatticeHandle, get func(l *mecab.Lattice) T) (T, error) {
	le, err := b.lattice(h)
	if err != nil {
		var zero T
		return zero, err
	}
	return get(le.lattice), nil
}

func latticeBytes(b *Bridge, h LatticeHandle, get func(l *mecab.Lattice) ([]byte, error)) ([]byte, error) {
	le, err := b.lattice(h)
	if err != nil {
		return nil, err
	}
	out, err := get(le.lattice)
	if err != nil {
		return nil, b.fail(err)
	}
	return out, nil
}

func latticeCopy(b *Bridge, h LatticeHandle, put func(l *mecab.Lattice) (int, error)) (int, error) {
	le, err := b.lattice(h)
	if err != nil {
		return 0, err
	}
	n, err := put(le.lattice)
	if err != nil {
		return 0, b.fail(err)
	}
	return n, nil
}

// LatticeSetSentence copies s into the lattice. Constraints, the previous
// analysis and its node handles are dropped.
func (b *Bridge) LatticeSetSentence(h LatticeHandle, s []byte) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.SetSentence(s)
		return nil
	})
}

// LatticeSentence returns the sentence bytes, owned by the lattice.
func (b *Bridge) LatticeSentence(h LatticeHandle) ([]byte, error) {
	return latticeGet(b, h, (*mecab.Lattice).Sentence)
}

// LatticeSize returns the sentence length in bytes.
func (b *Bridge) LatticeSize(h LatticeHandle) (int, error) {
	return latticeGet(b, h, (*mecab.Lattice).Size)
}

// LatticeClear resets the lattice to Empty. Clearing twice is the same as
// clearing once.
func (b *Bridge) LatticeClear(h LatticeHandle) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.Clear()
		return nil
	})
}

// LatticeIsAvailable reports whether the lattice has a sentence to parse.
func (b *Bridge) LatticeIsAvailable(h LatticeHandle) (bool, error) {
	return latticeGet(b, h, (*mecab.Lattice).IsAvailable)
}

// LatticeState returns the lattice lifecycle state.
func (b *Bridge) LatticeState(h LatticeHandle) (mecab.State, error) {
	return latticeGet(b, h, (*mecab.Lattice).State)
}

// LatticeToString formats the current result. The bytes are owned by the
// lattice and valid until the next call on it.
func (b *Bridge) LatticeToString(h LatticeHandle) ([]byte, error) {
	return latticeBytes(b, h, (*mecab.Lattice).ToBytes)
}

// LatticeToBuffer writes the current result into dst. Nothing is written
// when it does not fit.
func (b *Bridge) LatticeToBuffer(h LatticeHandle, dst []byte) (int, error) {
	return latticeCopy(b, h, func(l *mecab.Lattice) (int, error) { return l.ToBuffer(dst) })
}

// LatticeNBestString formats up to n analyses. The Next cursor does not
// move.
func (b *Bridge) LatticeNBestString(h LatticeHandle, n int) ([]byte, error) {
	return latticeBytes(b, h, func(l *mecab.Lattice) ([]byte, error) { return l.NBestBytes(n) })
}

// LatticeNBestBuffer writes LatticeNBestString into dst.
func (b *Bridge) LatticeNBestBuffer(h LatticeHandle, n int, dst []byte) (int, error) {
	return latticeCopy(b, h, func(l *mecab.Lattice) (int, error) { return l.NBestBuffer(n, dst) })
}

// LatticeNodeString formats one node of the lattice.
func (b *Bridge) LatticeNodeString(h LatticeHandle, n NodeHandle) ([]byte, error) {
	node, err := b.latticeNode(h, n)
	if err != nil {
		return nil, err
	}
	return latticeBytes(b, h, func(l *mecab.Lattice) ([]byte, error) { return l.NodeBytes(node) })
}

// LatticeNodeBuffer writes LatticeNodeString into dst.
func (b *Bridge) LatticeNodeBuffer(h LatticeHandle, n NodeHandle, dst []byte) (int, error) {
	node, err := b.latticeNode(h, n)
	if err != nil {
		return 0, err
	}
	return latticeCopy(b, h, func(l *mecab.Lattice) (int, error) { return l.NodeBuffer(node, dst) })
}

func (b *Bridge) latticeNode(h LatticeHandle, n NodeHandle) (*mecab.Node, error) {
	ne, err := b.node(n)
	if err != nil {
		return nil, err
	}
	if ne.lattice.handle != h {
		return nil, b.fail(handleError(TypeNode, raw(n), resource.ErrTypeMismatch))
	}
	return ne.node, nil
}

// LatticeBOSNode returns the beginning-of-sentence node, or the null
// handle before a parse.
func (b *Bridge) LatticeBOSNode(h LatticeHandle) (NodeHandle, error) {
	le, err := b.lattice(h)
	if err != nil {
		return 0, err
	}
	return b.nodeHandle(le, le.lattice.BOSNode())
}

// LatticeEOSNode returns the end-of-sentence node, or the null handle
// before a parse.
func (b *Bridge) LatticeEOSNode(h LatticeHandle) (NodeHandle, error) {
	le, err := b.lattice(h)
	if err != nil {
		return 0, err
	}
	return b.nodeHandle(le, le.lattice.EOSNode())
}

// LatticeNewNode allocates an empty node in the lattice for manual
// building.
func (b *Bridge) LatticeNewNode(h LatticeHandle) (NodeHandle, error) {
	le, err := b.lattice(h)
	if err != nil {
		return 0, err
	}
	return b.nodeHandle(le, le.lattice.NewNode())
}

// LatticeRequestType returns the request flags the next parse will use.
func (b *Bridge) LatticeRequestType(h LatticeHandle) (mecab.RequestType, error) {
	return latticeGet(b, h, (*mecab.Lattice).RequestType)
}

// LatticeSetRequestType replaces the request flags. The change applies to
// the next parse; the current analysis keeps the flags it was made with.
func (b *Bridge) LatticeSetRequestType(h LatticeHandle, r mecab.RequestType) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.SetRequestType(r)
		return nil
	})
}

// LatticeAddRequestType sets the bits of r for the next parse.
func (b *Bridge) LatticeAddRequestType(h LatticeHandle, r mecab.RequestType) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.AddRequestType(r)
		return nil
	})
}

// LatticeRemoveRequestType clears the bits of r for the next parse.
func (b *Bridge) LatticeRemoveRequestType(h LatticeHandle, r mecab.RequestType) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.RemoveRequestType(r)
		return nil
	})
}

// LatticeNext advances to the next-best analysis. It returns false with a
// nil error once the analyses are exhausted; the graph and its node
// handles are then left as they were.
func (b *Bridge) LatticeNext(h LatticeHandle) (bool, error) {
	var ok bool
	err := b.latticeOp(h, func(l *mecab.Lattice) error {
		var err error
		ok, err = l.Advance()
		return err
	})
	return ok, err
}

// LatticeZ returns the log partition function computed by a
// MARGINAL_PROB parse, or the value set with LatticeSetZ.
func (b *Bridge) LatticeZ(h LatticeHandle) (float64, error) {
	return latticeGet(b, h, (*mecab.Lattice).Z)
}

// LatticeSetZ overrides the partition function.
func (b *Bridge) LatticeSetZ(h LatticeHandle, z float64) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.SetZ(z)
		return nil
	})
}

// LatticeTheta returns the softmax temperature used for marginals.
func (b *Bridge) LatticeTheta(h LatticeHandle) (float64, error) {
	return latticeGet(b, h, (*mecab.Lattice).Theta)
}

// LatticeSetTheta sets the temperature for the next MARGINAL_PROB parse.
func (b *Bridge) LatticeSetTheta(h LatticeHandle, theta float64) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.SetTheta(theta)
		return nil
	})
}

// LatticeHasConstraint reports whether any boundary or feature constraint
// is set.
func (b *Bridge) LatticeHasConstraint(h LatticeHandle) (bool, error) {
	return latticeGet(b, h, (*mecab.Lattice).HasConstraint)
}

// LatticeBoundaryConstraint returns the constraint at byte offset pos.
func (b *Bridge) LatticeBoundaryConstraint(h LatticeHandle, pos int) (mecab.BoundaryType, error) {
	return latticeGet(b, h, func(l *mecab.Lattice) mecab.BoundaryType { return l.BoundaryConstraint(pos) })
}

// LatticeSetBoundaryConstraint constrains the boundary at byte offset pos
// for the next parse.
func (b *Bridge) LatticeSetBoundaryConstraint(h LatticeHandle, pos int, t mecab.BoundaryType) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		return l.SetBoundaryConstraint(pos, t)
	})
}

// LatticeFeatureConstraint returns the feature pattern of the constrained
// span starting at pos.
func (b *Bridge) LatticeFeatureConstraint(h LatticeHandle, pos int) (string, bool, error) {
	le, err := b.lattice(h)
	if err != nil {
		return "", false, err
	}
	f, ok := le.lattice.FeatureConstraint(pos)
	return f, ok, nil
}

// LatticeSetFeatureConstraint forces a morpheme over [begin, end) for the
// next parse.
func (b *Bridge) LatticeSetFeatureConstraint(h LatticeHandle, begin, end int, feature string) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		return l.SetFeatureConstraint(begin, end, feature)
	})
}

// LatticeSetResult overrides the string LatticeToString returns.
func (b *Bridge) LatticeSetResult(h LatticeHandle, s []byte) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.SetResult(s)
		return nil
	})
}

// LatticeWhat returns the message of the last failure on the lattice. The
// string is a copy.
func (b *Bridge) LatticeWhat(h LatticeHandle) (string, error) {
	return latticeGet(b, h, (*mecab.Lattice).What)
}

// LatticeSetWhat replaces the lattice's failure message.
func (b *Bridge) LatticeSetWhat(h LatticeHandle, what string) error {
	return b.latticeOp(h, func(l *mecab.Lattice) error {
		l.SetWhat(what)
		return nil
	})
}
