package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/mecab"
)

// NewModel loads a model from an argv-style option vector. On failure the
// null handle is returned and the error is recorded.
func (b *Bridge) NewModel(argv []string) (ModelHandle, error) {
	m, err := mecab.NewModel(argv)
	if err != nil {
		return 0, b.fail(err)
	}
	return b.insertModel(m)
}

// NewModelFromString loads a model from a single option string.
func (b *Bridge) NewModelFromString(arg string) (ModelHandle, error) {
	m, err := mecab.NewModelFromString(arg)
	if err != nil {
		return 0, b.fail(err)
	}
	return b.insertModel(m)
}

func (b *Bridge) insertModel(m *mecab.Model) (ModelHandle, error) {
	e := &modelEntry{model: m}
	h, err := b.models.Insert(e, 0)
	if err != nil {
		return 0, b.fail(handleError(TypeModel, 0, err))
	}
	e.handle = ModelHandle(h)
	b.logger.Debug("model created",
		zap.Uint32("handle", uint32(h)),
		zap.String("dicdir", m.Options().DicDir))
	return e.handle, nil
}

// ReleaseModel releases a model with every tagger, lattice, node and
// dictionary info handle derived from it.
func (b *Bridge) ReleaseModel(h ModelHandle) error {
	return b.release(TypeModel, raw(h))
}

// ModelDictionaryInfo returns the head of the model's dictionary list. The
// handle is a view released with the model, or when the model is swapped.
func (b *Bridge) ModelDictionaryInfo(h ModelHandle) (DictionaryInfoHandle, error) {
	e, err := b.model(h)
	if err != nil {
		return 0, err
	}
	return b.infoHandle(e, e.model.DictionaryInfo())
}

func (b *Bridge) infoHandle(e *modelEntry, di *mecab.DictionaryInfo) (DictionaryInfoHandle, error) {
	if di == nil {
		return 0, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if h, ok := e.infos[di]; ok {
		return h, nil
	}
	h, err := b.infos.InsertView(&infoEntry{info: di, model: e}, raw(e.handle))
	if err != nil {
		return 0, b.fail(handleError(TypeDictionaryInfo, 0, err))
	}
	if e.infos == nil {
		e.infos = make(map[*mecab.DictionaryInfo]DictionaryInfoHandle)
	}
	e.infos[di] = DictionaryInfoHandle(h)
	return DictionaryInfoHandle(h), nil
}

func (b *Bridge) dropInfos(e *modelEntry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b.infos.RemoveOwned(raw(e.handle))
	e.infos = nil
}

// ModelVersion returns the engine version.
func (b *Bridge) ModelVersion() string {
	return mecab.Version()
}

// ModelTransitionCost returns the connection cost between two context ids.
func (b *Bridge) ModelTransitionCost(h ModelHandle, rattr, lattr uint16) (int, error) {
	e, err := b.model(h)
	if err != nil {
		return 0, err
	}
	c, err := e.model.TransitionCost(rattr, lattr)
	if err != nil {
		return 0, b.fail(err)
	}
	return c, nil
}

// ModelSwap replaces h's dictionary state with other's. other is consumed
// whether or not the swap succeeds: it stays a live handle but is no
// longer usable, and its dictionary info handles are released. On success
// h's dictionary info handles are released as well. Taggers and lattices
// of h keep working against the new state.
func (b *Bridge) ModelSwap(h, other ModelHandle) error {
	e, err := b.model(h)
	if err != nil {
		return err
	}
	o, err := b.model(other)
	if err != nil {
		return err
	}
	if e == o {
		return b.fail(errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Entity("model", uint32(h)).
			Detail("cannot swap a model with itself").
			Build())
	}
	err = e.model.Swap(o.model)
	b.dropInfos(o)
	if err != nil {
		return b.fail(err)
	}
	b.dropInfos(e)
	b.logger.Debug("model swapped",
		zap.Uint32("handle", uint32(h)),
		zap.Uint32("from", uint32(other)))
	return nil
}

// ModelLookup runs a raw dictionary lookup over [begin, end) of the
// lattice sentence and returns the first candidate; the rest follow
// through NodeBNext. The null handle means no candidate.
func (b *Bridge) ModelLookup(h ModelHandle, begin, end int, l LatticeHandle) (NodeHandle, error) {
	e, err := b.model(h)
	if err != nil {
		return 0, err
	}
	le, err := b.lattice(l)
	if err != nil {
		return 0, err
	}
	n, err := e.model.Lookup(le.lattice, begin, end)
	if err != nil {
		return 0, b.fail(err)
	}
	return b.nodeHandle(le, n)
}

// NewTagger creates a tagger bound to the model.
func (b *Bridge) NewTagger(h ModelHandle) (TaggerHandle, error) {
	e, err := b.model(h)
	if err != nil {
		return 0, err
	}
	t, err := e.model.NewTagger()
	if err != nil {
		return 0, b.fail(err)
	}
	te := &taggerEntry{tagger: t}
	th, err := b.taggers.Insert(te, raw(h))
	if err != nil {
		return 0, b.fail(handleError(TypeTagger, 0, err))
	}
	te.handle = TaggerHandle(th)
	return te.handle, nil
}

// NewLattice creates a lattice carrying the model's request type, theta
// and output format.
func (b *Bridge) NewLattice(h ModelHandle) (LatticeHandle, error) {
	e, err := b.model(h)
	if err != nil {
		return 0, err
	}
	l, err := e.model.NewLattice()
	if err != nil {
		return 0, b.fail(err)
	}
	return b.insertLattice(l, raw(h))
}
