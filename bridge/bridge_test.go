package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/dict"
	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/internal/testdict"
	"github.com/wippyai/mecab-bridge/mecab"
	"github.com/wippyai/mecab-bridge/resource"
)

type fixture struct {
	b       *bridge.Bridge
	dir     string
	model   bridge.ModelHandle
	tagger  bridge.TaggerHandle
	lattice bridge.LatticeHandle
}

func newFixture(t *testing.T, opts ...bridge.Option) *fixture {
	t.Helper()
	t.Setenv("MECABRC", "")
	f := &fixture{b: bridge.New(opts...), dir: testdict.Write(t)}
	t.Cleanup(func() { f.b.Close() })

	var err error
	f.model, err = f.b.NewModel([]string{"mecab", "-d", f.dir})
	require.NoError(t, err)
	f.tagger, err = f.b.NewTagger(f.model)
	require.NoError(t, err)
	f.lattice, err = f.b.NewLattice(f.model)
	require.NoError(t, err)
	return f
}

func (f *fixture) parse(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, f.b.LatticeSetSentence(f.lattice, []byte(text)))
	require.NoError(t, f.b.TaggerParse(f.tagger, f.lattice))
}

// chain walks the result chain, returning node handles and surfaces
// without BOS and EOS.
func (f *fixture) chain(t *testing.T) ([]bridge.NodeHandle, []string) {
	t.Helper()
	var (
		handles  []bridge.NodeHandle
		surfaces []string
	)
	bos, err := f.b.LatticeBOSNode(f.lattice)
	require.NoError(t, err)
	eos, err := f.b.LatticeEOSNode(f.lattice)
	require.NoError(t, err)
	n, err := f.b.NodeNext(bos)
	require.NoError(t, err)
	for n != eos && n != 0 {
		s, err := f.b.NodeSurface(n)
		require.NoError(t, err)
		handles = append(handles, n)
		surfaces = append(surfaces, string(s))
		n, err = f.b.NodeNext(n)
		require.NoError(t, err)
	}
	return handles, surfaces
}

func TestVersion(t *testing.T) {
	b := bridge.New()
	assert.NotEmpty(t, b.ModelVersion())
	assert.Equal(t, b.ModelVersion(), b.TaggerVersion())
	assert.Equal(t, mecab.Version(), b.ModelVersion())
}

func TestNewModelFailure(t *testing.T) {
	t.Setenv("MECABRC", "")
	b := bridge.New()

	h, err := b.NewModel([]string{"mecab"})
	require.Error(t, err)
	assert.Zero(t, h)
	assert.Contains(t, b.LastError(), "no dictionary directory")

	h, err = b.NewModelFromString("-d /definitely/missing")
	require.Error(t, err)
	assert.Zero(t, h)
	assert.True(t, errors.IsKind(b.Err(), errors.KindNotFound), b.LastError())

	b.ClearError()
	assert.Empty(t, b.LastError())
	assert.NoError(t, b.Err())
	assert.Zero(t, b.Len())
}

func TestBaseScenario(t *testing.T) {
	f := newFixture(t)

	f.parse(t, "ab")
	_, surfaces := f.chain(t)
	assert.Equal(t, []string{"ab"}, surfaces)

	out, err := f.b.LatticeToString(f.lattice)
	require.NoError(t, err)
	assert.Equal(t, "ab\t名詞,固有名詞,一般,*,*,*,ab,エービー,エービー\nEOS\n", string(out))

	require.NoError(t, f.b.LatticeSetSentence(f.lattice, []byte("ab")))
	require.NoError(t, f.b.LatticeSetBoundaryConstraint(f.lattice, 1, mecab.TokenBoundary))
	has, err := f.b.LatticeHasConstraint(f.lattice)
	require.NoError(t, err)
	assert.True(t, has)
	bt, err := f.b.LatticeBoundaryConstraint(f.lattice, 1)
	require.NoError(t, err)
	assert.Equal(t, mecab.TokenBoundary, bt)

	require.NoError(t, f.b.TaggerParse(f.tagger, f.lattice))
	_, surfaces = f.chain(t)
	assert.Equal(t, []string{"a", "b"}, surfaces)
}

func TestSharedModel(t *testing.T) {
	f := newFixture(t)
	other, err := f.b.NewTagger(f.model)
	require.NoError(t, err)

	f.parse(t, "東京都")
	require.NoError(t, f.b.TaggerParse(other, f.lattice))
	_, surfaces := f.chain(t)
	assert.Equal(t, []string{"東京", "都"}, surfaces)

	require.NoError(t, f.b.ReleaseTagger(f.tagger))
	require.NoError(t, f.b.ReleaseLattice(f.lattice))

	err = f.b.TaggerParse(f.tagger, f.lattice)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle))
	_, err = f.b.LatticeSize(f.lattice)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle))
	assert.Contains(t, f.b.LastError(), "lattice#")

	_, err = f.b.TaggerWhat(other)
	assert.NoError(t, err, "sibling handles stay valid")
	assert.Error(t, f.b.ReleaseTagger(f.tagger), "double release is reported")
}

func TestReleaseModelCascades(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	bos, err := f.b.LatticeBOSNode(f.lattice)
	require.NoError(t, err)
	info, err := f.b.ModelDictionaryInfo(f.model)
	require.NoError(t, err)

	standalone, err := f.b.NewStandaloneLattice()
	require.NoError(t, err)

	assert.Equal(t, 1, f.b.Count(bridge.TypeModel))
	assert.Equal(t, 2, f.b.Count(bridge.TypeLattice))
	require.NoError(t, f.b.ReleaseModel(f.model))

	_, err = f.b.TaggerWhat(f.tagger)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle))
	_, err = f.b.LatticeSize(f.lattice)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle))
	_, err = f.b.NodeSurface(bos)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle))
	_, err = f.b.DictionaryInfoFilename(info)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle))

	size, err := f.b.LatticeSize(standalone)
	require.NoError(t, err, "standalone lattices do not belong to a model")
	assert.Zero(t, size)
	assert.Equal(t, 1, f.b.Len())
}

func TestHandleKinds(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	bos, err := f.b.LatticeBOSNode(f.lattice)
	require.NoError(t, err)

	_, err = f.b.LatticeSize(bridge.LatticeHandle(f.tagger))
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
	_, err = f.b.NodeSurface(bridge.NodeHandle(f.lattice))
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch))
	_, err = f.b.LatticeSize(0)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle), "null handle")

	kind, err := f.b.TypeOf(uint32(bos))
	require.NoError(t, err)
	assert.Equal(t, bridge.TypeNode, kind)

	err = f.b.Release(uint32(bos))
	assert.True(t, errors.IsKind(err, errors.KindBorrowedView))
	info, err := f.b.ModelDictionaryInfo(f.model)
	require.NoError(t, err)
	err = f.b.Release(uint32(info))
	assert.True(t, errors.IsKind(err, errors.KindBorrowedView))

	require.NoError(t, f.b.Release(uint32(f.tagger)))
	_, err = f.b.TaggerWhat(f.tagger)
	assert.Error(t, err)
}

func TestSlotReuseDoesNotAlias(t *testing.T) {
	f := newFixture(t)
	released := []bridge.LatticeHandle{}
	current := f.lattice
	for i := 0; i < 300; i++ {
		require.NoError(t, f.b.ReleaseLattice(current))
		released = append(released, current)

		fresh, err := f.b.NewLattice(f.model)
		require.NoError(t, err)
		require.NotContains(t, released, fresh, "cycle %d", i)
		current = fresh
	}

	for _, old := range released {
		_, err := f.b.LatticeSize(old)
		require.True(t, errors.IsKind(err, errors.KindStaleHandle), "handle %#x: %v", old, err)
	}
	_, err := f.b.LatticeSize(current)
	assert.NoError(t, err)
}

func TestReparseDoesNotReviveNodeHandles(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	old, err := f.b.LatticeBOSNode(f.lattice)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		f.parse(t, "ab")
		bos, err := f.b.LatticeBOSNode(f.lattice)
		require.NoError(t, err)
		require.NotEqual(t, old, bos, "reparse %d", i)

		_, err = f.b.NodeSurface(old)
		require.True(t, errors.IsKind(err, errors.KindStaleHandle), "reparse %d: %v", i, err)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.Close())

	_, err := f.b.NewTagger(f.model)
	assert.True(t, errors.IsKind(err, errors.KindClosed))
	_, err = f.b.NewStandaloneLattice()
	assert.True(t, errors.IsKind(err, errors.KindClosed))
	assert.Zero(t, f.b.Len())
}

type recorder struct {
	events []resource.Event
	parses []bridge.ParseEvent
}

func (r *recorder) OnResourceEvent(e resource.Event) { r.events = append(r.events, e) }
func (r *recorder) OnParse(e bridge.ParseEvent)      { r.parses = append(r.parses, e) }

func (r *recorder) count(typ resource.EventType, typeID uint32) int {
	n := 0
	for _, e := range r.events {
		if e.Type == typ && e.TypeID == typeID {
			n++
		}
	}
	return n
}

func TestObservers(t *testing.T) {
	rec := &recorder{}
	f := newFixture(t, bridge.WithObserver(rec), bridge.WithParseObserver(rec))

	f.parse(t, "ab")
	f.chain(t)
	require.NoError(t, f.b.LatticeSetSentence(f.lattice, nil))
	err := f.b.TaggerParse(f.tagger, f.lattice)
	require.Error(t, err)

	assert.Equal(t, 1, rec.count(resource.EventCreated, bridge.TypeModel))
	assert.Equal(t, 1, rec.count(resource.EventCreated, bridge.TypeTagger))
	assert.Equal(t, 3, rec.count(resource.EventCreated, bridge.TypeNode), "bos, ab, eos")
	assert.Equal(t, 3, rec.count(resource.EventDropped, bridge.TypeNode))

	require.Len(t, rec.parses, 2)
	assert.NoError(t, rec.parses[0].Err)
	assert.Equal(t, 2, rec.parses[0].Bytes)
	assert.Equal(t, f.lattice, rec.parses[0].Lattice)
	assert.Error(t, rec.parses[1].Err)
}

type releasingObserver struct {
	b   *bridge.Bridge
	err error
}

func (o *releasingObserver) OnParse(e bridge.ParseEvent) {
	o.err = o.b.ReleaseLattice(e.Lattice)
}

func TestParseBorrowsHandles(t *testing.T) {
	obs := &releasingObserver{}
	f := newFixture(t, bridge.WithParseObserver(obs))
	obs.b = f.b

	f.parse(t, "ab")
	assert.True(t, errors.IsKind(obs.err, errors.KindOutstandingBorrow))

	_, err := f.b.LatticeSize(f.lattice)
	assert.NoError(t, err, "lattice survives the attempted release")
	assert.NoError(t, f.b.ReleaseLattice(f.lattice), "borrow returned after parse")
}

func TestParseFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.LatticeSetSentence(f.lattice, nil))

	avail, err := f.b.LatticeIsAvailable(f.lattice)
	require.NoError(t, err)
	assert.False(t, avail)

	err = f.b.TaggerParse(f.tagger, f.lattice)
	require.Error(t, err)
	what, err := f.b.TaggerWhat(f.tagger)
	require.NoError(t, err)
	assert.Equal(t, "Lattice is not available", what)
	what, err = f.b.LatticeWhat(f.lattice)
	require.NoError(t, err)
	assert.Equal(t, "Lattice is not available", what)
	assert.Contains(t, f.b.LastError(), "Lattice is not available")

	require.NoError(t, f.b.LatticeSetWhat(f.lattice, "reset"))
	what, _ = f.b.LatticeWhat(f.lattice)
	assert.Equal(t, "reset", what)
}

func TestTransitionCost(t *testing.T) {
	f := newFixture(t)
	c, err := f.b.ModelTransitionCost(f.model, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, -20, c)

	_, err = f.b.ModelTransitionCost(f.model, 9, 0)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
}

func TestDictionaryInfo(t *testing.T) {
	f := newFixture(t)

	var types []dict.InfoType
	h, err := f.b.ModelDictionaryInfo(f.model)
	require.NoError(t, err)
	first := h
	for h != 0 {
		typ, err := f.b.DictionaryInfoType(h)
		require.NoError(t, err)
		types = append(types, typ)

		cs, _ := f.b.DictionaryInfoCharset(h)
		assert.Equal(t, "utf-8", cs)
		ls, _ := f.b.DictionaryInfoLSize(h)
		rs, _ := f.b.DictionaryInfoRSize(h)
		assert.Equal(t, uint32(3), ls)
		assert.Equal(t, uint32(3), rs)
		v, _ := f.b.DictionaryInfoVersion(h)
		assert.Equal(t, uint16(102), v)

		h, err = f.b.DictionaryInfoNext(h)
		require.NoError(t, err)
	}
	assert.Equal(t, []dict.InfoType{dict.SystemDictionary, dict.UnknownDictionary}, types)

	again, err := f.b.ModelDictionaryInfo(f.model)
	require.NoError(t, err)
	assert.Equal(t, first, again, "info handles are memoized")

	size, err := f.b.DictionaryInfoSize(first)
	require.NoError(t, err)
	assert.Equal(t, uint32(9), size)
	name, err := f.b.DictionaryInfoFilename(first)
	require.NoError(t, err)
	assert.NotEmpty(t, name)
}

func TestModelSwap(t *testing.T) {
	f := newFixture(t)
	info, err := f.b.ModelDictionaryInfo(f.model)
	require.NoError(t, err)

	user := testdict.WriteUserDic(t, "東京都,1,1,-500,名詞,固有名詞,地域,*,*,*,東京都,トウキョウト,トーキョート")
	other, err := f.b.NewModel([]string{"mecab", "-d", f.dir, "-u", user})
	require.NoError(t, err)

	require.NoError(t, f.b.ModelSwap(f.model, other))

	_, err = f.b.DictionaryInfoType(info)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle), "info views are released by swap")

	f.parse(t, "東京都")
	_, surfaces := f.chain(t)
	assert.Equal(t, []string{"東京都"}, surfaces, "existing tagger and lattice use the new dictionary")

	n := 0
	for h, _ := f.b.ModelDictionaryInfo(f.model); h != 0; h, _ = f.b.DictionaryInfoNext(h) {
		n++
	}
	assert.Equal(t, 3, n)

	_, err = f.b.NewTagger(other)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable), "swapped-in model is consumed")
	assert.Error(t, f.b.ModelSwap(f.model, other))
	assert.Error(t, f.b.ModelSwap(f.model, f.model))
	assert.NoError(t, f.b.ReleaseModel(other))
}

func TestModelSwapIncompatible(t *testing.T) {
	f := newFixture(t)
	euc, err := f.b.NewModel([]string{"mecab", "-d", testdict.WriteCharset(t, "euc-jp")})
	require.NoError(t, err)
	info, err := f.b.ModelDictionaryInfo(euc)
	require.NoError(t, err)

	err = f.b.ModelSwap(f.model, euc)
	assert.True(t, errors.IsKind(err, errors.KindIncompatible))
	assert.Contains(t, f.b.LastError(), "incompatible")

	_, err = f.b.DictionaryInfoFilename(info)
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle), "failed swap still consumes the other model")
	_, err = f.b.NewTagger(euc)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	assert.NoError(t, f.b.ReleaseModel(euc))

	f.parse(t, "ab")
	_, surfaces := f.chain(t)
	assert.Equal(t, []string{"ab"}, surfaces, "failed swap leaves the model untouched")
}
