package bridge_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/mecab"
)

func TestNodeHandlesAreMemoized(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "東京都")

	first, surfaces := f.chain(t)
	second, _ := f.chain(t)
	assert.Equal(t, []string{"東京", "都"}, surfaces)
	assert.Equal(t, first, second)

	prev, err := f.b.NodePrev(first[1])
	require.NoError(t, err)
	assert.Equal(t, first[0], prev)

	bos, _ := f.b.LatticeBOSNode(f.lattice)
	before, err := f.b.NodePrev(bos)
	require.NoError(t, err)
	assert.Zero(t, before)
	eos, _ := f.b.LatticeEOSNode(f.lattice)
	after, err := f.b.NodeNext(eos)
	require.NoError(t, err)
	assert.Zero(t, after)
}

func TestNodeAccessors(t *testing.T) {
	f := newFixture(t)
	f.parse(t, " 東京都")
	nodes, _ := f.chain(t)
	n := nodes[0]

	feature, err := f.b.NodeFeature(n)
	require.NoError(t, err)
	assert.Equal(t, "名詞,固有名詞,地域,*,*,*,東京,トウキョウ,トーキョー", feature)

	begin, _ := f.b.NodeBegin(n)
	length, _ := f.b.NodeLength(n)
	rlength, _ := f.b.NodeRLength(n)
	assert.Equal(t, 1, begin)
	assert.Equal(t, 6, length)
	assert.Equal(t, 7, rlength)

	rattr, _ := f.b.NodeRAttr(n)
	lattr, _ := f.b.NodeLAttr(n)
	posid, _ := f.b.NodePosID(n)
	wcost, _ := f.b.NodeWCost(n)
	cost, _ := f.b.NodeCost(n)
	assert.Equal(t, uint16(1), rattr)
	assert.Equal(t, uint16(1), lattr)
	assert.Equal(t, uint16(41), posid)
	assert.Equal(t, int16(200), wcost)
	assert.Equal(t, int64(210), cost)

	stat, _ := f.b.NodeStatus(n)
	best, _ := f.b.NodeIsBest(n)
	id, _ := f.b.NodeID(n)
	ct, _ := f.b.NodeCharType(n)
	assert.Equal(t, mecab.NormalNode, stat)
	assert.True(t, best)
	assert.NotZero(t, id)
	assert.NotZero(t, ct)

	eos, _ := f.b.LatticeEOSNode(f.lattice)
	stat, _ = f.b.NodeStatus(eos)
	assert.Equal(t, mecab.EOSNode, stat)

	alpha, err := f.b.NodeAlpha(n)
	require.NoError(t, err)
	beta, _ := f.b.NodeBeta(n)
	prob, _ := f.b.NodeProb(n)
	assert.Zero(t, alpha, "marginals are not computed without MARGINAL_PROB")
	assert.Zero(t, beta)
	assert.Zero(t, prob)
}

func TestMarginalThroughBridge(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.LatticeAddRequestType(f.lattice, mecab.MarginalProb))
	require.NoError(t, f.b.LatticeSetTheta(f.lattice, 0.01))
	theta, err := f.b.LatticeTheta(f.lattice)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, theta, 1e-12)

	f.parse(t, "ab")
	nodes, _ := f.chain(t)
	prob, err := f.b.NodeProb(nodes[0])
	require.NoError(t, err)
	assert.Greater(t, prob, 0.5)
	assert.Less(t, prob, 1.0)

	z, err := f.b.LatticeZ(f.lattice)
	require.NoError(t, err)
	assert.NotZero(t, z)
	require.NoError(t, f.b.LatticeSetZ(f.lattice, 2.5))
	z, _ = f.b.LatticeZ(f.lattice)
	assert.InDelta(t, 2.5, z, 1e-12)
}

func TestNodeEpochs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.LatticeAddRequestType(f.lattice, mecab.NBest))
	f.parse(t, "東京都")

	nodes, _ := f.chain(t)
	ok, err := f.b.LatticeNext(f.lattice)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.b.NodeSurface(nodes[0])
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle), "Next invalidates nodes")

	nodes, surfaces := f.chain(t)
	assert.Equal(t, []string{"東", "京都"}, surfaces)

	ok, err = f.b.LatticeNext(f.lattice)
	require.NoError(t, err)
	require.True(t, ok)
	nodes, _ = f.chain(t)

	ok, err = f.b.LatticeNext(f.lattice)
	require.NoError(t, err)
	assert.False(t, ok, "exhausted")
	s, err := f.b.NodeSurface(nodes[0])
	require.NoError(t, err, "a failed Next keeps node handles")
	assert.Equal(t, "東", string(s))

	require.NoError(t, f.b.LatticeClear(f.lattice))
	_, err = f.b.NodeSurface(nodes[0])
	assert.True(t, errors.IsKind(err, errors.KindStaleHandle), "Clear invalidates nodes")

	bos, err := f.b.LatticeBOSNode(f.lattice)
	require.NoError(t, err)
	assert.Zero(t, bos, "no BOS before a parse")
}

func TestNBestThroughBridge(t *testing.T) {
	f := newFixture(t)
	req, err := f.b.LatticeRequestType(f.lattice)
	require.NoError(t, err)
	assert.Equal(t, mecab.OneBest, req)

	_, err = f.b.LatticeNext(f.lattice)
	assert.Error(t, err, "Next before parse")

	require.NoError(t, f.b.LatticeSetRequestType(f.lattice, mecab.OneBest|mecab.NBest|mecab.Partial))
	require.NoError(t, f.b.LatticeRemoveRequestType(f.lattice, mecab.Partial))
	req, _ = f.b.LatticeRequestType(f.lattice)
	assert.Equal(t, mecab.OneBest|mecab.NBest, req)

	f.parse(t, "ab")
	calls := 0
	for {
		ok, err := f.b.LatticeNext(f.lattice)
		require.NoError(t, err)
		if !ok {
			break
		}
		calls++
	}
	assert.Equal(t, 1, calls)

	state, err := f.b.LatticeState(f.lattice)
	require.NoError(t, err)
	assert.Equal(t, mecab.Enumerating, state)

	out, err := f.b.LatticeNBestString(f.lattice, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(out), "EOS\n"))
}

func TestNextWithoutNBest(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	ok, err := f.b.LatticeNext(f.lattice)
	assert.False(t, ok)
	require.Error(t, err)
	what, _ := f.b.LatticeWhat(f.lattice)
	assert.Equal(t, "MECAB_NBEST request type is not set", what)
}

func TestRequestTypeAppliesToNextParse(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	require.NoError(t, f.b.LatticeAddRequestType(f.lattice, mecab.NBest))

	ok, err := f.b.LatticeNext(f.lattice)
	assert.False(t, ok)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	_, err = f.b.LatticeNBestString(f.lattice, 2)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	_, surfaces := f.chain(t)
	assert.Equal(t, []string{"ab"}, surfaces)

	f.parse(t, "ab")
	ok, err = f.b.LatticeNext(f.lattice)
	require.NoError(t, err)
	assert.True(t, ok)
	_, surfaces = f.chain(t)
	assert.Equal(t, []string{"a", "b"}, surfaces)
}

func TestCallerBuffers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.LatticeAddRequestType(f.lattice, mecab.NBest))
	f.parse(t, "ab")

	dst := make([]byte, 4)
	copy(dst, "keep")
	_, err := f.b.LatticeToBuffer(f.lattice, dst)
	assert.True(t, errors.IsKind(err, errors.KindBufferOverflow))
	assert.Equal(t, "keep", string(dst))
	what, _ := f.b.LatticeWhat(f.lattice)
	assert.Equal(t, "output buffer overflow", what)

	big := make([]byte, 256)
	n, err := f.b.LatticeToBuffer(f.lattice, big)
	require.NoError(t, err)
	s, _ := f.b.LatticeToString(f.lattice)
	assert.Equal(t, string(s), string(big[:n]))

	n, err = f.b.LatticeNBestBuffer(f.lattice, 2, big)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(big[:n]), "EOS\n"))
	_, err = f.b.LatticeNBestBuffer(f.lattice, 2, dst)
	assert.True(t, errors.IsKind(err, errors.KindBufferOverflow))

	nodes, _ := f.chain(t)
	node, err := f.b.LatticeNodeString(f.lattice, nodes[0])
	require.NoError(t, err)
	assert.Equal(t, "ab\t名詞,固有名詞,一般,*,*,*,ab,エービー,エービー\n", string(node))
	n, err = f.b.LatticeNodeBuffer(f.lattice, nodes[0], big)
	require.NoError(t, err)
	assert.Equal(t, string(node), string(big[:n]))
	_, err = f.b.LatticeNodeBuffer(f.lattice, nodes[0], dst)
	assert.True(t, errors.IsKind(err, errors.KindBufferOverflow))

	other, err := f.b.NewLattice(f.model)
	require.NoError(t, err)
	_, err = f.b.LatticeNodeString(other, nodes[0])
	assert.True(t, errors.IsKind(err, errors.KindTypeMismatch), "node of another lattice")
}

func TestSentenceRoundTrip(t *testing.T) {
	f := newFixture(t)
	for _, s := range []string{"a\x00b", "東京都", "\xff\xfe"} {
		require.NoError(t, f.b.LatticeSetSentence(f.lattice, []byte(s)))
		got, err := f.b.LatticeSentence(f.lattice)
		require.NoError(t, err)
		assert.Equal(t, s, string(got))
		size, _ := f.b.LatticeSize(f.lattice)
		assert.Equal(t, len(s), size)
	}
}

func TestClearTwice(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	require.NoError(t, f.b.LatticeClear(f.lattice))
	require.NoError(t, f.b.LatticeClear(f.lattice))

	state, _ := f.b.LatticeState(f.lattice)
	size, _ := f.b.LatticeSize(f.lattice)
	avail, _ := f.b.LatticeIsAvailable(f.lattice)
	assert.Equal(t, mecab.Empty, state)
	assert.Zero(t, size)
	assert.False(t, avail)
	assert.Empty(t, f.b.LastError(), "clear never fails")
}

func TestFeatureConstraintThroughBridge(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.LatticeSetSentence(f.lattice, []byte("東京都")))
	require.NoError(t, f.b.LatticeSetFeatureConstraint(f.lattice, 0, 6, "地名"))

	feature, ok, err := f.b.LatticeFeatureConstraint(f.lattice, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "地名", feature)
	_, ok, _ = f.b.LatticeFeatureConstraint(f.lattice, 3)
	assert.False(t, ok)

	bt, _ := f.b.LatticeBoundaryConstraint(f.lattice, 3)
	assert.Equal(t, mecab.InsideToken, bt)

	require.NoError(t, f.b.TaggerParse(f.tagger, f.lattice))
	nodes, surfaces := f.chain(t)
	assert.Equal(t, []string{"東京", "都"}, surfaces)
	got, _ := f.b.NodeFeature(nodes[0])
	assert.Equal(t, "地名", got)

	err = f.b.LatticeSetFeatureConstraint(f.lattice, 4, 2, "x")
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
	err = f.b.LatticeSetBoundaryConstraint(f.lattice, 99, mecab.TokenBoundary)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
}

func TestSetResult(t *testing.T) {
	f := newFixture(t)
	f.parse(t, "ab")
	require.NoError(t, f.b.LatticeSetResult(f.lattice, []byte("manual")))
	out, err := f.b.LatticeToString(f.lattice)
	require.NoError(t, err)
	assert.Equal(t, "manual", string(out))
}

func TestModelLookup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.b.LatticeSetSentence(f.lattice, []byte("東京都")))

	var got []string
	h, err := f.b.ModelLookup(f.model, 0, 9, f.lattice)
	require.NoError(t, err)
	for h != 0 {
		s, err := f.b.NodeSurface(h)
		require.NoError(t, err)
		got = append(got, string(s))
		h, err = f.b.NodeBNext(h)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"東", "東京"}, got)

	_, err = f.b.ModelLookup(f.model, 0, 20, f.lattice)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
}

func TestManualNode(t *testing.T) {
	f := newFixture(t)
	l, err := f.b.NewStandaloneLattice()
	require.NoError(t, err)
	require.NoError(t, f.b.LatticeSetSentence(l, []byte("abc")))

	n, err := f.b.LatticeNewNode(l)
	require.NoError(t, err)
	require.NoError(t, f.b.NodeSetSpan(n, 0, 3, 0))
	require.NoError(t, f.b.NodeSetFeature(n, "名詞"))
	assert.Error(t, f.b.NodeSetSpan(n, 2, 5, 0))

	s, err := f.b.NodeSurface(n)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(s))
	out, err := f.b.LatticeNodeString(l, n)
	require.NoError(t, err)
	assert.Equal(t, "abc\t名詞\n", string(out))
}

func TestStandaloneLatticeWithAnyTagger(t *testing.T) {
	f := newFixture(t)
	l, err := f.b.NewStandaloneLattice()
	require.NoError(t, err)
	require.NoError(t, f.b.LatticeSetSentence(l, []byte("ab")))
	require.NoError(t, f.b.TaggerParse(f.tagger, l))

	out, err := f.b.LatticeToString(l)
	require.NoError(t, err)
	assert.Equal(t, "ab\t名詞,固有名詞,一般,*,*,*,ab,エービー,エービー\nEOS\n", string(out))
}
