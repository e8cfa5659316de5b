package mecab_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/mecab"
)

func TestBaseScenario(t *testing.T) {
	m := newModel(t)

	l := newParsed(t, m, "ab", 0)
	assert.Equal(t, []string{"ab"}, surfaces(l))
	assert.Equal(t, 420, pathCost(t, m, l))
	assert.Equal(t, mecab.Parsed, l.State())

	out, err := l.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, "ab\t名詞,固有名詞,一般,*,*,*,ab,エービー,エービー\nEOS\n", string(out))

	l, err = m.NewLattice()
	require.NoError(t, err)
	l.SetSentence([]byte("ab"))
	require.NoError(t, l.SetBoundaryConstraint(1, mecab.TokenBoundary))
	tg, err := m.NewTagger()
	require.NoError(t, err)
	require.NoError(t, tg.Parse(l))
	assert.Equal(t, []string{"a", "b"}, surfaces(l))
	assert.Equal(t, 670, pathCost(t, m, l))
}

func TestBestPathLinks(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "東京都", 0)

	bos := l.BOSNode()
	eos := l.EOSNode()
	require.NotNil(t, bos)
	require.NotNil(t, eos)
	assert.Equal(t, mecab.BOSNode, bos.Status())
	assert.Equal(t, mecab.EOSNode, eos.Status())
	assert.Nil(t, bos.Prev())
	assert.Nil(t, eos.Next())
	assert.Equal(t, uint32(0), bos.ID())

	assert.Equal(t, []string{"東京", "都"}, surfaces(l))
	assert.Equal(t, int64(520), eos.Cost())

	var rev []string
	for n := range l.NodesReverse() {
		rev = append(rev, n.Status().String())
	}
	assert.Equal(t, []string{"EOS", "NOR", "NOR", "BOS"}, rev)

	tokyo := bos.Next()
	assert.True(t, tokyo.IsBest())
	assert.Equal(t, 0, tokyo.Begin())
	assert.Equal(t, 6, tokyo.End())
	assert.Equal(t, uint16(41), tokyo.PosID())
	assert.Equal(t, int16(200), tokyo.WCost())
	assert.Equal(t, int64(210), tokyo.Cost())
	assert.Equal(t, "トウキョウ", tokyo.Features()[7])

	require.NotNil(t, tokyo.LPath())
	assert.Equal(t, bos, tokyo.LPath().LNode())
	assert.Equal(t, tokyo, tokyo.LPath().RNode())
	assert.Equal(t, 210, tokyo.LPath().Cost())

	var begins []string
	for n := l.BeginNodes(0); n != nil; n = n.BNext() {
		begins = append(begins, string(n.Surface()))
	}
	assert.Equal(t, []string{"東", "東京"}, begins)

	var ends []string
	for n := l.EndNodes(6); n != nil; n = n.ENext() {
		ends = append(ends, string(n.Surface()))
	}
	assert.ElementsMatch(t, []string{"京", "東京"}, ends)
}

func TestInsideTokenConstraint(t *testing.T) {
	m := newModel(t)
	l, err := m.NewLattice()
	require.NoError(t, err)
	l.SetSentence([]byte("東京都"))
	require.NoError(t, l.SetBoundaryConstraint(6, mecab.InsideToken))
	assert.True(t, l.HasConstraint())
	assert.Equal(t, mecab.InsideToken, l.BoundaryConstraint(6))
	assert.Equal(t, mecab.AnyBoundary, l.BoundaryConstraint(3))

	parse(t, m, l, "東京都")
	assert.Equal(t, []string{"東京", "都"}, surfaces(l), "SetSentence clears constraints")

	require.NoError(t, l.SetBoundaryConstraint(6, mecab.InsideToken))
	tg, err := m.NewTagger()
	require.NoError(t, err)
	require.NoError(t, tg.Parse(l))
	assert.Equal(t, []string{"東", "京都"}, surfaces(l))
	for n := range l.Nodes() {
		assert.NotEqual(t, 6, n.End(), "no boundary inside a token")
	}

	assert.Error(t, l.SetBoundaryConstraint(10, mecab.TokenBoundary))
	assert.Error(t, l.SetBoundaryConstraint(-1, mecab.TokenBoundary))
	assert.Error(t, l.SetBoundaryConstraint(1, mecab.BoundaryType(7)))
}

func TestFeatureConstraint(t *testing.T) {
	m := newModel(t)
	tg, err := m.NewTagger()
	require.NoError(t, err)

	tests := []struct {
		name    string
		begin   int
		end     int
		feature string
		want    []string
		first   string
		status  mecab.NodeStatus
	}{
		{"dictionary match", 0, 6, "名詞,固有名詞", []string{"東京", "都"}, "名詞,固有名詞,地域,*,*,*,東京,トウキョウ,トーキョー", mecab.NormalNode},
		{"no match forces node", 0, 6, "名詞,一般", []string{"東京", "都"}, "名詞,一般", mecab.UnknownNode},
		{"wildcard keeps dictionary span", 0, 3, "*", []string{"東", "京都"}, "名詞,一般,*,*,*,*,東,ヒガシ,ヒガシ", mecab.NormalNode},
		{"wildcard without entry", 0, 9, "*", []string{"東京都"}, "名詞,一般,*,*,*,*,*", mecab.UnknownNode},
		{"explicit feature over whole", 0, 9, "地名", []string{"東京都"}, "地名", mecab.UnknownNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := m.NewLattice()
			require.NoError(t, err)
			l.SetSentence([]byte("東京都"))
			require.NoError(t, l.SetFeatureConstraint(tt.begin, tt.end, tt.feature))

			f, ok := l.FeatureConstraint(tt.begin)
			assert.True(t, ok)
			assert.Equal(t, tt.feature, f)
			assert.Equal(t, mecab.TokenBoundary, l.BoundaryConstraint(tt.begin))
			assert.Equal(t, mecab.TokenBoundary, l.BoundaryConstraint(tt.end))
			if tt.end-tt.begin > 1 {
				assert.Equal(t, mecab.InsideToken, l.BoundaryConstraint(tt.begin+1))
			}

			require.NoError(t, tg.Parse(l))
			assert.Equal(t, tt.want, surfaces(l))
			first := l.BOSNode().Next()
			assert.Equal(t, tt.first, first.Feature())
			assert.Equal(t, tt.status, first.Status())
		})
	}

	l, err := m.NewLattice()
	require.NoError(t, err)
	l.SetSentence([]byte("東京都"))
	assert.Error(t, l.SetFeatureConstraint(3, 3, "x"))
	assert.Error(t, l.SetFeatureConstraint(0, 3, ""))
	assert.Error(t, l.SetFeatureConstraint(0, 12, "x"))
	assert.NotEmpty(t, l.What())
}

func TestNBest(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "東京都", mecab.NBest)

	costs := []int{pathCost(t, m, l)}
	paths := [][]string{surfaces(l)}
	epoch := l.Epoch()
	for l.Next() {
		assert.Equal(t, mecab.Enumerating, l.State())
		assert.Greater(t, l.Epoch(), epoch)
		epoch = l.Epoch()
		costs = append(costs, pathCost(t, m, l))
		paths = append(paths, surfaces(l))
	}
	assert.Equal(t, []int{520, 570, 970}, costs)
	assert.Equal(t, [][]string{{"東京", "都"}, {"東", "京都"}, {"東", "京", "都"}}, paths)

	last, err := l.ToBytes()
	require.NoError(t, err)
	lastCopy := string(last)

	assert.False(t, l.Next(), "exhausted")
	assert.Equal(t, epoch, l.Epoch(), "failed Next leaves the lattice untouched")
	out, err := l.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, lastCopy, string(out))
	assert.Equal(t, []string{"東", "京", "都"}, surfaces(l))
}

func TestNBestCountOnBase(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "ab", mecab.NBest)

	calls := 0
	for l.Next() {
		calls++
	}
	assert.Equal(t, 1, calls, "two analyses: Next succeeds k-1 times")
	assert.Equal(t, []string{"a", "b"}, surfaces(l))
}

func TestNextRequiresNBest(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "ab", 0)

	ok, err := l.Advance()
	assert.False(t, ok)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	assert.Equal(t, "MECAB_NBEST request type is not set", l.What())

	l.AddRequestType(mecab.NBest)
	ok, err = l.Advance()
	assert.False(t, ok, "request type changes apply to the next parse")
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	_, err = l.NBestBytes(2)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
	assert.Equal(t, []string{"ab"}, surfaces(l))

	parse(t, m, l, "ab")
	assert.True(t, l.Next())
	assert.Equal(t, []string{"a", "b"}, surfaces(l))

	l.RemoveRequestType(mecab.NBest)
	out, err := l.NBestBytes(2)
	require.NoError(t, err, "removing NBEST does not undo the current analysis")
	assert.Equal(t, 2, strings.Count(string(out), "EOS\n"))

	fresh, err := m.NewLattice()
	require.NoError(t, err)
	fresh.AddRequestType(mecab.NBest)
	ok, err = fresh.Advance()
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestNBestStringKeepsCursor(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "東京都", mecab.NBest)

	before, err := l.ToBytes()
	require.NoError(t, err)
	beforeCopy := string(before)
	epoch := l.Epoch()

	out, err := l.NBestBytes(2)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(out), "EOS\n"))
	assert.True(t, strings.HasPrefix(string(out), beforeCopy))

	out, err = l.NBestBytes(10)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(out), "EOS\n"))

	assert.Equal(t, epoch, l.Epoch())
	now, err := l.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, beforeCopy, string(now))
	assert.True(t, l.Next(), "cursor still at the first analysis")

	_, err = l.NBestBytes(0)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
}

func TestClear(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "ab", mecab.NBest)
	l.SetTheta(0.25)
	require.NoError(t, l.SetBoundaryConstraint(1, mecab.TokenBoundary))

	l.Clear()
	state := func() []any {
		return []any{l.State(), l.Size(), l.HasConstraint(), l.IsAvailable(), l.BOSNode(), l.Z(), l.Theta(), l.RequestType()}
	}
	once := state()
	l.Clear()
	assert.Equal(t, once, state(), "clear is idempotent")

	assert.Equal(t, mecab.Empty, l.State())
	assert.Equal(t, 0, l.Size())
	assert.False(t, l.HasConstraint())
	assert.Nil(t, l.BOSNode())
	assert.InDelta(t, 0.25, l.Theta(), 1e-9, "theta survives clear")
	assert.True(t, l.HasRequestType(mecab.NBest), "request type survives clear")

	_, err := l.ToBytes()
	assert.Error(t, err)
}

func TestSentenceRoundTrip(t *testing.T) {
	m := newModel(t)
	l, err := m.NewLattice()
	require.NoError(t, err)

	for _, s := range [][]byte{
		[]byte("a\x00b"),
		[]byte("東京都"),
		{0xff, 0xfe, 'a'},
	} {
		src := append([]byte(nil), s...)
		l.SetSentence(src)
		src[0] = '!'
		assert.Equal(t, s, l.Sentence(), "sentence is copied")
		assert.Equal(t, len(s), l.Size())
		assert.Equal(t, mecab.Ready, l.State())
	}

	parse(t, m, l, "a\x00b")
	var total int
	for n := range l.Nodes() {
		total += n.RLength()
	}
	assert.Equal(t, 3, total, "every byte is covered")
}

func TestEmptySentence(t *testing.T) {
	m := newModel(t)
	tg, err := m.NewTagger()
	require.NoError(t, err)
	l, err := m.NewLattice()
	require.NoError(t, err)

	l.SetSentence(nil)
	assert.False(t, l.IsAvailable())
	assert.Equal(t, mecab.Empty, l.State())

	err = tg.Parse(l)
	require.Error(t, err)
	assert.Equal(t, "Lattice is not available", tg.What())
	assert.Equal(t, "Lattice is not available", l.What())
}

func TestSpaces(t *testing.T) {
	m := newModel(t)

	l := newParsed(t, m, " ab  ", 0)
	assert.Equal(t, []string{"ab"}, surfaces(l))
	ab := l.BOSNode().Next()
	assert.Equal(t, 1, ab.Begin())
	assert.Equal(t, 2, ab.Length())
	assert.Equal(t, 3, ab.RLength())
	assert.Equal(t, " ab", string(ab.SpacedSurface()))

	l = newParsed(t, m, "   ", 0)
	assert.Empty(t, surfaces(l))
	out, err := l.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, "EOS\n", string(out))
}

func TestUnknownWords(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "xyz123", 0)
	assert.Equal(t, []string{"xyz", "123"}, surfaces(l))
	for n := range l.Nodes() {
		if !n.IsBOS() && !n.IsEOS() {
			assert.True(t, n.IsUnknown())
		}
	}

	m = newModel(t, "-M", "1", "-x", "未知語")
	l = newParsed(t, m, "xyz", 0)
	assert.Equal(t, []string{"x", "y", "z"}, surfaces(l), "group longer than max-grouping-size is split")
	assert.Equal(t, "未知語", l.BOSNode().Next().Feature())

	m = newModel(t)
	l = newParsed(t, m, "漢字", 0)
	assert.Equal(t, []string{"漢字"}, surfaces(l))
	assert.Equal(t, m.Dictionary().Chars.Info('漢').Default, l.BOSNode().Next().CharType())
}

func TestMarginalProbabilities(t *testing.T) {
	m := newModel(t)
	l, err := m.NewLattice()
	require.NoError(t, err)
	l.AddRequestType(mecab.MarginalProb)
	l.SetTheta(0.01)
	parse(t, m, l, "ab")

	probs := map[string]float64{}
	for pos := 0; pos < l.Size(); pos++ {
		for n := l.BeginNodes(pos); n != nil; n = n.BNext() {
			probs[string(n.Surface())] = n.Prob()
		}
	}
	require.Len(t, probs, 3)
	assert.InDelta(t, 1.0, probs["ab"]+probs["a"], 1e-9)
	assert.InDelta(t, probs["a"], probs["b"], 1e-9)
	assert.Greater(t, probs["ab"], probs["a"])
	assert.InDelta(t, 1/(1+math.Exp(-2.5)), probs["ab"], 1e-6)

	assert.InDelta(t, 1.0, l.BOSNode().Prob(), 1e-9)
	assert.InDelta(t, 1.0, l.EOSNode().Prob(), 1e-9)
	assert.InDelta(t, l.EOSNode().Alpha(), l.Z(), 1e-12)
	assert.NotZero(t, l.Z())

	for p := l.EOSNode().LPath(); p != nil; p = p.LNext() {
		assert.InDelta(t, p.LNode().Prob(), p.Prob(), 1e-9)
	}

	l.SetZ(1.5)
	assert.InDelta(t, 1.5, l.Z(), 1e-12)
}

func TestAllMorphs(t *testing.T) {
	m := newModel(t, "-a")
	l, err := m.NewLattice()
	require.NoError(t, err)
	parse(t, m, l, "ab")

	assert.Equal(t, []string{"a", "ab", "b"}, surfaces(l))
	best := map[string]bool{}
	for n := range l.Nodes() {
		best[string(n.Surface())] = n.IsBest()
	}
	assert.True(t, best["ab"])
	assert.False(t, best["a"])
	assert.False(t, best["b"])
}

func TestCallerBuffers(t *testing.T) {
	m := newModel(t, "-O", "wakati")
	l := newParsed(t, m, "東京都", mecab.NBest)

	small := []byte("0123")
	_, err := l.ToBuffer(small)
	assert.True(t, errors.IsKind(err, errors.KindBufferOverflow))
	assert.Equal(t, "0123", string(small), "nothing written on overflow")
	assert.Equal(t, "output buffer overflow", l.What())

	buf := make([]byte, 64)
	n, err := l.ToBuffer(buf)
	require.NoError(t, err)
	assert.Equal(t, "東京 都 \n", string(buf[:n]))

	n, err = l.NBestBuffer(2, buf)
	require.NoError(t, err)
	assert.Equal(t, "東京 都 \n東 京都 \n", string(buf[:n]))

	_, err = l.NBestBuffer(3, buf[:10])
	assert.True(t, errors.IsKind(err, errors.KindBufferOverflow))

	node := l.BOSNode().Next()
	n, err = l.NodeBuffer(node, buf)
	require.NoError(t, err)
	assert.Equal(t, "東京 ", string(buf[:n]))

	_, err = l.NodeBuffer(node, buf[:2])
	assert.True(t, errors.IsKind(err, errors.KindBufferOverflow))

	other := newParsed(t, m, "ab", 0)
	_, err = l.NodeBytes(other.BOSNode())
	assert.True(t, errors.IsKind(err, errors.KindInvalidInput))
}

func TestSetResult(t *testing.T) {
	m := newModel(t)
	l := newParsed(t, m, "ab", 0)
	l.SetResult([]byte("custom"))
	out, err := l.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, "custom", string(out))

	l.SetSentence([]byte("ab"))
	_, err = l.ToBytes()
	assert.Error(t, err, "result dropped with the analysis")

	l.SetWhat("note")
	assert.Equal(t, "note", l.What())
}

func TestStandaloneLattice(t *testing.T) {
	m := newModel(t, "-O", "wakati")
	tg, err := m.NewTagger()
	require.NoError(t, err)

	l := mecab.NewLattice()
	assert.Equal(t, mecab.OneBest, l.RequestType())
	assert.InDelta(t, mecab.DefaultTheta, l.Theta(), 1e-12)

	l.SetSentence([]byte("ab"))
	require.NoError(t, tg.Parse(l))
	out, err := l.ToBytes()
	require.NoError(t, err)
	assert.Equal(t, "ab\t名詞,固有名詞,一般,*,*,*,ab,エービー,エービー\nEOS\n", string(out),
		"standalone lattices use the default format")
}

func TestRequestTypeOps(t *testing.T) {
	l := mecab.NewLattice()
	l.SetRequestType(mecab.NBest | mecab.Partial)
	assert.True(t, l.HasRequestType(mecab.NBest))
	l.AddRequestType(mecab.MarginalProb)
	l.RemoveRequestType(mecab.Partial)
	assert.Equal(t, mecab.NBest|mecab.MarginalProb, l.RequestType())
	assert.False(t, l.HasRequestType(mecab.Partial))
	assert.Equal(t, "nbest|marginal-prob", l.RequestType().String())
}

func TestManualNodes(t *testing.T) {
	l := mecab.NewLattice()
	l.SetSentence([]byte("  abc"))
	n := l.NewNode()
	require.NoError(t, n.SetSpan(2, 3, 2))
	n.SetFeature("名詞,一般")
	n.SetAttributes(1, 2, 5, 100)

	assert.Equal(t, "abc", string(n.Surface()))
	assert.Equal(t, "  abc", string(n.SpacedSurface()))
	assert.Equal(t, []string{"名詞", "一般"}, n.Features())
	assert.Equal(t, uint16(1), n.LAttr())
	assert.Equal(t, uint16(2), n.RAttr())
	assert.Equal(t, uint16(5), n.PosID())
	assert.Equal(t, int16(100), n.WCost())
	assert.Same(t, l, n.Lattice())

	assert.Error(t, n.SetSpan(4, 3, 0))
	assert.Error(t, n.SetSpan(1, 1, 2))

	b, err := l.NodeBytes(n)
	require.NoError(t, err)
	assert.Equal(t, "abc\t名詞,一般\n", string(b))
}
