package mecab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/dict"
	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/internal/testdict"
	"github.com/wippyai/mecab-bridge/mecab"
)

func TestVersion(t *testing.T) {
	v := mecab.Version()
	assert.NotEmpty(t, v)
	assert.Equal(t, v, mecab.Version())
}

func TestDictionaryInfo(t *testing.T) {
	user := testdict.WriteUserDic(t, "xyz,1,1,100,名詞,一般,*,*,*,*,xyz,エックス,エックス")
	m := newModel(t, "-u", user)

	var infos []*mecab.DictionaryInfo
	for di := m.DictionaryInfo(); di != nil; di = di.Next() {
		infos = append(infos, di)
	}
	require.Len(t, infos, 3)
	assert.Equal(t, dict.SystemDictionary, infos[0].Type)
	assert.Equal(t, dict.UserDictionary, infos[1].Type)
	assert.Equal(t, user, infos[1].Filename)
	assert.Equal(t, uint32(1), infos[1].Size)
	assert.Equal(t, dict.UnknownDictionary, infos[2].Type)
	for _, di := range infos {
		assert.Equal(t, "utf-8", di.Charset)
		assert.Equal(t, uint32(3), di.LSize)
		assert.Equal(t, uint32(3), di.RSize)
		assert.Equal(t, uint16(102), di.Version)
	}
}

func TestTransitionCost(t *testing.T) {
	m := newModel(t)

	c, err := m.TransitionCost(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, c)

	c, err = m.TransitionCost(1, 2)
	require.NoError(t, err)
	assert.Equal(t, -20, c)

	_, err = m.TransitionCost(3, 0)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
	_, err = m.TransitionCost(0, 3)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
}

func TestSwap(t *testing.T) {
	m := newModel(t)
	tg, err := m.NewTagger()
	require.NoError(t, err)

	user := testdict.WriteUserDic(t, "東京都,1,1,-500,名詞,固有名詞,地域,*,*,*,東京都,トウキョウト,トーキョート")
	other := newModel(t, "-u", user)

	require.NoError(t, m.Swap(other))
	assert.False(t, other.IsAvailable())
	assert.True(t, m.IsAvailable())

	n := 0
	for di := m.DictionaryInfo(); di != nil; di = di.Next() {
		n++
	}
	assert.Equal(t, 3, n, "model now carries the user dictionary")

	out, err := tg.ParseString("東京都")
	require.NoError(t, err)
	assert.Contains(t, out, "東京都\t名詞,固有名詞,地域", "existing taggers see the swapped dictionary")

	err = m.Swap(other)
	assert.True(t, errors.IsKind(err, errors.KindUnavailable), "consumed model cannot be swapped in again")

	_, err = other.NewTagger()
	assert.True(t, errors.IsKind(err, errors.KindUnavailable))
}

func TestSwapIncompatible(t *testing.T) {
	m := newModel(t)

	t.Setenv("MECABRC", "")
	euc, err := mecab.NewModel([]string{"mecab", "-d", testdict.WriteCharset(t, "euc-jp")})
	require.NoError(t, err)

	err = m.Swap(euc)
	assert.True(t, errors.IsKind(err, errors.KindIncompatible))
	assert.False(t, euc.IsAvailable(), "the argument is consumed even when swap fails")
	assert.True(t, m.IsAvailable())
	assert.Equal(t, "utf-8", m.DictionaryInfo().Charset)

	assert.Error(t, m.Swap(m))
	assert.Error(t, m.Swap(nil))
}

func TestLookup(t *testing.T) {
	m := newModel(t)
	l, err := m.NewLattice()
	require.NoError(t, err)
	l.SetSentence([]byte(" 東京都"))

	var got []string
	for n, err := m.Lookup(l, 0, l.Size()); n != nil; n = n.BNext() {
		require.NoError(t, err)
		got = append(got, string(n.Surface()))
		assert.Equal(t, 1, n.Begin())
		assert.Equal(t, n.Length()+1, n.RLength())
	}
	assert.Equal(t, []string{"東", "東京"}, got)

	n, err := m.Lookup(l, 0, 4)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "東", string(n.Surface()))
	assert.Nil(t, n.BNext())

	_, err = m.Lookup(l, 0, 99)
	assert.True(t, errors.IsKind(err, errors.KindOutOfRange))
}

func TestLookupUnknown(t *testing.T) {
	m := newModel(t)
	l, err := m.NewLattice()
	require.NoError(t, err)
	l.SetSentence([]byte("xyz"))

	n, err := m.Lookup(l, 0, 3)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, "xyz", string(n.Surface()))
	assert.Equal(t, mecab.UnknownNode, n.Status())
	assert.Equal(t, "名詞,固有名詞,組織,*,*,*,*", n.Feature())
	assert.Nil(t, n.BNext())
}
