package mecab_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/mecab-bridge/internal/testdict"
	"github.com/wippyai/mecab-bridge/mecab"
)

func newModel(t *testing.T, args ...string) *mecab.Model {
	t.Helper()
	t.Setenv("MECABRC", "")
	argv := append([]string{"mecab", "-d", testdict.Write(t)}, args...)
	m, err := mecab.NewModel(argv)
	require.NoError(t, err)
	return m
}

func parse(t *testing.T, m *mecab.Model, l *mecab.Lattice, text string) {
	t.Helper()
	tg, err := m.NewTagger()
	require.NoError(t, err)
	l.SetSentence([]byte(text))
	require.NoError(t, tg.Parse(l))
}

func newParsed(t *testing.T, m *mecab.Model, text string, req mecab.RequestType) *mecab.Lattice {
	t.Helper()
	l, err := m.NewLattice()
	require.NoError(t, err)
	l.AddRequestType(req)
	parse(t, m, l, text)
	return l
}

func surfaces(l *mecab.Lattice) []string {
	var out []string
	for n := range l.Nodes() {
		if n.IsBOS() || n.IsEOS() {
			continue
		}
		out = append(out, string(n.Surface()))
	}
	return out
}

// pathCost sums word and connection costs along the current chain.
func pathCost(t *testing.T, m *mecab.Model, l *mecab.Lattice) int {
	t.Helper()
	total := 0
	var prev *mecab.Node
	for n := range l.Nodes() {
		if prev != nil {
			c, err := m.TransitionCost(prev.RAttr(), n.LAttr())
			require.NoError(t, err)
			total += c + int(n.WCost())
		}
		prev = n
	}
	return total
}
