package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/internal/testdict"
	"github.com/wippyai/mecab-bridge/mecab"
)

func dicArgv(t *testing.T, extra ...string) []string {
	t.Helper()
	t.Setenv("MECABRC", "")
	return append([]string{"mecab", "-d", testdict.Write(t)}, extra...)
}

func TestRunParse(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
		input string
		want  string
	}{
		{
			name:  "lattice",
			input: "ab\n",
			want:  "ab\t名詞,固有名詞,一般,*,*,*,ab,エービー,エービー\nEOS\n",
		},
		{
			name:  "wakati skips empty lines",
			extra: []string{"-O", "wakati"},
			input: "ab\n\n東京都\n",
			want:  "ab \n東京 都 \n",
		},
		{
			name:  "nbest",
			extra: []string{"-N", "2", "-Owakati"},
			input: "東京都\n",
			want:  "東京 都 \n東 京都 \n",
		},
		{
			name:  "partial",
			extra: []string{"-p", "-O", "wakati"},
			input: "東\n京都\nEOS\nab\n",
			want:  "東 京都 \nab \n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runParse(dicArgv(t, tt.extra...), nil, strings.NewReader(tt.input), &out, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunParseFilesAndOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("東京都\n"), 0o644))
	outPath := filepath.Join(dir, "out.txt")

	err := runParse(dicArgv(t, "-O", "wakati", "-o", outPath), []string{in}, nil, nil, zap.NewNop())
	require.NoError(t, err)
	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "東京 都 \n", string(got))

	err = runParse(dicArgv(t), []string{filepath.Join(dir, "missing.txt")}, nil, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)
}

func TestRunParseBadOptions(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, runParse(dicArgv(t, "-N", "zero"), nil, strings.NewReader("ab\n"), &out, zap.NewNop()))
	assert.Error(t, runParse(dicArgv(t, "--bogus"), nil, strings.NewReader("ab\n"), &out, zap.NewNop()))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func surfaces(path []morpheme) []string {
	out := make([]string, len(path))
	for i, p := range path {
		out[i] = p.surface
	}
	return out
}

func newTestTUI(t *testing.T, sentence string) *tuiModel {
	t.Helper()
	b := bridge.New()
	t.Cleanup(func() { b.Close() })
	m, err := newTUIModel(b, dicArgv(t))
	require.NoError(t, err)
	m.input.SetValue(sentence)
	m.Update(key("enter"))
	require.NoError(t, m.err)
	return m
}

func TestTUIBoundaries(t *testing.T) {
	m := newTestTUI(t, "ab")
	assert.Equal(t, stateBrowsing, m.state)
	assert.Equal(t, []string{"ab"}, surfaces(m.path))
	assert.Equal(t, 1, m.cursor)

	m.Update(key("b"))
	require.NoError(t, m.err)
	assert.Equal(t, mecab.TokenBoundary, m.constraints[1])
	assert.Equal(t, []string{"a", "b"}, surfaces(m.path))
	assert.Contains(t, m.View(), "|")

	m.Update(key("b"))
	assert.Equal(t, []string{"ab"}, surfaces(m.path), "toggling twice removes the constraint")

	m.Update(key("b"))
	m.Update(key("r"))
	assert.Empty(t, m.constraints)
	assert.Equal(t, []string{"ab"}, surfaces(m.path))
}

func TestTUINBest(t *testing.T) {
	m := newTestTUI(t, "東京都")
	assert.Equal(t, []string{"東京", "都"}, surfaces(m.path))

	m.Update(key("n"))
	assert.Equal(t, 2, m.rank)
	assert.Equal(t, []string{"東", "京都"}, surfaces(m.path))

	// the cursor moves by characters, not bytes
	assert.Equal(t, len("東"), m.cursor)
	m.Update(key("right"))
	assert.Equal(t, len("東京"), m.cursor)
	m.Update(key("i"))
	require.NoError(t, m.err)
	assert.Equal(t, []string{"東", "京都"}, surfaces(m.path))

	m.Update(key("e"))
	assert.Equal(t, stateEditing, m.state)
}
