package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/mecab"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	surfaceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	featureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	boundaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Analyze text interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		b := bridge.New(bridge.WithLogger(logger))
		defer b.Close()
		m, err := newTUIModel(b, cfg.Dictionary.Argv())
		if err != nil {
			return err
		}
		_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

type tuiState int

const (
	stateEditing tuiState = iota
	stateBrowsing
)

type morpheme struct {
	surface string
	feature string
	cost    int64
}

// tuiModel keeps one tagger and one lattice for the whole session and
// re-parses the lattice whenever a constraint changes.
type tuiModel struct {
	err         error
	b           *bridge.Bridge
	tagger      bridge.TaggerHandle
	lattice     bridge.LatticeHandle
	input       textinput.Model
	sentence    string
	constraints map[int]mecab.BoundaryType
	path        []morpheme
	rank        int
	cursor      int
	state       tuiState
}

func newTUIModel(b *bridge.Bridge, argv []string) (*tuiModel, error) {
	model, err := b.NewModel(argv)
	if err != nil {
		return nil, err
	}
	tagger, err := b.NewTagger(model)
	if err != nil {
		return nil, err
	}
	lattice, err := b.NewLattice(model)
	if err != nil {
		return nil, err
	}
	if err := b.LatticeAddRequestType(lattice, mecab.NBest); err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Placeholder = "日本語の文を入力"
	ti.Prompt = "> "
	ti.Width = 60
	ti.Focus()
	return &tuiModel{
		b:           b,
		tagger:      tagger,
		lattice:     lattice,
		input:       ti,
		constraints: make(map[int]mecab.BoundaryType),
	}, nil
}

func (m *tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if ok && key.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.state == stateEditing {
		if ok && key.String() == "enter" {
			m.sentence = m.input.Value()
			m.constraints = make(map[int]mecab.BoundaryType)
			m.cursor = m.nextBoundary(0)
			m.analyze()
			m.state = stateBrowsing
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "esc", "e":
		m.state = stateEditing
		return m, m.input.Focus()
	case "left", "h":
		m.cursor = m.prevBoundary(m.cursor)
	case "right", "l":
		m.cursor = m.nextBoundary(m.cursor)
	case "n":
		m.next()
	case "b":
		m.toggle(mecab.TokenBoundary)
	case "i":
		m.toggle(mecab.InsideToken)
	case "r":
		m.constraints = make(map[int]mecab.BoundaryType)
		m.analyze()
	}
	return m, nil
}

// nextBoundary returns the first character boundary after pos that lies
// strictly inside the sentence, or pos when there is none.
func (m *tuiModel) nextBoundary(pos int) int {
	if pos >= len(m.sentence) {
		return pos
	}
	_, size := utf8.DecodeRuneInString(m.sentence[pos:])
	if next := pos + size; next < len(m.sentence) {
		return next
	}
	return pos
}

func (m *tuiModel) prevBoundary(pos int) int {
	if pos <= 0 {
		return pos
	}
	_, size := utf8.DecodeLastRuneInString(m.sentence[:pos])
	if prev := pos - size; prev > 0 {
		return prev
	}
	return pos
}

func (m *tuiModel) toggle(t mecab.BoundaryType) {
	if m.cursor <= 0 || m.cursor >= len(m.sentence) {
		return
	}
	if m.constraints[m.cursor] == t {
		delete(m.constraints, m.cursor)
	} else {
		m.constraints[m.cursor] = t
	}
	m.analyze()
}

// analyze parses the sentence under the current constraints and loads the
// best path.
func (m *tuiModel) analyze() {
	m.path, m.rank, m.err = nil, 0, nil
	if m.sentence == "" {
		return
	}
	if m.err = m.b.LatticeSetSentence(m.lattice, []byte(m.sentence)); m.err != nil {
		return
	}
	req := mecab.Partial
	if len(m.constraints) == 0 {
		m.err = m.b.LatticeRemoveRequestType(m.lattice, req)
	} else {
		m.err = m.b.LatticeAddRequestType(m.lattice, req)
	}
	if m.err != nil {
		return
	}
	for pos, t := range m.constraints {
		if m.err = m.b.LatticeSetBoundaryConstraint(m.lattice, pos, t); m.err != nil {
			return
		}
	}
	if m.err = m.b.TaggerParse(m.tagger, m.lattice); m.err != nil {
		return
	}
	m.rank = 1
	m.path, m.err = m.chain()
}

// next moves to the next best path.
func (m *tuiModel) next() {
	if m.rank == 0 {
		return
	}
	ok, err := m.b.LatticeNext(m.lattice)
	if err != nil {
		m.err = err
		return
	}
	if !ok {
		m.err = fmt.Errorf("no more analyses after #%d", m.rank)
		return
	}
	m.rank++
	m.path, m.err = m.chain()
}

func (m *tuiModel) chain() ([]morpheme, error) {
	bos, err := m.b.LatticeBOSNode(m.lattice)
	if err != nil {
		return nil, err
	}
	eos, err := m.b.LatticeEOSNode(m.lattice)
	if err != nil {
		return nil, err
	}
	var path []morpheme
	n := bos
	for {
		if n, err = m.b.NodeNext(n); err != nil {
			return nil, err
		}
		if n == 0 || n == eos {
			break
		}
		surface, err := m.b.NodeSurface(n)
		if err != nil {
			return nil, err
		}
		feature, err := m.b.NodeFeature(n)
		if err != nil {
			return nil, err
		}
		cost, err := m.b.NodeCost(n)
		if err != nil {
			return nil, err
		}
		path = append(path, morpheme{surface: string(surface), feature: feature, cost: cost})
	}
	return path, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("MeCab"))
	b.WriteString(" ")
	b.WriteString(mecab.Version())
	b.WriteString("\n\n")

	if m.state == stateEditing {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter analyze • ctrl+c quit"))
		return b.String()
	}

	b.WriteString(m.renderSentence())
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}
	if m.rank > 0 {
		fmt.Fprintf(&b, "analysis #%d\n", m.rank)
		for _, p := range m.path {
			fmt.Fprintf(&b, "%s\t%s\t%d\n", surfaceStyle.Render(p.surface), featureStyle.Render(p.feature), p.cost)
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("←/→ move • b boundary • i inside • n next • r reset • e edit • q quit"))
	return b.String()
}

// renderSentence draws the sentence with the cursor and constraint marks
// between characters: | for a forced boundary, ~ for inside a token.
func (m *tuiModel) renderSentence() string {
	var b strings.Builder
	for pos, r := range m.sentence {
		if pos > 0 {
			switch m.constraints[pos] {
			case mecab.TokenBoundary:
				b.WriteString(boundaryStyle.Render("|"))
			case mecab.InsideToken:
				b.WriteString(boundaryStyle.Render("~"))
			}
		}
		if pos == m.cursor {
			b.WriteString(cursorStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
