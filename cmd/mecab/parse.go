package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/config"
	"github.com/wippyai/mecab-bridge/mecab"
)

var parseCmd = &cobra.Command{
	Use:   "parse [mecab options] [files...]",
	Short: "Analyze files or standard input line by line",
	Long: `Analyze text the way the mecab command does. Options follow mecab:
  -d dicdir  -u userdic  -r rcfile  -O format  -N nbest  -m marginal
  -a all-morphs  -p partial  -F/-U/-B/-E/-S formats  -x unk-feature
  -t theta  -M max-grouping-size  -o output
Dictionary options missing from the command line come from $` + config.EnvPath + `.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, a := range args {
			if a == "-h" || a == "--help" {
				return cmd.Help()
			}
		}
		cfg, err := config.Load("")
		if err != nil {
			return err
		}
		logger, err := cfg.Log.Build()
		if err != nil {
			return err
		}
		defer logger.Sync()
		mecab.SetLogger(logger.Named("mecab"))
		bridge.SetLogger(logger.Named("bridge"))

		argv := append(cfg.Dictionary.Argv(), args...)
		_, files, err := mecab.ParseArgs(argv)
		if err != nil {
			return err
		}
		if len(files) == 0 && term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(cmd.ErrOrStderr(), "reading from the terminal, end with Ctrl-D (try `mecab tui` for an interactive view)")
		}
		return runParse(argv, files, cmd.InOrStdin(), cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

// lineParser analyzes input through one tagger and one reusable lattice.
type lineParser struct {
	b       *bridge.Bridge
	tagger  bridge.TaggerHandle
	lattice bridge.LatticeHandle
	nbest   int
	partial bool
}

func newLineParser(b *bridge.Bridge, argv []string) (*lineParser, error) {
	params, _, err := mecab.ParseArgs(argv)
	if err != nil {
		return nil, err
	}
	p := &lineParser{b: b, nbest: 1, partial: params["partial"] != ""}
	if v := params["nbest"]; v != "" {
		if p.nbest, err = strconv.Atoi(v); err != nil || p.nbest < 1 {
			return nil, fmt.Errorf("invalid nbest value %q", v)
		}
	}

	m, err := b.NewModel(argv)
	if err != nil {
		return nil, err
	}
	if p.tagger, err = b.NewTagger(m); err != nil {
		return nil, err
	}
	if p.lattice, err = b.NewLattice(m); err != nil {
		return nil, err
	}
	return p, nil
}

// parse analyzes one sentence, or one partial chunk block, and returns the
// formatted result.
func (p *lineParser) parse(input string) ([]byte, error) {
	if p.partial {
		if err := p.setPartial(input); err != nil {
			return nil, err
		}
	} else if err := p.b.LatticeSetSentence(p.lattice, []byte(input)); err != nil {
		return nil, err
	}
	if err := p.b.TaggerParse(p.tagger, p.lattice); err != nil {
		return nil, err
	}
	if p.nbest > 1 {
		return p.b.LatticeNBestString(p.lattice, p.nbest)
	}
	return p.b.LatticeToString(p.lattice)
}

// setPartial loads a block of "surface" or "surface<TAB>feature" lines:
// every chunk edge is a token boundary and annotated chunks constrain the
// feature.
func (p *lineParser) setPartial(block string) error {
	type chunk struct {
		begin, end int
		feature    string
	}
	var (
		sentence strings.Builder
		chunks   []chunk
	)
	for _, line := range strings.Split(block, "\n") {
		surface, feature, _ := strings.Cut(strings.TrimRight(line, "\r"), "\t")
		if surface == "" {
			continue
		}
		c := chunk{begin: sentence.Len(), feature: feature}
		sentence.WriteString(surface)
		c.end = sentence.Len()
		chunks = append(chunks, c)
	}
	if err := p.b.LatticeSetSentence(p.lattice, []byte(sentence.String())); err != nil {
		return err
	}
	if err := p.b.LatticeAddRequestType(p.lattice, mecab.Partial); err != nil {
		return err
	}
	for _, c := range chunks {
		var err error
		if c.feature != "" {
			err = p.b.LatticeSetFeatureConstraint(p.lattice, c.begin, c.end, c.feature)
		} else if err = p.b.LatticeSetBoundaryConstraint(p.lattice, c.begin, mecab.TokenBoundary); err == nil {
			err = p.b.LatticeSetBoundaryConstraint(p.lattice, c.end, mecab.TokenBoundary)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func runParse(argv, files []string, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	b := bridge.New(bridge.WithLogger(logger))
	defer b.Close()
	p, err := newLineParser(b, argv)
	if err != nil {
		return err
	}

	params, _, _ := mecab.ParseArgs(argv)
	if path := params["output"]; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		stdout = f
	}
	out := bufio.NewWriter(stdout)
	defer out.Flush()

	if len(files) == 0 {
		return p.run(stdin, out)
	}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		err = p.run(f, out)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// run analyzes r line by line, skipping empty lines. In partial mode lines
// are gathered up to a line reading EOS.
func (p *lineParser) run(r io.Reader, w *bufio.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	var block strings.Builder
	for sc.Scan() {
		line := sc.Text()
		if p.partial {
			if line != "EOS" {
				block.WriteString(line)
				block.WriteByte('\n')
				continue
			}
			line = block.String()
			block.Reset()
		}
		if line == "" {
			continue
		}
		res, err := p.parse(line)
		if err != nil {
			return err
		}
		if _, err := w.Write(res); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	if p.partial && block.Len() > 0 {
		res, err := p.parse(block.String())
		if err != nil {
			return err
		}
		_, err = w.Write(res)
		return err
	}
	return nil
}
