package mecab

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/errors"
)

// Tagger runs analyses of lattices against its model. A tagger may be
// shared; the lattices it parses may not.
type Tagger struct {
	model *Model

	mu   sync.Mutex
	what string
}

func (t *Tagger) Model() *Model { return t.model }

// What returns the message of the tagger's most recent failure.
func (t *Tagger) What() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.what
}

func (t *Tagger) setWhat(s string) {
	t.mu.Lock()
	t.what = s
	t.mu.Unlock()
}

func (t *Tagger) fail(l *Lattice, err *errors.Error) error {
	t.setWhat(err.Message())
	if l != nil {
		l.what = err.Message()
	}
	return err
}

// Parse analyzes the lattice sentence with the lattice's request type.
// Sentence and constraints are kept; any previous analysis is replaced.
func (t *Tagger) Parse(l *Lattice) error {
	st, err := t.model.loadAvailable(errors.PhaseParse)
	if err != nil {
		return t.fail(l, toError(errors.PhaseParse, err))
	}
	if l == nil {
		return t.fail(nil, errors.InvalidInput(errors.PhaseParse, "lattice is nil"))
	}
	if !l.IsAvailable() {
		return t.fail(l, errors.InvalidInput(errors.PhaseParse, "Lattice is not available"))
	}

	start := time.Now()
	if err := st.analyze(l); err != nil {
		l.resetGraph()
		l.state = Ready
		return t.fail(l, toError(errors.PhaseParse, err))
	}
	if l.request.Has(MarginalProb) {
		forwardBackward(l)
	}
	if l.request.Has(NBest) {
		l.nbest = newNBestGenerator(l)
		if p, ok := l.nbest.next(); ok {
			l.setPath(p)
		}
	}
	if l.request.Has(AllMorphs) {
		l.linkAll()
	}
	l.parsedRequest = l.request
	l.state = Parsed

	Logger().Debug("parsed",
		zap.Int("bytes", len(l.sentence)),
		zap.Int("nodes", len(l.nodes)),
		zap.Int("path", len(l.path)),
		zap.Stringer("request_type", l.request),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (t *Tagger) newLattice(text string) (*Lattice, error) {
	l, err := t.model.NewLattice()
	if err != nil {
		return nil, t.fail(nil, toError(errors.PhaseParse, err))
	}
	if limit := t.model.Options().InputBufferSize; len(text) > limit {
		return nil, t.fail(nil, errors.OutOfRange(errors.PhaseParse, "input size", len(text), limit))
	}
	l.SetSentence([]byte(text))
	return l, nil
}

// ParseString analyzes text and returns the formatted result.
func (t *Tagger) ParseString(text string) (string, error) {
	l, err := t.newLattice(text)
	if err != nil {
		return "", err
	}
	if err := t.Parse(l); err != nil {
		return "", err
	}
	out, err := l.ToBytes()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseNBestString analyzes text and returns the n best results.
func (t *Tagger) ParseNBestString(n int, text string) (string, error) {
	l, err := t.newLattice(text)
	if err != nil {
		return "", err
	}
	l.AddRequestType(NBest)
	if err := t.Parse(l); err != nil {
		return "", err
	}
	out, err := l.NBestBytes(n)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParsePartialString analyzes partially annotated input: one chunk per
// line, either free text or "surface<TAB>feature-pattern", up to a line
// reading EOS. Chunk edges become token boundaries and annotated chunks
// become feature constraints.
func (t *Tagger) ParsePartialString(input string) (string, error) {
	type chunk struct {
		begin, end int
		feature    string
	}
	var (
		sentence strings.Builder
		chunks   []chunk
	)
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "EOS" {
			break
		}
		if line == "" {
			continue
		}
		surface, feature, annotated := strings.Cut(line, "\t")
		if surface == "" {
			continue
		}
		c := chunk{begin: sentence.Len()}
		sentence.WriteString(surface)
		c.end = sentence.Len()
		if annotated {
			c.feature = feature
		}
		chunks = append(chunks, c)
	}

	l, err := t.newLattice(sentence.String())
	if err != nil {
		return "", err
	}
	l.AddRequestType(Partial)
	for _, c := range chunks {
		if c.feature != "" {
			err = l.SetFeatureConstraint(c.begin, c.end, c.feature)
		} else if err = l.SetBoundaryConstraint(c.begin, TokenBoundary); err == nil {
			err = l.SetBoundaryConstraint(c.end, TokenBoundary)
		}
		if err != nil {
			return "", err
		}
	}
	if err := t.Parse(l); err != nil {
		return "", err
	}
	out, err := l.ToBytes()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
