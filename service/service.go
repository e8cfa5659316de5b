// Package service runs analyses through a bridge for the HTTP, MCP and
// command-line front ends.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/cache"
	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/mecab"
)

// Request is one analysis.
type Request struct {
	Text string `json:"text"`
	// NBest asks for the n best analyses; 0 and 1 mean the best one only.
	NBest int `json:"nbest,omitempty"`
	// Format is an output format name as accepted by -O. Empty selects the
	// dictionary default.
	Format string `json:"format,omitempty"`
	// Marginal computes marginal probabilities for every node.
	Marginal bool `json:"marginal,omitempty"`
}

// Node is one morpheme of an analysis.
type Node struct {
	Surface string  `json:"surface"`
	Feature string  `json:"feature"`
	Begin   int     `json:"begin"`
	End     int     `json:"end"`
	Stat    string  `json:"stat"`
	Cost    int64   `json:"cost"`
	Prob    float64 `json:"prob,omitempty"`
}

// Result is a formatted analysis with its morphemes. Paths holds one node
// list per analysis; Nodes is the first of them.
type Result struct {
	Result string   `json:"result"`
	Nodes  []Node   `json:"nodes"`
	Paths  [][]Node `json:"paths,omitempty"`
}

// DictionaryInfo describes one loaded dictionary.
type DictionaryInfo struct {
	Filename string `json:"filename"`
	Charset  string `json:"charset"`
	Type     string `json:"type"`
	Size     uint32 `json:"size"`
	LSize    uint32 `json:"lsize"`
	RSize    uint32 `json:"rsize"`
	Version  uint16 `json:"version"`
}

// Option configures a Service.
type Option func(*Service)

// WithCache stores results in c.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxNBest caps Request.NBest.
func WithMaxNBest(n int) Option {
	return func(s *Service) { s.maxNBest = n }
}

type formatModel struct {
	model  bridge.ModelHandle
	tagger bridge.TaggerHandle
}

// Service owns one model per output format, all loaded from the same
// arguments, and parses every request on a fresh lattice.
type Service struct {
	b        *bridge.Bridge
	argv     []string
	cache    cache.Cache
	logger   *zap.Logger
	maxNBest int

	mu     sync.Mutex
	models map[string]formatModel
}

// New loads the default model from argv.
func New(b *bridge.Bridge, argv []string, opts ...Option) (*Service, error) {
	s := &Service{
		b:        b,
		argv:     argv,
		cache:    cache.Nop{},
		logger:   zap.NewNop(),
		maxNBest: 32,
		models:   make(map[string]formatModel),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := s.model(""); err != nil {
		return nil, err
	}
	return s, nil
}

// Bridge returns the bridge the service analyzes with.
func (s *Service) Bridge() *bridge.Bridge {
	return s.b
}

// Version returns the engine version.
func (s *Service) Version() string {
	return s.b.ModelVersion()
}

func (s *Service) model(format string) (formatModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fm, ok := s.models[format]; ok {
		return fm, nil
	}
	argv := s.argv
	if format != "" {
		argv = append(append([]string(nil), s.argv...), "-O", format)
	}
	m, err := s.b.NewModel(argv)
	if err != nil {
		return formatModel{}, err
	}
	t, err := s.b.NewTagger(m)
	if err != nil {
		s.b.ReleaseModel(m)
		return formatModel{}, err
	}
	fm := formatModel{model: m, tagger: t}
	s.models[format] = fm
	s.logger.Info("model loaded", zap.String("format", format), zap.Strings("argv", argv))
	return fm, nil
}

// Parse analyzes req.Text. Results are served from the cache when present.
func (s *Service) Parse(ctx context.Context, req Request) (*Result, error) {
	n := max(req.NBest, 1)
	if n > s.maxNBest {
		return nil, errors.OutOfRange(errors.PhaseParse, "nbest", n, s.maxNBest)
	}
	if req.Text == "" {
		return nil, errors.InvalidInput(errors.PhaseParse, "text is empty")
	}

	mode := fmt.Sprintf("%s|%t", req.Format, req.Marginal)
	key := cache.Key(mode, n, req.Text)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("cache get failed", zap.Error(err))
	} else if ok {
		var res Result
		if err := json.Unmarshal(data, &res); err == nil {
			return &res, nil
		}
	}

	res, err := s.parse(req, n)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(res); err == nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warn("cache set failed", zap.Error(err))
		}
	}
	return res, nil
}

func (s *Service) parse(req Request, n int) (*Result, error) {
	fm, err := s.model(req.Format)
	if err != nil {
		return nil, err
	}
	l, err := s.b.NewLattice(fm.model)
	if err != nil {
		return nil, err
	}
	defer s.b.ReleaseLattice(l)

	rt := mecab.OneBest
	if n > 1 {
		rt = mecab.NBest
	}
	if req.Marginal {
		rt |= mecab.MarginalProb
	}
	if err := s.b.LatticeSetRequestType(l, rt); err != nil {
		return nil, err
	}
	if err := s.b.LatticeSetSentence(l, []byte(req.Text)); err != nil {
		return nil, err
	}
	if err := s.b.TaggerParse(fm.tagger, l); err != nil {
		return nil, err
	}

	var out []byte
	if n > 1 {
		out, err = s.b.LatticeNBestString(l, n)
	} else {
		out, err = s.b.LatticeToString(l)
	}
	if err != nil {
		return nil, err
	}
	res := &Result{Result: string(out)}

	for i := 0; i < n; i++ {
		if i > 0 {
			ok, err := s.b.LatticeNext(l)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
		}
		nodes, err := s.Chain(l)
		if err != nil {
			return nil, err
		}
		res.Paths = append(res.Paths, nodes)
	}
	res.Nodes = res.Paths[0]
	if n == 1 {
		res.Paths = nil
	}
	return res, nil
}

// Chain returns the morphemes of the lattice's current path, BOS and EOS
// excluded.
func (s *Service) Chain(l bridge.LatticeHandle) ([]Node, error) {
	bos, err := s.b.LatticeBOSNode(l)
	if err != nil {
		return nil, err
	}
	eos, err := s.b.LatticeEOSNode(l)
	if err != nil {
		return nil, err
	}
	nodes := []Node{}
	n, err := s.b.NodeNext(bos)
	for ; err == nil && n != 0 && n != eos; n, err = s.b.NodeNext(n) {
		node, nerr := s.node(n)
		if nerr != nil {
			return nil, nerr
		}
		nodes = append(nodes, node)
	}
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Service) node(h bridge.NodeHandle) (Node, error) {
	var (
		n   Node
		err error
	)
	get := func(f func() error) {
		if err == nil {
			err = f()
		}
	}
	get(func() error {
		surface, e := s.b.NodeSurface(h)
		n.Surface = string(surface)
		return e
	})
	get(func() (e error) { n.Feature, e = s.b.NodeFeature(h); return })
	get(func() (e error) { n.Begin, e = s.b.NodeBegin(h); return })
	get(func() error {
		length, e := s.b.NodeLength(h)
		n.End = n.Begin + length
		return e
	})
	get(func() error {
		st, e := s.b.NodeStatus(h)
		n.Stat = st.String()
		return e
	})
	get(func() (e error) { n.Cost, e = s.b.NodeCost(h); return })
	get(func() (e error) { n.Prob, e = s.b.NodeProb(h); return })
	return n, err
}

// Dictionaries lists the dictionaries of the default model.
func (s *Service) Dictionaries() ([]DictionaryInfo, error) {
	fm, err := s.model("")
	if err != nil {
		return nil, err
	}
	h, err := s.b.ModelDictionaryInfo(fm.model)
	if err != nil {
		return nil, err
	}
	var out []DictionaryInfo
	for h != 0 {
		var d DictionaryInfo
		if d.Filename, err = s.b.DictionaryInfoFilename(h); err != nil {
			return nil, err
		}
		if d.Charset, err = s.b.DictionaryInfoCharset(h); err != nil {
			return nil, err
		}
		t, err := s.b.DictionaryInfoType(h)
		if err != nil {
			return nil, err
		}
		d.Type = t.String()
		if d.Size, err = s.b.DictionaryInfoSize(h); err != nil {
			return nil, err
		}
		if d.LSize, err = s.b.DictionaryInfoLSize(h); err != nil {
			return nil, err
		}
		if d.RSize, err = s.b.DictionaryInfoRSize(h); err != nil {
			return nil, err
		}
		if d.Version, err = s.b.DictionaryInfoVersion(h); err != nil {
			return nil, err
		}
		out = append(out, d)
		if h, err = s.b.DictionaryInfoNext(h); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Close releases the service's models. The bridge stays open.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for format, fm := range s.models {
		if err := s.b.ReleaseModel(fm.model); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.models, format)
	}
	return s.cache.Close()
}
