package mecab

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/dict"
	"github.com/wippyai/mecab-bridge/errors"
)

const version = "0.996"

// Version returns the engine version. It is the same for every model.
func Version() string {
	return version
}

// DictionaryInfo describes one dictionary of a model. The list runs
// system dictionary, user dictionaries, unknown-word dictionary.
type DictionaryInfo struct {
	Filename string
	Charset  string
	Size     uint32
	Type     dict.InfoType
	LSize    uint32
	RSize    uint32
	Version  uint16

	next *DictionaryInfo
}

// Next returns the following dictionary or nil.
func (d *DictionaryInfo) Next() *DictionaryInfo { return d.next }

func buildInfos(infos []dict.Info) *DictionaryInfo {
	var head, tail *DictionaryInfo
	for _, in := range infos {
		di := &DictionaryInfo{
			Filename: in.Filename,
			Charset:  in.Charset,
			Size:     in.Size,
			Type:     in.Type,
			LSize:    in.LSize,
			RSize:    in.RSize,
			Version:  in.Version,
		}
		if head == nil {
			head = di
		} else {
			tail.next = di
		}
		tail = di
	}
	return head
}

// modelState is everything a model shares with its taggers and lattices.
// Swap replaces it as a unit.
type modelState struct {
	opts       Options
	dic        *dict.Dictionary
	writer     *writer
	info       *DictionaryInfo
	bosFeature string
}

// Model is a loaded dictionary plus analysis options. Taggers and lattices
// created from it follow Swap.
type Model struct {
	state atomic.Pointer[modelState]
}

// NewModel builds a model from a MeCab command line. argv[0] is the
// program name.
func NewModel(argv []string) (*Model, error) {
	if len(argv) == 0 {
		argv = []string{DefaultProgramName}
	}
	params, _, err := ParseArgs(argv)
	if err != nil {
		return nil, err
	}
	if err := mergeResourceFile(params); err != nil {
		return nil, err
	}

	dicdir := params["dicdir"]
	if dicdir == "" {
		return nil, errors.InvalidInput(errors.PhaseOption, "no dictionary directory")
	}
	d, err := dict.Load(dict.LoadOptions{
		Dir:      dicdir,
		UserDics: Options{UserDic: params["userdic"]}.UserDics(),
	})
	if err != nil {
		return nil, err
	}
	mergeDictionary(params, d)

	opts, err := decodeOptions(params)
	if err != nil {
		return nil, err
	}
	w, err := newWriter(opts)
	if err != nil {
		return nil, err
	}

	st := &modelState{
		opts:       opts,
		dic:        d,
		writer:     w,
		info:       buildInfos(d.Infos),
		bosFeature: params["bos-feature"],
	}
	if st.bosFeature == "" {
		st.bosFeature = "BOS/EOS"
	}

	m := &Model{}
	m.state.Store(st)

	Logger().Debug("model loaded",
		zap.String("dicdir", dicdir),
		zap.String("charset", d.Charset),
		zap.Int("surfaces", d.Surfaces()),
		zap.Int("user_dictionaries", len(opts.UserDics())),
		zap.Stringer("request_type", opts.RequestType()))

	return m, nil
}

// NewModelFromString splits arg like a shell command line and builds a
// model from it.
func NewModelFromString(arg string) (*Model, error) {
	return NewModel(append([]string{DefaultProgramName}, SplitArgs(arg)...))
}

func (m *Model) load() *modelState {
	return m.state.Load()
}

func (m *Model) loadAvailable(phase errors.Phase) (*modelState, error) {
	st := m.load()
	if st == nil {
		return nil, errors.Unavailable(phase, "model is not available")
	}
	return st, nil
}

// IsAvailable reports whether the model still owns a dictionary. A model
// passed as the argument of Swap becomes unavailable.
func (m *Model) IsAvailable() bool {
	return m.load() != nil
}

// Options returns a snapshot of the model options.
func (m *Model) Options() Options {
	if st := m.load(); st != nil {
		return st.opts
	}
	return DefaultOptions()
}

// Dictionary returns the loaded dictionary, or nil when unavailable.
func (m *Model) Dictionary() *dict.Dictionary {
	if st := m.load(); st != nil {
		return st.dic
	}
	return nil
}

// DictionaryInfo returns the head of the dictionary list.
func (m *Model) DictionaryInfo() *DictionaryInfo {
	if st := m.load(); st != nil {
		return st.info
	}
	return nil
}

// RequestType returns the default request flags for new lattices.
func (m *Model) RequestType() RequestType {
	return m.Options().RequestType()
}

// Theta returns the default temperature for new lattices.
func (m *Model) Theta() float64 {
	return m.Options().Theta
}

// TransitionCost returns the connection cost from right context rattr to
// left context lattr.
func (m *Model) TransitionCost(rattr, lattr uint16) (int, error) {
	st, err := m.loadAvailable(errors.PhaseLookup)
	if err != nil {
		return 0, err
	}
	return st.dic.Matrix.Cost(rattr, lattr)
}

// Swap replaces the model's dictionary and options with other's. other is
// consumed whether or not the swap succeeds.
func (m *Model) Swap(other *Model) error {
	if other == nil {
		return errors.InvalidInput(errors.PhaseLoad, "model is nil")
	}
	if other == m {
		return errors.InvalidInput(errors.PhaseLoad, "cannot swap a model with itself")
	}
	next := other.state.Swap(nil)
	if next == nil {
		return errors.Unavailable(errors.PhaseLoad, "model is not available")
	}
	cur := m.load()
	if cur == nil {
		return errors.Unavailable(errors.PhaseLoad, "model is not available")
	}
	if cur.dic.Charset != next.dic.Charset {
		return errors.Incompatible(errors.PhaseLoad,
			"incompatible dictionary charset: "+cur.dic.Charset+" != "+next.dic.Charset)
	}
	m.state.Store(next)

	Logger().Debug("model swapped",
		zap.String("from", cur.dic.Dir),
		zap.String("to", next.dic.Dir))
	return nil
}

// NewTagger returns a tagger bound to the model.
func (m *Model) NewTagger() (*Tagger, error) {
	if _, err := m.loadAvailable(errors.PhaseLoad); err != nil {
		return nil, err
	}
	return &Tagger{model: m}, nil
}

// NewLattice returns a lattice with the model's request type, theta and
// output format.
func (m *Model) NewLattice() (*Lattice, error) {
	st, err := m.loadAvailable(errors.PhaseLoad)
	if err != nil {
		return nil, err
	}
	return &Lattice{
		model:   m,
		request: st.opts.RequestType(),
		theta:   st.opts.Theta,
	}, nil
}

// Lookup returns every dictionary and unknown-word candidate starting at
// byte begin of the lattice sentence (after leading spaces) and ending no
// later than end, chained through BNext. Boundary constraints on the
// lattice filter the candidates.
func (m *Model) Lookup(l *Lattice, begin, end int) (*Node, error) {
	st, err := m.loadAvailable(errors.PhaseLookup)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, errors.InvalidInput(errors.PhaseLookup, "lattice is nil")
	}
	if begin < 0 || end > len(l.sentence) || begin > end {
		return nil, errors.OutOfRange(errors.PhaseLookup, "lookup range", [2]int{begin, end}, len(l.sentence))
	}
	return st.lookup(l, begin, end), nil
}
