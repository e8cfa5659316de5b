package mecab

import (
	"bytes"
	"iter"
	"strconv"

	mecabbridge "github.com/wippyai/mecab-bridge"
	"github.com/wippyai/mecab-bridge/errors"
)

// Lattice holds one sentence, its constraints and the analysis graph.
// A lattice is used by one goroutine at a time.
type Lattice struct {
	model *Model

	sentence []byte
	request  RequestType
	theta    float64
	z        float64
	what     string

	result    []byte
	hasResult bool

	boundary []BoundaryType
	features map[int]string

	beginNodes []*Node
	endNodes   []*Node
	bos        *Node
	eos        *Node
	nodes      []*Node
	order      []*Node
	path       []*Node
	nbest      *nbestGenerator

	// request type the current analysis was made with
	parsedRequest RequestType

	state State
	epoch uint64
	out   bytes.Buffer
}

// NewLattice returns a standalone lattice: one-best requests, default
// theta and the default lattice output format. It can be parsed by any
// tagger.
func NewLattice() *Lattice {
	return &Lattice{request: OneBest, theta: DefaultTheta}
}

// SetSentence copies b into the lattice. Constraints and any previous
// analysis are dropped.
func (l *Lattice) SetSentence(b []byte) {
	l.sentence = append([]byte(nil), b...)
	l.boundary = nil
	l.features = nil
	l.resetGraph()
	if len(l.sentence) == 0 {
		l.state = Empty
	} else {
		l.state = Ready
	}
	l.epoch++
}

// Clear drops sentence, analysis, constraints and Z. Theta and the
// request type are kept.
func (l *Lattice) Clear() {
	l.sentence = nil
	l.boundary = nil
	l.features = nil
	l.resetGraph()
	l.state = Empty
	l.epoch++
}

func (l *Lattice) resetGraph() {
	l.beginNodes = nil
	l.endNodes = nil
	l.bos = nil
	l.eos = nil
	l.nodes = nil
	l.order = nil
	l.path = nil
	l.nbest = nil
	l.parsedRequest = 0
	l.z = 0
	l.result = nil
	l.hasResult = false
	l.out.Reset()
}

// prepare sizes the node lists for a fresh analysis.
func (l *Lattice) prepare() {
	l.resetGraph()
	l.beginNodes = make([]*Node, len(l.sentence)+1)
	l.endNodes = make([]*Node, len(l.sentence)+1)
	l.epoch++
}

func (l *Lattice) newNode() *Node {
	n := &Node{lattice: l, id: uint32(len(l.nodes))}
	l.nodes = append(l.nodes, n)
	return n
}

// NewNode allocates an empty node in the lattice arena for manual lattice
// building.
func (l *Lattice) NewNode() *Node {
	return l.newNode()
}

func (l *Lattice) Sentence() []byte { return l.sentence }
func (l *Lattice) Size() int { return len(l.sentence) }
func (l *Lattice) State() State { return l.state }
func (l *Lattice) Epoch() uint64 { return l.epoch }
func (l *Lattice) BOSNode() *Node { return l.bos }
func (l *Lattice) EOSNode() *Node { return l.eos }
func (l *Lattice) Z() float64 { return l.z }
func (l *Lattice) SetZ(z float64) { l.z = z }
func (l *Lattice) Theta() float64 { return l.theta }

// SetTheta sets the marginal-probability temperature used by the next parse.
func (l *Lattice) SetTheta(theta float64) { l.theta = theta }

// IsAvailable reports whether the lattice holds a sentence to parse.
func (l *Lattice) IsAvailable() bool {
	return len(l.sentence) > 0
}

func (l *Lattice) What() string { return l.what }
func (l *Lattice) SetWhat(what string) { l.what = what }

// fail records err as the lattice error message and returns it.
func (l *Lattice) fail(err *errors.Error) error {
	l.what = err.Message()
	return err
}

func (l *Lattice) RequestType() RequestType { return l.request }
func (l *Lattice) SetRequestType(r RequestType) { l.request = r }
func (l *Lattice) AddRequestType(r RequestType) { l.request |= r }
func (l *Lattice) RemoveRequestType(r RequestType) { l.request &^= r }
func (l *Lattice) HasRequestType(r RequestType) bool { return l.request.Has(r) }

// HasConstraint reports whether any boundary or feature constraint is set.
func (l *Lattice) HasConstraint() bool {
	return l.boundary != nil || len(l.features) > 0
}

// BoundaryConstraint returns the constraint at byte offset pos.
func (l *Lattice) BoundaryConstraint(pos int) BoundaryType {
	if pos < 0 || pos >= len(l.boundary) {
		return AnyBoundary
	}
	return l.boundary[pos]
}

// SetBoundaryConstraint constrains the boundary at byte offset pos,
// 0 <= pos <= Size().
func (l *Lattice) SetBoundaryConstraint(pos int, t BoundaryType) error {
	if pos < 0 || pos > len(l.sentence) {
		return l.fail(errors.OutOfRange(errors.PhaseParse, "boundary position", pos, len(l.sentence)))
	}
	if t < AnyBoundary || t > InsideToken {
		return l.fail(errors.InvalidInput(errors.PhaseParse, "invalid boundary type "+strconv.Itoa(int(t))))
	}
	if l.boundary == nil {
		l.boundary = make([]BoundaryType, len(l.sentence)+1)
	}
	l.boundary[pos] = t
	return nil
}

// FeatureConstraint returns the feature pattern of a span starting at pos.
func (l *Lattice) FeatureConstraint(pos int) (string, bool) {
	f, ok := l.features[pos]
	return f, ok
}

// SetFeatureConstraint forces a morpheme over [begin, end). Token
// boundaries are set at both ends and the inside is marked INSIDE_TOKEN.
// A feature of "*" keeps dictionary nodes with exactly this span; any
// other value keeps the dictionary nodes it partially matches, or forces
// a node carrying the feature when none does.
func (l *Lattice) SetFeatureConstraint(begin, end int, feature string) error {
	if begin < 0 || end > len(l.sentence) || begin >= end {
		return l.fail(errors.InvalidInput(errors.PhaseParse,
			"invalid constraint span ["+strconv.Itoa(begin)+", "+strconv.Itoa(end)+")"))
	}
	if feature == "" {
		return l.fail(errors.InvalidInput(errors.PhaseParse, "empty feature constraint"))
	}
	if err := l.SetBoundaryConstraint(begin, TokenBoundary); err != nil {
		return err
	}
	if err := l.SetBoundaryConstraint(end, TokenBoundary); err != nil {
		return err
	}
	for i := begin + 1; i < end; i++ {
		l.boundary[i] = InsideToken
	}
	if l.features == nil {
		l.features = make(map[int]string)
	}
	l.features[begin] = feature
	return nil
}

// validSpan reports whether a morpheme over [b, e) respects the boundary
// constraints.
func (l *Lattice) validSpan(b, e int) bool {
	if l.boundary == nil {
		return true
	}
	if l.BoundaryConstraint(b) == InsideToken {
		return false
	}
	if e < len(l.sentence) && l.BoundaryConstraint(e) == InsideToken {
		return false
	}
	for i := b + 1; i < e; i++ {
		if l.boundary[i] == TokenBoundary {
			return false
		}
	}
	return true
}

// BeginNodes returns the head of the BNext chain of nodes starting at pos.
func (l *Lattice) BeginNodes(pos int) *Node {
	if pos < 0 || pos >= len(l.beginNodes) {
		return nil
	}
	return l.beginNodes[pos]
}

// EndNodes returns the head of the ENext chain of nodes ending at pos.
func (l *Lattice) EndNodes(pos int) *Node {
	if pos < 0 || pos >= len(l.endNodes) {
		return nil
	}
	return l.endNodes[pos]
}

// Nodes iterates the current result chain from BOS to EOS.
func (l *Lattice) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := l.bos; n != nil; n = n.next {
			if !yield(n) {
				return
			}
		}
	}
}

// NodesReverse iterates the current result chain from EOS to BOS.
func (l *Lattice) NodesReverse() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for n := l.eos; n != nil; n = n.prev {
			if !yield(n) {
				return
			}
		}
	}
}

// chain returns the nodes strictly between BOS and EOS.
func (l *Lattice) chain() []*Node {
	if l.bos == nil {
		return nil
	}
	var out []*Node
	for n := l.bos.next; n != nil && n != l.eos; n = n.next {
		out = append(out, n)
	}
	return out
}

// setPath links nodes into the result chain and marks them best.
func (l *Lattice) setPath(nodes []*Node) {
	for _, n := range l.nodes {
		n.isbest = false
	}
	prev := l.bos
	prev.prev = nil
	prev.isbest = true
	for _, n := range nodes {
		prev.next = n
		n.prev = prev
		n.isbest = true
		prev = n
	}
	prev.next = l.eos
	l.eos.prev = prev
	l.eos.next = nil
	l.eos.isbest = true
	l.path = nodes
}

// linkAll chains every node in begin order, keeping the best flags.
func (l *Lattice) linkAll() {
	prev := l.bos
	for pos := 0; pos < len(l.sentence); pos++ {
		for n := l.beginNodes[pos]; n != nil; n = n.bnext {
			prev.next = n
			n.prev = prev
			prev = n
		}
	}
	prev.next = l.eos
	l.eos.prev = prev
}

func (l *Lattice) parsed() bool {
	return l.state == Parsed || l.state == Enumerating
}

// nbestReady fails unless the current analysis was made with the NBEST
// request. Request type changes after a parse apply to the next parse.
func (l *Lattice) nbestReady(phase errors.Phase) error {
	if !l.parsed() {
		if !l.request.Has(NBest) {
			return l.fail(errors.Unavailable(phase, "MECAB_NBEST request type is not set"))
		}
		return l.fail(errors.Unavailable(phase, "lattice is not parsed"))
	}
	if !l.parsedRequest.Has(NBest) || l.nbest == nil {
		return l.fail(errors.Unavailable(phase, "MECAB_NBEST request type is not set"))
	}
	return nil
}

// Next moves the result chain to the next-best analysis. It returns false
// once the analyses are exhausted, leaving the graph unchanged, or when
// the current analysis was not made with the NBEST request (see What).
func (l *Lattice) Next() bool {
	ok, _ := l.Advance()
	return ok
}

// Advance is Next with the misuse error returned. Exhaustion is not an
// error.
func (l *Lattice) Advance() (bool, error) {
	if err := l.nbestReady(errors.PhaseParse); err != nil {
		return false, err
	}
	p, ok := l.nbest.next()
	if !ok {
		return false, nil
	}
	l.setPath(p)
	l.result = nil
	l.hasResult = false
	l.state = Enumerating
	l.epoch++
	return true, nil
}

// SetResult overrides the string ToBytes returns until the next mutation.
func (l *Lattice) SetResult(s []byte) {
	l.result = append(l.result[:0], s...)
	l.hasResult = true
}

func (l *Lattice) writer() *writer {
	if l.model != nil {
		if st := l.model.load(); st != nil {
			return st.writer
		}
	}
	return defaultWriter
}

// ToBytes formats the current result with the model's output format. The
// returned slice is owned by the lattice and valid until the next call on
// it.
func (l *Lattice) ToBytes() ([]byte, error) {
	if l.hasResult {
		return l.result, nil
	}
	if !l.parsed() {
		return nil, l.fail(errors.Unavailable(errors.PhaseFormat, "lattice is not parsed"))
	}
	l.out.Reset()
	if err := l.writer().write(&l.out, l, l.chain()); err != nil {
		return nil, l.fail(toError(errors.PhaseFormat, err))
	}
	return l.out.Bytes(), nil
}

// ToBuffer writes ToBytes into dst. Nothing is written when it does not
// fit.
func (l *Lattice) ToBuffer(dst []byte) (int, error) {
	b, err := l.ToBytes()
	if err != nil {
		return 0, err
	}
	return l.copyOut(dst, b)
}

// NBestBytes formats up to n best analyses followed by the end-of-N-best
// format. The Next cursor does not move. The current analysis must have
// been made with the NBEST request.
func (l *Lattice) NBestBytes(n int) ([]byte, error) {
	if err := l.nbestReady(errors.PhaseFormat); err != nil {
		return nil, err
	}
	if n < 1 || n > MaxNBest {
		return nil, l.fail(errors.OutOfRange(errors.PhaseFormat, "nbest size", n, MaxNBest))
	}
	w := l.writer()
	gen := newNBestGenerator(l)
	l.out.Reset()
	for i := 0; i < n; i++ {
		p, ok := gen.next()
		if !ok {
			break
		}
		if err := w.write(&l.out, l, p); err != nil {
			return nil, l.fail(toError(errors.PhaseFormat, err))
		}
	}
	if err := w.writeEON(&l.out, l); err != nil {
		return nil, l.fail(toError(errors.PhaseFormat, err))
	}
	return l.out.Bytes(), nil
}

// NBestBuffer writes NBestBytes into dst.
func (l *Lattice) NBestBuffer(n int, dst []byte) (int, error) {
	b, err := l.NBestBytes(n)
	if err != nil {
		return 0, err
	}
	return l.copyOut(dst, b)
}

// NodeBytes formats one node with the node, unknown, BOS or EOS format
// matching its status.
func (l *Lattice) NodeBytes(n *Node) ([]byte, error) {
	if n == nil || n.lattice != l {
		return nil, l.fail(errors.InvalidInput(errors.PhaseFormat, "node does not belong to this lattice"))
	}
	l.out.Reset()
	if err := l.writer().writeNode(&l.out, l, n); err != nil {
		return nil, l.fail(toError(errors.PhaseFormat, err))
	}
	return l.out.Bytes(), nil
}

// NodeBuffer writes NodeBytes into dst.
func (l *Lattice) NodeBuffer(n *Node, dst []byte) (int, error) {
	b, err := l.NodeBytes(n)
	if err != nil {
		return 0, err
	}
	return l.copyOut(dst, b)
}

func (l *Lattice) copyOut(dst, src []byte) (int, error) {
	n, err := mecabbridge.CopyBounded(dst, src)
	if err != nil {
		l.what = "output buffer overflow"
		return 0, err
	}
	return n, nil
}

func toError(phase errors.Phase, err error) *errors.Error {
	if e, ok := err.(*errors.Error); ok {
		return e
	}
	return errors.Wrap(phase, errors.KindInvalidData, err, err.Error())
}

func errOutOfSentence(begin, length, size int) error {
	return errors.OutOfRange(errors.PhaseParse, "span",
		"["+strconv.Itoa(begin)+", "+strconv.Itoa(begin+length)+")", size)
}
