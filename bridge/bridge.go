package bridge

import (
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/mecab"
	"github.com/wippyai/mecab-bridge/resource"
)

// ParseEvent describes one TaggerParse call.
type ParseEvent struct {
	Err         error
	Tagger      TaggerHandle
	Lattice     LatticeHandle
	RequestType mecab.RequestType
	Bytes       int
	Duration    time.Duration
}

// ParseObserver is notified after every TaggerParse.
type ParseObserver interface {
	OnParse(ParseEvent)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// WithObserver subscribes o to handle lifecycle events.
func WithObserver(o resource.Observer) Option {
	return func(b *Bridge) { b.table.Subscribe(o) }
}

// WithParseObserver subscribes o to parse events.
func WithParseObserver(o ParseObserver) Option {
	return func(b *Bridge) { b.parseObservers = append(b.parseObservers, o) }
}

// Bridge is one flat handle surface over the engine. Every guest instance
// or foreign process gets its own Bridge, and with it its own error
// channel.
type Bridge struct {
	table    *resource.Table
	models   *resource.Slab[*modelEntry]
	taggers  *resource.Slab[*taggerEntry]
	lattices *resource.Slab[*latticeEntry]
	nodes    *resource.Slab[*nodeEntry]
	infos    *resource.Slab[*infoEntry]

	logger         *zap.Logger
	parseObservers []ParseObserver

	errMu   sync.Mutex
	lastErr *errors.Error
}

// New creates an empty bridge.
func New(opts ...Option) *Bridge {
	t := resource.NewTable()
	b := &Bridge{
		table:    t,
		models:   resource.NewSlab[*modelEntry](t, TypeModel),
		taggers:  resource.NewSlab[*taggerEntry](t, TypeTagger),
		lattices: resource.NewSlab[*latticeEntry](t, TypeLattice),
		nodes:    resource.NewSlab[*nodeEntry](t, TypeNode),
		infos:    resource.NewSlab[*infoEntry](t, TypeDictionaryInfo),
		logger:   Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// LastError returns the message of the most recent failed call, or "".
func (b *Bridge) LastError() string {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	if b.lastErr == nil {
		return ""
	}
	return b.lastErr.Error()
}

// Err returns the most recent failure as a structured error.
func (b *Bridge) Err() error {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	if b.lastErr == nil {
		return nil
	}
	return b.lastErr
}

// ClearError resets the error channel.
func (b *Bridge) ClearError() {
	b.errMu.Lock()
	b.lastErr = nil
	b.errMu.Unlock()
}

// Len returns the number of live handles of every kind.
func (b *Bridge) Len() int {
	return b.table.Len()
}

// Count returns the number of live handles of one kind.
func (b *Bridge) Count(typeID uint32) int {
	return b.table.CountType(typeID)
}

// Close releases every handle. Later calls fail with closed.
func (b *Bridge) Close() error {
	return b.table.Close()
}

// Report records err in the error channel, converting foreign errors to
// *errors.Error. It returns the recorded error, or nil for nil.
func (b *Bridge) Report(err error) error {
	return b.fail(err)
}

// fail records err in the error channel and returns it.
func (b *Bridge) fail(err error) error {
	if err == nil {
		return nil
	}
	var e *errors.Error
	if !stderrors.As(err, &e) {
		e = errors.Wrap(errors.PhaseHandle, errors.KindInvalidData, err, err.Error())
	}
	b.errMu.Lock()
	b.lastErr = e
	b.errMu.Unlock()
	b.logger.Debug("bridge call failed", zap.Error(e))
	return e
}

// handleError classifies a resource table error.
func handleError(typeID uint32, h resource.Handle, err error) *errors.Error {
	kind := errors.KindStaleHandle
	switch {
	case stderrors.Is(err, resource.ErrClosed):
		kind = errors.KindClosed
	case stderrors.Is(err, resource.ErrTypeMismatch):
		kind = errors.KindTypeMismatch
	case stderrors.Is(err, resource.ErrBorrowedView):
		kind = errors.KindBorrowedView
	case stderrors.Is(err, resource.ErrOutstandingBorrow):
		kind = errors.KindOutstandingBorrow
	case stderrors.Is(err, resource.ErrTableFull):
		kind = errors.KindUnavailable
	}
	return errors.New(errors.PhaseHandle, kind).
		Entity(TypeName(typeID), uint32(h)).
		Cause(err).
		Build()
}

func (b *Bridge) model(h ModelHandle) (*modelEntry, error) {
	e, err := b.models.Get(raw(h))
	if err != nil {
		return nil, b.fail(handleError(TypeModel, raw(h), err))
	}
	return e, nil
}

func (b *Bridge) tagger(h TaggerHandle) (*taggerEntry, error) {
	e, err := b.taggers.Get(raw(h))
	if err != nil {
		return nil, b.fail(handleError(TypeTagger, raw(h), err))
	}
	return e, nil
}

func (b *Bridge) lattice(h LatticeHandle) (*latticeEntry, error) {
	e, err := b.lattices.Get(raw(h))
	if err != nil {
		return nil, b.fail(handleError(TypeLattice, raw(h), err))
	}
	return e, nil
}

func (b *Bridge) info(h DictionaryInfoHandle) (*infoEntry, error) {
	e, err := b.infos.Get(raw(h))
	if err != nil {
		return nil, b.fail(handleError(TypeDictionaryInfo, raw(h), err))
	}
	return e, nil
}

// node resolves a node handle and checks it was issued in the lattice's
// current epoch.
func (b *Bridge) node(h NodeHandle) (*nodeEntry, error) {
	e, err := b.nodes.Get(raw(h))
	if err != nil {
		return nil, b.fail(handleError(TypeNode, raw(h), err))
	}
	if e.epoch != e.lattice.lattice.Epoch() {
		return nil, b.fail(errors.New(errors.PhaseHandle, errors.KindStaleHandle).
			Entity("node", uint32(h)).
			Detail("lattice changed since the node was issued").
			Build())
	}
	return e, nil
}

// Release releases a handle of any kind. Views fail with borrowed_view.
func (b *Bridge) Release(h uint32) error {
	e, err := b.table.Lookup(resource.Handle(h))
	if err != nil {
		return b.fail(handleError(0, resource.Handle(h), err))
	}
	return b.release(e.TypeID, resource.Handle(h))
}

// TypeOf returns the kind tag of a live handle.
func (b *Bridge) TypeOf(h uint32) (uint32, error) {
	e, err := b.table.Lookup(resource.Handle(h))
	if err != nil {
		return 0, b.fail(handleError(0, resource.Handle(h), err))
	}
	return e.TypeID, nil
}

func (b *Bridge) release(typeID uint32, h resource.Handle) error {
	if _, err := b.table.GetTyped(h, typeID); err != nil {
		return b.fail(handleError(typeID, h, err))
	}
	if _, err := b.table.Remove(h); err != nil {
		return b.fail(handleError(typeID, h, err))
	}
	b.logger.Debug("handle released",
		zap.String("kind", TypeName(typeID)),
		zap.Uint32("handle", uint32(h)))
	return nil
}

// borrow pins handles for the duration of a call and returns the release
// func.
func (b *Bridge) borrow(hs ...resource.Handle) (func(), error) {
	for i, h := range hs {
		if err := b.table.Borrow(h); err != nil {
			for _, prev := range hs[:i] {
				b.table.ReturnBorrow(prev)
			}
			e, _ := b.table.Lookup(h)
			return nil, handleError(e.TypeID, h, err)
		}
	}
	return func() {
		for _, h := range hs {
			b.table.ReturnBorrow(h)
		}
	}, nil
}
