package hostmod

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	mecabbridge "github.com/wippyai/mecab-bridge"
	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/errors"
	"github.com/wippyai/mecab-bridge/resource"
)

// ModuleName is the import module name guests link against.
const ModuleName = "mecab"

// Option configures a Host.
type Option func(*Host)

// WithBridgeOptions passes opts to every bridge the host creates.
func WithBridgeOptions(opts ...bridge.Option) Option {
	return func(h *Host) { h.bridgeOpts = append(h.bridgeOpts, opts...) }
}

// WithLogger sets the host logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// Host serves the mecab host module. Each guest module instance that calls
// into it gets its own bridge, created on first use.
type Host struct {
	logger     *zap.Logger
	bridgeOpts []bridge.Option
	funcs      []*function

	mu        sync.Mutex
	instances map[api.Module]*instance
}

// New creates a host.
func New(opts ...Option) *Host {
	h := &Host{
		logger:    Logger(),
		instances: make(map[api.Module]*instance),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.funcs = functions()
	return h
}

// Instantiate defines the host module in r.
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(ModuleName)
	for i, f := range h.funcs {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(h.handler(uint16(i), f), f.sig.CoreParams, f.sig.CoreResults).
			WithName(f.sig.Name).
			Export(f.sig.Name)
	}
	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, fmt.Errorf("instantiate %s host module: %w", ModuleName, err)
	}
	h.logger.Debug("host module instantiated", zap.Int("functions", len(h.funcs)))
	return mod, nil
}

// Signatures lists the exported functions in export order.
func (h *Host) Signatures() []Signature {
	out := make([]Signature, len(h.funcs))
	for i, f := range h.funcs {
		out[i] = f.sig
	}
	return out
}

// Bridge returns the bridge serving mod, creating it if needed.
func (h *Host) Bridge(mod api.Module) *bridge.Bridge {
	return h.instance(mod).bridge
}

// Forget closes the bridge serving mod. Scratch regions are not returned
// to the guest: they go away with its memory.
func (h *Host) Forget(mod api.Module) error {
	h.mu.Lock()
	inst, ok := h.instances[mod]
	delete(h.instances, mod)
	h.mu.Unlock()
	if !ok {
		return nil
	}
	h.logger.Debug("guest forgotten", zap.String("module", mod.Name()))
	return inst.bridge.Close()
}

// Close forgets every guest.
func (h *Host) Close() error {
	h.mu.Lock()
	instances := h.instances
	h.instances = make(map[api.Module]*instance)
	h.mu.Unlock()

	var firstErr error
	for _, inst := range instances {
		if err := inst.bridge.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (h *Host) instance(mod api.Module) *instance {
	h.mu.Lock()
	defer h.mu.Unlock()
	if inst, ok := h.instances[mod]; ok {
		return inst
	}
	inst := &instance{
		mem:     &guestMemory{mem: mod.Memory()},
		alloc:   newGuestAllocator(mod),
		scratch: make(map[scratchKey]*mecabbridge.Scratch),
	}
	opts := append([]bridge.Option{bridge.WithLogger(h.logger)}, h.bridgeOpts...)
	opts = append(opts, bridge.WithObserver(inst))
	inst.bridge = bridge.New(opts...)
	h.instances[mod] = inst
	h.logger.Debug("guest attached", zap.String("module", mod.Name()))
	return inst
}

// handler adapts one function to the wazero calling convention and keeps
// panics on this side of the boundary.
func (h *Host) handler(slot uint16, f *function) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		inst := h.instance(mod)
		inst.mu.Lock()
		defer inst.mu.Unlock()

		inst.alloc.ctx = ctx
		c := &call{inst: inst, sig: &f.sig, stack: stack, slot: slot, failure: f.failure}
		if f.sig.RetPtr {
			c.ret = uint32(stack[len(f.sig.CoreParams)-1])
		}
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("host function panicked",
					zap.String("function", f.sig.Name),
					zap.Any("panic", r))
				c.fail(errors.New(errors.PhaseHandle, errors.KindInvalidData).
					Detail("%s", fmt.Sprintf("%s: internal error: %v", f.sig.Name, r)).
					Build())
			}
			inst.collect()
			inst.alloc.ctx = nil
		}()
		f.call(c)
	}
}

type scratchKey struct {
	handle uint32
	slot   uint16
}

// instance is the per-guest state. Calls from one guest are serialized.
type instance struct {
	bridge *bridge.Bridge
	mem    *guestMemory
	alloc  *guestAllocator

	mu sync.Mutex

	scratchMu sync.Mutex
	scratch   map[scratchKey]*mecabbridge.Scratch
	garbage   []*mecabbridge.Scratch
}

// OnResourceEvent queues the scratch regions of dropped handles. They are
// returned to the guest when the current call finishes.
func (i *instance) OnResourceEvent(e resource.Event) {
	if e.Type != resource.EventDropped {
		return
	}
	i.scratchMu.Lock()
	defer i.scratchMu.Unlock()
	for k, s := range i.scratch {
		if k.handle == uint32(e.Handle) {
			i.garbage = append(i.garbage, s)
			delete(i.scratch, k)
		}
	}
}

func (i *instance) scratchFor(handle uint32, slot uint16) *mecabbridge.Scratch {
	i.scratchMu.Lock()
	defer i.scratchMu.Unlock()
	k := scratchKey{handle: handle, slot: slot}
	s, ok := i.scratch[k]
	if !ok {
		s = &mecabbridge.Scratch{}
		i.scratch[k] = s
	}
	return s
}

func (i *instance) collect() {
	i.scratchMu.Lock()
	garbage := i.garbage
	i.garbage = nil
	i.scratchMu.Unlock()
	for _, s := range garbage {
		s.Release(i.alloc)
	}
}

func (i *instance) scratchLen() int {
	i.scratchMu.Lock()
	defer i.scratchMu.Unlock()
	return len(i.scratch)
}
