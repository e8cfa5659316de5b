package hostmod

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"
)

// Config holds the runtime settings for running guests.
type Config struct {
	// MemoryLimitPages caps guest memory in 64KiB pages.
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32

	// WASI exposes wasi_snapshot_preview1 to the guest.
	WASI bool
}

// NewRuntime creates a wazero runtime with the mecab host module and,
// when requested, WASI preview1 instantiated.
func (h *Host) NewRuntime(ctx context.Context, cfg Config) (wazero.Runtime, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	r := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if cfg.WASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
			r.Close(ctx)
			return nil, fmt.Errorf("instantiate WASI: %w", err)
		}
	}
	if _, err := h.Instantiate(ctx, r); err != nil {
		r.Close(ctx)
		return nil, err
	}
	return r, nil
}

// RunConfig describes one guest run.
type RunConfig struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run instantiates a WASI command guest against r, which must come from
// NewRuntime with WASI enabled, and runs its _start. The guest's bridge is
// forgotten when it exits. The exit code is returned.
func (h *Host) Run(ctx context.Context, r wazero.Runtime, wasm []byte, rc RunConfig) (uint32, error) {
	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		return 0, fmt.Errorf("compile guest: %w", err)
	}
	defer compiled.Close(ctx)

	for _, fn := range compiled.ImportedFunctions() {
		module, name, _ := fn.Import()
		if module == ModuleName && !h.exports(name) {
			return 0, fmt.Errorf("guest imports unknown function %s.%s", module, name)
		}
	}

	name := rc.Name
	if name == "" {
		name = "guest"
	}
	modCfg := wazero.NewModuleConfig().
		WithName(name).
		WithArgs(append([]string{name}, rc.Args...)...)
	if rc.Stdin != nil {
		modCfg = modCfg.WithStdin(rc.Stdin)
	}
	if rc.Stdout != nil {
		modCfg = modCfg.WithStdout(rc.Stdout)
	}
	if rc.Stderr != nil {
		modCfg = modCfg.WithStderr(rc.Stderr)
	}

	// a guest that calls proc_exit comes back without its module
	defer h.forgetNamed(name)
	mod, err := r.InstantiateModule(ctx, compiled, modCfg)
	if mod != nil {
		defer mod.Close(ctx)
	}
	if err != nil {
		if exit, ok := err.(*sys.ExitError); ok {
			h.logger.Debug("guest exited", zap.String("module", name), zap.Uint32("code", exit.ExitCode()))
			return exit.ExitCode(), nil
		}
		return 0, fmt.Errorf("run guest: %w", err)
	}
	return 0, nil
}

func (h *Host) forgetNamed(name string) {
	h.mu.Lock()
	var mods []api.Module
	for mod := range h.instances {
		if mod.Name() == name {
			mods = append(mods, mod)
		}
	}
	h.mu.Unlock()
	for _, mod := range mods {
		h.Forget(mod)
	}
}

func (h *Host) exports(name string) bool {
	for _, f := range h.funcs {
		if f.sig.Name == name {
			return true
		}
	}
	return false
}
