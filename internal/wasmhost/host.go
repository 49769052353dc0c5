package wasmhost

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/mcpgateway/gateway/internal/secrets"
)

// Runtime owns the shared wazero runtime, the WASI imports, and the
// secrets import module. One Runtime loads many components; each Load
// yields an independently instantiated Router.
type Runtime struct {
	rt      wazero.Runtime
	secrets *secrets.Host
	log     *slog.Logger
}

// NewRuntime compiles nothing up front: it instantiates the WASI preview 1
// imports plus the secrets import module and is then ready to Load
// components.
func NewRuntime(ctx context.Context, secretsHost *secrets.Host, log *slog.Logger) (*Runtime, error) {
	if log == nil {
		log = slog.Default()
	}
	rt := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	r := &Runtime{rt: rt, secrets: secretsHost, log: log}
	if err := r.instantiateSecretsModule(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return r, nil
}

// Close releases the runtime and every module instantiated from it.
func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

// Load reads, compiles, and instantiates path, then wraps the instance in
// a mailbox-backed Router. The instance name is the file stem so multiple
// components coexist in one runtime.
func (r *Runtime) Load(ctx context.Context, path string) (*Router, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wasm component: %w", err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mod, err := r.rt.InstantiateWithConfig(ctx, wasmBytes,
		wazero.NewModuleConfig().WithName(stem))
	if err != nil {
		return nil, fmt.Errorf("instantiate wasm component %q: %w", path, err)
	}

	g := &wazeroGuest{mod: mod}
	handle, err := newRouter(ctx, g, r.log.With("component", stem))
	if err != nil {
		return nil, fmt.Errorf("load wasm router %q: %w", path, err)
	}
	return handle, nil
}

// instantiateSecretsModule exposes the secrets capability to guests:
//
//	get(keyPtr, keyLen u32) -> u32 handle, 0 when the key is unset
//	reveal(handle u32) -> u64 packed ptr/len of the value, 0 when unknown
//
// reveal writes the value into guest memory through the guest's own
// allocator, so the returned region is owned (and freed) by the guest.
func (r *Runtime) instantiateSecretsModule(ctx context.Context) error {
	_, err := r.rt.NewHostModuleBuilder(SecretsModule).
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, keyPtr, keyLen uint32) uint32 {
			key, ok := mod.Memory().Read(keyPtr, keyLen)
			if !ok {
				return 0
			}
			handle, err := r.secrets.Get(string(key))
			if err != nil {
				return 0
			}
			return uint32(handle)
		}).
		Export("get").
		NewFunctionBuilder().
		WithFunc(func(ctx context.Context, mod api.Module, handle uint32) uint64 {
			value, err := r.secrets.Reveal(secrets.Handle(handle))
			if err != nil {
				return 0
			}
			raw := []byte(value.Reveal())
			ptr, ok := guestAlloc(ctx, mod, raw)
			if !ok {
				return 0
			}
			return uint64(ptr)<<32 | uint64(len(raw))
		}).
		Export("reveal").
		Instantiate(ctx)
	return err
}

// guestAlloc writes data into guest memory via the guest's allocate
// export, returning the guest pointer.
func guestAlloc(ctx context.Context, mod api.Module, data []byte) (uint32, bool) {
	alloc := mod.ExportedFunction(exportAllocate)
	if alloc == nil || len(data) == 0 {
		return 0, false
	}
	results, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil || len(results) == 0 || results[0] == 0 {
		return 0, false
	}
	ptr := uint32(results[0])
	if !mod.Memory().Write(ptr, data) {
		return 0, false
	}
	return ptr, true
}

// wazeroGuest drives one instantiated component through the JSON ABI.
type wazeroGuest struct {
	mod api.Module
}

func (g *wazeroGuest) call(ctx context.Context, export string, payload []byte) ([]byte, error) {
	fn := g.mod.ExportedFunction(export)
	if fn == nil {
		return nil, fmt.Errorf("component does not export %q", export)
	}

	var ptr uint64
	if len(payload) > 0 {
		p, ok := guestAlloc(ctx, g.mod, payload)
		if !ok {
			return nil, fmt.Errorf("allocate %d bytes in guest for %q", len(payload), export)
		}
		ptr = uint64(p)
	}

	results, callErr := fn.Call(ctx, ptr, uint64(len(payload)))

	if dealloc := g.mod.ExportedFunction(exportDeallocate); dealloc != nil && ptr != 0 {
		_, _ = dealloc.Call(ctx, ptr, uint64(len(payload)))
	}

	if callErr != nil {
		return nil, fmt.Errorf("call %q: %w", export, callErr)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("call %q: no result", export)
	}

	outPtr := uint32(results[0] >> 32)
	outLen := uint32(results[0])
	out, ok := g.mod.Memory().Read(outPtr, outLen)
	if !ok {
		return nil, fmt.Errorf("call %q: result (%d,%d) out of guest memory bounds", export, outPtr, outLen)
	}
	// Copy before the guest reclaims the region.
	data := make([]byte, len(out))
	copy(data, out)

	if dealloc := g.mod.ExportedFunction(exportDeallocate); dealloc != nil && outPtr != 0 {
		_, _ = dealloc.Call(ctx, uint64(outPtr), uint64(outLen))
	}
	return data, nil
}

func (g *wazeroGuest) close(ctx context.Context) error {
	return g.mod.Close(ctx)
}
