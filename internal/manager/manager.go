// Package manager implements the Router Service Manager: it owns the
// register/unregister flow across the Router Registry and the three
// Aggregate List Stores, self-registers the built-in system router, and
// scans/watches a Wasm directory.
package manager

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/mcpgateway/gateway/internal/liststore"
	"github.com/mcpgateway/gateway/internal/registry"
	"github.com/mcpgateway/gateway/internal/router"
)

// WasmRouterFactory builds a Router from a *.wasm file path. Manager is
// deliberately ignorant of wazero/wasmhost internals so it can be tested
// without a real runtime; cmd/mcp-gateway wires the concrete factory.
type WasmRouterFactory func(ctx context.Context, path string) (router.Router, error)

// entry caches the unqualified descriptor lists a router advertised at
// registration time, so Unregister can remove the exact same identities it
// added without re-invoking the (possibly gone) router.
type entry struct {
	tools     []liststore.ToolItem
	resources []liststore.ResourceItem
	prompts   []liststore.PromptItem
}

// Manager coordinates the registry and the list stores. Its own
// bookkeeping (the entries map) is guarded by a plain mutex: unlike the
// mailbox components it coordinates, it carries no FIFO or
// cross-goroutine ordering invariant, just one map read-modified-written
// under register/unregister calls that are expected to be infrequent.
type Manager struct {
	log *slog.Logger

	reg       *registry.Registry
	tools     *liststore.Store[liststore.ToolItem]
	resources *liststore.Store[liststore.ResourceItem]
	prompts   *liststore.Store[liststore.PromptItem]

	mu      sync.Mutex
	entries map[string]entry
}

// New constructs a Manager over an already-running registry and list
// stores. log defaults to slog.Default() when nil.
func New(reg *registry.Registry, tools *liststore.Store[liststore.ToolItem], resources *liststore.Store[liststore.ResourceItem], prompts *liststore.Store[liststore.PromptItem], log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		log:       log,
		reg:       reg,
		tools:     tools,
		resources: resources,
		prompts:   prompts,
		entries:   make(map[string]entry),
	}
}

// Bootstrap self-registers the built-in system router, using m
// itself as the router.Catalog it reads from.
func (m *Manager) Bootstrap(ctx context.Context) error {
	return m.RegisterRouter(ctx, router.SystemRouterID, router.NewSystem(m))
}

// RegisterRouter implements the register flow: obtain the router's listings,
// insert into the registry, then fan each listing into its list store.
func (m *Manager) RegisterRouter(ctx context.Context, id string, handle router.Router) error {
	tools, err := handle.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("list tools for router %q: %w", id, err)
	}
	resources, err := handle.ListResources(ctx)
	if err != nil {
		return fmt.Errorf("list resources for router %q: %w", id, err)
	}
	prompts, err := handle.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("list prompts for router %q: %w", id, err)
	}

	if err := m.reg.Register(id, handle); err != nil {
		return err
	}

	toolItems := liststore.ToolItems(tools)
	resourceItems := liststore.ResourceItems(resources)
	promptItems := liststore.PromptItems(prompts)

	m.tools.Add(id, toolItems)
	m.resources.Add(id, resourceItems)
	m.prompts.Add(id, promptItems)

	m.mu.Lock()
	m.entries[id] = entry{tools: toolItems, resources: resourceItems, prompts: promptItems}
	m.mu.Unlock()

	m.log.Info("router registered",
		"router_id", id,
		"correlation_id", uuid.NewString(),
		"tools", len(toolItems), "resources", len(resourceItems), "prompts", len(promptItems))
	return nil
}

// UnregisterRouter implements the unregister flow: remove from the
// registry, then remove the cached identities from each list store.
func (m *Manager) UnregisterRouter(id string) {
	m.reg.Unregister(id)

	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if !ok {
		return
	}

	m.tools.Remove(id, e.tools)
	m.resources.Remove(id, e.resources)
	m.prompts.Remove(id, e.prompts)

	m.log.Info("router unregistered", "router_id", id, "correlation_id", uuid.NewString())
}

// ListRouters implements router.Catalog for the system router's catalog
// resource.
func (m *Manager) ListRouters() []router.RouterSummary {
	ids := m.reg.IDs()

	m.mu.Lock()
	defer m.mu.Unlock()

	summaries := make([]router.RouterSummary, 0, len(ids))
	for _, id := range ids {
		handle, _, found := m.reg.Lookup(id)
		if !found {
			continue
		}
		e := m.entries[id]
		summaries = append(summaries, router.RouterSummary{
			ID:            id,
			Instructions:  handle.Instructions(),
			ToolCount:     len(e.tools),
			ResourceCount: len(e.resources),
			PromptCount:   len(e.prompts),
		})
	}
	return summaries
}

// wasmRouterID derives a router id from a *.wasm file's name: its stem with
// every underscore stripped, since router ids must not contain '_'.
func wasmRouterID(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.ReplaceAll(stem, "_", "")
}

// ScanWasmDirectory registers every *.wasm file already present in dir at
// startup, before the watcher takes over.
func (m *Manager) ScanWasmDirectory(ctx context.Context, dir string, factory WasmRouterFactory) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read wasm directory %q: %w", dir, err)
	}

	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".wasm" {
			continue
		}
		path := filepath.Join(dir, de.Name())
		handle, err := factory(ctx, path)
		if err != nil {
			m.log.Error("failed to load wasm router", "path", path, "error", err)
			continue
		}
		if err := m.RegisterRouter(ctx, wasmRouterID(path), handle); err != nil {
			m.log.Error("failed to register wasm router", "path", path, "error", err)
		}
	}
	return nil
}

// WatchWasmDirectory subscribes to filesystem events on dir and applies
// the event policy below until ctx is cancelled. It returns once the
// watcher is armed; event handling continues on a background goroutine.
func (m *Manager) WatchWasmDirectory(ctx context.Context, dir string, factory WasmRouterFactory) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start wasm directory watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch wasm directory %q: %w", dir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				m.handleWasmEvent(ctx, event, factory)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				m.log.Error("wasm directory watcher error", "error", watchErr)
			}
		}
	}()
	return nil
}

// handleWasmEvent applies the Wasm directory event policy:
//   - Create of *.wasm -> register.
//   - Write (modify) with the file still present -> unregister, then register.
//   - Write with the file absent, or Remove/Rename -> unregister.
//
// Non-.wasm paths are ignored.
func (m *Manager) handleWasmEvent(ctx context.Context, event fsnotify.Event, factory WasmRouterFactory) {
	if filepath.Ext(event.Name) != ".wasm" {
		return
	}
	id := wasmRouterID(event.Name)

	switch {
	case event.Op&fsnotify.Create != 0:
		handle, err := factory(ctx, event.Name)
		if err != nil {
			m.log.Error("failed to load wasm router", "path", event.Name, "error", err)
			return
		}
		if err := m.RegisterRouter(ctx, id, handle); err != nil {
			m.log.Error("failed to register wasm router", "path", event.Name, "error", err)
		}

	case event.Op&fsnotify.Write != 0:
		m.UnregisterRouter(id)
		if _, statErr := os.Stat(event.Name); statErr != nil {
			return
		}
		handle, err := factory(ctx, event.Name)
		if err != nil {
			m.log.Error("failed to reload wasm router", "path", event.Name, "error", err)
			return
		}
		if err := m.RegisterRouter(ctx, id, handle); err != nil {
			m.log.Error("failed to re-register wasm router", "path", event.Name, "error", err)
		}

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		m.UnregisterRouter(id)
	}
}
