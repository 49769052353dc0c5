// Package secrets implements the Secrets Host: a key -> opaque handle
// -> value table exposed to Wasm guests, backed by the process environment
// with an optional .env overlay.
package secrets

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// ErrNotFound is returned when a key has no value in the environment, or a
// handle has no entry in the table.
var ErrNotFound = fmt.Errorf("secret not found")

// Handle is an opaque reference returned by Get and consumed by Reveal.
// Handles are never reused; dropping one is a no-op.
type Handle uint32

// Value is the revealed secret payload. String is redacted by Display to
// avoid accidental logging of the underlying value.
type Value struct {
	raw string
}

// String implements fmt.Stringer with a redacted rendering — secret values
// are never logged verbatim.
func (v Value) String() string { return "<redacted>" }

// Reveal returns the underlying secret string. Callers that need the raw
// value (e.g. the Wasm host boundary) call this explicitly rather than
// relying on formatting.
func (v Value) Reveal() string { return v.raw }

// Host is the single-writer secret table. A plain mutex is used rather than
// a mailbox goroutine: Get/Reveal have no FIFO or atomicity invariant beyond
// "one counter, one map".
type Host struct {
	mu      sync.Mutex
	next    Handle
	values  map[Handle]Value
	envFile string
	loaded  bool
}

// New constructs a Secrets Host. envFile (".env" when empty) is loaded once
// on first Get via godotenv; its entries fill in keys the process
// environment leaves unset and never override a set one. An absent file is
// not an error.
func New(envFile string) *Host {
	return &Host{
		values:  make(map[Handle]Value),
		envFile: envFile,
	}
}

func (h *Host) ensureEnvLoaded() {
	if h.loaded {
		return
	}
	h.loaded = true
	path := h.envFile
	if path == "" {
		path = ".env"
	}
	_ = godotenv.Load(path) // absent file is not an error; env-only is valid
}

// Get fetches key from the process environment (after the .env overlay),
// stores the value, and returns a new handle. Returns ErrNotFound if the
// key is unset.
func (h *Host) Get(key string) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.ensureEnvLoaded()

	raw, ok := os.LookupEnv(key)
	if !ok {
		return 0, ErrNotFound
	}

	h.next++
	handle := h.next
	h.values[handle] = Value{raw: raw}
	return handle, nil
}

// Reveal returns the value stored under handle, or ErrNotFound if no such
// handle exists.
func (h *Host) Reveal(handle Handle) (Value, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.values[handle]
	if !ok {
		return Value{}, ErrNotFound
	}
	return v, nil
}
