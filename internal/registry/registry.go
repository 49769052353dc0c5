// Package registry implements the Router Registry: a mapping from
// RouterId to router handle, with atomic register/unregister and the
// namespace-split lookup algorithm.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mcpgateway/gateway/internal/router"
)

// ErrReservedChar is returned when a router id contains the namespace
// separator.
var ErrReservedChar = errors.New("router id must not contain '_'")

// ErrAlreadyRegistered is returned when register is called with an id that
// is already present.
var ErrAlreadyRegistered = errors.New("router id already registered")

type command struct {
	kind   cmdKind
	id     string
	handle router.Router
	reply  chan result
}

type cmdKind int

const (
	cmdRegister cmdKind = iota
	cmdUnregister
	cmdLookup
	cmdSnapshot
)

type result struct {
	handle router.Router
	local  string
	found  bool
	err    error
	ids    []string
}

// Registry is the single-writer mailbox that owns the RouterId -> Router
// mapping. All mutation and lookup is serialized through its command
// channel, keeping register/unregister atomic without
// internal locks.
type Registry struct {
	cmds chan command
	done chan struct{}
}

// New starts the registry's mailbox loop. Cancel ctx to stop it.
func New(ctx context.Context) *Registry {
	r := &Registry{
		cmds: make(chan command),
		done: make(chan struct{}),
	}
	go r.loop(ctx)
	return r
}

func (r *Registry) loop(ctx context.Context) {
	defer close(r.done)
	routers := make(map[string]router.Router)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-r.cmds:
			switch cmd.kind {
			case cmdRegister:
				if strings.Contains(cmd.id, "_") {
					cmd.reply <- result{err: ErrReservedChar}
					continue
				}
				if _, exists := routers[cmd.id]; exists {
					cmd.reply <- result{err: ErrAlreadyRegistered}
					continue
				}
				routers[cmd.id] = cmd.handle
				cmd.reply <- result{}
			case cmdUnregister:
				delete(routers, cmd.id)
				cmd.reply <- result{}
			case cmdLookup:
				routerID, local := SplitQualified(cmd.id)
				handle, found := routers[routerID]
				cmd.reply <- result{handle: handle, local: local, found: found}
			case cmdSnapshot:
				ids := make([]string, 0, len(routers))
				for id := range routers {
					ids = append(ids, id)
				}
				cmd.reply <- result{ids: ids}
			}
		}
	}
}

// SplitQualified splits a qualified name at the first '_';
// if none is present, the whole string is both router id and local name.
// Exported so callers (e.g. the dispatcher) can build error messages
// referencing the router-id half without duplicating the split logic.
func SplitQualified(qualified string) (routerID, local string) {
	idx := strings.IndexByte(qualified, '_')
	if idx < 0 {
		return qualified, qualified
	}
	return qualified[:idx], qualified[idx+1:]
}

func (r *Registry) send(cmd command) result {
	cmd.reply = make(chan result, 1)
	select {
	case r.cmds <- cmd:
	case <-r.done:
		return result{err: fmt.Errorf("registry closed")}
	}
	return <-cmd.reply
}

// Register installs handle under id. Fails if id contains '_' or is already
// registered.
func (r *Registry) Register(id string, handle router.Router) error {
	return r.send(command{kind: cmdRegister, id: id, handle: handle}).err
}

// Unregister removes id. Idempotent: unregistering an absent id is not an
// error.
func (r *Registry) Unregister(id string) {
	r.send(command{kind: cmdUnregister, id: id})
}

// Lookup splits qualifiedName at its first '_' and returns the router bound
// to the router-id prefix, plus the unqualified local name. found is false
// when no router is registered under that prefix.
func (r *Registry) Lookup(qualifiedName string) (handle router.Router, local string, found bool) {
	res := r.send(command{kind: cmdLookup, id: qualifiedName})
	return res.handle, res.local, res.found
}

// IDs returns a snapshot of every currently-registered router id.
func (r *Registry) IDs() []string {
	return r.send(command{kind: cmdSnapshot}).ids
}

// Done is closed once the registry's mailbox loop has exited (its owning
// context was cancelled). Callers that need a clean shutdown barrier —
// tests in particular — can block on it.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}
