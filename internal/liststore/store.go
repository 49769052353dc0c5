// Package liststore implements the Aggregate List Stores: three
// independent, insertion-ordered, prefix-keyed views (tools, resources,
// prompts) over everything currently registered. The mailbox discipline
// mirrors internal/registry.
package liststore

import "context"

// Keyed is implemented by a descriptor type so Store can read and rewrite
// its qualifying key (a tool/prompt name or a resource URI) without the
// store needing to know the concrete descriptor shape.
type Keyed[T any] interface {
	Key() string
	WithKey(key string) T
}

type command[T any] struct {
	kind     cmdKind
	routerID string
	items    []T
	reply    chan result[T]
}

type cmdKind int

const (
	cmdAdd cmdKind = iota
	cmdRemove
	cmdList
)

type result[T any] struct {
	items []T
}

// Store is a single-writer mailbox holding the current aggregate view for
// one descriptor kind (tools, resources, or prompts).
type Store[T Keyed[T]] struct {
	cmds chan command[T]
	done chan struct{}
}

// New starts the store's mailbox loop, stopped when ctx is cancelled.
func New[T Keyed[T]](ctx context.Context) *Store[T] {
	s := &Store[T]{
		cmds: make(chan command[T]),
		done: make(chan struct{}),
	}
	go s.loop(ctx)
	return s
}

func (s *Store[T]) loop(ctx context.Context) {
	defer close(s.done)

	// order preserves insertion order across all routers; byKey supports
	// O(1) removal by qualified key.
	var order []string
	byKey := make(map[string]T)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.cmds:
			switch cmd.kind {
			case cmdAdd:
				for _, item := range cmd.items {
					qualified := cmd.routerID + "_" + item.Key()
					rewritten := item.WithKey(qualified)
					if _, exists := byKey[qualified]; !exists {
						order = append(order, qualified)
					}
					byKey[qualified] = rewritten
				}
				cmd.reply <- result[T]{}
			case cmdRemove:
				for _, item := range cmd.items {
					qualified := cmd.routerID + "_" + item.Key()
					delete(byKey, qualified)
				}
				filtered := order[:0:0]
				for _, key := range order {
					if _, ok := byKey[key]; ok {
						filtered = append(filtered, key)
					}
				}
				order = filtered
				cmd.reply <- result[T]{}
			case cmdList:
				out := make([]T, 0, len(order))
				for _, key := range order {
					out = append(out, byKey[key])
				}
				cmd.reply <- result[T]{items: out}
			}
		}
	}
}

func (s *Store[T]) send(cmd command[T]) result[T] {
	cmd.reply = make(chan result[T], 1)
	select {
	case s.cmds <- cmd:
	case <-s.done:
		return result[T]{}
	}
	return <-cmd.reply
}

// Add prefixes each item's key with "<routerID>_" and appends it to the
// view, preserving insertion order within routerID.
func (s *Store[T]) Add(routerID string, items []T) {
	s.send(command[T]{kind: cmdAdd, routerID: routerID, items: items})
}

// Remove deletes each item (matched by its prefixed identity) from the view.
func (s *Store[T]) Remove(routerID string, items []T) {
	s.send(command[T]{kind: cmdRemove, routerID: routerID, items: items})
}

// List returns the current aggregate view.
func (s *Store[T]) List() []T {
	return s.send(command[T]{kind: cmdList}).items
}

// Done is closed once the store's mailbox loop has exited.
func (s *Store[T]) Done() <-chan struct{} {
	return s.done
}
