// Package session implements the Client Session Registry: one bounded
// outbound event queue per live SSE stream, identified by a randomly drawn
// u64 unique among live sessions.
package session

import (
	"context"
	"crypto/rand"
	"encoding/binary"
)

// DefaultQueueDepth is the outbound channel capacity used when the caller
// does not specify one.
const DefaultQueueDepth = 64

type cmdKind int

const (
	cmdRegister cmdKind = iota
	cmdDeregister
	cmdNotify
	cmdBroadcast
)

type registerReply struct {
	id       uint64
	outbound chan []byte
}

type command struct {
	kind     cmdKind
	id       uint64
	depth    int
	msg      []byte
	replyReg chan registerReply
}

// Registry is the single-writer mailbox owning every live session's
// outbound queue.
type Registry struct {
	cmds chan command
	done chan struct{}
}

// New starts the session registry's mailbox loop, stopped when ctx is
// cancelled.
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

	sessions := make(map[uint64]chan []byte)

	for {
		select {
		case <-ctx.Done():
			for _, ch := range sessions {
				close(ch)
			}
			return
		case cmd := <-r.cmds:
			switch cmd.kind {
			case cmdRegister:
				depth := cmd.depth
				if depth <= 0 {
					depth = DefaultQueueDepth
				}
				id := randomUnusedID(sessions)
				ch := make(chan []byte, depth)
				sessions[id] = ch
				cmd.replyReg <- registerReply{id: id, outbound: ch}
			case cmdDeregister:
				if ch, ok := sessions[cmd.id]; ok {
					delete(sessions, cmd.id)
					close(ch)
				}
			case cmdNotify:
				if ch, ok := sessions[cmd.id]; ok {
					select {
					case ch <- cmd.msg:
					default:
						// Queue full: best-effort delivery, no back-pressure
						// to the producer.
					}
				}
				// Session gone: silent no-op.
			case cmdBroadcast:
				for _, ch := range sessions {
					select {
					case ch <- cmd.msg:
					default:
					}
				}
			}
		}
	}
}

func randomUnusedID(existing map[uint64]chan []byte) uint64 {
	for {
		id := randomUint64()
		if _, taken := existing[id]; !taken {
			return id
		}
	}
}

func randomUint64() uint64 {
	var buf [8]byte
	// crypto/rand.Read on a fixed-size buffer never returns a short read or
	// error on supported platforms; a zero id is a valid (if unlikely)
	// outcome and handled like any other.
	_, _ = rand.Read(buf[:])
	return binary.BigEndian.Uint64(buf[:])
}

// Register allocates a new session with the given outbound queue depth
// (DefaultQueueDepth if <= 0) and returns its freshly drawn id plus a
// receive-only handle on its outbound queue. Session destruction is
// triggered by the caller invoking Deregister when its SSE stream
// closes.
func (r *Registry) Register(depth int) (id uint64, outbound <-chan []byte) {
	reply := make(chan registerReply, 1)
	select {
	case r.cmds <- command{kind: cmdRegister, depth: depth, replyReg: reply}:
	case <-r.done:
		return 0, nil
	}
	res := <-reply
	return res.id, res.outbound
}

// Deregister drops id's outbound queue. Subsequent Notify calls for id
// become no-ops.
func (r *Registry) Deregister(id uint64) {
	select {
	case r.cmds <- command{kind: cmdDeregister, id: id}:
	case <-r.done:
	}
}

// Notify enqueues msg (the JSON encoding of a JSON-RPC message) on session
// id's outbound queue. Fails silently if the session is gone or its queue
// is full.
func (r *Registry) Notify(id uint64, msg []byte) {
	select {
	case r.cmds <- command{kind: cmdNotify, id: id, msg: msg}:
	case <-r.done:
	}
}

// Broadcast enqueues msg to every live session on a best-effort basis.
func (r *Registry) Broadcast(msg []byte) {
	select {
	case r.cmds <- command{kind: cmdBroadcast, msg: msg}:
	case <-r.done:
	}
}

// Done is closed once the session registry's mailbox loop has exited.
func (r *Registry) Done() <-chan struct{} {
	return r.done
}
