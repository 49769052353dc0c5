package wasmhost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcpgateway/gateway/internal/router"
)

// ErrClosed is returned for requests submitted after the router's mailbox
// loop has stopped.
var ErrClosed = errors.New("wasm router closed")

// identityTimeout bounds the identity fetch (name, instructions,
// capabilities) performed once at load time.
const identityTimeout = 10 * time.Second

// mailboxDepth is the pending-request capacity per Wasm router.
const mailboxDepth = 16

// guest abstracts the loaded component so the mailbox loop and tests don't
// depend on a live Wasm runtime.
type guest interface {
	call(ctx context.Context, export string, payload []byte) ([]byte, error)
	close(ctx context.Context) error
}

type request struct {
	export  string
	payload []byte
	reply   chan response
}

type response struct {
	data []byte
	err  error
}

// Router adapts one Wasm component to the router capability interface. A
// single goroutine owns the instance and drains the mailbox, so guest
// work is serialised FIFO per component; callers park on a reply channel
// and remain cancellable. Guest failures are reported to the caller but
// never tear down the instance — it keeps serving subsequent requests.
type Router struct {
	name         string
	instructions string
	caps         router.ServerCapabilities

	log      *slog.Logger
	mailbox  chan request
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// newRouter starts the mailbox loop around g and fetches the component's
// identity. On identity failure the loop is stopped and the guest closed.
func newRouter(ctx context.Context, g guest, log *slog.Logger) (*Router, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		log:     log,
		mailbox: make(chan request, mailboxDepth),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go r.loop(g)

	idCtx, cancel := context.WithTimeout(ctx, identityTimeout)
	defer cancel()
	if err := r.fetchIdentity(idCtx); err != nil {
		_ = r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Router) loop(g guest) {
	defer close(r.done)
	defer func() {
		if err := g.close(context.Background()); err != nil {
			r.log.Warn("closing wasm component", "router", r.name, "error", err)
		}
	}()

	for {
		select {
		case <-r.stop:
			return
		case req := <-r.mailbox:
			// The guest call runs detached from the caller's context: a
			// caller that gives up stops waiting, but in-flight guest work
			// runs to completion and its result is discarded.
			data, err := g.call(context.Background(), req.export, req.payload)
			req.reply <- response{data: data, err: err}
		}
	}
}

// Close stops the mailbox loop and waits for the component instance to be
// released. Pending requests that were never picked up report ErrClosed.
func (r *Router) Close() error {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
	return nil
}

func (r *Router) roundTrip(ctx context.Context, export string, payload []byte) ([]byte, error) {
	req := request{export: export, payload: payload, reply: make(chan response, 1)}
	select {
	case r.mailbox <- req:
	case <-r.stop:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp.data, resp.err
	case <-r.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// unwrap decodes a response envelope into T, mapping a guest-reported
// domain error through domain.
func unwrap[T any](data []byte, domain func(router.ErrorKind, string) error) (T, error) {
	var zero T
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return zero, fmt.Errorf("malformed guest response: %w", err)
	}
	if env.Error != nil {
		return zero, domain(kindFromWire(env.Error.Kind), env.Error.Message)
	}
	var out T
	if err := json.Unmarshal(env.Result, &out); err != nil {
		return zero, fmt.Errorf("malformed guest result: %w", err)
	}
	return out, nil
}

func internalErr(kind router.ErrorKind, msg string) error {
	return fmt.Errorf("wasm guest error (%s): %s", kind, msg)
}

func toolErr(kind router.ErrorKind, msg string) error {
	return &router.ToolError{Kind: kind, Message: msg}
}

func resourceErr(kind router.ErrorKind, msg string) error {
	return &router.ResourceError{Kind: kind, Message: msg}
}

func promptErr(kind router.ErrorKind, msg string) error {
	return &router.PromptError{Kind: kind, Message: msg}
}

func (r *Router) fetchIdentity(ctx context.Context) error {
	data, err := r.roundTrip(ctx, exportName, nil)
	if err != nil {
		return fmt.Errorf("query component name: %w", err)
	}
	if r.name, err = unwrap[string](data, internalErr); err != nil {
		return fmt.Errorf("query component name: %w", err)
	}

	data, err = r.roundTrip(ctx, exportInstructions, nil)
	if err != nil {
		return fmt.Errorf("query component instructions: %w", err)
	}
	if r.instructions, err = unwrap[string](data, internalErr); err != nil {
		return fmt.Errorf("query component instructions: %w", err)
	}

	data, err = r.roundTrip(ctx, exportCapabilities, nil)
	if err != nil {
		return fmt.Errorf("query component capabilities: %w", err)
	}
	wc, err := unwrap[wireCapabilities](data, internalErr)
	if err != nil {
		return fmt.Errorf("query component capabilities: %w", err)
	}
	r.caps = capabilitiesFromWire(wc)
	return nil
}

func (r *Router) Name() string         { return r.name }
func (r *Router) Instructions() string { return r.instructions }

func (r *Router) Capabilities() router.ServerCapabilities { return r.caps }

func (r *Router) ListTools(ctx context.Context) ([]router.Tool, error) {
	data, err := r.roundTrip(ctx, exportListTools, nil)
	if err != nil {
		return nil, err
	}
	wire, err := unwrap[[]wireTool](data, internalErr)
	if err != nil {
		return nil, err
	}
	tools := make([]router.Tool, 0, len(wire))
	for _, t := range wire {
		tools = append(tools, toolFromWire(t))
	}
	return tools, nil
}

func (r *Router) ListResources(ctx context.Context) ([]router.Resource, error) {
	data, err := r.roundTrip(ctx, exportListResources, nil)
	if err != nil {
		return nil, err
	}
	wire, err := unwrap[[]wireResource](data, internalErr)
	if err != nil {
		return nil, err
	}
	resources := make([]router.Resource, 0, len(wire))
	for _, res := range wire {
		resources = append(resources, resourceFromWire(res))
	}
	return resources, nil
}

func (r *Router) ListPrompts(ctx context.Context) ([]router.Prompt, error) {
	data, err := r.roundTrip(ctx, exportListPrompts, nil)
	if err != nil {
		return nil, err
	}
	wire, err := unwrap[[]wirePrompt](data, internalErr)
	if err != nil {
		return nil, err
	}
	prompts := make([]router.Prompt, 0, len(wire))
	for _, p := range wire {
		prompts = append(prompts, promptFromWire(p))
	}
	return prompts, nil
}

func (r *Router) CallTool(ctx context.Context, name string, args map[string]interface{}) (*router.CallToolResult, error) {
	payload, err := json.Marshal(callToolRequest{Name: name, Arguments: args})
	if err != nil {
		return nil, err
	}
	data, err := r.roundTrip(ctx, exportCallTool, payload)
	if err != nil {
		return nil, err
	}
	wire, err := unwrap[wireCallToolResult](data, toolErr)
	if err != nil {
		return nil, err
	}
	return callToolResultFromWire(wire), nil
}

func (r *Router) ReadResource(ctx context.Context, uri string) (*router.ReadResourceResult, error) {
	payload, err := json.Marshal(readResourceRequest{URI: uri})
	if err != nil {
		return nil, err
	}
	data, err := r.roundTrip(ctx, exportReadResource, payload)
	if err != nil {
		return nil, err
	}
	wire, err := unwrap[wireReadResourceResult](data, resourceErr)
	if err != nil {
		return nil, err
	}
	return readResourceResultFromWire(wire), nil
}

func (r *Router) GetPrompt(ctx context.Context, name string) (*router.GetPromptResult, error) {
	payload, err := json.Marshal(getPromptRequest{Name: name})
	if err != nil {
		return nil, err
	}
	data, err := r.roundTrip(ctx, exportGetPrompt, payload)
	if err != nil {
		return nil, err
	}
	wire, err := unwrap[wireGetPromptResult](data, promptErr)
	if err != nil {
		return nil, err
	}
	return getPromptResultFromWire(wire), nil
}

var _ router.Router = (*Router)(nil)
