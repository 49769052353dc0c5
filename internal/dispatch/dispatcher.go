// Package dispatch implements the Request Dispatcher: parses MCP
// requests, selects the list-store or per-router path, rewrites parameters,
// forwards with a bounded timeout, and builds the response.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mcpgateway/gateway/internal/initialize"
	"github.com/mcpgateway/gateway/internal/liststore"
	"github.com/mcpgateway/gateway/internal/registry"
	"github.com/mcpgateway/gateway/internal/router"
	"github.com/mcpgateway/gateway/pkg/jsonrpc"
)

// Config tunes the per-request wall-clock timeouts applied to router
// forwards, per method class. List methods are answered directly from
// in-memory stores and are never subject to a timeout.
type Config struct {
	// InvokeTimeout is the fallback deadline for any router-path method
	// whose class-specific field below is unset. Defaults to 10s.
	InvokeTimeout time.Duration

	// ToolCall bounds tools/call.
	ToolCall time.Duration
	// ResourceRead bounds resources/read, resources/subscribe,
	// resources/unsubscribe, and resources/templates/list.
	ResourceRead time.Duration
	// PromptGet bounds prompts/get.
	PromptGet time.Duration
}

// timeoutFor selects the deadline for one router-path method.
func (c Config) timeoutFor(method string) time.Duration {
	var d time.Duration
	switch method {
	case "tools/call":
		d = c.ToolCall
	case "prompts/get":
		d = c.PromptGet
	default:
		d = c.ResourceRead
	}
	if d <= 0 {
		d = c.InvokeTimeout
	}
	return d
}

// Dispatcher is stateless beyond its collaborators. It
// owns no mutable state of its own — all state lives in the registry and
// list stores it's constructed with.
type Dispatcher struct {
	registry  *registry.Registry
	tools     *liststore.Store[liststore.ToolItem]
	resources *liststore.Store[liststore.ResourceItem]
	prompts   *liststore.Store[liststore.PromptItem]
	init      *initialize.Service
	cfg       Config
}

// New constructs a Dispatcher wired to its collaborators.
func New(reg *registry.Registry, tools *liststore.Store[liststore.ToolItem], resources *liststore.Store[liststore.ResourceItem], prompts *liststore.Store[liststore.PromptItem], init *initialize.Service, cfg Config) *Dispatcher {
	if cfg.InvokeTimeout <= 0 {
		cfg.InvokeTimeout = 10 * time.Second
	}
	return &Dispatcher{registry: reg, tools: tools, resources: resources, prompts: prompts, init: init, cfg: cfg}
}

// Dispatch handles one JSON-RPC request and returns either a Response or an
// Error, never both. The caller is responsible for delivering the
// result to the originating session.
func (d *Dispatcher) Dispatch(ctx context.Context, req *jsonrpc.Request) (*jsonrpc.Response, *jsonrpc.Error) {
	switch req.Method {
	case "initialize":
		return jsonrpc.NewResponse(req.ID, d.init.Initialize()), nil

	case "notifications/initialized":
		d.init.Initialized()
		return jsonrpc.NewResponse(req.ID, struct{}{}), nil

	case "tools/list":
		return jsonrpc.NewResponse(req.ID, map[string]interface{}{"tools": stripToolItems(d.tools.List())}), nil

	case "resources/list":
		return jsonrpc.NewResponse(req.ID, map[string]interface{}{"resources": stripResourceItems(d.resources.List())}), nil

	case "prompts/list":
		return jsonrpc.NewResponse(req.ID, map[string]interface{}{"prompts": stripPromptItems(d.prompts.List())}), nil

	case "tools/call", "prompts/get", "resources/templates/list":
		return d.routerPath(ctx, req, "name")

	case "resources/read", "resources/subscribe", "resources/unsubscribe":
		return d.routerPath(ctx, req, "uri")

	default:
		return nil, jsonrpc.NewMethodNotFound(req.ID, req.Method)
	}
}

// routerPath handles the per-router methods: extract the
// keying field, split it at the first '_', look up the router, rewrite the
// field to the local name, and forward with a bounded timeout.
func (d *Dispatcher) routerPath(ctx context.Context, req *jsonrpc.Request, field string) (*jsonrpc.Response, *jsonrpc.Error) {
	params, err := decodeParams(req.Params)
	if err != nil {
		return nil, jsonrpc.NewInvalidParams(req.ID, err.Error())
	}

	key, ok := params[field].(string)
	if !ok || key == "" {
		return nil, jsonrpc.NewInvalidParams(req.ID, fmt.Sprintf("params.%s is required and must be a string", field))
	}

	handle, local, found := d.registry.Lookup(key)
	if !found {
		routerID, _ := registry.SplitQualified(key)
		return nil, jsonrpc.NewInternalError(req.ID, fmt.Sprintf("no router for %s", routerID))
	}
	params[field] = local

	callCtx, cancel := context.WithTimeout(ctx, d.cfg.timeoutFor(req.Method))
	defer cancel()

	result, err := d.invoke(callCtx, handle, req.Method, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, jsonrpc.NewTimeoutError(req.ID, req.Method)
		}
		if kind, ok := router.KindOf(err); ok {
			return nil, domainError(req.ID, kind, err)
		}
		return nil, jsonrpc.NewInternalError(req.ID, err.Error())
	}

	return jsonrpc.NewResponse(req.ID, result), nil
}

// invoke calls the router method matching req.Method. resources/subscribe,
// resources/unsubscribe, and resources/templates/list have no dedicated
// Router capability; once the router is found to exist these three
// acknowledge with an empty result rather than forwarding further.
func (d *Dispatcher) invoke(ctx context.Context, handle router.Router, method string, params map[string]interface{}) (interface{}, error) {
	switch method {
	case "tools/call":
		name, _ := params["name"].(string)
		args, _ := params["arguments"].(map[string]interface{})
		return handle.CallTool(ctx, name, args)
	case "prompts/get":
		name, _ := params["name"].(string)
		return handle.GetPrompt(ctx, name)
	case "resources/read":
		uri, _ := params["uri"].(string)
		return handle.ReadResource(ctx, uri)
	case "resources/subscribe", "resources/unsubscribe":
		return struct{}{}, nil
	case "resources/templates/list":
		return map[string]interface{}{"resourceTemplates": []interface{}{}}, nil
	default:
		return nil, fmt.Errorf("unreachable: unhandled router-path method %q", method)
	}
}

// domainError maps a router-reported failure kind onto the wire error
// range: bad inputs surface as invalid-params, everything else as an
// internal error carrying the router's message.
func domainError(id uint64, kind router.ErrorKind, err error) *jsonrpc.Error {
	switch kind {
	case router.ErrNotFound, router.ErrInvalidParameters, router.ErrSchema:
		return jsonrpc.NewInvalidParams(id, err.Error())
	default:
		return jsonrpc.NewInternalError(id, err.Error())
	}
}

func decodeParams(raw json.RawMessage) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	var params map[string]interface{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return params, nil
}

func stripToolItems(items []liststore.ToolItem) []router.Tool {
	out := make([]router.Tool, len(items))
	for i, it := range items {
		out[i] = it.Tool
	}
	return out
}

func stripResourceItems(items []liststore.ResourceItem) []router.Resource {
	out := make([]router.Resource, len(items))
	for i, it := range items {
		out[i] = it.Resource
	}
	return out
}

func stripPromptItems(items []liststore.PromptItem) []router.Prompt {
	out := make([]router.Prompt, len(items))
	for i, it := range items {
		out[i] = it.Prompt
	}
	return out
}
